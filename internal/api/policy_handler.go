package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"hr-engine/internal/engine"

	"go.uber.org/zap"
)

// PolicyUploadHandler accepts a policy document and queues it for indexing
// @Summary Upload policy document
// @Description Upload a policy document (PDF/DOCX/TXT); chunking and embedding run in the background
// @Tags policies
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Policy document (PDF, DOCX or TXT)"
// @Success 202 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /policies/upload [post]
func (a *API) PolicyUploadHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "file too large or invalid (max 10MB)", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "no file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	ext := filepath.Ext(header.Filename)
	if ext != ".pdf" && ext != ".docx" && ext != ".doc" && ext != ".txt" {
		http.Error(w, "invalid file type (supported: PDF, DOCX, TXT)", http.StatusBadRequest)
		return
	}

	doc, err := a.parser.ParseFile(header.Filename, file)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to parse document: %v", err), http.StatusInternalServerError)
		return
	}

	a.logger.Info("policy document parsed",
		zap.String("filename", doc.Filename), zap.Int("text_length", len(doc.Text)))

	if !a.QueueIndexJob(doc.Filename, doc.Text) {
		http.Error(w, "indexing queue full, try again later", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"filename":    doc.Filename,
		"file_type":   doc.FileType,
		"file_size":   doc.FileSize,
		"text_length": len(doc.Text),
		"status":      "queued",
	})
}

// AskHandler answers a policy question from the indexed corpus
// @Summary Ask a policy question
// @Description Answer an employee question using only the indexed policy documents
// @Tags policies
// @Accept json
// @Produce json
// @Param request body map[string]string true "Question payload, e.g. {\"question\": \"How many vacation days do I get?\"}"
// @Success 200 {object} chatbot.Answer
// @Failure 400 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /policies/ask [post]
func (a *API) AskHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Question == "" {
		http.Error(w, "question is required", http.StatusBadRequest)
		return
	}

	answer, err := a.chatbot.Ask(r.Context(), req.Question)
	if err != nil {
		if errors.Is(err, engine.ErrCollaboratorUnavailable) {
			http.Error(w, "collaborator timed out, please retry", http.StatusServiceUnavailable)
			return
		}
		a.logger.Error("ask failed", zap.Error(err))
		http.Error(w, "failed to answer question", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(answer)
}

// IndexStatsHandler reports corpus size
// @Summary Get policy index statistics
// @Tags policies
// @Produce json
// @Success 200 {object} map[string]int
// @Router /policies/stats [get]
func (a *API) IndexStatsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"indexed_units": a.chatbot.IndexSize()})
}
