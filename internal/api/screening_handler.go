package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"hr-engine/internal/engine"
	"hr-engine/internal/recruitment"
	"hr-engine/internal/screening"

	"go.uber.org/zap"
)

// ScreeningHandler screens uploaded resumes against a job description
// @Summary Screen resumes
// @Description Upload resume files and a job description; returns candidates ranked by weighted fit
// @Tags screening
// @Accept multipart/form-data
// @Produce json
// @Param job_description formData string true "Job description text"
// @Param threshold formData number false "Shortlist threshold in [0,100]" default(50)
// @Param resumes formData file true "Resume files (PDF, DOCX or TXT), repeatable"
// @Success 200 {object} recruitment.ScreenResult
// @Failure 400 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /screenings [post]
func (a *API) ScreeningHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(50 << 20); err != nil {
		http.Error(w, "upload too large or invalid (max 50MB)", http.StatusBadRequest)
		return
	}

	jobDescription := r.FormValue("job_description")
	if jobDescription == "" {
		http.Error(w, "job_description is required", http.StatusBadRequest)
		return
	}

	threshold := a.cfg.ShortlistThreshold
	if v := r.FormValue("threshold"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			http.Error(w, "invalid threshold", http.StatusBadRequest)
			return
		}
		threshold = f
	}

	files := r.MultipartForm.File["resumes"]
	if len(files) == 0 {
		http.Error(w, "no resume files uploaded", http.StatusBadRequest)
		return
	}

	resumes := make([]recruitment.Resume, 0, len(files))
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			http.Error(w, fmt.Sprintf("failed to read %s", header.Filename), http.StatusBadRequest)
			return
		}
		doc, err := a.parser.ParseFile(header.Filename, file)
		file.Close()
		if err != nil {
			a.logger.Warn("resume not parseable, skipping",
				zap.String("filename", header.Filename), zap.Error(err))
			continue
		}
		resumes = append(resumes, recruitment.Resume{
			ID:   doc.Filename,
			Name: doc.Filename,
			Text: doc.Text,
		})
	}
	if len(resumes) == 0 {
		http.Error(w, "no resume could be parsed", http.StatusBadRequest)
		return
	}

	result, err := a.recruiter.Screen(r.Context(), resumes, jobDescription, threshold)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrInvalidConfig):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, engine.ErrCollaboratorUnavailable):
			http.Error(w, "collaborator timed out, please retry", http.StatusServiceUnavailable)
		default:
			a.logger.Error("screening failed", zap.Error(err))
			http.Error(w, "screening failed", http.StatusInternalServerError)
		}
		return
	}

	if a.runStore != nil {
		if err := a.runStore.SaveRun(r.Context(), result, jobDescription, threshold); err != nil {
			a.logger.Warn("failed to persist screening run",
				zap.String("run_id", result.RunID), zap.Error(err))
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// ScreeningExportHandler exports a stored run as CSV
// @Summary Export screening results
// @Description Download the ranked candidates of a stored run as CSV
// @Tags screening
// @Produce text/csv
// @Param run_id query string true "Run ID"
// @Success 200 {string} string
// @Failure 404 {object} map[string]string
// @Router /screenings/export [get]
func (a *API) ScreeningExportHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if a.runStore == nil {
		http.Error(w, "screening run storage not configured", http.StatusNotImplemented)
		return
	}

	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		http.Error(w, "run_id is required", http.StatusBadRequest)
		return
	}

	run, err := a.runStore.GetRun(r.Context(), runID)
	if err != nil {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="screening_%s.csv"`, runID))
	if err := screening.WriteCSV(w, run.Candidates); err != nil {
		a.logger.Error("csv export failed", zap.String("run_id", runID), zap.Error(err))
	}
}

// ScreeningListHandler lists recent screening runs
// @Summary List screening runs
// @Tags screening
// @Produce json
// @Success 200 {array} storage.ScreeningRun
// @Router /screenings/runs [get]
func (a *API) ScreeningListHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if a.runStore == nil {
		http.Error(w, "screening run storage not configured", http.StatusNotImplemented)
		return
	}

	runs, err := a.runStore.ListRuns(r.Context(), 50)
	if err != nil {
		a.logger.Error("failed to list runs", zap.Error(err))
		http.Error(w, "failed to list runs", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(runs)
}

// InterviewQuestionsHandler generates interview questions for one candidate
// @Summary Generate interview questions
// @Description Generate questions tailored to the job description and a screened candidate's matched skills
// @Tags screening
// @Accept json
// @Produce json
// @Param request body map[string]interface{} true "run_id + candidate_id, or inline job_description + matched_skills + experience_years"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /screenings/questions [post]
func (a *API) InterviewQuestionsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		RunID           string   `json:"run_id"`
		CandidateID     string   `json:"candidate_id"`
		JobDescription  string   `json:"job_description"`
		MatchedSkills   []string `json:"matched_skills"`
		ExperienceYears int      `json:"experience_years"`
		Count           int      `json:"count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Count <= 0 {
		req.Count = 5
	}

	jobDescription := req.JobDescription
	candidate := screening.CandidateProfile{
		CandidateID:     req.CandidateID,
		MatchedSkills:   req.MatchedSkills,
		ExperienceYears: req.ExperienceYears,
	}

	// Stored runs are the preferred source: candidate facts come from the
	// screening, not the caller.
	if req.RunID != "" {
		if a.runStore == nil {
			http.Error(w, "screening run storage not configured", http.StatusNotImplemented)
			return
		}
		run, err := a.runStore.GetRun(r.Context(), req.RunID)
		if err != nil {
			http.Error(w, "run not found", http.StatusNotFound)
			return
		}
		jobDescription = run.JobDescription
		found := false
		for _, c := range run.Candidates {
			if c.CandidateID == req.CandidateID {
				candidate = c
				found = true
				break
			}
		}
		if !found {
			http.Error(w, "candidate not found in run", http.StatusNotFound)
			return
		}
	}

	if jobDescription == "" {
		http.Error(w, "job_description is required", http.StatusBadRequest)
		return
	}

	questions, err := a.recruiter.InterviewQuestions(r.Context(), jobDescription, candidate, req.Count)
	if err != nil {
		if errors.Is(err, engine.ErrCollaboratorUnavailable) {
			http.Error(w, "collaborator timed out, please retry", http.StatusServiceUnavailable)
			return
		}
		a.logger.Error("question generation failed", zap.Error(err))
		http.Error(w, "failed to generate questions", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"candidate_id": candidate.CandidateID,
		"questions":    questions,
	})
}
