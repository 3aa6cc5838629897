package api

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

func NewRouter(a *API) http.Handler {
	mux := http.NewServeMux()

	// Swagger documentation - must be registered first
	mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
	))

	// Health check (for Railway, k8s, etc.)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Policy chatbot endpoints
	mux.HandleFunc("/api/policies/upload", a.PolicyUploadHandler)
	mux.HandleFunc("/api/policies/ask", a.AskHandler)
	mux.HandleFunc("/api/policies/stats", a.IndexStatsHandler)

	// Resume screening endpoints
	mux.HandleFunc("/api/screenings", a.ScreeningHandler)
	mux.HandleFunc("/api/screenings/runs", a.ScreeningListHandler)
	mux.HandleFunc("/api/screenings/export", a.ScreeningExportHandler)
	mux.HandleFunc("/api/screenings/questions", a.InterviewQuestionsHandler)

	return mux
}
