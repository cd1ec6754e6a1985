package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/openfolio/xray/internal/report"
)

// NewServer creates an HTTP server with all routes configured.
func NewServer(port string, evaluator Evaluator, reports *report.Service, adminAPIKey string) *http.Server {
	handler := NewHandler(evaluator, reports)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/users/{userId}/report", handler.GetReport)
	mux.HandleFunc("GET /api/v1/users/{userId}/reports/latest", handler.GetLatestReport)
	mux.HandleFunc("GET /api/v1/users/{userId}/reports/{date}", handler.GetReportByDate)
	mux.HandleFunc("GET /api/v1/users/{userId}/reports", handler.ListReports)

	generateHandler := http.HandlerFunc(handler.GenerateReport)
	if adminAPIKey != "" {
		mux.Handle("POST /api/v1/users/{userId}/reports/generate", requireAuth(adminAPIKey, generateHandler))
	} else {
		mux.Handle("POST /api/v1/users/{userId}/reports/generate", generateHandler)
	}

	return &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func requireAuth(apiKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if !strings.HasPrefix(auth, "Bearer ") || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
