package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/openfolio/xray/internal/report"
	"github.com/openfolio/xray/internal/rules"
	"github.com/openfolio/xray/internal/settings"
)

// Evaluator runs the rule catalog for a user.
type Evaluator interface {
	EvaluateAll(ctx context.Context, userID string) (rules.Report, error)
}

// Handler provides HTTP endpoints for the health-check API.
type Handler struct {
	evaluator Evaluator
	reports   *report.Service
}

// NewHandler creates a new API handler.
func NewHandler(evaluator Evaluator, reports *report.Service) *Handler {
	return &Handler{evaluator: evaluator, reports: reports}
}

// GetReport handles GET /api/v1/users/{userId}/report.
// It evaluates the portfolio on the spot without storing the result.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")

	result, err := h.evaluator.EvaluateAll(r.Context(), userID)
	if err != nil {
		if errors.Is(err, settings.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		slog.Error("failed to evaluate portfolio", "user", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetLatestReport handles GET /api/v1/users/{userId}/reports/latest.
func (h *Handler) GetLatestReport(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")

	s, err := h.reports.GetLatest(r.Context(), userID)
	if err != nil {
		if errors.Is(err, report.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no reports found")
			return
		}
		slog.Error("failed to get latest report", "user", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// GetReportByDate handles GET /api/v1/users/{userId}/reports/{date}.
func (h *Handler) GetReportByDate(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	dateStr := r.PathValue("date")

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format, expected YYYY-MM-DD")
		return
	}

	s, err := h.reports.GetByDate(r.Context(), userID, date)
	if err != nil {
		if errors.Is(err, report.ErrNotFound) {
			writeError(w, http.StatusNotFound, "report not found for date")
			return
		}
		slog.Error("failed to get report by date", "user", userID, "date", dateStr, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// ListReports handles GET /api/v1/users/{userId}/reports.
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	const maxLimit = 365
	userID := r.PathValue("userId")

	limit := 30
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = min(n, maxLimit)
		}
	}

	reports, err := h.reports.List(r.Context(), userID, limit)
	if err != nil {
		slog.Error("failed to list reports", "user", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

// GenerateReport handles POST /api/v1/users/{userId}/reports/generate.
func (h *Handler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")

	result, err := h.reports.Generate(r.Context(), userID, utcDate(time.Now()))
	if err != nil {
		if errors.Is(err, settings.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		slog.Error("failed to generate report", "user", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to generate report")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func utcDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Warn("failed to write HTTP response body", "error", err)
		return
	}
	_, _ = w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
