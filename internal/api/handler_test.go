package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/openfolio/xray/internal/report"
	"github.com/openfolio/xray/internal/rules"
	"github.com/openfolio/xray/internal/settings"
)

type mockEvaluator struct {
	report rules.Report
	err    error
}

func (m *mockEvaluator) EvaluateAll(_ context.Context, userID string) (rules.Report, error) {
	if m.err != nil {
		return rules.Report{}, m.err
	}
	r := m.report
	r.UserID = userID
	return r, nil
}

type mockReportRepo struct {
	latest *report.Stored
}

func (m *mockReportRepo) Save(_ context.Context, _ string, _ time.Time, _ json.RawMessage) error {
	return nil
}

func (m *mockReportRepo) GetLatest(_ context.Context, _ string) (*report.Stored, error) {
	if m.latest == nil {
		return nil, report.ErrNotFound
	}
	return m.latest, nil
}

func (m *mockReportRepo) GetByDate(_ context.Context, _ string, _ time.Time) (*report.Stored, error) {
	return nil, report.ErrNotFound
}

func (m *mockReportRepo) List(_ context.Context, _ string, _ int) ([]report.Stored, error) {
	return nil, nil
}

func newTestServer(evaluator Evaluator, repo report.Repository) http.Handler {
	reports := report.NewService(evaluator, repo)
	return NewServer("0", evaluator, reports, "").Handler
}

func TestGetReportEvaluatesOnTheSpot(t *testing.T) {
	evaluator := &mockEvaluator{report: rules.Report{
		BaseCurrency: "USD",
		Rules: []rules.Evaluation{
			{Name: "Fee Ratio", Evaluation: "ok", Value: true},
		},
	}}
	srv := newTestServer(evaluator, &mockReportRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/u1/report", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body)
	}

	var got rules.Report
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if got.UserID != "u1" {
		t.Errorf("UserID = %q, want u1", got.UserID)
	}
	if len(got.Rules) != 1 {
		t.Errorf("rules = %d, want 1", len(got.Rules))
	}
}

func TestGetReportUnknownUser(t *testing.T) {
	srv := newTestServer(&mockEvaluator{err: settings.ErrNotFound}, &mockReportRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/nobody/report", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestGetReportEvaluationFailure(t *testing.T) {
	srv := newTestServer(&mockEvaluator{err: errors.New("database unreachable")}, &mockReportRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/u1/report", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestGetLatestReportNotFound(t *testing.T) {
	srv := newTestServer(&mockEvaluator{}, &mockReportRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/u1/reports/latest", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestGetLatestReport(t *testing.T) {
	stored := &report.Stored{
		ID:         1,
		UserID:     "u1",
		ReportDate: time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
		Data:       json.RawMessage(`{"rules":[]}`),
	}
	srv := newTestServer(&mockEvaluator{}, &mockReportRepo{latest: stored})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/u1/reports/latest", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"userId":"u1"`) {
		t.Errorf("body = %s, want stored report for u1", w.Body)
	}
}

func TestGetReportByDateInvalidDate(t *testing.T) {
	srv := newTestServer(&mockEvaluator{}, &mockReportRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/u1/reports/not-a-date", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
