package report

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/openfolio/xray/internal/rules"
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

type mockRepo struct {
	saved map[string]json.RawMessage
}

func (m *mockRepo) Save(_ context.Context, userID string, date time.Time, data json.RawMessage) error {
	if m.saved == nil {
		m.saved = map[string]json.RawMessage{}
	}
	m.saved[userID+"@"+date.Format("2006-01-02")] = data
	return nil
}

func (m *mockRepo) GetLatest(_ context.Context, _ string) (*Stored, error) {
	return nil, ErrNotFound
}

func (m *mockRepo) GetByDate(_ context.Context, _ string, _ time.Time) (*Stored, error) {
	return nil, ErrNotFound
}

func (m *mockRepo) List(_ context.Context, _ string, _ int) ([]Stored, error) {
	return nil, nil
}

func TestGenerateStoresReport(t *testing.T) {
	evaluator := &mockEvaluator{report: rules.Report{
		BaseCurrency: "USD",
		Rules: []rules.Evaluation{
			{Name: "Fee Ratio", Evaluation: "ok", Value: true},
		},
	}}
	repo := &mockRepo{}
	svc := NewService(evaluator, repo)

	date := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	got, err := svc.Generate(context.Background(), "u1", date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.UserID != "u1" {
		t.Errorf("UserID = %q, want u1", got.UserID)
	}

	data, ok := repo.saved["u1@2026-08-31"]
	if !ok {
		t.Fatal("report was not saved under the expected user/date")
	}

	var stored rules.Report
	if err := json.Unmarshal(data, &stored); err != nil {
		t.Fatalf("stored report is not valid JSON: %v", err)
	}
	if len(stored.Rules) != 1 || stored.Rules[0].Name != "Fee Ratio" {
		t.Errorf("stored rules = %+v, want the evaluated catalog", stored.Rules)
	}
}

func TestGenerateEvaluationFailure(t *testing.T) {
	svc := NewService(&mockEvaluator{err: errors.New("data source unreachable")}, &mockRepo{})

	if _, err := svc.Generate(context.Background(), "u1", time.Now()); err == nil {
		t.Error("expected error when evaluation fails")
	}
}
