package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/openfolio/xray/internal/rules"
)

// Evaluator runs the health-check rule catalog for a user.
type Evaluator interface {
	EvaluateAll(ctx context.Context, userID string) (rules.Report, error)
}

// Service manages report generation and retrieval.
type Service struct {
	evaluator Evaluator
	repo      Repository
}

// NewService creates a new report Service.
func NewService(evaluator Evaluator, repo Repository) *Service {
	return &Service{evaluator: evaluator, repo: repo}
}

// Generate evaluates a user's portfolio and stores the report under the
// given date, replacing any report already stored for that date.
func (s *Service) Generate(ctx context.Context, userID string, date time.Time) (rules.Report, error) {
	result, err := s.evaluator.EvaluateAll(ctx, userID)
	if err != nil {
		return rules.Report{}, fmt.Errorf("evaluating portfolio: %w", err)
	}

	data, err := json.Marshal(result)
	if err != nil {
		return rules.Report{}, fmt.Errorf("marshaling report: %w", err)
	}

	if err := s.repo.Save(ctx, userID, date, data); err != nil {
		return rules.Report{}, fmt.Errorf("saving report: %w", err)
	}

	return result, nil
}

// GetLatest retrieves the most recent stored report for a user.
func (s *Service) GetLatest(ctx context.Context, userID string) (*Stored, error) {
	return s.repo.GetLatest(ctx, userID)
}

// GetByDate retrieves a stored report for a specific date.
func (s *Service) GetByDate(ctx context.Context, userID string, date time.Time) (*Stored, error) {
	return s.repo.GetByDate(ctx, userID, date)
}

// List retrieves recent stored reports.
func (s *Service) List(ctx context.Context, userID string, limit int) ([]Stored, error) {
	return s.repo.List(ctx, userID, limit)
}
