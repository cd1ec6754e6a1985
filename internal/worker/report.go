package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/openfolio/xray/internal/rules"
)

// ReportGenerator defines the interface for generating stored reports.
type ReportGenerator interface {
	Generate(ctx context.Context, userID string, date time.Time) (rules.Report, error)
}

// UserSource lists the users to generate reports for.
type UserSource interface {
	ListUserIDs(ctx context.Context) ([]string, error)
}

// AfterReportHook is called after each successful report generation.
type AfterReportHook interface {
	Export(ctx context.Context, report rules.Report) error
}

// ReportWorker periodically generates health-check reports for all users.
type ReportWorker struct {
	generator ReportGenerator
	users     UserSource
	interval  time.Duration
	hook      AfterReportHook // optional
}

// NewReportWorker creates a new ReportWorker with an optional post-generation hook.
func NewReportWorker(generator ReportGenerator, users UserSource, interval time.Duration, hook AfterReportHook) *ReportWorker {
	return &ReportWorker{
		generator: generator,
		users:     users,
		interval:  interval,
		hook:      hook,
	}
}

// runHook calls the post-generation hook if one is configured.
func (w *ReportWorker) runHook(ctx context.Context, report rules.Report) {
	if w.hook == nil {
		return
	}
	if err := w.hook.Export(ctx, report); err != nil {
		slog.Error("ReportWorker: export hook failed", "user", report.UserID, "error", err)
	}
}

// generateAll runs one generation pass over every user. A failure for one
// user is logged and does not stop the pass.
func (w *ReportWorker) generateAll(ctx context.Context) {
	userIDs, err := w.users.ListUserIDs(ctx)
	if err != nil {
		slog.Error("ReportWorker: listing users failed", "error", err)
		return
	}

	date := utcDate()
	for _, userID := range userIDs {
		report, err := w.generator.Generate(ctx, userID, date)
		if err != nil {
			slog.Error("ReportWorker: generation failed", "user", userID, "error", err)
			continue
		}
		w.runHook(ctx, report)
	}
	slog.Info("ReportWorker: pass completed", "users", len(userIDs))
}

// utcDate returns the current date normalized to midnight UTC.
func utcDate() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// Run starts the report worker loop. It blocks until the context is cancelled.
func (w *ReportWorker) Run(ctx context.Context) {
	slog.Info("ReportWorker: starting")

	w.generateAll(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("ReportWorker: shutting down")
			return
		case <-ticker.C:
			w.generateAll(ctx)
		}
	}
}
