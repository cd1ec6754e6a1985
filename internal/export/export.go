package export

import (
	"context"
	"fmt"

	"github.com/openfolio/xray/internal/rules"
)

// ReportRow is one rule outcome flattened for spreadsheet output.
type ReportRow struct {
	UserID       string
	ReportDate   string
	BaseCurrency string
	Rule         string
	Verdict      string
	Detail       string
}

// ReportWriter writes report rows to a spreadsheet destination.
type ReportWriter interface {
	Write(ctx context.Context, rows []ReportRow) error
}

// Service flattens health reports and delegates writing to a ReportWriter.
type Service struct {
	writer ReportWriter
}

// NewService creates a new export Service.
func NewService(writer ReportWriter) *Service {
	if writer == nil {
		panic("export.NewService: writer is nil")
	}
	return &Service{writer: writer}
}

// Export writes all rule outcomes of a report to the configured destination.
// Implements worker.AfterReportHook.
func (s *Service) Export(ctx context.Context, report rules.Report) error {
	rows := buildRows(report)
	if err := s.writer.Write(ctx, rows); err != nil {
		return fmt.Errorf("exporting report for user %s: %w", report.UserID, err)
	}
	return nil
}

// buildRows flattens a report into one row per rule, in report order.
func buildRows(report rules.Report) []ReportRow {
	date := report.GeneratedAt.UTC().Format("2006-01-02")

	rows := make([]ReportRow, 0, len(report.Rules))
	for _, ev := range report.Rules {
		verdict := "FAIL"
		if ev.Value {
			verdict = "PASS"
		}
		rows = append(rows, ReportRow{
			UserID:       report.UserID,
			ReportDate:   date,
			BaseCurrency: report.BaseCurrency,
			Rule:         ev.Name,
			Verdict:      verdict,
			Detail:       ev.Evaluation,
		})
	}
	return rows
}
