package export

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"
)

const reportSheetName = "REPORTS"

var reportHeaders = []any{"Date", "User", "Base Currency", "Rule", "Status", "Detail"}

// SheetsWriter implements ReportWriter using the Google Sheets API.
// Each report run appends its rows below the existing history.
type SheetsWriter struct {
	spreadsheetID string
	svc           *sheets.Service
}

// NewSheetsWriter creates a SheetsWriter authenticated with a service account JSON.
func NewSheetsWriter(ctx context.Context, spreadsheetID, credentialsJSON string) (*SheetsWriter, error) {
	creds, err := google.CredentialsFromJSON(
		ctx,
		[]byte(credentialsJSON),
		sheets.SpreadsheetsScope,
	)
	if err != nil {
		return nil, fmt.Errorf("parsing google credentials: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	return &SheetsWriter{spreadsheetID: spreadsheetID, svc: svc}, nil
}

// Write ensures the report sheet exists with a header row, then appends the rows.
func (w *SheetsWriter) Write(ctx context.Context, rows []ReportRow) error {
	if len(rows) == 0 {
		return nil
	}

	if err := w.ensureSheet(ctx, reportSheetName); err != nil {
		return err
	}

	existing, err := w.svc.Spreadsheets.Values.Get(
		w.spreadsheetID, reportSheetName+"!A1:F1",
	).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("reading report sheet header: %w", err)
	}

	if len(existing.Values) == 0 {
		_, err = w.svc.Spreadsheets.Values.Update(
			w.spreadsheetID,
			reportSheetName+"!A1",
			&sheets.ValueRange{Values: [][]any{reportHeaders}},
		).ValueInputOption("USER_ENTERED").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("writing report sheet header: %w", err)
		}
	}

	_, err = w.svc.Spreadsheets.Values.Append(
		w.spreadsheetID,
		reportSheetName+"!A:F",
		&sheets.ValueRange{Values: buildSheetValues(rows)},
	).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("appending report rows: %w", err)
	}

	return nil
}

// buildSheetValues converts rows to the sheet value grid.
// Columns: Date | User | Base Currency | Rule | Status | Detail
func buildSheetValues(rows []ReportRow) [][]any {
	values := make([][]any, 0, len(rows))
	for _, row := range rows {
		values = append(values, []any{
			row.ReportDate,
			row.UserID,
			row.BaseCurrency,
			row.Rule,
			row.Verdict,
			row.Detail,
		})
	}
	return values
}

// ensureSheet creates the named sheet if it does not already exist.
func (w *SheetsWriter) ensureSheet(ctx context.Context, name string) error {
	spreadsheet, err := w.svc.Spreadsheets.Get(w.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("getting spreadsheet metadata: %w", err)
	}

	for _, s := range spreadsheet.Sheets {
		if s.Properties.Title == name {
			return nil
		}
	}

	_, err = w.svc.Spreadsheets.BatchUpdate(
		w.spreadsheetID,
		&sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: name},
				},
			}},
		},
	).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("creating sheet %s: %w", name, err)
	}

	return nil
}
