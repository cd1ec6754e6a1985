package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates that the requested report was not found.
var ErrNotFound = errors.New("report not found")

// Stored is a persisted health-check report.
type Stored struct {
	ID         int             `json:"id"`
	UserID     string          `json:"userId"`
	ReportDate time.Time       `json:"reportDate"`
	Data       json.RawMessage `json:"data"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// Repository defines persistent storage for health-check reports.
type Repository interface {
	Save(ctx context.Context, userID string, date time.Time, data json.RawMessage) error
	GetLatest(ctx context.Context, userID string) (*Stored, error)
	GetByDate(ctx context.Context, userID string, date time.Time) (*Stored, error)
	List(ctx context.Context, userID string, limit int) ([]Stored, error)
}

// PgRepository implements Repository with PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a new PostgreSQL report repository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Save(ctx context.Context, userID string, date time.Time, data json.RawMessage) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO health_reports (user_id, report_date, data)
		 VALUES ($1, $2, $3::jsonb)
		 ON CONFLICT (user_id, report_date)
		 DO UPDATE SET data = $3::jsonb`,
		userID, date, data)
	if err != nil {
		return fmt.Errorf("saving report: %w", err)
	}
	return nil
}

func (r *PgRepository) GetLatest(ctx context.Context, userID string) (*Stored, error) {
	var s Stored
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, report_date, data, created_at
		 FROM health_reports
		 WHERE user_id = $1
		 ORDER BY report_date DESC
		 LIMIT 1`, userID).Scan(&s.ID, &s.UserID, &s.ReportDate, &s.Data, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting latest report: %w", err)
	}
	return &s, nil
}

func (r *PgRepository) GetByDate(ctx context.Context, userID string, date time.Time) (*Stored, error) {
	var s Stored
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, report_date, data, created_at
		 FROM health_reports
		 WHERE user_id = $1 AND report_date = $2`, userID, date).
		Scan(&s.ID, &s.UserID, &s.ReportDate, &s.Data, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting report by date: %w", err)
	}
	return &s, nil
}

func (r *PgRepository) List(ctx context.Context, userID string, limit int) ([]Stored, error) {
	if limit <= 0 {
		limit = 30
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, report_date, data, created_at
		 FROM health_reports
		 WHERE user_id = $1
		 ORDER BY report_date DESC
		 LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	defer rows.Close()

	var reports []Stored
	for rows.Next() {
		var s Stored
		if err := rows.Scan(&s.ID, &s.UserID, &s.ReportDate, &s.Data, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning report: %w", err)
		}
		reports = append(reports, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reports: %w", err)
	}
	return reports, nil
}
