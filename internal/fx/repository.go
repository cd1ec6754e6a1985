package fx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrNoRate indicates that no stored rate exists for a currency.
var ErrNoRate = errors.New("no rate available")

// Rate is a stored exchange rate: units of Currency per 1 pivot unit.
type Rate struct {
	Currency  string          `json:"currency"`
	PerPivot  decimal.Decimal `json:"perPivot"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// RateRepository defines persistent storage for exchange rates.
type RateRepository interface {
	SaveRate(ctx context.Context, currency string, perPivot decimal.Decimal) error
	GetRate(ctx context.Context, currency string) (Rate, error)
	GetAllRates(ctx context.Context) ([]Rate, error)
}

// PgRateRepository implements RateRepository with PostgreSQL.
type PgRateRepository struct {
	pool *pgxpool.Pool
}

// NewPgRateRepository creates a new PostgreSQL rate repository.
func NewPgRateRepository(pool *pgxpool.Pool) *PgRateRepository {
	return &PgRateRepository{pool: pool}
}

func (r *PgRateRepository) SaveRate(ctx context.Context, currency string, perPivot decimal.Decimal) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO fx_rates (currency, per_pivot, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (currency) DO UPDATE SET per_pivot = $2, updated_at = NOW()`,
		currency, perPivot)
	if err != nil {
		return fmt.Errorf("saving rate for %s: %w", currency, err)
	}
	return nil
}

func (r *PgRateRepository) GetRate(ctx context.Context, currency string) (Rate, error) {
	var rate Rate
	err := r.pool.QueryRow(ctx,
		`SELECT currency, per_pivot, updated_at FROM fx_rates WHERE currency = $1`,
		currency).Scan(&rate.Currency, &rate.PerPivot, &rate.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Rate{}, ErrNoRate
		}
		return Rate{}, fmt.Errorf("getting rate for %s: %w", currency, err)
	}
	return rate, nil
}

func (r *PgRateRepository) GetAllRates(ctx context.Context) ([]Rate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT currency, per_pivot, updated_at FROM fx_rates ORDER BY currency`)
	if err != nil {
		return nil, fmt.Errorf("getting all rates: %w", err)
	}
	defer rows.Close()

	var rates []Rate
	for rows.Next() {
		var rate Rate
		if err := rows.Scan(&rate.Currency, &rate.PerPivot, &rate.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning rate: %w", err)
		}
		rates = append(rates, rate)
	}
	return rates, rows.Err()
}
