package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Type distinguishes order directions.
type Type string

const (
	TypeBuy  Type = "BUY"
	TypeSell Type = "SELL"
)

// Activity is one filled order. UnitPrice and Fee are in Currency.
type Activity struct {
	ID        int             `json:"id"`
	UserID    string          `json:"userId"`
	Symbol    string          `json:"symbol"`
	Type      Type            `json:"type"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Fee       decimal.Decimal `json:"fee"`
	Currency  string          `json:"currency"`
	Date      time.Time       `json:"date"`
}

// Repository defines read access to a user's filled orders.
type Repository interface {
	ListActivities(ctx context.Context, userID string) ([]Activity, error)
}

// PgRepository implements Repository with PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a new PostgreSQL activity repository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// ListActivities returns all filled orders for a user in date order.
func (r *PgRepository) ListActivities(ctx context.Context, userID string) ([]Activity, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, symbol, type, quantity, unit_price, fee, currency, date
		 FROM activities
		 WHERE user_id = $1
		 ORDER BY date, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing activities for %s: %w", userID, err)
	}
	defer rows.Close()

	var activities []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.UserID, &a.Symbol, &a.Type, &a.Quantity,
			&a.UnitPrice, &a.Fee, &a.Currency, &a.Date); err != nil {
			return nil, fmt.Errorf("scanning activity: %w", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activities: %w", err)
	}
	return activities, nil
}
