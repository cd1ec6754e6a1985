package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openfolio/xray/internal/domain"
)

// ErrNotFound indicates that the requested user does not exist.
var ErrNotFound = errors.New("user not found")

// Repository defines read access to user-level preferences.
type Repository interface {
	GetUserSettings(ctx context.Context, userID string) (domain.UserSettings, error)
	ListUserIDs(ctx context.Context) ([]string, error)
}

// PgRepository implements Repository with PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a new PostgreSQL settings repository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// GetUserSettings loads a user's base currency and per-rule overrides.
func (r *PgRepository) GetUserSettings(ctx context.Context, userID string) (domain.UserSettings, error) {
	var (
		s         domain.UserSettings
		rulesJSON []byte
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, base_currency, rule_settings FROM users WHERE id = $1`,
		userID).Scan(&s.UserID, &s.BaseCurrency, &rulesJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UserSettings{}, ErrNotFound
		}
		return domain.UserSettings{}, fmt.Errorf("getting settings for %s: %w", userID, err)
	}

	if len(rulesJSON) > 0 {
		if err := json.Unmarshal(rulesJSON, &s.Rules); err != nil {
			return domain.UserSettings{}, fmt.Errorf("parsing rule settings for %s: %w", userID, err)
		}
	}
	return s, nil
}

// ListUserIDs returns all user IDs, in stable order.
func (r *PgRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
