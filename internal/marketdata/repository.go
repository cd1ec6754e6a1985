package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/openfolio/xray/internal/domain"
)

// ErrNoQuote indicates that no stored price exists for a symbol.
var ErrNoQuote = errors.New("no quote available")

// Quote is the latest stored market price for a symbol, in the
// instrument's own currency.
type Quote struct {
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	Currency  string          `json:"currency"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Profile is the static classification of an instrument.
type Profile struct {
	Symbol     string            `json:"symbol"`
	AssetClass domain.AssetClass `json:"assetClass"`
	Sectors    []domain.Weight   `json:"sectors,omitempty"`
	Countries  []domain.Weight   `json:"countries,omitempty"`
}

// Repository defines persistent storage for quotes and profiles.
type Repository interface {
	SaveQuote(ctx context.Context, symbol string, price decimal.Decimal, currency string) error
	GetQuote(ctx context.Context, symbol string) (Quote, error)
	GetProfile(ctx context.Context, symbol string) (Profile, error)
	ListKnownSymbols(ctx context.Context) ([]string, error)
}

// PgRepository implements Repository with PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a new PostgreSQL market data repository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) SaveQuote(ctx context.Context, symbol string, price decimal.Decimal, currency string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO market_prices (symbol, price, currency, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (symbol) DO UPDATE SET price = $2, currency = $3, updated_at = NOW()`,
		symbol, price, currency)
	if err != nil {
		return fmt.Errorf("saving quote for %s: %w", symbol, err)
	}
	return nil
}

func (r *PgRepository) GetQuote(ctx context.Context, symbol string) (Quote, error) {
	var q Quote
	err := r.pool.QueryRow(ctx,
		`SELECT symbol, price, currency, updated_at FROM market_prices WHERE symbol = $1`,
		symbol).Scan(&q.Symbol, &q.Price, &q.Currency, &q.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Quote{}, ErrNoQuote
		}
		return Quote{}, fmt.Errorf("getting quote for %s: %w", symbol, err)
	}
	return q, nil
}

// GetProfile returns the stored classification for a symbol. A symbol
// without a profile row yields an UNKNOWN asset class and no weights.
func (r *PgRepository) GetProfile(ctx context.Context, symbol string) (Profile, error) {
	var (
		p             Profile
		sectorsJSON   []byte
		countriesJSON []byte
	)
	err := r.pool.QueryRow(ctx,
		`SELECT symbol, asset_class, sectors, countries FROM instrument_profiles WHERE symbol = $1`,
		symbol).Scan(&p.Symbol, &p.AssetClass, &sectorsJSON, &countriesJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{Symbol: symbol, AssetClass: domain.AssetClassUnknown}, nil
		}
		return Profile{}, fmt.Errorf("getting profile for %s: %w", symbol, err)
	}

	if len(sectorsJSON) > 0 {
		if err := json.Unmarshal(sectorsJSON, &p.Sectors); err != nil {
			return Profile{}, fmt.Errorf("parsing sectors for %s: %w", symbol, err)
		}
	}
	if len(countriesJSON) > 0 {
		if err := json.Unmarshal(countriesJSON, &p.Countries); err != nil {
			return Profile{}, fmt.Errorf("parsing countries for %s: %w", symbol, err)
		}
	}
	return p, nil
}

// ListKnownSymbols returns every symbol that appears in any activity,
// the universe the quote worker keeps priced.
func (r *PgRepository) ListKnownSymbols(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT symbol FROM activities ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("listing known symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scanning symbol: %w", err)
		}
		symbols = append(symbols, s)
	}
	return symbols, rows.Err()
}
