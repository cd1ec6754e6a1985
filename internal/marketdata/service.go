package marketdata

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
)

// QuoteProvider fetches market prices from an external source.
type QuoteProvider interface {
	FetchQuotes(ctx context.Context, symbols []string) ([]ProviderQuote, error)
}

// Service manages market prices and instrument profiles.
type Service struct {
	provider QuoteProvider
	repo     Repository
}

// NewService creates a new market data Service.
func NewService(provider QuoteProvider, repo Repository) *Service {
	return &Service{
		provider: provider,
		repo:     repo,
	}
}

// LatestQuote returns the stored price for a symbol.
func (s *Service) LatestQuote(ctx context.Context, symbol string) (Quote, error) {
	return s.repo.GetQuote(ctx, symbol)
}

// Profile returns the stored classification for a symbol.
func (s *Service) Profile(ctx context.Context, symbol string) (Profile, error) {
	return s.repo.GetProfile(ctx, symbol)
}

// FetchAndStoreQuotes refreshes stored prices for every symbol that
// appears in user activity. Symbols the provider cannot price are logged
// and left with their previous price, if any.
func (s *Service) FetchAndStoreQuotes(ctx context.Context) error {
	symbols, err := s.repo.ListKnownSymbols(ctx)
	if err != nil {
		return fmt.Errorf("resolving symbol universe: %w", err)
	}
	if len(symbols) == 0 {
		return nil
	}

	quotes, err := s.provider.FetchQuotes(ctx, symbols)
	if err != nil {
		return fmt.Errorf("fetching quotes: %w", err)
	}

	priced := make(map[string]bool, len(quotes))
	for _, q := range quotes {
		if err := s.repo.SaveQuote(ctx, q.Symbol, decimal.NewFromFloat(q.Price), q.Currency); err != nil {
			return fmt.Errorf("storing quote for %s: %w", q.Symbol, err)
		}
		priced[q.Symbol] = true
	}

	for _, symbol := range symbols {
		if !priced[symbol] {
			slog.Warn("marketdata: provider returned no quote", "symbol", symbol)
		}
	}

	return nil
}
