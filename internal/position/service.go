package position

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/openfolio/xray/internal/activity"
	"github.com/openfolio/xray/internal/domain"
	"github.com/openfolio/xray/internal/marketdata"
)

// ActivitySource provides a user's filled orders.
type ActivitySource interface {
	ListActivities(ctx context.Context, userID string) ([]activity.Activity, error)
}

// MarketData provides latest prices and instrument classification.
type MarketData interface {
	LatestQuote(ctx context.Context, symbol string) (marketdata.Quote, error)
	Profile(ctx context.Context, symbol string) (marketdata.Profile, error)
}

// Converter converts an amount between currencies.
type Converter interface {
	ToCurrency(ctx context.Context, amount decimal.Decimal, from, to string) decimal.Decimal
}

// Service builds the normalized, currency-converted view of a user's
// current holdings.
type Service struct {
	activities ActivitySource
	market     MarketData
	fx         Converter
}

// NewService creates a new position aggregation Service.
func NewService(activities ActivitySource, market MarketData, fx Converter) *Service {
	return &Service{
		activities: activities,
		market:     market,
		fx:         fx,
	}
}

type accumulator struct {
	quantity   decimal.Decimal
	investment decimal.Decimal
}

// Aggregate nets a user's filled orders into live positions, resolves the
// latest price and profile per symbol, and converts all monetary figures
// into baseCurrency. A symbol without a resolvable price is excluded from
// positions and totals but recorded in Errors; the call only fails when
// the activity source itself is unreachable.
func (s *Service) Aggregate(ctx context.Context, userID, baseCurrency string) (domain.CurrentPositions, error) {
	activities, err := s.activities.ListActivities(ctx, userID)
	if err != nil {
		return domain.CurrentPositions{}, fmt.Errorf("loading activities for %s: %w", userID, err)
	}

	accums := make(map[string]*accumulator)
	var order []string
	fees := decimal.Zero

	for _, a := range activities {
		fees = fees.Add(s.fx.ToCurrency(ctx, a.Fee, a.Currency, baseCurrency))

		acc, ok := accums[a.Symbol]
		if !ok {
			acc = &accumulator{quantity: decimal.Zero, investment: decimal.Zero}
			accums[a.Symbol] = acc
			order = append(order, a.Symbol)
		}

		gross := s.fx.ToCurrency(ctx, a.Quantity.Mul(a.UnitPrice), a.Currency, baseCurrency)

		switch a.Type {
		case activity.TypeBuy:
			acc.quantity = acc.quantity.Add(a.Quantity)
			acc.investment = acc.investment.Add(gross)
		case activity.TypeSell:
			// Average-cost reduction: selling releases cost basis in
			// proportion to the quantity sold.
			if acc.quantity.IsPositive() {
				sold := decimal.Min(a.Quantity, acc.quantity)
				acc.investment = acc.investment.Sub(acc.investment.Mul(sold).Div(acc.quantity))
			}
			acc.quantity = acc.quantity.Sub(a.Quantity)
		default:
			slog.Warn("position: unknown activity type skipped", "type", a.Type, "symbol", a.Symbol)
		}
	}

	result := domain.CurrentPositions{
		BaseCurrency:    baseCurrency,
		Fees:            fees,
		TotalInvestment: decimal.Zero,
		TotalValue:      decimal.Zero,
	}

	for _, symbol := range order {
		acc := accums[symbol]
		if !acc.quantity.IsPositive() {
			continue
		}

		quote, err := s.market.LatestQuote(ctx, symbol)
		if err != nil {
			reason := "market price unavailable"
			if !errors.Is(err, marketdata.ErrNoQuote) {
				reason = err.Error()
			}
			result.Errors = append(result.Errors, domain.PriceError{Symbol: symbol, Reason: reason})
			continue
		}

		profile, err := s.market.Profile(ctx, symbol)
		if err != nil {
			slog.Warn("position: profile unavailable", "symbol", symbol, "error", err)
			profile = marketdata.Profile{Symbol: symbol, AssetClass: domain.AssetClassUnknown}
		}

		value := s.fx.ToCurrency(ctx, acc.quantity.Mul(quote.Price), quote.Currency, baseCurrency)

		result.Positions = append(result.Positions, domain.Position{
			Symbol:      symbol,
			Currency:    quote.Currency,
			AssetClass:  profile.AssetClass,
			Quantity:    acc.quantity,
			MarketPrice: quote.Price,
			Investment:  acc.investment,
			Value:       value,
			Sectors:     profile.Sectors,
			Countries:   profile.Countries,
		})
		result.TotalInvestment = result.TotalInvestment.Add(acc.investment)
		result.TotalValue = result.TotalValue.Add(value)
	}

	return result, nil
}
