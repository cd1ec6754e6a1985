package rules

import (
	"context"
	"fmt"
	"time"

	"github.com/openfolio/xray/internal/domain"
)

// defaultBaseCurrency is used for users without a configured base currency.
const defaultBaseCurrency = "USD"

// PositionSource provides the aggregated position snapshot.
type PositionSource interface {
	Aggregate(ctx context.Context, userID, baseCurrency string) (domain.CurrentPositions, error)
}

// SettingsSource provides user-level preferences.
type SettingsSource interface {
	GetUserSettings(ctx context.Context, userID string) (domain.UserSettings, error)
}

// Report is the ordered outcome of one full health-check run.
// Incomplete marks reports where some symbols lacked market prices.
type Report struct {
	UserID       string              `json:"userId"`
	BaseCurrency string              `json:"baseCurrency"`
	GeneratedAt  time.Time           `json:"generatedAt"`
	Rules        []Evaluation        `json:"rules"`
	Incomplete   bool                `json:"incomplete,omitempty"`
	Errors       []domain.PriceError `json:"errors,omitempty"`
}

// Catalog returns the fixed, ordered rule set. Registration order here
// defines report order; reports are reproducible for identical inputs.
func Catalog() []Rule {
	return []Rule{
		NewCurrencyClusterRiskInvestment(),
		NewCurrencyClusterRiskCurrentValue(),
		NewSectorClusterRisk(),
		NewCountryClusterRisk(),
		NewAssetClassClusterRisk(),
		NewFeeRatio(),
	}
}

// Service runs the rule catalog against a user's aggregated positions.
type Service struct {
	positions PositionSource
	settings  SettingsSource
	catalog   []Rule
}

// NewService creates a new rule evaluation Service.
func NewService(positions PositionSource, settings SettingsSource) *Service {
	if positions == nil {
		panic("rules.NewService: positions is nil")
	}
	if settings == nil {
		panic("rules.NewService: settings is nil")
	}
	return &Service{
		positions: positions,
		settings:  settings,
		catalog:   Catalog(),
	}
}

// EvaluateAll aggregates the user's positions once and evaluates every
// active rule against that snapshot, in catalog order. Inactive rules
// contribute nothing. The call fails only when settings or the position
// aggregation itself fail; individual rules never do.
func (s *Service) EvaluateAll(ctx context.Context, userID string) (Report, error) {
	user, err := s.settings.GetUserSettings(ctx, userID)
	if err != nil {
		return Report{}, fmt.Errorf("loading settings for %s: %w", userID, err)
	}
	if user.BaseCurrency == "" {
		user.BaseCurrency = defaultBaseCurrency
	}

	current, err := s.positions.Aggregate(ctx, userID, user.BaseCurrency)
	if err != nil {
		return Report{}, fmt.Errorf("aggregating positions for %s: %w", userID, err)
	}

	report := Report{
		UserID:       userID,
		BaseCurrency: user.BaseCurrency,
		GeneratedAt:  time.Now().UTC(),
		Rules:        []Evaluation{},
		Incomplete:   len(current.Errors) > 0,
		Errors:       current.Errors,
	}

	for _, rule := range s.catalog {
		rs := rule.Settings(user)
		if !rs.Active {
			continue
		}
		report.Rules = append(report.Rules, rule.Evaluate(rs, current))
	}

	return report, nil
}
