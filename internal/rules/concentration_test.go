package rules

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/openfolio/xray/internal/domain"
)

func sectorPositions() domain.CurrentPositions {
	return domain.CurrentPositions{
		BaseCurrency: "USD",
		Positions: []domain.Position{
			{
				Symbol: "QQQ", Currency: "USD",
				Value:   decimal.NewFromInt(4000),
				Sectors: []domain.Weight{{Name: "Technology", Weight: 1}},
			},
			{
				Symbol: "VT", Currency: "USD",
				Value: decimal.NewFromInt(6000),
				Sectors: []domain.Weight{
					{Name: "Technology", Weight: 0.2},
					{Name: "Healthcare", Weight: 0.4},
					{Name: "Financials", Weight: 0.4},
				},
			},
		},
	}
}

func TestSectorClusterExceedsThreshold(t *testing.T) {
	rule := NewSectorClusterRisk()
	s := rule.Settings(domain.UserSettings{BaseCurrency: "USD"})

	// Technology: 4000 + 6000×0.2 = 5200 of 10000 = 52% > 30%.
	got := rule.Evaluate(s, sectorPositions())

	if got.Value {
		t.Error("value = true, want false (Technology exceeds 30%)")
	}
	if !strings.Contains(got.Evaluation, "Technology") {
		t.Errorf("evaluation = %q, want to name Technology", got.Evaluation)
	}
	if !strings.Contains(got.Evaluation, "52.0%") {
		t.Errorf("evaluation = %q, want to contain 52.0%%", got.Evaluation)
	}
}

func TestSectorClusterWithinThreshold(t *testing.T) {
	rule := NewSectorClusterRisk()
	// Threshold raised above the largest share.
	s := Settings{Active: true, BaseCurrency: "USD", Threshold: 0.6}

	got := rule.Evaluate(s, sectorPositions())

	if !got.Value {
		t.Errorf("value = false, want true (52%% below 60%%): %s", got.Evaluation)
	}
}

func TestCountryClusterUnknownBucket(t *testing.T) {
	positions := domain.CurrentPositions{
		BaseCurrency: "USD",
		Positions: []domain.Position{
			{Symbol: "BTC", Currency: "USD", Value: decimal.NewFromInt(1000)},
		},
	}

	rule := NewCountryClusterRisk()
	got := rule.Evaluate(Settings{Active: true, BaseCurrency: "USD", Threshold: 0.3}, positions)

	if got.Value {
		t.Error("value = true, want false (everything in UNKNOWN)")
	}
	if !strings.Contains(got.Evaluation, "UNKNOWN") {
		t.Errorf("evaluation = %q, want to name the UNKNOWN bucket", got.Evaluation)
	}
}

func TestAssetClassClusterDefaults(t *testing.T) {
	rule := NewAssetClassClusterRisk()
	s := rule.Settings(domain.UserSettings{BaseCurrency: "USD"})
	if s.Threshold != 0.75 {
		t.Errorf("default threshold = %v, want 0.75", s.Threshold)
	}

	positions := domain.CurrentPositions{
		BaseCurrency: "USD",
		Positions: []domain.Position{
			{Symbol: "AAPL", Currency: "USD", AssetClass: domain.AssetClassEquity, Value: decimal.NewFromInt(8000)},
			{Symbol: "BND", Currency: "USD", AssetClass: domain.AssetClassBond, Value: decimal.NewFromInt(2000)},
		},
	}

	got := rule.Evaluate(s, positions)
	if got.Value {
		t.Errorf("value = true, want false (80%% equity): %s", got.Evaluation)
	}
}

func TestClusterRiskEmptyPositions(t *testing.T) {
	for _, rule := range []Rule{NewSectorClusterRisk(), NewCountryClusterRisk(), NewAssetClassClusterRisk()} {
		got := rule.Evaluate(Settings{Active: true, Threshold: 0.3}, domain.CurrentPositions{})
		if got.Value {
			t.Errorf("%s: value = true, want false for empty positions", rule.Name())
		}
	}
}
