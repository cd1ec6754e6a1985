package stats

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/openfolio/xray/internal/domain"
)

func pos(symbol, currency string, investment int64) domain.Position {
	return domain.Position{
		Symbol:     symbol,
		Currency:   currency,
		Investment: decimal.NewFromInt(investment),
		Value:      decimal.NewFromInt(investment),
	}
}

func TestGroupByCurrency(t *testing.T) {
	positions := []domain.Position{
		pos("AAPL", "USD", 6000),
		pos("SAP", "EUR", 4000),
		pos("MSFT", "USD", 2000),
	}

	items := Group(positions, ByCurrency, Investment)

	if len(items) != 2 {
		t.Fatalf("groups = %d, want 2", len(items))
	}
	if items[0].Key != "USD" || items[1].Key != "EUR" {
		t.Errorf("group order = [%s %s], want [USD EUR] (first occurrence)", items[0].Key, items[1].Key)
	}
	if !items[0].Investment.Equal(decimal.NewFromInt(8000)) {
		t.Errorf("USD investment = %s, want 8000", items[0].Investment)
	}
	if len(items[0].Positions) != 2 {
		t.Errorf("USD positions = %d, want 2", len(items[0].Positions))
	}
}

func TestGroupBySectorPreservesTotal(t *testing.T) {
	p1 := pos("VT", "USD", 9000)
	p1.Sectors = []domain.Weight{
		{Name: "Technology", Weight: 0.5},
		{Name: "Healthcare", Weight: 0.3},
		{Name: "Financials", Weight: 0.2},
	}
	p2 := pos("XOM", "USD", 1000)
	p2.Sectors = []domain.Weight{{Name: "Energy", Weight: 1}}

	items := Group([]domain.Position{p1, p2}, BySector, Investment)

	if len(items) != 4 {
		t.Fatalf("groups = %d, want 4", len(items))
	}

	want := decimal.NewFromInt(10000)
	if got := Total(items); !got.Equal(want) {
		t.Errorf("total across sector groups = %s, want %s", got, want)
	}

	tech := items[0]
	if tech.Key != "Technology" {
		t.Fatalf("items[0].Key = %q, want Technology", tech.Key)
	}
	if !tech.Investment.Equal(decimal.NewFromInt(4500)) {
		t.Errorf("Technology investment = %s, want 4500", tech.Investment)
	}
}

func TestGroupUnclassifiedFallsToUnknown(t *testing.T) {
	items := Group([]domain.Position{pos("BTC", "USD", 500)}, BySector, Investment)

	if len(items) != 1 {
		t.Fatalf("groups = %d, want 1", len(items))
	}
	if items[0].Key != "UNKNOWN" {
		t.Errorf("key = %q, want UNKNOWN", items[0].Key)
	}
	if !items[0].Investment.Equal(decimal.NewFromInt(500)) {
		t.Errorf("investment = %s, want 500", items[0].Investment)
	}
}

func TestGroupPinnedKeyWithoutMatches(t *testing.T) {
	items := Group([]domain.Position{pos("SAP", "EUR", 4000)}, ByCurrency, Investment, "CHF")

	if len(items) != 2 {
		t.Fatalf("groups = %d, want 2 (pinned CHF + EUR)", len(items))
	}
	if items[0].Key != "CHF" {
		t.Errorf("items[0].Key = %q, want CHF", items[0].Key)
	}
	if !items[0].Investment.IsZero() {
		t.Errorf("pinned group investment = %s, want 0", items[0].Investment)
	}
	if len(items[0].Positions) != 0 {
		t.Errorf("pinned group positions = %d, want 0", len(items[0].Positions))
	}
}

func TestGroupPinnedKeyWithMatches(t *testing.T) {
	items := Group([]domain.Position{pos("AAPL", "USD", 1000)}, ByCurrency, Investment, "USD")

	if len(items) != 1 {
		t.Fatalf("groups = %d, want 1 (pinned key merges with real group)", len(items))
	}
	if !items[0].Investment.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("investment = %s, want 1000", items[0].Investment)
	}
}

func TestGroupEmptyInput(t *testing.T) {
	if items := Group(nil, ByCurrency, Investment); len(items) != 0 {
		t.Errorf("groups = %d, want 0", len(items))
	}
}

func TestLargest(t *testing.T) {
	items := []GroupItem{
		{Key: "USD", Investment: decimal.NewFromInt(6000)},
		{Key: "EUR", Investment: decimal.NewFromInt(4000)},
	}

	largest, ok := Largest(items)
	if !ok {
		t.Fatal("Largest returned ok=false")
	}
	if largest.Key != "USD" {
		t.Errorf("largest = %q, want USD", largest.Key)
	}

	if _, ok := Largest(nil); ok {
		t.Error("Largest(nil) returned ok=true")
	}
}

func TestLargestTieKeepsFirst(t *testing.T) {
	items := []GroupItem{
		{Key: "EUR", Investment: decimal.NewFromInt(5000)},
		{Key: "USD", Investment: decimal.NewFromInt(5000)},
	}

	largest, _ := Largest(items)
	if largest.Key != "EUR" {
		t.Errorf("largest on tie = %q, want EUR (first occurrence)", largest.Key)
	}
}

func TestShare(t *testing.T) {
	if got := Share(decimal.NewFromInt(6000), decimal.NewFromInt(10000)); got != 0.6 {
		t.Errorf("Share = %v, want 0.6", got)
	}
	if got := Share(decimal.NewFromInt(5), decimal.Zero); got != 0 {
		t.Errorf("Share with zero denominator = %v, want 0", got)
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{0.6, "60.0%"},
		{0.3, "30.0%"},
		{0.015, "1.5%"},
		{0, "0.0%"},
		{1, "100.0%"},
		{0.3333, "33.3%"},
	}
	for _, tt := range tests {
		if got := FormatPercent(tt.ratio); got != tt.want {
			t.Errorf("FormatPercent(%v) = %q, want %q", tt.ratio, got, tt.want)
		}
	}
}
