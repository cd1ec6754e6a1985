package fx

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
)

type mockRateSource struct {
	rates map[string]float64
	err   error
}

func (m *mockRateSource) FetchRates(_ context.Context, _ string) (map[string]float64, error) {
	return m.rates, m.err
}

type mockRateRepo struct {
	rates    map[string]decimal.Decimal
	getCalls atomic.Int32
}

func (m *mockRateRepo) SaveRate(_ context.Context, currency string, perPivot decimal.Decimal) error {
	if m.rates == nil {
		m.rates = map[string]decimal.Decimal{}
	}
	m.rates[currency] = perPivot
	return nil
}

func (m *mockRateRepo) GetRate(_ context.Context, currency string) (Rate, error) {
	m.getCalls.Add(1)
	if r, ok := m.rates[currency]; ok {
		return Rate{Currency: currency, PerPivot: r}, nil
	}
	return Rate{}, ErrNoRate
}

func (m *mockRateRepo) GetAllRates(_ context.Context) ([]Rate, error) {
	return nil, nil
}

func TestToCurrencySameCurrency(t *testing.T) {
	svc := NewService(&mockRateSource{}, &mockRateRepo{}, "USD")

	amount := decimal.NewFromInt(100)
	got := svc.ToCurrency(context.Background(), amount, "USD", "USD")
	if !got.Equal(amount) {
		t.Errorf("same-currency conversion = %s, want %s unchanged", got, amount)
	}
}

func TestToCurrencyViaPivot(t *testing.T) {
	repo := &mockRateRepo{rates: map[string]decimal.Decimal{
		"EUR": decimal.NewFromFloat(0.8),
		"CHF": decimal.NewFromFloat(0.9),
	}}
	svc := NewService(&mockRateSource{}, repo, "USD")

	// 100 EUR -> USD: 100 / 0.8 = 125
	got := svc.ToCurrency(context.Background(), decimal.NewFromInt(100), "EUR", "USD")
	if !got.Equal(decimal.NewFromInt(125)) {
		t.Errorf("EUR->USD = %s, want 125", got)
	}

	// 100 EUR -> CHF: 100 * 0.9/0.8 = 112.5
	got = svc.ToCurrency(context.Background(), decimal.NewFromInt(100), "EUR", "CHF")
	if !got.Equal(decimal.NewFromFloat(112.5)) {
		t.Errorf("EUR->CHF = %s, want 112.5", got)
	}
}

func TestToCurrencyUnknownCurrencyDegrades(t *testing.T) {
	svc := NewService(&mockRateSource{}, &mockRateRepo{}, "USD")

	amount := decimal.NewFromInt(42)
	got := svc.ToCurrency(context.Background(), amount, "XYZ", "USD")
	if !got.Equal(amount) {
		t.Errorf("unknown currency conversion = %s, want %s unchanged", got, amount)
	}
}

func TestToCurrencyCachesRate(t *testing.T) {
	repo := &mockRateRepo{rates: map[string]decimal.Decimal{
		"EUR": decimal.NewFromFloat(0.8),
	}}
	svc := NewService(&mockRateSource{}, repo, "USD")

	for range 5 {
		svc.ToCurrency(context.Background(), decimal.NewFromInt(10), "EUR", "USD")
	}

	// One lookup for EUR on the first call; the cached pair rate serves the rest.
	if got := repo.getCalls.Load(); got != 1 {
		t.Errorf("repository lookups = %d, want 1", got)
	}
}

func TestFetchAndStoreRates(t *testing.T) {
	source := &mockRateSource{rates: map[string]float64{"USD": 1, "EUR": 0.92, "GBP": 0.79}}
	repo := &mockRateRepo{}
	svc := NewService(source, repo, "USD")

	if err := svc.FetchAndStoreRates(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.rates) != 3 {
		t.Errorf("stored rates = %d, want 3", len(repo.rates))
	}
	if !repo.rates["EUR"].Equal(decimal.NewFromFloat(0.92)) {
		t.Errorf("EUR rate = %s, want 0.92", repo.rates["EUR"])
	}
}
