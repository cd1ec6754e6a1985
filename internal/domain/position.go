package domain

import (
	"github.com/shopspring/decimal"
)

// AssetClass classifies held instruments.
type AssetClass string

const (
	AssetClassEquity     AssetClass = "EQUITY"
	AssetClassBond       AssetClass = "BOND"
	AssetClassCash       AssetClass = "CASH"
	AssetClassCommodity  AssetClass = "COMMODITY"
	AssetClassRealEstate AssetClass = "REAL_ESTATE"
	AssetClassUnknown    AssetClass = "UNKNOWN"
)

// Weight is a fractional allocation of a position to a named group,
// e.g. a sector or country exposure. Weights for one attribute sum to 1.
type Weight struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// Position is one currently held instrument, derived from activity history.
// Monetary fields (Investment, Value) are normalized to the portfolio's
// base currency; MarketPrice stays in the position's own currency.
type Position struct {
	Symbol      string          `json:"symbol"`
	Currency    string          `json:"currency"`
	AssetClass  AssetClass      `json:"assetClass"`
	Quantity    decimal.Decimal `json:"quantity"`
	MarketPrice decimal.Decimal `json:"marketPrice"`
	Investment  decimal.Decimal `json:"investment"`
	Value       decimal.Decimal `json:"value"`
	Sectors     []Weight        `json:"sectors,omitempty"`
	Countries   []Weight        `json:"countries,omitempty"`
}

// PriceError records a symbol whose market price could not be resolved.
type PriceError struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

// CurrentPositions is the full aggregated position set for one user at
// evaluation time. It is built once per evaluation run and treated as an
// immutable snapshot by everything downstream.
type CurrentPositions struct {
	BaseCurrency    string          `json:"baseCurrency"`
	Positions       []Position      `json:"positions"`
	Fees            decimal.Decimal `json:"fees"`
	TotalInvestment decimal.Decimal `json:"totalInvestment"`
	TotalValue      decimal.Decimal `json:"totalValue"`
	Errors          []PriceError    `json:"errors,omitempty"`
}

// BySymbol returns the position for a symbol, if held.
func (c CurrentPositions) BySymbol(symbol string) (Position, bool) {
	for _, p := range c.Positions {
		if p.Symbol == symbol {
			return p, true
		}
	}
	return Position{}, false
}
