package stats

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/openfolio/xray/internal/domain"
)

// GroupItem is the transient aggregation of positions sharing an
// attribute value. Investment holds the weighted amount attributed to
// the group, in the portfolio's base currency.
type GroupItem struct {
	Key        string
	Investment decimal.Decimal
	Positions  []domain.Position
}

// Allocation attributes a fraction of a position's amount to a group key.
// Weights for one position sum to 1, so grouping preserves totals.
type Allocation struct {
	Key    string
	Weight float64
}

// KeyFunc returns the group allocations for one position.
type KeyFunc func(p domain.Position) []Allocation

// AmountFunc selects the monetary amount distributed across groups.
type AmountFunc func(p domain.Position) decimal.Decimal

// Investment selects a position's cost basis.
func Investment(p domain.Position) decimal.Decimal { return p.Investment }

// Value selects a position's current market value.
func Value(p domain.Position) decimal.Decimal { return p.Value }

// ByCurrency groups a position fully under its currency.
func ByCurrency(p domain.Position) []Allocation {
	return []Allocation{{Key: p.Currency, Weight: 1}}
}

// ByAssetClass groups a position fully under its asset class.
func ByAssetClass(p domain.Position) []Allocation {
	class := p.AssetClass
	if class == "" {
		class = domain.AssetClassUnknown
	}
	return []Allocation{{Key: string(class), Weight: 1}}
}

// BySector splits a position across its sector weights. Positions
// without sector data land fully in the UNKNOWN group.
func BySector(p domain.Position) []Allocation {
	return fromWeights(p.Sectors)
}

// ByCountry splits a position across its country weights.
func ByCountry(p domain.Position) []Allocation {
	return fromWeights(p.Countries)
}

func fromWeights(weights []domain.Weight) []Allocation {
	if len(weights) == 0 {
		return []Allocation{{Key: string(domain.AssetClassUnknown), Weight: 1}}
	}
	return lo.Map(weights, func(w domain.Weight, _ int) Allocation {
		return Allocation{Key: w.Name, Weight: w.Weight}
	})
}

// Group buckets positions by the keys returned by key, attributing
// amount(p)×weight to each matching group. Group order is first-occurrence
// insertion order, so identical input order yields identical output.
// Pinned keys get an empty zero-investment group up front when no position
// matches them, sparing callers a nil check for a key they must evaluate.
func Group(positions []domain.Position, key KeyFunc, amount AmountFunc, pinned ...string) []GroupItem {
	index := make(map[string]int)
	var items []GroupItem

	at := func(k string) int {
		if i, ok := index[k]; ok {
			return i
		}
		index[k] = len(items)
		items = append(items, GroupItem{Key: k, Investment: decimal.Zero})
		return len(items) - 1
	}

	for _, k := range pinned {
		at(k)
	}

	for _, p := range positions {
		amt := amount(p)
		for _, a := range key(p) {
			i := at(a.Key)
			items[i].Investment = items[i].Investment.Add(amt.Mul(decimal.NewFromFloat(a.Weight)))
			items[i].Positions = append(items[i].Positions, p)
		}
	}

	return items
}

// Largest returns the group with the highest investment. Ties resolve to
// the earlier group, keeping results deterministic.
func Largest(items []GroupItem) (GroupItem, bool) {
	if len(items) == 0 {
		return GroupItem{}, false
	}
	return lo.MaxBy(items, func(a, b GroupItem) bool {
		return a.Investment.GreaterThan(b.Investment)
	}), true
}

// Total sums investment across groups.
func Total(items []GroupItem) decimal.Decimal {
	return lo.Reduce(items, func(acc decimal.Decimal, g GroupItem, _ int) decimal.Decimal {
		return acc.Add(g.Investment)
	}, decimal.Zero)
}

// Share returns part/total as a plain ratio, 0 when total is zero.
func Share(part, total decimal.Decimal) float64 {
	if total.IsZero() {
		return 0
	}
	return part.Div(total).InexactFloat64()
}
