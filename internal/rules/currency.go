package rules

import (
	"fmt"

	"github.com/openfolio/xray/internal/domain"
	"github.com/openfolio/xray/internal/stats"
)

// CurrencyClusterRisk checks that the largest currency bucket of the
// portfolio is the user's base currency. Two catalog entries share this
// mechanism: one over cost basis, one over current market value.
type CurrencyClusterRisk struct {
	name   string
	amount stats.AmountFunc
	label  string
}

// NewCurrencyClusterRiskInvestment evaluates the initial investment split.
func NewCurrencyClusterRiskInvestment() *CurrencyClusterRisk {
	return &CurrencyClusterRisk{
		name:   "Currency Cluster Risk (Initial Investment)",
		amount: stats.Investment,
		label:  "initial investment",
	}
}

// NewCurrencyClusterRiskCurrentValue evaluates the current value split.
func NewCurrencyClusterRiskCurrentValue() *CurrencyClusterRisk {
	return &CurrencyClusterRisk{
		name:   "Currency Cluster Risk (Current Investment)",
		amount: stats.Value,
		label:  "current investment",
	}
}

func (r *CurrencyClusterRisk) Name() string { return r.name }

func (r *CurrencyClusterRisk) Settings(user domain.UserSettings) Settings {
	return deriveSettings(user, r.name, 0)
}

func (r *CurrencyClusterRisk) Evaluate(s Settings, positions domain.CurrentPositions) Evaluation {
	if len(positions.Positions) == 0 {
		return neutral(r.name)
	}

	groups := stats.Group(positions.Positions, stats.ByCurrency, r.amount, s.BaseCurrency)
	total := stats.Total(groups)

	var baseShare float64
	for _, g := range groups {
		if g.Key == s.BaseCurrency {
			baseShare = stats.Share(g.Investment, total)
			break
		}
	}

	largest, _ := stats.Largest(groups)
	if largest.Key != s.BaseCurrency {
		return Evaluation{
			Name: r.name,
			Evaluation: fmt.Sprintf("The major part of your %s is not in your base currency (%s in %s)",
				r.label, stats.FormatPercent(baseShare), s.BaseCurrency),
			Value: false,
		}
	}

	return Evaluation{
		Name: r.name,
		Evaluation: fmt.Sprintf("The major part of your %s is in your base currency (%s in %s)",
			r.label, stats.FormatPercent(baseShare), s.BaseCurrency),
		Value: true,
	}
}
