package rules

import (
	"fmt"

	"github.com/openfolio/xray/internal/domain"
	"github.com/openfolio/xray/internal/stats"
)

// ClusterRisk flags any single group of the current investment exceeding
// a configured share. Sector, country, and asset class concentration are
// the same mechanism with different key functions and defaults.
type ClusterRisk struct {
	name             string
	key              stats.KeyFunc
	noun             string
	defaultThreshold float64
}

// NewSectorClusterRisk flags sectors above 30% of current investment.
func NewSectorClusterRisk() *ClusterRisk {
	return &ClusterRisk{
		name:             "Sector Cluster Risk",
		key:              stats.BySector,
		noun:             "sector",
		defaultThreshold: 0.3,
	}
}

// NewCountryClusterRisk flags countries above 30% of current investment.
func NewCountryClusterRisk() *ClusterRisk {
	return &ClusterRisk{
		name:             "Country Cluster Risk",
		key:              stats.ByCountry,
		noun:             "country",
		defaultThreshold: 0.3,
	}
}

// NewAssetClassClusterRisk flags asset classes above 75% of current investment.
func NewAssetClassClusterRisk() *ClusterRisk {
	return &ClusterRisk{
		name:             "Asset Class Cluster Risk",
		key:              stats.ByAssetClass,
		noun:             "asset class",
		defaultThreshold: 0.75,
	}
}

func (r *ClusterRisk) Name() string { return r.name }

func (r *ClusterRisk) Settings(user domain.UserSettings) Settings {
	return deriveSettings(user, r.name, r.defaultThreshold)
}

func (r *ClusterRisk) Evaluate(s Settings, positions domain.CurrentPositions) Evaluation {
	if len(positions.Positions) == 0 {
		return neutral(r.name)
	}

	groups := stats.Group(positions.Positions, r.key, stats.Value)
	total := stats.Total(groups)

	largest, _ := stats.Largest(groups)
	largestShare := stats.Share(largest.Investment, total)

	if largestShare > s.Threshold {
		return Evaluation{
			Name: r.name,
			Evaluation: fmt.Sprintf("Over %s of your current investment is in %s (%s)",
				stats.FormatPercent(s.Threshold), largest.Key, stats.FormatPercent(largestShare)),
			Value: false,
		}
	}

	return Evaluation{
		Name: r.name,
		Evaluation: fmt.Sprintf("The major part of your current investment is in %s (%s) and does not exceed %s per %s",
			largest.Key, stats.FormatPercent(largestShare), stats.FormatPercent(s.Threshold), r.noun),
		Value: true,
	}
}
