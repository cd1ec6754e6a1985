package rules

import (
	"fmt"

	"github.com/openfolio/xray/internal/domain"
	"github.com/openfolio/xray/internal/stats"
)

// FeeRatio compares accumulated fees against the total initial
// investment.
type FeeRatio struct{}

// NewFeeRatio flags fees above 1% of the initial investment.
func NewFeeRatio() *FeeRatio { return &FeeRatio{} }

const feeRatioName = "Fee Ratio"

func (r *FeeRatio) Name() string { return feeRatioName }

func (r *FeeRatio) Settings(user domain.UserSettings) Settings {
	return deriveSettings(user, feeRatioName, 0.01)
}

func (r *FeeRatio) Evaluate(s Settings, positions domain.CurrentPositions) Evaluation {
	if positions.TotalInvestment.IsZero() {
		return neutral(feeRatioName)
	}

	ratio := stats.Share(positions.Fees, positions.TotalInvestment)

	if ratio > s.Threshold {
		return Evaluation{
			Name: feeRatioName,
			Evaluation: fmt.Sprintf("The fees do exceed %s of your initial investment (%s)",
				stats.FormatPercent(s.Threshold), stats.FormatPercent(ratio)),
			Value: false,
		}
	}

	return Evaluation{
		Name: feeRatioName,
		Evaluation: fmt.Sprintf("The fees do not exceed %s of your initial investment (%s)",
			stats.FormatPercent(s.Threshold), stats.FormatPercent(ratio)),
		Value: true,
	}
}
