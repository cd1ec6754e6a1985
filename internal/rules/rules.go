package rules

import (
	"log/slog"

	"github.com/openfolio/xray/internal/domain"
)

// Evaluation is one rule's verdict: a boolean value plus the
// human-readable explanation shown in the report.
type Evaluation struct {
	Name       string `json:"name"`
	Evaluation string `json:"evaluation"`
	Value      bool   `json:"value"`
}

// Settings is a rule's derived configuration for one evaluation run.
// Threshold is a 0..1 ratio whose meaning is rule-specific.
type Settings struct {
	Active       bool
	BaseCurrency string
	Threshold    float64
}

// Rule is one independent evaluative policy. Settings derivation is a
// pure function of user preferences; Evaluate is a pure computation over
// the aggregated snapshot and must not mutate it.
type Rule interface {
	Name() string
	Settings(user domain.UserSettings) Settings
	Evaluate(s Settings, positions domain.CurrentPositions) Evaluation
}

// deriveSettings applies a user's override for one rule on top of the
// rule's defaults. A malformed threshold falls back to the default
// instead of propagating; misconfiguration never fails an evaluation.
func deriveSettings(user domain.UserSettings, name string, defaultThreshold float64) Settings {
	s := Settings{
		Active:       true,
		BaseCurrency: user.BaseCurrency,
		Threshold:    defaultThreshold,
	}

	o := user.Override(name)
	if o.IsActive != nil {
		s.Active = *o.IsActive
	}
	if o.Threshold != nil {
		if *o.Threshold < 0 || *o.Threshold > 1 {
			slog.Warn("rules: invalid threshold override, using default",
				"rule", name, "threshold", *o.Threshold, "default", defaultThreshold)
		} else {
			s.Threshold = *o.Threshold
		}
	}
	return s
}

const noPositionsMessage = "There are no positions to evaluate"

// neutral is the definitive non-crashing evaluation for rules whose
// required inputs are absent.
func neutral(name string) Evaluation {
	return Evaluation{Name: name, Evaluation: noPositionsMessage, Value: false}
}
