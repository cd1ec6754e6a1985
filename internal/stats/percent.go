package stats

import "strconv"

// FormatPercent renders a 0..1 ratio as a percentage with one decimal
// place, e.g. 0.6 -> "60.0%". All rule texts use this one policy.
func FormatPercent(ratio float64) string {
	return strconv.FormatFloat(ratio*100, 'f', 1, 64) + "%"
}
