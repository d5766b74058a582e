// Package tolerance holds the numeric comparison primitives shared by the
// consistency engine and the review gate: normalized percent difference and
// (absolute, percent) threshold pairs.
package tolerance

import "github.com/shopspring/decimal"

// Tolerance is an (absolute dollars, relative fraction) threshold pair. A
// discrepancy within either bound is acceptable.
type Tolerance struct {
	Absolute decimal.Decimal
	Percent  decimal.Decimal
}

// New builds a tolerance from float literals. Used for the fixed rule
// catalog, where the thresholds are compile-time constants.
func New(absolute, percent float64) Tolerance {
	return Tolerance{
		Absolute: decimal.NewFromFloat(absolute),
		Percent:  decimal.NewFromFloat(percent),
	}
}

// Within reports whether a discrepancy of the given absolute difference and
// percent difference falls inside the tolerance.
func (t Tolerance) Within(diff, pct decimal.Decimal) bool {
	return diff.LessThanOrEqual(t.Absolute) || pct.LessThanOrEqual(t.Percent)
}

// PercentDiff computes the normalized percent difference between two values:
// |a-b| / max(|a|,|b|), and 0 when both are 0. It is symmetric in its
// arguments and always in [0,1].
func PercentDiff(a, b decimal.Decimal) decimal.Decimal {
	absA := a.Abs()
	absB := b.Abs()
	max := absA
	if absB.GreaterThan(max) {
		max = absB
	}
	if max.IsZero() {
		return decimal.Zero
	}
	return a.Sub(b).Abs().Div(max)
}
