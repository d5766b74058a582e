// Package reconcile cross-checks the same financial fact as reported on
// multiple independent documents of one deal. It runs a fixed catalog of
// pairwise reconciliation rules and emits a pass/warning/fail verdict per
// comparison. Every rule is optional: when its required document types are
// absent, it simply contributes no checks.
package reconcile

import (
	"github.com/shopspring/decimal"

	"github.com/DealDocs/dealdocs-backend/internal/tolerance"
	"github.com/DealDocs/dealdocs-backend/types"
)

// passAbsolute is the universal absolute pass band: two sources reporting
// the same fact within a dollar of each other agree, whatever the relative
// difference says.
var passAbsolute = decimal.NewFromInt(1)

// ruleTolerance holds the two relative bands for one rule. Pass when the
// percent difference is at most Fail; warning when at most Warn; fail
// beyond that. Warn is always the looser of the two.
type ruleTolerance struct {
	Fail decimal.Decimal
	Warn decimal.Decimal
}

func bands(fail, warn float64) ruleTolerance {
	return ruleTolerance{
		Fail: decimal.NewFromFloat(fail),
		Warn: decimal.NewFromFloat(warn),
	}
}

// rule is one entry in the reconciliation catalog.
type rule struct {
	name string
	run  func(set docSet) []types.ReconciliationCheck
}

// docSet indexes one deal's extractions by document type, preserving the
// input order within each type so results are deterministic.
type docSet struct {
	byType map[types.DocumentType][]types.ExtractionInput
}

func newDocSet(extractions []types.ExtractionInput) docSet {
	byType := make(map[types.DocumentType][]types.ExtractionInput)
	for _, ex := range extractions {
		byType[ex.DocumentType] = append(byType[ex.DocumentType], ex)
	}
	return docSet{byType: byType}
}

func (s docSet) all(dt types.DocumentType) []types.ExtractionInput {
	return s.byType[dt]
}

// first returns the first extraction of the given type in input order.
func (s docSet) first(dt types.DocumentType) (types.ExtractionInput, bool) {
	docs := s.byType[dt]
	if len(docs) == 0 {
		return types.ExtractionInput{}, false
	}
	return docs[0], true
}

// sum adds the value at path across all documents of the given type.
func (s docSet) sum(dt types.DocumentType, path string) decimal.Decimal {
	total := decimal.Zero
	for _, ex := range s.byType[dt] {
		total = total.Add(ex.Data.NumberAt(path))
	}
	return total
}

// RunCrossDocumentChecks runs the full rule catalog against one deal's
// extractions. The output order follows the catalog order, so identical
// inputs always yield identical output.
func RunCrossDocumentChecks(extractions []types.ExtractionInput) []types.ReconciliationCheck {
	set := newDocSet(extractions)
	var checks []types.ReconciliationCheck
	for _, r := range catalog {
		checks = append(checks, r.run(set)...)
	}
	return checks
}

// buildCheck performs the generic comparison: absolute difference, then
// normalized percent difference, then the rule's bands. Pass when the
// difference is at most a dollar or the percent difference is within the
// Fail band.
func buildCheck(description string, left, right types.CheckSide, tol ruleTolerance) types.ReconciliationCheck {
	diff := left.Value.Sub(right.Value).Abs()
	pct := tolerance.PercentDiff(left.Value, right.Value)

	status := types.CheckStatusFail
	switch {
	case diff.LessThanOrEqual(passAbsolute) || pct.LessThanOrEqual(tol.Fail):
		status = types.CheckStatusPass
	case pct.LessThanOrEqual(tol.Warn):
		status = types.CheckStatusWarning
	}

	return types.ReconciliationCheck{
		Description: description,
		Left:        left,
		Right:       right,
		Difference:  diff,
		PercentDiff: pct,
		Status:      status,
	}
}

// compare applies the "nothing to compare" policy before building a check:
// when either side is exactly zero the rule contributes no check at all.
// An explicit zero against a real amount therefore goes unflagged today;
// see DESIGN.md for why that stays as-is pending product clarification.
func compare(description string, left, right types.CheckSide, tol ruleTolerance) (types.ReconciliationCheck, bool) {
	if left.Value.IsZero() || right.Value.IsZero() {
		return types.ReconciliationCheck{}, false
	}
	return buildCheck(description, left, right, tol), true
}

func side(dt types.DocumentType, path string, value decimal.Decimal) types.CheckSide {
	return types.CheckSide{DocumentType: dt, FieldPath: path, Value: value}
}
