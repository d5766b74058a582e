// Package gate aggregates the three check families — arithmetic
// self-consistency, cross-document reconciliation and OCR-vs-structured
// comparison — into a single proceed/block decision. Each incoming check
// already carries the verdict it was given at generation time; the gate
// applies a second, looser tolerance tier per family and only surfaces
// discrepancies that fail both tiers.
package gate

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/DealDocs/dealdocs-backend/internal/tolerance"
	"github.com/DealDocs/dealdocs-backend/types"
)

// Tolerances holds the gate's second-tier rescue thresholds per family.
type Tolerances struct {
	Arithmetic    tolerance.Tolerance
	CrossDocument tolerance.Tolerance
	OCR           tolerance.Tolerance
}

// DefaultTolerances returns the production thresholds: a failed check whose
// discrepancy falls inside these bands is auto-passed, not surfaced.
func DefaultTolerances() Tolerances {
	return Tolerances{
		Arithmetic:    tolerance.New(50, 0.02),
		CrossDocument: tolerance.New(100, 0.05),
		OCR:           tolerance.New(25, 0.03),
	}
}

// Gate is a stateless evaluator. The same inputs always produce the same
// result: the decision interrupts a human, so determinism is a contract.
type Gate struct {
	tol Tolerances
}

func New(tol Tolerances) *Gate {
	return &Gate{tol: tol}
}

// Evaluate runs both tolerance tiers over every check and materializes the
// surviving material discrepancies as review items. CanProceed is true
// exactly when no review item was produced; there is no partial-proceed
// state, because one bad number disqualifies data bound for legal documents.
func (g *Gate) Evaluate(arithmetic []types.ArithmeticCheck, crossDoc []types.ReconciliationCheck, ocr []types.OCRComparison, documentRef string) types.GateResult {
	var result types.GateResult

	for _, check := range arithmetic {
		switch check.Status {
		case types.CheckStatusPass:
			result.Summary.Arithmetic.Passed++
		case types.CheckStatusWarning:
			result.Summary.Arithmetic.Warnings++
		case types.CheckStatusFail:
			diff := check.Expected.Sub(check.Actual).Abs()
			pct := tolerance.PercentDiff(check.Expected, check.Actual)
			if g.tol.Arithmetic.Within(diff, pct) {
				result.Summary.Arithmetic.AutoPassed++
				result.AutoPassedCount++
				continue
			}
			result.Summary.Arithmetic.Failed++
			result.ReviewItems = append(result.ReviewItems, types.ReviewItem{
				FieldPath: check.FieldPath,
				Observed:  check.Actual,
				Expected:  check.Expected,
				CheckKind: types.CheckKindArithmetic,
				Description: fmt.Sprintf("%s: computed %s but document reports %s (off by %s)",
					describe(check.Description, check.FieldPath),
					money(check.Expected), money(check.Actual), money(diff)),
				DocumentRef: documentRef,
				Status:      types.ReviewStatusPending,
			})
		}
	}

	for _, check := range crossDoc {
		switch check.Status {
		case types.CheckStatusPass:
			result.Summary.CrossDocument.Passed++
		case types.CheckStatusWarning:
			result.Summary.CrossDocument.Warnings++
		case types.CheckStatusFail:
			if g.tol.CrossDocument.Within(check.Difference, check.PercentDiff) {
				result.Summary.CrossDocument.AutoPassed++
				result.AutoPassedCount++
				continue
			}
			result.Summary.CrossDocument.Failed++
			result.ReviewItems = append(result.ReviewItems, types.ReviewItem{
				FieldPath: check.Left.FieldPath,
				Observed:  check.Left.Value,
				Expected:  check.Right.Value,
				CheckKind: types.CheckKindCrossDocument,
				Description: fmt.Sprintf("%s: %s reports %s, %s reports %s (difference %s)",
					check.Description,
					check.Left.DocumentType, money(check.Left.Value),
					check.Right.DocumentType, money(check.Right.Value),
					money(check.Difference)),
				DocumentRef: documentRef,
				Status:      types.ReviewStatusPending,
			})
		}
	}

	for _, check := range ocr {
		// No OCR counterpart means the field is unverifiable, not wrong.
		if check.OCRValue == nil {
			result.Summary.OCR.Unverifiable++
			continue
		}
		switch check.Status {
		case types.CheckStatusPass:
			result.Summary.OCR.Passed++
		case types.CheckStatusWarning:
			result.Summary.OCR.Warnings++
		case types.CheckStatusFail:
			diff := check.OCRValue.Sub(check.StructuredValue).Abs()
			pct := tolerance.PercentDiff(*check.OCRValue, check.StructuredValue)
			if g.tol.OCR.Within(diff, pct) {
				result.Summary.OCR.AutoPassed++
				result.AutoPassedCount++
				continue
			}
			result.Summary.OCR.Failed++
			item := types.ReviewItem{
				FieldPath: check.FieldPath,
				Observed:  *check.OCRValue,
				Expected:  check.StructuredValue,
				CheckKind: types.CheckKindOCRMismatch,
				Description: fmt.Sprintf("%s: OCR read %s but extraction settled on %s (difference %s)",
					check.FieldPath, money(*check.OCRValue), money(check.StructuredValue), money(diff)),
				DocumentRef: documentRef,
				Status:      types.ReviewStatusPending,
			}
			if check.Page > 0 {
				page := check.Page
				item.Page = &page
			}
			result.ReviewItems = append(result.ReviewItems, item)
		}
	}

	result.CanProceed = len(result.ReviewItems) == 0
	return result
}

func describe(description, fieldPath string) string {
	if description != "" {
		return description
	}
	return fieldPath
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
