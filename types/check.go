package types

import "github.com/shopspring/decimal"

// CheckStatus is the verdict a single check carries at the point it was
// generated. The review gate applies its own, looser second tier on top.
type CheckStatus string

const (
	CheckStatusPass    CheckStatus = "PASS"
	CheckStatusWarning CheckStatus = "WARNING"
	CheckStatusFail    CheckStatus = "FAIL"
)

// CheckSide is one half of a pairwise reconciliation: which document the
// value came from, which canonical field it is, and the value itself.
type CheckSide struct {
	DocumentType DocumentType    `json:"documentType"`
	FieldPath    string          `json:"fieldPath"`
	Value        decimal.Decimal `json:"value"`
}

// ReconciliationCheck is one cross-document comparison of the same fact as
// reported on two different documents. Computed fresh per invocation, never
// persisted.
type ReconciliationCheck struct {
	Description string          `json:"description"`
	Left        CheckSide       `json:"left"`
	Right       CheckSide       `json:"right"`
	Difference  decimal.Decimal `json:"difference"`  // absolute
	PercentDiff decimal.Decimal `json:"percentDiff"` // |a-b| / max(|a|,|b|), in [0,1]
	Status      CheckStatus     `json:"status"`
}

// ArithmeticCheck is a self-consistency check inside a single document
// (e.g. a total line vs the sum of its components). Produced by an external
// collaborator; the gate only consumes it.
type ArithmeticCheck struct {
	FieldPath   string          `json:"fieldPath"`
	Expected    decimal.Decimal `json:"expected"`
	Actual      decimal.Decimal `json:"actual"`
	Difference  decimal.Decimal `json:"difference"`
	Status      CheckStatus     `json:"status"`
	Description string          `json:"description,omitempty"`
}

// OCRComparison compares the value the OCR service read for a field against
// the value the structured extraction settled on. OCRValue is nil when the
// OCR service found nothing matching the field; that case is unverifiable,
// not a disagreement.
type OCRComparison struct {
	FieldPath       string           `json:"fieldPath"`
	OCRValue        *decimal.Decimal `json:"ocrValue,omitempty"`
	StructuredValue decimal.Decimal  `json:"structuredValue"`
	Difference      decimal.Decimal  `json:"difference"`
	Status          CheckStatus      `json:"status"`
	Page            int              `json:"page,omitempty"`
}

// CheckKind classifies which family of checks a review item came from.
type CheckKind string

const (
	CheckKindArithmetic    CheckKind = "ARITHMETIC"
	CheckKindCrossDocument CheckKind = "CROSS_DOCUMENT"
	CheckKindOCRMismatch   CheckKind = "OCR_MISMATCH"
)

// ReviewStatus is the lifecycle state of a review item. Items are created
// PENDING; only a human action through the review UI moves them to a
// terminal state. This core never performs that transition.
type ReviewStatus string

const (
	ReviewStatusPending   ReviewStatus = "PENDING"
	ReviewStatusConfirmed ReviewStatus = "CONFIRMED"
	ReviewStatusCorrected ReviewStatus = "CORRECTED"
	ReviewStatusNoted     ReviewStatus = "NOTED"
)

// ReviewItem is a surfaced, unresolved discrepancy requiring a human
// decision before the pipeline may continue. ID and DealID are assigned at
// persistence time; the gate materializes items without them.
type ReviewItem struct {
	ID          string          `json:"id,omitempty"`
	DealID      string          `json:"dealId,omitempty"`
	FieldPath   string          `json:"fieldPath"`
	Observed    decimal.Decimal `json:"observed"`
	Expected    decimal.Decimal `json:"expected"`
	CheckKind   CheckKind       `json:"checkKind"`
	Description string          `json:"description"`
	Page        *int            `json:"page,omitempty"`
	DocumentRef string          `json:"documentRef,omitempty"`
	Status      ReviewStatus    `json:"status"`
	Note        string          `json:"note,omitempty"`
}

// CategoryCounts tallies outcomes for one check family after the gate's
// second tolerance tier has been applied.
type CategoryCounts struct {
	Passed       int `json:"passed"`
	Warnings     int `json:"warnings"`
	AutoPassed   int `json:"autoPassed"`
	Failed       int `json:"failed"`
	Unverifiable int `json:"unverifiable,omitempty"`
}

// GateSummary breaks the gate outcome down per check family.
type GateSummary struct {
	Arithmetic    CategoryCounts `json:"arithmetic"`
	CrossDocument CategoryCounts `json:"crossDocument"`
	OCR           CategoryCounts `json:"ocr"`
}

// GateResult is the gate's final, stateless verdict for one deal.
// CanProceed is true exactly when ReviewItems is empty.
type GateResult struct {
	CanProceed      bool         `json:"canProceed"`
	ReviewItems     []ReviewItem `json:"reviewItems"`
	AutoPassedCount int          `json:"autoPassedCount"`
	Summary         GateSummary  `json:"summary"`
}

// VerificationRequest bundles everything the orchestration layer has for one
// deal when all extractions are available: the per-document structured data
// plus the two externally produced check families.
type VerificationRequest struct {
	Extractions      []ExtractionInput `json:"extractions"`
	ArithmeticChecks []ArithmeticCheck `json:"arithmeticChecks"`
	OCRComparisons   []OCRComparison   `json:"ocrComparisons"`
	DocumentRef      string            `json:"documentRef,omitempty"`
}
