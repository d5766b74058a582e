package types

import "github.com/DealDocs/dealdocs-backend/pkg/docvalue"

// DocumentType identifies the shape of a source document. The set is closed:
// the reconciliation rules and the field-mapping tables are defined against
// these values at build time.
type DocumentType string

const (
	// Mapped tax forms (field-mapping tables exist for these).
	DocForm1040   DocumentType = "FORM_1040"   // individual return
	DocForm1120   DocumentType = "FORM_1120"   // C-corp return
	DocForm1120S  DocumentType = "FORM_1120S"  // S-corp return
	DocForm1065   DocumentType = "FORM_1065"   // partnership return
	DocScheduleK1 DocumentType = "SCHEDULE_K1" // partner/shareholder statement
	DocScheduleC  DocumentType = "SCHEDULE_C"  // sole-proprietor business schedule
	DocScheduleE  DocumentType = "SCHEDULE_E"  // supplemental income schedule

	// Supporting documents (no line-number tables; structured extraction only).
	DocW2            DocumentType = "W2"
	DocBankStatement DocumentType = "BANK_STATEMENT"
	DocProfitAndLoss DocumentType = "PROFIT_AND_LOSS"
	DocRentRoll      DocumentType = "RENT_ROLL"
)

// KeyValuePair is one field detected by the OCR service: a raw printed label,
// its raw value text, the service's confidence and the page it was found on.
type KeyValuePair struct {
	Label      string  `json:"label"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
	Page       int     `json:"page"`
}

// ExtractionInput is the structured extraction for one ingested document,
// produced by the AI extraction step. Data is a nested document-shaped value;
// the reconciliation engine reads it through dotted-path lookups and never
// mutates it.
type ExtractionInput struct {
	DocumentType DocumentType   `json:"documentType"`
	Data         docvalue.Value `json:"data"`
	Year         int            `json:"year,omitempty"`
}
