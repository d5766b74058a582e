// Package projection applies the field-mapping tables across the full set of
// OCR key-value pairs for one document, partitioning them into mapped and
// unmapped. Every input pair ends up accounted for: either it owns a
// canonical field, it is recorded as superseded on the pair that beat it, or
// it is returned unmapped for the fallback extraction path.
package projection

import (
	"github.com/DealDocs/dealdocs-backend/internal/fieldmap"
	"github.com/DealDocs/dealdocs-backend/types"
)

// MappedValue is the surviving candidate for one canonical field, together
// with the audit trail of pairs it displaced.
type MappedValue struct {
	Value      string               `json:"value"`
	Confidence float64              `json:"confidence"`
	Page       int                  `json:"page"`
	LineID     string               `json:"lineId"`
	Superseded []types.KeyValuePair `json:"superseded,omitempty"`
}

// Project maps each OCR pair to a canonical field path. Pairs whose label
// cannot be normalized, or whose line identifier is not declared for the
// form type, go to unmapped. When two pairs resolve to the same canonical
// path the higher-confidence one wins; an exact confidence tie keeps the
// pair encountered first in input order. The loser is appended to the
// winner's Superseded list rather than dropped, so mapped plus unmapped
// plus superseded always accounts for every input pair.
func Project(table fieldmap.Table, formType types.DocumentType, pairs []types.KeyValuePair) (map[string]MappedValue, []types.KeyValuePair) {
	mapped := make(map[string]MappedValue)
	winners := make(map[string]types.KeyValuePair) // original pair behind each mapped value
	var unmapped []types.KeyValuePair

	for _, pair := range pairs {
		lineID, ok := fieldmap.NormalizeLineIdentifier(pair.Label)
		if !ok {
			unmapped = append(unmapped, pair)
			continue
		}
		path, ok := table.FieldPath(formType, lineID)
		if !ok {
			unmapped = append(unmapped, pair)
			continue
		}

		current, exists := mapped[path]
		if !exists {
			mapped[path] = MappedValue{
				Value:      pair.Value,
				Confidence: pair.Confidence,
				Page:       pair.Page,
				LineID:     lineID,
			}
			winners[path] = pair
			continue
		}

		if pair.Confidence > current.Confidence {
			mapped[path] = MappedValue{
				Value:      pair.Value,
				Confidence: pair.Confidence,
				Page:       pair.Page,
				LineID:     lineID,
				Superseded: append(current.Superseded, winners[path]),
			}
			winners[path] = pair
		} else {
			// Ties keep the first pair encountered in input order.
			current.Superseded = append(current.Superseded, pair)
			mapped[path] = current
		}
	}

	return mapped, unmapped
}
