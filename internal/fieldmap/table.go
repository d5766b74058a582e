package fieldmap

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/DealDocs/dealdocs-backend/types"
)

//go:embed tables.yaml
var defaultTablesYAML []byte

// Table holds the per-form mappings from normalized line identifier to
// canonical field path. A Table is immutable after construction and safe for
// concurrent use; tests build small tables of their own instead of patching
// the default one.
type Table struct {
	forms map[types.DocumentType]map[string]string
}

// NewTable builds a table from explicit form mappings. Line identifiers are
// stored lowercased so lookups are case-insensitive.
func NewTable(forms map[types.DocumentType]map[string]string) Table {
	normalized := make(map[types.DocumentType]map[string]string, len(forms))
	for ft, lines := range forms {
		m := make(map[string]string, len(lines))
		for lineID, path := range lines {
			m[normalizeKey(lineID)] = path
		}
		normalized[ft] = m
	}
	return Table{forms: normalized}
}

// ParseTable builds a table from YAML of the shape
//
//	FORM_1040:
//	  "1": income.wages
func ParseTable(data []byte) (Table, error) {
	var raw map[types.DocumentType]map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Table{}, fmt.Errorf("parsing field-mapping table: %w", err)
	}
	return NewTable(raw), nil
}

var (
	defaultTable     Table
	defaultTableErr  error
	defaultTableOnce sync.Once
)

// Default returns the table built from the embedded mappings. The parse
// happens once; the embedded YAML is trusted build-time data, so a parse
// failure is a programming error.
func Default() Table {
	defaultTableOnce.Do(func() {
		defaultTable, defaultTableErr = ParseTable(defaultTablesYAML)
	})
	if defaultTableErr != nil {
		panic(fmt.Sprintf("fieldmap: embedded tables are invalid: %v", defaultTableErr))
	}
	return defaultTable
}

// FieldPath resolves a (form type, line identifier) pair to its canonical
// field path. Unknown form types and unknown identifiers are not errors;
// they return ok=false so the caller can leave the pair unmapped.
func (t Table) FieldPath(formType types.DocumentType, lineID string) (string, bool) {
	lines, ok := t.forms[formType]
	if !ok {
		return "", false
	}
	path, ok := lines[normalizeKey(lineID)]
	return path, ok
}

// ReverseLookup finds the line identifier declared for a canonical path on a
// given form. When several identifiers alias the same path the
// lexicographically smallest wins, so repeated calls agree. Linear scan;
// used for display only.
func (t Table) ReverseLookup(formType types.DocumentType, canonicalPath string) (string, bool) {
	lines, ok := t.forms[formType]
	if !ok {
		return "", false
	}
	best := ""
	found := false
	for lineID, path := range lines {
		if path != canonicalPath {
			continue
		}
		if !found || lineID < best {
			best = lineID
			found = true
		}
	}
	return best, found
}

// ExpectedFields returns every distinct canonical path declared for a form
// type. Verification uses this to know what should exist on a document.
func (t Table) ExpectedFields(formType types.DocumentType) map[string]struct{} {
	fields := make(map[string]struct{})
	for _, path := range t.forms[formType] {
		fields[path] = struct{}{}
	}
	return fields
}

func normalizeKey(lineID string) string {
	return strings.ToLower(strings.TrimSpace(lineID))
}
