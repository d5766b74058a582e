package fieldmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DealDocs/dealdocs-backend/types"
)

func TestNormalizeLineIdentifier(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  string
		ok    bool
	}{
		{"line prefix", "Line 7", "7", true},
		{"line prefix lowercase", "line 12 Total deductions", "12", true},
		{"line prefix with letter", "Line 25d", "25d", true},
		{"leading token with period", "7. Gross income", "7", true},
		{"leading token with paren", "7a) Capital gain", "7a", true},
		{"leading token with colon", "31: Net profit", "31", true},
		{"bare token", "7", "7", true},
		{"bare token with letter", "2B", "2b", true},
		{"schedule k dash", "K-1 Ordinary business income", "k_1", true},
		{"schedule k space", "K 4a Guaranteed payments", "k_4a", true},
		{"balance sheet assets beginning", "Total assets, beginning of year", "schedule_l_total_assets_boy", true},
		{"balance sheet assets ending", "Total assets (end of year)", "schedule_l_total_assets_eoy", true},
		{"balance sheet retained earnings", "Retained earnings - ending", "schedule_l_retained_earnings_eoy", true},
		{"balance sheet partner capital", "Partners' capital accounts, beginning", "schedule_l_partner_capital_boy", true},
		{"concept without temporal keyword", "Total assets", "", false},
		{"plain heading", "Wages, salaries, tips", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeLineIdentifier(tt.label)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeLineIdentifier_OrderIsFirstMatchWins(t *testing.T) {
	// "Line 7" must resolve via the line-prefix rule, not stop at the
	// leading-token rule seeing "7" mid-string.
	got, ok := NormalizeLineIdentifier("Line 7 Wages")
	require.True(t, ok)
	assert.Equal(t, "7", got)
}

func testTable() Table {
	return NewTable(map[types.DocumentType]map[string]string{
		types.DocForm1040: {
			"1": "income.wages",
			"9": "income.total",
		},
		types.DocScheduleC: {
			"1":  "income.gross_receipts",
			"31": "income.net_profit",
		},
	})
}

func TestTableFieldPath(t *testing.T) {
	table := testTable()

	tests := []struct {
		name     string
		formType types.DocumentType
		lineID   string
		want     string
		ok       bool
	}{
		{"exact", types.DocForm1040, "1", "income.wages", true},
		{"case insensitive", types.DocForm1040, " 9 ", "income.total", true},
		{"unknown line", types.DocForm1040, "99", "", false},
		{"unknown form type", types.DocW2, "1", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := table.FieldPath(tt.formType, tt.lineID)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTableReverseLookup(t *testing.T) {
	table := testTable()

	lineID, ok := table.ReverseLookup(types.DocScheduleC, "income.net_profit")
	require.True(t, ok)
	assert.Equal(t, "31", lineID)

	_, ok = table.ReverseLookup(types.DocScheduleC, "income.unknown")
	assert.False(t, ok)
}

func TestTableReverseLookupAliasedPathIsDeterministic(t *testing.T) {
	// Two identifiers aliasing one path must resolve the same way every run.
	table := NewTable(map[types.DocumentType]map[string]string{
		types.DocForm1040: {
			"9":  "income.total",
			"22": "income.total",
		},
	})

	for i := 0; i < 20; i++ {
		lineID, ok := table.ReverseLookup(types.DocForm1040, "income.total")
		require.True(t, ok)
		assert.Equal(t, "22", lineID, "lexicographically smallest identifier wins")
	}
}

func TestTableExpectedFields(t *testing.T) {
	table := testTable()

	fields := table.ExpectedFields(types.DocForm1040)
	assert.Len(t, fields, 2)
	assert.Contains(t, fields, "income.wages")
	assert.Contains(t, fields, "income.total")

	assert.Empty(t, table.ExpectedFields(types.DocRentRoll))
}

func TestDefaultTable(t *testing.T) {
	table := Default()

	path, ok := table.FieldPath(types.DocForm1040, "1")
	require.True(t, ok)
	assert.Equal(t, "income.wages", path)

	path, ok = table.FieldPath(types.DocForm1120S, "7")
	require.True(t, ok)
	assert.Equal(t, "deductions.officer_compensation", path)

	path, ok = table.FieldPath(types.DocForm1065, "K_4A")
	require.True(t, ok)
	assert.Equal(t, "schedule_k.guaranteed_payments_services", path)

	path, ok = table.FieldPath(types.DocForm1120, "schedule_l_retained_earnings_eoy")
	require.True(t, ok)
	assert.Equal(t, "schedule_l.retained_earnings_eoy", path)
}
