package reconcile

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DealDocs/dealdocs-backend/pkg/docvalue"
	"github.com/DealDocs/dealdocs-backend/types"
)

func doc(t *testing.T, dt types.DocumentType, raw string) types.ExtractionInput {
	t.Helper()
	var v docvalue.Value
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return types.ExtractionInput{DocumentType: dt, Data: v}
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestBuildCheckStatuses(t *testing.T) {
	tol := bands(0.01, 0.05)

	tests := []struct {
		name  string
		left  string
		right string
		want  types.CheckStatus
	}{
		{"exact match", "1000", "1000", types.CheckStatusPass},
		{"within a dollar", "1000", "1000.75", types.CheckStatusPass},
		{"within fail band", "100000", "100500", types.CheckStatusPass},
		{"within warn band", "100000", "104000", types.CheckStatusWarning},
		{"beyond warn band", "100000", "120000", types.CheckStatusFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := buildCheck("test",
				side(types.DocW2, "a", d(tt.left)),
				side(types.DocForm1040, "b", d(tt.right)),
				tol,
			)
			assert.Equal(t, tt.want, check.Status)
		})
	}
}

func TestBuildCheckStatusIsMonotonic(t *testing.T) {
	// Increasing percent difference never moves the status back toward pass.
	tol := bands(0.02, 0.10)
	rank := map[types.CheckStatus]int{
		types.CheckStatusPass:    0,
		types.CheckStatusWarning: 1,
		types.CheckStatusFail:    2,
	}

	prev := 0
	for _, right := range []string{"1000", "1015", "1050", "1200", "2000", "9000"} {
		check := buildCheck("test",
			side(types.DocW2, "a", d("1000")),
			side(types.DocForm1040, "b", d(right)),
			tol,
		)
		assert.GreaterOrEqual(t, rank[check.Status], prev, "status regressed at right=%s", right)
		prev = rank[check.Status]
	}
}

func TestPercentDiffFieldsOnCheck(t *testing.T) {
	check := buildCheck("test",
		side(types.DocW2, "a", d("100")),
		side(types.DocForm1040, "b", d("200")),
		bands(0.01, 0.02),
	)
	assert.True(t, d("100").Equal(check.Difference))
	assert.True(t, d("0.5").Equal(check.PercentDiff))
}

func TestWageReconciliation(t *testing.T) {
	extractions := []types.ExtractionInput{
		doc(t, types.DocW2, `{"wages": {"gross": 50000}}`),
		doc(t, types.DocW2, `{"wages": {"gross": 35000}}`),
		doc(t, types.DocForm1040, `{"income": {"wages": 85000, "total": 92000}}`),
	}

	checks := RunCrossDocumentChecks(extractions)

	require.Len(t, checks, 1)
	assert.Equal(t, types.CheckStatusPass, checks[0].Status)
	assert.True(t, d("85000").Equal(checks[0].Left.Value))
	assert.True(t, d("85000").Equal(checks[0].Right.Value))
}

func TestRulesSkipWhenDocumentsAbsent(t *testing.T) {
	extractions := []types.ExtractionInput{
		doc(t, types.DocForm1040, `{"income": {"wages": 85000}}`),
	}
	assert.Empty(t, RunCrossDocumentChecks(extractions))
	assert.Empty(t, RunCrossDocumentChecks(nil))
}

func TestZeroValueProducesNoCheck(t *testing.T) {
	// An explicit zero on either side means "nothing to compare".
	extractions := []types.ExtractionInput{
		doc(t, types.DocW2, `{"wages": {"gross": 50000}}`),
		doc(t, types.DocForm1040, `{"income": {"wages": 0}}`),
	}
	assert.Empty(t, RunCrossDocumentChecks(extractions))
}

func TestBusinessPLReconciliation(t *testing.T) {
	extractions := []types.ExtractionInput{
		doc(t, types.DocScheduleC, `{"income": {"gross_receipts": 500000, "net_profit": 80000}}`),
		doc(t, types.DocProfitAndLoss, `{"revenue": {"total": 505000}, "net_income": 86000}`),
	}

	checks := RunCrossDocumentChecks(extractions)

	require.Len(t, checks, 2)
	// Receipts within 1%: pass. Net income off 7%: inside the looser band.
	assert.Equal(t, types.CheckStatusPass, checks[0].Status)
	assert.Equal(t, types.CheckStatusPass, checks[1].Status)
}

func TestDepositsVsIncomeAnnualizes(t *testing.T) {
	extractions := []types.ExtractionInput{
		doc(t, types.DocBankStatement, `{"deposits": {"total": 8000}, "period": {"year": 2023, "month": 1}}`),
		doc(t, types.DocBankStatement, `{"deposits": {"total": 7000}, "period": {"year": 2023, "month": 2}}`),
		doc(t, types.DocBankStatement, `{"deposits": {"total": 9000}, "period": {"year": 2023, "month": 3}}`),
		doc(t, types.DocForm1040, `{"income": {"total": 100000}}`),
	}

	checks := RunCrossDocumentChecks(extractions)

	require.Len(t, checks, 1)
	// (8000+7000+9000) * 12 / 3 = 96000 vs 100000: 4% off, well inside 20%.
	assert.True(t, d("96000").Equal(checks[0].Left.Value))
	assert.Equal(t, types.CheckStatusPass, checks[0].Status)
}

func TestRentalReconciliationSumsProperties(t *testing.T) {
	extractions := []types.ExtractionInput{
		doc(t, types.DocScheduleE, `{"properties": [
			{"rents_received": 12000},
			{"rents_received": 18000}
		]}`),
		doc(t, types.DocRentRoll, `{"annual_rent_total": 30000}`),
	}

	checks := RunCrossDocumentChecks(extractions)

	require.Len(t, checks, 1)
	assert.True(t, d("30000").Equal(checks[0].Left.Value))
	assert.Equal(t, types.CheckStatusPass, checks[0].Status)
}

func TestOfficerCompensationReconciliation(t *testing.T) {
	extractions := []types.ExtractionInput{
		doc(t, types.DocForm1120S, `{"deductions": {"officer_compensation": 120000}}`),
		doc(t, types.DocW2, `{"wages": {"gross": 90000}}`),
	}

	checks := RunCrossDocumentChecks(extractions)

	require.Len(t, checks, 1)
	assert.Equal(t, types.CheckStatusFail, checks[0].Status)
}

func TestPartnershipIncomeReconciliation(t *testing.T) {
	extractions := []types.ExtractionInput{
		doc(t, types.DocScheduleK1, `{"income": {"ordinary_business_income": 40000}}`),
		doc(t, types.DocScheduleK1, `{"income": {"ordinary_business_income": 25000}}`),
		doc(t, types.DocForm1040, `{"schedule_e": {"partnership_income": 65000}}`),
	}

	checks := RunCrossDocumentChecks(extractions)

	require.Len(t, checks, 1)
	assert.Equal(t, types.CheckStatusPass, checks[0].Status)
}

func TestEquityRollforward(t *testing.T) {
	extractions := []types.ExtractionInput{
		doc(t, types.DocForm1120, `{"schedule_l": {
			"retained_earnings_boy": 200000,
			"retained_earnings_eoy": 290000
		}}`),
		doc(t, types.DocProfitAndLoss, `{"net_income": 100000}`),
	}

	checks := RunCrossDocumentChecks(extractions)

	require.Len(t, checks, 1)
	// Delta 90000 vs net income 100000: 10% off, on the fail-band boundary.
	assert.True(t, d("90000").Equal(checks[0].Left.Value))
	assert.Equal(t, "schedule_l.retained_earnings_delta", checks[0].Left.FieldPath,
		"the delta must not masquerade as a balance-sheet line")
	assert.Equal(t, types.CheckStatusPass, checks[0].Status)
}

func TestBankChainContinuity(t *testing.T) {
	// Three consecutive statements: the first link matches and produces no
	// check; the broken second link produces exactly one fail.
	extractions := []types.ExtractionInput{
		doc(t, types.DocBankStatement, `{
			"period": {"year": 2023, "month": 1},
			"balances": {"beginning": 500, "ending": 100}
		}`),
		doc(t, types.DocBankStatement, `{
			"period": {"year": 2023, "month": 2},
			"balances": {"beginning": 100, "ending": 100}
		}`),
		doc(t, types.DocBankStatement, `{
			"period": {"year": 2023, "month": 3},
			"balances": {"beginning": 200, "ending": 400}
		}`),
	}

	checks := RunCrossDocumentChecks(extractions)

	require.Len(t, checks, 1)
	assert.Equal(t, types.CheckStatusFail, checks[0].Status)
	assert.True(t, d("100").Equal(checks[0].Left.Value))
	assert.True(t, d("200").Equal(checks[0].Right.Value))
}

func TestBankChainOrdersByPeriod(t *testing.T) {
	// Statements arrive out of order; the chain must sort before walking.
	extractions := []types.ExtractionInput{
		doc(t, types.DocBankStatement, `{
			"period": {"start": "2023-03-01"},
			"balances": {"beginning": 200, "ending": 400}
		}`),
		doc(t, types.DocBankStatement, `{
			"period": {"start": "2023-01-01"},
			"balances": {"beginning": 500, "ending": 100}
		}`),
		doc(t, types.DocBankStatement, `{
			"period": {"start": "2023-02-01"},
			"balances": {"beginning": 100, "ending": 100}
		}`),
	}

	checks := RunCrossDocumentChecks(extractions)

	require.Len(t, checks, 1)
	assert.True(t, d("100").Equal(checks[0].Left.Value))
	assert.True(t, d("200").Equal(checks[0].Right.Value))
}

func TestRunCrossDocumentChecksIsDeterministic(t *testing.T) {
	extractions := []types.ExtractionInput{
		doc(t, types.DocW2, `{"wages": {"gross": 50000}}`),
		doc(t, types.DocForm1040, `{"income": {"wages": 60000, "total": 60000}}`),
		doc(t, types.DocScheduleC, `{"income": {"gross_receipts": 500000, "net_profit": 80000}}`),
		doc(t, types.DocProfitAndLoss, `{"revenue": {"total": 400000}, "net_income": 70000}`),
	}

	first := RunCrossDocumentChecks(extractions)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, RunCrossDocumentChecks(extractions))
	}
}
