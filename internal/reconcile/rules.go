package reconcile

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/DealDocs/dealdocs-backend/types"
)

// Relative tolerance bands per rule. Two filings of the same number should
// agree tightly; an annualized estimate against a tax line should not.
var (
	tolTight     = bands(0.01, 0.02)
	tolReceipts  = bands(0.02, 0.05)
	tolNetIncome = bands(0.10, 0.15)
	tolDeposits  = bands(0.20, 0.50)
	tolRental    = bands(0.05, 0.10)
	tolEquity    = bands(0.10, 0.15)
	tolChain     = bands(0, 0)
)

// catalog is the fixed, ordered set of reconciliation rules. Order is part
// of the determinism contract: checks are emitted in catalog order.
var catalog = []rule{
	{name: "wage_reconciliation", run: wageReconciliation},
	{name: "business_pl_reconciliation", run: businessPLReconciliation},
	{name: "deposits_vs_income", run: depositsVsIncome},
	{name: "rental_reconciliation", run: rentalReconciliation},
	{name: "officer_compensation", run: officerCompensation},
	{name: "partnership_income", run: partnershipIncome},
	{name: "equity_rollforward", run: equityRollforward},
	{name: "bank_chain_continuity", run: bankChainContinuity},
}

// wageReconciliation compares the sum of all W-2 gross wages against the
// wage line of the individual return.
func wageReconciliation(set docSet) []types.ReconciliationCheck {
	if len(set.all(types.DocW2)) == 0 {
		return nil
	}
	ret, ok := set.first(types.DocForm1040)
	if !ok {
		return nil
	}
	check, ok := compare(
		"Sum of W-2 gross wages vs Form 1040 wage income",
		side(types.DocW2, "wages.gross", set.sum(types.DocW2, "wages.gross")),
		side(types.DocForm1040, "income.wages", ret.Data.NumberAt("income.wages")),
		tolTight,
	)
	if !ok {
		return nil
	}
	return []types.ReconciliationCheck{check}
}

// businessPLReconciliation compares the business schedule against the
// profit-and-loss statement: gross receipts vs revenue, net profit vs net
// income. Net income gets the looser band since P&L statements rarely match
// the tax return to the dollar.
func businessPLReconciliation(set docSet) []types.ReconciliationCheck {
	sched, ok := set.first(types.DocScheduleC)
	if !ok {
		return nil
	}
	pl, ok := set.first(types.DocProfitAndLoss)
	if !ok {
		return nil
	}

	var checks []types.ReconciliationCheck
	if check, ok := compare(
		"Schedule C gross receipts vs P&L total revenue",
		side(types.DocScheduleC, "income.gross_receipts", sched.Data.NumberAt("income.gross_receipts")),
		side(types.DocProfitAndLoss, "revenue.total", pl.Data.NumberAt("revenue.total")),
		tolReceipts,
	); ok {
		checks = append(checks, check)
	}
	if check, ok := compare(
		"Schedule C net profit vs P&L net income",
		side(types.DocScheduleC, "income.net_profit", sched.Data.NumberAt("income.net_profit")),
		side(types.DocProfitAndLoss, "net_income", pl.Data.NumberAt("net_income")),
		tolNetIncome,
	); ok {
		checks = append(checks, check)
	}
	return checks
}

// depositsVsIncome annualizes total bank-statement deposits (monthly total
// scaled to twelve months) and compares them to total income on the
// individual return. Deposits include transfers and other non-income cash,
// hence the very loose bands.
func depositsVsIncome(set docSet) []types.ReconciliationCheck {
	statements := set.all(types.DocBankStatement)
	if len(statements) == 0 {
		return nil
	}
	ret, ok := set.first(types.DocForm1040)
	if !ok {
		return nil
	}

	total := set.sum(types.DocBankStatement, "deposits.total")
	annualized := total.Mul(decimal.NewFromInt(12)).Div(decimal.NewFromInt(int64(len(statements))))

	check, ok := compare(
		fmt.Sprintf("Annualized bank deposits (%d statements) vs Form 1040 total income", len(statements)),
		side(types.DocBankStatement, "deposits.total", annualized),
		side(types.DocForm1040, "income.total", ret.Data.NumberAt("income.total")),
		tolDeposits,
	)
	if !ok {
		return nil
	}
	return []types.ReconciliationCheck{check}
}

// rentalReconciliation compares Schedule E rents received, summed across
// properties, against the rent roll's annual total.
func rentalReconciliation(set docSet) []types.ReconciliationCheck {
	sched, ok := set.first(types.DocScheduleE)
	if !ok {
		return nil
	}
	roll, ok := set.first(types.DocRentRoll)
	if !ok {
		return nil
	}

	rents := decimal.Zero
	if n := sched.Data.At("properties").Len(); n > 0 {
		for i := 0; i < n; i++ {
			rents = rents.Add(sched.Data.NumberAt(fmt.Sprintf("properties[%d].rents_received", i)))
		}
	} else {
		rents = sched.Data.NumberAt("rental.rents_received")
	}

	check, ok := compare(
		"Schedule E rents received vs rent roll annual total",
		side(types.DocScheduleE, "rental.rents_received", rents),
		side(types.DocRentRoll, "annual_rent_total", roll.Data.NumberAt("annual_rent_total")),
		tolRental,
	)
	if !ok {
		return nil
	}
	return []types.ReconciliationCheck{check}
}

// officerCompensation compares the S-corp officer compensation line against
// the summed W-2 wages of the same deal.
func officerCompensation(set docSet) []types.ReconciliationCheck {
	scorp, ok := set.first(types.DocForm1120S)
	if !ok {
		return nil
	}
	if len(set.all(types.DocW2)) == 0 {
		return nil
	}
	check, ok := compare(
		"Form 1120-S officer compensation vs sum of W-2 gross wages",
		side(types.DocForm1120S, "deductions.officer_compensation", scorp.Data.NumberAt("deductions.officer_compensation")),
		side(types.DocW2, "wages.gross", set.sum(types.DocW2, "wages.gross")),
		tolTight,
	)
	if !ok {
		return nil
	}
	return []types.ReconciliationCheck{check}
}

// partnershipIncome compares the summed K-1 ordinary business income against
// the Schedule E partnership income reported on the individual return.
func partnershipIncome(set docSet) []types.ReconciliationCheck {
	if len(set.all(types.DocScheduleK1)) == 0 {
		return nil
	}
	ret, ok := set.first(types.DocForm1040)
	if !ok {
		return nil
	}
	check, ok := compare(
		"Sum of K-1 ordinary business income vs Form 1040 Schedule E partnership income",
		side(types.DocScheduleK1, "income.ordinary_business_income", set.sum(types.DocScheduleK1, "income.ordinary_business_income")),
		side(types.DocForm1040, "schedule_e.partnership_income", ret.Data.NumberAt("schedule_e.partnership_income")),
		tolTight,
	)
	if !ok {
		return nil
	}
	return []types.ReconciliationCheck{check}
}

// equityRollforward compares the balance-sheet retained-earnings delta
// (ending minus beginning) against P&L net income.
func equityRollforward(set docSet) []types.ReconciliationCheck {
	corp, ok := set.first(types.DocForm1120)
	if !ok {
		corp, ok = set.first(types.DocForm1120S)
		if !ok {
			return nil
		}
	}
	pl, ok := set.first(types.DocProfitAndLoss)
	if !ok {
		return nil
	}

	delta := corp.Data.NumberAt("schedule_l.retained_earnings_eoy").
		Sub(corp.Data.NumberAt("schedule_l.retained_earnings_boy"))

	// Synthetic path: the compared value is the EOY-BOY delta, not either
	// balance-sheet line itself.
	check, ok := compare(
		"Retained earnings rollforward vs P&L net income",
		side(corp.DocumentType, "schedule_l.retained_earnings_delta", delta),
		side(types.DocProfitAndLoss, "net_income", pl.Data.NumberAt("net_income")),
		tolEquity,
	)
	if !ok {
		return nil
	}
	return []types.ReconciliationCheck{check}
}

// bankChainContinuity orders bank statements by inferred period and checks
// that each statement's ending balance carries into the next one's beginning
// balance. Matching links contribute no check; only a broken link surfaces,
// and the bands are zero so anything beyond a dollar fails outright.
func bankChainContinuity(set docSet) []types.ReconciliationCheck {
	statements := set.all(types.DocBankStatement)
	if len(statements) < 2 {
		return nil
	}

	ordered := make([]types.ExtractionInput, len(statements))
	copy(ordered, statements)
	sort.SliceStable(ordered, func(i, j int) bool {
		return periodKey(ordered[i]) < periodKey(ordered[j])
	})

	var checks []types.ReconciliationCheck
	for i := 0; i+1 < len(ordered); i++ {
		ending := ordered[i].Data.NumberAt("balances.ending")
		beginning := ordered[i+1].Data.NumberAt("balances.beginning")
		if ending.Sub(beginning).Abs().LessThanOrEqual(passAbsolute) {
			continue
		}
		checks = append(checks, buildCheck(
			fmt.Sprintf("Bank statement continuity: period %d ending vs period %d beginning",
				periodKey(ordered[i]), periodKey(ordered[i+1])),
			side(types.DocBankStatement, "balances.ending", ending),
			side(types.DocBankStatement, "balances.beginning", beginning),
			tolChain,
		))
	}
	return checks
}

// periodKey derives a sortable year*100+month key for a bank statement,
// preferring the explicit statement period start date when present.
func periodKey(ex types.ExtractionInput) int64 {
	if start := ex.Data.At("period.start").Str(); start != "" {
		for _, layout := range []string{"2006-01-02", time.RFC3339, "01/02/2006"} {
			if t, err := time.Parse(layout, start); err == nil {
				return int64(t.Year())*100 + int64(t.Month())
			}
		}
	}
	year := ex.Data.NumberAt("period.year").IntPart()
	month := ex.Data.NumberAt("period.month").IntPart()
	return year*100 + month
}
