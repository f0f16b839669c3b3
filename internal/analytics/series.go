package analytics

import (
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// series is the chart series a category feeds, if any.
type series int

const (
	seriesNone series = iota
	seriesIncome
	seriesExpense
)

// seriesByCategory decides which monthly series a category contributes
// to. Categories absent from the table ("savings" among them) feed
// neither series; that exclusion is policy, extend the table rather than
// special-casing call sites.
var seriesByCategory = map[string]series{
	core.CategoryIncome:  seriesIncome,
	core.CategoryExpense: seriesExpense,
}

// MonthlyIncomeExpense computes parallel income and expense totals, one
// entry per group, in group order.
func MonthlyIncomeExpense(groups []MonthGroup) (income, expense []decimal.Decimal) {
	income = make([]decimal.Decimal, len(groups))
	expense = make([]decimal.Decimal, len(groups))
	for i, g := range groups {
		in, out := decimal.Zero, decimal.Zero
		for _, tx := range g.Transactions {
			switch seriesByCategory[tx.CategoryKey()] {
			case seriesIncome:
				in = in.Add(tx.Amount)
			case seriesExpense:
				out = out.Add(tx.Amount)
			}
		}
		income[i], expense[i] = in, out
	}
	return income, expense
}

// CumulativeSavings computes the running savings balance:
// out[i] = out[i-1] + income[i] - expense[i], with out[-1] = 0.
// Inputs are read only; series of unequal length are truncated to the
// shorter one.
func CumulativeSavings(income, expense []decimal.Decimal) []decimal.Decimal {
	n := len(income)
	if len(expense) < n {
		n = len(expense)
	}
	out := make([]decimal.Decimal, n)
	running := decimal.Zero
	for i := 0; i < n; i++ {
		running = running.Add(income[i]).Sub(expense[i])
		out[i] = running
	}
	return out
}
