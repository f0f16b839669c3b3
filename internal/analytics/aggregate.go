// Package analytics computes chart-ready series from a snapshot of the
// canonical transaction list. Every function is pure: inputs are never
// mutated and repeated calls on the same snapshot return equal results.
package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// MonthKey identifies a calendar month. Grouping is keyed by the full
// (year, month) pair; the bare month name is only a display label.
type MonthKey struct {
	Year  int
	Month time.Month
}

// Label returns the display label for the month ("January", ...).
func (k MonthKey) Label() string {
	return k.Month.String()
}

func (k MonthKey) before(o MonthKey) bool {
	if k.Year != o.Year {
		return k.Year < o.Year
	}
	return k.Month < o.Month
}

// MonthGroup is one bucket of transactions sharing a month key.
type MonthGroup struct {
	Key          MonthKey
	Transactions []core.Transaction
}

// GroupByMonth buckets transactions by (year, month) in the order the
// months first appear in the input. Callers that need calendar order
// pass the result through SortChronological.
func GroupByMonth(txs []core.Transaction) []MonthGroup {
	index := make(map[MonthKey]int)
	var groups []MonthGroup
	for _, tx := range txs {
		key := MonthKey{Year: tx.Date.Year(), Month: tx.Date.Month()}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, MonthGroup{Key: key})
		}
		groups[i].Transactions = append(groups[i].Transactions, tx)
	}
	return groups
}

// GroupByMonthLabel buckets solely by month name, merging the same month
// across different years. This reproduces the historical charting
// behavior and exists only as an opt-in compatibility mode; GroupByMonth
// is the active grouping. The key of a merged group carries the year of
// its first appearance.
func GroupByMonthLabel(txs []core.Transaction) []MonthGroup {
	index := make(map[time.Month]int)
	var groups []MonthGroup
	for _, tx := range txs {
		m := tx.Date.Month()
		i, ok := index[m]
		if !ok {
			i = len(groups)
			index[m] = i
			groups = append(groups, MonthGroup{Key: MonthKey{Year: tx.Date.Year(), Month: m}})
		}
		groups[i].Transactions = append(groups[i].Transactions, tx)
	}
	return groups
}

// SortChronological returns a new slice of the groups ordered by actual
// year and month. Month names alone do not sort chronologically, so
// ordering always goes through the composite key.
func SortChronological(groups []MonthGroup) []MonthGroup {
	out := make([]MonthGroup, len(groups))
	copy(out, groups)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Key.before(out[j].Key)
	})
	return out
}

// Categories returns the distinct normalized categories in first-
// appearance order.
func Categories(txs []core.Transaction) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, tx := range txs {
		key := tx.CategoryKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

// CategoryContribution sums transaction magnitudes per category for the
// requested category set. Categories are compared case-insensitively.
// A nil or empty set means "every category observed in the input";
// a requested category with no transactions contributes zero.
func CategoryContribution(txs []core.Transaction, categories []string) map[string]decimal.Decimal {
	if len(categories) == 0 {
		categories = Categories(txs)
	}

	totals := make(map[string]decimal.Decimal, len(categories))
	for _, c := range categories {
		totals[strings.ToLower(strings.TrimSpace(c))] = decimal.Zero
	}
	for _, tx := range txs {
		key := tx.CategoryKey()
		if total, ok := totals[key]; ok {
			totals[key] = total.Add(tx.Amount)
		}
	}
	return totals
}
