package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

func tx(id, category string, amount int64, date string) core.Transaction {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return core.Transaction{
		ID:       id,
		Name:     "tx " + id,
		Amount:   decimal.NewFromInt(amount),
		Date:     d,
		Category: category,
	}
}

// The reference scenario: two January entries, one February entry.
func sampleTxs() []core.Transaction {
	return []core.Transaction{
		tx("1", "income", 100, "2024-01-05"),
		tx("2", "expense", 40, "2024-01-10"),
		tx("3", "income", 60, "2024-02-01"),
	}
}

func TestGroupByMonth(t *testing.T) {
	groups := GroupByMonth(sampleTxs())
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Key.Label() != "January" || groups[1].Key.Label() != "February" {
		t.Fatalf("unexpected labels %q, %q", groups[0].Key.Label(), groups[1].Key.Label())
	}
	if len(groups[0].Transactions) != 2 || len(groups[1].Transactions) != 1 {
		t.Fatalf("unexpected group sizes %d, %d", len(groups[0].Transactions), len(groups[1].Transactions))
	}
	if groups[0].Transactions[0].ID != "1" || groups[0].Transactions[1].ID != "2" {
		t.Fatalf("group order must follow input order")
	}
}

func TestGroupByMonthKeepsYearsApart(t *testing.T) {
	txs := []core.Transaction{
		tx("a", "income", 10, "2023-01-01"),
		tx("b", "income", 20, "2024-01-01"),
	}
	if got := len(GroupByMonth(txs)); got != 2 {
		t.Fatalf("composite keys must separate years, got %d groups", got)
	}
	// The legacy label grouping merges them on purpose.
	if got := len(GroupByMonthLabel(txs)); got != 1 {
		t.Fatalf("label grouping must merge same-name months, got %d groups", got)
	}
}

func TestGroupByMonthIdempotent(t *testing.T) {
	txs := sampleTxs()
	a := GroupByMonth(txs)
	b := GroupByMonth(txs)
	if len(a) != len(b) {
		t.Fatalf("groupings differ in length")
	}
	for i := range a {
		if a[i].Key != b[i].Key || len(a[i].Transactions) != len(b[i].Transactions) {
			t.Fatalf("groupings differ at %d", i)
		}
	}
}

func TestSortChronological(t *testing.T) {
	txs := []core.Transaction{
		tx("a", "income", 10, "2024-02-01"),
		tx("b", "income", 10, "2023-11-01"),
		tx("c", "income", 10, "2024-01-01"),
	}
	groups := SortChronological(GroupByMonth(txs))
	want := []MonthKey{
		{Year: 2023, Month: time.November},
		{Year: 2024, Month: time.January},
		{Year: 2024, Month: time.February},
	}
	for i, k := range want {
		if groups[i].Key != k {
			t.Fatalf("position %d: expected %v, got %v", i, k, groups[i].Key)
		}
	}
}

func TestMonthlyIncomeExpense(t *testing.T) {
	income, expense := MonthlyIncomeExpense(GroupByMonth(sampleTxs()))
	wantIncome := []int64{100, 60}
	wantExpense := []int64{40, 0}
	for i := range wantIncome {
		if !income[i].Equal(decimal.NewFromInt(wantIncome[i])) {
			t.Fatalf("income[%d] = %s, want %d", i, income[i], wantIncome[i])
		}
		if !expense[i].Equal(decimal.NewFromInt(wantExpense[i])) {
			t.Fatalf("expense[%d] = %s, want %d", i, expense[i], wantExpense[i])
		}
	}
}

func TestMonthlyIncomeExpenseExcludesOtherCategories(t *testing.T) {
	txs := []core.Transaction{
		tx("1", "income", 100, "2024-01-05"),
		tx("2", "Savings", 50, "2024-01-06"),
	}
	income, expense := MonthlyIncomeExpense(GroupByMonth(txs))
	if !income[0].Equal(decimal.NewFromInt(100)) {
		t.Fatalf("income = %s, want 100", income[0])
	}
	if !expense[0].IsZero() {
		t.Fatalf("savings must not count as expense, got %s", expense[0])
	}
}

func TestCumulativeSavings(t *testing.T) {
	income, expense := MonthlyIncomeExpense(GroupByMonth(sampleTxs()))
	got := CumulativeSavings(income, expense)
	want := []int64{60, 120}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i := range want {
		if !got[i].Equal(decimal.NewFromInt(want[i])) {
			t.Fatalf("savings[%d] = %s, want %d", i, got[i], want[i])
		}
	}

	// Prefix-sum property and input immutability on a second run.
	again := CumulativeSavings(income, expense)
	for i := range again {
		prev := decimal.Zero
		if i > 0 {
			prev = again[i-1]
		}
		if !again[i].Equal(prev.Add(income[i]).Sub(expense[i])) {
			t.Fatalf("prefix-sum property violated at %d", i)
		}
	}
}

func TestCategoryContribution(t *testing.T) {
	txs := sampleTxs()

	t.Run("explicit set", func(t *testing.T) {
		totals := CategoryContribution(txs, []string{"Income", "expense", "savings"})
		if !totals["income"].Equal(decimal.NewFromInt(160)) {
			t.Fatalf("income = %s, want 160", totals["income"])
		}
		if !totals["expense"].Equal(decimal.NewFromInt(40)) {
			t.Fatalf("expense = %s, want 40", totals["expense"])
		}
		if !totals["savings"].IsZero() {
			t.Fatalf("absent category must contribute zero, got %s", totals["savings"])
		}
	})

	t.Run("default set is observed categories", func(t *testing.T) {
		totals := CategoryContribution(txs, nil)
		if len(totals) != 2 {
			t.Fatalf("expected 2 categories, got %d", len(totals))
		}
	})

	t.Run("totals add up", func(t *testing.T) {
		totals := CategoryContribution(txs, nil)
		sum := decimal.Zero
		for _, v := range totals {
			sum = sum.Add(v)
		}
		expected := decimal.Zero
		for _, tr := range txs {
			expected = expected.Add(tr.Amount)
		}
		if !sum.Equal(expected) {
			t.Fatalf("sum of contributions %s != sum of amounts %s", sum, expected)
		}
	})
}

func TestCategoriesOrder(t *testing.T) {
	txs := []core.Transaction{
		tx("1", "Expense", 1, "2024-01-01"),
		tx("2", "income", 1, "2024-01-02"),
		tx("3", "EXPENSE", 1, "2024-01-03"),
	}
	got := Categories(txs)
	if len(got) != 2 || got[0] != "expense" || got[1] != "income" {
		t.Fatalf("unexpected categories %v", got)
	}
}
