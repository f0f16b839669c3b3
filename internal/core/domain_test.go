package core

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validTx() Transaction {
	return Transaction{
		ID:       "t1",
		Name:     "Groceries",
		Amount:   decimal.NewFromInt(40),
		Date:     time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		Category: "Expense",
	}
}

func TestTransactionValidate(t *testing.T) {
	if err := validTx().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Transaction)
		want   error
	}{
		{"missing id", func(tx *Transaction) { tx.ID = "" }, ErrMissingID},
		{"empty name", func(tx *Transaction) { tx.Name = "  " }, ErrEmptyName},
		{"negative amount", func(tx *Transaction) { tx.Amount = decimal.NewFromInt(-1) }, ErrInvalidAmount},
		{"zero date", func(tx *Transaction) { tx.Date = time.Time{} }, ErrInvalidDate},
		{"empty category", func(tx *Transaction) { tx.Category = "" }, ErrEmptyCategory},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := validTx()
			tc.mutate(&tx)
			err := tx.Validate()
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation class error, got %v", err)
			}
		})
	}
}

func TestCategoryKey(t *testing.T) {
	tx := validTx()
	tx.Category = "  InCoMe "
	if got := tx.CategoryKey(); got != CategoryIncome {
		t.Fatalf("expected %q, got %q", CategoryIncome, got)
	}
	if tx.Category != "  InCoMe " {
		t.Fatalf("display casing must be preserved, got %q", tx.Category)
	}
}

func TestSigned(t *testing.T) {
	tx := validTx()
	tx.Category = "Income"
	if !tx.Signed().Equal(decimal.NewFromInt(40)) {
		t.Fatalf("income should be positive, got %s", tx.Signed())
	}
	tx.Category = "expense"
	if !tx.Signed().Equal(decimal.NewFromInt(-40)) {
		t.Fatalf("expense should be negative, got %s", tx.Signed())
	}
}
