package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	CategoryIncome  = "income"
	CategoryExpense = "expense"
	CategorySavings = "savings"
)

// ErrValidation is the base error for all local validation failures.
// Every validation sentinel below wraps it, so callers can test the
// whole class with errors.Is(err, ErrValidation).
var ErrValidation = errors.New("validation failed")

var (
	ErrMissingID     = fmt.Errorf("%w: missing transaction identifier", ErrValidation)
	ErrEmptyName     = fmt.Errorf("%w: empty transaction name", ErrValidation)
	ErrInvalidAmount = fmt.Errorf("%w: invalid amount", ErrValidation)
	ErrInvalidDate   = fmt.Errorf("%w: invalid date", ErrValidation)
	ErrEmptyCategory = fmt.Errorf("%w: empty category", ErrValidation)
)

// Transaction is the canonical ledger entity. Amount is always a
// non-negative magnitude; the sign shown to users is derived from the
// category, never stored.
type Transaction struct {
	ID       string
	Name     string
	Amount   decimal.Decimal
	Date     time.Time
	Category string
}

// CategoryKey returns the category normalized for comparisons.
// The original casing stays in Category for display.
func (t Transaction) CategoryKey() string {
	return strings.ToLower(strings.TrimSpace(t.Category))
}

// Signed returns the amount with the presentation sign applied:
// positive for income, negative for everything else.
func (t Transaction) Signed() decimal.Decimal {
	if t.CategoryKey() == CategoryIncome {
		return t.Amount
	}
	return t.Amount.Neg()
}

func (t Transaction) Validate() error {
	if t.ID == "" {
		return ErrMissingID
	}
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if t.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}
