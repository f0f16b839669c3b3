package core

import (
	"errors"
	"testing"
	"time"
)

func TestNormalize(t *testing.T) {
	raw := Record{
		"$id":      "doc_1",
		"name":     "Salary",
		"amount":   float64(100),
		"date":     "2024-01-05T00:00:00Z",
		"category": "Income",
	}

	tx, err := Normalize(raw)
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if tx.ID != "doc_1" || tx.Name != "Salary" {
		t.Fatalf("unexpected transaction %+v", tx)
	}
	if !tx.Amount.IsPositive() {
		t.Fatalf("expected positive amount, got %s", tx.Amount)
	}
	if tx.Category != "Income" || tx.CategoryKey() != CategoryIncome {
		t.Fatalf("unexpected category %q", tx.Category)
	}
	want := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	if !tx.Date.Equal(want) {
		t.Fatalf("expected %v, got %v", want, tx.Date)
	}
}

func TestNormalizePlainIDAndBareDate(t *testing.T) {
	tx, err := Normalize(Record{
		"id":     "42",
		"name":   "Rent",
		"amount": "850.50",
		"date":   "2024-02-01",
	})
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if tx.ID != "42" {
		t.Fatalf("expected id 42, got %q", tx.ID)
	}
	// Missing category falls back to "expense".
	if tx.Category != CategoryExpense {
		t.Fatalf("expected default category, got %q", tx.Category)
	}
}

func TestNormalizeNegativeAmountCoerced(t *testing.T) {
	tx, err := Normalize(Record{
		"$id":    "d",
		"name":   "Refund gone wrong",
		"amount": float64(-25),
		"date":   "2024-03-01",
	})
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if tx.Amount.IsNegative() {
		t.Fatalf("amount must be stored as magnitude, got %s", tx.Amount)
	}
}

func TestNormalizeFailures(t *testing.T) {
	cases := []struct {
		name string
		raw  Record
		want error
	}{
		{"missing id", Record{"name": "a", "amount": 1.0, "date": "2024-01-01"}, ErrMissingID},
		{"missing name", Record{"$id": "x", "amount": 1.0, "date": "2024-01-01"}, ErrEmptyName},
		{"bad amount", Record{"$id": "x", "name": "a", "amount": "abc", "date": "2024-01-01"}, ErrInvalidAmount},
		{"missing amount", Record{"$id": "x", "name": "a", "date": "2024-01-01"}, ErrInvalidAmount},
		{"bad date", Record{"$id": "x", "name": "a", "amount": 1.0, "date": "yesterday"}, ErrInvalidDate},
		{"missing date", Record{"$id": "x", "name": "a", "amount": 1.0}, ErrInvalidDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Normalize(tc.raw)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   any
		want string
		ok   bool
	}{
		{"12.34", "12.34", true},
		{"12,34", "12.34", true},
		{float64(100), "100", true},
		{float64(-40), "40", true},
		{int64(7), "7", true},
		{"", "", false},
		{"abc", "", false},
		{nil, "", false},
		{true, "", false},
	}
	for i, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("case %d: expected ok, got %v", i, err)
			}
			if got.String() != tc.want {
				t.Fatalf("case %d: expected %s, got %s", i, tc.want, got)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("case %d: expected ErrInvalidAmount, got %v", i, err)
		}
	}
}
