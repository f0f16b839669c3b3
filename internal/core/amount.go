// Package core defines the canonical transaction entity and the
// normalization of raw backend records into it.
//
// This file contains amount parsing. Raw records carry amounts either as
// JSON numbers or as strings; both are coerced to a non-negative
// decimal magnitude.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a raw amount value to a non-negative decimal
// magnitude. Accepted inputs are strings (dot or comma decimal
// separator), JSON numbers (float64), and the integer types the SQLite
// driver hands back. Negative inputs are coerced via absolute value;
// the sign of a transaction is a property of its category, not of the
// stored amount.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("12,34")  -> 12.34, nil
//	ParseAmount(-40.0)    -> 40,    nil
//	ParseAmount("abc")    -> 0,     ErrInvalidAmount
func ParseAmount(raw any) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
		if s == "" {
			return decimal.Zero, ErrInvalidAmount
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, ErrInvalidAmount
		}
		return d.Abs(), nil
	case float64:
		return decimal.NewFromFloat(v).Abs(), nil
	case float32:
		return decimal.NewFromFloat32(v).Abs(), nil
	case int:
		return decimal.NewFromInt(int64(v)).Abs(), nil
	case int64:
		return decimal.NewFromInt(v).Abs(), nil
	case decimal.Decimal:
		return v.Abs(), nil
	case nil:
		return decimal.Zero, ErrInvalidAmount
	default:
		return decimal.Zero, ErrInvalidAmount
	}
}
