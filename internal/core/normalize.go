package core

import (
	"strings"
	"time"
)

// Record is a loosely typed document as returned by a backend store.
// Field presence is not guaranteed; Normalize is the only way in.
type Record map[string]any

// dateLayouts are tried in order when parsing a record's date field.
// The hosted store writes RFC 3339; the create form submits bare dates.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

func (r Record) str(keys ...string) string {
	for _, k := range keys {
		if v, ok := r[k]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

// Normalize converts a raw backend record into a canonical Transaction.
// A missing identifier or name, or an unparseable amount or date, yields
// an error wrapping ErrValidation. A missing category defaults to
// "expense"; the stored casing is preserved for display and lower-cased
// only at comparison time. Pure: the input record is never modified.
func Normalize(raw Record) (Transaction, error) {
	// The hosted document store names its identifier "$id"; the local
	// stores use plain "id".
	id := raw.str("$id", "id")
	if id == "" {
		return Transaction{}, ErrMissingID
	}

	name := raw.str("name")
	if name == "" {
		return Transaction{}, ErrEmptyName
	}

	amount, err := ParseAmount(raw["amount"])
	if err != nil {
		return Transaction{}, err
	}

	date, err := ParseDate(raw.str("date"))
	if err != nil {
		return Transaction{}, err
	}

	category := raw.str("category")
	if category == "" {
		category = CategoryExpense
	}

	return Transaction{
		ID:       id,
		Name:     name,
		Amount:   amount,
		Date:     date,
		Category: category,
	}, nil
}

// ParseDate parses a transaction date, accepting RFC 3339 timestamps and
// bare "2006-01-02" dates.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDate
}
