// Package backend defines the port to the remote document store holding
// the transaction collection, plus the error kinds its implementations
// surface.
package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// Store is the document-store collaborator. Implementations return raw
// records; the caller normalizes them. Update replaces every field of
// the document except its identifier.
type Store interface {
	// List returns all transaction records visible to the current session.
	List(ctx context.Context) ([]core.Record, error)

	// Create stores a new document and returns it with its assigned id.
	Create(ctx context.Context, f Fields) (core.Record, error)

	// Update replaces the mutable fields of the document with the given
	// id. Fails with ErrNotFound when the id is absent.
	Update(ctx context.Context, id string, f Fields) (core.Record, error)

	// Delete removes the document. Deleting an absent id yields
	// ErrNotFound; retrying a delete is safe.
	Delete(ctx context.Context, id string) error
}

// Fields carries the mutable fields of a transaction document.
type Fields struct {
	Name     string
	Amount   decimal.Decimal
	Date     time.Time
	Category string
}

// Record serializes the fields into a raw record carrying the given id.
func (f Fields) Record(id string) core.Record {
	return core.Record{
		"id":       id,
		"name":     f.Name,
		"amount":   f.Amount.String(),
		"date":     f.Date.Format(time.RFC3339),
		"category": f.Category,
	}
}

// ErrNotFound reports that the target document no longer exists in the
// store.
var ErrNotFound = errors.New("transaction not found")

// TransportError wraps a network or store failure whose message is
// opaque to the caller. The canonical list is never mutated when one is
// returned.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("backend %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Transport wraps err as a TransportError for the given operation.
func Transport(op string, err error) error {
	return &TransportError{Op: op, Err: err}
}

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
