// Package ledger owns the authoritative local copy of the transaction
// list and orchestrates every mutation against the backend store.
//
// All mutating operations follow one protocol, commit-then-reflect:
// local state changes only after the backend confirms the mutation, so a
// failed call always leaves the canonical list exactly as it was. The
// edit machine (see edit.go) allows at most one active edit session.
package ledger

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"fintrack/internal/backend"
	"fintrack/internal/core"
)

// Event operations published after confirmed mutations.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// EventPublisher receives a notification after each confirmed mutation.
// A nil publisher disables eventing; publish failures are logged and
// never surfaced to the caller.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, op, id string) error
}

// Input carries the raw fields of a create request. Amount is accepted
// in the same loose forms as backend records (string or number).
type Input struct {
	Name     string
	Amount   any
	Date     string
	Category string
}

// fields validates the input locally and materializes backend fields.
// Validation failures happen before any network call.
func (in Input) fields() (backend.Fields, error) {
	if strings.TrimSpace(in.Name) == "" {
		return backend.Fields{}, core.ErrEmptyName
	}
	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return backend.Fields{}, err
	}
	date, err := core.ParseDate(in.Date)
	if err != nil {
		return backend.Fields{}, err
	}
	if strings.TrimSpace(in.Category) == "" {
		return backend.Fields{}, core.ErrEmptyCategory
	}
	return backend.Fields{
		Name:     strings.TrimSpace(in.Name),
		Amount:   amount,
		Date:     date,
		Category: in.Category,
	}, nil
}

// Ledger is the single authoritative view of the transaction list for
// one session. The mutex guards only local state; it is not held across
// backend calls, so an in-flight save may race a concurrent remove or
// refresh — whichever response is applied last wins, and the list is
// never left half-mutated.
type Ledger struct {
	store  backend.Store
	events EventPublisher

	// flow serializes whole edit passes (ApplyEdit); mu guards only
	// individual state transitions.
	flow sync.Mutex

	mu     sync.Mutex
	txs    []core.Transaction
	state  State
	editID string
	draft  Draft
}

func New(store backend.Store, events EventPublisher) *Ledger {
	return &Ledger{store: store, events: events}
}

// Transactions returns a copy of the current canonical list.
func (l *Ledger) Transactions() []core.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]core.Transaction, len(l.txs))
	copy(out, l.txs)
	return out
}

// Count returns the cached number of canonical entries.
func (l *Ledger) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.txs)
}

// Refresh re-fetches the full list and replaces the canonical list
// wholesale. Any in-progress edit session is discarded; the returned
// reset flag tells the caller that an unsaved draft was lost. On backend
// failure nothing changes locally.
func (l *Ledger) Refresh(ctx context.Context) (reset bool, err error) {
	records, err := l.store.List(ctx)
	if err != nil {
		return false, err
	}

	seen := make(map[string]struct{}, len(records))
	txs := make([]core.Transaction, 0, len(records))
	for _, rec := range records {
		tx, err := core.Normalize(rec)
		if err != nil {
			slog.WarnContext(ctx, "Skipping malformed backend record", "error", err)
			continue
		}
		if _, dup := seen[tx.ID]; dup {
			slog.WarnContext(ctx, "Skipping duplicate backend record", "id", tx.ID)
			continue
		}
		seen[tx.ID] = struct{}{}
		txs = append(txs, tx)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	reset = l.state != Idle
	l.txs = txs
	l.resetEdit()
	return reset, nil
}

// Create validates the input locally, then asks the backend to create
// the document and appends the confirmed entity. There is no optimistic
// insertion: an entry never appears locally without a real id.
func (l *Ledger) Create(ctx context.Context, in Input) (core.Transaction, error) {
	f, err := in.fields()
	if err != nil {
		return core.Transaction{}, err
	}

	rec, err := l.store.Create(ctx, f)
	if err != nil {
		return core.Transaction{}, err
	}
	tx, err := core.Normalize(rec)
	if err != nil {
		// The store confirmed the create but returned a record we cannot
		// use; surface it without touching the list.
		return core.Transaction{}, backend.Transport("create", err)
	}

	l.mu.Lock()
	l.txs = append(l.txs, tx)
	l.mu.Unlock()

	slog.InfoContext(ctx, "Transaction created", "id", tx.ID, "category", tx.CategoryKey())
	l.publish(ctx, EventCreated, tx.ID)
	return tx, nil
}

// Remove deletes a transaction. The backend call is attempted even when
// the id is unknown locally, so a remove can be retried safely; the
// resulting ErrNotFound is surfaced with the list unchanged. Deleting
// the entry currently under edit cancels the edit.
func (l *Ledger) Remove(ctx context.Context, id string) error {
	if err := l.store.Delete(ctx, id); err != nil {
		return err
	}

	l.mu.Lock()
	for i, tx := range l.txs {
		if tx.ID == id {
			l.txs = append(l.txs[:i], l.txs[i+1:]...)
			break
		}
	}
	if l.editID == id {
		l.resetEdit()
	}
	l.mu.Unlock()

	slog.InfoContext(ctx, "Transaction removed", "id", id)
	l.publish(ctx, EventDeleted, id)
	return nil
}

// resetEdit clears the edit machine. Callers hold the mutex.
func (l *Ledger) resetEdit() {
	l.state = Idle
	l.editID = ""
	l.draft = Draft{}
}

func (l *Ledger) publish(ctx context.Context, op, id string) {
	if l.events == nil {
		return
	}
	if err := l.events.PublishLedgerEvent(ctx, op, id); err != nil {
		// Eventing is best-effort; the mutation already committed.
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"op", op, "id", id, "error", err)
	}
}
