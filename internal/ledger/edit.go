package ledger

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/backend"
	"fintrack/internal/core"
)

// State is the edit machine's position. At most one transaction is in
// Editing or Saving at any time.
type State int

const (
	Idle State = iota
	Editing
	Saving
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Editing:
		return "editing"
	case Saving:
		return "saving"
	default:
		return "unknown"
	}
}

var (
	ErrNoActiveEdit   = errors.New("no active edit session")
	ErrSaveInProgress = errors.New("save already in progress")
)

// Draft holds the transient, unsaved field overrides of the transaction
// under edit. Nil means "not overridden". Not persisted anywhere.
type Draft struct {
	Name     *string
	Amount   *decimal.Decimal
	Date     *time.Time
	Category *string
}

func (d *Draft) merge(p Draft) {
	if p.Name != nil {
		d.Name = p.Name
	}
	if p.Amount != nil {
		d.Amount = p.Amount
	}
	if p.Date != nil {
		d.Date = p.Date
	}
	if p.Category != nil {
		d.Category = p.Category
	}
}

// Session returns the edit machine's current state, the id under edit,
// and a copy of the draft.
func (l *Ledger) Session() (State, string, Draft) {
	l.mu.Lock()
	defer l.mu.Unlock()
	d := Draft{}
	d.merge(l.draft)
	return l.state, l.editID, d
}

// BeginEdit starts editing the given transaction, seeding the draft
// from its current field values. Unknown ids are a silent no-op.
// Starting a new edit while another is active replaces the prior draft
// (last writer wins; there is no queueing).
func (l *Ledger) BeginEdit(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, tx := range l.txs {
		if tx.ID != id {
			continue
		}
		name, amount, date, category := tx.Name, tx.Amount, tx.Date, tx.Category
		l.state = Editing
		l.editID = id
		l.draft = Draft{Name: &name, Amount: &amount, Date: &date, Category: &category}
		return true
	}
	return false
}

// UpdateDraft merges partial field overrides into the current draft.
// Valid only while a session is active; never touches the backend or
// the canonical list.
func (l *Ledger) UpdateDraft(p Draft) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == Idle {
		return ErrNoActiveEdit
	}
	l.draft.merge(p)
	return nil
}

// CommitEdit validates the draft, saves it to the backend, and replaces
// the canonical entry's fields (everything but the id) on success. On
// backend failure the machine returns to Editing with the draft intact,
// so nothing the user typed is lost; the canonical list is untouched
// either way until the backend confirms.
func (l *Ledger) CommitEdit(ctx context.Context) error {
	l.mu.Lock()
	switch l.state {
	case Idle:
		l.mu.Unlock()
		return ErrNoActiveEdit
	case Saving:
		l.mu.Unlock()
		return ErrSaveInProgress
	}

	f, err := l.draftFields()
	if err != nil {
		l.mu.Unlock()
		return err
	}
	id := l.editID
	l.state = Saving
	l.mu.Unlock()

	// The lock is not held across the save; a concurrent Remove or
	// Refresh may legitimately reset the session meanwhile.
	rec, saveErr := l.store.Update(ctx, id, f)

	l.mu.Lock()
	interrupted := l.state != Saving || l.editID != id
	if saveErr != nil {
		if !interrupted {
			l.state = Editing
		}
		l.mu.Unlock()
		return saveErr
	}

	tx, err := core.Normalize(rec)
	if err != nil {
		// Fall back to the fields we sent; the backend confirmed them.
		tx = core.Transaction{
			ID: id, Name: f.Name, Amount: f.Amount, Date: f.Date, Category: f.Category,
		}
	}
	for i := range l.txs {
		if l.txs[i].ID == id {
			tx.ID = id
			l.txs[i] = tx
			break
		}
	}
	if !interrupted {
		l.resetEdit()
	}
	l.mu.Unlock()

	slog.InfoContext(ctx, "Transaction updated", "id", id)
	l.publish(ctx, EventUpdated, id)
	return nil
}

// ApplyEdit runs a complete edit pass for id as one serialized
// operation: begin a session, merge the overrides, commit. The machine
// holds a single session and callers arrive on separate goroutines, so
// the sequence must not interleave — otherwise one caller's overrides
// could commit onto another caller's target. Unknown ids report
// backend.ErrNotFound without touching the session.
func (l *Ledger) ApplyEdit(ctx context.Context, id string, p Draft) error {
	l.flow.Lock()
	defer l.flow.Unlock()

	if !l.BeginEdit(id) {
		return backend.ErrNotFound
	}
	if err := l.UpdateDraft(p); err != nil {
		return err
	}
	return l.CommitEdit(ctx)
}

// draftFields validates the draft and materializes backend fields.
// Callers hold the mutex. The draft is seeded from the entity at
// BeginEdit, so date and category are always defined; name and amount
// are the two a user can blank out.
func (l *Ledger) draftFields() (backend.Fields, error) {
	d := l.draft
	if d.Name == nil || strings.TrimSpace(*d.Name) == "" {
		return backend.Fields{}, core.ErrEmptyName
	}
	if d.Amount == nil || d.Amount.IsNegative() {
		return backend.Fields{}, core.ErrInvalidAmount
	}
	if d.Date == nil || d.Date.IsZero() {
		return backend.Fields{}, core.ErrInvalidDate
	}
	category := core.CategoryExpense
	if d.Category != nil && strings.TrimSpace(*d.Category) != "" {
		category = *d.Category
	}
	return backend.Fields{
		Name:     strings.TrimSpace(*d.Name),
		Amount:   *d.Amount,
		Date:     *d.Date,
		Category: category,
	}, nil
}
