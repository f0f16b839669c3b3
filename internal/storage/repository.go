// Package storage implements the backend port on an embedded SQLite
// database, for local-first deployments, and hosts the mutation audit
// log written by the worker.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"fintrack/internal/backend"
	"fintrack/internal/core"
)

type SQLiteStore struct {
	db *sql.DB
}

// Ensure interface conformance
var _ backend.Store = (*SQLiteStore)(nil)

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]core.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, amount, date, category FROM transactions ORDER BY id`)
	if err != nil {
		return nil, backend.Transport("list", err)
	}
	defer rows.Close()

	var records []core.Record
	for rows.Next() {
		var (
			id                           int64
			name, amount, date, category string
		)
		if err := rows.Scan(&id, &name, &amount, &date, &category); err != nil {
			return nil, backend.Transport("list", err)
		}
		records = append(records, core.Record{
			"id":       strconv.FormatInt(id, 10),
			"name":     name,
			"amount":   amount,
			"date":     date,
			"category": category,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, backend.Transport("list", err)
	}
	return records, nil
}

func (s *SQLiteStore) Create(ctx context.Context, f backend.Fields) (core.Record, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (name, amount, date, category) VALUES (?, ?, ?, ?)`,
		f.Name, f.Amount.String(), f.Date.Format(time.RFC3339), f.Category)
	if err != nil {
		return nil, backend.Transport("create", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, backend.Transport("create", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", id, "name", f.Name, "amount", f.Amount.String())

	return f.Record(strconv.FormatInt(id, 10)), nil
}

func (s *SQLiteStore) Update(ctx context.Context, id string, f backend.Fields) (core.Record, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET name = ?, amount = ?, date = ?, category = ? WHERE id = ?`,
		f.Name, f.Amount.String(), f.Date.Format(time.RFC3339), f.Category, id)
	if err != nil {
		return nil, backend.Transport("update", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, backend.Transport("update", err)
	}
	if n == 0 {
		return nil, backend.ErrNotFound
	}
	return f.Record(id), nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return backend.Transport("delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return backend.Transport("delete", err)
	}
	if n == 0 {
		return backend.ErrNotFound
	}
	return nil
}

// AuditEntry is one recorded ledger mutation.
type AuditEntry struct {
	Op            string
	TransactionID string
	OccurredAt    time.Time
}

// AppendAudit records a ledger mutation event in the audit log.
func (s *SQLiteStore) AppendAudit(ctx context.Context, e AuditEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_log (op, transaction_id, occurred_at) VALUES (?, ?, ?)`,
		e.Op, e.TransactionID, e.OccurredAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// RecentAudit returns up to limit audit entries, newest first.
func (s *SQLiteStore) RecentAudit(ctx context.Context, limit int) ([]AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT op, transaction_id, occurred_at FROM audit_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		var occurredAt string
		if err := rows.Scan(&e.Op, &e.TransactionID, &occurredAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, occurredAt); err == nil {
			e.OccurredAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
