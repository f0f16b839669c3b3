// Package memory provides an in-memory document store used for local
// development and as the test double for the backend port.
package memory

import (
	"context"
	"fmt"
	"sync"

	"fintrack/internal/backend"
	"fintrack/internal/core"
)

type Store struct {
	mu      sync.Mutex
	nextID  int
	records []core.Record
}

func New() *Store {
	return &Store{}
}

// Seed inserts records with pre-assigned ids, for tests and demo data.
// Records without an id are skipped.
func (s *Store) Seed(records ...core.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		if id, _ := r["id"].(string); id == "" {
			continue
		}
		s.records = append(s.records, cloneRecord(r))
	}
}

func (s *Store) List(_ context.Context) ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Record, len(s.records))
	for i, r := range s.records {
		out[i] = cloneRecord(r)
	}
	return out, nil
}

func (s *Store) Create(_ context.Context, f backend.Fields) (core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := fmt.Sprintf("mem_%d", s.nextID)
	rec := f.Record(id)
	s.records = append(s.records, rec)
	return cloneRecord(rec), nil
}

func (s *Store) Update(_ context.Context, id string, f backend.Fields) (core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.records {
		if rid, _ := r["id"].(string); rid == id {
			rec := f.Record(id)
			s.records[i] = rec
			return cloneRecord(rec), nil
		}
	}
	return nil, backend.ErrNotFound
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.records {
		if rid, _ := r["id"].(string); rid == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return nil
		}
	}
	return backend.ErrNotFound
}

func cloneRecord(r core.Record) core.Record {
	out := make(core.Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
