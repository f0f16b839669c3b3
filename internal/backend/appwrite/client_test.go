package appwrite

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/backend"
)

func testConfig(endpoint string) Config {
	return Config{
		Endpoint:     endpoint,
		ProjectID:    "proj",
		DatabaseID:   "db",
		CollectionID: "col",
	}
}

func TestNewValidatesConfig(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error for empty config")
	}
	if _, err := New(Config{Endpoint: "http://x", ProjectID: "p"}); err == nil {
		t.Fatal("expected error for missing database/collection")
	}
}

func TestList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/databases/db/collections/col/documents" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("X-Appwrite-Project"); got != "proj" {
			t.Errorf("unexpected project header %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"total": 1,
			"documents": []map[string]any{
				{"$id": "d1", "name": "Salary", "amount": 100, "date": "2024-01-05T00:00:00Z", "category": "income"},
			},
		})
	}))
	defer srv.Close()

	cli, err := New(testConfig(srv.URL))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	records, err := cli.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 || records[0]["$id"] != "d1" {
		t.Fatalf("unexpected records %+v", records)
	}
}

func TestCreateSendsDocumentData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			DocumentID string         `json:"documentId"`
			Data       map[string]any `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.DocumentID != "unique()" {
			t.Errorf("unexpected documentId %q", req.DocumentID)
		}
		if req.Data["name"] != "Rent" {
			t.Errorf("unexpected data %+v", req.Data)
		}
		// The amount must arrive as an exact decimal string, not a
		// float-rounded JSON number.
		if req.Data["amount"] != "850.13" {
			t.Errorf("unexpected amount %v (%T)", req.Data["amount"], req.Data["amount"])
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"$id": "new_1", "name": "Rent"})
	}))
	defer srv.Close()

	cli, _ := New(testConfig(srv.URL))
	rec, err := cli.Create(context.Background(), backend.Fields{
		Name:     "Rent",
		Amount:   decimal.RequireFromString("850.13"),
		Date:     time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Category: "expense",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec["$id"] != "new_1" {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestNotFoundClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	cli, _ := New(testConfig(srv.URL))
	if err := cli.Delete(context.Background(), "gone"); !errors.Is(err, backend.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := cli.Update(context.Background(), "gone", backend.Fields{}); !errors.Is(err, backend.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTransportClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	cli, _ := New(testConfig(srv.URL))
	_, err := cli.List(context.Background())
	if !backend.IsTransport(err) {
		t.Fatalf("expected TransportError, got %v", err)
	}

	// Network-level failures classify the same way.
	srv.Close()
	_, err = cli.List(context.Background())
	if !backend.IsTransport(err) {
		t.Fatalf("expected TransportError after close, got %v", err)
	}
}
