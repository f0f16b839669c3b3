package http

import (
	"net/http"
	"reflect"
	"testing"

	"fintrack/internal/core"
)

func seedAnalytics(t *testing.T, s *Server) {
	t.Helper()
	h := s.Server.Handler
	for _, body := range []map[string]any{
		{"name": "Salary", "amount": "100", "date": "2024-01-05", "category": "income"},
		{"name": "Groceries", "amount": "40", "date": "2024-01-10", "category": "expense"},
		{"name": "Bonus", "amount": "60", "date": "2024-02-01", "category": "income"},
	} {
		rec := doJSON(t, h, http.MethodPost, "/api/transactions", body)
		if rec.Code != http.StatusCreated {
			t.Fatalf("seed create failed: %d %s", rec.Code, rec.Body.String())
		}
	}
}

func stringSlice(v any) []string {
	raw, _ := v.([]any)
	out := make([]string, len(raw))
	for i, item := range raw {
		out[i], _ = item.(string)
	}
	return out
}

func TestMonthlyEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	seedAnalytics(t, s)

	rec := doJSON(t, s.Server.Handler, http.MethodGet, "/api/analytics/monthly", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeResponse(t, rec)

	if got := stringSlice(body["months"]); !reflect.DeepEqual(got, []string{"January", "February"}) {
		t.Errorf("months = %v", got)
	}
	if got := stringSlice(body["income"]); !reflect.DeepEqual(got, []string{"100", "60"}) {
		t.Errorf("income = %v", got)
	}
	if got := stringSlice(body["expense"]); !reflect.DeepEqual(got, []string{"40", "0"}) {
		t.Errorf("expense = %v", got)
	}
}

func TestSavingsEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	seedAnalytics(t, s)

	rec := doJSON(t, s.Server.Handler, http.MethodGet, "/api/analytics/savings", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeResponse(t, rec)

	if got := stringSlice(body["savings"]); !reflect.DeepEqual(got, []string{"60", "120"}) {
		t.Errorf("savings = %v", got)
	}
}

func TestContributionEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	seedAnalytics(t, s)

	rec := doJSON(t, s.Server.Handler, http.MethodGet, "/api/analytics/contribution?categories=income,expense,travel", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeResponse(t, rec)

	contribution, _ := body["contribution"].(map[string]any)
	if contribution["income"] != "160" {
		t.Errorf("income contribution = %v, want 160", contribution["income"])
	}
	if contribution["expense"] != "40" {
		t.Errorf("expense contribution = %v, want 40", contribution["expense"])
	}
	// Requested but unseen categories report zero.
	if contribution["travel"] != "0" {
		t.Errorf("travel contribution = %v, want 0", contribution["travel"])
	}
}

func TestAnalyticsCacheInvalidation(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Server.Handler
	seedAnalytics(t, s)

	rec := doJSON(t, h, http.MethodGet, "/api/analytics/monthly", nil)
	first := decodeResponse(t, rec)

	// Cached: identical second read.
	rec = doJSON(t, h, http.MethodGet, "/api/analytics/monthly", nil)
	second := decodeResponse(t, rec)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("repeated read should be served from cache unchanged")
	}

	// A mutation purges the cache and the next read reflects it.
	rec = doJSON(t, h, http.MethodPost, "/api/transactions", map[string]any{
		"name": "Dinner", "amount": "25", "date": "2024-02-14", "category": "expense",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create failed: %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/analytics/monthly", nil)
	third := decodeResponse(t, rec)
	if got := stringSlice(third["expense"]); !reflect.DeepEqual(got, []string{"40", "25"}) {
		t.Errorf("expense after mutation = %v, want [40 25]", got)
	}
}

func TestMonthlyLegacyLabelGrouping(t *testing.T) {
	s, store := newTestServer(t)

	store.Seed(
		core.Record{"id": "t1", "name": "A", "amount": "10", "date": "2023-03-01", "category": "income"},
		core.Record{"id": "t2", "name": "B", "amount": "5", "date": "2024-03-01", "category": "income"},
	)
	rec := doJSON(t, s.Server.Handler, http.MethodGet, "/api/transactions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh failed: %d", rec.Code)
	}

	// Default grouping keeps the two Marches apart.
	rec = doJSON(t, s.Server.Handler, http.MethodGet, "/api/analytics/monthly", nil)
	body := decodeResponse(t, rec)
	if got := stringSlice(body["months"]); !reflect.DeepEqual(got, []string{"March", "March"}) {
		t.Errorf("months = %v, want two March entries", got)
	}

	// Legacy mode merges by month name.
	rec = doJSON(t, s.Server.Handler, http.MethodGet, "/api/analytics/monthly?group=label", nil)
	body = decodeResponse(t, rec)
	if got := stringSlice(body["months"]); !reflect.DeepEqual(got, []string{"March"}) {
		t.Errorf("legacy months = %v, want one merged March", got)
	}
	if got := stringSlice(body["income"]); !reflect.DeepEqual(got, []string{"15"}) {
		t.Errorf("legacy income = %v, want [15]", got)
	}
}
