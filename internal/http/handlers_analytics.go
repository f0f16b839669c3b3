package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/analytics"
)

// Analytics endpoints aggregate the ledger's current local list; the
// server refreshes it at startup and on every transaction list request.
// Results are cached serialized and purged on every mutation.

func (s *Server) handleContribution(w http.ResponseWriter, r *http.Request) {
	s.serveCachedAnalytics(w, r, func() (any, error) {
		var categories []string
		if raw := strings.TrimSpace(r.URL.Query().Get("categories")); raw != "" {
			for _, c := range strings.Split(raw, ",") {
				if c = strings.TrimSpace(c); c != "" {
					categories = append(categories, c)
				}
			}
		}

		totals := analytics.CategoryContribution(s.ledger.Transactions(), categories)
		out := make(map[string]string, len(totals))
		for category, amount := range totals {
			out[category] = amount.String()
		}
		return map[string]any{"contribution": out}, nil
	})
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	s.serveCachedAnalytics(w, r, func() (any, error) {
		groups := s.groupParam(r)
		income, expense := analytics.MonthlyIncomeExpense(groups)
		return map[string]any{
			"months":  groupLabels(groups),
			"income":  decimalStrings(income),
			"expense": decimalStrings(expense),
		}, nil
	})
}

func (s *Server) handleSavings(w http.ResponseWriter, r *http.Request) {
	s.serveCachedAnalytics(w, r, func() (any, error) {
		groups := s.groupParam(r)
		income, expense := analytics.MonthlyIncomeExpense(groups)
		savings := analytics.CumulativeSavings(income, expense)
		return map[string]any{
			"months":  groupLabels(groups),
			"savings": decimalStrings(savings),
		}, nil
	})
}

// groupParam builds the month groups. group=label opts into the legacy
// merge-by-month-name behavior; the default keeps years apart.
func (s *Server) groupParam(r *http.Request) []analytics.MonthGroup {
	txs := s.ledger.Transactions()
	if r.URL.Query().Get("group") == "label" {
		return analytics.GroupByMonthLabel(txs)
	}
	return analytics.SortChronological(analytics.GroupByMonth(txs))
}

// serveCachedAnalytics answers from the results cache when possible,
// otherwise computes, caches, and writes the payload.
func (s *Server) serveCachedAnalytics(w http.ResponseWriter, r *http.Request, compute func() (any, error)) {
	key := r.URL.Path
	if r.URL.RawQuery != "" {
		key += "?" + r.URL.RawQuery
	}

	if body, found := s.analyticsCache.Get(key); found {
		slog.DebugContext(r.Context(), "Analytics cache hit", "key", key)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
		return
	}

	payload, err := compute()
	if err != nil {
		writeError(w, r, err)
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.analyticsCache.Set(key, body)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func groupLabels(groups []analytics.MonthGroup) []string {
	labels := make([]string, len(groups))
	for i, g := range groups {
		labels[i] = g.Key.Label()
	}
	return labels
}

func decimalStrings(values []decimal.Decimal) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}
