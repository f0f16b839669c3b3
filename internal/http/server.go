// Package http exposes the transaction ledger and its analytics as a
// JSON API.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/ledger"
	applog "fintrack/internal/log"
	"fintrack/internal/session"
	"fintrack/internal/storage"
)

// AuditReader exposes the recent mutation history. Only backends with a
// local audit log provide one; nil disables the endpoint.
type AuditReader interface {
	RecentAudit(ctx context.Context, limit int) ([]storage.AuditEntry, error)
}

// Options configures a Server.
type Options struct {
	Addr     string
	Ledger   *ledger.Ledger
	Sessions *session.Manager
	Audit    AuditReader
	Logger   *applog.Logger

	// Analytics results cache tuning.
	CacheSize int
	CacheTTL  time.Duration
}

type Server struct {
	http.Server

	ledger     *ledger.Ledger
	sessions   *session.Manager
	audit      AuditReader
	structured *applog.StructuredLogger

	rateLimiter *rateLimiter

	// Serialized analytics responses, purged on every mutation.
	analyticsCache *cache.LRUCache[[]byte]
	cacheManager   *cache.Manager

	startedAt    time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(opts Options) *Server {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 128
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.Sessions == nil {
		opts.Sessions = session.NewManager("")
	}
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.Config{Component: applog.ComponentHTTP})
	}

	s := &Server{
		ledger:         opts.Ledger,
		sessions:       opts.Sessions,
		audit:          opts.Audit,
		structured:     applog.NewStructuredLogger(opts.Logger),
		rateLimiter:    newRateLimiter(),
		analyticsCache: cache.NewLRUCache[[]byte](opts.CacheSize, opts.CacheTTL),
		cacheManager:   cache.NewManager(),
		startedAt:      time.Now(),
	}
	s.cacheManager.Register(s.analyticsCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	root := http.NewServeMux()
	root.HandleFunc("GET /healthz", s.handleHealth)
	root.HandleFunc("GET /readyz", s.handleReady)

	api := http.NewServeMux()
	api.HandleFunc("GET /api/transactions", s.handleListTransactions)
	api.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	api.HandleFunc("PATCH /api/transactions/{id}", s.handleUpdateTransaction)
	api.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)
	api.HandleFunc("GET /api/analytics/contribution", s.handleContribution)
	api.HandleFunc("GET /api/analytics/monthly", s.handleMonthly)
	api.HandleFunc("GET /api/analytics/savings", s.handleSavings)
	api.HandleFunc("GET /api/audit", s.handleAudit)
	root.Handle("/api/", s.sessions.Middleware(api))

	// Every request carries a context logger tagged with its request ID.
	handler := applog.RequestIDMiddleware(func(r *http.Request) string {
		return r.Header.Get("X-Request-ID")
	})(root)
	handler = s.withCommon(handler)
	handler = applog.Middleware(opts.Logger)(handler)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// withCommon adds request tracing, security headers, rate limiting, and
// request logging.
func (s *Server) withCommon(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		r.Header.Set("X-Request-ID", requestID)
		w.Header().Set("X-Request-ID", requestID)
		setSecurityHeaders(w)

		s.structured.LogHTTPStart(r.Context(), r, clientIP)

		// Rate limit mutations only; reads are cheap and cached.
		switch r.Method {
		case http.MethodPost, http.MethodPatch, http.MethodDelete:
			if !s.rateLimiter.allow(clientIP) {
				applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
					"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
				w.Header().Set("Retry-After", "60")
				http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				return
			}
		}

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		s.structured.LogHTTPEnd(r.Context(), r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// invalidateAnalytics drops every cached analytics result. Called after
// any confirmed mutation.
func (s *Server) invalidateAnalytics() {
	s.analyticsCache.Purge()
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).String(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]any{
		"ledger": map[string]any{
			"transactions": s.ledger.Count(),
			"status":       "ok",
		},
		"analytics_cache": map[string]any{
			"entries": s.analyticsCache.Size(),
			"status":  "ok",
		},
		"rate_limiter": map[string]any{
			"active_clients": s.rateLimiter.activeClients(),
			"status":         "ok",
		},
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ready",
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: errorBody{
			Kind:    "not_found",
			Message: "audit log is not available for this backend",
		}})
		return
	}

	limit := parseIntParam(r.URL.Query().Get("limit"), 20)
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	entries, err := s.audit.RecentAudit(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	type entryJSON struct {
		Op            string `json:"op"`
		TransactionID string `json:"transaction_id"`
		OccurredAt    string `json:"occurred_at"`
	}
	out := make([]entryJSON, len(entries))
	for i, e := range entries {
		out[i] = entryJSON{
			Op:            e.Op,
			TransactionID: e.TransactionID,
			OccurredAt:    e.OccurredAt.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": out})
}

// decodeBody decodes a JSON request body into dst, limiting its size.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
