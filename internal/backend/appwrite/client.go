// Package appwrite implements the backend port against an
// Appwrite-style document store over its REST API. Documents live in one
// collection; the store assigns "$id" identifiers.
package appwrite

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"fintrack/internal/backend"
	"fintrack/internal/core"
)

type Config struct {
	Endpoint     string // e.g. https://cloud.appwrite.io/v1
	ProjectID    string
	APIKey       string
	DatabaseID   string
	CollectionID string
}

type Client struct {
	cfg  Config
	http *http.Client
}

// Ensure interface conformance
var _ backend.Store = (*Client)(nil)

func New(cfg Config) (*Client, error) {
	cfg.Endpoint = strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	if cfg.Endpoint == "" {
		return nil, errors.New("missing appwrite endpoint")
	}
	if cfg.ProjectID == "" {
		return nil, errors.New("missing appwrite project id")
	}
	if cfg.DatabaseID == "" || cfg.CollectionID == "" {
		return nil, errors.New("missing appwrite database or collection id")
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (c *Client) documentsURL(id string) string {
	base := fmt.Sprintf("%s/databases/%s/collections/%s/documents",
		c.cfg.Endpoint, c.cfg.DatabaseID, c.cfg.CollectionID)
	if id == "" {
		return base
	}
	return base + "/" + id
}

func (c *Client) List(ctx context.Context) ([]core.Record, error) {
	body, err := c.do(ctx, http.MethodGet, c.documentsURL(""), nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Total     int           `json:"total"`
		Documents []core.Record `json:"documents"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, backend.Transport("list", fmt.Errorf("decode response: %w", err))
	}

	slog.DebugContext(ctx, "Listed documents", "total", payload.Total)
	return payload.Documents, nil
}

func (c *Client) Create(ctx context.Context, f backend.Fields) (core.Record, error) {
	req := map[string]any{
		"documentId": "unique()",
		"data":       documentData(f),
	}
	body, err := c.do(ctx, http.MethodPost, c.documentsURL(""), req)
	if err != nil {
		return nil, err
	}

	var rec core.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, backend.Transport("create", fmt.Errorf("decode response: %w", err))
	}
	return rec, nil
}

func (c *Client) Update(ctx context.Context, id string, f backend.Fields) (core.Record, error) {
	req := map[string]any{"data": documentData(f)}
	body, err := c.do(ctx, http.MethodPatch, c.documentsURL(id), req)
	if err != nil {
		return nil, err
	}

	var rec core.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, backend.Transport("update", fmt.Errorf("decode response: %w", err))
	}
	return rec, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, c.documentsURL(id), nil)
	return err
}

func documentData(f backend.Fields) map[string]any {
	// Amounts travel as decimal strings; a JSON number would round-trip
	// through float64 and lose exactness.
	return map[string]any{
		"name":     f.Name,
		"amount":   f.Amount.String(),
		"date":     f.Date.Format(time.RFC3339),
		"category": f.Category,
	}
}

// do performs one API call and classifies failures: 404 becomes
// ErrNotFound, everything else non-2xx (and any network error) becomes a
// TransportError with an opaque message.
func (c *Client) do(ctx context.Context, method, url string, payload any) ([]byte, error) {
	op := strings.ToLower(method)

	var reqBody io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, backend.Transport(op, fmt.Errorf("encode request: %w", err))
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, backend.Transport(op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Appwrite-Project", c.cfg.ProjectID)
	if c.cfg.APIKey != "" {
		req.Header.Set("X-Appwrite-Key", c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, backend.Transport(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, backend.Transport(op, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, backend.ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		slog.WarnContext(ctx, "Document store request failed",
			"method", method, "status", resp.StatusCode)
		return nil, backend.Transport(op, fmt.Errorf("status %d", resp.StatusCode))
	}
	return body, nil
}
