// Package factory builds the configured transaction store. It lives apart
// from the backend port types because the concrete stores import those
// types themselves.
package factory

import (
	"fmt"
	"log/slog"

	"fintrack/internal/backend"
	"fintrack/internal/backend/appwrite"
	"fintrack/internal/backend/memory"
	"fintrack/internal/config"
	"fintrack/internal/storage"
)

// BackendType identifies a transaction store implementation.
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	AppwriteBackend BackendType = "appwrite"
)

func (t BackendType) String() string { return string(t) }

// IsValid reports whether the type names a known store.
func (t BackendType) IsValid() bool {
	switch t {
	case MemoryBackend, SQLiteBackend, AppwriteBackend:
		return true
	}
	return false
}

// Result holds a constructed store and its optional cleanup.
type Result struct {
	Store   backend.Store
	Cleanup func() error
}

// New builds the store selected by the application config.
func New(cfg *config.Config, logger *slog.Logger) (*Result, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	backendType := BackendType(cfg.DataBackend)
	if !backendType.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}

	switch backendType {
	case SQLiteBackend:
		return newSQLite(cfg, logger)
	case AppwriteBackend:
		return newAppwrite(cfg, logger)
	default:
		logger.Info("Initialized memory backend")
		return &Result{Store: memory.New()}, nil
	}
}

func newSQLite(cfg *config.Config, logger *slog.Logger) (*Result, error) {
	store, err := storage.NewSQLiteStore(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize SQLite store: %w", err)
	}

	logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)

	return &Result{
		Store:   store,
		Cleanup: store.Close,
	}, nil
}

func newAppwrite(cfg *config.Config, logger *slog.Logger) (*Result, error) {
	client, err := appwrite.New(appwrite.Config{
		Endpoint:     cfg.AppwriteEndpoint,
		ProjectID:    cfg.AppwriteProjectID,
		APIKey:       cfg.AppwriteAPIKey,
		DatabaseID:   cfg.AppwriteDatabaseID,
		CollectionID: cfg.AppwriteCollectionID,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize Appwrite client: %w", err)
	}

	logger.Info("Initialized Appwrite backend",
		"endpoint", cfg.AppwriteEndpoint,
		"database_id", cfg.AppwriteDatabaseID,
		"collection_id", cfg.AppwriteCollectionID)

	return &Result{Store: client}, nil
}
