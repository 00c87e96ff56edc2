package storage

import (
	"fmt"
	"log/slog"

	"humblerss/rssproxy/pkg/config"
	"humblerss/rssproxy/pkg/journal"
)

// Open creates the backend selected by cfg.Backend.
func Open(cfg config.JournalConfig, logger *slog.Logger) (journal.Storage, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryStorage(), nil
	case "sqlite":
		s, err := NewSQLiteStorage(SQLiteConfig{
			Driver:       cfg.SQLite.Driver,
			Path:         cfg.SQLite.Path,
			MaxOpenConns: cfg.SQLite.MaxOpenConns,
			WALMode:      cfg.SQLite.WALMode,
			BusyTimeout:  cfg.SQLite.BusyTimeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, journal.NewStorageError(cfg.Backend, "open", fmt.Errorf("unknown backend %q", cfg.Backend))
	}
}
