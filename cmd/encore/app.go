package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"karolbroda.com/encore/internal/catalog"
	"karolbroda.com/encore/internal/config"
	"karolbroda.com/encore/internal/prefs"
)

const (
	logFileName    = "encore.log"
	sqliteFileName = "prefs.db"
)

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// fileLogger writes to the state dir, since the player owns the terminal.
func fileLogger(level slog.Level) (*slog.Logger, io.Closer, error) {
	dir, err := config.StateDir()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to locate state directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(dir, logFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return newLogger(f, level), f, nil
}

func openCatalog(cfg *config.Config, logger *slog.Logger) (*catalog.Catalog, error) {
	cat := catalog.Default()
	if cfg.CatalogFile != "" {
		loaded, err := catalog.LoadFile(cfg.CatalogFile)
		if err != nil {
			return nil, err
		}
		cat = loaded
	}

	if n := cat.Enrich(cfg.MediaRoot); n > 0 {
		logger.Debug("catalog enriched from tags", "songs", n)
	}
	return cat, nil
}

func openPrefs(cfg *config.Config, logger *slog.Logger) (*prefs.Store, error) {
	var backend prefs.Backend

	switch cfg.PrefsBackend {
	case "memory":
		backend = prefs.NewMemoryBackend()

	case "sqlite":
		path := cfg.PrefsPath
		if path == "" {
			dir, err := config.ConfigDir()
			if err != nil {
				return nil, fmt.Errorf("failed to locate config directory: %w", err)
			}
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create config directory: %w", err)
			}
			path = filepath.Join(dir, sqliteFileName)
		}
		db, err := prefs.OpenSQLite(path, prefs.SQLiteOptions{
			BusyTimeout: 5 * time.Second,
			Synchronous: "NORMAL",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open preference database: %w", err)
		}
		backend = db

	case "", "file":
		dir := cfg.PrefsPath
		if dir == "" {
			var err error
			dir, err = config.ConfigDir()
			if err != nil {
				return nil, fmt.Errorf("failed to locate config directory: %w", err)
			}
		}
		files, err := prefs.NewFileBackend(dir)
		if err != nil {
			return nil, err
		}
		backend = files

	default:
		return nil, fmt.Errorf("unknown preference backend %q", cfg.PrefsBackend)
	}

	logger.Debug("preferences opened", "backend", cfg.PrefsBackend)
	return prefs.NewStore(backend, logger), nil
}
