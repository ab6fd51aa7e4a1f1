package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"climate-api/internal/config"

	_ "github.com/mattn/go-sqlite3"
)

// Mode controls how the snapshot file is opened.
type Mode int

const (
	// ReadOnly is used by the API: the snapshot must already exist and is never written.
	ReadOnly Mode = iota
	// ReadWrite is used by the import tooling; missing directories are created.
	ReadWrite
)

var ErrSnapshotMissing = errors.New("sqlite snapshot not found")

func Open(cfg config.Config, mode Mode) (*sql.DB, error) {
	dsn, err := buildDSN(cfg, mode)
	if err != nil {
		return nil, err
	}

	var db *sql.DB
	if cfg.LogSQL {
		connector, err := NewLoggingConnector(dsn, slog.Default().With("component", "sql"))
		if err != nil {
			return nil, fmt.Errorf("db connector: %w", err)
		}
		db = sql.OpenDB(connector)
	} else {
		db, err = sql.Open(cfg.SQLiteDriver, dsn)
		if err != nil {
			return nil, fmt.Errorf("db open: %w", err)
		}
	}

	if cfg.SQLiteMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.SQLiteMaxOpenConns)
	}
	if cfg.SQLiteMaxIdleConns >= 0 {
		db.SetMaxIdleConns(cfg.SQLiteMaxIdleConns)
	}
	if cfg.SQLiteConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.SQLiteConnMaxLifetime)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	return db, nil
}

func buildDSN(cfg config.Config, mode Mode) (string, error) {
	if cfg.SQLiteDSN != "" {
		return cfg.SQLiteDSN, nil
	}

	path := cfg.SQLitePath
	plain := strings.TrimPrefix(path, "file:")
	if i := strings.Index(plain, "?"); i >= 0 {
		plain = plain[:i]
	}

	params := []string{"_busy_timeout=5000"}
	switch mode {
	case ReadOnly:
		if plain != ":memory:" {
			if _, err := os.Stat(plain); err != nil {
				return "", fmt.Errorf("%w: %s: %w", ErrSnapshotMissing, plain, err)
			}
		}
		params = append(params, "mode=ro", "_query_only=true")
	case ReadWrite:
		dir := filepath.Dir(plain)
		if dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return "", fmt.Errorf("mkdir %s: %w", dir, err)
			}
		}
		// Rollback journal: a read-only open of the snapshot must not need -wal/-shm files.
		params = append(params, "_foreign_keys=on", "_journal_mode=DELETE")
	}

	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + strings.Join(params, "&"), nil
	}

	return fmt.Sprintf("file:%s?%s", path, strings.Join(params, "&")), nil
}
