package db

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"climate-api/internal/config"
)

func TestBuildDSN(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "hawaii.sqlite")

	rw := config.Config{SQLiteDriver: "sqlite3", SQLitePath: existing}
	dsn, err := buildDSN(rw, ReadWrite)
	if err != nil {
		t.Fatalf("buildDSN(ReadWrite): %v", err)
	}
	if !strings.HasPrefix(dsn, "file:"+existing+"?") {
		t.Errorf("dsn = %q; want file: prefix", dsn)
	}
	if !strings.Contains(dsn, "_journal_mode=DELETE") || strings.Contains(dsn, "mode=ro") {
		t.Errorf("read-write dsn = %q", dsn)
	}

	conn, err := Open(rw, ReadWrite)
	if err != nil {
		t.Fatalf("Open(ReadWrite): %v", err)
	}
	_ = conn.Close()

	dsn, err = buildDSN(rw, ReadOnly)
	if err != nil {
		t.Fatalf("buildDSN(ReadOnly): %v", err)
	}
	if !strings.Contains(dsn, "mode=ro") || !strings.Contains(dsn, "_query_only=true") {
		t.Errorf("read-only dsn = %q", dsn)
	}
}

func TestBuildDSN_fileURIKeepsQuery(t *testing.T) {
	cfg := config.Config{SQLitePath: "file::memory:?cache=shared"}
	dsn, err := buildDSN(cfg, ReadOnly)
	if err != nil {
		t.Fatalf("buildDSN: %v", err)
	}
	if !strings.HasPrefix(dsn, "file::memory:?cache=shared&") {
		t.Errorf("dsn = %q; want query appended with &", dsn)
	}
}

func TestBuildDSN_explicitDSNWins(t *testing.T) {
	cfg := config.Config{SQLiteDSN: "file:custom.db?mode=ro", SQLitePath: "/does/not/exist"}
	dsn, err := buildDSN(cfg, ReadOnly)
	if err != nil {
		t.Fatalf("buildDSN: %v", err)
	}
	if dsn != cfg.SQLiteDSN {
		t.Errorf("dsn = %q; want %q", dsn, cfg.SQLiteDSN)
	}
}

func TestOpen_readOnlyMissingSnapshot(t *testing.T) {
	cfg := config.Config{
		SQLiteDriver: "sqlite3",
		SQLitePath:   filepath.Join(t.TempDir(), "missing.sqlite"),
	}
	_, err := Open(cfg, ReadOnly)
	if !errors.Is(err, ErrSnapshotMissing) {
		t.Fatalf("Open(missing) err = %v; want ErrSnapshotMissing", err)
	}
}

func TestOpen_withStatementLogging(t *testing.T) {
	cfg := config.Config{
		SQLiteDriver:       "sqlite3",
		SQLitePath:         filepath.Join(t.TempDir(), "nested", "app.sqlite"),
		SQLiteMaxOpenConns: 1,
		LogSQL:             true,
	}
	conn, err := Open(cfg, ReadWrite)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = conn.Close() }()

	if _, ok := conn.Driver().(*loggingDriver); !ok {
		t.Errorf("driver = %T; want *loggingDriver", conn.Driver())
	}
	if _, err := conn.Exec(`CREATE TABLE t (id INTEGER)`); err != nil {
		t.Fatalf("exec: %v", err)
	}
}
