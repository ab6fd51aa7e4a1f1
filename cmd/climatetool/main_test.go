package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"climate-api/internal/config"
	"climate-api/internal/db"
	"climate-api/internal/modules/climate/dataset"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		SQLiteDriver:       "sqlite3",
		SQLitePath:         filepath.Join(t.TempDir(), "hawaii.sqlite"),
		SQLiteMaxOpenConns: 1,
		SQLiteMaxIdleConns: 1,
	}
}

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestRun_usage(t *testing.T) {
	cfg := testConfig(t)
	for _, args := range [][]string{nil, {"frobnicate"}} {
		err := run(context.Background(), cfg, args, &bytes.Buffer{})
		if !errors.Is(err, errUsage) {
			t.Errorf("run(%v) = %v; want errUsage", args, err)
		}
	}
}

func TestRun_migrateThenStatus(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	var out bytes.Buffer
	if err := run(ctx, cfg, []string{"migrate"}, &out); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !strings.Contains(out.String(), "migrations applied") {
		t.Errorf("migrate output = %q", out.String())
	}

	out.Reset()
	if err := run(ctx, cfg, []string{"status"}, &out); err != nil {
		t.Fatalf("status: %v", err)
	}
	if got := strings.Fields(out.String()); len(got) != 2 || got[0] != "0001" || got[1] != "0002" {
		t.Errorf("status output = %q; want 0001 and 0002", out.String())
	}
}

func TestRun_import(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()
	stations := writeCSV(t, "stations.csv",
		"station,name,latitude,longitude,elevation\nUSC00519397,\"WAIKIKI 717.2, HI US\",21.2716,-157.8168,3.0\n")
	measurements := writeCSV(t, "measurements.csv",
		"station,date,prcp,tobs\nUSC00519397,2017-08-22,,82\nUSC00519397,2017-08-23,0.0,81\n")

	var out bytes.Buffer
	args := []string{"import", "-stations", stations, "-measurements", measurements}
	if err := run(ctx, cfg, args, &out); err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out.String(), "imported 1 stations, 2 measurements") {
		t.Errorf("import output = %q", out.String())
	}

	// A second import replaces rather than appends.
	if err := run(ctx, cfg, args, &bytes.Buffer{}); err != nil {
		t.Fatalf("re-import: %v", err)
	}

	conn, err := db.Open(cfg, db.ReadOnly)
	if err != nil {
		t.Fatalf("open snapshot: %v", err)
	}
	ds := dataset.NewSQLite(conn)
	t.Cleanup(func() { _ = ds.Close() })

	rows, err := ds.PrecipitationSince(ctx, "2017-01-01")
	if err != nil {
		t.Fatalf("PrecipitationSince: %v", err)
	}
	if len(rows) != 2 || rows[0].Prcp != nil {
		t.Errorf("rows = %+v; want 2 rows, first with null prcp", rows)
	}
}

func TestRun_importBadCSV(t *testing.T) {
	cfg := testConfig(t)
	stations := writeCSV(t, "stations.csv", "station,name\nA,B\n")
	measurements := writeCSV(t, "measurements.csv", "station,date,prcp,tobs\n")

	err := run(context.Background(), cfg, []string{"import", "-stations", stations, "-measurements", measurements}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "latitude") {
		t.Errorf("err = %v; want missing column error", err)
	}
	if _, statErr := os.Stat(cfg.SQLitePath); !os.IsNotExist(statErr) {
		t.Errorf("snapshot should not be created when parsing fails; stat err = %v", statErr)
	}
}

func TestRun_importUnknownFlag(t *testing.T) {
	err := run(context.Background(), testConfig(t), []string{"import", "-nope"}, &bytes.Buffer{})
	if err == nil {
		t.Error("run(import -nope) = nil; want error")
	}
}
