package config

import (
	"log/slog"
	"testing"
	"time"
)

var configEnvKeys = []string{
	"APP_ENV", "LOG_LEVEL", "HTTP_ADDR", "DATASET_BACKEND",
	"DB_DRIVER", "DB_DSN", "SQLITE_PATH", "DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS",
	"DB_CONN_MAX_LIFETIME", "DB_LOG_SQL", "STATIONS_CSV", "MEASUREMENTS_CSV", "REFERENCE_DATE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnvKeys {
		t.Setenv(k, "")
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	got, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v, want nil", err)
	}

	if got.AppEnv != "dev" {
		t.Errorf("AppEnv = %q, want %q", got.AppEnv, "dev")
	}
	if got.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want %v", got.LogLevel, slog.LevelInfo)
	}
	if got.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", got.HTTPAddr, ":8080")
	}
	if got.Backend != BackendSQLite {
		t.Errorf("Backend = %q, want %q", got.Backend, BackendSQLite)
	}
	if got.SQLiteDriver != "sqlite3" {
		t.Errorf("SQLiteDriver = %q, want sqlite3", got.SQLiteDriver)
	}
	if got.SQLitePath != "Resources/hawaii.sqlite" {
		t.Errorf("SQLitePath = %q, want Resources/hawaii.sqlite", got.SQLitePath)
	}
	if got.SQLiteMaxOpenConns != 4 || got.SQLiteMaxIdleConns != 4 {
		t.Errorf("pool = %d/%d, want 4/4", got.SQLiteMaxOpenConns, got.SQLiteMaxIdleConns)
	}
	if got.LogSQL {
		t.Error("LogSQL = true, want false")
	}
	want := time.Date(2017, 8, 23, 0, 0, 0, 0, time.UTC)
	if !got.ReferenceDate.Equal(want) {
		t.Errorf("ReferenceDate = %v, want %v", got.ReferenceDate, want)
	}
}

func TestLoadFromEnv_AppEnv_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		appEnv string
	}{
		{name: "staging", appEnv: "staging"},
		{name: "uppercase", appEnv: "DEV"},
		{name: "random", appEnv: "whatever"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("APP_ENV", tt.appEnv)

			if _, err := LoadFromEnv(); err == nil {
				t.Fatalf("LoadFromEnv() error = nil, want non-nil")
			}
		})
	}
}

func TestLoadFromEnv_Backend(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "sqlite", in: "sqlite", want: BackendSQLite},
		{name: "csv", in: "csv", want: BackendCSV},
		{name: "case insensitive", in: " CSV ", want: BackendCSV},
		{name: "unknown", in: "postgres", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("DATASET_BACKEND", tt.in)

			got, err := LoadFromEnv()
			if tt.wantErr {
				if err == nil {
					t.Fatal("LoadFromEnv() error = nil, want non-nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadFromEnv() error = %v, want nil", err)
			}
			if got.Backend != tt.want {
				t.Errorf("Backend = %q, want %q", got.Backend, tt.want)
			}
		})
	}
}

func TestLoadFromEnv_InvalidValues(t *testing.T) {
	tests := []struct {
		key string
		val string
	}{
		{key: "DB_MAX_OPEN_CONNS", val: "many"},
		{key: "DB_MAX_IDLE_CONNS", val: "1.5"},
		{key: "DB_CONN_MAX_LIFETIME", val: "forever"},
		{key: "DB_LOG_SQL", val: "maybe"},
		{key: "REFERENCE_DATE", val: "08/23/2017"},
		{key: "LOG_LEVEL", val: "loud"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)

			if _, err := LoadFromEnv(); err == nil {
				t.Fatalf("LoadFromEnv() with %s=%q error = nil, want non-nil", tt.key, tt.val)
			}
		})
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_ADDR", "  127.0.0.1:9090 ")
	t.Setenv("SQLITE_PATH", "/data/climate.sqlite")
	t.Setenv("DB_LOG_SQL", "true")
	t.Setenv("DB_CONN_MAX_LIFETIME", "5m")
	t.Setenv("STATIONS_CSV", "https://example.com/stations.csv")
	t.Setenv("REFERENCE_DATE", "2020-01-31")

	got, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v, want nil", err)
	}
	if got.HTTPAddr != "127.0.0.1:9090" {
		t.Errorf("HTTPAddr = %q", got.HTTPAddr)
	}
	if got.SQLitePath != "/data/climate.sqlite" {
		t.Errorf("SQLitePath = %q", got.SQLitePath)
	}
	if !got.LogSQL {
		t.Error("LogSQL = false, want true")
	}
	if got.SQLiteConnMaxLifetime != 5*time.Minute {
		t.Errorf("SQLiteConnMaxLifetime = %v, want 5m", got.SQLiteConnMaxLifetime)
	}
	if got.StationsCSV != "https://example.com/stations.csv" {
		t.Errorf("StationsCSV = %q", got.StationsCSV)
	}
	if got.ReferenceDate.Format("2006-01-02") != "2020-01-31" {
		t.Errorf("ReferenceDate = %v", got.ReferenceDate)
	}
}

func TestParseLogLevel_Valid(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want slog.Level
	}{
		{name: "debug", in: "debug", want: slog.LevelDebug},
		{name: "info", in: "info", want: slog.LevelInfo},
		{name: "warning", in: "warning", want: slog.LevelWarn},
		{name: "error", in: "error", want: slog.LevelError},
		{name: "case insensitive", in: "DeBuG", want: slog.LevelDebug},
		{name: "trims whitespace", in: "  warn \n", want: slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLogLevel(tt.in)
			if err != nil {
				t.Fatalf("ParseLogLevel(%q) error = %v, want nil", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseLogLevel_Invalid(t *testing.T) {
	for _, in := range []string{"", "nope", "warns", "1"} {
		got, err := ParseLogLevel(in)
		if err == nil {
			t.Fatalf("ParseLogLevel(%q) error = nil, want non-nil", in)
		}
		if got != slog.LevelInfo {
			t.Errorf("ParseLogLevel(%q) = %v, want %v on error", in, got, slog.LevelInfo)
		}
	}
}
