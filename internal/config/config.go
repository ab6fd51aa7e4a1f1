package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendSQLite = "sqlite"
	BackendCSV    = "csv"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	// Backend selects the dataset implementation: "sqlite" queries the
	// snapshot through the SQL engine, "csv" scans tables held in memory.
	Backend string

	SQLiteDriver          string
	SQLiteDSN             string
	SQLitePath            string
	SQLiteMaxOpenConns    int
	SQLiteMaxIdleConns    int
	SQLiteConnMaxLifetime time.Duration
	LogSQL                bool

	// StationsCSV and MeasurementsCSV are file paths or http(s) URLs.
	StationsCSV     string
	MeasurementsCSV string

	// ReferenceDate anchors the trailing 365-day window.
	ReferenceDate time.Time
}

func LoadFromEnv() (Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := ParseLogLevel(getenvDefault("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}

	backend := strings.ToLower(getenvDefault("DATASET_BACKEND", BackendSQLite))
	switch backend {
	case BackendSQLite, BackendCSV:
	default:
		return Config{}, fmt.Errorf("invalid DATASET_BACKEND %q (allowed: sqlite, csv)", backend)
	}

	maxOpenConns, err := getenvInt("DB_MAX_OPEN_CONNS", 4)
	if err != nil {
		return Config{}, err
	}
	maxIdleConns, err := getenvInt("DB_MAX_IDLE_CONNS", 4)
	if err != nil {
		return Config{}, err
	}

	connMaxLifetimeStr := getenvDefault("DB_CONN_MAX_LIFETIME", "0s")
	connMaxLifetime, err := time.ParseDuration(connMaxLifetimeStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME %q: %w", connMaxLifetimeStr, err)
	}

	logSQLStr := getenvDefault("DB_LOG_SQL", "false")
	logSQL, err := strconv.ParseBool(logSQLStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_LOG_SQL %q: %w", logSQLStr, err)
	}

	refStr := getenvDefault("REFERENCE_DATE", "2017-08-23")
	ref, err := time.Parse(time.DateOnly, refStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid REFERENCE_DATE %q (expected YYYY-MM-DD): %w", refStr, err)
	}

	return Config{
		AppEnv:                appEnv,
		LogLevel:              level,
		HTTPAddr:              getenvDefault("HTTP_ADDR", ":8080"),
		Backend:               backend,
		SQLiteDriver:          getenvDefault("DB_DRIVER", "sqlite3"),
		SQLiteDSN:             strings.TrimSpace(os.Getenv("DB_DSN")),
		SQLitePath:            getenvDefault("SQLITE_PATH", "Resources/hawaii.sqlite"),
		SQLiteMaxOpenConns:    maxOpenConns,
		SQLiteMaxIdleConns:    maxIdleConns,
		SQLiteConnMaxLifetime: connMaxLifetime,
		LogSQL:                logSQL,
		StationsCSV:           getenvDefault("STATIONS_CSV", "Resources/hawaii_stations.csv"),
		MeasurementsCSV:       getenvDefault("MEASUREMENTS_CSV", "Resources/hawaii_measurements.csv"),
		ReferenceDate:         ref,
	}, nil
}

func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return n, nil
}
