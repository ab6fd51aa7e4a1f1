package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"climate-api/internal/config"
	"climate-api/internal/db"
	"climate-api/internal/httpapi"
	"climate-api/internal/modules/climate"
	"climate-api/internal/modules/climate/dataset"
	climateviews "climate-api/internal/modules/climate/views"
)

const (
	loadTimeout     = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"backend", cfg.Backend,
		"sqliteDriver", cfg.SQLiteDriver,
		"sqlitePath", cfg.SQLitePath,
		"sqliteMaxOpenConns", cfg.SQLiteMaxOpenConns,
		"sqliteMaxIdleConns", cfg.SQLiteMaxIdleConns,
		"sqliteConnMaxLifetime", cfg.SQLiteConnMaxLifetime,
		"logSQL", cfg.LogSQL,
		"stationsCSV", cfg.StationsCSV,
		"measurementsCSV", cfg.MeasurementsCSV,
		"referenceDate", cfg.ReferenceDate.Format(time.DateOnly),
	)

	ds, err := OpenDataset(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := ds.Close(); closeErr != nil {
			slog.Error("dataset close", "error", closeErr)
		}
	}()

	if err := climateviews.LoadTemplates(); err != nil {
		return err
	}

	mux := httpapi.NewMux(ds)
	climate.RegisterFeature(mux, ds, cfg.ReferenceDate)

	return serve(ctx, httpapi.NewServer(cfg, mux))
}

// OpenDataset opens the configured backend and checks that it can answer a
// query. Any failure here means the service must not start.
func OpenDataset(ctx context.Context, cfg config.Config) (dataset.ClimateDataset, error) {
	loadCtx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()

	var ds dataset.ClimateDataset
	switch cfg.Backend {
	case config.BackendCSV:
		mem, err := dataset.LoadMemory(loadCtx, http.DefaultClient, cfg.StationsCSV, cfg.MeasurementsCSV)
		if err != nil {
			return nil, err
		}
		ds = mem
	case config.BackendSQLite, "":
		conn, err := db.Open(cfg, db.ReadOnly)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", dataset.ErrDatasetUnavailable, err)
		}
		ds = dataset.NewSQLite(conn)
	default:
		return nil, fmt.Errorf("unknown dataset backend %q", cfg.Backend)
	}

	if _, err := ds.Stations(loadCtx); err != nil {
		_ = ds.Close()
		return nil, err
	}
	slog.Info("dataset ready", "backend", cfg.Backend)
	return ds, nil
}

func serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}
