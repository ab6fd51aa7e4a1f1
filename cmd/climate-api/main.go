package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"climate-api/internal/app"
	"climate-api/internal/config"
	"climate-api/internal/logging"
)

const appName = "climate-api"

// Overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	envErr := godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	slog.SetDefault(logging.New(cfg, version, appName))
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", envErr)
	}

	slog.Info("starting",
		"version", version,
		"env", cfg.AppEnv,
		"log_level", cfg.LogLevel.String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}

	slog.Info("shutting down")
}
