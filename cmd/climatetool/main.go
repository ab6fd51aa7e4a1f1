package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/joho/godotenv"

	"climate-api/internal/config"
	"climate-api/internal/db"
	"climate-api/internal/logging"
	"climate-api/internal/migrate"
	"climate-api/internal/modules/climate/dataset"
)

const usage = `usage: climatetool <command> [flags]
  migrate   apply pending schema migrations to SQLITE_PATH
  import    load station and measurement CSVs into SQLITE_PATH (replaces existing rows)
  status    list applied migrations
`

var errUsage = errors.New("usage")

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.New(cfg, "dev", "climatetool"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		} else {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, args []string, out io.Writer) error {
	if len(args) < 1 {
		return errUsage
	}

	switch args[0] {
	case "migrate":
		return withDB(cfg, func(conn *sql.DB) error {
			if err := migrate.Run(ctx, conn); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			_, _ = fmt.Fprintln(out, "migrations applied")
			return nil
		})
	case "import":
		return runImport(ctx, cfg, args[1:], out)
	case "status":
		return withDB(cfg, func(conn *sql.DB) error {
			applied, err := migrate.AppliedVersions(ctx, conn)
			if err != nil {
				return fmt.Errorf("status: %w", err)
			}
			versions := make([]string, 0, len(applied))
			for v := range applied {
				versions = append(versions, v)
			}
			sort.Strings(versions)
			for _, v := range versions {
				_, _ = fmt.Fprintln(out, v)
			}
			return nil
		})
	default:
		return fmt.Errorf("unknown command: %s: %w", args[0], errUsage)
	}
}

func runImport(ctx context.Context, cfg config.Config, args []string, out io.Writer) error {
	flags := flag.NewFlagSet("import", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	stationsSrc := flags.String("stations", cfg.StationsCSV, "stations CSV path or URL")
	measurementsSrc := flags.String("measurements", cfg.MeasurementsCSV, "measurements CSV path or URL")
	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("import: %w", err)
	}

	stations, err := readSource(ctx, *stationsSrc, dataset.ReadStations)
	if err != nil {
		return err
	}
	measurements, err := readSource(ctx, *measurementsSrc, dataset.ReadMeasurements)
	if err != nil {
		return err
	}

	return withDB(cfg, func(conn *sql.DB) error {
		if err := migrate.Run(ctx, conn); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		if err := dataset.Import(ctx, conn, stations, measurements); err != nil {
			return fmt.Errorf("import: %w", err)
		}
		slog.Info("import complete", "stations", len(stations), "measurements", len(measurements))
		_, _ = fmt.Fprintf(out, "imported %d stations, %d measurements\n", len(stations), len(measurements))
		return nil
	})
}

func readSource[T any](ctx context.Context, src string, read func(io.Reader) ([]T, error)) ([]T, error) {
	rc, err := dataset.OpenSource(ctx, http.DefaultClient, src)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	rows, err := read(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src, err)
	}
	return rows, nil
}

func withDB(cfg config.Config, fn func(conn *sql.DB) error) error {
	conn, err := db.Open(cfg, db.ReadWrite)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			slog.Error("db close", "error", closeErr)
		}
	}()
	return fn(conn)
}
