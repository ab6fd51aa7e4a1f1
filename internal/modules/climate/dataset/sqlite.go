package dataset

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	"climate-api/internal/modules/climate/types"
)

//go:embed sql/get-stations.sql
var getStationsSQL string

//go:embed sql/get-precipitation-since.sql
var getPrecipitationSinceSQL string

//go:embed sql/get-most-active-station.sql
var getMostActiveStationSQL string

//go:embed sql/get-station-observations-since.sql
var getStationObservationsSinceSQL string

//go:embed sql/get-temperature-stats.sql
var getTemperatureStatsSQL string

// SQLite answers every query through the SQL engine over a snapshot database.
// *sql.DB hands each query its own pooled connection, so calls may overlap.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

func (s *SQLite) Stations(ctx context.Context) ([]types.Station, error) {
	rows, err := s.db.QueryContext(ctx, getStationsSQL)
	if err != nil {
		return nil, unavailable("stations", err)
	}
	defer closeRows(rows, "stations")

	out := []types.Station{}
	for rows.Next() {
		var st types.Station
		if err := rows.Scan(&st.ID, &st.Name, &st.Latitude, &st.Longitude, &st.Elevation); err != nil {
			return nil, unavailable("scan station", err)
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("stations", err)
	}
	return out, nil
}

func (s *SQLite) PrecipitationSince(ctx context.Context, begin string) ([]types.Measurement, error) {
	rows, err := s.db.QueryContext(ctx, getPrecipitationSinceSQL, begin)
	if err != nil {
		return nil, unavailable("precipitation", err)
	}
	defer closeRows(rows, "precipitation")
	return scanMeasurements(rows)
}

func (s *SQLite) MostActiveStation(ctx context.Context) (string, bool, error) {
	var (
		station string
		count   int
	)
	err := s.db.QueryRowContext(ctx, getMostActiveStationSQL).Scan(&station, &count)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, unavailable("most active station", err)
	}
	return station, true, nil
}

func (s *SQLite) StationObservationsSince(ctx context.Context, station, begin string) ([]types.Measurement, error) {
	rows, err := s.db.QueryContext(ctx, getStationObservationsSinceSQL, station, begin)
	if err != nil {
		return nil, unavailable("station observations", err)
	}
	defer closeRows(rows, "station observations")
	return scanMeasurements(rows)
}

func (s *SQLite) TemperatureStats(ctx context.Context, start string, end *string) (types.TempStats, error) {
	var endArg any
	if end != nil {
		endArg = *end
	}

	rows, err := s.db.QueryContext(ctx, getTemperatureStatsSQL, start, endArg)
	if err != nil {
		return types.TempStats{}, unavailable("temperature stats", err)
	}
	defer closeRows(rows, "temperature stats")

	cols, err := rows.Columns()
	if err != nil {
		return types.TempStats{}, unavailable("temperature stats", err)
	}
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return types.TempStats{}, unavailable("temperature stats", err)
		}
		return types.TempStats{}, nil
	}

	// Bind by column name so the labels cannot drift from the select order.
	byName := map[string]*sql.NullFloat64{
		"min_tobs": {},
		"max_tobs": {},
		"avg_tobs": {},
	}
	dest := make([]any, len(cols))
	for i, c := range cols {
		v, ok := byName[c]
		if !ok {
			return types.TempStats{}, fmt.Errorf("temperature stats: unexpected column %q", c)
		}
		dest[i] = v
	}
	if err := rows.Scan(dest...); err != nil {
		return types.TempStats{}, unavailable("scan temperature stats", err)
	}

	return types.TempStats{
		Min: nullFloat(*byName["min_tobs"]),
		Max: nullFloat(*byName["max_tobs"]),
		Avg: nullFloat(*byName["avg_tobs"]),
	}, nil
}

func (s *SQLite) Ping(ctx context.Context) error {
	var ok int
	if err := s.db.QueryRowContext(ctx, `SELECT 1`).Scan(&ok); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func scanMeasurements(rows *sql.Rows) ([]types.Measurement, error) {
	out := []types.Measurement{}
	for rows.Next() {
		var (
			m    types.Measurement
			prcp sql.NullFloat64
		)
		if err := rows.Scan(&m.StationID, &m.Date, &prcp, &m.Tobs); err != nil {
			return nil, unavailable("scan measurement", err)
		}
		m.Prcp = nullFloat(prcp)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("measurements", err)
	}
	return out, nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func closeRows(rows *sql.Rows, what string) {
	if err := rows.Close(); err != nil {
		slog.Error("close rows", "query", what, "error", err)
	}
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDatasetUnavailable, op, err)
}
