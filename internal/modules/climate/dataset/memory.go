package dataset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"

	"climate-api/internal/modules/climate/types"
)

// Memory answers queries by scanning tables held in memory. The tables are
// never mutated after construction, so concurrent reads need no locking.
type Memory struct {
	stations     []types.Station
	measurements []types.Measurement

	mostActive    string
	hasMostActive bool
}

// NewMemory takes ownership of the given slices.
func NewMemory(stations []types.Station, measurements []types.Measurement) *Memory {
	m := &Memory{stations: stations, measurements: measurements}
	m.mostActive, m.hasMostActive = mostActive(measurements)
	return m
}

// LoadMemory reads both CSV tables (path or URL) and builds a Memory dataset.
func LoadMemory(ctx context.Context, client *http.Client, stationsSrc, measurementsSrc string) (*Memory, error) {
	stations, err := loadTable(ctx, client, stationsSrc, ReadStations)
	if err != nil {
		return nil, err
	}
	measurements, err := loadTable(ctx, client, measurementsSrc, ReadMeasurements)
	if err != nil {
		return nil, err
	}
	slog.Info("csv dataset loaded",
		"stations", len(stations),
		"measurements", len(measurements),
	)
	return NewMemory(stations, measurements), nil
}

func loadTable[T any](ctx context.Context, client *http.Client, src string, read func(io.Reader) ([]T, error)) ([]T, error) {
	rc, err := OpenSource(ctx, client, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatasetUnavailable, err)
	}
	defer func() { _ = rc.Close() }()

	rows, err := read(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDatasetUnavailable, src, err)
	}
	return rows, nil
}

func (m *Memory) Stations(ctx context.Context) ([]types.Station, error) {
	out := make([]types.Station, len(m.stations))
	copy(out, m.stations)
	return out, nil
}

func (m *Memory) PrecipitationSince(ctx context.Context, begin string) ([]types.Measurement, error) {
	out := []types.Measurement{}
	for _, row := range m.measurements {
		if row.Date >= begin {
			out = append(out, row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (m *Memory) MostActiveStation(ctx context.Context) (string, bool, error) {
	return m.mostActive, m.hasMostActive, nil
}

func (m *Memory) StationObservationsSince(ctx context.Context, station, begin string) ([]types.Measurement, error) {
	out := []types.Measurement{}
	for _, row := range m.measurements {
		if row.StationID == station && row.Date >= begin {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *Memory) TemperatureStats(ctx context.Context, start string, end *string) (types.TempStats, error) {
	var (
		n             int
		lo, hi, total float64
	)
	for _, row := range m.measurements {
		if row.Date < start || (end != nil && row.Date > *end) {
			continue
		}
		if n == 0 || row.Tobs < lo {
			lo = row.Tobs
		}
		if n == 0 || row.Tobs > hi {
			hi = row.Tobs
		}
		total += row.Tobs
		n++
	}
	if n == 0 {
		return types.TempStats{}, nil
	}
	avg := total / float64(n)
	return types.TempStats{Min: &lo, Max: &hi, Avg: &avg}, nil
}

func (m *Memory) Ping(ctx context.Context) error { return nil }

func (m *Memory) Close() error { return nil }

func mostActive(measurements []types.Measurement) (string, bool) {
	counts := make(map[string]int)
	for _, row := range measurements {
		counts[row.StationID]++
	}
	var (
		best  string
		top   int
		found bool
	)
	for station, n := range counts {
		if !found || n > top || (n == top && station < best) {
			best, top, found = station, n, true
		}
	}
	return best, found
}
