package dataset

import (
	"context"
	"errors"

	"climate-api/internal/modules/climate/types"
)

// ErrDatasetUnavailable wraps any failure to read from the backing store.
var ErrDatasetUnavailable = errors.New("dataset unavailable")

// ClimateDataset is the read-only view over the Station and Measurement
// relations. Implementations are safe for concurrent use.
//
// Date arguments are YYYY-MM-DD strings and are compared lexicographically.
type ClimateDataset interface {
	// Stations returns every station in load order.
	Stations(ctx context.Context) ([]types.Station, error)
	// PrecipitationSince returns measurements with date >= begin ordered by
	// date, keeping load order among equal dates.
	PrecipitationSince(ctx context.Context, begin string) ([]types.Measurement, error)
	// MostActiveStation returns the station with the most measurements. Ties
	// go to the lowest station id. ok is false when there are no measurements.
	MostActiveStation(ctx context.Context) (station string, ok bool, err error)
	// StationObservationsSince returns the station's measurements with
	// date >= begin in load order.
	StationObservationsSince(ctx context.Context, station, begin string) ([]types.Measurement, error)
	// TemperatureStats aggregates tobs over date >= start, and date <= *end
	// when end is non-nil.
	TemperatureStats(ctx context.Context, start string, end *string) (types.TempStats, error)

	Ping(ctx context.Context) error
	Close() error
}
