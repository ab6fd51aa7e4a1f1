package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"climate-api/internal/modules/climate/dataset"
	"climate-api/internal/modules/climate/types"
)

// ErrInvalidDate is returned when a start or end date is not YYYY-MM-DD.
var ErrInvalidDate = errors.New("invalid date format")

// DefaultReferenceDate is the last date in the Hawaii snapshot.
var DefaultReferenceDate = time.Date(2017, 8, 23, 0, 0, 0, 0, time.UTC)

const windowDays = 365

var validate = validator.New()

type dateRange struct {
	Start string  `validate:"required,datetime=2006-01-02"`
	End   *string `validate:"omitempty,datetime=2006-01-02"`
}

// Route is one entry of the API index.
type Route struct {
	Title string
	Paths []string
}

var routes = []Route{
	{Title: "Precipitation Data", Paths: []string{"/api/v1.0/precipitation"}},
	{Title: "List of Stations", Paths: []string{"/api/v1.0/stations"}},
	{Title: "Temperature Data of the Most Active Station", Paths: []string{"/api/v1.0/tobs"}},
	{Title: "Temperature Data on Specific Date", Paths: []string{
		"/api/v1.0/temp/YYYY-MM-DD",
		"/api/v1.0/temp/YYYY-MM-DD(Start)/YYYY-MM-DD(End)",
	}},
}

// Service implements the climate queries over an immutable dataset.
type Service struct {
	dataset   dataset.ClimateDataset
	reference time.Time
}

func NewService(ds dataset.ClimateDataset, referenceDate time.Time) *Service {
	if referenceDate.IsZero() {
		referenceDate = DefaultReferenceDate
	}
	return &Service{dataset: ds, reference: referenceDate}
}

// Routes lists the available operations for the index page.
func (s *Service) Routes() []Route {
	out := make([]Route, len(routes))
	copy(out, routes)
	return out
}

// BeginDate is reference_date minus 365 days, as YYYY-MM-DD.
func (s *Service) BeginDate() string {
	return s.reference.AddDate(0, 0, -windowDays).Format(time.DateOnly)
}

func (s *Service) Precipitation(ctx context.Context) ([]types.PrecipitationEntry, error) {
	rows, err := s.dataset.PrecipitationSince(ctx, s.BeginDate())
	if err != nil {
		return nil, err
	}
	out := make([]types.PrecipitationEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, types.PrecipitationEntry{r.Date: r.Prcp})
	}
	return out, nil
}

func (s *Service) Stations(ctx context.Context) ([]types.StationEntry, error) {
	stations, err := s.dataset.Stations(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]types.StationEntry, 0, len(stations))
	for _, st := range stations {
		out = append(out, types.StationEntry{
			Station:   st.ID,
			Name:      st.Name,
			Latitude:  st.Latitude,
			Longitude: st.Longitude,
			Elevation: st.Elevation,
		})
	}
	return out, nil
}

// Tobs returns the last year of temperature observations of the station with
// the most measurements overall.
func (s *Service) Tobs(ctx context.Context) ([]types.TobsEntry, error) {
	station, ok, err := s.dataset.MostActiveStation(ctx)
	if err != nil {
		return nil, err
	}
	out := []types.TobsEntry{}
	if !ok {
		return out, nil
	}

	rows, err := s.dataset.StationObservationsSince(ctx, station, s.BeginDate())
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out = append(out, types.TobsEntry{
			Date:              r.Date,
			Temperature:       r.Tobs,
			MostActiveStation: station,
		})
	}
	return out, nil
}

func (s *Service) TempStatsFrom(ctx context.Context, start string) ([]types.TempStatsEntry, error) {
	if err := validateDates(dateRange{Start: start}); err != nil {
		return nil, err
	}
	return s.tempStats(ctx, start, nil)
}

func (s *Service) TempStatsRange(ctx context.Context, start, end string) ([]types.TempStatsEntry, error) {
	if err := validateDates(dateRange{Start: start, End: &end}); err != nil {
		return nil, err
	}
	return s.tempStats(ctx, start, &end)
}

func (s *Service) Ping(ctx context.Context) error {
	return s.dataset.Ping(ctx)
}

func (s *Service) tempStats(ctx context.Context, start string, end *string) ([]types.TempStatsEntry, error) {
	stats, err := s.dataset.TemperatureStats(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return []types.TempStatsEntry{{
		MinimumTemp: stats.Min,
		MaximumTemp: stats.Max,
		AverageTemp: stats.Avg,
	}}, nil
}

func validateDates(r dateRange) error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		value := r.Start
		if fe.Field() == "End" && r.End != nil {
			value = *r.End
		}
		msgs = append(msgs, fmt.Sprintf("%s %q (expected YYYY-MM-DD)", strings.ToLower(fe.Field()), value))
	}
	return fmt.Errorf("%w: %s", ErrInvalidDate, strings.Join(msgs, ", "))
}
