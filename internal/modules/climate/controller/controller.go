package controller

import (
	"context"
	"net/http"

	"climate-api/internal/modules/climate/service"
	"climate-api/internal/modules/climate/types"
)

// ClimateService is what the handlers need from the service layer.
type ClimateService interface {
	Routes() []service.Route
	Precipitation(ctx context.Context) ([]types.PrecipitationEntry, error)
	Stations(ctx context.Context) ([]types.StationEntry, error)
	Tobs(ctx context.Context) ([]types.TobsEntry, error)
	TempStatsFrom(ctx context.Context, start string) ([]types.TempStatsEntry, error)
	TempStatsRange(ctx context.Context, start, end string) ([]types.TempStatsEntry, error)
}

type ClimateController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type climateControllerImpl struct {
	service ClimateService
}

func NewClimateController(svc ClimateService) ClimateController {
	return &climateControllerImpl{service: svc}
}

func (c *climateControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", c.handleIndex)
	mux.HandleFunc("GET /api/v1.0/precipitation", c.handlePrecipitation)
	mux.HandleFunc("GET /api/v1.0/stations", c.handleStations)
	mux.HandleFunc("GET /api/v1.0/tobs", c.handleTobs)
	mux.HandleFunc("GET /api/v1.0/temp/{start}", c.handleTempFrom)
	mux.HandleFunc("GET /api/v1.0/temp/{start}/{end}", c.handleTempRange)
}
