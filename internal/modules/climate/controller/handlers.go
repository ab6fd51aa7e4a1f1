package controller

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"climate-api/internal/modules/climate/dataset"
	"climate-api/internal/modules/climate/service"
	"climate-api/internal/modules/climate/views"
	"climate-api/internal/utils"
)

func (c *climateControllerImpl) handleIndex(w http.ResponseWriter, r *http.Request) {
	routes := c.service.Routes()
	data := &views.IndexData{Routes: make([]views.RouteLink, 0, len(routes))}
	for _, rt := range routes {
		data.Routes = append(data.Routes, views.RouteLink{Title: rt.Title, Paths: rt.Paths})
	}

	var buf bytes.Buffer
	if err := views.RenderIndex(&buf, data); err != nil {
		slog.Error("index template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("index: write response failed", "error", err)
	}
}

func (c *climateControllerImpl) handlePrecipitation(w http.ResponseWriter, r *http.Request) {
	entries, err := c.service.Precipitation(r.Context())
	if err != nil {
		writeServiceError(w, "precipitation", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, entries)
}

func (c *climateControllerImpl) handleStations(w http.ResponseWriter, r *http.Request) {
	entries, err := c.service.Stations(r.Context())
	if err != nil {
		writeServiceError(w, "stations", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, entries)
}

func (c *climateControllerImpl) handleTobs(w http.ResponseWriter, r *http.Request) {
	entries, err := c.service.Tobs(r.Context())
	if err != nil {
		writeServiceError(w, "tobs", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, entries)
}

func (c *climateControllerImpl) handleTempFrom(w http.ResponseWriter, r *http.Request) {
	entries, err := c.service.TempStatsFrom(r.Context(), r.PathValue("start"))
	if err != nil {
		writeServiceError(w, "temp", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, entries)
}

func (c *climateControllerImpl) handleTempRange(w http.ResponseWriter, r *http.Request) {
	entries, err := c.service.TempStatsRange(r.Context(), r.PathValue("start"), r.PathValue("end"))
	if err != nil {
		writeServiceError(w, "temp range", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, entries)
}

// writeServiceError maps service errors onto status codes. Internal details
// only go to the log.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDate):
		utils.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, dataset.ErrDatasetUnavailable):
		slog.Error(op+": dataset unavailable", "error", err)
		utils.WriteError(w, http.StatusServiceUnavailable, "dataset unavailable")
	default:
		slog.Error(op+" failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}
