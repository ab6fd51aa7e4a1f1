package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"climate-api/internal/utils"
)

// Pinger reports whether the backing dataset can still answer queries.
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthchecker interface {
	handleHealthz(w http.ResponseWriter, r *http.Request)
}

type healthcheckerImpl struct {
	dataset Pinger
	timeout time.Duration
}

func NewHealthchecker(p Pinger) healthchecker {
	return &healthcheckerImpl{dataset: p, timeout: 2 * time.Second}
}

func (h *healthcheckerImpl) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.dataset.Ping(ctx); err != nil {
		slog.Error("failed to check dataset availability", "error", err)
		utils.WriteError(w, http.StatusServiceUnavailable, "dataset unavailable")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func registerHealthcheck(mux *http.ServeMux, p Pinger) {
	healthchecker := NewHealthchecker(p)
	mux.HandleFunc("GET /healthz", healthchecker.handleHealthz)
}
