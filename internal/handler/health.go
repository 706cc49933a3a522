package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"transitfare/internal/store"
)

// ReadinessChecker reports whether the catalog has been loaded at least once.
type ReadinessChecker interface {
	IsReady() bool
}

type HealthHandler struct {
	ingestor ReadinessChecker
	store    *store.CatalogStore
}

func NewHealthHandler(ing ReadinessChecker, s *store.CatalogStore) *HealthHandler {
	return &HealthHandler{
		ingestor: ing,
		store:    s,
	}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type ReadyResponse struct {
	Ready          bool      `json:"ready"`
	CatalogVersion string    `json:"catalogVersion"`
	RouteCount     int       `json:"routeCount"`
	ServerTime     time.Time `json:"serverTime"`
}

// Readyz is ready once a catalog is published, even if later refreshes fail.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	stats := h.store.GetStats()
	ready := stats.IsLoaded || (h.ingestor != nil && h.ingestor.IsReady())

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ReadyResponse{
		Ready:          ready,
		CatalogVersion: stats.Version,
		RouteCount:     stats.RoutesCount,
		ServerTime:     time.Now(),
	})
}
