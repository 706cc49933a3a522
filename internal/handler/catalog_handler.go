package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"transitfare/internal/domain"
	"transitfare/internal/store"
)

type CatalogHandler struct {
	store  *store.CatalogStore
	logger *slog.Logger
}

func NewCatalogHandler(store *store.CatalogStore, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		store:  store,
		logger: logger.With("handler", "catalog"),
	}
}

type RoutesResponse struct {
	Routes     []domain.Route `json:"routes"`
	Count      int            `json:"count"`
	ServerTime time.Time      `json:"server_time"`
}

func (h *CatalogHandler) ListRoutes(w http.ResponseWriter, r *http.Request) {
	routes := h.store.GetAllRoutes()

	h.logger.Debug("ListRoutes response", "count", len(routes))

	respondJSON(w, http.StatusOK, RoutesResponse{
		Routes:     routes,
		Count:      len(routes),
		ServerTime: time.Now(),
	})
}

func (h *CatalogHandler) GetRoute(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "missing route id")
		return
	}

	route, ok := h.store.GetRouteByID(id)
	if !ok {
		h.logger.Debug("GetRoute not found", "route_id", id)
		respondError(w, http.StatusNotFound, "route not found")
		return
	}

	respondJSON(w, http.StatusOK, route)
}

type StopsResponse struct {
	Stops      []domain.StopSummary `json:"stops"`
	Count      int                  `json:"count"`
	ServerTime time.Time            `json:"server_time"`
}

// ListStops handles GET /v1/stops with an optional bbox=minLat,minLon,maxLat,maxLon.
func (h *CatalogHandler) ListStops(w http.ResponseWriter, r *http.Request) {
	var bbox *domain.BoundingBox
	if bboxStr := r.URL.Query().Get("bbox"); bboxStr != "" {
		parts := strings.Split(bboxStr, ",")
		if len(parts) != 4 {
			respondError(w, http.StatusBadRequest, "invalid bbox format: expected minLat,minLon,maxLat,maxLon")
			return
		}
		var err error
		bbox, err = parseBBox(parts)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid bbox values: "+err.Error())
			return
		}
	}

	stops := h.store.GetStops(bbox)

	h.logger.Debug("ListStops response", "count", len(stops), "bbox", bbox != nil)

	respondJSON(w, http.StatusOK, StopsResponse{
		Stops:      stops,
		Count:      len(stops),
		ServerTime: time.Now(),
	})
}

type TransfersResponse struct {
	Transfers  []domain.Transfer `json:"transfers"`
	Count      int               `json:"count"`
	ServerTime time.Time         `json:"server_time"`
}

func (h *CatalogHandler) ListTransfers(w http.ResponseWriter, r *http.Request) {
	transfers := h.store.GetTransfers()

	respondJSON(w, http.StatusOK, TransfersResponse{
		Transfers:  transfers,
		Count:      len(transfers),
		ServerTime: time.Now(),
	})
}

func (h *CatalogHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.store.GetStats())
}

func parseBBox(parts []string) (*domain.BoundingBox, error) {
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		v[i] = f
	}
	return &domain.BoundingBox{
		MinLat: v[0], MinLon: v[1],
		MaxLat: v[2], MaxLon: v[3],
	}, nil
}
