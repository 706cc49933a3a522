package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"transitfare/internal/service"
)

type FareHandler struct {
	fares  *service.Fares
	logger *slog.Logger
}

func NewFareHandler(fares *service.Fares, logger *slog.Logger) *FareHandler {
	return &FareHandler{
		fares:  fares,
		logger: logger.With("handler", "fare"),
	}
}

type FareRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type ItineraryRequest struct {
	Itinerary []string `json:"itinerary"`
}

// Estimate handles POST /v1/fare.
func (h *FareHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	var req FareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Estimate bad request", "error", err)
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.estimate(w, r, req)
}

// EstimateQuery handles GET /v1/fare?start=&end=.
func (h *FareHandler) EstimateQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.estimate(w, r, FareRequest{Start: q.Get("start"), End: q.Get("end")})
}

func (h *FareHandler) estimate(w http.ResponseWriter, r *http.Request, req FareRequest) {
	start := time.Now()

	res, err := h.fares.Estimate(r.Context(), req.Start, req.End)
	if err != nil {
		status, msg := statusFor(err)
		h.logger.Debug("Estimate failed",
			"start", req.Start,
			"end", req.End,
			"status", status,
			"error", err,
		)
		if status >= http.StatusInternalServerError {
			h.logger.Error("fare estimate failed", "start", req.Start, "end", req.End, "error", err)
		}
		respondError(w, status, msg)
		return
	}

	h.logger.Debug("Estimate response",
		"start", req.Start,
		"end", req.End,
		"route", res.Route,
		"distance_km", res.TotalDistance,
		"fare", res.Fare,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	respondJSON(w, http.StatusOK, res)
}

// DetectTransfer handles POST /v1/transfers/detect.
func (h *FareHandler) DetectTransfer(w http.ResponseWriter, r *http.Request) {
	var req ItineraryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("DetectTransfer bad request", "error", err)
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	notice, err := h.fares.DetectTransfer(r.Context(), req.Itinerary)
	if err != nil {
		status, msg := statusFor(err)
		h.logger.Error("transfer detection failed", "error", err)
		respondError(w, status, msg)
		return
	}

	h.logger.Debug("DetectTransfer response",
		"stops", len(req.Itinerary),
		"transfer", notice.Transfer,
	)
	respondJSON(w, http.StatusOK, notice)
}

// Quote handles POST /v1/itinerary/quote.
func (h *FareHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req ItineraryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Quote bad request", "error", err)
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	q, err := h.fares.Quote(r.Context(), req.Itinerary)
	if err != nil {
		status, msg := statusFor(err)
		h.logger.Debug("Quote failed", "stops", len(req.Itinerary), "status", status, "error", err)
		respondError(w, status, msg)
		return
	}

	respondJSON(w, http.StatusOK, q)
}
