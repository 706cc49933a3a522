package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"transitfare/internal/domain"
	"transitfare/internal/itinerary"
)

type errorResponse struct {
	Error string `json:"error"`
}

// respondJSON encodes data before writing the header so an encoding failure
// is reported as a 500 instead of an empty success.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		slog.Error("failed to encode response", "status", status, "error", err)
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorResponse{Error: "internal error"})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

// statusFor maps core and catalog errors to the HTTP contract.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, domain.ErrNotFound.Error()
	case errors.Is(err, itinerary.ErrTooShort):
		return http.StatusBadRequest, itinerary.ErrTooShort.Error()
	case errors.Is(err, domain.ErrDataUnavailable):
		return http.StatusInternalServerError, "route data unavailable"
	case errors.Is(err, domain.ErrComputation):
		return http.StatusInternalServerError, "route data is malformed"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
