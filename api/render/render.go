// Package render writes JSON responses and maps engine errors to HTTP
// status codes.
package render

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kilianp07/fleetcare/core/maintenance"
	"github.com/kilianp07/fleetcare/core/model"
)

// ErrBadRequest marks malformed query parameters or bodies.
var ErrBadRequest = errors.New("bad request")

// JSON encodes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Status returns the HTTP status for err.
func Status(err error) int {
	switch {
	case errors.Is(err, model.ErrVehicleNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidDate):
		return http.StatusUnprocessableEntity
	case errors.Is(err, maintenance.ErrUnknownPolicy), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error writes {"error": "..."} with the status mapped from err.
func Error(w http.ResponseWriter, err error) {
	JSON(w, Status(err), map[string]string{"error": err.Error()})
}
