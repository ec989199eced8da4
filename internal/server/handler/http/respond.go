// Package http provides HTTP handlers and routing for the readings
// service API.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tdnguyen/astroserve/internal/service"
	"go.uber.org/zap"
)

// writeJSON serializes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes the standard {"error": msg} body.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps a service failure to a status code and body.
// Classified errors carry stable client-facing messages; anything else is
// logged and surfaced as a generic 500 with the given fallback message.
func writeServiceError(w http.ResponseWriter, log *zap.Logger, err error, fallback string) {
	var se *service.Error
	if errors.As(err, &se) {
		switch se.Kind {
		case service.KindValidation, service.KindAuth:
			writeError(w, http.StatusBadRequest, se.Message)
		case service.KindConflict:
			writeError(w, http.StatusConflict, se.Message)
		case service.KindNotFound:
			writeError(w, http.StatusNotFound, se.Message)
		default:
			writeError(w, http.StatusInternalServerError, fallback)
		}
		return
	}

	log.Error("request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, fallback)
}
