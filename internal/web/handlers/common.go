package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kozaktomas/face-attendance/internal/apperr"
)

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// respondError classifies err and sends it with the matching status.
// Internal errors are logged and their text is not exposed.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	msg := err.Error()
	if kind == apperr.KindInternal {
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", sanitizeForLog(r.URL.Path),
			"error", err,
		)
		msg = "internal error"
	}
	respondJSON(w, kind.HTTPStatus(), errorResponse{Error: msg, Kind: kind.String()})
}

// HealthChecker reports whether a dependency is usable.
type HealthChecker func(ctx context.Context) error

// HealthHandler answers liveness probes, optionally checking the database.
type HealthHandler struct {
	check HealthChecker
}

func NewHealthHandler(check HealthChecker) *HealthHandler {
	return &HealthHandler{check: check}
}

// Get handles the health check endpoint.
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.check != nil {
		if err := h.check(r.Context()); err != nil {
			slog.WarnContext(r.Context(), "health check failed", "error", err)
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
