package handlers

import (
	"context"
	"net/http"
	"time"

	"parcel-delivery/internal/logx"
)

const readinessTimeout = 2 * time.Second

type readinessCheck struct {
	name string
	fn   func(context.Context) error
}

// Handlers serves ping, readiness and unknown routes.
type Handlers struct {
	Logger logx.Logger
	checks []readinessCheck
}

// New creates a Handlers instance with the given logger.
func New(logger logx.Logger) *Handlers {
	return &Handlers{Logger: logger}
}

// WithCheck adds a dependency probed by HEAD /healthcheck.
func (h *Handlers) WithCheck(name string, fn func(context.Context) error) *Handlers {
	h.checks = append(h.checks, readinessCheck{name: name, fn: fn})
	return h
}

// Ping handles GET /ping and returns 200 with {"message":"pong"}.
func (h *Handlers) Ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(h.Logger, w, r, http.StatusOK, map[string]string{"message": "pong"})
}

// HealthcheckHead handles HEAD /healthcheck: 204 when every check passes, 503 otherwise.
func (h *Handlers) HealthcheckHead(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	for _, c := range h.checks {
		if err := c.fn(ctx); err != nil {
			if h.Logger != nil {
				h.Logger.Warn("readiness check failed",
					logx.String("req_id", reqID(r.Context())),
					logx.String("check", c.name),
					logx.Err(err),
				)
			}
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// NotFound returns a JSON 404 error for unknown routes.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(h.Logger, w, r, http.StatusNotFound, "route not found")
}
