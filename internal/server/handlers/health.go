package handlers

import (
	"net/http"

	"github.com/hangarworks/fleetsync/internal/server/response"
)

// HandleHealth handles GET /health, the liveness probe.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, response.Envelope{
		"status":  "healthy",
		"service": "fleetsync",
	})
}

// HandleReady handles GET {prefix}/ready: readiness including store
// connectivity.
func (h *Handlers) HandleReady(w http.ResponseWriter, r *http.Request) {
	if err := h.query.Ping(r.Context()); err != nil {
		response.ServiceUnavailable(w, "store not reachable")
		return
	}
	response.OK(w, response.Envelope{"status": "ready"})
}
