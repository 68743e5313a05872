package handlers

import (
	"net/http"
	"strconv"

	"github.com/hangarworks/fleetsync/internal/server/response"
)

// HandleListVehicles handles GET {prefix}/vehicles.
func (h *Handlers) HandleListVehicles(w http.ResponseWriter, r *http.Request) {
	list, err := h.query.ListVehicles(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list vehicles")
		response.FromError(w, err)
		return
	}
	response.OK(w, response.Envelope{"count": len(list), "vehicles": list})
}

// HandleGetVehicle handles GET {prefix}/vehicles/{slug}.
func (h *Handlers) HandleGetVehicle(w http.ResponseWriter, r *http.Request, slug string) {
	vehicle, err := h.query.GetVehicle(r.Context(), slug)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Data(w, vehicle)
}

// HandleListRumors handles GET {prefix}/rumors. Inactive records are
// included only with ?all=true.
func (h *Handlers) HandleListRumors(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("all") != "true"

	list, err := h.query.ListRumors(r.Context(), activeOnly)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list rumors")
		response.FromError(w, err)
		return
	}
	response.OK(w, response.Envelope{"count": len(list), "rumors": list})
}

// HandleListJobs handles GET {prefix}/jobs: the most recent ledger entries.
func (h *Handlers) HandleListJobs(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			response.BadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	entries, err := h.query.ListProgress(r.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list job ledger")
		response.FromError(w, err)
		return
	}
	response.OK(w, response.Envelope{"count": len(entries), "jobs": entries})
}
