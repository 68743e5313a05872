package handlers

import (
	"net/http"

	"github.com/hangarworks/fleetsync/internal/server/response"
	"github.com/hangarworks/fleetsync/pkg/vehicles"
)

// HandleSyncJob handles POST {prefix}/jobs/sync. A concurrent invocation
// while the sync lock is held answers 409.
func (h *Handlers) HandleSyncJob(w http.ResponseWriter, r *http.Request) {
	result, err := h.jobs.RunSync(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Sync job failed")
		response.FromError(w, err)
		return
	}

	fields := response.Envelope{"items_synced": result.ItemCount}
	for k, v := range result.Detail {
		fields[k] = v
	}
	response.OK(w, fields)
}

// HandleCacheJob handles POST {prefix}/jobs/cache?provider=NAME.
func (h *Handlers) HandleCacheJob(w http.ResponseWriter, r *http.Request) {
	provider := vehicles.ProviderID(r.URL.Query().Get("provider"))
	if provider == "" {
		provider = vehicles.ProviderShipyard
	}
	if !provider.Valid() {
		response.BadRequest(w, "unknown provider: "+provider.String())
		return
	}

	result, err := h.jobs.RunCacheRefresh(r.Context(), provider)
	if err != nil {
		h.logger.Error().Err(err).Str("provider", provider.String()).Msg("Cache refresh job failed")
		response.FromError(w, err)
		return
	}

	response.OK(w, response.Envelope{
		"provider": provider.String(),
		"items":    result.ItemCount,
	})
}

// HandleCleanupJob handles POST {prefix}/jobs/cleanup.
func (h *Handlers) HandleCleanupJob(w http.ResponseWriter, r *http.Request) {
	result, err := h.jobs.RunCleanup(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Cleanup job failed")
		response.FromError(w, err)
		return
	}

	fields := response.Envelope{}
	for k, v := range result.Detail {
		fields[k] = v
	}
	response.OK(w, fields)
}

// HandleRumorsJob handles POST {prefix}/jobs/rumors.
func (h *Handlers) HandleRumorsJob(w http.ResponseWriter, r *http.Request) {
	result, err := h.jobs.RunRumors(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Rumor job failed")
		response.FromError(w, err)
		return
	}

	fields := response.Envelope{}
	for k, v := range result.Detail {
		fields[k] = v
	}
	response.OK(w, fields)
}
