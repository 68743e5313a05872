package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/agentstation/utc"

	"github.com/hangarworks/fleetsync/internal/server/response"
	"github.com/hangarworks/fleetsync/pkg/vehicles"
)

// overrideRequest is the POST {prefix}/override body.
type overrideRequest struct {
	EntityKey       string `json:"entity_key"`
	PreferredSource string `json:"preferred_source"`
	Reason          string `json:"reason,omitempty"`
	ClearCache      bool   `json:"clear_cache,omitempty"`
}

// HandleOverride handles POST {prefix}/override: pin one vehicle's merge to
// a single provider (or back to automatic precedence), optionally clearing
// the provider's cached snapshot.
func (h *Handlers) HandleOverride(w http.ResponseWriter, r *http.Request) {
	var req overrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	slug := vehicles.Slugify(req.EntityKey)
	if slug == "" {
		response.BadRequest(w, "entity_key must not be empty")
		return
	}

	preferred := vehicles.ProviderID(req.PreferredSource)
	if !preferred.Valid() && preferred != vehicles.PreferredAuto {
		response.BadRequest(w, "preferred_source is not a known provider: "+req.PreferredSource)
		return
	}

	ctx := r.Context()
	pref := &vehicles.SourcePreference{
		Slug:       slug,
		Preferred:  preferred,
		Reason:     req.Reason,
		ClearCache: req.ClearCache,
		UpdatedAt:  utc.Now(),
	}
	if err := h.admin.UpsertPreference(ctx, pref); err != nil {
		h.logger.Error().Err(err).Str("slug", slug).Msg("Failed to store source preference")
		response.FromError(w, err)
		return
	}

	cleared := []string{}
	if req.ClearCache {
		providers := []vehicles.ProviderID{preferred}
		if preferred == vehicles.PreferredAuto {
			providers = vehicles.AllProviders()
		}
		for _, provider := range providers {
			if err := h.admin.DeleteSnapshot(ctx, provider); err != nil {
				h.logger.Error().Err(err).Str("provider", provider.String()).Msg("Failed to clear provider snapshot")
				response.FromError(w, err)
				return
			}
			cleared = append(cleared, provider.String())
		}
	}

	h.auditAdmin(ctx, "override", map[string]any{
		"slug":      slug,
		"preferred": preferred.String(),
		"reason":    req.Reason,
		"cleared":   cleared,
	})

	response.OK(w, response.Envelope{
		"slug":          slug,
		"preferred":     preferred.String(),
		"cache_cleared": cleared,
	})
}

// probeRequest is the POST {prefix}/probe body.
type probeRequest struct {
	ProbeKey string `json:"probe_key"`
}

// HandleProbe handles POST {prefix}/probe: a diagnostic dump of one
// vehicle's stored state and each provider's current view of it.
func (h *Handlers) HandleProbe(w http.ResponseWriter, r *http.Request) {
	var req probeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	report, err := h.prober.Probe(r.Context(), req.ProbeKey)
	if err != nil {
		response.FromError(w, err)
		return
	}

	h.auditAdmin(r.Context(), "probe", map[string]any{"slug": report.Slug})
	response.Data(w, report)
}

// auditAdmin records an administrative action; audit failures are logged,
// never surfaced to the caller.
func (h *Handlers) auditAdmin(ctx context.Context, action string, detail map[string]any) {
	if err := h.admin.AppendAudit(ctx, "admin", action, detail); err != nil {
		h.logger.Error().Err(err).Str("action", action).Msg("Failed to append audit entry")
	}
}
