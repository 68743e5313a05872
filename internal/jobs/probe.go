package jobs

import (
	"context"

	"github.com/hangarworks/fleetsync/internal/sources"
	"github.com/hangarworks/fleetsync/pkg/errors"
	"github.com/hangarworks/fleetsync/pkg/vehicles"
)

// ProbeStore is the read surface the probe inspects.
type ProbeStore interface {
	GetVehicle(ctx context.Context, slug string) (*vehicles.Vehicle, error)
	GetPreference(ctx context.Context, slug string) (*vehicles.SourcePreference, error)
}

// ProbeReport is the diagnostic dump for one vehicle: what is stored, what
// each provider currently returns, and which providers failed.
type ProbeReport struct {
	Slug       string                                       `json:"slug"`
	Stored     *vehicles.Vehicle                            `json:"stored,omitempty"`
	Preference *vehicles.SourcePreference                   `json:"preference,omitempty"`
	Fresh      map[vehicles.ProviderID]*vehicles.RawPayload `json:"fresh,omitempty"`
	Errors     map[string]string                            `json:"errors,omitempty"`
}

// Prober answers one-off diagnostic lookups against the store and the live
// providers.
type Prober struct {
	sources []sources.Source
	store   ProbeStore
}

// NewProber creates a prober.
func NewProber(adapters []sources.Source, store ProbeStore) *Prober {
	return &Prober{sources: adapters, store: store}
}

// Probe gathers the diagnostic report for one probe key. The key is
// slug-normalized first so human-entered names resolve. Provider failures
// are reported in the dump, not returned as errors.
func (p *Prober) Probe(ctx context.Context, key string) (*ProbeReport, error) {
	slug := vehicles.Slugify(key)
	if slug == "" {
		return nil, errors.NewValidationError("probe_key", "must not be empty")
	}

	report := &ProbeReport{
		Slug:   slug,
		Fresh:  map[vehicles.ProviderID]*vehicles.RawPayload{},
		Errors: map[string]string{},
	}

	stored, err := p.store.GetVehicle(ctx, slug)
	switch {
	case err == nil:
		report.Stored = stored
	case !errors.IsNotFound(err):
		return nil, err
	}

	if pref, err := p.store.GetPreference(ctx, slug); err == nil {
		report.Preference = pref
	}

	for _, source := range p.sources {
		provider := source.Provider()
		payloads, err := source.Fetch(ctx)
		if err != nil {
			report.Errors[provider.String()] = err.Error()
			continue
		}
		for i := range payloads {
			if payloads[i].Slug == slug {
				report.Fresh[provider] = &payloads[i]
				break
			}
		}
	}
	return report, nil
}
