// Package reconcile merges normalized provider payloads into a canonical
// vehicle record. The engine honors manual source preferences, applies a
// configurable per-field precedence order, and computes a content hash over
// the merged fields so that unchanged records skip the write entirely.
package reconcile

import (
	"sort"

	"github.com/agentstation/utc"

	"github.com/hangarworks/fleetsync/pkg/vehicles"
)

// Engine merges provider payloads into canonical vehicle records.
type Engine struct {
	precedence *PrecedenceConfig
	now        func() utc.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithPrecedence sets the field precedence table.
func WithPrecedence(cfg *PrecedenceConfig) Option {
	return func(e *Engine) {
		if cfg != nil {
			e.precedence = cfg
		}
	}
}

// WithClock overrides the engine's clock, used by tests.
func WithClock(now func() utc.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New creates a reconciliation engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		precedence: DefaultPrecedence(),
		now:        utc.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Decision is the outcome of merging one vehicle. When Write is false the
// stored record already reflects the fetched payloads and no write is
// warranted.
type Decision struct {
	Vehicle *vehicles.Vehicle
	Write   bool
	Created bool

	DataChanged  bool
	ImageChanged bool
	ModelChanged bool
}

// Merge reconciles freshly fetched payloads with the stored record (nil for
// a new vehicle) under an optional source preference. Payloads are keyed by
// provider; at least one payload or a stored record must be present.
func (e *Engine) Merge(
	slug string,
	payloads map[vehicles.ProviderID]*vehicles.RawPayload,
	stored *vehicles.Vehicle,
	pref *vehicles.SourcePreference,
) (*Decision, error) {
	merged, contributors := e.mergeFields(payloads, stored, pref)
	name := e.pickName(payloads, stored, contributors)

	hash, err := hashContent(name, merged)
	if err != nil {
		return nil, err
	}

	freshImage, freshModel := e.pickMedia(payloads, contributors)

	decision := &Decision{}
	if stored == nil {
		decision.Created = true
		decision.DataChanged = true
		decision.ImageChanged = freshImage != ""
		decision.ModelChanged = freshModel != ""
	} else {
		decision.DataChanged = hash != stored.ContentHash
		decision.ImageChanged = freshImage != "" && freshImage != stored.ImageURL
		decision.ModelChanged = freshModel != "" && freshModel != stored.ModelURL
	}

	decision.Write = decision.DataChanged || decision.ImageChanged || decision.ModelChanged
	if !decision.Write {
		decision.Vehicle = stored
		return decision, nil
	}

	now := e.now()
	v := &vehicles.Vehicle{
		Slug:        slug,
		Name:        name,
		Fields:      merged,
		ContentHash: hash,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if stored != nil {
		v.CreatedAt = stored.CreatedAt
		v.ImageURL = stored.ImageURL
		v.ModelURL = stored.ModelURL
		v.Raw = stored.Raw
	}

	// Media carry-forward: a provider's transient omission never erases
	// good data already on file.
	if freshImage != "" {
		v.ImageURL = freshImage
	}
	if freshModel != "" {
		v.ModelURL = freshModel
	}

	v.Provenance = vehicles.Provenance{
		Providers:    contributors,
		SourceURL:    e.pickSourceURL(payloads, contributors),
		FetchedAt:    now,
		DataChanged:  decision.DataChanged,
		ImageChanged: decision.ImageChanged,
		ModelChanged: decision.ModelChanged,
	}

	// Attach the raw payloads most recently fetched from each provider.
	if len(payloads) > 0 {
		if v.Raw == nil {
			v.Raw = make(map[vehicles.ProviderID]*vehicles.RawPayload, len(payloads))
		}
		for id, p := range payloads {
			if p != nil {
				v.Raw[id] = p
			}
		}
	}

	decision.Vehicle = v
	return decision, nil
}

// mergeFields produces the merged canonical field map and the list of
// providers that contributed to it.
func (e *Engine) mergeFields(
	payloads map[vehicles.ProviderID]*vehicles.RawPayload,
	stored *vehicles.Vehicle,
	pref *vehicles.SourcePreference,
) (map[string]any, []vehicles.ProviderID) {
	// A specific preferred provider wins verbatim when its payload is
	// available, fresh or previously stored.
	if pref != nil && pref.Preferred != "" && pref.Preferred != vehicles.PreferredAuto {
		if p := payloads[pref.Preferred]; p != nil {
			return copyFields(p.Fields), []vehicles.ProviderID{pref.Preferred}
		}
		if stored != nil {
			if p := stored.Raw[pref.Preferred]; p != nil {
				return copyFields(p.Fields), []vehicles.ProviderID{pref.Preferred}
			}
		}
	}

	// Default: per-field precedence over the union of field keys.
	merged := make(map[string]any)
	contributed := make(map[vehicles.ProviderID]bool)

	for _, field := range fieldUnion(payloads) {
		for _, id := range e.precedence.Order(field) {
			p := payloads[id]
			if p == nil {
				continue
			}
			if value, ok := p.Fields[field]; ok && value != nil {
				merged[field] = value
				contributed[id] = true
				break
			}
		}
	}

	contributors := make([]vehicles.ProviderID, 0, len(contributed))
	for _, id := range vehicles.AllProviders() {
		if contributed[id] {
			contributors = append(contributors, id)
		}
	}
	return merged, contributors
}

// pickMedia selects fresh media URLs, preferring contributing providers in
// default order.
func (e *Engine) pickMedia(
	payloads map[vehicles.ProviderID]*vehicles.RawPayload,
	contributors []vehicles.ProviderID,
) (image, model string) {
	for _, id := range e.mediaOrder(contributors) {
		p := payloads[id]
		if p == nil {
			continue
		}
		if image == "" && p.ImageURL != "" {
			image = p.ImageURL
		}
		if model == "" && p.ModelURL != "" {
			model = p.ModelURL
		}
	}
	return image, model
}

func (e *Engine) pickName(
	payloads map[vehicles.ProviderID]*vehicles.RawPayload,
	stored *vehicles.Vehicle,
	contributors []vehicles.ProviderID,
) string {
	for _, id := range e.mediaOrder(contributors) {
		if p := payloads[id]; p != nil && p.Name != "" {
			return p.Name
		}
	}
	if stored != nil {
		return stored.Name
	}
	return ""
}

func (e *Engine) pickSourceURL(
	payloads map[vehicles.ProviderID]*vehicles.RawPayload,
	contributors []vehicles.ProviderID,
) string {
	for _, id := range e.mediaOrder(contributors) {
		if p := payloads[id]; p != nil && p.SourceURL != "" {
			return p.SourceURL
		}
	}
	return ""
}

// mediaOrder consults contributors first (preference overrides narrow the
// merge to one provider), then the default precedence.
func (e *Engine) mediaOrder(contributors []vehicles.ProviderID) []vehicles.ProviderID {
	if len(contributors) == 1 {
		return append(contributors, e.precedence.Default...)
	}
	return e.precedence.Default
}

// fieldUnion returns the sorted union of field keys across payloads.
func fieldUnion(payloads map[vehicles.ProviderID]*vehicles.RawPayload) []string {
	seen := make(map[string]bool)
	for _, p := range payloads {
		if p == nil {
			continue
		}
		for field := range p.Fields {
			seen[field] = true
		}
	}

	fields := make([]string, 0, len(seen))
	for field := range seen {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

func copyFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
