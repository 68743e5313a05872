// Package vehicles defines the canonical domain types for fleetsync: the
// merged vehicle record, per-provider raw payloads, provenance metadata,
// manual source preferences, and rumor records for unannounced vehicles.
package vehicles

import (
	"github.com/agentstation/utc"
)

// ProviderID identifies an external data provider.
type ProviderID string

// Known providers.
const (
	// ProviderShipyard is the paginated storefront catalog API.
	ProviderShipyard ProviderID = "shipyard"

	// ProviderGamedata is the structured game-data dump with armament and
	// system component trees.
	ProviderGamedata ProviderID = "gamedata"
)

// PreferredAuto is the SourcePreference value meaning "use the default
// precedence order" rather than a single provider verbatim.
const PreferredAuto ProviderID = "auto"

// String returns the string representation of a provider ID.
func (p ProviderID) String() string {
	return string(p)
}

// Valid reports whether p names a known provider.
func (p ProviderID) Valid() bool {
	switch p {
	case ProviderShipyard, ProviderGamedata:
		return true
	}
	return false
}

// AllProviders returns the known provider IDs in default precedence order.
func AllProviders() []ProviderID {
	return []ProviderID{ProviderGamedata, ProviderShipyard}
}

// Vehicle is the merged, authoritative record for one vehicle. It is created
// on first successful normalization of a new slug and mutated only by the
// reconciliation engine. Cleanup nulls stale raw payloads, never the
// canonical fields.
type Vehicle struct {
	Slug string `json:"slug"`
	Name string `json:"name"`

	// Fields holds the merged canonical fields (manufacturer, role, size,
	// crew, cargo, dimensions, speeds, armament tree, system component
	// tree, price list) keyed by canonical field name.
	Fields map[string]any `json:"fields"`

	// ContentHash is a deterministic digest over Fields with keys sorted,
	// excluding media URLs. Two semantically identical payloads hash
	// identically regardless of field ordering or media churn.
	ContentHash string `json:"content_hash"`

	// Media URLs are preserved across updates when a fresh fetch omits them.
	ImageURL string `json:"image_url,omitempty"`
	ModelURL string `json:"model_url,omitempty"`

	Provenance Provenance `json:"provenance"`

	// Raw holds the most recent normalized-but-unmerged payload per
	// provider. Nulled by retention once the vehicle ages out of the
	// 30-day window.
	Raw map[ProviderID]*RawPayload `json:"raw,omitempty"`

	CreatedAt utc.Time `json:"created_at"`
	UpdatedAt utc.Time `json:"updated_at"`
}

// RawPayload is the normalized view of one vehicle as reported by a single
// provider, before merging.
type RawPayload struct {
	Provider  ProviderID     `json:"provider"`
	Slug      string         `json:"slug"`
	Name      string         `json:"name"`
	Fields    map[string]any `json:"fields"`
	ImageURL  string         `json:"image_url,omitempty"`
	ModelURL  string         `json:"model_url,omitempty"`
	SourceURL string         `json:"source_url,omitempty"`
	FetchedAt utc.Time       `json:"fetched_at"`
}

// Provenance describes which source(s) and when produced the current state
// of a vehicle record, with per-category change flags for observability.
type Provenance struct {
	Providers    []ProviderID `json:"providers"`
	SourceURL    string       `json:"source_url,omitempty"`
	FetchedAt    utc.Time     `json:"fetched_at"`
	DataChanged  bool         `json:"data_changed"`
	ImageChanged bool         `json:"image_changed"`
	ModelChanged bool         `json:"model_changed"`
}

// SourcePreference is an administrator's manual override for one vehicle
// slug. When Preferred names a specific provider, the merge uses that
// provider's payload verbatim for all mergeable fields. PreferredAuto falls
// through to the default precedence order.
type SourcePreference struct {
	Slug       string     `json:"slug"`
	Preferred  ProviderID `json:"preferred"`
	Reason     string     `json:"reason,omitempty"`
	ClearCache bool       `json:"clear_cache"`
	UpdatedAt  utc.Time   `json:"updated_at"`
}
