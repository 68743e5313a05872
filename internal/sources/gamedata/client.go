// Package gamedata provides the adapter for the extracted game-data dump: a
// single large listing with detailed armament and system component trees.
// Its structured trees take precedence over the storefront catalog during
// reconciliation.
package gamedata

import (
	"context"

	"github.com/agentstation/utc"

	"github.com/hangarworks/fleetsync/internal/sources/extract"
	"github.com/hangarworks/fleetsync/internal/transport"
	"github.com/hangarworks/fleetsync/pkg/errors"
	"github.com/hangarworks/fleetsync/pkg/vehicles"
)

// Client implements the sources.Source interface for the game-data dump.
type Client struct {
	baseURL   string
	transport *transport.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTransport overrides the HTTP transport, used by tests.
func WithTransport(t *transport.Client) Option {
	return func(c *Client) {
		if t != nil {
			c.transport = t
		}
	}
}

// New creates a gamedata client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   baseURL,
		transport: transport.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Provider returns the provider ID for this adapter.
func (c *Client) Provider() vehicles.ProviderID {
	return vehicles.ProviderGamedata
}

// Fetch retrieves and normalizes the full dump. The dump is one request; no
// pagination and no snapshot caching.
func (c *Client) Fetch(ctx context.Context) ([]vehicles.RawPayload, error) {
	url := c.baseURL + "/v2/ships.json"

	resp, err := c.transport.Get(ctx, url)
	if err != nil {
		return nil, errors.WrapProvider(c.Provider().String(), url, err)
	}

	var items []map[string]any
	if err := transport.DecodeResponse(c.Provider().String(), resp, &items); err != nil {
		return nil, err
	}

	payloads := make([]vehicles.RawPayload, 0, len(items))
	for _, item := range items {
		p := c.normalize(item)
		if p.Slug == "" {
			continue // unusable row, no identity at all
		}
		payloads = append(payloads, p)
	}
	return payloads, nil
}

// normalize maps one dump entry onto the canonical field set. The dump uses
// UpperCamel keys and has drifted across game patches, so every field tries
// an ordered chain of candidates.
func (c *Client) normalize(item map[string]any) vehicles.RawPayload {
	name := extract.String(item, "Name", "DisplayName", "ClassName")
	slug := vehicles.Slugify(extract.String(item, "Slug", "Name", "ClassName"))

	fields := map[string]any{}
	if v := extract.String(item, "Manufacturer.Name", "Manufacturer", "ManufacturerCode"); v != "" {
		fields["manufacturer"] = v
	}
	if v := extract.String(item, "Role", "Career", "Focus"); v != "" {
		fields["role"] = v
	}
	if v, ok := extract.Number(item, "Size"); ok {
		fields["size"] = sizeClass(int(v))
	}

	if v, ok := extract.Number(item, "Crew", "CrewSize"); ok {
		fields["crew"] = map[string]any{"min": float64(1), "max": v}
	}
	if v, ok := extract.Number(item, "Cargo", "CargoCapacity"); ok {
		fields["cargo"] = v
	}
	if v, ok := extract.Number(item, "Mass"); ok {
		fields["mass"] = v
	}

	dims := map[string]any{}
	for canon, keys := range map[string][]string{
		"length": {"Length", "Dimensions.Length"},
		"beam":   {"Width", "Beam", "Dimensions.Width"},
		"height": {"Height", "Dimensions.Height"},
	} {
		if v, ok := extract.Number(item, keys...); ok {
			dims[canon] = v
		}
	}
	if len(dims) > 0 {
		fields["dimensions"] = dims
	}

	speeds := map[string]any{}
	if v, ok := extract.Number(item, "FlightCharacteristics.ScmSpeed", "ScmSpeed"); ok {
		speeds["scm"] = v
	}
	if v, ok := extract.Number(item, "FlightCharacteristics.MaxSpeed", "MaxSpeed"); ok {
		speeds["max"] = v
	}
	if len(speeds) > 0 {
		fields["speeds"] = speeds
	}

	// The structured trees this provider is authoritative for.
	if tree, ok := extract.Chain(item, "Weapons", "Hardpoints", "Armament"); ok {
		fields["armament"] = tree
	}
	if tree, ok := extract.Chain(item, "Components", "Systems"); ok {
		fields["systems"] = tree
	}

	return vehicles.RawPayload{
		Provider:  c.Provider(),
		Slug:      slug,
		Name:      name,
		Fields:    fields,
		ModelURL:  extract.String(item, "ModelUrl", "Model.Url"),
		SourceURL: c.baseURL + "/ships/" + slug,
		FetchedAt: utc.Now(),
	}
}

// sizeClass maps the dump's numeric size class onto the canonical labels.
func sizeClass(size int) string {
	switch {
	case size <= 0:
		return "vehicle"
	case size == 1:
		return "snub"
	case size == 2:
		return "small"
	case size == 3:
		return "medium"
	case size == 4:
		return "large"
	default:
		return "capital"
	}
}
