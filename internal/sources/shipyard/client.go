// Package shipyard provides the adapter for the storefront catalog API: a
// paginated full-catalog listing with rich media lists and pledge pricing.
package shipyard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/agentstation/utc"

	"github.com/hangarworks/fleetsync/internal/sources"
	"github.com/hangarworks/fleetsync/internal/sources/extract"
	"github.com/hangarworks/fleetsync/internal/transport"
	"github.com/hangarworks/fleetsync/pkg/errors"
	"github.com/hangarworks/fleetsync/pkg/logging"
	"github.com/hangarworks/fleetsync/pkg/vehicles"
)

const (
	// DefaultPageSize is the page size requested from the catalog API.
	DefaultPageSize = 100

	// DefaultMaxPages is the hard page-count ceiling, the backstop against
	// a provider that never signals end-of-data.
	DefaultMaxPages = 50

	// DefaultSnapshotTTL is how long a full-catalog snapshot stays live.
	DefaultSnapshotTTL = 24 * time.Hour
)

// Client implements the sources.Source interface for the storefront catalog.
type Client struct {
	baseURL   string
	transport *transport.Client
	snapshots sources.SnapshotStore
	pageSize  int
	maxPages  int
	ttl       time.Duration
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

// WithSnapshots enables snapshot-first catalog reads through the given
// store. Without it every Fetch is a live paginated crawl.
func WithSnapshots(s sources.SnapshotStore) Option {
	return func(c *Client) { c.snapshots = s }
}

// WithSnapshotTTL overrides how long a refreshed snapshot stays live.
func WithSnapshotTTL(ttl time.Duration) Option {
	return func(c *Client) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithPaging overrides page size and the page-count ceiling.
func WithPaging(pageSize, maxPages int) Option {
	return func(c *Client) {
		if pageSize > 0 {
			c.pageSize = pageSize
		}
		if maxPages > 0 {
			c.maxPages = maxPages
		}
	}
}

// New creates a shipyard client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   baseURL,
		transport: transport.New(),
		pageSize:  DefaultPageSize,
		maxPages:  DefaultMaxPages,
		ttl:       DefaultSnapshotTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Provider returns the provider ID for this adapter.
func (c *Client) Provider() vehicles.ProviderID {
	return vehicles.ProviderShipyard
}

// catalogPage is one page of the storefront ship listing.
type catalogPage struct {
	Data    []map[string]any `json:"data"`
	Message string           `json:"message,omitempty"`
	Success *bool            `json:"success,omitempty"`
}

// Fetch returns the normalized full catalog, preferring a live snapshot
// over a paginated crawl when a snapshot store is configured.
func (c *Client) Fetch(ctx context.Context) ([]vehicles.RawPayload, error) {
	items, err := c.catalog(ctx)
	if err != nil {
		return nil, err
	}

	payloads := make([]vehicles.RawPayload, 0, len(items))
	for _, item := range items {
		payloads = append(payloads, c.normalize(item))
	}
	return payloads, nil
}

// RefreshSnapshot gathers the full catalog live and replaces the provider's
// snapshot. All pages must succeed before anything is persisted; a failing
// page aborts the refresh with the old snapshot untouched. Returns the item
// count.
func (c *Client) RefreshSnapshot(ctx context.Context) (int, error) {
	if c.snapshots == nil {
		return 0, errors.New("no snapshot store configured")
	}

	items, err := c.fetchAllPages(ctx)
	if err != nil {
		return 0, err
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return 0, errors.WrapParse("json", "shipyard catalog", err)
	}

	if err := c.snapshots.Replace(ctx, c.Provider(), payload, c.ttl); err != nil {
		return 0, err
	}
	return len(items), nil
}

// catalog returns raw catalog items, snapshot first.
func (c *Client) catalog(ctx context.Context) ([]map[string]any, error) {
	if c.snapshots != nil {
		data, err := c.snapshots.Get(ctx, c.Provider())
		switch {
		case err == nil:
			var items []map[string]any
			if jsonErr := json.Unmarshal(data, &items); jsonErr == nil {
				return items, nil
			}
			// A corrupt snapshot falls back to a live crawl.
			logging.FromContext(ctx).Warn().
				Str("provider", c.Provider().String()).
				Msg("Discarding unreadable catalog snapshot")
		case errors.IsCacheMiss(err):
			// Fall through to live fetch.
		default:
			return nil, err
		}
	}

	return c.fetchAllPages(ctx)
}

// fetchAllPages crawls the paginated listing: bounded page size, stop on a
// short page, hard ceiling on page count. Any non-2xx or malformed page
// aborts the whole crawl.
func (c *Client) fetchAllPages(ctx context.Context) ([]map[string]any, error) {
	var items []map[string]any

	for page := 1; page <= c.maxPages; page++ {
		url := fmt.Sprintf("%s/api/v1/ships?page=%d&page_size=%d", c.baseURL, page, c.pageSize)

		resp, err := c.transport.Get(ctx, url)
		if err != nil {
			return nil, errors.WrapProvider(c.Provider().String(), url, err)
		}

		var result catalogPage
		if err := transport.DecodeResponse(c.Provider().String(), resp, &result); err != nil {
			return nil, err
		}
		if result.Success != nil && !*result.Success {
			return nil, errors.NewProviderError(c.Provider().String(), url, 0, result.Message)
		}

		items = append(items, result.Data...)
		if len(result.Data) < c.pageSize {
			return items, nil
		}
	}

	logging.FromContext(ctx).Warn().
		Int("max_pages", c.maxPages).
		Msg("Catalog crawl hit the page ceiling; provider may not signal end-of-data")
	return items, nil
}

// normalize maps one storefront catalog item onto the canonical field set.
// Each field tries an ordered chain of provider keys so schema drift
// degrades a single field, not the record.
func (c *Client) normalize(item map[string]any) vehicles.RawPayload {
	name := extract.String(item, "name", "title")
	slug := extract.String(item, "slug", "url_slug")
	if slug == "" {
		slug = vehicles.Slugify(name)
	}

	fields := map[string]any{}
	setString(fields, "manufacturer", extract.String(item, "manufacturer.name", "manufacturer", "maker"))
	setString(fields, "role", extract.String(item, "focus", "role", "type"))
	setString(fields, "size", extract.String(item, "size", "class"))

	crew := map[string]any{}
	if min, ok := extract.Number(item, "min_crew", "crew.min"); ok {
		crew["min"] = min
	}
	if max, ok := extract.Number(item, "max_crew", "crew.max"); ok {
		crew["max"] = max
	}
	if len(crew) > 0 {
		fields["crew"] = crew
	}

	if cargo, ok := extract.Number(item, "cargocapacity", "cargo_capacity", "cargo"); ok {
		fields["cargo"] = cargo
	}
	if mass, ok := extract.Number(item, "mass"); ok {
		fields["mass"] = mass
	}

	dims := map[string]any{}
	for canon, keys := range map[string][]string{
		"length": {"length", "size.length"},
		"beam":   {"beam", "width", "size.beam"},
		"height": {"height", "size.height"},
	} {
		if v, ok := extract.Number(item, keys...); ok {
			dims[canon] = v
		}
	}
	if len(dims) > 0 {
		fields["dimensions"] = dims
	}

	speeds := map[string]any{}
	if v, ok := extract.Number(item, "scm_speed", "speed.scm"); ok {
		speeds["scm"] = v
	}
	if v, ok := extract.Number(item, "afterburner_speed", "max_speed", "speed.max"); ok {
		speeds["max"] = v
	}
	if len(speeds) > 0 {
		fields["speeds"] = speeds
	}

	if prices, ok := extract.Slice(item, "prices", "skus"); ok {
		fields["prices"] = prices
	} else if msrp, ok := extract.Number(item, "msrp", "price"); ok {
		fields["prices"] = []any{map[string]any{"amount": msrp, "kind": "msrp"}}
	}

	media := mediaItems(item)

	return vehicles.RawPayload{
		Provider:  c.Provider(),
		Slug:      slug,
		Name:      name,
		Fields:    fields,
		ImageURL:  extract.PickImage(media),
		ModelURL:  extract.PickModelURL(media),
		SourceURL: c.sourceURL(item, slug),
		FetchedAt: utc.Now(),
	}
}

func (c *Client) sourceURL(item map[string]any, slug string) string {
	if u := extract.String(item, "url", "store_url"); u != "" {
		if len(u) > 0 && u[0] == '/' {
			return c.baseURL + u
		}
		return u
	}
	return fmt.Sprintf("%s/pledge/ships/%s", c.baseURL, slug)
}

// mediaItems collects the item's media list into the common shape.
func mediaItems(item map[string]any) []extract.MediaItem {
	raw, ok := extract.Slice(item, "media", "images")
	if !ok {
		return nil
	}

	items := make([]extract.MediaItem, 0, len(raw))
	for _, entry := range raw {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}

		media := extract.MediaItem{
			URL:    extract.String(m, "source_url", "url", "href"),
			Format: extract.String(m, "format", "type"),
		}
		if tags, ok := extract.Slice(m, "tags"); ok {
			for _, tag := range tags {
				if s, ok := tag.(string); ok {
					media.Tags = append(media.Tags, s)
				}
			}
		}
		items = append(items, media)
	}
	return items
}

func setString(fields map[string]any, key, value string) {
	if value != "" {
		fields[key] = value
	}
}
