// Package sources defines the source adapter contract. An adapter fetches
// and normalizes raw data from one external provider into the common
// RawPayload shape; it is a pure fetch+transform with no side effects.
package sources

import (
	"context"
	"time"

	"github.com/hangarworks/fleetsync/pkg/vehicles"
)

// Source is one external provider adapter. Fetch returns the provider's full
// normalized catalog or fails with a ProviderError; an empty but well-formed
// catalog response is a legitimate empty result, never an error.
type Source interface {
	Provider() vehicles.ProviderID
	Fetch(ctx context.Context) ([]vehicles.RawPayload, error)
}

// SnapshotStore is the time-bounded store of expensive full-catalog
// responses, shared across adapters that prefer cache over a live call.
// Implemented by the relational store's provider_cache table.
type SnapshotStore interface {
	// Get returns the live snapshot for a provider, or ErrCacheMiss when
	// absent or expired.
	Get(ctx context.Context, provider vehicles.ProviderID) ([]byte, error)

	// Replace deletes the provider's existing snapshot and inserts the new
	// one with the given TTL, atomically.
	Replace(ctx context.Context, provider vehicles.ProviderID, payload []byte, ttl time.Duration) error
}
