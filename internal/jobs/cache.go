package jobs

import (
	"context"

	"github.com/hangarworks/fleetsync/pkg/errors"
	"github.com/hangarworks/fleetsync/pkg/logging"
	"github.com/hangarworks/fleetsync/pkg/vehicles"
)

// SnapshotRefresher is a source adapter that can rebuild its provider's
// full-catalog snapshot.
type SnapshotRefresher interface {
	Provider() vehicles.ProviderID
	RefreshSnapshot(ctx context.Context) (int, error)
}

// CacheRefresher runs the provider cache refresh job.
type CacheRefresher struct {
	refreshers map[vehicles.ProviderID]SnapshotRefresher
}

// NewCacheRefresher creates the cache job over the adapters that support
// snapshot refresh.
func NewCacheRefresher(refreshers ...SnapshotRefresher) *CacheRefresher {
	byProvider := make(map[vehicles.ProviderID]SnapshotRefresher, len(refreshers))
	for _, r := range refreshers {
		byProvider[r.Provider()] = r
	}
	return &CacheRefresher{refreshers: byProvider}
}

// Run rebuilds one provider's snapshot. The refresh is all-or-nothing; on
// failure the prior snapshot, if any, is untouched.
func (c *CacheRefresher) Run(ctx context.Context, provider vehicles.ProviderID) (*Result, error) {
	refresher, ok := c.refreshers[provider]
	if !ok {
		return nil, errors.NewValidationError("provider",
			"provider does not support snapshot refresh: "+provider.String())
	}

	count, err := refresher.RefreshSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info().
		Str("provider", provider.String()).
		Int("items", count).
		Msg("Provider snapshot refreshed")

	return &Result{
		ItemCount: count,
		Detail:    map[string]any{"provider": provider.String()},
	}, nil
}
