package jobs

import (
	"context"
	"sort"
	"sync"

	"github.com/hangarworks/fleetsync/internal/sources"
	"github.com/hangarworks/fleetsync/pkg/errors"
	"github.com/hangarworks/fleetsync/pkg/logging"
	"github.com/hangarworks/fleetsync/pkg/reconcile"
	"github.com/hangarworks/fleetsync/pkg/vehicles"
)

// SyncStore is the persistence surface the sync job reads and writes.
type SyncStore interface {
	GetVehicle(ctx context.Context, slug string) (*vehicles.Vehicle, error)
	UpsertVehicle(ctx context.Context, v *vehicles.Vehicle) error
	GetPreference(ctx context.Context, slug string) (*vehicles.SourcePreference, error)
}

// Syncer runs one full reconciliation pass: fetch every provider, merge per
// vehicle, and write only what changed.
type Syncer struct {
	sources []sources.Source
	engine  *reconcile.Engine
	store   SyncStore
}

// NewSyncer creates a sync job over the given adapters, engine, and store.
func NewSyncer(adapters []sources.Source, engine *reconcile.Engine, store SyncStore) *Syncer {
	return &Syncer{sources: adapters, engine: engine, store: store}
}

// Run executes the sync. A provider failure degrades the run to the
// remaining providers; all providers failing fails the run. A failure
// merging or writing one vehicle never aborts the rest.
func (s *Syncer) Run(ctx context.Context) (*Result, error) {
	logger := logging.FromContext(ctx)

	bySlug, providerErrs := s.fetchAll(ctx)
	if len(bySlug) == 0 && providerErrs > 0 {
		return &Result{Detail: map[string]any{"provider_errors": providerErrs}},
			errors.New("all providers failed")
	}

	var upserts, skips, entityErrs int
	for _, slug := range sortedSlugs(bySlug) {
		written, err := s.reconcile(ctx, slug, bySlug[slug])
		if err != nil {
			entityErrs++
			logger.Error().Err(err).Str("slug", slug).Msg("Failed to reconcile vehicle")
			continue
		}
		if written {
			upserts++
		} else {
			skips++
		}
	}

	logger.Info().
		Int("vehicles", len(bySlug)).
		Int("upserts", upserts).
		Int("skips", skips).
		Int("errors", entityErrs).
		Msg("Sync pass completed")

	result := &Result{
		ItemCount: upserts,
		Detail: map[string]any{
			"vehicles":        len(bySlug),
			"upserts":         upserts,
			"skips":           skips,
			"errors":          entityErrs,
			"provider_errors": providerErrs,
		},
	}
	if entityErrs > 0 && upserts == 0 && skips == 0 {
		return result, errors.New("every vehicle in the batch failed to reconcile")
	}
	return result, nil
}

// fetchAll pulls every provider concurrently and groups payloads by slug.
// Returns the grouped payloads and the number of failed providers.
func (s *Syncer) fetchAll(ctx context.Context) (map[string]map[vehicles.ProviderID]*vehicles.RawPayload, int) {
	logger := logging.FromContext(ctx)

	type fetchResult struct {
		provider vehicles.ProviderID
		payloads []vehicles.RawPayload
		err      error
	}

	var wg sync.WaitGroup
	resultChan := make(chan fetchResult, len(s.sources))

	for _, source := range s.sources {
		wg.Add(1)
		go func(src sources.Source) {
			defer wg.Done()
			payloads, err := src.Fetch(ctx)
			resultChan <- fetchResult{provider: src.Provider(), payloads: payloads, err: err}
		}(source)
	}

	wg.Wait()
	close(resultChan)

	bySlug := map[string]map[vehicles.ProviderID]*vehicles.RawPayload{}
	providerErrs := 0
	for result := range resultChan {
		if result.err != nil {
			providerErrs++
			logger.Warn().Err(result.err).
				Str("provider", result.provider.String()).
				Msg("Provider fetch failed; continuing with remaining providers")
			continue
		}

		logger.Debug().
			Str("provider", result.provider.String()).
			Int("payloads", len(result.payloads)).
			Msg("Provider fetch completed")

		for i := range result.payloads {
			payload := &result.payloads[i]
			if payload.Slug == "" {
				continue
			}
			if bySlug[payload.Slug] == nil {
				bySlug[payload.Slug] = map[vehicles.ProviderID]*vehicles.RawPayload{}
			}
			bySlug[payload.Slug][result.provider] = payload
		}
	}
	return bySlug, providerErrs
}

// reconcile merges one vehicle's payloads and writes if warranted. Reports
// whether a write happened.
func (s *Syncer) reconcile(ctx context.Context, slug string, payloads map[vehicles.ProviderID]*vehicles.RawPayload) (bool, error) {
	stored, err := s.store.GetVehicle(ctx, slug)
	if err != nil && !errors.IsNotFound(err) {
		return false, err
	}

	pref, err := s.store.GetPreference(ctx, slug)
	if err != nil && !errors.IsNotFound(err) {
		return false, err
	}

	decision, err := s.engine.Merge(slug, payloads, stored, pref)
	if err != nil {
		return false, err
	}
	if !decision.Write {
		return false, nil
	}
	return true, s.store.UpsertVehicle(ctx, decision.Vehicle)
}

func sortedSlugs(bySlug map[string]map[vehicles.ProviderID]*vehicles.RawPayload) []string {
	slugs := make([]string, 0, len(bySlug))
	for slug := range bySlug {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}
