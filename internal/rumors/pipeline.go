package rumors

import (
	"context"
	"strings"
	"sync"

	"github.com/hangarworks/fleetsync/pkg/errors"
	"github.com/hangarworks/fleetsync/pkg/logging"
	"github.com/hangarworks/fleetsync/pkg/vehicles"
)

// VehicleIndex lists canonical names and slugs for candidate filtering.
type VehicleIndex interface {
	ListVehicleNames(ctx context.Context) ([]string, error)
}

// RumorStore is the persistence surface the pipeline merges into.
type RumorStore interface {
	GetRumorByCodename(ctx context.Context, codename string) (*vehicles.Rumor, error)
	InsertRumor(ctx context.Context, r *vehicles.Rumor) error
	UpdateRumor(ctx context.Context, r *vehicles.Rumor) error
}

// Counts summarizes one pipeline run for the job ledger.
type Counts struct {
	Collected int `json:"collected"`
	Filtered  int `json:"filtered"`
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Errors    int `json:"errors"`
}

// Items is the ledger item count for the run: records actually persisted.
func (c Counts) Items() int {
	return c.Inserted + c.Updated
}

// Pipeline pulls observations from every feed, drops those matching an
// already-catalogued vehicle, and merges the rest into rumor records.
type Pipeline struct {
	vehicles VehicleIndex
	rumors   RumorStore
	feeds    []Feed
}

// New creates a pipeline over the given stores and feeds.
func New(vehicleIndex VehicleIndex, rumorStore RumorStore, feeds ...Feed) *Pipeline {
	return &Pipeline{vehicles: vehicleIndex, rumors: rumorStore, feeds: feeds}
}

// Run executes one pipeline pass. Feed failures are isolated: a failing feed
// logs a warning and contributes nothing. A failure persisting one rumor
// does not abort the others; it increments the error count.
func (p *Pipeline) Run(ctx context.Context) (*Counts, error) {
	logger := logging.FromContext(ctx)
	counts := &Counts{}

	observations := p.collect(ctx)
	counts.Collected = len(observations)

	known, err := p.knownIdentities(ctx)
	if err != nil {
		return counts, err
	}

	var kept []Observation
	for _, obs := range observations {
		if known[strings.ToLower(obs.Codename)] || known[vehicles.Slugify(obs.Codename)] {
			continue
		}
		kept = append(kept, obs)
	}
	counts.Filtered = len(kept)

	for _, group := range groupByCodename(kept) {
		inserted, err := p.merge(ctx, group)
		if err != nil {
			counts.Errors++
			logger.Error().Err(err).
				Str("codename", group[0].Codename).
				Msg("Failed to persist rumor")
			continue
		}
		if inserted {
			counts.Inserted++
		} else {
			counts.Updated++
		}
	}

	logger.Info().
		Int("collected", counts.Collected).
		Int("filtered", counts.Filtered).
		Int("inserted", counts.Inserted).
		Int("updated", counts.Updated).
		Int("errors", counts.Errors).
		Msg("Rumor pipeline completed")
	return counts, nil
}

// collect fetches every feed concurrently. Order across feeds is not
// meaningful; within a feed, observation order is preserved.
func (p *Pipeline) collect(ctx context.Context) []Observation {
	logger := logging.FromContext(ctx)

	type feedResult struct {
		source       vehicles.SourceType
		observations []Observation
	}

	var wg sync.WaitGroup
	resultChan := make(chan feedResult, len(p.feeds))

	for _, feed := range p.feeds {
		wg.Add(1)
		go func(f Feed) {
			defer wg.Done()

			observations, err := f.Fetch(ctx)
			if err != nil {
				logger.Warn().Err(err).
					Str("feed", string(f.Source())).
					Msg("Rumor feed failed; contributing no observations")
				return
			}
			resultChan <- feedResult{source: f.Source(), observations: observations}
		}(feed)
	}

	wg.Wait()
	close(resultChan)

	var out []Observation
	for result := range resultChan {
		logger.Debug().
			Str("feed", string(result.source)).
			Int("observations", len(result.observations)).
			Msg("Rumor feed collected")
		out = append(out, result.observations...)
	}
	return out
}

// knownIdentities builds the case-insensitive set of canonical names and
// slugs that disqualify a candidate.
func (p *Pipeline) knownIdentities(ctx context.Context) (map[string]bool, error) {
	names, err := p.vehicles.ListVehicleNames(ctx)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(names))
	for _, name := range names {
		known[strings.ToLower(name)] = true
	}
	return known, nil
}

// groupByCodename groups observations case-insensitively, preserving first
// appearance order of both groups and members.
func groupByCodename(observations []Observation) [][]Observation {
	index := map[string]int{}
	var groups [][]Observation
	for _, obs := range observations {
		key := strings.ToLower(obs.Codename)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], obs)
	}
	return groups
}

// merge writes one codename's observations: insert when no record exists,
// otherwise append evidence and take the newest observation's scalars.
// Reports whether a new record was inserted.
func (p *Pipeline) merge(ctx context.Context, group []Observation) (bool, error) {
	codename := group[0].Codename

	existing, err := p.rumors.GetRumorByCodename(ctx, codename)
	switch {
	case err == nil:
		return false, p.update(ctx, existing, group)
	case errors.IsNotFound(err):
		// Insert below.
	default:
		return false, err
	}

	rumor := newRumor(group)
	if err := p.rumors.InsertRumor(ctx, rumor); err != nil {
		// A concurrent run may have inserted the codename first; fold the
		// observations into whatever won the race.
		if existing, getErr := p.rumors.GetRumorByCodename(ctx, codename); getErr == nil {
			return false, p.update(ctx, existing, group)
		}
		return false, err
	}
	return true, nil
}

func newRumor(group []Observation) *vehicles.Rumor {
	first := group[0]
	rumor := &vehicles.Rumor{
		Codename:     first.Codename,
		PossibleName: first.PossibleName,
		Manufacturer: first.Manufacturer,
		Stage:        vehicles.StageUnknown,
		Active:       true,
	}
	applyObservations(rumor, group)
	return rumor
}

// applyObservations folds a group into a rumor record: evidence appends and
// truncates, scalars are last-write-wins with empty values never clobbering
// known ones.
func applyObservations(rumor *vehicles.Rumor, group []Observation) {
	for _, obs := range group {
		rumor.AppendEvidence(vehicles.Evidence{
			Source:  obs.Source,
			URL:     obs.URL,
			Date:    obs.Date,
			Excerpt: obs.Excerpt,
		})

		if obs.Stage != vehicles.StageUnknown {
			rumor.Stage = obs.Stage
		}
		if obs.PossibleName != "" {
			rumor.PossibleName = obs.PossibleName
		}
		if obs.Manufacturer != "" {
			rumor.Manufacturer = obs.Manufacturer
		}
		if obs.Notes != "" {
			rumor.Notes = obs.Notes
		}
		rumor.SourceType = obs.Source
		rumor.SourceURL = obs.URL
		rumor.SourceDate = obs.Date
	}
}

func (p *Pipeline) update(ctx context.Context, rumor *vehicles.Rumor, group []Observation) error {
	applyObservations(rumor, group)
	return p.rumors.UpdateRumor(ctx, rumor)
}
