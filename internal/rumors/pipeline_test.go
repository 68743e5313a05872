package rumors

import (
	"context"
	"strings"
	"testing"

	"github.com/agentstation/utc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hangarworks/fleetsync/pkg/errors"
	"github.com/hangarworks/fleetsync/pkg/vehicles"
)

type fakeFeed struct {
	source       vehicles.SourceType
	observations []Observation
	err          error
}

func (f *fakeFeed) Source() vehicles.SourceType { return f.source }

func (f *fakeFeed) Fetch(context.Context) ([]Observation, error) {
	return f.observations, f.err
}

type fakeIndex struct {
	names []string
	err   error
}

func (f *fakeIndex) ListVehicleNames(context.Context) ([]string, error) {
	return f.names, f.err
}

type fakeRumorStore struct {
	records   map[string]*vehicles.Rumor
	insertErr map[string]error
	updateErr map[string]error
}

func newFakeRumorStore() *fakeRumorStore {
	return &fakeRumorStore{records: map[string]*vehicles.Rumor{}}
}

func (f *fakeRumorStore) GetRumorByCodename(_ context.Context, codename string) (*vehicles.Rumor, error) {
	if r, ok := f.records[strings.ToLower(codename)]; ok {
		return r, nil
	}
	return nil, &errors.NotFoundError{Resource: "rumor", Key: codename}
}

func (f *fakeRumorStore) InsertRumor(_ context.Context, r *vehicles.Rumor) error {
	if err := f.insertErr[strings.ToLower(r.Codename)]; err != nil {
		return err
	}
	f.records[strings.ToLower(r.Codename)] = r
	return nil
}

func (f *fakeRumorStore) UpdateRumor(_ context.Context, r *vehicles.Rumor) error {
	if err := f.updateErr[strings.ToLower(r.Codename)]; err != nil {
		return err
	}
	f.records[strings.ToLower(r.Codename)] = r
	return nil
}

func observation(codename string, stage vehicles.Stage) Observation {
	return Observation{
		Codename: codename,
		Stage:    stage,
		Source:   vehicles.SourceDevReport,
		URL:      "https://feeds.test/report",
		Date:     utc.Now(),
		Excerpt:  codename + " sighting",
	}
}

func TestPipelineInsertsNewRumor(t *testing.T) {
	store := newFakeRumorStore()
	pipeline := New(
		&fakeIndex{},
		store,
		&fakeFeed{source: vehicles.SourceDevReport, observations: []Observation{
			observation("Unannounced Vehicle #3", vehicles.StageWhitebox),
		}},
	)

	counts, err := pipeline.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, counts.Collected)
	assert.Equal(t, 1, counts.Filtered)
	assert.Equal(t, 1, counts.Inserted)
	assert.Equal(t, 0, counts.Updated)

	rumor := store.records["unannounced vehicle #3"]
	require.NotNil(t, rumor)
	assert.Equal(t, vehicles.StageWhitebox, rumor.Stage)
	assert.True(t, rumor.Active)
	assert.Len(t, rumor.Evidence, 1)
}

func TestPipelineUpdatesExistingRumor(t *testing.T) {
	store := newFakeRumorStore()
	store.records["unannounced vehicle #3"] = &vehicles.Rumor{
		ID:       "existing",
		Codename: "Unannounced Vehicle #3",
		Stage:    vehicles.StageWhitebox,
		Active:   true,
		Evidence: []vehicles.Evidence{{Source: vehicles.SourceDevReport, Excerpt: "first sighting"}},
	}

	pipeline := New(
		&fakeIndex{},
		store,
		&fakeFeed{source: vehicles.SourceDevReport, observations: []Observation{
			observation("unannounced vehicle #3", vehicles.StageFinalReview),
		}},
	)

	counts, err := pipeline.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, counts.Inserted)
	assert.Equal(t, 1, counts.Updated)

	rumor := store.records["unannounced vehicle #3"]
	assert.Equal(t, "existing", rumor.ID)
	assert.Equal(t, vehicles.StageFinalReview, rumor.Stage)
	assert.Len(t, rumor.Evidence, 2)
}

func TestPipelineEvidenceCap(t *testing.T) {
	store := newFakeRumorStore()
	existing := &vehicles.Rumor{Codename: "Unannounced Vehicle #1", Active: true}
	for i := 0; i < vehicles.MaxEvidence; i++ {
		existing.Evidence = append(existing.Evidence, vehicles.Evidence{Excerpt: "old"})
	}
	store.records["unannounced vehicle #1"] = existing

	pipeline := New(&fakeIndex{}, store, &fakeFeed{observations: []Observation{
		observation("Unannounced Vehicle #1", vehicles.StageGreybox),
	}})

	_, err := pipeline.Run(context.Background())

	require.NoError(t, err)
	rumor := store.records["unannounced vehicle #1"]
	assert.Len(t, rumor.Evidence, vehicles.MaxEvidence)
	assert.Equal(t, "Unannounced Vehicle #1 sighting", rumor.Evidence[vehicles.MaxEvidence-1].Excerpt)
}

func TestPipelineFiltersKnownVehicles(t *testing.T) {
	store := newFakeRumorStore()
	pipeline := New(
		&fakeIndex{names: []string{"freelancer", "Freelancer", "hercules", "Hercules Starlifter"}},
		store,
		&fakeFeed{observations: []Observation{
			observation("FREELANCER", vehicles.StageGreybox),
			{Codename: "Hercules Starlifter", Stage: vehicles.StageGreybox, Source: vehicles.SourceRoadmap},
			observation("Unannounced Vehicle #5", vehicles.StageConcept),
		}},
	)

	counts, err := pipeline.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, counts.Collected)
	assert.Equal(t, 1, counts.Filtered)
	assert.Equal(t, 1, counts.Inserted)
	assert.Empty(t, store.records["freelancer"])
	assert.NotNil(t, store.records["unannounced vehicle #5"])
}

func TestPipelineIsolatesFeedFailure(t *testing.T) {
	store := newFakeRumorStore()
	pipeline := New(
		&fakeIndex{},
		store,
		&fakeFeed{source: vehicles.SourceDevReport, err: errors.New("feed down")},
		&fakeFeed{source: vehicles.SourceRoadmap, observations: []Observation{
			observation("Unannounced Vehicle #2", vehicles.StageConcept),
		}},
	)

	counts, err := pipeline.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, counts.Collected)
	assert.Equal(t, 1, counts.Inserted)
	assert.Equal(t, 0, counts.Errors)
}

func TestPipelineIsolatesPersistFailure(t *testing.T) {
	store := newFakeRumorStore()
	store.insertErr = map[string]error{"unannounced vehicle #1": errors.New("write failed")}

	pipeline := New(&fakeIndex{}, store, &fakeFeed{observations: []Observation{
		observation("Unannounced Vehicle #1", vehicles.StageConcept),
		observation("Unannounced Vehicle #2", vehicles.StageConcept),
	}})

	counts, err := pipeline.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, counts.Errors)
	assert.Equal(t, 1, counts.Inserted)
	assert.NotNil(t, store.records["unannounced vehicle #2"])
}

func TestPipelineGroupsCaseInsensitively(t *testing.T) {
	store := newFakeRumorStore()
	pipeline := New(&fakeIndex{}, store, &fakeFeed{observations: []Observation{
		observation("Unannounced Vehicle #4", vehicles.StageWhitebox),
		observation("UNANNOUNCED VEHICLE #4", vehicles.StageGreybox),
	}})

	counts, err := pipeline.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, counts.Inserted)

	rumor := store.records["unannounced vehicle #4"]
	require.NotNil(t, rumor)
	assert.Len(t, rumor.Evidence, 2)
	assert.Equal(t, vehicles.StageGreybox, rumor.Stage)
}
