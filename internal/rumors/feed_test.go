package rumors

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hangarworks/fleetsync/pkg/vehicles"
)

func TestDevReportsFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/dev-reports", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": [{
			"title": "Monthly Report",
			"body": "The team moved the 4th unannounced vehicle into greybox.",
			"url": "/reports/march",
			"published_at": "2026-03-01T00:00:00Z"
		}]}`))
	}))
	defer server.Close()

	feed := NewDevReports(server.URL)
	observations, err := feed.Fetch(context.Background())

	require.NoError(t, err)
	require.Len(t, observations, 1)
	assert.Equal(t, "Unannounced Vehicle #4", observations[0].Codename)
	assert.Equal(t, vehicles.StageGreybox, observations[0].Stage)
	assert.Equal(t, vehicles.SourceDevReport, observations[0].Source)
	assert.Equal(t, server.URL+"/reports/march", observations[0].URL)
	assert.Equal(t, "2026-03-01T00:00:00Z", observations[0].Date.Format("2006-01-02T15:04:05Z"))
}

func TestDevReportsFetchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := NewDevReports(server.URL).Fetch(context.Background())
	assert.Error(t, err)
}

func TestRoadmapFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/roadmap", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": [
			{
				"name": "Apex Raider",
				"manufacturer": "Aegis",
				"status": "In Whitebox",
				"description": "Heavy fighter in active development.",
				"url": "/roadmap/apex-raider",
				"updated_at": "2026-02-10"
			},
			{"status": "orphan entry without a name"}
		]}`))
	}))
	defer server.Close()

	feed := NewRoadmap(server.URL)
	observations, err := feed.Fetch(context.Background())

	require.NoError(t, err)
	require.Len(t, observations, 1)
	assert.Equal(t, "Apex Raider", observations[0].Codename)
	assert.Equal(t, "Apex Raider", observations[0].PossibleName)
	assert.Equal(t, "Aegis", observations[0].Manufacturer)
	assert.Equal(t, vehicles.StageWhitebox, observations[0].Stage)
	assert.Equal(t, vehicles.SourceRoadmap, observations[0].Source)
	assert.Equal(t, "Heavy fighter in active development.", observations[0].Excerpt)
}

func TestMinedNotesFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/notes", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": [{
			"text": "Found strings for the Drake Phantom, looks to be concepting.",
			"url": "https://miners.test/notes/77",
			"posted_at": "2026-01-05T12:00:00Z"
		}]}`))
	}))
	defer server.Close()

	feed := NewMinedNotes(server.URL)
	observations, err := feed.Fetch(context.Background())

	require.NoError(t, err)
	require.Len(t, observations, 1)
	assert.Equal(t, "Drake Phantom", observations[0].Codename)
	assert.Equal(t, vehicles.StageConcept, observations[0].Stage)
	assert.Equal(t, vehicles.SourceDataMining, observations[0].Source)
	assert.Equal(t, "https://miners.test/notes/77", observations[0].URL)
}
