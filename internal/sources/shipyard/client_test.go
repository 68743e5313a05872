package shipyard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hangarworks/fleetsync/pkg/errors"
	"github.com/hangarworks/fleetsync/pkg/vehicles"
)

// fakeSnapshots is an in-memory SnapshotStore.
type fakeSnapshots struct {
	mu       sync.Mutex
	data     map[vehicles.ProviderID][]byte
	replaces int
}

func newFakeSnapshots() *fakeSnapshots {
	return &fakeSnapshots{data: make(map[vehicles.ProviderID][]byte)}
}

func (f *fakeSnapshots) Get(_ context.Context, provider vehicles.ProviderID) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.data[provider]; ok {
		return d, nil
	}
	return nil, errors.ErrCacheMiss
}

func (f *fakeSnapshots) Replace(_ context.Context, provider vehicles.ProviderID, payload []byte, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[provider] = payload
	f.replaces++
	return nil
}

func shipJSON(name string) map[string]any {
	return map[string]any{
		"name": name,
		"manufacturer": map[string]any{
			"name": "MISC",
		},
		"focus":         "Medium Freight",
		"min_crew":      1,
		"max_crew":      4,
		"cargocapacity": 66,
		"length":        38.5,
		"beam":          23.5,
		"height":        9.5,
		"scm_speed":     130,
		"media": []any{
			map[string]any{"source_url": "https://cdn.example/thumb.jpg", "tags": []any{"thumbnail"}},
			map[string]any{"source_url": "https://cdn.example/store.jpg", "tags": []any{"store_large"}},
			map[string]any{"source_url": "https://cdn.example/hull.ctm"},
		},
		"msrp": 110,
		"url":  "/pledge/ships/freelancer",
	}
}

func pageHandler(t *testing.T, pages [][]map[string]any, fail map[int]int) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		var page int
		_, err := fmt.Sscanf(r.URL.Query().Get("page"), "%d", &page)
		require.NoError(t, err)

		if status, ok := fail[page]; ok {
			http.Error(w, "boom", status)
			return
		}

		data := []map[string]any{}
		if page-1 < len(pages) {
			data = pages[page-1]
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
	}
}

func TestFetchPaginatesAndNormalizes(t *testing.T) {
	pageSize := 2
	pages := [][]map[string]any{
		{shipJSON("Freelancer"), shipJSON("Prospector")},
		{shipJSON("Carrack")}, // short page ends the crawl
	}

	srv := httptest.NewServer(pageHandler(t, pages, nil))
	defer srv.Close()

	client := New(srv.URL, WithPaging(pageSize, 10))
	payloads, err := client.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, payloads, 3)

	p := payloads[0]
	assert.Equal(t, vehicles.ProviderShipyard, p.Provider)
	assert.Equal(t, "freelancer", p.Slug)
	assert.Equal(t, "Freelancer", p.Name)
	assert.Equal(t, "MISC", p.Fields["manufacturer"])
	assert.Equal(t, "Medium Freight", p.Fields["role"])
	assert.Equal(t, map[string]any{"min": float64(1), "max": float64(4)}, p.Fields["crew"])
	assert.Equal(t, float64(66), p.Fields["cargo"])
	assert.Equal(t, "https://cdn.example/store.jpg", p.ImageURL)
	assert.Equal(t, "https://cdn.example/hull.ctm", p.ModelURL)
	assert.Equal(t, srv.URL+"/pledge/ships/freelancer", p.SourceURL)
}

func TestFetchEmptyCatalogIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(pageHandler(t, nil, nil))
	defer srv.Close()

	payloads, err := New(srv.URL).Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, payloads)
}

func TestFetchFailingPageAbortsCrawl(t *testing.T) {
	pages := [][]map[string]any{
		{shipJSON("A"), shipJSON("B")},
		{shipJSON("C"), shipJSON("D")},
		{shipJSON("E")},
	}

	srv := httptest.NewServer(pageHandler(t, pages, map[int]int{2: http.StatusBadGateway}))
	defer srv.Close()

	_, err := New(srv.URL, WithPaging(2, 10)).Fetch(context.Background())
	require.Error(t, err)

	var perr *errors.ProviderError
	assert.ErrorAs(t, err, &perr)
}

func TestFetchStopsAtPageCeiling(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		// Always a full page: the provider never signals end-of-data.
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{shipJSON("X"), shipJSON("Y")},
		})
	}))
	defer srv.Close()

	payloads, err := New(srv.URL, WithPaging(2, 3)).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, requests)
	assert.Len(t, payloads, 6)
}

func TestRefreshSnapshotAllOrNothing(t *testing.T) {
	snapshots := newFakeSnapshots()
	stale, _ := json.Marshal([]map[string]any{shipJSON("Old Hull")})
	snapshots.data[vehicles.ProviderShipyard] = stale

	pages := [][]map[string]any{
		{shipJSON("A"), shipJSON("B")},
		{shipJSON("C"), shipJSON("D")},
		{shipJSON("E")},
	}

	srv := httptest.NewServer(pageHandler(t, pages, map[int]int{2: http.StatusInternalServerError}))
	defer srv.Close()

	client := New(srv.URL, WithPaging(2, 10), WithSnapshots(snapshots))

	// Page 2 of 3 fails: no snapshot write, old row untouched.
	_, err := client.RefreshSnapshot(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, snapshots.replaces)
	assert.Equal(t, stale, snapshots.data[vehicles.ProviderShipyard])
}

func TestRefreshSnapshotSuccess(t *testing.T) {
	snapshots := newFakeSnapshots()
	pages := [][]map[string]any{{shipJSON("A")}}

	srv := httptest.NewServer(pageHandler(t, pages, nil))
	defer srv.Close()

	client := New(srv.URL, WithPaging(2, 10), WithSnapshots(snapshots))

	count, err := client.RefreshSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, snapshots.replaces)
}

func TestFetchPrefersSnapshot(t *testing.T) {
	snapshots := newFakeSnapshots()
	cached, _ := json.Marshal([]map[string]any{shipJSON("Cached Hull")})
	snapshots.data[vehicles.ProviderShipyard] = cached

	// Any live request is a test failure: the snapshot must serve.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("unexpected live request while snapshot is live")
		http.Error(w, "nope", http.StatusTeapot)
	}))
	defer srv.Close()

	payloads, err := New(srv.URL, WithSnapshots(snapshots)).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, payloads, 1)
	assert.Equal(t, "cached-hull", payloads[0].Slug)
}
