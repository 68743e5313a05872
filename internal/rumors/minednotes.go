package rumors

import (
	"context"

	"github.com/hangarworks/fleetsync/internal/transport"
	"github.com/hangarworks/fleetsync/pkg/errors"
	"github.com/hangarworks/fleetsync/pkg/vehicles"
)

// MinedNotes is the community-maintained data-mining feed: short free-text
// notes about strings and assets found in game builds.
type MinedNotes struct {
	feed
}

// NewMinedNotes creates the data-mining feed for the given base URL.
func NewMinedNotes(baseURL string, opts ...FeedOption) *MinedNotes {
	return &MinedNotes{feed: newFeed(baseURL, opts...)}
}

// Source identifies the feed's observation source type.
func (f *MinedNotes) Source() vehicles.SourceType {
	return vehicles.SourceDataMining
}

type minedNotesDoc struct {
	Data []struct {
		Text     string `json:"text"`
		URL      string `json:"url"`
		PostedAt string `json:"posted_at"`
	} `json:"data"`
}

// Fetch pulls the note listing and mines each note for observations.
func (f *MinedNotes) Fetch(ctx context.Context) ([]Observation, error) {
	url := f.baseURL + "/api/v1/notes"
	resp, err := f.transport.Get(ctx, url)
	if err != nil {
		return nil, errors.WrapProvider(string(f.Source()), url, err)
	}

	var doc minedNotesDoc
	if err := transport.DecodeResponse(string(f.Source()), resp, &doc); err != nil {
		return nil, err
	}

	var out []Observation
	for _, note := range doc.Data {
		date := parseFeedTime(note.PostedAt)
		out = append(out, Mine(note.Text, f.Source(), absoluteURL(f.baseURL, note.URL), date)...)
	}
	return out, nil
}
