package rumors

import (
	"context"
	"fmt"

	"github.com/hangarworks/fleetsync/internal/transport"
	"github.com/hangarworks/fleetsync/pkg/errors"
	"github.com/hangarworks/fleetsync/pkg/vehicles"
)

// Roadmap is the structured in-development catalog feed. Entries already
// carry a name and a status string, so no text mining is needed; only the
// status needs mapping onto the stage enum.
type Roadmap struct {
	feed
}

// NewRoadmap creates the roadmap feed for the given base URL.
func NewRoadmap(baseURL string, opts ...FeedOption) *Roadmap {
	return &Roadmap{feed: newFeed(baseURL, opts...)}
}

// Source identifies the feed's observation source type.
func (f *Roadmap) Source() vehicles.SourceType {
	return vehicles.SourceRoadmap
}

type roadmapDoc struct {
	Data []struct {
		Name         string `json:"name"`
		Manufacturer string `json:"manufacturer"`
		Status       string `json:"status"`
		Description  string `json:"description"`
		URL          string `json:"url"`
		UpdatedAt    string `json:"updated_at"`
	} `json:"data"`
}

// Fetch pulls the roadmap listing and maps each named entry to one
// observation. Entries without a name carry no identity and are skipped.
func (f *Roadmap) Fetch(ctx context.Context) ([]Observation, error) {
	url := f.baseURL + "/api/v1/roadmap"
	resp, err := f.transport.Get(ctx, url)
	if err != nil {
		return nil, errors.WrapProvider(string(f.Source()), url, err)
	}

	var doc roadmapDoc
	if err := transport.DecodeResponse(string(f.Source()), resp, &doc); err != nil {
		return nil, err
	}

	var out []Observation
	for _, entry := range doc.Data {
		if entry.Name == "" {
			continue
		}

		excerpt := entry.Description
		if excerpt == "" {
			excerpt = fmt.Sprintf("%s: %s", entry.Name, entry.Status)
		}

		out = append(out, Observation{
			Codename:     entry.Name,
			PossibleName: entry.Name,
			Manufacturer: entry.Manufacturer,
			Stage:        DetectStage(entry.Status),
			Source:       f.Source(),
			URL:          absoluteURL(f.baseURL, entry.URL),
			Date:         parseFeedTime(entry.UpdatedAt),
			Excerpt:      clip(excerpt, maxExcerpt),
		})
	}
	return out, nil
}
