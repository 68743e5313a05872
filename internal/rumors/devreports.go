package rumors

import (
	"context"

	"github.com/hangarworks/fleetsync/internal/transport"
	"github.com/hangarworks/fleetsync/pkg/errors"
	"github.com/hangarworks/fleetsync/pkg/vehicles"
)

// DevReports is the narrative monthly-report feed. Reports are prose, so
// observations come from text mining the title and body.
type DevReports struct {
	feed
}

// NewDevReports creates the dev-report feed for the given base URL.
func NewDevReports(baseURL string, opts ...FeedOption) *DevReports {
	return &DevReports{feed: newFeed(baseURL, opts...)}
}

// Source identifies the feed's observation source type.
func (f *DevReports) Source() vehicles.SourceType {
	return vehicles.SourceDevReport
}

type devReportDoc struct {
	Data []struct {
		Title       string `json:"title"`
		Body        string `json:"body"`
		URL         string `json:"url"`
		PublishedAt string `json:"published_at"`
	} `json:"data"`
}

// Fetch pulls the report listing and mines each report for observations.
func (f *DevReports) Fetch(ctx context.Context) ([]Observation, error) {
	url := f.baseURL + "/api/v1/dev-reports"
	resp, err := f.transport.Get(ctx, url)
	if err != nil {
		return nil, errors.WrapProvider(string(f.Source()), url, err)
	}

	var doc devReportDoc
	if err := transport.DecodeResponse(string(f.Source()), resp, &doc); err != nil {
		return nil, err
	}

	var out []Observation
	for _, report := range doc.Data {
		date := parseFeedTime(report.PublishedAt)
		out = append(out, Mine(report.Title+"\n"+report.Body, f.Source(), absoluteURL(f.baseURL, report.URL), date)...)
	}
	return out, nil
}
