package rumors

import (
	"context"
	"time"

	"github.com/agentstation/utc"

	"github.com/hangarworks/fleetsync/internal/transport"
	"github.com/hangarworks/fleetsync/pkg/vehicles"
)

// Feed is one independent rumor source. A failing feed must surface its
// error to the pipeline, which isolates it; feeds never partially succeed.
type Feed interface {
	Source() vehicles.SourceType
	Fetch(ctx context.Context) ([]Observation, error)
}

// feed holds what every feed adapter shares.
type feed struct {
	baseURL   string
	transport *transport.Client
}

func newFeed(baseURL string, opts ...FeedOption) feed {
	f := feed{baseURL: baseURL, transport: transport.New()}
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

// FeedOption configures a feed adapter.
type FeedOption func(*feed)

// WithTransport overrides the HTTP transport, used by tests.
func WithTransport(t *transport.Client) FeedOption {
	return func(f *feed) {
		if t != nil {
			f.transport = t
		}
	}
}

// parseFeedTime reads an RFC 3339 or date-only timestamp, defaulting to now
// so a feed with sloppy timestamps still yields dated evidence.
func parseFeedTime(s string) utc.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return utc.New(t)
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return utc.New(t)
	}
	return utc.Now()
}

func absoluteURL(base, u string) string {
	if u == "" {
		return base
	}
	if u[0] == '/' {
		return base + u
	}
	return u
}
