// Package transport provides outbound HTTP plumbing shared by the source
// adapters and feed extractors. Provider catalog and feed endpoints are
// read-only and require no credentials.
package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/hangarworks/fleetsync/pkg/errors"
)

// DefaultTimeout bounds any single provider request.
const DefaultTimeout = 30 * time.Second

// Client wraps an http.Client with the request conventions providers expect.
type Client struct {
	http *http.Client
}

// New creates a transport client with the default timeout.
func New() *Client {
	return &Client{
		http: &http.Client{Timeout: DefaultTimeout},
	}
}

// WithHTTPClient returns a transport client backed by the given http.Client,
// used by tests to point adapters at httptest servers.
func WithHTTPClient(hc *http.Client) *Client {
	if hc == nil {
		return New()
	}
	return &Client{http: hc}
}

// Get performs a GET request with JSON accept headers.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WrapProvider("", url, err)
	}
	req.Header.Set("Accept", "application/json")

	return c.http.Do(req)
}
