package transport

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/hangarworks/fleetsync/pkg/errors"
)

// maxBodyBytes bounds how much of a provider response is read. A provider
// that streams forever must not pin a sync job past its timeout.
const maxBodyBytes = 64 << 20

// DecodeResponse reads and decodes a JSON response into target. A non-2xx
// status or malformed body yields a ProviderError/ParseError attributed to
// the named provider; the body is always closed.
func DecodeResponse(provider string, resp *http.Response, target any) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return errors.WrapProvider(provider, resp.Request.URL.String(), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &errors.ProviderError{
			Provider:   provider,
			Endpoint:   resp.Request.URL.String(),
			StatusCode: resp.StatusCode,
			Message:    truncate(string(body), 256),
		}
	}

	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapParse("json", provider, err)
	}

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
