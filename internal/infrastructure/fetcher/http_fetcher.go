package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"PaperCrawler/internal/domain"
	"PaperCrawler/internal/ports"
)

// HTTPFetcher issues one GET per page with a fixed header set.
type HTTPFetcher struct {
	client  *http.Client
	headers http.Header
}

var _ ports.PageFetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher wires an HTTP client. A nil client gets one with the given
// timeout (zero means none) that does not negotiate compression.
func NewHTTPFetcher(client *http.Client, userAgent string, timeout time.Duration) *HTTPFetcher {
	if client == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.DisableCompression = true
		client = &http.Client{Transport: transport, Timeout: timeout}
	}
	headers := http.Header{}
	headers.Set("User-Agent", userAgent)
	return &HTTPFetcher{client: client, headers: headers}
}

// Fetch returns the raw response body. Transport failures and non-2xx
// statuses are reported as domain.ErrNetwork.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrNetwork, err)
	}
	for key, values := range f.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request page: %w", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %s returned %s", domain.ErrNetwork, pageURL, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", domain.ErrNetwork, err)
	}

	return body, nil
}
