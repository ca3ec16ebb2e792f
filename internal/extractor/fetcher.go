package extractor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"gearinhere/internal/domain"
	"gearinhere/internal/proxy"
)

// Fetcher retrieves the HTML of a product page.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL, userAgent string) (string, error)
}

// HTTPFetcher issues a single plain GET per page.
type HTTPFetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewHTTPFetcher builds a fetcher whose requests time out after timeout.
// When proxies has entries, every request goes through the next proxy in turn.
func NewHTTPFetcher(timeout time.Duration, maxBytes int64, proxies *proxy.Manager) *HTTPFetcher {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxies != nil && proxies.Len() > 0 {
		transport.Proxy = proxies.ProxyFunc()
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		maxBytes: maxBytes,
	}
}

// Fetch GETs rawURL. userAgent is only set when non-empty.
// Transport failures and non-200 answers wrap domain.ErrExtractionTransport.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL, userAgent string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExtractionTransport, err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExtractionTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: received status code %d", domain.ErrExtractionTransport, resp.StatusCode)
	}

	body, err := readLimited(resp.Body, f.maxBytes)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExtractionTransport, err)
	}
	return string(body), nil
}

// readLimited reads at most limit bytes from r and fails when the body is larger.
// A limit of 0 or less reads everything.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("response body exceeds %d bytes", limit)
	}
	return data, nil
}
