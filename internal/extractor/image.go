package extractor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"gearinhere/internal/domain"
)

// ImageProber checks that a preview image can be loaded.
type ImageProber struct {
	client  *http.Client
	timeout time.Duration
}

func NewImageProber(timeout time.Duration) *ImageProber {
	return &ImageProber{client: &http.Client{}, timeout: timeout}
}

// Probe issues a HEAD request for imageURL. Hosts that refuse HEAD with 403 or
// 405 are retried with a one-byte ranged GET. Both attempts share one timeout.
// Failures wrap domain.ErrImagePreview.
func (p *ImageProber) Probe(ctx context.Context, imageURL string) error {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	status, err := p.do(ctx, http.MethodHead, imageURL)
	if err == nil && (status == http.StatusForbidden || status == http.StatusMethodNotAllowed) {
		status, err = p.do(ctx, http.MethodGet, imageURL)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrImagePreview, err)
	}
	if status < 200 || status > 299 {
		return fmt.Errorf("%w: received status code %d", domain.ErrImagePreview, status)
	}
	return nil
}

func (p *ImageProber) do(ctx context.Context, method, imageURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, imageURL, nil)
	if err != nil {
		return 0, err
	}
	if method == http.MethodGet {
		req.Header.Set("Range", "bytes=0-0")
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	// Servers that ignore Range send the whole image; read at most a little.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<10))
	return resp.StatusCode, nil
}
