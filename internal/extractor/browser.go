package extractor

import (
	"context"
	"fmt"
	"time"

	"gearinhere/internal/domain"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// BrowserFetcher renders pages in headless Chrome before returning their HTML.
// Use it for pages that build their markup client-side.
type BrowserFetcher struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	timeout  time.Duration
	logger   *zap.Logger
}

func NewBrowserFetcher(timeout time.Duration, proxyServer string, logger *zap.Logger) *BrowserFetcher {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if proxyServer != "" {
		opts = append(opts, chromedp.ProxyServer(proxyServer))
	}
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &BrowserFetcher{
		allocCtx: allocCtx,
		cancel:   cancel,
		timeout:  timeout,
		logger:   logger,
	}
}

// Fetch navigates to rawURL in a fresh tab and returns the rendered document.
func (f *BrowserFetcher) Fetch(ctx context.Context, rawURL, userAgent string) (string, error) {
	taskCtx, cancel := chromedp.NewContext(f.allocCtx, chromedp.WithLogf(f.logger.Sugar().Debugf))
	defer cancel()

	taskCtx, cancel = context.WithTimeout(taskCtx, f.timeout)
	defer cancel()

	// Tie the tab to the caller so an abandoned request stops the render.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if userAgent != "" {
		if err := chromedp.Run(taskCtx, emulation.SetUserAgentOverride(userAgent)); err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrExtractionTransport, err)
		}
	}

	resp, err := chromedp.RunResponse(taskCtx, chromedp.Navigate(rawURL))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExtractionTransport, err)
	}
	if resp != nil && resp.Status != 200 {
		return "", fmt.Errorf("%w: received status code %d", domain.ErrExtractionTransport, resp.Status)
	}

	var htmlContent string
	err = chromedp.Run(taskCtx,
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &htmlContent, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExtractionTransport, err)
	}
	return htmlContent, nil
}

// Close shuts down the browser allocator.
func (f *BrowserFetcher) Close() {
	f.cancel()
}
