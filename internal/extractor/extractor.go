package extractor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gearinhere/internal/domain"
	"gearinhere/internal/monitoring"
	"gearinhere/pkg/utils"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Extractor fetches a product page and turns it into a snapshot.
type Extractor struct {
	fetcher  Fetcher
	amazonUA string
	metrics  *monitoring.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

func NewExtractor(f Fetcher, amazonUA string, m *monitoring.Metrics, l *zap.Logger) *Extractor {
	return &Extractor{
		fetcher:  f,
		amazonUA: amazonUA,
		metrics:  m,
		logger:   l,
		now:      time.Now,
	}
}

// Extract fetches rawURL once and applies the field policy of source.
// Missing fields are left nil; only fetch failures are errors.
func (e *Extractor) Extract(ctx context.Context, rawURL string, source domain.Source) (*domain.ProductSnapshot, error) {
	start := e.now()
	defer e.metrics.ObserveStage("extract", start)

	var userAgent string
	if source == domain.SourceAmazon {
		userAgent = e.amazonUA
	}

	htmlContent, err := e.fetcher.Fetch(ctx, rawURL, userAgent)
	if err != nil {
		e.metrics.IncExtraction(string(source), "failed")
		e.logger.Warn("failed to fetch product page",
			zap.String("url", rawURL), zap.String("source", string(source)), zap.Error(err))
		return nil, err
	}

	scrapedAt := e.now().UTC()
	var snapshot *domain.ProductSnapshot
	switch source {
	case domain.SourceKickstarter:
		snapshot, err = ExtractKickstarter(rawURL, htmlContent, scrapedAt)
	case domain.SourceAmazon:
		snapshot, err = ExtractAmazon(rawURL, htmlContent, scrapedAt)
	default:
		err = fmt.Errorf("%w: %q", domain.ErrInvalidSource, source)
	}
	if err != nil {
		e.metrics.IncExtraction(string(source), "failed")
		e.logger.Warn("failed to parse product page",
			zap.String("url", rawURL), zap.String("source", string(source)), zap.Error(err))
		return nil, err
	}

	e.metrics.IncExtraction(string(source), "completed")
	e.logger.Info("extracted product snapshot",
		zap.String("url", rawURL),
		zap.String("source", string(source)),
		zap.Bool("has_title", snapshot.Title != nil),
		zap.Bool("has_description", snapshot.Description != nil),
		zap.Bool("has_image", snapshot.Image != nil),
	)
	return snapshot, nil
}

// ExtractKickstarter reads the og:title, og:description and og:image meta tags.
func ExtractKickstarter(pageURL, htmlContent string, scrapedAt time.Time) (*domain.ProductSnapshot, error) {
	doc, err := parse(htmlContent)
	if err != nil {
		return nil, err
	}

	return &domain.ProductSnapshot{
		Title:       metaProperty(doc, "og:title"),
		Description: metaProperty(doc, "og:description"),
		Image:       metaProperty(doc, "og:image"),
		URL:         pageURL,
		ScrapedAt:   scrapedAt,
	}, nil
}

// ExtractAmazon reads the #productTitle and #feature-bullets text and the
// img#landingImage source. The Image field holds the src resolved against
// pageURL, not the raw attribute value; an already absolute src is unchanged.
func ExtractAmazon(pageURL, htmlContent string, scrapedAt time.Time) (*domain.ProductSnapshot, error) {
	doc, err := parse(htmlContent)
	if err != nil {
		return nil, err
	}

	snapshot := &domain.ProductSnapshot{
		Title:       elementText(doc, "#productTitle"),
		Description: elementText(doc, "#feature-bullets"),
		URL:         pageURL,
		ScrapedAt:   scrapedAt,
	}

	if src, ok := doc.Find("img#landingImage").First().Attr("src"); ok {
		if base, err := utils.ParseHTTPURL(pageURL); err == nil {
			if abs, err := utils.ToAbsoluteURL(base, src); err == nil {
				src = abs
			}
		}
		snapshot.Image = &src
	}
	return snapshot, nil
}

func parse(htmlContent string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExtractionTransport, err)
	}
	return doc, nil
}

func metaProperty(doc *goquery.Document, property string) *string {
	content, ok := doc.Find(fmt.Sprintf(`meta[property=%q]`, property)).First().Attr("content")
	if !ok {
		return nil
	}
	return &content
}

// elementText returns the element's text with whitespace runs collapsed.
func elementText(doc *goquery.Document, selector string) *string {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil
	}
	text := strings.Join(strings.Fields(sel.Text()), " ")
	return &text
}
