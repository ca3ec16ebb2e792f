package extractor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gearinhere/internal/domain"
	"gearinhere/internal/monitoring"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const kickstarterPage = `<html><head>
<meta property="og:title" content="Solar Backpack">
<meta property="og:description" content="Charges your gear.">
<meta property="og:image" content="https://x/img.jpg">
<meta property="og:title" content="Second title">
</head><body><h1>ignored</h1></body></html>`

const amazonPage = `<html><body>
<span id="productTitle">
    Trail Lantern   2000
</span>
<div id="feature-bullets"><ul>
  <li> USB-C rechargeable </li>
  <li>Waterproof</li>
</ul></div>
<img id="landingImage" src="/images/I/lantern.jpg">
</body></html>`

func newTestExtractor(f Fetcher) *Extractor {
	return NewExtractor(f, "Mozilla/5.0", monitoring.NewMetrics(prometheus.NewRegistry()), zap.NewNop())
}

func TestExtractKickstarter(t *testing.T) {
	at := time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)
	snap, err := ExtractKickstarter("https://kick.example/p/solar", kickstarterPage, at)
	require.NoError(t, err)

	require.Equal(t, "Solar Backpack", *snap.Title)
	require.Equal(t, "Charges your gear.", *snap.Description)
	require.Equal(t, "https://x/img.jpg", *snap.Image)
	require.Equal(t, "https://kick.example/p/solar", snap.URL)
	require.Equal(t, at, snap.ScrapedAt)
}

func TestExtractKickstarterMissingTags(t *testing.T) {
	page := `<html><head><meta property="og:title" content="Only Title"><meta name="description" content="plain"></head></html>`
	snap, err := ExtractKickstarter("https://kick.example/p", page, time.Now().UTC())
	require.NoError(t, err)

	require.Equal(t, "Only Title", *snap.Title)
	require.Nil(t, snap.Description)
	require.Nil(t, snap.Image)
}

func TestExtractKickstarterEmptyContentIsPresent(t *testing.T) {
	page := `<meta property="og:description" content="">`
	snap, err := ExtractKickstarter("https://kick.example/p", page, time.Now().UTC())
	require.NoError(t, err)
	require.NotNil(t, snap.Description)
	require.Equal(t, "", *snap.Description)
}

func TestExtractAmazon(t *testing.T) {
	snap, err := ExtractAmazon("https://www.amazon.com/dp/B0LANTERN", amazonPage, time.Now().UTC())
	require.NoError(t, err)

	require.Equal(t, "Trail Lantern 2000", *snap.Title)
	require.Equal(t, "USB-C rechargeable Waterproof", *snap.Description)
	require.Equal(t, "https://www.amazon.com/images/I/lantern.jpg", *snap.Image)
}

func TestExtractAmazonAbsoluteImageKept(t *testing.T) {
	page := `<img id="landingImage" src="https://m.media-amazon.com/images/I/lantern.jpg">`
	snap, err := ExtractAmazon("https://www.amazon.com/dp/B0LANTERN", page, time.Now().UTC())
	require.NoError(t, err)
	require.Equal(t, "https://m.media-amazon.com/images/I/lantern.jpg", *snap.Image)
}

func TestExtractAmazonMissingElements(t *testing.T) {
	snap, err := ExtractAmazon("https://www.amazon.com/dp/B0", `<html><body><p>captcha</p></body></html>`, time.Now().UTC())
	require.NoError(t, err)

	require.Nil(t, snap.Title)
	require.Nil(t, snap.Description)
	require.Nil(t, snap.Image)
	require.Equal(t, "https://www.amazon.com/dp/B0", snap.URL)
}

func TestExtractorFetchesAndStamps(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(kickstarterPage))
	}))
	defer srv.Close()

	e := newTestExtractor(NewHTTPFetcher(5*time.Second, 1<<20, nil))
	pageURL := srv.URL + "/projects/solar?ref=home"

	before := time.Now().UTC()
	snap, err := e.Extract(context.Background(), pageURL, domain.SourceKickstarter)
	require.NoError(t, err)

	require.Equal(t, pageURL, snap.URL)
	require.Equal(t, time.UTC, snap.ScrapedAt.Location())
	require.False(t, snap.ScrapedAt.Before(before))
	_, err = time.Parse(time.RFC3339Nano, snap.ScrapedAt.Format(time.RFC3339Nano))
	require.NoError(t, err)
	require.NotEqual(t, "Mozilla/5.0", gotUA)
}

func TestExtractorAmazonUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(amazonPage))
	}))
	defer srv.Close()

	e := newTestExtractor(NewHTTPFetcher(5*time.Second, 1<<20, nil))
	_, err := e.Extract(context.Background(), srv.URL+"/dp/B0", domain.SourceAmazon)
	require.NoError(t, err)
	require.Equal(t, "Mozilla/5.0", gotUA)
}

func TestExtractorNon200IsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	e := newTestExtractor(NewHTTPFetcher(5*time.Second, 1<<20, nil))
	snap, err := e.Extract(context.Background(), srv.URL, domain.SourceAmazon)
	require.ErrorIs(t, err, domain.ErrExtractionTransport)
	require.Contains(t, err.Error(), "503")
	require.Nil(t, snap)
}

func TestExtractorUnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	e := newTestExtractor(NewHTTPFetcher(2*time.Second, 1<<20, nil))
	_, err := e.Extract(context.Background(), addr, domain.SourceKickstarter)
	require.ErrorIs(t, err, domain.ErrExtractionTransport)
}

func TestHTTPFetcherBodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("a", 2048)))
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher(5*time.Second, 1024, nil).Fetch(context.Background(), srv.URL, "")
	require.ErrorIs(t, err, domain.ErrExtractionTransport)
	require.Contains(t, err.Error(), "exceeds")
}

func TestImageProberFallsBackToRangedGet(t *testing.T) {
	var gotRange string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			if r.URL.Path == "/forbidden.jpg" {
				w.WriteHeader(http.StatusForbidden)
			} else {
				w.WriteHeader(http.StatusMethodNotAllowed)
			}
			return
		}
		gotRange = r.Header.Get("Range")
		if r.URL.Path == "/gone.jpg" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.WriteHeader(http.StatusPartialContent)
		w.Write([]byte{0xff})
	}))
	defer srv.Close()

	p := NewImageProber(5 * time.Second)
	require.NoError(t, p.Probe(context.Background(), srv.URL+"/img.jpg"))
	require.Equal(t, "bytes=0-0", gotRange)
	require.NoError(t, p.Probe(context.Background(), srv.URL+"/forbidden.jpg"))
	require.ErrorIs(t, p.Probe(context.Background(), srv.URL+"/gone.jpg"), domain.ErrImagePreview)
}

func TestImageProber(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead || r.URL.Path == "/missing.jpg" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
	}))
	defer srv.Close()

	p := NewImageProber(5 * time.Second)
	require.NoError(t, p.Probe(context.Background(), srv.URL+"/img.jpg"))
	require.ErrorIs(t, p.Probe(context.Background(), srv.URL+"/missing.jpg"), domain.ErrImagePreview)
	require.ErrorIs(t, p.Probe(context.Background(), "::bad"), domain.ErrImagePreview)
}
