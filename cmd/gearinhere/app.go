package main

import (
	"fmt"

	"gearinhere/internal/config"
	"gearinhere/internal/extractor"
	"gearinhere/internal/logging"
	"gearinhere/internal/monitoring"
	"gearinhere/internal/pipeline"
	"gearinhere/internal/proxy"
	"gearinhere/internal/publisher"
	"gearinhere/internal/review"
	"gearinhere/internal/storage"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// app is the wired set of components shared by every subcommand.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	metrics  *monitoring.Metrics
	drafts   storage.DraftStore
	pipeline *pipeline.Pipeline
	closers  []func()
}

func newApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("could not load config: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("could not build logger: %w", err)
	}

	a := &app{cfg: cfg, logger: logger}
	a.closers = append(a.closers, func() { _ = logger.Sync() })
	a.metrics = monitoring.NewMetrics(prometheus.DefaultRegisterer)

	proxies, err := proxy.NewManager(cfg.Proxies())
	if err != nil {
		return nil, err
	}

	var fetcher extractor.Fetcher
	switch cfg.FetchMode {
	case "", "http":
		fetcher = extractor.NewHTTPFetcher(cfg.FetchTimeoutDuration(), cfg.FetchMaxBytes, proxies)
	case "browser":
		var proxyServer string
		if p := proxies.GetProxy(); p != nil {
			proxyServer = p.String()
		}
		bf := extractor.NewBrowserFetcher(cfg.FetchTimeoutDuration(), proxyServer, logger)
		a.closers = append(a.closers, bf.Close)
		fetcher = bf
	default:
		return nil, fmt.Errorf("unknown FETCH_MODE %q (available: http, browser)", cfg.FetchMode)
	}

	ex := extractor.NewExtractor(fetcher, cfg.AmazonUserAgent, a.metrics, logger)
	images := extractor.NewImageProber(cfg.FetchTimeoutDuration())
	gen := review.NewGenerator(review.Options{
		BaseURL:       cfg.OpenAIBaseURL,
		APIKey:        cfg.OpenAIAPIKey,
		Model:         cfg.OpenAIModel,
		Timeout:       cfg.CompletionTimeoutDuration(),
		RatePerMinute: cfg.GenerationRatePerMinute,
	}, a.metrics, logger)
	wp := publisher.NewWordPress(publisher.Options{
		SiteURL:     cfg.WPSiteURL,
		Username:    cfg.WPUsername,
		AppPassword: cfg.WPAppPassword,
		Timeout:     cfg.PublishTimeoutDuration(),
	}, a.metrics, logger)

	if cfg.RedisAddr != "" {
		rs := storage.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.DraftTTL())
		a.closers = append(a.closers, func() { _ = rs.Close() })
		a.drafts = rs
	} else {
		a.drafts = storage.NewMemoryStore(cfg.DraftTTL())
	}

	a.pipeline = pipeline.New(ex, images, gen, wp, a.drafts, logger)
	return a, nil
}

// Close releases the components in reverse order of creation.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
