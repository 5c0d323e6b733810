package common

import (
	"net/http"

	"github.com/jonesrussell/poliswatch/internal/aggregate"
	"github.com/jonesrussell/poliswatch/internal/config"
	"github.com/jonesrussell/poliswatch/internal/details"
	"github.com/jonesrussell/poliswatch/internal/feed"
	"github.com/jonesrussell/poliswatch/internal/logger"
	"github.com/jonesrussell/poliswatch/internal/metrics"
	"github.com/jonesrussell/poliswatch/internal/suggest"
)

// NewFeedClient creates the polisen.se feed client from configuration.
// Commands share one client so the endpoint and user agent are wired once.
func NewFeedClient(cfg *config.Config, m *metrics.Metrics) *feed.Client {
	return feed.NewClient(
		feed.WithEndpoint(cfg.Feed.Endpoint),
		feed.WithUserAgent(cfg.Feed.UserAgent),
		feed.WithHTTPClient(&http.Client{Timeout: cfg.Feed.Timeout}),
		feed.WithMetrics(m),
	)
}

// NewAggregator creates the per-cycle runner: the feed client plus detail
// page enrichment wired to the configured bounds.
func NewAggregator(
	cfg *config.Config,
	feedClient *feed.Client,
	log logger.Interface,
	m *metrics.Metrics,
) *aggregate.Aggregator {
	enricher := details.NewEnricher(
		details.WithHTTPClient(&http.Client{Timeout: cfg.Enrich.Timeout}),
		details.WithCache(details.NewCache(cfg.Enrich.CacheTTL)),
		details.WithConcurrency(cfg.Enrich.Concurrency),
		details.WithLogger(log),
		details.WithMetrics(m),
	)

	return aggregate.New(feedClient, enricher,
		aggregate.WithLogger(log),
		aggregate.WithMetrics(m),
	)
}

// NewSuggester creates the area name suggester from configuration.
func NewSuggester(
	cfg *config.Config,
	feedClient *feed.Client,
	log logger.Interface,
	m *metrics.Metrics,
) *suggest.Suggester {
	return suggest.NewSuggester(feedClient,
		suggest.WithPageURL(cfg.Suggest.PageURL),
		suggest.WithUserAgent(cfg.Feed.UserAgent),
		suggest.WithTimeout(cfg.Suggest.Timeout),
		suggest.WithTTL(cfg.Suggest.TTL),
		suggest.WithLogger(log),
		suggest.WithMetrics(m),
	)
}

// WatchOptions converts the watch config section into aggregation options.
func WatchOptions(cfg *config.Config) aggregate.Options {
	return aggregate.Options{
		Areas:    cfg.Watch.AreaList(),
		Mode:     cfg.Watch.Mode(),
		Hours:    cfg.Watch.Hours,
		MaxItems: cfg.Watch.MaxItems,
	}
}
