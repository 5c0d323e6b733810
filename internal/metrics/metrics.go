// Package metrics provides Prometheus metrics for the watch pipeline.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// MetricsNamespace is the namespace for all PolisWatch metrics.
	MetricsNamespace = "poliswatch"

	// MetricsSubsystem is the subsystem for watch pipeline metrics.
	MetricsSubsystem = "watch"
)

// Refresh result label values.
const (
	ResultSucceeded = "succeeded"
	ResultFailed    = "failed"
)

// Detail cache outcome label values.
const (
	CacheHit     = "hit"
	CacheMiss    = "miss"
	CacheExpired = "expired"
)

// Metrics holds all Prometheus metrics for the watch pipeline.
type Metrics struct {
	// Refresh cycle metrics
	RefreshesTotal         *prometheus.CounterVec
	RefreshDurationSeconds prometheus.Histogram
	LastRefreshUnixtime    prometheus.Gauge
	AreaEventCount         *prometheus.GaugeVec

	// Upstream fetch metrics
	FeedRequestsTotal   *prometheus.CounterVec
	DetailFetchesTotal  *prometheus.CounterVec
	DetailCacheTotal    *prometheus.CounterVec
	EnrichInFlight      prometheus.Gauge
	SuggestScrapesTotal *prometheus.CounterVec
}

// New creates and registers all watch pipeline metrics.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)
	m := &Metrics{}

	m.initRefreshMetrics(factory)
	m.initFetchMetrics(factory)

	return m
}

// NewNoop creates metrics backed by a throwaway registry, for tests and
// one-shot commands that never expose a scrape endpoint.
func NewNoop() *Metrics {
	return New(prometheus.NewRegistry())
}

// initRefreshMetrics initializes refresh cycle metrics.
func (m *Metrics) initRefreshMetrics(factory promauto.Factory) {
	m.RefreshesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Subsystem: MetricsSubsystem,
			Name:      "refreshes_total",
			Help:      "Total number of refresh cycles by result",
		},
		[]string{"result"},
	)

	m.RefreshDurationSeconds = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: MetricsNamespace,
			Subsystem: MetricsSubsystem,
			Name:      "refresh_duration_seconds",
			Help:      "Duration of refresh cycles in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10), // 0.1s to ~51s
		},
	)

	m.LastRefreshUnixtime = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Subsystem: MetricsSubsystem,
			Name:      "last_refresh_unixtime",
			Help:      "Unix timestamp of the last successful refresh",
		},
	)

	m.AreaEventCount = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Subsystem: MetricsSubsystem,
			Name:      "area_event_count",
			Help:      "Number of in-window events in the latest snapshot per area",
		},
		[]string{"area"},
	)
}

// initFetchMetrics initializes upstream fetch metrics.
func (m *Metrics) initFetchMetrics(factory promauto.Factory) {
	m.FeedRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Subsystem: MetricsSubsystem,
			Name:      "feed_requests_total",
			Help:      "Total number of feed list requests by HTTP status code",
		},
		[]string{"code"},
	)

	m.DetailFetchesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Subsystem: MetricsSubsystem,
			Name:      "detail_fetches_total",
			Help:      "Total number of detail page fetches by result",
		},
		[]string{"result"},
	)

	m.DetailCacheTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Subsystem: MetricsSubsystem,
			Name:      "detail_cache_events_total",
			Help:      "Total number of detail cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	m.EnrichInFlight = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Subsystem: MetricsSubsystem,
			Name:      "enrich_in_flight",
			Help:      "Number of detail page fetches currently in flight",
		},
	)

	m.SuggestScrapesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Subsystem: MetricsSubsystem,
			Name:      "suggest_scrapes_total",
			Help:      "Total number of area suggestion scrapes by result",
		},
		[]string{"result"},
	)
}

// RecordRefresh records a completed refresh cycle.
func (m *Metrics) RecordRefresh(result string, durationSeconds float64) {
	m.RefreshesTotal.WithLabelValues(result).Inc()
	m.RefreshDurationSeconds.Observe(durationSeconds)
}

// RecordRefreshTime marks the completion time of a successful refresh.
func (m *Metrics) RecordRefreshTime(unixtime int64) {
	m.LastRefreshUnixtime.Set(float64(unixtime))
}

// SetAreaEventCount records the in-window event count for an area.
func (m *Metrics) SetAreaEventCount(area string, count int) {
	m.AreaEventCount.WithLabelValues(area).Set(float64(count))
}

// RecordFeedRequest records a feed list request by status code.
// A code of zero means the request never produced a response.
func (m *Metrics) RecordFeedRequest(code int) {
	label := "error"
	if code > 0 {
		label = strconv.Itoa(code)
	}
	m.FeedRequestsTotal.WithLabelValues(label).Inc()
}

// RecordDetailFetch records a detail page fetch result.
func (m *Metrics) RecordDetailFetch(result string) {
	m.DetailFetchesTotal.WithLabelValues(result).Inc()
}

// RecordDetailCache records a detail cache lookup outcome.
func (m *Metrics) RecordDetailCache(outcome string) {
	m.DetailCacheTotal.WithLabelValues(outcome).Inc()
}

// RecordEnrichStarted increments the in-flight fetch count.
func (m *Metrics) RecordEnrichStarted() {
	m.EnrichInFlight.Inc()
}

// RecordEnrichFinished decrements the in-flight fetch count.
func (m *Metrics) RecordEnrichFinished() {
	m.EnrichInFlight.Dec()
}

// RecordSuggestScrape records an area suggestion scrape result.
func (m *Metrics) RecordSuggestScrape(result string) {
	m.SuggestScrapesTotal.WithLabelValues(result).Inc()
}
