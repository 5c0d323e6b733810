// Package suggest builds the list of known area names offered to
// operators configuring filters.
package suggest

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"
	"sync"
	"time"

	colly "github.com/gocolly/colly/v2"

	"github.com/jonesrussell/poliswatch/internal/areas"
	"github.com/jonesrussell/poliswatch/internal/constants"
	"github.com/jonesrussell/poliswatch/internal/domain"
	"github.com/jonesrussell/poliswatch/internal/logger"
	"github.com/jonesrussell/poliswatch/internal/metrics"
)

// datalistSelector picks option values out of the page's location
// datalist, whose id carries a generated suffix.
const datalistSelector = "datalist[id^='datalist-'] option[value]"

// Feed is the slice of the feed client the suggester needs.
type Feed interface {
	Events(ctx context.Context, locationName string) ([]domain.RawEvent, error)
}

// Suggester merges three sources of area names: the static county list,
// the datalist scraped from the news page, and location names observed
// in an unfiltered feed fetch. Results are cached; source failures
// degrade to whatever the remaining sources yield.
type Suggester struct {
	feed      Feed
	pageURL   string
	userAgent string
	timeout   time.Duration
	ttl       time.Duration
	log       logger.Interface
	metrics   *metrics.Metrics
	now       func() time.Time

	mu        sync.Mutex
	cached    []string
	fetchedAt time.Time
}

// Option configures a Suggester.
type Option func(*Suggester)

// WithPageURL overrides the scraped news page.
func WithPageURL(pageURL string) Option {
	return func(s *Suggester) { s.pageURL = pageURL }
}

// WithUserAgent overrides the scrape user agent.
func WithUserAgent(userAgent string) Option {
	return func(s *Suggester) { s.userAgent = userAgent }
}

// WithTimeout overrides the scrape request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Suggester) { s.timeout = timeout }
}

// WithTTL overrides how long a merged result is served from cache.
func WithTTL(ttl time.Duration) Option {
	return func(s *Suggester) { s.ttl = ttl }
}

// WithLogger attaches a logger.
func WithLogger(log logger.Interface) Option {
	return func(s *Suggester) { s.log = log }
}

// WithMetrics attaches pipeline metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Suggester) { s.metrics = m }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Suggester) { s.now = now }
}

// NewSuggester creates a suggester reading live names from the news page
// and from feed.
func NewSuggester(feed Feed, opts ...Option) *Suggester {
	s := &Suggester{
		feed:      feed,
		pageURL:   constants.DefaultSuggestPageURL,
		userAgent: constants.DefaultUserAgent,
		timeout:   constants.DefaultScrapeTimeout,
		ttl:       constants.DefaultSuggestTTL,
		log:       logger.NewNoOp(),
		metrics:   metrics.NewNoop(),
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Suggestions returns the merged, deduplicated, case-folded sorted list
// of known area names. It never fails; with both live sources down the
// static county list still comes back.
func (s *Suggester) Suggestions(ctx context.Context) []string {
	s.mu.Lock()
	if s.cached != nil && s.now().Sub(s.fetchedAt) < s.ttl {
		cached := make([]string, len(s.cached))
		copy(cached, s.cached)
		s.mu.Unlock()

		return cached
	}
	s.mu.Unlock()

	merged := make([]string, 0, len(countyLocations))
	merged = append(merged, countyLocations...)

	scraped, err := s.scrapeDatalist(ctx)
	if err != nil {
		s.metrics.RecordSuggestScrape(metrics.ResultFailed)
		s.log.Debug("location datalist scrape failed", "url", s.pageURL, "error", err.Error())
	} else {
		s.metrics.RecordSuggestScrape(metrics.ResultSucceeded)
		merged = append(merged, scraped...)
	}

	events, err := s.feed.Events(ctx, "")
	if err != nil {
		s.log.Debug("feed location lookup failed", "error", err.Error())
	} else {
		for _, ev := range events {
			if name := strings.TrimSpace(ev.Location.Name); name != "" {
				merged = append(merged, name)
			}
		}
	}

	// Merge order is counties, scraped, feed, so the county spelling
	// wins over a live variant that differs only in case.
	values := areas.Dedupe(merged)
	sort.Slice(values, func(i, j int) bool {
		return strings.ToLower(values[i]) < strings.ToLower(values[j])
	})

	s.mu.Lock()
	s.cached = values
	s.fetchedAt = s.now()
	s.mu.Unlock()

	out := make([]string, len(values))
	copy(out, values)

	return out
}

// scrapeDatalist collects option values from the news page datalist.
func (s *Suggester) scrapeDatalist(ctx context.Context) ([]string, error) {
	collector := colly.NewCollector(
		colly.UserAgent(s.userAgent),
		colly.StdlibContext(ctx),
	)
	collector.SetRequestTimeout(s.timeout)

	var (
		mu     sync.Mutex
		values []string
	)

	collector.OnHTML(datalistSelector, func(e *colly.HTMLElement) {
		value := strings.TrimSpace(html.UnescapeString(e.Attr("value")))
		if value == "" {
			return
		}

		mu.Lock()
		values = append(values, value)
		mu.Unlock()
	})

	if err := collector.Visit(s.pageURL); err != nil {
		return nil, fmt.Errorf("scrape %s: %w", s.pageURL, err)
	}

	return values, nil
}
