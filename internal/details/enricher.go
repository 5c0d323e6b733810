package details

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/jonesrussell/poliswatch/internal/constants"
	"github.com/jonesrussell/poliswatch/internal/domain"
	"github.com/jonesrussell/poliswatch/internal/logger"
	"github.com/jonesrussell/poliswatch/internal/metrics"
)

// Enricher attaches detail page fields to events. Detail fetches are
// gated by a shared semaphore so one refresh cycle never holds more
// than the configured number of connections against the upstream.
type Enricher struct {
	httpClient *http.Client
	extractor  Extractor
	cache      *Cache
	sem        chan struct{}
	log        logger.Interface
	metrics    *metrics.Metrics
	userAgent  string
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(e *Enricher) { e.httpClient = httpClient }
}

// WithExtractor overrides the field extractor.
func WithExtractor(extractor Extractor) Option {
	return func(e *Enricher) { e.extractor = extractor }
}

// WithCache overrides the detail cache.
func WithCache(cache *Cache) Option {
	return func(e *Enricher) { e.cache = cache }
}

// WithConcurrency overrides the maximum number of in-flight fetches.
func WithConcurrency(n int) Option {
	return func(e *Enricher) {
		if n > 0 {
			e.sem = make(chan struct{}, n)
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(log logger.Interface) Option {
	return func(e *Enricher) { e.log = log }
}

// WithMetrics attaches pipeline metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Enricher) { e.metrics = m }
}

// NewEnricher creates an enricher with default selectors, cache, and
// concurrency bound.
func NewEnricher(opts ...Option) *Enricher {
	e := &Enricher{
		httpClient: &http.Client{Timeout: constants.DefaultDetailTimeout},
		extractor:  NewHTMLExtractor(DefaultSelectors()),
		cache:      NewCache(constants.DefaultDetailCacheTTL),
		sem:        make(chan struct{}, constants.DefaultEnrichConcurrency),
		log:        logger.NewNoOp(),
		metrics:    metrics.NewNoop(),
		userAgent:  constants.DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Enrich returns a copy of events with detail fields attached where a
// detail page could be fetched and extracted. A failed fetch or a page
// with no extractable fields leaves that event unenriched; enrichment
// never fails the batch.
func (e *Enricher) Enrich(ctx context.Context, events []domain.EnrichedEvent) []domain.EnrichedEvent {
	if len(events) == 0 {
		return events
	}

	out := make([]domain.EnrichedEvent, len(events))
	copy(out, events)

	var wg sync.WaitGroup

	for i := range out {
		if out[i].URL == "" {
			continue
		}

		wg.Add(1)

		go func(ev *domain.EnrichedEvent) {
			defer wg.Done()

			if fields, ok := e.enrichOne(ctx, ev.ID, ev.URL); ok {
				ev.Details = &fields
			}
		}(&out[i])
	}

	wg.Wait()

	return out
}

// enrichOne resolves detail fields for a single event, from cache when
// fresh, otherwise by fetching the page.
func (e *Enricher) enrichOne(ctx context.Context, id int64, pageURL string) (domain.DetailFields, bool) {
	fields, outcome := e.cache.Lookup(id)

	switch outcome {
	case Hit:
		e.metrics.RecordDetailCache(metrics.CacheHit)
		return fields, true
	case Expired:
		e.metrics.RecordDetailCache(metrics.CacheExpired)
	case Miss:
		e.metrics.RecordDetailCache(metrics.CacheMiss)
	}

	fetched, err := e.fetchDetails(ctx, pageURL)
	if err != nil {
		e.log.Warn("detail enrichment skipped",
			"event_id", id,
			"url", pageURL,
			"error", err.Error(),
		)
		e.metrics.RecordDetailFetch(metrics.ResultFailed)

		return domain.DetailFields{}, false
	}

	e.metrics.RecordDetailFetch(metrics.ResultSucceeded)
	e.cache.Put(id, fetched)

	return fetched, true
}

// fetchDetails performs one semaphore-gated detail page fetch.
func (e *Enricher) fetchDetails(ctx context.Context, pageURL string) (domain.DetailFields, error) {
	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		return domain.DetailFields{}, ctx.Err()
	}

	e.metrics.RecordEnrichStarted()

	defer func() {
		e.metrics.RecordEnrichFinished()
		<-e.sem
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return domain.DetailFields{}, fmt.Errorf("detail new request: %w", err)
	}

	req.Header.Set("User-Agent", e.userAgent)

	resp, doErr := e.httpClient.Do(req)
	if doErr != nil {
		return domain.DetailFields{}, &domain.FetchError{URL: pageURL, Err: doErr}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.DetailFields{}, &domain.FetchError{URL: pageURL, Status: resp.StatusCode}
	}

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return domain.DetailFields{}, &domain.FetchError{URL: pageURL, Err: readErr}
	}

	fields, extractErr := e.extractor.Extract(pageURL, body)
	if extractErr != nil {
		return domain.DetailFields{}, extractErr
	}

	if fields.Empty() {
		return domain.DetailFields{}, &domain.ScrapeError{URL: pageURL}
	}

	return fields, nil
}
