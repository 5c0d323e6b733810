// Package aggregate builds per-area event buckets from the feed.
package aggregate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonesrussell/poliswatch/internal/areas"
	"github.com/jonesrussell/poliswatch/internal/domain"
	"github.com/jonesrussell/poliswatch/internal/logger"
	"github.com/jonesrussell/poliswatch/internal/metrics"
	"github.com/jonesrussell/poliswatch/internal/timeparse"
)

// Feed is the slice of the feed client the aggregator needs.
type Feed interface {
	Events(ctx context.Context, locationName string) ([]domain.RawEvent, error)
	ResolveURL(eventURL string) string
}

// Enricher attaches detail fields to a trimmed batch of events.
type Enricher interface {
	Enrich(ctx context.Context, events []domain.EnrichedEvent) []domain.EnrichedEvent
}

// Options carry one refresh cycle's aggregation parameters. Areas must
// already be split and deduplicated; an empty list means a single
// match-everything area.
type Options struct {
	Areas    []string
	Mode     areas.MatchMode
	Hours    int
	MaxItems int
}

// Aggregator fetches, filters, arranges, and enriches events per area.
type Aggregator struct {
	feed    Feed
	enrich  Enricher
	log     logger.Interface
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger attaches a logger.
func WithLogger(log logger.Interface) Option {
	return func(a *Aggregator) { a.log = log }
}

// WithMetrics attaches pipeline metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Aggregator) { a.metrics = m }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// New creates an aggregator over the given feed and enricher.
func New(feed Feed, enrich Enricher, opts ...Option) *Aggregator {
	a := &Aggregator{
		feed:    feed,
		enrich:  enrich,
		log:     logger.NewNoOp(),
		metrics: metrics.NewNoop(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Run executes one refresh cycle: every configured area is collected
// concurrently, a failed area degrades to an empty bucket, and only a
// cycle where every area fails is an error.
func (a *Aggregator) Run(ctx context.Context, opts Options) (*domain.Snapshot, error) {
	list := opts.Areas
	if len(list) == 0 {
		list = []string{""}
	}

	type result struct {
		bucket domain.AreaBucket
		err    error
	}

	results := make([]result, len(list))

	var wg sync.WaitGroup

	for i, area := range list {
		wg.Add(1)

		go func(i int, area string) {
			defer wg.Done()

			bucket, err := a.collectArea(ctx, area, opts)
			results[i] = result{bucket: bucket, err: err}
		}(i, area)
	}

	wg.Wait()

	snap := &domain.Snapshot{
		GeneratedAt: a.now(),
		Areas:       list,
		Buckets:     make(map[string]domain.AreaBucket, len(list)),
	}

	var firstErr error

	failed := 0

	for i, area := range list {
		if results[i].err != nil {
			failed++
			if firstErr == nil {
				firstErr = results[i].err
			}

			a.log.Warn("area fetch failed, recording empty bucket",
				"area", area,
				"error", results[i].err.Error(),
			)

			snap.Buckets[area] = domain.AreaBucket{Area: area}

			continue
		}

		snap.Buckets[area] = results[i].bucket
		a.metrics.SetAreaEventCount(areaLabel(area), results[i].bucket.Count)
	}

	if failed == len(list) {
		return nil, fmt.Errorf("all areas failed: %w", firstErr)
	}

	return snap, nil
}

// collectArea fetches and processes a single area's events.
func (a *Aggregator) collectArea(ctx context.Context, area string, opts Options) (domain.AreaBucket, error) {
	raw, err := a.feed.Events(ctx, area)
	if err != nil {
		return domain.AreaBucket{}, err
	}

	now := a.now()
	cutoff := now.Add(-time.Duration(opts.Hours) * time.Hour)

	survivors := make([]domain.EnrichedEvent, 0, len(raw))

	for _, ev := range raw {
		if !areas.Matches(ev.Location.Name, area, opts.Mode) {
			continue
		}

		publishedAt, parseErr := timeparse.ParseFeedTimestamp(ev.Datetime)
		if parseErr != nil {
			a.log.Debug("dropping event with unusable timestamp",
				"event_id", ev.ID,
				"datetime", ev.Datetime,
			)

			continue
		}

		if publishedAt.Before(cutoff) {
			continue
		}

		survivors = append(survivors, domain.EnrichedEvent{
			ID:           ev.ID,
			Name:         ev.Name,
			Summary:      ev.Summary,
			Type:         ev.Type,
			URL:          a.feed.ResolveURL(ev.URL),
			LocationName: ev.Location.Name,
			PublishedAt:  publishedAt,
			EventAt:      timeparse.EventTimeFromTitle(ev.Name, publishedAt),
		})
	}

	arranged := Arrange(survivors, now, opts.MaxItems)
	enriched := a.enrich.Enrich(ctx, arranged)

	bucket := domain.AreaBucket{
		Area:   area,
		Count:  len(survivors),
		Events: enriched,
	}

	if len(enriched) > 0 {
		latest := enriched[0]
		bucket.Latest = &latest
	}

	return bucket, nil
}

// areaLabel names the catch-all bucket in metrics, where an empty
// filter would otherwise produce an empty label value.
func areaLabel(area string) string {
	if area == "" {
		return "all"
	}

	return area
}
