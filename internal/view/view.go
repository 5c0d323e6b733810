// Package view derives presentation state from the latest snapshot.
package view

import (
	"strings"

	"github.com/jonesrussell/poliswatch/internal/aggregate"
	"github.com/jonesrussell/poliswatch/internal/domain"
)

// CombinedArea labels the all-areas view.
const CombinedArea = "all"

// Settings are the active aggregation values shown alongside buckets.
type Settings struct {
	Areas          []string `json:"areas"`
	MatchMode      string   `json:"match_mode"`
	Hours          int      `json:"hours"`
	MaxItems       int      `json:"max_items"`
	UpdateInterval string   `json:"update_interval"`
}

// AreaView is one area's bucket together with the active settings.
type AreaView struct {
	Area     string                 `json:"area"`
	Count    int                    `json:"count"`
	Latest   *domain.EnrichedEvent  `json:"latest,omitempty"`
	Events   []domain.EnrichedEvent `json:"events"`
	Settings Settings               `json:"settings"`
}

// Summary is a bucket overview row for area listings.
type Summary struct {
	Area   string                `json:"area"`
	Count  int                   `json:"count"`
	Latest *domain.EnrichedEvent `json:"latest,omitempty"`
}

// PerArea returns the bucket bound to area, verbatim. Lookup is exact
// first, then case insensitive, so URL callers need not reproduce the
// configured spelling.
func PerArea(snap *domain.Snapshot, area string, settings Settings) (AreaView, bool) {
	bucket, ok := snap.Bucket(area)
	if !ok {
		bucket, ok = foldLookup(snap, area)
	}

	if !ok {
		return AreaView{}, false
	}

	return AreaView{
		Area:     bucket.Area,
		Count:    bucket.Count,
		Latest:   bucket.Latest,
		Events:   bucket.Events,
		Settings: settings,
	}, true
}

// Combined flattens every bucket's events into one view: each event is
// tagged with its source area, then the today/yesterday/older grouping,
// sort, and keep-all-today trim are applied again over the union. The
// count is the sum of the per-area pre-trim counts.
func Combined(snap *domain.Snapshot, settings Settings) AreaView {
	out := AreaView{Area: CombinedArea, Settings: settings, Events: []domain.EnrichedEvent{}}
	if snap == nil {
		return out
	}

	union := make([]domain.EnrichedEvent, 0)

	for _, area := range snap.Areas {
		bucket, ok := snap.Bucket(area)
		if !ok {
			continue
		}

		out.Count += bucket.Count

		for _, ev := range bucket.Events {
			if bucket.Area != "" {
				ev.Area = bucket.Area
			}

			union = append(union, ev)
		}
	}

	out.Events = aggregate.Arrange(union, snap.GeneratedAt, settings.MaxItems)

	if len(out.Events) > 0 {
		latest := out.Events[0]
		out.Latest = &latest
	}

	return out
}

// Summaries lists each area's bucket overview in configured order.
func Summaries(snap *domain.Snapshot) []Summary {
	if snap == nil {
		return nil
	}

	out := make([]Summary, 0, len(snap.Areas))

	for _, area := range snap.Areas {
		bucket, ok := snap.Bucket(area)
		if !ok {
			bucket = domain.AreaBucket{Area: area}
		}

		out = append(out, Summary{
			Area:   bucket.Area,
			Count:  bucket.Count,
			Latest: bucket.Latest,
		})
	}

	return out
}

// foldLookup scans buckets for a case-insensitive area match.
func foldLookup(snap *domain.Snapshot, area string) (domain.AreaBucket, bool) {
	if snap == nil {
		return domain.AreaBucket{}, false
	}

	want := strings.ToLower(strings.TrimSpace(area))

	for key, bucket := range snap.Buckets {
		if strings.ToLower(strings.TrimSpace(key)) == want {
			return bucket, true
		}
	}

	return domain.AreaBucket{}, false
}
