// Package domain provides domain models used across the application.
package domain

import "time"

// RawEvent is one record from the police events feed. Every field is
// optional on the wire; absent fields decode to their zero values. The
// feed guarantees nothing beyond id uniqueness.
type RawEvent struct {
	// Numeric identity assigned by the feed
	ID int64 `json:"id"`
	// Headline, often leading with the event time ("12 januari 22.16, ...")
	Name string `json:"name"`
	// Short free-text summary
	Summary string `json:"summary"`
	// Publish/update timestamp in the feed format
	Datetime string `json:"datetime"`
	// Event category ("Trafikolycka", "Inbrott", ...)
	Type string `json:"type"`
	// Detail page URL, absolute or root-relative
	URL string `json:"url"`
	// Where the event took place
	Location Location `json:"location"`
}

// Location is the free-text place attached to an event.
type Location struct {
	Name string `json:"name"`
}

// EnrichedEvent is a feed event after aggregation: parsed publish time,
// derived best-effort occurrence time, resolved URL, and any scraped
// detail fields. Values are fixed once a refresh cycle produces them.
type EnrichedEvent struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Summary      string `json:"summary,omitempty"`
	Type         string `json:"type,omitempty"`
	URL          string `json:"url,omitempty"`
	LocationName string `json:"location_name,omitempty"`
	// Source area tag; set only in the all-areas view
	Area string `json:"area,omitempty"`
	// When the feed published or last updated the event (offset-aware)
	PublishedAt time.Time `json:"published_at"`
	// Best-effort occurrence time derived from the headline
	EventAt time.Time     `json:"event_at"`
	Details *DetailFields `json:"details,omitempty"`
}

// DetailFields holds what detail-page scraping yields. Fields are
// extracted independently; any of them may be empty.
type DetailFields struct {
	Subtitle         string     `json:"subtitle,omitempty"`
	Body             string     `json:"body,omitempty"`
	Sender           string     `json:"sender,omitempty"`
	PublishedDisplay string     `json:"published_display,omitempty"`
	PublishedAt      *time.Time `json:"published_at,omitempty"`
}

// Empty reports whether extraction found nothing at all.
func (d DetailFields) Empty() bool {
	return d.Subtitle == "" && d.Body == "" && d.Sender == "" &&
		d.PublishedDisplay == "" && d.PublishedAt == nil
}

// AreaBucket is the aggregation result for one configured area.
type AreaBucket struct {
	// The configured area filter; empty means unfiltered
	Area string `json:"area"`
	// Events in the window before trimming
	Count int `json:"count"`
	// First element of Events, nil when the bucket is empty
	Latest *EnrichedEvent `json:"latest,omitempty"`
	// Ordered, trimmed, enriched events
	Events []EnrichedEvent `json:"events"`
}

// Snapshot is the complete result of one refresh cycle. Consumers only
// ever observe a whole snapshot, never a partially updated one.
type Snapshot struct {
	// Cycle correlates logs and diagnostics for one refresh
	Cycle       string                `json:"cycle"`
	GeneratedAt time.Time             `json:"generated_at"`
	Areas       []string              `json:"areas"`
	Buckets     map[string]AreaBucket `json:"buckets"`
}

// Bucket returns the bucket for area, reporting whether the snapshot
// carries that area.
func (s *Snapshot) Bucket(area string) (AreaBucket, bool) {
	if s == nil {
		return AreaBucket{}, false
	}
	b, ok := s.Buckets[area]
	return b, ok
}
