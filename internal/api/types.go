// Package api implements the HTTP API for the watch service.
package api

import (
	"time"

	"github.com/jonesrussell/poliswatch/internal/coordinate"
	"github.com/jonesrussell/poliswatch/internal/view"
)

// StatusResponse reports the coordinator state for /api/v1/status.
type StatusResponse struct {
	coordinate.Status
	Areas       []string   `json:"areas"`
	Cycle       string     `json:"cycle,omitempty"`
	GeneratedAt *time.Time `json:"generated_at,omitempty"`
}

// AreasResponse lists one view per watched area.
type AreasResponse struct {
	Cycle       string          `json:"cycle"`
	GeneratedAt time.Time       `json:"generated_at"`
	Areas       []view.AreaView `json:"areas"`
}

// RefreshResponse confirms an on-demand refresh cycle.
type RefreshResponse struct {
	Cycle       string         `json:"cycle"`
	GeneratedAt time.Time      `json:"generated_at"`
	Summaries   []view.Summary `json:"summaries"`
}

// SuggestionsResponse lists known area names for configuration UIs.
type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
	Count       int      `json:"count"`
}

// SnapshotEventData is the payload of a "snapshot" stream event.
type SnapshotEventData struct {
	Cycle       string         `json:"cycle"`
	GeneratedAt time.Time      `json:"generated_at"`
	Summaries   []view.Summary `json:"summaries"`
}
