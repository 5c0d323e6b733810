// Package constants provides all shared constants used across the PolisWatch application.
// Constants are organized by domain (HTTP, Feed, Watch, Enrichment, Logger, General).
package constants

import "time"

// HTTP/Server Constants
const (
	// DefaultServerAddress is the default HTTP server address
	DefaultServerAddress = ":8080"

	// DefaultServerReadTimeout is the default HTTP server read timeout
	DefaultServerReadTimeout = 15 * time.Second

	// DefaultServerWriteTimeout is the default HTTP server write timeout
	DefaultServerWriteTimeout = 30 * time.Second

	// DefaultServerIdleTimeout is the default HTTP server idle timeout
	DefaultServerIdleTimeout = 60 * time.Second

	// DefaultMaxHeaderBytes is the default maximum header bytes (1 MB)
	DefaultMaxHeaderBytes = 1 << 20
)

// Feed Constants
const (
	// DefaultFeedEndpoint is the police events feed URL
	DefaultFeedEndpoint = "https://polisen.se/api/events"

	// DefaultFeedTimeout is the timeout for a feed list request
	DefaultFeedTimeout = 15 * time.Second

	// DefaultDetailTimeout is the timeout for a single detail page fetch
	DefaultDetailTimeout = 15 * time.Second

	// DefaultScrapeTimeout is the timeout for area suggestion scraping
	DefaultScrapeTimeout = 20 * time.Second

	// DefaultUserAgent identifies the application to polisen.se
	DefaultUserAgent = "Mozilla/5.0 (compatible; PolisWatch/1.0)"
)

// Watch Constants
const (
	// DefaultWindowHours is the default recency window in hours
	DefaultWindowHours = 24

	// MinWindowHours is the smallest accepted recency window
	MinWindowHours = 1

	// MaxWindowHours is the largest accepted recency window (one week)
	MaxWindowHours = 168

	// DefaultMaxItems is the default per-area event cap
	DefaultMaxItems = 5

	// MinMaxItems is the smallest accepted per-area event cap.
	// Today's events are always kept, so zero still surfaces them.
	MinMaxItems = 0

	// MaxMaxItems is the largest accepted per-area event cap
	MaxMaxItems = 50

	// DefaultUpdateInterval is the default refresh interval
	DefaultUpdateInterval = 5 * time.Minute

	// MinUpdateInterval is the smallest accepted refresh interval
	MinUpdateInterval = 1 * time.Minute

	// MaxUpdateInterval is the largest accepted refresh interval
	MaxUpdateInterval = 60 * time.Minute
)

// Enrichment Constants
const (
	// DefaultEnrichConcurrency caps simultaneous detail page fetches
	DefaultEnrichConcurrency = 4

	// DefaultDetailCacheTTL is how long fetched detail fields stay cached
	DefaultDetailCacheTTL = 12 * time.Hour
)

// Suggestion Constants
const (
	// DefaultSuggestTTL is how long scraped area suggestions stay cached
	DefaultSuggestTTL = 12 * time.Hour

	// DefaultSuggestPageURL is the news listing page carrying the location datalist
	DefaultSuggestPageURL = "https://polisen.se/aktuellt/polisens-nyheter/1/"
)

// Logger Constants
const (
	// DefaultLogLevel is the default logging level
	DefaultLogLevel = "info"

	// DefaultLogFormat is the default logging format
	DefaultLogFormat = "json"
)

// General/Common Constants
const (
	// DefaultShutdownTimeout is the maximum time to wait for graceful shutdown.
	DefaultShutdownTimeout = 30 * time.Second

	// DefaultEnvironment is the default application environment
	DefaultEnvironment = "development"

	// DefaultAppName is the default application name
	DefaultAppName = "poliswatch"

	// DefaultAppVersion is the default application version
	DefaultAppVersion = "1.0.0"
)

// Environment types
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// ValidEnvironments defines the valid environment types
var ValidEnvironments = map[string]bool{
	"development": true,
	"staging":     true,
	"production":  true,
	"test":        true,
}
