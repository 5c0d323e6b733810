// Package config loads and validates the application configuration from
// viper: defaults, optional config file, .env, and environment overrides.
package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/jonesrussell/poliswatch/internal/areas"
	"github.com/jonesrussell/poliswatch/internal/constants"
	"github.com/jonesrussell/poliswatch/internal/logger"
)

// AppConfig identifies the running application.
type AppConfig struct {
	// Name is the name of the application
	Name string `mapstructure:"name"`
	// Version is the version of the application
	Version string `mapstructure:"version"`
	// Environment is the application environment (development, staging, production, test)
	Environment string `mapstructure:"environment"`
	// Debug indicates whether debug mode is enabled
	Debug bool `mapstructure:"debug"`
}

// ServerConfig holds the HTTP API server settings.
type ServerConfig struct {
	// Address is the address to listen on (e.g., ":8080")
	Address string `mapstructure:"address"`
	// ReadTimeout is the maximum duration for reading the entire request
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the maximum duration before timing out writes of the response
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// IdleTimeout is the maximum amount of time to wait for the next request
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
}

// FeedConfig holds the upstream events feed settings.
type FeedConfig struct {
	// Endpoint is the events feed URL
	Endpoint string `mapstructure:"endpoint"`
	// Timeout bounds one feed list request
	Timeout time.Duration `mapstructure:"timeout"`
	// UserAgent identifies the application upstream
	UserAgent string `mapstructure:"user_agent"`
}

// WatchConfig holds the aggregation parameters.
type WatchConfig struct {
	// Areas is the free-text area specification; several areas may be
	// separated by  / , ; |  or newlines
	Areas string `mapstructure:"areas"`
	// MatchMode is "contains" or "exact"
	MatchMode string `mapstructure:"match_mode"`
	// Hours is the recency window
	Hours int `mapstructure:"hours"`
	// MaxItems caps per-area events beyond today's
	MaxItems int `mapstructure:"max_items"`
	// UpdateInterval is the refresh tick interval
	UpdateInterval time.Duration `mapstructure:"update_interval"`
	// Combined lists the all-areas view alongside per-area views
	Combined bool `mapstructure:"combined"`
}

// AreaList returns the configured areas split and deduplicated.
func (c *WatchConfig) AreaList() []string {
	return areas.Dedupe(areas.Split(c.Areas))
}

// Mode returns the configured match mode.
func (c *WatchConfig) Mode() areas.MatchMode {
	return areas.MatchMode(c.MatchMode)
}

// EnrichConfig holds the detail-page enrichment settings.
type EnrichConfig struct {
	// Concurrency caps simultaneous detail fetches
	Concurrency int `mapstructure:"concurrency"`
	// Timeout bounds one detail page fetch
	Timeout time.Duration `mapstructure:"timeout"`
	// CacheTTL is how long fetched detail fields stay cached
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// SuggestConfig holds the area suggestion settings.
type SuggestConfig struct {
	// PageURL is the news page carrying the location datalist
	PageURL string `mapstructure:"page_url"`
	// Timeout bounds the datalist scrape
	Timeout time.Duration `mapstructure:"timeout"`
	// TTL is how long a merged suggestion list stays cached
	TTL time.Duration `mapstructure:"ttl"`
}

// Config is the complete application configuration.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Logger  logger.Config `mapstructure:"logger"`
	Server  ServerConfig  `mapstructure:"server"`
	Feed    FeedConfig    `mapstructure:"feed"`
	Watch   WatchConfig   `mapstructure:"watch"`
	Enrich  EnrichConfig  `mapstructure:"enrich"`
	Suggest SuggestConfig `mapstructure:"suggest"`
}

// New decodes v into a validated Config.
func New(v *viper.Viper) (*Config, error) {
	var cfg Config

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create config decoder: %w", err)
	}

	if decodeErr := decoder.Decode(v.AllSettings()); decodeErr != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", decodeErr)
	}

	if validateErr := cfg.Validate(); validateErr != nil {
		return nil, validateErr
	}

	return &cfg, nil
}

// SetDefaults installs production-safe defaults on v. Values set here
// are only used when neither the config file nor the environment
// provides them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("app", map[string]any{
		"name":        constants.DefaultAppName,
		"version":     constants.DefaultAppVersion,
		"environment": constants.EnvProduction,
		"debug":       false,
	})

	v.SetDefault("logger", map[string]any{
		"level":        constants.DefaultLogLevel,
		"encoding":     constants.DefaultLogFormat,
		"development":  false,
		"enable_color": false,
	})

	v.SetDefault("server", map[string]any{
		"address":       constants.DefaultServerAddress,
		"read_timeout":  constants.DefaultServerReadTimeout.String(),
		"write_timeout": constants.DefaultServerWriteTimeout.String(),
		"idle_timeout":  constants.DefaultServerIdleTimeout.String(),
	})

	v.SetDefault("feed", map[string]any{
		"endpoint":   constants.DefaultFeedEndpoint,
		"timeout":    constants.DefaultFeedTimeout.String(),
		"user_agent": constants.DefaultUserAgent,
	})

	v.SetDefault("watch", map[string]any{
		"areas":           "",
		"match_mode":      string(areas.ModeContains),
		"hours":           constants.DefaultWindowHours,
		"max_items":       constants.DefaultMaxItems,
		"update_interval": constants.DefaultUpdateInterval.String(),
		"combined":        false,
	})

	v.SetDefault("enrich", map[string]any{
		"concurrency": constants.DefaultEnrichConcurrency,
		"timeout":     constants.DefaultDetailTimeout.String(),
		"cache_ttl":   constants.DefaultDetailCacheTTL.String(),
	})

	v.SetDefault("suggest", map[string]any{
		"page_url": constants.DefaultSuggestPageURL,
		"timeout":  constants.DefaultScrapeTimeout.String(),
		"ttl":      constants.DefaultSuggestTTL.String(),
	})
}
