package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/jonesrussell/poliswatch/internal/constants"
	"github.com/jonesrussell/poliswatch/internal/logger"
)

// Validate checks every section, wrapping failures with the section name.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := validateLogger(&c.Logger); err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Feed.Validate(); err != nil {
		return fmt.Errorf("feed: %w", err)
	}
	if err := c.Watch.Validate(); err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	if err := c.Enrich.Validate(); err != nil {
		return fmt.Errorf("enrich: %w", err)
	}
	if err := c.Suggest.Validate(); err != nil {
		return fmt.Errorf("suggest: %w", err)
	}

	return nil
}

// Validate checks the application identity section.
func (c *AppConfig) Validate() error {
	if c.Name == "" {
		return errors.New("application name must be specified")
	}
	if c.Version == "" {
		return errors.New("application version must be specified")
	}
	if !constants.ValidEnvironments[c.Environment] {
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}

	return nil
}

// validateLogger checks the logger section.
func validateLogger(c *logger.Config) error {
	if !logger.ValidLevel(string(c.Level)) {
		return fmt.Errorf("%w: %s", logger.ErrInvalidLevel, c.Level)
	}

	switch c.Encoding {
	case "json", "console":
	default:
		return fmt.Errorf("invalid encoding: %s", c.Encoding)
	}

	return nil
}

// Validate checks the server section.
func (c *ServerConfig) Validate() error {
	if c.Address == "" {
		return errors.New("address must be specified")
	}
	if c.ReadTimeout <= 0 {
		return errors.New("read_timeout must be positive")
	}
	if c.WriteTimeout <= 0 {
		return errors.New("write_timeout must be positive")
	}
	if c.IdleTimeout <= 0 {
		return errors.New("idle_timeout must be positive")
	}

	return nil
}

// Validate checks the feed section.
func (c *FeedConfig) Validate() error {
	if err := validateHTTPURL(c.Endpoint); err != nil {
		return fmt.Errorf("invalid endpoint: %w", err)
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}

	return nil
}

// Validate checks the watch section. Out-of-range values are rejected,
// never clamped.
func (c *WatchConfig) Validate() error {
	if !c.Mode().Valid() {
		return fmt.Errorf("match_mode must be contains or exact, got %q", c.MatchMode)
	}
	if c.Hours < constants.MinWindowHours || c.Hours > constants.MaxWindowHours {
		return fmt.Errorf("hours must be between %d and %d, got %d",
			constants.MinWindowHours, constants.MaxWindowHours, c.Hours)
	}
	if c.MaxItems < constants.MinMaxItems || c.MaxItems > constants.MaxMaxItems {
		return fmt.Errorf("max_items must be between %d and %d, got %d",
			constants.MinMaxItems, constants.MaxMaxItems, c.MaxItems)
	}
	if c.UpdateInterval < constants.MinUpdateInterval || c.UpdateInterval > constants.MaxUpdateInterval {
		return fmt.Errorf("update_interval must be between %s and %s, got %s",
			constants.MinUpdateInterval, constants.MaxUpdateInterval, c.UpdateInterval)
	}

	return nil
}

// Validate checks the enrichment section.
func (c *EnrichConfig) Validate() error {
	if c.Concurrency < 1 {
		return errors.New("concurrency must be at least 1")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.CacheTTL <= 0 {
		return errors.New("cache_ttl must be positive")
	}

	return nil
}

// Validate checks the suggestion section.
func (c *SuggestConfig) Validate() error {
	if err := validateHTTPURL(c.PageURL); err != nil {
		return fmt.Errorf("invalid page_url: %w", err)
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.TTL <= 0 {
		return errors.New("ttl must be positive")
	}

	return nil
}

// validateHTTPURL rejects anything that is not an absolute HTTP(S) URL.
func validateHTTPURL(raw string) error {
	if raw == "" {
		return errors.New("must be specified")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("must be a valid HTTP(S) URL")
	}

	return nil
}
