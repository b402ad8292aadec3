// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and CASEWATCH_ env vars.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// TopN is the number of records selected per cycle, before pinning.
	TopN int `koanf:"top_n"`

	// PinnedKey names the entity always shown first. Empty disables pinning.
	PinnedKey string `koanf:"pinned_key"`

	// RefreshInterval is the scheduler period.
	RefreshInterval time.Duration `koanf:"refresh_interval"`

	// ImmediateRefresh runs one cycle on start instead of waiting a full period.
	ImmediateRefresh bool `koanf:"immediate_refresh"`

	// SourceURL is the JSON endpoint returning the raw record array.
	SourceURL string `koanf:"source_url"`

	// SourceTimeout bounds one fetch.
	SourceTimeout time.Duration `koanf:"source_timeout"`

	// NameField, MetricField name the identity and primary metric keys in raw objects.
	NameField   string `koanf:"name_field"`
	MetricField string `koanf:"metric_field"`

	// SecondaryFields are summed into the aggregate totals.
	SecondaryFields []string `koanf:"secondary_fields"`

	// MetaFields are copied through as display metadata.
	MetaFields []string `koanf:"meta_fields"`

	// ManualRefreshInterval is the minimum spacing of POST /refresh triggers.
	ManualRefreshInterval time.Duration `koanf:"manual_refresh_interval"`

	// MaxViewLimit caps GET /view?limit.
	MaxViewLimit int `koanf:"max_view_limit"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             "text",
		Addr:                  ":9080",
		TopN:                  100,
		PinnedKey:             "Vietnam",
		RefreshInterval:       30 * time.Second,
		ImmediateRefresh:      true,
		SourceURL:             "https://disease.sh/v3/covid-19/countries",
		SourceTimeout:         10 * time.Second,
		NameField:             "country",
		MetricField:           "cases",
		SecondaryFields:       []string{"deaths", "recovered"},
		MetaFields:            []string{"countryInfo"},
		ManualRefreshInterval: 5 * time.Second,
		MaxViewLimit:          500,
	}
}

// Validate rejects configurations the engine cannot start with.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.TopN <= 0:
		return fmt.Errorf("%w: top_n must be positive, got %d", ErrInvalidConfig, c.TopN)
	case c.RefreshInterval <= 0:
		return fmt.Errorf("%w: refresh_interval must be positive, got %s", ErrInvalidConfig, c.RefreshInterval)
	case c.SourceTimeout <= 0:
		return fmt.Errorf("%w: source_timeout must be positive, got %s", ErrInvalidConfig, c.SourceTimeout)
	case strings.TrimSpace(c.SourceURL) == "":
		return fmt.Errorf("%w: source_url must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.NameField) == "":
		return fmt.Errorf("%w: name_field must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.MetricField) == "":
		return fmt.Errorf("%w: metric_field must not be empty", ErrInvalidConfig)
	case c.MaxViewLimit <= 0:
		return fmt.Errorf("%w: max_view_limit must be positive, got %d", ErrInvalidConfig, c.MaxViewLimit)
	}
	for _, f := range c.SecondaryFields {
		if f == c.MetricField {
			return fmt.Errorf("%w: secondary field %q duplicates metric_field", ErrInvalidConfig, f)
		}
	}
	return nil
}
