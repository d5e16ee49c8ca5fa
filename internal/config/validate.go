package config

import (
	"fmt"
	"time"

	"github.com/rileyhilliard/gpumon/internal/api"
	"github.com/rileyhilliard/gpumon/internal/errors"
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but gpumon only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade gpumon, or set 'version: 1' in your config.")
	}

	if cfg.APIURL == "" {
		return errors.New(errors.ErrConfig,
			"No API URL configured",
			"Set api_url in your config or export GPUMON_API_URL=http://host:8080/api")
	}
	if _, err := cfg.BaseURL(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Can't use API URL %q", cfg.APIURL),
			"Use an absolute URL like http://host:8080/api, or a path like /api together with an origin like http://host:8080")
	}

	durations := []struct {
		name  string
		value time.Duration
	}{
		{"timeout", cfg.Timeout},
		{"metrics_interval", cfg.MetricsInterval},
		{"health_interval", cfg.HealthInterval},
		{"gc_time", cfg.GCTime},
	}
	for _, d := range durations {
		if d.value <= 0 {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("%s must be positive, got %s", d.name, d.value),
				fmt.Sprintf("Set %s to a duration like 30s or 5m.", d.name))
		}
	}
	if cfg.StaleTime < 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("stale_time can't be negative, got %s", cfg.StaleTime),
			"Use 0 to always refetch, or a duration like 30s.")
	}

	if cfg.PageSize <= 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("page_size must be positive, got %d", cfg.PageSize),
			"The dashboard shows 10 rows per page by default.")
	}

	return nil
}

// BaseURL returns the absolute API base URL.
func (c *Config) BaseURL() (string, error) {
	return api.ResolveBaseURL(c.APIURL, c.Origin)
}
