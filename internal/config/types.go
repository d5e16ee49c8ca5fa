package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config is the complete gpumon configuration.
type Config struct {
	Version int `yaml:"version" mapstructure:"version"`

	// APIURL is the backend base URL. A relative value such as "/api" is
	// resolved against Origin.
	APIURL string `yaml:"api_url" mapstructure:"api_url"`

	// Origin stands in for the page origin a browser would supply.
	Origin string `yaml:"origin" mapstructure:"origin"`

	// Timeout bounds each HTTP request.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// MetricsInterval is the auto-refresh period for the metrics table.
	MetricsInterval time.Duration `yaml:"metrics_interval" mapstructure:"metrics_interval"`

	// HealthInterval is the health check period. Health polling is always on.
	HealthInterval time.Duration `yaml:"health_interval" mapstructure:"health_interval"`

	// AutoRefresh is the initial state of metrics polling.
	AutoRefresh bool `yaml:"auto_refresh" mapstructure:"auto_refresh"`

	PageSize int `yaml:"page_size" mapstructure:"page_size"`

	// StaleTime is how long a result is served without a new request.
	StaleTime time.Duration `yaml:"stale_time" mapstructure:"stale_time"`

	// GCTime is how long an unobserved cache entry survives.
	GCTime time.Duration `yaml:"gc_time" mapstructure:"gc_time"`

	Debug bool `yaml:"debug" mapstructure:"debug"`

	// LogFile receives log output while the dashboard owns the terminal.
	LogFile string `yaml:"log_file" mapstructure:"log_file"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version:         CurrentConfigVersion,
		APIURL:          "/api",
		Origin:          "http://localhost:8080",
		Timeout:         30 * time.Second,
		MetricsInterval: 30 * time.Second,
		HealthInterval:  60 * time.Second,
		AutoRefresh:     true,
		PageSize:        10,
		StaleTime:       30 * time.Second,
		GCTime:          5 * time.Minute,
		Debug:           false,
		LogFile:         "",
	}
}
