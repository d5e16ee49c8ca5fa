package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const fileHeader = "# gpumon configuration\n# Every key can be overridden with a GPUMON_* environment variable.\n\n"

// fileConfig is the on-disk form. Durations are written as strings like "30s"
// since yaml.v3 would otherwise emit nanosecond integers.
type fileConfig struct {
	Version         int    `yaml:"version"`
	APIURL          string `yaml:"api_url"`
	Origin          string `yaml:"origin"`
	Timeout         string `yaml:"timeout"`
	MetricsInterval string `yaml:"metrics_interval"`
	HealthInterval  string `yaml:"health_interval"`
	AutoRefresh     bool   `yaml:"auto_refresh"`
	PageSize        int    `yaml:"page_size"`
	StaleTime       string `yaml:"stale_time"`
	GCTime          string `yaml:"gc_time"`
	Debug           bool   `yaml:"debug,omitempty"`
	LogFile         string `yaml:"log_file,omitempty"`
}

// Marshal renders cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	fc := fileConfig{
		Version:         cfg.Version,
		APIURL:          cfg.APIURL,
		Origin:          cfg.Origin,
		Timeout:         cfg.Timeout.String(),
		MetricsInterval: cfg.MetricsInterval.String(),
		HealthInterval:  cfg.HealthInterval.String(),
		AutoRefresh:     cfg.AutoRefresh,
		PageSize:        cfg.PageSize,
		StaleTime:       cfg.StaleTime.String(),
		GCTime:          cfg.GCTime.String(),
		Debug:           cfg.Debug,
		LogFile:         cfg.LogFile,
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fc); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes cfg to path, creating parent directories.
func Save(path string, cfg *Config) error {
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(fileHeader), data...), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
