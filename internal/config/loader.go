package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/gpumon/internal/errors"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix is prepended to every environment override, e.g. GPUMON_API_URL.
	EnvPrefix = "GPUMON"
	// GlobalConfigDir is the directory for the config file, relative to home.
	GlobalConfigDir = ".config/gpumon"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yaml"
)

// configKeys lists every key that can come from the file or the environment.
var configKeys = []string{
	"version",
	"api_url",
	"origin",
	"timeout",
	"metrics_interval",
	"health_interval",
	"auto_refresh",
	"page_size",
	"stale_time",
	"gc_time",
	"debug",
	"log_file",
}

// DefaultPath returns ~/.config/gpumon/config.yaml, or "" when the home
// directory is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
}

// Find locates the config file:
// 1. Explicit path (from --config flag), which must exist
// 2. ~/.config/gpumon/config.yaml
//
// Returns "" when no file is present. A missing file is not an error: every
// setting has a default.
func Find(explicit string) (string, error) {
	if explicit != "" {
		path := ExpandTilde(explicit)
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct, or run 'gpumon config init' to create one")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return path, nil
	}

	global := DefaultPath()
	if global == "" {
		return "", nil
	}
	if _, err := os.Stat(global); err == nil {
		return global, nil
	}
	return "", nil
}

// Load builds the configuration from defaults, the config file (if any) and
// GPUMON_* environment variables, in increasing precedence. It returns the
// path of the file that was read, or "".
func Load(explicit string) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}

	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, "", errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to read config file",
				"Check the file exists and is valid YAML: "+path)
		}
	}

	cfg, err := parseConfig(v, path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// LoadOrDefault loads config, falling back to defaults on any error.
// Used by commands like 'gpumon version' that should never fail on config.
func LoadOrDefault() *Config {
	cfg, _, err := Load("")
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, DefaultConfig())
	for _, key := range configKeys {
		// Bound explicitly so Unmarshal sees env values for every key.
		_ = v.BindEnv(key)
	}
	return v
}

// setDefaults registers d's values so unset keys keep them.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("version", d.Version)
	v.SetDefault("api_url", d.APIURL)
	v.SetDefault("origin", d.Origin)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("metrics_interval", d.MetricsInterval)
	v.SetDefault("health_interval", d.HealthInterval)
	v.SetDefault("auto_refresh", d.AutoRefresh)
	v.SetDefault("page_size", d.PageSize)
	v.SetDefault("stale_time", d.StaleTime)
	v.SetDefault("gc_time", d.GCTime)
	v.SetDefault("debug", d.Debug)
	v.SetDefault("log_file", d.LogFile)
}

// parseConfig converts viper config to our Config struct.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		source := "the environment"
		if path != "" {
			source = path
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the values in "+source+" (durations look like 30s or 5m)")
	}

	cfg.APIURL = strings.TrimSpace(cfg.APIURL)
	cfg.LogFile = ExpandTilde(cfg.LogFile)
	return cfg, nil
}

// ExpandTilde replaces ~ or ~/path with the user's home directory.
// Does not support ~username syntax.
func ExpandTilde(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}
	return path
}
