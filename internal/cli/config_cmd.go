package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/gpumon/internal/api"
	"github.com/rileyhilliard/gpumon/internal/config"
	"github.com/rileyhilliard/gpumon/internal/errors"
)

// ConfigInitOptions holds options for 'gpumon config init'.
type ConfigInitOptions struct {
	Path           string // Where to write; defaults to config.DefaultPath()
	APIURL         string // Pre-specified API base URL
	Origin         string // Pre-specified origin for a relative API URL
	Overwrite      bool   // Overwrite existing config without asking
	NonInteractive bool   // Skip prompts, use flags and defaults
}

// ConfigInit writes a new config file.
func ConfigInit(w io.Writer, opts ConfigInitOptions) error {
	path := opts.Path
	if path == "" {
		path = config.DefaultPath()
	}
	if path == "" {
		return errors.New(errors.ErrConfig,
			"Couldn't determine the config location",
			"Pass an explicit path with --config.")
	}
	path = config.ExpandTilde(path)

	if _, err := os.Stat(path); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", path),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", path)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(w, "Cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	if opts.APIURL != "" {
		cfg.APIURL = opts.APIURL
	}
	if opts.Origin != "" {
		cfg.Origin = opts.Origin
	}

	if !opts.NonInteractive {
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("API base URL").
					Description("Absolute URL, or a path resolved against the origin below").
					Placeholder(cfg.APIURL).
					Value(&cfg.APIURL).
					Validate(func(s string) error {
						if strings.TrimSpace(s) == "" {
							return fmt.Errorf("API URL is required")
						}
						return nil
					}),
			),
			huh.NewGroup(
				huh.NewInput().
					Title("Origin").
					Description("Scheme and host used when the API URL is a path").
					Placeholder(cfg.Origin).
					Value(&cfg.Origin).
					Validate(func(s string) error {
						if _, err := api.ResolveBaseURL(cfg.APIURL, s); err != nil {
							return fmt.Errorf("can't build a URL from %q and %q", cfg.APIURL, s)
						}
						return nil
					}),
			),
			huh.NewGroup(
				huh.NewConfirm().
					Title("Start with auto-refresh on?").
					Value(&cfg.AutoRefresh),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Check terminal compatibility or use --non-interactive flag")
		}
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}
	if err := config.Save(path, cfg); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to write config file",
			"Check the directory is writable: "+path)
	}

	fmt.Fprintf(w, "Wrote %s\n", path)
	return nil
}

// ConfigShow prints the effective configuration as YAML.
func ConfigShow(w io.Writer) error {
	cfg, path, err := config.Load(configPath)
	if err != nil {
		return err
	}

	data, err := config.Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Failed to render config", "")
	}
	if path != "" {
		fmt.Fprintf(w, "# loaded from %s\n", path)
	} else {
		fmt.Fprintln(w, "# no config file found; showing defaults and environment overrides")
	}
	_, err = w.Write(data)
	return err
}
