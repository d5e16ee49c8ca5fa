package cli

import (
	"context"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rileyhilliard/gpumon/internal/api"
	"github.com/rileyhilliard/gpumon/internal/config"
	"github.com/rileyhilliard/gpumon/internal/errors"
	"github.com/rileyhilliard/gpumon/internal/logger"
	"github.com/rileyhilliard/gpumon/internal/query"
)

// app bundles the long-lived pieces every command needs: the resolved config,
// the HTTP client and the query cache sitting on top of it.
type app struct {
	cfg      *config.Config
	api      *api.Client
	queries  *query.Client
	registry *prometheus.Registry
	log      logger.Logger

	cancel     context.CancelFunc
	stopServer func()
}

// loadConfig reads the config file and environment, then applies the global
// flag overrides before validating.
func loadConfig() (*config.Config, error) {
	cfg, _, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if apiURLFlag != "" {
		cfg.APIURL = apiURLFlag
	}
	if timeoutFlag != "" {
		d, err := ParseTimeout(timeoutFlag)
		if err != nil {
			return nil, err
		}
		cfg.Timeout = d
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	if cfg.Debug && os.Getenv(logger.DebugEnvVar) == "" {
		_ = os.Setenv(logger.DebugEnvVar, "1")
	}
	return cfg, nil
}

// newApp wires the API client and query cache from cfg. The returned app must
// be closed.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	base, err := cfg.BaseURL()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid API URL: "+cfg.APIURL,
			"Set api_url to an absolute URL, or a path plus an absolute origin.")
	}

	log := logger.NewEnvLogger("[gpumon]")
	apiClient := api.NewClient(base,
		api.WithTimeout(cfg.Timeout),
		api.WithUserAgent("gpumon/"+GetVersion()),
	)

	registry := prometheus.NewRegistry()
	metrics := query.NewMetrics(registry)
	queries := query.NewClient(query.WithMetrics(metrics))

	query.RegisterAPI(queries, apiClient, query.Options{
		StaleTime:  cfg.StaleTime,
		GCTime:     cfg.GCTime,
		Retry:      query.DefaultRetry,
		RetryDelay: query.DefaultRetryDelay,
	})

	runCtx, cancel := context.WithCancel(ctx)
	go queries.Run(runCtx)

	a := &app{
		cfg:      cfg,
		api:      apiClient,
		queries:  queries,
		registry: registry,
		log:      log,
		cancel:   cancel,
	}

	if metricsAddr != "" {
		stop, err := startMetricsServer(metricsAddr, registry, log)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.stopServer = stop
	}

	log.Debug("using API at %s", base)
	return a, nil
}

// Close stops background work and releases subscriptions.
func (a *app) Close() {
	if a.stopServer != nil {
		a.stopServer()
	}
	a.cancel()
	a.queries.Close()
}
