package query

import (
	"context"

	"github.com/rileyhilliard/gpumon/internal/api"
)

// Source is the subset of the API client the queries fetch from.
type Source interface {
	Health(ctx context.Context) (*api.Envelope[api.Health], error)
	GPUMetrics(ctx context.Context) (*api.Envelope[[]api.GPUMetrics], error)
	GPUNodes(ctx context.Context) (*api.Envelope[[]api.GPUNode], error)
	GPUUtilization(ctx context.Context) (*api.Envelope[[]api.GPUUtilization], error)
}

// HealthOptions is the health query's policy: a single retry.
func HealthOptions() Options {
	o := DefaultOptions()
	o.Retry = 1
	return o
}

// RegisterAPI registers the four backend queries on c. Cached values are the
// response envelopes, so views can tell "no data" apart from "unsuccessful".
func RegisterAPI(c *Client, src Source, opts Options) {
	c.Register(KeyMetrics, wrap(src.GPUMetrics), opts)
	c.Register(KeyNodes, wrap(src.GPUNodes), opts)
	c.Register(KeyUtilization, wrap(src.GPUUtilization), opts)

	health := HealthOptions()
	health.StaleTime = opts.StaleTime
	health.GCTime = opts.GCTime
	health.RetryDelay = opts.RetryDelay
	c.Register(KeyHealth, wrap(src.Health), health)
}

func wrap[T any](fn func(context.Context) (*api.Envelope[T], error)) Fetcher {
	return func(ctx context.Context) (any, error) {
		env, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return env, nil
	}
}

// GPUMetrics returns the cached metrics payload. ok is false when nothing usable
// is cached or the last fetch failed.
func GPUMetrics(s Snapshot) ([]api.GPUMetrics, bool) {
	return payload[[]api.GPUMetrics](s)
}

// GPUNodes returns the cached node inventory.
func GPUNodes(s Snapshot) ([]api.GPUNode, bool) {
	return payload[[]api.GPUNode](s)
}

// GPUUtilization returns the cached utilization samples.
func GPUUtilization(s Snapshot) ([]api.GPUUtilization, bool) {
	return payload[[]api.GPUUtilization](s)
}

// HealthPayload returns the cached health envelope.
func HealthPayload(s Snapshot) (*api.Envelope[api.Health], bool) {
	if s.Status == StatusError {
		return nil, false
	}
	return Value[*api.Envelope[api.Health]](s)
}

func payload[T any](s Snapshot) (T, bool) {
	var zero T
	if s.Status == StatusError {
		return zero, false
	}
	env, ok := Value[*api.Envelope[T]](s)
	if !ok {
		return zero, false
	}
	return env.Payload()
}
