package query

import "time"

// Key identifies a logical query.
type Key string

// Query keys for the backend endpoints.
const (
	KeyHealth      Key = "health"
	KeyMetrics     Key = "gpu/metrics"
	KeyNodes       Key = "gpu/nodes"
	KeyUtilization Key = "gpu/utilization"
)

// Default cache policy.
const (
	DefaultStaleTime  = 30 * time.Second
	DefaultGCTime     = 5 * time.Minute
	DefaultRetry      = 3
	DefaultRetryDelay = time.Second
)

// Polling intervals for the dashboard's two timers.
const (
	MetricsPollInterval = 30 * time.Second
	HealthPollInterval  = 60 * time.Second
)

// Options is the per-query cache and retry policy.
type Options struct {
	// StaleTime is how long a successful result is served without a new request.
	StaleTime time.Duration
	// GCTime is how long an entry with no observers survives after last use.
	GCTime time.Duration
	// Retry is the number of retries after the first failed attempt.
	Retry int
	// RetryDelay is the fixed delay between attempts.
	RetryDelay time.Duration
}

// DefaultOptions returns the default cache policy.
func DefaultOptions() Options {
	return Options{
		StaleTime:  DefaultStaleTime,
		GCTime:     DefaultGCTime,
		Retry:      DefaultRetry,
		RetryDelay: DefaultRetryDelay,
	}
}

// withDefaults fills zero durations. A zero Retry is kept: it means no retries.
func (o Options) withDefaults() Options {
	if o.StaleTime < 0 {
		o.StaleTime = 0
	}
	if o.GCTime <= 0 {
		o.GCTime = DefaultGCTime
	}
	if o.Retry < 0 {
		o.Retry = 0
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = DefaultRetryDelay
	}
	return o
}
