package query

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rileyhilliard/gpumon/internal/api"
	"github.com/rileyhilliard/gpumon/internal/logger"
	"golang.org/x/sync/singleflight"
)

// ErrUnknownQuery is returned for keys that were never registered.
var ErrUnknownQuery = errors.New("unknown query")

// Fetcher performs one attempt of a query.
type Fetcher func(ctx context.Context) (any, error)

// registration is the persistent part of a query: it survives eviction.
type registration struct {
	fetcher Fetcher
	opts    Options
}

// entry is the evictable cache state for one key.
type entry struct {
	value     any
	err       error
	updatedAt time.Time
	errorAt   time.Time
	lastUsed  time.Time
	failures  int

	invalidated bool
	fetching    bool
	observers   map[*Subscription]struct{}
}

// Client is the process-wide query cache.
type Client struct {
	mu      sync.Mutex
	queries map[Key]*registration
	entries map[Key]*entry
	group   singleflight.Group

	// baseCtx bounds every request; it is only cancelled by Close.
	baseCtx context.Context
	cancel  context.CancelFunc

	now        func() time.Time
	log        logger.Logger
	metrics    *Metrics
	gcInterval time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets the client's logger.
func WithLogger(l logger.Logger) ClientOption {
	return func(c *Client) {
		c.log = l
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// WithMetrics records fetch outcomes into m.
func WithMetrics(m *Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithGCInterval sets how often Run sweeps for evictable entries.
func WithGCInterval(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.gcInterval = d
		}
	}
}

// NewClient creates an empty query cache.
func NewClient(opts ...ClientOption) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		queries:    make(map[Key]*registration),
		entries:    make(map[Key]*entry),
		baseCtx:    ctx,
		cancel:     cancel,
		now:        time.Now,
		log:        logger.NewEnvLogger("[query]"),
		gcInterval: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register adds a query. Registering a key again replaces its fetcher and
// options but keeps cached data.
func (c *Client) Register(key Key, fetcher Fetcher, opts Options) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queries[key] = &registration{fetcher: fetcher, opts: opts.withDefaults()}
}

// Close aborts in-flight requests and closes all subscriptions.
func (c *Client) Close() {
	c.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		for sub := range e.observers {
			sub.closeLocked()
		}
		clear(e.observers)
	}
}

// Fetch returns the cached value when fresh, otherwise joins the in-flight
// request for key or starts a new one. ctx only bounds how long this caller
// waits; the request itself keeps running for the other waiters.
func (c *Client) Fetch(ctx context.Context, key Key) (any, error) {
	return c.fetch(ctx, key, false)
}

// Revalidate fetches key regardless of freshness. Poll ticks use it so a
// result that is a few milliseconds short of stale is not served from cache.
func (c *Client) Revalidate(ctx context.Context, key Key) (any, error) {
	return c.fetch(ctx, key, true)
}

// Refetch is a manual refresh: the entry is marked invalid for every observer
// and then fetched. An outstanding request is joined rather than duplicated.
func (c *Client) Refetch(ctx context.Context, key Key) (any, error) {
	if err := c.Invalidate(key); err != nil {
		return nil, err
	}
	return c.fetch(ctx, key, true)
}

// Invalidate marks key as stale for all observers without fetching.
func (c *Client) Invalidate(key Key) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.queries[key]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownQuery, key)
	}
	e := c.entryLocked(key)
	e.invalidated = true
	c.notifyLocked(key, e)
	return nil
}

// State returns the current snapshot for key.
func (c *Client) State(key Key) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return Snapshot{Key: key, Status: StatusLoading}
	}
	return c.snapshotLocked(key, e)
}

// CachedKeys returns the keys that currently hold a cache entry, sorted.
// A registered query has no entry until it is fetched or observed.
func (c *Client) CachedKeys() []Key {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]Key, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Registered returns every registered key, sorted.
func (c *Client) Registered() []Key {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]Key, 0, len(c.queries))
	for k := range c.queries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (c *Client) fetch(ctx context.Context, key Key, force bool) (any, error) {
	c.mu.Lock()
	reg, ok := c.queries[key]
	if !ok {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrUnknownQuery, key)
	}

	now := c.now()
	e := c.entryLocked(key)
	e.lastUsed = now

	if !force && c.freshLocked(e, reg.opts, now) {
		value := e.value
		c.mu.Unlock()
		c.metrics.cacheHit(key)
		return value, nil
	}

	ch := c.group.DoChan(string(key), func() (interface{}, error) {
		return c.execute(key, reg)
	})
	c.mu.Unlock()

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// execute runs the fetcher with the retry policy and commits the outcome.
// It runs on singleflight's goroutine, never under c.mu.
func (c *Client) execute(key Key, reg *registration) (any, error) {
	c.mu.Lock()
	e := c.entryLocked(key)
	e.fetching = true
	c.notifyLocked(key, e)
	c.mu.Unlock()

	start := c.now()
	attempts := 0

	var value any
	op := func() error {
		attempts++
		v, err := reg.fetcher(c.baseCtx)
		if err != nil {
			if api.IsKind(err, api.KindNotFound) {
				return backoff.Permanent(err)
			}
			return err
		}
		value = v
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(reg.opts.RetryDelay), uint64(reg.opts.Retry)),
		c.baseCtx,
	)
	err := backoff.RetryNotify(op, policy, func(err error, wait time.Duration) {
		c.log.Debug("%s attempt %d failed (%v), retrying in %s", key, attempts, err, wait)
		c.metrics.retry(key)
	})

	c.metrics.observe(key, err, c.now().Sub(start))
	if err != nil {
		c.log.Warn("%s failed after %d attempt(s): %v", key, attempts, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e = c.entryLocked(key)
	e.fetching = false
	now := c.now()
	if err != nil {
		e.err = err
		e.errorAt = now
		e.failures = attempts
	} else {
		e.value = value
		e.updatedAt = now
		e.err = nil
		e.failures = 0
		e.invalidated = false
	}
	c.notifyLocked(key, e)

	return value, err
}

// GC evicts entries that have no observers, are not fetching, and have not
// been used for their GC time. It returns the number of evicted entries.
func (c *Client) GC() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	evicted := 0
	for key, e := range c.entries {
		if len(e.observers) > 0 || e.fetching {
			continue
		}
		gcTime := DefaultGCTime
		if reg, ok := c.queries[key]; ok {
			gcTime = reg.opts.GCTime
		}
		if now.Sub(e.lastUsed) >= gcTime {
			delete(c.entries, key)
			evicted++
			c.log.Debug("evicted %s", key)
		}
	}
	c.metrics.evicted(evicted)
	return evicted
}

// Run sweeps the cache periodically until ctx is done.
func (c *Client) Run(ctx context.Context) {
	ticker := time.NewTicker(c.gcInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.baseCtx.Done():
			return
		case <-ticker.C:
			c.GC()
		}
	}
}

func (c *Client) entryLocked(key Key) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{
			lastUsed:  c.now(),
			observers: make(map[*Subscription]struct{}),
		}
		c.entries[key] = e
	}
	return e
}

func (c *Client) freshLocked(e *entry, opts Options, now time.Time) bool {
	if e.updatedAt.IsZero() || e.err != nil || e.invalidated {
		return false
	}
	return now.Sub(e.updatedAt) < opts.StaleTime
}

func (c *Client) snapshotLocked(key Key, e *entry) Snapshot {
	s := Snapshot{
		Key:       key,
		Value:     e.value,
		Err:       e.err,
		UpdatedAt: e.updatedAt,
		ErrorAt:   e.errorAt,
		Failures:  e.failures,
		Fetching:  e.fetching,
	}

	switch {
	case e.err != nil:
		s.Status = StatusError
	case !e.updatedAt.IsZero():
		s.Status = StatusSuccess
	default:
		s.Status = StatusLoading
	}

	if !e.updatedAt.IsZero() {
		opts := DefaultOptions()
		if reg, ok := c.queries[key]; ok {
			opts = reg.opts
		}
		s.Stale = !c.freshLocked(e, opts, c.now())
	}
	return s
}
