package query

import (
	"context"
	"sync"
	"time"
)

// Poller revalidates one key on a fixed interval while enabled.
// Disabling only cancels future ticks; a request already in flight completes
// and its result is still committed to the cache.
type Poller struct {
	client   *Client
	key      Key
	interval time.Duration

	mu      sync.Mutex
	enabled bool
	reset   chan struct{}
	cancel  context.CancelFunc
	done    chan struct{}

	inflight sync.WaitGroup
}

// NewPoller creates an enabled poller. Call Start to begin ticking.
func NewPoller(c *Client, key Key, interval time.Duration) *Poller {
	return &Poller{
		client:   c,
		key:      key,
		interval: interval,
		enabled:  true,
		reset:    make(chan struct{}, 1),
	}
}

// Start begins ticking in a background goroutine. Calling Start on a running
// poller is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.loop(ctx, p.done)
}

// Stop halts the ticker and waits for the loop to exit. A poll already in
// flight keeps running and still commits to the cache; use Wait to block
// until it has.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Wait blocks until every poll started by a tick has finished.
func (p *Poller) Wait() {
	p.inflight.Wait()
}

// SetEnabled turns ticking on or off. Enabling restarts the interval so the
// next tick is a full interval away.
func (p *Poller) SetEnabled(enabled bool) {
	p.mu.Lock()
	changed := p.enabled != enabled
	p.enabled = enabled
	p.mu.Unlock()

	if changed && enabled {
		select {
		case p.reset <- struct{}{}:
		default:
		}
	}
}

// Enabled reports whether ticks currently trigger fetches.
func (p *Poller) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

// Interval returns the polling interval.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

func (p *Poller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.reset:
			ticker.Reset(p.interval)
		case <-ticker.C:
			if !p.Enabled() {
				continue
			}
			// The fetch outlives this tick; errors are recorded in the cache.
			p.inflight.Add(1)
			go func() {
				defer p.inflight.Done()
				_, _ = p.client.Revalidate(context.Background(), p.key)
			}()
		}
	}
}
