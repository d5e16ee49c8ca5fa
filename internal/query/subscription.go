package query

// Subscription observes one key. Updates carries the latest snapshot after
// every change; a slow reader only ever sees the most recent one.
type Subscription struct {
	client  *Client
	key     Key
	updates chan Snapshot
	closed  bool
}

// Subscribe registers an observer for key. An entry with at least one
// observer is never evicted. Subscribing to a closed client returns a
// subscription whose Updates channel is already closed.
func (c *Client) Subscribe(key Key) *Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()

	sub := &Subscription{
		client:  c,
		key:     key,
		updates: make(chan Snapshot, 1),
	}
	if c.baseCtx.Err() != nil {
		sub.closeLocked()
		return sub
	}
	e := c.entryLocked(key)
	e.observers[sub] = struct{}{}
	e.lastUsed = c.now()
	return sub
}

// Key returns the observed key.
func (s *Subscription) Key() Key {
	return s.key
}

// Updates returns the coalescing update channel. It is closed by Close.
func (s *Subscription) Updates() <-chan Snapshot {
	return s.updates
}

// Close releases the observer. It is safe to call more than once.
func (s *Subscription) Close() {
	c := s.client
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[s.key]; ok {
		delete(e.observers, s)
		e.lastUsed = c.now()
	}
	s.closeLocked()
}

func (s *Subscription) closeLocked() {
	if s.closed {
		return
	}
	s.closed = true
	close(s.updates)
}

// notifyLocked pushes the current snapshot to every observer of key,
// replacing any snapshot the observer has not read yet.
func (c *Client) notifyLocked(key Key, e *entry) {
	if len(e.observers) == 0 {
		return
	}
	snap := c.snapshotLocked(key, e)
	for sub := range e.observers {
		if sub.closed {
			continue
		}
		select {
		case <-sub.updates:
		default:
		}
		sub.updates <- snap
	}
}
