// Package query schedules and caches backend reads for the dashboard.
//
// A Client holds one entry per query key: the last value, the last error,
// when each happened, and which observers are watching. At most one request
// per key is in flight; every caller that arrives while it is outstanding
// waits for the same result. Values younger than the stale time are served
// without a round-trip, and entries nobody has used for the GC time are
// evicted.
//
// Pollers re-fetch a key on a fixed interval. Disabling a poller only drops
// future ticks; a request already in flight finishes and updates the cache.
//
//	Fetch       serve fresh cache, join in-flight, or start a request
//	Refetch     manual refresh: invalidate for all observers, then fetch
//	Revalidate  poll tick: fetch regardless of freshness
//	Subscribe   observe snapshots for a key
package query
