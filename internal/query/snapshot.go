package query

import "time"

// Status is the tri-state a view renders from.
type Status int

const (
	StatusLoading Status = iota
	StatusError
	StatusSuccess
)

// String returns a human-readable status.
func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	case StatusSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// Snapshot is a point-in-time view of one query's cache entry.
type Snapshot struct {
	Key    Key
	Status Status
	// Value is the last successful result. It is kept after a later failure,
	// but views must not render it while Status is StatusError.
	Value     any
	Err       error
	UpdatedAt time.Time
	ErrorAt   time.Time
	// Failures is the number of attempts the last failed fetch made.
	Failures int
	Fetching bool
	Stale    bool
}

// HasValue reports whether a successful result has ever been cached.
func (s Snapshot) HasValue() bool {
	return !s.UpdatedAt.IsZero()
}

// Value extracts a typed value from a snapshot.
func Value[T any](s Snapshot) (T, bool) {
	v, ok := s.Value.(T)
	return v, ok
}
