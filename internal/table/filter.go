package table

import (
	"strings"

	"github.com/rileyhilliard/gpumon/internal/api"
)

// HighUtilizationThreshold is the cutoff for Criteria.HighUtilOnly.
const HighUtilizationThreshold = 70.0

// Criteria is a structured filter applied before the free-text filter.
// Zero bounds are unset.
type Criteria struct {
	// Node matches node names case-insensitively by substring.
	Node         string
	MinUtil      float64
	MaxUtil      float64
	MinTemp      float64
	MaxTemp      float64
	HighUtilOnly bool
}

// IsZero reports whether the criteria filter nothing.
func (c Criteria) IsZero() bool {
	return c == Criteria{}
}

// Match reports whether m satisfies every set criterion.
func (c Criteria) Match(m api.GPUMetrics) bool {
	if c.Node != "" && !strings.Contains(strings.ToLower(m.NodeName), strings.ToLower(c.Node)) {
		return false
	}
	if c.MinUtil > 0 && m.Utilization < c.MinUtil {
		return false
	}
	if c.MaxUtil > 0 && m.Utilization > c.MaxUtil {
		return false
	}
	if c.MinTemp > 0 && m.Temperature < c.MinTemp {
		return false
	}
	if c.MaxTemp > 0 && m.Temperature > c.MaxTemp {
		return false
	}
	if c.HighUtilOnly && m.Utilization < HighUtilizationThreshold {
		return false
	}
	return true
}

// MatchGlobal reports whether any column's raw value contains query,
// case-insensitively. An empty query matches everything.
func MatchGlobal(m api.GPUMetrics, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, c := range Columns {
		if strings.Contains(strings.ToLower(c.filterText(m)), q) {
			return true
		}
	}
	return false
}
