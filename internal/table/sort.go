package table

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rileyhilliard/gpumon/internal/api"
)

// SortDirection is a column's sort state.
type SortDirection int

const (
	SortNone SortDirection = iota
	SortAsc
	SortDesc
)

// Next returns the following state in the None, Asc, Desc cycle.
func (d SortDirection) Next() SortDirection {
	switch d {
	case SortNone:
		return SortAsc
	case SortAsc:
		return SortDesc
	default:
		return SortNone
	}
}

// String returns the direction name.
func (d SortDirection) String() string {
	switch d {
	case SortAsc:
		return "asc"
	case SortDesc:
		return "desc"
	default:
		return "none"
	}
}

// Indicator is the header arrow for the direction.
func (d SortDirection) Indicator() string {
	switch d {
	case SortAsc:
		return "↑"
	case SortDesc:
		return "↓"
	default:
		return ""
	}
}

// Sort is the active sort. Direction SortNone means source order.
type Sort struct {
	Column    Column
	Direction SortDirection
}

// ParseSort parses "column" or "column:asc|desc".
func ParseSort(s string) (Sort, error) {
	if strings.TrimSpace(s) == "" {
		return Sort{}, nil
	}
	name, dir, _ := strings.Cut(s, ":")
	col, err := ParseColumn(name)
	if err != nil {
		return Sort{}, err
	}
	switch strings.ToLower(dir) {
	case "", "asc":
		return Sort{Column: col, Direction: SortAsc}, nil
	case "desc":
		return Sort{Column: col, Direction: SortDesc}, nil
	default:
		return Sort{}, fmt.Errorf("unknown sort direction %q (use asc or desc)", dir)
	}
}

// apply sorts rows in place. The sort is stable so ties keep source order.
func (s Sort) apply(rows []api.GPUMetrics) {
	if s.Direction == SortNone {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		c := compare(s.Column.Value(rows[i]), s.Column.Value(rows[j]))
		if s.Direction == SortDesc {
			return c > 0
		}
		return c < 0
	})
}
