package table

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rileyhilliard/gpumon/internal/api"
	"github.com/rileyhilliard/gpumon/internal/format"
)

// Column identifies one table column.
type Column int

const (
	ColumnNode Column = iota
	ColumnGPU
	ColumnModel
	ColumnUtilization
	ColumnMemory
	ColumnMemoryUtil
	ColumnTemperature
	ColumnPower
	ColumnUpdated
)

// Columns lists every column in display order.
var Columns = []Column{
	ColumnNode,
	ColumnGPU,
	ColumnModel,
	ColumnUtilization,
	ColumnMemory,
	ColumnMemoryUtil,
	ColumnTemperature,
	ColumnPower,
	ColumnUpdated,
}

var columnNames = map[Column]string{
	ColumnNode:        "node",
	ColumnGPU:         "gpu",
	ColumnModel:       "model",
	ColumnUtilization: "utilization",
	ColumnMemory:      "memory",
	ColumnMemoryUtil:  "memory_util",
	ColumnTemperature: "temperature",
	ColumnPower:       "power",
	ColumnUpdated:     "updated",
}

var columnTitles = map[Column]string{
	ColumnNode:        "Node",
	ColumnGPU:         "GPU",
	ColumnModel:       "Model",
	ColumnUtilization: "Utilization",
	ColumnMemory:      "Memory",
	ColumnMemoryUtil:  "Memory Util",
	ColumnTemperature: "Temperature",
	ColumnPower:       "Power",
	ColumnUpdated:     "Updated",
}

// Title is the column header.
func (c Column) Title() string {
	if t, ok := columnTitles[c]; ok {
		return t
	}
	return "?"
}

// String is the column's flag name, as accepted by ParseColumn.
func (c Column) String() string {
	if n, ok := columnNames[c]; ok {
		return n
	}
	return "unknown"
}

// ParseColumn resolves a column by flag name or title, case-insensitively.
func ParseColumn(s string) (Column, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for _, c := range Columns {
		if needle == columnNames[c] || needle == strings.ToLower(columnTitles[c]) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown column %q", s)
}

// Value is the raw value the column sorts and filters on: a string or a float64.
func (c Column) Value(m api.GPUMetrics) any {
	switch c {
	case ColumnNode:
		return m.NodeName
	case ColumnGPU:
		return float64(m.GPUIndex)
	case ColumnModel:
		return m.GPUName
	case ColumnUtilization:
		return m.Utilization
	case ColumnMemory:
		return m.MemoryUsed
	case ColumnMemoryUtil:
		return m.MemoryUtilization
	case ColumnTemperature:
		return m.Temperature
	case ColumnPower:
		return m.PowerDraw
	case ColumnUpdated:
		if m.Timestamp.IsZero() {
			return 0.0
		}
		return float64(m.Timestamp.UnixNano()) / float64(time.Second)
	default:
		return ""
	}
}

// Display is the formatted cell text.
func (c Column) Display(m api.GPUMetrics) string {
	switch c {
	case ColumnNode:
		return m.NodeName
	case ColumnGPU:
		return strconv.Itoa(m.GPUIndex)
	case ColumnModel:
		return m.GPUName
	case ColumnUtilization:
		return format.Percentage(m.Utilization, 1)
	case ColumnMemory:
		return format.MemoryPair(m.MemoryUsed, m.MemoryTotal)
	case ColumnMemoryUtil:
		return format.Percentage(m.MemoryUtilization, 1)
	case ColumnTemperature:
		return format.Temperature(m.Temperature)
	case ColumnPower:
		return format.PowerPair(m.PowerDraw, m.PowerLimit)
	case ColumnUpdated:
		return format.Timestamp(m.Timestamp)
	default:
		return ""
	}
}

// filterText is the text the global filter matches against.
func (c Column) filterText(m api.GPUMetrics) string {
	if c == ColumnUpdated {
		if m.Timestamp.IsZero() {
			return ""
		}
		return m.Timestamp.Format(time.RFC3339)
	}
	switch v := c.Value(m).(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// compare orders two raw values. Strings sort before numbers if a column ever
// mixes them.
func compare(a, b any) int {
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		if !ok {
			return 1
		}
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case string:
		bv, ok := b.(string)
		if !ok {
			return -1
		}
		return strings.Compare(av, bv)
	}
	return 0
}
