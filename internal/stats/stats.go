// Package stats computes the cluster summary shown above the GPU table.
package stats

import "github.com/rileyhilliard/gpumon/internal/api"

// Thresholds for the summary counts. Both comparisons are strict.
const (
	ActiveUtilizationThreshold = 5.0
	HighTemperatureThreshold   = 80.0
)

// Summary is the aggregate over one metrics snapshot. Every field is zero for
// an empty snapshot.
type Summary struct {
	TotalGPUs          int     `json:"total_gpus"`
	ActiveGPUs         int     `json:"active_gpus"`
	AverageUtilization float64 `json:"average_utilization"`
	HighTempGPUs       int     `json:"high_temp_gpus"`
	// ActiveRatio is ActiveGPUs/TotalGPUs in [0, 1].
	ActiveRatio float64 `json:"active_ratio"`
	NodeCount   int     `json:"node_count"`
}

// Compute aggregates metrics.
func Compute(metrics []api.GPUMetrics) Summary {
	if len(metrics) == 0 {
		return Summary{}
	}

	var s Summary
	var total float64
	nodes := make(map[string]struct{})
	for _, m := range metrics {
		total += m.Utilization
		if m.Utilization > ActiveUtilizationThreshold {
			s.ActiveGPUs++
		}
		if m.Temperature > HighTemperatureThreshold {
			s.HighTempGPUs++
		}
		nodes[m.NodeName] = struct{}{}
	}

	s.TotalGPUs = len(metrics)
	s.AverageUtilization = total / float64(s.TotalGPUs)
	s.ActiveRatio = float64(s.ActiveGPUs) / float64(s.TotalGPUs)
	s.NodeCount = len(nodes)
	return s
}

// ActivePercent is the active ratio as a percentage.
func (s Summary) ActivePercent() float64 {
	return s.ActiveRatio * 100
}

// HasAlerts reports whether any GPU is running hot.
func (s Summary) HasAlerts() bool {
	return s.HighTempGPUs > 0
}
