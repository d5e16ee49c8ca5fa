package stats

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/rileyhilliard/gpumon/internal/api"
	"github.com/stretchr/testify/assert"
)

func TestCompute_TwoGPUs(t *testing.T) {
	s := Compute([]api.GPUMetrics{
		{NodeName: "a", Utilization: 95, Temperature: 85},
		{NodeName: "a", GPUIndex: 1, Utilization: 2, Temperature: 40},
	})

	assert.Equal(t, 2, s.TotalGPUs)
	assert.Equal(t, 1, s.ActiveGPUs)
	assert.Equal(t, 1, s.HighTempGPUs)
	assert.InDelta(t, 48.5, s.AverageUtilization, 1e-9)
	assert.InDelta(t, 50.0, s.ActivePercent(), 1e-9)
	assert.Equal(t, 1, s.NodeCount)
	assert.True(t, s.HasAlerts())
}

func TestCompute_Empty(t *testing.T) {
	s := Compute(nil)
	assert.Equal(t, Summary{}, s)
	assert.False(t, math.IsNaN(s.AverageUtilization))
	assert.Equal(t, 0.0, s.ActivePercent())
	assert.False(t, s.HasAlerts())
}

func TestCompute_ThresholdsAreStrict(t *testing.T) {
	s := Compute([]api.GPUMetrics{
		{NodeName: "a", Utilization: 5, Temperature: 80},
		{NodeName: "b", Utilization: 5.1, Temperature: 80.1},
	})
	assert.Equal(t, 1, s.ActiveGPUs)
	assert.Equal(t, 1, s.HighTempGPUs)
	assert.Equal(t, 2, s.NodeCount)
}

func TestCompute_Property(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("counts are bounded and average is within range", prop.ForAll(
		func(utils []float64) bool {
			metrics := make([]api.GPUMetrics, len(utils))
			for i, u := range utils {
				metrics[i] = api.GPUMetrics{NodeName: "n", GPUIndex: i, Utilization: u, Temperature: u}
			}
			s := Compute(metrics)
			if s.TotalGPUs != len(utils) {
				return false
			}
			if s.ActiveGPUs > s.TotalGPUs || s.HighTempGPUs > s.TotalGPUs {
				return false
			}
			if s.ActiveRatio < 0 || s.ActiveRatio > 1 {
				return false
			}
			return s.AverageUtilization >= 0 && s.AverageUtilization <= 100+1e-9
		},
		gen.SliceOf(gen.Float64Range(0, 100)),
	))

	properties.TestingRun(t)
}
