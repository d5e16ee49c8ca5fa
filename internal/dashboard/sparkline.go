package dashboard

import "strings"

// sparklineBlockRunes are 8 vertical levels, lowest to highest.
var sparklineBlockRunes = []rune("▁▂▃▄▅▆▇█")

// RenderSparkline draws the most recent width samples on a fixed 0-100 scale,
// colored by the utilization band of the newest sample.
func RenderSparkline(data []float64, width int) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}
	if len(data) > width {
		data = data[len(data)-width:]
	}

	levels := len(sparklineBlockRunes)
	var sb strings.Builder
	sb.Grow(len(data) * 3)
	for _, v := range data {
		level := int(v / 100 * float64(levels-1))
		if level < 0 {
			level = 0
		} else if level >= levels {
			level = levels - 1
		}
		sb.WriteRune(sparklineBlockRunes[level])
	}

	last := data[len(data)-1]
	return UtilizationStyle(last).Render(sb.String())
}
