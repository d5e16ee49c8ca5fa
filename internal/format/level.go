package format

// Level is a three-band severity used purely for display styling.
type Level int

const (
	LevelLow Level = iota
	LevelMedium
	LevelHigh
)

// Utilization and temperature band thresholds. A value equal to a threshold
// belongs to the higher band.
const (
	UtilizationMedium = 30.0
	UtilizationHigh   = 70.0
	TemperatureMedium = 60.0
	TemperatureHigh   = 80.0
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelLow:
		return "low"
	case LevelMedium:
		return "medium"
	case LevelHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Color returns the color name associated with the level.
func (l Level) Color() string {
	switch l {
	case LevelMedium:
		return "yellow"
	case LevelHigh:
		return "red"
	default:
		return "green"
	}
}

// UtilizationLevel classifies a utilization percentage: <30 low, <70 medium, else high.
func UtilizationLevel(utilization float64) Level {
	return classify(utilization, UtilizationMedium, UtilizationHigh)
}

// TemperatureLevel classifies a Celsius temperature: <60 low, <80 medium, else high.
func TemperatureLevel(celsius float64) Level {
	return classify(celsius, TemperatureMedium, TemperatureHigh)
}

// UtilizationColor returns "green", "yellow" or "red" for a utilization percentage.
func UtilizationColor(utilization float64) string {
	return UtilizationLevel(utilization).Color()
}

// TemperatureColor returns "green", "yellow" or "red" for a temperature.
func TemperatureColor(celsius float64) string {
	return TemperatureLevel(celsius).Color()
}

func classify(v, medium, high float64) Level {
	switch {
	case v < medium:
		return LevelLow
	case v < high:
		return LevelMedium
	default:
		return LevelHigh
	}
}
