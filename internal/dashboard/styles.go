package dashboard

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/gpumon/internal/format"
)

// Dashboard color palette
const (
	ColorSurfaceBg = lipgloss.Color("#12121A")
	ColorBorder    = lipgloss.Color("#2A2A4A")

	// Severity colors, matched to format.Level
	ColorHealthy  = lipgloss.Color("#39FF14")
	ColorWarning  = lipgloss.Color("#FFAA00")
	ColorCritical = lipgloss.Color("#FF0055")

	ColorTextPrimary   = lipgloss.Color("#FFFFFF")
	ColorTextSecondary = lipgloss.Color("#B4B4D0")
	ColorTextMuted     = lipgloss.Color("#6B6B8D")

	ColorAccent    = lipgloss.Color("#FF2E97")
	ColorAccentDim = lipgloss.Color("#BF40FF")

	ColorGraph = lipgloss.Color("#00FFFF")
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1).
			MarginRight(1)

	CardTitleStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	CardValueStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	TableHeaderStyle = lipgloss.NewStyle().
				Foreground(ColorTextSecondary).
				Bold(true).
				Padding(0, 1)

	TableHeaderSelectedStyle = TableHeaderStyle.
					Foreground(ColorAccent).
					Underline(true)

	TableCellStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Padding(0, 1)

	ErrorPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorCritical).
			Foreground(ColorCritical).
			Padding(1, 2)

	FilterPromptStyle = lipgloss.NewStyle().
				Foreground(ColorAccent).
				Bold(true)
)

// Status indicator glyphs
const (
	StatusConnected    = "●"
	StatusDisconnected = "○"
	StatusChecking     = "◐"
)

// SpinnerFrames is the loading animation.
var SpinnerFrames = []string{"◐", "◓", "◑", "◒"}

// LevelColor maps a severity level to the palette.
func LevelColor(l format.Level) lipgloss.Color {
	switch l {
	case format.LevelHigh:
		return ColorCritical
	case format.LevelMedium:
		return ColorWarning
	default:
		return ColorHealthy
	}
}

// UtilizationStyle colors a utilization value by its band.
func UtilizationStyle(percent float64) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(LevelColor(format.UtilizationLevel(percent)))
}

// TemperatureStyle colors a temperature by its band.
func TemperatureStyle(celsius float64) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(LevelColor(format.TemperatureLevel(celsius)))
}

// ProgressBar renders a bracketless bar colored by utilization band.
func ProgressBar(width int, percent float64) string {
	if width < 1 {
		width = 1
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filled := int(percent / 100.0 * float64(width))
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("▰", filled) + strings.Repeat("▱", width-filled)
	return UtilizationStyle(percent).Render(bar)
}
