package output

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Ember color theme for the fireboltd CLI.
var (
	ColorEmber = lipgloss.Color("#f97316") // primary accent
	ColorWhite = lipgloss.Color("#fafaf9")
	ColorMuted = lipgloss.Color("#78716c")
	ColorGreen = lipgloss.Color("#10b981") // healthy
	ColorRed   = lipgloss.Color("#f43f5e") // error
	ColorGray  = lipgloss.Color("#a8a29e")
)

// emberStyles returns charmbracelet/log styles with the ember theme.
func emberStyles() *log.Styles {
	styles := log.DefaultStyles()

	styles.Levels[log.InfoLevel] = lipgloss.NewStyle().
		SetString("INFO").
		Foreground(ColorEmber).
		Bold(true)

	styles.Levels[log.WarnLevel] = lipgloss.NewStyle().
		SetString("WARN").
		Foreground(lipgloss.Color("#eab308")).
		Bold(true)

	styles.Levels[log.ErrorLevel] = lipgloss.NewStyle().
		SetString("ERROR").
		Foreground(ColorRed).
		Bold(true)

	styles.Levels[log.DebugLevel] = lipgloss.NewStyle().
		SetString("DEBUG").
		Foreground(ColorMuted)

	styles.Timestamp = lipgloss.NewStyle().Foreground(ColorMuted)
	styles.Key = lipgloss.NewStyle().Foreground(ColorEmber)
	styles.Value = lipgloss.NewStyle().Foreground(ColorGray)

	return styles
}
