package output

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// GatewaySummary contains data for the daemon status table.
type GatewaySummary struct {
	Addr        string
	PID         int
	Status      string // running, stopped
	Started     string // human-readable duration
	Sessions    int
	Methods     int
	DeviceReady bool
}

// ChannelSummary contains data for the channel status table.
type ChannelSummary struct {
	ID    string
	Class string // device, deferred
	State string // running, pending, failed
}

// GatewayStatus prints the daemon status table.
func (p *Printer) GatewayStatus(summary GatewaySummary) {
	p.Println()

	t := table.NewWriter()
	t.SetOutputMirror(p.out)
	t.SetStyle(p.tableStyle())

	t.AppendHeader(table.Row{"Addr", "PID", "Status", "Started", "Sessions", "Methods"})

	status := summary.Status
	if p.isTTY {
		status = colorState(status)
	}
	t.AppendRow(table.Row{summary.Addr, summary.PID, status, summary.Started, summary.Sessions, summary.Methods})

	t.Render()
	p.Println()
}

// Channels prints the channel status table.
func (p *Printer) Channels(channels []ChannelSummary) {
	if len(channels) == 0 {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(p.out)
	t.SetStyle(p.tableStyle())

	t.AppendHeader(table.Row{"Channel", "Class", "State"})
	for _, c := range channels {
		state := c.State
		if p.isTTY {
			state = colorState(state)
		}
		t.AppendRow(table.Row{c.ID, c.Class, state})
	}

	t.Render()
	p.Println()
}

// tableStyle returns the ember-themed table style.
func (p *Printer) tableStyle() table.Style {
	style := table.StyleRounded
	if p.isTTY {
		style.Color.Header = text.Colors{text.FgHiYellow}
		style.Color.Border = text.Colors{text.FgHiBlack}
		style.Color.Separator = text.Colors{text.FgHiBlack}
	}
	return style
}

// colorState renders a state string with its status color.
func colorState(state string) string {
	switch state {
	case "running", "ready":
		return lipgloss.NewStyle().Foreground(ColorGreen).Render(state)
	case "stopped", "failed", "error":
		return lipgloss.NewStyle().Foreground(ColorRed).Render(state)
	default:
		return lipgloss.NewStyle().Foreground(ColorGray).Render(state)
	}
}
