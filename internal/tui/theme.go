package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/lotas/ticketdeck/internal/config"
)

// Palette holds the styles that change with the configured theme.
type Palette struct {
	Accent   lipgloss.Color
	Dim      lipgloss.Color
	Label    lipgloss.Color
	Error    lipgloss.Color
	Warn     lipgloss.Color
	Ok       lipgloss.Color
	Selected lipgloss.Color
}

var (
	darkPalette = Palette{
		Accent:   lipgloss.Color("62"),
		Dim:      lipgloss.Color("240"),
		Label:    lipgloss.Color("245"),
		Error:    lipgloss.Color("196"),
		Warn:     lipgloss.Color("214"),
		Ok:       lipgloss.Color("42"),
		Selected: lipgloss.Color("135"),
	}
	lightPalette = Palette{
		Accent:   lipgloss.Color("25"),
		Dim:      lipgloss.Color("245"),
		Label:    lipgloss.Color("238"),
		Error:    lipgloss.Color("160"),
		Warn:     lipgloss.Color("130"),
		Ok:       lipgloss.Color("28"),
		Selected: lipgloss.Color("91"),
	}
)

// PaletteFor returns the palette for theme; unknown themes get dark.
func PaletteFor(theme config.Theme) Palette {
	if theme == config.ThemeLight {
		return lightPalette
	}
	return darkPalette
}

func (p Palette) label() lipgloss.Style { return lipgloss.NewStyle().Bold(true).Foreground(p.Label) }
func (p Palette) dim() lipgloss.Style   { return lipgloss.NewStyle().Foreground(p.Dim) }
func (p Palette) err() lipgloss.Style   { return lipgloss.NewStyle().Foreground(p.Error).Bold(true) }

func (p Palette) border(focused bool) lipgloss.Style {
	c := p.Dim
	if focused {
		c = p.Accent
	}
	return lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(c)
}

// statusColor picks a color for a tracker status name.
func (p Palette) statusColor(status string) lipgloss.Color {
	switch status {
	case "Done", "Closed", "Resolved":
		return p.Ok
	case "In Progress", "In Review":
		return p.Warn
	case "":
		return p.Dim
	}
	return p.Label
}
