package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/lotas/ticketdeck/internal/types"
)

// ListWidthPct is the percentage of terminal width used for the ticket list.
const ListWidthPct = 55

func renderNavbar(p Palette, server string, page types.Page, selected int, activity string, width int) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(p.Accent)
	countStyle := lipgloss.NewStyle().Foreground(p.Label)
	serverStyle := lipgloss.NewStyle().Foreground(p.Label)
	statsStyle := p.dim()

	left := " " + titleStyle.Render("ticketdeck") + "  " +
		countStyle.Render(fmt.Sprintf("page %d/%d", page.Number, page.Total)) +
		statsStyle.Render(fmt.Sprintf(" · %d tickets", page.Count))
	if selected > 0 {
		left += statsStyle.Render(" · ") + lipgloss.NewStyle().Foreground(p.Selected).Render(fmt.Sprintf("%d selected", selected))
	}
	if activity != "" {
		left += "   " + lipgloss.NewStyle().Foreground(p.Warn).Render(activity)
	}

	if server == "" {
		server = "no server configured"
	}
	right := serverStyle.Render(server)
	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	padding := lipgloss.NewStyle().Width(gap)

	return left + padding.Render("") + right + " "
}
