package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lotas/ticketdeck/internal/deck"
)

// ListModel shows the ticket rows of the current page.
type ListModel struct {
	Cards    []deck.Card
	Selected map[string]bool // key -> selected
	Cursor   int
	Offset   int // scroll offset
	Width    int
	Height   int
}

// SetCards replaces the rows, keeping the cursor in range.
func (m *ListModel) SetCards(cards []deck.Card) {
	m.Cards = cards
	if m.Cursor >= len(cards) {
		m.Cursor = len(cards) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	if m.Offset > m.Cursor {
		m.Offset = m.Cursor
	}
}

// Reset moves the cursor to the first row.
func (m *ListModel) Reset() {
	m.Cursor = 0
	m.Offset = 0
}

// Current returns the card under the cursor.
func (m ListModel) Current() (deck.Card, bool) {
	if m.Cursor >= 0 && m.Cursor < len(m.Cards) {
		return m.Cards[m.Cursor], true
	}
	return deck.Card{}, false
}

func (m ListModel) visibleRows() int {
	if m.Height < 1 {
		return 20
	}
	return m.Height
}

func (m *ListModel) MoveUp() {
	if m.Cursor > 0 {
		m.Cursor--
	}
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
}

func (m *ListModel) MoveDown() {
	if m.Cursor < len(m.Cards)-1 {
		m.Cursor++
	}
	if rows := m.visibleRows(); m.Cursor >= m.Offset+rows {
		m.Offset = m.Cursor - rows + 1
	}
}

// View renders the rows.
func (m ListModel) View(p Palette) string {
	if len(m.Cards) == 0 {
		return p.dim().Render("No tickets. Press / to search.")
	}

	end := min(m.Offset+m.visibleRows(), len(m.Cards))
	cursorStyle := lipgloss.NewStyle().Bold(true).Reverse(true)
	keyStyle := lipgloss.NewStyle().Bold(true)
	selStyle := lipgloss.NewStyle().Foreground(p.Selected).Bold(true)

	keyWidth := 0
	for _, c := range m.Cards[m.Offset:end] {
		keyWidth = max(keyWidth, len(c.Key))
	}

	var b strings.Builder
	for i := m.Offset; i < end; i++ {
		c := m.Cards[i]
		prefix := "  "
		if m.Selected[c.Key] {
			prefix = selStyle.Render("▸ ")
		}
		key := keyStyle.Render(fmt.Sprintf("%-*s", keyWidth, c.Key))

		var rest string
		if c.Stub {
			rest = p.dim().Render("not loaded")
		} else {
			status := lipgloss.NewStyle().Foreground(p.statusColor(c.Status)).Render(c.Status)
			rest = status + " " + truncate(c.Summary, m.Width-keyWidth-lipgloss.Width(c.Status)-6)
		}
		line := prefix + key + " " + rest

		if i == m.Cursor {
			if pad := m.Width - lipgloss.Width(line); pad > 0 {
				line += strings.Repeat(" ", pad)
			}
			line = cursorStyle.Render(line)
		}

		b.WriteString(line)
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func truncate(s string, width int) string {
	if width < 10 {
		width = 10
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
