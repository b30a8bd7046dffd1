package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lotas/ticketdeck/internal/config"
)

type ThreadOption struct {
	Label string
	Count config.ThreadCount
}

// ThreadPicker chooses the search thread budget.
type ThreadPicker struct {
	Options []ThreadOption
	Cursor  int
	Width   int
	Height  int
}

func NewThreadPicker(current config.ThreadCount, capacity int) ThreadPicker {
	options := []ThreadOption{{
		Label: "Safe mode (" + strconv.Itoa(capacity) + ")",
		Count: 0,
	}}
	for _, n := range config.ThreadCounts {
		tc := config.ThreadCount(n)
		options = append(options, ThreadOption{Label: tc.String() + " threads", Count: tc})
	}
	cursor := 0
	for i, opt := range options {
		if opt.Count == current {
			cursor = i
			break
		}
	}
	return ThreadPicker{Options: options, Cursor: cursor}
}

func (m *ThreadPicker) MoveUp() {
	if m.Cursor > 0 {
		m.Cursor--
	}
}

func (m *ThreadPicker) MoveDown() {
	if m.Cursor < len(m.Options)-1 {
		m.Cursor++
	}
}

func (m ThreadPicker) Selected() ThreadOption {
	return m.Options[m.Cursor]
}

func (m ThreadPicker) View(p Palette) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	selectedStyle := lipgloss.NewStyle().Bold(true).Reverse(true).Padding(0, 1)
	normalStyle := lipgloss.NewStyle().Padding(0, 1)
	boxStyle := p.border(true).Padding(1, 2)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Search threads:") + "\n\n")

	for i, opt := range m.Options {
		label := opt.Label
		if i == m.Cursor {
			label = selectedStyle.Render(label)
		} else {
			label = normalStyle.Render("  " + label)
		}
		b.WriteString(label + "\n")
	}

	b.WriteString("\n" + normalStyle.Render("↑↓ navigate · enter select · esc cancel"))

	return boxStyle.Render(b.String())
}
