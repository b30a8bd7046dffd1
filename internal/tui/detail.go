package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"

	"github.com/lotas/ticketdeck/internal/types"
)

// DetailModel shows one ticket and, once loaded, its editable fields.
type DetailModel struct {
	viewport viewport.Model
	Width    int
	Height   int
}

// SetSize resizes the scroll area.
func (m *DetailModel) SetSize(width, height int) {
	m.Width = width
	m.Height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ScrollUp adjusts the scroll offset upward.
func (m *DetailModel) ScrollUp() {
	if off := m.viewport.YOffset; off > 0 {
		m.viewport.SetYOffset(off - 1)
	}
}

// ScrollDown adjusts the scroll offset downward.
func (m *DetailModel) ScrollDown() {
	if m.viewport.YOffset < m.viewport.TotalLineCount()-m.viewport.Height {
		m.viewport.SetYOffset(m.viewport.YOffset + 1)
	}
}

// SetContent replaces the rendered body and scrolls to the top.
func (m *DetailModel) SetContent(content string) {
	m.viewport.SetContent(content)
	m.viewport.GotoTop()
}

func (m DetailModel) View() string { return m.viewport.View() }

// renderTicket builds the detail body for t. meta may be nil; loading
// marks an in-flight hydrate or edit-meta request.
func renderTicket(p Palette, t types.Ticket, meta []types.FieldMeta, loading bool, width int) string {
	label := p.label()
	var b strings.Builder

	b.WriteString(label.Render("Key") + "\n")
	b.WriteString(t.Key + "\n\n")

	if t.IsStub() {
		if loading {
			b.WriteString(p.dim().Render("Loading…") + "\n")
		} else {
			b.WriteString(p.dim().Render("Not loaded. Press enter to fetch.") + "\n")
		}
		return b.String()
	}

	for _, row := range []struct{ name, value string }{
		{"Summary", t.Summary()},
		{"Status", t.Status()},
		{"Type", t.IssueType()},
		{"Assignee", t.Assignee()},
	} {
		if row.value == "" {
			continue
		}
		b.WriteString(label.Render(row.name) + "\n")
		b.WriteString(wrap(row.value, width) + "\n\n")
	}

	if meta == nil {
		if loading {
			b.WriteString(p.dim().Render("Loading fields…") + "\n")
		} else {
			b.WriteString(p.dim().Render("  Press 'e' to load editable fields") + "\n")
		}
		return b.String()
	}

	b.WriteString(label.Render(fmt.Sprintf("Fields (%d)", len(meta))) + "\n")
	for _, fm := range meta {
		lock := " "
		if !fm.IsEditable {
			lock = "·"
		}
		line := fmt.Sprintf("%s %s [%s]", lock, fm.FieldName, fm.WidgetType)
		if fm.CurrentValue != "" {
			line += ": " + fm.CurrentValue
		}
		b.WriteString(truncate(line, width) + "\n")
		if len(fm.AllowedValues) > 0 {
			vals := append([]string(nil), fm.AllowedValues...)
			sort.Strings(vals)
			b.WriteString(p.dim().Render(truncate("    "+strings.Join(vals, ", "), width)) + "\n")
		}
	}
	return b.String()
}

func wrap(s string, width int) string {
	if width < 10 {
		return s
	}
	var lines []string
	r := []rune(s)
	for len(r) > width {
		lines = append(lines, string(r[:width]))
		r = r[width:]
	}
	lines = append(lines, string(r))
	return strings.Join(lines, "\n")
}
