package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the ticket view.
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	NextPage   key.Binding
	PrevPage   key.Binding
	JumpPage   key.Binding
	Search     key.Binding
	Select     key.Binding
	Delete     key.Binding
	BulkDelete key.Binding
	Detail     key.Binding
	EditMeta   key.Binding
	Refresh    key.Binding
	Stop       key.Binding
	Theme      key.Binding
	Threads    key.Binding
	Cancel     key.Binding
	Quit       key.Binding
}

// DefaultKeyMap is the built-in binding set.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	NextPage: key.NewBinding(
		key.WithKeys("n", "right", "pgdown"),
		key.WithHelp("n", "next page"),
	),
	PrevPage: key.NewBinding(
		key.WithKeys("p", "left", "pgup"),
		key.WithHelp("p", "prev page"),
	),
	JumpPage: key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "go to page"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Select: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "select"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete"),
	),
	BulkDelete: key.NewBinding(
		key.WithKeys("D"),
		key.WithHelp("D", "delete selected"),
	),
	Detail: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "details"),
	),
	EditMeta: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "fields"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Stop: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "stop"),
	),
	Theme: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "theme"),
	),
	Threads: key.NewBinding(
		key.WithKeys("T"),
		key.WithHelp("T", "threads"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "close"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.NextPage, k.PrevPage, k.Select, k.Delete, k.Detail, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextPage, k.PrevPage, k.JumpPage},
		{k.Search, k.Refresh, k.Stop},
		{k.Select, k.Delete, k.BulkDelete},
		{k.Detail, k.EditMeta, k.Theme, k.Threads, k.Quit},
	}
}
