package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lotas/ticketdeck/internal/config"
	"github.com/lotas/ticketdeck/internal/deck"
	"github.com/lotas/ticketdeck/internal/jira"
	"github.com/lotas/ticketdeck/internal/types"
)

// --- Messages ---

type loadedMsg struct{ err error }

type searchDoneMsg struct {
	jql string
	res deck.SearchResult
	err error
}

type deleteDoneMsg struct {
	key string
	err error
}

type bulkDeleteDoneMsg struct {
	deleted int
	err     error
}

type hydratedMsg struct {
	key    string
	ticket types.Ticket
	err    error
}

type editMetaMsg struct {
	key   string
	metas []types.FieldMeta
	err   error
}

type configuredMsg struct {
	cfg config.Config
	err error
}

type inputMode int

const (
	inputNone inputMode = iota
	inputSearch
	inputJump
)

// --- Command helpers ---

func loadCmd(d *deck.Deck) tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{err: d.Load()}
	}
}

func searchCmd(d *deck.Deck, jql string) tea.Cmd {
	return func() tea.Msg {
		res, err := d.Search(context.Background(), jql)
		return searchDoneMsg{jql: jql, res: res, err: err}
	}
}

// navCmd runs a deck navigation; the resulting page arrives through the sink.
func navCmd(fn func()) tea.Cmd {
	return func() tea.Msg {
		fn()
		return nil
	}
}

func deleteCmd(d *deck.Deck, key string) tea.Cmd {
	return func() tea.Msg {
		return deleteDoneMsg{key: key, err: d.Delete(key)}
	}
}

func bulkDeleteCmd(d *deck.Deck) tea.Cmd {
	return func() tea.Msg {
		n, err := d.BulkDelete(context.Background())
		return bulkDeleteDoneMsg{deleted: n, err: err}
	}
}

func hydrateCmd(d *deck.Deck, key string) tea.Cmd {
	return func() tea.Msg {
		t, err := d.Hydrate(context.Background(), key)
		return hydratedMsg{key: key, ticket: t, err: err}
	}
}

func editMetaCmd(d *deck.Deck, key string) tea.Cmd {
	return func() tea.Msg {
		metas, err := d.EditMeta(context.Background(), key)
		return editMetaMsg{key: key, metas: metas, err: err}
	}
}

func configureCmd(d *deck.Deck, cfg config.Config) tea.Cmd {
	return func() tea.Msg {
		return configuredMsg{cfg: cfg, err: d.Configure(cfg)}
	}
}

// --- Model ---

type Model struct {
	deck *deck.Deck
	sink *Sink
	keys KeyMap

	// Data
	page     types.Page
	tickets  map[string]types.Ticket // visible page by key
	meta     map[string][]types.FieldMeta
	loading  map[string]bool // keys with a hydrate or edit-meta request out
	runs     int
	lastJQL  string
	status   string
	errText  string
	selected map[string]bool

	// UI state
	palette    Palette
	list       ListModel
	detail     DetailModel
	showDetail bool
	input      textinput.Model
	mode       inputMode
	picker     ThreadPicker
	showPicker bool
	spinner    spinner.Model
	help       help.Model
	width      int
	height     int
}

func NewModel(d *deck.Deck, sink *Sink) Model {
	ti := textinput.New()
	ti.CharLimit = 512

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	cfg := d.Config()
	m := Model{
		deck:     d,
		sink:     sink,
		keys:     DefaultKeyMap,
		tickets:  make(map[string]types.Ticket),
		meta:     make(map[string][]types.FieldMeta),
		loading:  make(map[string]bool),
		selected: make(map[string]bool),
		palette:  PaletteFor(cfg.Theme),
		input:    ti,
		spinner:  sp,
		help:     help.New(),
	}
	m.spinner.Style = lipgloss.NewStyle().Foreground(m.palette.Warn)
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		listen(m.sink),
		loadCmd(m.deck),
		m.spinner.Tick,
	)
}

func (m *Model) layout() {
	listWidth := m.width * ListWidthPct / 100
	detailWidth := m.width - listWidth - 4 // borders
	paneHeight := m.height - 5             // top bar + bottom bar + borders
	m.list.Width = listWidth
	m.list.Height = paneHeight
	m.detail.SetSize(detailWidth, paneHeight)
	m.picker.Width = m.width
	m.picker.Height = m.height
	m.help.Width = m.width
}

func (m *Model) setPage(page int, ts []types.Ticket) {
	prevPage := m.page.Number
	m.page = m.deck.Page()
	m.page.Number = page
	m.tickets = make(map[string]types.Ticket, len(ts))
	cards := make([]deck.Card, 0, len(ts))
	for _, t := range ts {
		m.tickets[t.Key] = t
		if c, ok := m.deck.Card(t.Key); ok {
			cards = append(cards, c)
		} else {
			cards = append(cards, deck.CardFor(t))
		}
	}
	if page != prevPage {
		m.list.Reset()
	}
	m.list.SetCards(cards)
	m.syncSelection()
	m.refreshDetail()
}

func (m *Model) syncSelection() {
	m.selected = make(map[string]bool)
	for _, k := range m.deck.Selected() {
		m.selected[k] = true
	}
	m.list.Selected = m.selected
}

func (m *Model) refreshDetail() {
	c, ok := m.list.Current()
	if !ok {
		m.detail.SetContent("")
		return
	}
	t, ok := m.tickets[c.Key]
	if !ok {
		t = types.Ticket{Key: c.Key}
	}
	m.detail.SetContent(renderTicket(m.palette, t, m.meta[c.Key], m.loading[c.Key], m.detail.Width))
}

func (m *Model) startInput(mode inputMode, prompt, placeholder, value string) tea.Cmd {
	m.mode = mode
	m.input.Prompt = prompt
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.errText = ""
	return m.input.Focus()
}

func (m *Model) stopInput() {
	m.mode = inputNone
	m.input.Blur()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.refreshDetail()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	// Sink events.
	case pageReadyMsg:
		m.setPage(msg.page, msg.tickets)
		return m, listen(m.sink)

	case errorMsg:
		m.errText = msg.msg
		return m, listen(m.sink)

	case progressMsg:
		m.runs = msg.runs
		return m, listen(m.sink)

	case sinkClosedMsg:
		return m, nil

	// Command results.
	case loadedMsg:
		if msg.err != nil {
			m.errText = msg.err.Error()
		}
		return m, nil

	case searchDoneMsg:
		if msg.err == nil {
			m.status = fmt.Sprintf("%d fetched · %d new", msg.res.Fetched, msg.res.Added)
		}
		return m, nil

	case deleteDoneMsg:
		if msg.err == nil {
			m.status = "deleted " + msg.key
			delete(m.meta, msg.key)
		}
		m.syncSelection()
		return m, nil

	case bulkDeleteDoneMsg:
		switch {
		case errors.Is(msg.err, context.Canceled):
			m.status = fmt.Sprintf("stopped after %d deletes", msg.deleted)
		case msg.err == nil:
			m.status = fmt.Sprintf("deleted %d tickets", msg.deleted)
		}
		m.syncSelection()
		return m, nil

	case hydratedMsg:
		delete(m.loading, msg.key)
		if msg.err == nil {
			if _, ok := m.tickets[msg.key]; ok {
				m.tickets[msg.key] = msg.ticket
			}
		}
		m.refreshDetail()
		return m, nil

	case editMetaMsg:
		delete(m.loading, msg.key)
		if msg.err == nil {
			m.meta[msg.key] = msg.metas
		}
		m.refreshDetail()
		return m, nil

	case configuredMsg:
		if msg.err != nil {
			m.errText = jira.UserMessage(msg.err)
			return m, nil
		}
		m.palette = PaletteFor(msg.cfg.Theme)
		m.spinner.Style = lipgloss.NewStyle().Foreground(m.palette.Warn)
		m.status = fmt.Sprintf("theme %s · threads %s", msg.cfg.Theme, msg.cfg.ThreadCount)
		m.refreshDetail()
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Text input mode
	if m.mode != inputNone {
		switch msg.String() {
		case "enter":
			value := strings.TrimSpace(m.input.Value())
			mode := m.mode
			m.stopInput()
			if value == "" {
				return m, nil
			}
			if mode == inputSearch {
				m.lastJQL = value
				m.status = "searching…"
				return m, searchCmd(m.deck, value)
			}
			n, err := strconv.Atoi(value)
			if err != nil {
				m.errText = fmt.Sprintf("not a page number: %q", value)
				return m, nil
			}
			return m, navCmd(func() { m.deck.Jump(n) })
		case "esc":
			m.stopInput()
			return m, nil
		case "ctrl+c":
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	// Thread picker mode
	if m.showPicker {
		switch msg.String() {
		case "up", "k":
			m.picker.MoveUp()
		case "down", "j":
			m.picker.MoveDown()
		case "enter":
			m.showPicker = false
			cfg := m.deck.Config()
			cfg.ThreadCount = m.picker.Selected().Count
			return m, configureCmd(m.deck, cfg)
		case "esc":
			m.showPicker = false
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil
	}

	current, hasCurrent := m.list.Current()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.showDetail {
			m.detail.ScrollUp()
			return m, nil
		}
		m.list.MoveUp()
		m.refreshDetail()
	case key.Matches(msg, m.keys.Down):
		if m.showDetail {
			m.detail.ScrollDown()
			return m, nil
		}
		m.list.MoveDown()
		m.refreshDetail()
	case key.Matches(msg, m.keys.NextPage):
		return m, navCmd(func() { m.deck.Next() })
	case key.Matches(msg, m.keys.PrevPage):
		return m, navCmd(func() { m.deck.Prev() })
	case key.Matches(msg, m.keys.JumpPage):
		return m, m.startInput(inputJump, "page: ", fmt.Sprintf("1-%d", m.page.Total), "")
	case key.Matches(msg, m.keys.Search):
		return m, m.startInput(inputSearch, "JQL: ", "project = ABC ORDER BY created DESC", m.lastJQL)
	case key.Matches(msg, m.keys.Select):
		if hasCurrent {
			m.deck.ToggleSelect(current.Key)
			m.syncSelection()
			m.list.MoveDown()
			m.refreshDetail()
		}
	case key.Matches(msg, m.keys.Delete):
		if hasCurrent {
			return m, deleteCmd(m.deck, current.Key)
		}
	case key.Matches(msg, m.keys.BulkDelete):
		if len(m.selected) > 0 {
			m.status = fmt.Sprintf("deleting %d tickets…", len(m.selected))
			return m, bulkDeleteCmd(m.deck)
		}
	case key.Matches(msg, m.keys.Detail):
		m.showDetail = !m.showDetail
		if hasCurrent && current.Stub && !m.loading[current.Key] {
			m.loading[current.Key] = true
			m.refreshDetail()
			return m, hydrateCmd(m.deck, current.Key)
		}
	case key.Matches(msg, m.keys.EditMeta):
		if hasCurrent && !m.loading[current.Key] {
			m.loading[current.Key] = true
			m.refreshDetail()
			return m, editMetaCmd(m.deck, current.Key)
		}
	case key.Matches(msg, m.keys.Refresh):
		return m, navCmd(func() { m.deck.Refresh() })
	case key.Matches(msg, m.keys.Stop):
		m.deck.Stop()
		m.status = "stopping…"
	case key.Matches(msg, m.keys.Theme):
		cfg := m.deck.Config()
		if cfg.Theme == config.ThemeLight {
			cfg.Theme = config.ThemeDark
		} else {
			cfg.Theme = config.ThemeLight
		}
		return m, configureCmd(m.deck, cfg)
	case key.Matches(msg, m.keys.Threads):
		m.picker = NewThreadPicker(m.deck.Config().ThreadCount, m.deck.Governor().Capacity())
		m.picker.Width = m.width
		m.picker.Height = m.height
		m.showPicker = true
	case key.Matches(msg, m.keys.Cancel):
		m.showDetail = false
		m.errText = ""
		if m.deck.ClearSelection() > 0 {
			m.syncSelection()
		}
	}
	return m, nil
}

func (m Model) View() string {
	if m.width == 0 {
		return "\n  Loading tickets...\n"
	}

	if m.showPicker {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.picker.View(m.palette))
	}

	activity := ""
	if m.runs > 0 {
		activity = fmt.Sprintf("%s %d search", m.spinner.View(), m.runs)
		if m.runs > 1 {
			activity += "es"
		}
	}
	topBar := renderNavbar(m.palette, m.deck.Config().Server, m.page, len(m.selected), activity, m.width)

	left := m.palette.border(!m.showDetail).
		Width(m.list.Width).
		Height(m.list.Height).
		Render(m.list.View(m.palette))
	right := m.palette.border(m.showDetail).
		Width(m.detail.Width).
		Height(m.detail.Height).
		Render(m.detail.View())
	panes := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	var bottom string
	switch {
	case m.mode != inputNone:
		bottom = " " + m.input.View()
	case m.errText != "":
		bottom = " " + m.palette.err().Render(m.errText)
	case m.status != "":
		bottom = " " + m.palette.dim().Render(m.status) + "  " + m.help.View(m.keys)
	default:
		bottom = " " + m.help.View(m.keys)
	}

	return lipgloss.JoinVertical(lipgloss.Left, topBar, panes, bottom)
}

// Run starts the terminal UI and blocks until the user quits.
func Run(d *deck.Deck, sink *Sink) error {
	p := tea.NewProgram(NewModel(d, sink), tea.WithAltScreen())
	_, err := p.Run()
	d.Stop()
	sink.Close()
	return err
}
