package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lotas/ticketdeck/internal/types"
)

type pageReadyMsg struct {
	page    int
	tickets []types.Ticket
}

type errorMsg struct{ msg string }

type progressMsg struct{ runs int }

type sinkClosedMsg struct{}

// Sink turns deck callbacks into tea messages. The program drains it with
// listen, one message per command, re-issued after each delivery.
type Sink struct {
	events    chan tea.Msg
	done      chan struct{}
	closeOnce sync.Once
}

func NewSink() *Sink {
	return &Sink{
		events: make(chan tea.Msg, 64),
		done:   make(chan struct{}),
	}
}

func (s *Sink) send(msg tea.Msg) {
	select {
	case s.events <- msg:
	case <-s.done:
	}
}

func (s *Sink) OnPageReady(page int, tickets []types.Ticket) {
	s.send(pageReadyMsg{page: page, tickets: tickets})
}

func (s *Sink) OnError(msg string) { s.send(errorMsg{msg: msg}) }

func (s *Sink) OnSearchProgress(runs int) { s.send(progressMsg{runs: runs}) }

// Close unblocks pending senders and ends listen.
func (s *Sink) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func listen(s *Sink) tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-s.events:
			return msg
		case <-s.done:
			return sinkClosedMsg{}
		}
	}
}
