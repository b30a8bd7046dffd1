// Package pager holds the paged view over the in-memory ticket list.
package pager

import (
	"errors"
	"fmt"
	"sync"

	"github.com/lotas/ticketdeck/internal/types"
)

// PageSize is the number of tickets shown per page.
const PageSize = 50

var ErrPageOutOfRange = errors.New("page out of range")

// Pager tracks the current page over a ticket list. All methods are safe for
// concurrent use.
type Pager struct {
	mu      sync.Mutex
	tickets []types.Ticket
	size    int
	current int
}

// New returns a pager on page 1 over tickets.
func New(tickets []types.Ticket) *Pager {
	return NewSized(tickets, PageSize)
}

// NewSized is New with a custom page size; size < 1 falls back to PageSize.
func NewSized(tickets []types.Ticket, size int) *Pager {
	if size < 1 {
		size = PageSize
	}
	return &Pager{tickets: tickets, size: size, current: 1}
}

// TotalPages returns max(1, ceil(n/size)).
func TotalPages(n, size int) int {
	if n <= 0 {
		return 1
	}
	return (n + size - 1) / size
}

func (p *Pager) total() int { return TotalPages(len(p.tickets), p.size) }

func (p *Pager) clamp(page int) int {
	return max(1, min(page, p.total()))
}

func (p *Pager) TotalPages() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total()
}

func (p *Pager) Current() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *Pager) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.tickets)
}

// Goto moves to page, clamped to [1, TotalPages], and returns the page
// landed on.
func (p *Pager) Goto(page int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = p.clamp(page)
	return p.current
}

func (p *Pager) Next() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = p.clamp(p.current + 1)
	return p.current
}

func (p *Pager) Prev() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = p.clamp(p.current - 1)
	return p.current
}

// Jump moves to an explicit page number entered by the user. Unlike Goto it
// rejects pages outside [1, TotalPages] and leaves the current page alone.
func (p *Pager) Jump(page int) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if total := p.total(); page < 1 || page > total {
		return p.current, fmt.Errorf("%w: %d not in 1..%d", ErrPageOutOfRange, page, total)
	}
	p.current = page
	return p.current, nil
}

func (p *Pager) visible() []types.Ticket {
	start := (p.current - 1) * p.size
	if start >= len(p.tickets) {
		return nil
	}
	end := min(start+p.size, len(p.tickets))
	out := make([]types.Ticket, end-start)
	copy(out, p.tickets[start:end])
	return out
}

// Visible returns a copy of the tickets on the current page.
func (p *Pager) Visible() []types.Ticket {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible()
}

// Set replaces the ticket list and re-clamps the current page.
func (p *Pager) Set(tickets []types.Ticket) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tickets = tickets
	p.current = p.clamp(p.current)
}

// Remove drops key from the list. When that empties the current page and it
// was not the first, the pager steps back one page. Reports whether key was
// present.
func (p *Pager) Remove(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	idx := -1
	for i, t := range p.tickets {
		if t.Key == key {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	out := make([]types.Ticket, 0, len(p.tickets)-1)
	out = append(out, p.tickets[:idx]...)
	p.tickets = append(out, p.tickets[idx+1:]...)
	if p.current > 1 && len(p.visible()) == 0 {
		p.current--
	}
	p.current = p.clamp(p.current)
	return true
}

// Snapshot returns a consistent copy of the current page and its position.
func (p *Pager) Snapshot() types.Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	return types.Page{
		Number:  p.current,
		Total:   p.total(),
		Count:   len(p.tickets),
		Tickets: p.visible(),
	}
}
