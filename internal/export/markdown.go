package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/lotas/ticketdeck/internal/types"
)

// NoStatus labels tickets whose status is unknown, including stubs.
const NoStatus = "Not loaded"

type statusGroup struct {
	status  string
	tickets []types.Ticket
}

// groupByStatus keeps the first-seen order of statuses and the input order
// of tickets within each. Stubs go last under NoStatus.
func groupByStatus(tickets []types.Ticket) []statusGroup {
	var groups []statusGroup
	index := map[string]int{}
	var stubs []types.Ticket
	for _, t := range tickets {
		s := t.Status()
		if s == "" {
			stubs = append(stubs, t)
			continue
		}
		i, ok := index[s]
		if !ok {
			i = len(groups)
			index[s] = i
			groups = append(groups, statusGroup{status: s})
		}
		groups[i].tickets = append(groups[i].tickets, t)
	}
	if len(stubs) > 0 {
		groups = append(groups, statusGroup{status: NoStatus, tickets: stubs})
	}
	return groups
}

// BrowseURL returns the tracker's web link for key, or "" without a server.
func BrowseURL(server, key string) string {
	if server == "" {
		return ""
	}
	return strings.TrimRight(server, "/") + "/browse/" + key
}

// Markdown formats the cached tickets, grouped by status, as a markdown
// document.
func Markdown(server string, tickets []types.Ticket) string {
	var b strings.Builder

	title := server
	if title == "" {
		title = "local cache"
	}
	fmt.Fprintf(&b, "# Tickets: %s\n", title)
	fmt.Fprintf(&b, "> Exported %s\n", time.Now().Format("2006-01-02 15:04"))

	for _, g := range groupByStatus(tickets) {
		n := len(g.tickets)
		noun := "tickets"
		if n == 1 {
			noun = "ticket"
		}
		fmt.Fprintf(&b, "\n## %s (%d %s)\n\n", g.status, n, noun)

		for _, t := range g.tickets {
			label := t.Key
			if u := BrowseURL(server, t.Key); u != "" {
				label = fmt.Sprintf("[%s](%s)", t.Key, u)
			}
			line := "- " + label
			if s := t.Summary(); s != "" {
				line += " " + s
			}
			if a := t.Assignee(); a != "" {
				line += " (" + a + ")"
			}
			b.WriteString(line + "\n")
		}
	}

	return b.String()
}
