package export

import (
	"encoding/json"
	"time"

	"github.com/lotas/ticketdeck/internal/types"
)

type jsonExport struct {
	Server     string      `json:"server"`
	ExportedAt time.Time   `json:"exported_at"`
	Count      int         `json:"count"`
	Groups     []jsonGroup `json:"groups"`
}

type jsonGroup struct {
	Status  string       `json:"status"`
	Tickets []jsonTicket `json:"tickets"`
}

type jsonTicket struct {
	Key       string      `json:"key"`
	URL       string      `json:"url,omitempty"`
	Summary   string      `json:"summary,omitempty"`
	Status    string      `json:"status,omitempty"`
	Assignee  string      `json:"assignee,omitempty"`
	IssueType string      `json:"issue_type,omitempty"`
	Stub      bool        `json:"stub,omitempty"`
	Fields    []jsonField `json:"fields,omitempty"`
}

type jsonField struct {
	Key           string   `json:"key"`
	Name          string   `json:"name"`
	Widget        string   `json:"widget"`
	Editable      bool     `json:"editable"`
	AllowedValues []string `json:"allowed_values,omitempty"`
	Current       string   `json:"current,omitempty"`
}

// JSON formats the cached tickets, grouped by status, as a JSON document.
// meta holds any cached edit metadata by ticket key and may be nil.
func JSON(server string, tickets []types.Ticket, meta map[string][]types.FieldMeta) (string, error) {
	groups := groupByStatus(tickets)
	out := jsonExport{
		Server:     server,
		ExportedAt: time.Now(),
		Count:      len(tickets),
		Groups:     make([]jsonGroup, 0, len(groups)),
	}

	for _, g := range groups {
		group := jsonGroup{
			Status:  g.status,
			Tickets: make([]jsonTicket, 0, len(g.tickets)),
		}
		for _, t := range g.tickets {
			jt := jsonTicket{
				Key:       t.Key,
				URL:       BrowseURL(server, t.Key),
				Summary:   t.Summary(),
				Status:    t.Status(),
				Assignee:  t.Assignee(),
				IssueType: t.IssueType(),
				Stub:      t.IsStub(),
			}
			for _, m := range meta[t.Key] {
				jt.Fields = append(jt.Fields, jsonField{
					Key:           m.FieldKey,
					Name:          m.FieldName,
					Widget:        m.WidgetType,
					Editable:      m.IsEditable,
					AllowedValues: m.AllowedValues,
					Current:       m.CurrentValue,
				})
			}
			group.Tickets = append(group.Tickets, jt)
		}
		out.Groups = append(out.Groups, group)
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}
