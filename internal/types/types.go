package types

import "fmt"

// Ticket is a single tracker issue. Identity is Key ("ABC-123").
// Fields is nil for a stub that has not been hydrated yet.
type Ticket struct {
	Key    string
	Fields map[string]any
}

// IsStub reports whether the ticket has no fields loaded.
func (t Ticket) IsStub() bool { return t.Fields == nil }

// Summary returns the "summary" field, or "" when absent.
func (t Ticket) Summary() string {
	return stringField(t.Fields, "summary")
}

// Status returns fields.status.name, or "".
func (t Ticket) Status() string {
	return nestedName(t.Fields, "status", "name")
}

// Assignee returns fields.assignee.displayName, or "".
func (t Ticket) Assignee() string {
	return nestedName(t.Fields, "assignee", "displayName")
}

// IssueType returns fields.issuetype.name, or "".
func (t Ticket) IssueType() string {
	return nestedName(t.Fields, "issuetype", "name")
}

func stringField(fields map[string]any, name string) string {
	if fields == nil {
		return ""
	}
	switch v := fields[name].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func nestedName(fields map[string]any, name, sub string) string {
	if fields == nil {
		return ""
	}
	obj, ok := fields[name].(map[string]any)
	if !ok {
		return ""
	}
	return stringField(obj, sub)
}

// FieldMeta describes one editable field of a ticket as reported by the
// tracker's edit-metadata endpoint.
type FieldMeta struct {
	FieldKey      string   `json:"key"`
	FieldName     string   `json:"name"`
	FieldType     string   `json:"type"`
	WidgetType    string   `json:"widget"` // "text", "select", "date", "number"
	IsEditable    bool     `json:"editable"`
	AllowedValues []string `json:"allowed_values,omitempty"`
	CurrentValue  string   `json:"current,omitempty"`
}

// Page is the visible slice of the ticket list.
type Page struct {
	Number  int
	Total   int // total pages
	Count   int // total tickets
	Tickets []Ticket
}
