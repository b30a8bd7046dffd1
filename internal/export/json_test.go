package export

import (
	"encoding/json"
	"testing"

	"github.com/lotas/ticketdeck/internal/types"
)

func ticket(key, summary, status, assignee string) types.Ticket {
	return types.Ticket{Key: key, Fields: map[string]any{
		"summary":  summary,
		"status":   map[string]any{"name": status},
		"assignee": map[string]any{"displayName": assignee},
	}}
}

func TestJSON_GroupedByStatus(t *testing.T) {
	tickets := []types.Ticket{
		ticket("ABC-3", "Fix login", "Open", "Ana"),
		ticket("ABC-2", "Write docs", "Done", "Ben"),
		ticket("ABC-1", "Triage", "Open", ""),
		{Key: "ABC-0"},
	}
	meta := map[string][]types.FieldMeta{
		"ABC-3": {{FieldKey: "priority", FieldName: "Priority", WidgetType: "select", IsEditable: true, AllowedValues: []string{"High", "Low"}, CurrentValue: "High"}},
	}

	result, err := JSON("https://jira.example.com/", tickets, meta)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed jsonExport
	if err := json.Unmarshal([]byte(result), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v\noutput:\n%s", err, result)
	}

	if parsed.Count != 4 {
		t.Errorf("expected count 4, got %d", parsed.Count)
	}
	if len(parsed.Groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(parsed.Groups))
	}
	if parsed.Groups[0].Status != "Open" || len(parsed.Groups[0].Tickets) != 2 {
		t.Errorf("expected Open group with 2 tickets, got %q with %d", parsed.Groups[0].Status, len(parsed.Groups[0].Tickets))
	}
	if parsed.Groups[2].Status != NoStatus || !parsed.Groups[2].Tickets[0].Stub {
		t.Errorf("expected stub group last, got %+v", parsed.Groups[2])
	}

	first := parsed.Groups[0].Tickets[0]
	if first.URL != "https://jira.example.com/browse/ABC-3" {
		t.Errorf("unexpected url %q", first.URL)
	}
	if first.Assignee != "Ana" || first.Summary != "Fix login" {
		t.Errorf("unexpected ticket %+v", first)
	}
	if len(first.Fields) != 1 || first.Fields[0].Current != "High" || !first.Fields[0].Editable {
		t.Errorf("expected priority field, got %+v", first.Fields)
	}
}

func TestJSON_Empty(t *testing.T) {
	result, err := JSON("", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed jsonExport
	if err := json.Unmarshal([]byte(result), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Count != 0 || len(parsed.Groups) != 0 {
		t.Errorf("expected empty export, got %+v", parsed)
	}
}
