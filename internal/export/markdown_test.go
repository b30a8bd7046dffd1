package export

import (
	"strings"
	"testing"

	"github.com/lotas/ticketdeck/internal/types"
)

func TestMarkdown_GroupedByStatus(t *testing.T) {
	tickets := []types.Ticket{
		ticket("ABC-3", "Fix login", "Open", "Ana"),
		ticket("ABC-2", "Write docs", "Done", ""),
		ticket("ABC-1", "Triage", "Open", ""),
	}

	result := Markdown("https://jira.example.com", tickets)

	if !strings.Contains(result, "# Tickets: https://jira.example.com") {
		t.Errorf("missing header, got:\n%s", result)
	}
	if !strings.Contains(result, "## Open (2 tickets)") {
		t.Errorf("missing Open heading, got:\n%s", result)
	}
	if !strings.Contains(result, "## Done (1 ticket)") {
		t.Errorf("missing Done heading, got:\n%s", result)
	}
	if !strings.Contains(result, "- [ABC-3](https://jira.example.com/browse/ABC-3) Fix login (Ana)") {
		t.Errorf("missing ABC-3 line, got:\n%s", result)
	}
	if strings.Index(result, "## Open") > strings.Index(result, "## Done") {
		t.Errorf("groups out of first-seen order:\n%s", result)
	}
}

func TestMarkdown_StubsWithoutServer(t *testing.T) {
	result := Markdown("", []types.Ticket{{Key: "ABC-9"}})

	if !strings.Contains(result, "# Tickets: local cache") {
		t.Errorf("missing fallback header, got:\n%s", result)
	}
	if !strings.Contains(result, "## "+NoStatus+" (1 ticket)") {
		t.Errorf("missing stub group, got:\n%s", result)
	}
	if !strings.Contains(result, "- ABC-9\n") {
		t.Errorf("expected bare key line, got:\n%s", result)
	}
}
