package types

import "testing"

func TestTicketAccessors(t *testing.T) {
	tk := Ticket{
		Key: "ABC-1",
		Fields: map[string]any{
			"summary":   "Crash on start",
			"status":    map[string]any{"name": "Open"},
			"assignee":  map[string]any{"displayName": "Sam"},
			"issuetype": map[string]any{"name": "Bug"},
		},
	}
	if tk.IsStub() {
		t.Error("ticket with fields reported as stub")
	}
	if tk.Summary() != "Crash on start" {
		t.Errorf("Summary = %q", tk.Summary())
	}
	if tk.Status() != "Open" {
		t.Errorf("Status = %q", tk.Status())
	}
	if tk.Assignee() != "Sam" {
		t.Errorf("Assignee = %q", tk.Assignee())
	}
	if tk.IssueType() != "Bug" {
		t.Errorf("IssueType = %q", tk.IssueType())
	}
}

func TestStubAccessors(t *testing.T) {
	tk := Ticket{Key: "ABC-2"}
	if !tk.IsStub() {
		t.Error("expected stub")
	}
	if tk.Summary() != "" || tk.Status() != "" || tk.Assignee() != "" {
		t.Error("stub accessors should return empty strings")
	}
}
