package jira

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lotas/ticketdeck/internal/governor"
	"github.com/lotas/ticketdeck/internal/types"
)

const editMetaBody = `{
  "fields": {
    "summary": {"name": "Summary", "schema": {"type": "string", "system": "summary"}, "operations": ["set"]},
    "priority": {"name": "Priority", "schema": {"type": "priority"}, "operations": ["set"],
      "allowedValues": [{"name": "High"}, {"name": "Low"}]},
    "duedate": {"name": "Due date", "schema": {"type": "date"}, "operations": ["set"]},
    "labels": {"name": "Labels", "schema": {"type": "array", "items": "string"}, "operations": ["add", "remove"]},
    "customfield_10010": {"name": "Team", "schema": {"type": "option", "custom": "com.example:select"},
      "operations": ["set"], "allowedValues": [{"value": "Core"}, {"value": "Web"}]}
  }
}`

func TestParseEditMeta(t *testing.T) {
	current := map[string]any{
		"summary":           "Crash on start",
		"priority":          map[string]any{"name": "High"},
		"labels":            []any{"ui", "crash"},
		"customfield_10010": map[string]any{"value": "Core"},
	}
	got, err := ParseEditMeta([]byte(editMetaBody), current)
	if err != nil {
		t.Fatalf("ParseEditMeta: %v", err)
	}
	want := []types.FieldMeta{
		{FieldKey: "customfield_10010", FieldName: "Team", FieldType: "com.example:select", WidgetType: "select", IsEditable: true, AllowedValues: []string{"Core", "Web"}, CurrentValue: "Core"},
		{FieldKey: "duedate", FieldName: "Due date", FieldType: "date", WidgetType: "date", IsEditable: true, AllowedValues: []string{}, CurrentValue: ""},
		{FieldKey: "labels", FieldName: "Labels", FieldType: "array", WidgetType: "text", IsEditable: false, AllowedValues: []string{}, CurrentValue: "ui, crash"},
		{FieldKey: "priority", FieldName: "Priority", FieldType: "priority", WidgetType: "select", IsEditable: true, AllowedValues: []string{"High", "Low"}, CurrentValue: "High"},
		{FieldKey: "summary", FieldName: "Summary", FieldType: "string", WidgetType: "text", IsEditable: true, AllowedValues: []string{}, CurrentValue: "Crash on start"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseEditMeta mismatch (-want +got):\n%s", diff)
	}
}

func TestParseEditMeta_BadJSON(t *testing.T) {
	if _, err := ParseEditMeta([]byte("{"), nil); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestClientEditMeta(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/api/2/issue/PRJ-3/editmeta" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(editMetaBody))
	}))
	defer srv.Close()

	metas, err := testClient(srv.URL, governor.New(1)).EditMeta(context.Background(), "PRJ-3", nil)
	if err != nil {
		t.Fatalf("EditMeta: %v", err)
	}
	if len(metas) != 5 {
		t.Fatalf("got %d fields, want 5", len(metas))
	}
}
