package tickets

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lotas/ticketdeck/internal/types"
)

func keys(ts []types.Ticket) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Key
	}
	return out
}

func TestKeyNumber(t *testing.T) {
	cases := map[string]int{
		"ABC-12":    12,
		"A-1":       1,
		"NOPE":      -1,
		"ABC-x":     -1,
		"MY-PROJ-3": -1,
	}
	for key, want := range cases {
		if got := KeyNumber(key); got != want {
			t.Errorf("KeyNumber(%q) = %d, want %d", key, got, want)
		}
	}
}

func TestSort(t *testing.T) {
	ts := []types.Ticket{{Key: "A-2"}, {Key: "B-10"}, {Key: "A-10"}, {Key: "C-1"}}
	Sort(ts)
	want := []string{"A-10", "B-10", "A-2", "C-1"}
	if diff := cmp.Diff(want, keys(ts)); diff != "" {
		t.Errorf("Sort mismatch (-want +got):\n%s", diff)
	}
}

func TestReconcile(t *testing.T) {
	mem := []types.Ticket{
		{Key: "P-1", Fields: map[string]any{"summary": "a"}},
		{Key: "P-2"},
		{Key: "P-3"},
	}
	got := Reconcile(mem, []string{"P-1", "P-3", "P-4"})

	want := NewKeySet("P-1", "P-3", "P-4")
	if len(got) != len(want) {
		t.Fatalf("got %v, want keys %v", keys(got), want)
	}
	for _, tk := range got {
		if !want.Has(tk.Key) {
			t.Errorf("unexpected key %s", tk.Key)
		}
	}
	if diff := cmp.Diff([]string{"P-4", "P-3", "P-1"}, keys(got)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	for _, tk := range got {
		switch tk.Key {
		case "P-1":
			if tk.Summary() != "a" {
				t.Error("hydrated fields of P-1 were lost")
			}
		case "P-4":
			if !tk.IsStub() {
				t.Error("P-4 should be added as a stub")
			}
		}
	}
}

func TestReconcile_DropsDuplicatesAndEmptiesOnEmptyStore(t *testing.T) {
	mem := []types.Ticket{{Key: "P-1"}, {Key: "P-1"}}
	if got := Reconcile(mem, []string{"P-1"}); len(got) != 1 {
		t.Errorf("duplicates survived: %v", keys(got))
	}
	if got := Reconcile(mem, nil); len(got) != 0 {
		t.Errorf("expected empty result, got %v", keys(got))
	}
}

func TestMerge(t *testing.T) {
	mem := []types.Ticket{{Key: "P-1"}, {Key: "P-2", Fields: map[string]any{"summary": "old"}}}
	incoming := []types.Ticket{
		{Key: "P-2", Fields: map[string]any{"summary": "new"}},
		{Key: "P-3", Fields: map[string]any{"summary": "three"}},
		{Key: "P-3", Fields: map[string]any{"summary": "dup"}},
		{Key: ""},
	}
	got, added := Merge(mem, incoming)
	if added != 1 {
		t.Errorf("added = %d, want 1", added)
	}
	if diff := cmp.Diff([]string{"P-3", "P-2", "P-1"}, keys(got)); diff != "" {
		t.Errorf("merge order mismatch (-want +got):\n%s", diff)
	}
	if got[1].Summary() != "new" {
		t.Errorf("P-2 fields not replaced: %q", got[1].Summary())
	}
}

func TestRemove(t *testing.T) {
	ts := []types.Ticket{{Key: "P-3"}, {Key: "P-2"}, {Key: "P-1"}}
	got := Remove(ts, "P-2")
	if diff := cmp.Diff([]string{"P-3", "P-1"}, keys(got)); diff != "" {
		t.Errorf("Remove mismatch (-want +got):\n%s", diff)
	}
	if len(ts) != 3 || ts[1].Key != "P-2" {
		t.Error("Remove must not modify its input")
	}
}

func TestRetainer(t *testing.T) {
	r := NewRetainer[int]()
	if !r.Retain("P-1", 1) || !r.Retain("P-2", 2) {
		t.Fatal("first retains should succeed")
	}
	if r.Retain("P-1", 99) {
		t.Error("duplicate retain should be refused")
	}
	if h, _ := r.Get("P-1"); h != 1 {
		t.Errorf("handle for P-1 = %d, want 1", h)
	}
	r.Replace("P-1", 5)
	if h, _ := r.Get("P-1"); h != 5 {
		t.Errorf("handle after Replace = %d, want 5", h)
	}
	r.Drop("P-1")
	r.Drop("P-missing")
	if _, ok := r.Get("P-1"); ok || len(r.Keys()) != 1 {
		t.Errorf("Drop failed: keys %v", r.Keys())
	}
	if diff := cmp.Diff([]string{"P-2"}, r.Keys()); diff != "" {
		t.Errorf("Keys mismatch (-want +got):\n%s", diff)
	}
}

func TestSelection(t *testing.T) {
	s := NewSelection()
	if !s.Toggle("P-1") {
		t.Error("Toggle should select")
	}
	s.Select("P-10")
	s.Select("P-10")
	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}
	if diff := cmp.Diff([]string{"P-10", "P-1"}, s.Keys()); diff != "" {
		t.Errorf("Keys mismatch (-want +got):\n%s", diff)
	}
	if s.Toggle("P-1") {
		t.Error("Toggle should unselect")
	}
	s.Clear()
	if s.Len() != 0 {
		t.Error("Clear left keys behind")
	}
}
