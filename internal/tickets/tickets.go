// Package tickets holds the in-memory side of ticket sync: canonical
// ordering, reconciliation against the store, and the key-indexed
// retainer and selection sets the view layer relies on.
package tickets

import (
	"sort"
	"strconv"
	"strings"

	"github.com/lotas/ticketdeck/internal/types"
)

// KeyNumber returns the numeric part after the first '-' of key, or -1 if
// it is missing or not a number.
func KeyNumber(key string) int {
	_, num, ok := strings.Cut(key, "-")
	if !ok {
		return -1
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return -1
	}
	return n
}

func less(a, b string) bool {
	na, nb := KeyNumber(a), KeyNumber(b)
	if na != nb {
		return na > nb
	}
	return a < b
}

// Sort orders tickets by descending key number, ties by key.
func Sort(ts []types.Ticket) {
	sort.SliceStable(ts, func(i, j int) bool { return less(ts[i].Key, ts[j].Key) })
}

// SortKeys orders keys the same way as Sort.
func SortKeys(keys []string) {
	sort.SliceStable(keys, func(i, j int) bool { return less(keys[i], keys[j]) })
}

// KeySet is the single membership test used for de-duplication.
type KeySet map[string]struct{}

// NewKeySet builds a set from keys.
func NewKeySet(keys ...string) KeySet {
	s := make(KeySet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// KeysOf builds a set from tickets.
func KeysOf(ts []types.Ticket) KeySet {
	s := make(KeySet, len(ts))
	for _, t := range ts {
		s[t.Key] = struct{}{}
	}
	return s
}

func (s KeySet) Has(key string) bool { _, ok := s[key]; return ok }
func (s KeySet) Add(key string)      { s[key] = struct{}{} }

// Reconcile makes mem agree with the store: tickets whose key is not in
// storeKeys are dropped, and store keys missing from mem are appended as
// stubs. Hydrated fields of surviving tickets are kept. The result is in
// canonical order.
func Reconcile(mem []types.Ticket, storeKeys []string) []types.Ticket {
	inStore := NewKeySet(storeKeys...)
	out := make([]types.Ticket, 0, len(storeKeys))
	seen := make(KeySet, len(mem))
	for _, t := range mem {
		if !inStore.Has(t.Key) || seen.Has(t.Key) {
			continue
		}
		seen.Add(t.Key)
		out = append(out, t)
	}
	for _, k := range storeKeys {
		if seen.Has(k) {
			continue
		}
		seen.Add(k)
		out = append(out, types.Ticket{Key: k})
	}
	Sort(out)
	return out
}

// Merge folds incoming search results into mem. A ticket already present
// has its fields replaced when the incoming copy carries fields; new keys
// are appended. Returns the merged list in canonical order and the number
// of keys that were new.
func Merge(mem, incoming []types.Ticket) ([]types.Ticket, int) {
	index := make(map[string]int, len(mem)+len(incoming))
	out := make([]types.Ticket, 0, len(mem)+len(incoming))
	for _, t := range mem {
		if _, dup := index[t.Key]; dup {
			continue
		}
		index[t.Key] = len(out)
		out = append(out, t)
	}
	added := 0
	for _, t := range incoming {
		if t.Key == "" {
			continue
		}
		if i, ok := index[t.Key]; ok {
			if t.Fields != nil {
				out[i].Fields = t.Fields
			}
			continue
		}
		index[t.Key] = len(out)
		out = append(out, t)
		added++
	}
	Sort(out)
	return out, added
}

// Remove returns ts without key, preserving order.
func Remove(ts []types.Ticket, key string) []types.Ticket {
	out := ts[:0:0]
	for _, t := range ts {
		if t.Key != key {
			out = append(out, t)
		}
	}
	return out
}
