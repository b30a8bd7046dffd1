package tickets

// Retainer maps ticket key to the last view handle rendered for it, in
// insertion order, with at most one entry per key.
type Retainer[H any] struct {
	order []string
	items map[string]H
}

func NewRetainer[H any]() *Retainer[H] {
	return &Retainer[H]{items: make(map[string]H)}
}

// Retain stores h for key. It reports false, and keeps the existing
// handle, when key is already retained.
func (r *Retainer[H]) Retain(key string, h H) bool {
	if _, ok := r.items[key]; ok {
		return false
	}
	r.items[key] = h
	r.order = append(r.order, key)
	return true
}

// Replace stores h for key whether or not it was retained.
func (r *Retainer[H]) Replace(key string, h H) {
	if _, ok := r.items[key]; !ok {
		r.order = append(r.order, key)
	}
	r.items[key] = h
}

func (r *Retainer[H]) Get(key string) (H, bool) {
	h, ok := r.items[key]
	return h, ok
}

// Drop forgets key.
func (r *Retainer[H]) Drop(key string) {
	if _, ok := r.items[key]; !ok {
		return
	}
	delete(r.items, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Keys returns retained keys in insertion order.
func (r *Retainer[H]) Keys() []string {
	return append([]string(nil), r.order...)
}

// Selection is the set of ticket keys marked for a bulk action.
type Selection struct {
	keys KeySet
}

func NewSelection() *Selection { return &Selection{keys: KeySet{}} }

func (s *Selection) Select(key string)   { s.keys.Add(key) }
func (s *Selection) Unselect(key string) { delete(s.keys, key) }
func (s *Selection) Has(key string) bool { return s.keys.Has(key) }
func (s *Selection) Len() int            { return len(s.keys) }
func (s *Selection) Clear()              { s.keys = KeySet{} }

// Toggle flips key and reports whether it is now selected.
func (s *Selection) Toggle(key string) bool {
	if s.keys.Has(key) {
		s.Unselect(key)
		return false
	}
	s.Select(key)
	return true
}

// Keys returns the selected keys in canonical ticket order.
func (s *Selection) Keys() []string {
	out := make([]string, 0, len(s.keys))
	for k := range s.keys {
		out = append(out, k)
	}
	SortKeys(out)
	return out
}
