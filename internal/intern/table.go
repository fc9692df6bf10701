// Package intern provides the open-addressing hash table keyed by
// interned-string identity, and the string interner that produces that
// identity. Both are used pervasively: the table backs the VM's
// globals and each tree-walk frame's bindings; the interner guarantees
// invariant 1 (equal bytes imply equal pointer).
package intern

import "charm/internal/value"

const (
	initialCapacity = 8
	maxLoadFactor   = 0.75
)

// slot is a single bucket. An empty slot has Key == nil and
// Val.IsNil(); a tombstone (a deleted slot whose probe chain must stay
// intact) has Key == nil and Val holding Boolean(true).
type slot struct {
	key *value.Cell
	val value.Value
}

func (s slot) isEmpty() bool     { return s.key == nil && s.val.Kind == value.KindNil }
func (s slot) isTombstone() bool { return s.key == nil && s.val.Kind == value.KindBool && s.val.Bool }

// Table is an open-addressing, linear-probing hash table whose keys
// are interned string pointers (*value.Cell) and whose values are
// runtime Values.
type Table struct {
	slots []slot
	count int // live (non-tombstone) entries
}

// NewTable returns a Table with the reference's initial capacity.
func NewTable() *Table {
	return &Table{slots: make([]slot, initialCapacity)}
}

// Count returns the number of live, non-tombstoned entries.
func (t *Table) Count() int { return t.count }

// Get returns the value bound to key and whether it was found.
func (t *Table) Get(key *value.Cell) (value.Value, bool) {
	if len(t.slots) == 0 || key == nil {
		return value.Nil(), false
	}
	idx := t.findSlot(key)
	s := t.slots[idx]
	if s.key != key {
		return value.Nil(), false
	}
	return s.val, true
}

// Set binds key to val, overwriting any existing binding.
func (t *Table) Set(key *value.Cell, val value.Value) {
	if len(t.slots) == 0 {
		t.slots = make([]slot, initialCapacity)
	}
	if float64(t.count+1) > float64(len(t.slots))*maxLoadFactor {
		t.grow()
	}

	idx := t.findSlot(key)
	s := &t.slots[idx]
	if s.key == nil {
		t.count++
	}
	s.key = key
	s.val = val
}

// Delete removes key's binding, if any, leaving a tombstone so later
// probe chains through this slot remain intact. Reports whether a
// binding was removed.
func (t *Table) Delete(key *value.Cell) bool {
	if len(t.slots) == 0 || key == nil {
		return false
	}
	idx := t.findSlot(key)
	s := &t.slots[idx]
	if s.key != key {
		return false
	}
	s.key = nil
	s.val = value.Boolean(true)
	t.count--
	return true
}

// findSlot walks the probe sequence for key, returning the index of
// either the slot already holding key, or the first empty slot found
// (preferring an earlier tombstone so repeated insert/delete doesn't
// leak capacity). Equality on keys is pointer identity.
func (t *Table) findSlot(key *value.Cell) int {
	capacity := len(t.slots)
	idx := int(key.Hash) % capacity
	tombstone := -1

	for {
		s := t.slots[idx]
		switch {
		case s.key == key:
			return idx
		case s.isEmpty():
			if tombstone != -1 {
				return tombstone
			}
			return idx
		case s.isTombstone():
			if tombstone == -1 {
				tombstone = idx
			}
		}
		idx = (idx + 1) % capacity
	}
}

// Each calls fn once per live entry, in slot order. Used to snapshot a
// globals table for the two-engine equivalence check (cmd/charmcheck)
// and has no defined iteration order beyond "whatever the probe table
// currently looks like" — callers that need a stable order should sort.
func (t *Table) Each(fn func(key *value.Cell, val value.Value)) {
	for _, s := range t.slots {
		if s.key == nil {
			continue
		}
		fn(s.key, s.val)
	}
}

func (t *Table) grow() {
	old := t.slots
	t.slots = make([]slot, len(old)*2)
	t.count = 0

	for _, s := range old {
		if s.key == nil {
			continue
		}
		t.Set(s.key, s.val)
	}
}
