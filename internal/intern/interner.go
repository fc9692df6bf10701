package intern

import "charm/internal/value"

// Interner deduplicates strings by content, handing back a canonical
// *value.Cell pointer per distinct byte sequence (invariant 1: equal
// bytes imply equal pointer). Its probe sequence compares candidate
// slots by length and bytes, not by pointer — spec.md §9 calls this
// out as a specialized lookup that must be kept distinct from the
// pointer-keyed Table, since comparing bytes on the hot identifier path
// would be a needless slowdown once a string is already interned.
type Interner struct {
	slots []*value.Cell
	count int
}

// NewInterner returns an empty Interner at the reference's initial
// capacity.
func NewInterner() *Interner {
	return &Interner{slots: make([]*value.Cell, initialCapacity)}
}

// Intern returns the canonical *value.Cell for bytes, allocating one
// only the first time this byte sequence is seen.
func (in *Interner) Intern(bytes []byte) *value.Cell {
	if float64(in.count+1) > float64(len(in.slots))*maxLoadFactor {
		in.grow()
	}

	h := FNV1a(bytes)
	idx := int(h) % len(in.slots)

	for {
		existing := in.slots[idx]
		if existing == nil {
			cell := &value.Cell{Type: value.CellString, Bytes: append([]byte(nil), bytes...), Hash: h}
			in.slots[idx] = cell
			in.count++
			return cell
		}
		if existing.Hash == h && len(existing.Bytes) == len(bytes) && bytesEqual(existing.Bytes, bytes) {
			return existing
		}
		idx = (idx + 1) % len(in.slots)
	}
}

// InternString is a convenience wrapper for Intern([]byte(s)).
func (in *Interner) InternString(s string) *value.Cell {
	return in.Intern([]byte(s))
}

func (in *Interner) grow() {
	old := in.slots
	in.slots = make([]*value.Cell, len(old)*2)
	in.count = 0

	for _, cell := range old {
		if cell == nil {
			continue
		}
		idx := int(cell.Hash) % len(in.slots)
		for in.slots[idx] != nil {
			idx = (idx + 1) % len(in.slots)
		}
		in.slots[idx] = cell
		in.count++
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
