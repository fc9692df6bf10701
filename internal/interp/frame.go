package interp

import (
	"charm/internal/intern"
	"charm/internal/value"
)

// Frame is one lexical scope: a hash table mapping interned name to
// current value, plus a link to its enclosing frame. A fresh Frame is
// pushed for every block and every function invocation (spec.md §4.3).
type Frame struct {
	parent *Frame
	table  *intern.Table
}

// NewFrame returns an empty Frame chained to parent (nil for the root
// frame).
func NewFrame(parent *Frame) *Frame {
	return &Frame{parent: parent, table: intern.NewTable()}
}

// Define binds name in this frame, the innermost scope, regardless of
// whether an outer frame already binds it.
func (f *Frame) Define(name *value.Cell, v value.Value) {
	f.table.Set(name, v)
}

// Get walks outward from f looking for name.
func (f *Frame) Get(name *value.Cell) (value.Value, bool) {
	for fr := f; fr != nil; fr = fr.parent {
		if v, ok := fr.table.Get(name); ok {
			return v, true
		}
	}
	return value.Nil(), false
}

// Each calls fn once per binding held directly in this frame (not its
// ancestors) — used to snapshot the root frame's globals for the
// two-engine equivalence check.
func (f *Frame) Each(fn func(name *value.Cell, v value.Value)) {
	f.table.Each(fn)
}

// Root walks out to the outermost frame. Function calls are
// closure-less (spec.md §4.3): a called function only ever sees its
// own parameters plus the root frame's globals, never the caller's
// locals, so every call pushes a frame parented directly to Root().
func (f *Frame) Root() *Frame {
	fr := f
	for fr.parent != nil {
		fr = fr.parent
	}
	return fr
}

// AssignResult distinguishes the three outcomes of Assign, so the
// caller can render the right runtime error message.
type AssignResult int

const (
	AssignOK AssignResult = iota
	AssignUndefined
	AssignTypeMismatch
)

// Assign walks outward from f and updates the first frame that already
// binds name. Per the assignment typing guard (spec.md §4.3), if the
// existing binding is neither Nil nor the same Kind as v, the
// assignment is rejected.
func (f *Frame) Assign(name *value.Cell, v value.Value) AssignResult {
	for fr := f; fr != nil; fr = fr.parent {
		cur, ok := fr.table.Get(name)
		if !ok {
			continue
		}
		if !cur.IsNil() && cur.Kind != v.Kind {
			return AssignTypeMismatch
		}
		fr.table.Set(name, v)
		return AssignOK
	}
	return AssignUndefined
}
