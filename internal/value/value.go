// Package value defines the tagged runtime value type shared by the
// tree-walk interpreter and the bytecode VM, and the heap Cell variant
// that backs interned strings.
package value

import (
	"fmt"
	"strings"
)

// Kind discriminates the Value union.
type Kind int

const (
	KindNil Kind = iota
	KindNumber
	KindBool
	KindCell
	KindFunction
	KindNative
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindCell:
		return "string"
	case KindFunction:
		return "function"
	case KindNative:
		return "native function"
	default:
		return "unknown"
	}
}

// NativeFn is the signature of a built-in function (time, print).
type NativeFn func(args []Value) (Value, error)

// Function is a closure-less function pointer into the AST: a list of
// interned parameter names plus a body. Body is kept as `any` (rather
// than *ast.Stmt) so this package never depends on the ast package,
// mirroring the forward-declared `struct Stmt *body` in the C
// reference's value.h; the tree-walk interpreter is the only place
// that type-asserts it back, to *ast.Block.
type Function struct {
	Name   string
	Params []*Cell
	Body   any
}

// Value is a small tagged union, copyable by value.
type Value struct {
	Kind   Kind
	Num    float64
	Bool   bool
	Cell   *Cell
	Fn     *Function
	Native NativeFn
}

func Nil() Value                     { return Value{Kind: KindNil} }
func Number(n float64) Value         { return Value{Kind: KindNumber, Num: n} }
func Boolean(b bool) Value           { return Value{Kind: KindBool, Bool: b} }
func FromCell(c *Cell) Value         { return Value{Kind: KindCell, Cell: c} }
func FromFunction(f *Function) Value { return Value{Kind: KindFunction, Fn: f} }
func FromNative(f NativeFn) Value    { return Value{Kind: KindNative, Native: f} }

func (v Value) IsNil() bool      { return v.Kind == KindNil }
func (v Value) IsNumber() bool   { return v.Kind == KindNumber }
func (v Value) IsBool() bool     { return v.Kind == KindBool }
func (v Value) IsCell() bool     { return v.Kind == KindCell }
func (v Value) IsString() bool   { return v.Kind == KindCell && v.Cell != nil && v.Cell.Type == CellString }
func (v Value) IsFunction() bool { return v.Kind == KindFunction }
func (v Value) IsNative() bool   { return v.Kind == KindNative }

// Str returns the backing bytes of a string value; ok is false for any
// other Kind.
func (v Value) Str() (string, bool) {
	if !v.IsString() {
		return "", false
	}
	return string(v.Cell.Bytes), true
}

// Truthy implements the "only false and nil are falsy" rule.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindNil:
		return false
	case KindBool:
		return v.Bool
	default:
		return true
	}
}

// Equal implements values_equal: same-typed comparison, false across
// types. It underlies both the VM's EQUAL opcode and the tree-walk
// interpreter's `==`/`!=`.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNil:
		return true
	case KindNumber:
		return v.Num == o.Num
	case KindBool:
		return v.Bool == o.Bool
	case KindCell:
		if v.Cell == o.Cell {
			return true
		}
		if v.Cell == nil || o.Cell == nil {
			return false
		}
		return v.Cell.Type == o.Cell.Type && string(v.Cell.Bytes) == string(o.Cell.Bytes)
	case KindFunction:
		return v.Fn == o.Fn
	case KindNative:
		return false // funcs are not comparable by value
	default:
		return false
	}
}

// String renders a Value exactly as the built-in print does: numbers
// via C's %f (six decimal places), booleans as true/false, nil as
// <NIL>, strings as their raw bytes.
func (v Value) String() string {
	switch v.Kind {
	case KindNil:
		return "<NIL>"
	case KindNumber:
		return fmt.Sprintf("%f", v.Num)
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindCell:
		if v.Cell == nil {
			return ""
		}
		return v.Cell.String()
	case KindFunction:
		name := "anonymous"
		if v.Fn != nil && v.Fn.Name != "" {
			name = v.Fn.Name
		}
		return fmt.Sprintf("<function %s>", name)
	case KindNative:
		return "<native function>"
	default:
		return "<unknown>"
	}
}

// PrintJoin renders the arguments of a print(...) call: space-separated
// textual forms followed by a newline.
func PrintJoin(args []Value) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return strings.Join(parts, " ") + "\n"
}
