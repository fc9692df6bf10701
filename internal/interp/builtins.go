package interp

import (
	"fmt"
	"time"

	"charm/internal/value"
)

// registerBuiltins binds the two native functions the reference runtime
// provides, directly into the root frame (spec.md §4.3: "time() and
// print(...) are native functions installed in the root frame").
func (it *Interpreter) registerBuiltins(root *Frame) {
	root.Define(it.Interner.InternString("time"), value.FromNative(nativeTime))
	root.Define(it.Interner.InternString("print"), value.FromNative(it.nativePrint))
}

func nativeTime(args []value.Value) (value.Value, error) {
	return value.Number(float64(time.Now().Unix())), nil
}

func (it *Interpreter) nativePrint(args []value.Value) (value.Value, error) {
	fmt.Fprint(it.Stdout, value.PrintJoin(args))
	return value.Nil(), nil
}
