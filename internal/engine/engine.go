// Package engine drives charm's two backends over a parsed Program: the
// tree-walk interpreter (internal/interp) for the full language, and
// the bytecode compiler+VM (internal/compiler, internal/vm) for the
// subset that covers. cmd/charmcheck uses it to run one backend or
// both and compare; cmd/charm wires the backends itself.
package engine

import (
	"bytes"

	"charm/internal/ast"
	"charm/internal/bytecode"
	"charm/internal/compiler"
	"charm/internal/intern"
	"charm/internal/interp"
	"charm/internal/value"
	"charm/internal/vm"
)

// WalkResult is everything observable about one tree-walk run.
type WalkResult struct {
	Stdout string
	Err    error
}

// RunWalk interprets p directly and captures everything it printed.
func RunWalk(p *ast.Program, interner *intern.Interner) WalkResult {
	var out bytes.Buffer
	it := interp.New(&out, interner)
	_, err := it.RunFrame(p)
	return WalkResult{Stdout: out.String(), Err: err}
}

// VMResult is everything observable about one bytecode-VM run: its
// final stack value (if OP_RETURN found one), the resulting globals
// table, and anything it printed via OP_PRINT.
type VMResult struct {
	Chunk   *bytecode.Chunk
	Final   value.Value
	Globals *intern.Table
	Stdout  string
	Err     error
}

// RunVM compiles p and runs it on a fresh VM. Compile errors surface
// through Err exactly like a runtime error; the result does not tell
// the two apart (cmd/charm, whose exit codes do, calls the compiler
// and VM directly).
func RunVM(p *ast.Program, interner *intern.Interner) VMResult {
	chunk, errs := compiler.Compile(p, interner)
	if len(errs) > 0 {
		return VMResult{Chunk: chunk, Err: errs[0]}
	}
	var out bytes.Buffer
	machine := vm.NewWithStdout(&out)
	final, err := machine.Run(chunk)
	return VMResult{Chunk: chunk, Final: final, Globals: machine.Globals(), Stdout: out.String(), Err: err}
}
