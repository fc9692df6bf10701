// Package interp is the reference tree-walk evaluator: the second of
// charm's two execution backends (spec.md §4.3), cross-validated
// against the bytecode VM by cmd/charmcheck.
package interp

import (
	"io"

	"charm/internal/ast"
	"charm/internal/intern"
)

// Interpreter walks an *ast.Program directly, with no compilation
// pass. It holds no mutable "current frame" of its own: every eval/exec
// method takes the active Frame as an explicit argument, so a single
// Interpreter value is safe to reuse (or run concurrently against a
// second Program) the way cmd/charmcheck does.
type Interpreter struct {
	Stdout   io.Writer
	Interner *intern.Interner
}

// New returns an Interpreter that writes print output to stdout and
// interns the built-in names (time, print) through interner.
func New(stdout io.Writer, interner *intern.Interner) *Interpreter {
	return &Interpreter{Stdout: stdout, Interner: interner}
}

// Run executes every top-level statement of p in a fresh root frame and
// returns the first RuntimeError encountered, if any. A top-level
// `return` is legal and stops execution: the statements after it do
// not run. (The bytecode compiler rejects return statements.)
func (it *Interpreter) Run(p *ast.Program) error {
	_, err := it.RunFrame(p)
	return err
}

// RunFrame is Run plus the resulting root Frame, so a caller (notably
// internal/engine's two-backend equivalence check) can inspect the
// final global bindings.
func (it *Interpreter) RunFrame(p *ast.Program) (*Frame, error) {
	root := NewFrame(nil)
	it.registerBuiltins(root)
	_, _, err := it.execStmts(p.Stmts, root)
	return root, err
}
