package engine

import (
	"bytes"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"charm/internal/ast"
	"charm/internal/intern"
	"charm/internal/interp"
	"charm/internal/value"
)

// GlobalMismatch names one global variable whose final value disagreed
// between the two backends.
type GlobalMismatch struct {
	Name string
	Walk value.Value
	VM   value.Value
}

func (m GlobalMismatch) String() string {
	return fmt.Sprintf("%s: walk=%s vm=%s", m.Name, m.Walk.String(), m.VM.String())
}

// EquivalenceReport is the result of running the same Program through
// both backends and comparing their observable output: stdout (spec.md
// §8 invariant 5, checked literally) plus final global state as a
// supplementary check the reference text doesn't ask for but which
// catches divergences a print-free prefix of the program would hide.
type EquivalenceReport struct {
	WalkStdout string
	VMStdout   string
	WalkErr    error
	VMErr      error
	Mismatches []GlobalMismatch
}

// OK reports whether both backends agreed: no error from either side,
// identical stdout, and no mismatched global.
func (r *EquivalenceReport) OK() bool {
	return r.WalkErr == nil && r.VMErr == nil && r.WalkStdout == r.VMStdout && len(r.Mismatches) == 0
}

// CheckEquivalence runs p through the tree-walk interpreter and the
// bytecode VM concurrently (the one place in the module concurrency
// appears — see SPEC_FULL.md's ambient-stack test-tooling section) and
// compares their stdout and resulting global bindings. p is expected to
// stay inside the bytecode compiler's subset (no function declarations,
// return statements, or calls other than print) — see internal/
// compiler's package doc for why a program outside that subset cannot
// produce a VM side to compare at all.
//
// Each backend's error is captured independently; errgroup here is
// purely a wait-for-both barrier, not an error-propagation path, since
// a failure on one side must never hide or get confused with a failure
// on the other.
func CheckEquivalence(p *ast.Program, interner *intern.Interner) *EquivalenceReport {
	var (
		walkFrame *interp.Frame
		walkOut   bytes.Buffer
		walkErr   error
		vmResult  VMResult
	)

	var g errgroup.Group
	g.Go(func() error {
		it := interp.New(&walkOut, interner)
		walkFrame, walkErr = it.RunFrame(p)
		return nil
	})
	g.Go(func() error {
		vmResult = RunVM(p, interner)
		return nil
	})
	_ = g.Wait() // both Go funcs always return nil; errors are out-params above

	report := &EquivalenceReport{
		WalkStdout: walkOut.String(),
		VMStdout:   vmResult.Stdout,
		WalkErr:    walkErr,
		VMErr:      vmResult.Err,
	}
	if walkErr != nil || vmResult.Err != nil {
		return report
	}

	report.Mismatches = diffGlobals(walkFrame, vmResult.Globals)
	return report
}

func diffGlobals(walk *interp.Frame, vmGlobals *intern.Table) []GlobalMismatch {
	walkVals := map[string]value.Value{}
	walk.Each(func(name *value.Cell, v value.Value) {
		// The root frame also holds the native builtins (time, print),
		// which the VM never stores as globals.
		if v.IsNative() {
			return
		}
		walkVals[name.String()] = v
	})
	vmVals := map[string]value.Value{}
	vmGlobals.Each(func(name *value.Cell, v value.Value) {
		vmVals[name.String()] = v
	})

	names := map[string]struct{}{}
	for n := range walkVals {
		names[n] = struct{}{}
	}
	for n := range vmVals {
		names[n] = struct{}{}
	}
	var ordered []string
	for n := range names {
		ordered = append(ordered, n)
	}
	sort.Strings(ordered)

	var mismatches []GlobalMismatch
	for _, n := range ordered {
		wv, wok := walkVals[n]
		vv, vok := vmVals[n]
		if !wok || !vok || !wv.Equal(vv) {
			mismatches = append(mismatches, GlobalMismatch{Name: n, Walk: wv, VM: vv})
		}
	}
	return mismatches
}
