package main

import (
	"os"
	"strings"

	"charm/internal/engine"
	"charm/internal/intern"
	"charm/internal/parser"
)

// runWalkSuite runs every testdata/walk/*.charm file through the
// tree-walk interpreter and compares its stdout against the sibling
// *.out golden file. Returns the number of failing cases.
func runWalkSuite(dir string) int {
	failures := 0
	for _, path := range charmFiles(dir) {
		name := strings.TrimSuffix(path, ".charm")
		want, err := os.ReadFile(name + ".out")
		if err != nil {
			reportError(path, "missing golden file: %v", err)
			failures++
			continue
		}

		src, err := os.ReadFile(path)
		if err != nil {
			reportError(path, "%v", err)
			failures++
			continue
		}

		interner := intern.NewInterner()
		p := parser.New(src, interner)
		prog, perrs := p.Parse()
		if len(perrs) > 0 {
			reportError(path, "parse error: %v", perrs[0])
			failures++
			continue
		}

		res := engine.RunWalk(prog, interner)
		if res.Err != nil {
			reportError(path, "runtime error: %v", res.Err)
			failures++
			continue
		}
		if res.Stdout != string(want) {
			reportDiff(path, string(want), res.Stdout)
			failures++
			continue
		}
		reportPass(path)
	}
	return failures
}

// runDualSuite runs every testdata/dual/*.charm file through both
// backends and reports a failure if they disagree: on stdout
// (spec.md §8 invariant 5) or on final global-variable state.
func runDualSuite(dir string) int {
	failures := 0
	for _, path := range charmFiles(dir) {
		src, err := os.ReadFile(path)
		if err != nil {
			reportError(path, "%v", err)
			failures++
			continue
		}

		interner := intern.NewInterner()
		p := parser.New(src, interner)
		prog, perrs := p.Parse()
		if len(perrs) > 0 {
			reportError(path, "parse error: %v", perrs[0])
			failures++
			continue
		}

		report := engine.CheckEquivalence(prog, interner)
		if report.OK() {
			reportPass(path)
			continue
		}
		switch {
		case report.WalkErr != nil:
			reportError(path, "tree-walk error: %v", report.WalkErr)
		case report.VMErr != nil:
			reportError(path, "VM error: %v", report.VMErr)
		case report.WalkStdout != report.VMStdout:
			reportDiff(path, report.WalkStdout, report.VMStdout)
		default:
			reportMismatch(path, report.Mismatches)
		}
		failures++
	}
	return failures
}
