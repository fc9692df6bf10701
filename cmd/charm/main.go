// Command charm runs a .charm script. By default it runs the full
// language through the tree-walk interpreter (internal/interp);
// --vm-only instead compiles and runs the bytecode subset
// (internal/compiler, internal/vm). Exit codes follow the teacher's
// convention (codecrafters/cmd/main.go): 65 for a lex/parse/compile
// error, 70 for a runtime error, 2 if the script can't be read, 1 for
// bad CLI usage.
package main

import (
	"flag"
	"fmt"
	"os"

	"charm/internal/ast"
	"charm/internal/compiler"
	"charm/internal/debug"
	"charm/internal/intern"
	"charm/internal/interp"
	"charm/internal/parser"
	"charm/internal/vm"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("charm", flag.ContinueOnError)
	dumpAST := fs.Bool("dump-ast", false, "print the parsed AST before running")
	dumpBC := fs.Bool("dump-bc", false, "print the compiled bytecode before running")
	vmOnly := fs.Bool("vm-only", false, "run only the bytecode VM (no user-defined functions or calls other than print)")
	walkOnly := fs.Bool("walk-only", false, "run only the tree-walk interpreter (the default)")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: charm [--dump-ast] [--dump-bc] [--vm-only | --walk-only] <script.charm>")
		return 1
	}
	if *vmOnly && *walkOnly {
		fmt.Fprintln(os.Stderr, "charm: --vm-only and --walk-only are mutually exclusive")
		return 1
	}

	src, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "charm: %v\n", err)
		return 2
	}

	interner := intern.NewInterner()
	p := parser.New(src, interner)
	prog, errs := p.Parse()
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e)
		}
		return 65
	}

	if *dumpAST {
		fmt.Print(debug.PrintProgram(prog))
	}

	if *vmOnly {
		return runVM(prog, interner, *dumpBC)
	}
	return runWalk(prog, interner, *dumpBC)
}

func runVM(prog *ast.Program, interner *intern.Interner, dumpBC bool) int {
	chunk, cerrs := compiler.Compile(prog, interner)
	if dumpBC {
		fmt.Print(debug.DisassembleChunk(chunk, "chunk"))
	}
	if len(cerrs) > 0 {
		for _, e := range cerrs {
			fmt.Fprintln(os.Stderr, e)
		}
		return 65
	}

	machine := vm.New()
	final, err := machine.Run(chunk)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 70
	}
	if !final.IsNil() {
		fmt.Println(final.String())
	}
	return 0
}

func runWalk(prog *ast.Program, interner *intern.Interner, dumpBC bool) int {
	if dumpBC {
		chunk, cerrs := compiler.Compile(prog, interner)
		fmt.Print(debug.DisassembleChunk(chunk, "chunk"))
		for _, e := range cerrs {
			fmt.Fprintln(os.Stderr, e)
		}
	}

	it := interp.New(os.Stdout, interner)
	if err := it.Run(prog); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 70
	}
	return 0
}
