package vm_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"charm/internal/compiler"
	"charm/internal/intern"
	"charm/internal/parser"
	"charm/internal/vm"
)

func compileAndRun(t *testing.T, in *intern.Interner, src string) (*vm.VM, interface{}, error) {
	t.Helper()
	p := parser.New([]byte(src), in)
	prog, perrs := p.Parse()
	require.Empty(t, perrs)

	chunk, cerrs := compiler.Compile(prog, in)
	require.Empty(t, cerrs, "compile errors: %v", cerrs)

	machine := vm.New()
	result, err := machine.Run(chunk)
	return machine, result, err
}

func TestVM_ArithmeticPrecedence(t *testing.T) {
	in := intern.NewInterner()
	machine, _, err := compileAndRun(t, in, `var x = 1 + 2 * 3;`)
	require.NoError(t, err)

	xv, ok := machine.Globals().Get(in.InternString("x"))
	require.True(t, ok)
	assert.Equal(t, 7.0, xv.Num)
}

func TestVM_GlobalRoundTrip(t *testing.T) {
	in := intern.NewInterner()
	machine, _, err := compileAndRun(t, in, `
		var x = 10;
		var y = x + 5;
	`)
	require.NoError(t, err)

	xName := in.InternString("x")
	yName := in.InternString("y")
	xv, ok := machine.Globals().Get(xName)
	require.True(t, ok)
	assert.Equal(t, 10.0, xv.Num)
	yv, ok := machine.Globals().Get(yName)
	require.True(t, ok)
	assert.Equal(t, 15.0, yv.Num)
}

func TestVM_IfElseTakesLocalScopeBranch(t *testing.T) {
	in := intern.NewInterner()
	machine, _, err := compileAndRun(t, in, `
		var result = 0;
		if 1 < 2 {
			result = 1;
		} else {
			result = 2;
		}
	`)
	require.NoError(t, err)

	resultName := in.InternString("result")
	v, ok := machine.Globals().Get(resultName)
	require.True(t, ok)
	assert.Equal(t, 1.0, v.Num)
}

func TestVM_WhileLoopCountsToThree(t *testing.T) {
	in := intern.NewInterner()
	machine, _, err := compileAndRun(t, in, `
		var i = 0;
		while i < 3 {
			i = i + 1;
		}
	`)
	require.NoError(t, err)

	iName := in.InternString("i")
	v, ok := machine.Globals().Get(iName)
	require.True(t, ok)
	assert.Equal(t, 3.0, v.Num)
}

func TestVM_LogicalShortCircuitAvoidsSideEffect(t *testing.T) {
	in := intern.NewInterner()
	machine, _, err := compileAndRun(t, in, `
		var touched = false;
		var ignored = false and (touched = true);
	`)
	require.NoError(t, err)

	touchedName := in.InternString("touched")
	v, ok := machine.Globals().Get(touchedName)
	require.True(t, ok)
	assert.False(t, v.Bool)
}

func TestVM_AssignmentTypeMismatchErrors(t *testing.T) {
	_, _, err := compileAndRun(t, intern.NewInterner(), `
		var x = 1;
		x = true;
	`)
	require.Error(t, err)
}

func TestVM_FunctionDeclarationIsACompileError(t *testing.T) {
	in := intern.NewInterner()
	p := parser.New([]byte(`function f() { return 1; }`), in)
	prog, perrs := p.Parse()
	require.Empty(t, perrs)

	_, cerrs := compiler.Compile(prog, in)
	require.NotEmpty(t, cerrs)
}

func TestVM_NonPrintCallIsACompileError(t *testing.T) {
	in := intern.NewInterner()
	p := parser.New([]byte(`foo(1);`), in)
	prog, perrs := p.Parse()
	require.Empty(t, perrs)

	_, cerrs := compiler.Compile(prog, in)
	require.NotEmpty(t, cerrs)
}

func TestVM_PrintWritesToStdout(t *testing.T) {
	in := intern.NewInterner()
	p := parser.New([]byte(`print(1 + 2, "hi");`), in)
	prog, perrs := p.Parse()
	require.Empty(t, perrs)

	chunk, cerrs := compiler.Compile(prog, in)
	require.Empty(t, cerrs)

	var out bytes.Buffer
	machine := vm.NewWithStdout(&out)
	_, err := machine.Run(chunk)
	require.NoError(t, err)
	assert.Equal(t, "3.000000 hi\n", out.String())
}
