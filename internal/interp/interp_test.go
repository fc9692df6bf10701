package interp_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"charm/internal/intern"
	"charm/internal/interp"
	"charm/internal/parser"
)

func run(t *testing.T, src string) (string, error) {
	t.Helper()
	in := intern.NewInterner()
	p := parser.New([]byte(src), in)
	prog, errs := p.Parse()
	require.Empty(t, errs, "parse errors: %v", errs)

	var out strings.Builder
	it := interp.New(&out, in)
	err := it.Run(prog)
	return out.String(), err
}

func TestRun_ArithmeticAndPrint(t *testing.T) {
	out, err := run(t, `
		var x = 1 + 2 * 3;
		print(x);
	`)
	require.NoError(t, err)
	assert.Contains(t, out, "7.000000")
}

func TestRun_IfElse(t *testing.T) {
	out, err := run(t, `
		if 1 < 2 {
			print("yes");
		} else {
			print("no");
		}
	`)
	require.NoError(t, err)
	assert.Equal(t, "yes\n", out)
}

func TestRun_WhileLoop(t *testing.T) {
	out, err := run(t, `
		var i = 0;
		while i < 3 {
			print(i);
			i = i + 1;
		}
	`)
	require.NoError(t, err)
	assert.Equal(t, "0.000000\n1.000000\n2.000000\n", out)
}

func TestRun_ForDesugarsToWhile(t *testing.T) {
	out, err := run(t, `
		for var i = 0; i < 3; i = i + 1 {
			print(i);
		}
	`)
	require.NoError(t, err)
	assert.Equal(t, "0.000000\n1.000000\n2.000000\n", out)
}

func TestRun_FunctionCallAndReturn(t *testing.T) {
	out, err := run(t, `
		function add(a, b) {
			return a + b;
		}
		print(add(2, 3));
	`)
	require.NoError(t, err)
	assert.Equal(t, "5.000000\n", out)
}

func TestRun_FunctionIsClosureLess(t *testing.T) {
	// f cannot see g's local y: it only sees its own params and globals.
	_, err := run(t, `
		function f() {
			return y;
		}
		function g() {
			var y = 1;
			return f();
		}
		print(g());
	`)
	require.Error(t, err)
	var rerr *interp.RuntimeError
	require.ErrorAs(t, err, &rerr)
}

func TestRun_LogicalShortCircuit(t *testing.T) {
	out, err := run(t, `
		function boom() {
			print("should not run");
			return true;
		}
		print(false and boom());
		print(true or boom());
	`)
	require.NoError(t, err)
	assert.Equal(t, "false\ntrue\n", out)
}

func TestRun_AssignmentTypeMismatchErrors(t *testing.T) {
	_, err := run(t, `
		var x = 1;
		x = "oops";
	`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "x")
}

func TestRun_AssignmentToNilAcceptsAnyType(t *testing.T) {
	out, err := run(t, `
		var x;
		x = "now a string";
		print(x);
	`)
	require.NoError(t, err)
	assert.Equal(t, "now a string\n", out)
}

func TestRun_UndefinedVariableErrors(t *testing.T) {
	_, err := run(t, `print(missing);`)
	require.Error(t, err)
	var rerr *interp.RuntimeError
	require.ErrorAs(t, err, &rerr)
}

func TestRun_CrossTypeEqualityErrors(t *testing.T) {
	_, err := run(t, `print(1 == "1");`)
	require.Error(t, err)
}

func TestRun_NilLiteralPrints(t *testing.T) {
	out, err := run(t, `print(nil);`)
	require.NoError(t, err)
	assert.Equal(t, "<NIL>\n", out)
}

func TestRun_IfConditionMustBeBool(t *testing.T) {
	_, err := run(t, `if 1 { print(true); }`)
	require.Error(t, err)
	var rerr *interp.RuntimeError
	require.ErrorAs(t, err, &rerr)
}

func TestRun_WhileConditionMustBeBool(t *testing.T) {
	_, err := run(t, `while nil { print(true); }`)
	require.Error(t, err)
	var rerr *interp.RuntimeError
	require.ErrorAs(t, err, &rerr)
}
