package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"charm/internal/bytecode"
	"charm/internal/compiler"
	"charm/internal/intern"
	"charm/internal/parser"
)

func compile(t *testing.T, src string) (*bytecode.Chunk, []error) {
	t.Helper()
	in := intern.NewInterner()
	p := parser.New([]byte(src), in)
	prog, perrs := p.Parse()
	require.Empty(t, perrs)
	return compiler.Compile(prog, in)
}

func TestCompile_EndsInOpReturn(t *testing.T) {
	chunk, errs := compile(t, `var x = 1;`)
	require.Empty(t, errs)
	require.Greater(t, chunk.Len(), 0)
	assert.Equal(t, bytecode.OpReturn, bytecode.Op(chunk.CodeAt(chunk.Len()-1)))
}

func TestCompile_ExprStatementIsFollowedByPop(t *testing.T) {
	chunk, errs := compile(t, `1 + 2;`)
	require.Empty(t, errs)
	// CONSTANT idx, CONSTANT idx, ADD, POP, RETURN
	ops := opcodesOf(chunk)
	assert.Contains(t, ops, bytecode.OpPop)
	assert.Contains(t, ops, bytecode.OpAdd)
}

func TestCompile_TooManyLocalsErrors(t *testing.T) {
	var src string
	src += "{\n"
	for i := 0; i < 257; i++ {
		src += "var v" + itoa(i) + " = 0;\n"
	}
	src += "}\n"
	_, errs := compile(t, src)
	require.NotEmpty(t, errs)
}

func TestCompile_SelfReferentialInitializerErrors(t *testing.T) {
	_, errs := compile(t, `
		{
			var x = x;
		}
	`)
	require.NotEmpty(t, errs)
}

func TestCompile_FunctionDeclUnsupported(t *testing.T) {
	_, errs := compile(t, `function f() { return 1; }`)
	require.NotEmpty(t, errs)
}

func TestCompile_ReturnStmtUnsupported(t *testing.T) {
	_, errs := compile(t, `return 1;`)
	require.NotEmpty(t, errs)
}

func TestCompile_NonPrintCallExprUnsupported(t *testing.T) {
	_, errs := compile(t, `foo(1);`)
	require.NotEmpty(t, errs)
}

func TestCompile_PrintCallCompilesToOpPrint(t *testing.T) {
	chunk, errs := compile(t, `print(1, 2);`)
	require.Empty(t, errs)
	require.Contains(t, opcodesOf(chunk), bytecode.OpPrint)
}

func opcodesOf(c *bytecode.Chunk) []bytecode.Op {
	var ops []bytecode.Op
	offset := 0
	for offset < c.Len() {
		op := bytecode.Op(c.CodeAt(offset))
		ops = append(ops, op)
		offset += operandWidth(op) + 1
	}
	return ops
}

func operandWidth(op bytecode.Op) int {
	switch op {
	case bytecode.OpConstant, bytecode.OpDefineGlobal, bytecode.OpGetGlobal,
		bytecode.OpSetGlobal, bytecode.OpGetLocal, bytecode.OpSetLocal,
		bytecode.OpPrint:
		return 1
	case bytecode.OpJump, bytecode.OpJumpIfFalse, bytecode.OpLoop:
		return 2
	default:
		return 0
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := ""
	for n > 0 {
		digits = string(rune('0'+n%10)) + digits
		n /= 10
	}
	return digits
}
