// Package compiler is the single-pass compiler from *ast.Program to a
// *bytecode.Chunk (spec.md §4.4). It covers a strict subset of the
// language the tree-walk interpreter (internal/interp) covers: no
// function declarations, return statements, or general calls — the
// original reference compiler (original_source/src/compiler/compiler.c)
// never grew opcodes for them, and the bytecode opcode table spec.md
// §4.4.1 lists has no OP_CALL. The one exception is calls to print:
// spec.md §8's invariant 5 and scenarios S1-S6 require the VM and the
// tree-walk interpreter to agree on stdout, which is impossible unless
// the VM can itself call print, so compileCall special-cases that one
// callee and compiles it to OP_PRINT. cmd/charmcheck's differential
// corpus is scoped accordingly: print is fair game, user-defined
// functions are not.
package compiler

import (
	"charm/internal/ast"
	"charm/internal/bytecode"
	"charm/internal/intern"
	"charm/internal/token"
	"charm/internal/value"
)

// maxLocals mirrors the VM's STACK_MAX: a local's slot is a single
// byte operand to OP_GET_LOCAL/OP_SET_LOCAL.
const maxLocals = 256

type local struct {
	name  *value.Cell
	depth int // -1 while the initializer is still being compiled
}

// Compiler turns one Program into one Chunk. It is not reusable across
// programs; construct a fresh one per compile.
type Compiler struct {
	chunk    *bytecode.Chunk
	interner *intern.Interner

	locals     []local
	scopeDepth int

	errors []error
}

// New returns a Compiler for a program parsed with interner. The
// compiler interns nothing itself: it uses the identifier Cells the
// parser already interned, which compare equal by pointer.
func New(interner *intern.Interner) *Compiler {
	return &Compiler{chunk: bytecode.NewChunk(), interner: interner}
}

// Compile compiles every statement of p into a single Chunk ending in
// OP_RETURN. Compile errors are collected and returned alongside a
// best-effort Chunk, matching the parser's recoverable-errors style.
func Compile(p *ast.Program, interner *intern.Interner) (*bytecode.Chunk, []error) {
	c := New(interner)
	for _, s := range p.Stmts {
		c.compileStmt(s)
	}
	c.emitOp(bytecode.OpReturn, 0)
	return c.chunk, c.errors
}

func (c *Compiler) fail(line int, format string, args ...any) {
	c.errors = append(c.errors, errorf(line, format, args...))
}

// --- byte/chunk emission ---

func (c *Compiler) emitByte(b byte, line int) int {
	return c.chunk.Write(b, line)
}

func (c *Compiler) emitOp(op bytecode.Op, line int) int {
	return c.chunk.WriteOp(op, line)
}

func (c *Compiler) emitOpByte(op bytecode.Op, operand byte, line int) {
	c.emitOp(op, line)
	c.emitByte(operand, line)
}

// emitJump emits a jump opcode followed by a two-byte placeholder
// operand, and returns the offset of the first placeholder byte for a
// later patchJump call.
func (c *Compiler) emitJump(op bytecode.Op, line int) int {
	c.emitOp(op, line)
	c.emitByte(0xff, line)
	c.emitByte(0xff, line)
	return c.chunk.Len() - 2
}

// patchJump backfills the two-byte operand at offset with the distance
// from just after it to the chunk's current end.
func (c *Compiler) patchJump(offset int, line int) {
	jump := c.chunk.Len() - offset - 2
	if jump > 0xffff {
		c.fail(line, "jump distance too large")
		return
	}
	c.chunk.PatchByte(offset, byte(jump>>8))
	c.chunk.PatchByte(offset+1, byte(jump))
}

// emitLoop emits OP_LOOP with the back-distance to loopStart.
func (c *Compiler) emitLoop(loopStart int, line int) {
	c.emitOp(bytecode.OpLoop, line)
	jump := c.chunk.Len() - loopStart + 2
	if jump > 0xffff {
		c.fail(line, "loop body too large")
		return
	}
	c.emitByte(byte(jump>>8), line)
	c.emitByte(byte(jump), line)
}

func (c *Compiler) makeConstant(v value.Value, line int) byte {
	idx := c.chunk.AddConstant(v)
	if idx >= bytecode.MaxConstants {
		c.fail(line, "too many constants in one chunk")
		return 0
	}
	return byte(idx)
}

func (c *Compiler) emitConstant(v value.Value, line int) {
	c.emitOpByte(bytecode.OpConstant, c.makeConstant(v, line), line)
}

func (c *Compiler) identifierConstant(name *value.Cell, line int) byte {
	return c.makeConstant(value.FromCell(name), line)
}

// --- scope management ---

func (c *Compiler) beginScope() {
	c.scopeDepth++
}

func (c *Compiler) endScope(line int) {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		c.emitOp(bytecode.OpPop, line)
		c.locals = c.locals[:len(c.locals)-1]
	}
}

// declareVariable adds name as a new local of the current scope. At
// global scope it is a no-op: globals are resolved by name through the
// constant pool, not through the locals array.
func (c *Compiler) declareVariable(name *value.Cell, line int) {
	if c.scopeDepth == 0 {
		return
	}
	for i := len(c.locals) - 1; i >= 0; i-- {
		l := c.locals[i]
		if l.depth != -1 && l.depth < c.scopeDepth {
			break
		}
		if l.name == name {
			c.fail(line, "variable '%s' already declared in this scope", name)
			return
		}
	}
	if len(c.locals) >= maxLocals {
		c.fail(line, "too many local variables in one function")
		return
	}
	c.locals = append(c.locals, local{name: name, depth: -1})
}

// defineVariable makes a just-declared variable visible: for a global,
// it emits OP_DEFINE_GLOBAL; for a local, it marks the local's depth as
// initialized (the value is already sitting on the stack at its slot).
func (c *Compiler) defineVariable(name *value.Cell, line int) {
	if c.scopeDepth > 0 {
		c.locals[len(c.locals)-1].depth = c.scopeDepth
		return
	}
	c.emitOpByte(bytecode.OpDefineGlobal, c.identifierConstant(name, line), line)
}

// resolveLocal searches innermost-out for name, returning its stack
// slot or -1 if name is not a local (and is therefore assumed global).
func (c *Compiler) resolveLocal(name *value.Cell, line int) int {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name == name {
			if c.locals[i].depth == -1 {
				c.fail(line, "cannot reference '%s' in its own initializer", name)
			}
			return i
		}
	}
	return -1
}

// --- statements ---

func (c *Compiler) compileStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.ExprStmt:
		c.compileExpr(n.Expr)
		c.emitOp(bytecode.OpPop, lineOfExpr(n.Expr))

	case *ast.VarDecl:
		c.compileVarDecl(n)

	case *ast.Block:
		c.beginScope()
		for _, stmt := range n.Stmts {
			c.compileStmt(stmt)
		}
		c.endScope(0)

	case *ast.If:
		c.compileIf(n)

	case *ast.While:
		c.compileWhile(n)

	case *ast.FunctionDecl:
		c.fail(0, "the bytecode compiler does not support function declarations; use the tree-walk interpreter")

	case *ast.Return:
		c.fail(n.Line, "the bytecode compiler does not support return statements; use the tree-walk interpreter")

	default:
		c.fail(0, "the bytecode compiler does not support %T", s)
	}
}

func (c *Compiler) compileVarDecl(n *ast.VarDecl) {
	c.declareVariable(n.Name, 0)
	if n.Init != nil {
		c.compileExpr(n.Init)
	} else {
		c.emitOp(bytecode.OpNil, 0)
	}
	c.defineVariable(n.Name, 0)
}

func (c *Compiler) compileIf(n *ast.If) {
	c.compileExpr(n.Cond)
	thenJump := c.emitJump(bytecode.OpJumpIfFalse, 0)
	c.emitOp(bytecode.OpPop, 0)
	c.compileStmt(n.Then)

	elseJump := c.emitJump(bytecode.OpJump, 0)
	c.patchJump(thenJump, 0)
	c.emitOp(bytecode.OpPop, 0)

	if n.Else != nil {
		c.compileStmt(n.Else)
	}
	c.patchJump(elseJump, 0)
}

func (c *Compiler) compileWhile(n *ast.While) {
	loopStart := c.chunk.Len()
	c.compileExpr(n.Cond)
	exitJump := c.emitJump(bytecode.OpJumpIfFalse, 0)
	c.emitOp(bytecode.OpPop, 0)
	c.compileStmt(n.Body)
	c.emitLoop(loopStart, 0)

	c.patchJump(exitJump, 0)
	c.emitOp(bytecode.OpPop, 0)
}

// --- expressions ---

func (c *Compiler) compileExpr(e ast.Expr) {
	switch n := e.(type) {
	case *ast.NilLit:
		c.emitOp(bytecode.OpNil, 0)

	case *ast.BooleanLit:
		if n.Value {
			c.emitOp(bytecode.OpTrue, 0)
		} else {
			c.emitOp(bytecode.OpFalse, 0)
		}

	case *ast.NumberLit:
		c.emitConstant(value.Number(n.Value), 0)

	case *ast.CellLit:
		c.emitConstant(value.FromCell(n.Value), 0)

	case *ast.Identifier:
		c.compileNamedVariable(n.Name, n.Line, false, nil)

	case *ast.Grouping:
		c.compileExpr(n.Inner)

	case *ast.Unary:
		c.compileExpr(n.Right)
		switch n.Op {
		case token.Minus:
			c.emitOp(bytecode.OpNegate, n.Line)
		case token.Not:
			c.emitOp(bytecode.OpNot, n.Line)
		default:
			c.fail(n.Line, "unsupported unary operator %s", n.Op)
		}

	case *ast.Binary:
		c.compileBinary(n)

	case *ast.Assignment:
		c.compileNamedVariable(n.Name, n.Line, true, n.Value)

	case *ast.Call:
		c.compileCall(n)

	default:
		c.fail(0, "the bytecode compiler does not support %T", e)
	}
}

// compileNamedVariable handles both a bare read (assign == false) and
// the write half of an assignment (assign == true, valueExpr non-nil),
// resolving name as a local slot when possible and a global by name
// otherwise — the same resolve-then-branch shape as the original
// reference's named_variable.
func (c *Compiler) compileNamedVariable(name *value.Cell, line int, assign bool, valueExpr ast.Expr) {
	slot := c.resolveLocal(name, line)
	if assign {
		c.compileExpr(valueExpr)
		if slot != -1 {
			c.emitOpByte(bytecode.OpSetLocal, byte(slot), line)
		} else {
			c.emitOpByte(bytecode.OpSetGlobal, c.identifierConstant(name, line), line)
		}
		return
	}
	if slot != -1 {
		c.emitOpByte(bytecode.OpGetLocal, byte(slot), line)
	} else {
		c.emitOpByte(bytecode.OpGetGlobal, c.identifierConstant(name, line), line)
	}
}

// compileBinary compiles and/or as short-circuiting jumps (spec.md's
// Open Question (d): JUMP_IF_FALSE peeks rather than pops, relying on
// the POP that follows it in both branches — preserved exactly as the
// original compiles it) and every other binary operator as
// eval-both-sides-then-emit-op.
func (c *Compiler) compileBinary(n *ast.Binary) {
	if n.Op == token.And {
		c.compileExpr(n.Left)
		endJump := c.emitJump(bytecode.OpJumpIfFalse, n.Line)
		c.emitOp(bytecode.OpPop, n.Line)
		c.compileExpr(n.Right)
		c.patchJump(endJump, n.Line)
		return
	}
	if n.Op == token.Or {
		c.compileExpr(n.Left)
		elseJump := c.emitJump(bytecode.OpJumpIfFalse, n.Line)
		endJump := c.emitJump(bytecode.OpJump, n.Line)
		c.patchJump(elseJump, n.Line)
		c.emitOp(bytecode.OpPop, n.Line)
		c.compileExpr(n.Right)
		c.patchJump(endJump, n.Line)
		return
	}

	c.compileExpr(n.Left)
	c.compileExpr(n.Right)
	switch n.Op {
	case token.Plus:
		c.emitOp(bytecode.OpAdd, n.Line)
	case token.Minus:
		c.emitOp(bytecode.OpSub, n.Line)
	case token.Star:
		c.emitOp(bytecode.OpMul, n.Line)
	case token.Slash:
		c.emitOp(bytecode.OpDiv, n.Line)
	case token.EqualEqual:
		c.emitOp(bytecode.OpEqual, n.Line)
	case token.BangEqual:
		c.emitOp(bytecode.OpEqual, n.Line)
		c.emitOp(bytecode.OpNot, n.Line)
	case token.Greater:
		c.emitOp(bytecode.OpGreater, n.Line)
	case token.GreaterEqual:
		c.emitOp(bytecode.OpLess, n.Line)
		c.emitOp(bytecode.OpNot, n.Line)
	case token.Less:
		c.emitOp(bytecode.OpLess, n.Line)
	case token.LessEqual:
		c.emitOp(bytecode.OpGreater, n.Line)
		c.emitOp(bytecode.OpNot, n.Line)
	default:
		c.fail(n.Line, "unsupported binary operator %s", n.Op)
	}
}

// compileCall only special-cases calls to the `print` native: general
// user-function calls have no opcode to compile to (see the package
// doc). Every argument is compiled left-to-right, then OP_PRINT pops
// exactly that many values and pushes Nil, so callers see a Call
// expression that behaves like any other: one value produced.
func (c *Compiler) compileCall(n *ast.Call) {
	ident, ok := n.Callee.(*ast.Identifier)
	if !ok || ident.Name.String() != "print" {
		c.fail(n.Line, "the bytecode compiler only supports calls to 'print'; use the tree-walk interpreter for user-defined functions")
		return
	}
	if len(n.Arguments) > 0xff {
		c.fail(n.Line, "too many arguments to print")
		return
	}
	for _, arg := range n.Arguments {
		c.compileExpr(arg)
	}
	c.emitOpByte(bytecode.OpPrint, byte(len(n.Arguments)), n.Line)
}

func lineOfExpr(e ast.Expr) int {
	switch n := e.(type) {
	case *ast.Identifier:
		return n.Line
	case *ast.Binary:
		return n.Line
	case *ast.Unary:
		return n.Line
	case *ast.Assignment:
		return n.Line
	case *ast.Call:
		return n.Line
	default:
		return 0
	}
}
