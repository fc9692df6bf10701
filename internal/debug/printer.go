// Package debug holds the AST pretty-printer and bytecode disassembler.
// Neither's output format is contract (spec.md §1): they exist for
// --dump-ast/--dump-bc. The printer's output re-parses to an equivalent
// AST (see PrintProgram).
package debug

import (
	"fmt"
	"strconv"
	"strings"

	"charm/internal/ast"
	"charm/internal/bytecode"
	"charm/internal/token"
)

// PrintProgram renders p as charm source text. Re-parsing the result
// yields a Program that prints identically (for-loop desugaring has
// already happened by the time an AST exists, so there is no special
// case for it here).
func PrintProgram(p *ast.Program) string {
	var sb strings.Builder
	for _, s := range p.Stmts {
		printStmt(&sb, s, 0)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func indent(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("    ", depth))
}

func printStmt(sb *strings.Builder, s ast.Stmt, depth int) {
	indent(sb, depth)
	switch n := s.(type) {
	case *ast.ExprStmt:
		printExpr(sb, n.Expr)
		sb.WriteString(";")
	case *ast.VarDecl:
		sb.WriteString("var ")
		sb.WriteString(n.Name.String())
		if n.Init != nil {
			sb.WriteString(" = ")
			printExpr(sb, n.Init)
		}
		sb.WriteString(";")
	case *ast.FunctionDecl:
		sb.WriteString("function ")
		sb.WriteString(n.Name.String())
		sb.WriteByte('(')
		for i, p := range n.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(p.String())
		}
		sb.WriteString(") ")
		printStmt(sb, n.Body, depth)
	case *ast.Block:
		sb.WriteString("{\n")
		for _, stmt := range n.Stmts {
			printStmt(sb, stmt, depth+1)
			sb.WriteByte('\n')
		}
		indent(sb, depth)
		sb.WriteString("}")
	case *ast.If:
		sb.WriteString("if ")
		printExpr(sb, n.Cond)
		sb.WriteString(" ")
		printStmt(sb, n.Then, depth)
		if n.Else != nil {
			sb.WriteString(" else ")
			printStmt(sb, n.Else, depth)
		}
	case *ast.While:
		sb.WriteString("while ")
		printExpr(sb, n.Cond)
		sb.WriteString(" ")
		printStmt(sb, n.Body, depth)
	case *ast.Return:
		sb.WriteString("return")
		if n.Expr != nil {
			sb.WriteString(" ")
			printExpr(sb, n.Expr)
		}
		sb.WriteString(";")
	default:
		sb.WriteString(fmt.Sprintf("<unknown stmt %T>", s))
	}
}

func printExpr(sb *strings.Builder, e ast.Expr) {
	switch n := e.(type) {
	case *ast.NilLit:
		sb.WriteString("nil")
	case *ast.NumberLit:
		sb.WriteString(strconv.FormatFloat(n.Value, 'g', -1, 64))
	case *ast.BooleanLit:
		if n.Value {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case *ast.CellLit:
		sb.WriteByte('"')
		sb.WriteString(escape(n.Value.String()))
		sb.WriteByte('"')
	case *ast.Identifier:
		sb.WriteString(n.Name.String())
	case *ast.Binary:
		// No parentheses of its own: source parentheses survive as
		// Grouping nodes, so the printed text re-parses to the same tree.
		printExpr(sb, n.Left)
		sb.WriteString(" " + opText(n.Op) + " ")
		printExpr(sb, n.Right)
	case *ast.Unary:
		sb.WriteString(opText(n.Op))
		sb.WriteString(" ")
		printExpr(sb, n.Right)
	case *ast.Grouping:
		sb.WriteByte('(')
		printExpr(sb, n.Inner)
		sb.WriteByte(')')
	case *ast.Assignment:
		sb.WriteString(n.Name.String())
		sb.WriteString(" = ")
		printExpr(sb, n.Value)
	case *ast.Call:
		printExpr(sb, n.Callee)
		sb.WriteByte('(')
		for i, arg := range n.Arguments {
			if i > 0 {
				sb.WriteString(", ")
			}
			printExpr(sb, arg)
		}
		sb.WriteByte(')')
	default:
		sb.WriteString(fmt.Sprintf("<unknown expr %T>", e))
	}
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\r", `\r`, "\t", `\t`)
	return r.Replace(s)
}

func opText(k token.Kind) string {
	switch k {
	case token.Plus:
		return "+"
	case token.Minus:
		return "-"
	case token.Star:
		return "*"
	case token.Slash:
		return "/"
	case token.EqualEqual:
		return "=="
	case token.BangEqual:
		return "!="
	case token.Greater:
		return ">"
	case token.GreaterEqual:
		return ">="
	case token.Less:
		return "<"
	case token.LessEqual:
		return "<="
	case token.And:
		return "and"
	case token.Or:
		return "or"
	case token.Not:
		return "not"
	default:
		return k.String()
	}
}

// DisassembleChunk renders every instruction in c under the given name,
// in the spirit of the reference's debug_disassemble_chunk.
func DisassembleChunk(c *bytecode.Chunk, name string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "== %s ==\n", name)
	offset := 0
	for offset < c.Len() {
		offset = disassembleInstruction(&sb, c, offset)
	}
	return sb.String()
}

func disassembleInstruction(sb *strings.Builder, c *bytecode.Chunk, offset int) int {
	fmt.Fprintf(sb, "%04d ", offset)

	op := bytecode.Op(c.CodeAt(offset))
	switch op {
	case bytecode.OpConstant:
		return constantInstruction(sb, "OP_CONSTANT", c, offset)
	case bytecode.OpNil:
		return simpleInstruction(sb, "OP_NIL", offset)
	case bytecode.OpTrue:
		return simpleInstruction(sb, "OP_TRUE", offset)
	case bytecode.OpFalse:
		return simpleInstruction(sb, "OP_FALSE", offset)
	case bytecode.OpPop:
		return simpleInstruction(sb, "OP_POP", offset)
	case bytecode.OpNegate:
		return simpleInstruction(sb, "OP_NEGATE", offset)
	case bytecode.OpNot:
		return simpleInstruction(sb, "OP_NOT", offset)
	case bytecode.OpAdd:
		return simpleInstruction(sb, "OP_ADD", offset)
	case bytecode.OpSub:
		return simpleInstruction(sb, "OP_SUB", offset)
	case bytecode.OpMul:
		return simpleInstruction(sb, "OP_MUL", offset)
	case bytecode.OpDiv:
		return simpleInstruction(sb, "OP_DIV", offset)
	case bytecode.OpEqual:
		return simpleInstruction(sb, "OP_EQUAL", offset)
	case bytecode.OpGreater:
		return simpleInstruction(sb, "OP_GREATER", offset)
	case bytecode.OpLess:
		return simpleInstruction(sb, "OP_LESS", offset)
	case bytecode.OpDefineGlobal:
		return constantInstruction(sb, "OP_DEFINE_GLOBAL", c, offset)
	case bytecode.OpGetGlobal:
		return constantInstruction(sb, "OP_GET_GLOBAL", c, offset)
	case bytecode.OpSetGlobal:
		return constantInstruction(sb, "OP_SET_GLOBAL", c, offset)
	case bytecode.OpGetLocal:
		return byteInstruction(sb, "OP_GET_LOCAL", c, offset)
	case bytecode.OpSetLocal:
		return byteInstruction(sb, "OP_SET_LOCAL", c, offset)
	case bytecode.OpJump:
		return jumpInstruction(sb, "OP_JUMP", 1, c, offset)
	case bytecode.OpJumpIfFalse:
		return jumpInstruction(sb, "OP_JUMP_IF_FALSE", 1, c, offset)
	case bytecode.OpLoop:
		return jumpInstruction(sb, "OP_LOOP", -1, c, offset)
	case bytecode.OpPrint:
		return byteInstruction(sb, "OP_PRINT", c, offset)
	case bytecode.OpReturn:
		return simpleInstruction(sb, "OP_RETURN", offset)
	default:
		fmt.Fprintf(sb, "Unknown opcode %d\n", op)
		return offset + 1
	}
}

func simpleInstruction(sb *strings.Builder, name string, offset int) int {
	fmt.Fprintf(sb, "%s\n", name)
	return offset + 1
}

func byteInstruction(sb *strings.Builder, name string, c *bytecode.Chunk, offset int) int {
	slot := c.CodeAt(offset + 1)
	fmt.Fprintf(sb, "%-16s %4d\n", name, slot)
	return offset + 2
}

func constantInstruction(sb *strings.Builder, name string, c *bytecode.Chunk, offset int) int {
	idx := c.CodeAt(offset + 1)
	val := c.ConstantAt(int(idx))
	fmt.Fprintf(sb, "%-16s %4d '%s'\n", name, idx, val.String())
	return offset + 2
}

func jumpInstruction(sb *strings.Builder, name string, sign int, c *bytecode.Chunk, offset int) int {
	hi := int(c.CodeAt(offset + 1))
	lo := int(c.CodeAt(offset + 2))
	jump := hi<<8 | lo
	fmt.Fprintf(sb, "%-16s %4d -> %d\n", name, offset, offset+3+sign*jump)
	return offset + 3
}
