// Package ast defines the expression and statement node types produced
// by the parser. Nodes are heap-allocated, owned by the Program they
// belong to, and immutable after construction.
package ast

import (
	"charm/internal/token"
	"charm/internal/value"
)

// StringRef is a reference to an interned string: the identifier and
// string-literal payload types throughout the AST. Equal bytes always
// mean equal pointer (see internal/intern), so StringRef may be
// compared with == wherever that matters.
type StringRef = *value.Cell

// Expr is any expression node.
type Expr interface {
	exprNode()
}

// Stmt is any statement node.
type Stmt interface {
	stmtNode()
}

// Program owns every top-level statement parsed from one source file.
type Program struct {
	Stmts []Stmt
}

// --- Expressions ---

// NilLit is the `nil` literal. spec.md's formal grammar (§4.2) omits it
// from `primary`, but the value model has a Nil case and the original
// C source's own grammar comment includes `"nil"` in primary — this
// restores that dropped production (see DESIGN.md).
type NilLit struct{}

type NumberLit struct {
	Value float64
}

type BooleanLit struct {
	Value bool
}

// CellLit is a string literal: its payload is already interned.
type CellLit struct {
	Value StringRef
}

type Identifier struct {
	Name StringRef
	// Line carries the token's source line for runtime-error reporting;
	// spec.md doesn't track full source locations, just enough to name
	// where an undefined-variable error happened.
	Line int
}

type Binary struct {
	Op    token.Kind
	Left  Expr
	Right Expr
	Line  int
}

type Unary struct {
	Op    token.Kind
	Right Expr
	Line  int
}

type Grouping struct {
	Inner Expr
}

type Assignment struct {
	Name  StringRef
	Value Expr
	Line  int
}

type Call struct {
	Callee    Expr
	Arguments []Expr
	Line      int
}

func (*NilLit) exprNode()     {}
func (*NumberLit) exprNode()  {}
func (*BooleanLit) exprNode() {}
func (*CellLit) exprNode()    {}
func (*Identifier) exprNode() {}
func (*Binary) exprNode()     {}
func (*Unary) exprNode()      {}
func (*Grouping) exprNode()   {}
func (*Assignment) exprNode() {}
func (*Call) exprNode()       {}

// --- Statements ---

type ExprStmt struct {
	Expr Expr
}

type VarDecl struct {
	Name StringRef
	Init Expr // nil if the declaration had no initializer
}

type FunctionDecl struct {
	Name   StringRef
	Params []StringRef
	Body   Stmt // always a *Block
}

type Block struct {
	Stmts []Stmt
}

type If struct {
	Cond Expr
	Then Stmt
	Else Stmt // nil if there is no else branch
}

type While struct {
	Cond Expr
	Body Stmt
}

type Return struct {
	Expr Expr // nil for a bare `return;`
	Line int
}

func (*ExprStmt) stmtNode()     {}
func (*VarDecl) stmtNode()      {}
func (*FunctionDecl) stmtNode() {}
func (*Block) stmtNode()        {}
func (*If) stmtNode()           {}
func (*While) stmtNode()        {}
func (*Return) stmtNode()       {}
