// Package parser implements the hand-written recursive-descent,
// Pratt-precedence parser described in spec.md §4.2.
package parser

import (
	"fmt"

	"charm/internal/ast"
	"charm/internal/intern"
	"charm/internal/lexer"
	"charm/internal/token"
)

// Error is a parse-time diagnostic: an unexpected token, or — per
// SPEC_FULL.md's decision on open question (a) — an invalid assignment
// target. Errors are recoverable: the parser synchronizes to the next
// statement boundary and keeps going, collecting every Error it finds,
// rather than halting fatally the way the C reference does.
type Error struct {
	Line    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("[line %d] Error: %s", e.Line, e.Message)
}

// Parser turns a token stream into a Program.
type Parser struct {
	lex      *lexer.Lexer
	src      []byte
	interner *intern.Interner

	current  token.Token
	previous token.Token

	errors []error
}

// New constructs a Parser over src, interning identifiers and string
// literals into interner.
func New(src []byte, interner *intern.Interner) *Parser {
	p := &Parser{lex: lexer.New(src), src: src, interner: interner}
	p.advance()
	return p
}

// Parse consumes the whole token stream and returns the resulting
// Program. If any errors were recovered from, they are also returned;
// the Program returned alongside them is a best-effort partial result.
func (p *Parser) Parse() (*ast.Program, []error) {
	prog := &ast.Program{}
	for !p.check(token.EOF) {
		before := len(p.errors)
		prog.Stmts = append(prog.Stmts, p.declaration())
		if len(p.errors) > before {
			p.synchronize()
		}
	}
	return prog, p.errors
}

// ParseExpression parses a single expression followed by EOF, for
// exercising the expression grammar in isolation.
func (p *Parser) ParseExpression() (ast.Expr, []error) {
	expr := p.expression()
	if !p.check(token.EOF) {
		p.errorAt(p.current, "expected end of input after expression")
	}
	return expr, p.errors
}

// --- token plumbing ---

func (p *Parser) advance() {
	p.previous = p.current
	for {
		p.current = p.lex.Next()
		if p.current.Kind == token.Comment {
			continue
		}
		if p.current.Kind == token.Invalid {
			p.errorAt(p.current, "invalid token")
			continue
		}
		break
	}
}

func (p *Parser) check(kind token.Kind) bool {
	return p.current.Kind == kind
}

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(kind token.Kind, message string) token.Token {
	if p.check(kind) {
		tok := p.current
		p.advance()
		return tok
	}
	p.errorAt(p.current, message)
	return p.current
}

func (p *Parser) text(tok token.Token) string {
	return tok.Text(p.src)
}

func (p *Parser) errorAt(tok token.Token, message string) {
	p.errors = append(p.errors, &Error{Line: tok.Line, Message: fmt.Sprintf("%s, found %s", message, tok.Kind)})
}

// synchronize discards tokens until it reaches a likely statement
// boundary, so one parse error doesn't cascade into a flood of
// spurious follow-on errors.
func (p *Parser) synchronize() {
	for !p.check(token.EOF) {
		if p.previous.Kind == token.Semicolon {
			return
		}
		switch p.current.Kind {
		case token.Var, token.Function, token.For, token.If, token.While, token.Return:
			return
		}
		p.advance()
	}
}

// --- declarations & statements ---

func (p *Parser) declaration() ast.Stmt {
	switch {
	case p.match(token.Var):
		return p.varDecl()
	case p.match(token.Function):
		return p.functionDecl()
	default:
		return p.statement()
	}
}

func (p *Parser) varDecl() ast.Stmt {
	nameTok := p.consume(token.Identifier, "expected an identifier after 'var'")
	name := p.interner.InternString(p.text(nameTok))

	var init ast.Expr
	if p.match(token.Equal) {
		init = p.expression()
	}
	p.consume(token.Semicolon, "expected ';' after variable declaration")

	return &ast.VarDecl{Name: name, Init: init}
}

func (p *Parser) functionDecl() ast.Stmt {
	nameTok := p.consume(token.Identifier, "expected a function name")
	name := p.interner.InternString(p.text(nameTok))

	p.consume(token.LeftParen, "expected '(' after function name")
	var params []ast.StringRef
	if !p.check(token.RightParen) {
		for {
			pTok := p.consume(token.Identifier, "expected a parameter name")
			params = append(params, p.interner.InternString(p.text(pTok)))
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.consume(token.RightParen, "expected ')' after parameters")

	p.consume(token.LeftBrace, "expected '{' before function body")
	body := p.block()

	return &ast.FunctionDecl{Name: name, Params: params, Body: body}
}

func (p *Parser) statement() ast.Stmt {
	switch {
	case p.match(token.If):
		return p.ifStmt()
	case p.match(token.While):
		return p.whileStmt()
	case p.match(token.For):
		return p.forStmt()
	case p.match(token.Return):
		return p.returnStmt()
	case p.match(token.LeftBrace):
		return p.block()
	default:
		return p.exprStmt()
	}
}

func (p *Parser) exprStmt() ast.Stmt {
	expr := p.expression()
	p.consume(token.Semicolon, "expected ';' after expression")
	return &ast.ExprStmt{Expr: expr}
}

func (p *Parser) ifStmt() ast.Stmt {
	cond := p.expression()
	p.consume(token.LeftBrace, "expected '{' after if condition")
	then := p.block()

	var elseBranch ast.Stmt
	if p.match(token.Else) {
		switch {
		case p.match(token.If):
			elseBranch = p.ifStmt()
		default:
			p.consume(token.LeftBrace, "expected '{' after else")
			elseBranch = p.block()
		}
	}

	return &ast.If{Cond: cond, Then: then, Else: elseBranch}
}

func (p *Parser) whileStmt() ast.Stmt {
	cond := p.expression()
	p.consume(token.LeftBrace, "expected '{' after while condition")
	body := p.block()
	return &ast.While{Cond: cond, Body: body}
}

// forStmt desugars `for init; cond; incr { block }` into
// `{ init; while cond { block; incr; } }` at parse time, with an
// omitted condition defaulting to `true` and omitted clauses becoming
// empty, per spec.md §4.2.
func (p *Parser) forStmt() ast.Stmt {
	var init ast.Stmt
	switch {
	case p.match(token.Semicolon):
		init = nil
	case p.match(token.Var):
		init = p.varDecl()
	default:
		init = p.exprStmt()
	}

	var cond ast.Expr
	if !p.check(token.Semicolon) {
		cond = p.expression()
	}
	p.consume(token.Semicolon, "expected ';' after loop condition")

	var incr ast.Expr
	if !p.check(token.LeftBrace) {
		incr = p.expression()
	}

	p.consume(token.LeftBrace, "expected '{' to start for-loop body")
	body := p.block()

	return desugarFor(init, cond, incr, body)
}

func desugarFor(init ast.Stmt, cond ast.Expr, incr ast.Expr, body ast.Stmt) ast.Stmt {
	loopBody := body
	if incr != nil {
		loopBody = &ast.Block{Stmts: []ast.Stmt{body, &ast.ExprStmt{Expr: incr}}}
	}

	if cond == nil {
		cond = &ast.BooleanLit{Value: true}
	}

	whileStmt := ast.Stmt(&ast.While{Cond: cond, Body: loopBody})
	if init != nil {
		return &ast.Block{Stmts: []ast.Stmt{init, whileStmt}}
	}
	return &ast.Block{Stmts: []ast.Stmt{whileStmt}}
}

func (p *Parser) returnStmt() ast.Stmt {
	line := p.previous.Line
	var expr ast.Expr
	if !p.check(token.Semicolon) {
		expr = p.expression()
	}
	p.consume(token.Semicolon, "expected ';' after return value")
	return &ast.Return{Expr: expr, Line: line}
}

func (p *Parser) block() *ast.Block {
	var stmts []ast.Stmt
	for !p.check(token.RightBrace) && !p.check(token.EOF) {
		before := len(p.errors)
		stmts = append(stmts, p.declaration())
		if len(p.errors) > before {
			p.synchronize()
		}
	}
	p.consume(token.RightBrace, "expected '}' after block")
	return &ast.Block{Stmts: stmts}
}

// --- expressions ---

func (p *Parser) expression() ast.Expr {
	return p.assignment()
}

func (p *Parser) assignment() ast.Expr {
	expr := p.logicOr()

	if p.match(token.Equal) {
		line := p.previous.Line
		value := p.assignment()

		ident, ok := expr.(*ast.Identifier)
		if !ok {
			p.errorAt(p.previous, "invalid assignment target")
			return expr
		}
		return &ast.Assignment{Name: ident.Name, Value: value, Line: line}
	}

	return expr
}

func (p *Parser) logicOr() ast.Expr {
	expr := p.logicAnd()
	for p.match(token.Or) {
		op := p.previous
		right := p.logicAnd()
		expr = &ast.Binary{Op: op.Kind, Left: expr, Right: right, Line: op.Line}
	}
	return expr
}

func (p *Parser) logicAnd() ast.Expr {
	expr := p.equality()
	for p.match(token.And) {
		op := p.previous
		right := p.equality()
		expr = &ast.Binary{Op: op.Kind, Left: expr, Right: right, Line: op.Line}
	}
	return expr
}

func (p *Parser) equality() ast.Expr {
	expr := p.comparison()
	for p.match(token.EqualEqual, token.BangEqual) {
		op := p.previous
		right := p.comparison()
		expr = &ast.Binary{Op: op.Kind, Left: expr, Right: right, Line: op.Line}
	}
	return expr
}

func (p *Parser) comparison() ast.Expr {
	expr := p.term()
	for p.match(token.Greater, token.GreaterEqual, token.Less, token.LessEqual) {
		op := p.previous
		right := p.term()
		expr = &ast.Binary{Op: op.Kind, Left: expr, Right: right, Line: op.Line}
	}
	return expr
}

func (p *Parser) term() ast.Expr {
	expr := p.factor()
	for p.match(token.Plus, token.Minus) {
		op := p.previous
		right := p.factor()
		expr = &ast.Binary{Op: op.Kind, Left: expr, Right: right, Line: op.Line}
	}
	return expr
}

func (p *Parser) factor() ast.Expr {
	expr := p.unary()
	for p.match(token.Star, token.Slash) {
		op := p.previous
		right := p.unary()
		expr = &ast.Binary{Op: op.Kind, Left: expr, Right: right, Line: op.Line}
	}
	return expr
}

func (p *Parser) unary() ast.Expr {
	if p.match(token.Not, token.Minus) {
		op := p.previous
		right := p.unary()
		return &ast.Unary{Op: op.Kind, Right: right, Line: op.Line}
	}
	return p.call()
}

func (p *Parser) call() ast.Expr {
	expr := p.primary()
	for p.match(token.LeftParen) {
		expr = p.finishCall(expr)
	}
	return expr
}

func (p *Parser) finishCall(callee ast.Expr) ast.Expr {
	line := p.previous.Line
	var args []ast.Expr
	if !p.check(token.RightParen) {
		for {
			args = append(args, p.expression())
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.consume(token.RightParen, "expected ')' after arguments")
	return &ast.Call{Callee: callee, Arguments: args, Line: line}
}

func (p *Parser) primary() ast.Expr {
	switch {
	case p.match(token.True):
		return &ast.BooleanLit{Value: true}
	case p.match(token.False):
		return &ast.BooleanLit{Value: false}
	case p.match(token.Nil):
		return &ast.NilLit{}
	case p.match(token.Number):
		return &ast.NumberLit{Value: parseNumber(p.text(p.previous))}
	case p.match(token.String):
		sanitized, err := sanitize(p.text(p.previous))
		if err != nil {
			p.errorAt(p.previous, err.Error())
			sanitized = ""
		}
		return &ast.CellLit{Value: p.interner.InternString(sanitized)}
	case p.match(token.Identifier):
		tok := p.previous
		return &ast.Identifier{Name: p.interner.InternString(p.text(tok)), Line: tok.Line}
	case p.match(token.LeftParen):
		inner := p.expression()
		p.consume(token.RightParen, "expected ')' after expression")
		return &ast.Grouping{Inner: inner}
	default:
		p.errorAt(p.current, "expected an expression")
		p.advance()
		return &ast.BooleanLit{Value: false}
	}
}
