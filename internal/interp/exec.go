package interp

import (
	"charm/internal/ast"
	"charm/internal/value"
)

// execStmts runs each statement of stmts in frame in order, stopping
// early if one of them returns. It is used both for a Program's
// top-level statements and for a Block's body.
func (it *Interpreter) execStmts(stmts []ast.Stmt, frame *Frame) (value.Value, bool, error) {
	for _, s := range stmts {
		v, did, err := it.execStmt(s, frame)
		if err != nil || did {
			return v, did, err
		}
	}
	return value.Nil(), false, nil
}

func (it *Interpreter) execStmt(s ast.Stmt, frame *Frame) (value.Value, bool, error) {
	switch n := s.(type) {
	case *ast.ExprStmt:
		_, err := it.eval(n.Expr, frame)
		return value.Nil(), false, err

	case *ast.VarDecl:
		init := value.Nil()
		if n.Init != nil {
			v, err := it.eval(n.Init, frame)
			if err != nil {
				return value.Nil(), false, err
			}
			init = v
		}
		frame.Define(n.Name, init)
		return value.Nil(), false, nil

	case *ast.FunctionDecl:
		fn := &value.Function{Name: n.Name.String(), Params: n.Params, Body: n.Body}
		frame.Define(n.Name, value.FromFunction(fn))
		return value.Nil(), false, nil

	case *ast.Block:
		child := NewFrame(frame)
		return it.execStmts(n.Stmts, child)

	case *ast.If:
		cond, err := it.eval(n.Cond, frame)
		if err != nil {
			return value.Nil(), false, err
		}
		if !cond.IsBool() {
			return value.Nil(), false, runtimeErrorf(lineOfExpr(n.Cond), "condition must be a bool")
		}
		if cond.Bool {
			return it.execStmt(n.Then, frame)
		}
		if n.Else != nil {
			return it.execStmt(n.Else, frame)
		}
		return value.Nil(), false, nil

	case *ast.While:
		for {
			cond, err := it.eval(n.Cond, frame)
			if err != nil {
				return value.Nil(), false, err
			}
			if !cond.IsBool() {
				return value.Nil(), false, runtimeErrorf(lineOfExpr(n.Cond), "condition must be a bool")
			}
			if !cond.Bool {
				return value.Nil(), false, nil
			}
			v, did, err := it.execStmt(n.Body, frame)
			if err != nil || did {
				return v, did, err
			}
		}

	case *ast.Return:
		if n.Expr == nil {
			return value.Nil(), true, nil
		}
		v, err := it.eval(n.Expr, frame)
		if err != nil {
			return value.Nil(), false, err
		}
		return v, true, nil

	default:
		return value.Nil(), false, runtimeErrorf(0, "unhandled statement %T", s)
	}
}

// lineOfExpr extracts the source line of a condition expression for
// runtime-error reporting; literals and groupings carry no line of
// their own, so those fall back to 0, same as internal/compiler's
// identically-shaped helper.
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
