package interp

import (
	"charm/internal/ast"
	"charm/internal/token"
	"charm/internal/value"
)

func (it *Interpreter) eval(e ast.Expr, frame *Frame) (value.Value, error) {
	switch n := e.(type) {
	case *ast.NilLit:
		return value.Nil(), nil

	case *ast.NumberLit:
		return value.Number(n.Value), nil

	case *ast.BooleanLit:
		return value.Boolean(n.Value), nil

	case *ast.CellLit:
		return value.FromCell(n.Value), nil

	case *ast.Identifier:
		v, ok := frame.Get(n.Name)
		if !ok {
			return value.Nil(), runtimeErrorf(n.Line, "undefined variable '%s'", n.Name)
		}
		return v, nil

	case *ast.Grouping:
		return it.eval(n.Inner, frame)

	case *ast.Unary:
		return it.evalUnary(n, frame)

	case *ast.Binary:
		return it.evalBinary(n, frame)

	case *ast.Assignment:
		v, err := it.eval(n.Value, frame)
		if err != nil {
			return value.Nil(), err
		}
		switch frame.Assign(n.Name, v) {
		case AssignUndefined:
			return value.Nil(), runtimeErrorf(n.Line, "undefined variable '%s'", n.Name)
		case AssignTypeMismatch:
			cur, _ := frame.Get(n.Name)
			return value.Nil(), runtimeErrorf(n.Line, "cannot assign %s to variable '%s' of type %s", v.Kind, n.Name, cur.Kind)
		}
		return v, nil

	case *ast.Call:
		return it.evalCall(n, frame)

	default:
		return value.Nil(), runtimeErrorf(0, "unhandled expression %T", e)
	}
}

func (it *Interpreter) evalUnary(n *ast.Unary, frame *Frame) (value.Value, error) {
	right, err := it.eval(n.Right, frame)
	if err != nil {
		return value.Nil(), err
	}
	switch n.Op {
	case token.Minus:
		if !right.IsNumber() {
			return value.Nil(), runtimeErrorf(n.Line, "operand of unary '-' must be a number")
		}
		return value.Number(-right.Num), nil
	case token.Not:
		if !right.IsBool() {
			return value.Nil(), runtimeErrorf(n.Line, "operand of 'not' must be a bool")
		}
		return value.Boolean(!right.Bool), nil
	default:
		return value.Nil(), runtimeErrorf(n.Line, "unknown unary operator %s", n.Op)
	}
}

// evalBinary. Arithmetic and ordering require Number × Number;
// equality/ordering compare same-typed values only (cross-type is a
// runtime error here, even though the VM's OP_EQUAL tolerates it — see
// DESIGN.md for the deliberate asymmetry). and/or require Bool × Bool
// and short-circuit.
func (it *Interpreter) evalBinary(n *ast.Binary, frame *Frame) (value.Value, error) {
	if n.Op == token.And || n.Op == token.Or {
		return it.evalLogical(n, frame)
	}

	left, err := it.eval(n.Left, frame)
	if err != nil {
		return value.Nil(), err
	}
	right, err := it.eval(n.Right, frame)
	if err != nil {
		return value.Nil(), err
	}

	switch n.Op {
	case token.Plus, token.Minus, token.Star, token.Slash:
		if !left.IsNumber() || !right.IsNumber() {
			return value.Nil(), runtimeErrorf(n.Line, "operands of '%s' must be numbers", n.Op)
		}
		switch n.Op {
		case token.Plus:
			return value.Number(left.Num + right.Num), nil
		case token.Minus:
			return value.Number(left.Num - right.Num), nil
		case token.Star:
			return value.Number(left.Num * right.Num), nil
		default:
			return value.Number(left.Num / right.Num), nil
		}

	case token.Greater, token.GreaterEqual, token.Less, token.LessEqual:
		if !left.IsNumber() || !right.IsNumber() {
			return value.Nil(), runtimeErrorf(n.Line, "operands of '%s' must be numbers", n.Op)
		}
		switch n.Op {
		case token.Greater:
			return value.Boolean(left.Num > right.Num), nil
		case token.GreaterEqual:
			return value.Boolean(left.Num >= right.Num), nil
		case token.Less:
			return value.Boolean(left.Num < right.Num), nil
		default:
			return value.Boolean(left.Num <= right.Num), nil
		}

	case token.EqualEqual, token.BangEqual:
		if left.Kind != right.Kind {
			return value.Nil(), runtimeErrorf(n.Line, "cannot compare %s with %s", left.Kind, right.Kind)
		}
		eq := left.Equal(right)
		if n.Op == token.BangEqual {
			eq = !eq
		}
		return value.Boolean(eq), nil

	default:
		return value.Nil(), runtimeErrorf(n.Line, "unknown binary operator %s", n.Op)
	}
}

func (it *Interpreter) evalLogical(n *ast.Binary, frame *Frame) (value.Value, error) {
	left, err := it.eval(n.Left, frame)
	if err != nil {
		return value.Nil(), err
	}
	if !left.IsBool() {
		return value.Nil(), runtimeErrorf(n.Line, "operands of '%s' must be bool", n.Op)
	}
	if n.Op == token.Or && left.Bool {
		return left, nil
	}
	if n.Op == token.And && !left.Bool {
		return left, nil
	}
	right, err := it.eval(n.Right, frame)
	if err != nil {
		return value.Nil(), err
	}
	if !right.IsBool() {
		return value.Nil(), runtimeErrorf(n.Line, "operands of '%s' must be bool", n.Op)
	}
	return right, nil
}

func (it *Interpreter) evalCall(n *ast.Call, frame *Frame) (value.Value, error) {
	callee, err := it.eval(n.Callee, frame)
	if err != nil {
		return value.Nil(), err
	}

	args := make([]value.Value, len(n.Arguments))
	for i, a := range n.Arguments {
		v, err := it.eval(a, frame)
		if err != nil {
			return value.Nil(), err
		}
		args[i] = v
	}

	switch {
	case callee.IsNative():
		v, err := callee.Native(args)
		if err != nil {
			return value.Nil(), runtimeErrorf(n.Line, "%s", err)
		}
		return v, nil

	case callee.IsFunction():
		fn := callee.Fn
		if len(args) != len(fn.Params) {
			return value.Nil(), runtimeErrorf(n.Line, "'%s' expects %d argument(s), got %d", fn.Name, len(fn.Params), len(args))
		}
		body, ok := fn.Body.(*ast.Block)
		if !ok {
			return value.Nil(), runtimeErrorf(n.Line, "'%s' has no body", fn.Name)
		}
		call := NewFrame(frame.Root())
		for i, p := range fn.Params {
			call.Define(p, args[i])
		}
		ret, _, err := it.execStmts(body.Stmts, call)
		if err != nil {
			return value.Nil(), err
		}
		return ret, nil

	default:
		return value.Nil(), runtimeErrorf(n.Line, "value is not callable")
	}
}
