// Package vm is the bytecode backend: a straight stack machine that
// interprets an *bytecode.Chunk (spec.md §4.4). It implements a strict
// subset of what internal/interp implements — see internal/compiler's
// package doc for why: the reference compiler this was grounded on
// never grew opcodes for function declarations or general calls, so
// neither does this VM. print is the one exception: OP_PRINT exists
// solely so the two backends can be compared on stdout.
package vm

import (
	"fmt"
	"io"
	"os"

	"charm/internal/bytecode"
	"charm/internal/intern"
	"charm/internal/value"
)

// stackMax mirrors the original reference's STACK_MAX.
const stackMax = 256

// VM executes one Chunk per Run call. Run resets the stack and the
// instruction pointer; the globals table persists across calls.
type VM struct {
	chunk   *bytecode.Chunk
	ip      int
	stack   [stackMax]value.Value
	sp      int
	globals *intern.Table
	stdout  io.Writer
}

// New returns a VM with an empty globals table, printing OP_PRINT
// output to os.Stdout.
func New() *VM {
	return &VM{globals: intern.NewTable(), stdout: os.Stdout}
}

// NewWithStdout is New with an explicit writer, so a caller (notably
// internal/engine's two-backend equivalence check) can capture output
// instead of letting it go to the process's stdout.
func NewWithStdout(w io.Writer) *VM {
	return &VM{globals: intern.NewTable(), stdout: w}
}

// Globals exposes the post-run globals table (used by
// internal/engine's differential comparison against the tree-walk
// interpreter's root frame).
func (vm *VM) Globals() *intern.Table {
	return vm.globals
}

// Run executes chunk to completion and returns the final value left on
// the stack by OP_RETURN, if any (Nil otherwise), or the first
// RuntimeError encountered.
func (vm *VM) Run(chunk *bytecode.Chunk) (value.Value, error) {
	vm.chunk = chunk
	vm.ip = 0
	vm.sp = 0

	for {
		line := vm.chunk.LineAt(vm.ip)
		op := bytecode.Op(vm.readByte())

		switch op {
		case bytecode.OpConstant:
			vm.push(vm.chunk.ConstantAt(int(vm.readByte())))

		case bytecode.OpNil:
			vm.push(value.Nil())

		case bytecode.OpTrue:
			vm.push(value.Boolean(true))

		case bytecode.OpFalse:
			vm.push(value.Boolean(false))

		case bytecode.OpPop:
			if err := vm.requireNonEmpty(line, "OP_POP"); err != nil {
				return value.Nil(), err
			}
			vm.pop()

		case bytecode.OpNegate:
			v, err := vm.popNumber(line, "unary '-'")
			if err != nil {
				return value.Nil(), err
			}
			vm.push(value.Number(-v))

		case bytecode.OpNot:
			v, err := vm.popBool(line, "'not'")
			if err != nil {
				return value.Nil(), err
			}
			vm.push(value.Boolean(!v))

		case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv:
			if err := vm.binaryNumberOp(op, line); err != nil {
				return value.Nil(), err
			}

		case bytecode.OpEqual:
			if err := vm.requireStackDepth(line, 2, "OP_EQUAL"); err != nil {
				return value.Nil(), err
			}
			b := vm.pop()
			a := vm.pop()
			vm.push(value.Boolean(a.Equal(b)))

		case bytecode.OpGreater, bytecode.OpLess:
			if err := vm.binaryCompareOp(op, line); err != nil {
				return value.Nil(), err
			}

		case bytecode.OpDefineGlobal:
			name := vm.readGlobalName()
			if err := vm.requireNonEmpty(line, "OP_DEFINE_GLOBAL"); err != nil {
				return value.Nil(), err
			}
			vm.globals.Set(name, vm.pop())

		case bytecode.OpGetGlobal:
			name := vm.readGlobalName()
			v, ok := vm.globals.Get(name)
			if !ok {
				return value.Nil(), runtimeErrorf(line, "undefined variable '%s'", name)
			}
			vm.push(v)

		case bytecode.OpSetGlobal:
			name := vm.readGlobalName()
			if err := vm.requireNonEmpty(line, "OP_SET_GLOBAL"); err != nil {
				return value.Nil(), err
			}
			v := vm.peek(0)
			cur, ok := vm.globals.Get(name)
			if !ok {
				return value.Nil(), runtimeErrorf(line, "undefined variable '%s'", name)
			}
			if !cur.IsNil() && cur.Kind != v.Kind {
				return value.Nil(), runtimeErrorf(line, "cannot assign %s to variable '%s' of type %s", v.Kind, name, cur.Kind)
			}
			vm.globals.Set(name, v)

		case bytecode.OpGetLocal:
			slot := int(vm.readByte())
			if err := vm.requireSlot(line, slot); err != nil {
				return value.Nil(), err
			}
			vm.push(vm.stack[slot])

		case bytecode.OpSetLocal:
			slot := int(vm.readByte())
			if err := vm.requireSlot(line, slot); err != nil {
				return value.Nil(), err
			}
			if err := vm.requireNonEmpty(line, "OP_SET_LOCAL"); err != nil {
				return value.Nil(), err
			}
			v := vm.peek(0)
			cur := vm.stack[slot]
			if !cur.IsNil() && cur.Kind != v.Kind {
				return value.Nil(), runtimeErrorf(line, "cannot assign %s to local of type %s", v.Kind, cur.Kind)
			}
			vm.stack[slot] = v

		case bytecode.OpJump:
			offset := vm.readShort()
			vm.ip += offset

		case bytecode.OpJumpIfFalse:
			offset := vm.readShort()
			if err := vm.requireNonEmpty(line, "OP_JUMP_IF_FALSE"); err != nil {
				return value.Nil(), err
			}
			top := vm.peek(0)
			if !top.IsBool() {
				return value.Nil(), runtimeErrorf(line, "condition must be a bool")
			}
			if !top.Bool {
				vm.ip += offset
			}

		case bytecode.OpLoop:
			offset := vm.readShort()
			vm.ip -= offset

		case bytecode.OpPrint:
			argc := int(vm.readByte())
			if err := vm.requireStackDepth(line, argc, "OP_PRINT"); err != nil {
				return value.Nil(), err
			}
			args := make([]value.Value, argc)
			for i := argc - 1; i >= 0; i-- {
				args[i] = vm.pop()
			}
			fmt.Fprint(vm.stdout, value.PrintJoin(args))
			vm.push(value.Nil())

		case bytecode.OpReturn:
			if vm.sp > 0 {
				return vm.pop(), nil
			}
			return value.Nil(), nil

		default:
			return value.Nil(), runtimeErrorf(line, "unknown opcode %d", op)
		}
	}
}

func (vm *VM) readByte() byte {
	b := vm.chunk.CodeAt(vm.ip)
	vm.ip++
	return b
}

func (vm *VM) readShort() int {
	hi := int(vm.readByte())
	lo := int(vm.readByte())
	return hi<<8 | lo
}

func (vm *VM) readGlobalName() *value.Cell {
	idx := int(vm.readByte())
	return vm.chunk.ConstantAt(idx).Cell
}

func (vm *VM) push(v value.Value) {
	vm.stack[vm.sp] = v
	vm.sp++
}

func (vm *VM) pop() value.Value {
	vm.sp--
	return vm.stack[vm.sp]
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[vm.sp-1-distance]
}

func (vm *VM) requireNonEmpty(line int, op string) error {
	if vm.sp < 1 {
		return runtimeErrorf(line, "stack underflow executing %s", op)
	}
	return nil
}

func (vm *VM) requireStackDepth(line int, n int, op string) error {
	if vm.sp < n {
		return runtimeErrorf(line, "stack underflow executing %s", op)
	}
	return nil
}

func (vm *VM) requireSlot(line int, slot int) error {
	if slot < 0 || slot >= vm.sp {
		return runtimeErrorf(line, "invalid local slot %d", slot)
	}
	return nil
}

func (vm *VM) popNumber(line int, what string) (float64, error) {
	if err := vm.requireNonEmpty(line, what); err != nil {
		return 0, err
	}
	v := vm.pop()
	if !v.IsNumber() {
		return 0, runtimeErrorf(line, "operand of %s must be a number", what)
	}
	return v.Num, nil
}

func (vm *VM) popBool(line int, what string) (bool, error) {
	if err := vm.requireNonEmpty(line, what); err != nil {
		return false, err
	}
	v := vm.pop()
	if !v.IsBool() {
		return false, runtimeErrorf(line, "operand of %s must be a bool", what)
	}
	return v.Bool, nil
}

func (vm *VM) binaryNumberOp(op bytecode.Op, line int) error {
	if err := vm.requireStackDepth(line, 2, "arithmetic operator"); err != nil {
		return err
	}
	b := vm.pop()
	a := vm.pop()
	if !a.IsNumber() || !b.IsNumber() {
		return runtimeErrorf(line, "operands of arithmetic operator must be numbers")
	}
	switch op {
	case bytecode.OpAdd:
		vm.push(value.Number(a.Num + b.Num))
	case bytecode.OpSub:
		vm.push(value.Number(a.Num - b.Num))
	case bytecode.OpMul:
		vm.push(value.Number(a.Num * b.Num))
	case bytecode.OpDiv:
		vm.push(value.Number(a.Num / b.Num))
	}
	return nil
}

func (vm *VM) binaryCompareOp(op bytecode.Op, line int) error {
	if err := vm.requireStackDepth(line, 2, "comparison operator"); err != nil {
		return err
	}
	b := vm.pop()
	a := vm.pop()
	if !a.IsNumber() || !b.IsNumber() {
		return runtimeErrorf(line, "operands of comparison operator must be numbers")
	}
	if op == bytecode.OpGreater {
		vm.push(value.Boolean(a.Num > b.Num))
	} else {
		vm.push(value.Boolean(a.Num < b.Num))
	}
	return nil
}
