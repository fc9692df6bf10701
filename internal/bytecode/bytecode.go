// Package bytecode defines the VM's instruction set and the Chunk
// container that holds a compiled program's code and constant pool.
package bytecode

// Op is a one-byte opcode. Multi-byte operands that follow an opcode
// are big-endian.
type Op byte

const (
	OpConstant Op = iota
	OpNil
	OpTrue
	OpFalse
	OpPop
	OpNegate
	OpNot
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpEqual
	OpGreater
	OpLess
	OpDefineGlobal
	OpGetGlobal
	OpSetGlobal
	OpGetLocal
	OpSetLocal
	OpJump
	OpJumpIfFalse
	OpLoop
	OpReturn

	// OpPrint is not in the reference's abbreviated instruction table,
	// but invariant 5 and scenarios S1-S6 require tree-walk/VM stdout
	// parity for print-only programs, and print is unreachable from
	// compiled code any other way (there is no OP_CALL) — see
	// DESIGN.md. Pops its one-byte argc operand's worth of values
	// (left-to-right as pushed), writes them space-joined plus a
	// newline, and pushes Nil, mirroring the tree-walk print() builtin.
	OpPrint
)

// MaxConstants is the constant pool's capacity: a one-byte index can
// only address 256 entries.
const MaxConstants = 256
