package cpu

import (
	"fmt"
)

// CodeOp is an instruction opcode.
type CodeOp byte

//go:generate go tool stringer -linecomment -type=CodeOp
const (
	OP_LOAD  = CodeOp(0x01) // load
	OP_STORE = CodeOp(0x02) // store
	OP_ADD   = CodeOp(0x03) // add
	OP_SUB   = CodeOp(0x04) // sub
	OP_HALT  = CodeOp(0xff) // halt
)

// Valid returns true if the opcode is part of the instruction set.
func (op CodeOp) Valid() bool {
	switch op {
	case OP_LOAD, OP_STORE, OP_ADD, OP_SUB, OP_HALT:
		return true
	}
	return false
}

// Operands returns true if the opcode uses its two operand bytes.
func (op CodeOp) Operands() bool {
	return op == OP_LOAD || op == OP_STORE
}

// Code is a single decoded instruction slot.
type Code struct {
	Op   CodeOp // Opcode.
	Reg  byte   // First operand: register index for load and store.
	Addr byte   // Second operand: memory address for load and store.
}

// MakeCode creates an instruction.
func MakeCode(op CodeOp, reg, addr byte) Code {
	return Code{Op: op, Reg: reg, Addr: addr}
}

// Decode splits an instruction slot into its fields.
func Decode(slot [INSTRUCTION_STRIDE]byte) Code {
	return Code{Op: CodeOp(slot[0]), Reg: slot[1], Addr: slot[2]}
}

// Bytes returns the instruction slot encoding. HALT is a single byte, as
// nothing after it is ever fetched.
func (code Code) Bytes() []byte {
	if code.Op == OP_HALT {
		return []byte{byte(code.Op)}
	}
	return []byte{byte(code.Op), code.Reg, code.Addr}
}

// String returns the assembly language representation of this instruction.
func (code Code) String() (out string) {
	switch code.Op {
	case OP_LOAD, OP_STORE:
		out = fmt.Sprintf("%v.r%d.0x%02x", code.Op.String(), code.Reg, code.Addr)
	default:
		out = code.Op.String()
	}

	return
}
