// Package cpu implements the processor and assembler for the toy VM.
//
// The CPU consists of a byte addressable memory image holding both code and
// data, three registers (the program counter r0, and the operands r1 and r2),
// and an ALU limited to unsigned add and subtract against a configurable word
// ceiling. Every instruction occupies a fixed 3 byte slot: an opcode byte
// followed by two operand bytes, which are ignored by the opcodes that take
// no operands.
//
// The assembler provides a small assembly language for the toy VM
// instruction set, supporting macros, labels, equates, data directives, and
// compile-time expression evaluation.
package cpu
