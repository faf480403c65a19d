package cpu

import (
	"iter"
)

// Opcode represents a line of assembled code with its source location and
// generated bytes.
type Opcode struct {
	LineNo    int
	Addr      int
	Words     []string
	Bytes     []byte
	LinkLabel string
}

// Program is an assembled listing.
type Program struct {
	Opcodes []Opcode
}

type Debug struct {
	*Opcode
	Index int
}

// Debug finds the opcode whose bytes cover address pc.
func (prog *Program) Debug(pc uint32) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if pc >= uint32(op.Addr) && pc < uint32(op.Addr)+uint32(len(op.Bytes)) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(pc - uint32(op.Addr)),
			}
			break
		}
	}

	return
}

// Size returns the address just past the last assembled byte.
func (prog *Program) Size() (size int) {
	for _, op := range prog.Opcodes {
		size = max(size, op.Addr+len(op.Bytes))
	}

	return
}

// Bytes iterates over every assembled byte and its address.
func (prog *Program) Bytes() iter.Seq2[int, byte] {
	return func(yield func(addr int, data byte) bool) {
		for _, op := range prog.Opcodes {
			for n, data := range op.Bytes {
				if !yield(op.Addr+n, data) {
					return
				}
			}
		}
	}
}

// Binary builds a full memory image for config, with unassembled bytes set
// to the fill byte.
func (prog *Program) Binary(config Config) (image []byte, err error) {
	err = config.Validate()
	if err != nil {
		return
	}

	size := prog.Size()
	if size > config.MemorySize {
		err = ErrProgramLength{Length: size, Expected: config.MemorySize}
		return
	}

	image = make([]byte, config.MemorySize)
	for n := range image {
		image[n] = config.Fill
	}

	for addr, data := range prog.Bytes() {
		image[addr] = data
	}

	return
}
