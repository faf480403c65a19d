package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
)

// Cpu is the simulation context for the toy VM: memory image, register
// file, and ALU word ceiling.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Memory   []byte                 // Unified code and data memory.
	Register [REGISTER_COUNT]uint32 // Register bank. r0 is the program counter.
	WordMax  uint32                 // ALU word ceiling.

	Ticks int // CPU ticks counter.

	config Config
}

// NewCpu creates a new CPU booting the default image: a HALT instruction
// followed by fill bytes.
//
// NewCpu panics if config fails Validate. Use NewCpuWithProgram, or call
// Validate first, for configurations read from outside the program.
func NewCpu(config Config) (cpu *Cpu) {
	if err := config.Validate(); err != nil {
		panic(err)
	}

	cpu = &Cpu{
		Memory:  config.DefaultProgram(),
		WordMax: config.WordMax,
		config:  config,
	}

	return
}

// NewCpuWithProgram creates a new CPU with program loaded into memory.
func NewCpuWithProgram(config Config, program []byte) (cpu *Cpu, err error) {
	err = config.Validate()
	if err != nil {
		return
	}

	cpu = NewCpu(config)
	err = cpu.LoadProgram(program)
	if err != nil {
		cpu = nil
		return
	}

	return
}

// Config returns the configuration the CPU was built with.
func (cpu *Cpu) Config() Config {
	return cpu.config
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return cpu.config.Defines()
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	regs := []string{"pc", "r1", "r2", "ticks"}
	for _, reg := range regs {
		var strval string
		switch reg {
		case "pc":
			strval = fmt.Sprintf("%04X", cpu.Register[REG_PC])
		case "r1":
			strval = fmt.Sprintf("%04X", cpu.Register[REG_R1])
		case "r2":
			strval = fmt.Sprintf("%04X", cpu.Register[REG_R2])
		case "ticks":
			strval = fmt.Sprintf("%v", cpu.Ticks)
		}
		text += fmt.Sprintf("% 5s: %v\n", reg, strval)
	}

	return
}

// Reset the CPU state.
// - Clears the registers, so execution restarts at address 0.
// - Zeros the tick counter.
//
// Memory is left as is.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Register[:])
	cpu.Ticks = 0
}

// LoadProgram replaces the memory image with a copy of program.
// The program must be exactly the configured memory size.
func (cpu *Cpu) LoadProgram(program []byte) (err error) {
	if len(program) != cpu.config.MemorySize {
		err = ErrProgramLength{Length: len(program), Expected: cpu.config.MemorySize}
		return
	}

	memory := make([]byte, len(program))
	copy(memory, program)
	cpu.Memory = memory

	if cpu.Verbose {
		log.Printf("cpu: loaded %v byte program", len(program))
	}

	return
}

// checkWord verifies that a full word at addr lies within memory.
func (cpu *Cpu) checkWord(addr uint32) (err error) {
	if uint64(addr)+WORD_SIZE > uint64(len(cpu.Memory)) {
		err = ErrMemoryFault(addr)
		return
	}

	return
}

// checkRegister verifies that reg names a register.
func (cpu *Cpu) checkRegister(reg uint32) (err error) {
	if reg >= REGISTER_COUNT {
		err = ErrRegisterFault(reg)
		return
	}

	return
}

// ReadMemoryWord decodes the word at addr.
func (cpu *Cpu) ReadMemoryWord(addr uint32) (value uint32, err error) {
	err = cpu.checkWord(addr)
	if err != nil {
		return
	}

	value = DecodeWord([WORD_SIZE]byte(cpu.Memory[addr : addr+WORD_SIZE]))
	return
}

// LoadWord loads the word at addr into register reg.
func (cpu *Cpu) LoadWord(reg, addr uint32) (err error) {
	err = cpu.checkRegister(reg)
	if err != nil {
		return
	}

	value, err := cpu.ReadMemoryWord(addr)
	if err != nil {
		return
	}

	cpu.Register[reg] = value
	return
}

// StoreWord stores register reg into the word at addr.
func (cpu *Cpu) StoreWord(reg, addr uint32) (err error) {
	err = cpu.checkRegister(reg)
	if err != nil {
		return
	}

	err = cpu.checkWord(addr)
	if err != nil {
		return
	}

	word := EncodeWord(cpu.Register[reg])
	copy(cpu.Memory[addr:addr+WORD_SIZE], word[:])
	return
}

// Add sets r1 to r1 + r2. Registers are untouched if the sum exceeds the
// word ceiling.
func (cpu *Cpu) Add() (err error) {
	sum := uint64(cpu.Register[REG_R1]) + uint64(cpu.Register[REG_R2])
	if sum > uint64(cpu.WordMax) {
		err = ErrOverflow
		return
	}

	cpu.Register[REG_R1] = uint32(sum)
	return
}

// Sub sets r1 to r1 - r2. Registers are untouched if the difference would
// be negative.
func (cpu *Cpu) Sub() (err error) {
	if cpu.Register[REG_R2] > cpu.Register[REG_R1] {
		err = ErrInvalidOperand
		return
	}

	cpu.Register[REG_R1] -= cpu.Register[REG_R2]
	return
}

// FetchCode fetches the instruction slot at the program counter.
// Operand bytes past the end of memory are only a fault for the opcodes
// that use them.
func (cpu *Cpu) FetchCode() (code Code, err error) {
	pc := uint64(cpu.Register[REG_PC])
	if pc >= uint64(len(cpu.Memory)) {
		err = ErrMemoryFault(pc)
		return
	}

	code.Op = CodeOp(cpu.Memory[pc])
	if !code.Op.Operands() {
		return
	}

	if pc+INSTRUCTION_STRIDE > uint64(len(cpu.Memory)) {
		err = ErrMemoryFault(pc + INSTRUCTION_STRIDE - 1)
		return
	}

	code.Reg = cpu.Memory[pc+1]
	code.Addr = cpu.Memory[pc+2]

	return
}

// Tick executes a single CPU instruction cycle.
// Returns ErrHalt once a HALT instruction is reached.
func (cpu *Cpu) Tick() (err error) {
	code, err := cpu.FetchCode()
	if err != nil {
		err = &ErrFault{Pc: cpu.Register[REG_PC], Err: err}
		return
	}

	err = cpu.Execute(code)
	if err != nil {
		return
	}

	cpu.Ticks += 1

	return
}

// Execute executes a single decoded instruction.
func (cpu *Cpu) Execute(code Code) (err error) {
	pc := cpu.Register[REG_PC]

	defer func() {
		if err != nil && !errors.Is(err, ErrHalt) {
			err = &ErrFault{Pc: pc, Code: code, Err: err}
		}
	}()

	if cpu.Verbose {
		log.Printf("%03x: %v", pc, code)
	}

	switch code.Op {
	case OP_LOAD:
		err = cpu.LoadWord(uint32(code.Reg), uint32(code.Addr))
	case OP_STORE:
		err = cpu.StoreWord(uint32(code.Reg), uint32(code.Addr))
	case OP_ADD:
		err = cpu.Add()
	case OP_SUB:
		err = cpu.Sub()
	case OP_HALT:
		err = ErrHalt
	default:
		err = ErrIllegalInstruction{Op: code.Op, Pc: pc}
	}
	if err != nil {
		return
	}

	cpu.Register[REG_PC] += INSTRUCTION_STRIDE

	return
}

// Run executes the program in memory until it halts, returning the CPU for
// inspection. The first fault stops execution and is returned.
func (cpu *Cpu) Run() (*Cpu, error) {
	for {
		err := cpu.Tick()
		if errors.Is(err, ErrHalt) {
			return cpu, nil
		}
		if err != nil {
			return cpu, err
		}
	}
}
