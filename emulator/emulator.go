package emulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log"
	"maps"

	"github.com/andrewdoss/toy-vm/cpu"
	"github.com/andrewdoss/toy-vm/internal"
)

var _emulator_defines = map[string]string{
	"REG_PC": fmt.Sprintf("%v", cpu.REG_PC),
	"REG_R1": fmt.Sprintf("%v", cpu.REG_R1),
	"REG_R2": fmt.Sprintf("%v", cpu.REG_R2),
}

// Emulator state. CPU + program listing.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.

	Limit int       // If non-zero, the maximum ticks for Run.
	Trace io.Writer // If set, receives the CPU state after every tick.
}

// NewEmulator creates a new emulator.
func NewEmulator(config cpu.Config) (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(config),
		Program: &cpu.Program{},
	}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
	)
}

// Assembler returns an assembler predefined with the emulator defines.
func (emu *Emulator) Assembler() (asm *cpu.Assembler) {
	asm = &cpu.Assembler{Verbose: emu.Verbose}
	for key, value := range emu.Defines() {
		asm.Predefine(key, value)
	}

	return
}

// Reset the emulator state. The program listing, if any, replaces memory.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose

	if len(emu.Program.Opcodes) != 0 {
		var image []byte
		image, err = emu.Program.Binary(emu.Cpu.Config())
		if err != nil {
			return
		}
		err = emu.Cpu.LoadProgram(image)
		if err != nil {
			return
		}
	}

	emu.Cpu.Reset()

	return
}

// Ticks returns the total ticks since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// Pc returns current program counter.
func (emu *Emulator) Pc() int {
	return int(emu.Cpu.Register[cpu.REG_PC])
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Cpu.Register[cpu.REG_PC])
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick performs a single tick of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Err: err}
		}
	}()

	err = emu.Cpu.Tick()
	if errors.Is(err, cpu.ErrHalt) {
		err = nil
		done = true
		return
	}
	if err != nil {
		return
	}

	if emu.Trace != nil {
		_, err = fmt.Fprint(emu.Trace, emu.Cpu.String())
	}

	return
}

// Run ticks the emulator until the program halts, faults, the tick limit
// is reached, or ctx is done.
func (emu *Emulator) Run(ctx context.Context) (err error) {
	for {
		err = ctx.Err()
		if err != nil {
			return
		}

		if emu.Limit != 0 && emu.Cpu.Ticks >= emu.Limit {
			err = &ErrRuntime{LineNo: emu.LineNo(), Err: ErrTickLimit}
			return
		}

		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			break
		}
	}

	if emu.Verbose {
		log.Printf("emulator: %v ticks, pc 0x%02x", emu.Cpu.Ticks, emu.Pc())
	}

	return
}
