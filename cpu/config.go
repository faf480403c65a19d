package cpu

import (
	"fmt"
	"iter"
	"maps"
)

const (
	MEMORY_SIZE        = 20     // Default memory image size, in bytes.
	WORD_MAX           = 0xffff // Default word ceiling.
	WORD_SIZE          = 2      // Bytes per memory word.
	REGISTER_COUNT     = 3      // Size of the register file.
	INSTRUCTION_STRIDE = 3      // Bytes per instruction slot.
)

// Register indexes.
const (
	REG_PC = 0 // Program counter.
	REG_R1 = 1 // Left operand, and ALU result.
	REG_R2 = 2 // Right operand.
)

// Config describes the shape of a VM instance.
type Config struct {
	MemorySize int    `toml:"memory_size"` // Memory image size in bytes.
	WordMax    uint32 `toml:"word_max"`    // Largest value the ALU may produce.
	Fill       byte   `toml:"fill"`        // Padding byte for the default and assembled images.
}

// DefaultConfig returns the reference configuration. Callers start from
// it and override fields; a zero value field is taken as given, so a
// WordMax of 0 is a ceiling of 0.
func DefaultConfig() Config {
	return Config{
		MemorySize: MEMORY_SIZE,
		WordMax:    WORD_MAX,
	}
}

// Validate checks the configuration.
func (config Config) Validate() (err error) {
	if config.MemorySize < 1 {
		err = ErrConfigMemorySize(config.MemorySize)
		return
	}

	return
}

// DefaultProgram returns the image a VM boots with when no program is
// given: a single HALT followed by fill bytes.
func (config Config) DefaultProgram() (program []byte) {
	program = make([]byte, config.MemorySize)
	program[0] = byte(OP_HALT)
	for n := 1; n < len(program); n++ {
		program[n] = config.Fill
	}

	return
}

// Defines returns the machine constants of the configuration, for use as
// assembler equates.
func (config Config) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"MEMORY_SIZE": fmt.Sprintf("%v", config.MemorySize),
		"WORD_MAX":    fmt.Sprintf("%#x", config.WordMax),
		"WORD_SIZE":   fmt.Sprintf("%v", WORD_SIZE),
		"STRIDE":      fmt.Sprintf("%v", INSTRUCTION_STRIDE),
	})
}
