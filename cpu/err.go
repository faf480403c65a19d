package cpu

import (
	"errors"

	"github.com/andrewdoss/toy-vm/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrHalt                 = errors.New(f("halt"))
	ErrOverflow             = errors.New(f("arithmetic overflow"))
	ErrInvalidOperand       = errors.New(f("invalid operand for unsigned subtract"))
	ErrInvalidProgramLength = errors.New(f("invalid program length"))
	ErrIllegal              = errors.New(f("illegal instruction"))
	ErrMemory               = errors.New(f("memory fault"))
	ErrRegister             = errors.New(f("register fault"))
	ErrConfig               = errors.New(f("invalid configuration"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrMacroSyntax        = errors.New(f(".macro syntax"))
	ErrMacroNesting       = errors.New(f(".macro in .macro prohibited"))
	ErrMacroDuplicate     = errors.New(f(".macro duplicated"))
	ErrMacroLonely        = errors.New(f(".macro without .endm"))
	ErrMacroLonelyEndm    = errors.New(f(".endm without .macro"))
	ErrOrgBackwards       = errors.New(f(".org moves backwards"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrOpcodeInvalid      = errors.New(f("opcode invalid"))
	ErrRegisterInvalid    = errors.New(f("register invalid"))
	ErrAddressRange       = errors.New(f("address out of range"))
	ErrLabelLink          = errors.New(f("label does not name an address operand"))
	ErrValueRange         = errors.New(f("value out of range"))
)

// ErrProgramLength is returned when a program image does not match the
// configured memory size.
type ErrProgramLength struct {
	Length   int
	Expected int
}

func (err ErrProgramLength) Error() string {
	return f("program length %v, expected %v bytes", err.Length, err.Expected)
}

func (err ErrProgramLength) Is(target error) bool {
	return target == ErrInvalidProgramLength
}

// ErrIllegalInstruction reports an unknown opcode and where it was fetched.
type ErrIllegalInstruction struct {
	Op CodeOp
	Pc uint32
}

func (err ErrIllegalInstruction) Error() string {
	return f("illegal instruction 0x%02x at address 0x%02x", byte(err.Op), err.Pc)
}

func (err ErrIllegalInstruction) Is(target error) bool {
	return target == ErrIllegal
}

// ErrMemoryFault is an access outside of the memory image.
type ErrMemoryFault uint32

func (err ErrMemoryFault) Error() string {
	return f("memory fault at address 0x%02x", uint32(err))
}

func (err ErrMemoryFault) Is(target error) bool {
	return target == ErrMemory
}

// ErrRegisterFault is an access to a register outside of the register file.
type ErrRegisterFault uint32

func (err ErrRegisterFault) Error() string {
	return f("register fault r%v", uint32(err))
}

func (err ErrRegisterFault) Is(target error) bool {
	return target == ErrRegister
}

type ErrConfigMemorySize int

func (err ErrConfigMemorySize) Error() string {
	return f("memory size %v must be positive", int(err))
}

func (err ErrConfigMemorySize) Is(target error) bool {
	return target == ErrConfig
}

// ErrFault places an execution fault at the instruction that raised it.
type ErrFault struct {
	Pc   uint32
	Code Code
	Err  error
}

func (err *ErrFault) Error() string {
	return f("0x%02x %v: %v", err.Pc, err.Code.String(), err.Err)
}

func (err *ErrFault) Unwrap() error {
	return err.Err
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrMacro struct {
	Macro string
	Line  int
	Err   error
}

func (err ErrMacro) Error() string {
	return f("macro %v line %v %v", err.Macro, err.Line, err.Err.Error())
}

func (err ErrMacro) Unwrap() error {
	return err.Err
}
