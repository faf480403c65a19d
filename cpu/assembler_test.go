package cpu

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func assemble(t *testing.T, program []string) (prog *Program) {
	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(t, err)
	if err != nil {
		t.Fatal(err)
	}

	return
}

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(0, len(prog.Opcodes))

	assert.Equal("0", asm.Equate["LINENO"])
	assert.Equal("2", asm.Equate["WORD_SIZE"])
	assert.Equal("3", asm.Equate["STRIDE"])
	assert.Equal("0xff", asm.Equate["OP_HALT"])
}

func TestAssemblerScenario(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name  string
		op    string
		x, y  string
		image []byte
	}){
		{"add", "add r1 r2", "5281", "12", programAdd},
		{"sub", "sub r1 r2", "8746", "2020", programSub},
	}

	for _, entry := range table {
		program := []string{
			"        load r1 x       ; r1 = x",
			"        load r2 y       ; r2 = y",
			"        " + entry.op,
			"        store r1 result",
			"        halt",
			"        .byte 0",
			"result: .word 0",
			"x:      .word " + entry.x,
			"y:      .word " + entry.y,
		}

		prog := assemble(t, program)

		image, err := prog.Binary(DefaultConfig())
		assert.NoError(err, entry.name)
		assert.Equal(entry.image, image, entry.name)
	}
}

func TestAssemblerOpcodes(t *testing.T) {
	program := []string{
		"start: load pc 0x10",
		"  store r2 $(2 * 8)",
		"  add",
		"  sub",
		"  halt",
	}

	prog := assemble(t, program)

	expected := []Opcode{
		{1, 0, []string{"load", "pc", "0x10"}, []byte{0x01, 0x00, 0x10}, ""},
		{2, 3, []string{"store", "r2", "0x10"}, []byte{0x02, 0x02, 0x10}, ""},
		{3, 6, []string{"add"}, []byte{0x03, 0x00, 0x00}, ""},
		{4, 9, []string{"sub"}, []byte{0x04, 0x00, 0x00}, ""},
		{5, 12, []string{"halt"}, []byte{0xff}, ""},
	}

	assert.Equal(t, expected, prog.Opcodes)
}

func TestAssemblerData(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		".equ TEN 10",
		"  .byte 1 TEN 'A' 0xff",
		"  .org 8",
		"  .word 0x1234 $(TEN * 1000)",
		"end:",
		"  .byte $(end)",
	}

	prog := assemble(t, program)

	image, err := prog.Binary(Config{MemorySize: 16})
	assert.NoError(err)
	assert.Equal([]byte{
		0x01, 0x0a, 0x41, 0xff, 0x00, 0x00, 0x00, 0x00,
		0x34, 0x12, 0x10, 0x27, 0x0c, 0x00, 0x00, 0x00,
	}, image)
}

func TestAssemblerMacro(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		".macro SUM A B DST",
		"  load r1 A",
		"  load r2 B",
		"  add",
		"  store r1 DST",
		".endm",
		"  SUM a b c",
		"  halt",
		"a: .word 3",
		"b: .word 4",
		"c: .word 0",
	}

	prog := assemble(t, program)

	image, err := prog.Binary(Config{MemorySize: 19})
	assert.NoError(err)
	assert.Equal([]byte{
		0x01, 0x01, 0x0d,
		0x01, 0x02, 0x0f,
		0x03, 0x00, 0x00,
		0x02, 0x01, 0x11,
		0xff,
		0x03, 0x00,
		0x04, 0x00,
		0x00, 0x00,
	}, image)

	config := DefaultConfig()
	config.MemorySize = 19
	cpu, err := NewCpuWithProgram(config, image)
	assert.NoError(err)
	_, err = cpu.Run()
	assert.NoError(err)
	value, err := cpu.ReadMemoryWord(0x11)
	assert.NoError(err)
	assert.Equal(uint32(7), value)
}

func TestAssemblerPredefine(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("RESULT", "14")

	prog, err := asm.Parse(strings.NewReader("store r1 RESULT\nhalt"))
	assert.NoError(err)
	assert.Equal([]byte{0x02, 0x01, 0x0e}, prog.Opcodes[0].Bytes)
}

func TestAssemblerErrors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name    string
		program []string
		lineno  int
		err     error
	}){
		{"bad_opcode", []string{"halt", "jump 0"}, 2, ErrOpcodeInvalid},
		{"bad_register", []string{"load r3 0"}, 1, ErrRegisterInvalid},
		{"add_registers", []string{"add r2 r1"}, 1, ErrRegisterInvalid},
		{"add_one_arg", []string{"add r1"}, 1, ErrOpcodeValueMissing},
		{"load_missing", []string{"load r1"}, 1, ErrOpcodeValueMissing},
		{"load_extra", []string{"load r1 0 0"}, 1, ErrOpcodeExtraArgs},
		{"halt_extra", []string{"halt 1"}, 1, ErrOpcodeExtraArgs},
		{"address_range", []string{"load r1 0x100"}, 1, ErrAddressRange},
		{"label_range", []string{"load r1 far", ".org 0x100", "far: .byte 0"}, 1, ErrAddressRange},
		{"byte_range", []string{".byte 256"}, 1, ErrValueRange},
		{"word_range", []string{".word 0x10000"}, 1, ErrValueRange},
		{"data_missing", []string{".word"}, 1, ErrOpcodeValueMissing},
		{"org_backwards", []string{".byte 1 2 3", ".org 1"}, 2, ErrOrgBackwards},
		{"label_duplicate", []string{"a: halt", "a: halt"}, 2, ErrLabelDuplicate},
		{"equ_syntax", []string{".equ A"}, 1, ErrEquateSyntax},
		{"equ_duplicate", []string{".equ A 1", ".equ A 2"}, 2, ErrEquateDuplicate},
		{"macro_nesting", []string{".macro A", ".macro B"}, 2, ErrMacroNesting},
		{"macro_lonely", []string{".macro A", "halt"}, 2, ErrMacroLonely},
		{"endm_lonely", []string{".endm"}, 1, ErrMacroLonelyEndm},
		{"macro_args", []string{".macro A X", ".endm", "A"}, 3, ErrMacroSyntax},
	}

	for _, entry := range table {
		asm := &Assembler{}
		_, err := asm.Parse(strings.NewReader(strings.Join(entry.program, "\n")))
		assert.ErrorIs(err, entry.err, entry.name)

		var syntax *ErrSyntax
		if assert.True(errors.As(err, &syntax), entry.name) {
			assert.Equal(entry.lineno, syntax.LineNo, entry.name)
		}
	}
}

func TestAssemblerLabelMissing(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	_, err := asm.Parse(strings.NewReader("halt\nload r1 nowhere"))

	var missing ErrLabelMissing
	assert.True(errors.As(err, &missing))
	assert.Equal(ErrLabelMissing("nowhere"), missing)

	var syntax *ErrSyntax
	assert.True(errors.As(err, &syntax))
	assert.Equal(2, syntax.LineNo)
}

func TestAssemblerLink(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{Label: map[string]int{"here": 0x12, "far": 0x100}}

	table := [](struct {
		name  string
		op    Opcode
		bytes []byte
		err   error
	}){
		{"none", Opcode{Bytes: []byte{0x03, 0x01, 0x02}}, []byte{0x03, 0x01, 0x02}, nil},
		{"load", Opcode{Bytes: []byte{0x01, 0x01, 0x00}, LinkLabel: "here"}, []byte{0x01, 0x01, 0x12}, nil},
		{"missing", Opcode{Bytes: []byte{0x01, 0x01, 0x00}, LinkLabel: "nowhere"}, []byte{0x01, 0x01, 0x00}, ErrLabelMissing("nowhere")},
		{"range", Opcode{Bytes: []byte{0x02, 0x01, 0x00}, LinkLabel: "far"}, []byte{0x02, 0x01, 0x00}, ErrAddressRange},
		{"short", Opcode{Bytes: []byte{0xff}, LinkLabel: "here"}, []byte{0xff}, ErrLabelLink},
		{"data", Opcode{Bytes: []byte{0x00, 0x00}, LinkLabel: "here"}, []byte{0x00, 0x00}, ErrLabelLink},
	}

	for _, entry := range table {
		op := entry.op
		err := asm.link(&op)
		if entry.err != nil {
			assert.ErrorIs(err, entry.err, entry.name)
		} else {
			assert.NoError(err, entry.name)
		}
		assert.Equal(entry.bytes, op.Bytes, entry.name)
	}
}

func TestAssemblerExpression(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	_, err := asm.Parse(strings.NewReader(".byte $(\"text\")"))

	var expr ErrParseExpression
	assert.True(errors.As(err, &expr))

	_, err = asm.Parse(strings.NewReader(".byte $(1 +)"))
	assert.Error(err)

	_, err = asm.Parse(strings.NewReader(".byte zero"))
	var number ErrParseNumber
	assert.True(errors.As(err, &number))
	assert.Equal(ErrParseNumber("zero"), number)
}
