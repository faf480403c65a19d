package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":    "0",
	"WORD_SIZE": fmt.Sprintf("%v", WORD_SIZE),
	"STRIDE":    fmt.Sprintf("%v", INSTRUCTION_STRIDE),
	"OP_LOAD":   fmt.Sprintf("%#x", byte(OP_LOAD)),
	"OP_STORE":  fmt.Sprintf("%#x", byte(OP_STORE)),
	"OP_ADD":    fmt.Sprintf("%#x", byte(OP_ADD)),
	"OP_SUB":    fmt.Sprintf("%#x", byte(OP_SUB)),
	"OP_HALT":   fmt.Sprintf("%#x", byte(OP_HALT)),
}

// Assembler is a single pass macro assembler for the toy VM.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// regMap is a map of register names to register indexes.
var regMap = map[string]byte{
	"r0": REG_PC,
	"pc": REG_PC,
	"r1": REG_R1,
	"r2": REG_R2,
}

// valueOf returns the value of a simple word, which must not exceed limit.
func (asm *Assembler) valueOf(word string, limit uint32) (value uint32, err error) {
	v64, err := strconv.ParseUint(word, 0, 32)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	if v64 > uint64(limit) {
		err = fmt.Errorf("%w: %v", ErrValueRange, word)
		return
	}

	value = uint32(v64)
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value uint32, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value32 uint32
		value32, err = asm.valueOf(str, 0xffffffff)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt(int(value32))
	}
	err = nil
	for key, addr := range asm.Label {
		pred[key] = starlark.MakeInt(addr)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok || st_int64 < 0 || st_int64 > 0xffffffff {
		err = ErrParseExpression(expr)
		return
	}
	value = uint32(st_int64)
	return
}

// parseLine parses a single line as an opcode.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	re := regexp.MustCompile(`'\\?[^']'`)
	line = re.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "0":
				str = "\000"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	re = regexp.MustCompile(`\$\([^\$]*\)`)
	line = re.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#x", value)
	})
	if err != nil {
		return
	}

	words = slices.DeleteFunc(strings.Split(line, " "), func(a string) bool { return len(a) == 0 })

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]int, 16)
		}
		asm.Label[label] = asm.currentAddr()
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = words[1+n]
		}
		defer func() { asm.Equate = old_equate }()

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", fmt.Sprintf("%v_%v_", name, lineno))
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, macro.LineNo+n)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// currentAddr gets the address of the next assembled byte.
func (asm *Assembler) currentAddr() int {
	if len(asm.Opcode) == 0 {
		return 0
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Addr + len(last.Bytes)
}

// Parse parses an input stream into a Program containing opcodes.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Opcode = asm.Opcode[:0]
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(strings.ReplaceAll(text_comment[0], "\t", " "))
		words := slices.DeleteFunc(strings.Split(line, " "), func(a string) bool { return len(a) == 0 })

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of address labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		err = asm.link(op)
		if err != nil {
			lineno = op.LineNo
			line = strings.Join(op.Words, " ")
			return
		}
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// link patches the address operand of op with the address of its label.
func (asm *Assembler) link(op *Opcode) (err error) {
	label := op.LinkLabel
	if len(label) == 0 {
		return
	}

	addr, ok := asm.Label[label]
	if !ok {
		err = ErrLabelMissing(label)
		return
	}
	if addr > 0xff {
		err = fmt.Errorf("%w: %v", ErrAddressRange, label)
		return
	}
	if len(op.Bytes) != INSTRUCTION_STRIDE {
		err = fmt.Errorf("%w: %v", ErrLabelLink, label)
		return
	}

	op.Bytes[2] = byte(addr)
	return
}

// getRegister gets the register index for a word.
func (asm *Assembler) getRegister(word string) (reg byte, err error) {
	reg, ok := regMap[word]
	if !ok {
		err = fmt.Errorf("%w: %v", ErrRegisterInvalid, word)
		return
	}

	return
}

// getAddress gets the address operand for a word. Anything that is not a
// number is a label, to be resolved when linking.
func (asm *Assembler) getAddress(word string) (addr byte, label string, err error) {
	if len(word) == 0 || word[0] < '0' || word[0] > '9' {
		label = word
		return
	}

	value, err := asm.valueOf(word, 0xff)
	if err != nil {
		if _, ok := err.(ErrParseNumber); !ok {
			err = fmt.Errorf("%w: %v", ErrAddressRange, word)
		}
		return
	}

	addr = byte(value)
	return
}

// parseData evaluates the values of a .byte or .word directive.
func (asm *Assembler) parseData(words []string, size int) (data []byte, err error) {
	if len(words) == 0 {
		err = ErrOpcodeValueMissing
		return
	}

	limit := uint32(0xff)
	if size == WORD_SIZE {
		limit = 0xffff
	}

	for _, word := range words {
		var value uint32
		value, err = asm.valueOf(word, limit)
		if err != nil {
			return
		}
		if size == WORD_SIZE {
			encoded := EncodeWord(value)
			data = append(data, encoded[:]...)
		} else {
			data = append(data, byte(value))
		}
	}

	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var data []byte
	var label string

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words
	addr := asm.currentAddr()
	emit := false

	defer func() {
		if err != nil || (len(data) == 0 && !emit) {
			return
		}
		opcode := Opcode{LineNo: lineno, Addr: addr, Words: initial_words, Bytes: data, LinkLabel: label}
		asm.Opcode = append(asm.Opcode, opcode)
	}()

	switch words[0] {
	case "load", "store":
		if len(words) < 3 {
			err = ErrOpcodeValueMissing
			return
		}
		if len(words) > 3 {
			err = ErrOpcodeExtraArgs
			return
		}
		op := OP_LOAD
		if words[0] == "store" {
			op = OP_STORE
		}
		var reg, target byte
		reg, err = asm.getRegister(words[1])
		if err != nil {
			return
		}
		target, label, err = asm.getAddress(words[2])
		if err != nil {
			return
		}
		data = MakeCode(op, reg, target).Bytes()
	case "add", "sub":
		op := OP_ADD
		if words[0] == "sub" {
			op = OP_SUB
		}
		code := MakeCode(op, 0, 0)
		switch len(words) {
		case 1:
			// pass
		case 3:
			// Optional operands document the fixed r1, r2 source.
			if words[1] != "r1" || words[2] != "r2" {
				err = fmt.Errorf("%w: %v %v", ErrRegisterInvalid, words[1], words[2])
				return
			}
			code.Reg = REG_R1
			code.Addr = REG_R2
		case 2:
			err = ErrOpcodeValueMissing
			return
		default:
			err = ErrOpcodeExtraArgs
			return
		}
		data = code.Bytes()
	case "halt":
		if len(words) > 1 {
			err = ErrOpcodeExtraArgs
			return
		}
		data = MakeCode(OP_HALT, 0, 0).Bytes()
	case ".byte":
		data, err = asm.parseData(words[1:], 1)
	case ".word":
		data, err = asm.parseData(words[1:], WORD_SIZE)
	case ".org":
		if len(words) != 2 {
			err = ErrOpcodeValueMissing
			return
		}
		var target uint32
		target, err = asm.valueOf(words[1], 0xffff)
		if err != nil {
			return
		}
		if int(target) < addr {
			err = ErrOrgBackwards
			return
		}
		addr = int(target)
		emit = true
	default:
		err = ErrOpcodeInvalid
		return
	}

	return
}
