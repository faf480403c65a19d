// Package rom reads and writes toy VM memory images.
// Images are either raw binary, or hex text: whitespace separated byte
// values, with optional 0x prefixes, and '#' or ';' comments.
package rom

import (
	"bufio"
	"errors"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/andrewdoss/toy-vm/translate"
)

var f = translate.From

var (
	ErrFormat = errors.New(f("unknown image format"))
)

// ErrHexByte is a hex image token that is not a byte value.
type ErrHexByte struct {
	LineNo int
	Token  string
}

func (err ErrHexByte) Error() string {
	return f("line %d '%v' is not a hex byte", err.LineNo, err.Token)
}

// Format is an image encoding.
type Format int

const (
	FORMAT_RAW = Format(0) // raw
	FORMAT_HEX = Format(1) // hex
)

func (format Format) String() string {
	switch format {
	case FORMAT_RAW:
		return "raw"
	case FORMAT_HEX:
		return "hex"
	default:
		return "Format(" + strconv.Itoa(int(format)) + ")"
	}
}

// FormatOf picks the image format from a file name.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hex", ".txt":
		return FORMAT_HEX
	default:
		return FORMAT_RAW
	}
}

// Read reads a whole memory image.
func Read(input io.Reader, format Format) (image []byte, err error) {
	switch format {
	case FORMAT_RAW:
		image, err = io.ReadAll(input)
	case FORMAT_HEX:
		image, err = readHex(input)
	default:
		err = ErrFormat
	}

	return
}

func readHex(input io.Reader) (image []byte, err error) {
	scanner := bufio.NewScanner(input)

	var lineno int
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		if n := strings.IndexAny(line, "#;"); n >= 0 {
			line = line[:n]
		}

		for _, token := range strings.Fields(line) {
			text := strings.TrimPrefix(strings.TrimPrefix(token, "0x"), "0X")
			var value uint64
			value, err = strconv.ParseUint(text, 16, 8)
			if err != nil || len(text) > 2 {
				err = ErrHexByte{LineNo: lineno, Token: token}
				return
			}
			image = append(image, byte(value))
		}
	}

	err = scanner.Err()
	return
}

// Write writes a memory image.
func Write(output io.Writer, image []byte, format Format) (err error) {
	switch format {
	case FORMAT_RAW:
		_, err = output.Write(image)
	case FORMAT_HEX:
		err = Dump(output, image, 0)
	default:
		err = ErrFormat
	}

	return
}
