package rom

import (
	"bufio"
	"fmt"
	"io"
)

// DUMP_WIDTH is the default number of bytes per dump line.
const DUMP_WIDTH = 8

// Dump writes an addressed hex dump of memory. The address column is a
// comment, so the dump reads back as a hex image.
func Dump(output io.Writer, memory []byte, width int) (err error) {
	if width <= 0 {
		width = DUMP_WIDTH
	}

	w := bufio.NewWriter(output)

	for base := 0; base < len(memory); base += width {
		end := min(base+width, len(memory))

		line := ""
		for n, data := range memory[base:end] {
			if n > 0 {
				line += " "
			}
			line += fmt.Sprintf("%02x", data)
		}

		_, err = fmt.Fprintf(w, "%-*s ; %04x\n", width*3-1, line, base)
		if err != nil {
			return
		}
	}

	err = w.Flush()
	return
}
