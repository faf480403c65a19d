package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOp(t *testing.T) {
	assert := assert.New(t)

	for _, op := range []CodeOp{OP_LOAD, OP_STORE, OP_ADD, OP_SUB, OP_HALT} {
		assert.True(op.Valid(), op.String())
	}
	assert.False(CodeOp(0x00).Valid())
	assert.False(CodeOp(0x05).Valid())

	assert.True(OP_LOAD.Operands())
	assert.True(OP_STORE.Operands())
	assert.False(OP_ADD.Operands())
	assert.False(OP_HALT.Operands())

	assert.Equal("halt", OP_HALT.String())
	assert.Equal("CodeOp(5)", CodeOp(0x05).String())
	assert.Equal("CodeOp(0)", CodeOp(0x00).String())
	assert.Equal("load", OP_LOAD.String())
	assert.Equal("sub", OP_SUB.String())
}

func TestCode_Decode(t *testing.T) {
	assert := assert.New(t)

	code := Decode([INSTRUCTION_STRIDE]byte{0x01, 0x02, 0x12})
	assert.Equal(MakeCode(OP_LOAD, 2, 0x12), code)
	assert.Equal("load.r2.0x12", code.String())
	assert.Equal([]byte{0x01, 0x02, 0x12}, code.Bytes())

	code = Decode([INSTRUCTION_STRIDE]byte{0x03, 0x01, 0x02})
	assert.Equal("add", code.String())
	assert.Equal([]byte{0x03, 0x01, 0x02}, code.Bytes())

	code = Decode([INSTRUCTION_STRIDE]byte{0xff, 0x00, 0x00})
	assert.Equal("halt", code.String())
	assert.Equal([]byte{0xff}, code.Bytes())
}
