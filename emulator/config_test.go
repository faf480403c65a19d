package emulator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andrewdoss/toy-vm/cpu"
)

func TestParseConfig(t *testing.T) {
	assert := assert.New(t)

	config, err := ParseConfig("")
	assert.NoError(err)
	assert.Equal(cpu.DefaultConfig(), config)

	config, err = ParseConfig("memory_size = 256\nword_max = 0xff\nfill = 0xff\n")
	assert.NoError(err)
	assert.Equal(cpu.Config{MemorySize: 256, WordMax: 0xff, Fill: 0xff}, config)

	config, err = ParseConfig("word_max = 0\n")
	assert.NoError(err)
	assert.Equal(cpu.Config{MemorySize: cpu.MEMORY_SIZE, WordMax: 0}, config)

	// A zero ceiling survives into the CPU: any non-zero sum overflows.
	vm := cpu.NewCpu(config)
	assert.Equal(uint32(0), vm.WordMax)
	vm.Register[cpu.REG_R2] = 1
	assert.ErrorIs(vm.Add(), cpu.ErrOverflow)

	_, err = ParseConfig("memory = 256\n")
	assert.ErrorIs(err, ErrConfigKey)

	_, err = ParseConfig("memory_size = -4\n")
	assert.ErrorIs(err, cpu.ErrConfig)

	_, err = ParseConfig("fill = 256\n")
	assert.Error(err)
}

func TestLoadConfig(t *testing.T) {
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "toyvm.toml")
	assert.NoError(os.WriteFile(path, []byte("word_max = 1000\n"), 0o644))

	config, err := LoadConfig(path)
	assert.NoError(err)
	assert.Equal(cpu.Config{MemorySize: cpu.MEMORY_SIZE, WordMax: 1000}, config)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(err, os.ErrNotExist)
}
