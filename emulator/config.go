package emulator

import (
	"errors"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/andrewdoss/toy-vm/cpu"
)

var ErrConfigKey = errors.New(f("unknown configuration key"))

// ParseConfig decodes a TOML machine configuration. Missing keys keep the
// reference defaults.
func ParseConfig(text string) (config cpu.Config, err error) {
	config = cpu.DefaultConfig()

	meta, err := toml.Decode(text, &config)
	if err != nil {
		return
	}

	if undecoded := meta.Undecoded(); len(undecoded) != 0 {
		keys := make([]string, len(undecoded))
		for n, key := range undecoded {
			keys[n] = key.String()
		}
		err = errors.Join(ErrConfigKey, errors.New(strings.Join(keys, ", ")))
		return
	}

	err = config.Validate()
	return
}

// LoadConfig reads a TOML machine configuration file.
func LoadConfig(path string) (config cpu.Config, err error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return
	}

	config, err = ParseConfig(string(text))
	return
}
