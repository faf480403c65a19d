package main

import (
	"fmt"

	"github.com/andrewdoss/toy-vm/cpu"
)

// checkProgram is a reference program and the word it leaves at address 14.
type checkProgram struct {
	name    string
	program []byte
	result  uint32
}

var checkPrograms = []checkProgram{
	{"5281 + 12", []byte{
		0x01, 0x01, 0x10,
		0x01, 0x02, 0x12,
		0x03, 0x01, 0x02,
		0x02, 0x01, 0x0e,
		0xff,
		0x00,
		0x00, 0x00,
		0xa1, 0x14,
		0x0c, 0x00,
	}, 5293},
	{"8746 - 2020", []byte{
		0x01, 0x01, 0x10,
		0x01, 0x02, 0x12,
		0x04, 0x01, 0x02,
		0x02, 0x01, 0x0e,
		0xff,
		0x00,
		0x00, 0x00,
		0x2a, 0x22,
		0xe4, 0x07,
	}, 6726},
}

// selfCheck runs the reference programs on a fresh CPU each.
func selfCheck(config cpu.Config) (err error) {
	for _, check := range checkPrograms {
		var vm *cpu.Cpu
		vm, err = cpu.NewCpuWithProgram(config, check.program)
		if err != nil {
			return fmt.Errorf("%v: %w", check.name, err)
		}

		vm, err = vm.Run()
		if err != nil {
			return fmt.Errorf("%v: %w", check.name, err)
		}

		var value uint32
		value, err = vm.ReadMemoryWord(14)
		if err != nil {
			return fmt.Errorf("%v: %w", check.name, err)
		}
		if value != check.result {
			return fmt.Errorf("%v: got %v, expected %v", check.name, value, check.result)
		}
	}

	return
}
