package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"golang.org/x/text/language"

	"github.com/andrewdoss/toy-vm/cpu"
	"github.com/andrewdoss/toy-vm/emulator"
	"github.com/andrewdoss/toy-vm/internal"
	"github.com/andrewdoss/toy-vm/rom"
	"github.com/andrewdoss/toy-vm/translate"
)

func main() {
	var compile string
	var image string
	var save string
	var config_file string
	var word int
	var dump bool
	var limit int
	var defines bool
	var lang string
	var verbose bool

	flag.StringVar(&compile, "c", "", ".tvm file to assemble")
	flag.StringVar(&image, "i", "", "memory image to load (.hex for hex text, otherwise raw)")
	flag.StringVar(&save, "s", "", "Save the memory image to file, do not execute")
	flag.StringVar(&config_file, "config", "", ".toml machine configuration")
	flag.IntVar(&word, "w", -1, "Print the word at this address after the run")
	flag.BoolVar(&dump, "dump", false, "Dump memory after the run")
	flag.IntVar(&limit, "limit", 0, "Maximum instructions to execute (0 for no limit)")
	flag.BoolVar(&defines, "defines", false, "List the assembler predefines")
	flag.StringVar(&lang, "lang", "", "Message language (BCP 47 tag), instead of the host locale")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if len(lang) != 0 {
		tag, err := language.Parse(lang)
		if err != nil {
			log.Fatalf("-lang %v: %v", lang, err)
		}
		translate.SetLanguage(tag)
	}

	config := cpu.DefaultConfig()
	if len(config_file) != 0 {
		var err error
		config, err = emulator.LoadConfig(config_file)
		if err != nil {
			log.Fatalf("%v: %v", config_file, err)
		}
	}

	emu := emulator.NewEmulator(config)
	emu.Verbose = verbose
	emu.Limit = limit

	if defines {
		for key, value := range internal.IterSeq2Sorted(emu.Defines()) {
			fmt.Printf("%v=%v\n", key, value)
		}
		return
	}

	if len(compile) == 0 && len(image) == 0 {
		err := selfCheck(config)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println("self check passed")
		return
	}

	// Assemble a new program.
	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		asm := emu.Assembler()
		emu.Program, err = asm.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	}

	err := emu.Reset()
	if err != nil {
		log.Fatal(err)
	}

	// Or load a prepared image.
	if len(image) != 0 {
		inf, err := os.Open(image)
		if err != nil {
			log.Fatalf("%v: %v", image, err)
		}
		defer inf.Close()

		data, err := rom.Read(inf, rom.FormatOf(image))
		if err != nil {
			log.Fatalf("%v: %v", image, err)
		}

		err = emu.LoadProgram(data)
		if err != nil {
			log.Fatalf("%v: %v", image, err)
		}
	}

	if len(save) != 0 {
		ouf, err := os.Create(save)
		if err != nil {
			log.Fatalf("%v: %v", save, err)
		}
		defer ouf.Close()

		err = rom.Write(ouf, emu.Memory, rom.FormatOf(save))
		if err != nil {
			log.Fatalf("%v: %v", save, err)
		}
		return
	}

	if verbose {
		emu.Trace = os.Stderr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = emu.Run(ctx)
	if err != nil {
		log.Fatal(err)
	}

	if word >= 0 {
		value, err := emu.ReadMemoryWord(uint32(word))
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(value)
	}

	if dump {
		err = rom.Dump(os.Stdout, emu.Memory, 0)
		if err != nil {
			log.Fatal(err)
		}
	}
}
