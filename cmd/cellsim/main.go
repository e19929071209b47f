// Package main provides the entry point for cellsim.
// cellsim is a functional Cell Broadband Engine emulator.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"

	"github.com/sarchlab/cellsim/cell"
	"github.com/sarchlab/cellsim/loader"
)

var (
	spuIndex   = flag.Int("spu", -1, "Run the program on the given SPU instead of the PPU")
	entry      = flag.Uint64("entry", 0, "Entry point address within the program image")
	configPath = flag.String("config", "", "Path to processor configuration JSON file")
	verbose    = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: cellsim [options] <program.bin>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	programPath := flag.Arg(0)

	prog, err := loader.Load(programPath, *entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	config := cell.DefaultConfig()
	if *configPath != "" {
		config, err = cell.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	log := logr.Discard()
	if *verbose {
		log = funcr.New(func(prefix, args string) {
			fmt.Println(prefix, args)
		}, funcr.Options{Verbosity: 1})
	}

	proc, err := cell.NewProcessor(config, cell.WithProcessorLogger(log))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building processor: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("Loaded: %s\n", programPath)
		fmt.Printf("Entry point: 0x%X\n", prog.Entry)
		fmt.Printf("Image size: %d bytes\n", len(prog.Bytes))
	}

	if *spuIndex >= 0 {
		os.Exit(runSPU(proc, prog))
	}
	os.Exit(runPPU(proc, prog))
}

// runPPU places the image in main memory and runs it on the scalar core.
func runPPU(proc *cell.Processor, prog *loader.Program) int {
	if err := proc.MainMemory().Write(0, prog.Bytes); err != nil {
		fmt.Fprintf(os.Stderr, "Error placing program in memory: %v\n", err)
		return 1
	}

	ppu := proc.PPU()
	ppu.LoadProgram(prog.Bytes, prog.Entry)
	ppu.Start()
	ppu.Wait()

	if *verbose {
		fmt.Printf("\nPPU finished in state %s\n", ppu.State())
		fmt.Printf("Exit value: %d\n", ppu.Regs().GPR(3))
	}
	return 0
}

// runSPU copies the image into one SPU's local store and runs it there.
func runSPU(proc *cell.Processor, prog *loader.Program) int {
	spu, ok := proc.SPU(*spuIndex)
	if !ok {
		fmt.Fprintf(os.Stderr, "No SPU %d (processor has %d)\n", *spuIndex, proc.NumSPUs())
		return 1
	}

	if !spu.LoadProgram(prog.Bytes, uint32(prog.Entry)) {
		fmt.Fprintf(os.Stderr, "Program does not fit SPU %d local store\n", *spuIndex)
		return 1
	}
	spu.Start()
	spu.Wait()

	if *verbose {
		fmt.Printf("\nSPU %d finished in state %s\n", *spuIndex, spu.State())
	}
	return 0
}
