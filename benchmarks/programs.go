package benchmarks

import (
	"github.com/sarchlab/cellsim/emu"
	"github.com/sarchlab/cellsim/insts"
	"github.com/sarchlab/cellsim/loader"
)

// PPUBenchmark is a self-contained PPU program with its expected exit
// value. Programs end with an exit syscall, so a core running one halts on
// its own.
type PPUBenchmark struct {
	Name        string
	Description string

	// Setup primes the register file before the run.
	Setup func(regs *emu.PPURegFile)

	// Program is the instruction image, loaded at address 0.
	Program *loader.Program

	// ExpectedExit is the GPR3 value at the exit syscall.
	ExpectedExit uint64
}

// SPUBenchmark is a self-contained SPU program ending in a stop
// instruction, with a register-state check.
type SPUBenchmark struct {
	Name        string
	Description string

	Setup   func(regs *emu.SPURegFile)
	Program *loader.Program

	// Check inspects the register file after the core halts.
	Check func(regs *emu.SPURegFile) bool
}

// PPUBenchmarks returns the standard PPU validation programs.
func PPUBenchmarks() []PPUBenchmark {
	return []PPUBenchmark{
		ppuArithmeticChain(),
		ppuExtendedOps(),
		ppuBranchCountdown(),
		ppuMemoryRoundTrip(),
	}
}

// SPUBenchmarks returns the standard SPU validation programs.
func SPUBenchmarks() []SPUBenchmark {
	return []SPUBenchmark{
		spuLaneCountdown(),
		spuQuadCopy(),
	}
}

func ppuArithmeticChain() PPUBenchmark {
	return PPUBenchmark{
		Name:        "arithmetic_chain",
		Description: "10 dependent increments of GPR3",
		Program: loader.Assemble(
			EncodeDForm(insts.PPUOpADDI, 3, 0, 0),
			EncodeDForm(insts.PPUOpADDI, 3, 3, 1),
			EncodeDForm(insts.PPUOpADDI, 3, 3, 1),
			EncodeDForm(insts.PPUOpADDI, 3, 3, 1),
			EncodeDForm(insts.PPUOpADDI, 3, 3, 1),
			EncodeDForm(insts.PPUOpADDI, 3, 3, 1),
			EncodeDForm(insts.PPUOpADDI, 3, 3, 1),
			EncodeDForm(insts.PPUOpADDI, 3, 3, 1),
			EncodeDForm(insts.PPUOpADDI, 3, 3, 1),
			EncodeDForm(insts.PPUOpADDI, 3, 3, 1),
			EncodeDForm(insts.PPUOpADDI, 3, 3, 1),
			EncodeDForm(insts.PPUOpADDI, 0, 0, 1),
			EncodeSC(),
		),
		ExpectedExit: 10,
	}
}

func ppuExtendedOps() PPUBenchmark {
	return PPUBenchmark{
		Name:        "extended_ops",
		Description: "mullw and subf through the extended-opcode group",
		Program: loader.Assemble(
			EncodeDForm(insts.PPUOpADDI, 4, 0, 6),
			EncodeDForm(insts.PPUOpADDI, 5, 0, 7),
			EncodeXForm(3, 4, 5, insts.PPUXoMULLW), // r3 = 42
			EncodeXForm(3, 5, 3, insts.PPUXoSUBF),  // r3 = 42 - 7
			EncodeDForm(insts.PPUOpADDI, 0, 0, 1),
			EncodeSC(),
		),
		ExpectedExit: 35,
	}
}

func ppuBranchCountdown() PPUBenchmark {
	return PPUBenchmark{
		Name:        "branch_countdown",
		Description: "conditional loop accumulating through CR0",
		Program: loader.Assemble(
			EncodeDForm(insts.PPUOpADDI, 3, 0, 3),       // counter
			EncodeDForm(insts.PPUOpADDI, 4, 0, 0),       // accumulator
			EncodeDForm(insts.PPUOpADDI, 4, 4, 2),       // loop body
			EncodeDForm(insts.PPUOpADDI, 3, 3, 0xFFFF),  // counter--
			EncodeDForm(insts.PPUOpANDI, 31, 3, 0xFFFF), // CR0 from counter
			EncodeBC(4, 2, 0xFFF4),                      // loop while not EQ
			EncodeDForm(insts.PPUOpADDI, 3, 4, 0),
			EncodeDForm(insts.PPUOpADDI, 0, 0, 1),
			EncodeSC(),
		),
		ExpectedExit: 6,
	}
}

func ppuMemoryRoundTrip() PPUBenchmark {
	return PPUBenchmark{
		Name:        "memory_round_trip",
		Description: "stw followed by lwz through main memory",
		Program: loader.Assemble(
			EncodeDForm(insts.PPUOpADDI, 10, 0, 0x200),
			EncodeDForm(insts.PPUOpADDI, 9, 0, 0x55),
			EncodeDForm(insts.PPUOpSTW, 9, 10, 0),
			EncodeDForm(insts.PPUOpLWZ, 3, 10, 0),
			EncodeDForm(insts.PPUOpADDI, 0, 0, 1),
			EncodeSC(),
		),
		ExpectedExit: 0x55,
	}
}

func spuLaneCountdown() SPUBenchmark {
	return SPUBenchmark{
		Name:        "lane_countdown",
		Description: "brnz loop decrementing word lane 0 of register 127",
		Setup: func(regs *emu.SPURegFile) {
			var counter, minusOne emu.Vec128
			counter.SetWord(0, 4)
			for i := 0; i < 4; i++ {
				minusOne.SetWord(i, 0xFFFFFFFF)
			}
			regs.SetReg(127, counter)
			regs.SetReg(5, minusOne)
		},
		Program: loader.Assemble(
			EncodeSPURR(insts.SPUOpA, 127, 127, 5),
			// Immediate 0xFFFE: offset -2 words, condition register 127.
			EncodeSPUImm(insts.SPUOpBRNZ, 0xFFFE),
			EncodeSPUImm(insts.SPUOpSTOP, 0),
		),
		Check: func(regs *emu.SPURegFile) bool {
			return regs.Reg(127).Word(0) == 0
		},
	}
}

func spuQuadCopy() SPUBenchmark {
	return SPUBenchmark{
		Name:        "quad_copy",
		Description: "register-to-register copy through the local store",
		Setup: func(regs *emu.SPURegFile) {
			var pattern, addr emu.Vec128
			for i := 0; i < 4; i++ {
				pattern.SetWord(i, 0xA0A0A0A0+uint32(i))
			}
			addr.SetWord(0, 0x200)
			regs.SetReg(0, pattern)
			regs.SetReg(10, addr)
		},
		Program: loader.Assemble(
			// addr14 0x20 stores register 0 at byte 0x200.
			EncodeSPUImm(insts.SPUOpSTQA, 0x20),
			EncodeSPURR(insts.SPUOpLQX, 2, 10, 11),
			EncodeSPUImm(insts.SPUOpSTOP, 0),
		),
		Check: func(regs *emu.SPURegFile) bool {
			return regs.Reg(2).Word(0) == 0xA0A0A0A0 &&
				regs.Reg(2).Word(3) == 0xA0A0A0A3
		},
	}
}
