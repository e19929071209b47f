package emu

import (
	"encoding/binary"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/sarchlab/cellsim/insts"
)

// PPUCore is the scalar/vector core of the Cell processor. It owns a
// register file, a decoder, and an optional main-memory hook, and runs its
// fetch-decode-dispatch loop on a dedicated goroutine.
//
// The register file and memory are owned exclusively by the execution
// goroutine while the core is Running; callers must Stop (or never Start)
// before inspecting or mutating state for deterministic results.
type PPUCore struct {
	runner

	regs    *PPURegFile
	decoder *insts.PPUDecoder
	mem     MainMemory
	syscall SyscallHandler

	// image backs instruction fetch when no main memory is attached, so
	// programs still run with data access on the placeholder contract.
	image     []byte
	imageBase uint64
}

// PPUOption is a functional option for configuring a PPUCore.
type PPUOption func(*PPUCore)

// WithPPULogger sets the core's logging sink. Without one, events are
// dropped.
func WithPPULogger(log logr.Logger) PPUOption {
	return func(p *PPUCore) {
		p.log = log
	}
}

// WithMainMemory attaches a main-memory hook. Fetches, loads, and stores
// resolve against it; without one the core keeps the placeholder contract.
func WithMainMemory(mem MainMemory) PPUOption {
	return func(p *PPUCore) {
		p.mem = mem
	}
}

// WithSyscallHandler sets a custom syscall handler.
func WithSyscallHandler(h SyscallHandler) PPUOption {
	return func(p *PPUCore) {
		p.syscall = h
	}
}

// NewPPUCore creates a PPU core with all registers zeroed and PC at 0.
func NewPPUCore(opts ...PPUOption) *PPUCore {
	p := &PPUCore{
		regs:    NewPPURegFile(),
		decoder: insts.NewPPUDecoder(),
	}
	p.runner.log = logr.Discard()

	for _, opt := range opts {
		opt(p)
	}

	if p.syscall == nil {
		p.syscall = NewDefaultSyscallHandler(p.regs, p.log)
	}

	p.log.Info("PPU core initialized")
	return p
}

// Regs returns the core's register file.
func (p *PPUCore) Regs() *PPURegFile {
	return p.regs
}

// LoadProgram records entry as the initial PC. With a main memory attached
// the program bytes are not copied: a loader is expected to have placed
// them there. Without one, the core retains the image and fetches from it
// directly. An unaligned entry point is logged as a warning but does not
// block loading.
func (p *PPUCore) LoadProgram(program []byte, entry uint64) bool {
	if entry%4 != 0 {
		p.log.Info("entry point is not word aligned", "entry", fmt.Sprintf("0x%X", entry))
	}
	if len(program)%4 != 0 {
		p.log.Info("program length is not a multiple of 4", "size", len(program))
	}

	if p.mem == nil {
		p.image = program
		p.imageBase = entry
	}
	p.regs.PC = entry
	p.log.Info("loaded PPU program", "size", len(program), "entry", fmt.Sprintf("0x%016X", entry))
	return true
}

// Start spawns the execution goroutine. Starting a Running core is a no-op
// with a warning.
func (p *PPUCore) Start() {
	p.start(p.Step)
}

// Stop halts the execution goroutine and joins it, leaving the core Stopped.
func (p *PPUCore) Stop() {
	p.stop()
}

// Halt requests a cooperative halt; the execution goroutine observes it
// within one loop iteration.
func (p *PPUCore) Halt() {
	p.halt()
}

// Wait blocks until the execution loop has exited.
func (p *PPUCore) Wait() {
	p.wait()
}

// Step executes a single fetch-decode-dispatch iteration. The PC advances
// past the instruction before dispatch, so branch and link semantics see the
// address of the following instruction.
func (p *PPUCore) Step() StepResult {
	word, err := p.fetch()
	if err != nil {
		return StepResult{Err: err}
	}

	inst := p.decoder.Decode(word)
	res := p.execute(inst)

	p.handleInterrupts()
	return res
}

// fetch reads the instruction word at PC and advances PC by 4. Without a
// main memory the fetch reads the retained program image; past its end it
// returns the no-op word, mirroring the external, unmodeled instruction
// memory.
func (p *PPUCore) fetch() (uint32, error) {
	pc := p.regs.PC
	p.regs.PC += 4

	if p.mem == nil {
		// Fetches below the image base must not underflow the offset.
		if p.image != nil && pc >= p.imageBase {
			off := pc - p.imageBase
			if off+4 <= uint64(len(p.image)) {
				return binary.BigEndian.Uint32(p.image[off:]), nil
			}
		}
		return NopWord, nil
	}

	buf, err := p.mem.Read(pc, 4)
	if err != nil {
		return 0, fmt.Errorf("fetch at PC=0x%016X: %w", pc, err)
	}
	return binary.BigEndian.Uint32(buf), nil
}

// handleInterrupts is the per-iteration housekeeping step. External and
// timer interrupts are not modeled; this is a reserved extension point.
func (p *PPUCore) handleInterrupts() {
}

// execute dispatches a decoded instruction to its handler. Unknown opcodes
// are a soft failure: logged, state unchanged, execution continues.
func (p *PPUCore) execute(inst *insts.PPUInst) StepResult {
	p.log.V(1).Info("execute",
		"pc", fmt.Sprintf("0x%016X", p.regs.PC-4),
		"opcode", fmt.Sprintf("0x%02X", inst.Opcode),
		"rt", inst.Rt, "ra", inst.Ra, "rb", inst.Rb)

	switch inst.Opcode {
	case insts.PPUOpADDI:
		p.executeAddi(inst)
	case insts.PPUOpADDIS:
		p.executeAddis(inst)
	case insts.PPUOpExt31:
		p.executeExtended31(inst)
	case insts.PPUOpLWZ, insts.PPUOpLBZ:
		p.executeLoad(inst)
	case insts.PPUOpSTW, insts.PPUOpSTB:
		p.executeStore(inst)
	case insts.PPUOpBC:
		p.executeBranchCond(inst)
	case insts.PPUOpB:
		p.executeBranch(inst)
	case insts.PPUOpORI:
		p.regs.SetGPR(inst.Rt, p.regs.GPR(inst.Ra)|uint64(inst.Imm))
	case insts.PPUOpORIS:
		p.regs.SetGPR(inst.Rt, p.regs.GPR(inst.Ra)|uint64(inst.Imm)<<16)
	case insts.PPUOpXORI:
		p.regs.SetGPR(inst.Rt, p.regs.GPR(inst.Ra)^uint64(inst.Imm))
	case insts.PPUOpXORIS:
		p.regs.SetGPR(inst.Rt, p.regs.GPR(inst.Ra)^uint64(inst.Imm)<<16)
	case insts.PPUOpANDI:
		result := p.regs.GPR(inst.Ra) & uint64(inst.Imm)
		p.regs.SetGPR(inst.Rt, result)
		p.regs.UpdateCR0(result)
	case insts.PPUOpANDIS:
		result := p.regs.GPR(inst.Ra) & (uint64(inst.Imm) << 16)
		p.regs.SetGPR(inst.Rt, result)
		p.regs.UpdateCR0(result)
	case insts.PPUOpSC:
		if p.syscall.Handle().Halted {
			return StepResult{Halted: true}
		}
	default:
		p.log.Info("unknown PPU instruction",
			"opcode", fmt.Sprintf("0x%02X", inst.Opcode),
			"pc", fmt.Sprintf("0x%016X", p.regs.PC-4))
	}

	return StepResult{}
}

// executeAddi implements addi: rt = ra + signext(imm), with ra index 0
// meaning "no base, immediate alone" (li sugar).
func (p *PPUCore) executeAddi(inst *insts.PPUInst) {
	imm := inst.SignedImm()
	if inst.Ra == 0 {
		p.regs.SetGPR(inst.Rt, uint64(imm))
	} else {
		p.regs.SetGPR(inst.Rt, p.regs.GPR(inst.Ra)+uint64(imm))
	}
}

// executeAddis implements addis: the immediate shifts into the upper
// halfword before the add (lis sugar when ra is 0).
func (p *PPUCore) executeAddis(inst *insts.PPUInst) {
	imm := int64(int32(uint32(inst.Imm) << 16))
	if inst.Ra == 0 {
		p.regs.SetGPR(inst.Rt, uint64(imm))
	} else {
		p.regs.SetGPR(inst.Rt, p.regs.GPR(inst.Ra)+uint64(imm))
	}
}

// executeExtended31 dispatches the extended-opcode arithmetic and logical
// group.
func (p *PPUCore) executeExtended31(inst *insts.PPUInst) {
	ra := p.regs.GPR(inst.Ra)
	rb := p.regs.GPR(inst.Rb)

	switch inst.Xo {
	case insts.PPUXoADD:
		p.regs.SetGPR(inst.Rt, ra+rb)
	case insts.PPUXoSUBF:
		p.regs.SetGPR(inst.Rt, rb-ra)
	case insts.PPUXoMULLW:
		p.regs.SetGPR(inst.Rt, uint64(uint32(ra)*uint32(rb)))
	case insts.PPUXoDIVW:
		if int32(rb) == 0 {
			p.log.Error(nil, "division by zero",
				"pc", fmt.Sprintf("0x%016X", p.regs.PC-4))
			return
		}
		p.regs.SetGPR(inst.Rt, uint64(int64(int32(ra)/int32(rb))))
	case insts.PPUXoAND:
		p.regs.SetGPR(inst.Rt, ra&rb)
	case insts.PPUXoOR:
		p.regs.SetGPR(inst.Rt, ra|rb)
	case insts.PPUXoXOR:
		p.regs.SetGPR(inst.Rt, ra^rb)
	case insts.PPUXoEXTSB:
		p.regs.SetGPR(inst.Rt, uint64(int64(int8(ra))))
	case insts.PPUXoEXTSH:
		p.regs.SetGPR(inst.Rt, uint64(int64(int16(ra))))
	default:
		p.log.Info("unknown extended opcode",
			"xo", fmt.Sprintf("31.0x%03X", inst.Xo),
			"pc", fmt.Sprintf("0x%016X", p.regs.PC-4))
	}
}

// effectiveAddress computes base + sign-extended displacement, with base
// register index 0 meaning "no base".
func (p *PPUCore) effectiveAddress(inst *insts.PPUInst) uint64 {
	var base uint64
	if inst.Ra != 0 {
		base = p.regs.GPR(inst.Ra)
	}
	return base + uint64(inst.SignedImm())
}

// executeLoad implements lwz and lbz. Without a main memory, loads return
// fixed placeholder values; this is the explicit external-memory boundary.
func (p *PPUCore) executeLoad(inst *insts.PPUInst) {
	ea := p.effectiveAddress(inst)

	size := uint64(4)
	placeholder := PlaceholderWord
	if inst.Opcode == insts.PPUOpLBZ {
		size = 1
		placeholder = PlaceholderByte
	}

	value := placeholder
	if p.mem != nil {
		buf, err := p.mem.Read(ea, size)
		if err != nil {
			p.log.Error(err, "load failed",
				"ea", fmt.Sprintf("0x%016X", ea),
				"pc", fmt.Sprintf("0x%016X", p.regs.PC-4))
			return
		}
		if size == 4 {
			value = uint64(binary.BigEndian.Uint32(buf))
		} else {
			value = uint64(buf[0])
		}
	}

	p.regs.SetGPR(inst.Rt, value)
	p.log.V(1).Info("load",
		"rt", inst.Rt, "ea", fmt.Sprintf("0x%016X", ea),
		"value", fmt.Sprintf("0x%X", value))
}

// executeStore implements stw and stb. Without a main memory, only the
// intended effect is logged.
func (p *PPUCore) executeStore(inst *insts.PPUInst) {
	ea := p.effectiveAddress(inst)
	value := p.regs.GPR(inst.Rt)

	if p.mem == nil {
		p.log.V(1).Info("store (external memory unmodeled)",
			"rs", inst.Rt, "ea", fmt.Sprintf("0x%016X", ea),
			"value", fmt.Sprintf("0x%X", value))
		return
	}

	var buf []byte
	if inst.Opcode == insts.PPUOpSTW {
		buf = make([]byte, 4)
		binary.BigEndian.PutUint32(buf, uint32(value))
	} else {
		buf = []byte{byte(value)}
	}

	if err := p.mem.Write(ea, buf); err != nil {
		p.log.Error(err, "store failed",
			"ea", fmt.Sprintf("0x%016X", ea),
			"pc", fmt.Sprintf("0x%016X", p.regs.PC-4))
	}
}

// executeBranchCond implements bc. BO bit 4 forces the branch; otherwise one
// condition-register bit, selected by BI, is tested for the truth value
// chosen by BO bit 3.
func (p *PPUCore) executeBranchCond(inst *insts.PPUInst) {
	bo, bi, bd, aa, lk := inst.BranchOptions()

	taken := false
	if bo&0x10 != 0 {
		taken = true
	} else {
		crBit := p.regs.CR&(1<<(31-bi)) != 0
		if bo&0x08 != 0 {
			taken = crBit
		} else {
			taken = !crBit
		}
	}

	if !taken {
		return
	}

	if lk {
		// PC already points past the branch: the link register receives
		// the address of the following instruction.
		p.regs.LR = p.regs.PC
	}

	if aa {
		p.regs.PC = uint64(bd)
	} else {
		p.regs.PC = p.regs.PC - 4 + uint64(bd)
	}

	p.log.V(1).Info("branch taken", "pc", fmt.Sprintf("0x%016X", p.regs.PC))
}

// executeBranch implements the unconditional branch with its 24-bit
// sign-extended target field.
func (p *PPUCore) executeBranch(inst *insts.PPUInst) {
	li, aa, lk := inst.BranchTarget()

	if lk {
		p.regs.LR = p.regs.PC
	}

	if aa {
		p.regs.PC = uint64(li)
	} else {
		p.regs.PC = p.regs.PC - 4 + uint64(li)
	}

	p.log.V(1).Info("branch", "pc", fmt.Sprintf("0x%016X", p.regs.PC))
}
