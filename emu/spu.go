package emu

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/sarchlab/cellsim/insts"
)

// SPUCore is one SIMD core of the Cell processor: 128 uniform 128-bit
// registers and a bounded local store that serves as both instruction and
// data memory. The fetch-decode-dispatch loop runs on a dedicated goroutine.
type SPUCore struct {
	runner

	id      uint32
	regs    *SPURegFile
	ls      *LocalStore
	decoder *insts.SPUDecoder
}

// SPUOption is a functional option for configuring an SPUCore.
type SPUOption func(*spuConfig)

type spuConfig struct {
	log        logr.Logger
	localStore uint32
}

// WithSPULogger sets the core's logging sink. Without one, events are
// dropped.
func WithSPULogger(log logr.Logger) SPUOption {
	return func(c *spuConfig) {
		c.log = log
	}
}

// WithLocalStoreSize overrides the local store capacity. It must be a power
// of two; branch masks are derived from it.
func WithLocalStoreSize(capacity uint32) SPUOption {
	return func(c *spuConfig) {
		c.localStore = capacity
	}
}

// NewSPUCore creates an SPU core with the given identity, all registers
// zeroed, PC at 0, and a zeroed local store.
func NewSPUCore(id uint32, opts ...SPUOption) (*SPUCore, error) {
	cfg := spuConfig{
		log:        logr.Discard(),
		localStore: DefaultLocalStoreSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	ls, err := NewLocalStore(cfg.localStore)
	if err != nil {
		return nil, err
	}

	s := &SPUCore{
		id:      id,
		regs:    NewSPURegFile(),
		ls:      ls,
		decoder: insts.NewSPUDecoder(),
	}
	s.runner.log = cfg.log.WithValues("spu", id)

	s.log.Info("SPU core initialized")
	return s, nil
}

// ID returns the core identity assigned at creation.
func (s *SPUCore) ID() uint32 {
	return s.id
}

// Regs returns the core's register file.
func (s *SPUCore) Regs() *SPURegFile {
	return s.regs
}

// LocalStore returns the core's local store.
func (s *SPUCore) LocalStore() *LocalStore {
	return s.ls
}

// LoadProgram copies the program into the local store and sets PC to entry.
// It fails, without mutating any state, if the program does not fit or the
// entry point is outside the local store.
func (s *SPUCore) LoadProgram(program []byte, entry uint32) bool {
	if uint64(len(program)) > uint64(s.ls.Capacity()) {
		s.log.Error(nil, "program exceeds local store",
			"size", len(program), "capacity", s.ls.Capacity())
		return false
	}
	if entry >= s.ls.Capacity() {
		s.log.Error(nil, "entry point outside local store",
			"entry", fmt.Sprintf("0x%08X", entry))
		return false
	}
	if len(program)%4 != 0 {
		s.log.Info("program length is not a multiple of 4", "size", len(program))
	}

	if err := s.ls.WriteBytes(0, program); err != nil {
		s.log.Error(err, "program load failed")
		return false
	}
	s.regs.PC = entry

	s.log.Info("loaded SPU program",
		"size", len(program), "entry", fmt.Sprintf("0x%08X", entry))
	return true
}

// Start spawns the execution goroutine. Starting a Running core is a no-op
// with a warning.
func (s *SPUCore) Start() {
	s.start(s.Step)
}

// Stop halts the execution goroutine and joins it, leaving the core Stopped.
func (s *SPUCore) Stop() {
	s.stop()
}

// Halt requests a cooperative halt; the execution goroutine observes it
// within one loop iteration.
func (s *SPUCore) Halt() {
	s.halt()
}

// Wait blocks until the execution loop has exited.
func (s *SPUCore) Wait() {
	s.wait()
}

// Step executes a single fetch-decode-dispatch iteration. Running the PC off
// the end of the local store is fatal to this core only.
func (s *SPUCore) Step() StepResult {
	pc := s.regs.PC
	word, err := s.ls.Fetch32(pc)
	if err != nil {
		return StepResult{Err: err}
	}
	s.regs.PC = pc + 4

	inst := s.decoder.Decode(word)
	res := s.execute(inst)

	s.handleEvents()
	return res
}

// handleEvents is the per-iteration housekeeping step. DMA completion and
// external events are not modeled; this is a reserved extension point.
func (s *SPUCore) handleEvents() {
}

// execute dispatches a decoded instruction to its handler. Unknown opcodes
// are a soft failure: logged, state unchanged, execution continues.
func (s *SPUCore) execute(inst *insts.SPUInst) StepResult {
	s.log.V(1).Info("execute",
		"pc", fmt.Sprintf("0x%08X", s.regs.PC-4),
		"opcode", fmt.Sprintf("0x%03X", inst.Opcode),
		"rt", inst.Rt, "ra", inst.Ra, "rb", inst.Rb)

	switch inst.Opcode {
	case insts.SPUOpSTOP:
		s.log.Info("stop instruction",
			"code", fmt.Sprintf("0x%04X", inst.Addr14()))
		return StepResult{Halted: true}

	case insts.SPUOpLNOP:
		// No operation.

	case insts.SPUOpIL:
		s.executeIl(inst)
	case insts.SPUOpILH:
		s.executeIlh(inst)
	case insts.SPUOpILHU:
		s.executeIlhu(inst)

	case insts.SPUOpA:
		s.executeA(inst)
	case insts.SPUOpAH:
		s.executeAh(inst)
	case insts.SPUOpSF:
		s.executeSf(inst)

	case insts.SPUOpAND:
		s.executeWordLogic(inst, func(a, b uint32) uint32 { return a & b })
	case insts.SPUOpOR:
		s.executeWordLogic(inst, func(a, b uint32) uint32 { return a | b })
	case insts.SPUOpXOR:
		s.executeWordLogic(inst, func(a, b uint32) uint32 { return a ^ b })

	case insts.SPUOpLQA:
		s.executeLoadQuad(inst.Rt, inst.Addr14()<<4, "lqa")
	case insts.SPUOpLQX:
		s.executeLoadQuad(inst.Rt, s.indexedAddress(inst), "lqx")
	case insts.SPUOpSTQA:
		s.executeStoreQuad(inst.Rt, inst.Addr14()<<4, "stqa")
	case insts.SPUOpSTQX:
		s.executeStoreQuad(inst.Rt, s.indexedAddress(inst), "stqx")

	case insts.SPUOpBR:
		s.executeBranchRel(inst.SignedImm())
	case insts.SPUOpBRA:
		s.regs.PC = (inst.Addr14() << 2) & s.ls.BranchMask()
	case insts.SPUOpBRZ:
		if s.regs.Reg(inst.Rt).Word(0) == 0 {
			s.executeBranchRel(inst.SignedImm())
		}
	case insts.SPUOpBRNZ:
		if s.regs.Reg(inst.Rt).Word(0) != 0 {
			s.executeBranchRel(inst.SignedImm())
		}

	case insts.SPUOpMFSPR:
		s.executeMfspr(inst)
	case insts.SPUOpMTSPR:
		s.log.Info("unknown SPR write", "spr", inst.Ra)

	default:
		s.log.Info("unknown SPU instruction",
			"opcode", fmt.Sprintf("0x%03X", inst.Opcode),
			"pc", fmt.Sprintf("0x%08X", s.regs.PC-4))
	}

	return StepResult{}
}

// executeIl sign-extends the 16-bit immediate into all 4 word lanes.
func (s *SPUCore) executeIl(inst *insts.SPUInst) {
	value := uint32(inst.SignedImm())
	rt := s.regs.reg(inst.Rt)
	for i := 0; i < 4; i++ {
		rt.SetWord(i, value)
	}
}

// executeIlh places the immediate in the low half of each word lane.
func (s *SPUCore) executeIlh(inst *insts.SPUInst) {
	rt := s.regs.reg(inst.Rt)
	for i := 0; i < 4; i++ {
		rt.SetWord(i, uint32(inst.Imm))
	}
}

// executeIlhu places the immediate in the high half of each word lane.
func (s *SPUCore) executeIlhu(inst *insts.SPUInst) {
	rt := s.regs.reg(inst.Rt)
	for i := 0; i < 4; i++ {
		rt.SetWord(i, uint32(inst.Imm)<<16)
	}
}

// executeA adds the 4 word lanes of ra and rb.
func (s *SPUCore) executeA(inst *insts.SPUInst) {
	ra := s.regs.Reg(inst.Ra)
	rb := s.regs.Reg(inst.Rb)
	rt := s.regs.reg(inst.Rt)
	for i := 0; i < 4; i++ {
		rt.SetWord(i, ra.Word(i)+rb.Word(i))
	}
}

// executeAh adds the 8 halfword lanes of ra and rb.
func (s *SPUCore) executeAh(inst *insts.SPUInst) {
	ra := s.regs.Reg(inst.Ra)
	rb := s.regs.Reg(inst.Rb)
	rt := s.regs.reg(inst.Rt)
	for i := 0; i < 8; i++ {
		rt.SetHalfword(i, ra.Halfword(i)+rb.Halfword(i))
	}
}

// executeSf subtracts ra from rb (note the operand order) lane-wise.
func (s *SPUCore) executeSf(inst *insts.SPUInst) {
	ra := s.regs.Reg(inst.Ra)
	rb := s.regs.Reg(inst.Rb)
	rt := s.regs.reg(inst.Rt)
	for i := 0; i < 4; i++ {
		rt.SetWord(i, rb.Word(i)-ra.Word(i))
	}
}

// executeWordLogic applies a bitwise operation across the 4 word lanes.
func (s *SPUCore) executeWordLogic(inst *insts.SPUInst, op func(a, b uint32) uint32) {
	ra := s.regs.Reg(inst.Ra)
	rb := s.regs.Reg(inst.Rb)
	rt := s.regs.reg(inst.Rt)
	for i := 0; i < 4; i++ {
		rt.SetWord(i, op(ra.Word(i), rb.Word(i)))
	}
}

// indexedAddress computes the 16-byte-aligned sum of the first word lanes
// of ra and rb.
func (s *SPUCore) indexedAddress(inst *insts.SPUInst) uint32 {
	ra := s.regs.Reg(inst.Ra)
	rb := s.regs.Reg(inst.Rb)
	return (ra.Word(0) + rb.Word(0)) &^ 0xF
}

// executeLoadQuad loads a 16-byte quadword into rt. An out-of-bounds
// address is logged and the load is skipped.
func (s *SPUCore) executeLoadQuad(rt, addr uint32, mnemonic string) {
	q, err := s.ls.ReadQuad(addr)
	if err != nil {
		s.log.Error(err, "load skipped", "op", mnemonic,
			"addr", fmt.Sprintf("0x%08X", addr))
		return
	}
	reg := s.regs.reg(rt)
	reg.SetBytes(q)
}

// executeStoreQuad stores rt's 16 bytes to the local store. An out-of-bounds
// address is logged and the store is skipped.
func (s *SPUCore) executeStoreQuad(rt, addr uint32, mnemonic string) {
	reg := s.regs.Reg(rt)
	if err := s.ls.WriteQuad(addr, reg.Bytes()); err != nil {
		s.log.Error(err, "store skipped", "op", mnemonic,
			"addr", fmt.Sprintf("0x%08X", addr))
	}
}

// executeBranchRel branches relative to the already-advanced PC, masked to
// stay within the local store and 4-byte aligned.
func (s *SPUCore) executeBranchRel(offset int32) {
	s.regs.PC = uint32(int32(s.regs.PC)+offset<<2) & s.ls.BranchMask()
}

// executeMfspr reads a special register into word lane 0 of rt, zeroing the
// other lanes.
func (s *SPUCore) executeMfspr(inst *insts.SPUInst) {
	switch inst.Ra {
	case insts.SPUSprID:
		rt := s.regs.reg(inst.Rt)
		rt.SetWord(0, s.id)
		for i := 1; i < 4; i++ {
			rt.SetWord(i, 0)
		}
	default:
		s.log.Info("unknown SPR read", "spr", inst.Ra)
	}
}

// DMAGet would transfer size bytes from main-storage address ea into the
// local store at lsAddr. Cross-core transfers are an extension point and are
// not implemented in this core; the request is only logged.
func (s *SPUCore) DMAGet(lsAddr uint32, ea uint64, size uint32, tag uint32) bool {
	s.log.Info("dma get not implemented",
		"ls", fmt.Sprintf("0x%08X", lsAddr), "ea", fmt.Sprintf("0x%016X", ea),
		"size", size, "tag", tag)
	return false
}

// DMAPut would transfer size bytes from the local store at lsAddr to
// main-storage address ea. Not implemented; the request is only logged.
func (s *SPUCore) DMAPut(lsAddr uint32, ea uint64, size uint32, tag uint32) bool {
	s.log.Info("dma put not implemented",
		"ls", fmt.Sprintf("0x%08X", lsAddr), "ea", fmt.Sprintf("0x%016X", ea),
		"size", size, "tag", tag)
	return false
}

// DMAWait would block until the transfers selected by tagMask complete.
// Not implemented; the request is only logged.
func (s *SPUCore) DMAWait(tagMask uint32) {
	s.log.Info("dma wait not implemented", "tagMask", fmt.Sprintf("0x%08X", tagMask))
}
