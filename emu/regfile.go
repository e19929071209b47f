package emu

// Condition register field 0 bits.
const (
	CR0LT uint32 = 0x80000000 // Negative result
	CR0GT uint32 = 0x40000000 // Positive result
	CR0EQ uint32 = 0x20000000 // Zero result
	CR0SO uint32 = 0x10000000 // Summary overflow, mirrors XER[SO]
)

// XERSummaryOverflow is the summary-overflow bit of the fixed-point
// exception register.
const XERSummaryOverflow uint32 = 0x80000000

// MSR64Bit is the 64-bit-mode bit of the machine state register. It is the
// only MSR bit this emulation gives meaning to.
const MSR64Bit uint64 = 0x8000

// PPURegFile is the PPU register file: 32 general-purpose registers,
// 32 floating-point registers, 32 vector registers, and the special
// registers.
//
// Register accessors mask the index to the valid range instead of erroring;
// an out-of-range index addresses index modulo the register count.
type PPURegFile struct {
	gpr [32]uint64
	fpr [32]float64
	vr  [32]Vec128

	// PC is the program counter. It stays 4-byte aligned as long as the
	// instruction stream does not deliberately misalign it.
	PC uint64

	// LR is the link register.
	LR uint64

	// CTR is the count register.
	CTR uint64

	// CR is the condition register. Field 0 (the top four bits) is updated
	// by record-forming logical operations.
	CR uint32

	// XER is the fixed-point exception register.
	XER uint32

	// MSR is the machine state register.
	MSR uint64
}

// NewPPURegFile creates a PPU register file with all registers zeroed and
// the machine state register in 64-bit mode.
func NewPPURegFile() *PPURegFile {
	return &PPURegFile{MSR: MSR64Bit}
}

// GPR reads general-purpose register n.
func (r *PPURegFile) GPR(n uint32) uint64 {
	return r.gpr[n&0x1F]
}

// SetGPR writes general-purpose register n.
func (r *PPURegFile) SetGPR(n uint32, val uint64) {
	r.gpr[n&0x1F] = val
}

// FPR reads floating-point register n.
func (r *PPURegFile) FPR(n uint32) float64 {
	return r.fpr[n&0x1F]
}

// SetFPR writes floating-point register n.
func (r *PPURegFile) SetFPR(n uint32, val float64) {
	r.fpr[n&0x1F] = val
}

// VR reads vector register n.
func (r *PPURegFile) VR(n uint32) Vec128 {
	return r.vr[n&0x1F]
}

// SetVR writes vector register n.
func (r *PPURegFile) SetVR(n uint32, val Vec128) {
	r.vr[n&0x1F] = val
}

// UpdateCR0 recomputes condition register field 0 from a result value:
// LT if the result is negative, EQ if zero, GT otherwise. The SO bit mirrors
// XER's summary-overflow bit.
func (r *PPURegFile) UpdateCR0(result uint64) {
	r.CR &= 0x0FFFFFFF

	switch {
	case int64(result) < 0:
		r.CR |= CR0LT
	case result == 0:
		r.CR |= CR0EQ
	default:
		r.CR |= CR0GT
	}

	if r.XER&XERSummaryOverflow != 0 {
		r.CR |= CR0SO
	}
}

// SPURegFile is the SPU register file: 128 uniform 128-bit registers and a
// 32-bit program counter constrained to the local store's address range.
type SPURegFile struct {
	regs [128]Vec128

	// PC is the program counter, in local-store byte addresses.
	PC uint32
}

// NewSPURegFile creates an SPU register file with all registers zeroed.
func NewSPURegFile() *SPURegFile {
	return &SPURegFile{}
}

// Reg reads register n. The index is masked to 0-127.
func (r *SPURegFile) Reg(n uint32) Vec128 {
	return r.regs[n&0x7F]
}

// SetReg writes register n.
func (r *SPURegFile) SetReg(n uint32, val Vec128) {
	r.regs[n&0x7F] = val
}

// reg returns a mutable pointer for in-place lane updates by the execution
// units.
func (r *SPURegFile) reg(n uint32) *Vec128 {
	return &r.regs[n&0x7F]
}
