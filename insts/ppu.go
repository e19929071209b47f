package insts

// PPU primary opcodes (bits 0-5, big-endian numbering).
const (
	PPUOpADDI  uint32 = 0x0E // Add Immediate
	PPUOpADDIS uint32 = 0x0F // Add Immediate Shifted
	PPUOpBC    uint32 = 0x10 // Branch Conditional
	PPUOpSC    uint32 = 0x11 // System Call
	PPUOpB     uint32 = 0x12 // Branch
	PPUOpORI   uint32 = 0x18 // OR Immediate
	PPUOpORIS  uint32 = 0x19 // OR Immediate Shifted
	PPUOpXORI  uint32 = 0x1A // XOR Immediate
	PPUOpXORIS uint32 = 0x1B // XOR Immediate Shifted
	PPUOpANDI  uint32 = 0x1C // AND Immediate and Record
	PPUOpANDIS uint32 = 0x1D // AND Immediate Shifted and Record
	PPUOpExt31 uint32 = 0x1F // Extended opcode group 31
	PPUOpLWZ   uint32 = 0x20 // Load Word and Zero
	PPUOpLBZ   uint32 = 0x22 // Load Byte and Zero
	PPUOpSTW   uint32 = 0x24 // Store Word
	PPUOpSTB   uint32 = 0x26 // Store Byte
)

// PPU extended opcodes for primary opcode 31 (bits 21-30).
const (
	PPUXoAND   uint32 = 0x01C // AND
	PPUXoSUBF  uint32 = 0x028 // Subtract From (rb - ra)
	PPUXoMULLW uint32 = 0x0EB // Multiply Low Word
	PPUXoADD   uint32 = 0x10A // Add
	PPUXoXOR   uint32 = 0x13C // XOR
	PPUXoOR    uint32 = 0x1BC // OR
	PPUXoDIVW  uint32 = 0x1CB // Divide Word
	PPUXoEXTSH uint32 = 0x39A // Extend Sign Halfword
	PPUXoEXTSB uint32 = 0x3BA // Extend Sign Byte
)

// PPUInst is a decoded PPU instruction. The raw word is retained because
// branch instructions carry fields (AA, LK, 24-bit displacement) that do not
// fit the common register/immediate layout.
type PPUInst struct {
	Raw    uint32 // Raw 32-bit instruction word
	Opcode uint32 // Primary opcode (bits 0-5)
	Rt     uint32 // Target register (bits 6-10)
	Ra     uint32 // Source A register (bits 11-15)
	Rb     uint32 // Source B register (bits 16-20)
	Xo     uint32 // Extended opcode (bits 21-30), meaningful when Opcode is PPUOpExt31
	Imm    uint16 // 16-bit immediate / displacement (bits 16-31)
}

// SignedImm returns the 16-bit immediate sign-extended to 64 bits.
func (i *PPUInst) SignedImm() int64 {
	return int64(int16(i.Imm))
}

// BranchOptions extracts the BO/BI/BD/AA/LK fields of a branch-conditional
// instruction.
//
// Format: opcode(6) | BO(5) | BI(5) | BD(14) | AA | LK
func (i *PPUInst) BranchOptions() (bo, bi uint32, bd int64, aa, lk bool) {
	bo = (i.Raw >> 21) & 0x1F
	bi = (i.Raw >> 16) & 0x1F
	bd = int64(int16(i.Raw & 0xFFFC))
	aa = i.Raw&0x2 != 0
	lk = i.Raw&0x1 != 0
	return bo, bi, bd, aa, lk
}

// BranchTarget extracts the LI/AA/LK fields of an unconditional branch.
//
// Format: opcode(6) | LI(24) | AA | LK
// LI occupies bits 6-29 with the low two bits of the word cleared, and is
// sign-extended from bit 6.
func (i *PPUInst) BranchTarget() (li int64, aa, lk bool) {
	raw := int32(i.Raw & 0x03FFFFFC)
	if raw&0x02000000 != 0 {
		raw |= ^int32(0x03FFFFFF)
	}
	li = int64(raw)
	aa = i.Raw&0x2 != 0
	lk = i.Raw&0x1 != 0
	return li, aa, lk
}

// PPUDecoder decodes PPU machine code into instructions.
type PPUDecoder struct{}

// NewPPUDecoder creates a new PPU instruction decoder.
func NewPPUDecoder() *PPUDecoder {
	return &PPUDecoder{}
}

// Decode decodes a 32-bit PPU instruction word. Decoding is pure bit-field
// extraction; it never fails. Unknown opcodes are a dispatch-time concern.
//
// Format: opcode(6) | rt(5) | ra(5) | rb(5) | ... | xo(10) | rc
func (d *PPUDecoder) Decode(word uint32) *PPUInst {
	return &PPUInst{
		Raw:    word,
		Opcode: (word >> 26) & 0x3F,
		Rt:     (word >> 21) & 0x1F,
		Ra:     (word >> 16) & 0x1F,
		Rb:     (word >> 11) & 0x1F,
		Xo:     (word >> 1) & 0x3FF,
		Imm:    uint16(word & 0xFFFF),
	}
}
