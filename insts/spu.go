package insts

// SPU opcodes (bits 21-31 of the instruction word).
const (
	SPUOpSTOP  uint32 = 0x000 // Stop and signal
	SPUOpLNOP  uint32 = 0x001 // No operation (load pipe)
	SPUOpIL    uint32 = 0x040 // Immediate Load word
	SPUOpILH   uint32 = 0x041 // Immediate Load Halfword
	SPUOpILHU  uint32 = 0x042 // Immediate Load Halfword Upper
	SPUOpA     uint32 = 0x080 // Add word
	SPUOpAH    uint32 = 0x081 // Add Halfword
	SPUOpSF    uint32 = 0x088 // Subtract From word (rb - ra)
	SPUOpAND   uint32 = 0x0C0 // AND
	SPUOpOR    uint32 = 0x0C1 // OR
	SPUOpXOR   uint32 = 0x0C2 // XOR
	SPUOpLQA   uint32 = 0x100 // Load Quadword Absolute
	SPUOpLQX   uint32 = 0x101 // Load Quadword Indexed
	SPUOpSTQA  uint32 = 0x104 // Store Quadword Absolute
	SPUOpSTQX  uint32 = 0x105 // Store Quadword Indexed
	SPUOpBR    uint32 = 0x180 // Branch Relative
	SPUOpBRA   uint32 = 0x181 // Branch Absolute
	SPUOpBRZ   uint32 = 0x182 // Branch if Zero
	SPUOpBRNZ  uint32 = 0x183 // Branch if Not Zero
	SPUOpMFSPR uint32 = 0x200 // Move From Special Register
	SPUOpMTSPR uint32 = 0x201 // Move To Special Register
)

// SPU special register numbers.
const (
	SPUSprID uint32 = 0 // Core identity assigned at creation
)

// SPUInst is a decoded SPU instruction.
type SPUInst struct {
	Raw    uint32 // Raw 32-bit instruction word
	Opcode uint32 // Opcode (bits 21-31)
	Rt     uint32 // Target register (bits 7-13)
	Ra     uint32 // Source A register (bits 14-20)
	Rb     uint32 // Source B register (bits 0-6)
	Imm    uint16 // 16-bit immediate (low halfword of the raw word)
}

// SignedImm returns the 16-bit immediate sign-extended to 32 bits.
func (i *SPUInst) SignedImm() int32 {
	return int32(int16(i.Imm))
}

// Addr14 returns the 14-bit address field used by absolute quadword access
// (in 16-byte units) and by the stop instruction as its stop code.
func (i *SPUInst) Addr14() uint32 {
	return i.Raw & 0x3FFF
}

// SPUDecoder decodes SPU machine code into instructions.
type SPUDecoder struct{}

// NewSPUDecoder creates a new SPU instruction decoder.
func NewSPUDecoder() *SPUDecoder {
	return &SPUDecoder{}
}

// Decode decodes a 32-bit SPU instruction word. Decoding is pure bit-field
// extraction; it never fails.
//
// Format: opcode(11) | ra(7) | rt(7) | rb(7)
func (d *SPUDecoder) Decode(word uint32) *SPUInst {
	return &SPUInst{
		Raw:    word,
		Opcode: (word >> 21) & 0x7FF,
		Rt:     (word >> 7) & 0x7F,
		Ra:     (word >> 14) & 0x7F,
		Rb:     word & 0x7F,
		Imm:    uint16(word & 0xFFFF),
	}
}
