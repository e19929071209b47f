// Package benchmarks provides canned Cell programs for end-to-end
// validation of the emulated cores.
package benchmarks

// PPU instruction encoders. These build the D-form, X-form, and branch
// layouts the decoder strips back apart.

// EncodeDForm builds opcode | rt | ra | imm.
func EncodeDForm(op, rt, ra uint32, imm uint16) uint32 {
	return op<<26 | rt<<21 | ra<<16 | uint32(imm)
}

// EncodeXForm builds an extended-opcode-31 word.
func EncodeXForm(rt, ra, rb, xo uint32) uint32 {
	return uint32(31)<<26 | rt<<21 | ra<<16 | rb<<11 | xo<<1
}

// EncodeBC builds a conditional branch. bd is the raw 16-bit displacement
// field with its low two bits cleared.
func EncodeBC(bo, bi uint32, bd uint16) uint32 {
	return uint32(16)<<26 | bo<<21 | bi<<16 | uint32(bd)&0xFFFC
}

// EncodeB builds an unconditional relative branch.
func EncodeB(li int32) uint32 {
	return uint32(18)<<26 | uint32(li)&0x03FFFFFC
}

// EncodeSC builds the system call word.
func EncodeSC() uint32 {
	return uint32(17)<<26 | 0x2
}

// SPU instruction encoders. Immediate forms carry the target register in
// bits 7-13 of the immediate itself, so callers pick immediates whose
// overlapping register field lands where they want it.

// EncodeSPURR builds opcode | ra | rt | rb.
func EncodeSPURR(op, rt, ra, rb uint32) uint32 {
	return op<<21 | ra<<14 | rt<<7 | rb
}

// EncodeSPUImm builds opcode | imm with the overlapping register field.
func EncodeSPUImm(op uint32, imm uint16) uint32 {
	return op<<21 | uint32(imm)
}
