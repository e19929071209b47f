// Package insts provides Cell Broadband Engine instruction definitions and
// decoding for both core families.
//
// Two independent decoders are provided:
//   - PPUDecoder handles the PowerPC-style encoding of the PPU: a 6-bit
//     primary opcode in the high bits, three 5-bit register fields, a 16-bit
//     immediate, and a 10-bit extended opcode selected by primary opcode 31.
//   - SPUDecoder handles the SPU encoding: an 11-bit opcode in the high bits
//     and three 7-bit register fields.
//
// Decoding is a pure bit-field extraction and never fails. An unrecognized
// bit pattern still decodes to field values; whether the opcode is valid is
// decided by the execution units in package emu.
//
// Usage:
//
//	decoder := insts.NewPPUDecoder()
//	inst := decoder.Decode(0x38600005) // addi r3, r0, 5
//	fmt.Printf("Op: 0x%02X, Rt: %d, Ra: %d, Imm: %d\n", inst.Opcode, inst.Rt, inst.Ra, inst.Imm)
package insts
