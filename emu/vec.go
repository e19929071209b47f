package emu

import (
	"encoding/binary"
	"math"
)

// Vec128 is a 128-bit register value. It backs both the PPU vector registers
// and the SPU uniform register file, and is addressable as 16 bytes,
// 8 halfwords, 4 words, 2 doublewords, 4 single-precision floats, or
// 2 double-precision floats.
type Vec128 struct {
	b [16]byte
}

// Byte returns byte lane i. Lane indices are masked to the valid range.
// Getters take value receivers so lanes can be read straight off a returned
// register value; setters mutate and stay on the pointer.
func (v Vec128) Byte(i int) uint8 {
	return v.b[i&0xF]
}

// SetByte sets byte lane i.
func (v *Vec128) SetByte(i int, val uint8) {
	v.b[i&0xF] = val
}

// Halfword returns halfword lane i.
func (v Vec128) Halfword(i int) uint16 {
	i &= 0x7
	return binary.LittleEndian.Uint16(v.b[i*2:])
}

// SetHalfword sets halfword lane i.
func (v *Vec128) SetHalfword(i int, val uint16) {
	i &= 0x7
	binary.LittleEndian.PutUint16(v.b[i*2:], val)
}

// Word returns word lane i.
func (v Vec128) Word(i int) uint32 {
	i &= 0x3
	return binary.LittleEndian.Uint32(v.b[i*4:])
}

// SetWord sets word lane i.
func (v *Vec128) SetWord(i int, val uint32) {
	i &= 0x3
	binary.LittleEndian.PutUint32(v.b[i*4:], val)
}

// Dword returns doubleword lane i.
func (v Vec128) Dword(i int) uint64 {
	i &= 0x1
	return binary.LittleEndian.Uint64(v.b[i*8:])
}

// SetDword sets doubleword lane i.
func (v *Vec128) SetDword(i int, val uint64) {
	i &= 0x1
	binary.LittleEndian.PutUint64(v.b[i*8:], val)
}

// Float32 returns single-precision float lane i.
func (v Vec128) Float32(i int) float32 {
	return math.Float32frombits(v.Word(i))
}

// SetFloat32 sets single-precision float lane i.
func (v *Vec128) SetFloat32(i int, val float32) {
	v.SetWord(i, math.Float32bits(val))
}

// Float64 returns double-precision float lane i.
func (v Vec128) Float64(i int) float64 {
	return math.Float64frombits(v.Dword(i))
}

// SetFloat64 sets double-precision float lane i.
func (v *Vec128) SetFloat64(i int, val float64) {
	v.SetDword(i, math.Float64bits(val))
}

// Bytes returns a copy of the register's 16 bytes.
func (v Vec128) Bytes() [16]byte {
	return v.b
}

// SetBytes replaces the register's 16 bytes.
func (v *Vec128) SetBytes(b [16]byte) {
	v.b = b
}
