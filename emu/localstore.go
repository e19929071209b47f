package emu

import (
	"encoding/binary"
	"fmt"
)

// DefaultLocalStoreSize is the SPU local store capacity: 256 KiB.
const DefaultLocalStoreSize uint32 = 256 * 1024

// LocalStore is the SPU's fixed-capacity byte array, serving as both
// instruction memory and data memory. Every fetch and every quadword access
// is validated against [0, capacity); out-of-range accesses are errors,
// never silent wraps.
type LocalStore struct {
	data []byte
}

// NewLocalStore allocates a zeroed local store. The capacity must be a
// power of two so branch-target masks can be derived from it.
func NewLocalStore(capacity uint32) (*LocalStore, error) {
	if capacity == 0 || capacity&(capacity-1) != 0 {
		return nil, fmt.Errorf("local store capacity must be a power of two, got %d", capacity)
	}
	return &LocalStore{data: make([]byte, capacity)}, nil
}

// Capacity returns the local store size in bytes.
func (ls *LocalStore) Capacity() uint32 {
	return uint32(len(ls.data))
}

// BranchMask returns the mask applied to SPU branch targets: it keeps the
// target within the local store and 4-byte aligned. The mask is derived from
// the capacity rather than hard-coded.
func (ls *LocalStore) BranchMask() uint32 {
	return (ls.Capacity() - 1) &^ 0x3
}

// Fetch32 reads the big-endian instruction word at addr.
func (ls *LocalStore) Fetch32(addr uint32) (uint32, error) {
	if uint64(addr)+4 > uint64(len(ls.data)) {
		return 0, fmt.Errorf("fetch at 0x%08X outside local store bounds", addr)
	}
	return binary.BigEndian.Uint32(ls.data[addr:]), nil
}

// ReadQuad reads the 16-byte quadword at addr.
func (ls *LocalStore) ReadQuad(addr uint32) ([16]byte, error) {
	var q [16]byte
	if uint64(addr)+16 > uint64(len(ls.data)) {
		return q, fmt.Errorf("quadword read at 0x%08X outside local store", addr)
	}
	copy(q[:], ls.data[addr:])
	return q, nil
}

// WriteQuad writes the 16-byte quadword at addr.
func (ls *LocalStore) WriteQuad(addr uint32, q [16]byte) error {
	if uint64(addr)+16 > uint64(len(ls.data)) {
		return fmt.Errorf("quadword write at 0x%08X outside local store", addr)
	}
	copy(ls.data[addr:], q[:])
	return nil
}

// WriteBytes copies data into the local store at addr. Used by program
// loading; ordinary instruction effects go through WriteQuad.
func (ls *LocalStore) WriteBytes(addr uint32, data []byte) error {
	if uint64(addr)+uint64(len(data)) > uint64(len(ls.data)) {
		return fmt.Errorf("write of %d bytes at 0x%08X outside local store", len(data), addr)
	}
	copy(ls.data[addr:], data)
	return nil
}

// ReadBytes copies n bytes starting at addr.
func (ls *LocalStore) ReadBytes(addr uint32, n uint32) ([]byte, error) {
	if uint64(addr)+uint64(n) > uint64(len(ls.data)) {
		return nil, fmt.Errorf("read of %d bytes at 0x%08X outside local store", n, addr)
	}
	out := make([]byte, n)
	copy(out, ls.data[addr:])
	return out, nil
}
