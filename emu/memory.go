package emu

import (
	"fmt"

	"github.com/sarchlab/akita/v4/mem/mem"
)

// Placeholder values returned by PPU loads when no main memory is attached.
// The backing memory is, in that configuration, an external collaborator
// that this emulation does not model.
const (
	PlaceholderWord uint64 = 0x12345678
	PlaceholderByte uint64 = 0x12

	// NopWord is ori r0, r0, 0, the word a hookless PPU fetch returns.
	NopWord uint32 = 0x60000000
)

// MainMemory is the PPU-side system memory hook. The PPU resolves fetches,
// loads, and stores against it when one is attached; without it, fetches
// return NopWord, loads return placeholder values, and stores only log.
type MainMemory interface {
	// Read returns n bytes starting at addr.
	Read(addr uint64, n uint64) ([]byte, error)

	// Write stores data starting at addr.
	Write(addr uint64, data []byte) error
}

// StorageMemory is a MainMemory backed by an Akita storage component. It is
// the in-process stand-in for the system memory a resource manager would
// grant a core in a full system.
type StorageMemory struct {
	storage  *mem.Storage
	capacity uint64
}

// NewStorageMemory allocates a storage-backed main memory of the given
// capacity in bytes.
func NewStorageMemory(capacity uint64) *StorageMemory {
	return &StorageMemory{
		storage:  mem.NewStorage(capacity),
		capacity: capacity,
	}
}

// Capacity returns the memory size in bytes.
func (m *StorageMemory) Capacity() uint64 {
	return m.capacity
}

// Read returns n bytes starting at addr. An access that extends past the
// capacity is an error; the storage itself tolerates reads near its end, so
// the bound is enforced here.
func (m *StorageMemory) Read(addr uint64, n uint64) ([]byte, error) {
	if addr+n > m.capacity || addr+n < addr {
		return nil, fmt.Errorf("read of %d bytes at 0x%X exceeds %d-byte memory", n, addr, m.capacity)
	}
	return m.storage.Read(addr, n)
}

// Write stores data starting at addr.
func (m *StorageMemory) Write(addr uint64, data []byte) error {
	n := uint64(len(data))
	if addr+n > m.capacity || addr+n < addr {
		return fmt.Errorf("write of %d bytes at 0x%X exceeds %d-byte memory", n, addr, m.capacity)
	}
	return m.storage.Write(addr, data)
}
