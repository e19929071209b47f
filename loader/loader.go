// Package loader provides flat binary image loading for Cell programs.
package loader

import (
	"encoding/binary"
	"fmt"
	"os"
)

// Program is a raw instruction image ready for loading into a core.
// Images are flat big-endian words with no container format.
type Program struct {
	// Bytes is the image content, placed at offset 0 of the target
	// memory.
	Bytes []byte
	// Entry is the address execution begins at.
	Entry uint64
}

// Load reads a flat binary image from a file.
func Load(path string, entry uint64) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program image: %w", err)
	}

	prog := &Program{
		Bytes: data,
		Entry: entry,
	}
	if err := prog.Validate(); err != nil {
		return nil, err
	}
	return prog, nil
}

// Assemble packs instruction words into a big-endian image. It is the
// inverse of instruction fetch and is mostly useful for building test and
// demo programs in code.
func Assemble(words ...uint32) *Program {
	bytes := make([]byte, 4*len(words))
	for i, w := range words {
		binary.BigEndian.PutUint32(bytes[4*i:], w)
	}
	return &Program{Bytes: bytes}
}

// Validate checks that the image is loadable: a word-aligned entry point
// inside the image. A length that is not a multiple of 4 is not an error
// here; the cores warn about it at load time.
func (p *Program) Validate() error {
	if p.Entry%4 != 0 {
		return fmt.Errorf("entry point 0x%x is not word aligned", p.Entry)
	}
	if len(p.Bytes) > 0 && p.Entry >= uint64(len(p.Bytes)) {
		return fmt.Errorf("entry point 0x%x is outside the %d-byte image", p.Entry, len(p.Bytes))
	}
	return nil
}

// FitsLocalStore reports whether the image fits a local store of the
// given capacity.
func (p *Program) FitsLocalStore(capacity uint32) bool {
	return uint64(len(p.Bytes)) <= uint64(capacity)
}
