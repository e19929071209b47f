package cell

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sarchlab/cellsim/emu"
)

// Config describes the shape of a processor complex.
type Config struct {
	// NumSPUs is the number of synergistic cores to instantiate.
	// Default: 8, matching the physical chip.
	NumSPUs int `json:"num_spus"`

	// LocalStoreBytes is the per-SPU local store capacity. Must be a
	// power of two. Default: 256 KiB.
	LocalStoreBytes uint32 `json:"local_store_bytes"`

	// MainMemoryBytes is the size of the PPU-visible main memory.
	// Default: 64 MiB.
	MainMemoryBytes uint64 `json:"main_memory_bytes"`
}

// DefaultConfig returns a Config matching the physical chip layout.
func DefaultConfig() *Config {
	return &Config{
		NumSPUs:         8,
		LocalStoreBytes: emu.DefaultLocalStoreSize,
		MainMemoryBytes: 64 * 1024 * 1024,
	}
}

// LoadConfig loads a Config from a JSON file. Fields absent from the file
// keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read processor config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse processor config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a Config to a JSON file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize processor config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write processor config file: %w", err)
	}

	return nil
}

// Validate checks that the configuration describes a buildable processor.
func (c *Config) Validate() error {
	if c.NumSPUs < 0 {
		return fmt.Errorf("num_spus must be >= 0")
	}
	if c.LocalStoreBytes == 0 || c.LocalStoreBytes&(c.LocalStoreBytes-1) != 0 {
		return fmt.Errorf("local_store_bytes must be a power of two")
	}
	if c.MainMemoryBytes == 0 {
		return fmt.Errorf("main_memory_bytes must be > 0")
	}
	return nil
}

// Clone returns a deep copy of the Config.
func (c *Config) Clone() *Config {
	return &Config{
		NumSPUs:         c.NumSPUs,
		LocalStoreBytes: c.LocalStoreBytes,
		MainMemoryBytes: c.MainMemoryBytes,
	}
}
