package cell

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/sarchlab/cellsim/emu"
)

// Processor is an assembled processor complex: one PPU core backed by main
// memory, plus a configurable number of SPU cores, all tracked in one
// thread group.
type Processor struct {
	log logr.Logger

	group *ThreadGroup
	ppu   *emu.PPUCore
	spus  []*emu.SPUCore
	mem   *emu.StorageMemory
}

// ProcessorOption is a functional option for configuring a Processor.
type ProcessorOption func(*Processor)

// WithProcessorLogger sets the logging sink shared by the processor and
// every core it builds.
func WithProcessorLogger(log logr.Logger) ProcessorOption {
	return func(p *Processor) {
		p.log = log
	}
}

// NewProcessor builds a processor complex from a Config. The PPU is always
// created first, so it holds core identity 0 within the group.
func NewProcessor(config *Config, opts ...ProcessorOption) (*Processor, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid processor config: %w", err)
	}

	p := &Processor{
		log: logr.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.group = NewThreadGroup(0, WithManagerLogger(p.log))
	p.mem = emu.NewStorageMemory(config.MainMemoryBytes)

	p.group.Create(func(id CoreID) Core {
		p.ppu = emu.NewPPUCore(
			emu.WithPPULogger(p.log.WithValues("core", id)),
			emu.WithMainMemory(p.mem),
		)
		return p.ppu
	})

	for i := 0; i < config.NumSPUs; i++ {
		spu, err := emu.NewSPUCore(uint32(i),
			emu.WithSPULogger(p.log),
			emu.WithLocalStoreSize(config.LocalStoreBytes),
		)
		if err != nil {
			p.group.StopAllAndClear()
			return nil, fmt.Errorf("failed to build spu %d: %w", i, err)
		}
		p.group.Create(func(id CoreID) Core { return spu })
		p.spus = append(p.spus, spu)
	}

	p.log.Info("processor assembled",
		"spus", config.NumSPUs,
		"localStoreBytes", config.LocalStoreBytes,
		"mainMemoryBytes", config.MainMemoryBytes)
	return p, nil
}

// PPU returns the scalar core.
func (p *Processor) PPU() *emu.PPUCore {
	return p.ppu
}

// SPU returns the n-th synergistic core.
func (p *Processor) SPU(n int) (*emu.SPUCore, bool) {
	if n < 0 || n >= len(p.spus) {
		return nil, false
	}
	return p.spus[n], true
}

// NumSPUs returns the number of synergistic cores.
func (p *Processor) NumSPUs() int {
	return len(p.spus)
}

// MainMemory returns the PPU-visible memory backing store.
func (p *Processor) MainMemory() *emu.StorageMemory {
	return p.mem
}

// Group returns the thread group tracking every core of the complex.
func (p *Processor) Group() *ThreadGroup {
	return p.group
}

// Start starts every core.
func (p *Processor) Start() {
	p.group.StartAll()
}

// Stop stops every core, joining each execution thread.
func (p *Processor) Stop() {
	p.group.StopAll()
}

// Wait blocks until every core's execution loop has exited.
func (p *Processor) Wait() {
	p.group.WaitAll()
}
