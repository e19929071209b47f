package cell_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cellsim/cell"
	"github.com/sarchlab/cellsim/emu"
)

var _ = Describe("Config", func() {
	It("should default to the physical chip layout", func() {
		config := cell.DefaultConfig()

		Expect(config.NumSPUs).To(Equal(8))
		Expect(config.LocalStoreBytes).To(Equal(uint32(256 * 1024)))
		Expect(config.Validate()).To(Succeed())
	})

	It("should reject a local store size that is not a power of two", func() {
		config := cell.DefaultConfig()
		config.LocalStoreBytes = 1000

		Expect(config.Validate()).NotTo(Succeed())
	})

	It("should reject a negative SPU count", func() {
		config := cell.DefaultConfig()
		config.NumSPUs = -1

		Expect(config.Validate()).NotTo(Succeed())
	})

	It("should round-trip through a JSON file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "cell.json")
		config := cell.DefaultConfig()
		config.NumSPUs = 2
		config.MainMemoryBytes = 1 << 20

		Expect(config.SaveConfig(path)).To(Succeed())
		loaded, err := cell.LoadConfig(path)

		Expect(err).To(BeNil())
		Expect(loaded).To(Equal(config))
	})

	It("should keep defaults for fields absent from the file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "partial.json")
		Expect(os.WriteFile(path, []byte(`{"num_spus": 2}`), 0644)).To(Succeed())

		loaded, err := cell.LoadConfig(path)

		Expect(err).To(BeNil())
		Expect(loaded.NumSPUs).To(Equal(2))
		Expect(loaded.LocalStoreBytes).To(Equal(uint32(256 * 1024)))
	})

	It("should fail on a missing file", func() {
		_, err := cell.LoadConfig("/does/not/exist.json")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Processor", func() {
	var config *cell.Config

	BeforeEach(func() {
		config = cell.DefaultConfig()
		config.NumSPUs = 2
		config.LocalStoreBytes = 4096
		config.MainMemoryBytes = 1 << 16
	})

	It("should assemble one PPU and the configured SPUs", func() {
		proc, err := cell.NewProcessor(config)
		Expect(err).To(BeNil())

		Expect(proc.PPU()).NotTo(BeNil())
		Expect(proc.NumSPUs()).To(Equal(2))
		Expect(proc.Group().Count()).To(Equal(3))

		spu, ok := proc.SPU(1)
		Expect(ok).To(BeTrue())
		Expect(spu.ID()).To(Equal(uint32(1)))

		_, ok = proc.SPU(2)
		Expect(ok).To(BeFalse())
	})

	It("should give each SPU its own local store of the configured size", func() {
		proc, err := cell.NewProcessor(config)
		Expect(err).To(BeNil())

		spu0, _ := proc.SPU(0)
		spu1, _ := proc.SPU(1)
		Expect(spu0.LocalStore().Capacity()).To(Equal(uint32(4096)))
		Expect(spu0.LocalStore()).NotTo(BeIdenticalTo(spu1.LocalStore()))
	})

	It("should wire the PPU to the processor's main memory", func() {
		proc, err := cell.NewProcessor(config)
		Expect(err).To(BeNil())

		Expect(proc.MainMemory().Write(0x10, []byte{0xAB})).To(Succeed())
		buf, err := proc.MainMemory().Read(0x10, 1)
		Expect(err).To(BeNil())
		Expect(buf[0]).To(Equal(byte(0xAB)))
	})

	It("should refuse an invalid config", func() {
		config.LocalStoreBytes = 999
		_, err := cell.NewProcessor(config)
		Expect(err).To(HaveOccurred())
	})

	It("should fall back to defaults for a nil config", func() {
		proc, err := cell.NewProcessor(nil)
		Expect(err).To(BeNil())
		Expect(proc.NumSPUs()).To(Equal(8))
	})

	It("should start, wait, and stop the whole complex", func() {
		proc, err := cell.NewProcessor(config)
		Expect(err).To(BeNil())

		// Zeroed SPU local stores decode stop immediately; the PPU has no
		// program either, so halt it explicitly.
		proc.Start()
		proc.PPU().Halt()
		proc.Wait()
		proc.Stop()

		Expect(proc.PPU().State()).To(Equal(emu.StateStopped))
	})
})
