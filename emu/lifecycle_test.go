package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cellsim/emu"
	"github.com/sarchlab/cellsim/insts"
)

// spinProgram branches back to itself forever.
func spinProgram() []byte {
	return wordsToBytes(insts.SPUOpBR<<21 | 0xFFFF)
}

var _ = Describe("Core lifecycle", func() {
	var core *emu.SPUCore

	BeforeEach(func() {
		var err error
		core, err = emu.NewSPUCore(0)
		Expect(err).To(BeNil())
	})

	AfterEach(func() {
		core.Stop()
	})

	It("should be Stopped before the first Start", func() {
		Expect(core.State()).To(Equal(emu.StateStopped))
		Expect(core.IsRunning()).To(BeFalse())
		Expect(core.IsHalted()).To(BeFalse())
	})

	It("should be Running after Start", func() {
		Expect(core.LoadProgram(spinProgram(), 0)).To(BeTrue())

		core.Start()

		Expect(core.State()).To(Equal(emu.StateRunning))
		Expect(core.IsRunning()).To(BeTrue())
	})

	It("should treat a second Start as a no-op", func() {
		Expect(core.LoadProgram(spinProgram(), 0)).To(BeTrue())

		core.Start()
		core.Start()

		Expect(core.State()).To(Equal(emu.StateRunning))
		core.Stop()
		Expect(core.State()).To(Equal(emu.StateStopped))
	})

	It("should observe Halt within one loop iteration", func() {
		Expect(core.LoadProgram(spinProgram(), 0)).To(BeTrue())
		core.Start()

		core.Halt()

		Eventually(core.IsHalted).Should(BeTrue())
		core.Wait()
	})

	It("should halt itself on a stop instruction", func() {
		Expect(core.LoadProgram(wordsToBytes(
			insts.SPUOpIL<<21|0x0005,
			insts.SPUOpSTOP<<21|0x0001,
		), 0)).To(BeTrue())

		core.Start()

		Eventually(core.State).Should(Equal(emu.StateHalted))
		core.Wait()

		// The instruction before the stop still took effect.
		Expect(core.Regs().Reg((0x0005 >> 7) & 0x7F).Word(0)).To(Equal(uint32(5)))
	})

	It("should always leave the core Stopped after Stop", func() {
		Expect(core.LoadProgram(spinProgram(), 0)).To(BeTrue())
		core.Start()

		core.Stop()

		Expect(core.State()).To(Equal(emu.StateStopped))
		Expect(core.IsRunning()).To(BeFalse())
	})

	It("should make Stop of a never-started core a no-op", func() {
		core.Stop()
		Expect(core.State()).To(Equal(emu.StateStopped))
	})

	It("should return from Wait immediately for a never-started core", func() {
		done := make(chan struct{})
		go func() {
			core.Wait()
			close(done)
		}()
		Eventually(done).Should(BeClosed())
	})

	It("should transition to Halted on a fatal fetch error", func() {
		// An empty local store decodes stop everywhere, so force the PC out
		// of range instead.
		core.Regs().PC = emu.DefaultLocalStoreSize - 2
		core.Start()

		Eventually(core.IsHalted).Should(BeTrue())
		core.Wait()
	})

	It("should support restarting after a halt", func() {
		Expect(core.LoadProgram(wordsToBytes(insts.SPUOpSTOP<<21), 0)).To(BeTrue())
		core.Start()
		Eventually(core.IsHalted).Should(BeTrue())
		core.Stop()

		core.Regs().PC = 0
		core.Start()
		Expect(core.IsRunning()).To(BeTrue())
		Eventually(core.IsHalted).Should(BeTrue())
	})
})

var _ = Describe("PPU lifecycle", func() {
	It("should run and halt a memory-backed program", func() {
		mem := emu.NewStorageMemory(1 << 16)
		core := emu.NewPPUCore(emu.WithMainMemory(mem))

		// li r3, 7; sys_exit via GPR0 preset.
		image := wordsToBytes(
			encodeDForm(insts.PPUOpADDI, 3, 0, 7),
			encodeDForm(insts.PPUOpADDI, 0, 0, 1),
			encodeSC(),
		)
		Expect(mem.Write(0x100, image)).To(Succeed())
		core.LoadProgram(image, 0x100)

		core.Start()
		Eventually(core.IsHalted).Should(BeTrue())
		core.Wait()
		core.Stop()

		Expect(core.Regs().GPR(3)).To(Equal(uint64(7)))
		Expect(core.State()).To(Equal(emu.StateStopped))
	})

	It("should keep the PC word aligned across a hookless run", func() {
		core := emu.NewPPUCore()
		core.LoadProgram(nil, 0)

		core.Start()
		Eventually(core.IsRunning).Should(BeTrue())
		core.Halt()
		core.Wait()
		core.Stop()

		Expect(core.Regs().PC % 4).To(Equal(uint64(0)))
	})
})
