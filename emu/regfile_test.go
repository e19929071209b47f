package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cellsim/emu"
)

var _ = Describe("PPURegFile", func() {
	var regs *emu.PPURegFile

	BeforeEach(func() {
		regs = emu.NewPPURegFile()
	})

	It("should start in 64-bit mode with everything zeroed", func() {
		Expect(regs.MSR & emu.MSR64Bit).NotTo(BeZero())
		Expect(regs.GPR(0)).To(Equal(uint64(0)))
		Expect(regs.PC).To(Equal(uint64(0)))
	})

	It("should mask out-of-range register indices", func() {
		regs.SetGPR(32, 99)
		Expect(regs.GPR(0)).To(Equal(uint64(99)))
	})

	Describe("UpdateCR0", func() {
		It("should set LT for a negative result", func() {
			regs.UpdateCR0(^uint64(0))
			Expect(regs.CR & emu.CR0LT).NotTo(BeZero())
			Expect(regs.CR & emu.CR0EQ).To(BeZero())
		})

		It("should set EQ for zero", func() {
			regs.UpdateCR0(0)
			Expect(regs.CR & emu.CR0EQ).NotTo(BeZero())
		})

		It("should set GT for a positive result", func() {
			regs.UpdateCR0(1)
			Expect(regs.CR & emu.CR0GT).NotTo(BeZero())
		})

		It("should replace the previous field 0 value", func() {
			regs.UpdateCR0(0)
			regs.UpdateCR0(1)
			Expect(regs.CR & emu.CR0EQ).To(BeZero())
			Expect(regs.CR & emu.CR0GT).NotTo(BeZero())
		})

		It("should mirror the XER summary-overflow bit into SO", func() {
			regs.XER = emu.XERSummaryOverflow
			regs.UpdateCR0(1)
			Expect(regs.CR & emu.CR0SO).NotTo(BeZero())
		})
	})
})

var _ = Describe("Vec128", func() {
	It("should overlay lanes on the same storage", func() {
		var v emu.Vec128
		v.SetWord(0, 0x11223344)

		Expect(v.Halfword(0)).To(Equal(uint16(0x3344)))
		Expect(v.Halfword(1)).To(Equal(uint16(0x1122)))
		Expect(v.Byte(0)).To(Equal(uint8(0x44)))
	})

	It("should round-trip floats through their bit patterns", func() {
		var v emu.Vec128
		v.SetFloat32(2, 1.5)
		v.SetFloat64(0, -2.25)

		Expect(v.Float32(2)).To(Equal(float32(1.5)))
		Expect(v.Float64(0)).To(Equal(-2.25))
	})

	It("should mask lane indices instead of panicking", func() {
		var v emu.Vec128
		v.SetWord(4, 7)
		Expect(v.Word(0)).To(Equal(uint32(7)))
	})

	It("should read lanes straight off a returned register value", func() {
		regs := emu.NewSPURegFile()
		var v emu.Vec128
		v.SetWord(0, 0xCAFE)
		regs.SetReg(9, v)

		Expect(regs.Reg(9).Word(0)).To(Equal(uint32(0xCAFE)))
		Expect(regs.Reg(9).Halfword(0)).To(Equal(uint16(0xCAFE)))
		Expect(regs.Reg(9).Bytes()[0]).To(Equal(uint8(0xFE)))
	})
})

var _ = Describe("StorageMemory", func() {
	It("should round-trip data within bounds", func() {
		m := emu.NewStorageMemory(64)
		Expect(m.Capacity()).To(Equal(uint64(64)))

		Expect(m.Write(8, []byte{0xAA, 0xBB})).To(Succeed())
		buf, err := m.Read(8, 2)
		Expect(err).To(BeNil())
		Expect(buf).To(Equal([]byte{0xAA, 0xBB}))
	})

	It("should reject accesses that extend past the capacity", func() {
		m := emu.NewStorageMemory(64)

		Expect(m.Write(60, []byte{1, 2, 3, 4})).To(Succeed())
		Expect(m.Write(61, []byte{1, 2, 3, 4})).NotTo(Succeed())

		_, err := m.Read(64, 4)
		Expect(err).To(HaveOccurred())

		_, err = m.Read(62, 4)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("LocalStore", func() {
	It("should reject capacities that are not powers of two", func() {
		_, err := emu.NewLocalStore(1000)
		Expect(err).To(HaveOccurred())
	})

	It("should derive the branch mask from the capacity", func() {
		ls, err := emu.NewLocalStore(1024)
		Expect(err).To(BeNil())
		Expect(ls.BranchMask()).To(Equal(uint32(1020)))

		ls, err = emu.NewLocalStore(emu.DefaultLocalStoreSize)
		Expect(err).To(BeNil())
		Expect(ls.BranchMask()).To(Equal(emu.DefaultLocalStoreSize - 4))
	})

	It("should fetch big-endian words", func() {
		ls, _ := emu.NewLocalStore(64)
		Expect(ls.WriteBytes(0, []byte{0xDE, 0xAD, 0xBE, 0xEF})).To(Succeed())

		word, err := ls.Fetch32(0)
		Expect(err).To(BeNil())
		Expect(word).To(Equal(uint32(0xDEADBEEF)))
	})

	It("should bound every access", func() {
		ls, _ := emu.NewLocalStore(64)

		_, err := ls.Fetch32(62)
		Expect(err).To(HaveOccurred())

		_, err = ls.ReadQuad(49)
		Expect(err).To(HaveOccurred())

		Expect(ls.WriteQuad(49, [16]byte{})).NotTo(Succeed())
		Expect(ls.WriteQuad(48, [16]byte{})).To(Succeed())
	})

	It("should round-trip quadwords", func() {
		ls, _ := emu.NewLocalStore(64)
		q := [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}

		Expect(ls.WriteQuad(16, q)).To(Succeed())
		got, err := ls.ReadQuad(16)
		Expect(err).To(BeNil())
		Expect(got).To(Equal(q))
	})
})
