package emu

import "github.com/go-logr/logr"

// PPU system call codes, dispatched on the value of GPR0.
const (
	SyscallExit  uint64 = 1 // exit(status in GPR3): halts the core
	SyscallWrite uint64 = 4 // write(fd, buf, count): echoes count into GPR3
)

// SyscallResult is the outcome of handling one system call.
type SyscallResult struct {
	// Halted is true if the syscall terminated the core (exit).
	Halted bool
}

// SyscallHandler handles PPU system calls. The syscall convention puts the
// call number in GPR0, arguments in GPR3 onward, and the return value in
// GPR3.
type SyscallHandler interface {
	Handle() SyscallResult
}

// DefaultSyscallHandler implements the minimal syscall surface: exit and a
// write simulation. Unknown calls log a warning and return the all-ones
// error sentinel in GPR3.
type DefaultSyscallHandler struct {
	regs *PPURegFile
	log  logr.Logger
}

// NewDefaultSyscallHandler creates the default handler bound to a register
// file.
func NewDefaultSyscallHandler(regs *PPURegFile, log logr.Logger) *DefaultSyscallHandler {
	return &DefaultSyscallHandler{regs: regs, log: log}
}

// Handle executes the syscall indicated by the register file state.
func (h *DefaultSyscallHandler) Handle() SyscallResult {
	num := h.regs.GPR(0)

	switch num {
	case SyscallExit:
		h.log.Info("sys_exit called", "code", int64(h.regs.GPR(3)))
		return SyscallResult{Halted: true}

	case SyscallWrite:
		// The backing memory is external, so the write is simulated: the
		// requested byte count is echoed back as the bytes-written result.
		h.log.Info("sys_write called",
			"fd", h.regs.GPR(3), "buf", h.regs.GPR(4), "count", h.regs.GPR(5))
		h.regs.SetGPR(3, h.regs.GPR(5))
		return SyscallResult{}

	default:
		h.log.Info("unknown system call", "num", num)
		h.regs.SetGPR(3, ^uint64(0))
		return SyscallResult{}
	}
}
