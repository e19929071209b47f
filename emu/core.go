package emu

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/go-logr/logr"
)

// ExecState is the execution state of a core.
type ExecState int32

// Core execution states.
const (
	// StateStopped means the core has no execution thread. Every core is
	// Stopped before its first Start and again after Stop returns.
	StateStopped ExecState = iota

	// StateRunning means the execution loop is active.
	StateRunning

	// StateHalted means the core observed a halt: a stop instruction, an
	// exit syscall, a fatal error, or an external Halt request. The
	// execution thread has exited or is about to; Stop still owns the
	// transition back to Stopped.
	StateHalted
)

// String returns the state name.
func (s ExecState) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateRunning:
		return "Running"
	case StateHalted:
		return "Halted"
	default:
		return fmt.Sprintf("ExecState(%d)", int32(s))
	}
}

// StepResult is the outcome of executing one loop iteration. A zero
// StepResult means success. Soft failures (unknown opcodes, out-of-bounds
// accesses, divide by zero) are logged inside the dispatch and report
// success here, so the loop keeps making forward progress.
type StepResult struct {
	// Halted is set when the iteration requested a cooperative halt
	// (stop instruction or exit syscall).
	Halted bool

	// Err is fatal to this core: the loop logs it, transitions to Halted,
	// and exits. It never propagates past the core boundary.
	Err error
}

// runner is the lifecycle state machine shared by both core families. It
// owns the running/halted flags and the execution goroutine; the
// architecture-specific fetch-decode-dispatch step is supplied to start.
type runner struct {
	log logr.Logger

	running atomic.Bool
	halted  atomic.Bool

	// mu serializes Start/Stop/Wait; the execution loop itself only touches
	// the atomic flags.
	mu   sync.Mutex
	done chan struct{}
}

// start spawns the execution goroutine running step once per loop iteration.
// Starting an already-running core is a no-op with a warning.
func (r *runner) start(step func() StepResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running.Load() {
		r.log.Info("already running")
		return
	}

	r.running.Store(true)
	r.halted.Store(false)
	done := make(chan struct{})
	r.done = done

	go r.loop(step, done)

	r.log.Info("started execution")
}

// loop is the run loop body: step until stopped or halted. Nothing escapes
// it; a panic inside a step is converted to a Halted transition.
func (r *runner) loop(step func() StepResult, done chan struct{}) {
	defer close(done)
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error(fmt.Errorf("%v", rec), "execution error")
			r.halted.Store(true)
		}
		r.log.Info("execution loop ended")
	}()

	r.log.Info("execution loop started")

	for r.running.Load() && !r.halted.Load() {
		res := step()
		if res.Err != nil {
			r.log.Error(res.Err, "execution error")
			r.halted.Store(true)
			return
		}
		if res.Halted {
			r.halted.Store(true)
			return
		}
	}
}

// stop clears the running flag and joins the execution goroutine. It is
// valid from any state and always leaves the core Stopped. It must not be
// called from the execution goroutine itself.
func (r *runner) stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running.Load() {
		return
	}

	r.running.Store(false)
	if r.done != nil {
		<-r.done
		r.done = nil
	}

	r.log.Info("stopped execution")
}

// halt requests a cooperative halt and returns immediately. The execution
// goroutine observes it within one loop iteration.
func (r *runner) halt() {
	r.halted.Store(true)
	r.log.Info("halted")
}

// wait blocks until the execution loop has exited, either by halting or by
// Stop from another goroutine. It returns immediately for a core that was
// never started.
func (r *runner) wait() {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()

	if done != nil {
		<-done
	}
}

// State reports the core's execution state.
func (r *runner) State() ExecState {
	if !r.running.Load() {
		return StateStopped
	}
	if r.halted.Load() {
		return StateHalted
	}
	return StateRunning
}

// IsRunning reports whether Start has been called without a matching Stop.
func (r *runner) IsRunning() bool {
	return r.running.Load()
}

// IsHalted reports whether the core has observed a halt.
func (r *runner) IsHalted() bool {
	return r.halted.Load()
}
