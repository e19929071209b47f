// Package emu provides functional Cell Broadband Engine emulation.
//
// This package implements the two core families of the Cell processor at
// the instruction level:
//   - PPUCore: the scalar/vector PowerPC-family core, with 32 general
//     purpose, 32 floating point, and 32 vector registers, fetching through
//     a pluggable main-memory hook.
//   - SPUCore: the SIMD core, with 128 uniform 128-bit registers and a
//     bounded local store serving as instruction and data memory.
//
// Both cores share one lifecycle state machine (Stopped, Running, Halted):
// Start spawns a dedicated goroutine running the fetch-decode-dispatch
// loop, Halt requests a cooperative halt observed once per iteration, and
// Stop joins the goroutine. Failures are isolated to the one core: soft
// errors are logged and skipped, fatal errors halt the core, and nothing
// propagates out of the execution goroutine.
//
// Logging goes through an injected logr.Logger; without one, events are
// dropped.
package emu
