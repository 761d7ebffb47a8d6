package kernel

import "sync"

// CriticalToken is the opaque value BeginCritical returns; EndCritical must
// later be given back the same one unchanged. On real hardware it would
// hold the prior global-interrupt-enable bit; here it plays the same role
// of "the thing that proves you're the one who must release this section."
type CriticalToken struct {
	_ struct{}
}

// criticalSection is the kernel's single critical-region primitive, the
// save/restore-global-interrupt-enable-state equivalent. It is backed by a
// real mutex because, unlike a single-core MCU, this simulation has
// several actual goroutines that can contend for kernel state: the thread
// currently holding the CPU, the tick driver, and any aperiodic interrupt
// driver.
//
// Nesting on real hardware works because masking interrupts is a flag, not
// a lock: disabling an already-disabled interrupt is free, and whichever
// call disabled them first is the one whose matching end re-enables them.
// A sync.Mutex has no such free recursive acquire. We get the same effect
// the idiomatic Go way instead of emulating CPU flag semantics: every
// kernel operation that needs the section takes it exactly once at its own
// entry point, and any kernel-internal helper it calls while still holding
// the section is named with a "Locked" suffix and never takes the section
// itself. There is therefore nothing in this package that both holds the
// section and calls BeginCritical again — nesting is enforced at compile
// time by which function you call, rather than detected at runtime.
type criticalSection struct {
	mu sync.Mutex
}

// begin acquires the section, disabling "interrupts" (i.e. excluding every
// other goroutine from kernel state) until end is called with the token.
func (c *criticalSection) begin() CriticalToken {
	c.mu.Lock()
	return CriticalToken{}
}

func (c *criticalSection) end(CriticalToken) {
	c.mu.Unlock()
}

// BeginCritical exposes the primitive to callers outside the kernel
// package — a board-support driver feeding FireAperiodicInterrupt, for
// instance, that needs to touch kernel-adjacent state without racing a
// scheduling decision. Application thread bodies should not normally need
// it: every exported Kernel method already wraps its own critical section.
func (k *Kernel) BeginCritical() CriticalToken {
	return k.cs.begin()
}

// EndCritical releases a section started with BeginCritical.
func (k *Kernel) EndCritical(tok CriticalToken) {
	k.cs.end(tok)
}
