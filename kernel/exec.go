package kernel

import (
	"runtime"

	"go.uber.org/zap"
)

// spawnThread starts the goroutine backing slot. It captures resume,
// killed and entry by value before releasing the lock: these are fresh
// channels and a fresh closure created by the AddThread call that is
// spawning this goroutine, so a later kill-and-reuse of the same slot
// index never aliases them — only the channel identities matter, not the
// tcb's address.
func (k *Kernel) spawnThread(slot int16) {
	tok := k.cs.begin()
	resume := k.threads[slot].resume
	killed := k.threads[slot].killed
	entry := k.threads[slot].entry
	id := k.threads[slot].id
	k.cs.end(tok)

	self := &Thread{k: k, slot: slot, id: id}

	go func() {
		if !k.parkOrExit(resume, killed) {
			return
		}
		entry(self)
		k.threadReturned(slot)
	}()
}

// parkOrExit blocks the calling goroutine until it is handed the CPU
// (resume) or killed out from under it (killed, closed by
// killThreadLocked). It returns true once resumed; when killed it calls
// runtime.Goexit, which unwinds the goroutine, so it never returns at all
// in that case.
func (k *Kernel) parkOrExit(resume, killed chan struct{}) bool {
	select {
	case <-resume:
		return true
	case <-killed:
		runtime.Goexit()
		return false // unreachable
	}
}

// yieldFrom is the shared tail of every suspension point a thread body can
// call voluntarily: Sleep, Wait-that-blocks, and Yield. The caller has
// already mutated its own tcb state (asleep/blocked) and released the
// critical section before calling this. It recomputes the schedule fresh
// — discarding any earlier bookkeeping-only decision a concurrent tick
// might have made — and performs the handoff send itself, so exactly one
// token is ever sent per voluntary suspension.
func (k *Kernel) yieldFrom(slot int16, resume, killed chan struct{}) {
	k.requestReschedule()
	tok := k.cs.begin()
	next := k.current
	nextResume := k.threads[next].resume
	k.cs.end(tok)
	if next == slot {
		return
	}
	nextResume <- struct{}{}
	k.parkOrExit(resume, killed)
}

// killCurrentAndHandoff kills slot — the thread physically invoking this —
// and hands the CPU to whoever the scheduler selects next. The caller
// still must call runtime.Goexit afterward; this only arranges for someone
// else to be running by the time it does.
func (k *Kernel) killCurrentAndHandoff(slot int16) {
	tok := k.cs.begin()
	id := k.threads[slot].id
	name := k.threads[slot].name
	k.killThreadLocked(slot)
	k.cs.end(tok)
	k.logThreadKilled(id, name)

	k.requestReschedule()
	tok2 := k.cs.begin()
	next := k.current
	nextResume := k.threads[next].resume
	k.cs.end(tok2)
	nextResume <- struct{}{}
}

// threadReturned handles a thread body returning from its entry function
// instead of calling KillSelf — an implicit kill-self. The degenerate case
// of the last surviving thread returning (only
// reachable if an application kills its own idle thread first, since idle
// itself never returns) is logged rather than torn further apart: there is
// no thread left to schedule, and the original kernel offers no recovery
// from that state either.
func (k *Kernel) threadReturned(slot int16) {
	tok := k.cs.begin()
	if k.aliveCount == 1 {
		id := k.threads[slot].id
		k.cs.end(tok)
		k.log.Error("last thread's entry function returned; nothing left to schedule",
			zap.Uint32("generation", id.Generation), zap.Uint16("slot", id.Slot))
		return
	}
	k.cs.end(tok)
	k.killCurrentAndHandoff(slot)
}
