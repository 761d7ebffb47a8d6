package kernel

// Semaphore is a counting semaphore. It carries no reference back to a
// Kernel: an application declares one as a plain value (global, struct
// field, whatever its original C counterpart would have been) and passes
// it into whichever Kernel's Wait/Signal it is used with, just as
// semaphore_init(&s, value) takes no kernel argument.
type Semaphore struct {
	value int32
}

// NewSemaphore returns a Semaphore already initialized to initial, for
// callers that would rather not make a separate SemaphoreInit call.
func NewSemaphore(initial int32) *Semaphore {
	return &Semaphore{value: initial}
}

// SemaphoreInit (re)initializes s to value.
func (k *Kernel) SemaphoreInit(s *Semaphore, value int32) {
	tok := k.cs.begin()
	s.value = value
	k.cs.end(tok)
}

// Wait decrements s and blocks the calling thread if the result went
// negative. A thread that blocks here is unparked only by a matching
// Signal finding it first in the ring scan, or by being killed out from
// under it.
func (t *Thread) Wait(s *Semaphore) {
	k := t.k
	tok := k.cs.begin()
	s.value--
	if s.value >= 0 {
		k.cs.end(tok)
		return
	}
	k.threads[t.slot].blocked = s
	resume := k.threads[t.slot].resume
	killed := k.threads[t.slot].killed
	k.cs.end(tok)

	k.yieldFrom(t.slot, resume, killed)
}

// Signal increments s and, if any thread is now owed a wakeup, clears the
// block on the first one the ring scan finds starting just after the
// currently scheduled thread — a FIFO-by-ring-order wakeup. Signal never
// itself requests a reschedule: neither does the original
// G8RTOS_SignalSemaphore — the newly runnable thread only actually gets a
// turn at the next tick, aperiodic handler, or voluntary suspension, so
// the waiter preempts on that later tail-chained context switch, not the
// instant Signal runs. This also makes Signal safe to call from a
// periodic or aperiodic handler without recursing into the scheduler
// mid-handler.
func (k *Kernel) Signal(s *Semaphore) {
	tok := k.cs.begin()
	defer k.cs.end(tok)

	s.value++
	if s.value > 0 {
		return
	}
	start := k.threads[k.current].next
	idx := start
	for {
		if k.threads[idx].blocked == s {
			k.threads[idx].blocked = nil
			return
		}
		idx = k.threads[idx].next
		if idx == start {
			return
		}
	}
}

// SemaphoreValue reads s's current count. It goes through the critical
// section rather than a bare field read so it never races Wait/Signal
// running on another goroutine.
func (k *Kernel) SemaphoreValue(s *Semaphore) int32 {
	tok := k.cs.begin()
	defer k.cs.end(tok)
	return s.value
}
