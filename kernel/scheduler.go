package kernel

import "time"

// pickNextLocked walks the ring starting just after the current thread,
// visiting exactly aliveCount slots, and returns the
// numerically-smallest-priority runnable one, first occurrence wins ties.
//
// The original G8RTOS_Scheduler seeds its "best so far" priority at
// UINT8_MAX and only updates on a strict less-than, which means a thread
// whose own priority is exactly 255 — the idle thread — can never be
// freshly selected by the scan; it only keeps running because nothing ever
// overwrote CurrentlyRunningThread. Idle must still be selectable whenever
// nothing else is runnable, so this scan seeds its sentinel one wider than
// any valid uint8 priority instead, fixing the off-by-one rather than
// reproducing it.
func (k *Kernel) pickNextLocked() int16 {
	bestIdx := int16(-1)
	bestPriority := 256
	idx := k.threads[k.current].next
	for i := 0; i < k.aliveCount; i++ {
		t := &k.threads[idx]
		if t.runnable() {
			if p := int(t.priority); p < bestPriority {
				bestPriority = p
				bestIdx = idx
			}
		}
		idx = t.next
	}
	return bestIdx
}

// requestReschedule recomputes Kernel.current from the latest pool state.
// It is the only function that writes Kernel.current, and it never touches
// a resume channel: the tick and aperiodic drivers call it purely for
// bookkeeping (a thread busy running Go code cannot be asynchronously
// evicted the way a real PendSV evicts it), while the actual handoff of
// the CPU token happens only from within the outgoing thread's own call in
// exec.go, which re-reads Kernel.current immediately after calling this.
func (k *Kernel) requestReschedule() {
	tok := k.cs.begin()
	k.current = k.pickNextLocked()
	k.cs.end(tok)
}

// Launch selects the highest-priority thread, starts a goroutine for every
// thread added so far, hands the first one the CPU, and then drives ticks
// at TickPeriod until Stop is called. It returns only for the catastrophic
// misconfiguration of an empty thread pool, or after a clean Stop —
// mirroring G8RTOS_Launch, whose own NO_THREADS_SCHEDULED return statement
// is reachable only if the simulated run ever ends.
func (k *Kernel) Launch() error {
	if err := k.start(); err != nil {
		return err
	}
	return k.runTickLoop()
}

// start performs everything Launch does except driving the real-time tick
// loop: selecting the initial thread, spawning its goroutine pool, and
// handing over the first CPU token. It is split out so internal tests can
// drive Tick() by hand afterward instead of racing a real-time ticker.
func (k *Kernel) start() error {
	tok := k.cs.begin()
	if k.aliveCount == 0 {
		k.cs.end(tok)
		return NoThreadsScheduled
	}
	k.launched = true
	k.current = k.pickNextLocked()

	toSpawn := make([]int16, 0, k.aliveCount)
	idx := k.current
	for i := 0; i < k.aliveCount; i++ {
		toSpawn = append(toSpawn, idx)
		idx = k.threads[idx].next
	}
	first := k.current
	firstResume := k.threads[first].resume
	k.cs.end(tok)

	for _, slot := range toSpawn {
		k.spawnThread(slot)
	}
	firstResume <- struct{}{}
	return nil
}

// Stop ends the real-time tick loop started by Launch. It is ambient test
// and harness tooling, not a scheduling operation: real hardware never
// shuts its scheduler down cleanly either.
func (k *Kernel) Stop() {
	select {
	case <-k.stopCh:
	default:
		close(k.stopCh)
	}
}

func (k *Kernel) runTickLoop() error {
	ticker := time.NewTicker(TickPeriod * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			k.Tick()
		case <-k.stopCh:
			return nil
		}
	}
}
