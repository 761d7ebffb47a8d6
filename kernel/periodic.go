package kernel

// ptcb is a periodic event's control block. Unlike the thread pool,
// periodic events are installed once and never removed for the life of a
// Kernel, so a plain append-only slice gives the same observable behavior
// as the original's circular doubly linked list without needing
// ring-splice bookkeeping that would never actually be exercised by a
// removal that never happens.
type ptcb struct {
	handler func()
	period  uint32
	nextDue uint32
}

// AddPeriodicEvent installs handler to run every period ticks. Its first
// firing is staggered by slot index — handler N (0-based) first fires at
// SystemTime()+N+1 — matching the original G8RTOS_Add_PeriodicEvent's
// executeTime = NumberOfPthreads + 1, which spreads simultaneously-added
// events across distinct ticks instead of bunching their first firings
// together.
func (k *Kernel) AddPeriodicEvent(handler func(), periodTicks uint32) error {
	tok := k.cs.begin()
	if len(k.ptcbs) >= k.cfg.MaxPeriodicEvents {
		k.cs.end(tok)
		return ThreadLimitReached
	}
	now := k.systemTime.Load()
	nextDue := now + uint32(len(k.ptcbs)) + 1
	k.ptcbs = append(k.ptcbs, ptcb{handler: handler, period: periodTicks, nextDue: nextDue})
	k.cs.end(tok)

	k.logPeriodicEventAdded(periodTicks, nextDue)
	return nil
}

// collectDuePeriodicLocked returns the handlers due at now, advancing each
// one's nextDue by its period before returning. The caller runs them
// outside the critical section.
func (k *Kernel) collectDuePeriodicLocked(now uint32) []func() {
	var due []func()
	for i := range k.ptcbs {
		p := &k.ptcbs[i]
		if p.nextDue == now {
			p.nextDue = now + p.period
			due = append(due, p.handler)
		}
	}
	return due
}

// PeriodicEventCount reports how many periodic events are installed.
func (k *Kernel) PeriodicEventCount() int {
	tok := k.cs.begin()
	defer k.cs.end(tok)
	return len(k.ptcbs)
}
