package kernel

// Tick advances system time by one and runs three steps in order: fire due
// periodic events, wake sleepers whose deadline has arrived, then request
// a reschedule. Periodic handlers run with the critical section
// released — they run as if at the tick's own interrupt priority, with
// interrupts otherwise enabled — so a handler calling Signal can acquire
// the section itself without deadlocking against the tick that invoked it.
//
// Tick never touches a thread's resume channel directly; see
// requestReschedule in scheduler.go for why the handoff is deferred to the
// thread that is actually running. This also makes Tick safe to call
// directly against a Kernel with no goroutines attached at all — a
// deterministic mode the test suite relies on heavily.
func (k *Kernel) Tick() {
	tok := k.cs.begin()
	now := k.systemTime.Inc()
	due := k.collectDuePeriodicLocked(now)
	k.cs.end(tok)

	for _, handler := range due {
		handler()
	}

	tok2 := k.cs.begin()
	k.wakeSleepersLocked(now)
	k.cs.end(tok2)

	k.requestReschedule()
}

// wakeSleepersLocked clears asleep on every thread whose wake tick has
// arrived. A flat scan over the fixed pool is equivalent to walking the
// scheduling ring for this purpose — every alive thread is visited exactly
// once either way — and needs no ring traversal since sleep wakeup doesn't
// care about priority order.
func (k *Kernel) wakeSleepersLocked(now uint32) {
	for i := range k.threads {
		t := &k.threads[i]
		if t.alive && t.asleep && t.wakeTime == now {
			t.asleep = false
		}
	}
}
