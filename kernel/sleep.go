package kernel

// Sleep suspends the calling thread until its wake tick arrives. A zero
// duration is a pure yield rather than the literal original formula of
// setting wakeTime to the current tick: SystemTime only increases, so a
// thread asleep with wakeTime equal to the tick it fell asleep on would
// never satisfy the tick handler's equality check again and would sleep
// forever. Yield instead keeps the thread runnable and simply forces a
// fresh scheduling decision, letting same-or-lower-priority peers take a
// turn via the ring's natural round-robin order.
func (t *Thread) Sleep(ticks uint32) {
	k := t.k
	if ticks == 0 {
		t.Yield()
		return
	}
	tok := k.cs.begin()
	now := k.systemTime.Load()
	k.threads[t.slot].wakeTime = now + ticks
	k.threads[t.slot].asleep = true
	resume := k.threads[t.slot].resume
	killed := k.threads[t.slot].killed
	k.cs.end(tok)

	k.yieldFrom(t.slot, resume, killed)
}

// Yield gives up the current scheduling slot without sleeping or
// blocking. It is the general-purpose suspension point a cooperative
// scheduler needs wherever no sleep or semaphore wait is called for, and
// it is also how the idle thread spins without ever doing real work.
func (t *Thread) Yield() {
	k := t.k
	tok := k.cs.begin()
	resume := k.threads[t.slot].resume
	killed := k.threads[t.slot].killed
	k.cs.end(tok)
	k.yieldFrom(t.slot, resume, killed)
}
