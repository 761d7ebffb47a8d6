package kernel

// ThreadCount reports how many threads are currently alive, including the
// idle thread — useful for asserting the "at least one thread alive"
// invariant directly in tests.
func (k *Kernel) ThreadCount() int {
	tok := k.cs.begin()
	defer k.cs.end(tok)
	return k.aliveCount
}

// ThreadName returns the name of a live thread, or "" if id does not name
// one.
func (k *Kernel) ThreadName(id ThreadID) string {
	tok := k.cs.begin()
	defer k.cs.end(tok)
	slot, ok := k.lookupLocked(id)
	if !ok {
		return ""
	}
	return k.threads[slot].name
}

// IsAlive reports whether id currently names a live thread.
func (k *Kernel) IsAlive(id ThreadID) bool {
	tok := k.cs.begin()
	defer k.cs.end(tok)
	_, ok := k.lookupLocked(id)
	return ok
}

// CurrentThreadID returns the scheduler's current pick for which thread is
// running. It is exact immediately after a direct Tick() call against a
// bare engine with no goroutines attached; when real thread goroutines are
// running it names the scheduler's latest decision, which a thread still
// executing past its last suspension point has not yet observed — see
// scheduler.go's requestReschedule doc comment.
func (k *Kernel) CurrentThreadID() ThreadID {
	tok := k.cs.begin()
	defer k.cs.end(tok)
	return k.threads[k.current].id
}
