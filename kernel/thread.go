package kernel

import "runtime"

// Thread is a handle a thread body uses to act on its own behalf: sleep,
// wait on a semaphore, yield, or kill itself. The original kernel this
// design descends from targets a single core, where there is never more
// than one thread physically executing, so "the current thread" is
// unambiguous and its API can write these as free functions (sleep,
// kill_self). A Go simulation runs every thread body on its own goroutine
// concurrently with the tick driver, so that ambient assumption no longer
// holds: asking "who is calling me" from inside Sleep would race against
// the scheduler reassigning Kernel.current out from under an unrelated
// goroutine. Passing each thread body an explicit handle to itself removes
// the ambiguity the same way threading a context.Context removes it for
// "the current request" — it is the idiomatic Go translation of an
// assumption that was only ever true because the original hardware had one
// core.
type Thread struct {
	k    *Kernel
	slot int16
	id   ThreadID
}

// ID returns this thread's stable identifier.
func (t *Thread) ID() ThreadID {
	return t.id
}

// Name returns the name given at AddThread time, truncated to
// Config.ThreadNameMax.
func (t *Thread) Name() string {
	tok := t.k.cs.begin()
	defer t.k.cs.end(tok)
	return t.k.threads[t.slot].name
}

// AddThread installs a new thread in the pool. If the kernel has already
// been launched, its goroutine is started immediately; otherwise it joins
// the set spawned at Launch.
func (k *Kernel) AddThread(entry func(*Thread), priority uint8, name string) (ThreadID, error) {
	tok := k.cs.begin()
	slot := k.findFreeSlot()
	if slot == slotNone {
		k.cs.end(tok)
		return ThreadID{}, ThreadLimitReached
	}
	if len(name) > k.cfg.ThreadNameMax {
		name = name[:k.cfg.ThreadNameMax]
	}
	gen := k.generation.Inc()
	id := ThreadID{Generation: gen, Slot: uint16(slot)}

	t := &k.threads[slot]
	t.id = id
	t.name = name
	t.priority = priority
	t.alive = true
	t.asleep = false
	t.blocked = nil
	t.wakeTime = 0
	t.entry = entry
	t.resume = make(chan struct{}, 1)
	t.killed = make(chan struct{})
	k.ringInsert(slot)
	k.aliveCount++
	launched := k.launched
	k.cs.end(tok)

	k.logThreadAdded(id, name, priority)
	if launched {
		k.spawnThread(slot)
	}
	return id, nil
}

// killThreadLocked removes slot from scheduling. The caller holds the
// critical section. It always closes the victim's killed channel so a
// parked goroutine (the common case: only the physically running thread is
// ever not parked) wakes and unwinds via runtime.Goexit in parkOrExit.
// If slot is the current thread, Kernel.current first moves to its ring
// predecessor, so the next scheduling scan still starts right after the
// victim's old ring position instead of at an unlinked slot.
func (k *Kernel) killThreadLocked(slot int16) {
	t := &k.threads[slot]
	if slot == k.current {
		k.current = t.prev
	}
	t.alive = false
	t.asleep = false
	t.blocked = nil
	k.ringRemove(slot)
	k.aliveCount--
	close(t.killed)
}

// KillThread kills the named thread. Unlike KillSelf, this always
// returns — even when id happens to name the calling thread's own
// id, mirroring the original G8RTOS_KillThread, which pends the scheduler
// and returns normally regardless of whether the victim is the caller; the
// caller's own goroutine discovers it has been killed only at its next
// suspension point, the same gap a real tail-chained PendSV leaves between
// "scheduler decided" and "context switch lands". Call Thread.KillSelf
// instead when the intent is "stop running now".
func (k *Kernel) KillThread(id ThreadID) error {
	tok := k.cs.begin()
	if k.aliveCount == 1 {
		k.cs.end(tok)
		k.logCannotKillLastThread(id)
		return CannotKillLastThread
	}
	slot, ok := k.lookupLocked(id)
	if !ok {
		k.cs.end(tok)
		return ThreadDoesNotExist
	}
	name := k.threads[slot].name
	k.killThreadLocked(slot)
	k.cs.end(tok)

	k.logThreadKilled(id, name)
	k.requestReschedule()
	return nil
}

// KillSelf kills the calling thread and never returns, unless the caller
// is the only alive thread, in which case nothing is killed and it returns
// CannotKillLastThread. Otherwise it hands the CPU
// to whichever thread the scheduler next selects before
// terminating its own goroutine via runtime.Goexit, the only way in Go to
// unwind the caller's stack (running any deferred cleanup) without
// executing a single further line of the entry function's body.
func (t *Thread) KillSelf() error {
	k := t.k
	tok := k.cs.begin()
	if k.aliveCount == 1 {
		k.cs.end(tok)
		k.logCannotKillLastThread(t.id)
		return CannotKillLastThread
	}
	k.cs.end(tok)
	k.killCurrentAndHandoff(t.slot)
	runtime.Goexit()
	return nil
}

// KillAllButSelf kills every other alive thread, the idle thread included.
// The caller is never a victim, so it is always the one thread left alive.
func (t *Thread) KillAllButSelf() {
	k := t.k
	tok := k.cs.begin()
	victims := make([]int16, 0, len(k.threads))
	for i := range k.threads {
		if int16(i) != t.slot && k.threads[i].alive {
			victims = append(victims, int16(i))
		}
	}
	type killed struct {
		id   ThreadID
		name string
	}
	var done []killed
	for _, v := range victims {
		if k.aliveCount == 1 {
			break
		}
		done = append(done, killed{k.threads[v].id, k.threads[v].name})
		k.killThreadLocked(v)
	}
	k.cs.end(tok)

	for _, d := range done {
		k.logThreadKilled(d.id, d.name)
	}
	k.requestReschedule()
}

// lookupLocked resolves a ThreadID to its slot in O(1): the slot is encoded
// in the id itself, so this only needs to confirm the slot is still alive
// and still holds the same generation — generation tags guard against a
// stale id aliasing a reused slot.
func (k *Kernel) lookupLocked(id ThreadID) (int16, bool) {
	if int(id.Slot) >= len(k.threads) {
		return 0, false
	}
	slot := int16(id.Slot)
	t := &k.threads[slot]
	if !t.alive || t.id != id {
		return 0, false
	}
	return slot, true
}
