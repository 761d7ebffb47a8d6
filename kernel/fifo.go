package kernel

// fifo is a fixed-capacity single-producer/single-consumer ring buffer for
// inter-thread or interrupt-to-thread messaging. Write is lock-free besides
// the index bookkeeping so it stays callable from an aperiodic handler;
// Read blocks the calling thread via a semaphore counting the items
// available: a blocking read, a non-blocking write that drops on overflow.
type fifo struct {
	buf      []uint32
	head     int
	tail     int
	count    int
	lost     uint32
	items    Semaphore
	capacity int
}

// FIFOInit reserves and initializes the FIFO at index. The index space is
// a fixed array sized by Config.MaxFIFOs, mirroring the thread and
// periodic-event pools.
func (k *Kernel) FIFOInit(index int) error {
	tok := k.cs.begin()
	defer k.cs.end(tok)

	if index < 0 || index >= len(k.fifos) {
		return IRQInvalid
	}
	k.fifos[index] = fifo{
		buf:      make([]uint32, k.cfg.FIFOCapacity),
		capacity: k.cfg.FIFOCapacity,
	}
	return nil
}

// FIFOWrite pushes word onto the FIFO at index. It never blocks: a full
// FIFO drops the new word and counts the loss, so an interrupt handler can
// always call this without risking a stall.
func (k *Kernel) FIFOWrite(index int, word uint32) error {
	tok := k.cs.begin()
	defer k.cs.end(tok)

	f := &k.fifos[index]
	if f.count == f.capacity {
		f.lost++
		k.logFIFOOverflow(index, f.lost)
		return nil
	}
	f.buf[f.tail] = word
	f.tail = (f.tail + 1) % f.capacity
	f.count++
	f.items.value++
	if f.items.value <= 0 {
		k.wakeFirstWaiterLocked(&f.items)
	}
	return nil
}

// FIFORead pops the oldest word, blocking the calling thread until one is
// available.
func (k *Kernel) FIFORead(t *Thread, index int) uint32 {
	tok := k.cs.begin()
	f := &k.fifos[index]
	f.items.value--
	if f.items.value >= 0 {
		word := f.buf[f.head]
		f.head = (f.head + 1) % f.capacity
		f.count--
		k.cs.end(tok)
		return word
	}
	k.threads[t.slot].blocked = &f.items
	resume := k.threads[t.slot].resume
	killed := k.threads[t.slot].killed
	k.cs.end(tok)

	k.yieldFrom(t.slot, resume, killed)

	tok2 := k.cs.begin()
	word := f.buf[f.head]
	f.head = (f.head + 1) % f.capacity
	f.count--
	k.cs.end(tok2)
	return word
}

// wakeFirstWaiterLocked is Signal's ring scan, reused for a FIFO's
// internal items semaphore so a writer (often running with no Thread
// handle at all, e.g. an aperiodic handler) can unblock a reader without
// needing one.
func (k *Kernel) wakeFirstWaiterLocked(s *Semaphore) {
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

// FIFOLost reports how many writes have been dropped for overflow at
// index, useful for tests asserting the overflow edge case
// deterministically.
func (k *Kernel) FIFOLost(index int) uint32 {
	tok := k.cs.begin()
	defer k.cs.end(tok)
	return k.fifos[index].lost
}
