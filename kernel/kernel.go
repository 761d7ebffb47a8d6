package kernel

import (
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Kernel is the whole of the scheduling engine's mutable state, collected
// into one struct rather than scattered across package-level globals (as
// the original G8RTOS's single static arrays were). A process can run more
// than one Kernel; nothing here is a singleton.
type Kernel struct {
	cfg Config
	cs  criticalSection

	// threads is the fixed thread pool. Its length never changes after
	// New; slots are recycled, never reallocated.
	threads []tcb
	current int16
	aliveCount int

	generation atomic.Uint32
	systemTime atomic.Uint32

	ptcbs []ptcb

	irq map[int]aperiodicHandler

	fifos []fifo

	launched bool
	stopCh   chan struct{}

	log *zap.Logger
}

// Option configures a Kernel at construction time.
type Option func(*Kernel)

// WithLogger attaches structured logging. A Kernel built without one logs
// nowhere.
func WithLogger(log *zap.Logger) Option {
	return func(k *Kernel) { k.log = log }
}

// idleEntry is the body of the compulsory idle thread: the scheduler must
// always have something runnable to select, so idle is present from
// construction and never blocks, sleeps, or dies — aliveCount never
// reaches zero.
func idleEntry(t *Thread) {
	for {
		t.Yield()
	}
}

// New builds a Kernel with the given pool bounds, pre-populated with the
// compulsory idle thread at priority IdlePriority. It does not start
// anything — no goroutines exist, no ticks fire — until Launch.
func New(cfg Config, opts ...Option) *Kernel {
	k := &Kernel{
		cfg:     cfg,
		threads: make([]tcb, cfg.MaxThreads),
		current: slotNone,
		fifos:   make([]fifo, cfg.MaxFIFOs),
		stopCh:  make(chan struct{}),
		log:     newNopLogger(),
	}
	for _, opt := range opts {
		opt(k)
	}
	for i := range k.threads {
		k.threads[i].next = slotNone
		k.threads[i].prev = slotNone
	}
	if _, err := k.AddThread(idleEntry, IdlePriority, "idle"); err != nil {
		// Only possible if cfg.MaxThreads == 0, a misconfiguration the
		// caller made at construction time, not a runtime condition
		// the error taxonomy covers.
		panic("kernel: cannot construct with zero thread capacity")
	}
	return k
}

// SystemTime returns the current tick count.
func (k *Kernel) SystemTime() uint32 {
	return k.systemTime.Load()
}
