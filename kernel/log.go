package kernel

import "go.uber.org/zap"

// Diagnostics are structured and optional: a kernel created without a
// logger runs identically, just silently. Nothing in the scheduling engine
// ever branches on whether logging is enabled — these calls sit alongside
// state transitions, never inside the decision that produces them.
func newNopLogger() *zap.Logger {
	return zap.NewNop()
}

func (k *Kernel) logThreadAdded(id ThreadID, name string, priority uint8) {
	k.log.Debug("thread added",
		zap.Uint32("generation", id.Generation),
		zap.Uint16("slot", id.Slot),
		zap.String("name", name),
		zap.Uint8("priority", priority),
	)
}

func (k *Kernel) logThreadKilled(id ThreadID, name string) {
	k.log.Debug("thread killed",
		zap.Uint32("generation", id.Generation),
		zap.Uint16("slot", id.Slot),
		zap.String("name", name),
	)
}

func (k *Kernel) logCannotKillLastThread(id ThreadID) {
	k.log.Warn("refused to kill last remaining thread",
		zap.Uint32("generation", id.Generation),
		zap.Uint16("slot", id.Slot),
	)
}

func (k *Kernel) logPeriodicEventAdded(period uint32, nextDue uint32) {
	k.log.Debug("periodic event added", zap.Uint32("period", period), zap.Uint32("next_due", nextDue))
}

func (k *Kernel) logAperiodicEventAdded(irq int, priority uint8) {
	k.log.Debug("aperiodic event installed", zap.Int("irq", irq), zap.Uint8("priority", priority))
}

func (k *Kernel) logFIFOOverflow(index int, lost uint32) {
	k.log.Warn("fifo write lost", zap.Int("fifo", index), zap.Uint32("lost_total", lost))
}
