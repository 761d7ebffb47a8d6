package kernel

// aperiodicHandler binds an interrupt number to a handler and its
// hardware priority.
type aperiodicHandler struct {
	fn       func()
	priority uint8
}

// AddAperiodicEvent installs handler as the response to irq, validating
// both the IRQ number against the configured range and the priority
// against MaxUserIRQPriority.
func (k *Kernel) AddAperiodicEvent(handler func(), priority uint8, irq int) error {
	tok := k.cs.begin()
	defer k.cs.end(tok)

	if irq < k.cfg.MinUserIRQ || irq > k.cfg.MaxUserIRQ {
		return IRQInvalid
	}
	if priority > MaxUserIRQPriority {
		return HWIPriorityInvalid
	}
	if k.irq == nil {
		k.irq = make(map[int]aperiodicHandler)
	}
	k.irq[irq] = aperiodicHandler{fn: handler, priority: priority}
	k.logAperiodicEventAdded(irq, priority)
	return nil
}

// FireAperiodicInterrupt simulates the hardware assertion of irq, since
// there is no real NVIC to twiddle in a Go process. It runs the bound
// handler and then requests a reschedule, exactly as the tick handler does
// after running periodic events, so a handler that signals a
// higher-priority waiter lets that waiter preempt on the next voluntary
// suspension point.
func (k *Kernel) FireAperiodicInterrupt(irq int) error {
	tok := k.cs.begin()
	h, ok := k.irq[irq]
	k.cs.end(tok)
	if !ok {
		return IRQInvalid
	}

	h.fn()
	k.requestReschedule()
	return nil
}
