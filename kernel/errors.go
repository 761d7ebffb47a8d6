package kernel

// ErrorCode is the kernel's error taxonomy: a small integer code, never a
// panic or a long jump out of kernel code. It implements
// error so callers can use errors.Is/errors.As like any other Go error,
// while still being able to switch on the bare code when they need to.
type ErrorCode int

const (
	// OK is the zero value so a freshly declared ErrorCode reads as success.
	OK ErrorCode = iota
	ThreadLimitReached
	NoThreadsScheduled
	ThreadDoesNotExist
	CannotKillLastThread
	IRQInvalid
	HWIPriorityInvalid
)

var errorText = map[ErrorCode]string{
	OK:                   "ok",
	ThreadLimitReached:   "thread limit reached",
	NoThreadsScheduled:   "no threads scheduled",
	ThreadDoesNotExist:   "thread does not exist",
	CannotKillLastThread: "cannot kill last thread",
	IRQInvalid:           "irq invalid",
	HWIPriorityInvalid:   "hardware interrupt priority invalid",
}

func (e ErrorCode) Error() string {
	if s, ok := errorText[e]; ok {
		return s
	}
	return "unknown kernel error"
}
