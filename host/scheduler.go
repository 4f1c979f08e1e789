package host

import "time"

// PriorityLevel is the external scheduler's own priority vocabulary,
// distinct from (and coarser than) lane.PriorityClass. §4.4 maps a lane
// class down to one of these before calling ScheduleCallback.
type PriorityLevel int

const (
	PriorityImmediate PriorityLevel = iota
	PriorityUserBlocking
	PriorityNormal
	PriorityLow
	PriorityIdle
)

// CallbackHandle is an opaque token returned by ScheduleCallback,
// passed back to CancelCallback.
type CallbackHandle any

// Scheduler is the injected clock and cooperative-yield primitive (§1,
// §6): "now(), shouldYield(), scheduleCallback, microtask queuing".
// The reconciler never spins up its own goroutines or timers; every
// asynchronous continuation goes through this trait so a host can
// implement it on top of requestIdleCallback, a browser microtask queue,
// or (in host/fake) a manually-stepped test clock.
type Scheduler interface {
	Now() time.Time

	// ScheduleCallback arranges for fn to run later at the given
	// priority, returning a handle CancelCallback can use to abort it.
	ScheduleCallback(priority PriorityLevel, fn func()) CallbackHandle
	CancelCallback(handle CallbackHandle)

	// ShouldYield reports whether the concurrent work loop (§4.5) should
	// return control to the host now rather than continue with the next
	// unit of work. A scheduler that always returns false makes the
	// concurrent loop run each render to completion; the work loop has
	// no time-budget fallback of its own.
	ShouldYield() bool

	// ScheduleMicrotask queues fn to run at microtask timing, used by
	// the root scheduler's callback-coalescing (§4.4). SupportsMicrotasks
	// reports whether ScheduleMicrotask is meaningfully asynchronous;
	// when false, ensure_root_is_scheduled falls back to an immediate
	// scheduler callback (§4.4).
	ScheduleMicrotask(fn func())
	SupportsMicrotasks() bool
}
