package fiber

import "time"

// Root is the per-tree container (§3 FiberRoot). It owns the Arena for
// both the current and work-in-progress buffers of its tree, and the
// lane bookkeeping the scheduler (C4) reads and mutates.
//
// Grounded on chasm/ref.go's ExecutionKey + engine.go's per-execution
// bookkeeping: a CHASM execution is identified once and mutated through
// an Engine; a Root plays the same role for one UI container, generalized
// with the lane accumulators §3 requires and without CHASM's persistence
// fields (no wire protocol, no persisted state — §1 Non-goals).
type Root struct {
	ContainerInfo any
	Arena         *Arena
	Current       ID

	PendingLanes   uint32
	SuspendedLanes uint32
	PingedLanes    uint32
	ExpiredLanes   uint32
	EntangledLanes uint32

	// CallbackNode is an opaque handle to whatever the external scheduler
	// returned from schedule_callback, so it can be cancelled later.
	CallbackNode     any
	CallbackPriority uint32 // host.PriorityLevel; PriorityIdle when no work, PriorityImmediate for inline Sync work

	Context        any
	PendingContext any

	TimeoutHandle       any
	CancelPendingCommit func()

	Identifier string

	// Next links this root into the process-wide scheduled-root list
	// (C4). Unexported field access is via schedule.List.
	Next *Root
}

// NewRoot allocates a fresh Root with a single HostRoot fiber as its
// current tree (the state before any element has ever been rendered).
func NewRoot(containerInfo any, identifier string, mode Mode) *Root {
	arena := NewArena()
	rootID := arena.Alloc()
	rootFiber := arena.Get(rootID)
	rootFiber.Tag = HostRoot
	rootFiber.Mode = mode
	rootFiber.StateNode = containerInfo

	return &Root{
		ContainerInfo: containerInfo,
		Arena:         arena,
		Current:       rootID,
		Identifier:    identifier,
	}
}

// CurrentFiber is a convenience accessor for r.Arena.Get(r.Current).
func (r *Root) CurrentFiber() *Fiber { return r.Arena.Get(r.Current) }

// HasPendingCommit reports whether a completed WIP tree is waiting for
// the commit driver (used by get_next_lanes' has_pending_commit gate).
func (r *Root) HasPendingCommit() bool {
	return r.CancelPendingCommit != nil
}

// Children walks a fiber's child sibling chain in the Root's arena;
// exposed here (rather than as raw field access) so callers that only
// have a Root, not an Arena reference, can still traverse (§8 property
// 9: sibling ordering after reconciliation).
func (r *Root) Children(parent ID) []ID {
	var out []ID
	for c := r.Arena.Get(parent).FirstChild; c != NoID; c = r.Arena.Get(c).NextSibling {
		out = append(out, c)
	}
	return out
}

// Now returns the current wall-clock time as observed by this root. In
// production this is threaded from the injected scheduler clock
// (host.Scheduler.Now); tests substitute a fixed or steppable Clock.
// Mirrors chasm's Context.Now(component) — time-skipping and pause
// support live entirely behind this seam.
func (r *Root) Now(clockNow func() time.Time) time.Time {
	if clockNow == nil {
		return time.Now()
	}
	return clockNow()
}
