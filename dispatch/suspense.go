package dispatch

// Reason enumerates why the work loop is suspended (§4.5). Hydration and
// host-resource preloading are out of scope (§1 non-goals), so
// SuspendedOnInstance/SuspendedOnHydration are recognized for vocabulary
// completeness but never produced by this package; a component that
// wants to wait on any not-yet-ready dependency should call Suspend.
type Reason int

const (
	NotSuspended Reason = iota
	SuspendedOnData
	SuspendedOnAction
	SuspendedOnImmediate
	SuspendedOnInstance
	SuspendedOnHydration
	SuspendedOnError
	SuspendedOnDeprecatedThrowPromise
)

func (r Reason) String() string {
	switch r {
	case NotSuspended:
		return "NotSuspended"
	case SuspendedOnData:
		return "SuspendedOnData"
	case SuspendedOnAction:
		return "SuspendedOnAction"
	case SuspendedOnImmediate:
		return "SuspendedOnImmediate"
	case SuspendedOnInstance:
		return "SuspendedOnInstance"
	case SuspendedOnHydration:
		return "SuspendedOnHydration"
	case SuspendedOnError:
		return "SuspendedOnError"
	case SuspendedOnDeprecatedThrowPromise:
		return "SuspendedOnDeprecatedThrowPromise"
	default:
		return "UnknownReason"
	}
}

// Thenable is a foreign promise-like handle a component throws to signal
// a dependency that isn't ready yet (§9 "promise/thenable suspension").
// The reconciler never awaits it; it only registers a continuation.
type Thenable interface {
	Then(onFulfilled, onRejected func())
}

// suspendSignal is the panic value Suspend/Throw raise to unwind the
// current unit of work; perform_unit_of_work recovers it.
type suspendSignal struct {
	reason Reason
	value  any
}

// Suspend unwinds the current render because thenable isn't resolved
// yet. The work loop catches this, registers a continuation, and yields.
func Suspend(thenable Thenable) {
	panic(suspendSignal{reason: SuspendedOnData, value: thenable})
}

// Throw unwinds the current render with a plain error, to be caught by
// the nearest error boundary.
func Throw(err error) {
	panic(suspendSignal{reason: SuspendedOnError, value: err})
}

// Recover converts a panic value into (reason, value, ok). A panic value
// not produced by Suspend/Throw is treated as SuspendedOnError so a
// runtime panic inside user code still unwinds to the nearest boundary
// instead of crashing the whole render.
func Recover(r any) (Reason, any, bool) {
	if r == nil {
		return NotSuspended, nil, false
	}
	if s, ok := r.(suspendSignal); ok {
		return s.reason, s.value, true
	}
	return SuspendedOnError, r, true
}
