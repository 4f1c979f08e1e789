package workloop

import "go.fiberkit.dev/reconciler/lane"

// RequestUpdateLane implements §6/§4.1's request_update_lane: the lane a
// fresh update_container call should be enqueued at, read off the
// priority channel rather than passed as an argument by every caller.
func (r *Reconciler) RequestUpdateLane() lane.Set {
	if r.currentEventTransitionLane != lane.NoLane {
		return r.currentEventTransitionLane
	}
	if r.currentUpdatePriority != lane.NoLane {
		return r.currentUpdatePriority
	}
	if r.executionContext.Has(TransitionContext) {
		return r.claimTransitionLane()
	}
	return lane.DefaultLane
}

func (r *Reconciler) claimTransitionLane() lane.Set {
	l := transitionLanes[r.nextTransitionLane%len(transitionLanes)]
	r.nextTransitionLane++
	r.currentEventTransitionLane = l
	return l
}

// SetCurrentUpdatePriority lets a host event dispatcher (out of scope
// here) establish the priority channel before calling back into
// UpdateContainer; returns a restore function for the previous value.
func (r *Reconciler) SetCurrentUpdatePriority(l lane.Set) (restore func()) {
	prev := r.currentUpdatePriority
	r.currentUpdatePriority = l
	return func() { r.currentUpdatePriority = prev }
}

// BatchedUpdates runs fn with BatchedContext set, coalescing any
// update_container calls fn makes into a single scheduling pass (§6).
func (r *Reconciler) BatchedUpdates(fn func()) {
	prev := r.executionContext
	r.executionContext |= BatchedContext
	defer func() { r.executionContext = prev }()
	fn()
}

// DiscreteUpdates runs fn with DiscreteEventContext set and InputContinuousLane
// as the ambient update priority, modeling a discrete host event (click,
// keypress) that should not be batched with a lower-priority transition.
func (r *Reconciler) DiscreteUpdates(fn func()) {
	prevCtx := r.executionContext
	r.executionContext |= DiscreteEventContext
	restore := r.SetCurrentUpdatePriority(lane.InputContinuousLane)
	defer func() {
		r.executionContext = prevCtx
		restore()
	}()
	fn()
}

// StartTransition runs fn with TransitionContext set, so any
// update_container call inside it claims a TransitionLane instead of
// DefaultLane (§4.1).
func (r *Reconciler) StartTransition(fn func()) {
	prevCtx := r.executionContext
	prevLane := r.currentEventTransitionLane
	r.executionContext |= TransitionContext
	r.currentEventTransitionLane = lane.NoLane
	defer func() {
		r.executionContext = prevCtx
		r.currentEventTransitionLane = prevLane
	}()
	fn()
}

// FlushSync runs fn (if non-nil) then synchronously flushes any Sync-lane
// work across every root registered with r.Registry (§6 flush_sync).
func (r *Reconciler) FlushSync(fn func()) {
	prevLane := r.currentUpdatePriority
	r.currentUpdatePriority = lane.SyncLane
	if fn != nil {
		fn()
	}
	r.currentUpdatePriority = prevLane
	r.Registry.FlushSyncWorkAcrossRoots()
}
