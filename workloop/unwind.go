package workloop

import (
	"go.temporal.io/api/serviceerror"

	"go.fiberkit.dev/reconciler/dispatch"
	"go.fiberkit.dev/reconciler/fiber"
	"go.fiberkit.dev/reconciler/internal/log/tag"
	"go.fiberkit.dev/reconciler/update"
)

// handleThrow implements §4.5's suspension/unwind handling for a panic
// caught out of dispatch.BeginWork. Rather than the literal
// replay_suspended_unit_of_work continuation (§4.5, not implemented here —
// see DESIGN.md), it walks straight from the failing fiber to the nearest
// boundary that can capture reason and repoints r.wip there, so the next
// perform_unit_of_work call re-begins that boundary showing its fallback.
func (r *Reconciler) handleThrow(unit fiber.ID, reason dispatch.Reason, value any) {
	r.suspendedReason = reason
	r.thrownValue = value
	r.wipRoot.Arena.Get(unit).Flags |= fiber.Incomplete

	switch reason {
	case dispatch.SuspendedOnData, dispatch.SuspendedOnAction, dispatch.SuspendedOnImmediate, dispatch.SuspendedOnDeprecatedThrowPromise:
		r.unwindToSuspenseBoundary(unit, value)
	case dispatch.SuspendedOnHydration:
		r.wipRootExitStatus = RootSuspendedAtTheShell
		r.wip = fiber.NoID
	default:
		r.unwindToErrorBoundary(unit, value)
	}
}

// unwindToSuspenseBoundary marks the nearest ancestor SuspenseBoundary
// DidCapture and registers a continuation on value (if it's a Thenable)
// that schedules a retry render once the data resolves.
func (r *Reconciler) unwindToSuspenseBoundary(unit fiber.ID, value any) {
	a := r.wipRoot.Arena
	for id := a.Get(unit).Parent; id != fiber.NoID; id = a.Get(id).Parent {
		f := a.Get(id)
		if f.Tag != fiber.SuspenseBoundary {
			f.Flags |= fiber.Incomplete
			continue
		}
		f.Flags |= fiber.DidCapture
		f.Flags &^= fiber.Incomplete
		r.registerSuspenseResolution(id, value)
		r.suspendedReason = dispatch.NotSuspended
		r.wip = id
		return
	}
	r.wipRootExitStatus = RootSuspendedAtTheShell
	r.wip = fiber.NoID
}

// registerSuspenseResolution claims a retry lane for boundary. Once value
// settles, that lane is marked on the boundary (and in its ancestors'
// ChildLanes) so the retry render re-begins the boundary instead of
// bailing out above it, and the root is rescheduled.
func (r *Reconciler) registerSuspenseResolution(boundary fiber.ID, value any) {
	root := r.wipRoot
	l := retryLanes[r.nextRetryLane%len(retryLanes)]
	r.nextRetryLane++
	onSettled := func() {
		a := root.Arena
		for id := boundary; id != fiber.NoID && a.Get(id) != nil; id = a.Get(id).Parent {
			for _, fid := range []fiber.ID{id, a.Get(id).Alternate} {
				if f := a.Get(fid); f != nil && id == boundary {
					f.Lanes |= uint32(l)
				} else if f != nil {
					f.ChildLanes |= uint32(l)
				}
			}
		}
		root.PendingLanes |= uint32(l)
		r.Registry.EnsureRootIsScheduled(root)
	}
	if t, ok := value.(dispatch.Thenable); ok {
		t.Then(onSettled, onSettled)
		return
	}
	// A bare value was thrown rather than a real Thenable (a test double,
	// say); retry immediately instead of suspending forever.
	onSettled()
}

// unwindToErrorBoundary walks to the nearest ancestor class fiber whose
// Instance implements dispatch.ErrorBoundary and enqueues a CaptureUpdate
// there (§7's error path reuses the ordinary update-queue machinery rather
// than a bespoke error channel).
func (r *Reconciler) unwindToErrorBoundary(unit fiber.ID, value any) {
	a := r.wipRoot.Arena
	err, ok := value.(error)
	if !ok {
		err = serviceerror.NewInternal("workloop: non-error panic value")
	}

	for id := a.Get(unit).Parent; id != fiber.NoID; id = a.Get(id).Parent {
		f := a.Get(id)
		if f.Tag != fiber.ClassLike {
			f.Flags |= fiber.Incomplete
			continue
		}
		boundary, ok := f.StateNode.(dispatch.ErrorBoundary)
		if !ok {
			f.Flags |= fiber.Incomplete
			continue
		}
		q, ok := f.UpdateQueue.(*update.Queue)
		if !ok || q == nil {
			f.Flags |= fiber.Incomplete
			continue
		}
		q.Shared.Enqueue(&update.Update{
			Lane:    uint32(r.entangledRenderLanes),
			Kind:    update.CaptureUpdate,
			Payload: func(prevState, nextProps any) any { return boundary.DeriveErrorState(err) },
		})
		f.Lanes |= uint32(r.entangledRenderLanes)
		f.Flags &^= fiber.Incomplete
		r.Logger.Warn("caught render error", tag.Error(err), tag.RootKey(r.wipRoot.Identifier))
		r.suspendedReason = dispatch.NotSuspended
		r.wip = id
		return
	}

	r.wipRootExitStatus = FatalErrored
	r.wip = fiber.NoID
	r.Logger.Error("uncaught render error", tag.Error(err), tag.RootKey(r.wipRoot.Identifier))
}
