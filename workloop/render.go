package workloop

import (
	"go.fiberkit.dev/reconciler/dispatch"
	"go.fiberkit.dev/reconciler/fiber"
	"go.fiberkit.dev/reconciler/host"
	"go.fiberkit.dev/reconciler/internal/log/tag"
	"go.fiberkit.dev/reconciler/lane"
)

// PerformWorkOnRoot implements schedule.WorkPerformer, the entry point the
// root scheduler (C4) calls once it has decided root should render now
// (§4.4/§4.5). forceSync disables time-slicing: the whole tree renders in
// one call regardless of Scheduler.ShouldYield.
func (r *Reconciler) PerformWorkOnRoot(root *fiber.Root, lanes lane.Set, forceSync bool) {
	// A yielded concurrent render resumes the SAME wip stack rather than
	// restarting it: only call prepare_fresh_stack when this call isn't
	// the continuation of an in-progress render at the same lanes.
	if r.wipRoot != root || r.wipRenderLanes != lanes {
		r.prepareFreshStack(root, lanes)
	}

	var status ExitStatus
	if forceSync || lane.IsBlocking(lanes) || lanes.Includes(lane.Set(root.ExpiredLanes)) {
		status = r.renderRootSync()
	} else {
		status = r.renderRootConcurrent()
	}

	switch status {
	case InProgress:
		// Yielded mid-render (concurrent, ran out of time slice): the wip
		// stack is left in place and a follow-up callback resumes it at
		// the same lanes.
		root.CallbackNode = r.Scheduler.ScheduleCallback(priorityLevelFor(lanes), func() {
			r.PerformWorkOnRoot(root, lanes, false)
		})
		return
	case RootSuspendedAtTheShell:
		r.Logger.Debug("root suspended at the shell", tag.RootKey(root.Identifier), tag.Lanes(lanes))
		root.SuspendedLanes |= uint32(lanes)
		root.CallbackNode = nil
	case FatalErrored:
		r.Logger.Error("fatal render error", tag.RootKey(root.Identifier))
		root.PendingLanes &^= uint32(lanes)
		root.CallbackNode = nil
	case Errored:
		root.PendingLanes &^= uint32(lanes)
		root.CallbackNode = nil
	case Completed:
		root.PendingLanes &^= uint32(lanes)
		root.SuspendedLanes &^= uint32(lanes)
		root.PingedLanes &^= uint32(lanes)
		root.ExpiredLanes &^= uint32(lanes)
		root.PendingLanes |= uint32(r.wipRootSkippedLanes)
		root.CallbackNode = nil

		recoverable := r.Commit.CommitRoot(root, r.wipRootFiberID)
		for _, err := range recoverable {
			r.Logger.Error("recoverable commit error", tag.Error(err), tag.RootKey(root.Identifier))
		}

		// A commit may have queued passive effects even though it left no
		// further lanes pending on root, in which case the scheduler's own
		// microtask pass never revisits it (§4.4 only flushes passive
		// effects right before a root's *next* render). Schedule one
		// directly at NormalPriority so mount/unmount effects still run
		// promptly instead of waiting on an update that may never come.
		r.Scheduler.ScheduleCallback(host.PriorityNormal, func() {
			r.FlushPendingPassiveEffects(root)
		})
	}

	r.wipRoot = nil
	r.Registry.EnsureRootIsScheduled(root)
}

// priorityLevelFor maps a lane class down to the external scheduler's
// coarser priority vocabulary (§4.4), mirroring schedule.Registry's own
// (unexported) mapping for the continuation-callback case.
func priorityLevelFor(lanes lane.Set) host.PriorityLevel {
	switch lane.ClassOf(lane.Highest(lanes)) {
	case lane.ClassSync, lane.ClassInputContinuous:
		return host.PriorityUserBlocking
	case lane.ClassIdle:
		return host.PriorityIdle
	default:
		return host.PriorityNormal
	}
}

// FlushPendingPassiveEffects satisfies schedule.WorkPerformer by
// delegating to the commit driver, which owns the deferred queues.
func (r *Reconciler) FlushPendingPassiveEffects(root *fiber.Root) bool {
	return r.Commit.FlushPendingPassiveEffects(root)
}

// prepareFreshStack implements §4.5's prepare_fresh_stack: discard any
// half-finished wip tree from a lower-priority render that got preempted
// and start over from the root at lanes.
func (r *Reconciler) prepareFreshStack(root *fiber.Root, lanes lane.Set) {
	book := r.Registry.BookkeepingFor(root)

	r.wipRoot = root
	r.wipRenderLanes = lanes
	r.entangledRenderLanes = book.Entanglements.Resolve(lanes)
	r.wipRootExitStatus = InProgress
	r.wipRootSkippedLanes = lane.NoLanes
	hostContext, err := r.Adapter.GetRootHostContext(root.ContainerInfo)
	if err != nil {
		r.Logger.Error("get root host context", tag.Error(err), tag.RootKey(root.Identifier))
	}
	r.wipHostContext = hostContext
	r.suspendedReason = dispatch.NotSuspended
	r.thrownValue = nil

	wip := fiber.CreateWorkInProgress(root.Arena, root.Current, root.Arena.Get(root.Current).PendingProps)
	root.Arena.Get(wip).Lanes = uint32(r.entangledRenderLanes)
	r.wip = wip
	r.wipRootFiberID = wip
}

func (r *Reconciler) renderRootSync() ExitStatus {
	for r.wipRootExitStatus == InProgress {
		r.workLoopSync()
	}
	return r.wipRootExitStatus
}

func (r *Reconciler) renderRootConcurrent() ExitStatus {
	for r.wipRootExitStatus == InProgress {
		if r.Scheduler.ShouldYield() {
			return InProgress
		}
		r.workLoopConcurrent()
	}
	return r.wipRootExitStatus
}

// workLoopSync drains every unit of work without checking ShouldYield,
// used for the Sync lane and forced (§4.5 "discrete input, timeout")
// renders that must not be interrupted.
func (r *Reconciler) workLoopSync() {
	for r.wip != fiber.NoID && r.wipRootExitStatus == InProgress {
		r.performUnitOfWork(r.wip)
	}
}

// workLoopConcurrent performs one unit of work; renderRootConcurrent
// checks ShouldYield between calls. §4.5 also describes a time-budget
// fallback for a scheduler that cannot answer ShouldYield cheaply, but
// host.Scheduler.ShouldYield is a mandatory method on this codebase's
// Scheduler trait (never optional), so that branch is dead by
// construction and is not implemented.
func (r *Reconciler) workLoopConcurrent() {
	if r.wip != fiber.NoID && r.wipRootExitStatus == InProgress {
		r.performUnitOfWork(r.wip)
	}
}

func (r *Reconciler) performUnitOfWork(unit fiber.ID) {
	a := r.wipRoot.Arena
	current := a.Get(unit).Alternate

	next, suspended := r.beginUnit(current, unit)
	a.Get(unit).MemoizedProps = a.Get(unit).PendingProps

	if suspended {
		return
	}

	if next == fiber.NoID {
		r.completeUnitOfWork(unit)
		return
	}
	r.wip = next
}

// beginUnit wraps dispatch.BeginWork in a recover so a Suspend/Throw
// panic (or a genuine user-code panic, per dispatch.Recover's fallback)
// unwinds to the nearest boundary instead of crashing the render.
func (r *Reconciler) beginUnit(current, wip fiber.ID) (next fiber.ID, suspended bool) {
	defer func() {
		rec := recover()
		reason, value, ok := dispatch.Recover(rec)
		if !ok {
			return
		}
		r.handleThrow(wip, reason, value)
		suspended = true
	}()

	onSkipped := func(skipped uint32) {
		r.wipRootSkippedLanes |= skipped
	}
	next = dispatch.BeginWork(r.wipRoot, current, wip, uint32(r.entangledRenderLanes), uint32(r.entangledRenderLanes), onSkipped)
	return next, false
}

func (r *Reconciler) completeUnitOfWork(start fiber.ID) {
	a := r.wipRoot.Arena
	unit := start

	for {
		f := a.Get(unit)
		current := f.Alternate
		parent := f.Parent

		if f.Flags.Has(fiber.Incomplete) {
			// Defensive fallback only: handleThrow already redirects
			// r.wip straight to the capturing boundary, so a genuinely
			// Incomplete fiber never reaches this ascent in practice.
		} else {
			cc := &dispatch.CompleteContext{Adapter: r.Adapter, ContainerInfo: r.wipRoot.ContainerInfo, HostContext: r.wipHostContext}
			retry, err := dispatch.CompleteWork(a, cc, current, unit)
			if err != nil {
				r.handleThrow(unit, dispatch.SuspendedOnError, err)
				return
			}
			if retry != fiber.NoID {
				r.wip = retry
				return
			}
			if parent != fiber.NoID {
				fiber.BubbleEffects(a, parent, unit)
			}
		}

		if sib := a.Get(unit).NextSibling; sib != fiber.NoID {
			r.wip = sib
			return
		}

		if parent == fiber.NoID {
			r.wipRootExitStatus = Completed
			r.wip = fiber.NoID
			return
		}
		unit = parent
	}
}
