// Package workloop implements the render-phase work loop (component C5):
// the cooperative, interruptible traversal that drives begin/complete
// dispatch (package dispatch) over a fiber tree and hands a finished tree
// to the commit driver (package commit).
//
// Grounded on §9's "package global mutable state ... as a single
// Reconciler context owned by the root registry and passed explicitly":
// rather than process-wide variables, every field the real algorithm
// keeps as a global (wip, wip_root, wip_root_render_lanes, executionContext,
// the priority channel) lives on this struct, making the single-mutator
// invariant an explicit, testable property instead of an implicit one.
package workloop

import (
	"go.fiberkit.dev/reconciler/commit"
	"go.fiberkit.dev/reconciler/dispatch"
	"go.fiberkit.dev/reconciler/fiber"
	"go.fiberkit.dev/reconciler/host"
	"go.fiberkit.dev/reconciler/internal/log"
	"go.fiberkit.dev/reconciler/lane"
	"go.fiberkit.dev/reconciler/schedule"
)

// ExecutionContext is a bitmask of which phase(s) of the reconciler are
// active on the single mutator thread right now (§5, §6 "context-setting
// wrappers that adjust the executionContext bitmask").
type ExecutionContext uint32

const NoContext ExecutionContext = 0

const (
	BatchedContext ExecutionContext = 1 << iota
	DiscreteEventContext
	RenderContext
	CommitContext
	TransitionContext
)

// Has reports whether every bit of want is set in c.
func (c ExecutionContext) Has(want ExecutionContext) bool { return c&want == want }

// ExitStatus is the result of one call to renderRootConcurrent/Sync (§4.5).
type ExitStatus int

const (
	InProgress ExitStatus = iota
	Completed
	Errored
	FatalErrored
	RootSuspendedAtTheShell
)

// transitionLanes is the fixed pool request_update_lane draws from inside
// a transition scope, cycled round-robin (§4.1 TransitionLanes).
var transitionLanes = []lane.Set{
	lane.TransitionLane1, lane.TransitionLane2, lane.TransitionLane3, lane.TransitionLane4,
	lane.TransitionLane5, lane.TransitionLane6, lane.TransitionLane7, lane.TransitionLane8,
	lane.TransitionLane9, lane.TransitionLane10, lane.TransitionLane11, lane.TransitionLane12,
	lane.TransitionLane13, lane.TransitionLane14, lane.TransitionLane15, lane.TransitionLane16,
}

// Reconciler is the single-mutator work loop context. One Reconciler
// drives every root registered against its Registry; only one root may be
// mid-render at a time, matching §5's "single mutator, no preemption".
type Reconciler struct {
	Adapter   host.Adapter
	Scheduler host.Scheduler
	Registry  *schedule.Registry
	Commit    *commit.Driver
	Logger    log.Logger

	executionContext ExecutionContext

	// Priority channel (§6): set by a host event dispatcher (out of scope)
	// or by the DiscreteUpdates/StartTransition/FlushSync wrappers before
	// calling back into UpdateContainer.
	currentUpdatePriority      lane.Set
	currentEventTransitionLane lane.Set
	nextTransitionLane         int

	// Render-phase globals, valid only while wipRoot != nil. wip is the
	// traversal cursor and reaches fiber.NoID once the walk ascends back
	// past the root; wipRootFiberID is the root's own work-in-progress
	// fiber, fixed for the whole render and what gets handed to the
	// commit driver once wipRootExitStatus reaches Completed.
	wip                  fiber.ID
	wipRootFiberID       fiber.ID
	wipRoot              *fiber.Root
	wipRenderLanes       lane.Set
	entangledRenderLanes lane.Set
	wipRootExitStatus    ExitStatus
	wipRootSkippedLanes  lane.Set
	wipHostContext       any

	suspendedReason dispatch.Reason
	thrownValue     any

	nextRetryLane int
}

// retryLanes is the fixed pool a resolved suspense boundary's follow-up
// render is scheduled at, cycled round-robin like transitionLanes (§4.1
// RetryLanes).
var retryLanes = []lane.Set{lane.RetryLane1, lane.RetryLane2, lane.RetryLane3, lane.RetryLane4}

// New constructs a Reconciler and wires it as registry's work performer
// (§4.4's WorkPerformer, so EnsureRootIsScheduled's callbacks land here).
func New(adapter host.Adapter, scheduler host.Scheduler, registry *schedule.Registry, logger log.Logger) *Reconciler {
	if logger == nil {
		logger = log.NewNoop()
	}
	r := &Reconciler{
		Adapter:   adapter,
		Scheduler: scheduler,
		Registry:  registry,
		Commit:    commit.NewDriver(adapter, logger),
		Logger:    logger,
	}
	registry.SetWorkPerformer(r)
	return r
}

var _ schedule.WorkPerformer = (*Reconciler)(nil)
