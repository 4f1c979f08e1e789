package schedule

import (
	"time"

	"go.fiberkit.dev/reconciler/fiber"
	"go.fiberkit.dev/reconciler/host"
	"go.fiberkit.dev/reconciler/internal/log"
	"go.fiberkit.dev/reconciler/internal/log/tag"
	"go.fiberkit.dev/reconciler/internal/metrics"
	"go.fiberkit.dev/reconciler/lane"
)

// Bookkeeping is the per-root lane state schedule needs beyond what
// fiber.Root already stores directly, kept in schedule rather than
// fiber so C1's expiration/entanglement machinery doesn't need to be
// imported by the fiber package (fiber stays a pure data model, per
// §9's "package global state explicitly" guidance applied to avoid an
// unwanted dependency edge instead of a god object).
type Bookkeeping struct {
	Expiration    lane.ExpirationTimes
	Entanglements lane.Entanglements
}

// WorkPerformer is implemented by the work loop (C5) and invoked by the
// scheduler once it has decided a root should render now. Kept as an
// interface (rather than schedule importing workloop directly) so
// workloop can depend on schedule for EnsureRootIsScheduled without
// creating an import cycle.
type WorkPerformer interface {
	// PerformWorkOnRoot renders (and, if it completes, commits) root at
	// lanes. forceSync disables time-slicing (§4.5).
	PerformWorkOnRoot(root *fiber.Root, lanes lane.Set, forceSync bool)
	// FlushPendingPassiveEffects runs any outstanding passive effects for
	// root synchronously, returning true if any ran (§4.4's
	// perform_sync_work_on_root pre-step).
	FlushPendingPassiveEffects(root *fiber.Root) bool
}

// Registry is the process-wide scheduler state (§4.4, §9's advice to
// package global mutable state into a single owned context). One
// Registry serves every fiber.Root created against it.
type Registry struct {
	list  List
	books map[*fiber.Root]*Bookkeeping

	didScheduleMicrotask bool
	isFlushingWork       bool

	scheduler host.Scheduler
	work      WorkPerformer
	logger    log.Logger
	metrics   *monitor
}

// NewRegistry constructs a Registry bound to a scheduler; its work
// performer is set separately, normally once, immediately after
// the workloop.Reconciler that implements it is constructed, since the
// two are mutually referential.
func NewRegistry(scheduler host.Scheduler, logger log.Logger, handle metrics.Handle) *Registry {
	if logger == nil {
		logger = log.NewNoop()
	}
	if handle == nil {
		handle = metrics.NewNoop()
	}
	return &Registry{
		books:     map[*fiber.Root]*Bookkeeping{},
		scheduler: scheduler,
		logger:    logger,
		metrics:   newMonitor(handle),
	}
}

// SetWorkPerformer wires the work loop implementation. Must be called
// before any root is scheduled.
func (r *Registry) SetWorkPerformer(w WorkPerformer) { r.work = w }

// WorkPerformer returns the registry's wired work loop, or nil if
// SetWorkPerformer hasn't been called yet — lets a caller sharing one
// Registry across several containers reuse the same single-mutator work
// loop instead of constructing a second one that would silently replace
// the first via SetWorkPerformer.
func (r *Registry) WorkPerformer() WorkPerformer { return r.work }

// BookkeepingFor returns (creating if necessary) the lane bookkeeping for
// root.
func (r *Registry) BookkeepingFor(root *fiber.Root) *Bookkeeping {
	b, ok := r.books[root]
	if !ok {
		b = &Bookkeeping{}
		r.books[root] = b
	}
	return b
}

// Forget drops a root's bookkeeping, called on explicit container
// teardown.
func (r *Registry) Forget(root *fiber.Root) {
	r.list.Remove(root)
	delete(r.books, root)
}

// EnsureRootIsScheduled implements §4.4's ensure_root_is_scheduled.
func (r *Registry) EnsureRootIsScheduled(root *fiber.Root) {
	r.list.Append(root)

	if r.didScheduleMicrotask {
		return
	}
	r.didScheduleMicrotask = true

	if r.scheduler.SupportsMicrotasks() {
		r.scheduler.ScheduleMicrotask(r.processRootScheduleInMicrotask)
	} else {
		r.scheduler.ScheduleCallback(host.PriorityImmediate, r.processRootScheduleInMicrotask)
	}
}

func (r *Registry) processRootScheduleInMicrotask() {
	r.didScheduleMicrotask = false
	now := r.scheduler.Now()

	r.list.Each(func(root *fiber.Root) {
		r.scheduleTaskForRootDuringMicrotask(root, now)
	})

	r.FlushSyncWorkAcrossRoots()
}

func (r *Registry) scheduleTaskForRootDuringMicrotask(root *fiber.Root, now time.Time) {
	book := r.BookkeepingFor(root)

	expired := book.Expiration.Expired(lane.Set(root.PendingLanes), now)
	root.ExpiredLanes |= uint32(expired)

	snap := lane.Snapshot{
		Pending:   lane.Set(root.PendingLanes),
		Suspended: lane.Set(root.SuspendedLanes),
		Pinged:    lane.Set(root.PingedLanes),
		Expired:   lane.Set(root.ExpiredLanes),
		Entangled: &book.Entanglements,
	}
	next := lane.GetNextLanes(snap, lane.NoLanes, root.HasPendingCommit())

	if next.IsEmpty() {
		if h, ok := root.CallbackNode.(host.CallbackHandle); ok {
			r.scheduler.CancelCallback(h)
		}
		root.CallbackNode = nil
		root.CallbackPriority = uint32(host.PriorityIdle)
		r.list.Remove(root)
		r.metrics.recordRootIdle()
		return
	}

	book.Expiration.Record(next, now)
	if expired != lane.NoLanes {
		r.metrics.recordLanesExpired(lane.Count(expired))
	}

	if lane.IsBlocking(next) || next.Includes(lane.Set(root.ExpiredLanes)) {
		if h, ok := root.CallbackNode.(host.CallbackHandle); ok {
			r.scheduler.CancelCallback(h)
		}
		root.CallbackNode = nil
		root.CallbackPriority = uint32(host.PriorityImmediate)
		return // flush_sync_work_across_roots picks this up after the loop.
	}

	level := schedulerPriorityFor(lane.ClassOf(lane.Highest(next)))
	if root.CallbackNode != nil && root.CallbackPriority == uint32(level) {
		return // existing callback is already at the right priority.
	}
	if h, ok := root.CallbackNode.(host.CallbackHandle); ok {
		r.scheduler.CancelCallback(h)
	}
	root.CallbackPriority = uint32(level)
	r.metrics.recordCallbackScheduled(lane.ClassOf(lane.Highest(next)))
	root.CallbackNode = r.scheduler.ScheduleCallback(level, func() {
		if r.work != nil {
			r.work.PerformWorkOnRoot(root, next, false)
		}
	})
}

// FlushSyncWorkAcrossRoots implements §4.4's flush_sync_work_across_roots:
// repeatedly scan for roots whose next lanes are Sync-or-expired and run
// them inline, until a full pass performs no work.
func (r *Registry) FlushSyncWorkAcrossRoots() {
	if r.isFlushingWork || r.work == nil {
		return
	}
	r.isFlushingWork = true
	defer func() { r.isFlushingWork = false }()

	for {
		didPerformWork := false

		r.list.Each(func(root *fiber.Root) {
			book := r.BookkeepingFor(root)
			snap := lane.Snapshot{
				Pending:   lane.Set(root.PendingLanes),
				Suspended: lane.Set(root.SuspendedLanes),
				Pinged:    lane.Set(root.PingedLanes),
				Expired:   lane.Set(root.ExpiredLanes),
				Entangled: &book.Entanglements,
			}
			next := lane.GetNextLanes(snap, lane.NoLanes, root.HasPendingCommit())
			if next.IsEmpty() || !(lane.IsBlocking(next) || next.Includes(lane.Set(root.ExpiredLanes))) {
				return
			}

			r.logger.Debug("flushing sync work", tag.RootKey(root.Identifier), tag.Lanes(next))
			r.metrics.recordSyncFlush()
			r.work.FlushPendingPassiveEffects(root)
			r.work.PerformWorkOnRoot(root, next, true)
			didPerformWork = true
		})

		if !didPerformWork {
			return
		}
	}
}

func schedulerPriorityFor(class lane.PriorityClass) host.PriorityLevel {
	switch class {
	case lane.ClassSync, lane.ClassInputContinuous:
		return host.PriorityUserBlocking
	case lane.ClassIdle:
		return host.PriorityIdle
	default:
		return host.PriorityNormal
	}
}
