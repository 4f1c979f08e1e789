// Package reconciler is the public entry point (§6): create a container
// bound to a host adapter, and push new element trees into it. Everything
// underneath (fiber, dispatch, workloop, commit, schedule) is an
// implementation detail a caller never touches directly.
//
// Grounded on chasm/library.go's Registry.NewExecution / engine.go's
// exported entry points, generalized from CHASM's durable-execution
// handle to a UI container handle with no persistence.
package reconciler

import (
	"go.fiberkit.dev/reconciler/dispatch"
	"go.fiberkit.dev/reconciler/fiber"
	"go.fiberkit.dev/reconciler/host"
	"go.fiberkit.dev/reconciler/internal/ids"
	"go.fiberkit.dev/reconciler/internal/log"
	"go.fiberkit.dev/reconciler/internal/log/tag"
	"go.fiberkit.dev/reconciler/internal/metrics"
	"go.fiberkit.dev/reconciler/schedule"
	"go.fiberkit.dev/reconciler/update"
	"go.fiberkit.dev/reconciler/workloop"
)

// Container is a mounted root: one host container, one fiber tree, one
// work loop. A process may own many independent Containers sharing a
// Registry (so their Sync-lane work is flushed together, §4.4) or each
// with its own.
type Container struct {
	root     *fiber.Root
	work     *workloop.Reconciler
	registry *schedule.Registry
	logger   log.Logger
	prefix   string
}

// Options configures CreateContainer. Registry, if nil, gets a fresh
// one scoped to this single container; share one across containers that
// should participate in the same flush_sync_work_across_roots pass.
type Options struct {
	Adapter   host.Adapter
	Scheduler host.Scheduler
	Registry  *schedule.Registry
	Logger    log.Logger
	Metrics   metrics.Handle
	Mode      fiber.Mode

	// IdentifierPrefix labels this container's generated root key and
	// update-request ids (log correlation only, §9).
	IdentifierPrefix string
}

var containerOrdinal uint64

// CreateContainer implements §6's create_container: allocate a FiberRoot
// with an empty HostRoot fiber and wire it into a work loop, without
// rendering anything yet (that's the first UpdateContainer call).
func CreateContainer(containerInfo any, opts Options) *Container {
	if opts.Logger == nil {
		opts.Logger = log.NewNoop()
	}
	registry := opts.Registry
	if registry == nil {
		registry = schedule.NewRegistry(opts.Scheduler, opts.Logger, opts.Metrics)
	}

	containerOrdinal++
	key := ids.GenerateRootKey(ids.RootKeyParams{IdentifierPrefix: opts.IdentifierPrefix, Ordinal: containerOrdinal})

	root := fiber.NewRoot(containerInfo, key, opts.Mode)
	root.CurrentFiber().UpdateQueue = update.NewQueue(dispatch.RootState{})

	c := &Container{root: root, registry: registry, logger: opts.Logger, prefix: opts.IdentifierPrefix}

	if wp := registry.WorkPerformer(); wp != nil {
		// A shared registry already has a work loop; reuse it so every
		// container it serves renders on the same single mutator.
		c.work = wp.(*workloop.Reconciler)
	} else {
		c.work = workloop.New(opts.Adapter, opts.Scheduler, registry, opts.Logger)
	}

	return c
}

// UpdateContainer implements §6's update_container: enqueue a new root
// element at the caller's current priority-channel lane and ensure the
// root gets scheduled to render it.
func (c *Container) UpdateContainer(element dispatch.Element) {
	l := c.work.RequestUpdateLane()

	u := update.New(uint32(l), update.UpdateState, update.Value(dispatch.RootState{Element: element}))

	q := c.root.CurrentFiber().UpdateQueue.(*update.Queue)
	q.Shared.Enqueue(u)

	c.root.PendingLanes |= uint32(l)
	c.registry.EnsureRootIsScheduled(c.root)

	requestID := ids.GenerateUpdateRequestID(ids.UpdateRequestIDParams{
		IdentifierPrefix: c.prefix,
		RootKey:          c.root.Identifier,
		Lane:             uint32(l),
		SubmittedAt:      c.work.Scheduler.Now(),
	})
	c.logger.Debug("update_container", tag.RootKey(c.root.Identifier), tag.Lanes(l), tag.RequestID(requestID))
}

// FlushSync runs fn (if non-nil) at the Sync lane, then flushes every
// Sync-or-expired root registered on this container's registry, blocking
// until they've all committed (§6).
func (c *Container) FlushSync(fn func()) { c.work.FlushSync(fn) }

// BatchedUpdates runs fn, coalescing every UpdateContainer call it makes
// into a single scheduling pass (§6).
func (c *Container) BatchedUpdates(fn func()) { c.work.BatchedUpdates(fn) }

// DiscreteUpdates runs fn as a discrete host event, so its updates aren't
// batched with a lower-priority transition already in flight (§6).
func (c *Container) DiscreteUpdates(fn func()) { c.work.DiscreteUpdates(fn) }

// StartTransition runs fn with every UpdateContainer call inside it
// claiming a TransitionLane instead of DefaultLane (§4.1, §6).
func (c *Container) StartTransition(fn func()) { c.work.StartTransition(fn) }

// Unmount tears the container down: enqueues a nil-element update (which
// commits an empty tree, unmounting everything) and forgets the root's
// scheduler bookkeeping once that commits.
func (c *Container) Unmount() {
	c.FlushSync(func() { c.UpdateContainer(dispatch.Element{}) })
	c.registry.Forget(c.root)
}

// Root exposes the underlying fiber.Root for callers that need direct
// tree inspection (tests, debug tooling); not part of the render path.
func (c *Container) Root() *fiber.Root { return c.root }
