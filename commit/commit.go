// Package commit implements the commit driver (component C7): the
// three-subphase synchronous walk that applies a finished work-in-progress
// tree's effect flags to the host, swaps it in as current, and queues
// passive effects for a later asynchronous pass (§4.7).
//
// Grounded on chasm/engine.go's transaction-apply step (buffered mutations
// committed atomically once a transition function returns), generalized
// from CHASM's single mutation batch to the reconciler's three ordered
// subphases plus a deferred passive pass.
package commit

import (
	"go.fiberkit.dev/reconciler/dispatch"
	"go.fiberkit.dev/reconciler/fiber"
	"go.fiberkit.dev/reconciler/host"
	"go.fiberkit.dev/reconciler/internal/log"
	"go.fiberkit.dev/reconciler/internal/log/tag"
	"go.fiberkit.dev/reconciler/update"
)

const (
	beforeMutationMask = fiber.Snapshot | fiber.Update | fiber.ChildDeletion | fiber.Visibility
	mutationMask       = fiber.Placement | fiber.Update | fiber.ChildDeletion | fiber.ContentReset | fiber.Ref | fiber.Hydrating | fiber.Visibility | fiber.FormReset
	layoutMask         = fiber.Update | fiber.Callback | fiber.Ref | fiber.Visibility
	passiveMask        = fiber.Passive | fiber.Visibility | fiber.ChildDeletion
)

// passiveEntry is a still-mounted fiber whose passive effects must run in
// the deferred mount pass.
type passiveEntry struct {
	fiberPtr *fiber.Fiber
}

// Driver owns the host adapter and the deferred passive-effect queues.
// One Driver may service many roots; queues are keyed per root so
// FlushPendingPassiveEffects only touches the root it's asked about.
type Driver struct {
	Adapter host.Adapter
	Logger  log.Logger

	pendingMounts   map[*fiber.Root][]passiveEntry
	pendingUnmounts map[*fiber.Root][]func()
}

func NewDriver(adapter host.Adapter, logger log.Logger) *Driver {
	if logger == nil {
		logger = log.NewNoop()
	}
	return &Driver{
		Adapter:         adapter,
		Logger:          logger,
		pendingMounts:   map[*fiber.Root][]passiveEntry{},
		pendingUnmounts: map[*fiber.Root][]func(){},
	}
}

// CommitRoot implements §4.7: BeforeMutation, Mutation, Layout run
// synchronously against finishedWork, then root.current is swapped and any
// Passive-flagged fibers are queued for the next FlushPendingPassiveEffects
// call. Returns host-adapter errors encountered during Mutation/Layout,
// which the caller logs at error level (no host callback receives them)
// rather than aborting the commit (§7 "Commit error": "commit continues where possible to
// avoid orphans").
func (d *Driver) CommitRoot(root *fiber.Root, finishedWork fiber.ID) (recoverable []error) {
	a := root.Arena

	// Focus/scroll-position style restoration is host-specific and no
	// such hook exists on host.Adapter; PrepareForCommit/ResetAfterCommit
	// still bracket the mutation+layout phases for API fidelity and so a
	// host that DOES need them can be added without touching this driver.
	d.Adapter.PrepareForCommit(root.ContainerInfo)

	d.beforeMutation(a, finishedWork)

	if err := d.mutation(root, finishedWork); err != nil {
		d.Logger.Error("commit mutation error", tag.Error(err))
		recoverable = append(recoverable, err)
	}

	if err := d.layout(a, finishedWork); err != nil {
		d.Logger.Error("commit layout error", tag.Error(err))
		recoverable = append(recoverable, err)
	}

	root.Current = finishedWork

	d.Adapter.ResetAfterCommit(root.ContainerInfo)

	d.collectPassiveMounts(a, finishedWork, root)

	return recoverable
}

func (d *Driver) beforeMutation(a *fiber.Arena, node fiber.ID) {
	f := a.Get(node)
	if f.Flags&beforeMutationMask == 0 && f.SubtreeFlags&beforeMutationMask == 0 {
		return
	}
	for c := f.FirstChild; c != fiber.NoID; c = a.Get(c).NextSibling {
		d.beforeMutation(a, c)
	}
	// No adapter hook corresponds to a Snapshot effect (getSnapshotBeforeUpdate
	// has no host.Adapter equivalent); the walk exists so ordering guarantees
	// (§5 "phase N observes all effects of phases <N") hold even before such
	// a hook is added.
}

func (d *Driver) mutation(root *fiber.Root, node fiber.ID) error {
	return d.mutationSubtree(root, node, root.ContainerInfo, false)
}

// insideNewHost reports that node's nearest host ancestor was created in
// this render: complete_work already attached node's host instance to it
// through AppendInitialChild, so node's Placement needs no host call.
func (d *Driver) mutationSubtree(root *fiber.Root, node fiber.ID, hostParent any, insideNewHost bool) error {
	a := root.Arena
	f := a.Get(node)
	if f.Flags&mutationMask == 0 && f.SubtreeFlags&mutationMask == 0 {
		return nil
	}

	childHostParent := hostParent
	childInsideNewHost := insideNewHost
	if f.Tag == fiber.HostElement && f.StateNode != nil {
		childHostParent = f.StateNode
		childInsideNewHost = f.Alternate == fiber.NoID
	}

	for _, del := range f.Deletions {
		if err := d.commitDeletion(root, del, childHostParent); err != nil {
			return err
		}
	}
	f.Deletions = nil

	for c := f.FirstChild; c != fiber.NoID; c = a.Get(c).NextSibling {
		if err := d.mutationSubtree(root, c, childHostParent, childInsideNewHost); err != nil {
			return err
		}
	}

	if f.Flags.Has(fiber.Placement) {
		if !insideNewHost {
			if err := d.commitPlacement(a, node, hostParent); err != nil {
				return err
			}
		}
		f.Flags &^= fiber.Placement
	}
	if f.Flags.Has(fiber.Update) {
		if err := d.commitUpdate(a, node); err != nil {
			return err
		}
	}
	if f.Flags.Has(fiber.Ref) {
		d.detachStaleRef(a, node)
	}

	return nil
}

// commitPlacement inserts a host-bearing fiber's instance under hostParent.
// Non-host fibers (function components, fragments, providers, ...) never
// need a direct insertion: reconcileChildren gives every fresh descendant
// its own Placement flag, so the topmost host fibers below a newly placed
// non-host fiber carry the flag themselves. A fiber that already has an
// alternate is being moved and goes through InsertBefore (a nil anchor
// means the end), which takes it out of its old position first.
func (d *Driver) commitPlacement(a *fiber.Arena, node fiber.ID, hostParent any) error {
	f := a.Get(node)
	if f.Tag != fiber.HostElement && f.Tag != fiber.HostText {
		return nil
	}
	before := findHostSibling(a, node)
	if before != nil || f.Alternate != fiber.NoID {
		return d.Adapter.InsertBefore(hostParent, f.StateNode, before)
	}
	return d.Adapter.AppendChild(hostParent, f.StateNode)
}

// findHostSibling returns the host instance node should be inserted
// before. Siblings that are themselves flagged Placement are skipped: they
// are not at their final host position yet.
func findHostSibling(a *fiber.Arena, node fiber.ID) any {
	for sib := a.Get(node).NextSibling; sib != fiber.NoID; sib = a.Get(sib).NextSibling {
		if a.Get(sib).Flags.Has(fiber.Placement) {
			continue
		}
		if inst := firstHostInstance(a, sib); inst != nil {
			return inst
		}
	}
	return nil
}

func firstHostInstance(a *fiber.Arena, id fiber.ID) any {
	f := a.Get(id)
	if f.Tag == fiber.HostElement || f.Tag == fiber.HostText {
		return f.StateNode
	}
	for c := f.FirstChild; c != fiber.NoID; c = a.Get(c).NextSibling {
		if inst := firstHostInstance(a, c); inst != nil {
			return inst
		}
	}
	return nil
}

func (d *Driver) commitUpdate(a *fiber.Arena, node fiber.ID) error {
	f := a.Get(node)
	switch f.Tag {
	case fiber.HostElement:
		var oldProps any
		if f.Alternate != fiber.NoID {
			oldProps = a.Get(f.Alternate).MemoizedProps
		}
		return d.Adapter.CommitUpdate(f.StateNode, f.UpdateQueue, f.Type, oldProps, f.MemoizedProps)
	case fiber.HostText:
		var oldText string
		if f.Alternate != fiber.NoID {
			oldText, _ = a.Get(f.Alternate).MemoizedProps.(string)
		}
		newText, _ := f.MemoizedProps.(string)
		return d.Adapter.CommitTextUpdate(f.StateNode, oldText, newText)
	}
	return nil
}

// commitDeletion removes a subtree's top-level host instance(s) from the
// host tree, then runs ComponentWillUnmount/ref detach for every fiber in
// it and frees both buffers of each pair. Passive-effect cleanups are
// snapshotted here (before the arena slot is reused) but deferred to the
// unmount half of the next passive flush, per §9's resolved ordering.
func (d *Driver) commitDeletion(root *fiber.Root, id fiber.ID, hostParent any) error {
	a := root.Arena
	if err := removeHostInstances(d.Adapter, a, id, hostParent); err != nil {
		return err
	}
	d.unmountAndFree(root, id)
	return nil
}

func removeHostInstances(adapter host.Adapter, a *fiber.Arena, id fiber.ID, hostParent any) error {
	f := a.Get(id)
	if f.Tag == fiber.HostElement || f.Tag == fiber.HostText {
		return adapter.RemoveChild(hostParent, f.StateNode)
	}
	for c := f.FirstChild; c != fiber.NoID; c = a.Get(c).NextSibling {
		if err := removeHostInstances(adapter, a, c, hostParent); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) unmountAndFree(root *fiber.Root, id fiber.ID) {
	a := root.Arena
	f := a.Get(id)

	for c := f.FirstChild; c != fiber.NoID; {
		next := a.Get(c).NextSibling
		d.unmountAndFree(root, c)
		c = next
	}

	d.detachRef(f)
	if inst, ok := f.StateNode.(dispatch.Unmounter); ok {
		inst.ComponentWillUnmount()
	}
	if len(f.PassiveCleanups) > 0 {
		d.pendingUnmounts[root] = append(d.pendingUnmounts[root], f.PassiveCleanups...)
	}

	if alt := f.Alternate; alt != fiber.NoID {
		a.Free(alt)
	}
	a.Free(id)
}

func (d *Driver) detachStaleRef(a *fiber.Arena, node fiber.ID) {
	f := a.Get(node)
	if f.Alternate == fiber.NoID {
		return
	}
	old := a.Get(f.Alternate)
	if old.Ref == nil || old.Ref == f.Ref {
		return
	}
	if old.RefCleanup != nil {
		old.RefCleanup()
		old.RefCleanup = nil
	} else if fn, ok := old.Ref.(host.FuncRef); ok {
		fn(nil)
	}
}

func (d *Driver) detachRef(f *fiber.Fiber) {
	if f.Ref == nil {
		return
	}
	if f.RefCleanup != nil {
		f.RefCleanup()
		f.RefCleanup = nil
		return
	}
	if fn, ok := f.Ref.(host.FuncRef); ok {
		fn(nil)
	}
}

func (d *Driver) layout(a *fiber.Arena, node fiber.ID) error {
	f := a.Get(node)
	if f.Flags&layoutMask == 0 && f.SubtreeFlags&layoutMask == 0 {
		return nil
	}
	for c := f.FirstChild; c != fiber.NoID; c = a.Get(c).NextSibling {
		if err := d.layout(a, c); err != nil {
			return err
		}
	}
	if f.Flags.Has(fiber.Ref) && f.Ref != nil {
		if r, ok := f.Ref.(host.Ref); ok {
			f.RefCleanup = r.Attach(f.StateNode)
		}
	}
	if f.Flags.Has(fiber.Callback) {
		if q, ok := f.UpdateQueue.(*update.Queue); ok {
			callbacks := q.Callbacks
			q.Callbacks = nil
			for _, cb := range callbacks {
				cb()
			}
		}
	}
	if mounter, ok := f.StateNode.(dispatch.Mounter); ok && f.Alternate == fiber.NoID {
		mounter.ComponentDidMount()
	}
	return nil
}
