// Package fiber implements the reconciler's doubly-buffered working
// representation of the UI (component C2): the Fiber node type, its
// arena-backed tree links, and create_work_in_progress cloning.
//
// Grounded on the teacher's chasm/component.go Component/LifecycleState
// split: a CHASM Component is a stateful tree node with lifecycle and
// behavior; a Fiber generalizes that to carry render-phase work state
// (pending vs. memoized props, an update queue, effect flags) in
// addition to lifecycle, and exists in two versions (current/alternate)
// rather than CHASM's single persisted node.
package fiber

// Key is an optional stable sibling identity used to match fibers across
// renders during child reconciliation (§4.6).
type Key = string

// Fiber is a node in the reconciler's working tree (§3). All tree links
// are Arena indices, never pointers — see arena.go.
type Fiber struct {
	Tag Tag

	// Type is the component's identity: a function reference, a class
	// descriptor, or a host tag name. ElementType is the unresolved form,
	// used for memoization/lazy unwrapping (e.g. before a LazyComponent
	// resolves, or to detect a Memo wrapper's inner type changing).
	Type        any
	ElementType any

	Key  Key
	Mode Mode

	// StateNode is the host resource handle (host fibers) or component
	// instance (class fibers). create_work_in_progress copies it into a
	// newly allocated alternate, so both buffers of a pair refer to the
	// same instance.
	StateNode any

	Parent      ID
	FirstChild  ID
	NextSibling ID
	Index       int

	PendingProps   any
	MemoizedProps  any
	MemoizedState  any
	UpdateQueue    any // *update.Queue[S]; kept as any to avoid an import cycle
	Dependencies   *Dependencies

	// PassiveEffects holds this render's setup functions for a component
	// that registered passive (post-commit) effects; each returns its own
	// cleanup, run before the next mount or on unmount. Populated by
	// dispatch's begin handlers, consumed by the commit driver's passive
	// pass. Kept as closures rather than an interface so dispatch doesn't
	// need a type fiber would have to import.
	PassiveEffects []func() func()

	// PassiveCleanups holds the cleanup closures returned by the setup
	// functions that ran the last time this exact double-buffer slot was
	// flushed as current. Untouched by create_work_in_progress and by
	// dispatch's begin handlers, so it survives the alternate ping-pong
	// across renders; only the commit driver reads and rewrites it, to
	// tear down before re-running or on unmount.
	PassiveCleanups []func()

	Flags        Flags
	SubtreeFlags Flags

	// Deletions holds children removed from this fiber's child list this
	// render but not yet applied to the host (§3 fiber.deletions).
	Deletions []ID

	Lanes      uint32 // lane.Set, stored as uint32 to avoid an import cycle
	ChildLanes uint32

	Alternate ID

	Ref         any
	RefCleanup  func()
}

// Dependencies tracks the context values (or other invalidatable
// sources) a fiber read during its last render. begin_work's bailout
// check reads it (a fiber with any recorded context dependency never
// bails out); nothing walks it to schedule consumers when a context
// value changes. Cloned
// (not shared) by create_work_in_progress, because rendering mutates it
// (§4.2).
type Dependencies struct {
	Lanes       uint32
	FirstContext *ContextDependency
}

// ContextDependency is a single entry in a fiber's dependency list.
type ContextDependency struct {
	Context any
	Next    *ContextDependency
}

// Clone returns a deep-enough copy of d for create_work_in_progress: the
// list nodes are copied so rendering the WIP fiber can't mutate the
// current fiber's dependency list.
func (d *Dependencies) Clone() *Dependencies {
	if d == nil {
		return nil
	}
	clone := &Dependencies{Lanes: d.Lanes}
	if d.FirstContext == nil {
		return clone
	}
	var headCopy, tailCopy *ContextDependency
	for c := d.FirstContext; c != nil; c = c.Next {
		n := &ContextDependency{Context: c.Context}
		if headCopy == nil {
			headCopy = n
		} else {
			tailCopy.Next = n
		}
		tailCopy = n
	}
	clone.FirstContext = headCopy
	return clone
}
