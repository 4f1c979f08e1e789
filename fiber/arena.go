package fiber

// ID is an arena index identifying a Fiber within its FiberRoot's Arena.
// Per §9's design notes, intra-tree links (parent, first_child,
// next_sibling, alternate) are indices into an arena owned by the root,
// not owning pointers — this sidesteps the current/alternate reference
// cycle entirely and makes "at most two versions per fiber" a hard
// allocator invariant (§8 property 7) rather than a convention.
type ID uint32

// NoID is the zero value denoting "no fiber" (nil pointer's arena
// equivalent).
const NoID ID = 0

// Arena owns every Fiber allocated for a single FiberRoot, across both
// the current and work-in-progress buffers. Deleted subtrees return
// their ids to freeList only after commit (§9), bounding memory to
// O(2*|current|) plus O(|pending deletions|) per §8 property 7.
type Arena struct {
	// nodes holds one *Fiber per allocated id. Indirecting through a
	// pointer (rather than storing Fiber values inline) means a slice
	// growth-triggered reallocation of nodes itself never invalidates a
	// *Fiber a caller is already holding.
	nodes    []*Fiber
	freeList []ID
}

// NewArena returns an empty arena. Index 0 is reserved as NoID, so the
// backing slice always has a dummy element at position 0.
func NewArena() *Arena {
	return &Arena{nodes: make([]*Fiber, 1)}
}

// Alloc reserves a new fiber id, reusing a freed slot when available.
func (a *Arena) Alloc() ID {
	if n := len(a.freeList); n > 0 {
		id := a.freeList[n-1]
		a.freeList = a.freeList[:n-1]
		a.nodes[id] = &Fiber{}
		return id
	}
	a.nodes = append(a.nodes, &Fiber{})
	return ID(len(a.nodes) - 1)
}

// Free returns id to the free list. Callers must ensure nothing else
// still references id; the commit driver is the only caller (§9).
func (a *Arena) Free(id ID) {
	if id == NoID {
		return
	}
	a.nodes[id] = nil
	a.freeList = append(a.freeList, id)
}

// Get returns the fiber at id.
func (a *Arena) Get(id ID) *Fiber {
	if id == NoID {
		return nil
	}
	return a.nodes[id]
}

// Live reports the number of allocated (non-freed) fibers, for the
// double-buffer space-bound property test (§8 property 7).
func (a *Arena) Live() int {
	return len(a.nodes) - 1 - len(a.freeList)
}
