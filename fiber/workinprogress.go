package fiber

// CreateWorkInProgress implements §4.2's create_work_in_progress: given a
// current fiber id and new pending props, return the id of its
// work-in-progress counterpart, allocating one if this is the fiber's
// first render since it (or its alternate) was last committed.
func CreateWorkInProgress(a *Arena, current ID, pendingProps any) ID {
	c := a.Get(current)

	if c.Alternate == NoID {
		wipID := a.Alloc()
		wip := a.Get(wipID)
		// Identity-invariant fields, copied once and never touched again
		// by cloning (§4.2 "allocate a new fiber, copy identity-invariant
		// fields").
		wip.Tag = c.Tag
		wip.Key = c.Key
		wip.Mode = c.Mode
		wip.ElementType = c.ElementType
		wip.Type = c.Type
		wip.StateNode = c.StateNode
		// Only the StaticMask subset of current's flags carries over,
		// same as in the reuse branch below.
		wip.Flags = c.Flags.StaticMask()

		wip.Alternate = current
		c.Alternate = wipID

		copyMutableFields(a, current, wipID, pendingProps)
		return wipID
	}

	wipID := c.Alternate
	wip := a.Get(wipID)
	wip.PendingProps = pendingProps
	// Clear flags but preserve the StaticMask subset from current,
	// exactly as §4.2 specifies (this is what lets a fiber that has
	// e.g. a Ref effect keep tracking it across a bailout render).
	wip.Flags = c.Flags.StaticMask()
	wip.SubtreeFlags = NoFlags
	wip.Deletions = nil

	copyMutableFields(a, current, wipID, pendingProps)
	return wipID
}

// copyMutableFields copies from current the fields §4.2 says are shared
// verbatim across both branches (new-allocation and reuse), except
// Dependencies which is cloned rather than aliased because rendering
// mutates it.
func copyMutableFields(a *Arena, current, wip ID, pendingProps any) {
	c := a.Get(current)
	w := a.Get(wip)

	w.ChildLanes = c.ChildLanes
	w.Lanes = c.Lanes
	w.FirstChild = c.FirstChild
	w.MemoizedProps = c.MemoizedProps
	w.MemoizedState = c.MemoizedState
	w.UpdateQueue = c.UpdateQueue
	w.NextSibling = c.NextSibling
	w.Index = c.Index
	w.Ref = c.Ref
	w.RefCleanup = c.RefCleanup
	w.Dependencies = c.Dependencies.Clone()
	w.PendingProps = pendingProps
}

// BubbleEffects unions a child's flags and subtree_flags into its parent's
// subtree_flags, and the child's lanes/child_lanes into the parent's
// child_lanes, maintaining §8 properties 2 and 3. Called from complete_work
// once per child as the complete phase ascends (§4.5).
func BubbleEffects(a *Arena, parent, child ID) {
	p := a.Get(parent)
	c := a.Get(child)

	p.SubtreeFlags |= c.Flags | c.SubtreeFlags
	p.ChildLanes |= c.Lanes | c.ChildLanes
}

// AlternateSymmetric checks §8 property 1 for a single fiber: if F has an
// alternate G, G's alternate must be F. Exposed for tests; nothing else
// in the module calls it.
func AlternateSymmetric(a *Arena, id ID) bool {
	f := a.Get(id)
	if f.Alternate == NoID {
		return true
	}
	alt := a.Get(f.Alternate)
	return alt.Alternate == id
}
