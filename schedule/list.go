// Package schedule implements the root scheduler (component C4): the
// process-wide intrusive list of roots with pending work, microtask
// coalescing, and the priority-class-to-scheduler-priority mapping that
// decides when and at what level each root's next render runs (§4.4).
//
// Grounded on chasm/engine.go's Engine interface, generalized from
// per-call TransitionOptions (CHASM schedules one transaction at a time,
// synchronously from the caller's point of view) to a background,
// debounced, priority-aware scheduling loop — the piece CHASM leaves to
// its host service's own task queue that this reconciler must own itself
// per §1 ("no external collaborators" for the work loop/scheduler pair).
package schedule

import "go.fiberkit.dev/reconciler/fiber"

// List is the process-wide intrusive list of roots with pending work
// (§4.4's first_scheduled_root/last_scheduled_root). fiber.Root.Next is
// the link field.
type List struct {
	first *fiber.Root
	last  *fiber.Root
}

// Contains reports whether root is currently linked into the list.
func (l *List) Contains(root *fiber.Root) bool {
	for r := l.first; r != nil; r = r.Next {
		if r == root {
			return true
		}
	}
	return false
}

// Append adds root to the tail of the list if it isn't already present.
func (l *List) Append(root *fiber.Root) {
	if l.Contains(root) {
		return
	}
	if l.last == nil {
		l.first = root
		l.last = root
		return
	}
	l.last.Next = root
	l.last = root
}

// Remove unlinks root from the list.
func (l *List) Remove(root *fiber.Root) {
	if l.first == nil {
		return
	}
	if l.first == root {
		l.first = root.Next
		if l.last == root {
			l.last = nil
		}
		root.Next = nil
		return
	}
	prev := l.first
	for prev != nil && prev.Next != root {
		prev = prev.Next
	}
	if prev == nil {
		return
	}
	prev.Next = root.Next
	if l.last == root {
		l.last = prev
	}
	root.Next = nil
}

// Each calls fn for every root currently in the list, snapshotting the
// list first so fn may safely Remove/Append during iteration.
func (l *List) Each(fn func(*fiber.Root)) {
	var snapshot []*fiber.Root
	for r := l.first; r != nil; r = r.Next {
		snapshot = append(snapshot, r)
	}
	for _, r := range snapshot {
		fn(r)
	}
}

// Empty reports whether the list currently has no roots.
func (l *List) Empty() bool { return l.first == nil }
