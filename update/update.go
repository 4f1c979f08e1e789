// Package update implements the per-fiber update queue (component C3):
// a linked list of pending state mutations, a concurrent-producer-safe
// circular pending ring, and the rebase discipline that lets a render
// skip low-priority updates while still applying everything at the
// correct final lane once it renders (§4.3, §8 property 5).
//
// State is carried as `any` rather than a type parameter: a single tree
// mixes host-root state, class-component state, and other shapes, and
// forcing one type parameter through a heterogeneous tree fights Go's
// generics more than it helps. A state type that needs field-wise merge
// semantics for UpdateState implements Merger; everything else falls
// back to whole-value replacement, which is correct for atomic state
// shapes (the common case for host roots: state is just {element}).
//
// Grounded on chasm/task.go's TaskAttributes/PureTaskExecutor split
// (buffered, transactional mutation with commit-time callbacks) and
// chasm/context.go's MutableContext.AddTask ("all mutations are buffered
// and committed atomically when the transition function returns
// successfully"), generalized from CHASM's single-shot task buffer to a
// queue that must survive being partially applied across many renders.
package update

// Kind discriminates the four update varieties (§3 Update.tag).
type Kind int

const (
	UpdateState Kind = iota
	ReplaceState
	ForceUpdate
	CaptureUpdate
)

func (k Kind) String() string {
	switch k {
	case UpdateState:
		return "UpdateState"
	case ReplaceState:
		return "ReplaceState"
	case ForceUpdate:
		return "ForceUpdate"
	case CaptureUpdate:
		return "CaptureUpdate"
	default:
		return "UnknownKind"
	}
}

// Payload computes a partial (UpdateState) or full (ReplaceState) state
// value given the previous state and the fiber's next props. A literal
// value is wrapped with Value.
type Payload func(prevState, nextProps any) any

// Value returns a Payload that ignores prevState/nextProps and always
// yields v, for the common case of a literal (non-functional) update —
// e.g. update_container's {element} payload.
func Value(v any) Payload {
	return func(any, any) any { return v }
}

// Merger is implemented by state types with field-wise merge semantics
// for UpdateState (§9 "Shallow merge semantics"). Types that don't
// implement it are merged by whole-value replacement.
type Merger interface {
	Merge(partial any) any
}

// Update is a single pending state mutation (§3).
type Update struct {
	Lane     uint32 // lane.Set; kept primitive to avoid an import cycle
	Kind     Kind
	Payload  Payload
	Callback func()

	// Next links this update into whichever list currently owns it: the
	// circular Shared.Pending ring while unconsumed, or the linear base
	// list once spliced.
	Next *Update
}

// New allocates an Update, matching the common call shape
// update_container(element) -> UpdateState{payload: {element}}.
func New(laneSet uint32, kind Kind, payload Payload) *Update {
	return &Update{Lane: laneSet, Kind: kind, Payload: payload}
}

// Shared is the concurrent-producer-safe circular pending ring described
// in §3/§4.3. A single append (Enqueue) is the only mutation a producer
// running while the work loop is suspended may perform; Drain splices it
// onto the base list from the single mutator thread.
type Shared struct {
	Pending *Update // the ring's "most recently appended" node, or nil
}

// Enqueue appends u to the circular pending ring: new.next = head;
// tail.next = new; pending = new. This is the exact splice described in
// §4.3 and is safe to call concurrently with Drain only insofar as §5
// requires — a single producer, or a lock-free CAS in a port that adds
// real concurrent producers. This reference implementation assumes the
// single-producer discipline (the promise-resolution callback runs on
// the same mutator thread per §5) and therefore takes no lock.
func (s *Shared) Enqueue(u *Update) {
	if s.Pending == nil {
		u.Next = u
	} else {
		u.Next = s.Pending.Next
		s.Pending.Next = u
	}
	s.Pending = u
}

// Drain detaches the pending ring, returning its contents as a linear
// slice in FIFO insertion order and resetting Pending to nil. §8
// property 10 (enqueue/drain atomicity) is exercised directly against
// this method.
func (s *Shared) Drain() []*Update {
	if s.Pending == nil {
		return nil
	}
	head := s.Pending.Next
	tail := s.Pending
	s.Pending = nil

	var out []*Update
	for u := head; ; {
		next := u.Next
		u.Next = nil
		out = append(out, u)
		if u == tail {
			break
		}
		u = next
	}
	return out
}

// Queue is the per-fiber update queue (§3 UpdateQueue<S>).
type Queue struct {
	BaseState any

	FirstBaseUpdate *Update
	LastBaseUpdate  *Update

	Shared Shared

	Callbacks []func()

	// HasForceUpdate is set by a ForceUpdate application within the last
	// ProcessQueue call and consumed by the caller to bypass a bailout.
	HasForceUpdate bool

	// MemoizedLanes is the union of lanes ProcessQueue had to skip on its
	// last pass — wip.lanes in §4.3 step 3. Nothing reads it back: the
	// work loop learns of skipped lanes through ProcessQueue's onSkipped
	// hook instead.
	MemoizedLanes uint32

	// result holds ProcessQueue's computed new_state, mirrored out via
	// Result() so callers don't need a second return-value plumbing path
	// through the generic-free Queue type.
	result any
}

// Result returns the state ProcessQueue computed on its last call,
// corresponding to §4.3 step 3's wip.memoized_state.
func (q *Queue) Result() any { return q.result }

// NewQueue creates an empty queue seeded with baseState, mirroring
// initializeUpdateQueue on first mount.
func NewQueue(baseState any) *Queue {
	return &Queue{BaseState: baseState}
}

// Clone creates a shallow copy of q for a work-in-progress fiber, so the
// two buffers' base lists point at the same nodes (structural sharing,
// §4.3 step 1) until one of them appends further.
func Clone(q *Queue) *Queue {
	if q == nil {
		return nil
	}
	clone := *q
	clone.Callbacks = append([]func(){}, q.Callbacks...)
	clone.HasForceUpdate = false
	return &clone
}
