package update

// splice moves q's circular Shared.Pending ring onto the tail of its
// linear base list (§4.3 step 1). If alternateQueue's base list has
// already diverged (its LastBaseUpdate isn't q's), its tail is
// retargeted to the same node so the two queues structurally share the
// spliced updates, exactly as the spec requires.
func splice(q *Queue, alternateQueue *Queue) {
	pending := q.Shared.Drain()
	if len(pending) == 0 {
		return
	}

	first := pending[0]
	last := pending[len(pending)-1]

	if q.LastBaseUpdate == nil {
		q.FirstBaseUpdate = first
	} else {
		q.LastBaseUpdate.Next = first
	}
	for i := 0; i < len(pending)-1; i++ {
		pending[i].Next = pending[i+1]
	}
	q.LastBaseUpdate = last

	if alternateQueue != nil && alternateQueue != q {
		if alternateQueue.LastBaseUpdate == q.LastBaseUpdate {
			return
		}
		if alternateQueue.LastBaseUpdate == nil {
			alternateQueue.FirstBaseUpdate = first
		} else {
			alternateQueue.LastBaseUpdate.Next = first
		}
		alternateQueue.LastBaseUpdate = last
	}
}

// apply performs the state transition for one update kind (§4.3 step 2).
func apply(u *Update, prevState, nextProps, instance any, onCaptureUpdate func(), q *Queue) any {
	switch u.Kind {
	case UpdateState:
		if u.Payload == nil {
			return prevState
		}
		partial := u.Payload(prevState, nextProps)
		if partial == nil {
			return prevState
		}
		return mergeState(prevState, partial)

	case ReplaceState:
		if u.Payload == nil {
			return prevState
		}
		return u.Payload(prevState, nextProps)

	case CaptureUpdate:
		if onCaptureUpdate != nil {
			onCaptureUpdate()
		}
		if u.Payload == nil {
			return prevState
		}
		partial := u.Payload(prevState, nextProps)
		if partial == nil {
			return prevState
		}
		return mergeState(prevState, partial)

	case ForceUpdate:
		q.HasForceUpdate = true
		return prevState

	default:
		return prevState
	}
}

// mergeState implements §9's shallow-merge semantics: a Merger-typed
// state gets field-wise union; anything else is replaced wholesale,
// which is the correct behavior for atomic state shapes (host root
// state is just {element}).
func mergeState(prev, partial any) any {
	if m, ok := prev.(Merger); ok {
		return m.Merge(partial)
	}
	return partial
}
