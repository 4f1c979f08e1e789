package update

import "go.fiberkit.dev/reconciler/lane"

// SkippedLaneHook is invoked once ProcessQueue determines the union of
// lanes it had to skip, so the caller (the work loop) can call
// mark_skipped_update_lanes and ensure the root re-renders them (§4.3
// step 3).
type SkippedLaneHook func(skipped uint32)

// ProcessQueue implements §4.3's process_update_queue: it splices the
// circular pending ring onto the base list, then walks the base list
// applying every update whose lane is visible at renderLanes, cloning
// skipped updates (and every update applied after the first skip) onto
// a fresh base list so they can be re-applied later without losing
// updates that already landed once (§8 property 5, idempotent rebase).
//
// alternateQueue, if non-nil, is the other buffer's queue; when its base
// list has diverged (a concurrent renderer already spliced further),
// its LastBaseUpdate is retargeted to the same tail node so both queues
// structurally share the linked list (§4.3 step 1).
func ProcessQueue(
	q *Queue,
	alternateQueue *Queue,
	nextProps any,
	instance any,
	renderLanes uint32,
	wipRootRenderLanes uint32,
	onCaptureUpdate func(),
	onCallback func(isHidden bool),
	onSkipped SkippedLaneHook,
) {
	q.HasForceUpdate = false

	splice(q, alternateQueue)

	newState := q.BaseState
	newBaseState := q.BaseState
	var newFirstBase, newLastBase *Update
	var newLanes uint32
	sawSkip := false

	appendBase := func(u *Update, keepLane bool) {
		clone := &Update{Kind: u.Kind, Payload: u.Payload, Callback: u.Callback}
		if keepLane {
			clone.Lane = u.Lane
		}
		if newFirstBase == nil {
			newFirstBase = clone
			newLastBase = clone
		} else {
			newLastBase.Next = clone
			newLastBase = clone
		}
	}

	for u := q.FirstBaseUpdate; u != nil; u = u.Next {
		updateLane := lane.Remove(lane.Set(u.Lane), lane.OffscreenLane)
		isHidden := updateLane != lane.Set(u.Lane)

		visible := lane.IsSubset(updateLane, lane.Set(renderLanes))
		if isHidden {
			visible = lane.IsSubset(updateLane, lane.Set(wipRootRenderLanes))
		}

		if !visible {
			appendBase(u, true)
			if !sawSkip {
				sawSkip = true
				newBaseState = newState
			}
			newLanes |= u.Lane
			continue
		}

		// An update that applies after we've already skipped one must
		// still be cloned into the base list (with its lane cleared) so
		// the eventual skipped-lane render replays it on top of the
		// preserved newBaseState (§4.3, "idempotent rebase").
		if sawSkip {
			appendBase(u, false)
		}

		newState = apply(u, newState, nextProps, instance, onCaptureUpdate, q)

		if u.Callback != nil {
			q.Callbacks = append(q.Callbacks, u.Callback)
			if onCallback != nil {
				onCallback(isHidden)
			}
		}
	}

	if newFirstBase == nil {
		newBaseState = newState
	}

	q.BaseState = newBaseState
	q.FirstBaseUpdate = newFirstBase
	q.LastBaseUpdate = newLastBase
	q.MemoizedLanes = newLanes
	if onSkipped != nil && newLanes != 0 {
		onSkipped(newLanes)
	}

	q.result = newState
}
