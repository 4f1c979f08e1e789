package lane_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go.fiberkit.dev/reconciler/lane"
)

func TestMergeRemoveIntersect(t *testing.T) {
	a := lane.SyncLane | lane.DefaultLane
	b := lane.DefaultLane | lane.IdleLane

	require.Equal(t, lane.SyncLane|lane.DefaultLane|lane.IdleLane, lane.Merge(a, b))
	require.Equal(t, lane.SyncLane, lane.Remove(a, b))
	require.Equal(t, lane.DefaultLane, lane.Intersect(a, b))
	require.True(t, lane.IsSubset(lane.SyncLane, a))
	require.False(t, lane.IsSubset(a, lane.SyncLane))
}

func TestHighestIsolatesLowestBit(t *testing.T) {
	require.Equal(t, lane.SyncLane, lane.Highest(lane.SyncLane|lane.DefaultLane|lane.IdleLane))
	require.Equal(t, lane.NoLane, lane.Highest(lane.NoLanes))
}

func TestExpirationLiveness(t *testing.T) {
	var exp lane.ExpirationTimes
	now := time.Unix(0, 0)

	exp.Record(lane.TransitionLane1, now)
	require.True(t, exp.Expired(lane.TransitionLane1, now).IsEmpty())

	budget := lane.Budget(lane.ClassOf(lane.TransitionLane1))
	after := now.Add(budget)
	expired := exp.Expired(lane.TransitionLane1, after)
	require.Equal(t, lane.TransitionLane1, expired)
}

func TestIdleNeverExpires(t *testing.T) {
	var exp lane.ExpirationTimes
	now := time.Now()
	exp.Record(lane.IdleLane, now)
	require.True(t, exp.Expired(lane.IdleLane, now.Add(365*24*time.Hour)).IsEmpty())
}

func TestEntanglementPullsInPartner(t *testing.T) {
	var ent lane.Entanglements
	ent.Entangle(lane.TransitionLane1, lane.TransitionLane2)

	resolved := ent.Resolve(lane.TransitionLane1)
	require.True(t, lane.Includes(resolved, lane.TransitionLane2))
}

func TestGetNextLanesPrefersExpiredOverEverythingElse(t *testing.T) {
	snap := lane.Snapshot{
		Pending: lane.SyncLane | lane.TransitionLane1,
		Expired: lane.TransitionLane1,
	}
	next := lane.GetNextLanes(snap, lane.NoLanes, false)
	require.True(t, lane.Includes(next, lane.TransitionLane1))
}

func TestGetNextLanesExcludesSuspendedUnlessPinged(t *testing.T) {
	snap := lane.Snapshot{
		Pending:   lane.DefaultLane | lane.TransitionLane1,
		Suspended: lane.TransitionLane1,
	}
	next := lane.GetNextLanes(snap, lane.NoLanes, false)
	require.Equal(t, lane.DefaultLane, next)

	// Once pinged, the suspended lane is eligible again: with nothing more
	// urgent pending, it is the lane selected.
	snap.Pending = lane.TransitionLane1
	snap.Pinged = lane.TransitionLane1
	next = lane.GetNextLanes(snap, lane.NoLanes, false)
	require.Equal(t, lane.TransitionLane1, next)
}

func TestGetNextLanesNoWorkWhenCommitPending(t *testing.T) {
	snap := lane.Snapshot{Pending: lane.SyncLane}
	require.Equal(t, lane.NoLanes, lane.GetNextLanes(snap, lane.NoLanes, true))
}

// TestGetNextLanesContinuesWipEvenWhenEveryPendingLaneHasExpired covers the
// case where every pending lane has already expired (taking the rule-1
// shortcut) while a WIP render already covers that same lane set: rule 4
// still applies here, so the in-progress render must be continued rather
// than reported as a fresh selection the work loop would discard and
// restart.
func TestGetNextLanesContinuesWipEvenWhenEveryPendingLaneHasExpired(t *testing.T) {
	snap := lane.Snapshot{
		Pending: lane.TransitionLane1,
		Expired: lane.TransitionLane1,
	}
	wipRenderLanes := lane.TransitionLane1 | lane.TransitionLane2

	next := lane.GetNextLanes(snap, wipRenderLanes, false)
	require.Equal(t, wipRenderLanes, next, "the expired-only shortcut must still defer to the wider in-progress WIP selection")
}
