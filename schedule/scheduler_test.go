package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.fiberkit.dev/reconciler/fiber"
	"go.fiberkit.dev/reconciler/host/fake"
	"go.fiberkit.dev/reconciler/internal/log"
	"go.fiberkit.dev/reconciler/internal/metrics"
	"go.fiberkit.dev/reconciler/lane"
	"go.fiberkit.dev/reconciler/schedule"
)

// recordingWork is a WorkPerformer test double that just records which
// roots it was asked to render, at which lanes.
type recordingWork struct {
	renders []renderCall
}

type renderCall struct {
	root      *fiber.Root
	lanes     lane.Set
	forceSync bool
}

func (w *recordingWork) PerformWorkOnRoot(root *fiber.Root, lanes lane.Set, forceSync bool) {
	w.renders = append(w.renders, renderCall{root, lanes, forceSync})
	root.PendingLanes = lane.Remove(lane.Set(root.PendingLanes), lanes)
	root.CancelPendingCommit = nil
}

func (w *recordingWork) FlushPendingPassiveEffects(*fiber.Root) bool { return false }

func newTestRoot(t *testing.T) *fiber.Root {
	t.Helper()
	return fiber.NewRoot(&fake.Container{}, "root-under-test", fiber.NoMode)
}

func TestEnsureRootIsScheduledArmsMicrotaskOnce(t *testing.T) {
	sched := fake.NewScheduler(time.Unix(0, 0))
	reg := schedule.NewRegistry(sched, log.NewNoop(), metrics.NewNoop())
	work := &recordingWork{}
	reg.SetWorkPerformer(work)

	root := newTestRoot(t)
	root.PendingLanes = uint32(lane.DefaultLane)

	reg.EnsureRootIsScheduled(root)
	reg.EnsureRootIsScheduled(root) // second call before the microtask fires: no-op

	sched.FlushMicrotasks()
	sched.RunDueCallbacks()

	require.Len(t, work.renders, 1)
	assert.Equal(t, root, work.renders[0].root)
	assert.True(t, work.renders[0].lanes.Includes(lane.DefaultLane))
}

func TestSyncLaneFlushesInlineWithoutACallback(t *testing.T) {
	sched := fake.NewScheduler(time.Unix(0, 0))
	reg := schedule.NewRegistry(sched, log.NewNoop(), metrics.NewNoop())
	work := &recordingWork{}
	reg.SetWorkPerformer(work)

	root := newTestRoot(t)
	root.PendingLanes = uint32(lane.SyncLane)

	reg.EnsureRootIsScheduled(root)
	sched.FlushMicrotasks()

	require.Len(t, work.renders, 1)
	assert.True(t, work.renders[0].forceSync)
	assert.True(t, work.renders[0].lanes.Includes(lane.SyncLane))
}

func TestExpiredLaneForcesInlineFlush(t *testing.T) {
	sched := fake.NewScheduler(time.Unix(0, 0))
	reg := schedule.NewRegistry(sched, log.NewNoop(), metrics.NewNoop())
	work := &recordingWork{}
	reg.SetWorkPerformer(work)

	root := newTestRoot(t)
	root.PendingLanes = uint32(lane.DefaultLane)

	reg.EnsureRootIsScheduled(root)
	sched.FlushMicrotasks() // records the expiration deadline for DefaultLane

	sched.Advance(lane.Budget(lane.ClassDefault) + time.Second)
	reg.EnsureRootIsScheduled(root)
	sched.FlushMicrotasks()

	require.Len(t, work.renders, 1)
	assert.True(t, work.renders[0].forceSync)
}

func TestRootWithNoPendingWorkIsDroppedFromTheList(t *testing.T) {
	sched := fake.NewScheduler(time.Unix(0, 0))
	reg := schedule.NewRegistry(sched, log.NewNoop(), metrics.NewNoop())
	work := &recordingWork{}
	reg.SetWorkPerformer(work)

	root := newTestRoot(t)
	reg.EnsureRootIsScheduled(root) // PendingLanes is still zero
	sched.FlushMicrotasks()

	assert.Empty(t, work.renders)
}
