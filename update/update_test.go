package update_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.fiberkit.dev/reconciler/lane"
	"go.fiberkit.dev/reconciler/update"
)

func TestSharedEnqueueDrainFIFO(t *testing.T) {
	var shared update.Shared
	a := &update.Update{Kind: update.UpdateState}
	b := &update.Update{Kind: update.UpdateState}
	c := &update.Update{Kind: update.UpdateState}

	shared.Enqueue(a)
	shared.Enqueue(b)
	shared.Enqueue(c)

	drained := shared.Drain()
	require.Equal(t, []*update.Update{a, b, c}, drained)

	// Draining an already-empty ring is a no-op, not a panic.
	assert.Nil(t, shared.Drain())
}

func TestSharedEnqueueDrainInterleaved(t *testing.T) {
	var shared update.Shared
	shared.Enqueue(&update.Update{Kind: update.UpdateState})
	first := shared.Drain()
	require.Len(t, first, 1)

	shared.Enqueue(&update.Update{Kind: update.ReplaceState})
	shared.Enqueue(&update.Update{Kind: update.ForceUpdate})
	second := shared.Drain()
	require.Len(t, second, 2)
	assert.Equal(t, update.ReplaceState, second[0].Kind)
	assert.Equal(t, update.ForceUpdate, second[1].Kind)
}

type stringState string

func (s stringState) Merge(partial any) any {
	if p, ok := partial.(stringState); ok {
		return s + p
	}
	return partial
}

func TestProcessQueueAppliesUpdateStateWithMerge(t *testing.T) {
	q := update.NewQueue(stringState("a"))
	q.Shared.Enqueue(update.New(uint32(lane.DefaultLane), update.UpdateState, update.Value(stringState("b"))))

	update.ProcessQueue(q, nil, nil, nil, uint32(lane.DefaultLane), uint32(lane.DefaultLane), nil, nil, nil)

	assert.Equal(t, stringState("ab"), q.Result())
	assert.Equal(t, stringState("ab"), q.BaseState)
	assert.Nil(t, q.FirstBaseUpdate)
}

func TestProcessQueueReplaceStateIgnoresPrev(t *testing.T) {
	q := update.NewQueue(stringState("a"))
	q.Shared.Enqueue(update.New(uint32(lane.DefaultLane), update.ReplaceState, update.Value(stringState("z"))))

	update.ProcessQueue(q, nil, nil, nil, uint32(lane.DefaultLane), uint32(lane.DefaultLane), nil, nil, nil)

	assert.Equal(t, stringState("z"), q.Result())
}

func TestProcessQueueSkipsLowerPriorityAndPreservesForLater(t *testing.T) {
	q := update.NewQueue(stringState("base"))
	// A TransitionLane update is enqueued but this pass only renders at
	// DefaultLane, so it must be skipped and carried forward rather than
	// dropped.
	q.Shared.Enqueue(update.New(uint32(lane.TransitionLane1), update.UpdateState, update.Value(stringState("-t"))))

	var skipped uint32
	update.ProcessQueue(q, nil, nil, nil, uint32(lane.DefaultLane), uint32(lane.DefaultLane), nil, nil, func(s uint32) { skipped = s })

	assert.Equal(t, stringState("base"), q.Result())
	assert.Equal(t, uint32(lane.TransitionLane1), skipped)
	require.NotNil(t, q.FirstBaseUpdate)

	// Re-rendering at a lane set that includes TransitionLane1 now applies
	// the carried-forward update on top of the preserved base state.
	update.ProcessQueue(q, nil, nil, nil, uint32(lane.TransitionLane1), uint32(lane.TransitionLane1), nil, nil, nil)
	assert.Equal(t, stringState("base-t"), q.Result())
}

func TestProcessQueueAppliesUpdateAfterSkipOnTopOfPreservedBase(t *testing.T) {
	q := update.NewQueue(stringState("base"))
	q.Shared.Enqueue(update.New(uint32(lane.TransitionLane1), update.UpdateState, update.Value(stringState("-skip"))))
	q.Shared.Enqueue(update.New(uint32(lane.DefaultLane), update.UpdateState, update.Value(stringState("-applied"))))

	update.ProcessQueue(q, nil, nil, nil, uint32(lane.DefaultLane), uint32(lane.DefaultLane), nil, nil, nil)

	// The DefaultLane update applies now; the TransitionLane1 one is
	// skipped and its clone survives on the base list for a later render.
	assert.Equal(t, stringState("base-applied"), q.Result())
	require.NotNil(t, q.FirstBaseUpdate)
}

func TestProcessQueueForceUpdateSetsFlag(t *testing.T) {
	q := update.NewQueue(stringState("a"))
	q.Shared.Enqueue(update.New(uint32(lane.DefaultLane), update.ForceUpdate, nil))

	update.ProcessQueue(q, nil, nil, nil, uint32(lane.DefaultLane), uint32(lane.DefaultLane), nil, nil, nil)

	assert.True(t, q.HasForceUpdate)
	assert.Equal(t, stringState("a"), q.Result())
}

func TestProcessQueueCaptureUpdateInvokesCallback(t *testing.T) {
	q := update.NewQueue(stringState("a"))
	q.Shared.Enqueue(update.New(uint32(lane.DefaultLane), update.CaptureUpdate, update.Value(stringState("fallback"))))

	var captured bool
	update.ProcessQueue(q, nil, nil, nil, uint32(lane.DefaultLane), uint32(lane.DefaultLane), func() { captured = true }, nil, nil)

	assert.True(t, captured)
	assert.Equal(t, stringState("afallback"), q.Result())
}

func TestCloneSharesBaseListStructurally(t *testing.T) {
	q := update.NewQueue(stringState("a"))
	q.Shared.Enqueue(update.New(uint32(lane.DefaultLane), update.UpdateState, update.Value(stringState("x"))))
	update.ProcessQueue(q, nil, nil, nil, uint32(lane.TransitionLane1), uint32(lane.TransitionLane1), nil, nil, nil)
	require.NotNil(t, q.FirstBaseUpdate, "DefaultLane update should be skipped and preserved when rendering at TransitionLane1")

	clone := update.Clone(q)
	assert.Equal(t, q.FirstBaseUpdate, clone.FirstBaseUpdate)
	assert.Equal(t, q.BaseState, clone.BaseState)
	assert.False(t, clone.HasForceUpdate)
}
