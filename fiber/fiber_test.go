package fiber_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"go.fiberkit.dev/reconciler/fiber"
)

func TestCreateWorkInProgressAllocatesOnFirstRender(t *testing.T) {
	a := fiber.NewArena()
	current := a.Alloc()
	cf := a.Get(current)
	cf.Tag = fiber.HostElement
	cf.Type = "div"
	cf.MemoizedProps = map[string]any{"id": "a"}

	wip := fiber.CreateWorkInProgress(a, current, map[string]any{"id": "b"})
	require.NotEqual(t, current, wip)
	require.True(t, fiber.AlternateSymmetric(a, current))
	require.True(t, fiber.AlternateSymmetric(a, wip))

	wf := a.Get(wip)
	require.Equal(t, fiber.HostElement, wf.Tag)
	require.Equal(t, "div", wf.Type)
	require.Equal(t, map[string]any{"id": "b"}, wf.PendingProps)
	// memoized_props/state/update_queue copy across per §4.2.
	require.Equal(t, cf.MemoizedProps, wf.MemoizedProps)
}

func TestCreateWorkInProgressReusesAlternate(t *testing.T) {
	a := fiber.NewArena()
	current := a.Alloc()
	a.Get(current).Tag = fiber.HostElement

	wip1 := fiber.CreateWorkInProgress(a, current, "props-1")
	// A static flag on the current fiber must carry over into the reused
	// work-in-progress fiber.
	a.Get(current).Flags = fiber.Ref

	wip2 := fiber.CreateWorkInProgress(a, current, "props-2")
	require.Equal(t, wip1, wip2, "second create_work_in_progress must reuse the alternate")
	require.Equal(t, fiber.Ref, a.Get(wip2).Flags.StaticMask())
}

func TestStaticMaskPersistsAcrossClone(t *testing.T) {
	a := fiber.NewArena()
	current := a.Alloc()
	c := a.Get(current)
	c.Flags = fiber.Ref | fiber.Placement // Placement is not static.

	wip := fiber.CreateWorkInProgress(a, current, nil)
	w := a.Get(wip)
	require.Equal(t, fiber.Ref, w.Flags, "only the static subset should carry over")
}

func TestDependenciesAreClonedNotShared(t *testing.T) {
	a := fiber.NewArena()
	current := a.Alloc()
	c := a.Get(current)
	c.Dependencies = &fiber.Dependencies{
		FirstContext: &fiber.ContextDependency{Context: "theme"},
	}

	wip := fiber.CreateWorkInProgress(a, current, nil)
	w := a.Get(wip)
	require.NotSame(t, c.Dependencies, w.Dependencies)
	w.Dependencies.FirstContext.Context = "locale"
	require.Equal(t, "theme", c.Dependencies.FirstContext.Context)
}

func TestArenaFreeListReusesSlots(t *testing.T) {
	a := fiber.NewArena()
	id1 := a.Alloc()
	require.Equal(t, 1, a.Live())
	a.Free(id1)
	require.Equal(t, 0, a.Live())
	id2 := a.Alloc()
	require.Equal(t, id1, id2)
	require.Equal(t, 1, a.Live())
}

func TestBubbleEffectsUnionsFlagsAndLanes(t *testing.T) {
	a := fiber.NewArena()
	parent := a.Alloc()
	child := a.Alloc()

	a.Get(child).Flags = fiber.Update
	a.Get(child).SubtreeFlags = fiber.Ref
	a.Get(child).Lanes = 1
	a.Get(child).ChildLanes = 2

	fiber.BubbleEffects(a, parent, child)

	p := a.Get(parent)
	require.True(t, p.SubtreeFlags.Has(fiber.Update))
	require.True(t, p.SubtreeFlags.Has(fiber.Ref))
	require.Equal(t, uint32(3), p.ChildLanes)
}
