package reconciler_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go.fiberkit.dev/reconciler/dispatch"
	"go.fiberkit.dev/reconciler/host/fake"
	"go.fiberkit.dev/reconciler/internal/log"
	"go.fiberkit.dev/reconciler/reconciler"
)

func newContainer(t *testing.T) (*reconciler.Container, *fake.Adapter, *fake.Instance) {
	t.Helper()
	c, _, adapter, root := newContainerWithScheduler(t)
	return c, adapter, root
}

func newContainerWithScheduler(t *testing.T) (*reconciler.Container, *fake.Scheduler, *fake.Adapter, *fake.Instance) {
	t.Helper()
	adapter := fake.NewAdapter()
	scheduler := fake.NewScheduler(time.Unix(0, 0))
	root := &fake.Instance{ElementType: "container"}
	c := reconciler.CreateContainer(root, reconciler.Options{
		Adapter:   adapter,
		Scheduler: scheduler,
		Logger:    log.NewNoop(),
	})
	return c, scheduler, adapter, root
}

func TestUpdateContainerMountsHostTree(t *testing.T) {
	c, _, root := newContainer(t)

	c.FlushSync(func() {
		c.UpdateContainer(dispatch.Element{
			Type:  "div",
			Props: map[string]any{"id": "a"},
			Children: []dispatch.Element{
				{Type: "span", Children: "hello"},
			},
		})
	})

	require.Len(t, root.Children, 1)
	div := root.Children[0]
	require.Equal(t, "div", div.ElementType)
	require.Len(t, div.Children, 1)
	require.True(t, div.Children[0].Children[0].IsText)
	require.Equal(t, "hello", div.Children[0].Children[0].Text)
}

func TestUpdateContainerReordersByKey(t *testing.T) {
	c, _, root := newContainer(t)

	render := func(order ...string) {
		var children []dispatch.Element
		for _, k := range order {
			children = append(children, dispatch.Element{Type: "li", Key: k, Props: map[string]any{"id": k}})
		}
		c.FlushSync(func() { c.UpdateContainer(dispatch.Element{Type: "ul", Children: children}) })
	}

	render("a", "b", "c")
	first := root.Children[0].Children
	require.Len(t, first, 3)

	render("c", "a", "b")
	reordered := root.Children[0].Children
	require.Len(t, reordered, 3)
	require.Equal(t, "c", reordered[0].Props["id"])
	require.Equal(t, "a", reordered[1].Props["id"])
	require.Equal(t, "b", reordered[2].Props["id"])
}

type greeter struct {
	mounted   bool
	unmounted bool
}

func (g *greeter) Render(props map[string]any, state any) dispatch.Element {
	name, _ := props["name"].(string)
	return dispatch.Element{Type: "span", Children: "hi " + name}
}

func (g *greeter) ComponentDidMount()    { g.mounted = true }
func (g *greeter) ComponentWillUnmount() { g.unmounted = true }

func TestClassComponentMountAndUnmount(t *testing.T) {
	c, _, root := newContainer(t)
	inst := &greeter{}

	element := dispatch.Element{
		Type:  &dispatch.ClassComponent{Name: "Greeter", New: func() dispatch.Instance { return inst }},
		Props: map[string]any{"name": "world"},
	}
	c.FlushSync(func() { c.UpdateContainer(element) })

	require.True(t, inst.mounted)
	require.Len(t, root.Children, 1)
	require.Equal(t, "span", root.Children[0].ElementType)

	c.FlushSync(func() { c.UpdateContainer(dispatch.Element{}) })

	require.True(t, inst.unmounted)
	require.Empty(t, root.Children)
}

type boundary struct {
	fallback bool
}

func (b *boundary) Render(props map[string]any, state any) dispatch.Element {
	if b.fallback {
		return dispatch.Element{Type: "div", Props: map[string]any{"id": "fallback"}}
	}
	return props["child"].(dispatch.Element)
}

func (b *boundary) DeriveErrorState(err error) any {
	b.fallback = true
	return nil
}

type thrower struct{}

func (thrower) Render(props map[string]any, state any) dispatch.Element {
	dispatch.Throw(errAssertion)
	return dispatch.Element{}
}

var errAssertion = &assertionError{"boom"}

type assertionError struct{ msg string }

func (e *assertionError) Error() string { return e.msg }

func TestErrorBoundaryCapturesThrow(t *testing.T) {
	c, _, root := newContainer(t)
	b := &boundary{}

	child := dispatch.Element{Type: &dispatch.ClassComponent{Name: "Thrower", New: func() dispatch.Instance { return thrower{} }}}
	element := dispatch.Element{
		Type:  &dispatch.ClassComponent{Name: "Boundary", New: func() dispatch.Instance { return b }},
		Props: map[string]any{"child": child},
	}

	c.FlushSync(func() { c.UpdateContainer(element) })

	require.Len(t, root.Children, 1)
	require.Equal(t, "div", root.Children[0].ElementType)
	require.Equal(t, "fallback", root.Children[0].Props["id"])
}

type fakeThenable struct {
	onFulfilled func()
}

func (f *fakeThenable) Then(onFulfilled, _ func()) { f.onFulfilled = onFulfilled }
func (f *fakeThenable) resolve()                   { f.onFulfilled() }

func TestSuspenseShowsFallbackThenRetryAfterResolve(t *testing.T) {
	c, scheduler, _, root := newContainerWithScheduler(t)

	thenable := &fakeThenable{}
	ready := false

	resource := &dispatch.FunctionComponent{
		Name: "Resource",
		Render: func(props map[string]any) dispatch.Element {
			if !ready {
				dispatch.Suspend(thenable)
			}
			return dispatch.Element{Type: "span", Children: "loaded"}
		},
	}

	element := dispatch.Element{
		Type: dispatch.Suspense,
		Props: map[string]any{
			"fallback": dispatch.Element{Type: "div", Props: map[string]any{"id": "spinner"}},
			"children": dispatch.Element{Type: resource},
		},
	}

	c.FlushSync(func() { c.UpdateContainer(element) })

	require.Len(t, root.Children, 1)
	require.Equal(t, "spinner", root.Children[0].Props["id"])

	ready = true
	thenable.resolve()

	scheduler.FlushMicrotasks()
	scheduler.RunDueCallbacks()

	require.Len(t, root.Children, 1)
	require.Equal(t, "span", root.Children[0].ElementType)
}

type effectful struct {
	events *[]string
}

func (e *effectful) Render(props map[string]any, state any) dispatch.Element {
	return dispatch.Element{Type: "div"}
}

func (e *effectful) Effects() []func() func() {
	events := e.events
	return []func() func(){
		func() func() {
			*events = append(*events, "setup")
			return func() { *events = append(*events, "cleanup") }
		},
	}
}

func TestSyncUpdatePreemptsInProgressConcurrentRender(t *testing.T) {
	c, scheduler, _, root := newContainerWithScheduler(t)

	renderCount := 0
	slow := &dispatch.FunctionComponent{
		Name: "Slow",
		Render: func(props map[string]any) dispatch.Element {
			renderCount++
			// Stand in for this component's render actually taking wall
			// time: advances the fake clock so the concurrent work loop's
			// next ShouldYield check (before the next unit of work) sees
			// the armed yield point and pauses mid-tree.
			scheduler.Advance(time.Millisecond)
			return dispatch.Element{Type: "span", Children: "slow"}
		},
	}

	low := dispatch.Element{
		Type: "div",
		Children: []dispatch.Element{
			{Type: slow},
			{Type: "span", Children: "second"},
		},
	}

	scheduler.YieldAfter(scheduler.Now().Add(time.Millisecond))
	c.StartTransition(func() { c.UpdateContainer(low) })
	scheduler.FlushMicrotasks()
	scheduler.RunDueCallbacks()

	// The concurrent render yielded partway through the tree: it reached
	// Slow but never got far enough to commit anything.
	require.Equal(t, 1, renderCount)
	require.Empty(t, root.Children)

	high := dispatch.Element{Type: "div", Props: map[string]any{"id": "urgent"}}
	c.FlushSync(func() { c.UpdateContainer(high) })

	// The Sync-lane update discards the abandoned work-in-progress tree
	// (workloop.PerformWorkOnRoot's prepareFreshStack branch) and commits
	// its own render instead of resuming or blending with the low-priority
	// one.
	require.Len(t, root.Children, 1)
	require.Equal(t, "urgent", root.Children[0].Props["id"])
}

func TestPassiveEffectRunsAfterCommitWithoutFurtherUpdates(t *testing.T) {
	c, scheduler, _, _ := newContainerWithScheduler(t)
	var events []string
	inst := &effectful{events: &events}

	c.FlushSync(func() {
		c.UpdateContainer(dispatch.Element{
			Type: &dispatch.ClassComponent{Name: "Effectful", New: func() dispatch.Instance { return inst }},
		})
	})

	// The setup effect is queued by the commit but not yet run: passive
	// effects flush from a scheduled callback, not synchronously in the
	// commit that queued them.
	require.Empty(t, events)

	scheduler.RunDueCallbacks()
	require.Equal(t, []string{"setup"}, events)

	c.Unmount()
	scheduler.FlushMicrotasks()
	scheduler.RunDueCallbacks()

	require.Equal(t, []string{"setup", "cleanup"}, events)
}
