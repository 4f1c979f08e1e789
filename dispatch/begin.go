package dispatch

import (
	"reflect"

	"go.temporal.io/api/serviceerror"

	"go.fiberkit.dev/reconciler/fiber"
	"go.fiberkit.dev/reconciler/lane"
	"go.fiberkit.dev/reconciler/update"
)

// beginContext carries the state a begin handler needs beyond its own
// fiber ids, threaded explicitly rather than through package globals
// (§9 "package global mutable state ... passed explicitly").
type beginContext struct {
	rootRenderLanes uint32
	onSkipped       update.SkippedLaneHook
}

type beginHandler func(a *fiber.Arena, current, wip fiber.ID, renderLanes uint32, ctx *beginContext) fiber.ID

var beginHandlers map[fiber.Tag]beginHandler

func init() {
	beginHandlers = map[fiber.Tag]beginHandler{
		fiber.HostRoot:            beginHostRoot,
		fiber.FunctionLike:        beginFunctionLike,
		fiber.ClassLike:           beginClassLike,
		fiber.HostElement:         beginHostElement,
		fiber.HostText:            beginHostText,
		fiber.Fragment:            beginFragment,
		fiber.ModeTag:             beginMode,
		fiber.Profiler:            beginProfiler,
		fiber.ContextProvider:     beginContextProvider,
		fiber.ContextConsumer:     beginContextConsumer,
		fiber.ForwardRef:          beginForwardRef,
		fiber.MemoComponent:       beginMemo,
		fiber.SimpleMemoComponent: beginMemo,
		fiber.SuspenseBoundary:    beginSuspense,
		fiber.OffscreenSubtree:    beginOffscreen,
		fiber.Portal:              beginPortal,
		fiber.LazyComponent:       beginLazy,
		fiber.Throw:               beginThrow,
	}
}

// BeginWork implements §4.6's begin_work: attempt an early bailout, then
// dispatch to the tag-specific handler. Returns the first child to
// descend into, or fiber.NoID for a leaf.
func BeginWork(root *fiber.Root, current, wip fiber.ID, renderLanes uint32, rootRenderLanes uint32, onSkipped update.SkippedLaneHook) fiber.ID {
	a := root.Arena
	wipFiber := a.Get(wip)

	if current != fiber.NoID {
		cf := a.Get(current)
		hasUpdate := lane.Set(wipFiber.Lanes).Includes(lane.Set(renderLanes))
		if identicalProps(cf.MemoizedProps, wipFiber.PendingProps) && !hasUpdate && !hasInvalidatedContext(wipFiber) && !wipFiber.Flags.Has(fiber.DidCapture) {
			return bailout(a, current, wip)
		}
	}

	wipFiber.Lanes = 0

	handler, ok := beginHandlers[wipFiber.Tag]
	if !ok {
		panic(serviceerror.NewInternalf("dispatch: unknown fiber tag %v", wipFiber.Tag))
	}
	ctx := &beginContext{rootRenderLanes: rootRenderLanes, onSkipped: onSkipped}
	return handler(a, current, wip, renderLanes, ctx)
}

// hasInvalidatedContext is a conservative approximation of §4.2's
// dependency invalidation: a fiber that has ever read any context is
// never eligible for early bailout, since this implementation does not
// track per-context observed values across renders. A fiber that reads
// no context can still bail out on unchanged props and no scheduled
// update.
func hasInvalidatedContext(f *fiber.Fiber) bool {
	return f.Dependencies != nil && f.Dependencies.FirstContext != nil
}

// bailout implements attempt_early_bailout_if_no_scheduled_update:
// clone the child chain without re-invoking user code.
func bailout(a *fiber.Arena, current, wip fiber.ID) fiber.ID {
	wipFiber := a.Get(wip)
	if lane.Set(wipFiber.ChildLanes).IsEmpty() {
		return fiber.NoID
	}
	cloneChildFibers(a, current, wip)
	return wipFiber.FirstChild
}

func cloneChildFibers(a *fiber.Arena, current, wip fiber.ID) {
	currentChild := currentFirstChild(a, current)
	if currentChild == fiber.NoID {
		return
	}
	firstNew := fiber.CreateWorkInProgress(a, currentChild, a.Get(currentChild).PendingProps)
	a.Get(firstNew).Parent = wip
	prevNew := firstNew
	for c := a.Get(currentChild).NextSibling; c != fiber.NoID; c = a.Get(c).NextSibling {
		n := fiber.CreateWorkInProgress(a, c, a.Get(c).PendingProps)
		a.Get(n).Parent = wip
		a.Get(prevNew).NextSibling = n
		prevNew = n
	}
	a.Get(prevNew).NextSibling = fiber.NoID
	a.Get(wip).FirstChild = firstNew
}

func currentFirstChild(a *fiber.Arena, current fiber.ID) fiber.ID {
	if current == fiber.NoID {
		return fiber.NoID
	}
	return a.Get(current).FirstChild
}

// identicalProps reports old_props === new_props (§4.6): reference
// equality for the map that carries them, exact match for the bare
// string a text fiber carries, and never-equal for anything else this
// package can't safely compare with ==.
func identicalProps(a, b any) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if am, ok := a.(map[string]any); ok {
		bm, ok2 := b.(map[string]any)
		return ok2 && reflect.ValueOf(am).Pointer() == reflect.ValueOf(bm).Pointer()
	}
	if as, ok := a.(string); ok {
		bs, ok2 := b.(string)
		return ok2 && as == bs
	}
	return false
}

func propsMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func beginHostRoot(a *fiber.Arena, current, wip fiber.ID, renderLanes uint32, ctx *beginContext) fiber.ID {
	wipFiber := a.Get(wip)
	q, _ := wipFiber.UpdateQueue.(*update.Queue)
	if q == nil {
		return fiber.NoID
	}
	var altQueue *update.Queue
	if current != fiber.NoID {
		altQueue, _ = a.Get(current).UpdateQueue.(*update.Queue)
	}
	update.ProcessQueue(q, altQueue, wipFiber.PendingProps, wipFiber.StateNode, renderLanes, ctx.rootRenderLanes,
		func() { wipFiber.Flags |= fiber.DidCapture },
		func(isHidden bool) {
			wipFiber.Flags |= fiber.Callback
			if isHidden {
				wipFiber.Flags |= fiber.Visibility
			}
		},
		ctx.onSkipped)

	state, _ := q.Result().(RootState)
	wipFiber.MemoizedState = state
	reconcileChildren(a, wip, currentFirstChild(a, current), state.Element)
	return wipFiber.FirstChild
}

func beginFunctionLike(a *fiber.Arena, current, wip fiber.ID, _ uint32, _ *beginContext) fiber.ID {
	wipFiber := a.Get(wip)
	fc := wipFiber.Type.(*FunctionComponent)
	child := fc.Render(propsMap(wipFiber.PendingProps))
	wipFiber.MemoizedProps = wipFiber.PendingProps
	reconcileChildren(a, wip, currentFirstChild(a, current), child)
	return wipFiber.FirstChild
}

func beginClassLike(a *fiber.Arena, current, wip fiber.ID, renderLanes uint32, ctx *beginContext) fiber.ID {
	wipFiber := a.Get(wip)
	cc := wipFiber.Type.(*ClassComponent)

	if wipFiber.StateNode == nil {
		wipFiber.StateNode = cc.New()
		wipFiber.UpdateQueue = update.NewQueue(nil)
		// The layout pass only visits fibers carrying a layout flag;
		// Update gives a new Mounter one so ComponentDidMount runs.
		if _, ok := wipFiber.StateNode.(Mounter); ok {
			wipFiber.Flags |= fiber.Update
		}
	}
	inst := wipFiber.StateNode.(Instance)
	q, _ := wipFiber.UpdateQueue.(*update.Queue)

	var altQueue *update.Queue
	if current != fiber.NoID {
		altQueue, _ = a.Get(current).UpdateQueue.(*update.Queue)
	}
	props := propsMap(wipFiber.PendingProps)
	update.ProcessQueue(q, altQueue, props, inst, renderLanes, ctx.rootRenderLanes,
		func() { wipFiber.Flags |= fiber.DidCapture },
		func(isHidden bool) {
			wipFiber.Flags |= fiber.Callback
			if isHidden {
				wipFiber.Flags |= fiber.Visibility
			}
		},
		ctx.onSkipped)

	wipFiber.MemoizedState = q.Result()
	child := inst.Render(props, q.Result())
	wipFiber.MemoizedProps = wipFiber.PendingProps
	registerEffects(wipFiber, inst)
	reconcileChildren(a, wip, currentFirstChild(a, current), child)
	return wipFiber.FirstChild
}

func beginHostElement(a *fiber.Arena, current, wip fiber.ID, _ uint32, _ *beginContext) fiber.ID {
	wipFiber := a.Get(wip)
	props := propsMap(wipFiber.PendingProps)
	wipFiber.MemoizedProps = wipFiber.PendingProps
	var children any
	if props != nil {
		children = props["children"]
	}
	reconcileChildren(a, wip, currentFirstChild(a, current), children)
	return wipFiber.FirstChild
}

func beginHostText(a *fiber.Arena, _, wip fiber.ID, _ uint32, _ *beginContext) fiber.ID {
	a.Get(wip).MemoizedProps = a.Get(wip).PendingProps
	return fiber.NoID
}

func beginFragment(a *fiber.Arena, current, wip fiber.ID, _ uint32, _ *beginContext) fiber.ID {
	return beginHostElement(a, current, wip, 0, nil)
}

func beginMode(a *fiber.Arena, current, wip fiber.ID, _ uint32, _ *beginContext) fiber.ID {
	wipFiber := a.Get(wip)
	props := propsMap(wipFiber.PendingProps)
	if b, _ := props["concurrent"].(bool); b {
		wipFiber.Mode |= fiber.ConcurrentMode
	}
	if b, _ := props["strict"].(bool); b {
		wipFiber.Mode |= fiber.StrictMode
	}
	wipFiber.MemoizedProps = wipFiber.PendingProps
	var children any
	if props != nil {
		children = props["children"]
	}
	reconcileChildren(a, wip, currentFirstChild(a, current), children)
	return wipFiber.FirstChild
}

// beginProfiler passes through unchanged; profiler timers are out of
// scope for this reconciler (§1 non-goals).
func beginProfiler(a *fiber.Arena, current, wip fiber.ID, _ uint32, _ *beginContext) fiber.ID {
	return beginHostElement(a, current, wip, 0, nil)
}

func beginContextProvider(a *fiber.Arena, current, wip fiber.ID, _ uint32, _ *beginContext) fiber.ID {
	wipFiber := a.Get(wip)
	pt := wipFiber.ElementType.(*ProviderType)
	props := propsMap(wipFiber.PendingProps)
	pt.Context.push(props["value"])
	wipFiber.MemoizedProps = wipFiber.PendingProps
	reconcileChildren(a, wip, currentFirstChild(a, current), props["children"])
	return wipFiber.FirstChild
}

func beginContextConsumer(a *fiber.Arena, current, wip fiber.ID, _ uint32, _ *beginContext) fiber.ID {
	wipFiber := a.Get(wip)
	cc := wipFiber.ElementType.(*ConsumerType)
	recordDependency(a, wip, cc.Context)
	props := propsMap(wipFiber.PendingProps)
	render, _ := props["render"].(func(any) Element)
	var child any
	if render != nil {
		child = render(cc.Context.Read())
	}
	wipFiber.MemoizedProps = wipFiber.PendingProps
	reconcileChildren(a, wip, currentFirstChild(a, current), child)
	return wipFiber.FirstChild
}

func beginForwardRef(a *fiber.Arena, current, wip fiber.ID, _ uint32, _ *beginContext) fiber.ID {
	wipFiber := a.Get(wip)
	fr := wipFiber.Type.(*ForwardRefComponent)
	child := fr.Render(propsMap(wipFiber.PendingProps), wipFiber.Ref)
	wipFiber.MemoizedProps = wipFiber.PendingProps
	reconcileChildren(a, wip, currentFirstChild(a, current), child)
	return wipFiber.FirstChild
}

func beginMemo(a *fiber.Arena, current, wip fiber.ID, renderLanes uint32, ctx *beginContext) fiber.ID {
	wipFiber := a.Get(wip)
	memo := wipFiber.ElementType.(*MemoType)

	if current != fiber.NoID {
		cf := a.Get(current)
		hasUpdate := lane.Set(wipFiber.Lanes).Includes(lane.Set(renderLanes))
		eq := memo.Equal
		if eq == nil {
			eq = shallowEqualProps
		}
		if !hasUpdate && eq(propsMap(cf.MemoizedProps), propsMap(wipFiber.PendingProps)) && !wipFiber.Flags.Has(fiber.DidCapture) {
			return bailout(a, current, wip)
		}
	}

	innerTag := tagOf(memo.Inner)
	handler := beginHandlers[innerTag]
	return handler(a, current, wip, renderLanes, ctx)
}

func shallowEqualProps(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		bv, ok := b[k]
		if !ok || !valuesEqual(v, bv) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b any) (eq bool) {
	defer func() { recover() }()
	return a == b
}

func beginSuspense(a *fiber.Arena, current, wip fiber.ID, _ uint32, _ *beginContext) fiber.ID {
	wipFiber := a.Get(wip)
	props := propsMap(wipFiber.PendingProps)
	showFallback := wipFiber.Flags.Has(fiber.DidCapture)

	var children any
	if showFallback {
		children = props["fallback"]
	} else {
		children = props["children"]
	}
	reconcileChildren(a, wip, currentFirstChild(a, current), children)
	wipFiber.MemoizedProps = wipFiber.PendingProps
	wipFiber.MemoizedState = showFallback
	return wipFiber.FirstChild
}

func beginOffscreen(a *fiber.Arena, current, wip fiber.ID, _ uint32, _ *beginContext) fiber.ID {
	wipFiber := a.Get(wip)
	props := propsMap(wipFiber.PendingProps)
	if hidden, _ := props["hidden"].(bool); hidden {
		wipFiber.Flags |= fiber.Visibility
	}
	wipFiber.MemoizedProps = wipFiber.PendingProps
	reconcileChildren(a, wip, currentFirstChild(a, current), props["children"])
	return wipFiber.FirstChild
}

func beginPortal(a *fiber.Arena, current, wip fiber.ID, _ uint32, _ *beginContext) fiber.ID {
	wipFiber := a.Get(wip)
	portal := wipFiber.ElementType.(*Portal)
	wipFiber.StateNode = portal.ContainerInfo
	props := propsMap(wipFiber.PendingProps)
	wipFiber.MemoizedProps = wipFiber.PendingProps
	reconcileChildren(a, wip, currentFirstChild(a, current), props["children"])
	return wipFiber.FirstChild
}

func beginLazy(a *fiber.Arena, current, wip fiber.ID, renderLanes uint32, ctx *beginContext) fiber.ID {
	wipFiber := a.Get(wip)
	lz := wipFiber.ElementType.(*LazyType)
	inner, err := lz.Resolve()
	if err != nil {
		Throw(err)
	}
	wipFiber.Type = inner
	wipFiber.Tag = tagOf(inner)
	handler := beginHandlers[wipFiber.Tag]
	return handler(a, current, wip, renderLanes, ctx)
}

func beginThrow(a *fiber.Arena, _, wip fiber.ID, _ uint32, _ *beginContext) fiber.ID {
	err, _ := a.Get(wip).PendingProps.(error)
	Throw(err)
	return fiber.NoID
}
