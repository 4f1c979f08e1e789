package dispatch

import (
	"go.temporal.io/api/serviceerror"

	"go.fiberkit.dev/reconciler/fiber"
	"go.fiberkit.dev/reconciler/host"
)

// CompleteContext carries the host adapter and ambient container/host
// context complete_work needs. A single ambient HostContext is used for
// every fiber rather than a per-node push/pop stack (GetChildHostContext
// is called for each newly created host element, always with this
// ambient context as the parent, and its result is used only for that
// element's CreateInstance) —
// documented simplification; per-fiber host context personalization
// (e.g. varying text-editing rules by parent tag) is not exercised by
// anything in scope here.
type CompleteContext struct {
	Adapter       host.Adapter
	ContainerInfo any
	HostContext   any
}

type completeHandler func(a *fiber.Arena, cc *CompleteContext, current, wip fiber.ID) (fiber.ID, error)

var completeHandlers = map[fiber.Tag]completeHandler{
	fiber.HostRoot:            completeNoop,
	fiber.FunctionLike:        completeNoop,
	fiber.ClassLike:           completeNoop,
	fiber.HostElement:         completeHostElement,
	fiber.HostText:            completeHostText,
	fiber.Fragment:            completeNoop,
	fiber.ModeTag:             completeNoop,
	fiber.Profiler:            completeNoop,
	fiber.ContextProvider:     completeContextProvider,
	fiber.ContextConsumer:     completeNoop,
	fiber.ForwardRef:          completeNoop,
	fiber.MemoComponent:       completeNoop,
	fiber.SimpleMemoComponent: completeNoop,
	fiber.SuspenseBoundary:    completeNoop,
	fiber.OffscreenSubtree:    completeNoop,
	fiber.Portal:              completeNoop,
	fiber.LazyComponent:       completeNoop,
	fiber.Throw:               completeNoop,
}

// CompleteWork implements §4.6/§4.7's complete_work: reify host state for
// host-bearing tags, pop anything a matching begin handler pushed.
// Returns a replacement unit for the rare retry-alternate case (unused by
// any handler here, kept for signature symmetry with the spec) or
// fiber.NoID.
func CompleteWork(a *fiber.Arena, cc *CompleteContext, current, wip fiber.ID) (fiber.ID, error) {
	wipFiber := a.Get(wip)
	handler, ok := completeHandlers[wipFiber.Tag]
	if !ok {
		return fiber.NoID, serviceerror.NewInternalf("dispatch: unknown fiber tag %v", wipFiber.Tag)
	}
	return handler(a, cc, current, wip)
}

func completeNoop(a *fiber.Arena, _ *CompleteContext, _, wip fiber.ID) (fiber.ID, error) {
	return fiber.NoID, nil
}

func completeContextProvider(a *fiber.Arena, _ *CompleteContext, _, wip fiber.ID) (fiber.ID, error) {
	pt := a.Get(wip).ElementType.(*ProviderType)
	pt.Context.pop()
	return fiber.NoID, nil
}

func completeHostElement(a *fiber.Arena, cc *CompleteContext, current, wip fiber.ID) (fiber.ID, error) {
	wipFiber := a.Get(wip)
	props := propsMap(wipFiber.PendingProps)

	if current == fiber.NoID {
		hostCtx, err := cc.Adapter.GetChildHostContext(cc.HostContext, wipFiber.Type)
		if err != nil {
			return fiber.NoID, err
		}
		inst, err := cc.Adapter.CreateInstance(wipFiber.Type, props, cc.ContainerInfo, hostCtx)
		if err != nil {
			return fiber.NoID, err
		}
		appendAllChildren(a, cc.Adapter, inst, wip)
		needsCommit, err := cc.Adapter.FinalizeInitialChildren(inst, wipFiber.Type, props)
		if err != nil {
			return fiber.NoID, err
		}
		wipFiber.StateNode = inst
		if needsCommit {
			wipFiber.Flags |= fiber.Update
		}
		return fiber.NoID, nil
	}

	oldProps := propsMap(a.Get(current).MemoizedProps)
	payload, err := cc.Adapter.PrepareUpdate(wipFiber.StateNode, wipFiber.Type, oldProps, props)
	if err != nil {
		return fiber.NoID, err
	}
	if payload != nil {
		wipFiber.UpdateQueue = payload
		wipFiber.Flags |= fiber.Update
	}
	return fiber.NoID, nil
}

func completeHostText(a *fiber.Arena, cc *CompleteContext, current, wip fiber.ID) (fiber.ID, error) {
	wipFiber := a.Get(wip)
	newText, _ := wipFiber.PendingProps.(string)

	if current == fiber.NoID {
		inst, err := cc.Adapter.CreateTextInstance(newText, cc.ContainerInfo, cc.HostContext)
		if err != nil {
			return fiber.NoID, err
		}
		wipFiber.StateNode = inst
		return fiber.NoID, nil
	}

	oldText, _ := a.Get(current).MemoizedProps.(string)
	if oldText != newText {
		wipFiber.Flags |= fiber.Update
	}
	return fiber.NoID, nil
}

// appendAllChildren descends past non-host wrapper fibers (function
// components, fragments, providers, ...) to append every host-bearing
// descendant's already-created instance into parentInstance, in tree
// order (§4.7 mount path: host children are wired into their parent
// instance before that instance is itself attached to the visible tree).
func appendAllChildren(a *fiber.Arena, adapter host.Adapter, parentInstance any, node fiber.ID) {
	for c := a.Get(node).FirstChild; c != fiber.NoID; c = a.Get(c).NextSibling {
		cf := a.Get(c)
		if cf.Tag == fiber.HostElement || cf.Tag == fiber.HostText {
			adapter.AppendInitialChild(parentInstance, cf.StateNode)
		} else {
			appendAllChildren(a, adapter, parentInstance, c)
		}
	}
}
