package dispatch

import "go.fiberkit.dev/reconciler/fiber"

// tagOf maps an Element's Type to the fiber.Tag that should represent
// it, the closed classification §4.6 dispatches on.
func tagOf(elementType any) fiber.Tag {
	switch t := elementType.(type) {
	case string:
		return fiber.HostElement
	case *textMarker:
		return fiber.HostText
	case *FunctionComponent:
		return fiber.FunctionLike
	case *ClassComponent:
		return fiber.ClassLike
	case *ForwardRefComponent:
		return fiber.ForwardRef
	case *MemoType:
		if t.Equal == nil {
			return fiber.SimpleMemoComponent
		}
		return fiber.MemoComponent
	case *LazyType:
		return fiber.LazyComponent
	case *Portal:
		return fiber.Portal
	case *ProviderType:
		return fiber.ContextProvider
	case *ConsumerType:
		return fiber.ContextConsumer
	case *FragmentMarker:
		return fiber.Fragment
	case *SuspenseType:
		return fiber.SuspenseBoundary
	case *OffscreenType:
		return fiber.OffscreenSubtree
	case *ProfilerType:
		return fiber.Profiler
	case *ModeType:
		return fiber.ModeTag
	default:
		return fiber.HostElement
	}
}

// sameType reports whether two element Type values identify the same
// component for positional matching (§4.6). Host element types compare
// by string value; every other type used here is a pointer to a
// caller-owned descriptor, so pointer identity is component identity.
func sameType(a, b any) bool {
	as, aIsString := a.(string)
	bs, bIsString := b.(string)
	if aIsString || bIsString {
		return aIsString && bIsString && as == bs
	}
	return a == b
}
