package fiber

// Tag discriminates the variant of a Fiber. The set of tags is closed;
// begin_work and complete_work (package dispatch) must handle every one
// of them, and an unrecognized tag is a fatal programming error (§9).
type Tag int

const (
	FunctionLike Tag = iota
	ClassLike
	HostRoot
	HostElement
	HostText
	Fragment
	ModeTag
	Profiler
	ContextProvider
	ContextConsumer
	ForwardRef
	MemoComponent
	SimpleMemoComponent
	SuspenseBoundary
	OffscreenSubtree
	Portal
	LazyComponent
	Throw
)

func (t Tag) String() string {
	switch t {
	case FunctionLike:
		return "FunctionLike"
	case ClassLike:
		return "ClassLike"
	case HostRoot:
		return "HostRoot"
	case HostElement:
		return "HostElement"
	case HostText:
		return "HostText"
	case Fragment:
		return "Fragment"
	case ModeTag:
		return "Mode"
	case Profiler:
		return "Profiler"
	case ContextProvider:
		return "ContextProvider"
	case ContextConsumer:
		return "ContextConsumer"
	case ForwardRef:
		return "ForwardRef"
	case MemoComponent:
		return "MemoComponent"
	case SimpleMemoComponent:
		return "SimpleMemoComponent"
	case SuspenseBoundary:
		return "SuspenseBoundary"
	case OffscreenSubtree:
		return "OffscreenSubtree"
	case Portal:
		return "Portal"
	case LazyComponent:
		return "LazyComponent"
	case Throw:
		return "Throw"
	default:
		return "UnknownTag"
	}
}

// Mode is a bitmask of rendering modes carried on a fiber and inherited
// by its children (§3 fiber.mode).
type Mode uint8

const (
	NoMode       Mode = 0
	ConcurrentMode Mode = 1 << iota
	StrictMode
	ProfileMode
)

// Flags is the bitmask of effects pending against a fiber, to be applied
// at commit (§3 fiber.flags, §4.7).
type Flags uint32

const NoFlags Flags = 0

const (
	Placement Flags = 1 << iota
	Update
	ChildDeletion
	ContentReset
	FormReset
	Callback
	DidCapture
	ForceClientRender
	Ref
	Snapshot
	Passive
	Hydrating
	Visibility
	ShouldCapture
	Incomplete

	// StaticMask is the subset of flags that survive create_work_in_progress
	// cloning across renders (§4.2), because they describe a structural
	// property of the fiber rather than a one-shot effect of the last
	// render.
	staticBits = Ref | Snapshot | Passive | Hydrating
)

// StaticMask reports the flags in f that belong to the persistent
// (cross-clone) subset.
func (f Flags) StaticMask() Flags { return f & staticBits }

// Has reports whether every bit of want is present in f.
func (f Flags) Has(want Flags) bool { return f&want == want }

// Any reports whether f shares any bit with want.
func (f Flags) Any(want Flags) bool { return f&want != 0 }
