// Package dispatch implements begin/complete work (component C6): the
// type-tagged handlers that run user code, resolve children, reconcile
// them against the previous sibling chain, and reify host state.
//
// Grounded on chasm/library.go's Registry (a tag string maps to a
// RegistrableComponent constructor) generalized from CHASM's dynamic,
// caller-registered component kinds to the closed, compile-time-known
// set of fiber.Tag variants this spec requires — a dispatch table keyed
// by tag rather than a type switch, per the redesign notes.
package dispatch

import "go.fiberkit.dev/reconciler/fiber"

// Element is the immutable view descriptor produced by user code (the
// descriptor factory is out of scope; this is the minimal shape
// begin_work needs to consume). Children is one of: nil, a string (text),
// an Element, or a []Element.
type Element struct {
	Type     any
	Key      fiber.Key
	Props    map[string]any
	Children any
}

// FunctionComponent identifies a stateless render function. Wrapped in a
// pointer-comparable struct (rather than a bare func value, which Go
// cannot compare with ==) because component identity across renders is
// decided by pointer equality of Type, exactly like a host tag string's
// value equality.
type FunctionComponent struct {
	Name   string
	Render func(props map[string]any) Element
}

// ClassComponent identifies a stateful component. New constructs a fresh
// Instance for a first mount; the fiber's StateNode holds the Instance
// thereafter, reused across updates.
type ClassComponent struct {
	Name string
	New  func() Instance
}

// Instance is a mounted class component's user-code object.
type Instance interface {
	// Render produces this render's children given the fiber's current
	// props and memoized state.
	Render(props map[string]any, state any) Element
}

// Mounter is optionally implemented by an Instance to observe mount.
type Mounter interface {
	ComponentDidMount()
}

// Unmounter is optionally implemented by an Instance to observe unmount.
type Unmounter interface {
	ComponentWillUnmount()
}

// ErrorBoundary is optionally implemented by a class Instance to catch an
// error thrown by a descendant during render (§7 "User render error").
// DeriveErrorState computes a state patch that makes the boundary render
// its fallback UI; the reconciler applies it as a CaptureUpdate and
// re-renders the boundary.
type ErrorBoundary interface {
	DeriveErrorState(err error) any
}

// ForwardRefComponent identifies a component that receives the fiber's
// ref directly rather than attaching it to a host instance.
type ForwardRefComponent struct {
	Name   string
	Render func(props map[string]any, ref any) Element
}

// MemoType wraps an inner component type with an optional custom props
// comparison; nil Equal falls back to shallow key/value comparison.
type MemoType struct {
	Name  string
	Inner any
	Equal func(prev, next map[string]any) bool
}

// LazyType resolves to an inner component type on first use, then caches
// it for the fiber's remaining lifetime (§4.6 "resolve, then remount as
// resolved type").
type LazyType struct {
	Name    string
	Resolve func() (any, error)
}

// Portal renders Children into a different container than its ancestors,
// carrying that container as ContainerInfo.
type Portal struct {
	ContainerInfo any
}

// FragmentMarker is the Type value used for a fragment element (a
// component identity that carries no behavior of its own).
type FragmentMarker struct{}

// Fragment is the canonical FragmentMarker instance element authors
// reference; equivalent to any other *FragmentMarker for matching
// purposes since fragments have no props to distinguish them.
var Fragment = &FragmentMarker{}

// textMarker is the Type value wrapping a bare string child into an
// Element uniform enough for reconcileChildren's matching logic.
type textMarker struct{}

var textType = &textMarker{}

// SuspenseType identifies a boundary that can show Props["fallback"]
// while a descendant is suspended on data.
type SuspenseType struct{}

// Suspense is the canonical SuspenseType instance.
var Suspense = &SuspenseType{}

// OffscreenType identifies a subtree that may be hidden without
// unmounting (Props["hidden"] == true hides it).
type OffscreenType struct{}

// Offscreen is the canonical OffscreenType instance.
var Offscreen = &OffscreenType{}

// ProfilerType identifies a profiling boundary. It renders its children
// unchanged; Props["onRender"] is never invoked and no render durations
// are measured.
type ProfilerType struct{}

// Profiler is the canonical ProfilerType instance.
var Profiler = &ProfilerType{}

// ModeType identifies a rendering-mode boundary (Props["concurrent"],
// Props["strict"]) that ORs additional fiber.Mode bits into its subtree.
type ModeType struct{}

// ConcurrentMode is the canonical ModeType instance.
var ConcurrentMode = &ModeType{}
