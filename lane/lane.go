// Package lane implements the bitmask priority algebra ("lanes") that the
// reconciler uses to decide which pending work is visible to a given
// render and in what order competing renders are resolved.
//
// A Set is a 31-bit mask; bit position encodes priority, with the
// lowest-numbered set bit being the most urgent. The zero Set carries no
// work.
package lane

import "math/bits"

// Set is a bitmask of pending or included lanes. Lane 0 (NoLane) is never
// set in a non-empty Set.
type Set uint32

const (
	NoLanes Set = 0
	NoLane  Set = 0
)

const (
	SyncLane Set = 1 << iota

	InputContinuousHydrationLane
	InputContinuousLane

	DefaultHydrationLane
	DefaultLane

	transitionHydrationLane

	TransitionLane1
	TransitionLane2
	TransitionLane3
	TransitionLane4
	TransitionLane5
	TransitionLane6
	TransitionLane7
	TransitionLane8
	TransitionLane9
	TransitionLane10
	TransitionLane11
	TransitionLane12
	TransitionLane13
	TransitionLane14
	TransitionLane15
	TransitionLane16

	RetryLane1
	RetryLane2
	RetryLane3
	RetryLane4

	SelectiveHydrationLane

	IdleHydrationLane
	IdleLane

	OffscreenLane
	DeferredLane
)

// TransitionLanes is every lane in the transition priority class.
const TransitionLanes = TransitionLane1 | TransitionLane2 | TransitionLane3 | TransitionLane4 |
	TransitionLane5 | TransitionLane6 | TransitionLane7 | TransitionLane8 |
	TransitionLane9 | TransitionLane10 | TransitionLane11 | TransitionLane12 |
	TransitionLane13 | TransitionLane14 | TransitionLane15 | TransitionLane16

// RetryLanes is every lane in the retry (suspense unwind) priority class.
const RetryLanes = RetryLane1 | RetryLane2 | RetryLane3 | RetryLane4

// NonIdleLanes is every lane that is not Idle-priority. It is used by the
// work loop to decide the concurrent time-slicing budget (§4.5).
const NonIdleLanes = SyncLane | InputContinuousHydrationLane | InputContinuousLane |
	DefaultHydrationLane | DefaultLane | TransitionLanes | RetryLanes | SelectiveHydrationLane

// Merge computes the union of two lane sets. Corresponds to spec §4.1
// merge(a,b) = a | b.
func Merge(a, b Set) Set { return a | b }

// Remove computes a with every bit in b cleared. Corresponds to
// remove(a,b) = a & ~b.
func Remove(a, b Set) Set { return a &^ b }

// Intersect computes the bits common to both sets.
func Intersect(a, b Set) Set { return a & b }

// IsSubset reports whether every bit of a is also set in b.
func IsSubset(a, b Set) bool { return a&b == a }

// IsEmpty reports whether the set carries no lanes.
func IsEmpty(s Set) bool { return s == NoLanes }

// IsEmpty is the method form of IsEmpty, for call-site ergonomics.
func (s Set) IsEmpty() bool { return s == NoLanes }

// Includes reports whether s and other share any bit.
func Includes(s, other Set) bool { return s&other != 0 }

// Includes is the method form of Includes.
func (s Set) Includes(other Set) bool { return s&other != 0 }

// Highest isolates the lowest-numbered (most urgent) set bit. Returns
// NoLane if s is empty.
func Highest(s Set) Set {
	if s == 0 {
		return NoLane
	}
	return Set(1) << bits.TrailingZeros32(uint32(s))
}

// IsBlocking reports whether s includes a lane urgent enough to force a
// synchronous, non-time-sliced render (§4.5's includes_blocking_lane).
func IsBlocking(s Set) bool {
	return Includes(s, SyncLane|InputContinuousHydrationLane|InputContinuousLane)
}

// Count returns the number of distinct lanes set.
func Count(s Set) int { return bits.OnesCount32(uint32(s)) }

// String renders a lane Set as its hex bitmask, e.g. "0x1" for SyncLane.
func (s Set) String() string {
	const hexDigits = "0123456789abcdef"
	if s == 0 {
		return "0x0"
	}
	buf := [10]byte{}
	i := len(buf)
	v := uint32(s)
	for v > 0 {
		i--
		buf[i] = hexDigits[v&0xf]
		v >>= 4
	}
	i--
	buf[i] = 'x'
	i--
	buf[i] = '0'
	return string(buf[i:])
}

// PriorityClass names the coarse priority bucket a lane belongs to, used
// to compute expiration budgets and to map to an external scheduler
// priority level (§4.4).
type PriorityClass int

const (
	ClassSync PriorityClass = iota
	ClassInputContinuous
	ClassDefault
	ClassTransition
	ClassRetry
	ClassIdle
	ClassOffscreen
)

// ClassOf classifies the highest-priority lane in s. Callers should pass
// Highest(s) unless they specifically want the class of a lane set that
// may span multiple classes (in which case the most urgent class wins).
func ClassOf(single Set) PriorityClass {
	switch {
	case single == NoLane:
		return ClassDefault
	case Includes(single, SyncLane):
		return ClassSync
	case Includes(single, InputContinuousHydrationLane|InputContinuousLane):
		return ClassInputContinuous
	case Includes(single, DefaultHydrationLane|DefaultLane):
		return ClassDefault
	case Includes(single, TransitionLanes):
		return ClassTransition
	case Includes(single, RetryLanes|SelectiveHydrationLane):
		return ClassRetry
	case Includes(single, IdleHydrationLane|IdleLane):
		return ClassIdle
	case Includes(single, OffscreenLane):
		return ClassOffscreen
	default:
		return ClassDefault
	}
}

func (c PriorityClass) String() string {
	switch c {
	case ClassSync:
		return "Sync"
	case ClassInputContinuous:
		return "InputContinuous"
	case ClassDefault:
		return "Default"
	case ClassTransition:
		return "Transition"
	case ClassRetry:
		return "Retry"
	case ClassIdle:
		return "Idle"
	case ClassOffscreen:
		return "Offscreen"
	default:
		return "Unknown"
	}
}
