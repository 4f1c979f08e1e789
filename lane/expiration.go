package lane

import "time"

// Budget returns the expiration budget for a priority class: how long a
// lane in that class may remain pending before it is force-expired into
// synchronous rendering (§4.1). ClassSync's zero is an immediate
// deadline; ClassIdle also returns zero, but ExpirationTimes.Record sets
// no deadline for it, so IdleLane never expires.
func Budget(class PriorityClass) time.Duration {
	switch class {
	case ClassSync:
		return 0 // immediate
	case ClassInputContinuous:
		return 250 * time.Millisecond
	case ClassDefault:
		return 5 * time.Second
	case ClassTransition:
		return 5 * time.Second
	case ClassRetry:
		return 5 * time.Second
	case ClassIdle:
		return 0 // never
	default:
		return 5 * time.Second
	}
}

// ExpirationTimes tracks, per lane, the wall-clock deadline at which a
// still-pending lane must be force-expired. It is owned by a single
// FiberRoot; there is no cross-root sharing.
type ExpirationTimes struct {
	at [32]time.Time
}

// Record sets the expiration deadline for every lane newly present in
// pending that doesn't already have one, per §4.1: "when a lane first
// becomes pending, record expiration_times[lane] = now() + budget(...)".
func (e *ExpirationTimes) Record(pending Set, now time.Time) {
	for l := Set(1); l != 0 && l <= DeferredLane; l <<= 1 {
		if !Includes(pending, l) {
			continue
		}
		idx := indexOf(l)
		if e.at[idx].IsZero() {
			class := ClassOf(l)
			budget := Budget(class)
			if class == ClassIdle {
				continue // never expires
			}
			e.at[idx] = now.Add(budget)
		}
	}
}

// Clear drops the recorded expiration for every lane in cleared, e.g.
// once it has been rendered and committed.
func (e *ExpirationTimes) Clear(cleared Set) {
	for l := Set(1); l != 0 && l <= DeferredLane; l <<= 1 {
		if Includes(cleared, l) {
			e.at[indexOf(l)] = time.Time{}
		}
	}
}

// Expired returns the set of lanes in pending whose recorded expiration
// has passed as of now. Corresponds to mark_starved_lanes_as_expired.
func (e *ExpirationTimes) Expired(pending Set, now time.Time) Set {
	var expired Set
	for l := Set(1); l != 0 && l <= DeferredLane; l <<= 1 {
		if !Includes(pending, l) {
			continue
		}
		idx := indexOf(l)
		if t := e.at[idx]; !t.IsZero() && !now.Before(t) {
			expired |= l
		}
	}
	return expired
}

func indexOf(single Set) int {
	i := 0
	for single > 1 {
		single >>= 1
		i++
	}
	return i
}
