package fake

import (
	"sort"
	"time"

	"go.fiberkit.dev/reconciler/host"
)

type scheduledCallback struct {
	id       int
	priority host.PriorityLevel
	fn       func()
	cancelled bool
}

// Scheduler is a manually-stepped host.Scheduler: time only advances
// when a test calls Advance, and queued callbacks only run when a test
// calls RunDueCallbacks (queued microtasks only when it calls
// FlushMicrotasks). This gives scenario tests (§8 C, D, F)
// exact control over expiration and suspense-resolution timing without
// real sleeps.
type Scheduler struct {
	now       time.Time
	nextID    int
	callbacks []*scheduledCallback
	yieldAt   *time.Time
	microtasks []func()
}

func NewScheduler(start time.Time) *Scheduler {
	return &Scheduler{now: start}
}

func (s *Scheduler) Now() time.Time { return s.now }

func (s *Scheduler) ScheduleCallback(priority host.PriorityLevel, fn func()) host.CallbackHandle {
	s.nextID++
	cb := &scheduledCallback{id: s.nextID, priority: priority, fn: fn}
	s.callbacks = append(s.callbacks, cb)
	return cb.id
}

func (s *Scheduler) CancelCallback(handle host.CallbackHandle) {
	id, ok := handle.(int)
	if !ok {
		return
	}
	for _, cb := range s.callbacks {
		if cb.id == id {
			cb.cancelled = true
		}
	}
}

// ShouldYield reports true once the test has armed a yield point with
// YieldAfter and the clock has reached it.
func (s *Scheduler) ShouldYield() bool {
	return s.yieldAt != nil && !s.now.Before(*s.yieldAt)
}

// YieldAfter arms ShouldYield to return true once Now() >= at.
func (s *Scheduler) YieldAfter(at time.Time) { s.yieldAt = &at }

func (s *Scheduler) ScheduleMicrotask(fn func()) {
	s.microtasks = append(s.microtasks, fn)
}

func (s *Scheduler) SupportsMicrotasks() bool { return true }

// Advance moves the clock forward by d without running anything, for
// tests that want to control exactly when expiration fires (§8 scenario
// F).
func (s *Scheduler) Advance(d time.Duration) { s.now = s.now.Add(d) }

// FlushMicrotasks drains and runs every queued microtask, including any
// scheduled by a microtask that itself ran during this flush (matching a
// real microtask queue's re-entrancy).
func (s *Scheduler) FlushMicrotasks() {
	for len(s.microtasks) > 0 {
		task := s.microtasks[0]
		s.microtasks = s.microtasks[1:]
		task()
	}
}

// RunDueCallbacks runs every non-cancelled scheduled callback in
// priority order (Immediate first), highest priority first, oldest
// first within a priority tier — approximating a real priority
// scheduler's dequeue order closely enough for deterministic tests.
func (s *Scheduler) RunDueCallbacks() {
	pending := s.callbacks
	s.callbacks = nil
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].priority < pending[j].priority
	})
	for _, cb := range pending {
		if cb.cancelled {
			continue
		}
		cb.fn()
	}
}

var _ host.Scheduler = (*Scheduler)(nil)
