package schedule

import (
	"go.fiberkit.dev/reconciler/internal/metrics"
	"go.fiberkit.dev/reconciler/lane"
)

// monitor centralizes the metric names the scheduler emits, mirroring the
// teacher's pattern (chasm/lib/scheduler) of a single small type owning
// every metric constructor for its package rather than scattering
// handle.Counter("literal") calls at each call site.
type monitor struct {
	handle metrics.Handle

	rootIdle          metrics.Counter
	lanesExpired      metrics.Counter
	syncFlush         metrics.Counter
	callbacksByClass  map[string]metrics.Counter
}

func newMonitor(handle metrics.Handle) *monitor {
	return &monitor{
		handle:           handle,
		rootIdle:         handle.Counter("schedule.root_idle"),
		lanesExpired:     handle.Counter("schedule.lanes_expired"),
		syncFlush:        handle.Counter("schedule.sync_flush"),
		callbacksByClass: map[string]metrics.Counter{},
	}
}

func (m *monitor) recordRootIdle() { m.rootIdle.Inc(1) }

func (m *monitor) recordLanesExpired(n int) { m.lanesExpired.Inc(int64(n)) }

func (m *monitor) recordSyncFlush() { m.syncFlush.Inc(1) }

func (m *monitor) recordCallbackScheduled(class lane.PriorityClass) {
	name := class.String()
	c, ok := m.callbacksByClass[name]
	if !ok {
		c = m.handle.Tagged(map[string]string{"class": name}).Counter("schedule.callback_scheduled")
		m.callbacksByClass[name] = c
	}
	c.Inc(1)
}
