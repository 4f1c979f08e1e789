// Package metrics wraps github.com/uber-go/tally/v4 the way Temporal
// server's common/metrics package wraps it: a small Handle interface so
// production code never imports tally directly, with a NoopHandle for
// tests and callers that don't want a reporter wired up.
package metrics

import (
	"time"

	"github.com/uber-go/tally/v4"
)

// Handle is the metrics emission surface passed to schedule.NewRegistry;
// workloop and commit take none. Kept narrow (three verbs) rather than exposing the full
// tally.Scope, mirroring the teacher's own metrics.Handler seam.
type Handle interface {
	Counter(name string) Counter
	Gauge(name string) Gauge
	Timer(name string) Timer
	// Tagged returns a Handle whose emitted metrics carry the given tags
	// in addition to any already applied.
	Tagged(tags map[string]string) Handle
}

type Counter interface{ Inc(delta int64) }
type Gauge interface{ Update(value float64) }
type Timer interface{ Record(d time.Duration) }

type tallyHandle struct {
	scope tally.Scope
}

// NewTallyHandle wraps an existing tally.Scope as a Handle.
func NewTallyHandle(scope tally.Scope) Handle {
	return &tallyHandle{scope: scope}
}

func (h *tallyHandle) Counter(name string) Counter { return tallyCounter{h.scope.Counter(name)} }
func (h *tallyHandle) Gauge(name string) Gauge     { return tallyGauge{h.scope.Gauge(name)} }
func (h *tallyHandle) Timer(name string) Timer     { return tallyTimer{h.scope.Timer(name)} }
func (h *tallyHandle) Tagged(tags map[string]string) Handle {
	return &tallyHandle{scope: h.scope.Tagged(tags)}
}

type tallyCounter struct{ c tally.Counter }
type tallyGauge struct{ g tally.Gauge }
type tallyTimer struct{ t tally.Timer }

func (c tallyCounter) Inc(delta int64)     { c.c.Inc(delta) }
func (g tallyGauge) Update(value float64)  { g.g.Update(value) }
func (t tallyTimer) Record(d time.Duration) { t.t.Record(d) }

type noopHandle struct{}

// NewNoop returns a Handle that discards everything.
func NewNoop() Handle { return noopHandle{} }

func (noopHandle) Counter(string) Counter                { return noopCounter{} }
func (noopHandle) Gauge(string) Gauge                    { return noopGauge{} }
func (noopHandle) Timer(string) Timer                    { return noopTimer{} }
func (noopHandle) Tagged(map[string]string) Handle       { return noopHandle{} }

type noopCounter struct{}
type noopGauge struct{}
type noopTimer struct{}

func (noopCounter) Inc(int64)          {}
func (noopGauge) Update(float64)       {}
func (noopTimer) Record(time.Duration) {}
