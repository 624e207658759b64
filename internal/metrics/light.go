// Package metrics provides Prometheus metrics for the switch light controller.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "switchlight"
	subsystem = "light"
)

// Light holds the controller's collectors. A nil *Light is valid and records
// nothing, so the controller can run without a registry.
type Light struct {
	submitted *prometheus.CounterVec
	dropped   *prometheus.CounterVec
	applied   *prometheus.CounterVec
	ignored   prometheus.Counter
	reverts   prometheus.Counter
	toggles   *prometheus.CounterVec
	writeErrs *prometheus.CounterVec
	cycles    prometheus.Counter
	state     prometheus.Gauge
	inbox     prometheus.Gauge
}

// NewLight registers the light collectors on reg.
func NewLight(reg prometheus.Registerer) *Light {
	f := promauto.With(reg)
	return &Light{
		submitted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "commands_submitted_total",
			Help:      "Commands accepted into the inbox",
		}, []string{"kind"}),
		dropped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "commands_dropped_total",
			Help:      "Commands discarded because the inbox stayed full",
		}, []string{"kind"}),
		applied: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "commands_consumed_total",
			Help:      "Commands taken from the inbox by the execution loop",
		}, []string{"kind"}),
		ignored: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "commands_ignored_total",
			Help:      "Commands with an unrecognized kind",
		}),
		reverts: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "reverts_total",
			Help:      "Timed commands that expired and restored the saved state",
		}),
		toggles: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "toggles_total",
			Help:      "Flash edges written to an output line",
		}, []string{"line"}),
		writeErrs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "line_errors_total",
			Help:      "Failed reads or writes on an output line",
		}, []string{"line"}),
		cycles: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cycles_total",
			Help:      "Completed execution cycles",
		}),
		state: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "state",
			Help:      "Current logical state (0=off, 1=flashing_green, 2=flashing_orange)",
		}),
		inbox: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "inbox_depth",
			Help:      "Commands waiting in the inbox at the end of the last cycle",
		}),
	}
}

// CommandSubmitted counts a command accepted into the inbox.
func (m *Light) CommandSubmitted(kind string) {
	if m == nil {
		return
	}
	m.submitted.WithLabelValues(kind).Inc()
}

// CommandDropped counts a command discarded on a full inbox.
func (m *Light) CommandDropped(kind string) {
	if m == nil {
		return
	}
	m.dropped.WithLabelValues(kind).Inc()
}

// CommandConsumed counts a command taken by the execution loop.
func (m *Light) CommandConsumed(kind string) {
	if m == nil {
		return
	}
	m.applied.WithLabelValues(kind).Inc()
}

// CommandIgnored counts a command whose kind is not recognized.
func (m *Light) CommandIgnored() {
	if m == nil {
		return
	}
	m.ignored.Inc()
}

// Reverted counts an expired timed command.
func (m *Light) Reverted() {
	if m == nil {
		return
	}
	m.reverts.Inc()
}

// Toggled counts a flash edge on the named line.
func (m *Light) Toggled(line string) {
	if m == nil {
		return
	}
	m.toggles.WithLabelValues(line).Inc()
}

// LineError counts a failed line access.
func (m *Light) LineError(line string) {
	if m == nil {
		return
	}
	m.writeErrs.WithLabelValues(line).Inc()
}

// CycleCompleted records the end of one execution cycle.
func (m *Light) CycleCompleted(state int, inboxDepth int) {
	if m == nil {
		return
	}
	m.cycles.Inc()
	m.state.Set(float64(state))
	m.inbox.Set(float64(inboxDepth))
}
