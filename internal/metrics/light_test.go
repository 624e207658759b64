package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestLightCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLight(reg)

	m.CommandSubmitted("flash_green")
	m.CommandSubmitted("flash_green")
	m.CommandDropped("flash_orange")
	m.CommandConsumed("flash_green")
	m.CommandIgnored()
	m.Reverted()
	m.Toggled("green")
	m.Toggled("green")
	m.Toggled("orange")
	m.LineError("orange")
	m.CycleCompleted(2, 3)

	if got := testutil.ToFloat64(m.submitted.WithLabelValues("flash_green")); got != 2 {
		t.Errorf("submitted = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.dropped.WithLabelValues("flash_orange")); got != 1 {
		t.Errorf("dropped = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.toggles.WithLabelValues("green")); got != 2 {
		t.Errorf("green toggles = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.state); got != 2 {
		t.Errorf("state = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.inbox); got != 3 {
		t.Errorf("inbox depth = %v, want 3", got)
	}

	expected := `
# HELP switchlight_light_reverts_total Timed commands that expired and restored the saved state
# TYPE switchlight_light_reverts_total counter
switchlight_light_reverts_total 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "switchlight_light_reverts_total"); err != nil {
		t.Error(err)
	}
}

func TestNilLightIsSafe(t *testing.T) {
	var m *Light
	m.CommandSubmitted("none")
	m.CommandDropped("none")
	m.CommandConsumed("none")
	m.CommandIgnored()
	m.Reverted()
	m.Toggled("green")
	m.LineError("green")
	m.CycleCompleted(0, 0)
}

func TestTotals(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLight(reg)
	m.Toggled("green")
	m.Toggled("green")
	m.CycleCompleted(1, 0)

	totals, err := Totals(reg)
	if err != nil {
		t.Fatalf("Totals: %v", err)
	}

	if got := totals[`switchlight_light_toggles_total{line=green}`]; got != 2 {
		t.Errorf("toggles total = %v, want 2 (totals: %v)", got, totals)
	}
	if got := totals["switchlight_light_cycles_total"]; got != 1 {
		t.Errorf("cycles total = %v, want 1", got)
	}
	if got := totals["switchlight_light_state"]; got != 1 {
		t.Errorf("state = %v, want 1", got)
	}
}
