package light

import (
	"log/slog"
	"sync"

	"github.com/smazurov/switchlight/internal/events"
)

// Submitter accepts commands for the light. *Controller implements it.
type Submitter interface {
	SubmitCommand(cmd Command) bool
}

// Manager forwards light commands published on the event bus to a
// controller, so components without a controller reference can drive the light.
type Manager struct {
	target   Submitter
	eventBus *events.Bus
	logger   *slog.Logger
	debug    bool

	mu          sync.Mutex
	unsubscribe []func()
	forwarded   int
	rejected    int
}

// NewManager creates a manager that submits to target. With debug set it
// also reports drops and forwarding failures at info level.
func NewManager(target Submitter, eventBus *events.Bus, logger *slog.Logger, debug bool) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		target:   target,
		eventBus: eventBus,
		logger:   logger,
		debug:    debug,
	}
}

// Start begins listening for command events.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.unsubscribe = append(m.unsubscribe,
		m.eventBus.Subscribe(func(e events.LightCommandEvent) {
			m.handleCommand(e)
		}),
		m.eventBus.Subscribe(func(e events.LightCommandDroppedEvent) {
			m.handleDropped(e)
		}),
	)
	m.logger.Info("Switch light manager started")
}

// Stop unsubscribes from the bus.
func (m *Manager) Stop() {
	m.mu.Lock()
	unsubscribe := m.unsubscribe
	m.unsubscribe = nil
	m.mu.Unlock()

	for _, unsub := range unsubscribe {
		unsub()
	}
	forwarded, rejected := m.Stats()
	m.logger.Info("Switch light manager stopped", "forwarded", forwarded, "rejected", rejected)
}

// Stats returns how many bus commands were submitted and how many were
// rejected, either for an unknown kind or a full inbox.
func (m *Manager) Stats() (forwarded, rejected int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.forwarded, m.rejected
}

func (m *Manager) handleCommand(e events.LightCommandEvent) {
	kind, err := ParseKind(e.Kind)
	if err != nil {
		m.count(false)
		m.logger.Warn("Ignoring switch light command event", "source", e.Source, "error", err)
		return
	}

	ok := m.target.SubmitCommand(Command{Kind: kind, RateMs: e.RateMs, DurationMs: e.DurationMs})
	m.count(ok)
	if !ok && m.debug {
		m.logger.Info("Switch light command not delivered",
			"source", e.Source,
			"kind", kind.String())
	}
}

func (m *Manager) handleDropped(e events.LightCommandDroppedEvent) {
	if !m.debug {
		return
	}
	m.logger.Info("Switch light inbox full, command dropped",
		"event_id", e.EventID,
		"kind", e.Kind,
		"rate_ms", e.RateMs,
		"duration_ms", e.DurationMs)
}

func (m *Manager) count(ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ok {
		m.forwarded++
	} else {
		m.rejected++
	}
}
