// Package light drives a two-color switch light from asynchronous commands.
package light

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/smazurov/switchlight/internal/events"
	"github.com/smazurov/switchlight/internal/metrics"
)

// Config fixes the controller's timing and inbox at construction.
type Config struct {
	// Period is the length of one execution cycle.
	Period time.Duration
	// InboxCapacity bounds the number of pending commands.
	InboxCapacity int
	// MaxEnqueueWait is how long Submit waits for room before dropping.
	MaxEnqueueWait time.Duration
	// TaskEnabled gates whether Start spawns the execution loop.
	TaskEnabled bool
	// PrintDebug emits startup and transition diagnostics at info level.
	PrintDebug bool
}

// DefaultConfig returns a 10ms cycle with a ten command inbox.
func DefaultConfig() Config {
	return Config{
		Period:         10 * time.Millisecond,
		InboxCapacity:  10,
		MaxEnqueueWait: 10 * time.Millisecond,
		TaskEnabled:    true,
	}
}

// Validate reports configuration the controller cannot run with.
func (c Config) Validate() error {
	if c.Period < time.Millisecond {
		return fmt.Errorf("%w: period %s is below 1ms", ErrInvalidConfig, c.Period)
	}
	if c.InboxCapacity < 1 {
		return fmt.Errorf("%w: inbox capacity %d", ErrInvalidConfig, c.InboxCapacity)
	}
	if c.MaxEnqueueWait < 0 {
		return fmt.Errorf("%w: negative enqueue wait %s", ErrInvalidConfig, c.MaxEnqueueWait)
	}
	return nil
}

// Options carries the optional collaborators of a Controller.
type Options struct {
	Logger  *slog.Logger
	Metrics *metrics.Light
	Bus     *events.Bus
}

// Controller owns the light's display state and its output lines.
type Controller struct {
	cfg     Config
	out     Outputs
	inbox   chan Command
	clock   *Clock
	logger  *slog.Logger
	metrics *metrics.Light
	bus     *events.Bus

	mu      sync.RWMutex
	display DisplayState
	saved   *DisplayState

	lastToggle Tick
	levels     [2]bool

	started atomic.Bool
	done    chan struct{}
}

const (
	green = iota
	orange
)

var lineNames = [2]string{green: "green", orange: "orange"}

// New creates a controller in the OFF state with an empty inbox. It does not
// touch the lines until the first cycle.
func New(cfg Config, out Outputs, opts *Options) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !out.valid() {
		return nil, fmt.Errorf("%w: both output lines are required", ErrInvalidConfig)
	}
	if opts == nil {
		opts = &Options{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Controller{
		cfg:     cfg,
		out:     out,
		inbox:   make(chan Command, cfg.InboxCapacity),
		clock:   NewClock(cfg.Period),
		logger:  logger,
		metrics: opts.Metrics,
		bus:     opts.Bus,
		display: DisplayState{Current: StateOff, Previous: StateOff},
		done:    make(chan struct{}),
	}, nil
}

// Submit enqueues a command for a later cycle. value1 is the flash rate and
// value2 the duration, both in milliseconds. It returns false when the inbox
// stayed full for MaxEnqueueWait and the command was dropped.
func (c *Controller) Submit(kind Kind, value1, value2 uint32) bool {
	return c.SubmitCommand(Command{Kind: kind, RateMs: value1, DurationMs: value2})
}

// SubmitCommand is Submit with a prepared Command.
func (c *Controller) SubmitCommand(cmd Command) bool {
	select {
	case c.inbox <- cmd:
		c.metrics.CommandSubmitted(cmd.Kind.String())
		return true
	default:
	}

	if c.cfg.MaxEnqueueWait > 0 {
		timer := time.NewTimer(c.cfg.MaxEnqueueWait)
		defer timer.Stop()
		select {
		case c.inbox <- cmd:
			c.metrics.CommandSubmitted(cmd.Kind.String())
			return true
		case <-timer.C:
		}
	}

	c.dropped(cmd)
	return false
}

func (c *Controller) dropped(cmd Command) {
	c.metrics.CommandDropped(cmd.Kind.String())
	c.logger.Debug("Switch light inbox full, command dropped",
		"kind", cmd.Kind.String(),
		"rate_ms", cmd.RateMs,
		"duration_ms", cmd.DurationMs)
	c.publish(events.LightCommandDroppedEvent{
		EventID:    uuid.NewString(),
		Kind:       cmd.Kind.String(),
		RateMs:     cmd.RateMs,
		DurationMs: cmd.DurationMs,
		Timestamp:  time.Now().Format(time.RFC3339),
	})
}

// Start spawns the execution loop when the task is enabled. The loop stops
// when ctx is cancelled; Done is closed once it has returned.
func (c *Controller) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	if !c.cfg.TaskEnabled {
		c.logger.Info("Switch light task disabled")
		close(c.done)
		return nil
	}
	if c.cfg.PrintDebug {
		c.logger.Info("Switch light task starting",
			"period", c.cfg.Period,
			"inbox_capacity", c.cfg.InboxCapacity,
			"max_enqueue_wait", c.cfg.MaxEnqueueWait)
	}

	go func() {
		defer close(c.done)
		c.Run(ctx)
	}()
	return nil
}

// Done is closed after the loop spawned by Start has stopped.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Run executes one cycle per period until ctx is cancelled. A late wakeup
// delays the next cycle but never skips it.
func (c *Controller) Run(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.Period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Debug("Switch light loop stopped", "tick", uint64(c.clock.Now()))
			return
		case <-ticker.C:
			c.Step()
		}
	}
}

// Display returns a copy of the current display state.
func (c *Controller) Display() DisplayState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.display
}

// Now returns the number of completed cycles.
func (c *Controller) Now() Tick {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.clock.Now()
}

// Step runs exactly one execution cycle. Run calls it once per period;
// callers driving a controller by hand must not run Run concurrently.
func (c *Controller) Step() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	refresh := false

	select {
	case cmd := <-c.inbox:
		refresh = c.apply(cmd, now)
	default:
	}

	if c.display.Timed && now >= c.display.RevertAt {
		c.revert(now)
		refresh = true
	}

	c.drive(now, refresh)
	c.clock.Advance()
	c.metrics.CycleCompleted(int(c.display.Current), len(c.inbox))
}

// apply updates the display state for one received command and reports
// whether the active state or rate changed.
func (c *Controller) apply(cmd Command, now Tick) bool {
	if !cmd.Kind.Valid() {
		c.metrics.CommandIgnored()
		c.logger.Debug("Ignoring switch light command with unknown kind", "kind", uint8(cmd.Kind))
		return false
	}
	c.metrics.CommandConsumed(cmd.Kind.String())

	d := &c.display
	if cmd.Timed() {
		snapshot := *d
		c.saved = &snapshot
		d.Timed = true
		d.RevertAt = now + c.clock.Cycles(cmd.DurationMs)
	} else {
		d.Timed = false
	}

	target, ok := cmd.Kind.target()
	if !ok {
		return false
	}
	changed := target != d.Current || cmd.RateMs != d.FlashRateMs
	d.Current = target
	d.FlashRateMs = cmd.RateMs
	return changed
}

// revert restores the state saved by the last timed command.
func (c *Controller) revert(now Tick) {
	expired := c.display.Current
	// Timed is only ever set after a snapshot is stored.
	restored := *c.saved
	c.saved = nil
	restored.Previous = expired
	restored.Timed = false
	c.display = restored

	c.metrics.Reverted()
	if c.cfg.PrintDebug {
		c.logger.Info("Switch light timed command expired",
			"expired", expired.String(),
			"restored", restored.Current.String(),
			"tick", uint64(now))
	}
	c.publish(events.LightStateRevertedEvent{
		EventID:   uuid.NewString(),
		Expired:   expired.String(),
		Restored:  restored.Current.String(),
		Tick:      uint64(now),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// drive runs entry actions on a state change or refresh, then the per-cycle
// flash action of the current state.
func (c *Controller) drive(now Tick, refresh bool) {
	d := &c.display
	from := d.Previous
	entry := refresh || d.Previous != d.Current

	switch d.Current {
	case StateOff:
		if entry {
			c.write(green, false)
			c.write(orange, false)
			d.StartedAt = now
			c.entered(from, now)
		}

	case StateFlashingGreen, StateFlashingOrange:
		active, inactive := green, orange
		if d.Current == StateFlashingOrange {
			active, inactive = orange, green
		}
		if entry {
			c.write(active, true)
			c.write(inactive, false)
			c.lastToggle = now
			d.StartedAt = now
			c.entered(from, now)
		}
		if d.FlashRateMs != 0 && now >= c.lastToggle+c.clock.Cycles(d.FlashRateMs) {
			c.write(active, !c.read(active))
			c.lastToggle = now
			c.metrics.Toggled(lineNames[active])
		}
	}

	d.Previous = d.Current
}

func (c *Controller) entered(from State, now Tick) {
	d := c.display
	if c.cfg.PrintDebug {
		c.logger.Info("Switch light state entered",
			"from", from.String(),
			"to", d.Current.String(),
			"flash_rate_ms", d.FlashRateMs,
			"timed", d.Timed,
			"tick", uint64(now))
	}
	c.publish(events.LightStateChangedEvent{
		EventID:     uuid.NewString(),
		From:        from.String(),
		To:          d.Current.String(),
		FlashRateMs: d.FlashRateMs,
		Timed:       d.Timed,
		Tick:        uint64(now),
		Timestamp:   time.Now().Format(time.RFC3339),
	})
}

func (c *Controller) line(idx int) Line {
	if idx == green {
		return c.out.Green
	}
	return c.out.Orange
}

func (c *Controller) write(idx int, level bool) {
	if err := c.line(idx).Write(level); err != nil {
		c.metrics.LineError(lineNames[idx])
		c.logger.Warn("Failed to write switch light line", "line", lineNames[idx], "level", level, "error", err)
	}
	c.levels[idx] = level
}

// read falls back to the last level written when the line cannot be read.
func (c *Controller) read(idx int) bool {
	level, err := c.line(idx).Read()
	if err != nil {
		c.metrics.LineError(lineNames[idx])
		c.logger.Warn("Failed to read switch light line", "line", lineNames[idx], "error", err)
		return c.levels[idx]
	}
	return level
}

func (c *Controller) publish(ev events.Event) {
	if c.bus != nil {
		c.bus.Publish(ev)
	}
}
