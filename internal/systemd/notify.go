// Package systemd reports service readiness and liveness to systemd.
package systemd

import (
	"context"
	"log/slog"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
)

// Notifier sends sd_notify messages. Outside systemd every call is a no-op.
type Notifier struct {
	logger *slog.Logger
}

// NewNotifier creates a notifier that logs delivery failures to logger.
func NewNotifier(logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{logger: logger}
}

// Ready tells systemd that startup has finished.
func (n *Notifier) Ready() {
	n.send(daemon.SdNotifyReady)
}

// Stopping tells systemd that shutdown has begun.
func (n *Notifier) Stopping() {
	n.send(daemon.SdNotifyStopping)
}

func (n *Notifier) send(state string) bool {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		n.logger.Warn("Failed to notify systemd", "state", state, "error", err)
		return false
	}
	return sent
}

// Watchdog pings the systemd watchdog at half the configured interval for as
// long as healthy reports true. A stalled light loop therefore stops the pings
// and lets systemd restart the service. It returns when ctx ends, or
// immediately when the watchdog is not enabled.
func (n *Notifier) Watchdog(ctx context.Context, healthy func() bool) error {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		return err
	}
	if interval == 0 {
		return nil
	}

	every := interval / 2
	n.logger.Info("systemd watchdog enabled", "interval", interval)
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if !healthy() {
				n.logger.Warn("Skipping watchdog ping, light loop is not progressing")
				continue
			}
			n.send(daemon.SdNotifyWatchdog)
		}
	}
}

// Progress returns a health check that passes when counter has moved since
// the previous call.
func Progress(counter func() uint64) func() bool {
	last := counter()
	return func() bool {
		now := counter()
		moved := now != last
		last = now
		return moved
	}
}
