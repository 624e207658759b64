package script

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/smazurov/switchlight/internal/light"
)

// Play submits the script's commands at their offsets. It returns nil when a
// non-looping script finishes or ctx is cancelled.
func Play(ctx context.Context, target light.Submitter, s Script, logger *slog.Logger) error {
	cues, err := s.Cues()
	if err != nil {
		return err
	}
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Playing light script", "name", s.Name, "steps", len(cues), "loop_ms", s.LoopMs)

	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for pass := 1; ; pass++ {
		start := time.Now()
		for _, cue := range cues {
			if !sleepUntil(ctx, timer, start.Add(time.Duration(cue.AtMs)*time.Millisecond)) {
				return nil
			}
			if !target.SubmitCommand(cue.Command) {
				logger.Warn("Light script command dropped",
					"name", s.Name,
					"at_ms", cue.AtMs,
					"kind", cue.Command.Kind.String())
			}
		}

		if s.LoopMs == 0 {
			logger.Info("Light script finished", "name", s.Name)
			return nil
		}
		if !sleepUntil(ctx, timer, start.Add(time.Duration(s.LoopMs)*time.Millisecond)) {
			return nil
		}
		logger.Debug("Light script looping", "name", s.Name, "pass", pass)
	}
}

// sleepUntil waits for deadline and reports false if ctx ended first.
func sleepUntil(ctx context.Context, timer *time.Timer, deadline time.Time) bool {
	d := time.Until(deadline)
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer.Reset(d)
	select {
	case <-ctx.Done():
		timer.Stop()
		return false
	case <-timer.C:
		return true
	}
}

// Player runs at most one script at a time. Replace stops the current
// playback before starting the next, which lets a file watcher swap scripts
// while the light keeps running.
type Player struct {
	target light.Submitter
	logger *slog.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPlayer creates a player whose playbacks end when ctx does.
func NewPlayer(ctx context.Context, target light.Submitter, logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.Default()
	}
	return &Player{target: target, logger: logger, ctx: ctx}
}

// Replace stops any running script and starts s.
func (p *Player) Replace(s Script) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
		p.wg.Wait()
	}
	if p.ctx.Err() != nil {
		return
	}

	ctx, cancel := context.WithCancel(p.ctx)
	p.cancel = cancel
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := Play(ctx, p.target, s, p.logger); err != nil {
			p.logger.Warn("Light script rejected", "name", s.Name, "error", err)
		}
	}()
}

// Stop cancels the running script and waits for it to return.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.wg.Wait()
}
