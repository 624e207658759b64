package script

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/smazurov/switchlight/internal/light"
)

type recorder struct {
	mu     sync.Mutex
	cmds   []light.Command
	reject bool
}

func (r *recorder) SubmitCommand(cmd light.Command) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cmds = append(r.cmds, cmd)
	return !r.reject
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cmds)
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func shortScript(loopMs uint32) Script {
	return Script{
		Name:   "short",
		LoopMs: loopMs,
		Steps: []Step{
			{AtMs: 0, Command: "flash_green", RateMs: 100},
			{AtMs: 20, Command: "flash_orange"},
			{AtMs: 40, Command: "lights_off"},
		},
	}
}

func TestPlay_SubmitsInOrder(t *testing.T) {
	rec := &recorder{}
	start := time.Now()
	if err := Play(context.Background(), rec, shortScript(0), quiet()); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("Play() returned after %s, want at least 40ms", elapsed)
	}

	want := []light.Kind{light.KindFlashGreen, light.KindFlashOrange, light.KindLightsOff}
	if len(rec.cmds) != len(want) {
		t.Fatalf("submitted %d commands, want %d", len(rec.cmds), len(want))
	}
	for i, kind := range want {
		if rec.cmds[i].Kind != kind {
			t.Errorf("command %d = %s, want %s", i, rec.cmds[i].Kind, kind)
		}
	}
	if rec.cmds[0].RateMs != 100 {
		t.Errorf("rate = %d, want 100", rec.cmds[0].RateMs)
	}
}

func TestPlay_DroppedCommandsContinue(t *testing.T) {
	rec := &recorder{reject: true}
	if err := Play(context.Background(), rec, shortScript(0), quiet()); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if rec.count() != 3 {
		t.Errorf("attempted %d commands, want 3", rec.count())
	}
}

func TestPlay_LoopUntilCancelled(t *testing.T) {
	rec := &recorder{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Play(ctx, rec, shortScript(60), quiet()) }()

	deadline := time.After(2 * time.Second)
	for rec.count() < 6 {
		select {
		case <-deadline:
			t.Fatalf("only %d commands after 2s", rec.count())
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Play() error = %v, want nil on cancel", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Play() did not return after cancel")
	}
}

func TestPlay_InvalidScript(t *testing.T) {
	err := Play(context.Background(), &recorder{}, Script{}, quiet())
	if !errors.Is(err, ErrInvalidScript) {
		t.Errorf("Play() error = %v, want ErrInvalidScript", err)
	}
}

func TestPlayer_Replace(t *testing.T) {
	rec := &recorder{}
	p := NewPlayer(context.Background(), rec, quiet())
	defer p.Stop()

	slow := Script{Name: "slow", Steps: []Step{
		{AtMs: 0, Command: "flash_orange"},
		{AtMs: 5000, Command: "flash_orange"},
	}}
	p.Replace(slow)

	deadline := time.After(time.Second)
	for rec.count() < 1 {
		select {
		case <-deadline:
			t.Fatal("first script never started")
		case <-time.After(5 * time.Millisecond):
		}
	}

	p.Replace(Script{Name: "fast", Steps: []Step{{AtMs: 0, Command: "flash_green"}}})

	deadline = time.After(time.Second)
	for rec.count() < 2 {
		select {
		case <-deadline:
			t.Fatal("replacement script never ran")
		case <-time.After(5 * time.Millisecond):
		}
	}

	rec.mu.Lock()
	last := rec.cmds[len(rec.cmds)-1]
	rec.mu.Unlock()
	if last.Kind != light.KindFlashGreen {
		t.Errorf("last command = %s, want flash_green", last.Kind)
	}
}

func TestPlayer_StopEndsPlayback(t *testing.T) {
	rec := &recorder{}
	p := NewPlayer(context.Background(), rec, quiet())
	p.Replace(shortScript(60))
	p.Stop()

	n := rec.count()
	time.Sleep(150 * time.Millisecond)
	if rec.count() != n {
		t.Errorf("commands kept arriving after Stop: %d -> %d", n, rec.count())
	}
}
