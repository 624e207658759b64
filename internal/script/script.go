// Package script loads timed command sequences for the switch light and
// plays them against a controller.
package script

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/smazurov/switchlight/internal/light"
)

// ErrInvalidScript wraps every validation failure.
var ErrInvalidScript = errors.New("invalid light script")

// Step submits one command at an offset from the start of the script.
type Step struct {
	AtMs       uint32 `toml:"at_ms"`
	Command    string `toml:"command"`
	RateMs     uint32 `toml:"rate_ms"`
	DurationMs uint32 `toml:"duration_ms"`
}

// Script is a named sequence of steps. With LoopMs set, playback restarts
// every LoopMs milliseconds until cancelled.
type Script struct {
	Name   string `toml:"name"`
	LoopMs uint32 `toml:"loop_ms"`
	Steps  []Step `toml:"step"`
}

// Cue is a validated step, ready to submit.
type Cue struct {
	AtMs    uint32
	Command light.Command
}

// Load reads and validates a script file.
func Load(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("failed to read script: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return Script{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a script document.
func Parse(data []byte) (Script, error) {
	var s Script
	if err := toml.Unmarshal(data, &s); err != nil {
		return Script{}, fmt.Errorf("%w: %w", ErrInvalidScript, err)
	}
	if err := s.Validate(); err != nil {
		return Script{}, err
	}
	return s, nil
}

// Validate checks that every step names a known command, steps are in time
// order, and a loop is longer than the last step.
func (s Script) Validate() error {
	_, err := s.Cues()
	return err
}

// Cues returns the steps as commands, in order.
func (s Script) Cues() ([]Cue, error) {
	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("%w: no steps", ErrInvalidScript)
	}

	cues := make([]Cue, 0, len(s.Steps))
	var last uint32
	for i, step := range s.Steps {
		kind, err := light.ParseKind(step.Command)
		if err != nil {
			return nil, fmt.Errorf("%w: step %d: %w", ErrInvalidScript, i+1, err)
		}
		if step.AtMs < last {
			return nil, fmt.Errorf("%w: step %d at %dms is earlier than the step before it (%dms)",
				ErrInvalidScript, i+1, step.AtMs, last)
		}
		last = step.AtMs
		cues = append(cues, Cue{
			AtMs:    step.AtMs,
			Command: light.Command{Kind: kind, RateMs: step.RateMs, DurationMs: step.DurationMs},
		})
	}

	if s.LoopMs != 0 && s.LoopMs <= last {
		return nil, fmt.Errorf("%w: loop_ms %d must exceed the last step at %dms", ErrInvalidScript, s.LoopMs, last)
	}
	return cues, nil
}

// LengthMs is the time covered by one pass: the loop length when looping,
// otherwise the end of the longest-running timed step.
func (s Script) LengthMs() uint32 {
	if s.LoopMs != 0 {
		return s.LoopMs
	}
	var end uint32
	for _, step := range s.Steps {
		if e := step.AtMs + step.DurationMs; e > end {
			end = e
		}
	}
	return end
}
