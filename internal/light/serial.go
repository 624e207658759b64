package light

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/tarm/serial"
)

// Tower light command bytes. The tower has no orange lamp; yellow stands in.
const (
	cmdGreenOn   byte = 0x14
	cmdGreenOff  byte = 0x24
	cmdYellowOn  byte = 0x12
	cmdYellowOff byte = 0x22
)

// towerLine drives one lamp of a USB serial tower light. The tower cannot be
// read back, so Read reports the last level written successfully.
type towerLine struct {
	mu    *sync.Mutex
	w     io.Writer
	on    byte
	off   byte
	level bool
}

func (t *towerLine) Write(level bool) error {
	cmd := t.off
	if level {
		cmd = t.on
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.w.Write([]byte{cmd}); err != nil {
		return fmt.Errorf("failed to send tower command 0x%02x: %w", cmd, err)
	}
	t.level = level
	return nil
}

func (t *towerLine) Read() (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.level, nil
}

// newTowerOutputs maps green and orange onto a tower light reachable through w.
func newTowerOutputs(w io.Writer) Outputs {
	mu := &sync.Mutex{}
	return Outputs{
		Green:  &towerLine{mu: mu, w: w, on: cmdGreenOn, off: cmdGreenOff},
		Orange: &towerLine{mu: mu, w: w, on: cmdYellowOn, off: cmdYellowOff},
	}
}

// openSerial opens the tower light port. The port stays open for the life of
// the outputs and is released by Outputs.Close.
func openSerial(port string, baud int) (Outputs, error) {
	p, err := serial.OpenPort(&serial.Config{
		Name:        port,
		Baud:        baud,
		ReadTimeout: time.Second,
	})
	if err != nil {
		return Outputs{}, fmt.Errorf("failed to open serial port %s: %w", port, err)
	}
	out := newTowerOutputs(p)
	out.closers = append(out.closers, p)
	return out, nil
}
