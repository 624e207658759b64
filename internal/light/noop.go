package light

import "log/slog"

// noopLine stands in on hosts without a usable light. It logs writes at
// debug and remembers the level so Read stays consistent.
type noopLine struct {
	name   string
	level  bool
	logger *slog.Logger
}

func newNoopLine(name string, logger *slog.Logger) *noopLine {
	return &noopLine{name: name, logger: logger}
}

func (n *noopLine) Write(level bool) error {
	n.level = level
	n.logger.Debug("Light line write (no-op)", "line", n.name, "level", level)
	return nil
}

func (n *noopLine) Read() (bool, error) {
	return n.level, nil
}
