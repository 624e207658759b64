package light

import "sync"

// MemoryLine is an in-process Line that remembers its level and counts
// edges. The simulator and tests drive the controller against it.
type MemoryLine struct {
	mu     sync.Mutex
	level  bool
	writes int
	edges  int
}

// Write sets the level, counting an edge when it changes.
func (m *MemoryLine) Write(level bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if level != m.level {
		m.edges++
	}
	m.level = level
	m.writes++
	return nil
}

// Read returns the current level.
func (m *MemoryLine) Read() (bool, error) {
	return m.Level(), nil
}

// Level returns the current level.
func (m *MemoryLine) Level() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.level
}

// Edges returns the number of level changes written so far.
func (m *MemoryLine) Edges() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.edges
}

// Writes returns the number of Write calls, including ones that kept the level.
func (m *MemoryLine) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// NewMemoryOutputs returns Outputs backed by two fresh memory lines.
func NewMemoryOutputs() (Outputs, *MemoryLine, *MemoryLine) {
	green, orange := &MemoryLine{}, &MemoryLine{}
	return Outputs{Green: green, Orange: orange}, green, orange
}
