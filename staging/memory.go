package staging

import (
	"context"
	"slices"
	"sync"
)

// Memory is an in-memory Store. It is safe for concurrent use and intended
// for tests.
type Memory struct {
	mu      sync.Mutex
	records map[uint64]Record
	puts    int
	err     error
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[uint64]Record)}
}

// Put implements Store.
func (m *Memory) Put(_ context.Context, id uint64, vec []float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records[id] = Record{ID: id, Vector: slices.Clone(vec)}
	m.puts++
	return nil
}

// Get returns the record staged for id.
func (m *Memory) Get(_ context.Context, id uint64) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return Record{ID: r.ID, Vector: slices.Clone(r.Vector)}, nil
}

// Puts returns the number of successful puts.
func (m *Memory) Puts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}

// FailWith makes every following Put return err. Nil restores normal behavior.
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}
