package storage

import (
	"bytes"
	"sync"
)

// MemoryBackend keeps records in process memory. It backs tests and the
// import dry run.
type MemoryBackend struct {
	mu      sync.Mutex
	records map[string][]byte

	// PutErr, when set, makes every Put fail without writing anything.
	PutErr error
	puts   int
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{records: make(map[string][]byte)}
}

func (m *MemoryBackend) Init() error { return nil }
func (m *MemoryBackend) Load() error { return nil }
func (m *MemoryBackend) Close() error { return nil }

func (m *MemoryBackend) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.records[key]
	if !ok {
		return nil, ErrNotFound
	}
	return bytes.Clone(v), nil
}

func (m *MemoryBackend) Put(records ...Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.PutErr != nil {
		return m.PutErr
	}

	next := make(map[string][]byte, len(m.records)+len(records))
	for k, v := range m.records {
		next[k] = v
	}
	for _, r := range records {
		next[r.Key] = bytes.Clone(r.Value)
	}
	m.records = next
	m.puts++
	return nil
}

// Puts returns the number of successful Put calls.
func (m *MemoryBackend) Puts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}

func (m *MemoryBackend) GetConfigPath() string {
	return ":memory:"
}
