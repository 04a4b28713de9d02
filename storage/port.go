package storage

import "sync"

// Port is the key-value contract session state is persisted through. It is
// the Go rendition of origin-scoped browser storage: reads that fail for any
// ambient reason report absence, writes and removals are best effort and
// never return errors to the caller. Last write wins; no further concurrency
// contract is offered.
type Port interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Remove(key string)
}

// Memory is an in-process Port used for tests and ephemeral sessions that
// should not survive a restart.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewMemory() *Memory {
	return &Memory{entries: map[string]string{}}
}

func (m *Memory) Get(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.entries[key]
	return value, ok
}

func (m *Memory) Set(key, value string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == nil {
		m.entries = map[string]string{}
	}
	m.entries[key] = value
}

func (m *Memory) Remove(key string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

var _ Port = (*Memory)(nil)
