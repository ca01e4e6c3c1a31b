// Package storetest provides an in-process store.Backend for tests.
package storetest

import (
	"context"
	"sync"
)

// MemoryBackend keeps the document bytes in process. It counts writes so
// callers can assert how many times a flow persisted.
type MemoryBackend struct {
	mu      sync.Mutex
	data    []byte
	exists  bool
	saves   int
	saveErr error
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

// NewMemoryBackendWith starts from existing document bytes.
func NewMemoryBackendWith(data []byte) *MemoryBackend {
	return &MemoryBackend{data: append([]byte(nil), data...), exists: true}
}

func (m *MemoryBackend) Load(_ context.Context) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.exists {
		return nil, false, nil
	}
	return append([]byte(nil), m.data...), true, nil
}

func (m *MemoryBackend) Save(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data = append([]byte(nil), data...)
	m.exists = true
	m.saves++
	return nil
}

// Saves reports how many successful writes happened.
func (m *MemoryBackend) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// FailSaves makes every later Save return err; nil restores normal behaviour.
func (m *MemoryBackend) FailSaves(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}
