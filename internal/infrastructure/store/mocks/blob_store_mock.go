package mocks

import (
	"context"
	"sync"
)

// MockBlobStore is a mock implementation of store.BlobStore for testing
type MockBlobStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	// For tracking calls in tests
	SetCalls []SetCall
	GetCalls []string
	SetErr   error
	GetErr   error
}

// SetCall records parameters passed to Set
type SetCall struct {
	Key   string
	Value []byte
}

// NewMockBlobStore creates a new MockBlobStore
func NewMockBlobStore() *MockBlobStore {
	return &MockBlobStore{
		data:     make(map[string][]byte),
		SetCalls: make([]SetCall, 0),
	}
}

func (m *MockBlobStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetCalls = append(m.GetCalls, key)
	if m.GetErr != nil {
		return nil, false, m.GetErr
	}
	value, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

func (m *MockBlobStore) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	m.SetCalls = append(m.SetCalls, SetCall{Key: key, Value: stored})

	if m.SetErr != nil {
		return m.SetErr
	}
	m.data[key] = stored
	return nil
}

// Seed stores a value directly without recording a call
func (m *MockBlobStore) Seed(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

// Value returns what is currently stored under key
func (m *MockBlobStore) Value(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

// LastSet returns the most recent Set call
func (m *MockBlobStore) LastSet() (SetCall, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.SetCalls) == 0 {
		return SetCall{}, false
	}
	return m.SetCalls[len(m.SetCalls)-1], true
}

// Reset clears all data and recorded calls
func (m *MockBlobStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string][]byte)
	m.SetCalls = make([]SetCall, 0)
	m.GetCalls = nil
	m.SetErr = nil
	m.GetErr = nil
}
