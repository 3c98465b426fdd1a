package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-bridge/internal/core/ports/driven"
)

var (
	_ driven.KVStore = (*MockKVStore)(nil)
	_ driven.Taker   = (*MockKVStore)(nil)
)

type kvEntry struct {
	value     []byte
	expiresAt time.Time
}

// MockKVStore is an in-memory KVStore with a controllable clock for testing TTLs
type MockKVStore struct {
	mu      sync.Mutex
	entries map[string]kvEntry
	now     time.Time

	// Optional error injection
	SetErr    error
	GetErr    error
	DeleteErr error

	// Call counters
	SetCalls    int
	DeleteCalls int
}

// NewMockKVStore creates a new MockKVStore
func NewMockKVStore() *MockKVStore {
	return &MockKVStore{
		entries: make(map[string]kvEntry),
		now:     time.Now(),
	}
}

// Advance moves the store clock forward, expiring keys whose TTL has elapsed.
func (m *MockKVStore) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

func (m *MockKVStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetCalls++
	if m.SetErr != nil {
		return m.SetErr
	}
	m.entries[key] = kvEntry{
		value:     append([]byte(nil), value...),
		expiresAt: m.now.Add(ttl),
	}
	return nil
}

func (m *MockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.lookup(key), nil
}

func (m *MockKVStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls++
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.entries, key)
	return nil
}

func (m *MockKVStore) Take(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	value := m.lookup(key)
	delete(m.entries, key)
	return value, nil
}

// Has reports whether a live key exists.
func (m *MockKVStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookup(key) != nil
}

// lookup must be called with mu held.
func (m *MockKVStore) lookup(key string) []byte {
	e, ok := m.entries[key]
	if !ok {
		return nil
	}
	if !m.now.Before(e.expiresAt) {
		delete(m.entries, key)
		return nil
	}
	return append([]byte(nil), e.value...)
}

// PlainKVStore hides the Take method so tests can exercise the get-then-delete path.
type PlainKVStore struct {
	driven.KVStore
}
