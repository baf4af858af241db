package state

import (
	"sync"
)

// MockStore provides an in-memory implementation for testing.
type MockStore struct {
	mu      sync.RWMutex
	entries []*Entry

	// Error injection
	AppendError error
}

// NewMockStore creates a mock history store.
func NewMockStore() *MockStore {
	return &MockStore{}
}

// Append records a copy of entry.
func (m *MockStore) Append(entry *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.AppendError != nil {
		return m.AppendError
	}

	// Store a copy to avoid race conditions
	copy := *entry
	m.entries = append(m.entries, &copy)
	return nil
}

// Recent returns the newest entries first.
func (m *MockStore) Recent(limit int) ([]*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 || limit > len(m.entries) {
		limit = len(m.entries)
	}

	result := make([]*Entry, 0, limit)
	for i := len(m.entries) - 1; i >= 0 && len(result) < limit; i-- {
		copy := *m.entries[i]
		result = append(result, &copy)
	}
	return result, nil
}

// Get retrieves an entry by request ID.
func (m *MockStore) Get(requestID string) (*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, e := range m.entries {
		if e.RequestID == requestID {
			copy := *e
			return &copy, nil
		}
	}
	return nil, ErrEntryNotFound
}

// Clear removes all entries.
func (m *MockStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	return nil
}

// Migrate copies entries into target, oldest first.
func (m *MockStore) Migrate(target Store) error {
	m.mu.RLock()
	entries := append([]*Entry(nil), m.entries...)
	m.mu.RUnlock()

	for _, e := range entries {
		if err := target.Append(e); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the store (no-op for mock).
func (m *MockStore) Close() error {
	return nil
}

// Len returns the number of recorded entries.
func (m *MockStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
