package services

import "sync"

// MockTokenStore is an in-memory TokenStore for testing
type MockTokenStore struct {
	mu        sync.RWMutex
	token     string
	saveCalls int
	SaveErr   error
	LoadErr   error
}

// NewMockTokenStore creates a mock store preloaded with token ("" for logged out)
func NewMockTokenStore(token string) *MockTokenStore {
	return &MockTokenStore{token: token}
}

// Load returns the stored token
func (m *MockTokenStore) Load() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.LoadErr != nil {
		return "", m.LoadErr
	}
	return m.token, nil
}

// Save stores the token
func (m *MockTokenStore) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveCalls++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.token = token
	return nil
}

// Clear removes the token
func (m *MockTokenStore) Clear() error {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
	return nil
}

// Token returns the stored token (for testing assertions)
func (m *MockTokenStore) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// SaveCalls returns how many times Save was called
func (m *MockTokenStore) SaveCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saveCalls
}
