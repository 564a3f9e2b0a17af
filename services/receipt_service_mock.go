package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/kendall-kelly/techsupport-client/models"
)

// MockReceiptStore is a mock implementation of ReceiptStore for testing
type MockReceiptStore struct {
	receipts map[string][]byte // map of key to JSON content
	mu       sync.RWMutex
	SaveErr  error
}

// NewMockReceiptStore creates a new mock receipt store
func NewMockReceiptStore() *MockReceiptStore {
	return &MockReceiptStore{
		receipts: make(map[string][]byte),
	}
}

// SaveReceipt simulates uploading a receipt
func (m *MockReceiptStore) SaveReceipt(ctx context.Context, receipt models.Receipt) (string, error) {
	if m.SaveErr != nil {
		return "", m.SaveErr
	}

	content, err := json.Marshal(receipt)
	if err != nil {
		return "", fmt.Errorf("failed to encode receipt: %w", err)
	}

	key := ReceiptKey(receipt.SessionID)
	m.mu.Lock()
	m.receipts[key] = content
	m.mu.Unlock()

	return key, nil
}

// GetReceiptURL simulates generating a presigned URL
func (m *MockReceiptStore) GetReceiptURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}

	m.mu.RLock()
	_, exists := m.receipts[key]
	m.mu.RUnlock()

	if !exists {
		return "", fmt.Errorf("receipt not found in mock store: %s", key)
	}

	return fmt.Sprintf("https://test-bucket.s3.us-east-1.amazonaws.com/%s?mock=true", key), nil
}

// Receipt returns a stored receipt (for testing assertions)
func (m *MockReceiptStore) Receipt(key string) (*models.Receipt, bool) {
	m.mu.RLock()
	content, exists := m.receipts[key]
	m.mu.RUnlock()
	if !exists {
		return nil, false
	}

	var receipt models.Receipt
	if err := json.Unmarshal(content, &receipt); err != nil {
		return nil, false
	}
	return &receipt, true
}

// Count returns how many receipts are stored
func (m *MockReceiptStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.receipts)
}
