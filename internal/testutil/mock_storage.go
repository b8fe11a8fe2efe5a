// mock_storage.go - Mock layout storage implementation for testing
package testutil

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gauge-designer/backend/internal/models"
	"github.com/gauge-designer/backend/internal/storage"
)

// MockStorage implements storage.Store for testing
type MockStorage struct {
	layouts map[string]*models.LayoutInfo
	data    map[string][]byte
	mu      sync.RWMutex
}

// NewMockStorage creates a new mock layout storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		layouts: make(map[string]*models.LayoutInfo),
		data:    make(map[string][]byte),
	}
}

func (m *MockStorage) Save(name string, data []byte, elementCount int) (*models.LayoutInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := generateTestID()
	info := &models.LayoutInfo{
		ID:           id,
		Name:         name,
		Size:         int64(len(data)),
		SavedAt:      time.Now(),
		ElementCount: elementCount,
	}

	m.layouts[id] = info
	m.data[id] = data
	return info, nil
}

func (m *MockStorage) Get(id string) (*models.LayoutInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	info, ok := m.layouts[id]
	if !ok {
		return nil, errors.New("layout not found")
	}
	return info, nil
}

func (m *MockStorage) Read(id string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.data[id]
	if !ok {
		return nil, errors.New("layout not found")
	}
	return data, nil
}

func (m *MockStorage) List(limit int) ([]*models.LayoutInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var layouts []*models.LayoutInfo
	for _, info := range m.layouts {
		layouts = append(layouts, info)
		if limit > 0 && len(layouts) >= limit {
			break
		}
	}
	return layouts, nil
}

func (m *MockStorage) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.layouts[id]; !exists {
		return errors.New("layout not found")
	}

	delete(m.layouts, id)
	delete(m.data, id)
	return nil
}

func (m *MockStorage) Rename(id string, newName string) (*models.LayoutInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	info, ok := m.layouts[id]
	if !ok {
		return nil, errors.New("layout not found")
	}

	info.Name = newName
	return info, nil
}

// Ensure MockStorage implements storage.Store
var _ storage.Store = (*MockStorage)(nil)

// Test Helper Methods

// AddLayout adds a saved layout directly to the mock
func (m *MockStorage) AddLayout(id string, name string, data []byte, elementCount int) *models.LayoutInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	info := &models.LayoutInfo{
		ID:           id,
		Name:         name,
		Size:         int64(len(data)),
		SavedAt:      time.Now(),
		ElementCount: elementCount,
	}
	m.layouts[id] = info
	m.data[id] = data
	return info
}

// LayoutCount returns the number of stored layouts
func (m *MockStorage) LayoutCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.layouts)
}

// Clear removes all layouts
func (m *MockStorage) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.layouts = make(map[string]*models.LayoutInfo)
	m.data = make(map[string][]byte)
}

// generateTestID generates a simple test ID
var testIDCounter int
var testIDMutex sync.Mutex

func generateTestID() string {
	testIDMutex.Lock()
	defer testIDMutex.Unlock()
	testIDCounter++
	return fmt.Sprintf("test-id-%d", testIDCounter)
}
