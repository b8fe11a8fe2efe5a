package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gauge-designer/backend/internal/models"
	"github.com/google/uuid"
)

// Store defines the interface for saved-layout storage.
type Store interface {
	Save(name string, data []byte, elementCount int) (*models.LayoutInfo, error)
	Get(id string) (*models.LayoutInfo, error)
	Read(id string) ([]byte, error)
	List(limit int) ([]*models.LayoutInfo, error)
	Delete(id string) error
	Rename(id string, newName string) (*models.LayoutInfo, error)
}

// LocalStore implements Store using the local filesystem. Layout files
// live under one directory, keyed by generated id.
type LocalStore struct {
	mu         sync.RWMutex
	layoutsDir string
	layouts    map[string]*models.LayoutInfo
}

// NewLocalStore creates a new LocalStore.
func NewLocalStore(layoutsDir string) (*LocalStore, error) {
	if err := os.MkdirAll(layoutsDir, 0755); err != nil {
		return nil, fmt.Errorf("creating layouts directory: %w", err)
	}

	return &LocalStore{
		layoutsDir: layoutsDir,
		layouts:    make(map[string]*models.LayoutInfo),
	}, nil
}

// Save writes serialized layout bytes to disk and records metadata.
func (s *LocalStore) Save(name string, data []byte, elementCount int) (*models.LayoutInfo, error) {
	id := uuid.New().String()
	path := filepath.Join(s.layoutsDir, id+".json")

	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("writing layout file: %w", err)
	}

	info := &models.LayoutInfo{
		ID:           id,
		Name:         name,
		Size:         int64(len(data)),
		SavedAt:      time.Now(),
		ElementCount: elementCount,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.layouts[id] = info

	return info, nil
}

// Get retrieves layout metadata by ID.
func (s *LocalStore) Get(id string) (*models.LayoutInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, ok := s.layouts[id]
	if !ok {
		return nil, fmt.Errorf("layout not found: %s", id)
	}

	return info, nil
}

// Read returns the serialized layout bytes for an id.
func (s *LocalStore) Read(id string) ([]byte, error) {
	s.mu.RLock()
	_, ok := s.layouts[id]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("layout not found: %s", id)
	}

	data, err := os.ReadFile(filepath.Join(s.layoutsDir, id+".json"))
	if err != nil {
		return nil, fmt.Errorf("reading layout file: %w", err)
	}
	return data, nil
}

// List returns the most recently saved layouts.
func (s *LocalStore) List(limit int) ([]*models.LayoutInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var list []*models.LayoutInfo
	for _, info := range s.layouts {
		list = append(list, info)
	}

	// Sort by SavedAt desc
	sort.Slice(list, func(i, j int) bool {
		return list[i].SavedAt.After(list[j].SavedAt)
	})

	if len(list) > limit {
		list = list[:limit]
	}

	return list, nil
}

// Delete removes a saved layout.
func (s *LocalStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.layouts[id]; !ok {
		return fmt.Errorf("layout not found: %s", id)
	}

	path := filepath.Join(s.layoutsDir, id+".json")
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting layout file: %w", err)
	}

	delete(s.layouts, id)

	return nil
}

// Rename updates the display name of a saved layout.
func (s *LocalStore) Rename(id string, newName string) (*models.LayoutInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.layouts[id]
	if !ok {
		return nil, fmt.Errorf("layout not found: %s", id)
	}

	info.Name = newName
	return info, nil
}
