package processor

import (
	"context"
	"errors"
	"sync"
)

// ErrItemNotFound is returned by an ItemStore when the owner has no
// item with the given identifier.
var ErrItemNotFound = errors.New("processor: item not found")

// ItemStore resolves an item identifier to its content for a given
// owner. The engine itself never inspects content; only concrete
// processors do.
type ItemStore interface {
	Content(ctx context.Context, ownerID, itemID string) ([]byte, error)
}

// MemStore is an in-memory ItemStore keyed by owner and item.
// Safe for concurrent use. Intended for tests and development.
type MemStore struct {
	mu    sync.RWMutex
	items map[string]map[string][]byte
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{items: make(map[string]map[string][]byte)}
}

// Put stores content for the given owner and item, replacing any
// previous content.
func (s *MemStore) Put(ownerID, itemID string, content []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	owned, ok := s.items[ownerID]
	if !ok {
		owned = make(map[string][]byte)
		s.items[ownerID] = owned
	}
	owned[itemID] = append([]byte(nil), content...)
}

// Content implements ItemStore.
func (s *MemStore) Content(_ context.Context, ownerID, itemID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	content, ok := s.items[ownerID][itemID]
	if !ok {
		return nil, ErrItemNotFound
	}
	return append([]byte(nil), content...), nil
}
