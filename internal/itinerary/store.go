package itinerary

import (
	"context"
	"sync"
)

// MemoryStore keeps assembled itineraries in process memory. Itineraries are
// written once by the completing stage and read many times afterwards.
type MemoryStore struct {
	mu          sync.RWMutex
	itineraries map[string]*Itinerary
}

// NewMemoryStore creates an in-memory itinerary store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{itineraries: make(map[string]*Itinerary)}
}

func (s *MemoryStore) Put(ctx context.Context, it *Itinerary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.itineraries[it.ID] = it
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Itinerary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.itineraries[id]
	if !ok {
		return nil, ErrNotFound
	}
	return it, nil
}
