package storage

import (
	"sync"

	"github.com/aliskhannn/certprep-bot/internal/service"
)

// BilingualStorage provides in-memory storage for bilingual question sets by filter key.
type BilingualStorage struct {
	mu   sync.RWMutex
	sets map[string]*service.BilingualSet
}

// NewBilingualStorage creates a new BilingualStorage.
func NewBilingualStorage() *BilingualStorage {
	return &BilingualStorage{
		sets: make(map[string]*service.BilingualSet),
	}
}

// Get retrieves the set stored under key.
func (s *BilingualStorage) Get(key string) (*service.BilingualSet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.sets[key]
	return set, ok
}

// Store saves a set under key.
func (s *BilingualStorage) Store(key string, set *service.BilingualSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets[key] = set
}

// Clear removes every stored set.
func (s *BilingualStorage) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.sets)
}
