package matchmaking

import (
	"context"
	"sync"
)

// MemoryStore is an in-process UserStore. It backs tests and local runs
// without a database.
type MemoryStore struct {
	mu    sync.RWMutex
	attrs map[UserID]Attributes
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{attrs: make(map[UserID]Attributes)}
}

// Put replaces user's attributes.
func (s *MemoryStore) Put(user UserID, attrs Attributes) {
	s.mu.Lock()
	defer s.mu.Unlock()
	attrs.BlockList = append([]UserID(nil), attrs.BlockList...)
	s.attrs[user] = attrs
}

// GetAttributes returns a copy of user's attributes. Unknown users get an
// Any profile.
func (s *MemoryStore) GetAttributes(_ context.Context, user UserID) (Attributes, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.attrs[user]
	if !ok {
		return Attributes{Category: CategoryAny}, nil
	}
	a.BlockList = append([]UserID(nil), a.BlockList...)
	return a, nil
}

func (s *MemoryStore) AddBlock(_ context.Context, user, target UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.attrs[user]
	if !ok {
		a = Attributes{Category: CategoryAny}
	}
	if a.blocks(target) {
		return nil
	}
	a.BlockList = append(a.BlockList, target)
	s.attrs[user] = a
	return nil
}

func (s *MemoryStore) IncrementKarma(_ context.Context, user UserID, positive bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.attrs[user]
	if !ok {
		a = Attributes{Category: CategoryAny}
	}
	if positive {
		a.Karma++
	} else {
		a.Karma--
	}
	s.attrs[user] = a
	return nil
}
