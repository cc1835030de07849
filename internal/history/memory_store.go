package history

import (
	"context"
	"sync"

	"github.com/vlasenkov/chatscribe/internal/ai"
)

// MemoryStore keeps conversations in process memory. Used in tests and
// when no database is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	turns    map[Scope][]ai.Message
	maxTurns int
}

func NewMemoryStore(maxTurns int) *MemoryStore {
	return &MemoryStore{
		turns:    make(map[Scope][]ai.Message),
		maxTurns: maxTurns,
	}
}

func (s *MemoryStore) Turns(_ context.Context, scope Scope) ([]ai.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.turns[scope]
	out := make([]ai.Message, len(stored))
	copy(out, stored)
	return out, nil
}

func (s *MemoryStore) Append(_ context.Context, scope Scope, turns ...ai.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := append(s.turns[scope], turns...)
	if s.maxTurns > 0 && len(stored) > s.maxTurns {
		stored = stored[len(stored)-s.maxTurns:]
	}
	s.turns[scope] = stored
	return nil
}

func (s *MemoryStore) Reset(_ context.Context, scope Scope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.turns, scope)
	return nil
}
