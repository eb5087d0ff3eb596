package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/chatflow/pkg/domain"
)

// Store implements ports.ConversationStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]domain.Conversation
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]domain.Conversation),
	}
}

// Save persists the conversation in memory.
func (s *Store) Save(ctx context.Context, conv *domain.Conversation) error {
	// Deep copy to ensure isolation, similar to serialization
	copied := conv.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[conv.ID] = copied
	return nil
}

// Load retrieves the conversation from memory.
func (s *Store) Load(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.data[conversationID]
	if !ok {
		return nil, domain.ErrConversationNotFound
	}

	// Copy on read so callers can't mutate store state by pointer
	ret := conv.Clone()
	return &ret, nil
}

// Delete removes the conversation.
func (s *Store) Delete(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, conversationID)
	return nil
}

// List returns stored conversation ids in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
