package ports_test

import (
	"context"
	"sort"
	"testing"

	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/ports"
)

// MockStore is a minimal in-memory ConversationStore used to check the contract itself.
type MockStore struct {
	data map[string]domain.Conversation
}

func NewMockStore() *MockStore {
	return &MockStore{data: make(map[string]domain.Conversation)}
}

func (m *MockStore) Save(ctx context.Context, conv *domain.Conversation) error {
	m.data[conv.ID] = conv.Clone()
	return nil
}

func (m *MockStore) Load(ctx context.Context, id string) (*domain.Conversation, error) {
	conv, ok := m.data[id]
	if !ok {
		return nil, domain.ErrConversationNotFound
	}
	out := conv.Clone()
	return &out, nil
}

func (m *MockStore) Delete(ctx context.Context, id string) error {
	delete(m.data, id)
	return nil
}

func (m *MockStore) List(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(m.data))
	for id := range m.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func TestMockStore_Contract(t *testing.T) {
	ports.RunConversationStoreContract(t, NewMockStore())
}
