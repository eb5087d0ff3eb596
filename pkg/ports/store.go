package ports

import (
	"context"

	"github.com/aretw0/chatflow/pkg/domain"
)

// ConversationStore defines the interface for persisting conversations between turns.
type ConversationStore interface {
	// Save persists the conversation under conv.ID, replacing any previous version.
	Save(ctx context.Context, conv *domain.Conversation) error

	// Load retrieves a conversation by id.
	// Returns domain.ErrConversationNotFound if the conversation does not exist.
	Load(ctx context.Context, conversationID string) (*domain.Conversation, error)

	// Delete removes a conversation. Deleting a missing conversation is not an error.
	Delete(ctx context.Context, conversationID string) error

	// List returns the ids of all stored conversations.
	List(ctx context.Context) ([]string, error)
}
