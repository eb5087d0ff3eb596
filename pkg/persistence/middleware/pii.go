package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/ports"
)

// Mask replaces every match of a PII pattern in stored user messages.
const Mask = "***"

type piiMiddleware struct {
	next     ports.ConversationStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks matches of the patterns in user messages before saving.
// Bot messages are authored content and are stored as is.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid PII pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.ConversationStore) ports.ConversationStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Save(ctx context.Context, conv *domain.Conversation) error {
	// The caller keeps using its copy, so mask a clone.
	cloned := *conv
	cloned.State = conv.State.Clone()

	for i, msg := range cloned.State.Messages {
		if msg.Sender != domain.SenderUser {
			continue
		}
		for _, p := range m.patterns {
			msg.Text = p.ReplaceAllString(msg.Text, Mask)
		}
		cloned.State.Messages[i] = msg
	}

	return m.next.Save(ctx, &cloned)
}

func (m *piiMiddleware) Load(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	return m.next.Load(ctx, conversationID)
}

func (m *piiMiddleware) Delete(ctx context.Context, conversationID string) error {
	return m.next.Delete(ctx, conversationID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
