package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/chatflow/pkg/adapters/memory"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIIMiddleware_Masking(t *testing.T) {
	underlying := memory.NewStore()
	mw, err := middleware.NewPIIMiddleware([]string{`\d{4}-\d{4}-\d{4}-\d{4}`, `[\w.]+@[\w.]+`})
	require.NoError(t, err)
	secure := mw(underlying)
	ctx := context.Background()

	conv := secretConversation("c1")
	conv.State.Messages = append(conv.State.Messages,
		domain.Message{ID: "m3", Text: "Email us at help@example.com", Sender: domain.SenderBot},
		domain.Message{ID: "m4", Text: "mine is jdoe@example.com", Sender: domain.SenderUser},
	)

	require.NoError(t, secure.Save(ctx, conv))
	assert.Equal(t, "4111-1111-1111-1111", conv.State.Messages[1].Text, "caller's copy is untouched")

	stored, err := underlying.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "What is your card number?", stored.State.Messages[0].Text)
	assert.Equal(t, middleware.Mask, stored.State.Messages[1].Text)
	assert.Equal(t, "Email us at help@example.com", stored.State.Messages[2].Text, "bot messages are kept")
	assert.Equal(t, "mine is "+middleware.Mask, stored.State.Messages[3].Text)
}

func TestPIIMiddleware_InvalidPattern(t *testing.T) {
	_, err := middleware.NewPIIMiddleware([]string{"("})
	assert.Error(t, err)
}

func TestChain_MaskThenEncrypt(t *testing.T) {
	underlying := memory.NewStore()
	pii, err := middleware.NewPIIMiddleware([]string{`\d{4}-\d{4}-\d{4}-\d{4}`})
	require.NoError(t, err)
	enc := encrypted(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	store := middleware.Chain(underlying, pii, enc)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, secretConversation("c1")))

	loaded, err := store.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, middleware.Mask, loaded.State.Messages[1].Text)

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, ids)

	require.NoError(t, store.Delete(ctx, "c1"))
	_, err = store.Load(ctx, "c1")
	assert.ErrorIs(t, err, domain.ErrConversationNotFound)
}
