package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"testing"

	"github.com/aretw0/chatflow/pkg/adapters/memory"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/persistence/middleware"
	"github.com/aretw0/chatflow/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func secretConversation(id string) *domain.Conversation {
	return &domain.Conversation{
		ID:     id,
		FlowID: "welcome",
		State: domain.ConversationState{
			Messages: []domain.Message{
				{ID: "m1", Text: "What is your card number?", Sender: domain.SenderBot},
				{ID: "m2", Text: "4111-1111-1111-1111", Sender: domain.SenderUser},
			},
			CurrentNodeID: "check",
		},
	}
}

func encrypted(t *testing.T, cfg middleware.EncryptionConfig) middleware.Middleware {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return mw
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	store := encrypted(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)})(memory.NewStore())
	ports.RunConversationStoreContract(t, store)
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	secure := encrypted(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	ctx := context.Background()

	require.NoError(t, secure.Save(ctx, secretConversation("c1")))

	stored, err := underlying.Load(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, stored.State.Messages, 1)
	assert.Equal(t, middleware.SenderSealed, stored.State.Messages[0].Sender)
	assert.NotContains(t, stored.State.Messages[0].Text, "4111")
	assert.Equal(t, "check", stored.State.CurrentNodeID, "current node stays readable")
	assert.Equal(t, "welcome", stored.FlowID)

	loaded, err := secure.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, secretConversation("c1").State, loaded.State)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	ctx := context.Background()

	oldStore := encrypted(t, middleware.EncryptionConfig{ActiveKey: oldKey})(underlying)
	require.NoError(t, oldStore.Save(ctx, secretConversation("c1")))

	newStore := encrypted(t, middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlying)

	loaded, err := newStore.Load(ctx, "c1")
	require.NoError(t, err, "fallback key decrypts old data")
	assert.Len(t, loaded.State.Messages, 2)

	require.NoError(t, newStore.Save(ctx, loaded))

	_, err = oldStore.Load(ctx, "c1")
	assert.Error(t, err, "old key alone cannot read data sealed with the new key")
}

func TestEncryptionMiddleware_PlainConversationIsRejected(t *testing.T) {
	underlying := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, underlying.Save(ctx, secretConversation("plain")))

	secure := encrypted(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	_, err := secure.Load(ctx, "plain")
	assert.ErrorIs(t, err, middleware.ErrNotEncrypted)

	_, err = secure.Load(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrConversationNotFound)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.Error(t, err)

	_, err = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    generateKey(t),
		FallbackKeys: [][]byte{[]byte("short")},
	})
	assert.Error(t, err)
}

func TestParseKey(t *testing.T) {
	key := generateKey(t)
	got, err := middleware.ParseKey(base64.StdEncoding.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, key, got)

	_, err = middleware.ParseKey("not base64!")
	assert.Error(t, err)

	_, err = middleware.ParseKey(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.Error(t, err)
}
