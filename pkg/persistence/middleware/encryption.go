package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/ports"
)

const (
	// envelopeMessageID marks the single message that carries the sealed state.
	envelopeMessageID = "__encrypted__"
	// SenderSealed is the sender of the envelope message. It never reaches the interpreter.
	SenderSealed domain.Sender = "sealed"
)

// ErrNotEncrypted is returned when a stored conversation carries no envelope.
var ErrNotEncrypted = errors.New("conversation is missing encrypted data envelope")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys are tried in order when the active key cannot decrypt.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.ConversationStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that seals the message history with AES-GCM.
// The conversation id, flow, current node and timestamp stay readable for listing and expiry.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != 32 {
		return nil, errors.New("active key must be 32 bytes (AES-256)")
	}
	for i, k := range config.FallbackKeys {
		if len(k) != 32 {
			return nil, fmt.Errorf("fallback key %d must be 32 bytes (AES-256)", i)
		}
	}
	return func(next ports.ConversationStore) ports.ConversationStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}, nil
}

func (m *encryptionMiddleware) Save(ctx context.Context, conv *domain.Conversation) error {
	plainText, err := json.Marshal(conv.State.Messages)
	if err != nil {
		return fmt.Errorf("failed to marshal messages: %w", err)
	}

	ciphertext, err := encrypt(plainText, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt conversation: %w", err)
	}

	envelope := *conv
	envelope.State = domain.ConversationState{
		CurrentNodeID: conv.State.CurrentNodeID,
		Messages: []domain.Message{{
			ID:     envelopeMessageID,
			Text:   base64.StdEncoding.EncodeToString(ciphertext),
			Sender: SenderSealed,
		}},
	}
	return m.next.Save(ctx, &envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	envelope, err := m.next.Load(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	msgs := envelope.State.Messages
	if len(msgs) != 1 || msgs[0].ID != envelopeMessageID || msgs[0].Sender != SenderSealed {
		return nil, fmt.Errorf("%w: %s", ErrNotEncrypted, conversationID)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(msgs[0].Text)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt conversation %s: %w", conversationID, err)
	}

	var messages []domain.Message
	if err := json.Unmarshal(plainText, &messages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decrypted messages: %w", err)
	}

	conv := *envelope
	conv.State = domain.ConversationState{
		Messages:      messages,
		CurrentNodeID: envelope.State.CurrentNodeID,
	}
	return &conv, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, conversationID string) error {
	return m.next.Delete(ctx, conversationID)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}

	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}

	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	return gcm.Open(nil, nonce, ciphertext[gcm.NonceSize():], nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// ParseKey decodes a base64 AES-256 key.
func ParseKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid encryption key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("invalid encryption key: got %d bytes, want 32", len(key))
	}
	return key, nil
}
