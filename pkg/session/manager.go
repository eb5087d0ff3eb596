package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/chatflow/internal/logging"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/ports"
)

// DefaultLockTTL is how long a distributed lock outlives a holder that stopped refreshing it.
const DefaultLockTTL = 30 * time.Second

// ErrFlowMismatch is returned when a turn names a flow other than the one the conversation runs.
var ErrFlowMismatch = errors.New("conversation belongs to another flow")

// ErrFlowRequired is returned when a turn would start a conversation without naming its flow.
var ErrFlowRequired = errors.New("flow id is required to start a conversation")

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates conversation access, ensuring turns of the same
// conversation never interleave. It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.ConversationStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithClock replaces time.Now for UpdatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a new conversation Manager with the given store.
func NewManager(store ports.ConversationStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// Turn loads the conversation (creating it on first contact), advances it by one
// turn through interp and persists the result, all under the conversation lock.
// flowID may be empty for an existing conversation. The returned diff is nil when
// the turn changed nothing.
func (m *Manager) Turn(ctx context.Context, interp ports.Interpreter, conversationID, flowID, input string) (*domain.Conversation, *domain.StateDiff, error) {
	var (
		conv *domain.Conversation
		diff *domain.StateDiff
	)
	err := m.WithLock(ctx, conversationID, func(ctx context.Context) error {
		current, err := m.store.Load(ctx, conversationID)
		switch {
		case errors.Is(err, domain.ErrConversationNotFound):
			if flowID == "" {
				return fmt.Errorf("%w: %s", ErrFlowRequired, conversationID)
			}
			current = &domain.Conversation{ID: conversationID, FlowID: flowID}
		case err != nil:
			return fmt.Errorf("failed to load conversation: %w", err)
		case flowID != "" && current.FlowID != flowID:
			return fmt.Errorf("%w: %s runs %s, not %s", ErrFlowMismatch, conversationID, current.FlowID, flowID)
		}

		next, err := interp.Run(ctx, current.FlowID, current.State, input)
		if err != nil {
			return err
		}

		diff = domain.Diff(conversationID, &current.State, &next)
		conv = &domain.Conversation{
			ID:        conversationID,
			FlowID:    current.FlowID,
			State:     next,
			UpdatedAt: m.now().UTC(),
		}
		if err := m.store.Save(ctx, conv); err != nil {
			return fmt.Errorf("failed to save conversation: %w", err)
		}
		m.logger.Debug("turn persisted", "conversation_id", conversationID, "flow_id", conv.FlowID, "status", conv.Status())
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return conv, diff, nil
}

// Load retrieves an existing conversation from the store.
func (m *Manager) Load(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	var conv *domain.Conversation
	err := m.WithLock(ctx, conversationID, func(ctx context.Context) error {
		var err error
		conv, err = m.store.Load(ctx, conversationID)
		return err
	})
	return conv, err
}

// Save persists the conversation.
func (m *Manager) Save(ctx context.Context, conv *domain.Conversation) error {
	return m.WithLock(ctx, conv.ID, func(ctx context.Context) error {
		return m.store.Save(ctx, conv)
	})
}

// Delete removes the conversation from the store.
func (m *Manager) Delete(ctx context.Context, conversationID string) error {
	return m.WithLock(ctx, conversationID, func(ctx context.Context) error {
		return m.store.Delete(ctx, conversationID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying conversation store.
func (m *Manager) Store() ports.ConversationStore {
	return m.store
}

// WithLock executes a function while holding the lock for the conversation.
func (m *Manager) WithLock(ctx context.Context, conversationID string, fn func(context.Context) error) error {
	entry := m.acquire(conversationID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(conversationID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, conversationID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"conversation_id", conversationID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
