package session_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/chatflow/pkg/adapters/memory"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/ports"
	"github.com/aretw0/chatflow/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoInterpreter appends the input and a bot reply, and parks at "n".
type echoInterpreter struct {
	active int32
	maxObs int32
}

func (e *echoInterpreter) Run(ctx context.Context, flowID string, state domain.ConversationState, input string) (domain.ConversationState, error) {
	n := atomic.AddInt32(&e.active, 1)
	defer atomic.AddInt32(&e.active, -1)
	for {
		old := atomic.LoadInt32(&e.maxObs)
		if n <= old || atomic.CompareAndSwapInt32(&e.maxObs, old, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)

	next := state.Clone()
	if input != "" {
		next.Messages = append(next.Messages, domain.Message{ID: input, Text: input, Sender: domain.SenderUser})
	}
	next.Messages = append(next.Messages, domain.Message{ID: "r" + input, Text: flowID, Sender: domain.SenderBot})
	next.CurrentNodeID = "n"
	return next, nil
}

type failingInterpreter struct{ err error }

func (f failingInterpreter) Run(ctx context.Context, flowID string, state domain.ConversationState, input string) (domain.ConversationState, error) {
	return state, f.err
}

func TestManager_TurnCreatesAndPersists(t *testing.T) {
	store := memory.NewStore()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mgr := session.NewManager(store, session.WithClock(func() time.Time { return fixed }))
	ctx := context.Background()

	conv, diff, err := mgr.Turn(ctx, &echoInterpreter{}, "c1", "welcome", "")
	require.NoError(t, err)
	assert.Equal(t, "welcome", conv.FlowID)
	assert.Equal(t, fixed, conv.UpdatedAt)
	assert.Equal(t, domain.StatusWaiting, conv.Status())
	require.NotNil(t, diff)
	assert.Len(t, diff.Appended, 1)

	loaded, err := mgr.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, conv.State, loaded.State)

	// Existing conversations can omit the flow id.
	conv, _, err = mgr.Turn(ctx, &echoInterpreter{}, "c1", "", "hi")
	require.NoError(t, err)
	assert.Len(t, conv.State.Messages, 3)
}

func TestManager_TurnErrors(t *testing.T) {
	store := memory.NewStore()
	mgr := session.NewManager(store)
	ctx := context.Background()

	_, _, err := mgr.Turn(ctx, &echoInterpreter{}, "c1", "", "hi")
	assert.ErrorIs(t, err, session.ErrFlowRequired)

	_, _, err = mgr.Turn(ctx, &echoInterpreter{}, "c1", "a", "")
	require.NoError(t, err)
	_, _, err = mgr.Turn(ctx, &echoInterpreter{}, "c1", "b", "")
	assert.ErrorIs(t, err, session.ErrFlowMismatch)

	boom := errors.New("boom")
	_, _, err = mgr.Turn(ctx, failingInterpreter{err: boom}, "c1", "a", "x")
	assert.ErrorIs(t, err, boom)

	loaded, err := mgr.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, loaded.State.Messages, 1, "failed turns are not persisted")
}

func TestManager_TurnsAreSerialized(t *testing.T) {
	store := memory.NewStore()
	mgr := session.NewManager(store)
	interp := &echoInterpreter{}
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := mgr.Turn(ctx, interp, "race", "welcome", "x")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&interp.maxObs))
	conv, err := mgr.Load(ctx, "race")
	require.NoError(t, err)
	assert.Len(t, conv.State.Messages, 20, "no update may be lost")
}

type recordingLocker struct {
	mu       sync.Mutex
	locked   []string
	unlocked int
	err      error
}

func (l *recordingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.mu.Lock()
	l.locked = append(l.locked, key)
	l.mu.Unlock()
	return func(context.Context) error {
		l.mu.Lock()
		l.unlocked++
		l.mu.Unlock()
		return nil
	}, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	locker := &recordingLocker{}
	mgr := session.NewManager(memory.NewStore(), session.WithLocker(locker), session.WithLockTTL(time.Second))
	ctx := context.Background()

	_, _, err := mgr.Turn(ctx, &echoInterpreter{}, "c1", "f", "")
	require.NoError(t, err)
	require.NoError(t, mgr.Delete(ctx, "c1"))

	assert.Equal(t, []string{"c1", "c1"}, locker.locked)
	assert.Equal(t, 2, locker.unlocked)

	locker.err = errors.New("redis down")
	_, _, err = mgr.Turn(ctx, &echoInterpreter{}, "c2", "f", "")
	assert.ErrorContains(t, err, "failed to acquire distributed lock")
}

func TestManager_ListAndDelete(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()

	for _, id := range []string{"b", "a"} {
		require.NoError(t, mgr.Save(ctx, &domain.Conversation{ID: id, FlowID: "f"}))
	}
	ids, err := mgr.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	require.NoError(t, mgr.Delete(ctx, "a"))
	require.NoError(t, mgr.Delete(ctx, "a"))
	_, err = mgr.Load(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrConversationNotFound)
}
