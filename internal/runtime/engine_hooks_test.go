package runtime_test

import (
	"context"
	"testing"

	"github.com/aretw0/chatflow/internal/runtime"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_LifecycleHooks(t *testing.T) {
	var (
		entered []string
		starts  []domain.Status
		ends    []*domain.TurnEvent
	)

	hooks := domain.LifecycleHooks{
		OnTurnStart: func(ctx context.Context, e *domain.TurnEvent) {
			starts = append(starts, e.Status)
		},
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			entered = append(entered, e.NodeID)
			assert.Equal(t, flowID, e.FlowID)
		},
		OnTurnEnd: func(ctx context.Context, e *domain.TurnEvent) {
			ends = append(ends, e)
		},
	}

	eng := newEngine(t, conditionFlow(), runtime.WithLifecycleHooks(hooks))
	ctx := context.Background()

	s1, err := eng.Run(ctx, flowID, domain.ConversationState{}, "")
	require.NoError(t, err)
	_, err = eng.Run(ctx, flowID, s1, "yes")
	require.NoError(t, err)

	assert.Equal(t, []string{"c", "y"}, entered)
	assert.Equal(t, []domain.Status{domain.StatusNotStarted, domain.StatusWaiting}, starts)
	require.Len(t, ends, 2)
	assert.Equal(t, domain.StatusWaiting, ends[0].Status)
	assert.Equal(t, 1, ends[0].Steps)
	assert.Equal(t, domain.StatusEnded, ends[1].Status)
	assert.Equal(t, 1, ends[1].Steps)
}

func TestEngine_HooksSkippedForEndedState(t *testing.T) {
	called := false
	eng := newEngine(t, conditionFlow(), runtime.WithLifecycleHooks(domain.LifecycleHooks{
		OnTurnStart: func(ctx context.Context, e *domain.TurnEvent) { called = true },
	}))

	ended := domain.ConversationState{Messages: []domain.Message{{ID: "1", Text: "bye", Sender: domain.SenderBot}}}
	_, err := eng.Run(context.Background(), flowID, ended, "")
	require.NoError(t, err)
	assert.False(t, called)
}
