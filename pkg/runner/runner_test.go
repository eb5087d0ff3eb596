package runner_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/chatflow/internal/runtime"
	"github.com/aretw0/chatflow/internal/testutils"
	"github.com/aretw0/chatflow/pkg/adapters/memory"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/ports"
	"github.com/aretw0/chatflow/pkg/runner"
	"github.com/aretw0/chatflow/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedHandler replays fixed inputs and records every turn.
type scriptedHandler struct {
	inputs []string
	turns  []runner.Turn
	system []string
}

func (h *scriptedHandler) Output(_ context.Context, turn runner.Turn) error {
	h.turns = append(h.turns, turn)
	return nil
}

func (h *scriptedHandler) Input(_ context.Context) (string, error) {
	if len(h.inputs) == 0 {
		return "", io.EOF
	}
	next := h.inputs[0]
	h.inputs = h.inputs[1:]
	return next, nil
}

func (h *scriptedHandler) SystemOutput(_ context.Context, msg string) error {
	h.system = append(h.system, msg)
	return nil
}

func (h *scriptedHandler) texts() []string {
	var out []string
	for _, turn := range h.turns {
		for _, m := range turn.Messages {
			out = append(out, m.Text)
		}
	}
	return out
}

func newInterpreter(t *testing.T) ports.Interpreter {
	t.Helper()
	provider, err := memory.NewFromDocuments([]domain.FlowDocument{ports.ContractDocument()})
	require.NoError(t, err)
	return runtime.NewEngine(provider, runtime.WithIDGenerator(testutils.SequentialIDs()))
}

func TestRunner_RunsUntilEnded(t *testing.T) {
	h := &scriptedHandler{inputs: []string{"hi", "YES", "never read"}}
	r := runner.NewRunner(runner.WithInputHandler(h))

	err := r.Run(context.Background(), newInterpreter(t), ports.ContractFlowID)
	require.NoError(t, err)

	require.Len(t, h.turns, 3)
	assert.Equal(t, []string{"never read"}, h.inputs, "runner must stop reading once the flow ends")
	assert.Equal(t, domain.StatusWaiting, h.turns[0].Status)
	assert.Equal(t, "ask", h.turns[0].CurrentNodeID)
	assert.Equal(t, domain.StatusEnded, h.turns[2].Status)

	texts := h.texts()
	assert.Equal(t, "Continue?", texts[0])
	assert.Contains(t, texts, "Great")
	assert.NotContains(t, texts, "Bye")
	assert.NotContains(t, texts, "hi", "user messages are not echoed")
}

func TestRunner_EOFIsNotAnError(t *testing.T) {
	h := &scriptedHandler{}
	r := runner.NewRunner(runner.WithInputHandler(h))

	err := r.Run(context.Background(), newInterpreter(t), ports.ContractFlowID)
	require.NoError(t, err)
	require.Len(t, h.turns, 1)
	assert.Equal(t, domain.StatusWaiting, h.turns[0].Status)
}

func TestRunner_TextHandler(t *testing.T) {
	out := &bytes.Buffer{}
	h := runner.NewTextHandler(strings.NewReader("hi\nno\n"), out)
	r := runner.NewRunner(runner.WithInputHandler(h))

	require.NoError(t, r.Run(context.Background(), newInterpreter(t), ports.ContractFlowID))

	assert.Contains(t, out.String(), "Continue?\n> ")
	assert.Contains(t, out.String(), "Bye\n")
	assert.NotContains(t, out.String(), "Great")
}

func TestRunner_UnknownFlowEndsWithMessage(t *testing.T) {
	h := &scriptedHandler{}
	r := runner.NewRunner(runner.WithInputHandler(h))

	require.NoError(t, r.Run(context.Background(), newInterpreter(t), "missing"))
	require.Len(t, h.turns, 1)
	assert.Equal(t, domain.StatusEnded, h.turns[0].Status)
	assert.Len(t, h.turns[0].Messages, 1)
}

func TestRunner_WithSessions_Resumes(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	sessions := session.NewManager(store)
	interp := newInterpreter(t)

	first := &scriptedHandler{inputs: []string{"hi"}}
	r := runner.NewRunner(
		runner.WithInputHandler(first),
		runner.WithSessions(sessions),
		runner.WithConversationID("c1"),
	)
	require.NoError(t, r.Run(ctx, interp, ports.ContractFlowID))

	conv, err := store.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "check", conv.State.CurrentNodeID)

	second := &scriptedHandler{inputs: []string{"no"}}
	r = runner.NewRunner(
		runner.WithInputHandler(second),
		runner.WithSessions(sessions),
		runner.WithConversationID("c1"),
	)
	require.NoError(t, r.Run(ctx, interp, ports.ContractFlowID))

	require.Len(t, second.system, 1)
	assert.Contains(t, second.system[0], "Resuming conversation c1")
	assert.Contains(t, second.texts(), "Continue?", "history is replayed on resume")
	assert.Contains(t, second.texts(), "Bye")

	conv, err = store.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusEnded, conv.Status())
}

func TestRunner_WithSessions_EndedConversationRestarts(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Save(ctx, &domain.Conversation{
		ID:     "c1",
		FlowID: ports.ContractFlowID,
		State:  domain.ConversationState{Messages: []domain.Message{{ID: "old", Text: "done", Sender: domain.SenderBot}}},
	}))

	h := &scriptedHandler{}
	r := runner.NewRunner(
		runner.WithInputHandler(h),
		runner.WithSessions(session.NewManager(store)),
		runner.WithConversationID("c1"),
	)
	require.NoError(t, r.Run(ctx, newInterpreter(t), ports.ContractFlowID))

	assert.Empty(t, h.system)
	assert.Equal(t, []string{"Continue?"}, h.texts())
}

func TestRunner_WithSessions_RequiresConversationID(t *testing.T) {
	r := runner.NewRunner(
		runner.WithInputHandler(&scriptedHandler{}),
		runner.WithSessions(session.NewManager(memory.NewStore())),
	)
	err := r.Run(context.Background(), newInterpreter(t), ports.ContractFlowID)
	assert.Error(t, err)
}
