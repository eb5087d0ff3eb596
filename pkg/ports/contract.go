package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ContractFlowID is the id of the flow described by ContractDocument.
const ContractFlowID = "contract-flow"

// ContractDocument returns the fixture flow every GraphProvider and FlowSource
// contract run is seeded with: a trigger, a question, and a condition branching
// to two messages. The true branch uses the editor handle name.
func ContractDocument() domain.FlowDocument {
	return domain.FlowDocument{
		ID:   ContractFlowID,
		Name: "Contract Flow",
		Nodes: []domain.NodeDocument{
			{ID: "start", Type: "trigger"},
			{ID: "ask", Type: "question", Data: map[string]any{"question": "Continue?"}},
			{ID: "check", Type: "condition", Data: map[string]any{
				"condition": map[string]any{"attribute": "answer", "operator": "equals", "value": "yes"},
			}},
			{ID: "yes", Type: "message", Data: map[string]any{"message": "Great"}},
			{ID: "no", Type: "message", Data: map[string]any{"message": "Bye"}},
		},
		Edges: []domain.EdgeDocument{
			{ID: "e1", Source: "start", Target: "ask"},
			{ID: "e2", Source: "ask", Target: "check"},
			{ID: "e3", Source: "check", Target: "yes", Handle: "source-true"},
			{ID: "e4", Source: "check", Target: "no", Handle: "false"},
		},
	}
}

// RunConversationStoreContract runs a suite of tests to verify that a ConversationStore
// implementation adheres to the defined interface contract.
func RunConversationStoreContract(t *testing.T, store ConversationStore) {
	ctx := context.Background()
	conversationID := "contract-test-conversation-" + time.Now().Format("20060102150405")

	newConversation := func(id string) *domain.Conversation {
		return &domain.Conversation{
			ID:     id,
			FlowID: ContractFlowID,
			State: domain.ConversationState{
				Messages: []domain.Message{
					{ID: "m1", Text: "Continue?", Sender: domain.SenderBot},
					{ID: "m2", Text: "yes", Sender: domain.SenderUser},
				},
				CurrentNodeID: "check",
			},
			UpdatedAt: time.Now().UTC().Truncate(time.Second),
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		conv := newConversation(conversationID)

		err := store.Save(ctx, conv)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, conversationID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, conv.FlowID, loaded.FlowID)
		assert.Equal(t, conv.State, loaded.State)
		assert.True(t, conv.UpdatedAt.Equal(loaded.UpdatedAt), "UpdatedAt should survive persistence")
	})

	t.Run("Load Returns A Copy", func(t *testing.T) {
		conv := newConversation(conversationID + "-copy")
		require.NoError(t, store.Save(ctx, conv))
		defer func() { _ = store.Delete(ctx, conv.ID) }()

		conv.State.Messages[0].Text = "mutated after save"

		loaded, err := store.Load(ctx, conv.ID)
		require.NoError(t, err)
		assert.Equal(t, "Continue?", loaded.State.Messages[0].Text)

		loaded.State.CurrentNodeID = "mutated after load"
		again, err := store.Load(ctx, conv.ID)
		require.NoError(t, err)
		assert.Equal(t, "check", again.State.CurrentNodeID)
	})

	t.Run("Overwrite", func(t *testing.T) {
		conv := newConversation(conversationID)
		conv.State.CurrentNodeID = ""
		require.NoError(t, store.Save(ctx, conv))

		loaded, err := store.Load(ctx, conversationID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusEnded, loaded.Status())
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+conversationID)
		assert.ErrorIs(t, err, domain.ErrConversationNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, newConversation(conversationID))
		require.NoError(t, err)

		err = store.Delete(ctx, conversationID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, conversationID)
		assert.ErrorIs(t, err, domain.ErrConversationNotFound, "Load after Delete should return ErrConversationNotFound")

		assert.NoError(t, store.Delete(ctx, conversationID), "Deleting twice should not fail")
	})

	t.Run("List", func(t *testing.T) {
		id1 := conversationID + "-1"
		id2 := conversationID + "-2"
		_ = store.Save(ctx, newConversation(id1))
		_ = store.Save(ctx, newConversation(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}

// RunGraphProviderContract verifies a GraphProvider serving ContractDocument.
func RunGraphProviderContract(t *testing.T, provider GraphProvider) {
	ctx := context.Background()

	t.Run("GetTrigger", func(t *testing.T) {
		n, err := provider.GetTrigger(ctx, ContractFlowID)
		require.NoError(t, err)
		assert.Equal(t, "start", n.ID)
		assert.Equal(t, domain.NodeTypeTrigger, n.Type)
	})

	t.Run("GetTrigger Unknown Flow", func(t *testing.T) {
		_, err := provider.GetTrigger(ctx, "no-such-flow")
		assert.ErrorIs(t, err, domain.ErrFlowNotFound)
	})

	t.Run("GetNode", func(t *testing.T) {
		n, err := provider.GetNode(ctx, ContractFlowID, "ask")
		require.NoError(t, err)
		assert.Equal(t, domain.QuestionPayload{Question: "Continue?"}, n.Payload)

		_, err = provider.GetNode(ctx, ContractFlowID, "ghost")
		assert.ErrorIs(t, err, domain.ErrNodeNotFound)
	})

	t.Run("GetOutgoingEdge", func(t *testing.T) {
		e, err := provider.GetOutgoingEdge(ctx, ContractFlowID, "start", domain.PortNone)
		require.NoError(t, err)
		assert.Equal(t, "ask", e.Target)

		e, err = provider.GetOutgoingEdge(ctx, ContractFlowID, "check", domain.PortTrue)
		require.NoError(t, err)
		assert.Equal(t, "yes", e.Target)

		e, err = provider.GetOutgoingEdge(ctx, ContractFlowID, "check", domain.PortFalse)
		require.NoError(t, err)
		assert.Equal(t, "no", e.Target)

		_, err = provider.GetOutgoingEdge(ctx, ContractFlowID, "yes", domain.PortNone)
		assert.ErrorIs(t, err, domain.ErrNoEdge)

		_, err = provider.GetOutgoingEdge(ctx, ContractFlowID, "check", domain.PortNone)
		assert.ErrorIs(t, err, domain.ErrNoEdge, "condition edges are only reachable through a port")
	})
}

// RunFlowSourceContract verifies a FlowSource seeded with ContractDocument.
func RunFlowSourceContract(t *testing.T, source FlowSource) {
	ctx := context.Background()

	t.Run("LoadGraph", func(t *testing.T) {
		g, err := source.LoadGraph(ctx, ContractFlowID)
		require.NoError(t, err)
		assert.Equal(t, ContractFlowID, g.Flow.ID)
		assert.Equal(t, "Contract Flow", g.Flow.Name)
		assert.Len(t, g.Nodes, 5)
		assert.Len(t, g.Edges, 4)

		check, ok := g.Node("check")
		require.True(t, ok)
		payload, ok := check.Payload.(domain.ConditionPayload)
		require.True(t, ok, "condition payload expected, got %T", check.Payload)
		require.NotNil(t, payload.Condition)
		assert.Equal(t, domain.OpEquals, payload.Condition.Operator)

		ports := map[string]domain.Port{}
		for _, e := range g.Outgoing("check") {
			ports[e.Target] = e.Port
		}
		assert.Equal(t, map[string]domain.Port{"yes": domain.PortTrue, "no": domain.PortFalse}, ports)
	})

	t.Run("LoadGraph Unknown Flow", func(t *testing.T) {
		_, err := source.LoadGraph(ctx, "no-such-flow")
		assert.ErrorIs(t, err, domain.ErrFlowNotFound)
	})

	t.Run("ListFlows", func(t *testing.T) {
		ids, err := source.ListFlows(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, ContractFlowID)
	})
}
