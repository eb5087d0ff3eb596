package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/chatflow"
	"github.com/aretw0/chatflow/internal/testutils"
	"github.com/aretw0/chatflow/pkg/adapters/memory"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/ports"
	"github.com/aretw0/chatflow/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	provider, err := memory.NewFromDocuments([]domain.FlowDocument{ports.ContractDocument()})
	require.NoError(t, err)
	eng, err := chatflow.New("", chatflow.WithGraphProvider(provider), chatflow.WithIDGenerator(testutils.SequentialIDs()))
	require.NoError(t, err)
	return NewServer(eng, session.NewManager(memory.NewStore()))
}

func toolRequest(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestServer_SendMessage(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleSendMessage(ctx, mcp.CallToolRequest{}, SendMessageArgs{ConversationID: "c1"})
	assert.ErrorIs(t, err, session.ErrFlowRequired)

	resp, err := s.handleSendMessage(ctx, mcp.CallToolRequest{}, SendMessageArgs{ConversationID: "c1", FlowID: ports.ContractFlowID})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWaiting, resp.Status)
	assert.Equal(t, "ask", resp.CurrentNodeID)
	require.Len(t, resp.Replies, 1)
	assert.Equal(t, "Continue?", resp.Replies[0].Text)

	resp, err = s.handleSendMessage(ctx, mcp.CallToolRequest{}, SendMessageArgs{ConversationID: "c1", Input: "ok"})
	require.NoError(t, err)
	require.Len(t, resp.Replies, 1, "only the new bot messages are returned")
	assert.Contains(t, resp.Replies[0].Text, "Condition")

	resp, err = s.handleSendMessage(ctx, mcp.CallToolRequest{}, SendMessageArgs{ConversationID: "c1", Input: "no"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusEnded, resp.Status)
	assert.Equal(t, "Bye", resp.Replies[0].Text)

	full, err := s.handleGetConversation(ctx, mcp.CallToolRequest{}, SendMessageArgs{ConversationID: "c1"})
	require.NoError(t, err)
	assert.Len(t, full.Replies, 6)
}

func TestServer_SendMessage_InvalidInput(t *testing.T) {
	s := newTestServer(t)
	_, err := s.handleSendMessage(context.Background(), mcp.CallToolRequest{}, SendMessageArgs{ConversationID: "c1", FlowID: ports.ContractFlowID, Input: "\xff"})
	assert.Error(t, err)

	_, err = s.handleSendMessage(context.Background(), mcp.CallToolRequest{}, SendMessageArgs{})
	assert.Error(t, err)
}

func TestServer_ResetConversation(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleSendMessage(ctx, mcp.CallToolRequest{}, SendMessageArgs{ConversationID: "c1", FlowID: ports.ContractFlowID})
	require.NoError(t, err)

	res, err := s.handleResetConversation(ctx, toolRequest("reset_conversation", map[string]any{"conversation_id": "c1"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "conversation c1 reset", resultText(t, res))

	_, err = s.handleGetConversation(ctx, mcp.CallToolRequest{}, SendMessageArgs{ConversationID: "c1"})
	assert.ErrorIs(t, err, domain.ErrConversationNotFound)

	res, err = s.handleResetConversation(ctx, toolRequest("reset_conversation", nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestServer_GetFlow(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleGetFlow(ctx, toolRequest("get_flow", map[string]any{"flow_id": ports.ContractFlowID}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var g domain.Graph
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &g))
	assert.Equal(t, "Contract Flow", g.Flow.Name)
	assert.Len(t, g.Edges, 4)

	res, err = s.handleGetFlow(ctx, toolRequest("get_flow", map[string]any{"flow_id": "missing"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestServer_ListsTools(t *testing.T) {
	s := newTestServer(t)
	resp := s.MCPServer().HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	for _, name := range []string{"send_message", "get_conversation", "reset_conversation", "get_flow"} {
		assert.Contains(t, string(raw), `"name":"`+name+`"`)
	}
}
