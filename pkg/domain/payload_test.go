package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePayload(t *testing.T) {
	t.Run("Weakly typed values", func(t *testing.T) {
		p, err := DecodePayload(NodeTypeTimeDelay, map[string]any{"minutes": "1", "seconds": 30.0})
		require.NoError(t, err)
		assert.Equal(t, 90, p.(TimeDelayPayload).Total())
	})

	t.Run("Condition value as number", func(t *testing.T) {
		p, err := DecodePayload(NodeTypeCondition, map[string]any{
			"condition": map[string]any{"attribute": "age", "operator": "greater_than", "value": 18},
		})
		require.NoError(t, err)
		c := p.(ConditionPayload).Condition
		require.NotNil(t, c)
		assert.Equal(t, OpGreaterThan, c.Operator)
		assert.Equal(t, "18", c.Value)
	})

	t.Run("Missing condition", func(t *testing.T) {
		p, err := DecodePayload(NodeTypeCondition, map[string]any{})
		require.NoError(t, err)
		assert.Nil(t, p.(ConditionPayload).Condition)
	})

	t.Run("Media keeps its kind", func(t *testing.T) {
		p, err := DecodePayload(NodeTypeVideo, map[string]any{"caption": "clip"})
		require.NoError(t, err)
		assert.Equal(t, NodeTypeVideo, p.Kind())
		assert.Equal(t, "clip", p.(MediaPayload).Caption)
	})

	t.Run("Webhook headers given as a map", func(t *testing.T) {
		p, err := DecodePayload(NodeTypeWebhook, map[string]any{
			"url":     "http://x",
			"headers": map[string]any{"X-Key": "k"},
		})
		require.NoError(t, err)
		assert.JSONEq(t, `{"X-Key":"k"}`, p.(WebhookPayload).Headers)
	})

	t.Run("Spreadsheet camelCase keys", func(t *testing.T) {
		p, err := DecodePayload(NodeTypeGoogleSpreadsheet, map[string]any{"action": "append", "sheetName": "Leads"})
		require.NoError(t, err)
		assert.Equal(t, GoogleSpreadsheetPayload{Action: "append", SheetName: "Leads"}, p)
	})

	t.Run("Unknown type is preserved", func(t *testing.T) {
		data := map[string]any{"list": "news"}
		p, err := DecodePayload("subscribe", data)
		require.NoError(t, err)
		assert.Equal(t, UnknownPayload{Type: "subscribe", Data: data}, p)
		assert.Equal(t, NodeType("subscribe"), p.Kind())
	})

	t.Run("Incompatible value", func(t *testing.T) {
		_, err := DecodePayload(NodeTypeMessage, map[string]any{"message": []any{func() {}}})
		assert.Error(t, err)
	})
}

func TestNode_JSON(t *testing.T) {
	t.Run("Type from data", func(t *testing.T) {
		var n Node
		err := json.Unmarshal([]byte(`{"id":"n1","data":{"type":"message","message":"hi","label":"Message"}}`), &n)
		require.NoError(t, err)
		assert.Equal(t, NodeTypeMessage, n.Type)
		assert.Equal(t, MessagePayload{Message: "hi"}, n.Payload)
	})

	t.Run("Round trip", func(t *testing.T) {
		n := MustNode("q1", NodeTypeQuestion, map[string]any{"question": "Name?", "saveAttribute": "name"})
		b, err := json.Marshal(n)
		require.NoError(t, err)

		var back Node
		require.NoError(t, json.Unmarshal(b, &back))
		assert.Equal(t, n, back)
	})
}

func TestFlowDocument_Graph(t *testing.T) {
	doc := FlowDocument{
		ID:   "f1",
		Name: "Demo",
		Nodes: []NodeDocument{
			{ID: "t", Type: "trigger"},
			{ID: "c", Data: map[string]any{"type": "condition", "condition": map[string]any{"operator": "equals", "value": "yes"}}},
		},
		Edges: []EdgeDocument{
			{ID: "e1", Source: "t", Target: "c"},
			{ID: "e2", Source: "c", Target: "t", Handle: "source-true"},
		},
	}

	g, err := doc.Graph()
	require.NoError(t, err)
	assert.Equal(t, "Demo", g.Flow.Name)
	require.Len(t, g.Nodes, 2)
	assert.Equal(t, NodeTypeCondition, g.Nodes[1].Type)
	assert.Equal(t, "f1", g.Nodes[1].FlowID)
	assert.Equal(t, PortNone, g.Edges[0].Port)
	assert.Equal(t, PortTrue, g.Edges[1].Port)

	n, ok := g.Node("c")
	require.True(t, ok)
	assert.Equal(t, "c", n.ID)
	assert.Len(t, g.Outgoing("c"), 1)
	assert.Len(t, g.Incoming("t"), 1)
}
