package domain

import (
	"encoding/json"
	"fmt"
)

// NodeType identifies the behavior of a node.
type NodeType string

const (
	// NodeTypeTrigger is the entry point of a flow. It produces no output.
	NodeTypeTrigger NodeType = "trigger"
	// NodeTypeMessage sends a text and continues immediately (soft step).
	NodeTypeMessage NodeType = "message"
	// NodeTypeQuestion sends a prompt and halts waiting for input (hard step).
	NodeTypeQuestion NodeType = "question"
	// NodeTypeCondition halts and branches on the next input (ports true/false).
	NodeTypeCondition NodeType = "condition"

	NodeTypeImage    NodeType = "image"
	NodeTypeVideo    NodeType = "video"
	NodeTypeAudio    NodeType = "audio"
	NodeTypeDocument NodeType = "document"

	// NodeTypeTimeDelay is informational only; no wall-clock time is spent.
	NodeTypeTimeDelay NodeType = "time_delay"
	NodeTypeTemplate  NodeType = "template"

	NodeTypeSetTags          NodeType = "set_tags"
	NodeTypeUpdateAttribute  NodeType = "update_attribute"
	NodeTypeAssignTeam       NodeType = "assign_team"
	NodeTypeAssignUser       NodeType = "assign_user"
	NodeTypeTriggerChatbot   NodeType = "trigger_chatbot"
	NodeTypeUpdateChatStatus NodeType = "update_chat_status"

	// NodeTypeWebhook performs one bounded HTTP call.
	NodeTypeWebhook           NodeType = "webhook"
	NodeTypeGoogleSpreadsheet NodeType = "google_spreadsheet"
)

// IsMedia reports whether the type is one of the media attachment kinds.
func (t NodeType) IsMedia() bool {
	switch t {
	case NodeTypeImage, NodeTypeVideo, NodeTypeAudio, NodeTypeDocument:
		return true
	}
	return false
}

// Node represents a logical unit in the graph.
type Node struct {
	ID     string   `json:"id" yaml:"id" validate:"required"`
	FlowID string   `json:"flow_id,omitempty" yaml:"flow_id,omitempty"`
	Type   NodeType `json:"type" yaml:"type" validate:"required"`

	// Payload holds the type-specific configuration.
	// It is never nil for nodes built through NewNode or decoded from JSON.
	Payload Payload `json:"-" yaml:"-"`
}

// NewNode builds a node, decoding raw configuration into the payload matching nodeType.
func NewNode(id string, nodeType NodeType, data map[string]any) (Node, error) {
	payload, err := DecodePayload(nodeType, data)
	if err != nil {
		return Node{}, fmt.Errorf("node %s: %w", id, err)
	}
	return Node{ID: id, Type: nodeType, Payload: payload}, nil
}

// MustNode is like NewNode but panics on error. Intended for tests and static fixtures.
func MustNode(id string, nodeType NodeType, data map[string]any) Node {
	n, err := NewNode(id, nodeType, data)
	if err != nil {
		panic(err)
	}
	return n
}

// nodeWire is the decoding form of a Node. The payload travels as a plain map under "data".
type nodeWire struct {
	ID     string         `json:"id"`
	FlowID string         `json:"flow_id,omitempty"`
	Type   NodeType       `json:"type"`
	Data   map[string]any `json:"data,omitempty"`
}

// MarshalJSON encodes the payload as a "data" object next to the node identity.
func (n Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID     string   `json:"id"`
		FlowID string   `json:"flow_id,omitempty"`
		Type   NodeType `json:"type"`
		Data   Payload  `json:"data,omitempty"`
	}{ID: n.ID, FlowID: n.FlowID, Type: n.Type, Data: n.Payload})
}

// UnmarshalJSON decodes the "data" object into the payload matching the node type.
// When the top-level type is missing, "data.type" is used (the editor's storage layout).
func (n *Node) UnmarshalJSON(b []byte) error {
	var w nodeWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	nodeType := w.Type
	if nodeType == "" {
		if t, ok := w.Data["type"].(string); ok {
			nodeType = NodeType(t)
		}
	}
	payload, err := DecodePayload(nodeType, w.Data)
	if err != nil {
		return fmt.Errorf("node %s: %w", w.ID, err)
	}
	*n = Node{ID: w.ID, FlowID: w.FlowID, Type: nodeType, Payload: payload}
	return nil
}
