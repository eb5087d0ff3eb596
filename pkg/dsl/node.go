package dsl

import (
	"encoding/json"

	"github.com/aretw0/chatflow/pkg/domain"
)

// NodeBuilder provides a fluent API for configuring a node and its outgoing edges.
type NodeBuilder struct {
	node    domain.NodeDocument
	builder *Builder
}

// Trigger adds the entry node of the flow.
func (b *Builder) Trigger(id string) *NodeBuilder {
	return b.Add(id, domain.NodeTypeTrigger, nil)
}

// Message adds a node that sends text and continues (soft step).
func (b *Builder) Message(id, text string) *NodeBuilder {
	return b.Add(id, domain.NodeTypeMessage, map[string]any{"message": text})
}

// Question adds a node that sends a prompt and waits for input (hard step).
func (b *Builder) Question(id, text string) *NodeBuilder {
	return b.Add(id, domain.NodeTypeQuestion, map[string]any{"question": text})
}

// Condition adds a node that compares the next input against value.
func (b *Builder) Condition(id string, op domain.Operator, value string) *NodeBuilder {
	return b.Add(id, domain.NodeTypeCondition, map[string]any{
		"condition": map[string]any{"operator": string(op), "value": value},
	})
}

// Media adds an image, video, audio or document node.
func (b *Builder) Media(id string, kind domain.NodeType, url string) *NodeBuilder {
	return b.Add(id, kind, map[string]any{"url": url})
}

// Webhook adds a node that performs an HTTP call.
func (b *Builder) Webhook(id, url string) *NodeBuilder {
	return b.Add(id, domain.NodeTypeWebhook, map[string]any{"url": url})
}

// Delay adds an informational time delay node.
func (b *Builder) Delay(id string, minutes, seconds int) *NodeBuilder {
	return b.Add(id, domain.NodeTypeTimeDelay, map[string]any{"minutes": minutes, "seconds": seconds})
}

func (n *NodeBuilder) set(key string, value any) *NodeBuilder {
	if n.node.Data == nil {
		n.node.Data = make(map[string]any)
	}
	n.node.Data[key] = value
	return n
}

// SaveTo names the attribute a question's answer is meant for.
func (n *NodeBuilder) SaveTo(attribute string) *NodeBuilder {
	return n.set("saveAttribute", attribute)
}

// Caption sets the caption of a media node.
func (n *NodeBuilder) Caption(caption string) *NodeBuilder {
	return n.set("caption", caption)
}

// Method sets the HTTP method of a webhook node.
func (n *NodeBuilder) Method(method string) *NodeBuilder {
	return n.set("method", method)
}

// Headers sets the request headers of a webhook node.
func (n *NodeBuilder) Headers(headers map[string]string) *NodeBuilder {
	raw, _ := json.Marshal(headers)
	return n.set("headers", string(raw))
}

// Body sets the raw request body of a webhook node.
func (n *NodeBuilder) Body(body string) *NodeBuilder {
	return n.set("body", body)
}

// Go adds an unconditional edge to the target node.
func (n *NodeBuilder) Go(target string) *NodeBuilder {
	n.builder.connect(n.node.ID, target, domain.PortNone)
	return n
}

// True adds the edge followed when a condition holds.
func (n *NodeBuilder) True(target string) *NodeBuilder {
	n.builder.connect(n.node.ID, target, domain.PortTrue)
	return n
}

// False adds the edge followed when a condition does not hold.
func (n *NodeBuilder) False(target string) *NodeBuilder {
	n.builder.connect(n.node.ID, target, domain.PortFalse)
	return n
}

// Document returns the underlying node document.
func (n *NodeBuilder) Document() domain.NodeDocument {
	return n.node
}
