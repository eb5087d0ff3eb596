package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTurnStart   EventType = "turn_start"
	EventTurnEnd     EventType = "turn_end"
	EventNodeEnter   EventType = "node_enter"
	EventWebhookCall EventType = "webhook_call"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	FlowID    string    `json:"flow_id"`
}

// TurnEvent marks the beginning or the end of an interpreter turn.
type TurnEvent struct {
	EventBase
	// Status is the phase of the state; on turn end it is the resulting phase.
	Status Status `json:"status"`
	// Steps is the number of nodes executed during the turn. Zero on turn start.
	Steps int `json:"steps,omitempty"`
}

// NodeEvent represents entry into a node.
type NodeEvent struct {
	EventBase
	NodeID   string   `json:"node_id"`
	NodeType NodeType `json:"node_type"`
}

// WebhookEvent describes one completed webhook call.
type WebhookEvent struct {
	EventBase
	NodeID   string        `json:"node_id"`
	Method   string        `json:"method"`
	URL      string        `json:"url"`
	Status   int           `json:"status,omitempty"`
	Success  bool          `json:"success"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnTurnStart   func(context.Context, *TurnEvent)
	OnTurnEnd     func(context.Context, *TurnEvent)
	OnNodeEnter   func(context.Context, *NodeEvent)
	OnWebhookCall func(context.Context, *WebhookEvent)
}

// Merge returns hooks that call h first and then other, for every callback either defines.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnTurnStart:   chain(h.OnTurnStart, other.OnTurnStart),
		OnTurnEnd:     chain(h.OnTurnEnd, other.OnTurnEnd),
		OnNodeEnter:   chain(h.OnNodeEnter, other.OnNodeEnter),
		OnWebhookCall: chain(h.OnWebhookCall, other.OnWebhookCall),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
