package domain

import "time"

// Sender identifies who wrote a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one entry of the conversation transcript.
type Message struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Sender Sender `json:"sender"`
}

// Status is the lifecycle phase of a conversation, derived from its state.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusWaiting    Status = "waiting"
	StatusEnded      Status = "ended"
)

// ConversationState is the caller-owned snapshot threaded through the interpreter.
// The engine never retains it between turns.
type ConversationState struct {
	Messages []Message `json:"messages"`

	// CurrentNodeID is the node the conversation is parked at, awaiting input.
	// Empty means either not started (no messages) or ended.
	CurrentNodeID string `json:"current_node_id,omitempty"`
}

// Status derives the lifecycle phase of the state.
func (s ConversationState) Status() Status {
	switch {
	case s.CurrentNodeID != "":
		return StatusWaiting
	case len(s.Messages) == 0:
		return StatusNotStarted
	default:
		return StatusEnded
	}
}

// Clone returns a copy that shares no memory with s.
func (s ConversationState) Clone() ConversationState {
	out := ConversationState{CurrentNodeID: s.CurrentNodeID}
	if s.Messages != nil {
		out.Messages = make([]Message, len(s.Messages))
		copy(out.Messages, s.Messages)
	}
	return out
}

// BotMessages returns the texts of bot messages in order.
func (s ConversationState) BotMessages() []string {
	var out []string
	for _, m := range s.Messages {
		if m.Sender == SenderBot {
			out = append(out, m.Text)
		}
	}
	return out
}

// Conversation is a persisted ConversationState bound to a flow.
type Conversation struct {
	ID        string            `json:"id"`
	FlowID    string            `json:"flow_id"`
	State     ConversationState `json:"state"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Status derives the lifecycle phase of the conversation.
func (c Conversation) Status() Status {
	return c.State.Status()
}

// Clone returns a deep copy of the conversation.
func (c Conversation) Clone() Conversation {
	c.State = c.State.Clone()
	return c
}
