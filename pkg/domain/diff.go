package domain

// StateDiff represents the changes between two conversation states.
// It is designed to be serialized to JSON for partial updates on the client.
type StateDiff struct {
	// ConversationID is always present to identify the target.
	ConversationID string `json:"conversation_id"`

	CurrentNodeID *string `json:"current_node_id,omitempty"`
	Status        *Status `json:"status,omitempty"`

	// Appended contains the messages added since the old state.
	// Transcripts are append-only; a shorter or rewritten transcript sends everything.
	Appended []Message `json:"appended,omitempty"`

	// Reset is set when the new transcript does not extend the old one.
	Reset bool `json:"reset,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
// It returns nil when nothing changed.
func Diff(conversationID string, oldState, newState *ConversationState) *StateDiff {
	if newState == nil {
		return nil
	}

	diff := &StateDiff{ConversationID: conversationID}

	newStatus := newState.Status()
	if oldState == nil || oldState.CurrentNodeID != newState.CurrentNodeID {
		diff.CurrentNodeID = &newState.CurrentNodeID
	}
	if oldState == nil || oldState.Status() != newStatus {
		diff.Status = &newStatus
	}

	diff.Appended, diff.Reset = diffMessages(oldState, newState)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffMessages(old, new *ConversationState) ([]Message, bool) {
	if old == nil {
		if len(new.Messages) == 0 {
			return nil, false
		}
		return new.Messages, false
	}

	if len(new.Messages) < len(old.Messages) {
		return new.Messages, true
	}
	for i := range old.Messages {
		if old.Messages[i].ID != new.Messages[i].ID {
			return new.Messages, true
		}
	}
	if len(new.Messages) == len(old.Messages) {
		return nil, false
	}
	return new.Messages[len(old.Messages):], false
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.CurrentNodeID == nil &&
		d.Status == nil &&
		len(d.Appended) == 0 &&
		!d.Reset
}
