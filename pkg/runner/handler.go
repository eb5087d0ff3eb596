package runner

import (
	"context"

	"github.com/aretw0/chatflow/pkg/domain"
)

// Turn is what a handler presents after each interpreter turn.
type Turn struct {
	ConversationID string           `json:"conversation_id,omitempty"`
	Messages       []domain.Message `json:"messages"`
	Status         domain.Status    `json:"status"`
	CurrentNodeID  string           `json:"current_node_id,omitempty"`
}

// IOHandler defines the strategy for interacting with the participant.
// This allows switching between Text (CLI/TUI) and JSON (structured) modes.
type IOHandler interface {
	// Output presents the bot messages produced by one turn.
	Output(ctx context.Context, turn Turn) error

	// Input reads a reply from the participant.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message (status updates, errors) distinct from bot content.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer transforms bot text before it is printed, e.g. markdown to ANSI.
type ContentRenderer func(string) (string, error)
