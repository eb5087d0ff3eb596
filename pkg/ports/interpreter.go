package ports

import (
	"context"
	"net/http"

	"github.com/aretw0/chatflow/pkg/domain"
)

// Interpreter advances a conversation by one turn.
// It never retains state: the returned state is a new value owned by the caller.
type Interpreter interface {
	Run(ctx context.Context, flowID string, state domain.ConversationState, input string) (domain.ConversationState, error)
}

// HTTPDoer is the subset of *http.Client used for outgoing webhook calls.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}
