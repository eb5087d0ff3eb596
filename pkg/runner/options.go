package runner

import (
	"log/slog"

	"github.com/aretw0/chatflow/pkg/session"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithSessions persists every turn through m under the runner's conversation id.
func WithSessions(m *session.Manager) Option {
	return func(r *Runner) {
		r.Sessions = m
	}
}

// WithConversationID sets the conversation id used for persistence.
func WithConversationID(id string) Option {
	return func(r *Runner) {
		r.ConversationID = id
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithRenderer configures the content renderer used by the default text handler.
func WithRenderer(renderer ContentRenderer) Option {
	return func(r *Runner) {
		r.Renderer = renderer
	}
}
