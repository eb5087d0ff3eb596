package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/chatflow/internal/logging"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/ports"
	"github.com/aretw0/chatflow/pkg/session"
)

// Runner drives a conversation turn by turn using an IOHandler.
type Runner struct {
	// Handler is the strategy for IO. Defaults to a TextHandler on stdin/stdout.
	Handler IOHandler

	// Renderer is applied by the default TextHandler.
	Renderer ContentRenderer

	// Sessions persists turns. If nil, the conversation is ephemeral.
	Sessions *session.Manager

	// ConversationID keys persisted conversations. Required with Sessions.
	ConversationID string

	Logger *slog.Logger
}

// NewRunner creates a Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{Logger: logging.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes flowID until the conversation ends, input is exhausted (EOF),
// or the process is interrupted. Interruption and EOF are not errors.
func (r *Runner) Run(ctx context.Context, interp ports.Interpreter, flowID string) error {
	handler := r.resolveHandler()
	if r.Sessions != nil && r.ConversationID == "" {
		return errors.New("runner: conversation id is required when sessions are enabled")
	}

	signals := NewSignalManager(ctx)
	defer signals.Stop()
	ctx = signals.Context()

	state, err := r.resume(ctx, handler, flowID)
	if err != nil {
		return err
	}

	if state.Status() == domain.StatusNotStarted {
		if state, err = r.turn(ctx, handler, interp, flowID, state, ""); err != nil {
			return r.interrupted(ctx, err)
		}
	}

	for state.Status() != domain.StatusEnded {
		input, err := handler.Input(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				signals.CheckRace()
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			_ = handler.SystemOutput(ctx, err.Error())
			continue
		}

		if state, err = r.turn(ctx, handler, interp, flowID, state, input); err != nil {
			return r.interrupted(ctx, err)
		}
	}
	return nil
}

// resume loads a persisted conversation. Ended conversations start over.
func (r *Runner) resume(ctx context.Context, handler IOHandler, flowID string) (domain.ConversationState, error) {
	if r.Sessions == nil {
		return domain.ConversationState{}, nil
	}

	conv, err := r.Sessions.Load(ctx, r.ConversationID)
	switch {
	case errors.Is(err, domain.ErrConversationNotFound):
		return domain.ConversationState{}, nil
	case err != nil:
		return domain.ConversationState{}, fmt.Errorf("failed to load conversation: %w", err)
	}

	if conv.FlowID != flowID || conv.Status() == domain.StatusEnded {
		r.Logger.Debug("discarding stored conversation", "conversation_id", conv.ID, "flow_id", conv.FlowID, "status", conv.Status())
		if err := r.Sessions.Delete(ctx, conv.ID); err != nil {
			return domain.ConversationState{}, fmt.Errorf("failed to reset conversation: %w", err)
		}
		return domain.ConversationState{}, nil
	}

	_ = handler.SystemOutput(ctx, fmt.Sprintf("Resuming conversation %s", conv.ID))
	if err := handler.Output(ctx, r.present(conv.State, bots(conv.State.Messages))); err != nil {
		return domain.ConversationState{}, fmt.Errorf("output error: %w", err)
	}
	return conv.State, nil
}

func (r *Runner) turn(ctx context.Context, handler IOHandler, interp ports.Interpreter, flowID string, state domain.ConversationState, input string) (domain.ConversationState, error) {
	var (
		next domain.ConversationState
		err  error
	)
	if r.Sessions != nil {
		var conv *domain.Conversation
		conv, _, err = r.Sessions.Turn(ctx, interp, r.ConversationID, flowID, input)
		if conv != nil {
			next = conv.State
		}
	} else {
		next, err = interp.Run(ctx, flowID, state, input)
	}
	if err != nil {
		return state, err
	}

	var added []domain.Message
	if len(next.Messages) >= len(state.Messages) {
		added = bots(next.Messages[len(state.Messages):])
	}
	r.Logger.Debug("turn finished", "flow_id", flowID, "status", next.Status(), "messages", len(added))

	if err := handler.Output(ctx, r.present(next, added)); err != nil {
		return state, fmt.Errorf("output error: %w", err)
	}
	return next, nil
}

func (r *Runner) present(state domain.ConversationState, msgs []domain.Message) Turn {
	return Turn{
		ConversationID: r.ConversationID,
		Messages:       msgs,
		Status:         state.Status(),
		CurrentNodeID:  state.CurrentNodeID,
	}
}

func (r *Runner) interrupted(ctx context.Context, err error) error {
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return nil
	}
	return fmt.Errorf("turn failed: %w", err)
}

func (r *Runner) resolveHandler() IOHandler {
	if r.Handler == nil {
		r.Handler = NewTextHandler(os.Stdin, os.Stdout, WithTextHandlerRenderer(r.Renderer))
	}
	return r.Handler
}

func bots(msgs []domain.Message) []domain.Message {
	out := make([]domain.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Sender == domain.SenderBot {
			out = append(out, m)
		}
	}
	return out
}
