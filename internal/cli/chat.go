package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/chatflow"
	"github.com/aretw0/chatflow/internal/presentation/tui"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/runner"
)

// ChatOptions configures an interactive conversation.
type ChatOptions struct {
	FlowID string
	// ConversationID persists the conversation; empty runs it in memory only.
	ConversationID string
	// Fresh discards a stored conversation before starting.
	Fresh bool
	JSON  bool
	// Plain disables the banner and markdown rendering.
	Plain bool
}

// Chat runs a conversation on the terminal until it ends or input is exhausted.
func Chat(ctx context.Context, app *App, opts ChatOptions, in io.Reader, out io.Writer) error {
	if opts.FlowID == "" {
		return errors.New("a flow id is required")
	}

	var handler runner.IOHandler
	switch {
	case opts.JSON:
		handler = runner.NewJSONHandler(in, out)
	case opts.Plain:
		handler = runner.NewTextHandler(in, out)
	default:
		tui.PrintBanner(out, chatflow.Version)
		handler = runner.NewTextHandler(in, out, runner.WithTextHandlerRenderer(tui.NewRenderer()))
	}

	runnerOpts := []runner.Option{
		runner.WithInputHandler(handler),
		runner.WithLogger(app.Logger),
	}
	if opts.ConversationID != "" {
		if opts.Fresh {
			if err := app.Sessions.Delete(ctx, opts.ConversationID); err != nil && !errors.Is(err, domain.ErrConversationNotFound) {
				return fmt.Errorf("failed to reset conversation: %w", err)
			}
		}
		runnerOpts = append(runnerOpts,
			runner.WithSessions(app.Sessions),
			runner.WithConversationID(opts.ConversationID),
		)
	}

	return runner.NewRunner(runnerOpts...).Run(ctx, app.Engine, opts.FlowID)
}
