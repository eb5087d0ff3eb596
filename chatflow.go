package chatflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/aretw0/chatflow/internal/logging"
	"github.com/aretw0/chatflow/internal/runtime"
	loamAdapter "github.com/aretw0/chatflow/pkg/adapters/loam"
	"github.com/aretw0/chatflow/pkg/adapters/memory"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/ports"
	"github.com/aretw0/chatflow/pkg/webhook"
)

// ErrNotSupported is returned when the configured provider or source lacks a capability.
var ErrNotSupported = errors.New("not supported by the configured provider")

// Engine is the high-level entry point for the chatflow library.
// It wraps the internal interpreter and provides a simplified API for consumers.
type Engine struct {
	runtime  *runtime.Engine
	provider ports.GraphProvider
	source   ports.FlowSource
	webhook  *webhook.Client

	httpClient     ports.HTTPDoer
	webhookTimeout time.Duration
	maxSteps       int
	idGen          func() string
	hooks          domain.LifecycleHooks
	logger         *slog.Logger
	Name           string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithGraphProvider injects a GraphProvider, bypassing flow sources entirely.
func WithGraphProvider(p ports.GraphProvider) Option {
	return func(e *Engine) {
		e.provider = p
	}
}

// WithFlowSource loads flows lazily from src, bypassing the default Loam repository.
func WithFlowSource(src ports.FlowSource) Option {
	return func(e *Engine) {
		e.source = src
	}
}

// WithHTTPClient sets the transport used by webhook nodes.
func WithHTTPClient(client ports.HTTPDoer) Option {
	return func(e *Engine) {
		e.httpClient = client
	}
}

// WithWebhookTimeout bounds each webhook call (default 10s).
func WithWebhookTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.webhookTimeout = d
	}
}

// WithMaxSteps bounds the number of nodes executed in one turn (default 100).
func WithMaxSteps(n int) Option {
	return func(e *Engine) {
		e.maxSteps = n
	}
}

// WithIDGenerator replaces the message id generator.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) {
		e.idGen = fn
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New initializes a chatflow Engine.
// By default, flows are read from a Loam repository at repoPath.
// If WithGraphProvider or WithFlowSource is given, repoPath can be empty and Loam is skipped.
func New(repoPath string, opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}

	if repoPath != "" {
		eng.Name = filepath.Base(repoPath)
	}

	if eng.provider == nil && eng.source == nil {
		if repoPath == "" {
			return nil, fmt.Errorf("repoPath is required when no provider or source is configured")
		}
		absPath, err := filepath.Abs(repoPath)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		eng.Name = filepath.Base(absPath)

		src, err := loamAdapter.Open(absPath)
		if err != nil {
			return nil, err
		}
		eng.source = src
	}

	if eng.Name != "" {
		eng.logger = eng.logger.With("flows", eng.Name)
	}

	if eng.provider == nil {
		eng.provider = memory.NewProvider(
			memory.WithSource(eng.source),
			memory.WithLogger(eng.logger),
		)
	}

	webhookOpts := []webhook.Option{
		webhook.WithTimeout(eng.webhookTimeout),
		webhook.WithLogger(eng.logger),
	}
	if eng.httpClient != nil {
		webhookOpts = append(webhookOpts, webhook.WithHTTPClient(eng.httpClient))
	}
	eng.webhook = webhook.New(webhookOpts...)

	eng.runtime = runtime.NewEngine(eng.provider,
		runtime.WithLogger(eng.logger),
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithWebhookClient(eng.webhook),
		runtime.WithMaxSteps(eng.maxSteps),
		runtime.WithIDGenerator(eng.idGen),
	)

	return eng, nil
}

// Run advances a conversation on flowID by one turn. See runtime.Engine.Run.
func (e *Engine) Run(ctx context.Context, flowID string, state domain.ConversationState, input string) (domain.ConversationState, error) {
	return e.runtime.Run(ctx, flowID, state, input)
}

// Inspect returns the full graph of a flow for visualization or introspection tools.
func (e *Engine) Inspect(ctx context.Context, flowID string) (*domain.Graph, error) {
	if in, ok := e.provider.(ports.GraphInspector); ok {
		return in.Graph(ctx, flowID)
	}
	if e.source != nil {
		return e.source.LoadGraph(ctx, flowID)
	}
	return nil, fmt.Errorf("inspect: %w", ErrNotSupported)
}

// ListFlows returns the ids of the flows the engine can run.
func (e *Engine) ListFlows(ctx context.Context) ([]string, error) {
	if l, ok := e.provider.(interface {
		ListFlows(context.Context) ([]string, error)
	}); ok {
		return l.ListFlows(ctx)
	}
	if e.source != nil {
		return e.source.ListFlows(ctx)
	}
	return nil, fmt.Errorf("list flows: %w", ErrNotSupported)
}

// TestWebhook performs a webhook call as configured in an editor and captures the response.
func (e *Engine) TestWebhook(ctx context.Context, req webhook.Request) webhook.TestResult {
	return e.webhook.Test(ctx, req)
}

// Watch returns a channel that receives the id of each flow that changed in the source.
// Cached copies of changed flows are dropped before the id is delivered.
func (e *Engine) Watch(ctx context.Context) (<-chan string, error) {
	w, ok := e.source.(ports.Watchable)
	if !ok {
		return nil, fmt.Errorf("watch: %w", ErrNotSupported)
	}
	events, err := w.Watch(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan string, 1)
	go func() {
		defer close(out)
		for id := range events {
			e.Reload(id)
			select {
			case out <- id:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Reload drops a cached flow so its next turn reads the source again.
func (e *Engine) Reload(flowID string) {
	if inv, ok := e.provider.(interface{ Invalidate(string) }); ok {
		inv.Invalidate(flowID)
	}
}

// Provider returns the GraphProvider used by the engine.
func (e *Engine) Provider() ports.GraphProvider {
	return e.provider
}
