package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/chatflow/internal/logging"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/ports"
	"github.com/aretw0/chatflow/pkg/webhook"
	"github.com/google/uuid"
)

// DefaultMaxSteps bounds the number of nodes executed in one turn.
const DefaultMaxSteps = 100

// Bot messages emitted by the interpreter itself.
const (
	MsgNoTrigger    = "This flow is not configured correctly. No start trigger found."
	MsgNoFirstNode  = "This flow has no starting point after the trigger."
	MsgCannotResume = "I'm sorry, I don't know how to continue. The flow has ended."
	MsgStepLimit    = "This flow keeps running without waiting for a reply. The flow has ended."
)

// Engine is the flow interpreter. It holds collaborators only; conversation
// state is passed in and returned on every call.
type Engine struct {
	graph    ports.GraphProvider
	executor *Executor
	webhook  *webhook.Client
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	maxSteps int
	newID    func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithWebhookClient sets the client used by webhook nodes.
func WithWebhookClient(client *webhook.Client) Option {
	return func(e *Engine) {
		e.webhook = client
	}
}

// WithMaxSteps bounds how many nodes a single turn may execute. Non-positive values keep the default.
func WithMaxSteps(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxSteps = n
		}
	}
}

// WithIDGenerator replaces the message id generator (UUIDv4 by default).
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// NewEngine creates an interpreter over graph.
func NewEngine(graph ports.GraphProvider, opts ...Option) *Engine {
	e := &Engine{
		graph:    graph,
		logger:   logging.NewNop(),
		maxSteps: DefaultMaxSteps,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.webhook == nil {
		e.webhook = webhook.New(webhook.WithLogger(e.logger))
	}
	e.executor = NewExecutor(e.webhook, e.hooks, e.logger)
	return e
}

// Run advances the conversation by one turn.
//
// An ended conversation is returned unchanged. A non-empty input is recorded as a
// user message and, when the conversation is parked at a condition, selects the
// branch. Nodes are then executed until one waits for input, the flow ends, or the
// step limit is reached. Graph problems become bot messages; only cancellation and
// infrastructure failures are returned as errors, together with the original state.
func (e *Engine) Run(ctx context.Context, flowID string, state domain.ConversationState, input string) (domain.ConversationState, error) {
	if err := ctx.Err(); err != nil {
		return state, err
	}
	if state.Status() == domain.StatusEnded {
		return state, nil
	}

	if e.hooks.OnTurnStart != nil {
		e.hooks.OnTurnStart(ctx, &domain.TurnEvent{
			EventBase: e.event(domain.EventTurnStart, flowID),
			Status:    state.Status(),
		})
	}

	next := state.Clone()
	if input != "" {
		next.Messages = append(next.Messages, e.message(input, domain.SenderUser))
	}

	steps := 0
	for {
		if err := ctx.Err(); err != nil {
			return state, err
		}

		var (
			node       *domain.Node
			diagnostic string
			err        error
		)
		if next.CurrentNodeID == "" {
			node, diagnostic, err = e.resolveStart(ctx, flowID)
		} else {
			node, diagnostic, err = e.resolveNext(ctx, flowID, next.CurrentNodeID, input)
		}
		if err != nil {
			return state, err
		}
		if diagnostic != "" {
			next.Messages = append(next.Messages, e.message(diagnostic, domain.SenderBot))
			next.CurrentNodeID = ""
			break
		}

		if steps >= e.maxSteps {
			e.logger.Warn("step limit reached", "flow_id", flowID, "node_id", node.ID, "max_steps", e.maxSteps)
			next.Messages = append(next.Messages, e.message(MsgStepLimit, domain.SenderBot))
			next.CurrentNodeID = ""
			break
		}
		steps++

		if e.hooks.OnNodeEnter != nil {
			e.hooks.OnNodeEnter(ctx, &domain.NodeEvent{
				EventBase: e.event(domain.EventNodeEnter, flowID),
				NodeID:    node.ID,
				NodeType:  node.Type,
			})
		}

		effect := e.executor.Execute(ctx, flowID, node)
		if err := ctx.Err(); err != nil {
			return state, err
		}

		for _, text := range effect.Messages {
			next.Messages = append(next.Messages, e.message(text, domain.SenderBot))
		}
		next.CurrentNodeID = node.ID

		if effect.Terminal {
			next.CurrentNodeID = ""
			break
		}
		if effect.Wait {
			break
		}
		input = ""
	}

	e.logger.Debug("turn finished", "flow_id", flowID, "steps", steps, "node_id", next.CurrentNodeID, "status", next.Status())

	if e.hooks.OnTurnEnd != nil {
		e.hooks.OnTurnEnd(ctx, &domain.TurnEvent{
			EventBase: e.event(domain.EventTurnEnd, flowID),
			Status:    next.Status(),
			Steps:     steps,
		})
	}
	return next, nil
}

// resolveStart finds the first node after the trigger.
func (e *Engine) resolveStart(ctx context.Context, flowID string) (*domain.Node, string, error) {
	trigger, err := e.graph.GetTrigger(ctx, flowID)
	if err != nil {
		if isGraphMiss(err) {
			e.logger.Info("flow has no usable trigger", "flow_id", flowID, "err", err)
			return nil, MsgNoTrigger, nil
		}
		return nil, "", fmt.Errorf("failed to resolve trigger of flow %s: %w", flowID, err)
	}

	node, err := e.follow(ctx, flowID, trigger.ID, domain.PortNone)
	if err != nil {
		if isGraphMiss(err) {
			return nil, MsgNoFirstNode, nil
		}
		return nil, "", err
	}
	return node, "", nil
}

// resolveNext finds the node following the parked one.
func (e *Engine) resolveNext(ctx context.Context, flowID, parkedID, input string) (*domain.Node, string, error) {
	parked, err := e.graph.GetNode(ctx, flowID, parkedID)
	if err != nil {
		if isGraphMiss(err) {
			e.logger.Info("parked node not found", "flow_id", flowID, "node_id", parkedID, "err", err)
			return nil, MsgCannotResume, nil
		}
		return nil, "", fmt.Errorf("failed to load node %s: %w", parkedID, err)
	}

	port := domain.PortNone
	if cond, ok := parked.Payload.(domain.ConditionPayload); ok {
		port = domain.PortFor(EvaluateCondition(cond.Condition, input))
	}

	node, err := e.follow(ctx, flowID, parkedID, port)
	if err != nil {
		if isGraphMiss(err) {
			return nil, MsgCannotResume, nil
		}
		return nil, "", err
	}
	return node, "", nil
}

func (e *Engine) follow(ctx context.Context, flowID, nodeID string, port domain.Port) (*domain.Node, error) {
	edge, err := e.graph.GetOutgoingEdge(ctx, flowID, nodeID, port)
	if err != nil {
		return nil, err
	}
	return e.graph.GetNode(ctx, flowID, edge.Target)
}

func (e *Engine) message(text string, sender domain.Sender) domain.Message {
	return domain.Message{ID: e.newID(), Text: text, Sender: sender}
}

func (e *Engine) event(t domain.EventType, flowID string) domain.EventBase {
	return domain.EventBase{Timestamp: time.Now(), Type: t, FlowID: flowID}
}

// isGraphMiss reports whether err is a lookup miss or a malformed graph,
// both of which the interpreter turns into a bot message.
func isGraphMiss(err error) bool {
	return errors.Is(err, domain.ErrFlowNotFound) ||
		errors.Is(err, domain.ErrTriggerNotFound) ||
		errors.Is(err, domain.ErrNodeNotFound) ||
		errors.Is(err, domain.ErrNoEdge) ||
		errors.Is(err, domain.ErrGraphMalformed)
}
