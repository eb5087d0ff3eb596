// Package lambda serves chatflow conversations behind an API Gateway proxy integration.
package lambda

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aretw0/chatflow/internal/logging"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/ports"
	"github.com/aretw0/chatflow/pkg/runner"
	"github.com/aretw0/chatflow/pkg/session"
	"github.com/aws/aws-lambda-go/events"
)

// Error codes returned in the body of failed requests.
const (
	CodeInvalidInput = "INVALID_INPUT"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeInternal     = "INTERNAL_ERROR"
)

type messageRequest struct {
	ConversationID string `json:"conversation_id"`
	FlowID         string `json:"flow_id"`
	Input          string `json:"input"`
}

type conversationResponse struct {
	ConversationID string           `json:"conversation_id"`
	FlowID         string           `json:"flow_id"`
	Status         domain.Status    `json:"status"`
	CurrentNodeID  string           `json:"current_node_id,omitempty"`
	Messages       []domain.Message `json:"messages"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Handler runs one conversation turn per POST and returns transcripts on GET.
type Handler struct {
	engine   ports.Interpreter
	sessions *session.Manager
	logger   *slog.Logger
}

// Option configures the Handler.
type Option func(*Handler)

// WithLogger configures the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// NewHandler validates its dependencies and builds a Handler.
func NewHandler(engine ports.Interpreter, sessions *session.Manager, opts ...Option) (*Handler, error) {
	if engine == nil {
		return nil, errors.New("lambda: engine is required")
	}
	if sessions == nil {
		return nil, errors.New("lambda: session manager is required")
	}
	h := &Handler{engine: engine, sessions: sessions, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Handle is the Lambda entry point.
//
//	POST {conversation_id, flow_id, input} runs a turn and returns the bot messages it produced.
//	GET ?conversation_id=... returns the whole transcript.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	switch req.HTTPMethod {
	case http.MethodPost:
		return h.turn(ctx, req)
	case http.MethodGet:
		return h.get(ctx, req.QueryStringParameters["conversation_id"])
	default:
		return h.fail(http.StatusMethodNotAllowed, CodeNotAllowed, "method not allowed"), nil
	}
}

func (h *Handler) turn(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var in messageRequest
	if err := json.Unmarshal([]byte(req.Body), &in); err != nil {
		return h.fail(http.StatusBadRequest, CodeInvalidInput, "invalid JSON body"), nil
	}
	if in.ConversationID == "" {
		return h.fail(http.StatusBadRequest, CodeInvalidInput, "conversation_id is required"), nil
	}

	input, err := runner.SanitizeInput(in.Input)
	if err != nil {
		return h.fail(http.StatusBadRequest, CodeInvalidInput, err.Error()), nil
	}

	before := 0
	if prev, err := h.sessions.Load(ctx, in.ConversationID); err == nil {
		before = len(prev.State.Messages)
	}

	conv, _, err := h.sessions.Turn(ctx, h.engine, in.ConversationID, in.FlowID, input)
	if err != nil {
		return h.failErr(err), nil
	}

	var replies []domain.Message
	if before <= len(conv.State.Messages) {
		for _, m := range conv.State.Messages[before:] {
			if m.Sender == domain.SenderBot {
				replies = append(replies, m)
			}
		}
	}
	return h.ok(conv, replies), nil
}

func (h *Handler) get(ctx context.Context, conversationID string) (events.APIGatewayProxyResponse, error) {
	if conversationID == "" {
		return h.fail(http.StatusBadRequest, CodeInvalidInput, "conversation_id is required"), nil
	}
	conv, err := h.sessions.Load(ctx, conversationID)
	if err != nil {
		return h.failErr(err), nil
	}
	return h.ok(conv, conv.State.Messages), nil
}

func (h *Handler) ok(conv *domain.Conversation, msgs []domain.Message) events.APIGatewayProxyResponse {
	if msgs == nil {
		msgs = []domain.Message{}
	}
	return h.respond(http.StatusOK, conversationResponse{
		ConversationID: conv.ID,
		FlowID:         conv.FlowID,
		Status:         conv.Status(),
		CurrentNodeID:  conv.State.CurrentNodeID,
		Messages:       msgs,
	})
}

func (h *Handler) failErr(err error) events.APIGatewayProxyResponse {
	switch {
	case errors.Is(err, domain.ErrConversationNotFound):
		return h.fail(http.StatusNotFound, CodeNotFound, err.Error())
	case errors.Is(err, session.ErrFlowRequired):
		return h.fail(http.StatusBadRequest, CodeInvalidInput, err.Error())
	case errors.Is(err, session.ErrFlowMismatch):
		return h.fail(http.StatusConflict, CodeConflict, err.Error())
	}
	h.logger.Error("turn failed", "err", err)
	return h.fail(http.StatusInternalServerError, CodeInternal, "internal error")
}

func (h *Handler) fail(status int, code, msg string) events.APIGatewayProxyResponse {
	return h.respond(status, errorResponse{Code: code, Message: msg})
}

func (h *Handler) respond(status int, v any) events.APIGatewayProxyResponse {
	body, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("response encode failed", "err", err)
		status, body = http.StatusInternalServerError, []byte(`{"code":"INTERNAL_ERROR","message":"internal error"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"content-type": "application/json"},
		Body:       string(body),
	}
}
