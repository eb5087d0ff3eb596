package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/chatflow"
	"github.com/aretw0/chatflow/internal/logging"
	"github.com/aretw0/chatflow/internal/presentation/graph"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/runner"
	"github.com/aretw0/chatflow/pkg/session"
	"github.com/aretw0/chatflow/pkg/webhook"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:generate go tool oapi-codegen -package http -generate types,chi-server,spec -o api.gen.go ../../../api/openapi.yaml

// Engine defines what the HTTP transport needs from the chatflow facade.
type Engine interface {
	Run(ctx context.Context, flowID string, state domain.ConversationState, input string) (domain.ConversationState, error)
	Inspect(ctx context.Context, flowID string) (*domain.Graph, error)
	ListFlows(ctx context.Context) ([]string, error)
	TestWebhook(ctx context.Context, req webhook.Request) webhook.TestResult
	Watch(ctx context.Context) (<-chan string, error)
}

// Server implements the generated ServerInterface.
type Server struct {
	Engine   Engine
	Sessions *session.Manager
	Streams  *StreamManager
	Logger   *slog.Logger

	gatherer prometheus.Gatherer
}

// Option configures the Server.
type Option func(*Server)

// WithSessions enables the stateful /conversations routes.
func WithSessions(m *session.Manager) Option {
	return func(s *Server) {
		s.Sessions = m
	}
}

// WithLogger configures the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// WithMetrics exposes g on GET /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// Ensure Server implements ServerInterface
var _ ServerInterface = (*Server)(nil)

// NewServer builds a Server around engine.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		Engine:  engine,
		Streams: NewStreamManager(),
		Logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.Logger
	return s
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	return NewServer(engine, opts...).Routes()
}

// Routes mounts the generated API routes plus the spec, docs and metrics endpoints.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		spec, err := rawSpec()
		if err != nil {
			http.Error(w, "Failed to load spec", http.StatusInternalServerError)
			s.Logger.Error("Failed to load OpenAPI spec", "err", err)
			return
		}
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(spec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	handler := HandlerWithOptions(s, ChiServerOptions{
		BaseRouter:       r,
		ErrorHandlerFunc: s.paramError,
	})
	return enableCORS(handler)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Chatflow API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

func (s *Server) paramError(w http.ResponseWriter, r *http.Request, err error) {
	s.Logger.Warn("Invalid request parameter", "path", r.URL.Path, "err", err)
	http.Error(w, err.Error(), http.StatusBadRequest)
}

// sessionsEnabled writes 501 when the server was built without a session manager.
func (s *Server) sessionsEnabled(w http.ResponseWriter) bool {
	if s.Sessions == nil {
		http.Error(w, "Conversations are not enabled on this server", http.StatusNotImplemented)
		return false
	}
	return true
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, Health{Status: "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}

	s.writeJSON(w, http.StatusOK, Info{
		App:        "chatflow-http",
		Version:    strings.TrimSpace(chatflow.Version),
		ApiVersion: apiVersion,
	})
}

// ListFlows handles the GET /flows request.
func (s *Server) ListFlows(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Engine.ListFlows(r.Context())
	if err != nil {
		s.fail(w, "ListFlows", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, ids)
}

// GetFlow handles the GET /flows/{flowID} request.
func (s *Server) GetFlow(w http.ResponseWriter, r *http.Request, flowID FlowID) {
	g, err := s.Engine.Inspect(r.Context(), flowID)
	if err != nil {
		s.fail(w, "GetFlow", err)
		return
	}
	s.writeJSON(w, http.StatusOK, g)
}

// GetMermaid handles the GET /flows/{flowID}/mermaid request.
// With ?conversation_id the conversation's current node is highlighted.
func (s *Server) GetMermaid(w http.ResponseWriter, r *http.Request, flowID FlowID, params GetMermaidParams) {
	g, err := s.Engine.Inspect(r.Context(), flowID)
	if err != nil {
		s.fail(w, "GetMermaid", err)
		return
	}

	var overlay *graph.GraphOverlay
	if id := deref(params.ConversationId); id != "" && s.Sessions != nil {
		conv, err := s.Sessions.Load(r.Context(), id)
		if err != nil {
			s.fail(w, "GetMermaid", err)
			return
		}
		overlay = &graph.GraphOverlay{CurrentNode: conv.State.CurrentNodeID}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, graph.GenerateMermaid(g, overlay))
}

// RunFlow handles the POST /flows/{flowID}/run request. The caller owns the state.
func (s *Server) RunFlow(w http.ResponseWriter, r *http.Request, flowID FlowID) {
	var body RunFlowJSONRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.Logger.Warn("RunFlow: Invalid request body", "err", err)
		return
	}

	input, ok := s.sanitize(w, deref(body.Input))
	if !ok {
		return
	}

	var state domain.ConversationState
	if body.State != nil {
		state = mapStateToDomain(*body.State)
	}

	next, err := s.Engine.Run(r.Context(), flowID, state, input)
	if err != nil {
		s.fail(w, "RunFlow", err)
		return
	}
	s.writeJSON(w, http.StatusOK, RunResponse{State: mapStateFromDomain(next), Status: Status(next.Status())})
}

// ListConversations handles the GET /conversations request.
func (s *Server) ListConversations(w http.ResponseWriter, r *http.Request) {
	if !s.sessionsEnabled(w) {
		return
	}
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, "ListConversations", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, ids)
}

// GetConversation handles the GET /conversations/{conversationID} request.
func (s *Server) GetConversation(w http.ResponseWriter, r *http.Request, conversationID ConversationID) {
	if !s.sessionsEnabled(w) {
		return
	}
	conv, err := s.Sessions.Load(r.Context(), conversationID)
	if err != nil {
		s.fail(w, "GetConversation", err)
		return
	}
	s.writeJSON(w, http.StatusOK, mapConversationFromDomain(conv))
}

// DeleteConversation handles the DELETE /conversations/{conversationID} request.
func (s *Server) DeleteConversation(w http.ResponseWriter, r *http.Request, conversationID ConversationID) {
	if !s.sessionsEnabled(w) {
		return
	}
	if err := s.Sessions.Delete(r.Context(), conversationID); err != nil {
		s.fail(w, "DeleteConversation", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SendMessage handles the POST /conversations/{conversationID}/messages request.
// The turn is persisted and its diff broadcast to subscribers.
func (s *Server) SendMessage(w http.ResponseWriter, r *http.Request, conversationID ConversationID) {
	if !s.sessionsEnabled(w) {
		return
	}
	var body SendMessageJSONRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.Logger.Warn("SendMessage: Invalid request body", "err", err)
		return
	}

	input, ok := s.sanitize(w, deref(body.Input))
	if !ok {
		return
	}

	conv, diff, err := s.Sessions.Turn(r.Context(), s.Engine, conversationID, deref(body.FlowId), input)
	if err != nil {
		s.fail(w, "SendMessage", err)
		return
	}

	if diff != nil {
		if bytes, err := json.Marshal(diff); err == nil {
			s.Streams.Broadcast(conversationID, string(bytes))
		}
	} else {
		s.Logger.Debug("SendMessage: No diff calculated", "conversation_id", conversationID)
	}

	s.writeJSON(w, http.StatusOK, mapConversationFromDomain(conv))
}

// TestWebhook handles the POST /webhooks/test request.
func (s *Server) TestWebhook(w http.ResponseWriter, r *http.Request) {
	var body TestWebhookJSONRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if body.Url == "" {
		http.Error(w, "url is required", http.StatusBadRequest)
		return
	}
	res := s.Engine.TestWebhook(r.Context(), webhook.Request{
		URL:     body.Url,
		Method:  deref(body.Method),
		Headers: deref(body.Headers),
		Body:    deref(body.Body),
	})
	s.writeJSON(w, http.StatusOK, mapWebhookResult(res))
}

// -- Helpers --

func (s *Server) sanitize(w http.ResponseWriter, input string) (string, bool) {
	if input == "" {
		return "", true
	}
	clean, err := runner.SanitizeInput(input)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid input: %v", err), http.StatusBadRequest)
		s.Logger.Warn("Input rejected", "err", err, "size", len(input))
		return "", false
	}
	return clean, true
}

// fail maps err onto a status code and writes it.
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.Logger.Error(op+" failed", "err", err)
	}
	http.Error(w, fmt.Sprintf("%s error: %v", op, err), status)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrConversationNotFound), errors.Is(err, domain.ErrFlowNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrGraphMalformed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrFlowMismatch):
		return http.StatusConflict
	case errors.Is(err, session.ErrFlowRequired):
		return http.StatusBadRequest
	case errors.Is(err, chatflow.ErrNotSupported):
		return http.StatusNotImplemented
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "err", err)
	}
}

func ptr[T any](v T) *T {
	return &v
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func mapStateToDomain(s ConversationState) domain.ConversationState {
	d := domain.ConversationState{CurrentNodeID: deref(s.CurrentNodeId)}
	if len(s.Messages) > 0 {
		d.Messages = make([]domain.Message, len(s.Messages))
		for i, m := range s.Messages {
			d.Messages[i] = domain.Message{ID: m.Id, Text: m.Text, Sender: domain.Sender(m.Sender)}
		}
	}
	return d
}

func mapStateFromDomain(d domain.ConversationState) ConversationState {
	s := ConversationState{Messages: make([]Message, len(d.Messages))}
	for i, m := range d.Messages {
		s.Messages[i] = Message{Id: m.ID, Text: m.Text, Sender: Sender(m.Sender)}
	}
	if d.CurrentNodeID != "" {
		s.CurrentNodeId = ptr(d.CurrentNodeID)
	}
	return s
}

func mapConversationFromDomain(c *domain.Conversation) Conversation {
	res := Conversation{
		Id:     c.ID,
		FlowId: c.FlowID,
		State:  mapStateFromDomain(c.State),
		Status: Status(c.Status()),
	}
	if !c.UpdatedAt.IsZero() {
		res.UpdatedAt = ptr(c.UpdatedAt)
	}
	return res
}

func mapWebhookResult(r webhook.TestResult) WebhookTestResult {
	res := WebhookTestResult{Body: r.Body}
	if r.Status != 0 {
		res.Status = ptr(r.Status)
	}
	if r.StatusText != "" {
		res.StatusText = ptr(r.StatusText)
	}
	if r.Error != "" {
		res.Error = ptr(r.Error)
	}
	return res
}
