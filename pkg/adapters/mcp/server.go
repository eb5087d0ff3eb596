// Package mcp exposes chatflow conversations as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/chatflow"
	"github.com/aretw0/chatflow/internal/logging"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/runner"
	"github.com/aretw0/chatflow/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const flowsResourceURI = "chatflow://flows"

// Engine defines what the MCP server needs from the chatflow facade.
type Engine interface {
	Run(ctx context.Context, flowID string, state domain.ConversationState, input string) (domain.ConversationState, error)
	Inspect(ctx context.Context, flowID string) (*domain.Graph, error)
	ListFlows(ctx context.Context) ([]string, error)
}

// SendMessageArgs are the arguments of the send_message tool.
type SendMessageArgs struct {
	ConversationID string `json:"conversation_id"`
	FlowID         string `json:"flow_id,omitempty"`
	Input          string `json:"input,omitempty"`
}

// ConversationResponse is returned by send_message and get_conversation.
type ConversationResponse struct {
	ConversationID string           `json:"conversation_id" jsonschema_description:"The conversation the turn was applied to"`
	FlowID         string           `json:"flow_id" jsonschema_description:"The flow the conversation runs"`
	Status         domain.Status    `json:"status" jsonschema_description:"not_started, waiting or ended"`
	CurrentNodeID  string           `json:"current_node_id,omitempty" jsonschema_description:"The node awaiting input"`
	Replies        []domain.Message `json:"replies" jsonschema_description:"Bot messages produced by this turn, or the whole transcript for get_conversation"`
}

// Server wraps the chatflow Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	sessions  *session.Manager
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance. Conversations are kept by sessions.
func NewServer(engine Engine, sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		sessions:  sessions,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("chatflow-mcp", strings.TrimSpace(chatflow.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and blocks until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	sendTool := mcp.NewTool("send_message",
		mcp.WithDescription("Send a participant reply to a conversation and receive the bot's answers. The first call starts the conversation and needs flow_id."),
		mcp.WithString("conversation_id", mcp.Required(), mcp.Description("Conversation identifier chosen by the caller")),
		mcp.WithString("flow_id", mcp.Description("Flow to start (required for a new conversation)")),
		mcp.WithString("input", mcp.Description("Participant reply; empty starts or resumes without input")),
		mcp.WithOutputSchema[ConversationResponse](),
	)
	s.mcpServer.AddTool(sendTool, mcp.NewStructuredToolHandler(s.handleSendMessage))

	getTool := mcp.NewTool("get_conversation",
		mcp.WithDescription("Get the transcript and status of a conversation."),
		mcp.WithString("conversation_id", mcp.Required(), mcp.Description("Conversation identifier")),
		mcp.WithOutputSchema[ConversationResponse](),
	)
	s.mcpServer.AddTool(getTool, mcp.NewStructuredToolHandler(s.handleGetConversation))

	s.mcpServer.AddTool(mcp.NewTool("reset_conversation",
		mcp.WithDescription("Delete a conversation so the next message starts the flow over."),
		mcp.WithString("conversation_id", mcp.Required(), mcp.Description("Conversation identifier")),
	), s.handleResetConversation)

	s.mcpServer.AddTool(mcp.NewTool("get_flow",
		mcp.WithDescription("Get the full graph definition of a flow for introspection."),
		mcp.WithString("flow_id", mcp.Required(), mcp.Description("Flow identifier")),
	), s.handleGetFlow)
}

func (s *Server) handleSendMessage(ctx context.Context, request mcp.CallToolRequest, args SendMessageArgs) (ConversationResponse, error) {
	if args.ConversationID == "" {
		return ConversationResponse{}, errors.New("conversation_id is required")
	}

	clean, err := runner.SanitizeInput(args.Input)
	if err != nil {
		s.logger.Warn("MCP send_message: Input rejected", "err", err, "size", len(args.Input))
		return ConversationResponse{}, fmt.Errorf("input rejected: %w", err)
	}

	before := 0
	if prev, err := s.sessions.Load(ctx, args.ConversationID); err == nil {
		before = len(prev.State.Messages)
	}

	conv, _, err := s.sessions.Turn(ctx, s.engine, args.ConversationID, args.FlowID, clean)
	if err != nil {
		return ConversationResponse{}, fmt.Errorf("send_message failed: %w", err)
	}

	var replies []domain.Message
	if before <= len(conv.State.Messages) {
		replies = botMessages(conv.State.Messages[before:])
	}
	return respond(conv, replies), nil
}

func (s *Server) handleGetConversation(ctx context.Context, request mcp.CallToolRequest, args SendMessageArgs) (ConversationResponse, error) {
	conv, err := s.sessions.Load(ctx, args.ConversationID)
	if err != nil {
		return ConversationResponse{}, fmt.Errorf("get_conversation failed: %w", err)
	}
	return respond(conv, conv.State.Messages), nil
}

func (s *Server) handleResetConversation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("conversation_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reset failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("conversation %s reset", id)), nil
}

func (s *Server) handleGetFlow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	flowID, err := request.RequireString("flow_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	g, err := s.engine.Inspect(ctx, flowID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("inspect failed: %v", err)), nil
	}
	jsonBytes, err := json.Marshal(g)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(flowsResourceURI, "Available Flows",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.engine.ListFlows(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list flows: %w", err)
		}
		jsonBytes, _ := json.Marshal(ids)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      flowsResourceURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

func respond(conv *domain.Conversation, replies []domain.Message) ConversationResponse {
	if replies == nil {
		replies = []domain.Message{}
	}
	return ConversationResponse{
		ConversationID: conv.ID,
		FlowID:         conv.FlowID,
		Status:         conv.Status(),
		CurrentNodeID:  conv.State.CurrentNodeID,
		Replies:        replies,
	}
}

func botMessages(msgs []domain.Message) []domain.Message {
	out := make([]domain.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Sender == domain.SenderBot {
			out = append(out, m)
		}
	}
	return out
}
