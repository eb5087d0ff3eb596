package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/chatflow/internal/logging"
	"github.com/aretw0/chatflow/pkg/domain"
)

// StreamManager handles active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // ConversationID -> Set of Channels
	logger      *slog.Logger
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logging.NewNop(),
	}
}

func (sm *StreamManager) Subscribe(conversationID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[conversationID]; !ok {
		sm.subscribers[conversationID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[conversationID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[conversationID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, conversationID)
			}
		}
	}
}

// Subscribers returns the number of open streams for a conversation.
func (sm *StreamManager) Subscribers(conversationID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[conversationID])
}

func (sm *StreamManager) Broadcast(conversationID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sm.logger.Debug("StreamManager: Broadcasting", "conversation_id", conversationID, "payload_size", len(msg))

	for ch := range sm.subscribers[conversationID] {
		select {
		case ch <- msg:
		default:
			// Slow client.
			sm.logger.Warn("SSE: Client buffer full, dropping message", "conversation_id", conversationID)
		}
	}
}

// SubscribeReloads handles the GET /events request: one event per changed flow id.
func (s *Server) SubscribeReloads(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	events, err := s.Engine.Watch(r.Context())
	if err != nil {
		s.fail(w, "Watch", err)
		return
	}

	startStream(w, flusher)
	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: reload\ndata: %s\n\n", event)
			flusher.Flush()
		}
	}
}

// SubscribeConversation handles the GET /conversations/{conversationID}/events request.
// Every persisted turn is pushed as a StateDiff. ?watch=messages,status,node filters the stream.
func (s *Server) SubscribeConversation(w http.ResponseWriter, r *http.Request, conversationID ConversationID, params SubscribeConversationParams) {
	if !s.sessionsEnabled(w) {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	s.Logger.Info("SSE: Subscribing to conversation updates", "conversation_id", conversationID)

	ch, cancel := s.Streams.Subscribe(conversationID)
	defer cancel()

	var watchList []string
	if watch := deref(params.Watch); watch != "" {
		watchList = strings.Split(watch, ",")
	}

	startStream(w, flusher)
	for {
		select {
		case <-r.Context().Done():
			s.Logger.Info("SSE Client Disconnected", "conversation_id", conversationID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watchList) > 0 && !matchesWatch(msg, watchList) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func startStream(w http.ResponseWriter, flusher http.Flusher) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
}

// matchesWatch reports whether the diff touches any watched field.
// Undecodable payloads are passed through.
func matchesWatch(msg string, watchList []string) bool {
	var diff domain.StateDiff
	if err := json.Unmarshal([]byte(msg), &diff); err != nil {
		return true
	}
	for _, field := range watchList {
		switch strings.TrimSpace(field) {
		case "messages":
			if len(diff.Appended) > 0 || diff.Reset {
				return true
			}
		case "status":
			if diff.Status != nil {
				return true
			}
		case "node":
			if diff.CurrentNodeID != nil {
				return true
			}
		}
	}
	return false
}
