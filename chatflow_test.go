package chatflow_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/chatflow"
	"github.com/aretw0/chatflow/internal/testutils"
	"github.com/aretw0/chatflow/pkg/adapters/memory"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/ports"
	"github.com/aretw0/chatflow/pkg/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresPathOrProvider(t *testing.T) {
	_, err := chatflow.New("")
	assert.Error(t, err)
}

func TestNew_WithLoamRepository(t *testing.T) {
	dir := t.TempDir()
	raw, err := json.Marshal(ports.ContractDocument())
	require.NoError(t, err)
	testutils.WriteFiles(t, dir, map[string]string{ports.ContractFlowID + ".json": string(raw)})

	eng, err := chatflow.New(dir)
	require.NoError(t, err)

	ctx := context.Background()
	state, err := eng.Run(ctx, ports.ContractFlowID, domain.ConversationState{}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Continue?"}, state.BotMessages())

	ids, err := eng.ListFlows(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, ports.ContractFlowID)

	g, err := eng.Inspect(ctx, ports.ContractFlowID)
	require.NoError(t, err)
	assert.Len(t, g.Nodes, 5)
}

func TestNew_MalformedFlowEndsWithMessage(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteFiles(t, dir, map[string]string{
		"broken.json": `{"id":"broken","nodes":[{"id":"m","type":"message","data":{"message":"hi"}}]}`,
	})

	eng, err := chatflow.New(dir)
	require.NoError(t, err)

	ctx := context.Background()
	state, err := eng.Run(ctx, "broken", domain.ConversationState{}, "")
	require.NoError(t, err)
	assert.Len(t, state.BotMessages(), 1)
	assert.Equal(t, domain.StatusEnded, state.Status())

	_, err = eng.Inspect(ctx, "broken")
	assert.ErrorIs(t, err, domain.ErrGraphMalformed)
}

func TestEngine_WithFlowSource(t *testing.T) {
	src, err := memory.NewFromDocuments([]domain.FlowDocument{ports.ContractDocument()})
	require.NoError(t, err)

	var entered []string
	eng, err := chatflow.New("",
		chatflow.WithFlowSource(src),
		chatflow.WithLifecycleHooks(domain.LifecycleHooks{
			OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) { entered = append(entered, e.NodeID) },
		}),
	)
	require.NoError(t, err)

	ctx := context.Background()
	s, err := eng.Run(ctx, ports.ContractFlowID, domain.ConversationState{}, "")
	require.NoError(t, err)
	s, err = eng.Run(ctx, ports.ContractFlowID, s, "")
	require.NoError(t, err)
	s, err = eng.Run(ctx, ports.ContractFlowID, s, "no")
	require.NoError(t, err)

	assert.Equal(t, []string{"ask", "check", "no"}, entered)
	assert.Contains(t, s.BotMessages(), "Bye")
	assert.Equal(t, domain.StatusEnded, s.Status())

	eng.Reload(ports.ContractFlowID)
	_, err = eng.Inspect(ctx, ports.ContractFlowID)
	assert.NoError(t, err)
}

func TestEngine_MaxStepsAndTimeoutOptions(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	provider, err := memory.NewFromDocuments([]domain.FlowDocument{{
		ID: "slow",
		Nodes: []domain.NodeDocument{
			{ID: "t", Type: "trigger"},
			{ID: "w", Type: "webhook", Data: map[string]any{"url": srv.URL}},
			{ID: "q", Type: "question", Data: map[string]any{"question": "Still there?"}},
		},
		Edges: []domain.EdgeDocument{
			{ID: "e1", Source: "t", Target: "w"},
			{ID: "e2", Source: "w", Target: "q"},
		},
	}})
	require.NoError(t, err)

	eng, err := chatflow.New("", chatflow.WithGraphProvider(provider), chatflow.WithWebhookTimeout(50*time.Millisecond))
	require.NoError(t, err)

	s, err := eng.Run(context.Background(), "slow", domain.ConversationState{}, "")
	require.NoError(t, err)
	bots := s.BotMessages()
	require.Len(t, bots, 3)
	assert.Contains(t, bots[1], "❌ Webhook error: ")
	assert.Equal(t, "Still there?", bots[2])
}

func TestEngine_TestWebhook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"received":true}`))
	}))
	defer srv.Close()

	eng, err := chatflow.New("", chatflow.WithGraphProvider(memory.NewProvider()), chatflow.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	res := eng.TestWebhook(context.Background(), webhook.Request{URL: srv.URL, Method: "POST", Body: `{"x":1}`})
	assert.Equal(t, 200, res.Status)
	assert.Equal(t, map[string]any{"received": true}, res.Body)
}

func TestEngine_WatchNotSupported(t *testing.T) {
	eng, err := chatflow.New("", chatflow.WithGraphProvider(memory.NewProvider()))
	require.NoError(t, err)

	_, err = eng.Watch(context.Background())
	assert.ErrorIs(t, err, chatflow.ErrNotSupported)
}

// watchableSource serves one flow and reports changes pushed by the test.
type watchableSource struct {
	*memory.Provider
	events chan string
}

func (w *watchableSource) Watch(ctx context.Context) (<-chan string, error) {
	return w.events, nil
}

func TestEngine_WatchReloadsChangedFlows(t *testing.T) {
	provider, err := memory.NewFromDocuments([]domain.FlowDocument{ports.ContractDocument()})
	require.NoError(t, err)
	src := &watchableSource{Provider: provider, events: make(chan string)}

	eng, err := chatflow.New("", chatflow.WithFlowSource(src))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	state, err := eng.Run(ctx, ports.ContractFlowID, domain.ConversationState{}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Continue?"}, state.BotMessages())

	ch, err := eng.Watch(ctx)
	require.NoError(t, err)

	changed := ports.ContractDocument()
	changed.Nodes[1].Data = map[string]any{"question": "Shall we go on?"}
	require.NoError(t, provider.AddDocument(changed))

	go func() { src.events <- ports.ContractFlowID }()

	select {
	case id := <-ch:
		assert.Equal(t, ports.ContractFlowID, id)
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for watch event")
	}

	state, err = eng.Run(ctx, ports.ContractFlowID, domain.ConversationState{}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Shall we go on?"}, state.BotMessages())
}
