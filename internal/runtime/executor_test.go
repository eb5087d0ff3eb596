package runtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/chatflow/internal/logging"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExecutor(hooks domain.LifecycleHooks) *Executor {
	return NewExecutor(webhook.New(), hooks, logging.NewNop())
}

func TestExecutor_Messages(t *testing.T) {
	x := newTestExecutor(domain.LifecycleHooks{})
	ctx := context.Background()

	tests := []struct {
		name string
		node domain.Node
		want domain.Effect
	}{
		{
			name: "Trigger",
			node: domain.MustNode("n", domain.NodeTypeTrigger, nil),
			want: domain.Effect{},
		},
		{
			name: "Message",
			node: domain.MustNode("n", domain.NodeTypeMessage, map[string]any{"message": "Hello"}),
			want: domain.Effect{Messages: []string{"Hello"}},
		},
		{
			name: "Question",
			node: domain.MustNode("n", domain.NodeTypeQuestion, map[string]any{"question": "Name?"}),
			want: domain.Effect{Messages: []string{"Name?"}, Wait: true},
		},
		{
			name: "Condition",
			node: domain.MustNode("n", domain.NodeTypeCondition, map[string]any{
				"condition": map[string]any{"attribute": "age", "operator": "greater_than", "value": "18"},
			}),
			want: domain.Effect{Messages: []string{"🚦 Condition: Waiting for input to check if attribute `age` greater_than `18`."}, Wait: true},
		},
		{
			name: "Image With Caption",
			node: domain.MustNode("n", domain.NodeTypeImage, map[string]any{"caption": "Menu"}),
			want: domain.Effect{Messages: []string{"🖼️ Image: Menu"}},
		},
		{
			name: "Document Without Caption",
			node: domain.MustNode("n", domain.NodeTypeDocument, nil),
			want: domain.Effect{Messages: []string{"📄 Document (no caption)"}},
		},
		{
			name: "Audio",
			node: domain.MustNode("n", domain.NodeTypeAudio, map[string]any{"caption": "Intro"}),
			want: domain.Effect{Messages: []string{"🎵 Audio: Intro"}},
		},
		{
			name: "Video",
			node: domain.MustNode("n", domain.NodeTypeVideo, nil),
			want: domain.Effect{Messages: []string{"🎬 Video (no caption)"}},
		},
		{
			name: "Time Delay",
			node: domain.MustNode("n", domain.NodeTypeTimeDelay, map[string]any{"minutes": 2, "seconds": 5}),
			want: domain.Effect{Messages: []string{"⏱️ Waiting for 125 seconds..."}},
		},
		{
			name: "Template",
			node: domain.MustNode("n", domain.NodeTypeTemplate, map[string]any{"template": "welcome_v2"}),
			want: domain.Effect{Messages: []string{"✉️ Template Sent: `welcome_v2`"}},
		},
		{
			name: "Set Tags",
			node: domain.MustNode("n", domain.NodeTypeSetTags, map[string]any{"tag": "vip"}),
			want: domain.Effect{Messages: []string{"🏷️ Tag Applied: `vip`"}},
		},
		{
			name: "Update Attribute",
			node: domain.MustNode("n", domain.NodeTypeUpdateAttribute, map[string]any{"attribute": "plan", "value": "pro"}),
			want: domain.Effect{Messages: []string{"📝 Attribute Updated: Set `plan` to `pro`"}},
		},
		{
			name: "Assign Team",
			node: domain.MustNode("n", domain.NodeTypeAssignTeam, map[string]any{"team": "Sales"}),
			want: domain.Effect{Messages: []string{"👨‍👩‍👧‍👦 Assigned to Team: `Sales`"}},
		},
		{
			name: "Assign User",
			node: domain.MustNode("n", domain.NodeTypeAssignUser, map[string]any{"user": "ana"}),
			want: domain.Effect{Messages: []string{"👤 Assigned to User: `ana`"}},
		},
		{
			name: "Trigger Chatbot",
			node: domain.MustNode("n", domain.NodeTypeTriggerChatbot, nil),
			want: domain.Effect{Messages: []string{"🤖 Triggering another chatbot..."}},
		},
		{
			name: "Update Chat Status",
			node: domain.MustNode("n", domain.NodeTypeUpdateChatStatus, map[string]any{"status": "resolved"}),
			want: domain.Effect{Messages: []string{"⚡ Chat Status Updated to `resolved`"}},
		},
		{
			name: "Google Spreadsheet",
			node: domain.MustNode("n", domain.NodeTypeGoogleSpreadsheet, map[string]any{"action": "append_row", "sheetName": "Leads"}),
			want: domain.Effect{Messages: []string{"📝 Google Spreadsheet: Action `append_row` on sheet `Leads`..."}},
		},
		{
			name: "Unrecognized",
			node: domain.MustNode("n", "hubspot", map[string]any{"list": "x"}),
			want: domain.Effect{Messages: []string{"I've reached a node I don't know how to handle yet: hubspot. The flow has ended."}, Terminal: true},
		},
		{
			name: "Nil Payload Is Decoded From Type",
			node: domain.Node{ID: "n", Type: domain.NodeTypeTriggerChatbot},
			want: domain.Effect{Messages: []string{"🤖 Triggering another chatbot..."}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := tt.node
			assert.Equal(t, tt.want, x.Execute(ctx, "f", &node))
		})
	}
}

func TestExecutor_Webhook(t *testing.T) {
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/fail" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	var events []*domain.WebhookEvent
	x := newTestExecutor(domain.LifecycleHooks{
		OnWebhookCall: func(ctx context.Context, e *domain.WebhookEvent) { events = append(events, e) },
	})

	t.Run("Success", func(t *testing.T) {
		node := domain.MustNode("w", domain.NodeTypeWebhook, map[string]any{"url": srv.URL + "/ok", "method": "post", "body": `{"a":1}`})
		eff := x.Execute(ctx, "f", &node)
		assert.Equal(t, []string{
			"🔌 Calling webhook to " + srv.URL + "/ok...",
			"✅ Webhook successful! Status: 200",
		}, eff.Messages)
		assert.False(t, eff.Wait)
	})

	t.Run("Failure Status", func(t *testing.T) {
		node := domain.MustNode("w", domain.NodeTypeWebhook, map[string]any{"url": srv.URL + "/fail"})
		eff := x.Execute(ctx, "f", &node)
		require.Len(t, eff.Messages, 2)
		assert.Equal(t, "❌ Webhook failed! Status: 502", eff.Messages[1])
	})

	t.Run("Malformed Configuration", func(t *testing.T) {
		node := domain.MustNode("w", domain.NodeTypeWebhook, map[string]any{"url": srv.URL, "headers": "{oops"})
		eff := x.Execute(ctx, "f", &node)
		require.Len(t, eff.Messages, 2)
		assert.Contains(t, eff.Messages[1], "❌ Webhook error: ")
		assert.False(t, eff.Terminal)
	})

	t.Run("GET With Body", func(t *testing.T) {
		node := domain.MustNode("w", domain.NodeTypeWebhook, map[string]any{"url": srv.URL, "body": `{"a":1}`})
		eff := x.Execute(ctx, "f", &node)
		require.Len(t, eff.Messages, 2)
		assert.Equal(t, "❌ Webhook error: "+webhook.ErrBodyNotAllowed.Error(), eff.Messages[1])
	})

	require.Len(t, events, 4)
	assert.True(t, events[0].Success)
	assert.Equal(t, "POST", events[0].Method)
	assert.Equal(t, 502, events[1].Status)
	assert.False(t, events[1].Success)
	assert.Equal(t, "GET", events[2].Method)
	assert.NotEmpty(t, events[2].Error)
}
