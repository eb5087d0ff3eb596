package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/webhook"
)

var mediaEmoji = map[domain.NodeType]string{
	domain.NodeTypeImage:    "🖼️",
	domain.NodeTypeVideo:    "🎬",
	domain.NodeTypeAudio:    "🎵",
	domain.NodeTypeDocument: "📄",
}

// Executor renders the effect of a single node.
type Executor struct {
	webhook *webhook.Client
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
}

// NewExecutor creates an executor that performs webhook calls through client.
func NewExecutor(client *webhook.Client, hooks domain.LifecycleHooks, logger *slog.Logger) *Executor {
	return &Executor{webhook: client, hooks: hooks, logger: logger}
}

// Execute runs node and returns its effect. It never fails: problems become bot messages.
func (x *Executor) Execute(ctx context.Context, flowID string, node *domain.Node) domain.Effect {
	payload := node.Payload
	if payload == nil {
		p, err := domain.DecodePayload(node.Type, nil)
		if err != nil {
			p = domain.UnknownPayload{Type: string(node.Type)}
		}
		payload = p
	}
	return payload.Accept(ctx, &visit{Executor: x, flowID: flowID, node: node})
}

// visit binds one execution to its node so payload handlers can report on it.
type visit struct {
	*Executor
	flowID string
	node   *domain.Node
}

func say(format string, args ...any) domain.Effect {
	return domain.Effect{Messages: []string{fmt.Sprintf(format, args...)}}
}

func (v *visit) VisitTrigger(ctx context.Context, p domain.TriggerPayload) domain.Effect {
	return domain.Effect{}
}

func (v *visit) VisitMessage(ctx context.Context, p domain.MessagePayload) domain.Effect {
	return domain.Effect{Messages: []string{p.Message}}
}

func (v *visit) VisitQuestion(ctx context.Context, p domain.QuestionPayload) domain.Effect {
	return domain.Effect{Messages: []string{p.Question}, Wait: true}
}

func (v *visit) VisitCondition(ctx context.Context, p domain.ConditionPayload) domain.Effect {
	var c domain.Condition
	if p.Condition != nil {
		c = *p.Condition
	}
	e := say("🚦 Condition: Waiting for input to check if attribute `%s` %s `%s`.", c.Attribute, c.Operator, c.Value)
	e.Wait = true
	return e
}

func (v *visit) VisitMedia(ctx context.Context, p domain.MediaPayload) domain.Effect {
	label := "Attachment"
	if kind := string(p.Kind()); kind != "" {
		label = strings.ToUpper(kind[:1]) + kind[1:]
	}
	emoji, ok := mediaEmoji[p.Kind()]
	if !ok {
		emoji = "📎"
	}
	if p.Caption == "" {
		return say("%s %s (no caption)", emoji, label)
	}
	return say("%s %s: %s", emoji, label, p.Caption)
}

func (v *visit) VisitTimeDelay(ctx context.Context, p domain.TimeDelayPayload) domain.Effect {
	return say("⏱️ Waiting for %d seconds...", p.Total())
}

func (v *visit) VisitTemplate(ctx context.Context, p domain.TemplatePayload) domain.Effect {
	return say("✉️ Template Sent: `%s`", p.Template)
}

func (v *visit) VisitSetTags(ctx context.Context, p domain.SetTagsPayload) domain.Effect {
	return say("🏷️ Tag Applied: `%s`", p.Tag)
}

func (v *visit) VisitUpdateAttribute(ctx context.Context, p domain.UpdateAttributePayload) domain.Effect {
	return say("📝 Attribute Updated: Set `%s` to `%s`", p.Attribute, p.Value)
}

func (v *visit) VisitAssignTeam(ctx context.Context, p domain.AssignTeamPayload) domain.Effect {
	return say("👨‍👩‍👧‍👦 Assigned to Team: `%s`", p.Team)
}

func (v *visit) VisitAssignUser(ctx context.Context, p domain.AssignUserPayload) domain.Effect {
	return say("👤 Assigned to User: `%s`", p.User)
}

func (v *visit) VisitTriggerChatbot(ctx context.Context, p domain.TriggerChatbotPayload) domain.Effect {
	return say("🤖 Triggering another chatbot...")
}

func (v *visit) VisitUpdateChatStatus(ctx context.Context, p domain.UpdateChatStatusPayload) domain.Effect {
	return say("⚡ Chat Status Updated to `%s`", p.Status)
}

func (v *visit) VisitGoogleSpreadsheet(ctx context.Context, p domain.GoogleSpreadsheetPayload) domain.Effect {
	return say("📝 Google Spreadsheet: Action `%s` on sheet `%s`...", p.Action, p.SheetName)
}

func (v *visit) VisitUnknown(ctx context.Context, p domain.UnknownPayload) domain.Effect {
	v.logger.Warn("unrecognized node type", "flow_id", v.flowID, "node_id", v.node.ID, "type", p.Type)
	e := say("I've reached a node I don't know how to handle yet: %s. The flow has ended.", p.Type)
	e.Terminal = true
	return e
}

func (v *visit) VisitWebhook(ctx context.Context, p domain.WebhookPayload) domain.Effect {
	messages := []string{fmt.Sprintf("🔌 Calling webhook to %s...", p.URL)}

	method := strings.ToUpper(strings.TrimSpace(p.Method))
	if method == "" {
		method = "GET"
	}
	res, err := v.webhook.Do(ctx, webhook.FromPayload(p))

	event := &domain.WebhookEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventWebhookCall, FlowID: v.flowID},
		NodeID:    v.node.ID,
		Method:    method,
		URL:       p.URL,
		Status:    res.Status,
		Success:   err == nil && res.Success,
		Duration:  res.Duration,
	}

	switch {
	case err != nil:
		event.Error = err.Error()
		v.logger.Warn("webhook error", "flow_id", v.flowID, "node_id", v.node.ID, "url", p.URL, "error", err)
		messages = append(messages, fmt.Sprintf("❌ Webhook error: %v", err))
	case res.Success:
		messages = append(messages, fmt.Sprintf("✅ Webhook successful! Status: %d", res.Status))
	default:
		v.logger.Info("webhook failed", "flow_id", v.flowID, "node_id", v.node.ID, "status", res.Status)
		messages = append(messages, fmt.Sprintf("❌ Webhook failed! Status: %d", res.Status))
	}

	if v.hooks.OnWebhookCall != nil {
		v.hooks.OnWebhookCall(ctx, event)
	}
	return domain.Effect{Messages: messages}
}
