package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/chatflow/pkg/domain"
)

// LogHooks returns lifecycle hooks that log every event at debug level,
// and failed webhook calls at warn level.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTurnStart: func(ctx context.Context, e *domain.TurnEvent) {
			logger.DebugContext(ctx, "turn_start", "flow_id", e.FlowID, "status", e.Status)
		},
		OnTurnEnd: func(ctx context.Context, e *domain.TurnEvent) {
			logger.DebugContext(ctx, "turn_end", "flow_id", e.FlowID, "status", e.Status, "steps", e.Steps)
		},
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node_enter", "flow_id", e.FlowID, "node_id", e.NodeID, "type", e.NodeType)
		},
		OnWebhookCall: func(ctx context.Context, e *domain.WebhookEvent) {
			attrs := []any{
				"flow_id", e.FlowID,
				"node_id", e.NodeID,
				"method", e.Method,
				"url", e.URL,
				"status", e.Status,
				"duration", e.Duration,
			}
			if !e.Success {
				logger.WarnContext(ctx, "webhook_call failed", append(attrs, "error", e.Error)...)
				return
			}
			logger.DebugContext(ctx, "webhook_call", attrs...)
		},
	}
}
