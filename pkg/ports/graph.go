package ports

import (
	"context"

	"github.com/aretw0/chatflow/pkg/domain"
)

// GraphProvider is the read-only view of authored flows used by the interpreter.
// Lookups fail with the domain sentinels (ErrFlowNotFound, ErrTriggerNotFound,
// ErrNodeNotFound, ErrNoEdge); any other error is treated as an infrastructure failure.
type GraphProvider interface {
	// GetTrigger returns the entry node of the flow.
	GetTrigger(ctx context.Context, flowID string) (*domain.Node, error)

	// GetOutgoingEdge returns the edge leaving nodeID on port.
	// PortNone selects the unconditional edge.
	GetOutgoingEdge(ctx context.Context, flowID, nodeID string, port domain.Port) (*domain.Edge, error)

	// GetNode returns a node by id.
	GetNode(ctx context.Context, flowID, nodeID string) (*domain.Node, error)
}

// GraphInspector exposes whole graphs for introspection and visualization tools.
type GraphInspector interface {
	Graph(ctx context.Context, flowID string) (*domain.Graph, error)
}

// FlowSource loads authored flows from a backing store.
type FlowSource interface {
	// LoadGraph returns the flow with the given id, or domain.ErrFlowNotFound.
	LoadGraph(ctx context.Context, flowID string) (*domain.Graph, error)

	// ListFlows returns the ids of all flows available in the source.
	ListFlows(ctx context.Context) ([]string, error)
}

// Watchable defines an interface for sources that can notify about backend changes.
// This is typically used for hot-reload or dev-mode functionality.
type Watchable interface {
	// Watch returns a channel that receives the id of each flow that changed.
	Watch(ctx context.Context) (<-chan string, error)
}
