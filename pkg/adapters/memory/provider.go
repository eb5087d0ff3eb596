package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/aretw0/chatflow/internal/logging"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/ports"
	"github.com/aretw0/chatflow/pkg/schema"
)

// Provider implements ports.GraphProvider over validated, indexed graphs held in memory.
// Flows are either added up front or loaded lazily from a ports.FlowSource and cached.
// Safe for concurrent use.
type Provider struct {
	mu       sync.RWMutex
	flows    map[string]*index
	source   ports.FlowSource
	validate bool
	logger   *slog.Logger
}

// Option configures a Provider.
type Option func(*Provider)

// WithSource loads flows that were not added explicitly from src.
func WithSource(src ports.FlowSource) Option {
	return func(p *Provider) {
		p.source = src
	}
}

// WithoutValidation accepts graphs that violate the structural invariants.
// Lookups still resolve deterministically.
func WithoutValidation() Option {
	return func(p *Provider) {
		p.validate = false
	}
}

// WithLogger sets the logger used for load events.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		p.logger = logger
	}
}

// NewProvider creates an empty provider.
func NewProvider(opts ...Option) *Provider {
	p := &Provider{
		flows:    make(map[string]*index),
		validate: true,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewFromDocuments creates a provider holding the given flows.
// This handles payload decoding and validation, improving DX for tests.
func NewFromDocuments(docs []domain.FlowDocument, opts ...Option) (*Provider, error) {
	p := NewProvider(opts...)
	for _, doc := range docs {
		if err := p.AddDocument(doc); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// AddDocument decodes and adds a flow document.
func (p *Provider) AddDocument(doc domain.FlowDocument) error {
	g, err := doc.Graph()
	if err != nil {
		return err
	}
	return p.AddGraph(g)
}

// AddGraph validates and indexes g, replacing any flow with the same id.
func (p *Provider) AddGraph(g *domain.Graph) error {
	idx, err := p.build(g)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.flows[g.Flow.ID] = idx
	return nil
}

// Invalidate drops a cached flow so the next lookup reloads it from the source.
func (p *Provider) Invalidate(flowID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.flows, flowID)
}

// GetTrigger returns the trigger node of the flow.
// With several triggers (only possible WithoutValidation) the lowest node id wins.
func (p *Provider) GetTrigger(ctx context.Context, flowID string) (*domain.Node, error) {
	idx, err := p.lookup(ctx, flowID)
	if err != nil {
		return nil, err
	}
	if idx.trigger == nil {
		return nil, fmt.Errorf("flow %s: %w", flowID, domain.ErrTriggerNotFound)
	}
	n := *idx.trigger
	return &n, nil
}

// GetNode returns a node by id.
func (p *Provider) GetNode(ctx context.Context, flowID, nodeID string) (*domain.Node, error) {
	idx, err := p.lookup(ctx, flowID)
	if err != nil {
		return nil, err
	}
	node, ok := idx.nodes[nodeID]
	if !ok {
		return nil, fmt.Errorf("flow %s: %w: %s", flowID, domain.ErrNodeNotFound, nodeID)
	}
	n := *node
	return &n, nil
}

// GetOutgoingEdge returns the edge leaving nodeID on port.
// With several candidates (only possible WithoutValidation) the lowest edge id wins.
func (p *Provider) GetOutgoingEdge(ctx context.Context, flowID, nodeID string, port domain.Port) (*domain.Edge, error) {
	idx, err := p.lookup(ctx, flowID)
	if err != nil {
		return nil, err
	}
	edge, ok := idx.edges[edgeKey{node: nodeID, port: port}]
	if !ok {
		return nil, fmt.Errorf("flow %s: %w from %s on port %q", flowID, domain.ErrNoEdge, nodeID, port)
	}
	e := *edge
	return &e, nil
}

// Graph implements ports.GraphInspector.
func (p *Provider) Graph(ctx context.Context, flowID string) (*domain.Graph, error) {
	idx, err := p.lookup(ctx, flowID)
	if err != nil {
		return nil, err
	}
	g := *idx.graph
	g.Nodes = append([]domain.Node(nil), idx.graph.Nodes...)
	g.Edges = append([]domain.Edge(nil), idx.graph.Edges...)
	return &g, nil
}

// LoadGraph implements ports.FlowSource, so a Provider can feed another one.
func (p *Provider) LoadGraph(ctx context.Context, flowID string) (*domain.Graph, error) {
	return p.Graph(ctx, flowID)
}

// ListFlows returns the ids of cached flows merged with those of the source.
func (p *Provider) ListFlows(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)

	p.mu.RLock()
	for id := range p.flows {
		seen[id] = true
	}
	p.mu.RUnlock()

	if p.source != nil {
		ids, err := p.source.ListFlows(ctx)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			seen[id] = true
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (p *Provider) lookup(ctx context.Context, flowID string) (*index, error) {
	p.mu.RLock()
	idx, ok := p.flows[flowID]
	p.mu.RUnlock()
	if ok {
		return idx, nil
	}

	if p.source == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrFlowNotFound, flowID)
	}

	g, err := p.source.LoadGraph(ctx, flowID)
	if err != nil {
		return nil, err
	}
	idx, err = p.build(g)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.flows[flowID] = idx
	p.mu.Unlock()

	p.logger.Debug("flow loaded", "flow_id", flowID, "nodes", len(g.Nodes), "edges", len(g.Edges))
	return idx, nil
}

type edgeKey struct {
	node string
	port domain.Port
}

// index is a graph with its lookups precomputed.
type index struct {
	graph   *domain.Graph
	trigger *domain.Node
	nodes   map[string]*domain.Node
	edges   map[edgeKey]*domain.Edge
}

func (p *Provider) build(g *domain.Graph) (*index, error) {
	if g == nil {
		return nil, fmt.Errorf("memory: nil graph")
	}
	if p.validate {
		if err := schema.ValidateGraph(g); err != nil {
			return nil, fmt.Errorf("flow %s: %w: %w", g.Flow.ID, domain.ErrGraphMalformed, err)
		}
	}

	idx := &index{
		graph: g,
		nodes: make(map[string]*domain.Node, len(g.Nodes)),
		edges: make(map[edgeKey]*domain.Edge, len(g.Edges)),
	}

	for i := range g.Nodes {
		n := &g.Nodes[i]
		if _, dup := idx.nodes[n.ID]; !dup {
			idx.nodes[n.ID] = n
		}
		if n.Type == domain.NodeTypeTrigger && (idx.trigger == nil || n.ID < idx.trigger.ID) {
			idx.trigger = n
		}
	}

	for i := range g.Edges {
		e := &g.Edges[i]
		key := edgeKey{node: e.Source, port: e.Port}
		if cur, ok := idx.edges[key]; !ok || e.ID < cur.ID {
			idx.edges[key] = e
		}
	}

	return idx, nil
}
