package dsl

import (
	"fmt"

	"github.com/aretw0/chatflow/pkg/adapters/memory"
	"github.com/aretw0/chatflow/pkg/domain"
)

// Builder manages the flow construction.
// Nodes and edges keep the order in which they were added.
type Builder struct {
	id    string
	name  string
	order []string
	nodes map[string]*NodeBuilder
	edges []domain.EdgeDocument
}

// New creates a new flow builder.
func New(flowID string) *Builder {
	return &Builder{
		id:    flowID,
		nodes: make(map[string]*NodeBuilder),
	}
}

// Name sets the human readable flow name.
func (b *Builder) Name(name string) *Builder {
	b.name = name
	return b
}

// Add creates a node of any type with raw configuration.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(id string, nodeType domain.NodeType, data map[string]any) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node: domain.NodeDocument{
			ID:   id,
			Type: string(nodeType),
			Data: data,
		},
		builder: b,
	}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	return nb
}

func (b *Builder) connect(source, target string, port domain.Port) {
	b.edges = append(b.edges, domain.EdgeDocument{
		ID:     fmt.Sprintf("e%d", len(b.edges)+1),
		Source: source,
		Target: target,
		Handle: string(port),
	})
}

// Document returns the flow as an interchange document.
func (b *Builder) Document() domain.FlowDocument {
	doc := domain.FlowDocument{
		ID:    b.id,
		Name:  b.name,
		Nodes: make([]domain.NodeDocument, 0, len(b.order)),
		Edges: append([]domain.EdgeDocument(nil), b.edges...),
	}
	for _, id := range b.order {
		doc.Nodes = append(doc.Nodes, b.nodes[id].node)
	}
	return doc
}

// Graph decodes the flow into a domain graph.
func (b *Builder) Graph() (*domain.Graph, error) {
	return b.Document().Graph()
}

// Build compiles the flow into a validated in-memory provider.
func (b *Builder) Build() (*memory.Provider, error) {
	provider, err := memory.NewFromDocuments([]domain.FlowDocument{b.Document()})
	if err != nil {
		return nil, fmt.Errorf("failed to build memory provider: %w", err)
	}
	return provider, nil
}
