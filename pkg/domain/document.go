package domain

import (
	"fmt"
)

// FlowDocument is the interchange form of a flow used by files, repositories and databases.
// Node configuration is kept loosely typed until Graph decodes it into payloads.
type FlowDocument struct {
	ID    string         `json:"id" yaml:"id" mapstructure:"id"`
	Name  string         `json:"name" yaml:"name" mapstructure:"name"`
	Nodes []NodeDocument `json:"nodes" yaml:"nodes" mapstructure:"nodes"`
	Edges []EdgeDocument `json:"edges" yaml:"edges" mapstructure:"edges"`
}

// NodeDocument is the loosely typed form of a Node.
type NodeDocument struct {
	ID   string         `json:"id" yaml:"id" mapstructure:"id"`
	Type string         `json:"type,omitempty" yaml:"type,omitempty" mapstructure:"type"`
	Data map[string]any `json:"data,omitempty" yaml:"data,omitempty" mapstructure:"data"`
}

// EdgeDocument is the loosely typed form of an Edge.
// Handle accepts both port names and editor handle names ("source-true").
type EdgeDocument struct {
	ID     string `json:"id" yaml:"id" mapstructure:"id"`
	Source string `json:"source" yaml:"source" mapstructure:"source"`
	Target string `json:"target" yaml:"target" mapstructure:"target"`
	Handle string `json:"handle,omitempty" yaml:"handle,omitempty" mapstructure:"handle"`
}

// Graph decodes the document into a Graph.
// A node without a top-level type takes it from data["type"].
func (d FlowDocument) Graph() (*Graph, error) {
	g := &Graph{
		Flow:  Flow{ID: d.ID, Name: d.Name},
		Nodes: make([]Node, 0, len(d.Nodes)),
		Edges: make([]Edge, 0, len(d.Edges)),
	}

	for _, nd := range d.Nodes {
		nodeType := nd.Type
		if nodeType == "" {
			if t, ok := nd.Data["type"].(string); ok {
				nodeType = t
			}
		}
		n, err := NewNode(nd.ID, NodeType(nodeType), nd.Data)
		if err != nil {
			return nil, fmt.Errorf("flow %s: %w", d.ID, err)
		}
		n.FlowID = d.ID
		g.Nodes = append(g.Nodes, n)
	}

	for _, ed := range d.Edges {
		g.Edges = append(g.Edges, Edge{
			ID:     ed.ID,
			FlowID: d.ID,
			Source: ed.Source,
			Target: ed.Target,
			Port:   NormalizePort(ed.Handle),
		})
	}

	return g, nil
}
