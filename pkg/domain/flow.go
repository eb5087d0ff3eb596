package domain

// Flow is an authored conversational script.
type Flow struct {
	ID   string `json:"id" yaml:"id" validate:"required"`
	Name string `json:"name" yaml:"name"`
}

// Graph is a flow together with its nodes and edges.
// Graphs are read-only to the engine.
type Graph struct {
	Flow  Flow   `json:"flow"`
	Nodes []Node `json:"nodes" validate:"dive"`
	Edges []Edge `json:"edges" validate:"dive"`
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i], true
		}
	}
	return nil, false
}

// Outgoing returns the edges leaving nodeID, in declaration order.
func (g *Graph) Outgoing(nodeID string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.Source == nodeID {
			out = append(out, e)
		}
	}
	return out
}

// Incoming returns the edges entering nodeID, in declaration order.
func (g *Graph) Incoming(nodeID string) []Edge {
	var in []Edge
	for _, e := range g.Edges {
		if e.Target == nodeID {
			in = append(in, e)
		}
	}
	return in
}
