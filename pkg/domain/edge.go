package domain

// Port selects which outgoing edge of a condition node is followed.
type Port string

const (
	// PortNone marks an unconditional edge.
	PortNone  Port = ""
	PortTrue  Port = "true"
	PortFalse Port = "false"
)

// Editor handle names, normalized on load.
const (
	handleTrue  = "source-true"
	handleFalse = "source-false"
)

// NormalizePort maps editor handle names onto ports. Other values pass through unchanged.
func NormalizePort(p string) Port {
	switch p {
	case handleTrue:
		return PortTrue
	case handleFalse:
		return PortFalse
	}
	return Port(p)
}

// PortFor returns the port selected by a condition outcome.
func PortFor(ok bool) Port {
	if ok {
		return PortTrue
	}
	return PortFalse
}

// Edge is a directed connection between two nodes of the same flow.
type Edge struct {
	ID     string `json:"id" yaml:"id" validate:"required"`
	FlowID string `json:"flow_id,omitempty" yaml:"flow_id,omitempty"`
	Source string `json:"source_node_id" yaml:"source_node_id" validate:"required"`
	Target string `json:"target_node_id" yaml:"target_node_id" validate:"required"`
	Port   Port   `json:"source_port,omitempty" yaml:"source_port,omitempty" validate:"omitempty,oneof=true false"`
}
