package loam

import (
	"github.com/aretw0/chatflow/pkg/domain"
)

// FlowMetadata represents the header/metadata of a flow document.
// It uses "mapstructure" tags to match standard Frontmatter/YAML keys.
// A markdown body, when present, is free-form documentation and is ignored.
type FlowMetadata struct {
	ID    string                `json:"id" mapstructure:"id"`
	Name  string                `json:"name" mapstructure:"name"`
	Nodes []domain.NodeDocument `json:"nodes" mapstructure:"nodes"`
	Edges []domain.EdgeDocument `json:"edges" mapstructure:"edges"`
}

// Document converts the metadata into a flow document.
// docID (the file path without extension) is used when no explicit id is set.
func (m FlowMetadata) Document(docID string) domain.FlowDocument {
	id := m.ID
	if id == "" {
		id = docID
	}
	return domain.FlowDocument{
		ID:    trimExtension(id),
		Name:  m.Name,
		Nodes: m.Nodes,
		Edges: m.Edges,
	}
}
