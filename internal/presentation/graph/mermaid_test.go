package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/chatflow/internal/presentation/graph"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		graph    *domain.Graph
		contains []string
	}{
		{
			name: "Node Shapes",
			graph: &domain.Graph{Nodes: []domain.Node{
				{ID: "start", Type: domain.NodeTypeTrigger},
				{ID: "q1", Type: domain.NodeTypeQuestion},
				{ID: "c1", Type: domain.NodeTypeCondition},
				{ID: "hook", Type: domain.NodeTypeWebhook},
				{ID: "m1", Type: domain.NodeTypeMessage},
			}},
			contains: []string{
				`start(("start"))`,
				`q1[/"q1 <br/> question"/]`,
				`c1{"c1 <br/> condition"}`,
				`hook[["hook <br/> webhook"]]`,
				`m1["m1 <br/> message"]`,
			},
		},
		{
			name: "ID Sanitization",
			graph: &domain.Graph{Nodes: []domain.Node{
				{ID: "path/to/file.md", Type: domain.NodeTypeMessage},
				{ID: "hyphen-ated", Type: domain.NodeTypeMessage},
			}},
			contains: []string{
				`path_to_file_md["path/to/file.md <br/> message"]`,
				`hyphen_ated["hyphen-ated <br/> message"]`,
			},
		},
		{
			name: "Port Labels",
			graph: &domain.Graph{Edges: []domain.Edge{
				{ID: "e1", Source: "start", Target: "check"},
				{ID: "e2", Source: "check", Target: "yes", Port: domain.PortTrue},
				{ID: "e3", Source: "check", Target: "no", Port: domain.PortFalse},
			}},
			contains: []string{
				"start --> check",
				`check -- "TRUE" --> yes`,
				`check -- "FALSE" --> no`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.graph, nil)
			assert.True(t, strings.HasPrefix(got, "graph TD\n"))
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			assert.NotContains(t, got, "classDef")
		})
	}
}

func TestGenerateMermaid_FromDocument(t *testing.T) {
	g, err := ports.ContractDocument().Graph()
	require.NoError(t, err)

	got := graph.GenerateMermaid(g, &graph.GraphOverlay{
		VisitedNodes: []string{"start", "ask", "ask"},
		CurrentNode:  "check",
	})

	assert.Contains(t, got, `check -- "TRUE" --> yes`, "editor handles are normalized before rendering")
	assert.Equal(t, 1, strings.Count(got, "class ask visited;"))
	assert.Contains(t, got, "class check current;")
}

func TestGenerateMermaid_Nil(t *testing.T) {
	assert.Equal(t, "graph TD\n", graph.GenerateMermaid(nil, nil))
}
