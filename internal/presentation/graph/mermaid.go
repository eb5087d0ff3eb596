package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/chatflow/pkg/domain"
)

// GraphOverlay contains conversation state to visualize on the graph.
type GraphOverlay struct {
	VisitedNodes []string
	CurrentNode  string
}

// GenerateMermaid produces a Mermaid flowchart for a flow graph.
// Shapes follow the node's role:
//   - Trigger: ((Circle))
//   - Condition: {Rhombus}
//   - Question: [/Parallelogram/]
//   - Webhook: [[Subroutine]]
//   - Default: [Rectangle]
//
// Condition edges are labelled TRUE/FALSE. Overlay styles are applied when provided.
func GenerateMermaid(g *domain.Graph, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	if g == nil {
		return sb.String()
	}

	for _, node := range g.Nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch node.Type {
		case domain.NodeTypeTrigger:
			opener, closer = "((", "))"
		case domain.NodeTypeCondition:
			opener, closer = "{", "}"
		case domain.NodeTypeQuestion:
			opener, closer = "[/", "/]"
		case domain.NodeTypeWebhook:
			opener, closer = "[[", "]]"
		}

		label := node.ID
		if node.Type != "" && node.Type != domain.NodeTypeTrigger {
			label = fmt.Sprintf("%s <br/> %s", node.ID, node.Type)
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(label), closer)
	}

	edges := make([]domain.Edge, len(g.Edges))
	copy(edges, g.Edges)
	sort.SliceStable(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })

	for _, e := range edges {
		arrow := "-->"
		if e.Port != domain.PortNone {
			arrow = fmt.Sprintf("-- \"%s\" -->", strings.ToUpper(escapeLabel(string(e.Port))))
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(e.Source), arrow, sanitizeMermaidID(e.Target))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text keeps contrast on both light and dark themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}

		if overlay.CurrentNode != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode))
		}
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
