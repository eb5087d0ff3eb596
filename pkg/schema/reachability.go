package schema

import (
	"sort"

	"github.com/aretw0/chatflow/pkg/domain"
)

// Unreachable returns the ids of nodes that no path from the trigger reaches, sorted.
// Such nodes are legal (editors keep drafts around) but never execute.
// A graph without a trigger reports every non-trigger node.
func Unreachable(g *domain.Graph) []string {
	if g == nil {
		return nil
	}

	outgoing := make(map[string][]string)
	for _, e := range g.Edges {
		outgoing[e.Source] = append(outgoing[e.Source], e.Target)
	}

	visited := make(map[string]bool)
	var queue []string
	for _, n := range g.Nodes {
		if n.Type == domain.NodeTypeTrigger {
			queue = append(queue, n.ID)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if visited[current] {
			continue
		}
		visited[current] = true

		for _, target := range outgoing[current] {
			if !visited[target] {
				queue = append(queue, target)
			}
		}
	}

	var out []string
	for _, n := range g.Nodes {
		if !visited[n.ID] && n.Type != domain.NodeTypeTrigger {
			out = append(out, n.ID)
		}
	}
	sort.Strings(out)
	return out
}
