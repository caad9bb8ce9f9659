package util

import (
	"fmt"
	"strings"

	"github.com/synapse-kb/synapse/backend/pkg/graph"
)

const maxSummaryItems = 5

// GraphContext renders a subgraph as plain text for the answer prompt:
// one line per node and one per relationship, with the node names the
// model should ground its answer in.
func GraphContext(g graph.GraphData) string {
	if len(g.Nodes) == 0 {
		return ""
	}

	var b strings.Builder

	b.WriteString("Nodes:\n")
	for _, node := range g.Nodes {
		fmt.Fprintf(&b, "- %s (%s)\n", node.Name, node.Label)
	}

	links := g.ValidLinks()
	if len(links) > 0 {
		idx := g.NodeIndex()
		b.WriteString("Relationships:\n")
		for _, link := range links {
			fmt.Fprintf(&b, "- %s %s %s\n",
				g.Nodes[idx[link.Source]].Name,
				link.Type,
				g.Nodes[idx[link.Target]].Name,
			)
		}
	}

	return b.String()
}

// HeuristicAnswer builds the canned response used when no language model
// is configured or the model call fails. It names the match count and
// lists the first few items.
func HeuristicAnswer(term string, g graph.GraphData) string {
	var b strings.Builder

	if term != "" {
		fmt.Fprintf(&b, "I found %d entities related to '%s' in your knowledge graph.", len(g.Nodes), term)
	} else {
		fmt.Fprintf(&b, "I found %d nodes and %d relationships in your knowledge graph.", len(g.Nodes), len(g.Links))
	}

	if len(g.Nodes) > 0 {
		if term != "" {
			b.WriteString("\n\nHere are some related items:\n")
		} else {
			b.WriteString("\n\nHere are some items from your knowledge graph:\n")
		}
		for i, node := range g.Nodes {
			if i >= maxSummaryItems {
				break
			}
			fmt.Fprintf(&b, "- %s (%s)\n", node.Name, node.Label)
		}
	}

	if term != "" && len(g.Links) > 0 {
		fmt.Fprintf(&b, "\nThese entities have %d relationships between them.", len(g.Links))
	}

	return b.String()
}
