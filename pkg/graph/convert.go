package graph

import "fmt"

// NodeRecord is a raw node row as returned by a graph store, before it is
// shaped into the visualization contract.
type NodeRecord struct {
	ID         string
	Labels     []string
	Properties map[string]any
}

// RelationshipRecord is a raw relationship row as returned by a graph store.
type RelationshipRecord struct {
	ID         string
	Type       string
	StartID    string
	EndID      string
	Properties map[string]any
}

// FromRecords shapes raw store rows into the {nodes, links} wire contract:
// the first label wins as the category, the display name comes from the
// "name" property and falls back to "Node <id>".
func FromRecords(nodes []NodeRecord, rels []RelationshipRecord) GraphData {
	out := Empty()

	for _, n := range nodes {
		label := "Node"
		if len(n.Labels) > 0 {
			label = n.Labels[0]
		}
		props := Properties(n.Properties)
		if props == nil {
			props = Properties{}
		}
		name := props.Name()
		if name == "" {
			name = fmt.Sprintf("Node %s", n.ID)
		}
		out.Nodes = append(out.Nodes, Node{
			ID:         n.ID,
			Label:      label,
			Name:       name,
			Properties: props,
		})
	}

	for _, r := range rels {
		props := Properties(r.Properties)
		if props == nil {
			props = Properties{}
		}
		out.Links = append(out.Links, Link{
			ID:         r.ID,
			Source:     r.StartID,
			Target:     r.EndID,
			Type:       r.Type,
			Properties: props,
		})
	}

	return out
}
