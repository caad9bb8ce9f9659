package graph

import "encoding/json"

// Node represents a single entity in a knowledge graph. Label is the
// category tag (Person, Organization, Document, ...), Name is the display
// name, and Properties carries the remaining key-value data.
//
// Identity is ID, unique within one GraphData payload. Nodes are immutable
// once handed to a renderer; layout positions live in the renderer's own
// arena, never on the node itself.
type Node struct {
	ID         string     `json:"id"`
	Label      string     `json:"label"`
	Name       string     `json:"name"`
	Properties Properties `json:"properties"`
}

// Link represents a typed, directed relationship between two node ids.
type Link struct {
	ID         string     `json:"id"`
	Source     string     `json:"source"`
	Target     string     `json:"target"`
	Type       string     `json:"type"`
	Properties Properties `json:"properties"`
}

// GraphData is the {nodes, links} envelope exchanged over the API. It is the
// sole wire contract between the backend and any visualization client.
//
// A GraphData value is a self-contained snapshot: every Link must reference
// node ids present in Nodes, and consumers drop links that do not
// (see ValidLinks). There is no global registry and no merging of snapshots.
type GraphData struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

// Empty returns a GraphData with zero nodes and zero links. Handlers use it
// instead of a nil value so responses always carry both arrays.
func Empty() GraphData {
	return GraphData{Nodes: []Node{}, Links: []Link{}}
}

// UnmarshalJSON decodes a GraphData payload, defaulting missing or null
// nodes/links fields to empty slices rather than nil.
func (g *GraphData) UnmarshalJSON(data []byte) error {
	type alias GraphData
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*g = GraphData(a)
	g.Normalize()
	return nil
}

// Normalize replaces nil slices and nil property maps with empty ones.
func (g *GraphData) Normalize() {
	if g.Nodes == nil {
		g.Nodes = []Node{}
	}
	if g.Links == nil {
		g.Links = []Link{}
	}
	for i := range g.Nodes {
		if g.Nodes[i].Properties == nil {
			g.Nodes[i].Properties = Properties{}
		}
	}
	for i := range g.Links {
		if g.Links[i].Properties == nil {
			g.Links[i].Properties = Properties{}
		}
	}
}

// NodeIndex returns a lookup from node id to its position in Nodes.
func (g GraphData) NodeIndex() map[string]int {
	idx := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		idx[n.ID] = i
	}
	return idx
}

// ValidLinks returns the links whose source and target ids both resolve to
// nodes in this snapshot, preserving order. Dangling links are dropped
// silently; rendering continues without them.
func (g GraphData) ValidLinks() []Link {
	idx := g.NodeIndex()
	valid := make([]Link, 0, len(g.Links))
	for _, l := range g.Links {
		if _, ok := idx[l.Source]; !ok {
			continue
		}
		if _, ok := idx[l.Target]; !ok {
			continue
		}
		valid = append(valid, l)
	}
	return valid
}

// NodeByID returns the node with the given id, or nil if absent.
func (g GraphData) NodeByID(id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// LinkByID returns the link with the given id, or nil if absent.
func (g GraphData) LinkByID(id string) *Link {
	for i := range g.Links {
		if g.Links[i].ID == id {
			return &g.Links[i]
		}
	}
	return nil
}
