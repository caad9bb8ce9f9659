package layout

import "github.com/synapse-kb/synapse/backend/pkg/graph"

// SelectionKind distinguishes what a selection refers to.
type SelectionKind string

const (
	SelectionNone SelectionKind = ""
	SelectionNode SelectionKind = "node"
	SelectionEdge SelectionKind = "edge"
)

// Selection is the current detail-panel target. Node and edge selection are
// mutually exclusive.
type Selection struct {
	Kind SelectionKind `json:"kind"`
	ID   string        `json:"id"`
}

// Detail is the payload shown in the detail panel for a selection. The
// property map has already been passed through the display filter, so audit
// and ownership keys never reach it.
type Detail struct {
	Kind       SelectionKind    `json:"kind"`
	Category   string           `json:"category,omitempty"`
	Name       string           `json:"name,omitempty"`
	Type       string           `json:"type,omitempty"`
	Properties graph.Properties `json:"properties"`
}

// Component owns the rendering state for one GraphData snapshot: the force
// simulation, the pan/zoom viewport and the selection. Each new snapshot
// replaces the previous one wholesale; the component never merges graphs.
type Component struct {
	cfg        Config
	data       graph.GraphData
	sim        *Simulation
	viewport   *Viewport
	sel        Selection
	generation int
}

// NewComponent creates a renderer component for the given viewport size.
func NewComponent(width, height float64) *Component {
	return &Component{
		cfg:      DefaultConfig(width, height),
		data:     graph.Empty(),
		viewport: NewViewport(0, 0),
	}
}

// SetData replaces the displayed snapshot. Any running simulation for the
// previous snapshot is stopped first so no orphaned simulation keeps
// animating a discarded view. An empty snapshot leaves the component in the
// placeholder state with no simulation at all.
//
// SetData returns the simulation that was stopped, if any, so callers that
// drive stepping themselves can assert the handover.
func (c *Component) SetData(data graph.GraphData) *Simulation {
	old := c.sim
	if old != nil {
		old.Stop()
	}

	data.Normalize()
	c.data = data
	c.sel = Selection{}
	c.generation++

	if len(data.Nodes) == 0 {
		c.sim = nil
		return old
	}

	c.sim = NewSimulation(data, c.cfg)
	c.sim.Start()
	return old
}

// Data returns the currently displayed snapshot.
func (c *Component) Data() graph.GraphData {
	return c.data
}

// Generation returns the snapshot counter. It increments on every SetData,
// which gives callers a last-snapshot-wins ordering for async responses.
func (c *Component) Generation() int {
	return c.generation
}

// Empty reports whether the component shows the "no data" placeholder.
func (c *Component) Empty() bool {
	return len(c.data.Nodes) == 0
}

// Simulation returns the active simulation, or nil in the placeholder state.
func (c *Component) Simulation() *Simulation {
	return c.sim
}

// Viewport returns the pan/zoom state.
func (c *Component) Viewport() *Viewport {
	return c.viewport
}

// SelectNode selects the node with the given id, clearing any edge
// selection. Selecting an id that is not in the snapshot is a no-op.
func (c *Component) SelectNode(id string) {
	if c.data.NodeByID(id) == nil {
		return
	}
	c.sel = Selection{Kind: SelectionNode, ID: id}
}

// SelectEdge selects the link with the given id, clearing any node
// selection.
func (c *Component) SelectEdge(id string) {
	if c.data.LinkByID(id) == nil {
		return
	}
	c.sel = Selection{Kind: SelectionEdge, ID: id}
}

// ClearSelection clears both node and edge selection, the empty-canvas
// click behavior.
func (c *Component) ClearSelection() {
	c.sel = Selection{}
}

// Selection returns the current selection state.
func (c *Component) Selection() Selection {
	return c.sel
}

// SelectedDetail returns the detail-panel payload for the current
// selection, or nil when nothing is selected.
func (c *Component) SelectedDetail() *Detail {
	switch c.sel.Kind {
	case SelectionNode:
		n := c.data.NodeByID(c.sel.ID)
		if n == nil {
			return nil
		}
		return &Detail{
			Kind:       SelectionNode,
			Category:   n.Label,
			Name:       n.Name,
			Properties: n.Properties.Display(),
		}
	case SelectionEdge:
		l := c.data.LinkByID(c.sel.ID)
		if l == nil {
			return nil
		}
		return &Detail{
			Kind:       SelectionEdge,
			Type:       l.Type,
			Properties: l.Properties.Display(),
		}
	}
	return nil
}

// DragMove pins the node with the given id at the cursor position for the
// duration of the drag, reheating the simulation so neighbors react.
func (c *Component) DragMove(id string, x, y float64) {
	if c.sim == nil {
		return
	}
	if i, ok := c.data.NodeIndex()[id]; ok {
		c.sim.Pin(i, x, y)
	}
}

// DragEnd unpins the node, letting the simulation resettle it.
func (c *Component) DragEnd(id string) {
	if c.sim == nil {
		return
	}
	if i, ok := c.data.NodeIndex()[id]; ok {
		c.sim.Unpin(i)
	}
}

// Reset clears all pinned positions, restores the default transform and
// reheats the simulation so the whole layout resettles.
func (c *Component) Reset() {
	c.viewport.Reset()
	if c.sim == nil {
		return
	}
	c.sim.ClearPins()
	c.sim.Reheat()
}

// Close stops any running simulation. It must be called on teardown.
func (c *Component) Close() {
	if c.sim != nil {
		c.sim.Stop()
	}
}
