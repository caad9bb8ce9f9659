package layout

import (
	"math"
	"testing"

	"github.com/synapse-kb/synapse/backend/pkg/graph"
)

func TestEmptySnapshotShowsPlaceholderWithoutSimulation(t *testing.T) {
	c := NewComponent(800, 600)
	c.SetData(graph.Empty())

	if !c.Empty() {
		t.Fatal("expected placeholder state for an empty snapshot")
	}
	if c.Simulation() != nil {
		t.Fatal("no simulation may be started for an empty snapshot")
	}
}

func TestSetDataStopsPreviousSimulation(t *testing.T) {
	c := NewComponent(800, 600)
	c.SetData(testGraph())
	first := c.Simulation()
	if first == nil || !first.Running() {
		t.Fatal("expected a running simulation for the first snapshot")
	}

	stopped := c.SetData(testGraph())
	if stopped != first {
		t.Fatal("SetData must hand back the replaced simulation")
	}
	if first.Running() {
		t.Fatal("the replaced simulation must be stopped")
	}
	if c.Simulation() == first {
		t.Fatal("expected a fresh simulation for the new snapshot")
	}
}

func TestGenerationGivesLastSnapshotWins(t *testing.T) {
	c := NewComponent(800, 600)
	gen := c.Generation()
	c.SetData(testGraph())
	c.SetData(graph.Empty())
	if c.Generation() != gen+2 {
		t.Fatalf("expected generation %d, got %d", gen+2, c.Generation())
	}
}

func TestSelectionMutualExclusion(t *testing.T) {
	c := NewComponent(800, 600)
	c.SetData(testGraph())

	c.SelectNode("1")
	c.SelectNode("2")
	if sel := c.Selection(); sel.Kind != SelectionNode || sel.ID != "2" {
		t.Fatalf("expected only node 2 selected, got %+v", sel)
	}

	c.SelectEdge("l1")
	if sel := c.Selection(); sel.Kind != SelectionEdge || sel.ID != "l1" {
		t.Fatalf("selecting an edge must clear the node selection, got %+v", sel)
	}

	c.SelectNode("3")
	if sel := c.Selection(); sel.Kind != SelectionNode || sel.ID != "3" {
		t.Fatalf("selecting a node must clear the edge selection, got %+v", sel)
	}

	c.ClearSelection()
	if sel := c.Selection(); sel.Kind != SelectionNone {
		t.Fatalf("empty-canvas click must clear the selection, got %+v", sel)
	}
}

func TestSelectUnknownIDIsIgnored(t *testing.T) {
	c := NewComponent(800, 600)
	c.SetData(testGraph())

	c.SelectNode("nope")
	if c.Selection().Kind != SelectionNone {
		t.Fatal("selecting an unknown node id must not change the selection")
	}
	c.SelectEdge("nope")
	if c.Selection().Kind != SelectionNone {
		t.Fatal("selecting an unknown edge id must not change the selection")
	}
}

func TestSelectedDetailFiltersAuditProperties(t *testing.T) {
	data := testGraph()
	data.Nodes[0].Properties = graph.Properties{
		"name":       "Satya Nadella",
		"title":      "CEO",
		"user_id":    int64(42),
		"created_by": "ingest",
	}
	c := NewComponent(800, 600)
	c.SetData(data)

	c.SelectNode("1")
	d := c.SelectedDetail()
	if d == nil || d.Kind != SelectionNode {
		t.Fatalf("expected node detail, got %+v", d)
	}
	if d.Category != "Person" || d.Name != "Satya Nadella" {
		t.Fatalf("unexpected detail header: %+v", d)
	}
	if _, ok := d.Properties["user_id"]; ok {
		t.Fatal("audit keys must not reach the detail panel")
	}
	if _, ok := d.Properties["title"]; !ok {
		t.Fatal("visible properties must survive the filter")
	}

	c.SelectEdge("l1")
	d = c.SelectedDetail()
	if d == nil || d.Kind != SelectionEdge || d.Type != "CEO_OF" {
		t.Fatalf("expected edge detail with type, got %+v", d)
	}
}

func TestZoomRoundTripAndReset(t *testing.T) {
	v := NewViewport(0, 0)

	v.ZoomIn()
	v.ZoomOut()
	if got := v.Transform().Scale; math.Abs(got-1) > 1e-9 {
		t.Fatalf("zoom-in then zoom-out must round-trip, got scale %v", got)
	}

	v.ZoomBy(100)
	if got := v.Transform().Scale; got != 5 {
		t.Fatalf("scale must clamp to 5, got %v", got)
	}
	v.ZoomBy(0.0001)
	if got := v.Transform().Scale; got != 0.25 {
		t.Fatalf("scale must clamp to 0.25, got %v", got)
	}

	v.PanBy(120, -40)
	v.Reset()
	if v.Transform() != DefaultTransform() {
		t.Fatalf("reset must restore the default transform, got %+v", v.Transform())
	}
}

func TestComponentResetClearsPinsAndTransform(t *testing.T) {
	c := NewComponent(800, 600)
	c.SetData(testGraph())
	c.Simulation().Settle()

	c.DragMove("1", 10, 20)
	if !c.Simulation().Pinned(0) {
		t.Fatal("drag must pin the node")
	}
	c.Viewport().ZoomIn()
	c.Viewport().PanBy(5, 5)

	c.Reset()
	if c.Simulation().Pinned(0) {
		t.Fatal("reset must clear pinned positions")
	}
	if c.Viewport().Transform() != DefaultTransform() {
		t.Fatal("reset must restore the default transform")
	}
	if !c.Simulation().Running() {
		t.Fatal("reset must reheat the simulation")
	}
}

func TestDragEndUnpins(t *testing.T) {
	c := NewComponent(800, 600)
	c.SetData(testGraph())

	c.DragMove("2", 100, 100)
	c.DragEnd("2")
	if c.Simulation().Pinned(1) {
		t.Fatal("drag end must unpin the node")
	}
}

func TestCloseStopsSimulation(t *testing.T) {
	c := NewComponent(800, 600)
	c.SetData(testGraph())
	c.Close()
	if c.Simulation().Running() {
		t.Fatal("close must stop the simulation")
	}
}
