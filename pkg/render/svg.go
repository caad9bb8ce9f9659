// Package render draws a laid-out GraphData snapshot as an SVG node-link
// diagram. Drawing order is fixed: edges first, then nodes, then labels, so
// circles always cover the lines beneath them.
package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/synapse-kb/synapse/backend/pkg/graph"
	"github.com/synapse-kb/synapse/backend/pkg/layout"
)

const (
	defaultStroke      = "#ffffff"
	defaultStrokeWidth = 1.5
	edgeStroke         = "#9e9e9e"
	edgeLabelColor     = "#616161"
	placeholderText    = "No graph data to display"
)

// Params configures one SVG rendering pass.
type Params struct {
	Width     float64
	Height    float64
	Title     string
	Transform layout.Transform
}

// SVG renders the snapshot with the given settled positions. Positions are
// index-addressed into data.Nodes; a mismatched length falls back to the
// placeholder rather than drawing nodes at the origin.
func SVG(data graph.GraphData, positions []layout.Position, p Params) string {
	var b strings.Builder

	fmt.Fprintf(&b,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%g" height="%g" viewBox="0 0 %g %g">`,
		p.Width, p.Height, p.Width, p.Height)
	if p.Title != "" {
		fmt.Fprintf(&b, `<title>%s</title>`, html.EscapeString(p.Title))
	}

	if len(data.Nodes) == 0 || len(positions) != len(data.Nodes) {
		fmt.Fprintf(&b,
			`<text x="%g" y="%g" text-anchor="middle" fill="#757575" font-size="16">%s</text>`,
			p.Width/2, p.Height/2, placeholderText)
		b.WriteString(`</svg>`)
		return b.String()
	}

	t := p.Transform
	if t.Scale == 0 {
		t = layout.DefaultTransform()
	}
	fmt.Fprintf(&b, `<g transform="translate(%g,%g) scale(%g)">`, t.X, t.Y, t.Scale)

	idx := data.NodeIndex()
	links := data.ValidLinks()

	for _, l := range links {
		s := positions[idx[l.Source]]
		e := positions[idx[l.Target]]
		fmt.Fprintf(&b,
			`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1"/>`,
			s.X, s.Y, e.X, e.Y, edgeStroke)
	}
	for i, n := range data.Nodes {
		pos := positions[i]
		fmt.Fprintf(&b,
			`<circle cx="%.1f" cy="%.1f" r="%g" fill="%s" stroke="%s" stroke-width="%g"/>`,
			pos.X, pos.Y, graph.RadiusFor(n.Label), graph.ColorFor(n.Label),
			defaultStroke, defaultStrokeWidth)
	}

	for _, l := range links {
		s := positions[idx[l.Source]]
		e := positions[idx[l.Target]]
		fmt.Fprintf(&b,
			`<text x="%.1f" y="%.1f" text-anchor="middle" fill="%s" font-size="9">%s</text>`,
			(s.X+e.X)/2, (s.Y+e.Y)/2, edgeLabelColor, html.EscapeString(l.Type))
	}

	for i, n := range data.Nodes {
		pos := positions[i]
		fmt.Fprintf(&b,
			`<text x="%.1f" y="%.1f" text-anchor="middle" fill="#212121" font-size="11">%s</text>`,
			pos.X, pos.Y+graph.RadiusFor(n.Label)+12, html.EscapeString(n.Name))
	}

	b.WriteString(`</g></svg>`)
	return b.String()
}
