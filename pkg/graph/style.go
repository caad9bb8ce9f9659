package graph

import "strings"

// Style constants for the node-link rendering contract. Both mappings are
// total: an unrecognized category resolves to the fallback values, never to
// an undefined style.
const (
	FallbackColor = "#90a4ae"
	BaseRadius    = 18.0
	MajorRadius   = 26.0
)

var categoryColors = map[string]string{
	"person":       "#ef5350",
	"organization": "#42a5f5",
	"document":     "#66bb6a",
	"location":     "#ffa726",
	"concept":      "#ab47bc",
	"event":        "#26c6da",
	"product":      "#ec407a",
	"date":         "#8d6e63",
	"chunk":        "#78909c",
	"metadata":     "#bdbdbd",
}

// majorCategories get a larger radius than the base size.
var majorCategories = map[string]struct{}{
	"document":     {},
	"person":       {},
	"organization": {},
}

// ColorFor maps a category label to its fill color. Matching is
// case-insensitive; unknown labels get FallbackColor.
func ColorFor(label string) string {
	if c, ok := categoryColors[strings.ToLower(label)]; ok {
		return c
	}
	return FallbackColor
}

// RadiusFor maps a category label to a circle radius. Document, person and
// organization nodes render larger; everything else gets the base radius.
func RadiusFor(label string) float64 {
	if _, ok := majorCategories[strings.ToLower(label)]; ok {
		return MajorRadius
	}
	return BaseRadius
}
