package layout

// Transform is a uniform scale+translate applied to the whole diagram layer.
type Transform struct {
	Scale float64 `json:"scale"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// DefaultTransform is the identity transform every viewport starts from and
// returns to on reset.
func DefaultTransform() Transform {
	return Transform{Scale: 1, X: 0, Y: 0}
}

// ZoomStep is the factor applied by one zoom-in control press. Zoom-out
// divides by the same factor so the two operations round-trip.
const ZoomStep = 1.3

// Viewport tracks the pan/zoom state of a rendered diagram. The scale is
// clamped to a configured range, 0.25x-5x unless overridden.
type Viewport struct {
	minScale float64
	maxScale float64
	t        Transform
}

// NewViewport creates a viewport with the given scale clamp. Non-positive
// bounds fall back to the 0.25-5 defaults.
func NewViewport(minScale, maxScale float64) *Viewport {
	if minScale <= 0 {
		minScale = 0.25
	}
	if maxScale <= 0 {
		maxScale = 5
	}
	return &Viewport{
		minScale: minScale,
		maxScale: maxScale,
		t:        DefaultTransform(),
	}
}

// Transform returns the current transform.
func (v *Viewport) Transform() Transform {
	return v.t
}

// ZoomBy multiplies the scale by factor, clamped to the configured range.
// Factors <= 0 are ignored.
func (v *Viewport) ZoomBy(factor float64) {
	if factor <= 0 {
		return
	}
	scale := v.t.Scale * factor
	if scale < v.minScale {
		scale = v.minScale
	}
	if scale > v.maxScale {
		scale = v.maxScale
	}
	v.t.Scale = scale
}

// ZoomIn applies one zoom step.
func (v *Viewport) ZoomIn() {
	v.ZoomBy(ZoomStep)
}

// ZoomOut reverses one zoom step.
func (v *Viewport) ZoomOut() {
	v.ZoomBy(1 / ZoomStep)
}

// PanBy shifts the translation by the given deltas.
func (v *Viewport) PanBy(dx, dy float64) {
	v.t.X += dx
	v.t.Y += dy
}

// Reset restores the default transform regardless of prior state.
func (v *Viewport) Reset() {
	v.t = DefaultTransform()
}
