// Package transform provides the slider-facing placement transform: uniform
// scale, rotation about the sprite center, and canvas translation.
package transform

import (
	"math"

	"defectpaste/pkg/geometry"
)

// Slider bounds. Scale and rotation are clamped to these ranges on every
// mutation; translation is unconstrained.
const (
	MinScale    = 0.25
	MaxScale    = 2.0
	MinRotation = -180.0
	MaxRotation = 180.0
)

// Transform positions a sprite on the canvas: rotation about the sprite's
// own center composed with uniform scale, then translated so the center
// lands at (tx, ty). The zero value is not valid; use New.
type Transform struct {
	scale    float64
	rotation float64 // degrees
	tx, ty   float64
}

// New returns an identity transform anchored at the origin.
func New() Transform {
	return Transform{scale: 1}
}

// Scale returns the current scale factor.
func (t Transform) Scale() float64 { return t.scale }

// Rotation returns the current rotation in degrees.
func (t Transform) Rotation() float64 { return t.rotation }

// Translation returns the placement anchor in canvas coordinates.
func (t Transform) Translation() geometry.Point2D {
	return geometry.Point2D{X: t.tx, Y: t.ty}
}

// SetScale clamps v into [MinScale, MaxScale] and applies it.
func (t *Transform) SetScale(v float64) {
	t.scale = clamp(v, MinScale, MaxScale)
}

// SetRotation clamps v into [MinRotation, MaxRotation] and applies it.
func (t *Transform) SetRotation(v float64) {
	t.rotation = clamp(v, MinRotation, MaxRotation)
}

// SetTranslation moves the anchor. Off-canvas anchors are allowed; rendering
// clips.
func (t *Transform) SetTranslation(x, y float64) {
	t.tx = x
	t.ty = y
}

// TranslateBy shifts the anchor by a delta.
func (t *Transform) TranslateBy(dx, dy float64) {
	t.tx += dx
	t.ty += dy
}

// Forward returns the mapping from sprite-local coordinates (pixel space,
// origin top-left) to canvas coordinates for a sprite of size w x h.
func (t Transform) Forward(w, h int) geometry.AffineTransform {
	center := geometry.Translation(-float64(w)/2, -float64(h)/2)
	rot := geometry.Rotation(t.rotation * math.Pi / 180)
	scale := geometry.Scaling(t.scale)
	anchor := geometry.Translation(t.tx, t.ty)
	return anchor.Compose(rot).Compose(scale).Compose(center)
}

// Inverse returns the canvas-to-sprite mapping. The scale clamp keeps the
// determinant strictly positive, so the inverse always exists.
func (t Transform) Inverse(w, h int) geometry.AffineTransform {
	inv, ok := t.Forward(w, h).Inverse()
	if !ok {
		// Unreachable while MinScale > 0; fall back to identity rather
		// than divide by zero.
		return geometry.Identity()
	}
	return inv
}

// Bounds returns the axis-aligned canvas bounding box of the transformed
// sprite footprint. Every transformed sprite corner lies inside it.
func (t Transform) Bounds(w, h int) geometry.Rect {
	fwd := t.Forward(w, h)
	fw := float64(w)
	fh := float64(h)
	corners := []geometry.Point2D{
		fwd.Apply(geometry.Point2D{X: 0, Y: 0}),
		fwd.Apply(geometry.Point2D{X: fw, Y: 0}),
		fwd.Apply(geometry.Point2D{X: fw, Y: fh}),
		fwd.Apply(geometry.Point2D{X: 0, Y: fh}),
	}
	return geometry.BoundingBox(corners)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
