package scene

import (
	goimage "image"

	img "defectpaste/internal/image"
	"defectpaste/pkg/geometry"
)

// Scene is the full editable state for one target image: the immutable base
// image, placements in painter's order (last inserted renders on top and is
// hit-tested first), and one paint layer composited above everything.
type Scene struct {
	base       *img.Buffer
	placements []*Placement
	paint      *PaintLayer

	selected int // index into placements, -1 for none

	dragging   bool
	dragOffset geometry.Point2D
}

// New creates an empty scene over a base image.
func New(base *img.Buffer) (*Scene, error) {
	if !base.Available() {
		return nil, &img.AssetUnavailableError{What: "base image"}
	}
	return &Scene{
		base:     base,
		paint:    NewPaintLayer(base.Width(), base.Height()),
		selected: -1,
	}, nil
}

// Base returns the scene's base image.
func (s *Scene) Base() *img.Buffer { return s.base }

// Width returns the canvas width in pixels.
func (s *Scene) Width() int { return s.base.Width() }

// Height returns the canvas height in pixels.
func (s *Scene) Height() int { return s.base.Height() }

// Paint returns the scene's paint layer.
func (s *Scene) Paint() *PaintLayer { return s.paint }

// Placements returns the z-ordered placement list (bottom first).
func (s *Scene) Placements() []*Placement { return s.placements }

// Add appends a placement on top of the stack and selects it.
func (s *Scene) Add(p *Placement) {
	s.placements = append(s.placements, p)
	s.selected = len(s.placements) - 1
}

// Select makes the placement at index i the slider target. Out-of-range
// indices deselect.
func (s *Scene) Select(i int) {
	if i < 0 || i >= len(s.placements) {
		s.selected = -1
		return
	}
	s.selected = i
}

// Deselect clears the selection.
func (s *Scene) Deselect() {
	s.selected = -1
	s.dragging = false
}

// SelectedIndex returns the selected placement index, or -1.
func (s *Scene) SelectedIndex() int { return s.selected }

// Selected returns the selected placement, or nil.
func (s *Scene) Selected() *Placement {
	if s.selected < 0 || s.selected >= len(s.placements) {
		return nil
	}
	return s.placements[s.selected]
}

// RemoveSelected removes the selected placement. Without a selection it is a
// no-op.
func (s *Scene) RemoveSelected() {
	if s.selected < 0 || s.selected >= len(s.placements) {
		return
	}
	s.placements = append(s.placements[:s.selected], s.placements[s.selected+1:]...)
	s.selected = -1
	s.dragging = false
}

// ClearPlacements removes every placement.
func (s *Scene) ClearPlacements() {
	s.placements = nil
	s.selected = -1
	s.dragging = false
}

// ClearAll removes every placement and clears the paint layer.
func (s *Scene) ClearAll() {
	s.ClearPlacements()
	s.paint.Clear()
}

// SetSelectedScale applies a slider scale value to the selection; a no-op
// with no selection.
func (s *Scene) SetSelectedScale(v float64) {
	if p := s.Selected(); p != nil {
		p.Transform.SetScale(v)
	}
}

// SetSelectedRotation applies a slider rotation value to the selection; a
// no-op with no selection.
func (s *Scene) SetSelectedRotation(v float64) {
	if p := s.Selected(); p != nil {
		p.Transform.SetRotation(v)
	}
}

// SetSelectedOpacity applies a slider opacity value to the selection; a
// no-op with no selection.
func (s *Scene) SetSelectedOpacity(v float64) {
	if p := s.Selected(); p != nil {
		p.SetOpacity(v)
	}
}

// HitTest walks placements topmost-first and returns the index of the first
// placement hit at the canvas point, or -1. First match wins.
func (s *Scene) HitTest(x, y float64) int {
	for i := len(s.placements) - 1; i >= 0; i-- {
		if s.placements[i].HitAt(x, y) {
			return i
		}
	}
	return -1
}

// PointerDown starts the drag protocol: hit-test, select the hit placement
// (or deselect on a miss), and record the pointer offset from its anchor.
func (s *Scene) PointerDown(x, y float64) {
	i := s.HitTest(x, y)
	if i < 0 {
		s.Deselect()
		return
	}
	s.selected = i
	s.dragging = true
	t := s.placements[i].Transform.Translation()
	s.dragOffset = geometry.Point2D{X: x - t.X, Y: y - t.Y}
}

// PointerMove updates the dragged placement's translation by the pointer
// delta. Translation is unbounded; off-canvas placements simply clip.
func (s *Scene) PointerMove(x, y float64) {
	if !s.dragging {
		return
	}
	if p := s.Selected(); p != nil {
		p.Transform.SetTranslation(x-s.dragOffset.X, y-s.dragOffset.Y)
	}
}

// PointerUp ends a drag; the placement stays selected at its last position.
func (s *Scene) PointerUp(x, y float64) {
	if s.dragging {
		s.PointerMove(x, y)
		s.dragging = false
	}
}

// Dragging reports whether a drag is in progress.
func (s *Scene) Dragging() bool { return s.dragging }

// canvasRect returns the full canvas as an integer rect.
func (s *Scene) canvasRect() geometry.RectInt {
	return geometry.RectInt{Width: s.base.Width(), Height: s.base.Height()}
}

// CompositeInto renders the scene into dst: base image, placements in z
// order, then the paint layer on top. dst must match the canvas size.
func (s *Scene) CompositeInto(dst *goimage.RGBA) error {
	if err := s.base.CopyToRGBA(dst); err != nil {
		return err
	}
	canvas := s.canvasRect()
	for _, p := range s.placements {
		region := p.Bounds().Intersect(canvas)
		if region.Empty() {
			continue
		}
		if err := p.Render(dst, region); err != nil {
			return err
		}
	}
	img.OverImage(dst, s.paint.Image())
	return nil
}

// Composite renders the scene into a fresh buffer.
func (s *Scene) Composite() (*goimage.RGBA, error) {
	dst := goimage.NewRGBA(goimage.Rect(0, 0, s.base.Width(), s.base.Height()))
	if err := s.CompositeInto(dst); err != nil {
		return nil, err
	}
	return dst, nil
}

// MaskUnion returns the derived defect mask: the per-pixel maximum of every
// placement's transformed mask at full opacity. Paint strokes do not
// contribute.
func (s *Scene) MaskUnion() (*goimage.Gray, error) {
	dst := goimage.NewGray(goimage.Rect(0, 0, s.base.Width(), s.base.Height()))
	for _, p := range s.placements {
		if err := p.RenderMask(dst); err != nil {
			return nil, err
		}
	}
	return dst, nil
}

// Snapshot returns an immutable-enough copy for a background render or a
// session save: placements and the paint layer by value, pixel buffers
// shared by reference.
func (s *Scene) Snapshot() *Scene {
	copied := make([]*Placement, len(s.placements))
	for i, p := range s.placements {
		copied[i] = p.Clone()
	}
	return &Scene{
		base:       s.base,
		placements: copied,
		paint:      s.paint.Clone(),
		selected:   s.selected,
	}
}
