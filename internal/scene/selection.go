package scene

import (
	"fmt"
	goimage "image"

	img "defectpaste/internal/image"
	"defectpaste/pkg/geometry"
)

// SelectionMode picks the shape the selection tool traces.
type SelectionMode int

const (
	SelectRect SelectionMode = iota
	SelectFreehand
)

func (m SelectionMode) String() string {
	if m == SelectFreehand {
		return "freehand"
	}
	return "rect"
}

// Selections narrower or shorter than this are discarded as accidental
// clicks.
const minSelectionSize = 5

// Freehand paths are resampled to this spacing before rasterization, and
// simplified with this tolerance before being stored as provenance.
const (
	freehandSpacing  = 2.0
	freehandEpsilon  = 1.5
	minFreehandCount = 3
)

// SelectionTool extracts a region of the base image into a new placement.
// It is a one-shot tool: a successful commit disables it until re-armed, so
// the next pointer-down falls through to the drag protocol.
type SelectionTool struct {
	mode    SelectionMode
	enabled bool
	active  bool

	start   geometry.Point2D
	current geometry.Point2D
	path    []geometry.Point2D

	regionSeq int
}

// NewSelectionTool returns a disarmed tool in rectangle mode.
func NewSelectionTool() *SelectionTool {
	return &SelectionTool{mode: SelectRect}
}

// Mode returns the current selection shape.
func (t *SelectionTool) Mode() SelectionMode { return t.mode }

// SetMode switches the selection shape and cancels any gesture in progress.
func (t *SelectionTool) SetMode(m SelectionMode) {
	t.mode = m
	t.Cancel()
}

// Enabled reports whether the tool owns pointer input.
func (t *SelectionTool) Enabled() bool { return t.enabled }

// Arm enables the tool for a single selection gesture.
func (t *SelectionTool) Arm() { t.enabled = true }

// Disarm disables the tool and cancels any gesture in progress.
func (t *SelectionTool) Disarm() {
	t.enabled = false
	t.Cancel()
}

// Active reports whether a gesture is in progress.
func (t *SelectionTool) Active() bool { return t.active }

// Begin starts a gesture at the given canvas point. A no-op while disarmed.
func (t *SelectionTool) Begin(x, y float64) {
	if !t.enabled {
		return
	}
	t.active = true
	t.start = geometry.Point2D{X: x, Y: y}
	t.current = t.start
	t.path = t.path[:0]
	t.path = append(t.path, t.start)
}

// Update extends the gesture to the given canvas point.
func (t *SelectionTool) Update(x, y float64) {
	if !t.active {
		return
	}
	t.current = geometry.Point2D{X: x, Y: y}
	if t.mode == SelectFreehand {
		t.path = append(t.path, t.current)
	}
}

// Cancel abandons the gesture without committing.
func (t *SelectionTool) Cancel() {
	t.active = false
	t.path = nil
}

// Outline returns the in-progress shape for preview drawing: the rectangle
// corners, or the freehand path so far.
func (t *SelectionTool) Outline() []geometry.Point2D {
	if !t.active {
		return nil
	}
	if t.mode == SelectFreehand {
		return t.path
	}
	r := t.rect()
	return []geometry.Point2D{
		{X: r.X, Y: r.Y},
		{X: r.X + r.Width, Y: r.Y},
		{X: r.X + r.Width, Y: r.Y + r.Height},
		{X: r.X, Y: r.Y + r.Height},
	}
}

func (t *SelectionTool) rect() geometry.Rect {
	return geometry.BoundingBox([]geometry.Point2D{t.start, t.current})
}

// Commit ends the gesture and, when the traced shape is usable, extracts the
// covered base-image pixels into a new placement added to the scene. It
// returns nil for degenerate shapes (too small, or fewer than three freehand
// points). A successful commit disarms the tool.
func (t *SelectionTool) Commit(s *Scene) (*Placement, error) {
	if !t.active {
		return nil, nil
	}
	t.active = false

	var p *Placement
	var err error
	switch t.mode {
	case SelectFreehand:
		p, err = t.commitFreehand(s)
	default:
		p, err = t.commitRect(s)
	}
	t.path = nil
	if err != nil || p == nil {
		return p, err
	}

	s.Add(p)
	t.enabled = false
	return p, nil
}

// commitRect crops the axis-aligned rectangle from the base image. The crop
// carries no mask: every pixel of the rectangle is part of the region.
func (t *SelectionTool) commitRect(s *Scene) (*Placement, error) {
	r := t.rect().Outer().Intersect(s.canvasRect())
	if r.Width <= minSelectionSize || r.Height <= minSelectionSize {
		return nil, nil
	}

	sprite, err := img.FromRGBA(cropBase(s.Base(), r))
	if err != nil {
		return nil, fmt.Errorf("extract region: %w", err)
	}

	rect := r
	p, err := NewPlacement(KindRegion, sprite, nil, Provenance{
		TypeName:     "selected_region",
		Source:       t.nextSource(),
		OriginalRect: &rect,
	})
	if err != nil {
		return nil, err
	}
	p.Transform.SetTranslation(r.Center().X, r.Center().Y)
	return p, nil
}

// commitFreehand rasterizes the traced outline into a mask over the crop of
// its bounding box, so only pixels inside the outline survive compositing.
func (t *SelectionTool) commitFreehand(s *Scene) (*Placement, error) {
	if len(t.path) < minFreehandCount {
		return nil, nil
	}
	poly := geometry.ResamplePath(t.path, freehandSpacing)
	r := geometry.BoundingBox(poly).Outer().Intersect(s.canvasRect())
	if r.Width <= minSelectionSize || r.Height <= minSelectionSize {
		return nil, nil
	}

	sprite, err := img.FromRGBA(cropBase(s.Base(), r))
	if err != nil {
		return nil, fmt.Errorf("extract region: %w", err)
	}

	// Test each pixel center of the crop against the outline.
	gray := goimage.NewGray(goimage.Rect(0, 0, r.Width, r.Height))
	covered := false
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			pt := geometry.Point2D{X: float64(r.X+x) + 0.5, Y: float64(r.Y+y) + 0.5}
			if geometry.PointInPolygon(pt, poly) {
				gray.Pix[y*gray.Stride+x] = 255
				covered = true
			}
		}
	}
	if !covered {
		return nil, nil
	}
	mask, err := img.MaskFromGray(gray)
	if err != nil {
		return nil, fmt.Errorf("extract region: %w", err)
	}

	outline := geometry.SimplifyPath(poly, freehandEpsilon)
	rect := r
	p, err := NewPlacement(KindRegion, sprite, mask, Provenance{
		TypeName:     "freehand_region",
		Source:       t.nextSource(),
		OriginalRect: &rect,
		Outline:      outline,
	})
	if err != nil {
		return nil, err
	}
	c := geometry.Centroid(poly)
	p.Transform.SetTranslation(c.X, c.Y)
	return p, nil
}

func (t *SelectionTool) nextSource() string {
	t.regionSeq++
	return fmt.Sprintf("region_%d", t.regionSeq)
}

// cropBase copies the rectangle r of the base image into a fresh RGBA image.
// r must already be clipped to the canvas.
func cropBase(base *img.Buffer, r geometry.RectInt) *goimage.RGBA {
	out := goimage.NewRGBA(goimage.Rect(0, 0, r.Width, r.Height))
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			cr, cg, cb, ca := base.RGBAAt(r.X+x, r.Y+y)
			i := out.PixOffset(x, y)
			out.Pix[i] = cr
			out.Pix[i+1] = cg
			out.Pix[i+2] = cb
			out.Pix[i+3] = ca
		}
	}
	return out
}
