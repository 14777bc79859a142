// Package scene holds the editable state for one target image: placed
// sprites, the paint layer, the selection tool, and the compositor.
package scene

import (
	goimage "image"

	img "defectpaste/internal/image"
	"defectpaste/internal/transform"
	"defectpaste/pkg/geometry"
)

// Kind distinguishes catalog defects from operator-extracted regions.
type Kind int

const (
	KindDefect Kind = iota
	KindRegion
)

func (k Kind) String() string {
	switch k {
	case KindDefect:
		return "defect"
	case KindRegion:
		return "region"
	default:
		return "unknown"
	}
}

// Default opacities applied at construction.
const (
	DefaultDefectOpacity = 0.7
	DefaultRegionOpacity = 0.8
)

// Mask samples at or below this value do not count as hits, so masked-out
// margins are not draggable.
const hitMaskThreshold = 8

// Provenance records where a placement's pixels came from, for the exported
// metadata.
type Provenance struct {
	TypeName  string // defect type or "selected_region"/"freehand_region"
	Source    string
	MaskPath  string
	ImagePath string

	// Region placements only: originating shape in base-image coordinates.
	OriginalRect *geometry.RectInt
	Outline      []geometry.Point2D
}

// Placement is one positioned, transformed, alpha-weighted instance of a
// sprite (plus optional mask) on the canvas. A placement belongs to exactly
// one scene.
type Placement struct {
	Kind      Kind
	Sprite    *img.Buffer
	Mask      *img.Buffer // nil means fully opaque
	Transform transform.Transform
	Prov      Provenance

	opacity float64
}

// NewPlacement validates the sprite/mask pair and returns a placement with
// an identity transform and the kind's default opacity.
func NewPlacement(kind Kind, sprite, mask *img.Buffer, prov Provenance) (*Placement, error) {
	if !sprite.Available() {
		return nil, &img.AssetUnavailableError{What: "sprite"}
	}
	if mask != nil {
		if !mask.Available() {
			return nil, &img.AssetUnavailableError{What: "mask"}
		}
		if mask.Width() != sprite.Width() || mask.Height() != sprite.Height() {
			return nil, &img.GeometryMismatchError{
				SpriteWidth: sprite.Width(), SpriteHeight: sprite.Height(),
				MaskWidth: mask.Width(), MaskHeight: mask.Height(),
			}
		}
	}

	opacity := DefaultDefectOpacity
	if kind == KindRegion {
		opacity = DefaultRegionOpacity
	}

	return &Placement{
		Kind:      kind,
		Sprite:    sprite,
		Mask:      mask,
		Transform: transform.New(),
		Prov:      prov,
		opacity:   opacity,
	}, nil
}

// Opacity returns the placement opacity in [0, 1].
func (p *Placement) Opacity() float64 { return p.opacity }

// SetOpacity clamps v into [0, 1] and applies it.
func (p *Placement) SetOpacity(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	p.opacity = v
}

// Bounds returns the integer canvas bounding box of the transformed sprite.
func (p *Placement) Bounds() geometry.RectInt {
	return p.Transform.Bounds(p.Sprite.Width(), p.Sprite.Height()).Outer()
}

// Render composites the placement onto dst, restricted to region.
func (p *Placement) Render(dst *goimage.RGBA, region geometry.RectInt) error {
	if !p.Sprite.Available() {
		return &img.AssetUnavailableError{What: "sprite " + p.Prov.Source}
	}
	if p.Mask != nil && !p.Mask.Available() {
		return &img.AssetUnavailableError{What: "mask " + p.Prov.Source}
	}
	inv := p.Transform.Inverse(p.Sprite.Width(), p.Sprite.Height())
	img.DrawSprite(dst, p.Sprite, p.Mask, inv, p.opacity, region)
	return nil
}

// RenderMask draws the placement's transformed mask footprint onto dst at
// full opacity, taking the per-pixel maximum with existing coverage.
func (p *Placement) RenderMask(dst *goimage.Gray) error {
	if !p.Sprite.Available() {
		return &img.AssetUnavailableError{What: "sprite " + p.Prov.Source}
	}
	if p.Mask != nil && !p.Mask.Available() {
		return &img.AssetUnavailableError{What: "mask " + p.Prov.Source}
	}
	inv := p.Transform.Inverse(p.Sprite.Width(), p.Sprite.Height())
	img.DrawMaskUnion(dst, p.Sprite, p.Mask, inv, p.Bounds())
	return nil
}

// HitAt reports whether the canvas point (x, y) lands on the placement: the
// inverse-mapped point must fall inside the sprite and, when a mask is
// present, on a mask value above the near-zero threshold.
func (p *Placement) HitAt(x, y float64) bool {
	inv := p.Transform.Inverse(p.Sprite.Width(), p.Sprite.Height())
	s := inv.Apply(geometry.Point2D{X: x, Y: y})
	if s.X < 0 || s.X >= float64(p.Sprite.Width()) || s.Y < 0 || s.Y >= float64(p.Sprite.Height()) {
		return false
	}
	if p.Mask == nil {
		return true
	}
	return p.Mask.GrayAt(int(s.X), int(s.Y)) > hitMaskThreshold
}

// Clone returns a copy sharing the immutable pixel buffers but owning its
// transform and opacity state.
func (p *Placement) Clone() *Placement {
	c := *p
	if p.Prov.Outline != nil {
		c.Prov.Outline = append([]geometry.Point2D(nil), p.Prov.Outline...)
	}
	if p.Prov.OriginalRect != nil {
		r := *p.Prov.OriginalRect
		c.Prov.OriginalRect = &r
	}
	return &c
}
