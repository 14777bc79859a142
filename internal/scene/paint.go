package scene

import (
	goimage "image"
	"image/color"
	"math"

	"defectpaste/pkg/geometry"
)

// BrushMode selects between depositing color and erasing.
type BrushMode int

const (
	BrushPaint BrushMode = iota
	BrushErase
)

func (m BrushMode) String() string {
	if m == BrushErase {
		return "erase"
	}
	return "paint"
}

// Brush holds the stroke parameters applied at stamp time.
type Brush struct {
	Radius  int
	Color   color.RGBA
	Opacity float64 // [0, 1], baked into the layer per pixel
	Mode    BrushMode
}

// DefaultBrush returns a 5 px-radius opaque black paint brush.
func DefaultBrush() Brush {
	return Brush{Radius: 5, Color: color.RGBA{A: 255}, Opacity: 1.0, Mode: BrushPaint}
}

// PaintLayer is a full-canvas RGBA accumulator for brush strokes. It is
// always composited last, above every placement, and is the only mutable
// raster in a scene.
type PaintLayer struct {
	img *goimage.RGBA
}

// NewPaintLayer creates a fully transparent layer of the given size.
func NewPaintLayer(w, h int) *PaintLayer {
	return &PaintLayer{img: goimage.NewRGBA(goimage.Rect(0, 0, w, h))}
}

// Image returns the layer's backing image.
func (l *PaintLayer) Image() *goimage.RGBA { return l.img }

// Clear resets the layer to fully transparent.
func (l *PaintLayer) Clear() {
	for i := range l.img.Pix {
		l.img.Pix[i] = 0
	}
}

// Empty reports whether the layer has any visible content.
func (l *PaintLayer) Empty() bool {
	for i := 3; i < len(l.img.Pix); i += 4 {
		if l.img.Pix[i] != 0 {
			return false
		}
	}
	return true
}

// Clone returns a pixel copy of the layer.
func (l *PaintLayer) Clone() *PaintLayer {
	c := goimage.NewRGBA(l.img.Rect)
	copy(c.Pix, l.img.Pix)
	return &PaintLayer{img: c}
}

// StampAt applies one brush stamp: a solid disc centered at the canvas
// point. Paint mode blends the brush color over prior strokes at the brush
// opacity; erase mode zeroes alpha regardless of prior content.
func (l *PaintLayer) StampAt(b Brush, x, y float64) {
	if b.Radius <= 0 {
		return
	}
	cx := int(math.Floor(x))
	cy := int(math.Floor(y))
	r := b.Radius
	bounds := l.img.Bounds()

	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy > r*r {
				continue
			}
			px := cx + dx
			py := cy + dy
			if px < bounds.Min.X || px >= bounds.Max.X || py < bounds.Min.Y || py >= bounds.Max.Y {
				continue
			}
			i := l.img.PixOffset(px, py)
			if b.Mode == BrushErase {
				l.img.Pix[i] = 0
				l.img.Pix[i+1] = 0
				l.img.Pix[i+2] = 0
				l.img.Pix[i+3] = 0
				continue
			}
			l.blendPixel(i, b)
		}
	}
}

// blendPixel composites the brush color over one layer pixel at the brush
// opacity, straight alpha.
func (l *PaintLayer) blendPixel(i int, b Brush) {
	sa := b.Opacity
	if sa <= 0 {
		return
	}
	if sa > 1 {
		sa = 1
	}
	da := float64(l.img.Pix[i+3]) / 255.0
	outA := sa + da*(1-sa)
	if outA <= 0 {
		return
	}

	src := [3]float64{float64(b.Color.R) / 255.0, float64(b.Color.G) / 255.0, float64(b.Color.B) / 255.0}
	for c := 0; c < 3; c++ {
		dv := float64(l.img.Pix[i+c]) / 255.0
		out := (src[c]*sa + dv*da*(1-sa)) / outA
		l.img.Pix[i+c] = uint8(out*255 + 0.5)
	}
	l.img.Pix[i+3] = uint8(outA*255 + 0.5)
}

// StrokeTo stamps along the straight segment from the previous point to the
// current one, spaced no farther than one brush radius so fast drags leave
// no gaps.
func (l *PaintLayer) StrokeTo(b Brush, from, to geometry.Point2D) {
	dist := from.Distance(to)
	if b.Radius <= 0 {
		return
	}
	if dist == 0 {
		l.StampAt(b, to.X, to.Y)
		return
	}
	steps := int(math.Ceil(dist / float64(b.Radius)))
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		l.StampAt(b, from.X+t*(to.X-from.X), from.Y+t*(to.Y-from.Y))
	}
}
