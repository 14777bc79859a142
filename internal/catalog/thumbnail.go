package catalog

import (
	goimage "image"

	xdraw "golang.org/x/image/draw"

	img "defectpaste/internal/image"
)

// Thumbnail renders a catalog entry's sprite scaled to fit inside
// maxSize x maxSize, preserving aspect ratio. Entries smaller than the box
// are returned at their natural size.
func Thumbnail(e *Entry, maxSize int) (*goimage.RGBA, error) {
	p, err := Instantiate(e)
	if err != nil {
		return nil, err
	}
	return scaleToFit(p.Sprite, maxSize), nil
}

// scaleToFit downscales a sprite buffer with Catmull-Rom resampling.
func scaleToFit(sprite *img.Buffer, maxSize int) *goimage.RGBA {
	src := sprite.ToRGBA()
	w, h := sprite.Width(), sprite.Height()
	if maxSize <= 0 || (w <= maxSize && h <= maxSize) {
		return src
	}

	scale := float64(maxSize) / float64(w)
	if h > w {
		scale = float64(maxSize) / float64(h)
	}
	tw := int(float64(w) * scale)
	th := int(float64(h) * scale)
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}

	dst := goimage.NewRGBA(goimage.Rect(0, 0, tw, th))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	return dst
}
