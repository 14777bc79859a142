package image

import (
	goimage "image"
	"math"

	"defectpaste/pkg/geometry"
)

// DrawSprite renders a transformed sprite onto dst within region using the
// inverse canvas-to-sprite mapping. For each destination pixel the sprite is
// sampled bilinearly; samples mapping outside the sprite are transparent.
// Combined alpha is spriteAlpha x maskValue x opacity (mask absent means 1)
// and blending follows the standard "over" rule per channel.
func DrawSprite(dst *goimage.RGBA, sprite, mask *Buffer, inv geometry.AffineTransform, opacity float64, region geometry.RectInt) {
	bounds := dst.Bounds()
	region = region.Intersect(geometry.RectInt{
		X: bounds.Min.X, Y: bounds.Min.Y, Width: bounds.Dx(), Height: bounds.Dy(),
	})
	if region.Empty() || opacity <= 0 {
		return
	}

	w := float64(sprite.Width())
	h := float64(sprite.Height())

	for y := region.Y; y < region.Y+region.Height; y++ {
		for x := region.X; x < region.X+region.Width; x++ {
			s := inv.Apply(geometry.Point2D{X: float64(x) + 0.5, Y: float64(y) + 0.5})
			if s.X < 0 || s.X >= w || s.Y < 0 || s.Y >= h {
				continue
			}

			sr, sg, sb, sa := sampleRGBA(sprite, s.X, s.Y)
			m := 1.0
			if mask != nil {
				m = sampleGray(mask, s.X, s.Y)
			}
			alpha := sa * m * opacity
			if alpha <= 0 {
				continue
			}

			i := dst.PixOffset(x, y)
			dr := float64(dst.Pix[i]) / 255.0
			dg := float64(dst.Pix[i+1]) / 255.0
			db := float64(dst.Pix[i+2]) / 255.0
			da := float64(dst.Pix[i+3]) / 255.0

			dst.Pix[i] = uint8(clamp01(sr*alpha+dr*(1-alpha))*255 + 0.5)
			dst.Pix[i+1] = uint8(clamp01(sg*alpha+dg*(1-alpha))*255 + 0.5)
			dst.Pix[i+2] = uint8(clamp01(sb*alpha+db*(1-alpha))*255 + 0.5)
			dst.Pix[i+3] = uint8(clamp01(alpha+da*(1-alpha))*255 + 0.5)
		}
	}
}

// DrawMaskUnion renders the transformed mask footprint of a sprite onto a
// gray image at full opacity, keeping the per-pixel maximum of existing and
// new coverage.
func DrawMaskUnion(dst *goimage.Gray, sprite, mask *Buffer, inv geometry.AffineTransform, region geometry.RectInt) {
	bounds := dst.Bounds()
	region = region.Intersect(geometry.RectInt{
		X: bounds.Min.X, Y: bounds.Min.Y, Width: bounds.Dx(), Height: bounds.Dy(),
	})
	if region.Empty() {
		return
	}

	w := float64(sprite.Width())
	h := float64(sprite.Height())

	for y := region.Y; y < region.Y+region.Height; y++ {
		for x := region.X; x < region.X+region.Width; x++ {
			s := inv.Apply(geometry.Point2D{X: float64(x) + 0.5, Y: float64(y) + 0.5})
			if s.X < 0 || s.X >= w || s.Y < 0 || s.Y >= h {
				continue
			}

			var coverage float64
			if mask != nil {
				coverage = sampleGray(mask, s.X, s.Y)
			} else {
				_, _, _, coverage = sampleRGBA(sprite, s.X, s.Y)
			}

			v := uint8(math.Round(clamp01(coverage) * 255))
			i := dst.PixOffset(x, y)
			if v > dst.Pix[i] {
				dst.Pix[i] = v
			}
		}
	}
}

// OverImage alpha-composites src over dst using straight alpha. Both images
// must share dimensions; src pixels with zero alpha leave dst untouched.
func OverImage(dst, src *goimage.RGBA) {
	b := dst.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			si := src.PixOffset(x, y)
			sa := float64(src.Pix[si+3]) / 255.0
			if sa <= 0 {
				continue
			}

			di := dst.PixOffset(x, y)
			for c := 0; c < 3; c++ {
				sv := float64(src.Pix[si+c]) / 255.0
				dv := float64(dst.Pix[di+c]) / 255.0
				dst.Pix[di+c] = uint8(clamp01(sv*sa+dv*(1-sa))*255 + 0.5)
			}
			da := float64(dst.Pix[di+3]) / 255.0
			dst.Pix[di+3] = uint8(clamp01(sa+da*(1-sa))*255 + 0.5)
		}
	}
}
