package image

import "math"

// sampleRGBA performs bilinear interpolation on an RGBA buffer at the
// continuous coordinate (fx, fy), where pixel (i, j) covers [i,i+1)x[j,j+1).
// Colors are interpolated premultiplied by alpha so that transparent
// neighbors do not bleed color into mask edges, then unpremultiplied.
// Returned channels are normalized to [0, 1].
func sampleRGBA(b *Buffer, fx, fy float64) (r, g, bl, a float64) {
	u := fx - 0.5
	v := fy - 0.5

	x0 := int(math.Floor(u))
	y0 := int(math.Floor(v))
	tx := u - float64(x0)
	ty := v - float64(y0)

	x1 := x0 + 1
	y1 := y0 + 1
	x0 = clampIndex(x0, b.width)
	x1 = clampIndex(x1, b.width)
	y0 = clampIndex(y0, b.height)
	y1 = clampIndex(y1, b.height)

	w00 := (1 - tx) * (1 - ty)
	w10 := tx * (1 - ty)
	w01 := (1 - tx) * ty
	w11 := tx * ty

	accum := func(x, y int, w float64) {
		pr, pg, pb, pa := b.RGBAAt(x, y)
		af := float64(pa) / 255.0 * w
		r += float64(pr) / 255.0 * af
		g += float64(pg) / 255.0 * af
		bl += float64(pb) / 255.0 * af
		a += af
	}
	accum(x0, y0, w00)
	accum(x1, y0, w10)
	accum(x0, y1, w01)
	accum(x1, y1, w11)

	if a > 1e-6 {
		r /= a
		g /= a
		bl /= a
	}
	return r, g, bl, a
}

// sampleGray performs bilinear interpolation on a gray buffer, returning a
// value in [0, 1].
func sampleGray(b *Buffer, fx, fy float64) float64 {
	u := fx - 0.5
	v := fy - 0.5

	x0 := int(math.Floor(u))
	y0 := int(math.Floor(v))
	tx := u - float64(x0)
	ty := v - float64(y0)

	x1 := clampIndex(x0+1, b.width)
	y1 := clampIndex(y0+1, b.height)
	x0 = clampIndex(x0, b.width)
	y0 = clampIndex(y0, b.height)

	s := float64(b.GrayAt(x0, y0))*(1-tx)*(1-ty) +
		float64(b.GrayAt(x1, y0))*tx*(1-ty) +
		float64(b.GrayAt(x0, y1))*(1-tx)*ty +
		float64(b.GrayAt(x1, y1))*tx*ty
	return s / 255.0
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
