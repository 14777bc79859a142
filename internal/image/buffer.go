// Package image provides immutable pixel buffers, loading, sampling, and
// compositing primitives.
package image

import (
	"fmt"
	goimage "image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/tiff"
)

// Format identifies the channel layout of a Buffer.
type Format int

const (
	FormatRGBA Format = iota // 4 bytes per pixel, straight alpha
	FormatGray               // 1 byte per pixel
)

func (f Format) String() string {
	switch f {
	case FormatRGBA:
		return "RGBA"
	case FormatGray:
		return "Gray"
	default:
		return "Unknown"
	}
}

// Buffer is an immutable row-major raster. Buffers are shared by reference
// between placements that use the same source asset; nothing mutates pixel
// data after construction.
type Buffer struct {
	width  int
	height int
	format Format
	pix    []uint8
}

// Width returns the buffer width in pixels.
func (b *Buffer) Width() int { return b.width }

// Height returns the buffer height in pixels.
func (b *Buffer) Height() int { return b.height }

// Format returns the channel layout.
func (b *Buffer) Format() Format { return b.format }

// Available reports whether the backing pixel data is still present.
func (b *Buffer) Available() bool { return b != nil && b.pix != nil }

// Release drops the backing pixel data. Subsequent renders referencing the
// buffer fail with AssetUnavailableError.
func (b *Buffer) Release() { b.pix = nil }

// RGBAAt returns the straight-alpha color at (x, y) for RGBA buffers.
// Out-of-bounds coordinates return fully transparent black.
func (b *Buffer) RGBAAt(x, y int) (r, g, bl, a uint8) {
	if b.format != FormatRGBA || x < 0 || x >= b.width || y < 0 || y >= b.height {
		return 0, 0, 0, 0
	}
	i := (y*b.width + x) * 4
	return b.pix[i], b.pix[i+1], b.pix[i+2], b.pix[i+3]
}

// GrayAt returns the sample at (x, y) for gray buffers. Out-of-bounds
// coordinates return 0.
func (b *Buffer) GrayAt(x, y int) uint8 {
	if b.format != FormatGray || x < 0 || x >= b.width || y < 0 || y >= b.height {
		return 0
	}
	return b.pix[y*b.width+x]
}

// ToRGBA returns a mutable copy of an RGBA buffer as *image.RGBA.
func (b *Buffer) ToRGBA() *goimage.RGBA {
	out := goimage.NewRGBA(goimage.Rect(0, 0, b.width, b.height))
	if b.format == FormatRGBA {
		for y := 0; y < b.height; y++ {
			copy(out.Pix[y*out.Stride:y*out.Stride+b.width*4], b.pix[y*b.width*4:(y+1)*b.width*4])
		}
	}
	return out
}

// ToGray returns a mutable copy of a gray buffer as *image.Gray.
func (b *Buffer) ToGray() *goimage.Gray {
	out := goimage.NewGray(goimage.Rect(0, 0, b.width, b.height))
	if b.format == FormatGray {
		for y := 0; y < b.height; y++ {
			copy(out.Pix[y*out.Stride:y*out.Stride+b.width], b.pix[y*b.width:(y+1)*b.width])
		}
	}
	return out
}

// CopyToRGBA copies an RGBA buffer's pixels into dst, which must have the
// same dimensions.
func (b *Buffer) CopyToRGBA(dst *goimage.RGBA) error {
	if !b.Available() {
		return &AssetUnavailableError{What: "pixel buffer"}
	}
	if b.format != FormatRGBA {
		return fmt.Errorf("cannot copy %s buffer as RGBA", b.format)
	}
	bounds := dst.Bounds()
	if bounds.Dx() != b.width || bounds.Dy() != b.height {
		return fmt.Errorf("destination %dx%d does not match buffer %dx%d",
			bounds.Dx(), bounds.Dy(), b.width, b.height)
	}
	for y := 0; y < b.height; y++ {
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+b.width*4], b.pix[y*b.width*4:(y+1)*b.width*4])
	}
	return nil
}

// FromImage converts any image into an immutable RGBA buffer.
func FromImage(img goimage.Image) (*Buffer, error) {
	if img == nil {
		return nil, &LoadError{Err: fmt.Errorf("nil image")}
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, &LoadError{Err: fmt.Errorf("zero dimensions %dx%d", w, h)}
	}

	rgba := goimage.NewRGBA(goimage.Rect(0, 0, w, h))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	buf := &Buffer{width: w, height: h, format: FormatRGBA, pix: make([]uint8, w*h*4)}
	for y := 0; y < h; y++ {
		copy(buf.pix[y*w*4:(y+1)*w*4], rgba.Pix[y*rgba.Stride:y*rgba.Stride+w*4])
	}
	return buf, nil
}

// FromRGBA copies a *image.RGBA into an immutable buffer.
func FromRGBA(img *goimage.RGBA) (*Buffer, error) {
	if img == nil {
		return nil, &LoadError{Err: fmt.Errorf("nil image")}
	}
	return FromImage(img)
}

// MaskFromImage converts any image into an immutable single-channel mask
// using its luminance (for gray sources) or alpha-weighted luminance.
func MaskFromImage(img goimage.Image) (*Buffer, error) {
	if img == nil {
		return nil, &LoadError{Err: fmt.Errorf("nil image")}
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, &LoadError{Err: fmt.Errorf("zero dimensions %dx%d", w, h)}
	}

	gray := goimage.NewGray(goimage.Rect(0, 0, w, h))
	draw.Draw(gray, gray.Bounds(), img, bounds.Min, draw.Src)

	buf := &Buffer{width: w, height: h, format: FormatGray, pix: make([]uint8, w*h)}
	for y := 0; y < h; y++ {
		copy(buf.pix[y*w:(y+1)*w], gray.Pix[y*gray.Stride:y*gray.Stride+w])
	}
	return buf, nil
}

// MaskFromGray wraps the pixels of a *image.Gray into an immutable mask.
func MaskFromGray(img *goimage.Gray) (*Buffer, error) {
	if img == nil {
		return nil, &LoadError{Err: fmt.Errorf("nil image")}
	}
	return MaskFromImage(img)
}

// Load reads an image file and returns an immutable RGBA buffer. Unsupported
// or degenerate rasters fail fast with a LoadError.
func Load(path string) (*Buffer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer file.Close()

	img, _, err := goimage.Decode(file)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	buf, err := FromImage(img)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return buf, nil
}

// LoadMask reads an image file and returns an immutable gray mask buffer.
func LoadMask(path string) (*Buffer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer file.Close()

	img, _, err := goimage.Decode(file)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	buf, err := MaskFromImage(img)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return buf, nil
}

// SupportedFormats returns the list of supported image file extensions.
func SupportedFormats() []string {
	return []string{".tiff", ".tif", ".png", ".jpg", ".jpeg"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}
