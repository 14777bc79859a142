package image

import "fmt"

// LoadError indicates a source raster could not be loaded or has an
// unsupported layout. A buffer that fails to load never enters a scene.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("bad raster: %v", e.Err)
	}
	return fmt.Sprintf("bad raster %q: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// GeometryMismatchError indicates a mask whose dimensions differ from its
// sprite. Placement construction rejects the pair rather than resizing.
type GeometryMismatchError struct {
	SpriteWidth, SpriteHeight int
	MaskWidth, MaskHeight     int
}

func (e *GeometryMismatchError) Error() string {
	return fmt.Sprintf("mask %dx%d does not match sprite %dx%d",
		e.MaskWidth, e.MaskHeight, e.SpriteWidth, e.SpriteHeight)
}

// AssetUnavailableError indicates a buffer whose backing pixels have been
// released. Rendering fails outright instead of producing partial output.
type AssetUnavailableError struct {
	What string
}

func (e *AssetUnavailableError) Error() string {
	return fmt.Sprintf("asset unavailable: %s", e.What)
}
