// Package catalog scans defect asset directories and instantiates placements
// from them.
package catalog

import (
	"fmt"
	goimage "image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	img "defectpaste/internal/image"
	"defectpaste/internal/scene"
)

// Margin of background kept around the mask's bounding box when an asset is
// tight-cropped at load time.
const cropMargin = 5

// Entry describes one catalog asset: a defect image and, optionally, the
// matching binary mask.
type Entry struct {
	Type      string `json:"type"`
	Name      string `json:"name"`
	ImagePath string `json:"image_path"`
	MaskPath  string `json:"mask_path,omitempty"`
}

// Catalog is the set of scanned defect assets, grouped by type.
type Catalog struct {
	Entries []*Entry
}

// Types returns the distinct defect types in sorted order.
func (c *Catalog) Types() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range c.Entries {
		if !seen[e.Type] {
			seen[e.Type] = true
			out = append(out, e.Type)
		}
	}
	sort.Strings(out)
	return out
}

// ByType returns the entries of one defect type in scan order.
func (c *Catalog) ByType(t string) []*Entry {
	var out []*Entry
	for _, e := range c.Entries {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Find returns the entry with the given type and name, or nil.
func (c *Catalog) Find(typ, name string) *Entry {
	for _, e := range c.Entries {
		if e.Type == typ && e.Name == name {
			return e
		}
	}
	return nil
}

// Scan walks the given roots. Each immediate subdirectory names a defect
// type; image files inside it become entries, with mask files paired to
// images by name. A file counts as a mask when its name contains "mask".
func Scan(roots ...string) (*Catalog, error) {
	cat := &Catalog{}
	for _, root := range roots {
		dirs, err := os.ReadDir(root)
		if err != nil {
			return nil, fmt.Errorf("scan catalog root %s: %w", root, err)
		}
		for _, d := range dirs {
			if !d.IsDir() {
				continue
			}
			entries, err := scanType(filepath.Join(root, d.Name()), d.Name())
			if err != nil {
				return nil, err
			}
			cat.Entries = append(cat.Entries, entries...)
		}
	}
	return cat, nil
}

// scanType lists one type directory and pairs each image with its mask.
func scanType(dir, typ string) ([]*Entry, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan catalog type %s: %w", dir, err)
	}

	var images, masks []string
	for _, f := range files {
		if f.IsDir() || !img.IsSupportedFormat(f.Name()) {
			continue
		}
		if isMaskName(f.Name()) {
			masks = append(masks, f.Name())
		} else {
			images = append(images, f.Name())
		}
	}
	sort.Strings(images)
	sort.Strings(masks)

	var out []*Entry
	for _, name := range images {
		e := &Entry{
			Type:      typ,
			Name:      stem(name),
			ImagePath: filepath.Join(dir, name),
		}
		if m := matchMask(name, masks); m != "" {
			e.MaskPath = filepath.Join(dir, m)
		}
		out = append(out, e)
	}
	return out, nil
}

func isMaskName(name string) bool {
	return strings.Contains(strings.ToLower(stem(name)), "mask")
}

func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// matchMask finds the mask file belonging to an image: "<stem>_mask.*"
// exactly, or failing that any mask whose name contains the stem.
func matchMask(image string, masks []string) string {
	s := stem(image)
	for _, m := range masks {
		if stem(m) == s+"_mask" {
			return m
		}
	}
	for _, m := range masks {
		if strings.Contains(stem(m), s) {
			return m
		}
	}
	return ""
}

// Instantiate loads the entry's pixels and returns a fresh placement. The
// sprite is zeroed outside the mask and both rasters are tight-cropped to
// the mask's bounding box plus a small margin, so the draggable footprint
// matches the visible defect.
func Instantiate(e *Entry) (*scene.Placement, error) {
	sprite, err := img.Load(e.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("catalog entry %s/%s: %w", e.Type, e.Name, err)
	}

	var mask *img.Buffer
	if e.MaskPath != "" {
		mask, err = img.LoadMask(e.MaskPath)
		if err != nil {
			return nil, fmt.Errorf("catalog entry %s/%s: %w", e.Type, e.Name, err)
		}
		sprite, mask, err = applyMaskCrop(sprite, mask)
		if err != nil {
			return nil, fmt.Errorf("catalog entry %s/%s: %w", e.Type, e.Name, err)
		}
	}

	return scene.NewPlacement(scene.KindDefect, sprite, mask, scene.Provenance{
		TypeName:  e.Type,
		Source:    e.Name,
		ImagePath: e.ImagePath,
		MaskPath:  e.MaskPath,
	})
}

// applyMaskCrop zeroes sprite pixels outside the mask and crops both rasters
// to the mask's bounding box plus cropMargin. A mask with no coverage or a
// size mismatch is an error.
func applyMaskCrop(sprite, mask *img.Buffer) (*img.Buffer, *img.Buffer, error) {
	if mask.Width() != sprite.Width() || mask.Height() != sprite.Height() {
		return nil, nil, &img.GeometryMismatchError{
			SpriteWidth: sprite.Width(), SpriteHeight: sprite.Height(),
			MaskWidth: mask.Width(), MaskHeight: mask.Height(),
		}
	}

	w, h := mask.Width(), mask.Height()
	minX, minY := w, h
	maxX, maxY := -1, -1
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if mask.GrayAt(x, y) == 0 {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	if maxX < 0 {
		return nil, nil, fmt.Errorf("mask has no coverage")
	}

	x0 := maxInt(minX-cropMargin, 0)
	y0 := maxInt(minY-cropMargin, 0)
	x1 := minInt(maxX+cropMargin+1, w)
	y1 := minInt(maxY+cropMargin+1, h)
	cw, ch := x1-x0, y1-y0

	outImg := goimage.NewRGBA(goimage.Rect(0, 0, cw, ch))
	outMask := goimage.NewGray(goimage.Rect(0, 0, cw, ch))
	for y := 0; y < ch; y++ {
		for x := 0; x < cw; x++ {
			m := mask.GrayAt(x0+x, y0+y)
			outMask.Pix[y*outMask.Stride+x] = m
			if m == 0 {
				continue
			}
			r, g, b, a := sprite.RGBAAt(x0+x, y0+y)
			i := outImg.PixOffset(x, y)
			outImg.Pix[i] = r
			outImg.Pix[i+1] = g
			outImg.Pix[i+2] = b
			outImg.Pix[i+3] = a
		}
	}

	croppedSprite, err := img.FromRGBA(outImg)
	if err != nil {
		return nil, nil, err
	}
	croppedMask, err := img.MaskFromGray(outMask)
	if err != nil {
		return nil, nil, err
	}
	return croppedSprite, croppedMask, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
