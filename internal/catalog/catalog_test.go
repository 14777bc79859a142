package catalog

import (
	goimage "image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// writePNG writes an image file for scan tests.
func writePNG(t *testing.T, path string, img goimage.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

// makeCatalogDir builds a root with one "scratch" type containing an image
// and its mask: a 20x20 frame with mask coverage over x,y in [8,12).
func makeCatalogDir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "scratch")
	if err := os.Mkdir(dir, 0755); err != nil {
		t.Fatal(err)
	}

	img := goimage.NewRGBA(goimage.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 180, G: 60, B: 60, A: 255})
		}
	}
	writePNG(t, filepath.Join(dir, "a.png"), img)

	mask := goimage.NewGray(goimage.Rect(0, 0, 20, 20))
	for y := 8; y < 12; y++ {
		for x := 8; x < 12; x++ {
			mask.Pix[y*mask.Stride+x] = 255
		}
	}
	writePNG(t, filepath.Join(dir, "a_mask.png"), mask)

	return root
}

func TestScanPairsMasks(t *testing.T) {
	root := makeCatalogDir(t)
	cat, err := Scan(root)
	if err != nil {
		t.Fatal(err)
	}

	if len(cat.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(cat.Entries))
	}
	e := cat.Entries[0]
	if e.Type != "scratch" || e.Name != "a" {
		t.Errorf("entry = %+v", e)
	}
	if e.MaskPath == "" {
		t.Error("mask was not paired")
	}
	if got := cat.Types(); len(got) != 1 || got[0] != "scratch" {
		t.Errorf("Types() = %v", got)
	}
	if cat.Find("scratch", "a") == nil {
		t.Error("Find missed the entry")
	}
	if cat.Find("scratch", "b") != nil {
		t.Error("Find matched a missing name")
	}
}

func TestScanIgnoresUnsupportedFiles(t *testing.T) {
	root := makeCatalogDir(t)
	dir := filepath.Join(root, "scratch")
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	cat, err := Scan(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(cat.Entries) != 1 {
		t.Errorf("entries = %d, want 1", len(cat.Entries))
	}
}

func TestScanMissingRoot(t *testing.T) {
	if _, err := Scan(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestInstantiateCropsToMask(t *testing.T) {
	root := makeCatalogDir(t)
	cat, err := Scan(root)
	if err != nil {
		t.Fatal(err)
	}

	p, err := Instantiate(cat.Entries[0])
	if err != nil {
		t.Fatal(err)
	}

	// Mask bbox is [8,12) in both axes; plus the 5 px margin the crop spans
	// [3,17) and is 14x14.
	if p.Sprite.Width() != 14 || p.Sprite.Height() != 14 {
		t.Fatalf("cropped sprite %dx%d, want 14x14", p.Sprite.Width(), p.Sprite.Height())
	}
	if p.Mask == nil || p.Mask.Width() != 14 {
		t.Fatal("mask should be cropped alongside the sprite")
	}

	// Inside the mask the source color survives; outside it is zeroed.
	if r, _, _, _ := p.Sprite.RGBAAt(7, 7); r != 180 {
		t.Errorf("masked-in pixel red = %d, want 180", r)
	}
	if _, _, _, a := p.Sprite.RGBAAt(0, 0); a != 0 {
		t.Errorf("masked-out pixel should be transparent")
	}
}

func TestInstantiateNoMask(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "dent")
	if err := os.Mkdir(dir, 0755); err != nil {
		t.Fatal(err)
	}
	img := goimage.NewRGBA(goimage.Rect(0, 0, 6, 6))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	writePNG(t, filepath.Join(dir, "d.png"), img)

	cat, err := Scan(root)
	if err != nil {
		t.Fatal(err)
	}
	p, err := Instantiate(cat.Entries[0])
	if err != nil {
		t.Fatal(err)
	}
	if p.Mask != nil {
		t.Error("entry without mask file should have no mask")
	}
	if p.Sprite.Width() != 6 {
		t.Error("unmasked sprite should not be cropped")
	}
}

func TestThumbnailFitsBox(t *testing.T) {
	root := makeCatalogDir(t)
	cat, err := Scan(root)
	if err != nil {
		t.Fatal(err)
	}

	// The cropped sprite is 14x14; a 7 px box halves it.
	thumb, err := Thumbnail(cat.Entries[0], 7)
	if err != nil {
		t.Fatal(err)
	}
	if thumb.Bounds().Dx() != 7 || thumb.Bounds().Dy() != 7 {
		t.Errorf("thumbnail %v, want 7x7", thumb.Bounds())
	}

	// A box larger than the sprite leaves it untouched.
	full, err := Thumbnail(cat.Entries[0], 100)
	if err != nil {
		t.Fatal(err)
	}
	if full.Bounds().Dx() != 14 {
		t.Errorf("oversized box should not upscale: %v", full.Bounds())
	}
}

func TestInstantiateMissingFile(t *testing.T) {
	e := &Entry{Type: "x", Name: "y", ImagePath: filepath.Join(t.TempDir(), "gone.png")}
	if _, err := Instantiate(e); err == nil {
		t.Error("expected error for missing image")
	}
}
