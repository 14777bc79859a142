package scene

import (
	goimage "image"
	"image/color"
	"testing"

	img "defectpaste/internal/image"
)

// gradientBase builds a base whose red channel encodes the x coordinate and
// green channel the y coordinate, so crops are easy to verify.
func gradientBase(t *testing.T, w, h int) *img.Buffer {
	t.Helper()
	im := goimage.NewRGBA(goimage.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			im.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0, A: 255})
		}
	}
	buf, err := img.FromRGBA(im)
	if err != nil {
		t.Fatal(err)
	}
	return buf
}

func TestRectSelectionExtractsCrop(t *testing.T) {
	s, err := New(gradientBase(t, 60, 60))
	if err != nil {
		t.Fatal(err)
	}
	tool := NewSelectionTool()
	tool.Arm()

	tool.Begin(10, 20)
	tool.Update(30, 40)
	p, err := tool.Commit(s)
	if err != nil {
		t.Fatal(err)
	}
	if p == nil {
		t.Fatal("commit returned no placement")
	}

	if p.Kind != KindRegion {
		t.Errorf("kind = %v, want region", p.Kind)
	}
	if p.Prov.TypeName != "selected_region" {
		t.Errorf("type = %q", p.Prov.TypeName)
	}
	if p.Mask != nil {
		t.Error("rectangle extraction should carry no mask")
	}
	if p.Sprite.Width() != 20 || p.Sprite.Height() != 20 {
		t.Fatalf("crop size %dx%d, want 20x20", p.Sprite.Width(), p.Sprite.Height())
	}

	// Crop pixel (0,0) is base pixel (10,20).
	r, g, _, _ := p.Sprite.RGBAAt(0, 0)
	if r != 10 || g != 20 {
		t.Errorf("crop origin pixel = (%d,%d), want (10,20)", r, g)
	}

	// Anchored at the rectangle center so it composites in place.
	tr := p.Transform.Translation()
	if tr.X != 20 || tr.Y != 30 {
		t.Errorf("translation = %+v, want (20, 30)", tr)
	}
	if p.Prov.OriginalRect == nil || p.Prov.OriginalRect.X != 10 || p.Prov.OriginalRect.Y != 20 {
		t.Errorf("original rect = %+v", p.Prov.OriginalRect)
	}

	// A successful commit adds to the scene and disarms the tool.
	if len(s.Placements()) != 1 {
		t.Error("placement not added to scene")
	}
	if tool.Enabled() {
		t.Error("tool should disarm after a commit")
	}
}

func TestRectSelectionTooSmall(t *testing.T) {
	s, err := New(gradientBase(t, 60, 60))
	if err != nil {
		t.Fatal(err)
	}
	tool := NewSelectionTool()
	tool.Arm()

	tool.Begin(10, 10)
	tool.Update(14, 14) // 4x4, under the minimum
	p, err := tool.Commit(s)
	if err != nil {
		t.Fatal(err)
	}
	if p != nil {
		t.Fatal("degenerate selection should commit nothing")
	}
	if len(s.Placements()) != 0 {
		t.Error("scene should stay unchanged")
	}
	if !tool.Enabled() {
		t.Error("tool should stay armed after a degenerate gesture")
	}
}

func TestSelectionDisarmedIgnoresInput(t *testing.T) {
	s, err := New(gradientBase(t, 60, 60))
	if err != nil {
		t.Fatal(err)
	}
	tool := NewSelectionTool()

	tool.Begin(10, 10)
	tool.Update(40, 40)
	if tool.Active() {
		t.Fatal("disarmed tool should not start a gesture")
	}
	if p, _ := tool.Commit(s); p != nil {
		t.Fatal("disarmed tool should not commit")
	}
}

func TestFreehandSelectionMasksOutline(t *testing.T) {
	s, err := New(gradientBase(t, 60, 60))
	if err != nil {
		t.Fatal(err)
	}
	tool := NewSelectionTool()
	tool.SetMode(SelectFreehand)
	tool.Arm()

	// Trace a diamond centered at (30, 30).
	tool.Begin(30, 10)
	for _, pt := range [][2]float64{{50, 30}, {30, 50}, {10, 30}} {
		tool.Update(pt[0], pt[1])
	}
	p, err := tool.Commit(s)
	if err != nil {
		t.Fatal(err)
	}
	if p == nil {
		t.Fatal("commit returned no placement")
	}

	if p.Prov.TypeName != "freehand_region" {
		t.Errorf("type = %q", p.Prov.TypeName)
	}
	if p.Mask == nil {
		t.Fatal("freehand extraction must carry a mask")
	}
	if len(p.Prov.Outline) < 3 {
		t.Errorf("outline has %d points", len(p.Prov.Outline))
	}

	// The diamond center is inside, its bounding-box corners are outside.
	cx := p.Mask.Width() / 2
	cy := p.Mask.Height() / 2
	if p.Mask.GrayAt(cx, cy) != 255 {
		t.Error("center of outline should be covered")
	}
	if p.Mask.GrayAt(0, 0) != 0 {
		t.Error("bounding-box corner should be masked out")
	}
}

func TestFreehandTooFewPoints(t *testing.T) {
	s, err := New(gradientBase(t, 60, 60))
	if err != nil {
		t.Fatal(err)
	}
	tool := NewSelectionTool()
	tool.SetMode(SelectFreehand)
	tool.Arm()

	tool.Begin(10, 10)
	tool.Update(40, 40)
	p, err := tool.Commit(s)
	if err != nil {
		t.Fatal(err)
	}
	if p != nil {
		t.Fatal("two-point path should commit nothing")
	}
}

func TestSelectionCancel(t *testing.T) {
	s, err := New(gradientBase(t, 60, 60))
	if err != nil {
		t.Fatal(err)
	}
	tool := NewSelectionTool()
	tool.Arm()
	tool.Begin(10, 10)
	tool.Update(40, 40)
	tool.Cancel()

	if p, _ := tool.Commit(s); p != nil {
		t.Fatal("cancelled gesture should not commit")
	}
	if len(s.Placements()) != 0 {
		t.Error("cancel must leave the scene unchanged")
	}
}

func TestSelectionSourceNamesIncrement(t *testing.T) {
	s, err := New(gradientBase(t, 60, 60))
	if err != nil {
		t.Fatal(err)
	}
	tool := NewSelectionTool()

	tool.Arm()
	tool.Begin(0, 0)
	tool.Update(20, 20)
	p1, err := tool.Commit(s)
	if err != nil || p1 == nil {
		t.Fatalf("first commit: %v %v", p1, err)
	}

	tool.Arm()
	tool.Begin(30, 30)
	tool.Update(50, 50)
	p2, err := tool.Commit(s)
	if err != nil || p2 == nil {
		t.Fatalf("second commit: %v %v", p2, err)
	}

	if p1.Prov.Source != "region_1" || p2.Prov.Source != "region_2" {
		t.Errorf("sources = %q, %q", p1.Prov.Source, p2.Prov.Source)
	}
}

func TestRectExtractionRoundTripsExactly(t *testing.T) {
	base := gradientBase(t, 60, 60)
	want := base.ToRGBA()

	s, err := New(base)
	if err != nil {
		t.Fatal(err)
	}
	tool := NewSelectionTool()
	tool.Arm()
	tool.Begin(10, 10)
	tool.Update(30, 30)
	p, err := tool.Commit(s)
	if err != nil || p == nil {
		t.Fatalf("commit: %v %v", p, err)
	}

	// The fresh extraction sits at identity scale and rotation, anchored on
	// the rect center, so compositing must land every crop pixel back on the
	// base pixel it came from, byte for byte.
	got, err := s.Composite()
	if err != nil {
		t.Fatal(err)
	}
	for i := range want.Pix {
		if got.Pix[i] != want.Pix[i] {
			x, y := (i/4)%60, i/(4*60)
			t.Fatalf("pixel (%d, %d) channel %d = %d, want %d", x, y, i%4, got.Pix[i], want.Pix[i])
		}
	}
}
