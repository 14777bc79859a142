package project

import (
	goimage "image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"defectpaste/internal/catalog"
	img "defectpaste/internal/image"
	"defectpaste/internal/scene"
)

func newScene(t *testing.T) *scene.Scene {
	t.Helper()
	im := goimage.NewRGBA(goimage.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			im.SetRGBA(x, y, color.RGBA{R: 30, G: 30, B: 30, A: 255})
		}
	}
	buf, err := img.FromRGBA(im)
	if err != nil {
		t.Fatal(err)
	}
	s, err := scene.New(buf)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func addDefect(t *testing.T, s *scene.Scene, typ, name string) {
	t.Helper()
	sprite := goimage.NewRGBA(goimage.Rect(0, 0, 6, 6))
	for i := 3; i < len(sprite.Pix); i += 4 {
		sprite.Pix[i] = 255
	}
	buf, err := img.FromRGBA(sprite)
	if err != nil {
		t.Fatal(err)
	}
	p, err := scene.NewPlacement(scene.KindDefect, buf, nil, scene.Provenance{TypeName: typ, Source: name})
	if err != nil {
		t.Fatal(err)
	}
	p.Transform.SetTranslation(12, 18)
	p.Transform.SetScale(1.25)
	p.Transform.SetRotation(15)
	p.SetOpacity(0.65)
	s.Add(p)
}

func TestCaptureDefects(t *testing.T) {
	s := newScene(t)
	addDefect(t, s, "scratch", "a")

	states := CaptureDefects(s)
	if len(states) != 1 {
		t.Fatalf("states = %d", len(states))
	}
	st := states[0]
	if st.Type != "scratch" || st.Name != "a" {
		t.Errorf("identity = %+v", st)
	}
	if st.X != 12 || st.Y != 18 || st.Scale != 1.25 || st.Rotation != 15 || st.Opacity != 0.65 {
		t.Errorf("transform = %+v", st)
	}
}

func TestCaptureSkipsRegions(t *testing.T) {
	s := newScene(t)
	sprite := goimage.NewRGBA(goimage.Rect(0, 0, 6, 6))
	for i := 3; i < len(sprite.Pix); i += 4 {
		sprite.Pix[i] = 255
	}
	buf, err := img.FromRGBA(sprite)
	if err != nil {
		t.Fatal(err)
	}
	p, err := scene.NewPlacement(scene.KindRegion, buf, nil, scene.Provenance{TypeName: "selected_region"})
	if err != nil {
		t.Fatal(err)
	}
	s.Add(p)

	if states := CaptureDefects(s); len(states) != 0 {
		t.Errorf("regions must not be captured: %+v", states)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	projPath := filepath.Join(dir, "session.dpproj")

	s := newScene(t)
	addDefect(t, s, "scratch", "a")

	proj := New("test")
	proj.SetTarget(projPath, filepath.Join(dir, "images", "board.png"), s)
	if err := proj.Save(projPath); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(projPath)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Name != "test" || loaded.Version != 1 {
		t.Errorf("header = %+v", loaded)
	}
	if len(loaded.Targets) != 1 {
		t.Fatalf("targets = %d", len(loaded.Targets))
	}
	tgt := loaded.Targets[0]
	if tgt.ImagePath != filepath.Join("images", "board.png") {
		t.Errorf("image path not relativized: %q", tgt.ImagePath)
	}
	if len(tgt.Defects) != 1 || tgt.Defects[0].Name != "a" {
		t.Errorf("defects = %+v", tgt.Defects)
	}

	if abs := loaded.TargetImagePath(projPath, &tgt); abs != filepath.Join(dir, "images", "board.png") {
		t.Errorf("absolute path = %q", abs)
	}
}

func TestSetTargetReplaces(t *testing.T) {
	dir := t.TempDir()
	projPath := filepath.Join(dir, "p.dpproj")
	imgPath := filepath.Join(dir, "t.png")

	s := newScene(t)
	addDefect(t, s, "scratch", "a")

	proj := New("x")
	proj.SetTarget(projPath, imgPath, s)
	addDefect(t, s, "dent", "b")
	proj.SetTarget(projPath, imgPath, s)

	if len(proj.Targets) != 1 {
		t.Fatalf("targets = %d, want 1", len(proj.Targets))
	}
	if len(proj.Targets[0].Defects) != 2 {
		t.Errorf("defects = %d, want 2", len(proj.Targets[0].Defects))
	}
}

func TestRestoreDefects(t *testing.T) {
	// Build a real catalog entry on disk so restore can re-instantiate it.
	root := t.TempDir()
	typeDir := filepath.Join(root, "scratch")
	if err := os.Mkdir(typeDir, 0755); err != nil {
		t.Fatal(err)
	}
	im := goimage.NewRGBA(goimage.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			im.SetRGBA(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	f, err := os.Create(filepath.Join(typeDir, "a.png"))
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, im); err != nil {
		t.Fatal(err)
	}
	f.Close()

	cat, err := catalog.Scan(root)
	if err != nil {
		t.Fatal(err)
	}

	s := newScene(t)
	states := []PlacementState{{Type: "scratch", Name: "a", X: 20, Y: 22, Scale: 0.5, Rotation: 90, Opacity: 0.4}}
	if err := RestoreDefects(s, cat, states); err != nil {
		t.Fatal(err)
	}

	if len(s.Placements()) != 1 {
		t.Fatalf("placements = %d", len(s.Placements()))
	}
	p := s.Placements()[0]
	tr := p.Transform.Translation()
	if tr.X != 20 || tr.Y != 22 || p.Transform.Scale() != 0.5 || p.Opacity() != 0.4 {
		t.Errorf("restored state = %+v scale=%v opacity=%v", tr, p.Transform.Scale(), p.Opacity())
	}
	if s.SelectedIndex() != -1 {
		t.Error("restore should not leave a selection")
	}
}

func TestRestoreDefectsMissingEntry(t *testing.T) {
	s := newScene(t)
	cat := &catalog.Catalog{}
	err := RestoreDefects(s, cat, []PlacementState{{Type: "gone", Name: "x"}})
	if err == nil {
		t.Error("expected error for missing catalog entry")
	}
}
