package transform

import (
	"math"
	"testing"

	"defectpaste/pkg/geometry"
)

func TestSetScaleClamps(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0.5, 0.5},
		{0.1, MinScale},
		{-3, MinScale},
		{2.0, 2.0},
		{7, MaxScale},
	}
	for _, tt := range tests {
		tr := New()
		tr.SetScale(tt.in)
		if tr.Scale() != tt.want {
			t.Errorf("SetScale(%v): got %v, want %v", tt.in, tr.Scale(), tt.want)
		}
	}
}

func TestSetRotationClamps(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{45, 45},
		{-180, -180},
		{180, 180},
		{200, MaxRotation},
		{-999, MinRotation},
	}
	for _, tt := range tests {
		tr := New()
		tr.SetRotation(tt.in)
		if tr.Rotation() != tt.want {
			t.Errorf("SetRotation(%v): got %v, want %v", tt.in, tr.Rotation(), tt.want)
		}
	}
}

func TestTranslationUnbounded(t *testing.T) {
	tr := New()
	tr.SetTranslation(-5000, 1e6)
	p := tr.Translation()
	if p.X != -5000 || p.Y != 1e6 {
		t.Errorf("translation clamped: %+v", p)
	}
}

func TestForwardMapsCenterToAnchor(t *testing.T) {
	tr := New()
	tr.SetScale(1.7)
	tr.SetRotation(33)
	tr.SetTranslation(120, 80)

	got := tr.Forward(50, 40).Apply(geometry.Point2D{X: 25, Y: 20})
	if math.Abs(got.X-120) > 1e-9 || math.Abs(got.Y-80) > 1e-9 {
		t.Errorf("sprite center maps to %+v, want (120, 80)", got)
	}
}

func TestForwardInverseRoundTrip(t *testing.T) {
	tr := New()
	tr.SetScale(0.5)
	tr.SetRotation(-60)
	tr.SetTranslation(33, 44)

	fwd := tr.Forward(30, 30)
	inv := tr.Inverse(30, 30)
	for _, p := range []geometry.Point2D{{X: 0, Y: 0}, {X: 30, Y: 0}, {X: 12.5, Y: 7}} {
		back := inv.Apply(fwd.Apply(p))
		if math.Abs(back.X-p.X) > 1e-9 || math.Abs(back.Y-p.Y) > 1e-9 {
			t.Errorf("round trip of %+v = %+v", p, back)
		}
	}
}

func TestBoundsScaledNoRotation(t *testing.T) {
	tr := New()
	tr.SetScale(2)
	tr.SetTranslation(100, 100)

	got := tr.Bounds(50, 50).Outer()
	want := geometry.RectInt{X: 50, Y: 50, Width: 100, Height: 100}
	if got != want {
		t.Errorf("Bounds = %+v, want %+v", got, want)
	}
}

func TestBoundsContainsAllCorners(t *testing.T) {
	angles := []float64{-180, -90, -45, 0, 30, 90, 135, 180}
	scales := []float64{0.25, 1, 2}
	for _, a := range angles {
		for _, s := range scales {
			tr := New()
			tr.SetRotation(a)
			tr.SetScale(s)
			tr.SetTranslation(10, -20)

			b := tr.Bounds(40, 25)
			fwd := tr.Forward(40, 25)
			corners := []geometry.Point2D{{X: 0, Y: 0}, {X: 40, Y: 0}, {X: 40, Y: 25}, {X: 0, Y: 25}}
			for _, c := range corners {
				p := fwd.Apply(c)
				if p.X < b.X-1e-9 || p.X > b.X+b.Width+1e-9 ||
					p.Y < b.Y-1e-9 || p.Y > b.Y+b.Height+1e-9 {
					t.Errorf("angle %v scale %v: corner %+v outside bounds %+v", a, s, p, b)
				}
			}
		}
	}
}

func TestBoundsScaledQuarterTurn(t *testing.T) {
	// A 50x50 sprite at scale 2 rotated a quarter turn occupies a 100x100
	// box centered on its anchor.
	tr := New()
	tr.SetScale(2)
	tr.SetRotation(90)
	tr.SetTranslation(100, 100)

	b := tr.Bounds(50, 50)
	if math.Abs(b.Width-100) > 1e-6 || math.Abs(b.Height-100) > 1e-6 {
		t.Errorf("bounds %vx%v, want 100x100", b.Width, b.Height)
	}
	c := b.Center()
	if math.Abs(c.X-100) > 1e-6 || math.Abs(c.Y-100) > 1e-6 {
		t.Errorf("bounds center %+v, want (100, 100)", c)
	}
}

func TestBoundsRotated90(t *testing.T) {
	// A 2:1 sprite rotated a quarter turn swaps its bounding box sides.
	tr := New()
	tr.SetRotation(90)
	tr.SetTranslation(0, 0)

	b := tr.Bounds(100, 50)
	if math.Abs(b.Width-50) > 1e-6 || math.Abs(b.Height-100) > 1e-6 {
		t.Errorf("rotated bounds %vx%v, want 50x100", b.Width, b.Height)
	}
}
