package geometry

import (
	"math"
	"testing"
)

const eps = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func TestAffineComposeApply(t *testing.T) {
	// Translate then scale: scaling applies to the already-translated point.
	tr := Translation(10, 20)
	sc := Scaling(2)
	combined := sc.Compose(tr)

	got := combined.Apply(Point2D{X: 1, Y: 1})
	if !almostEqual(got.X, 22) || !almostEqual(got.Y, 42) {
		t.Errorf("Apply = (%v, %v), want (22, 42)", got.X, got.Y)
	}
}

func TestAffineInverseRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		tf   AffineTransform
	}{
		{"identity", Identity()},
		{"translation", Translation(5, -3)},
		{"rotation", Rotation(0.7)},
		{"scaling", Scaling(1.5)},
		{"combined", Translation(100, 50).Compose(Rotation(0.3)).Compose(Scaling(0.5))},
	}

	pts := []Point2D{{0, 0}, {1, 0}, {0, 1}, {-4.5, 7.25}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, ok := tt.tf.Inverse()
			if !ok {
				t.Fatal("Inverse reported singular")
			}
			for _, p := range pts {
				back := inv.Apply(tt.tf.Apply(p))
				if !almostEqual(back.X, p.X) || !almostEqual(back.Y, p.Y) {
					t.Errorf("round trip of %+v = %+v", p, back)
				}
			}
		})
	}
}

func TestAffineInverseSingular(t *testing.T) {
	if _, ok := Scaling(0).Inverse(); ok {
		t.Error("expected zero scale to be singular")
	}
}

func TestRotationPreservesDistance(t *testing.T) {
	rot := Rotation(1.1)
	a := Point2D{X: 3, Y: 4}
	b := Point2D{X: -2, Y: 7}
	if d1, d2 := a.Distance(b), rot.Apply(a).Distance(rot.Apply(b)); !almostEqual(d1, d2) {
		t.Errorf("rotation changed distance: %v -> %v", d1, d2)
	}
}

func TestRectOuter(t *testing.T) {
	tests := []struct {
		name string
		in   Rect
		want RectInt
	}{
		{"integral", Rect{X: 1, Y: 2, Width: 3, Height: 4}, RectInt{X: 1, Y: 2, Width: 3, Height: 4}},
		{"fractional", Rect{X: 0.5, Y: 0.5, Width: 1, Height: 1}, RectInt{X: 0, Y: 0, Width: 2, Height: 2}},
		{"negative", Rect{X: -1.5, Y: -0.25, Width: 2, Height: 1}, RectInt{X: -2, Y: -1, Width: 3, Height: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Outer(); got != tt.want {
				t.Errorf("Outer() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRectIntIntersect(t *testing.T) {
	a := RectInt{X: 0, Y: 0, Width: 10, Height: 10}
	b := RectInt{X: 5, Y: 5, Width: 10, Height: 10}
	got := a.Intersect(b)
	want := RectInt{X: 5, Y: 5, Width: 5, Height: 5}
	if got != want {
		t.Errorf("Intersect = %+v, want %+v", got, want)
	}

	c := RectInt{X: 20, Y: 20, Width: 5, Height: 5}
	if !a.Intersect(c).Empty() {
		t.Error("disjoint rects should intersect empty")
	}
}

func TestCentroid(t *testing.T) {
	pts := []Point2D{{0, 0}, {4, 0}, {4, 4}, {0, 4}}
	c := Centroid(pts)
	if !almostEqual(c.X, 2) || !almostEqual(c.Y, 2) {
		t.Errorf("Centroid = %+v, want (2, 2)", c)
	}
}

func TestBoundingBox(t *testing.T) {
	pts := []Point2D{{3, -1}, {-2, 5}, {0, 0}}
	b := BoundingBox(pts)
	want := Rect{X: -2, Y: -1, Width: 5, Height: 6}
	if b != want {
		t.Errorf("BoundingBox = %+v, want %+v", b, want)
	}
}
