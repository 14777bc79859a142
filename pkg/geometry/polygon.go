package geometry

import "math"

// PointInPolygon tests if a point is inside a polygon using ray casting
// (even-odd rule).
func PointInPolygon(p Point2D, polygon []Point2D) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	n := len(polygon)

	for i := 0; i < n; i++ {
		j := (i + 1) % n
		pi, pj := polygon[i], polygon[j]

		// Check if ray from p going right intersects edge pi-pj
		if ((pi.Y > p.Y) != (pj.Y > p.Y)) &&
			(p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X) {
			inside = !inside
		}
	}

	return inside
}

// PolygonArea computes the absolute area of a polygon using the shoelace
// formula. Self-intersecting polygons may report near-zero area, which the
// selection tool treats as nothing to commit.
func PolygonArea(polygon []Point2D) float64 {
	if len(polygon) < 3 {
		return 0
	}
	var sum float64
	n := len(polygon)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += polygon[i].X*polygon[j].Y - polygon[j].X*polygon[i].Y
	}
	return math.Abs(sum) / 2
}

// ResamplePath returns a copy of path with consecutive points no farther
// apart than maxSpacing, inserting intermediate points on long segments.
func ResamplePath(path []Point2D, maxSpacing float64) []Point2D {
	if len(path) < 2 || maxSpacing <= 0 {
		return path
	}

	out := make([]Point2D, 0, len(path))
	out = append(out, path[0])
	for i := 1; i < len(path); i++ {
		prev := path[i-1]
		cur := path[i]
		dist := prev.Distance(cur)
		if dist > maxSpacing {
			steps := int(math.Ceil(dist / maxSpacing))
			for s := 1; s < steps; s++ {
				t := float64(s) / float64(steps)
				out = append(out, Point2D{
					X: prev.X + t*(cur.X-prev.X),
					Y: prev.Y + t*(cur.Y-prev.Y),
				})
			}
		}
		out = append(out, cur)
	}
	return out
}

// SimplifyPath reduces a path using the Douglas-Peucker algorithm, keeping
// points that deviate from the simplified shape by more than epsilon.
func SimplifyPath(path []Point2D, epsilon float64) []Point2D {
	if len(path) < 3 || epsilon <= 0 {
		return path
	}

	// Find the point farthest from the segment between the endpoints.
	first, last := path[0], path[len(path)-1]
	maxDist := 0.0
	maxIdx := 0
	for i := 1; i < len(path)-1; i++ {
		d := perpendicularDistance(path[i], first, last)
		if d > maxDist {
			maxDist = d
			maxIdx = i
		}
	}

	if maxDist <= epsilon {
		return []Point2D{first, last}
	}

	left := SimplifyPath(path[:maxIdx+1], epsilon)
	right := SimplifyPath(path[maxIdx:], epsilon)
	return append(left[:len(left)-1], right...)
}

// perpendicularDistance returns the distance from p to the line through a and b.
func perpendicularDistance(p, a, b Point2D) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	length := math.Sqrt(dx*dx + dy*dy)
	if length < 1e-10 {
		return p.Distance(a)
	}
	return math.Abs(dy*p.X-dx*p.Y+b.X*a.Y-b.Y*a.X) / length
}
