package pinch

import "github.com/ayusman/mudra/internal/detector"

// Point is a position in surface pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Rect is an axis-aligned rectangle in surface pixels.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Origin returns the top-left corner.
func (r Rect) Origin() Point {
	return Point{X: r.X, Y: r.Y}
}

// Near reports whether p lies strictly inside r grown by pad on every side.
func (r Rect) Near(p Point, pad float64) bool {
	return p.X > r.X-pad && p.X < r.X+r.W+pad &&
		p.Y > r.Y-pad && p.Y < r.Y+r.H+pad
}

// ClampInside moves inner's origin to p, then clamps it so inner stays
// within r. An inner larger than r is pinned to r's origin.
func (r Rect) ClampInside(inner Rect, p Point) Rect {
	inner.X = clamp(p.X, r.X, r.X+r.W-inner.W)
	inner.Y = clamp(p.Y, r.Y, r.Y+r.H-inner.H)
	return inner
}

func clamp(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// Project maps a normalized landmark onto surface pixels. Mirroring flips
// the horizontal axis.
func Project(p detector.Point3D, surface Rect, mirror bool) Point {
	x := p.X
	if mirror {
		x = 1 - x
	}
	return Point{X: x*surface.W + surface.X, Y: p.Y*surface.H + surface.Y}
}
