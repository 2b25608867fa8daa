package model

import (
	"math"

	"seehuhn.de/go/geom/vec"
)

// DepthPlane is the affine map depth = A*x + B*y + C over a face's screen
// footprint.
type DepthPlane struct {
	A, B, C float64
	OK      bool
}

// At evaluates the plane at p.
func (p DepthPlane) At(pt vec.Vec2) float64 {
	return p.A*pt.X + p.B*pt.Y + p.C
}

// SolvePlane fits a depth plane through the first non-degenerate triple of
// projected vertices. The result has OK == false when every triple is
// collinear on screen.
func SolvePlane(points []ScreenPoint) DepthPlane {
	n := len(points)
	if n < 3 {
		return DepthPlane{}
	}
	p0 := points[0]
	for i := 1; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			if plane, ok := solveTriple(p0, points[i], points[j]); ok {
				return plane
			}
		}
	}
	return DepthPlane{}
}

func solveTriple(p0, p1, p2 ScreenPoint) (DepthPlane, bool) {
	x1, y1, d1 := p1.X-p0.X, p1.Y-p0.Y, p1.Depth-p0.Depth
	x2, y2, d2 := p2.X-p0.X, p2.Y-p0.Y, p2.Depth-p0.Depth
	den := x1*y2 - x2*y1
	if math.Abs(den) < 1e-8 {
		return DepthPlane{}, false
	}
	a := (d1*y2 - d2*y1) / den
	b := (x1*d2 - x2*d1) / den
	return DepthPlane{
		A:  a,
		B:  b,
		C:  p0.Depth - a*p0.X - b*p0.Y,
		OK: true,
	}, true
}
