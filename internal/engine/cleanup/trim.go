package cleanup

import (
	"math"

	"github.com/Faultbox/isoplot/internal/engine/model"
	"github.com/Faultbox/isoplot/pkg/polygon"
	"seehuhn.de/go/geom/vec"
)

// trimEps is the distance below which an endpoint already sits on a crossing.
const trimEps = 1e-6

// trimOvershoots pulls dangling segment endpoints that poke just past
// another segment back onto the crossing. The nearest qualifying crossing
// wins. Endpoints already touching another segment are left alone. It returns
// the number of endpoints moved.
func trimOvershoots(segs []model.Stroke, tol float64) int {
	if tol <= 0 {
		return 0
	}
	trimmed := 0
	for i := range segs {
		for end := range 2 {
			e := segs[i].Points[end]
			far := segs[i].Points[1-end]
			reach := e.Sub(far).Length()
			if attached(segs, i, e) {
				continue
			}

			best, bestD := vec.Vec2{}, math.Inf(1)
			for j := range segs {
				if j == i || !near(segs[j], e, tol) {
					continue
				}
				x, _, _, ok := polygon.Intersect(far, e, segs[j].Points[0], segs[j].Points[1])
				if !ok {
					continue
				}
				d := x.Sub(e).Length()
				if d <= trimEps || d > tol || d >= reach {
					continue
				}
				if d < bestD {
					best, bestD = x, d
				}
			}
			if !math.IsInf(bestD, 1) {
				if len(segs[i].Depths) == 2 {
					segs[i].Depths[end] = interpolateDepth(segs[i], best)
				}
				segs[i].Points[end] = best
				segs[i].UpdateDepthRange()
				trimmed++
			}
		}
	}
	return trimmed
}

// attached reports whether p touches any segment other than segs[i].
func attached(segs []model.Stroke, i int, p vec.Vec2) bool {
	for j := range segs {
		if j != i && distToSegment(p, segs[j].Points[0], segs[j].Points[1]) <= trimEps {
			return true
		}
	}
	return false
}

func distToSegment(p, a, b vec.Vec2) float64 {
	d := b.Sub(a)
	l2 := d.Dot(d)
	if l2 == 0 {
		return p.Sub(a).Length()
	}
	t := math.Max(0, math.Min(1, p.Sub(a).Dot(d)/l2))
	return p.Sub(a.Add(d.Mul(t))).Length()
}

// near reports whether p is within tol of s's bounding box.
func near(s model.Stroke, p vec.Vec2, tol float64) bool {
	a, b := s.Points[0], s.Points[1]
	return p.X >= math.Min(a.X, b.X)-tol && p.X <= math.Max(a.X, b.X)+tol &&
		p.Y >= math.Min(a.Y, b.Y)-tol && p.Y <= math.Max(a.Y, b.Y)+tol
}

// interpolateDepth returns the depth along s at the point closest to p.
func interpolateDepth(s model.Stroke, p vec.Vec2) float64 {
	a, b := s.Points[0], s.Points[1]
	d := b.Sub(a)
	l2 := d.Dot(d)
	t := 0.0
	if l2 > 0 {
		t = math.Max(0, math.Min(1, p.Sub(a).Dot(d)/l2))
	}
	return s.Depths[0] + (s.Depths[1]-s.Depths[0])*t
}
