// Package polygon implements the planar polygon queries used when clipping
// strokes to projected faces.
//
// Polygons are slices of vertices in either winding; the closing edge from the
// last vertex back to the first is implicit.
package polygon

import (
	"math"
	"sort"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// Eps is the tolerance used for containment and parameter comparisons.
const Eps = 1e-6

// Segment is a straight piece of a clipped line.
type Segment struct {
	A, B vec.Vec2
}

// Length returns the segment length.
func (s Segment) Length() float64 {
	return s.B.Sub(s.A).Length()
}

// Lerp returns a + (b-a)*t.
func Lerp(a, b vec.Vec2, t float64) vec.Vec2 {
	return a.Add(b.Sub(a).Mul(t))
}

// Contains reports whether p lies inside poly using the even-odd rule.
func Contains(poly []vec.Vec2, p vec.Vec2) bool {
	if len(poly) < 3 {
		return false
	}
	inside := false
	j := len(poly) - 1
	for i := range poly {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < x {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// Bounds returns the bounding rectangle of all given polygons.
// With no vertices it returns the unit rectangle.
func Bounds(polys ...[]vec.Vec2) rect.Rect {
	var r rect.Rect
	seen := false
	for _, poly := range polys {
		for _, p := range poly {
			if !seen {
				r = rect.Rect{LLx: p.X, LLy: p.Y, URx: p.X, URy: p.Y}
				seen = true
				continue
			}
			r.Add(p.X, p.Y)
		}
	}
	if !seen {
		return rect.Rect{URx: 1, URy: 1}
	}
	return r
}

// Overlap reports whether two rectangles overlap by more than eps.
func Overlap(a, b rect.Rect, eps float64) bool {
	if a.URx < b.LLx+eps || b.URx < a.LLx+eps {
		return false
	}
	if a.URy < b.LLy+eps || b.URy < a.LLy+eps {
		return false
	}
	return true
}

// SignedArea returns the shoelace area, positive for counter-clockwise
// vertices in a y-up frame.
func SignedArea(poly []vec.Vec2) float64 {
	var sum float64
	j := len(poly) - 1
	for i := range poly {
		sum += poly[j].X*poly[i].Y - poly[i].X*poly[j].Y
		j = i
	}
	return sum / 2
}

// Centroid returns the area centroid, or the vertex mean when the polygon has
// no area.
func Centroid(poly []vec.Vec2) vec.Vec2 {
	if len(poly) == 0 {
		return vec.Vec2{}
	}
	var cx, cy, a float64
	j := len(poly) - 1
	for i := range poly {
		cross := poly[j].X*poly[i].Y - poly[i].X*poly[j].Y
		cx += (poly[j].X + poly[i].X) * cross
		cy += (poly[j].Y + poly[i].Y) * cross
		a += cross
		j = i
	}
	if math.Abs(a) < 1e-9 {
		var sx, sy float64
		for _, p := range poly {
			sx += p.X
			sy += p.Y
		}
		n := float64(len(poly))
		return vec.Vec2{X: sx / n, Y: sy / n}
	}
	return vec.Vec2{X: cx / (3 * a), Y: cy / (3 * a)}
}

// PathLength returns the length of an open polyline.
func PathLength(points []vec.Vec2) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += points[i].Sub(points[i-1]).Length()
	}
	return total
}

// Intersect intersects segments a0-a1 and b0-b1. It returns the crossing
// point and the parameters along each segment.
func Intersect(a0, a1, b0, b1 vec.Vec2) (p vec.Vec2, t, u float64, ok bool) {
	r := a1.Sub(a0)
	s := b1.Sub(b0)
	den := Cross(r, s)
	if math.Abs(den) < 1e-8 {
		return vec.Vec2{}, 0, 0, false
	}
	qp := b0.Sub(a0)
	t = Cross(qp, s) / den
	u = Cross(qp, r) / den
	if t < -Eps || t > 1+Eps || u < -Eps || u > 1+Eps {
		return vec.Vec2{}, 0, 0, false
	}
	return Lerp(a0, a1, t), t, u, true
}

// Cross returns the z component of the 3D cross product of a and b.
func Cross(a, b vec.Vec2) float64 {
	return a.Rot90().Dot(b)
}

// Extent projects poly onto the unit direction dir and returns the range.
func Extent(poly []vec.Vec2, dir vec.Vec2) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, p := range poly {
		d := p.Dot(dir)
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	return lo, hi
}

// MinWidth returns the smallest extent of poly measured perpendicular to any
// of its edges. For a parallelogram this is its smaller height.
func MinWidth(poly []vec.Vec2) float64 {
	best := math.Inf(1)
	j := len(poly) - 1
	for i := range poly {
		e := poly[i].Sub(poly[j])
		l := e.Length()
		j = i
		if l < 1e-9 {
			continue
		}
		n := vec.Vec2{X: -e.Y / l, Y: e.X / l}
		lo, hi := Extent(poly, n)
		best = math.Min(best, hi-lo)
	}
	if math.IsInf(best, 1) {
		return 0
	}
	return best
}

// ClipLine clips the infinite line through origin with direction dir to the
// polygon interior. The returned segments are ordered along dir.
func ClipLine(poly []vec.Vec2, origin, dir vec.Vec2) []Segment {
	if len(poly) < 3 || dir.Length() < 1e-12 {
		return nil
	}
	var ts []float64
	j := len(poly) - 1
	for i := range poly {
		a, b := poly[j], poly[i]
		j = i
		e := b.Sub(a)
		den := Cross(dir, e)
		if math.Abs(den) < 1e-12 {
			continue
		}
		w := a.Sub(origin)
		u := Cross(w, dir) / den
		if u < -Eps || u > 1+Eps {
			continue
		}
		ts = append(ts, Cross(w, e)/den)
	}
	return intervals(poly, origin, dir, dedupe(ts, 1e-4))
}

// ClipSegment clips the segment a-b to the polygon interior.
func ClipSegment(poly []vec.Vec2, a, b vec.Vec2) []Segment {
	if len(poly) < 3 {
		return nil
	}
	d := b.Sub(a)
	ts := []float64{0, 1}
	j := len(poly) - 1
	for i := range poly {
		if _, t, _, ok := Intersect(a, b, poly[j], poly[i]); ok && t > 0 && t < 1 {
			ts = append(ts, t)
		}
		j = i
	}
	ts = dedupe(ts, 1e-9)

	var out []Segment
	for k := 1; k < len(ts); k++ {
		t0, t1 := ts[k-1], ts[k]
		if !Contains(poly, a.Add(d.Mul((t0+t1)/2))) {
			continue
		}
		p0, p1 := a.Add(d.Mul(t0)), a.Add(d.Mul(t1))
		if n := len(out); n > 0 && out[n-1].B == p0 {
			out[n-1].B = p1
			continue
		}
		out = append(out, Segment{A: p0, B: p1})
	}
	return out
}

// intervals keeps the spans between consecutive crossings whose midpoint lies
// inside the polygon.
func intervals(poly []vec.Vec2, origin, dir vec.Vec2, ts []float64) []Segment {
	var out []Segment
	for k := 1; k < len(ts); k++ {
		mid := origin.Add(dir.Mul((ts[k-1] + ts[k]) / 2))
		if !Contains(poly, mid) {
			continue
		}
		a := origin.Add(dir.Mul(ts[k-1]))
		b := origin.Add(dir.Mul(ts[k]))
		if n := len(out); n > 0 && out[n-1].B == a {
			out[n-1].B = b
			continue
		}
		out = append(out, Segment{A: a, B: b})
	}
	return out
}

func dedupe(ts []float64, eps float64) []float64 {
	sort.Float64s(ts)
	out := ts[:0]
	for _, t := range ts {
		if len(out) > 0 && t-out[len(out)-1] < eps {
			continue
		}
		out = append(out, t)
	}
	return out
}
