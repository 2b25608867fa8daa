package cleanup

import (
	"math"

	"github.com/Faultbox/isoplot/internal/engine/model"
	"github.com/Faultbox/isoplot/pkg/polygon"
	"seehuhn.de/go/geom/vec"
)

// mergeCollinear joins segments that are parallel within the angle
// tolerance, lie on the same line within the line tolerance, and overlap or
// nearly touch. It returns the surviving segments and the number absorbed.
func mergeCollinear(segs []model.Stroke, opts Options) ([]model.Stroke, int) {
	sinTol := math.Sin(opts.AngleToleranceDeg * math.Pi / 180)
	alive := make([]bool, len(segs))
	for i := range alive {
		alive[i] = true
	}

	merged := 0
	for range max(1, opts.MaxMergeIterations) {
		changed := false
		for i := range segs {
			if !alive[i] {
				continue
			}
			for j := i + 1; j < len(segs); j++ {
				if !alive[j] {
					continue
				}
				if m, ok := tryMerge(segs[i], segs[j], sinTol, opts.LineTolerance, opts.JoinTolerance); ok {
					segs[i] = m
					alive[j] = false
					merged++
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}

	out := segs[:0]
	for i, s := range segs {
		if alive[i] {
			out = append(out, s)
		}
	}
	return out, merged
}

type extreme struct {
	p     vec.Vec2
	t     float64
	depth float64
}

func tryMerge(a, b model.Stroke, sinTol, lineTol, joinTol float64) (model.Stroke, bool) {
	base, other := a, b
	if b.Length() > a.Length() {
		base, other = b, a
	}
	origin := base.Points[0]
	d := base.Points[1].Sub(origin)
	length := d.Length()
	od := other.Points[1].Sub(other.Points[0])
	olength := od.Length()
	if length < 1e-12 || olength < 1e-12 {
		return model.Stroke{}, false
	}
	dir := d.Mul(1 / length)
	if math.Abs(polygon.Cross(dir, od.Mul(1/olength))) > sinTol {
		return model.Stroke{}, false
	}

	var ext [4]extreme
	for k := range 2 {
		ext[k] = extreme{p: base.Points[k], t: float64(k) * length, depth: depthAt(base, k)}
		p := other.Points[k]
		off := p.Sub(origin)
		if math.Abs(polygon.Cross(off, dir)) > lineTol {
			return model.Stroke{}, false
		}
		ext[2+k] = extreme{p: p, t: off.Dot(dir), depth: depthAt(other, k)}
	}

	loO, hiO := math.Min(ext[2].t, ext[3].t), math.Max(ext[2].t, ext[3].t)
	if gap := math.Max(loO-length, -hiO); gap > joinTol {
		return model.Stroke{}, false
	}

	// Base endpoints win ties so a contained segment leaves base untouched.
	lo, hi := ext[0], ext[1]
	for _, e := range ext[2:] {
		if e.t < lo.t {
			lo = e
			lo.p = origin.Add(dir.Mul(e.t))
		}
		if e.t > hi.t {
			hi = e
			hi.p = origin.Add(dir.Mul(e.t))
		}
	}

	out := model.Stroke{
		Points:  []vec.Vec2{lo.p, hi.p},
		FaceIDs: model.SortedIDs(append(append([]int(nil), base.FaceIDs...), other.FaceIDs...)),
	}
	if base.Depths != nil && other.Depths != nil {
		out.Depths = []float64{lo.depth, hi.depth}
		out.UpdateDepthRange()
	} else {
		out.DepthMin = math.Min(base.DepthMin, other.DepthMin)
		out.DepthMax = math.Max(base.DepthMax, other.DepthMax)
	}
	return out, true
}

func depthAt(s model.Stroke, k int) float64 {
	if len(s.Depths) > k {
		return s.Depths[k]
	}
	return s.DepthMax
}
