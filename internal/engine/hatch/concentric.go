package hatch

import (
	"math"
	"math/rand/v2"

	"github.com/Faultbox/isoplot/internal/engine/model"
	"github.com/Faultbox/isoplot/pkg/polygon"
	"seehuhn.de/go/geom/vec"
)

const (
	maxRings      = 200
	ringChord     = 1.5
	minRingPoints = 12
	maxRingPoints = 96
)

type concentricStyle struct{ base }

func newConcentricStyle() *concentricStyle {
	return &concentricStyle{base{
		id:     StyleConcentric,
		name:   "concentric",
		cal:    DefaultCalibration(),
		weight: 0.9,
		share:  0.4,
		frame:  FrameFace,
	}}
}

// Generate draws rings around a jittered anchor near the face centre. Rings
// that fit inside the face stay closed, the rest are cut into the pieces that
// fall inside.
func (s *concentricStyle) Generate(f *model.Face, tone int, rng *rand.Rand, ctl model.Controls) Batch {
	d := s.darkness(tone, ctl)
	if d <= 0 {
		return Batch{}
	}
	spacing := math.Max(defaultLineTable.at(d)*spacingScale(ctl), minSpacing(ctl))
	fr := frameFor(f, s.frame)
	anchor := fr.Point(0.5+(rng.Float64()-0.5)*0.3, 0.5+(rng.Float64()-0.5)*0.3)

	reach := 0.0
	for _, p := range f.Points {
		reach = math.Max(reach, p.Sub(anchor).Length())
	}

	var b Batch
	for k := range maxRings {
		r := spacing * (float64(k) + 0.5)
		if r > reach {
			break
		}
		b.Cells++
		b.Strokes = append(b.Strokes, ring(f.Points, anchor, r)...)
	}
	return b
}

// ring returns the parts of the circle (c, r) inside poly.
func ring(poly []vec.Vec2, c vec.Vec2, r float64) []model.Stroke {
	n := clampInt(int(math.Ceil(2*math.Pi*r/ringChord)), minRingPoints, maxRingPoints)
	pts := make([]vec.Vec2, n)
	all := true
	for i := range pts {
		sin, cos := math.Sincos(2 * math.Pi * float64(i) / float64(n))
		pts[i] = vec.Vec2{X: c.X + r*cos, Y: c.Y + r*sin}
		if all && !polygon.Contains(poly, pts[i]) {
			all = false
		}
	}
	if all {
		return []model.Stroke{{Points: pts, Closed: true}}
	}

	var out []model.Stroke
	var cur []vec.Vec2
	for i := range pts {
		for _, sg := range polygon.ClipSegment(poly, pts[i], pts[(i+1)%n]) {
			if len(cur) > 0 && cur[len(cur)-1] == sg.A {
				cur = append(cur, sg.B)
				continue
			}
			if len(cur) >= 2 {
				out = append(out, model.Stroke{Points: cur})
			}
			cur = []vec.Vec2{sg.A, sg.B}
		}
	}
	if len(cur) >= 2 {
		out = append(out, model.Stroke{Points: cur})
	}
	return out
}
