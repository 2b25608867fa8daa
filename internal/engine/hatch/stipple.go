package hatch

import (
	"math"
	"math/rand/v2"

	"github.com/Faultbox/isoplot/internal/engine/model"
	"seehuhn.de/go/geom/vec"
)

const stippleMaxCells = 160

type stippleStyle struct{ base }

func newStippleStyle() *stippleStyle {
	cal := DefaultCalibration()
	cal.Gamma = 0.9
	return &stippleStyle{base{
		id:     StyleStipple,
		name:   "stipple",
		cal:    cal,
		weight: 1.2,
		share:  0.4,
		frame:  FrameFace,
	}}
}

// Generate scatters dots on a jittered grid. A dot is kept with a probability
// that grows with darkness and only when no earlier dot lies closer than the
// separation radius.
func (s *stippleStyle) Generate(f *model.Face, tone int, rng *rand.Rand, ctl model.Controls) Batch {
	d := s.darkness(tone, ctl)
	if d <= 0 {
		return Batch{}
	}
	cell := math.Max(lerp(7, 2.2, d)*spacingScale(ctl), minSpacing(ctl))
	fr := frameFor(f, s.frame)
	nu, nv := gridSize(fr, cell, stippleMaxCells)

	keep := clamp(0.25+0.75*d, 0, 1)
	radius := math.Max(penWidth(ctl)*0.6, 0.25) * (0.8 + 0.6*d)
	sides := 4
	switch {
	case d > 0.67:
		sides = 8
	case d > 0.34:
		sides = 6
	}

	hash := newPointHash(cell * 0.6)
	var b Batch
	for j := range nv {
		for i := range nu {
			u := (float64(i) + 0.5 + (rng.Float64()-0.5)*0.7) / float64(nu)
			v := (float64(j) + 0.5 + (rng.Float64()-0.5)*0.7) / float64(nv)
			roll := rng.Float64()
			b.Cells++
			if roll >= keep {
				continue
			}
			p := fr.Point(u, v)
			if !inside(f, p) || !hash.free(p) {
				continue
			}
			hash.add(p)
			b.Strokes = append(b.Strokes, dot(p, radius, sides, rng.Float64()*math.Pi))
		}
	}
	return b
}

// dot is a closed regular polygon around c.
func dot(c vec.Vec2, r float64, sides int, phase float64) model.Stroke {
	pts := make([]vec.Vec2, sides)
	for k := range pts {
		a := phase + 2*math.Pi*float64(k)/float64(sides)
		sin, cos := math.Sincos(a)
		pts[k] = vec.Vec2{X: c.X + r*cos, Y: c.Y + r*sin}
	}
	return model.Stroke{Points: pts, Closed: true}
}

// pointHash answers minimum-separation queries on a uniform grid.
type pointHash struct {
	sep   float64
	cells map[[2]int][]vec.Vec2
}

func newPointHash(sep float64) *pointHash {
	return &pointHash{sep: math.Max(sep, 1e-6), cells: make(map[[2]int][]vec.Vec2)}
}

func (h *pointHash) key(p vec.Vec2) [2]int {
	return [2]int{int(math.Floor(p.X / h.sep)), int(math.Floor(p.Y / h.sep))}
}

// free reports whether no stored point lies within sep of p.
func (h *pointHash) free(p vec.Vec2) bool {
	k := h.key(p)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			for _, q := range h.cells[[2]int{k[0] + dx, k[1] + dy}] {
				if p.Sub(q).Length() < h.sep {
					return false
				}
			}
		}
	}
	return true
}

func (h *pointHash) add(p vec.Vec2) {
	k := h.key(p)
	h.cells[k] = append(h.cells[k], p)
}
