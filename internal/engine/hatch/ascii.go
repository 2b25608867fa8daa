package hatch

import (
	"math"
	"math/rand/v2"

	"github.com/Faultbox/isoplot/internal/engine/model"
	"github.com/Faultbox/isoplot/pkg/polygon"
	"seehuhn.de/go/geom/vec"
)

type asciiStyle struct {
	base
	cellSize   float64
	glyphScale float64
	skipByTone [model.ToneLevels]float64
}

func newAsciiStyle(name string, cell, scale float64, skip [model.ToneLevels]float64, share float64) *asciiStyle {
	return &asciiStyle{
		base: base{
			id:     StyleAscii,
			name:   name,
			cal:    DefaultCalibration(),
			weight: 1,
			share:  share,
			frame:  FrameBounds,
		},
		cellSize:   cell,
		glyphScale: scale,
		skipByTone: skip,
	}
}

// Generate walks a screen aligned cell grid and stamps the glyph whose
// coverage best matches the darkness, nudged one step either way at random.
// A tone dependent share of cells stays empty.
func (s *asciiStyle) Generate(f *model.Face, tone int, rng *rand.Rand, ctl model.Controls) Batch {
	d := s.darkness(tone, ctl)
	if d <= 0 {
		return Batch{}
	}
	ranked := rankedGlyphs()
	cell := clamp(s.cellSize*spacingScale(ctl), math.Max(3.5, minSpacing(ctl)), 20)
	size := cell * s.glyphScale
	skip := clamp(s.skipByTone[clampInt(tone, 0, model.ToneLevels-1)], 0, 0.98)
	pick := pickGlyph(ranked, d)

	fr := frameFor(f, s.frame)
	lo := fr.Origin
	hi := fr.Point(1, 1)

	var b Batch
	for y := lo.Y + cell*0.5; y <= hi.Y-cell*0.25; y += cell {
		for x := lo.X + cell*0.5; x <= hi.X-cell*0.25; x += cell {
			c := vec.Vec2{X: x, Y: y}
			if !inside(f, c) {
				continue
			}
			b.Cells++
			if rng.Float64() < skip {
				continue
			}
			k := pick
			switch r := rng.Float64(); {
			case r < 0.15 && k > 0:
				k--
			case r > 0.85 && k < len(ranked)-1:
				k++
			}
			b.Strokes = append(b.Strokes, stamp(f.Points, ranked[k], c, size)...)
		}
	}
	return b
}

// stamp places g at c scaled to size and clips its segments to poly.
func stamp(poly []vec.Vec2, g glyph, c vec.Vec2, size float64) []model.Stroke {
	var out []model.Stroke
	if g.dot {
		h := size * glyphDot / 2
		out = append(out, model.Stroke{
			Points: []vec.Vec2{
				{X: c.X - h, Y: c.Y - h},
				{X: c.X + h, Y: c.Y - h},
				{X: c.X + h, Y: c.Y + h},
				{X: c.X - h, Y: c.Y + h},
			},
			Closed: true,
		})
	}
	for _, sg := range g.segs {
		a := c.Add(sg[0].Mul(size))
		b := c.Add(sg[1].Mul(size))
		for _, piece := range polygon.ClipSegment(poly, a, b) {
			out = append(out, model.Stroke{Points: []vec.Vec2{piece.A, piece.B}})
		}
	}
	return out
}
