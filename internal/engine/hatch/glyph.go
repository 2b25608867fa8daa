package hatch

import (
	"image"
	"sort"
	"sync"

	"golang.org/x/image/vector"
	"seehuhn.de/go/geom/vec"
)

// glyph is a mark drawn inside a unit cell centred on the origin.
type glyph struct {
	name string
	segs [][2]vec.Vec2
	dot  bool // a small closed square at the centre

	coverage float64 // ink share of the cell, set by rankGlyphs
	level    float64 // coverage relative to the densest glyph
}

const (
	glyphRaster = 48
	glyphStroke = 0.08 // stroke width in cell units
	glyphDot    = 0.14 // dot side in cell units
)

func seg(x0, y0, x1, y1 float64) [2]vec.Vec2 {
	return [2]vec.Vec2{{X: x0, Y: y0}, {X: x1, Y: y1}}
}

var glyphDefs = []glyph{
	{name: ".", dot: true},
	{name: ":", segs: [][2]vec.Vec2{seg(0, -0.28, 0, -0.14), seg(0, 0.14, 0, 0.28)}},
	{name: "-", segs: [][2]vec.Vec2{seg(-0.3, 0, 0.3, 0)}},
	{name: "=", segs: [][2]vec.Vec2{seg(-0.35, -0.15, 0.35, -0.15), seg(-0.35, 0.15, 0.35, 0.15)}},
	{name: "+", segs: [][2]vec.Vec2{seg(-0.4, 0, 0.4, 0), seg(0, -0.4, 0, 0.4)}},
	{name: "x", segs: [][2]vec.Vec2{seg(-0.35, -0.35, 0.35, 0.35), seg(-0.35, 0.35, 0.35, -0.35)}},
	{name: "*", segs: [][2]vec.Vec2{
		seg(-0.4, 0, 0.4, 0), seg(0, -0.4, 0, 0.4),
		seg(-0.3, -0.3, 0.3, 0.3), seg(-0.3, 0.3, 0.3, -0.3),
	}},
	{name: "#", segs: [][2]vec.Vec2{
		seg(-0.45, -0.2, 0.45, -0.2), seg(-0.45, 0.2, 0.45, 0.2),
		seg(-0.2, -0.45, -0.2, 0.45), seg(0.2, -0.45, 0.2, 0.45),
	}},
	{name: "%", segs: [][2]vec.Vec2{
		seg(-0.45, -0.25, 0.45, -0.25), seg(-0.45, 0, 0.45, 0), seg(-0.45, 0.25, 0.45, 0.25),
		seg(-0.25, -0.45, -0.25, 0.45), seg(0, -0.45, 0, 0.45), seg(0.25, -0.45, 0.25, 0.45),
	}},
}

var (
	glyphOnce   sync.Once
	glyphRanked []glyph
)

// rankedGlyphs returns the glyph set sorted by ink coverage. The table is
// built on first use and shared afterwards.
func rankedGlyphs() []glyph {
	glyphOnce.Do(func() {
		glyphRanked = rankGlyphs(glyphDefs)
	})
	return glyphRanked
}

func rankGlyphs(defs []glyph) []glyph {
	out := make([]glyph, len(defs))
	copy(out, defs)
	densest := 0.0
	for i := range out {
		out[i].coverage = coverage(out[i])
		densest = max(densest, out[i].coverage)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].coverage < out[j].coverage })
	for i := range out {
		if densest > 0 {
			out[i].level = out[i].coverage / densest
		}
	}
	return out
}

// coverage rasterises g and returns the inked share of its cell.
func coverage(g glyph) float64 {
	const n = glyphRaster
	r := vector.NewRasterizer(n, n)
	px := func(p vec.Vec2) (float32, float32) {
		return float32((p.X + 0.5) * n), float32((p.Y + 0.5) * n)
	}
	quad := func(pts [4]vec.Vec2) {
		r.MoveTo(px(pts[0]))
		for _, p := range pts[1:] {
			r.LineTo(px(p))
		}
		r.ClosePath()
	}

	if g.dot {
		h := glyphDot / 2
		quad([4]vec.Vec2{{X: -h, Y: -h}, {X: h, Y: -h}, {X: h, Y: h}, {X: -h, Y: h}})
	}
	for _, s := range g.segs {
		d := s[1].Sub(s[0])
		l := d.Length()
		if l == 0 {
			continue
		}
		nrm := vec.Vec2{X: -d.Y / l, Y: d.X / l}.Mul(glyphStroke / 2)
		quad([4]vec.Vec2{s[0].Sub(nrm), s[1].Sub(nrm), s[1].Add(nrm), s[0].Add(nrm)})
	}

	dst := image.NewAlpha(image.Rect(0, 0, n, n))
	r.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})
	var sum int
	for _, a := range dst.Pix {
		sum += int(a)
	}
	return float64(sum) / float64(255*n*n)
}

// pickGlyph returns the index of the glyph whose level is nearest to d.
func pickGlyph(ranked []glyph, d float64) int {
	best, bestDiff := 0, 2.0
	for i, g := range ranked {
		diff := d - g.level
		if diff < 0 {
			diff = -diff
		}
		if diff < bestDiff {
			best, bestDiff = i, diff
		}
	}
	return best
}
