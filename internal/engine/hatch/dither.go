package hatch

import (
	"math"
	"math/rand/v2"

	"github.com/Faultbox/isoplot/internal/engine/model"
	"github.com/Faultbox/isoplot/internal/engine/occlusion"
	"seehuhn.de/go/geom/vec"
)

const ditherMaxCells = 200

var bayer8 = [8][8]int{
	{0, 32, 8, 40, 2, 34, 10, 42},
	{48, 16, 56, 24, 50, 18, 58, 26},
	{12, 44, 4, 36, 14, 46, 6, 38},
	{60, 28, 52, 20, 62, 30, 54, 22},
	{3, 35, 11, 43, 1, 33, 9, 41},
	{51, 19, 59, 27, 49, 17, 57, 25},
	{15, 47, 7, 39, 13, 45, 5, 37},
	{63, 31, 55, 23, 61, 29, 53, 21},
}

var bayer4 = [4][4]int{
	{0, 8, 2, 10},
	{12, 4, 14, 6},
	{3, 11, 1, 9},
	{15, 7, 13, 5},
}

// bayerThreshold returns the normalised threshold of cell (i, j).
func bayerThreshold(i, j int, coarse bool) float64 {
	if coarse {
		return (float64(bayer4[j%4][i%4]) + 0.5) / 16
	}
	return (float64(bayer8[j%8][i%8]) + 0.5) / 64
}

type orderedDitherStyle struct{ base }

func newOrderedDitherStyle() *orderedDitherStyle {
	return &orderedDitherStyle{base{
		id:     StyleOrderedDither,
		name:   "ordered-dither",
		cal:    DefaultCalibration(),
		weight: 1.1,
		share:  0.4,
		frame:  FrameFace,
	}}
}

// Generate turns on the cells whose Bayer threshold lies below the darkness.
// Marks alternate between the two frame axes in a checkerboard.
func (s *orderedDitherStyle) Generate(f *model.Face, tone int, rng *rand.Rand, ctl model.Controls) Batch {
	d := s.darkness(tone, ctl)
	if d <= 0 {
		return Batch{}
	}
	cell := math.Max(lerp(4.2, 2.4, d)*spacingScale(ctl), minSpacing(ctl))
	fr := frameFor(f, s.frame)
	nu, nv := gridSize(fr, cell, ditherMaxCells)
	du, dv := fr.U.Normalize(), fr.V.Normalize()
	levels := 64.0
	if ctl.ShaderCoarse {
		levels = 16
	}

	var b Batch
	for j := range nv {
		for i := range nu {
			b.Cells++
			noise := (rng.Float64() - 0.5) / levels
			if d <= bayerThreshold(i, j, ctl.ShaderCoarse)+noise {
				continue
			}
			c := cellCenter(fr, i, j, nu, nv)
			if !inside(f, c) {
				continue
			}
			axis := du
			if (i+j)%2 == 1 {
				axis = dv
			}
			b.Strokes = append(b.Strokes, dash(c, axis, cell*0.35))
		}
	}
	return b
}

type errorDiffusionStyle struct{ base }

func newErrorDiffusionStyle() *errorDiffusionStyle {
	return &errorDiffusionStyle{base{
		id:     StyleErrorDiffusion,
		name:   "error-diffusion",
		cal:    DefaultCalibration(),
		weight: 1.1,
		share:  0.4,
		frame:  FrameFace,
	}}
}

// Generate runs serpentine Floyd-Steinberg diffusion over the cell grid.
// Cells outside the face neither draw nor carry error.
func (s *errorDiffusionStyle) Generate(f *model.Face, tone int, rng *rand.Rand, ctl model.Controls) Batch {
	d := s.darkness(tone, ctl)
	if d <= 0 {
		return Batch{}
	}
	cell := math.Max(lerp(4.8, 2.6, d)*spacingScale(ctl), minSpacing(ctl))
	fr := frameFor(f, s.frame)
	nu, nv := gridSize(fr, cell, ditherMaxCells)
	du := fr.U.Normalize()

	// Two error rows padded by one cell on each side.
	cur := make([]float64, nu+2)
	next := make([]float64, nu+2)

	var b Batch
	for j := range nv {
		dir := 1
		start, end := 0, nu
		if j%2 == 1 {
			dir = -1
			start, end = nu-1, -1
		}
		for i := start; i != end; i += dir {
			c := cellCenter(fr, i, j, nu, nv)
			if !inside(f, c) {
				continue
			}
			b.Cells++
			v := d + cur[i+1] + (rng.Float64()-0.5)*0.04
			q := 0.0
			if v >= 0.5 {
				q = 1
				b.Strokes = append(b.Strokes, dash(c, du, cell*0.3))
			}
			e := v - q
			cur[i+1+dir] += e * 7 / 16
			next[i+1-dir] += e * 3 / 16
			next[i+1] += e * 5 / 16
			next[i+1+dir] += e * 1 / 16
		}
		cur, next = next, cur
		clear(next)
	}
	return b
}

func cellCenter(fr occlusion.Frame, i, j, nu, nv int) vec.Vec2 {
	return fr.Point((float64(i)+0.5)/float64(nu), (float64(j)+0.5)/float64(nv))
}

// dash is an open segment of half length h through c along axis.
func dash(c, axis vec.Vec2, h float64) model.Stroke {
	return model.Stroke{Points: []vec.Vec2{c.Sub(axis.Mul(h)), c.Add(axis.Mul(h))}}
}
