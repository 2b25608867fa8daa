// Package occlusion rasterizes projected faces into a depth buffer and answers
// point visibility queries against it.
package occlusion

import (
	"math"

	"github.com/Faultbox/isoplot/internal/engine/model"
	"github.com/Faultbox/isoplot/pkg/polygon"
	"seehuhn.de/go/geom/vec"
)

const (
	padding = 3  // empty cells around the scene
	minGrid = 16 // minimum grid size per axis
)

// Options control the raster resolution.
type Options struct {
	MaxDim   float64 `yaml:"max_dim"`   // longest grid side before padding
	MaxScale float64 `yaml:"max_scale"` // cells per screen unit, upper bound
	MinScale float64 `yaml:"min_scale"` // cells per screen unit, lower bound
}

// FullOptions is the default resolution.
func FullOptions() Options {
	return Options{MaxDim: 1700, MaxScale: 3.2, MinScale: 0.45}
}

// CoarseOptions trades accuracy for speed.
func CoarseOptions() Options {
	return Options{MaxDim: 980, MaxScale: 2, MinScale: 0.32}
}

func (o Options) normalized() Options {
	if o.MaxDim <= 0 {
		o.MaxDim = 1600
	}
	o.MaxDim = math.Max(320, o.MaxDim)
	if o.MaxScale <= 0 {
		o.MaxScale = 3
	}
	o.MaxScale = clamp(o.MaxScale, 0.5, 4.5)
	if o.MinScale <= 0 {
		o.MinScale = 0.5
	}
	o.MinScale = clamp(o.MinScale, 0.2, o.MaxScale)
	return o
}

// Context is a depth buffer over the screen footprint of a face set. Each cell
// keeps the nearest depth seen and the id of the face that produced it.
// A Context is read-only once built.
type Context struct {
	Width, Height int
	Scale         float64 // cells per screen unit
	OriginX       float64 // screen position of the grid's left edge
	OriginY       float64 // screen position of the grid's top edge

	Depth []float32 // -Inf where empty
	Owner []int32   // -1 where empty
}

// Build rasterizes faces into a new Context. It returns nil for an empty face
// set.
func Build(faces []*model.Face, opts Options) *Context {
	if len(faces) == 0 {
		return nil
	}
	opts = opts.normalized()

	polys := make([][]vec.Vec2, len(faces))
	for i, f := range faces {
		polys[i] = f.Points
	}
	b := polygon.Bounds(polys...)
	w := math.Max(b.URx-b.LLx, 1e-6)
	h := math.Max(b.URy-b.LLy, 1e-6)

	scale := math.Min(math.Min(opts.MaxDim/w, opts.MaxDim/h), opts.MaxScale)
	scale = clamp(scale, opts.MinScale, opts.MaxScale)

	ctx := &Context{
		Width:   max(minGrid, int(math.Ceil(w*scale))+2*padding),
		Height:  max(minGrid, int(math.Ceil(h*scale))+2*padding),
		Scale:   scale,
		OriginX: b.LLx - padding/scale,
		OriginY: b.LLy - padding/scale,
	}
	n := ctx.Width * ctx.Height
	ctx.Depth = make([]float32, n)
	ctx.Owner = make([]int32, n)
	negInf := float32(math.Inf(-1))
	for i := range n {
		ctx.Depth[i] = negInf
		ctx.Owner[i] = -1
	}

	for _, f := range faces {
		ctx.rasterizeFace(f)
	}
	return ctx
}

// ToGrid converts a screen point to fractional grid coordinates.
func (c *Context) ToGrid(p vec.Vec2) (gx, gy float64) {
	return (p.X - c.OriginX) * c.Scale, (p.Y - c.OriginY) * c.Scale
}

// Sample returns the stored depth and owning face id of the cell under p.
// Points outside the grid report (-Inf, -1).
func (c *Context) Sample(p vec.Vec2) (depth float64, owner int) {
	if c == nil {
		return math.Inf(-1), -1
	}
	gx, gy := c.ToGrid(p)
	ix, iy := int(math.Floor(gx)), int(math.Floor(gy))
	if ix < 0 || iy < 0 || ix >= c.Width || iy >= c.Height {
		return math.Inf(-1), -1
	}
	i := iy*c.Width + ix
	return float64(c.Depth[i]), int(c.Owner[i])
}

// Covered returns the number of cells owned by some face.
func (c *Context) Covered() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, o := range c.Owner {
		if o >= 0 {
			n++
		}
	}
	return n
}

// DepthRange returns the smallest and largest stored depth. ok is false when
// no cell is covered.
func (c *Context) DepthRange() (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	if c == nil {
		return lo, hi, false
	}
	for i, o := range c.Owner {
		if o < 0 {
			continue
		}
		d := float64(c.Depth[i])
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	return lo, hi, !math.IsInf(lo, 1)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
