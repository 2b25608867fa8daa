package occlusion

import (
	"math"

	"github.com/Faultbox/isoplot/internal/engine/model"
	"github.com/Faultbox/isoplot/pkg/polygon"
	"seehuhn.de/go/geom/vec"
)

// MaskOptions control the resolution of per-face visibility masks.
type MaskOptions struct {
	Step     float64 // world units per mask cell
	MaxCells int     // cells per axis, upper bound
}

// FullMaskOptions is the default mask resolution.
func FullMaskOptions() MaskOptions {
	return MaskOptions{Step: 0.64, MaxCells: 160}
}

// CoarseMaskOptions is the reduced mask resolution.
func CoarseMaskOptions() MaskOptions {
	return MaskOptions{Step: 0.9, MaxCells: 80}
}

const minMaskCells = 4

// Frame is an affine parametrisation of a face: point(u, v) = Origin + U*u + V*v
// for u, v in [0, 1].
type Frame struct {
	Origin vec.Vec2
	U, V   vec.Vec2

	// Fitted is false when the face corners were degenerate and the frame
	// falls back to the screen bounding box.
	Fitted bool
}

// Point returns the screen point at (u, v).
func (fr Frame) Point(u, v float64) vec.Vec2 {
	return fr.Origin.Add(fr.U.Mul(u)).Add(fr.V.Mul(v))
}

// FaceFrame builds a frame spanning the face from its first, second and last
// corners. Faces the frame does not cover, such as a hexagon, get the bounds
// frame instead.
func FaceFrame(f *model.Face) Frame {
	pts := f.Points
	if len(pts) >= 3 {
		o := pts[0]
		u := pts[1].Sub(o)
		v := pts[len(pts)-1].Sub(o)
		det := u.X*v.Y - u.Y*v.X
		if math.Abs(det) >= 1e-8 && u.Length() >= 1e-5 && v.Length() >= 1e-5 {
			fr := Frame{Origin: o, U: u, V: v, Fitted: true}
			if fr.covers(pts, det) {
				return fr
			}
		}
	}
	return BoundsFrame(f)
}

// covers reports whether every point maps into the unit square of fr.
func (fr Frame) covers(pts []vec.Vec2, det float64) bool {
	const slack = 1e-6
	for _, p := range pts {
		d := p.Sub(fr.Origin)
		u := (d.X*fr.V.Y - d.Y*fr.V.X) / det
		v := (fr.U.X*d.Y - fr.U.Y*d.X) / det
		if u < -slack || u > 1+slack || v < -slack || v > 1+slack {
			return false
		}
	}
	return true
}

// BoundsFrame spans the face's screen bounding box.
func BoundsFrame(f *model.Face) Frame {
	b := f.Bounds
	return Frame{
		Origin: vec.Vec2{X: b.LLx, Y: b.LLy},
		U:      vec.Vec2{X: b.URx - b.LLx},
		V:      vec.Vec2{Y: b.URy - b.LLy},
	}
}

// DepthTolerance is the depth slack within which a face counts as the surface
// recorded in the buffer.
func (c *Context) DepthTolerance() float64 {
	return clamp(0.018+0.006/math.Max(0.45, c.Scale), 0.012, 0.05)
}

// BuildMask samples the face on a grid in its own frame and records which
// cells are not covered by a nearer face.
func BuildMask(f *model.Face, ctx *Context, opts MaskOptions) *model.VisibleMask {
	if opts.Step <= 0 {
		opts = FullMaskOptions()
	}
	step := clamp(opts.Step, 0.24, 2.4)
	maxCells := max(minMaskCells, opts.MaxCells)

	fr := FaceFrame(f)
	wu, wv := worldExtents(f, fr)
	cols := clampInt(int(math.Ceil(wu/step)), minMaskCells, maxCells)
	rows := clampInt(int(math.Ceil(wv/step)), minMaskCells, maxCells)

	m := &model.VisibleMask{
		Origin: fr.Origin,
		U:      fr.U,
		V:      fr.V,
		Cols:   cols,
		Rows:   rows,
		Cells:  make([]bool, cols*rows),
		MinU:   1,
		MinV:   1,
	}
	eps := 0.0
	if ctx != nil {
		eps = ctx.DepthTolerance()
	}

	for r := range rows {
		v := (float64(r) + 0.5) / float64(rows)
		for c := range cols {
			u := (float64(c) + 0.5) / float64(cols)
			p := fr.Point(u, v)
			if !polygon.Contains(f.Points, p) {
				continue
			}
			m.Tested++
			if !visibleAt(ctx, f, p, eps) {
				continue
			}
			m.Cells[r*cols+c] = true
			m.Visible++
			u0, v0 := float64(c)/float64(cols), float64(r)/float64(rows)
			u1, v1 := float64(c+1)/float64(cols), float64(r+1)/float64(rows)
			m.MinU, m.MinV = math.Min(m.MinU, u0), math.Min(m.MinV, v0)
			m.MaxU, m.MaxV = math.Max(m.MaxU, u1), math.Max(m.MaxV, v1)
		}
	}
	if m.Tested > 0 {
		m.Coverage = float64(m.Visible) / float64(m.Tested)
	}
	if m.Visible == 0 {
		m.MinU, m.MinV = 0, 0
	}
	return m
}

// visibleAt reports whether f is the front surface at p: the cell belongs to
// f or holds a depth within eps of f's own. Cells that fail both still count
// when a neighbouring cell around p belongs to f, which happens along face
// edges where the raster and the mask sample different points.
func visibleAt(ctx *Context, f *model.Face, p vec.Vec2, eps float64) bool {
	if ctx == nil {
		return true
	}
	d, owner := ctx.Sample(p)
	if owner == f.ID {
		return true
	}
	if owner >= 0 && math.Abs(d-f.DepthAt(p)) <= eps {
		return true
	}
	return ctx.ownedNear(p, f.ID)
}

// ownedNear reports whether one of the four cells whose centers surround p
// belongs to id.
func (c *Context) ownedNear(p vec.Vec2, id int) bool {
	gx, gy := c.ToGrid(p)
	x0, y0 := int(math.Floor(gx-0.5)), int(math.Floor(gy-0.5))
	for y := y0; y <= y0+1; y++ {
		for x := x0; x <= x0+1; x++ {
			if x < 0 || y < 0 || x >= c.Width || y >= c.Height {
				continue
			}
			if int(c.Owner[y*c.Width+x]) == id {
				return true
			}
		}
	}
	return false
}

// worldExtents returns the world lengths of the frame axes.
func worldExtents(f *model.Face, fr Frame) (wu, wv float64) {
	wc := f.WorldCorners
	if fr.Fitted && len(wc) >= 3 {
		return wc[1].Distance(wc[0]), wc[len(wc)-1].Distance(wc[0])
	}
	side := math.Sqrt(math.Max(f.Area, 0))
	return side, side
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
