// Package model holds the face, stroke and control types shared by every
// stage of the plotter pipeline.
package model

import (
	"math"

	pmath "github.com/Faultbox/isoplot/pkg/math"
	"github.com/Faultbox/isoplot/pkg/polygon"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// WorldQuantum is the grid world corners are snapped to before edge matching.
const WorldQuantum = 1e-4

// WorldFace is a planar face as produced by the voxel mesher.
type WorldFace struct {
	ID      int
	Normal  pmath.Vec3
	Corners []pmath.Vec3
	Area    float64
}

// ScreenPoint is a projected vertex with its view depth.
// Larger depth is nearer the viewer.
type ScreenPoint struct {
	X, Y  float64
	Depth float64
}

// Vec returns the 2D screen position.
func (p ScreenPoint) Vec() vec.Vec2 {
	return vec.Vec2{X: p.X, Y: p.Y}
}

// Face is a front-facing face after projection.
type Face struct {
	ID           int
	Normal       pmath.Vec3 // world space
	NormalView   pmath.Vec3 // rotated into view space
	Area         float64
	WorldCorners []pmath.Vec3 // quantized to WorldQuantum
	Points       []vec.Vec2
	Points3      []ScreenPoint
	Bounds       rect.Rect

	Depth    float64 // mean vertex depth
	MinDepth float64
	MaxDepth float64

	ShadeKey  ShadeKey
	Type      FaceType
	ToneIndex int
	DrawOrder int

	Plane DepthPlane
	Mask  *VisibleMask
}

// DepthAt returns the face depth under the screen point p.
func (f *Face) DepthAt(p vec.Vec2) float64 {
	if f.Plane.OK {
		return f.Plane.At(p)
	}
	return f.Depth
}

// ScreenArea returns the unsigned area of the projected polygon.
func (f *Face) ScreenArea() float64 {
	return math.Abs(polygon.SignedArea(f.Points))
}

// Stroke is a polyline in screen space.
type Stroke struct {
	Points   []vec.Vec2
	Closed   bool
	Depths   []float64 // parallel to Points, nil when unknown
	DepthMin float64
	DepthMax float64
	FaceIDs  []int // sorted
}

// Length returns the drawn length, including the closing edge of a closed
// stroke.
func (s *Stroke) Length() float64 {
	l := polygon.PathLength(s.Points)
	if s.Closed && len(s.Points) > 2 {
		l += s.Points[len(s.Points)-1].Sub(s.Points[0]).Length()
	}
	return l
}

// UpdateDepthRange recomputes DepthMin and DepthMax from Depths.
func (s *Stroke) UpdateDepthRange() {
	if len(s.Depths) == 0 {
		return
	}
	s.DepthMin, s.DepthMax = math.Inf(1), math.Inf(-1)
	for _, d := range s.Depths {
		s.DepthMin = math.Min(s.DepthMin, d)
		s.DepthMax = math.Max(s.DepthMax, d)
	}
}

// IsSegment reports whether the stroke is an open two-point segment.
func (s *Stroke) IsSegment() bool {
	return !s.Closed && len(s.Points) == 2
}

// Clone returns a deep copy.
func (s Stroke) Clone() Stroke {
	out := s
	out.Points = append([]vec.Vec2(nil), s.Points...)
	if s.Depths != nil {
		out.Depths = append([]float64(nil), s.Depths...)
	}
	out.FaceIDs = append([]int(nil), s.FaceIDs...)
	return out
}

// NewSegment builds an open two-point stroke.
func NewSegment(a, b vec.Vec2, da, db float64, faceIDs ...int) Stroke {
	return Stroke{
		Points:   []vec.Vec2{a, b},
		Depths:   []float64{da, db},
		DepthMin: math.Min(da, db),
		DepthMax: math.Max(da, db),
		FaceIDs:  SortedIDs(faceIDs),
	}
}

// SortedIDs returns a sorted copy of ids without duplicates.
func SortedIDs(ids []int) []int {
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		i := 0
		for i < len(out) && out[i] < id {
			i++
		}
		if i < len(out) && out[i] == id {
			continue
		}
		out = append(out, 0)
		copy(out[i+1:], out[i:])
		out[i] = id
	}
	return out
}

// VisibleMask records which parts of a face survive the depth test, sampled
// on a grid in the face's own UV frame.
type VisibleMask struct {
	Origin vec.Vec2
	U, V   vec.Vec2 // screen vectors spanning the face
	Cols   int
	Rows   int
	Cells  []bool // row-major, Rows*Cols

	Tested   int
	Visible  int
	Coverage float64

	// UV bounds of the visible cells.
	MinU, MinV float64
	MaxU, MaxV float64
}

// At reports whether the cell holding (u, v) is visible.
func (m *VisibleMask) At(u, v float64) bool {
	if m == nil || m.Cols == 0 || m.Rows == 0 {
		return true
	}
	if u < 0 || u > 1 || v < 0 || v > 1 {
		return false
	}
	c := min(int(u*float64(m.Cols)), m.Cols-1)
	r := min(int(v*float64(m.Rows)), m.Rows-1)
	return m.Cells[r*m.Cols+c]
}

// VisibleAt maps a screen point into the mask frame and reports visibility.
// Points the frame cannot resolve count as visible.
func (m *VisibleMask) VisibleAt(p vec.Vec2) bool {
	if m == nil {
		return true
	}
	det := m.U.X*m.V.Y - m.U.Y*m.V.X
	if math.Abs(det) < 1e-12 {
		return true
	}
	d := p.Sub(m.Origin)
	u := (d.X*m.V.Y - d.Y*m.V.X) / det
	v := (m.U.X*d.Y - m.U.Y*d.X) / det
	const slack = 1e-6
	return m.At(math.Min(math.Max(u, 0), 1-slack), math.Min(math.Max(v, 0), 1-slack))
}
