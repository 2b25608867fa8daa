// Package camera provides the isometric view used to project faces onto the
// plotter page.
package camera

import (
	gomath "math"

	"github.com/Faultbox/isoplot/internal/engine/model"
	"github.com/Faultbox/isoplot/pkg/math"
	"github.com/Faultbox/isoplot/pkg/polygon"
	"seehuhn.de/go/geom/vec"
)

// BackfaceEps is the facing threshold below which a face is culled.
const BackfaceEps = 1e-4

// minOrientationDet is the smallest orientation determinant accepted.
const minOrientationDet = 1e-9

// pitchAxis is the screen-horizontal axis of the isometric frame.
var pitchAxis = math.Vec3{X: gomath.Sqrt2 / 2, Y: -gomath.Sqrt2 / 2}

// View describes how world space maps onto the page.
type View struct {
	YawDeg   float64
	PitchDeg float64

	// Orientation, when set and non-singular, replaces the yaw/pitch
	// rotation.
	Orientation *math.Mat3

	Scale float64   // screen units per world unit
	Pivot math.Vec3 // rotation center
}

// NewIsoView creates a view with the default isometric framing.
func NewIsoView() View {
	return View{
		YawDeg:   40,
		PitchDeg: 0,
		Scale:    48,
	}
}

// Rotation returns the world-to-view rotation.
func (v View) Rotation() math.Mat3 {
	if o := v.Orientation; o != nil && o.IsFinite() && gomath.Abs(o.Determinant()) > minOrientationDet {
		return o.Orthonormalize()
	}
	yaw := math.RotateZ(v.YawDeg * gomath.Pi / 180)
	if v.PitchDeg == 0 {
		return yaw
	}
	pitch := math.QuatFromAxisAngle(pitchAxis, v.PitchDeg*gomath.Pi/180).ToMat3()
	return pitch.Mul(yaw)
}

// Projector caches the rotation of a view for repeated projection.
type Projector struct {
	view View
	rot  math.Mat3
}

// NewProjector creates a projector for v.
func NewProjector(v View) *Projector {
	if v.Scale <= 0 {
		v.Scale = 1
	}
	return &Projector{view: v, rot: v.Rotation()}
}

// Project maps a world point to screen coordinates and view depth.
// Larger depth is nearer the viewer.
func (p *Projector) Project(pt math.Vec3) model.ScreenPoint {
	r := p.rot.Apply(pt.Sub(p.view.Pivot))
	s := p.view.Scale
	return model.ScreenPoint{
		X:     (r.X - r.Y) * s,
		Y:     (r.X+r.Y)*0.5*s - r.Z*s,
		Depth: r.X + r.Y + r.Z,
	}
}

// Classify rotates a world normal into view space and reports whether the
// face it belongs to points toward the viewer.
func (p *Projector) Classify(normal math.Vec3) (view math.Vec3, front bool) {
	view = p.rot.Apply(normal)
	facing := view.X + view.Y + view.Z
	return view, facing >= -BackfaceEps
}

// ProjectFaces projects every front-facing face. Back-facing faces and faces
// with fewer than three corners are dropped.
func ProjectFaces(faces []model.WorldFace, v View) []*model.Face {
	proj := NewProjector(v)
	out := make([]*model.Face, 0, len(faces))
	for i := range faces {
		wf := &faces[i]
		if len(wf.Corners) < 3 {
			continue
		}
		normal := wf.Normal.Normalize()
		nView, front := proj.Classify(normal)
		if !front {
			continue
		}
		out = append(out, projectFace(proj, wf, normal, nView))
	}
	return out
}

func projectFace(proj *Projector, wf *model.WorldFace, normal, nView math.Vec3) *model.Face {
	n := len(wf.Corners)
	f := &model.Face{
		ID:           wf.ID,
		Normal:       normal,
		NormalView:   nView,
		Area:         wf.Area,
		WorldCorners: make([]math.Vec3, n),
		Points:       make([]vec.Vec2, n),
		Points3:      make([]model.ScreenPoint, n),
		MinDepth:     gomath.Inf(1),
		MaxDepth:     gomath.Inf(-1),
		DrawOrder:    -1,
	}
	if f.Area <= 0 {
		f.Area = model.NewellArea(wf.Corners)
	}

	var sum float64
	for i, c := range wf.Corners {
		sp := proj.Project(c)
		f.WorldCorners[i] = c.Quantize(model.WorldQuantum)
		f.Points[i] = sp.Vec()
		f.Points3[i] = sp
		sum += sp.Depth
		f.MinDepth = gomath.Min(f.MinDepth, sp.Depth)
		f.MaxDepth = gomath.Max(f.MaxDepth, sp.Depth)
	}
	f.Depth = sum / float64(n)
	f.Bounds = polygon.Bounds(f.Points)
	f.Plane = model.SolvePlane(f.Points3)

	f.ShadeKey = model.ShadeKeyFor(normal)
	f.ToneIndex = model.ToneIndex(f.ShadeKey)
	f.Type = model.FaceTypeFor(f.ShadeKey)
	return f
}

// FitToBounds centers the pivot on the box lo..hi and picks a scale so the
// projected box spans about target screen units.
func (v *View) FitToBounds(lo, hi math.Vec3, target float64) {
	v.Pivot = lo.Add(hi).Scale(0.5)
	v.Scale = 1

	proj := NewProjector(*v)
	minX, minY := gomath.Inf(1), gomath.Inf(1)
	maxX, maxY := gomath.Inf(-1), gomath.Inf(-1)
	for _, x := range []float64{lo.X, hi.X} {
		for _, y := range []float64{lo.Y, hi.Y} {
			for _, z := range []float64{lo.Z, hi.Z} {
				sp := proj.Project(math.Vec3{X: x, Y: y, Z: z})
				minX, maxX = gomath.Min(minX, sp.X), gomath.Max(maxX, sp.X)
				minY, maxY = gomath.Min(minY, sp.Y), gomath.Max(maxY, sp.Y)
			}
		}
	}
	span := gomath.Max(maxX-minX, maxY-minY)
	if span < 1e-9 || target <= 0 {
		v.Scale = 1
		return
	}
	v.Scale = target / span
}

// WorldBounds returns the axis-aligned box around all face corners.
func WorldBounds(faces []model.WorldFace) (lo, hi math.Vec3) {
	lo = math.Vec3{X: gomath.Inf(1), Y: gomath.Inf(1), Z: gomath.Inf(1)}
	hi = math.Vec3{X: gomath.Inf(-1), Y: gomath.Inf(-1), Z: gomath.Inf(-1)}
	for _, f := range faces {
		for _, c := range f.Corners {
			lo = math.Vec3{X: gomath.Min(lo.X, c.X), Y: gomath.Min(lo.Y, c.Y), Z: gomath.Min(lo.Z, c.Z)}
			hi = math.Vec3{X: gomath.Max(hi.X, c.X), Y: gomath.Max(hi.Y, c.Y), Z: gomath.Max(hi.Z, c.Z)}
		}
	}
	if gomath.IsInf(lo.X, 1) {
		return math.Vec3{}, math.Vec3{}
	}
	return lo, hi
}
