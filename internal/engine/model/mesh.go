package model

import (
	pmath "github.com/Faultbox/isoplot/pkg/math"
)

// BoxFaces returns the six outward-facing quads of the axis-aligned box
// spanning lo..hi. Face ids start at firstID in the order +x, -x, +y, -y, +z, -z.
func BoxFaces(firstID int, lo, hi pmath.Vec3) []WorldFace {
	c := func(x, y, z float64) pmath.Vec3 { return pmath.Vec3{X: x, Y: y, Z: z} }
	dx, dy, dz := hi.X-lo.X, hi.Y-lo.Y, hi.Z-lo.Z

	faces := []WorldFace{
		{
			Normal:  pmath.Vec3{X: 1},
			Corners: []pmath.Vec3{c(hi.X, lo.Y, lo.Z), c(hi.X, hi.Y, lo.Z), c(hi.X, hi.Y, hi.Z), c(hi.X, lo.Y, hi.Z)},
			Area:    dy * dz,
		},
		{
			Normal:  pmath.Vec3{X: -1},
			Corners: []pmath.Vec3{c(lo.X, hi.Y, lo.Z), c(lo.X, lo.Y, lo.Z), c(lo.X, lo.Y, hi.Z), c(lo.X, hi.Y, hi.Z)},
			Area:    dy * dz,
		},
		{
			Normal:  pmath.Vec3{Y: 1},
			Corners: []pmath.Vec3{c(hi.X, hi.Y, lo.Z), c(lo.X, hi.Y, lo.Z), c(lo.X, hi.Y, hi.Z), c(hi.X, hi.Y, hi.Z)},
			Area:    dx * dz,
		},
		{
			Normal:  pmath.Vec3{Y: -1},
			Corners: []pmath.Vec3{c(lo.X, lo.Y, lo.Z), c(hi.X, lo.Y, lo.Z), c(hi.X, lo.Y, hi.Z), c(lo.X, lo.Y, hi.Z)},
			Area:    dx * dz,
		},
		{
			Normal:  pmath.Vec3{Z: 1},
			Corners: []pmath.Vec3{c(lo.X, lo.Y, hi.Z), c(hi.X, lo.Y, hi.Z), c(hi.X, hi.Y, hi.Z), c(lo.X, hi.Y, hi.Z)},
			Area:    dx * dy,
		},
		{
			Normal:  pmath.Vec3{Z: -1},
			Corners: []pmath.Vec3{c(lo.X, hi.Y, lo.Z), c(hi.X, hi.Y, lo.Z), c(hi.X, lo.Y, lo.Z), c(lo.X, lo.Y, lo.Z)},
			Area:    dx * dy,
		},
	}
	for i := range faces {
		faces[i].ID = firstID + i
	}
	return faces
}

// StairFaces builds a descending staircase of unit-depth boxes, one per step.
// Step i spans x in [i, i+1] and rises to height steps-i. The +x face of each
// step only covers the riser above the next step, so the tread of one step and
// the riser of the previous one share an edge.
func StairFaces(steps int) []WorldFace {
	var faces []WorldFace
	for i := range steps {
		top := float64(steps - i)
		lo := pmath.Vec3{X: float64(i)}
		hi := pmath.Vec3{X: float64(i + 1), Y: 1, Z: top}
		box := BoxFaces(i*6+1, lo, hi)
		box[0] = BoxFaces(i*6+1, pmath.Vec3{X: float64(i), Z: top - 1}, hi)[0]
		faces = append(faces, box...)
	}
	return faces
}

// NewellArea returns the area of a planar polygon in 3D.
func NewellArea(corners []pmath.Vec3) float64 {
	var n pmath.Vec3
	for i := range corners {
		a := corners[i]
		b := corners[(i+1)%len(corners)]
		n = n.Add(a.Cross(b))
	}
	return n.Length() / 2
}
