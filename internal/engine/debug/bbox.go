// Package debug builds diagnostic overlays and image captures for renders.
package debug

import (
	"github.com/Faultbox/isoplot/internal/engine/model"
	"seehuhn.de/go/geom/vec"
)

// DefaultBoundsPadding is the screen padding around face bounds overlays.
const DefaultBoundsPadding = 0.5

// DefaultMarkerSize is the arm length of junction markers.
const DefaultMarkerSize = 0.6

// BoundsWireframe returns a closed rectangle around each face's screen bounds,
// grown by padding on all sides.
func BoundsWireframe(faces []*model.Face, padding float64) []model.Stroke {
	out := make([]model.Stroke, 0, len(faces))
	for _, f := range faces {
		b := f.Bounds
		minX, minY := b.LLx-padding, b.LLy-padding
		maxX, maxY := b.URx+padding, b.URy+padding

		// Handle inverted bounds
		if minX > maxX {
			minX, maxX = maxX, minX
		}
		if minY > maxY {
			minY, maxY = maxY, minY
		}

		out = append(out, model.Stroke{
			Points: []vec.Vec2{
				{X: minX, Y: minY},
				{X: maxX, Y: minY},
				{X: maxX, Y: maxY},
				{X: minX, Y: maxY},
			},
			Closed:  true,
			FaceIDs: []int{f.ID},
		})
	}
	return out
}

// JunctionMarkers returns an x-shaped pair of segments at each point.
func JunctionMarkers(points []vec.Vec2, size float64) []model.Stroke {
	out := make([]model.Stroke, 0, 2*len(points))
	for _, p := range points {
		out = append(out,
			model.Stroke{Points: []vec.Vec2{{X: p.X - size, Y: p.Y - size}, {X: p.X + size, Y: p.Y + size}}},
			model.Stroke{Points: []vec.Vec2{{X: p.X - size, Y: p.Y + size}, {X: p.X + size, Y: p.Y - size}}},
		)
	}
	return out
}
