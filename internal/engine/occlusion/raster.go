package occlusion

import (
	"math"

	"github.com/Faultbox/isoplot/internal/engine/model"
)

const (
	baryTolerance = -1e-5
	minTriArea    = 1e-8
)

// rasterizeFace fills the face as a triangle fan around its first vertex.
func (c *Context) rasterizeFace(f *model.Face) {
	pts := f.Points3
	if len(pts) < 3 {
		return
	}
	id := int32(f.ID)
	v0 := c.gridPoint(pts[0])
	for i := 1; i < len(pts)-1; i++ {
		c.rasterizeTriangle(v0, c.gridPoint(pts[i]), c.gridPoint(pts[i+1]), id)
	}
}

type gridVertex struct {
	x, y, depth float64
}

func (c *Context) gridPoint(p model.ScreenPoint) gridVertex {
	gx, gy := c.ToGrid(p.Vec())
	return gridVertex{gx, gy, p.Depth}
}

// rasterizeTriangle writes every cell whose center lies inside the triangle.
// A cell keeps the nearest depth; exact ties go to the lower face id so the
// result does not depend on the order faces are drawn in.
func (c *Context) rasterizeTriangle(a, b, d gridVertex, id int32) {
	area := edge(a, b, d.x, d.y)
	if math.Abs(area) < minTriArea {
		return
	}

	minX := max(0, int(math.Floor(math.Min(a.x, math.Min(b.x, d.x)))))
	maxX := min(c.Width-1, int(math.Ceil(math.Max(a.x, math.Max(b.x, d.x)))))
	minY := max(0, int(math.Floor(math.Min(a.y, math.Min(b.y, d.y)))))
	maxY := min(c.Height-1, int(math.Ceil(math.Max(a.y, math.Max(b.y, d.y)))))

	for y := minY; y <= maxY; y++ {
		py := float64(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float64(x) + 0.5
			w0 := edge(b, d, px, py) / area
			w1 := edge(d, a, px, py) / area
			w2 := edge(a, b, px, py) / area
			if w0 < baryTolerance || w1 < baryTolerance || w2 < baryTolerance {
				continue
			}
			z := float32(w0*a.depth + w1*b.depth + w2*d.depth)
			i := y*c.Width + x
			if z > c.Depth[i] || (z == c.Depth[i] && (c.Owner[i] < 0 || id < c.Owner[i])) {
				c.Depth[i] = z
				c.Owner[i] = id
			}
		}
	}
}

// edge returns twice the signed area of the triangle (p, q, (x, y)).
func edge(p, q gridVertex, x, y float64) float64 {
	return (q.x-p.x)*(y-p.y) - (q.y-p.y)*(x-p.x)
}
