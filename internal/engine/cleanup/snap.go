package cleanup

import (
	"math"

	"github.com/Faultbox/isoplot/internal/engine/model"
	"seehuhn.de/go/geom/vec"
)

const maxSnapRounds = 8

type cellKey [2]int64

// snap moves endpoints lying within radius of each other onto their shared
// centroid, repeating until no cluster holds distinct points. Segments whose
// ends still meet are removed. It returns the number of endpoint moves.
func snap(segs []model.Stroke, radius float64) ([]model.Stroke, int) {
	if radius <= 0 || len(segs) == 0 {
		return segs, 0
	}
	moved := 0
	for range maxSnapRounds {
		n := snapRound(segs, radius)
		if n == 0 {
			break
		}
		moved += n
	}

	out := segs[:0]
	for _, s := range segs {
		if s.Points[0] == s.Points[1] {
			continue
		}
		out = append(out, s)
	}
	return out, moved
}

// snapRound clusters endpoints around seeds in index order: each endpoint
// joins the nearest seed within radius or becomes a new seed. The two ends of
// one segment never share a cluster, so snapping alone cannot collapse a
// segment.
func snapRound(segs []model.Stroke, radius float64) int {
	type cluster struct {
		seed    vec.Vec2
		members []int // endpoint index: seg*2 + end
	}
	var clusters []*cluster
	grid := make(map[cellKey][]int)
	r2 := radius * radius

	cellOf := func(p vec.Vec2) cellKey {
		return cellKey{int64(math.Floor(p.X / radius)), int64(math.Floor(p.Y / radius))}
	}

	for i := range segs {
		own := -1
		for end := range 2 {
			p := segs[i].Points[end]
			ck := cellOf(p)
			best, bestD := -1, math.Inf(1)
			for dx := int64(-1); dx <= 1; dx++ {
				for dy := int64(-1); dy <= 1; dy++ {
					for _, ci := range grid[cellKey{ck[0] + dx, ck[1] + dy}] {
						if ci == own {
							continue
						}
						d := dist2(clusters[ci].seed, p)
						if d <= r2 && (d < bestD || (d == bestD && ci < best)) {
							best, bestD = ci, d
						}
					}
				}
			}
			if best < 0 {
				best = len(clusters)
				clusters = append(clusters, &cluster{seed: p})
				grid[ck] = append(grid[ck], best)
			}
			clusters[best].members = append(clusters[best].members, i*2+end)
			own = best
		}
	}

	moved := 0
	for _, c := range clusters {
		if len(c.members) < 2 {
			continue
		}
		first := endpoint(segs, c.members[0])
		distinct := false
		var sx, sy float64
		for _, m := range c.members {
			p := endpoint(segs, m)
			if p != first {
				distinct = true
			}
			sx += p.X
			sy += p.Y
		}
		if !distinct {
			continue
		}
		n := float64(len(c.members))
		centroid := vec.Vec2{X: sx / n, Y: sy / n}
		for _, m := range c.members {
			if endpoint(segs, m) != centroid {
				segs[m/2].Points[m%2] = centroid
				moved++
			}
		}
	}
	return moved
}

func endpoint(segs []model.Stroke, m int) vec.Vec2 {
	return segs[m/2].Points[m%2]
}

func dist2(a, b vec.Vec2) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}
