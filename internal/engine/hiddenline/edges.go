package hiddenline

import (
	"math"
	"sort"

	"github.com/Faultbox/isoplot/internal/engine/model"
	pmath "github.com/Faultbox/isoplot/pkg/math"
	"github.com/Faultbox/isoplot/pkg/polygon"
	"seehuhn.de/go/geom/vec"
)

// EdgeKind classifies a boundary edge.
type EdgeKind int

const (
	// Silhouette edges separate a face from empty space or from a face at a
	// different orientation.
	Silhouette EdgeKind = iota
	// Internal edges are seams between coplanar faces.
	Internal
)

func (k EdgeKind) String() string {
	if k == Internal {
		return "internal"
	}
	return "silhouette"
}

// Edge is a screen-space piece of face boundary shared by FaceIDs.
type Edge struct {
	A, B           vec.Vec2
	DepthA, DepthB float64
	FaceIDs        []int
	Kind           EdgeKind
}

const (
	paramEps    = 1e-6
	directionQ  = 1e-6
	lineOffsetQ = model.WorldQuantum
	parallelCos = 1 - 1e-6
)

// lineKey identifies a world-space carrier line.
type lineKey [6]int64

// edgeInstance is one face's boundary edge parametrised along its carrier
// line, with ta < tb.
type edgeInstance struct {
	face   *model.Face
	ta, tb float64
	sa, sb model.ScreenPoint
}

type lineGroup struct {
	instances []edgeInstance
}

// CollectEdges gathers the boundary edges of faces. Edges lying on the same
// world line are split at every endpoint on that line, so each returned edge
// is covered by a fixed set of faces along its whole length.
func CollectEdges(faces []*model.Face) []Edge {
	var groups []*lineGroup
	index := make(map[lineKey]int)

	for _, f := range faces {
		n := len(f.WorldCorners)
		if n < 3 || len(f.Points3) != n {
			continue
		}
		for i := range n {
			j := (i + 1) % n
			key, inst, ok := makeInstance(f, i, j)
			if !ok {
				continue
			}
			gi, found := index[key]
			if !found {
				gi = len(groups)
				index[key] = gi
				groups = append(groups, &lineGroup{})
			}
			groups[gi].instances = append(groups[gi].instances, inst)
		}
	}

	var edges []Edge
	for _, g := range groups {
		edges = append(edges, g.split()...)
	}
	return edges
}

func makeInstance(f *model.Face, i, j int) (lineKey, edgeInstance, bool) {
	wa, wb := f.WorldCorners[i], f.WorldCorners[j]
	sa, sb := f.Points3[i], f.Points3[j]
	d := wb.Sub(wa)
	if d.Length() < paramEps {
		return lineKey{}, edgeInstance{}, false
	}
	d = canonicalDirection(d.Normalize())
	ta, tb := wa.Dot(d), wb.Dot(d)
	if ta > tb {
		ta, tb = tb, ta
		sa, sb = sb, sa
	}
	foot := wa.Sub(d.Scale(wa.Dot(d)))
	key := lineKey{
		q(d.X, directionQ), q(d.Y, directionQ), q(d.Z, directionQ),
		q(foot.X, lineOffsetQ), q(foot.Y, lineOffsetQ), q(foot.Z, lineOffsetQ),
	}
	return key, edgeInstance{face: f, ta: ta, tb: tb, sa: sa, sb: sb}, true
}

// canonicalDirection flips d so its first significant component is positive.
func canonicalDirection(d pmath.Vec3) pmath.Vec3 {
	for _, c := range []float64{d.X, d.Y, d.Z} {
		if math.Abs(c) > 1e-9 {
			if c < 0 {
				return d.Scale(-1)
			}
			return d
		}
	}
	return d
}

func q(v, step float64) int64 {
	return int64(math.Round(v / step))
}

// split cuts the group's line at every instance endpoint and emits one edge
// per run of intervals with the same covering faces.
func (g *lineGroup) split() []Edge {
	var ts []float64
	for _, in := range g.instances {
		ts = append(ts, in.ta, in.tb)
	}
	sort.Float64s(ts)
	breaks := ts[:0]
	for _, t := range ts {
		if len(breaks) == 0 || t-breaks[len(breaks)-1] > paramEps {
			breaks = append(breaks, t)
		}
	}

	var out []Edge
	var prevEnd float64
	var prevCover []int
	for k := 1; k < len(breaks); k++ {
		t0, t1 := breaks[k-1], breaks[k]
		cover := g.covering(t0, t1)
		if len(cover) == 0 {
			prevCover = nil
			continue
		}
		kind := g.classify(cover)
		ids := make([]int, len(cover))
		for i, c := range cover {
			ids[i] = g.instances[c].face.ID
		}
		ids = model.SortedIDs(ids)

		first := g.instances[cover[0]]
		a, da := first.at(t0)
		b, db := first.at(t1)

		n := len(out)
		if n > 0 && prevCover != nil && math.Abs(prevEnd-t0) <= paramEps &&
			out[n-1].Kind == kind && sameIDs(out[n-1].FaceIDs, ids) {
			out[n-1].B, out[n-1].DepthB = b, db
		} else {
			out = append(out, Edge{A: a, B: b, DepthA: da, DepthB: db, FaceIDs: ids, Kind: kind})
		}
		prevEnd, prevCover = t1, cover
	}
	return out
}

// covering lists the instances spanning [t0, t1].
func (g *lineGroup) covering(t0, t1 float64) []int {
	var out []int
	for i, in := range g.instances {
		if in.ta <= t0+paramEps && in.tb >= t1-paramEps {
			out = append(out, i)
		}
	}
	return out
}

// classify marks an interval internal when at least two faces share it and
// all of them face the same way.
func (g *lineGroup) classify(cover []int) EdgeKind {
	if len(cover) < 2 {
		return Silhouette
	}
	n0 := g.instances[cover[0]].face.Normal
	for _, c := range cover[1:] {
		if g.instances[c].face.Normal.Dot(n0) < parallelCos {
			return Silhouette
		}
	}
	return Internal
}

// at returns the screen point and depth at line parameter t.
func (in edgeInstance) at(t float64) (vec.Vec2, float64) {
	s := 0.0
	if span := in.tb - in.ta; span > paramEps {
		s = (t - in.ta) / span
	}
	p := polygon.Lerp(in.sa.Vec(), in.sb.Vec(), s)
	return p, in.sa.Depth + (in.sb.Depth-in.sa.Depth)*s
}

func sameIDs(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
