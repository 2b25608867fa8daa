// Package visibility orders projected faces so that painting them in
// sequence draws every face after the faces it occludes.
package visibility

import (
	"container/heap"
	"math"
	"sort"

	"github.com/Faultbox/isoplot/internal/engine/model"
	"github.com/Faultbox/isoplot/pkg/polygon"
	"seehuhn.de/go/geom/vec"
)

const (
	boundsEps   = 1e-6
	dedupeEps   = 1e-3
	frontEps    = 1e-4
	fallbackEps = 1e-6
)

// Order returns faces sorted back to front. The input slice is not modified.
//
// Each pair of faces whose screen bounds overlap is compared at sample points
// inside both polygons. When one face is consistently nearer it must be drawn
// later; contradictory samples add no constraint. Faces left over by cycles in
// that relation are appended in fallback order.
func Order(faces []*model.Face) []*model.Face {
	n := len(faces)
	if n < 2 {
		return append([]*model.Face(nil), faces...)
	}

	g := buildGraph(faces)

	out := make([]*model.Face, 0, n)
	emitted := make([]bool, n)
	q := &queue{faces: faces}
	for i := range n {
		if g.indeg[i] == 0 {
			heap.Push(q, i)
		}
	}
	for q.Len() > 0 {
		i := heap.Pop(q).(int)
		emitted[i] = true
		out = append(out, faces[i])
		for _, j := range g.adj[i] {
			g.indeg[j]--
			if g.indeg[j] == 0 {
				heap.Push(q, j)
			}
		}
	}

	if len(out) < n {
		var rest []*model.Face
		for i, f := range faces {
			if !emitted[i] {
				rest = append(rest, f)
			}
		}
		sort.SliceStable(rest, func(a, b int) bool { return fallbackLess(rest[a], rest[b]) })
		out = append(out, rest...)
	}
	return out
}

// AssignDrawOrder numbers faces by their position in ordered.
func AssignDrawOrder(ordered []*model.Face) {
	for i, f := range ordered {
		f.DrawOrder = i
	}
}

// graph holds "paints before" edges: adj[i] lists faces drawn after face i.
type graph struct {
	adj   [][]int
	indeg []int
	edges int
}

func buildGraph(faces []*model.Face) *graph {
	n := len(faces)
	g := &graph{adj: make([][]int, n), indeg: make([]int, n)}

	byMinX := make([]int, n)
	for i := range byMinX {
		byMinX[i] = i
	}
	sort.SliceStable(byMinX, func(a, b int) bool {
		return faces[byMinX[a]].Bounds.LLx < faces[byMinX[b]].Bounds.LLx
	})

	seen := make(map[[2]int]bool)
	for ai, a := range byMinX {
		fa := faces[a]
		for _, b := range byMinX[ai+1:] {
			fb := faces[b]
			if fb.Bounds.LLx > fa.Bounds.URx-boundsEps {
				break
			}
			if !polygon.Overlap(fa.Bounds, fb.Bounds, boundsEps) {
				continue
			}
			switch compare(fa, fb) {
			case aInFront:
				g.add(b, a, seen)
			case bInFront:
				g.add(a, b, seen)
			}
		}
	}
	return g
}

func (g *graph) add(from, to int, seen map[[2]int]bool) {
	key := [2]int{from, to}
	if seen[key] {
		return
	}
	seen[key] = true
	g.adj[from] = append(g.adj[from], to)
	g.indeg[to]++
	g.edges++
}

type relation int

const (
	unrelated relation = iota
	aInFront
	bInFront
)

// compare decides which of two overlapping faces is nearer.
func compare(a, b *model.Face) relation {
	var aFront, bFront bool
	for _, p := range overlapSamples(a.Points, b.Points) {
		da, db := a.DepthAt(p), b.DepthAt(p)
		switch {
		case da > db+frontEps:
			aFront = true
		case db > da+frontEps:
			bFront = true
		}
	}
	switch {
	case aFront && !bFront:
		return aInFront
	case bFront && !aFront:
		return bInFront
	}
	return unrelated
}

// overlapSamples collects points inside both polygons: the corners of each
// that lie inside the other and every boundary crossing.
func overlapSamples(a, b []vec.Vec2) []vec.Vec2 {
	var pts []vec.Vec2
	for _, p := range a {
		if polygon.Contains(b, p) {
			pts = append(pts, p)
		}
	}
	for _, p := range b {
		if polygon.Contains(a, p) {
			pts = append(pts, p)
		}
	}
	for i := range a {
		a0, a1 := a[i], a[(i+1)%len(a)]
		for j := range b {
			if p, _, _, ok := polygon.Intersect(a0, a1, b[j], b[(j+1)%len(b)]); ok {
				pts = append(pts, p)
			}
		}
	}
	return uniquePoints(pts, dedupeEps)
}

func uniquePoints(pts []vec.Vec2, eps float64) []vec.Vec2 {
	out := pts[:0]
	for _, p := range pts {
		dup := false
		for _, q := range out {
			if math.Abs(p.X-q.X) <= eps && math.Abs(p.Y-q.Y) <= eps {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, p)
		}
	}
	return out
}

// fallbackLess orders farther faces first: by mean depth, then by max depth,
// then by id.
func fallbackLess(a, b *model.Face) bool {
	if d := a.Depth - b.Depth; math.Abs(d) > fallbackEps {
		return d < 0
	}
	if d := a.MaxDepth - b.MaxDepth; math.Abs(d) > fallbackEps {
		return d < 0
	}
	return a.ID < b.ID
}

// queue is a min-heap of face indices in fallback order.
type queue struct {
	faces []*model.Face
	items []int
}

func (q *queue) Len() int { return len(q.items) }
func (q *queue) Less(i, j int) bool {
	return fallbackLess(q.faces[q.items[i]], q.faces[q.items[j]])
}
func (q *queue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }
func (q *queue) Push(x any) { q.items = append(q.items, x.(int)) }
func (q *queue) Pop() any {
	old := q.items
	n := len(old)
	x := old[n-1]
	q.items = old[:n-1]
	return x
}
