package cleanup

import (
	"github.com/Faultbox/isoplot/internal/engine/model"
	"seehuhn.de/go/geom/vec"
)

// removeMicro drops segments shorter than minLen. A group of segments
// connected through shared endpoints never disappears entirely: when all of
// its members are short, the longest one stays.
func removeMicro(segs []model.Stroke, minLen float64) ([]model.Stroke, int) {
	if minLen <= 0 || len(segs) == 0 {
		return segs, 0
	}

	parent := make([]int, len(segs))
	for i := range parent {
		parent[i] = i
	}
	find := func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	owner := make(map[vec.Vec2]int)
	for i, s := range segs {
		for _, p := range s.Points {
			if j, ok := owner[p]; ok {
				ri, rj := find(i), find(j)
				if ri != rj {
					parent[max(ri, rj)] = min(ri, rj)
				}
			} else {
				owner[p] = i
			}
		}
	}

	lengths := make([]float64, len(segs))
	longest := make(map[int]int) // root -> index of longest member
	hasLong := make(map[int]bool)
	for i := range segs {
		lengths[i] = segs[i].Length()
		r := find(i)
		if best, ok := longest[r]; !ok || lengths[i] > lengths[best] {
			longest[r] = i
		}
		if lengths[i] >= minLen {
			hasLong[r] = true
		}
	}

	out := segs[:0]
	removed := 0
	for i, s := range segs {
		r := find(i)
		if lengths[i] < minLen && (hasLong[r] || longest[r] != i) {
			removed++
			continue
		}
		out = append(out, s)
	}
	return out, removed
}
