// Package cleanup turns the raw segment soup from edge extraction into a
// tidy set of plotter strokes.
package cleanup

import (
	"github.com/Faultbox/isoplot/internal/engine/model"
	"seehuhn.de/go/geom/vec"
)

// Options are the cleanup tolerances, in screen units unless noted.
type Options struct {
	SnapCoarse         float64 `yaml:"snap_coarse"`
	SnapFine           float64 `yaml:"snap_fine"`
	TrimTolerance      float64 `yaml:"trim_tolerance"`
	AngleToleranceDeg  float64 `yaml:"angle_tolerance_deg"`
	LineTolerance      float64 `yaml:"line_tolerance"`
	JoinTolerance      float64 `yaml:"join_tolerance"`
	MaxMergeIterations int     `yaml:"max_merge_iterations"`
	MinLength          float64 `yaml:"min_length"`
	MaxPasses          int     `yaml:"max_passes"`
}

// DefaultOptions returns the stock tolerances.
func DefaultOptions() Options {
	return Options{
		SnapCoarse:         0.9,
		SnapFine:           0.35,
		TrimTolerance:      0.6,
		AngleToleranceDeg:  2.5,
		LineTolerance:      0.35,
		JoinTolerance:      0.8,
		MaxMergeIterations: 8,
		MinLength:          0.8,
		MaxPasses:          6,
	}
}

// Stats counts the work done by Run.
type Stats struct {
	Before       int
	After        int
	Snapped      int // endpoints moved by snapping
	Trimmed      int // endpoints pulled back to a crossing
	Merged       int // segments absorbed into a collinear neighbour
	RemovedMicro int
	Passes       int
}

// Result is the cleaned stroke set.
type Result struct {
	Strokes []model.Stroke
	Stats   Stats

	// Junctions are endpoints shared by two or more segments.
	Junctions []vec.Vec2
}

// Run cleans strokes. Open two-point segments are snapped, trimmed, merged
// and filtered; every other stroke passes through unchanged after them.
//
// The step sequence repeats until a pass changes nothing, so running Run on
// its own output returns that output unchanged.
func Run(strokes []model.Stroke, opts Options) Result {
	var segs, rest []model.Stroke
	for _, s := range strokes {
		if s.IsSegment() {
			segs = append(segs, s.Clone())
		} else {
			rest = append(rest, s)
		}
	}

	res := Result{Stats: Stats{Before: len(strokes)}}
	passes := max(1, opts.MaxPasses)
	for range passes {
		before := snapshot(segs)
		res.Stats.Passes++

		var n int
		segs, n = snap(segs, opts.SnapCoarse)
		res.Stats.Snapped += n
		res.Stats.Trimmed += trimOvershoots(segs, opts.TrimTolerance)
		segs, n = mergeCollinear(segs, opts)
		res.Stats.Merged += n
		segs, n = snap(segs, opts.SnapFine)
		res.Stats.Snapped += n
		segs, n = removeMicro(segs, opts.MinLength)
		res.Stats.RemovedMicro += n

		if equal(before, segs) {
			break
		}
	}

	res.Strokes = append(segs, rest...)
	res.Stats.After = len(res.Strokes)
	res.Junctions = junctions(segs)
	return res
}

func snapshot(segs []model.Stroke) []model.Stroke {
	out := make([]model.Stroke, len(segs))
	for i, s := range segs {
		out[i] = s.Clone()
	}
	return out
}

func equal(a, b []model.Stroke) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i].Points) != len(b[i].Points) || len(a[i].FaceIDs) != len(b[i].FaceIDs) {
			return false
		}
		for k := range a[i].Points {
			if a[i].Points[k] != b[i].Points[k] {
				return false
			}
		}
		for k := range a[i].FaceIDs {
			if a[i].FaceIDs[k] != b[i].FaceIDs[k] {
				return false
			}
		}
	}
	return true
}

// junctions lists endpoints used by at least two segments, in first-seen
// order.
func junctions(segs []model.Stroke) []vec.Vec2 {
	count := make(map[vec.Vec2]int)
	var order []vec.Vec2
	for _, s := range segs {
		for _, p := range s.Points {
			if count[p] == 0 {
				order = append(order, p)
			}
			count[p]++
		}
	}
	var out []vec.Vec2
	for _, p := range order {
		if count[p] >= 2 {
			out = append(out, p)
		}
	}
	return out
}
