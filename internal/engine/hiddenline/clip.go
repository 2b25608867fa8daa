// Package hiddenline extracts the visible parts of face boundaries and clips
// arbitrary strokes against the shared depth buffer.
package hiddenline

import (
	"math"

	"github.com/Faultbox/isoplot/internal/engine/model"
	"github.com/Faultbox/isoplot/internal/engine/occlusion"
	"github.com/Faultbox/isoplot/pkg/polygon"
	"seehuhn.de/go/geom/vec"
)

// Options tune occlusion sampling and run smoothing.
type Options struct {
	DepthBias       float64 `yaml:"depth_bias"`        // depth slack before a sample counts as hidden
	MinSamples      int     `yaml:"min_samples"`       // samples per segment, lower bound
	SamplesPerPixel float64 `yaml:"samples_per_pixel"` // sample density along a segment
	MinVisibleRun   int     `yaml:"min_visible_run"`   // shorter visible runs are dropped
	MaxBridgeGap    int     `yaml:"max_bridge_gap"`    // shorter hidden gaps are bridged
	TrimRatio       float64 `yaml:"trim_ratio"`        // inward trim as a share of run length
	TrimMaxPx       float64 `yaml:"trim_max_px"`       // inward trim cap, in raster cells
	MinSegmentPx    float64 `yaml:"min_segment_px"`    // clipped pieces below this are dropped
}

// DefaultOptions returns the stock sampling parameters.
func DefaultOptions() Options {
	return Options{
		DepthBias:       0.03,
		MinSamples:      6,
		SamplesPerPixel: 1,
		MinVisibleRun:   2,
		MaxBridgeGap:    2,
		TrimRatio:       0.06,
		TrimMaxPx:       0.75,
		MinSegmentPx:    0.5,
	}
}

// Reduced returns o with halved sample counts.
func (o Options) Reduced() Options {
	o.SamplesPerPixel /= 2
	o.MinSamples = max(3, o.MinSamples/2)
	return o
}

// Clipper tests strokes against an occlusion context.
type Clipper struct {
	ctx  *occlusion.Context
	opts Options
}

// NewClipper creates a clipper. A nil context disables clipping.
func NewClipper(ctx *occlusion.Context, opts Options) *Clipper {
	if opts.MinSamples <= 0 {
		opts.MinSamples = 1
	}
	return &Clipper{ctx: ctx, opts: opts}
}

// ClipStroke returns the visible pieces of s. A stroke's own faces never
// occlude it. Closed strokes are kept or dropped whole by testing their
// centroid. Strokes without depths, degenerate strokes and strokes seen
// without a context pass through unchanged.
func (c *Clipper) ClipStroke(s model.Stroke) []model.Stroke {
	if c.ctx == nil || len(s.Points) < 2 || len(s.Depths) != len(s.Points) {
		return []model.Stroke{s}
	}
	if polygon.PathLength(s.Points)*c.ctx.Scale < 1e-9 {
		return []model.Stroke{s}
	}
	if s.Closed {
		if c.closedVisible(s) {
			return []model.Stroke{s}
		}
		return nil
	}

	var out []model.Stroke
	var cur *model.Stroke
	for i := 1; i < len(s.Points); i++ {
		a, b := s.Points[i-1], s.Points[i]
		da, db := s.Depths[i-1], s.Depths[i]
		for _, sp := range c.visibleSpans(a, b, da, db, s.FaceIDs) {
			pa, za := a, da
			if sp.t0 > 0 {
				pa, za = polygon.Lerp(a, b, sp.t0), da+(db-da)*sp.t0
			}
			pb, zb := b, db
			if sp.t1 < 1 {
				pb, zb = polygon.Lerp(a, b, sp.t1), da+(db-da)*sp.t1
			}
			if cur != nil && sp.t0 == 0 && cur.Points[len(cur.Points)-1] == pa {
				cur.Points = append(cur.Points, pb)
				cur.Depths = append(cur.Depths, zb)
				cur.DepthMin = math.Min(cur.DepthMin, zb)
				cur.DepthMax = math.Max(cur.DepthMax, zb)
			} else {
				if cur != nil {
					out = append(out, *cur)
				}
				seg := model.NewSegment(pa, pb, za, zb, s.FaceIDs...)
				cur = &seg
			}
			if sp.t1 < 1 {
				out = append(out, *cur)
				cur = nil
			}
		}
		if cur != nil && cur.Points[len(cur.Points)-1] != b {
			out = append(out, *cur)
			cur = nil
		}
	}
	if cur != nil {
		out = append(out, *cur)
	}
	return out
}

// Hidden reports whether the surface point p at depth is covered by a nearer
// face other than self.
func (c *Clipper) Hidden(p vec.Vec2, depth float64, self []int) bool {
	d, owner := c.ctx.Sample(p)
	if owner < 0 || containsID(self, owner) {
		return false
	}
	return d > depth+c.opts.DepthBias
}

func (c *Clipper) closedVisible(s model.Stroke) bool {
	var sum float64
	for _, d := range s.Depths {
		sum += d
	}
	return !c.Hidden(polygon.Centroid(s.Points), sum/float64(len(s.Depths)), s.FaceIDs)
}

type span struct {
	t0, t1 float64
}

// visibleSpans samples a-b and returns its visible parameter ranges after
// smoothing.
func (c *Clipper) visibleSpans(a, b vec.Vec2, da, db float64, self []int) []span {
	pixLen := b.Sub(a).Length() * c.ctx.Scale
	if pixLen < 1e-9 {
		return []span{{0, 1}}
	}
	steps := max(c.opts.MinSamples, int(math.Ceil(pixLen*c.opts.SamplesPerPixel)))

	vis := make([]bool, steps+1)
	for i := range vis {
		t := float64(i) / float64(steps)
		vis[i] = !c.Hidden(polygon.Lerp(a, b, t), da+(db-da)*t, self)
	}
	bridgeGaps(vis, c.opts.MaxBridgeGap)
	dropShortRuns(vis, c.opts.MinVisibleRun)

	var out []span
	for _, r := range runs(vis) {
		i0, i1 := r[0], r[1]
		if i0 == 0 && i1 == steps {
			return []span{{0, 1}}
		}
		half := 0.5 / float64(steps)
		t0, t1 := float64(i0)/float64(steps), float64(i1)/float64(steps)
		if i0 > 0 {
			t0 -= half
		}
		if i1 < steps {
			t1 += half
		}
		trim := math.Min((t1-t0)*c.opts.TrimRatio, c.opts.TrimMaxPx/pixLen)
		if i0 > 0 {
			t0 += trim
		}
		if i1 < steps {
			t1 -= trim
		}
		if t1 <= t0 || (t1-t0)*pixLen < c.opts.MinSegmentPx {
			continue
		}
		out = append(out, span{t0, t1})
	}
	return out
}

// runs returns [start, end] index pairs of consecutive true values.
func runs(vis []bool) [][2]int {
	var out [][2]int
	start := -1
	for i, v := range vis {
		switch {
		case v && start < 0:
			start = i
		case !v && start >= 0:
			out = append(out, [2]int{start, i - 1})
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, [2]int{start, len(vis) - 1})
	}
	return out
}

// bridgeGaps marks hidden runs of at most maxGap samples visible when both
// neighbours are visible.
func bridgeGaps(vis []bool, maxGap int) {
	if maxGap <= 0 {
		return
	}
	i := 0
	for i < len(vis) {
		if vis[i] {
			i++
			continue
		}
		j := i
		for j < len(vis) && !vis[j] {
			j++
		}
		if i > 0 && j < len(vis) && j-i <= maxGap {
			for k := i; k < j; k++ {
				vis[k] = true
			}
		}
		i = j
	}
}

// dropShortRuns hides visible runs shorter than minRun samples.
func dropShortRuns(vis []bool, minRun int) {
	if minRun <= 1 {
		return
	}
	for _, r := range runs(vis) {
		if r[1]-r[0]+1 < minRun {
			for k := r[0]; k <= r[1]; k++ {
				vis[k] = false
			}
		}
	}
}

func containsID(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
