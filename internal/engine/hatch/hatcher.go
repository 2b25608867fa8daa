package hatch

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/Faultbox/isoplot/internal/engine/hiddenline"
	"github.com/Faultbox/isoplot/internal/engine/model"
	"github.com/Faultbox/isoplot/internal/engine/occlusion"
	"github.com/Faultbox/isoplot/pkg/polygon"
	"seehuhn.de/go/geom/vec"
)

// ErrUnknownStyle is returned for a preset name that is not registered.
var ErrUnknownStyle = errors.New("unknown shader style")

const (
	defaultFaceBudget = 320
	minFaceCap        = 4
	minGlobalCap      = 48
	areaReference     = 48 // screen size of a face that gets the full budget
)

// Result is the ink laid on one face.
type Result struct {
	FaceID   int
	Tone     int
	Darkness float64
	Cap      int
	Cells    int
	PreClip  int
	PostClip int
	Fallback bool
	Lines    *LineStats
	Strokes  []model.Stroke
}

// Hatcher applies one style to faces.
type Hatcher struct {
	style Style
	ctl   model.Controls
	clip  *hiddenline.Clipper
}

// New resolves ctl.ShaderPreset. An empty preset selects "off". A nil clipper
// leaves the output unclipped.
func New(ctl model.Controls, clip *hiddenline.Clipper) (*Hatcher, error) {
	name := ctl.ShaderPreset
	if name == "" {
		name = StyleOff.String()
	}
	s, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStyle, name)
	}
	return &Hatcher{style: s, ctl: ctl, clip: clip}, nil
}

// WithClipper returns a copy of h that clips its output with c.
func (h *Hatcher) WithClipper(c *hiddenline.Clipper) *Hatcher {
	out := *h
	out.clip = c
	return &out
}

// Style returns the active style.
func (h *Hatcher) Style() Style {
	return h.style
}

// Face generates, clips and budgets the ink for f.
func (h *Hatcher) Face(f *model.Face) Result {
	if f == nil || !h.style.Supports(f) {
		res := Result{}
		if f != nil {
			res.FaceID = f.ID
		}
		return res
	}
	tone := clampInt(f.ToneIndex, 0, model.ToneLevels-1)
	d := Darkness(h.style, tone, h.ctl)
	res := Result{
		FaceID:   f.ID,
		Tone:     tone,
		Darkness: d,
		Cap:      h.strokeCap(f, d),
	}

	b := h.style.Generate(f, tone, newRand(h.ctl.Seed, f.ID, tone, h.style.ID()), h.ctl)
	res.Cells, res.Lines = b.Cells, b.Lines

	strokes := b.Strokes
	if len(strokes) == 0 && tone < model.ToneLevels-1 {
		strokes = fallbackMark(f)
		res.Fallback = true
	}
	res.PreClip = len(strokes)

	var out []model.Stroke
	for _, s := range strokes {
		s = attach(f, s)
		if h.clip == nil {
			out = append(out, s)
			continue
		}
		out = append(out, h.clip.ClipStroke(s)...)
	}
	res.PostClip = len(out)
	res.Strokes = downsample(out, res.Cap)
	return res
}

// strokeCap scales the per-face budget by style weight, darkness and face
// size, bounded by the style's share of the global budget.
func (h *Hatcher) strokeCap(f *model.Face, d float64) int {
	budget := h.ctl.FaceStrokeBudget
	if budget <= 0 {
		budget = defaultFaceBudget
	}
	weight, share := 1.0, 0.4
	if b, ok := h.style.(budgeted); ok {
		weight, share = b.budget()
	}
	area := clamp(math.Sqrt(f.ScreenArea())/areaReference, 0.2, 3)
	c := int(math.Round(float64(budget) * weight * (0.35 + 0.65*d) * area))
	global := max(minGlobalCap, int(math.Round(float64(h.ctl.MaxStrokes)*share)))
	return clampInt(c, minFaceCap, global)
}

// newRand seeds a stream from the render seed, face, tone and style.
func newRand(seed int64, faceID, tone int, id StyleID) *rand.Rand {
	stream := uint64(faceID)*193 + uint64(tone)*17 + id.salt()
	return rand.New(rand.NewPCG(uint64(seed), stream))
}

// fallbackMark is a short dash along the face's first edge through its
// centroid. A hidden centroid moves to the middle of the visible mask cells.
func fallbackMark(f *model.Face) []model.Stroke {
	c := polygon.Centroid(f.Points)
	if m := f.Mask; m != nil && m.Visible > 0 && !m.VisibleAt(c) {
		c = m.Origin.Add(m.U.Mul((m.MinU + m.MaxU) / 2)).Add(m.V.Mul((m.MinV + m.MaxV) / 2))
	}
	dir := occlusion.FaceFrame(f).U.Normalize()
	if dir == (vec.Vec2{}) {
		dir = vec.Vec2{X: 1}
	}
	half := clamp(polygon.MinWidth(f.Points)*0.3, 0.5, 2)
	a, b := c.Sub(dir.Mul(half)), c.Add(dir.Mul(half))

	pieces := polygon.ClipSegment(f.Points, a, b)
	if len(pieces) == 0 {
		return []model.Stroke{{Points: []vec.Vec2{a, b}}}
	}
	best := pieces[0]
	for _, p := range pieces[1:] {
		if p.Length() > best.Length() {
			best = p
		}
	}
	return []model.Stroke{{Points: []vec.Vec2{best.A, best.B}}}
}

// attach fills in depths from the face plane and tags the stroke with f.
func attach(f *model.Face, s model.Stroke) model.Stroke {
	s.Depths = make([]float64, len(s.Points))
	for i, p := range s.Points {
		s.Depths[i] = f.DepthAt(p)
	}
	s.FaceIDs = []int{f.ID}
	s.UpdateDepthRange()
	return s
}

// downsample keeps an even stride of strokes so that at most n remain.
func downsample(strokes []model.Stroke, n int) []model.Stroke {
	if n <= 0 || len(strokes) <= n {
		return strokes
	}
	out := make([]model.Stroke, n)
	for i := range out {
		out[i] = strokes[i*len(strokes)/n]
	}
	return out
}
