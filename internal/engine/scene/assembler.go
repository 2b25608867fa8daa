package scene

import (
	"github.com/Faultbox/isoplot/internal/engine/model"
)

// LayerID names an output stroke layer.
type LayerID int

const (
	LayerOutline LayerID = iota
	LayerInternal
	LayerShader
)

func (l LayerID) String() string {
	switch l {
	case LayerOutline:
		return "outline"
	case LayerInternal:
		return "internal"
	case LayerShader:
		return "shader"
	}
	return "unknown"
}

// Layers holds the accepted strokes of a scene.
type Layers struct {
	Outline  []model.Stroke
	Internal []model.Stroke
	Shader   []model.Stroke
}

// Stats counts what the assembler accepted and rejected.
type Stats struct {
	FaceCount       int `json:"faceCount"`
	TotalStrokes    int `json:"totalStrokes"`
	ClippedStrokes  int `json:"clippedStrokes"` // rejected by the stroke budget
	OutlineStrokes  int `json:"outlineStrokes"`
	InternalStrokes int `json:"internalStrokes"`
	ShaderStrokes   int `json:"shaderStrokes"`
	ShortStrokes    int `json:"shortStrokes"` // rejected as too short
}

// Assembler collects strokes into layers under one global budget.
type Assembler struct {
	maxStrokes int
	minSegment float64
	layers     Layers
	stats      Stats
}

// NewAssembler creates an assembler. maxStrokes <= 0 disables the budget.
func NewAssembler(maxStrokes int, minSegment float64) *Assembler {
	return &Assembler{maxStrokes: maxStrokes, minSegment: minSegment}
}

// Add offers strokes to a layer in order and returns how many were accepted.
// Strokes with fewer than two points or shorter than the minimum segment
// count as short. Once the budget is spent every further stroke counts as
// clipped.
func (a *Assembler) Add(layer LayerID, strokes ...model.Stroke) int {
	accepted := 0
	for _, s := range strokes {
		if len(s.Points) < 2 || s.Length() < a.minSegment {
			a.stats.ShortStrokes++
			continue
		}
		if a.maxStrokes > 0 && a.stats.TotalStrokes >= a.maxStrokes {
			a.stats.ClippedStrokes++
			continue
		}
		switch layer {
		case LayerOutline:
			a.layers.Outline = append(a.layers.Outline, s)
			a.stats.OutlineStrokes++
		case LayerInternal:
			a.layers.Internal = append(a.layers.Internal, s)
			a.stats.InternalStrokes++
		case LayerShader:
			a.layers.Shader = append(a.layers.Shader, s)
			a.stats.ShaderStrokes++
		default:
			continue
		}
		a.stats.TotalStrokes++
		accepted++
	}
	return accepted
}

// Layers returns the accepted strokes.
func (a *Assembler) Layers() Layers {
	return a.layers
}

// Stats returns the running counters.
func (a *Assembler) Stats() Stats {
	return a.stats
}

// Remaining returns the unspent budget, or -1 when there is no budget.
func (a *Assembler) Remaining() int {
	if a.maxStrokes <= 0 {
		return -1
	}
	return max(0, a.maxStrokes-a.stats.TotalStrokes)
}
