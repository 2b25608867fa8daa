// Package hatch converts the discrete tone of a face into ink strokes.
//
// Each style maps calibrated darkness to a different mark pattern over the
// face's UV frame. The Hatcher runs a style per face, backs empty shaded faces
// with a fallback mark, clips the result against the depth buffer and
// downsamples it to the face's stroke cap.
package hatch

import (
	"math/rand/v2"
	"sort"

	"github.com/Faultbox/isoplot/internal/engine/model"
	"github.com/Faultbox/isoplot/internal/engine/occlusion"
	"github.com/Faultbox/isoplot/pkg/polygon"
	"seehuhn.de/go/geom/vec"
)

// StyleID identifies a hatching algorithm.
type StyleID int

const (
	StyleOff StyleID = iota
	StyleLines
	StyleCrosshatch
	StyleStipple
	StyleOrderedDither
	StyleErrorDiffusion
	StyleAscii
	StyleConcentric
)

func (id StyleID) String() string {
	switch id {
	case StyleOff:
		return "off"
	case StyleLines:
		return "lines"
	case StyleCrosshatch:
		return "crosshatch"
	case StyleStipple:
		return "stipple"
	case StyleOrderedDither:
		return "ordered-dither"
	case StyleErrorDiffusion:
		return "error-diffusion"
	case StyleAscii:
		return "ascii"
	case StyleConcentric:
		return "concentric"
	}
	return "unknown"
}

// salt decorrelates the random streams of different styles.
func (id StyleID) salt() uint64 {
	return uint64(id)*0x9e3779b9 + 7
}

// FrameMode selects how a style lays its UV grid over a face.
type FrameMode int

const (
	// FrameFace follows the face's own edges.
	FrameFace FrameMode = iota
	// FrameBounds follows the screen axes of the face bounding box.
	FrameBounds
)

func frameFor(f *model.Face, mode FrameMode) occlusion.Frame {
	if mode == FrameBounds {
		return occlusion.BoundsFrame(f)
	}
	return occlusion.FaceFrame(f)
}

// LineStats describes the hatch lines a line style laid down.
type LineStats struct {
	Spacing  float64
	Count    int
	MinDim   float64
	PenWidth float64
	AngleDeg float64
}

// Batch is the raw output of a style for one face.
type Batch struct {
	Strokes []model.Stroke
	Cells   int        // grid cells tested
	Lines   *LineStats // set by line based styles
}

// Style generates ink for a face.
type Style interface {
	ID() StyleID
	Name() string
	Calibration() Calibration

	// Supports reports whether the style draws anything on f.
	Supports(f *model.Face) bool

	// Generate returns unclipped strokes in screen space for f at tone.
	Generate(f *model.Face, tone int, rng *rand.Rand, ctl model.Controls) Batch
}

// base carries the fields shared by every style.
type base struct {
	id     StyleID
	name   string
	cal    Calibration
	weight float64 // per-face budget multiplier
	share  float64 // share of the global stroke budget one face may use
	frame  FrameMode
}

func (b *base) ID() StyleID { return b.id }

func (b *base) Name() string { return b.name }

func (b *base) Calibration() Calibration { return b.cal }

func (b *base) Supports(f *model.Face) bool {
	return f != nil && f.Type != model.FaceTop && len(f.Points) >= 3
}

func (b *base) darkness(tone int, ctl model.Controls) float64 {
	return b.cal.Override(ctl).Darkness(tone, ctl.ShaderDensity)
}

// budget returns the weight and global share used for stroke caps.
func (b *base) budget() (weight, share float64) {
	return b.weight, b.share
}

type budgeted interface {
	budget() (weight, share float64)
}

type offStyle struct{ base }

func (s *offStyle) Supports(*model.Face) bool { return false }

func (s *offStyle) Generate(*model.Face, int, *rand.Rand, model.Controls) Batch {
	return Batch{}
}

var registry = map[string]Style{}

func register(s Style) {
	registry[s.Name()] = s
}

func init() {
	register(&offStyle{base{id: StyleOff, name: "off", cal: DefaultCalibration()}})

	register(newLineStyle("lines", StyleLines, defaultLineTable, 1, 0.45, nil))
	register(newLineStyle("line-light", StyleLines, spacingTable{10.2, 6.2}, 0.7, 0.3, nil))
	register(newLineStyle("line-medium", StyleLines, spacingTable{8.2, 4.3}, 0.9, 0.4, nil))
	register(newLineStyle("line-heavy", StyleLines, spacingTable{6.1, 2.7}, 1.1, 0.5, nil))
	register(newLineStyle("crosshatch", StyleCrosshatch, defaultLineTable, 1.3, 0.5, crossPasses))

	register(newStippleStyle())
	register(newOrderedDitherStyle())
	register(newErrorDiffusionStyle())

	register(newAsciiStyle("ascii", 6.5, 0.7, [6]float64{0.16, 0.28, 0.42, 0.58, 0.74, 0.9}, 0.4))
	register(newAsciiStyle("ascii-light", 8.8, 0.62, [6]float64{0.42, 0.56, 0.68, 0.8, 0.9, 0.96}, 0.28))
	register(newAsciiStyle("ascii-medium", 7.2, 0.68, [6]float64{0.24, 0.36, 0.52, 0.68, 0.82, 0.92}, 0.36))
	register(newAsciiStyle("ascii-heavy", 6, 0.74, [6]float64{0.1, 0.2, 0.34, 0.52, 0.7, 0.88}, 0.46))

	register(newConcentricStyle())
}

// Lookup returns the style registered under name.
func Lookup(name string) (Style, bool) {
	s, ok := registry[name]
	return s, ok
}

// Names lists the registered style names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// gridSize returns the cell counts covering a frame with cells of size cell,
// capped per axis.
func gridSize(fr occlusion.Frame, cell float64, maxCells int) (nu, nv int) {
	if cell <= 0 {
		return 0, 0
	}
	nu = clampInt(int(fr.U.Length()/cell+0.5), 1, maxCells)
	nv = clampInt(int(fr.V.Length()/cell+0.5), 1, maxCells)
	return nu, nv
}

// inside reports whether p lies in the face polygon.
func inside(f *model.Face, p vec.Vec2) bool {
	return polygon.Contains(f.Points, p)
}
