package hatch

import (
	"math"
	"math/rand/v2"

	"github.com/Faultbox/isoplot/internal/engine/model"
	"github.com/Faultbox/isoplot/pkg/polygon"
	"seehuhn.de/go/geom/vec"
)

const (
	baseAngleDeg = 24
	minLines     = 2

	// maxCoverage bounds line count * pen width / min dimension.
	maxCoverage = 0.78
)

// defaultLineTable maps darkness 0, 0.25, 0.5, 0.75, 1 to line spacing.
var defaultLineTable = spacingTable{9.5, 7.2, 5.2, 3.6, 2.4}

// pass is an extra crosshatch layer.
type pass struct {
	angle     float64 // degrees added to the first pass angle
	spacing   float64 // spacing multiplier
	threshold float64 // darkness above which the pass is drawn
}

var crossPasses = []pass{
	{angle: 90, spacing: 1.15, threshold: 0.45},
	{angle: 45, spacing: 1.35, threshold: 0.8},
}

type lineStyle struct {
	base
	table spacingTable
	extra []pass
}

func newLineStyle(name string, id StyleID, table spacingTable, weight, share float64, extra []pass) *lineStyle {
	cal := DefaultCalibration()
	cal.Gamma = 1.1
	return &lineStyle{
		base: base{
			id:     id,
			name:   name,
			cal:    cal,
			weight: weight,
			share:  share,
			frame:  FrameFace,
		},
		table: table,
		extra: extra,
	}
}

func (s *lineStyle) Generate(f *model.Face, tone int, _ *rand.Rand, ctl model.Controls) Batch {
	d := s.darkness(tone, ctl)
	pen := penWidth(ctl)
	minDim := polygon.MinWidth(f.Points)
	spacing := math.Max(s.table.at(d)*spacingScale(ctl), minSpacing(ctl))

	stats := &LineStats{Spacing: spacing, MinDim: minDim, PenWidth: pen}
	if d <= 0 {
		return Batch{Lines: stats}
	}

	maxN := int(math.Floor(maxCoverage * minDim / pen))
	angle := lineAngle(f.Type)
	offs, sp := lineOffsets(f.Points, angle, spacing, maxN)
	if len(offs) < minLines {
		alt := angle + 90
		if altOffs, altSp := lineOffsets(f.Points, alt, spacing, maxN); len(altOffs) > len(offs) {
			angle, offs, sp = alt, altOffs, altSp
		}
	}

	strokes, count := layLines(f.Points, angle, offs)
	stats.Spacing, stats.Count, stats.AngleDeg = sp, count, angle

	for _, p := range s.extra {
		if d < p.threshold {
			continue
		}
		a := angle + p.angle
		o, _ := lineOffsets(f.Points, a, spacing*p.spacing, maxN)
		more, _ := layLines(f.Points, a, o)
		strokes = append(strokes, more...)
	}
	return Batch{Strokes: strokes, Lines: stats}
}

func lineAngle(t model.FaceType) float64 {
	if t == model.FaceLeft {
		return baseAngleDeg + 30
	}
	return baseAngleDeg - 30
}

func angleDir(deg float64) (dir, normal vec.Vec2) {
	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	return vec.Vec2{X: cos, Y: sin}, vec.Vec2{X: -sin, Y: cos}
}

// lineOffsets centres as many lines as fit across poly at the given angle.
// When more than maxN would fit the spacing widens to hold maxN lines.
func lineOffsets(poly []vec.Vec2, angle, spacing float64, maxN int) ([]float64, float64) {
	if spacing <= 0 || maxN <= 0 {
		return nil, spacing
	}
	_, normal := angleDir(angle)
	lo, hi := polygon.Extent(poly, normal)
	ext := hi - lo
	n := int(math.Floor(ext / spacing))
	if n > maxN {
		n = maxN
		spacing = ext / float64(n)
	}
	if n <= 0 {
		return nil, spacing
	}
	mid := (lo + hi) / 2
	offs := make([]float64, n)
	for i := range offs {
		offs[i] = mid + (float64(i)-float64(n-1)/2)*spacing
	}
	return offs, spacing
}

// layLines clips one line per offset to poly. It returns the pieces and the
// number of offsets that produced at least one piece.
func layLines(poly []vec.Vec2, angle float64, offs []float64) ([]model.Stroke, int) {
	dir, normal := angleDir(angle)
	var out []model.Stroke
	count := 0
	for _, o := range offs {
		segs := polygon.ClipLine(poly, normal.Mul(o), dir)
		if len(segs) > 0 {
			count++
		}
		for _, sg := range segs {
			out = append(out, model.Stroke{Points: []vec.Vec2{sg.A, sg.B}})
		}
	}
	return out, count
}

func penWidth(ctl model.Controls) float64 {
	if ctl.PenWidth > 0 {
		return ctl.PenWidth
	}
	return 0.35
}

func minSpacing(ctl model.Controls) float64 {
	if ctl.MinSpacing > 0 {
		return ctl.MinSpacing
	}
	return 1.4
}

func spacingScale(ctl model.Controls) float64 {
	if ctl.ShaderSpacingScale > 0 {
		return ctl.ShaderSpacingScale
	}
	return 1
}
