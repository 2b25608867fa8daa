package hatch

import (
	"math"

	"github.com/Faultbox/isoplot/internal/engine/model"
)

// Calibration shapes the tone curve of a style.
//
// WhitePoint and BlackPoint are raw darkness values that map to paper and to
// full ink respectively. MinInk is the darkness below which nothing is drawn.
type Calibration struct {
	Gamma      float64 `yaml:"gamma"`
	Contrast   float64 `yaml:"contrast"`
	BlackPoint float64 `yaml:"black_point"`
	WhitePoint float64 `yaml:"white_point"`
	MinInk     float64 `yaml:"min_ink"`
}

// DefaultCalibration is the neutral curve.
func DefaultCalibration() Calibration {
	return Calibration{Gamma: 1, Contrast: 1, BlackPoint: 1, WhitePoint: 0, MinInk: 0.04}
}

// Override replaces the fields set in ctl.
func (c Calibration) Override(ctl model.Controls) Calibration {
	if ctl.ToneGamma != nil && *ctl.ToneGamma > 0 {
		c.Gamma = *ctl.ToneGamma
	}
	if ctl.ToneContrast != nil {
		c.Contrast = math.Max(0, *ctl.ToneContrast)
	}
	if ctl.BlackPoint != nil {
		c.BlackPoint = clamp01(*ctl.BlackPoint)
	}
	if ctl.WhitePoint != nil {
		c.WhitePoint = clamp01(*ctl.WhitePoint)
	}
	if ctl.MinInk != nil {
		c.MinInk = clamp(*ctl.MinInk, 0, 0.95)
	}
	return c
}

// Darkness maps a tone index to calibrated ink darkness in [0, 1]. Tone 0 is
// the darkest class. density scales the overall ink level around 1.
func (c Calibration) Darkness(tone int, density float64) float64 {
	d := 1 - float64(clampInt(tone, 0, model.ToneLevels-1))/float64(model.ToneLevels-1)

	if span := c.BlackPoint - c.WhitePoint; span > 1e-6 {
		d = clamp01((d - c.WhitePoint) / span)
	}
	if c.Gamma > 0 && c.Gamma != 1 {
		d = math.Pow(d, c.Gamma)
	}
	d = clamp01(0.5 + (d-0.5)*c.Contrast)

	if density <= 0 {
		density = 1
	}
	d = clamp01(d - (1-clamp(density, 0, 2))*0.25)

	if c.MinInk > 0 && c.MinInk < 1 {
		d = (d - c.MinInk) / (1 - c.MinInk)
	}
	return clamp01(d)
}

// Darkness returns the calibrated darkness of tone under style s and ctl.
func Darkness(s Style, tone int, ctl model.Controls) float64 {
	return s.Calibration().Override(ctl).Darkness(tone, ctl.ShaderDensity)
}

// spacingTable interpolates a darkness-indexed table with evenly spaced knots.
type spacingTable []float64

func (t spacingTable) at(d float64) float64 {
	if len(t) == 0 {
		return 0
	}
	if len(t) == 1 {
		return t[0]
	}
	x := clamp01(d) * float64(len(t)-1)
	i := int(math.Floor(x))
	if i >= len(t)-1 {
		return t[len(t)-1]
	}
	f := x - float64(i)
	return t[i] + (t[i+1]-t[i])*f
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
