// Package config handles render configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/isoplot/internal/engine/camera"
	"github.com/Faultbox/isoplot/internal/engine/hatch"
	"github.com/Faultbox/isoplot/internal/engine/model"
	"github.com/Faultbox/isoplot/internal/engine/scene"
	"github.com/Faultbox/isoplot/pkg/math"
)

// Config holds all settings of a render run.
type Config struct {
	Render  scene.Config  `yaml:"render"`
	View    ViewConfig    `yaml:"view"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// ViewConfig holds the camera settings.
type ViewConfig struct {
	Yaw   float64 `yaml:"yaw"`
	Pitch float64 `yaml:"pitch"`
	Scale float64 `yaml:"scale"`

	// Fit, when positive, overrides Scale and Pivot so the scene bounds span
	// about Fit screen units.
	Fit float64 `yaml:"fit"`

	Pivot [3]float64 `yaml:"pivot"`

	// Orientation is an optional row-major rotation that replaces yaw/pitch.
	Orientation []float64 `yaml:"orientation,omitempty"`
}

// OutputConfig holds where results are written.
type OutputConfig struct {
	Path    string `yaml:"path"`    // scene JSON, stdout when empty
	Preview string `yaml:"preview"` // depth preview PNG, skipped when empty
	Indent  bool   `yaml:"indent"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Render: scene.DefaultConfig(),
		View: ViewConfig{
			Yaw:   40,
			Pitch: 0,
			Scale: 48,
			Fit:   320,
		},
		Output: OutputConfig{
			Indent: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports settings the renderer would reject or misuse.
func (c *Config) Validate() error {
	var errs []error
	ctl := c.Render.Controls
	if ctl.ShaderPreset != "" {
		if _, ok := hatch.Lookup(ctl.ShaderPreset); !ok {
			errs = append(errs, fmt.Errorf("%w: %q", hatch.ErrUnknownStyle, ctl.ShaderPreset))
		}
	}
	if ctl.MaxStrokes < 0 {
		errs = append(errs, fmt.Errorf("max_strokes must not be negative, got %d", ctl.MaxStrokes))
	}
	if ctl.MinSegment < 0 {
		errs = append(errs, fmt.Errorf("min_segment must not be negative, got %v", ctl.MinSegment))
	}
	if c.View.Scale <= 0 && c.View.Fit <= 0 {
		errs = append(errs, errors.New("view needs a positive scale or fit"))
	}
	if n := len(c.View.Orientation); n != 0 && n != 9 {
		errs = append(errs, fmt.Errorf("view orientation needs 9 values, got %d", n))
	}
	return errors.Join(errs...)
}

// ViewFor builds the camera for faces, fitting it to their bounds when Fit
// is set.
func (v ViewConfig) ViewFor(faces []model.WorldFace) camera.View {
	view := camera.View{
		YawDeg:   v.Yaw,
		PitchDeg: v.Pitch,
		Scale:    v.Scale,
		Pivot:    math.Vec3{X: v.Pivot[0], Y: v.Pivot[1], Z: v.Pivot[2]},
	}
	if len(v.Orientation) == 9 {
		var m math.Mat3
		copy(m[:], v.Orientation)
		view.Orientation = &m
	}
	if v.Fit > 0 && len(faces) > 0 {
		lo, hi := camera.WorldBounds(faces)
		view.FitToBounds(lo, hi, v.Fit)
	}
	return view
}
