package model

// Controls are the user-facing render options.
//
// The tone overrides are pointers: nil keeps the active style's calibration.
type Controls struct {
	Seed               int64   `yaml:"seed"`
	ShaderPreset       string  `yaml:"shader_preset"`
	MaxStrokes         int     `yaml:"max_strokes"`
	MinSegment         float64 `yaml:"min_segment"`
	ShaderDensity      float64 `yaml:"shader_density"`
	ShaderSpacingScale float64 `yaml:"shader_spacing_scale"`
	FaceStrokeBudget   int     `yaml:"face_stroke_budget"`

	ToneGamma    *float64 `yaml:"tone_gamma,omitempty"`
	ToneContrast *float64 `yaml:"tone_contrast,omitempty"`
	BlackPoint   *float64 `yaml:"black_point,omitempty"`
	WhitePoint   *float64 `yaml:"white_point,omitempty"`
	MinInk       *float64 `yaml:"min_ink,omitempty"`

	ShaderCoarse   bool `yaml:"shader_coarse"`
	OcclusionDebug bool `yaml:"occlusion_debug"`
	Fast           bool `yaml:"fast"`
	GroundShadow   bool `yaml:"ground_shadow"` // hatch a ground quad under the scene

	PenWidth    float64 `yaml:"pen_width"`
	MinSpacing  float64 `yaml:"min_spacing"`
	PreviewSize int     `yaml:"preview_size"`
}

// DefaultControls returns the stock render options.
func DefaultControls() Controls {
	return Controls{
		Seed:               1042,
		ShaderPreset:       "lines",
		MaxStrokes:         7000,
		MinSegment:         0.8,
		ShaderDensity:      1,
		ShaderSpacingScale: 1,
		FaceStrokeBudget:   320,
		PenWidth:           0.35,
		MinSpacing:         1.4,
		PreviewSize:        64,
	}
}

// Float returns a pointer to v, for filling the tone overrides.
func Float(v float64) *float64 {
	return &v
}
