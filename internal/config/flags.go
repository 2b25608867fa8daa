package config

import "flag"

// Flags are the command-line overrides of a render run.
type Flags struct {
	fs *flag.FlagSet

	config  *string
	debug   *bool
	yaw     *float64
	pitch   *float64
	scale   *float64
	preset  *string
	seed    *int64
	fast    *bool
	shadow  *bool
	output  *string
	preview *string
}

// NewFlags registers the override flags on fs.
func NewFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		fs:      fs,
		config:  fs.String("config", "", "Path to config file"),
		debug:   fs.Bool("debug", false, "Enable debug logging and render diagnostics"),
		yaw:     fs.Float64("yaw", 0, "Camera yaw in degrees"),
		pitch:   fs.Float64("pitch", 0, "Camera pitch in degrees"),
		scale:   fs.Float64("scale", 0, "Screen units per world unit (disables fitting)"),
		preset:  fs.String("preset", "", "Shader preset"),
		seed:    fs.Int64("seed", 0, "Random seed"),
		fast:    fs.Bool("fast", false, "Coarse render without shading"),
		shadow:  fs.Bool("shadow", false, "Hatch a ground shadow under the scene"),
		output:  fs.String("o", "", "Output file (default stdout)"),
		preview: fs.String("preview", "", "Write a depth preview PNG"),
	}
}

// Parse parses args. Call this early in main().
func (f *Flags) Parse(args []string) error {
	return f.fs.Parse(args)
}

// Args returns the positional arguments left after parsing.
func (f *Flags) Args() []string {
	return f.fs.Args()
}

// ConfigPath returns the explicit config path if provided via -config.
func (f *Flags) ConfigPath() string {
	if f == nil {
		return ""
	}
	return *f.config
}

// isSet reports whether name was given on the command line.
func (f *Flags) isSet(name string) bool {
	set := false
	f.fs.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			set = true
		}
	})
	return set
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config, f *Flags) {
	if f == nil {
		return
	}
	if *f.debug {
		cfg.Logging.Level = "debug"
		cfg.Render.Controls.OcclusionDebug = true
	}
	if f.isSet("yaw") {
		cfg.View.Yaw = *f.yaw
	}
	if f.isSet("pitch") {
		cfg.View.Pitch = *f.pitch
	}
	if *f.scale > 0 {
		cfg.View.Scale = *f.scale
		cfg.View.Fit = 0
	}
	if f.isSet("preset") {
		cfg.Render.Controls.ShaderPreset = *f.preset
	}
	if f.isSet("seed") {
		cfg.Render.Controls.Seed = *f.seed
	}
	if *f.fast {
		cfg.Render.Controls.Fast = true
	}
	if *f.shadow {
		cfg.Render.Controls.GroundShadow = true
	}
	if *f.output != "" {
		cfg.Output.Path = *f.output
	}
	if *f.preview != "" {
		cfg.Output.Preview = *f.preview
	}
}
