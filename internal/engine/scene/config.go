package scene

import (
	"github.com/Faultbox/isoplot/internal/engine/cleanup"
	"github.com/Faultbox/isoplot/internal/engine/hiddenline"
	"github.com/Faultbox/isoplot/internal/engine/model"
)

// Config contains the render options.
type Config struct {
	Controls   model.Controls     `yaml:"controls"`
	HiddenLine hiddenline.Options `yaml:"hidden_line"`
	Cleanup    cleanup.Options    `yaml:"cleanup"`
}

// DefaultConfig returns the stock render configuration.
func DefaultConfig() Config {
	return Config{
		Controls:   model.DefaultControls(),
		HiddenLine: hiddenline.DefaultOptions(),
		Cleanup:    cleanup.DefaultOptions(),
	}
}

// coarse reports whether the reduced raster and mask resolution is used.
func (c Config) coarse() bool {
	return c.Controls.ShaderCoarse || c.Controls.Fast
}

// hiddenLineOptions returns the sampling options for this render.
func (c Config) hiddenLineOptions() hiddenline.Options {
	if c.Controls.Fast {
		return c.HiddenLine.Reduced()
	}
	return c.HiddenLine
}
