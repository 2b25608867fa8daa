package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/isoplot/internal/engine/hatch"
	"github.com/Faultbox/isoplot/internal/engine/model"
	"github.com/Faultbox/isoplot/pkg/math"
)

func newTestFlags(t *testing.T, args ...string) *Flags {
	t.Helper()
	f := NewFlags(flag.NewFlagSet("test", flag.ContinueOnError))
	if err := f.Parse(args); err != nil {
		t.Fatalf("Parse(%v) error = %v", args, err)
	}
	return f
}

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test render defaults
	ctl := cfg.Render.Controls
	if ctl.ShaderPreset != "lines" {
		t.Errorf("expected preset 'lines', got %s", ctl.ShaderPreset)
	}
	if ctl.MaxStrokes != 7000 {
		t.Errorf("expected max strokes 7000, got %d", ctl.MaxStrokes)
	}
	if ctl.Fast || ctl.OcclusionDebug {
		t.Error("expected fast and debug to be off by default")
	}

	// Test view defaults
	if cfg.View.Yaw != 40 {
		t.Errorf("expected yaw 40, got %f", cfg.View.Yaw)
	}
	if cfg.View.Fit != 320 {
		t.Errorf("expected fit 320, got %f", cfg.View.Fit)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
render:
  controls:
    seed: 7
    shader_preset: stipple
    max_strokes: 2500
    tone_gamma: 1.4
  hidden_line:
    depth_bias: 0.05
  cleanup:
    min_length: 0.5

view:
  yaw: 30
  pitch: 10
  fit: 0
  scale: 20

output:
  path: out.json
  preview: depth.png

logging:
  level: "debug"
  log_file: "isoplot.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Load config
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	ctl := cfg.Render.Controls
	if ctl.Seed != 7 {
		t.Errorf("expected seed 7, got %d", ctl.Seed)
	}
	if ctl.ShaderPreset != "stipple" {
		t.Errorf("expected preset stipple, got %s", ctl.ShaderPreset)
	}
	if ctl.MaxStrokes != 2500 {
		t.Errorf("expected max strokes 2500, got %d", ctl.MaxStrokes)
	}
	if ctl.ToneGamma == nil || *ctl.ToneGamma != 1.4 {
		t.Errorf("expected tone gamma 1.4, got %v", ctl.ToneGamma)
	}
	if ctl.ToneContrast != nil {
		t.Errorf("expected no contrast override, got %v", *ctl.ToneContrast)
	}
	// Unset fields keep their defaults
	if ctl.MinSegment != 0.8 {
		t.Errorf("expected min segment 0.8, got %f", ctl.MinSegment)
	}

	if cfg.Render.HiddenLine.DepthBias != 0.05 {
		t.Errorf("expected depth bias 0.05, got %f", cfg.Render.HiddenLine.DepthBias)
	}
	if cfg.Render.Cleanup.MinLength != 0.5 {
		t.Errorf("expected cleanup min length 0.5, got %f", cfg.Render.Cleanup.MinLength)
	}

	if cfg.View.Yaw != 30 || cfg.View.Pitch != 10 || cfg.View.Fit != 0 || cfg.View.Scale != 20 {
		t.Errorf("unexpected view %+v", cfg.View)
	}
	if cfg.Output.Path != "out.json" || cfg.Output.Preview != "depth.png" {
		t.Errorf("unexpected output %+v", cfg.Output)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "isoplot.log" {
		t.Errorf("expected log file 'isoplot.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	// Create temporary config file with invalid YAML
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
render:
  controls:
    max_strokes: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Try to load - should error
	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"empty preset", func(c *Config) { c.Render.Controls.ShaderPreset = "" }, false},
		{"unknown preset", func(c *Config) { c.Render.Controls.ShaderPreset = "charcoal" }, true},
		{"negative budget", func(c *Config) { c.Render.Controls.MaxStrokes = -1 }, true},
		{"negative min segment", func(c *Config) { c.Render.Controls.MinSegment = -0.1 }, true},
		{"no scale", func(c *Config) { c.View.Scale, c.View.Fit = 0, 0 }, true},
		{"short orientation", func(c *Config) { c.View.Orientation = []float64{1, 0, 0} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	cfg := Default()
	cfg.Render.Controls.ShaderPreset = "charcoal"
	if err := cfg.Validate(); !errors.Is(err, hatch.ErrUnknownStyle) {
		t.Errorf("expected ErrUnknownStyle, got %v", err)
	}
}

func TestViewFor(t *testing.T) {
	faces := model.BoxFaces(1, math.Vec3{}, math.Vec3{X: 2, Y: 2, Z: 2})

	v := ViewConfig{Yaw: 30, Pitch: 5, Scale: 10}
	view := v.ViewFor(faces)
	if view.YawDeg != 30 || view.PitchDeg != 5 || view.Scale != 10 {
		t.Errorf("unexpected view %+v", view)
	}
	if view.Orientation != nil {
		t.Error("expected no orientation override")
	}

	v.Fit = 200
	fitted := v.ViewFor(faces)
	if fitted.Scale == 10 {
		t.Error("expected fit to replace the scale")
	}
	if fitted.Pivot != (math.Vec3{X: 1, Y: 1, Z: 1}) {
		t.Errorf("expected pivot at bounds center, got %+v", fitted.Pivot)
	}

	v.Orientation = []float64{1, 0, 0, 0, 1, 0, 0, 0, 1}
	if o := v.ViewFor(faces).Orientation; o == nil || *o != math.Mat3Identity() {
		t.Errorf("expected identity orientation, got %v", o)
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Just verify it returns a non-empty path
	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}

	// Verify path is absolute
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	// Keep the user's real config out of the way
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	// Create temp directory and change to it
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	// No config file exists - should return empty
	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	// Create isoplot.yaml in current directory
	configPath := filepath.Join(tmpDir, "isoplot.yaml")
	if err := os.WriteFile(configPath, []byte("view:\n  yaw: 10\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	// Should find it now
	path = findConfigFile()
	if path == "" {
		t.Error("expected to find isoplot.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		verify func(*testing.T, *Config)
	}{
		{
			name: "no flags",
			args: nil,
			verify: func(t *testing.T, cfg *Config) {
				if cfg.View.Yaw != 40 {
					t.Errorf("expected default yaw 40, got %f", cfg.View.Yaw)
				}
				if cfg.Render.Controls.Seed != 1042 {
					t.Errorf("expected default seed, got %d", cfg.Render.Controls.Seed)
				}
			},
		},
		{
			name: "debug flag",
			args: []string{"-debug"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
				if !cfg.Render.Controls.OcclusionDebug {
					t.Error("expected diagnostics to be enabled with debug flag")
				}
			},
		},
		{
			name: "zero yaw is honored",
			args: []string{"-yaw", "0", "-pitch", "-15"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.View.Yaw != 0 {
					t.Errorf("expected yaw 0, got %f", cfg.View.Yaw)
				}
				if cfg.View.Pitch != -15 {
					t.Errorf("expected pitch -15, got %f", cfg.View.Pitch)
				}
			},
		},
		{
			name: "scale disables fit",
			args: []string{"-scale", "12"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.View.Scale != 12 || cfg.View.Fit != 0 {
					t.Errorf("expected scale 12 and no fit, got %+v", cfg.View)
				}
			},
		},
		{
			name: "render flags",
			args: []string{"-preset", "ascii", "-seed", "0", "-fast", "-shadow"},
			verify: func(t *testing.T, cfg *Config) {
				ctl := cfg.Render.Controls
				if ctl.ShaderPreset != "ascii" {
					t.Errorf("expected preset ascii, got %s", ctl.ShaderPreset)
				}
				if ctl.Seed != 0 {
					t.Errorf("expected seed 0, got %d", ctl.Seed)
				}
				if !ctl.Fast {
					t.Error("expected fast to be enabled")
				}
				if !ctl.GroundShadow {
					t.Error("expected ground shadow to be enabled")
				}
			},
		},
		{
			name: "output flags",
			args: []string{"-o", "scene.json", "-preview", "depth.png"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Output.Path != "scene.json" {
					t.Errorf("expected output scene.json, got %s", cfg.Output.Path)
				}
				if cfg.Output.Preview != "depth.png" {
					t.Errorf("expected preview depth.png, got %s", cfg.Output.Preview)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Apply flags to default config
			cfg := Default()
			applyFlags(cfg, newTestFlags(t, tt.args...))

			// Verify
			tt.verify(t, cfg)
		})
	}
}

func TestFlagsArgs(t *testing.T) {
	f := newTestFlags(t, "-seed", "3", "faces.yaml", "extra")
	args := f.Args()
	if len(args) != 2 || args[0] != "faces.yaml" || args[1] != "extra" {
		t.Errorf("expected [faces.yaml extra], got %v", args)
	}
}

func TestLoadPriority(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
render:
  controls:
    shader_preset: crosshatch
    seed: 99
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Set flag to override config file
	f := newTestFlags(t, "-config", configPath, "-preset", "stipple")

	// Load config
	cfg, err := Load(f)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Preset should be from flag, not file
	if cfg.Render.Controls.ShaderPreset != "stipple" {
		t.Errorf("expected preset stipple from flag, got %s", cfg.Render.Controls.ShaderPreset)
	}

	// Seed should be from file since no flag override
	if cfg.Render.Controls.Seed != 99 {
		t.Errorf("expected seed 99 from file, got %d", cfg.Render.Controls.Seed)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	f := newTestFlags(t, "-preset", "charcoal")
	if _, err := Load(f); !errors.Is(err, hatch.ErrUnknownStyle) {
		t.Errorf("expected ErrUnknownStyle, got %v", err)
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Render.Controls.ShaderPreset = "concentric"
	cfg.Render.Controls.ToneGamma = model.Float(0.8)
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	got := Default()
	if err := loadFromFile(got, path); err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	if got.Render.Controls.ShaderPreset != "concentric" {
		t.Errorf("expected preset concentric, got %s", got.Render.Controls.ShaderPreset)
	}
	if got.Render.Controls.ToneGamma == nil || *got.Render.Controls.ToneGamma != 0.8 {
		t.Errorf("expected tone gamma 0.8, got %v", got.Render.Controls.ToneGamma)
	}
}
