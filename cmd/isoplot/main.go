// isoplot renders voxel face scenes as layered pen-plotter strokes.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/isoplot/internal/config"
	"github.com/Faultbox/isoplot/internal/engine/debug"
	"github.com/Faultbox/isoplot/internal/engine/hatch"
	"github.com/Faultbox/isoplot/internal/engine/model"
	"github.com/Faultbox/isoplot/internal/engine/scene"
	"github.com/Faultbox/isoplot/internal/logger"
	"github.com/Faultbox/isoplot/pkg/formats"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "render", "r":
		cmdRender(args)
	case "cube":
		cmdCube(args)
	case "styles":
		cmdStyles()
	case "convert":
		cmdConvert(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`isoplot - voxel scene to pen-plotter strokes

Usage:
  isoplot <command> [options]

Commands:
  render [options] <faces>     Render a face file (YAML or binary) to JSON
  cube [options]               Render a built-in cube or staircase
  styles                       List shader presets
  convert <in> <out>           Convert a face file (.yaml or .bin by extension)

Render options:
  -config path    Config file (default ./isoplot.yaml or user config dir)
  -preset name    Shader preset
  -seed n         Random seed
  -yaw/-pitch deg Camera angles
  -scale s        Fixed scale instead of fitting
  -fast           Coarse render without shading
  -shadow         Hatch a ground shadow under the scene
  -o path         Output JSON (default stdout)
  -preview path   Depth preview PNG (a directory gets a timestamped name)
  -debug          Debug logging and diagnostics

Examples:
  isoplot render -preset crosshatch scene.yaml > scene.json
  isoplot cube -steps 4 -preset ascii -o stairs.json
  isoplot convert scene.yaml scene.bin`)
}

func cmdRender(args []string) {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	flags := config.NewFlags(fs)
	flags.Parse(args)

	rest := flags.Args()
	if len(rest) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: isoplot render [options] <faces>")
		os.Exit(1)
	}

	cfg := setup(flags)
	defer logger.Sync()

	faces, err := formats.ParseFacesFile(rest[0])
	if err != nil {
		fail("reading faces", err)
	}
	logger.Info("faces loaded", zap.String("path", rest[0]), zap.Int("count", len(faces)))

	run(cfg, worldFaces(faces))
}

func cmdCube(args []string) {
	fs := flag.NewFlagSet("cube", flag.ExitOnError)
	flags := config.NewFlags(fs)
	steps := fs.Int("steps", 1, "Staircase steps (1 = single cube)")
	export := fs.String("export", "", "Also write the generated faces to this file")
	flags.Parse(args)

	cfg := setup(flags)
	defer logger.Sync()

	faces := model.StairFaces(max(*steps, 1))
	if *export != "" {
		if err := writeFaces(*export, fileFaces(faces)); err != nil {
			fail("exporting faces", err)
		}
		logger.Info("faces exported", zap.String("path", *export), zap.Int("count", len(faces)))
	}

	run(cfg, faces)
}

func cmdStyles() {
	for _, name := range hatch.Names() {
		s, _ := hatch.Lookup(name)
		cal := s.Calibration()
		fmt.Printf("  %-16s %-16s gamma %.2f  min ink %.2f\n", name, s.ID(), cal.Gamma, cal.MinInk)
	}
}

func cmdConvert(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: isoplot convert <in> <out>")
		os.Exit(1)
	}

	faces, err := formats.ParseFacesFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := writeFaces(args[1], faces); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Converted %d faces: %s -> %s\n", len(faces), args[0], args[1])
}

// setup loads the config and starts logging. It exits on failure.
func setup(flags *config.Flags) *config.Config {
	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	logger.Sugar.Debugf("Config: %+v", cfg)

	// The depth preview comes from the diagnostics.
	if cfg.Output.Preview != "" {
		cfg.Render.Controls.OcclusionDebug = true
	}
	return cfg
}

func run(cfg *config.Config, faces []model.WorldFace) {
	view := cfg.View.ViewFor(faces)
	sc, err := scene.Render(faces, view, cfg.Render)
	if err != nil {
		fail("render failed", err)
	}

	logger.Info("scene rendered",
		zap.String("preset", cfg.Render.Controls.ShaderPreset),
		zap.Int("faces", sc.Stats.FaceCount),
		zap.Int("strokes", sc.Stats.TotalStrokes),
		zap.Int("clipped", sc.Stats.ClippedStrokes),
	)
	if sc.Stats.ClippedStrokes > 0 {
		logger.Warn("stroke budget exhausted",
			zap.Int("max_strokes", cfg.Render.Controls.MaxStrokes),
			zap.Int("clipped", sc.Stats.ClippedStrokes),
		)
	}
	if d := sc.Debug; d != nil {
		logger.Debug("render diagnostics",
			zap.Int("raster_width", d.RasterWidth),
			zap.Int("raster_height", d.RasterHeight),
			zap.Int("raster_covered", d.RasterCovered),
			zap.Int("hidden_faces", d.HiddenFaces),
			zap.Int("junctions", len(d.Junctions)),
		)
		for _, h := range d.Hatch {
			logger.Sugar.Debugf("face %d: tone %d darkness %.2f coverage %.2f cap %d kept %d/%d fallback %v",
				h.FaceID, h.Tone, h.Darkness, h.Coverage, h.Cap, h.Kept, h.PostClip, h.Fallback)
		}
	}

	if err := writePreview(cfg.Output.Preview, sc); err != nil {
		fail("writing preview", err)
	}
	if err := writeScene(cfg.Output, sc); err != nil {
		fail("writing scene", err)
	}
}

func writeScene(out config.OutputConfig, sc *scene.Scene) error {
	var data []byte
	var err error
	if out.Indent {
		data, err = json.MarshalIndent(sc.Document(), "", "  ")
	} else {
		data, err = json.Marshal(sc.Document())
	}
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if out.Path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(out.Path), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(out.Path, data, 0644); err != nil {
		return err
	}
	logger.Info("scene written", zap.String("path", out.Path), zap.Int("bytes", len(data)))
	return nil
}

// writePreview saves the depth preview. A directory path gets a timestamped
// file name.
func writePreview(path string, sc *scene.Scene) error {
	if path == "" || sc.Debug == nil || sc.Debug.Preview == nil {
		return nil
	}
	if info, err := os.Stat(path); (err == nil && info.IsDir()) || strings.HasSuffix(path, string(os.PathSeparator)) {
		saved, err := debug.NewCapture(path, "depth").Save(sc.Debug.Preview)
		if err != nil {
			return err
		}
		logger.Info("preview written", zap.String("path", saved))
		return nil
	}
	if err := debug.SavePNG(path, sc.Debug.Preview); err != nil {
		return err
	}
	logger.Info("preview written", zap.String("path", path))
	return nil
}

func writeFaces(path string, faces []formats.Face) error {
	var data []byte
	var err error
	if strings.EqualFold(filepath.Ext(path), ".bin") {
		data, err = formats.EncodeBinaryFaces(faces)
	} else {
		data, err = formats.MarshalFaces(faces)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func worldFaces(faces []formats.Face) []model.WorldFace {
	out := make([]model.WorldFace, len(faces))
	for i, f := range faces {
		out[i] = model.WorldFace(f)
	}
	return out
}

func fileFaces(faces []model.WorldFace) []formats.Face {
	out := make([]formats.Face, len(faces))
	for i, f := range faces {
		out[i] = formats.Face(f)
	}
	return out
}

func fail(msg string, err error) {
	logger.Error(msg, zap.Error(err))
	logger.Sync()
	os.Exit(1)
}
