// Package scene runs the plotter pipeline: it projects and orders faces,
// rasterises the shared depth buffer, extracts and cleans the visible edges,
// hatches the faces and assembles everything under one stroke budget.
package scene

import (
	"errors"
	"fmt"
	"image"

	"go.uber.org/zap"
	"seehuhn.de/go/geom/vec"

	"github.com/Faultbox/isoplot/internal/engine/camera"
	"github.com/Faultbox/isoplot/internal/engine/cleanup"
	"github.com/Faultbox/isoplot/internal/engine/debug"
	"github.com/Faultbox/isoplot/internal/engine/hatch"
	"github.com/Faultbox/isoplot/internal/engine/hiddenline"
	"github.com/Faultbox/isoplot/internal/engine/model"
	"github.com/Faultbox/isoplot/internal/engine/occlusion"
	"github.com/Faultbox/isoplot/internal/engine/visibility"
	"github.com/Faultbox/isoplot/internal/logger"
)

// ErrInvalidFace is returned for input faces the pipeline cannot accept.
var ErrInvalidFace = errors.New("invalid face")

// Scene is the result of one render.
type Scene struct {
	Faces  []*model.Face // visible faces in draw order
	Layers Layers
	Stats  Stats
	Debug  *Debug // set when Controls.OcclusionDebug is on
}

// Debug carries diagnostics of a render.
type Debug struct {
	RasterWidth   int
	RasterHeight  int
	RasterScale   float64
	RasterCovered int
	Preview       *image.Gray

	Projected   int // front-facing faces
	HiddenFaces int // faces dropped with no visible mask cell

	HiddenLine      hiddenline.Stats
	OutlineCleanup  cleanup.Stats
	InternalCleanup cleanup.Stats
	Hatch           []HatchInfo

	// Overlay layers.
	Junctions []model.Stroke
	Bounds    []model.Stroke
	Masks     []model.Stroke
	PreMerge  []model.Stroke
}

// HatchInfo summarises the hatching of one face.
type HatchInfo struct {
	FaceID   int     `json:"faceId"`
	Tone     int     `json:"tone"`
	Darkness float64 `json:"darkness"`
	Cap      int     `json:"cap"`
	PreClip  int     `json:"preClip"`
	PostClip int     `json:"postClip"`
	Coverage float64 `json:"coverage"` // visible share of the face mask
	Kept     int     `json:"kept"`
	Fallback bool    `json:"fallback"`
}

// Validate checks that every face has three or more finite corners, a finite
// normal and a unique id.
func Validate(faces []model.WorldFace) error {
	seen := make(map[int]bool, len(faces))
	for i, f := range faces {
		if len(f.Corners) < 3 {
			return fmt.Errorf("%w: face %d (index %d) has %d corners", ErrInvalidFace, f.ID, i, len(f.Corners))
		}
		if !f.Normal.IsFinite() {
			return fmt.Errorf("%w: face %d has a non-finite normal", ErrInvalidFace, f.ID)
		}
		for _, c := range f.Corners {
			if !c.IsFinite() {
				return fmt.Errorf("%w: face %d has a non-finite corner", ErrInvalidFace, f.ID)
			}
		}
		if seen[f.ID] {
			return fmt.Errorf("%w: duplicate face id %d", ErrInvalidFace, f.ID)
		}
		seen[f.ID] = true
	}
	return nil
}

// Render turns world faces into a layered stroke scene. The input is not
// modified. Identical inputs give identical scenes.
func Render(faces []model.WorldFace, view camera.View, cfg Config) (*Scene, error) {
	if err := Validate(faces); err != nil {
		return nil, err
	}
	ctl := cfg.Controls
	hatcher, err := hatch.New(ctl, nil)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	rasterOpts, maskOpts := occlusion.FullOptions(), occlusion.FullMaskOptions()
	if cfg.coarse() {
		rasterOpts, maskOpts = occlusion.CoarseOptions(), occlusion.CoarseMaskOptions()
	}
	hlOpts := cfg.hiddenLineOptions()

	log := logger.Named("scene")
	done := logger.Timed(log, "faces ordered")
	projected := camera.ProjectFaces(faces, view)
	ordered := visibility.Order(projected)
	ctx := occlusion.Build(ordered, rasterOpts)

	visible := make([]*model.Face, 0, len(ordered))
	for _, f := range ordered {
		f.Mask = occlusion.BuildMask(f, ctx, maskOpts)
		if f.Mask.Visible == 0 {
			continue
		}
		visible = append(visible, f)
	}
	visible = visibility.Order(visible)
	visibility.AssignDrawOrder(visible)

	done(
		zap.Int("input", len(faces)),
		zap.Int("projected", len(projected)),
		zap.Int("visible", len(visible)),
		zap.Bool("coarse", cfg.coarse()),
	)

	done = logger.Timed(log, "edges extracted")
	edges := hiddenline.Extract(visible, ctx, hlOpts)
	outline := cleanup.Run(edges.Outline, cfg.Cleanup)
	internal := cleanup.Run(edges.Internal, cfg.Cleanup)

	done(
		zap.Int("edges", edges.Stats.Edges),
		zap.Int("silhouette", edges.Stats.Silhouette),
		zap.Int("internal", edges.Stats.Internal),
		zap.Int("fragments", edges.Stats.Fragments),
		zap.Int("outline_after_cleanup", outline.Stats.After),
		zap.Int("internal_after_cleanup", internal.Stats.After),
	)

	asm := NewAssembler(ctl.MaxStrokes, ctl.MinSegment)
	asm.Add(LayerOutline, outline.Strokes...)
	asm.Add(LayerInternal, internal.Strokes...)

	done = logger.Timed(log, "scene assembled")
	var hatchInfo []HatchInfo
	if !ctl.Fast {
		hatcher = hatcher.WithClipper(hiddenline.NewClipper(ctx, hlOpts))
		for _, f := range visible {
			res := hatcher.Face(f)
			kept := asm.Add(LayerShader, res.Strokes...)
			if ctl.OcclusionDebug && hatcher.Style().Supports(f) {
				hatchInfo = append(hatchInfo, HatchInfo{
					FaceID:   res.FaceID,
					Tone:     res.Tone,
					Darkness: res.Darkness,
					Cap:      res.Cap,
					PreClip:  res.PreClip,
					PostClip: res.PostClip,
					Coverage: f.Mask.Coverage,
					Kept:     kept,
					Fallback: res.Fallback,
				})
			}
		}
		if ctl.GroundShadow {
			shadow := hatch.GroundShadow(visible, ctl)
			kept := asm.Add(LayerShader, shadow...)
			log.Debug("ground shadow", zap.Int("strokes", len(shadow)), zap.Int("kept", kept))
		}
	}

	sc := &Scene{
		Faces:  visible,
		Layers: asm.Layers(),
		Stats:  asm.Stats(),
	}
	sc.Stats.FaceCount = len(visible)

	if ctl.OcclusionDebug {
		sc.Debug = buildDebug(ctx, ctl, projected, visible, edges, outline, internal)
		sc.Debug.Hatch = hatchInfo
	}

	done(
		zap.String("style", hatcher.Style().Name()),
		zap.Int("faces", sc.Stats.FaceCount),
		zap.Int("total", sc.Stats.TotalStrokes),
		zap.Int("outline", sc.Stats.OutlineStrokes),
		zap.Int("internal", sc.Stats.InternalStrokes),
		zap.Int("shader", sc.Stats.ShaderStrokes),
		zap.Int("clipped", sc.Stats.ClippedStrokes),
		zap.Int("short", sc.Stats.ShortStrokes),
		zap.Int("remaining", asm.Remaining()),
	)
	return sc, nil
}

func buildDebug(ctx *occlusion.Context, ctl model.Controls, projected, visible []*model.Face,
	edges hiddenline.Result, outline, internal cleanup.Result) *Debug {
	d := &Debug{
		Projected:       len(projected),
		HiddenFaces:     len(projected) - len(visible),
		HiddenLine:      edges.Stats,
		OutlineCleanup:  outline.Stats,
		InternalCleanup: internal.Stats,
		Bounds:          debug.BoundsWireframe(visible, debug.DefaultBoundsPadding),
	}
	if ctx != nil {
		d.RasterWidth, d.RasterHeight = ctx.Width, ctx.Height
		d.RasterScale = ctx.Scale
		d.RasterCovered = ctx.Covered()
		d.Preview = occlusion.Preview(ctx, ctl.PreviewSize)
	}

	var joints []vec.Vec2
	joints = append(joints, outline.Junctions...)
	joints = append(joints, internal.Junctions...)
	d.Junctions = debug.JunctionMarkers(joints, debug.DefaultMarkerSize)

	for _, f := range visible {
		d.Masks = append(d.Masks, debug.MaskGrid(f)...)
	}
	d.PreMerge = append(d.PreMerge, edges.Outline...)
	d.PreMerge = append(d.PreMerge, edges.Internal...)
	return d
}
