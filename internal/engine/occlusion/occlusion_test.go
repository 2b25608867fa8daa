package occlusion

import (
	"math"
	"testing"

	"github.com/Faultbox/isoplot/internal/engine/camera"
	"github.com/Faultbox/isoplot/internal/engine/model"
	pmath "github.com/Faultbox/isoplot/pkg/math"
	"github.com/Faultbox/isoplot/pkg/polygon"
	"seehuhn.de/go/geom/vec"
)

func flatFace(id int, x, y, size, depth float64) *model.Face {
	pts := []vec.Vec2{{X: x, Y: y}, {X: x + size, Y: y}, {X: x + size, Y: y + size}, {X: x, Y: y + size}}
	p3 := make([]model.ScreenPoint, len(pts))
	wc := make([]pmath.Vec3, len(pts))
	for i, p := range pts {
		p3[i] = model.ScreenPoint{X: p.X, Y: p.Y, Depth: depth}
		wc[i] = pmath.Vec3{X: p.X, Y: p.Y}
	}
	return &model.Face{
		ID:           id,
		Points:       pts,
		Points3:      p3,
		WorldCorners: wc,
		Area:         size * size,
		Bounds:       polygon.Bounds(pts),
		Depth:        depth,
		MinDepth:     depth,
		MaxDepth:     depth,
		Plane:        model.SolvePlane(p3),
	}
}

func TestBuildEmpty(t *testing.T) {
	if ctx := Build(nil, FullOptions()); ctx != nil {
		t.Error("expected nil context for empty face set")
	}
}

func TestBuildMinimumGrid(t *testing.T) {
	ctx := Build([]*model.Face{flatFace(1, 0, 0, 1, 0)}, FullOptions())
	if ctx.Width < minGrid || ctx.Height < minGrid {
		t.Errorf("grid %dx%d smaller than minimum %d", ctx.Width, ctx.Height, minGrid)
	}
}

func TestScaleClamped(t *testing.T) {
	tests := []struct {
		name string
		size float64
		opts Options
		want float64
	}{
		{"small scene uses max scale", 10, FullOptions(), 3.2},
		{"huge scene uses min scale", 100000, FullOptions(), 0.45},
		{"coarse max scale", 10, CoarseOptions(), 2},
		{"fit to max dim", 1000, FullOptions(), 1.7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := Build([]*model.Face{flatFace(1, 0, 0, tt.size, 0)}, tt.opts)
			if math.Abs(ctx.Scale-tt.want) > 1e-9 {
				t.Errorf("scale = %v, want %v", ctx.Scale, tt.want)
			}
		})
	}
}

func TestNearestWins(t *testing.T) {
	back := flatFace(1, 0, 0, 20, 1)
	front := flatFace(2, 5, 5, 10, 4)
	for _, order := range [][]*model.Face{{back, front}, {front, back}} {
		ctx := Build(order, FullOptions())
		d, owner := ctx.Sample(vec.Vec2{X: 10, Y: 10})
		if owner != 2 || math.Abs(d-4) > 1e-6 {
			t.Errorf("center sample = (%v, %d), want (4, 2)", d, owner)
		}
		d, owner = ctx.Sample(vec.Vec2{X: 2, Y: 2})
		if owner != 1 || math.Abs(d-1) > 1e-6 {
			t.Errorf("corner sample = (%v, %d), want (1, 1)", d, owner)
		}
	}
}

func TestSampleOutside(t *testing.T) {
	ctx := Build([]*model.Face{flatFace(1, 0, 0, 10, 1)}, FullOptions())
	d, owner := ctx.Sample(vec.Vec2{X: -500, Y: 0})
	if owner != -1 || !math.IsInf(d, -1) {
		t.Errorf("outside sample = (%v, %d), want (-Inf, -1)", d, owner)
	}
}

func TestMaskPartialOcclusion(t *testing.T) {
	back := flatFace(1, 0, 0, 20, 1)
	front := flatFace(2, 0, 0, 10, 4)
	ctx := Build([]*model.Face{back, front}, FullOptions())

	m := BuildMask(back, ctx, FullMaskOptions())
	if m.Visible == 0 || m.Visible == m.Tested {
		t.Fatalf("expected partial visibility, got %d of %d", m.Visible, m.Tested)
	}
	if math.Abs(m.Coverage-0.75) > 0.05 {
		t.Errorf("coverage = %v, want ~0.75", m.Coverage)
	}
	if !m.VisibleAt(vec.Vec2{X: 15, Y: 15}) {
		t.Error("uncovered quadrant should be visible")
	}
	if m.VisibleAt(vec.Vec2{X: 5, Y: 5}) {
		t.Error("covered quadrant should be hidden")
	}

	fm := BuildMask(front, ctx, FullMaskOptions())
	if fm.Visible != fm.Tested {
		t.Errorf("front face should be fully visible, got %d of %d", fm.Visible, fm.Tested)
	}
}

func TestMaskFullyHidden(t *testing.T) {
	back := flatFace(1, 2, 2, 4, 1)
	front := flatFace(2, 0, 0, 10, 4)
	ctx := Build([]*model.Face{back, front}, FullOptions())
	if m := BuildMask(back, ctx, FullMaskOptions()); m.Visible != 0 {
		t.Errorf("expected no visible cells, got %d", m.Visible)
	}
}

func polyFace(id int, depth float64, pts ...vec.Vec2) *model.Face {
	p3 := make([]model.ScreenPoint, len(pts))
	wc := make([]pmath.Vec3, len(pts))
	for i, p := range pts {
		p3[i] = model.ScreenPoint{X: p.X, Y: p.Y, Depth: depth}
		wc[i] = pmath.Vec3{X: p.X, Y: p.Y}
	}
	return &model.Face{
		ID:           id,
		Points:       pts,
		Points3:      p3,
		WorldCorners: wc,
		Area:         math.Abs(polygon.SignedArea(pts)),
		Bounds:       polygon.Bounds(pts),
		Depth:        depth,
		MinDepth:     depth,
		MaxDepth:     depth,
		Plane:        model.SolvePlane(p3),
	}
}

func TestMaskTriangleHidden(t *testing.T) {
	back := polyFace(1, 1, vec.Vec2{}, vec.Vec2{X: 10}, vec.Vec2{Y: 10})
	front := polyFace(2, 5, vec.Vec2{X: -5, Y: -5}, vec.Vec2{X: 30, Y: -5}, vec.Vec2{X: -5, Y: 30})
	ctx := Build([]*model.Face{back, front}, FullOptions())

	m := BuildMask(back, ctx, FullMaskOptions())
	if m.Tested == 0 {
		t.Fatal("expected tested cells inside the triangle")
	}
	if m.Visible != 0 {
		t.Errorf("expected no visible cells, got %d of %d", m.Visible, m.Tested)
	}
}

func TestMaskTriangleTestsInsideOnly(t *testing.T) {
	tri := polyFace(1, 1, vec.Vec2{}, vec.Vec2{X: 10}, vec.Vec2{Y: 10})
	ctx := Build([]*model.Face{tri}, FullOptions())

	m := BuildMask(tri, ctx, FullMaskOptions())
	total := m.Cols * m.Rows
	if m.Tested >= total*3/5 || m.Tested <= total*2/5 {
		t.Errorf("expected about half of %d cells tested, got %d", total, m.Tested)
	}
	if m.Coverage < 0.9 {
		t.Errorf("lone triangle coverage %v, want nearly full", m.Coverage)
	}
}

func TestFaceFrameFallback(t *testing.T) {
	hex := polyFace(1, 1,
		vec.Vec2{X: 0, Y: 5}, vec.Vec2{X: 3, Y: 0}, vec.Vec2{X: 9, Y: 0},
		vec.Vec2{X: 12, Y: 5}, vec.Vec2{X: 9, Y: 10}, vec.Vec2{X: 3, Y: 10})
	if fr := FaceFrame(hex); fr.Fitted {
		t.Errorf("expected bounds frame for a hexagon, got %+v", fr)
	}
	quad := flatFace(2, 0, 0, 4, 1)
	if fr := FaceFrame(quad); !fr.Fitted {
		t.Error("expected fitted frame for a square")
	}

	ctx := Build([]*model.Face{hex}, FullOptions())
	m := BuildMask(hex, ctx, FullMaskOptions())
	if m.Tested == 0 || m.Tested == m.Cols*m.Rows {
		t.Errorf("expected corner cells skipped, tested %d of %d", m.Tested, m.Cols*m.Rows)
	}
}

func TestMaskCellBounds(t *testing.T) {
	f := flatFace(1, 0, 0, 1000, 1)
	ctx := Build([]*model.Face{f}, FullOptions())
	m := BuildMask(f, ctx, FullMaskOptions())
	if m.Cols != 160 || m.Rows != 160 {
		t.Errorf("mask %dx%d, want 160x160", m.Cols, m.Rows)
	}
	small := flatFace(2, 0, 0, 0.5, 1)
	m = BuildMask(small, Build([]*model.Face{small}, FullOptions()), CoarseMaskOptions())
	if m.Cols != minMaskCells || m.Rows != minMaskCells {
		t.Errorf("mask %dx%d, want %dx%d", m.Cols, m.Rows, minMaskCells, minMaskCells)
	}
}

func TestCubeMasksVisible(t *testing.T) {
	view := camera.View{YawDeg: 40, Scale: 48, Pivot: pmath.Vec3{X: 0.5, Y: 0.5, Z: 0.5}}
	faces := camera.ProjectFaces(model.BoxFaces(1, pmath.Vec3{}, pmath.Vec3{X: 1, Y: 1, Z: 1}), view)
	ctx := Build(faces, FullOptions())
	for _, f := range faces {
		m := BuildMask(f, ctx, FullMaskOptions())
		if m.Coverage < 0.9 {
			t.Errorf("face %s coverage %v, want nearly full", f.ShadeKey, m.Coverage)
		}
	}
}

func TestDepthTolerance(t *testing.T) {
	for _, s := range []float64{0.2, 0.45, 1, 3.2, 10} {
		eps := (&Context{Scale: s}).DepthTolerance()
		if eps < 0.012 || eps > 0.05 {
			t.Errorf("DepthTolerance(scale=%v) = %v out of range", s, eps)
		}
	}
}

func TestPreview(t *testing.T) {
	back := flatFace(1, 0, 0, 200, 1)
	front := flatFace(2, 50, 50, 50, 4)
	ctx := Build([]*model.Face{back, front}, FullOptions())
	img := Preview(ctx, 64)
	b := img.Bounds()
	if b.Dx() > 64 || b.Dy() > 64 {
		t.Errorf("preview %dx%d exceeds 64", b.Dx(), b.Dy())
	}
	if Preview(nil, 64) != nil {
		t.Error("expected nil preview for nil context")
	}
}

func TestFit(t *testing.T) {
	tests := []struct{ w, h, size, ww, wh int }{
		{10, 10, 64, 10, 10},
		{200, 100, 64, 64, 32},
		{100, 200, 64, 32, 64},
	}
	for _, tt := range tests {
		w, h := fit(tt.w, tt.h, tt.size)
		if w != tt.ww || h != tt.wh {
			t.Errorf("fit(%d, %d, %d) = %d, %d, want %d, %d", tt.w, tt.h, tt.size, w, h, tt.ww, tt.wh)
		}
	}
}
