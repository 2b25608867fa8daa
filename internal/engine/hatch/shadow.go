package hatch

import (
	"math"

	"github.com/Faultbox/isoplot/internal/engine/model"
	"seehuhn.de/go/geom/vec"
)

// Ground shadow quad, in screen units relative to the scene bounds. The top
// edge sits just below the lowest face and the far edge slants to the right.
const (
	shadowTopGap    = 4
	shadowDepth     = 92
	shadowLeftNear  = -14
	shadowRightNear = 30
	shadowLeftFar   = 74
	shadowRightFar  = 170

	shadowAngleDeg   = 90
	shadowSpacing    = 5 // before the spacing scale
	shadowMinSpacing = 3
	maxShadowLines   = 400
)

// ShadowPolygon returns the ground quad under faces, or nil when there are
// none.
func ShadowPolygon(faces []*model.Face) []vec.Vec2 {
	if len(faces) == 0 {
		return nil
	}
	b := faces[0].Bounds
	for _, f := range faces[1:] {
		b.Extend(f.Bounds)
	}
	top, bottom := b.URy+shadowTopGap, b.URy+shadowDepth
	return []vec.Vec2{
		{X: b.LLx + shadowLeftNear, Y: top},
		{X: b.URx + shadowRightNear, Y: top},
		{X: b.URx + shadowRightFar, Y: bottom},
		{X: b.LLx + shadowLeftFar, Y: bottom},
	}
}

// GroundShadow hatches the ground quad under faces with vertical lines.
func GroundShadow(faces []*model.Face, ctl model.Controls) []model.Stroke {
	poly := ShadowPolygon(faces)
	if poly == nil {
		return nil
	}
	spacing := math.Max(shadowMinSpacing, shadowSpacing*spacingScale(ctl)*0.95)
	offs, _ := lineOffsets(poly, shadowAngleDeg, spacing, maxShadowLines)
	strokes, _ := layLines(poly, shadowAngleDeg, offs)
	return strokes
}
