package hiddenline

import (
	"github.com/Faultbox/isoplot/internal/engine/model"
	"github.com/Faultbox/isoplot/internal/engine/occlusion"
)

// Result holds the visible edge strokes split by layer.
type Result struct {
	Outline  []model.Stroke
	Internal []model.Stroke
	Stats    Stats
}

// Stats counts what extraction did.
type Stats struct {
	Edges       int // boundary edges after splitting
	Silhouette  int
	Internal    int
	Fragments   int // visible pieces emitted
	FullyHidden int // edges with no visible piece
}

// Extract collects the boundary edges of the visible faces and clips each one
// against ctx.
func Extract(faces []*model.Face, ctx *occlusion.Context, opts Options) Result {
	var res Result
	clipper := NewClipper(ctx, opts)

	edges := CollectEdges(faces)
	res.Stats.Edges = len(edges)
	for _, e := range edges {
		if e.Kind == Internal {
			res.Stats.Internal++
		} else {
			res.Stats.Silhouette++
		}

		pieces := clipper.ClipStroke(model.NewSegment(e.A, e.B, e.DepthA, e.DepthB, e.FaceIDs...))
		if len(pieces) == 0 {
			res.Stats.FullyHidden++
			continue
		}
		res.Stats.Fragments += len(pieces)
		if e.Kind == Internal {
			res.Internal = append(res.Internal, pieces...)
		} else {
			res.Outline = append(res.Outline, pieces...)
		}
	}
	return res
}
