package scene

import (
	"github.com/Faultbox/isoplot/internal/engine/model"
)

// Document is the serialisable form of a scene.
type Document struct {
	Faces  []FaceDoc `json:"faces"`
	Layers LayerDocs `json:"layers"`
	Stats  Stats     `json:"stats"`
	Debug  *DebugDoc `json:"debug,omitempty"`
}

// DebugDoc holds the diagnostic overlays of a debug render.
type DebugDoc struct {
	Junctions []StrokeDoc `json:"junctions"`
	Bounds    []StrokeDoc `json:"bounds"`
	Masks     []StrokeDoc `json:"masks"`
	PreMerge  []StrokeDoc `json:"preMerge"`
	Hatch     []HatchInfo `json:"hatch"`
}

// FaceDoc is a visible face in draw order.
type FaceDoc struct {
	ID        int          `json:"id"`
	DrawOrder int          `json:"drawOrder"`
	ToneIndex int          `json:"toneIndex"`
	ShadeKey  string       `json:"shadeKey"`
	FaceType  string       `json:"faceType"`
	Points    [][2]float64 `json:"points"`
}

// LayerDocs holds the three stroke layers.
type LayerDocs struct {
	Outline  []StrokeDoc `json:"outline"`
	Internal []StrokeDoc `json:"internal"`
	Shader   []StrokeDoc `json:"shader"`
}

// StrokeDoc is a polyline.
type StrokeDoc struct {
	Points [][2]float64 `json:"points"`
	Closed bool         `json:"closed"`
}

// Document converts s for serialisation. Empty layers encode as empty
// arrays.
func (s *Scene) Document() Document {
	doc := Document{
		Faces: make([]FaceDoc, 0, len(s.Faces)),
		Layers: LayerDocs{
			Outline:  strokeDocs(s.Layers.Outline),
			Internal: strokeDocs(s.Layers.Internal),
			Shader:   strokeDocs(s.Layers.Shader),
		},
		Stats: s.Stats,
	}
	if d := s.Debug; d != nil {
		doc.Debug = &DebugDoc{
			Junctions: strokeDocs(d.Junctions),
			Bounds:    strokeDocs(d.Bounds),
			Masks:     strokeDocs(d.Masks),
			PreMerge:  strokeDocs(d.PreMerge),
			Hatch:     d.Hatch,
		}
	}
	for _, f := range s.Faces {
		pts := make([][2]float64, len(f.Points))
		for i, p := range f.Points {
			pts[i] = [2]float64{p.X, p.Y}
		}
		doc.Faces = append(doc.Faces, FaceDoc{
			ID:        f.ID,
			DrawOrder: f.DrawOrder,
			ToneIndex: f.ToneIndex,
			ShadeKey:  string(f.ShadeKey),
			FaceType:  f.Type.String(),
			Points:    pts,
		})
	}
	return doc
}

func strokeDocs(strokes []model.Stroke) []StrokeDoc {
	out := make([]StrokeDoc, len(strokes))
	for i, s := range strokes {
		pts := make([][2]float64, len(s.Points))
		for j, p := range s.Points {
			pts[j] = [2]float64{p.X, p.Y}
		}
		out[i] = StrokeDoc{Points: pts, Closed: s.Closed}
	}
	return out
}
