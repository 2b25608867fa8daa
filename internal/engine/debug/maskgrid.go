package debug

import (
	"github.com/Faultbox/isoplot/internal/engine/model"
	"seehuhn.de/go/geom/vec"
)

// MaxMaskCells caps the overlay cells emitted per face.
const MaxMaskCells = 4096

// MaskGrid outlines the visible cells of a face's mask as closed
// parallelograms in screen space. Hidden cells are left out.
func MaskGrid(f *model.Face) []model.Stroke {
	m := f.Mask
	if m == nil || m.Cols == 0 || m.Rows == 0 {
		return nil
	}
	du := m.U.Mul(1 / float64(m.Cols))
	dv := m.V.Mul(1 / float64(m.Rows))

	var out []model.Stroke
	for r := 0; r < m.Rows; r++ {
		for c := 0; c < m.Cols; c++ {
			if !m.Cells[r*m.Cols+c] {
				continue
			}
			if len(out) >= MaxMaskCells {
				return out
			}
			o := m.Origin.Add(du.Mul(float64(c))).Add(dv.Mul(float64(r)))
			out = append(out, model.Stroke{
				Points:  []vec.Vec2{o, o.Add(du), o.Add(du).Add(dv), o.Add(dv)},
				Closed:  true,
				FaceIDs: []int{f.ID},
			})
		}
	}
	return out
}
