// Package formats provides readers and writers for voxel face files.
//
// Two encodings carry the same data: a YAML document for hand-written and
// exported scenes, and a compact little-endian binary form for large meshes.
package formats

import (
	"errors"
	"fmt"
	"os"

	"github.com/Faultbox/isoplot/pkg/math"
)

// Face file errors.
var (
	ErrUnsupportedFaceVersion = errors.New("unsupported face file version")
	ErrMissingFaces           = errors.New("face file has no faces list")
	ErrInvalidFace            = errors.New("invalid face")
	ErrTruncatedFaceData      = errors.New("truncated face data")
)

// FaceVersion is the only face file version.
const FaceVersion = 1

// Face is one planar polygon of a scene. A zero Area is left for the
// renderer to compute from the corners.
type Face struct {
	ID      int
	Normal  math.Vec3
	Corners []math.Vec3
	Area    float64
}

// ParseFaces parses a face file, detecting binary data by its magic.
func ParseFaces(data []byte) ([]Face, error) {
	if isBinaryFaces(data) {
		return parseBinaryFaces(data)
	}
	return parseYAMLFaces(data)
}

// ParseFacesFile parses a face file from disk.
func ParseFacesFile(path string) ([]Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading face file: %w", err)
	}
	return ParseFaces(data)
}

// ValidateFaces checks corner counts, finite values, non-zero normals and
// unique ids.
func ValidateFaces(faces []Face) error {
	seen := make(map[int]bool, len(faces))
	for i, f := range faces {
		if len(f.Corners) < 3 {
			return fmt.Errorf("%w: face %d (index %d) has %d corners", ErrInvalidFace, f.ID, i, len(f.Corners))
		}
		if !f.Normal.IsFinite() || f.Normal.Length() < 1e-12 {
			return fmt.Errorf("%w: face %d has normal %v", ErrInvalidFace, f.ID, f.Normal)
		}
		for j, c := range f.Corners {
			if !c.IsFinite() {
				return fmt.Errorf("%w: face %d corner %d is not finite", ErrInvalidFace, f.ID, j)
			}
		}
		if f.Area < 0 {
			return fmt.Errorf("%w: face %d has negative area", ErrInvalidFace, f.ID)
		}
		if seen[f.ID] {
			return fmt.Errorf("%w: duplicate face id %d", ErrInvalidFace, f.ID)
		}
		seen[f.ID] = true
	}
	return nil
}

// FaceBounds returns the axis-aligned box around all corners.
func FaceBounds(faces []Face) (lo, hi math.Vec3, ok bool) {
	for _, f := range faces {
		for _, c := range f.Corners {
			if !ok {
				lo, hi, ok = c, c, true
				continue
			}
			lo = math.Vec3{X: min(lo.X, c.X), Y: min(lo.Y, c.Y), Z: min(lo.Z, c.Z)}
			hi = math.Vec3{X: max(hi.X, c.X), Y: max(hi.Y, c.Y), Z: max(hi.Z, c.Z)}
		}
	}
	return lo, hi, ok
}
