package formats

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/isoplot/pkg/math"
)

type yamlFaceFile struct {
	Version int        `yaml:"version"`
	Faces   []yamlFace `yaml:"faces"`
}

type yamlFace struct {
	ID      int          `yaml:"id"`
	Normal  [3]float64   `yaml:"normal,flow"`
	Corners [][3]float64 `yaml:"corners,flow"`
	Area    float64      `yaml:"area,omitempty"`
}

// parseYAMLFaces reads the YAML encoding. A missing version is read as the
// current one.
func parseYAMLFaces(data []byte) ([]Face, error) {
	var doc yamlFaceFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding face yaml: %w", err)
	}
	if doc.Version != 0 && doc.Version != FaceVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedFaceVersion, doc.Version)
	}
	if doc.Faces == nil {
		return nil, ErrMissingFaces
	}

	faces := make([]Face, len(doc.Faces))
	for i, yf := range doc.Faces {
		f := Face{
			ID:      yf.ID,
			Normal:  vec3(yf.Normal),
			Corners: make([]math.Vec3, len(yf.Corners)),
			Area:    yf.Area,
		}
		for j, c := range yf.Corners {
			f.Corners[j] = vec3(c)
		}
		faces[i] = f
	}
	if err := ValidateFaces(faces); err != nil {
		return nil, err
	}
	return faces, nil
}

// MarshalFaces encodes faces as a YAML face file.
func MarshalFaces(faces []Face) ([]byte, error) {
	doc := yamlFaceFile{
		Version: FaceVersion,
		Faces:   make([]yamlFace, len(faces)),
	}
	for i, f := range faces {
		yf := yamlFace{
			ID:      f.ID,
			Normal:  array3(f.Normal),
			Corners: make([][3]float64, len(f.Corners)),
			Area:    f.Area,
		}
		for j, c := range f.Corners {
			yf.Corners[j] = array3(c)
		}
		doc.Faces[i] = yf
	}
	return yaml.Marshal(doc)
}

func vec3(a [3]float64) math.Vec3 {
	return math.Vec3{X: a[0], Y: a[1], Z: a[2]}
}

func array3(v math.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}
