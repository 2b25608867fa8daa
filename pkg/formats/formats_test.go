package formats

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/isoplot/pkg/math"
)

const squareYAML = `
version: 1
faces:
  - id: 3
    normal: [0, 0, 1]
    corners: [[0, 0, 1], [1, 0, 1], [1, 1, 1], [0, 1, 1]]
    area: 1
  - id: 4
    normal: [1, 0, 0]
    corners: [[1, 0, 0], [1, 1, 0], [1, 1, 1], [1, 0, 1]]
`

func testFaces() []Face {
	return []Face{
		{
			ID:     1,
			Normal: math.Vec3{Z: 1},
			Corners: []math.Vec3{
				{X: 0, Y: 0, Z: 2}, {X: 1.5, Y: 0, Z: 2}, {X: 1.5, Y: 0.25, Z: 2},
			},
			Area: 0.1875,
		},
		{
			ID:     -7,
			Normal: math.Vec3{X: -1},
			Corners: []math.Vec3{
				{X: 0, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 1}, {X: 0, Y: 0, Z: 1},
			},
		},
	}
}

func TestParseFaces_YAML(t *testing.T) {
	faces, err := ParseFaces([]byte(squareYAML))
	if err != nil {
		t.Fatalf("ParseFaces failed: %v", err)
	}

	if len(faces) != 2 {
		t.Fatalf("expected 2 faces, got %d", len(faces))
	}
	if faces[0].ID != 3 || faces[1].ID != 4 {
		t.Errorf("expected ids 3 and 4, got %d and %d", faces[0].ID, faces[1].ID)
	}
	if faces[0].Normal != (math.Vec3{Z: 1}) {
		t.Errorf("expected normal +z, got %v", faces[0].Normal)
	}
	if len(faces[1].Corners) != 4 {
		t.Errorf("expected 4 corners, got %d", len(faces[1].Corners))
	}
	if got := faces[1].Corners[2]; got != (math.Vec3{X: 1, Y: 1, Z: 1}) {
		t.Errorf("expected corner (1,1,1), got %v", got)
	}
	if faces[0].Area != 1 || faces[1].Area != 0 {
		t.Errorf("expected areas 1 and 0, got %v and %v", faces[0].Area, faces[1].Area)
	}
}

func TestParseFaces_YAMLVersionOptional(t *testing.T) {
	data := []byte("faces:\n  - id: 1\n    normal: [0, 1, 0]\n    corners: [[0, 0, 0], [1, 0, 0], [1, 0, 1]]\n")
	if _, err := ParseFaces(data); err != nil {
		t.Errorf("expected file without version to parse, got %v", err)
	}
}

func TestParseFaces_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"future version", "version: 2\nfaces: []\n", ErrUnsupportedFaceVersion},
		{"no faces key", "version: 1\n", ErrMissingFaces},
		{"two corners", "faces:\n  - id: 1\n    normal: [0, 0, 1]\n    corners: [[0, 0, 0], [1, 0, 0]]\n", ErrInvalidFace},
		{"zero normal", "faces:\n  - id: 1\n    normal: [0, 0, 0]\n    corners: [[0, 0, 0], [1, 0, 0], [1, 1, 0]]\n", ErrInvalidFace},
		{"nan corner", "faces:\n  - id: 1\n    normal: [0, 0, 1]\n    corners: [[0, 0, 0], [1, 0, 0], [.nan, 1, 0]]\n", ErrInvalidFace},
		{"negative area", "faces:\n  - id: 1\n    normal: [0, 0, 1]\n    area: -1\n    corners: [[0, 0, 0], [1, 0, 0], [1, 1, 0]]\n", ErrInvalidFace},
		{"duplicate id", squareYAML + "  - id: 3\n    normal: [0, 0, 1]\n    corners: [[0, 0, 0], [1, 0, 0], [1, 1, 0]]\n", ErrInvalidFace},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseFaces([]byte(tc.data))
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestParseFaces_MalformedYAML(t *testing.T) {
	_, err := ParseFaces([]byte("faces: [\n  id: : 1"))
	if err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestMarshalFaces_RoundTrip(t *testing.T) {
	want := testFaces()

	data, err := MarshalFaces(want)
	if err != nil {
		t.Fatalf("MarshalFaces failed: %v", err)
	}
	got, err := ParseFaces(data)
	if err != nil {
		t.Fatalf("ParseFaces failed: %v\n%s", err, data)
	}

	if len(got) != len(want) {
		t.Fatalf("expected %d faces, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].ID != want[i].ID || got[i].Normal != want[i].Normal || got[i].Area != want[i].Area {
			t.Errorf("face %d: expected %+v, got %+v", i, want[i], got[i])
		}
		for j := range want[i].Corners {
			if got[i].Corners[j] != want[i].Corners[j] {
				t.Errorf("face %d corner %d: expected %v, got %v", i, j, want[i].Corners[j], got[i].Corners[j])
			}
		}
	}
}

func TestBinaryFaces_RoundTrip(t *testing.T) {
	want := testFaces()

	data, err := EncodeBinaryFaces(want)
	if err != nil {
		t.Fatalf("EncodeBinaryFaces failed: %v", err)
	}
	if string(data[:4]) != "IFCS" {
		t.Errorf("expected magic IFCS, got %q", data[:4])
	}

	got, err := ParseFaces(data)
	if err != nil {
		t.Fatalf("ParseFaces failed: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d faces, got %d", len(want), len(got))
	}
	// All test values are exact in float32.
	for i := range want {
		if got[i].ID != want[i].ID || got[i].Normal != want[i].Normal || got[i].Area != want[i].Area {
			t.Errorf("face %d: expected %+v, got %+v", i, want[i], got[i])
		}
		for j := range want[i].Corners {
			if got[i].Corners[j] != want[i].Corners[j] {
				t.Errorf("face %d corner %d: expected %v, got %v", i, j, want[i].Corners[j], got[i].Corners[j])
			}
		}
	}
}

func TestBinaryFaces_Errors(t *testing.T) {
	valid, err := EncodeBinaryFaces(testFaces())
	if err != nil {
		t.Fatalf("EncodeBinaryFaces failed: %v", err)
	}

	badVersion := append([]byte(nil), valid...)
	badVersion[5] = 3

	// A count far larger than the payload must fail before allocating.
	hugeCount := append([]byte(nil), valid[:binaryHeaderSize]...)
	binary.LittleEndian.PutUint32(hugeCount[6:], maxBinaryFaces)

	hugeCorners := append([]byte(nil), valid[:binaryHeaderSize+binaryRecordSize]...)
	binary.LittleEndian.PutUint32(hugeCorners[6:], 1)
	binary.LittleEndian.PutUint16(hugeCorners[binaryHeaderSize+binaryRecordSize-2:], 60000)

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"header only", []byte("IFCS"), ErrTruncatedFaceData},
		{"bad version", badVersion, ErrUnsupportedFaceVersion},
		{"truncated corners", valid[:len(valid)-5], ErrTruncatedFaceData},
		{"count exceeds data", hugeCount, ErrTruncatedFaceData},
		{"corner count exceeds data", hugeCorners, ErrTruncatedFaceData},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseFaces(tc.data)
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestParseFacesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faces.yaml")
	if err := os.WriteFile(path, []byte(squareYAML), 0644); err != nil {
		t.Fatalf("failed to write faces: %v", err)
	}

	faces, err := ParseFacesFile(path)
	if err != nil {
		t.Fatalf("ParseFacesFile failed: %v", err)
	}
	if len(faces) != 2 {
		t.Errorf("expected 2 faces, got %d", len(faces))
	}

	if _, err := ParseFacesFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFaceBounds(t *testing.T) {
	lo, hi, ok := FaceBounds(testFaces())
	if !ok {
		t.Fatal("expected bounds")
	}
	if lo != (math.Vec3{}) {
		t.Errorf("expected lo at origin, got %v", lo)
	}
	if hi != (math.Vec3{X: 1.5, Y: 1, Z: 2}) {
		t.Errorf("expected hi (1.5,1,2), got %v", hi)
	}

	if _, _, ok := FaceBounds(nil); ok {
		t.Error("expected no bounds for empty input")
	}
}
