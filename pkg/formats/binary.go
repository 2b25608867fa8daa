package formats

import (
	"bytes"
	"encoding/binary"
	"fmt"
	stdmath "math"

	"github.com/Faultbox/isoplot/pkg/math"
)

// Binary layout, little-endian:
//
//	magic   "IFCS"
//	version [minor, major] bytes
//	count   uint32
//	faces   count × { id int32, normal 3×float32, area float32,
//	                  corners uint16, corners × 3×float32 }
const (
	binaryMagic      = "IFCS"
	binaryHeaderSize = 10
	binaryRecordSize = 22 // face record with no corners
	binaryCornerSize = 12
	maxBinaryFaces   = 1 << 22
)

func isBinaryFaces(data []byte) bool {
	return len(data) >= 4 && string(data[:4]) == binaryMagic
}

func parseBinaryFaces(data []byte) ([]Face, error) {
	if len(data) < binaryHeaderSize {
		return nil, ErrTruncatedFaceData
	}

	// Version is stored as [minor, major]
	if major, minor := data[5], data[4]; major != FaceVersion || minor != 0 {
		return nil, fmt.Errorf("%w: %d.%d", ErrUnsupportedFaceVersion, major, minor)
	}

	r := bytes.NewReader(data[6:])

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("%w: reading count", ErrTruncatedFaceData)
	}
	if count > maxBinaryFaces {
		return nil, fmt.Errorf("%w: %d faces", ErrInvalidFace, count)
	}
	if int(count) > r.Len()/binaryRecordSize {
		return nil, fmt.Errorf("%w: %d faces in %d bytes", ErrTruncatedFaceData, count, r.Len())
	}

	faces := make([]Face, 0, count)
	for i := range int(count) {
		f, err := parseBinaryFace(r)
		if err != nil {
			return nil, fmt.Errorf("parsing face %d: %w", i, err)
		}
		faces = append(faces, f)
	}

	if err := ValidateFaces(faces); err != nil {
		return nil, err
	}
	return faces, nil
}

// parseBinaryFace parses a single face record.
func parseBinaryFace(r *bytes.Reader) (Face, error) {
	var head struct {
		ID     int32
		Normal [3]float32
		Area   float32
		N      uint16
	}
	if err := binary.Read(r, binary.LittleEndian, &head); err != nil {
		return Face{}, fmt.Errorf("%w: reading header", ErrTruncatedFaceData)
	}

	if int(head.N) > r.Len()/binaryCornerSize {
		return Face{}, fmt.Errorf("%w: reading %d corners", ErrTruncatedFaceData, head.N)
	}
	corners := make([][3]float32, head.N)
	if err := binary.Read(r, binary.LittleEndian, corners); err != nil {
		return Face{}, fmt.Errorf("%w: reading %d corners", ErrTruncatedFaceData, head.N)
	}

	f := Face{
		ID:      int(head.ID),
		Normal:  vec3f(head.Normal),
		Corners: make([]math.Vec3, len(corners)),
		Area:    float64(head.Area),
	}
	for i, c := range corners {
		f.Corners[i] = vec3f(c)
	}
	return f, nil
}

// EncodeBinaryFaces writes faces in the binary encoding. Coordinates are
// stored as float32.
func EncodeBinaryFaces(faces []Face) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.WriteString(binaryMagic)
	buf.WriteByte(0) // minor
	buf.WriteByte(FaceVersion)

	if err := binary.Write(buf, binary.LittleEndian, uint32(len(faces))); err != nil {
		return nil, err
	}
	for _, f := range faces {
		if f.ID < stdmath.MinInt32 || f.ID > stdmath.MaxInt32 {
			return nil, fmt.Errorf("%w: id %d does not fit in 32 bits", ErrInvalidFace, f.ID)
		}
		if len(f.Corners) > stdmath.MaxUint16 {
			return nil, fmt.Errorf("%w: face %d has %d corners", ErrInvalidFace, f.ID, len(f.Corners))
		}
		head := struct {
			ID     int32
			Normal [3]float32
			Area   float32
			N      uint16
		}{
			ID:     int32(f.ID),
			Normal: array3f(f.Normal),
			Area:   float32(f.Area),
			N:      uint16(len(f.Corners)),
		}
		if err := binary.Write(buf, binary.LittleEndian, head); err != nil {
			return nil, err
		}
		corners := make([][3]float32, len(f.Corners))
		for i, c := range f.Corners {
			corners[i] = array3f(c)
		}
		if err := binary.Write(buf, binary.LittleEndian, corners); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func vec3f(a [3]float32) math.Vec3 {
	return math.Vec3{X: float64(a[0]), Y: float64(a[1]), Z: float64(a[2])}
}

func array3f(v math.Vec3) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}
