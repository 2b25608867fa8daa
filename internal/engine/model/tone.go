package model

import pmath "github.com/Faultbox/isoplot/pkg/math"

// ShadeKey names the axis direction a face points along.
type ShadeKey string

const (
	ShadeZPos ShadeKey = "z_pos"
	ShadeXPos ShadeKey = "x_pos"
	ShadeYPos ShadeKey = "y_pos"
	ShadeXNeg ShadeKey = "x_neg"
	ShadeYNeg ShadeKey = "y_neg"
	ShadeZNeg ShadeKey = "z_neg"
)

// ShadeKeys lists every key in tone order.
var ShadeKeys = []ShadeKey{ShadeZPos, ShadeXPos, ShadeYPos, ShadeXNeg, ShadeYNeg, ShadeZNeg}

// ToneLevels is the number of discrete tones.
const ToneLevels = 6

// FaceType is the coarse orientation class used to bias hatch angles.
type FaceType int

const (
	FaceTop FaceType = iota
	FaceLeft
	FaceRight
)

func (t FaceType) String() string {
	switch t {
	case FaceTop:
		return "top"
	case FaceLeft:
		return "left"
	case FaceRight:
		return "right"
	}
	return "unknown"
}

// ShadeKeyFor classifies a world-space normal by its dominant axis.
func ShadeKeyFor(n pmath.Vec3) ShadeKey {
	switch {
	case n.Z > 0.5:
		return ShadeZPos
	case n.Z < -0.5:
		return ShadeZNeg
	case n.X > 0.5:
		return ShadeXPos
	case n.X < -0.5:
		return ShadeXNeg
	case n.Y > 0.5:
		return ShadeYPos
	}
	return ShadeYNeg
}

// ToneIndex maps a shade key to its tone, 0 (darkest) through 5 (lightest).
// Distinct keys always map to distinct tones.
func ToneIndex(k ShadeKey) int {
	switch k {
	case ShadeZPos:
		return 0
	case ShadeXPos:
		return 1
	case ShadeYPos:
		return 2
	case ShadeXNeg:
		return 3
	case ShadeYNeg:
		return 4
	case ShadeZNeg:
		return 5
	}
	return ToneLevels - 1
}

// FaceTypeFor returns the orientation class of a shade key.
func FaceTypeFor(k ShadeKey) FaceType {
	switch k {
	case ShadeZPos:
		return FaceTop
	case ShadeXPos, ShadeYNeg:
		return FaceRight
	}
	return FaceLeft
}
