// Package cubesphere maps points on the six faces of a cube onto the unit sphere.
package cubesphere

import (
	gomath "math"

	"github.com/Faultbox/genesisforge/pkg/math"
)

// Face identifies one of the six cube faces.
type Face int

const (
	FacePosX Face = iota // Right
	FaceNegX             // Left
	FacePosY             // Top
	FaceNegY             // Bottom
	FacePosZ             // Front
	FaceNegZ             // Back
)

var faceNormals = [...]math.Vec3{
	FacePosX: {X: 1},
	FaceNegX: {X: -1},
	FacePosY: {Y: 1},
	FaceNegY: {Y: -1},
	FacePosZ: {Z: 1},
	FaceNegZ: {Z: -1},
}

var faceNames = [...]string{
	FacePosX: "+x",
	FaceNegX: "-x",
	FacePosY: "+y",
	FaceNegY: "-y",
	FacePosZ: "+z",
	FaceNegZ: "-z",
}

// Faces returns all six faces in root creation order.
func Faces() []Face {
	return []Face{FacePosX, FaceNegX, FacePosY, FaceNegY, FacePosZ, FaceNegZ}
}

// Valid reports whether f is one of the six faces.
func (f Face) Valid() bool {
	return f >= FacePosX && f <= FaceNegZ
}

// Normal returns the outward unit normal of the face.
func (f Face) Normal() math.Vec3 {
	if !f.Valid() {
		return math.Vec3{}
	}
	return faceNormals[f]
}

func (f Face) String() string {
	if !f.Valid() {
		return "invalid"
	}
	return faceNames[f]
}

// ParseFace converts a face name such as "+x" back to a Face.
func ParseFace(s string) (Face, bool) {
	for _, f := range Faces() {
		if faceNames[f] == s {
			return f, true
		}
	}
	return 0, false
}

// Basis returns the tangent and binormal spanning the face plane.
// The reference up vector switches to +Z near the poles, where crossing with +Y degenerates.
func Basis(faceNormal math.Vec3) (tangent, binormal math.Vec3) {
	up := math.Vec3{Y: 1}
	if gomath.Abs(faceNormal.Y) > 0.9 {
		up = math.Vec3{Z: 1}
	}
	tangent = up.Cross(faceNormal).Normalize()
	binormal = faceNormal.Cross(tangent).Normalize()
	return tangent, binormal
}

// MapToSphere projects the face-local coordinate (u, v), each in [-1, 1],
// onto the unit sphere. The result is a pure function of its inputs so
// neighbouring patches evaluate identical edge vertices.
func MapToSphere(faceNormal math.Vec3, u, v float64) math.Vec3 {
	tangent, binormal := Basis(faceNormal)
	return faceNormal.
		AddScaled(tangent, u).
		AddScaled(binormal, v).
		Normalize()
}
