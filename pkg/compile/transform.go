package compile

import (
	"github.com/packerman/pcg/pkg/math"
	"github.com/packerman/pcg/pkg/scene"
)

const epsilon = 1e-6

// NodeTransform is the transform part of an output node. Either Matrix is
// set, or any subset of Translation, Rotation and Scale.
type NodeTransform struct {
	Matrix      *[16]float32
	Translation *[3]float32
	Rotation    *[4]float32
	Scale       *[3]float32
}

// ComposeTransforms multiplies the ops in order, each applied in the local
// frame of the previous ones.
func ComposeTransforms(ts []scene.Transform) math.Mat4 {
	m := math.Identity()
	for _, t := range ts {
		m = m.Mul(t.Matrix())
	}
	return m
}

// IsTRS reports whether ts can be emitted as translation, rotation and scale:
// only Translation, Rotation and Scale ops, with every translation before any
// rotation and every rotation before any scale. Repeats of one kind are fine.
func IsTRS(ts []scene.Transform) bool {
	lastT, firstR, lastR, firstS := -1, -1, -1, -1
	for i, t := range ts {
		switch t.(type) {
		case scene.Translation:
			lastT = i
		case scene.Rotation:
			if firstR < 0 {
				firstR = i
			}
			lastR = i
		case scene.Scale:
			if firstS < 0 {
				firstS = i
			}
		default:
			return false
		}
	}

	if lastT >= 0 && firstR >= 0 && lastT > firstR {
		return false
	}
	if lastR >= 0 && firstS >= 0 && lastR > firstS {
		return false
	}
	if lastT >= 0 && firstS >= 0 && lastT > firstS {
		return false
	}
	return true
}

// CompileTransform converts a transform list into node fields. Components
// equal to identity are left out, so an empty list yields no fields at all.
func CompileTransform(ts []scene.Transform) NodeTransform {
	if len(ts) == 0 {
		return NodeTransform{}
	}

	m := ComposeTransforms(ts)
	if !IsTRS(ts) {
		if m.ApproxEqual(math.Identity(), epsilon) {
			return NodeTransform{}
		}
		matrix := [16]float32(m)
		return NodeTransform{Matrix: &matrix}
	}

	var out NodeTransform
	translation, rotation, scale := math.Decompose(m)
	if !approxVec3(translation, math.Vec3{}) {
		t := translation.Array()
		out.Translation = &t
	}
	if !approxQuat(rotation, math.QuatIdentity()) {
		r := rotation.Array()
		out.Rotation = &r
	}
	if !approxVec3(scale, math.Vec3{X: 1, Y: 1, Z: 1}) {
		s := scale.Array()
		out.Scale = &s
	}
	return out
}

func approx(a, b float32) bool {
	d := a - b
	return d <= epsilon && d >= -epsilon
}

func approxVec3(a, b math.Vec3) bool {
	return approx(a.X, b.X) && approx(a.Y, b.Y) && approx(a.Z, b.Z)
}

func approxQuat(a, b math.Quat) bool {
	return approx(a.X, b.X) && approx(a.Y, b.Y) && approx(a.Z, b.Z) && approx(a.W, b.W)
}
