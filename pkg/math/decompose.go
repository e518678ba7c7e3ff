package math

import "github.com/chewxy/math32"

// Decompose splits an affine matrix into translation, rotation and scale such
// that m = T * R * S. A negative determinant is folded into the X scale.
func Decompose(m Mat4) (translation Vec3, rotation Quat, scale Vec3) {
	translation = m.Translation()

	c0, c1, c2 := m.Column(0), m.Column(1), m.Column(2)
	scale = Vec3{
		X: math32.Sqrt(c0.Dot(c0)),
		Y: math32.Sqrt(c1.Dot(c1)),
		Z: math32.Sqrt(c2.Dot(c2)),
	}
	if m.Determinant3() < 0 {
		scale.X = -scale.X
	}

	r := Identity()
	if scale.X != 0 {
		c0 = c0.Scale(1 / scale.X)
	}
	if scale.Y != 0 {
		c1 = c1.Scale(1 / scale.Y)
	}
	if scale.Z != 0 {
		c2 = c2.Scale(1 / scale.Z)
	}
	r[0], r[1], r[2] = c0.X, c0.Y, c0.Z
	r[4], r[5], r[6] = c1.X, c1.Y, c1.Z
	r[8], r[9], r[10] = c2.X, c2.Y, c2.Z

	rotation = QuatFromRotation(r)
	return translation, rotation, scale
}
