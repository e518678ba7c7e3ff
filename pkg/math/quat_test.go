package math

import (
	"math"
	"testing"
)

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("Identity quaternion should be (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
}

func TestQuatNormalize(t *testing.T) {
	q := Quat{X: 1, Y: 2, Z: 3, W: 4}
	n := q.Normalize()

	length := float32(math.Sqrt(float64(n.X*n.X + n.Y*n.Y + n.Z*n.Z + n.W*n.W)))
	if math.Abs(float64(length-1.0)) > 0.0001 {
		t.Errorf("Normalized quaternion length should be 1, got %v", length)
	}
}

// axisAngle is the expected quaternion for a rotation of degrees around a
// unit axis.
func axisAngle(axis Vec3, degrees float64) Quat {
	half := degrees * math.Pi / 360
	s := float32(math.Sin(half))
	return Quat{X: axis.X * s, Y: axis.Y * s, Z: axis.Z * s, W: float32(math.Cos(half))}
}

// sameRotation accepts q and -q, which describe the same rotation.
func sameRotation(a, b Quat) bool {
	match := func(sign float32) bool {
		return abs(a.X-sign*b.X) < 1e-5 && abs(a.Y-sign*b.Y) < 1e-5 &&
			abs(a.Z-sign*b.Z) < 1e-5 && abs(a.W-sign*b.W) < 1e-5
	}
	return match(1) || match(-1)
}

func TestQuatFromRotation(t *testing.T) {
	diagonal := Vec3{1, 1, 1}.Normalize()
	tests := []struct {
		name  string
		axis  Vec3
		angle float32
	}{
		{"identity", AxisX, 0},
		{"y 90", AxisY, 90},
		{"x 180", AxisX, 180},
		{"z 270", AxisZ, 270},
		{"diagonal 33", diagonal, 33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := RotateAxis(tt.axis, Radians(tt.angle))
			q := QuatFromRotation(m)
			if q.W < 0 {
				t.Errorf("expected non-negative W, got %v", q.W)
			}
			if want := axisAngle(tt.axis, float64(tt.angle)); !sameRotation(q, want) {
				t.Errorf("got %v, want %v", q, want)
			}
		})
	}
}

func TestDecompose(t *testing.T) {
	m := Translate(1, 2, 3).
		Mul(RotateAxis(AxisY, Radians(90))).
		Mul(Scale(2, 3, 4))

	tr, rot, sc := Decompose(m)
	if tr != (Vec3{1, 2, 3}) {
		t.Errorf("translation: got %v", tr)
	}
	if abs(sc.X-2) > 1e-5 || abs(sc.Y-3) > 1e-5 || abs(sc.Z-4) > 1e-5 {
		t.Errorf("scale: got %v", sc)
	}
	want := axisAngle(AxisY, 90)
	if abs(rot.X-want.X) > 1e-5 || abs(rot.Y-want.Y) > 1e-5 || abs(rot.Z-want.Z) > 1e-5 || abs(rot.W-want.W) > 1e-5 {
		t.Errorf("rotation: got %v, want %v", rot, want)
	}
}

func TestDecomposeMirrored(t *testing.T) {
	m := Scale(-2, 1, 1)
	_, rot, sc := Decompose(m)
	if sc != (Vec3{-2, 1, 1}) {
		t.Errorf("scale: got %v, want (-2, 1, 1)", sc)
	}
	if rot != QuatIdentity() {
		t.Errorf("rotation: got %v, want identity", rot)
	}
}
