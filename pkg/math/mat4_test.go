package math

import (
	"math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	// Off-diagonal should be 0
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	id := Identity()
	result := m.Mul(id)

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestTranslate(t *testing.T) {
	m := Translate(5, 10, 15)

	// Translation should be in column 4 (indices 12, 13, 14)
	if got := m.Translation(); got != (Vec3{5, 10, 15}) {
		t.Errorf("Translate: got %v, want (5, 10, 15)", got)
	}
}

func TestScale(t *testing.T) {
	m := Scale(2, 3, 4)

	if m[0] != 2 || m[5] != 3 || m[10] != 4 {
		t.Errorf("Scale diagonal: got (%f, %f, %f), want (2, 3, 4)", m[0], m[5], m[10])
	}
}

// apply transforms point p by m: the translation column of m * T(p).
func apply(m Mat4, p Vec3) Vec3 {
	return m.Mul(Translate(p.X, p.Y, p.Z)).Translation()
}

func TestTranslation(t *testing.T) {
	m := Translate(10, 20, 30)
	if got := m.Translation(); got != (Vec3{10, 20, 30}) {
		t.Errorf("Translation: got %v", got)
	}
	if got := apply(m, Vec3{1, 2, 3}); got != (Vec3{11, 22, 33}) {
		t.Errorf("apply: got %v, want (11, 22, 33)", got)
	}
}

func TestRotateAxisY90(t *testing.T) {
	m := RotateAxis(AxisY, float32(math.Pi/2))
	result := apply(m, Vec3{1, 0, 0})

	// After 90 degree Y rotation, (1,0,0) should become approximately (0,0,-1)
	if abs(result.X) > 0.001 || abs(result.Y) > 0.001 || abs(result.Z+1) > 0.001 {
		t.Errorf("RotateAxis Y 90: got %v, want (0, 0, -1)", result)
	}
}

func TestRotateAxisNormalizes(t *testing.T) {
	a := RotateAxis(Vec3{0, 0, 5}, Radians(30))
	b := RotateAxis(AxisZ, Radians(30))
	if !a.ApproxEqual(b, 1e-6) {
		t.Errorf("RotateAxis should normalize the axis: %v vs %v", a, b)
	}
}

func TestMulOrder(t *testing.T) {
	// T * S applies the scale first.
	m := Translate(1, 0, 0).Mul(Scale(2, 2, 2))
	got := apply(m, Vec3{1, 1, 1})
	if got != (Vec3{3, 2, 2}) {
		t.Errorf("T*S: got %v, want (3, 2, 2)", got)
	}
}

func TestDeterminant3(t *testing.T) {
	if d := Scale(2, 3, 4).Determinant3(); d != 24 {
		t.Errorf("Determinant3: got %f, want 24", d)
	}
	if d := Scale(-1, 1, 1).Determinant3(); d != -1 {
		t.Errorf("Determinant3 mirrored: got %f, want -1", d)
	}
}

func TestIsAffine(t *testing.T) {
	if !Translate(1, 2, 3).Mul(RotateAxis(AxisX, 1)).IsAffine() {
		t.Error("composed transform should be affine")
	}
	m := Identity()
	m[11] = -1
	if m.IsAffine() {
		t.Error("projective bottom row reported as affine")
	}
}

func TestRadians(t *testing.T) {
	if got := Radians(180); abs(got-math.Pi) > 1e-6 {
		t.Errorf("Radians(180) = %v, want pi", got)
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
