package scene

import "github.com/packerman/pcg/pkg/math"

// Transform is one node transform operation. Operations compose in list order
// in the node's local frame.
type Transform interface {
	Matrix() math.Mat4
	transform()
}

// Translation moves by (X, Y, Z).
type Translation struct {
	X, Y, Z float32
}

// Rotation turns by AngleDegrees around Axis.
type Rotation struct {
	AngleDegrees float32
	Axis         math.Vec3
}

// Scale scales along each axis.
type Scale struct {
	X, Y, Z float32
}

// MatrixTransform applies an arbitrary column-major matrix.
type MatrixTransform struct {
	M math.Mat4
}

func (t Translation) Matrix() math.Mat4 { return math.Translate(t.X, t.Y, t.Z) }
func (t Translation) transform()        {}

func (r Rotation) Matrix() math.Mat4 { return math.RotateAxis(r.Axis, math.Radians(r.AngleDegrees)) }
func (r Rotation) transform()        {}

func (s Scale) Matrix() math.Mat4 { return math.Scale(s.X, s.Y, s.Z) }
func (s Scale) transform()        {}

func (m MatrixTransform) Matrix() math.Mat4 { return m.M }
func (m MatrixTransform) transform()        {}
