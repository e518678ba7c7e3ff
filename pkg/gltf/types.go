// Package gltf is the glTF 2.0 output document model. Values are produced by
// the compiler through the New* constructors, which enforce the structural
// invariants of the format; a Document that exists is a valid document.
//
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html
package gltf

import "fmt"

// ComponentType is the accessor component data type.
type ComponentType int

const (
	Byte          ComponentType = 5120
	UnsignedByte  ComponentType = 5121
	Short         ComponentType = 5122
	UnsignedShort ComponentType = 5123
	UnsignedInt   ComponentType = 5125
	Float         ComponentType = 5126
)

// Size returns the component size in bytes.
func (c ComponentType) Size() int {
	switch c {
	case Byte, UnsignedByte:
		return 1
	case Short, UnsignedShort:
		return 2
	case UnsignedInt, Float:
		return 4
	default:
		return 0
	}
}

// String returns the glTF constant name.
func (c ComponentType) String() string {
	switch c {
	case Byte:
		return "BYTE"
	case UnsignedByte:
		return "UNSIGNED_BYTE"
	case Short:
		return "SHORT"
	case UnsignedShort:
		return "UNSIGNED_SHORT"
	case UnsignedInt:
		return "UNSIGNED_INT"
	case Float:
		return "FLOAT"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// AccessorType is the element shape of an accessor.
type AccessorType string

const (
	Scalar AccessorType = "SCALAR"
	Vec2   AccessorType = "VEC2"
	Vec3   AccessorType = "VEC3"
	Vec4   AccessorType = "VEC4"
	Mat2   AccessorType = "MAT2"
	Mat3   AccessorType = "MAT3"
	Mat4   AccessorType = "MAT4"
)

// Components returns the number of components per element.
func (t AccessorType) Components() int {
	switch t {
	case Scalar:
		return 1
	case Vec2:
		return 2
	case Vec3:
		return 3
	case Vec4, Mat2:
		return 4
	case Mat3:
		return 9
	case Mat4:
		return 16
	default:
		return 0
	}
}

// Target is the GPU usage hint of a buffer view.
type Target int

const (
	ArrayBuffer        Target = 34962
	ElementArrayBuffer Target = 34963
)

// Attribute is a primitive attribute semantic.
type Attribute string

const (
	POSITION   Attribute = "POSITION"
	NORMAL     Attribute = "NORMAL"
	TEXCOORD_0 Attribute = "TEXCOORD_0"
)

// Filter is a sampler filter.
type Filter int

const (
	Nearest              Filter = 9728
	Linear               Filter = 9729
	NearestMipmapNearest Filter = 9984
	LinearMipmapNearest  Filter = 9985
	NearestMipmapLinear  Filter = 9986
	LinearMipmapLinear   Filter = 9987
)

// Wrap is a sampler wrapping mode.
type Wrap int

const (
	ClampToEdge    Wrap = 33071
	MirroredRepeat Wrap = 33648
	Repeat         Wrap = 10497
)
