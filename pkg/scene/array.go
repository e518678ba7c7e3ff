package scene

import (
	"fmt"

	"github.com/packerman/pcg/pkg/math"
)

// Attribute is the semantic of a vertex array.
type Attribute int

const (
	Position Attribute = iota
	Normal
	TexCoord
)

// String returns a human-readable attribute name.
func (a Attribute) String() string {
	switch a {
	case Position:
		return "Position"
	case Normal:
		return "Normal"
	case TexCoord:
		return "TexCoord"
	default:
		return fmt.Sprintf("Unknown(%d)", int(a))
	}
}

// VertexArray is one per-vertex attribute stream. The set of implementations
// is closed: *Float3Array and *Float2Array.
type VertexArray interface {
	Attribute() Attribute
	// Len returns the number of elements.
	Len() int
	// ByteStride returns the size of one element in bytes.
	ByteStride() int
	vertexArray()
}

// Float3Array holds Vec3 elements (positions, normals).
type Float3Array struct {
	attribute Attribute
	Data      []math.Vec3
}

// NewFloat3Array creates a vec3 vertex array.
func NewFloat3Array(attribute Attribute, data ...math.Vec3) *Float3Array {
	return &Float3Array{attribute: attribute, Data: data}
}

func (a *Float3Array) Attribute() Attribute { return a.attribute }
func (a *Float3Array) Len() int             { return len(a.Data) }
func (a *Float3Array) ByteStride() int      { return 12 }
func (a *Float3Array) vertexArray()         {}

// Bounds returns the component-wise minimum and maximum.
func (a *Float3Array) Bounds() (lo, hi math.Vec3) {
	if len(a.Data) == 0 {
		return lo, hi
	}
	lo, hi = a.Data[0], a.Data[0]
	for _, v := range a.Data[1:] {
		lo = lo.Min(v)
		hi = hi.Max(v)
	}
	return lo, hi
}

// Float2Array holds Vec2 elements (texture coordinates).
type Float2Array struct {
	attribute Attribute
	Data      []math.Vec2
}

// NewFloat2Array creates a vec2 vertex array.
func NewFloat2Array(attribute Attribute, data ...math.Vec2) *Float2Array {
	return &Float2Array{attribute: attribute, Data: data}
}

func (a *Float2Array) Attribute() Attribute { return a.attribute }
func (a *Float2Array) Len() int             { return len(a.Data) }
func (a *Float2Array) ByteStride() int      { return 8 }
func (a *Float2Array) vertexArray()         {}

// Bounds returns the component-wise minimum and maximum.
func (a *Float2Array) Bounds() (lo, hi math.Vec2) {
	if len(a.Data) == 0 {
		return lo, hi
	}
	lo, hi = a.Data[0], a.Data[0]
	for _, v := range a.Data[1:] {
		lo = lo.Min(v)
		hi = hi.Max(v)
	}
	return lo, hi
}

// IndexArray is a triangle list for one submesh. Slot selects the material
// of the owning node used to draw it.
type IndexArray struct {
	Slot    int
	Indices []uint16
}

// Triangles builds an index array from index triples.
func Triangles(slot int, tris ...[3]uint16) IndexArray {
	indices := make([]uint16, 0, 3*len(tris))
	for _, t := range tris {
		indices = append(indices, t[0], t[1], t[2])
	}
	return IndexArray{Slot: slot, Indices: indices}
}

// Len returns the number of indices.
func (a IndexArray) Len() int { return len(a.Indices) }

// ByteLength returns the serialized size in bytes.
func (a IndexArray) ByteLength() int { return 2 * len(a.Indices) }

// Bounds returns the smallest and largest index.
func (a IndexArray) Bounds() (lo, hi uint16) {
	if len(a.Indices) == 0 {
		return 0, 0
	}
	lo, hi = a.Indices[0], a.Indices[0]
	for _, i := range a.Indices[1:] {
		lo = min(lo, i)
		hi = max(hi, i)
	}
	return lo, hi
}
