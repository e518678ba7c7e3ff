package compile

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/packerman/pcg/pkg/gltf"
	"github.com/packerman/pcg/pkg/scene"
)

// vertexCodec knows how to describe and serialize one vertex array.
type vertexCodec struct {
	attribute gltf.Attribute
	typ       gltf.AccessorType
	stride    int
	count     int
	min, max  []float32

	// appendElement appends the little-endian bytes of element i to dst.
	appendElement func(dst []byte, i int) []byte
}

func attributeName(a scene.Attribute) (gltf.Attribute, error) {
	switch a {
	case scene.Position:
		return gltf.POSITION, nil
	case scene.Normal:
		return gltf.NORMAL, nil
	case scene.TexCoord:
		return gltf.TEXCOORD_0, nil
	default:
		return "", fmt.Errorf("%w: attribute %s", ErrUnsupportedRepresentation, a)
	}
}

func newVertexCodec(a scene.VertexArray) (vertexCodec, error) {
	name, err := attributeName(a.Attribute())
	if err != nil {
		return vertexCodec{}, err
	}

	switch v := a.(type) {
	case *scene.Float3Array:
		lo, hi := v.Bounds()
		return vertexCodec{
			attribute: name,
			typ:       gltf.Vec3,
			stride:    v.ByteStride(),
			count:     v.Len(),
			min:       []float32{lo.X, lo.Y, lo.Z},
			max:       []float32{hi.X, hi.Y, hi.Z},
			appendElement: func(dst []byte, i int) []byte {
				e := v.Data[i]
				return appendFloats(dst, e.X, e.Y, e.Z)
			},
		}, nil
	case *scene.Float2Array:
		lo, hi := v.Bounds()
		return vertexCodec{
			attribute: name,
			typ:       gltf.Vec2,
			stride:    v.ByteStride(),
			count:     v.Len(),
			min:       []float32{lo.X, lo.Y},
			max:       []float32{hi.X, hi.Y},
			appendElement: func(dst []byte, i int) []byte {
				e := v.Data[i]
				return appendFloats(dst, e.X, e.Y)
			},
		}, nil
	default:
		return vertexCodec{}, fmt.Errorf("%w: vertex array %T for %s", ErrUnsupportedRepresentation, a, a.Attribute())
	}
}

// appendAll appends every element, attribute-major.
func (c vertexCodec) appendAll(dst []byte) []byte {
	for i := 0; i < c.count; i++ {
		dst = c.appendElement(dst, i)
	}
	return dst
}

func appendFloats(dst []byte, values ...float32) []byte {
	for _, f := range values {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(f))
	}
	return dst
}

func appendIndices(dst []byte, indices []uint16) []byte {
	for _, i := range indices {
		dst = binary.LittleEndian.AppendUint16(dst, i)
	}
	return dst
}

func padTo4(dst []byte) []byte {
	for len(dst)%4 != 0 {
		dst = append(dst, 0)
	}
	return dst
}
