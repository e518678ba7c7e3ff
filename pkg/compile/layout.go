package compile

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/packerman/pcg/pkg/gltf"
	"github.com/packerman/pcg/pkg/scene"
)

// DataURIPrefix starts every inlined buffer URI.
const DataURIPrefix = "data:application/octet-stream;base64,"

// Offset counts document entries already taken by earlier geometries.
type Offset struct {
	Buffer     int
	BufferView int
	Accessor   int
}

// Add returns the offset advanced by delta.
func (o Offset) Add(delta Offset) Offset {
	return Offset{
		Buffer:     o.Buffer + delta.Buffer,
		BufferView: o.BufferView + delta.BufferView,
		Accessor:   o.Accessor + delta.Accessor,
	}
}

// Submesh maps a material slot to the accessor holding its indices.
type Submesh struct {
	Slot     int
	Accessor int
}

// GeometryLayout is one geometry packed into a single buffer. Indices in
// Attributes, Submeshes and the buffer views are absolute: they already
// include the base offset passed to LayoutGeometry.
type GeometryLayout struct {
	Accessors   []gltf.Accessor
	BufferViews []gltf.BufferView
	Buffer      gltf.Buffer
	Attributes  map[gltf.Attribute]int
	Submeshes   []Submesh

	// Delta is the number of entries this layout adds.
	Delta Offset

	data []byte
}

// Bytes returns the raw buffer content.
func (l *GeometryLayout) Bytes() []byte {
	return l.data
}

// LayoutGeometry packs the single mesh of g. Index arrays come first in one
// element-array view, followed by zero padding to a 4-byte boundary and the
// vertex data, either one view per stride group or one interleaved view.
func LayoutGeometry(g *scene.Geometry, base Offset, interleaved bool) (*GeometryLayout, error) {
	mesh := g.Mesh()
	if mesh == nil {
		return nil, fmt.Errorf("%w: geometry has no mesh", scene.ErrInvalidGeometry)
	}

	codecs := make([]vertexCodec, 0, len(mesh.VertexArrays))
	for _, va := range mesh.VertexArrays {
		c, err := newVertexCodec(va)
		if err != nil {
			return nil, err
		}
		codecs = append(codecs, c)
	}

	b := &layoutBuilder{
		base: base,
		layout: &GeometryLayout{
			Attributes: make(map[gltf.Attribute]int, len(codecs)),
		},
	}
	if err := b.indices(mesh.IndexArrays); err != nil {
		return nil, err
	}
	b.data = padTo4(b.data)

	var err error
	if interleaved {
		err = b.interleaved(codecs)
	} else {
		err = b.planar(codecs)
	}
	if err != nil {
		return nil, err
	}
	return b.finish()
}

type layoutBuilder struct {
	base   Offset
	layout *GeometryLayout
	data   []byte
}

func (b *layoutBuilder) nextView() int {
	return b.base.BufferView + len(b.layout.BufferViews)
}

func (b *layoutBuilder) addView(v gltf.BufferView) error {
	v, err := gltf.NewBufferView(v)
	if err != nil {
		return err
	}
	b.layout.BufferViews = append(b.layout.BufferViews, v)
	return nil
}

func (b *layoutBuilder) addAccessor(a gltf.Accessor) (int, error) {
	a, err := gltf.NewAccessor(a)
	if err != nil {
		return 0, err
	}
	b.layout.Accessors = append(b.layout.Accessors, a)
	return b.base.Accessor + len(b.layout.Accessors) - 1, nil
}

func (b *layoutBuilder) indices(arrays []scene.IndexArray) error {
	if len(arrays) == 0 {
		return nil
	}

	view := b.nextView()
	start := len(b.data)
	for _, ia := range arrays {
		lo, hi := ia.Bounds()
		i, err := b.addAccessor(gltf.Accessor{
			BufferView:    gltf.Index(view),
			ByteOffset:    len(b.data) - start,
			ComponentType: gltf.UnsignedShort,
			Count:         ia.Len(),
			Type:          gltf.Scalar,
			Min:           []float32{float32(lo)},
			Max:           []float32{float32(hi)},
		})
		if err != nil {
			return fmt.Errorf("index array for slot %d: %w", ia.Slot, err)
		}
		b.data = appendIndices(b.data, ia.Indices)
		b.layout.Submeshes = append(b.layout.Submeshes, Submesh{Slot: ia.Slot, Accessor: i})
	}

	// Element array views never carry a byte stride, even when shared.
	return b.addView(gltf.BufferView{
		Buffer:     b.base.Buffer,
		ByteOffset: start,
		ByteLength: len(b.data) - start,
		Target:     gltf.ElementArrayBuffer,
	})
}

func (b *layoutBuilder) planar(codecs []vertexCodec) error {
	var strides []int
	groups := make(map[int][]vertexCodec)
	for _, c := range codecs {
		if _, ok := groups[c.stride]; !ok {
			strides = append(strides, c.stride)
		}
		groups[c.stride] = append(groups[c.stride], c)
	}

	for _, stride := range strides {
		group := groups[stride]
		view := b.nextView()
		start := len(b.data)
		for _, c := range group {
			if err := b.vertexAccessor(c, view, len(b.data)-start); err != nil {
				return err
			}
			b.data = c.appendAll(b.data)
		}

		v := gltf.BufferView{
			Buffer:     b.base.Buffer,
			ByteOffset: start,
			ByteLength: len(b.data) - start,
			Target:     gltf.ArrayBuffer,
		}
		if len(group) > 1 {
			v.ByteStride = stride
		}
		if err := b.addView(v); err != nil {
			return err
		}
	}
	return nil
}

func (b *layoutBuilder) interleaved(codecs []vertexCodec) error {
	view := b.nextView()
	start := len(b.data)

	stride := 0
	for _, c := range codecs {
		if err := b.vertexAccessor(c, view, stride); err != nil {
			return err
		}
		stride += c.stride
	}

	count := codecs[0].count
	for i := 0; i < count; i++ {
		for _, c := range codecs {
			b.data = c.appendElement(b.data, i)
		}
	}

	return b.addView(gltf.BufferView{
		Buffer:     b.base.Buffer,
		ByteOffset: start,
		ByteLength: len(b.data) - start,
		ByteStride: stride,
		Target:     gltf.ArrayBuffer,
	})
}

func (b *layoutBuilder) vertexAccessor(c vertexCodec, view, offset int) error {
	i, err := b.addAccessor(gltf.Accessor{
		BufferView:    gltf.Index(view),
		ByteOffset:    offset,
		ComponentType: gltf.Float,
		Count:         c.count,
		Type:          c.typ,
		Min:           c.min,
		Max:           c.max,
	})
	if err != nil {
		return fmt.Errorf("%s accessor: %w", c.attribute, err)
	}
	b.layout.Attributes[c.attribute] = i
	return nil
}

func (b *layoutBuilder) finish() (*GeometryLayout, error) {
	buffer, err := gltf.NewBuffer(gltf.Buffer{
		ByteLength: len(b.data),
		URI:        DataURIPrefix + base64.StdEncoding.EncodeToString(b.data),
	})
	if err != nil {
		return nil, err
	}

	l := b.layout
	l.Buffer = buffer
	l.data = b.data
	l.Delta = Offset{
		Buffer:     1,
		BufferView: len(l.BufferViews),
		Accessor:   len(l.Accessors),
	}
	return l, nil
}

// DecodeDataURI returns the bytes of an inlined buffer.
func DecodeDataURI(uri string) ([]byte, error) {
	payload, ok := strings.CutPrefix(uri, DataURIPrefix)
	if !ok {
		return nil, fmt.Errorf("%w: not an octet-stream data URI", ErrUnsupportedRepresentation)
	}
	return base64.StdEncoding.DecodeString(payload)
}
