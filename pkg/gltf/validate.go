package gltf

import (
	"errors"
	"fmt"
)

// ErrInvariant is returned when a value would break a structural rule of
// the glTF format.
var ErrInvariant = errors.New("glTF invariant violation")

func invariant(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...))
}

func requireNotEmpty[T any](list []T, name string) error {
	if list != nil && len(list) == 0 {
		return invariant("'%s' has to be not empty", name)
	}
	return nil
}

func requireInRange[T any](i int, list []T, name string) error {
	if i < 0 || i >= len(list) {
		return invariant("'%s' index %d is out of range [0, %d)", name, i, len(list))
	}
	return nil
}

// NewAccessor validates an accessor.
func NewAccessor(a Accessor) (Accessor, error) {
	return a, a.validate()
}

func (a Accessor) validate() error {
	size := a.ComponentType.Size()
	if size == 0 {
		return invariant("unknown component type %d", int(a.ComponentType))
	}
	n := a.Type.Components()
	if n == 0 {
		return invariant("unknown accessor type %q", string(a.Type))
	}
	if a.Count <= 0 {
		return invariant("accessor count %d has to be positive", a.Count)
	}
	if a.ByteOffset < 0 || a.ByteOffset%size != 0 {
		return invariant("accessor byteOffset %d is not a multiple of component size %d", a.ByteOffset, size)
	}
	if a.Max != nil && len(a.Max) != n {
		return invariant("accessor max has %d values, %s needs %d", len(a.Max), a.Type, n)
	}
	if a.Min != nil && len(a.Min) != n {
		return invariant("accessor min has %d values, %s needs %d", len(a.Min), a.Type, n)
	}
	return nil
}

// NewBufferView validates a buffer view.
func NewBufferView(v BufferView) (BufferView, error) {
	return v, v.validate()
}

func (v BufferView) validate() error {
	if v.ByteLength <= 0 {
		return invariant("bufferView byteLength %d has to be positive", v.ByteLength)
	}
	if v.ByteOffset < 0 {
		return invariant("bufferView byteOffset %d is negative", v.ByteOffset)
	}
	if v.ByteStride != 0 && (v.ByteStride < 4 || v.ByteStride > 252 || v.ByteStride%4 != 0) {
		return invariant("bufferView byteStride %d has to be a multiple of 4 in [4, 252]", v.ByteStride)
	}
	switch v.Target {
	case 0, ArrayBuffer, ElementArrayBuffer:
	default:
		return invariant("unknown bufferView target %d", int(v.Target))
	}
	return nil
}

// NewBuffer validates a buffer.
func NewBuffer(b Buffer) (Buffer, error) {
	return b, b.validate()
}

func (b Buffer) validate() error {
	if b.ByteLength <= 0 {
		return invariant("buffer byteLength %d has to be positive", b.ByteLength)
	}
	if b.URI == "" {
		return invariant("buffer uri is required")
	}
	return nil
}

func (p Primitive) validate() error {
	if len(p.Attributes) == 0 {
		return invariant("'attributes' has to be not empty")
	}
	return nil
}

// NewMesh validates a mesh and its primitives.
func NewMesh(m Mesh) (Mesh, error) {
	return m, m.validate()
}

func (m Mesh) validate() error {
	if len(m.Primitives) == 0 {
		return invariant("'primitives' has to be not empty")
	}
	for i, p := range m.Primitives {
		if err := p.validate(); err != nil {
			return fmt.Errorf("primitives[%d]: %w", i, err)
		}
	}
	return nil
}

// NewNode validates a node.
func NewNode(n Node) (Node, error) {
	return n, n.validate()
}

func (n Node) validate() error {
	if err := requireNotEmpty(n.Children, "children"); err != nil {
		return err
	}
	if n.Matrix != nil && (n.Translation != nil || n.Rotation != nil || n.Scale != nil) {
		return invariant("node %q declares both matrix and translation/rotation/scale", n.Name)
	}
	return nil
}

// NewMaterial validates a material.
func NewMaterial(m Material) (Material, error) {
	return m, m.validate()
}

func (m Material) validate() error {
	pbr := m.PBRMetallicRoughness
	if pbr == nil {
		return nil
	}
	if f := pbr.BaseColorFactor; f != nil {
		for i, c := range f {
			if !inUnitRange(c) {
				return invariant("baseColorFactor[%d] = %v is outside [0, 1]", i, c)
			}
		}
	}
	if f := pbr.MetallicFactor; f != nil && !inUnitRange(*f) {
		return invariant("metallicFactor %v is outside [0, 1]", *f)
	}
	if f := pbr.RoughnessFactor; f != nil && !inUnitRange(*f) {
		return invariant("roughnessFactor %v is outside [0, 1]", *f)
	}
	return nil
}

// inUnitRange is false for NaN.
func inUnitRange(f float32) bool {
	return f >= 0 && f <= 1
}

// NewScene validates a scene.
func NewScene(s Scene) (Scene, error) {
	return s, requireNotEmpty(s.Nodes, "nodes")
}

// NewImage validates an image.
func NewImage(img Image) (Image, error) {
	if img.URI == "" {
		return img, invariant("image uri is required")
	}
	return img, nil
}

// NewSampler creates a sampler, dropping fields equal to the format default.
func NewSampler(mag, min Filter, wrapS, wrapT Wrap) Sampler {
	if wrapS == Repeat {
		wrapS = 0
	}
	if wrapT == Repeat {
		wrapT = 0
	}
	return Sampler{MagFilter: mag, MinFilter: min, WrapS: wrapS, WrapT: wrapT}
}

// NewDocument validates every nested value and every cross-reference of d.
func NewDocument(d Document) (*Document, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Validate checks the whole document.
func (d *Document) Validate() error {
	if d.Asset.Version == "" {
		return invariant("asset version is required")
	}
	for _, check := range []func() error{
		func() error { return requireNotEmpty(d.Scenes, "scenes") },
		func() error { return requireNotEmpty(d.Nodes, "nodes") },
		func() error { return requireNotEmpty(d.Meshes, "meshes") },
		func() error { return requireNotEmpty(d.Materials, "materials") },
		func() error { return requireNotEmpty(d.Accessors, "accessors") },
		func() error { return requireNotEmpty(d.BufferViews, "bufferViews") },
		func() error { return requireNotEmpty(d.Buffers, "buffers") },
		func() error { return requireNotEmpty(d.Textures, "textures") },
		func() error { return requireNotEmpty(d.Images, "images") },
		func() error { return requireNotEmpty(d.Samplers, "samplers") },
		d.validateBuffers,
		d.validateAccessors,
		d.validateMeshes,
		d.validateMaterials,
		d.validateNodes,
		d.validateScenes,
		d.validateTextures,
	} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (d *Document) validateBuffers() error {
	for i, b := range d.Buffers {
		if err := b.validate(); err != nil {
			return fmt.Errorf("buffers[%d]: %w", i, err)
		}
	}
	for i, v := range d.BufferViews {
		if err := v.validate(); err != nil {
			return fmt.Errorf("bufferViews[%d]: %w", i, err)
		}
		if err := requireInRange(v.Buffer, d.Buffers, "buffer"); err != nil {
			return fmt.Errorf("bufferViews[%d]: %w", i, err)
		}
		if end := v.ByteOffset + v.ByteLength; end > d.Buffers[v.Buffer].ByteLength {
			return invariant("bufferViews[%d] ends at byte %d past buffer length %d",
				i, end, d.Buffers[v.Buffer].ByteLength)
		}
	}
	return nil
}

func (d *Document) validateAccessors() error {
	users := make(map[int]int)
	for i, a := range d.Accessors {
		if err := a.validate(); err != nil {
			return fmt.Errorf("accessors[%d]: %w", i, err)
		}
		if a.BufferView == nil {
			continue
		}
		if err := requireInRange(*a.BufferView, d.BufferViews, "bufferView"); err != nil {
			return fmt.Errorf("accessors[%d]: %w", i, err)
		}
		users[*a.BufferView]++

		view := d.BufferViews[*a.BufferView]
		stride := view.ByteStride
		if stride == 0 {
			stride = a.ElementSize()
		}
		if end := a.ByteOffset + (a.Count-1)*stride + a.ElementSize(); end > view.ByteLength {
			return invariant("accessors[%d] ends at byte %d past bufferView length %d", i, end, view.ByteLength)
		}
	}
	for viewIndex, count := range users {
		view := d.BufferViews[viewIndex]
		if count > 1 && view.Target == ArrayBuffer && view.ByteStride == 0 {
			return invariant("bufferViews[%d] is used by %d accessors, byteStride must be defined", viewIndex, count)
		}
	}
	return nil
}

func (d *Document) validateMeshes() error {
	for i, m := range d.Meshes {
		if err := m.validate(); err != nil {
			return fmt.Errorf("meshes[%d]: %w", i, err)
		}
		for j, p := range m.Primitives {
			if p.Indices != nil {
				if err := requireInRange(*p.Indices, d.Accessors, "indices"); err != nil {
					return fmt.Errorf("meshes[%d].primitives[%d]: %w", i, j, err)
				}
			}
			for attribute, accessor := range p.Attributes {
				if err := requireInRange(accessor, d.Accessors, string(attribute)); err != nil {
					return fmt.Errorf("meshes[%d].primitives[%d]: %w", i, j, err)
				}
			}
			if p.Material != nil {
				if err := requireInRange(*p.Material, d.Materials, "material"); err != nil {
					return fmt.Errorf("meshes[%d].primitives[%d]: %w", i, j, err)
				}
			}
		}
	}
	return nil
}

func (d *Document) validateMaterials() error {
	for i, m := range d.Materials {
		if err := m.validate(); err != nil {
			return fmt.Errorf("materials[%d]: %w", i, err)
		}
		if pbr := m.PBRMetallicRoughness; pbr != nil && pbr.BaseColorTexture != nil {
			if err := requireInRange(pbr.BaseColorTexture.Index, d.Textures, "baseColorTexture"); err != nil {
				return fmt.Errorf("materials[%d]: %w", i, err)
			}
		}
	}
	return nil
}

func (d *Document) validateNodes() error {
	for i, n := range d.Nodes {
		if err := n.validate(); err != nil {
			return fmt.Errorf("nodes[%d]: %w", i, err)
		}
		for _, child := range n.Children {
			if err := requireInRange(child, d.Nodes, "child"); err != nil {
				return fmt.Errorf("nodes[%d]: %w", i, err)
			}
		}
		if n.Mesh != nil {
			if err := requireInRange(*n.Mesh, d.Meshes, "mesh"); err != nil {
				return fmt.Errorf("nodes[%d]: %w", i, err)
			}
		}
	}
	return nil
}

func (d *Document) validateScenes() error {
	for i, s := range d.Scenes {
		if err := requireNotEmpty(s.Nodes, "nodes"); err != nil {
			return fmt.Errorf("scenes[%d]: %w", i, err)
		}
		for _, n := range s.Nodes {
			if err := requireInRange(n, d.Nodes, "node"); err != nil {
				return fmt.Errorf("scenes[%d]: %w", i, err)
			}
		}
	}
	if d.Scene != nil {
		return requireInRange(*d.Scene, d.Scenes, "scene")
	}
	return nil
}

func (d *Document) validateTextures() error {
	for i, img := range d.Images {
		if img.URI == "" {
			return invariant("images[%d] uri is required", i)
		}
	}
	for i, t := range d.Textures {
		if t.Sampler != nil {
			if err := requireInRange(*t.Sampler, d.Samplers, "sampler"); err != nil {
				return fmt.Errorf("textures[%d]: %w", i, err)
			}
		}
		if t.Source != nil {
			if err := requireInRange(*t.Source, d.Images, "source"); err != nil {
				return fmt.Errorf("textures[%d]: %w", i, err)
			}
		}
	}
	return nil
}
