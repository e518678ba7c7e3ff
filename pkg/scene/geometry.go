package scene

import "fmt"

// Mesh is a set of vertex arrays sharing one vertex count plus zero or more
// index arrays. Without index arrays the vertices are drawn as a plain
// triangle list.
type Mesh struct {
	VertexArrays []VertexArray
	IndexArrays  []IndexArray
}

// NewMesh validates and creates a mesh.
func NewMesh(vertexArrays []VertexArray, indexArrays []IndexArray) (*Mesh, error) {
	if len(vertexArrays) == 0 {
		return nil, fmt.Errorf("%w: no vertex arrays", ErrInvalidMesh)
	}

	seen := make(map[Attribute]bool, len(vertexArrays))
	count := -1
	for _, va := range vertexArrays {
		if va == nil {
			return nil, fmt.Errorf("%w: nil vertex array", ErrInvalidMesh)
		}
		if seen[va.Attribute()] {
			return nil, fmt.Errorf("%w: duplicate %s array", ErrInvalidMesh, va.Attribute())
		}
		seen[va.Attribute()] = true

		if va.Len() == 0 {
			return nil, fmt.Errorf("%w: empty %s array", ErrInvalidMesh, va.Attribute())
		}
		if count >= 0 && va.Len() != count {
			return nil, fmt.Errorf("%w: %s array has %d elements, expected %d",
				ErrInvalidMesh, va.Attribute(), va.Len(), count)
		}
		count = va.Len()
	}

	for i, ia := range indexArrays {
		if ia.Len() == 0 {
			return nil, fmt.Errorf("%w: index array %d is empty", ErrInvalidMesh, i)
		}
		if ia.Slot < 0 {
			return nil, fmt.Errorf("%w: index array %d has negative slot %d", ErrInvalidMesh, i, ia.Slot)
		}
		if _, hi := ia.Bounds(); int(hi) >= count {
			return nil, fmt.Errorf("%w: index array %d references vertex %d of %d", ErrInvalidMesh, i, hi, count)
		}
	}

	return &Mesh{VertexArrays: vertexArrays, IndexArrays: indexArrays}, nil
}

// Slots returns the set of material slots tagged on the index arrays.
func (m *Mesh) Slots() map[int]bool {
	slots := make(map[int]bool, len(m.IndexArrays))
	for _, ia := range m.IndexArrays {
		slots[ia.Slot] = true
	}
	return slots
}

// Geometry is an immutable list of meshes. It is shared by reference: every
// node pointing at the same Geometry reuses its compiled buffers.
type Geometry struct {
	Meshes []*Mesh
}

// NewGeometry creates a geometry. Exactly one mesh is supported.
func NewGeometry(meshes ...*Mesh) (*Geometry, error) {
	if len(meshes) != 1 {
		return nil, fmt.Errorf("%w: expected exactly one mesh, got %d", ErrInvalidGeometry, len(meshes))
	}
	if meshes[0] == nil {
		return nil, fmt.Errorf("%w: nil mesh", ErrInvalidGeometry)
	}
	return &Geometry{Meshes: meshes}, nil
}

// Mesh returns the single mesh.
func (g *Geometry) Mesh() *Mesh {
	return g.Meshes[0]
}
