package scene

import (
	"fmt"
	"sort"
)

// GeometryHandle identifies a geometry registered with a Scene.
type GeometryHandle int

// GeometryRef attaches a registered geometry to a node, with one material per
// submesh slot.
type GeometryRef struct {
	Handle    GeometryHandle
	Materials map[int]Material
}

// Slots returns the material slots in ascending order.
func (r *GeometryRef) Slots() []int {
	slots := make([]int, 0, len(r.Materials))
	for slot := range r.Materials {
		slots = append(slots, slot)
	}
	sort.Ints(slots)
	return slots
}

// Node is an element of the scene tree. A node with a Geometry reference is a
// geometry node. Children are owned by their parent.
type Node struct {
	Name       string
	Transforms []Transform
	Children   []*Node
	Geometry   *GeometryRef
}

// NewNode creates a node with the given transforms.
func NewNode(name string, transforms ...Transform) *Node {
	return &Node{Name: name, Transforms: transforms}
}

// AddChild appends a child node and returns n.
func (n *Node) AddChild(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// Scene is an ordered forest of nodes plus the geometries they share.
type Scene struct {
	Roots []*Node

	geometries []*Geometry
	handles    map[*Geometry]GeometryHandle
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{handles: make(map[*Geometry]GeometryHandle)}
}

// AddGeometry registers g and returns its handle. Registering the same
// geometry twice returns the same handle.
func (s *Scene) AddGeometry(g *Geometry) GeometryHandle {
	if s.handles == nil {
		s.handles = make(map[*Geometry]GeometryHandle)
	}
	if h, ok := s.handles[g]; ok {
		return h
	}
	h := GeometryHandle(len(s.geometries))
	s.geometries = append(s.geometries, g)
	s.handles[g] = h
	return h
}

// Geometry returns the geometry registered under h, or nil.
func (s *Scene) Geometry(h GeometryHandle) *Geometry {
	if h < 0 || int(h) >= len(s.geometries) {
		return nil
	}
	return s.geometries[h]
}

// GeometryCount returns the number of registered geometries.
func (s *Scene) GeometryCount() int {
	return len(s.geometries)
}

// Add appends root nodes.
func (s *Scene) Add(nodes ...*Node) {
	s.Roots = append(s.Roots, nodes...)
}

// NewGeometryNode creates a node drawing the geometry under h with the given
// slot materials.
func NewGeometryNode(name string, h GeometryHandle, materials map[int]Material, transforms ...Transform) *Node {
	n := NewNode(name, transforms...)
	n.Geometry = &GeometryRef{Handle: h, Materials: materials}
	return n
}

// AllNodes returns every node in pre-order: a node, then its subtree, then
// its next sibling.
func (s *Scene) AllNodes() []*Node {
	var out []*Node
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			out = append(out, n)
			walk(n.Children)
		}
	}
	walk(s.Roots)
	return out
}

// Validate checks that the nodes form a tree, that matrix transforms are
// affine and that every geometry node references a registered geometry with
// matching material slots. Index-array slots without a material are allowed;
// their primitives are drawn with the default material.
func (s *Scene) Validate() error {
	visited := make(map[*Node]bool)
	var check func(nodes []*Node) error
	check = func(nodes []*Node) error {
		for _, n := range nodes {
			if n == nil {
				return fmt.Errorf("%w: nil node", ErrInvalidTree)
			}
			if visited[n] {
				return fmt.Errorf("%w: node %q is reachable more than once", ErrInvalidTree, n.Name)
			}
			visited[n] = true
			if err := checkTransforms(n); err != nil {
				return err
			}
			if err := s.checkGeometryRef(n); err != nil {
				return err
			}
			if err := check(n.Children); err != nil {
				return err
			}
		}
		return nil
	}
	return check(s.Roots)
}

func (s *Scene) checkGeometryRef(n *Node) error {
	ref := n.Geometry
	if ref == nil {
		return nil
	}
	g := s.Geometry(ref.Handle)
	if g == nil {
		return fmt.Errorf("%w: node %q references unknown geometry %d", ErrInvalidGeometry, n.Name, ref.Handle)
	}

	for _, mesh := range g.Meshes {
		if len(mesh.IndexArrays) == 0 {
			if _, ok := ref.Materials[0]; !ok || len(ref.Materials) != 1 {
				return fmt.Errorf("%w: node %q needs exactly one material at slot 0", ErrMaterialSlots, n.Name)
			}
			continue
		}
		slots := mesh.Slots()
		for slot := range ref.Materials {
			if !slots[slot] {
				return fmt.Errorf("%w: node %q has material for unknown slot %d", ErrMaterialSlots, n.Name, slot)
			}
		}
	}
	return nil
}

func checkTransforms(n *Node) error {
	for i, t := range n.Transforms {
		if m, ok := t.(MatrixTransform); ok && !m.M.IsAffine() {
			return fmt.Errorf("%w: node %q transform %d has a projective bottom row", ErrInvalidTransform, n.Name, i)
		}
	}
	return nil
}
