// Package scenefile reads scene descriptions written in YAML.
//
// A file names its materials and geometries and then lists the node tree.
// Nodes refer to geometries and materials by name; every node naming the
// same geometry shares one scene.Geometry.
//
//	materials:
//	  red: {diffuse: [0.8, 0, 0, 1], twoSided: true, texture: bricks.png}
//	geometries:
//	  tri:
//	    positions: [[0, 0, 0], [1, 0, 0], [0, 1, 0]]
//	    indices: [{slot: 0, triangles: [0, 1, 2]}]
//	nodes:
//	  - name: a
//	    geometry: tri
//	    materials: {0: red}
//	    transforms: [{translate: [1, 0, 0]}, {rotate: {angle: 90, axis: [0, 1, 0]}}]
package scenefile

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/packerman/pcg/pkg/math"
	"github.com/packerman/pcg/pkg/scene"
)

// ErrInvalidScene is returned for descriptions that cannot be built.
var ErrInvalidScene = errors.New("invalid scene description")

// File is the YAML document.
type File struct {
	Materials  map[string]Material `yaml:"materials"`
	Geometries map[string]Geometry `yaml:"geometries"`
	Nodes      []Node              `yaml:"nodes"`
}

// Material describes a scene.Material. Name defaults to the map key and
// Diffuse to opaque white; a three-component diffuse color is opaque.
type Material struct {
	Name     string    `yaml:"name"`
	Diffuse  []float32 `yaml:"diffuse"`
	TwoSided bool      `yaml:"twoSided"`
	Texture  string    `yaml:"texture"`
}

// Geometry holds vertex attributes, in this order, and indexed submeshes.
type Geometry struct {
	Positions [][3]float32 `yaml:"positions"`
	Normals   [][3]float32 `yaml:"normals"`
	TexCoords [][2]float32 `yaml:"texcoords"`
	Indices   []Submesh    `yaml:"indices"`
}

// Submesh is one index array.
type Submesh struct {
	Slot      int      `yaml:"slot"`
	Triangles []uint16 `yaml:"triangles"`
}

// Node describes a node and its subtree.
type Node struct {
	Name       string         `yaml:"name"`
	Geometry   string         `yaml:"geometry"`
	Materials  map[int]string `yaml:"materials"`
	Transforms []Transform    `yaml:"transforms"`
	Children   []Node         `yaml:"children"`
}

// Transform holds exactly one operation.
type Transform struct {
	Translate *[3]float32  `yaml:"translate"`
	Rotate    *Rotate      `yaml:"rotate"`
	Scale     *[3]float32  `yaml:"scale"`
	Matrix    *[16]float32 `yaml:"matrix"`
}

// Rotate is a rotation by Angle degrees around Axis.
type Rotate struct {
	Angle float32    `yaml:"angle"`
	Axis  [3]float32 `yaml:"axis"`
}

// Load reads and builds the scene at path.
func Load(path string) (*scene.Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening scene: %w", err)
	}
	defer f.Close()

	s, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Read decodes a description from r and builds the scene. Unknown keys are
// rejected.
func Read(r io.Reader) (*scene.Scene, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file File
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScene, err)
	}
	return file.Build()
}

// Build converts the description into a validated scene.
func (f *File) Build() (*scene.Scene, error) {
	b := builder{
		file:       f,
		scene:      scene.New(),
		geometries: make(map[string]scene.GeometryHandle),
	}
	for i := range f.Nodes {
		n, err := b.node(&f.Nodes[i])
		if err != nil {
			return nil, err
		}
		b.scene.Add(n)
	}

	if err := b.scene.Validate(); err != nil {
		return nil, err
	}
	return b.scene, nil
}

type builder struct {
	file       *File
	scene      *scene.Scene
	geometries map[string]scene.GeometryHandle
}

func (b *builder) node(spec *Node) (*scene.Node, error) {
	transforms := make([]scene.Transform, 0, len(spec.Transforms))
	for i, t := range spec.Transforms {
		tr, err := t.build()
		if err != nil {
			return nil, fmt.Errorf("node %q transform %d: %w", spec.Name, i, err)
		}
		transforms = append(transforms, tr)
	}

	var n *scene.Node
	switch {
	case spec.Geometry != "":
		h, materials, err := b.geometryRef(spec)
		if err != nil {
			return nil, err
		}
		n = scene.NewGeometryNode(spec.Name, h, materials, transforms...)
	case len(spec.Materials) > 0:
		return nil, fmt.Errorf("%w: node %q has materials but no geometry", ErrInvalidScene, spec.Name)
	default:
		n = scene.NewNode(spec.Name, transforms...)
	}

	for i := range spec.Children {
		child, err := b.node(&spec.Children[i])
		if err != nil {
			return nil, err
		}
		n.AddChild(child)
	}
	return n, nil
}

func (b *builder) geometryRef(spec *Node) (scene.GeometryHandle, map[int]scene.Material, error) {
	h, ok := b.geometries[spec.Geometry]
	if !ok {
		g, found := b.file.Geometries[spec.Geometry]
		if !found {
			return 0, nil, fmt.Errorf("%w: node %q uses unknown geometry %q", ErrInvalidScene, spec.Name, spec.Geometry)
		}
		geometry, err := g.build()
		if err != nil {
			return 0, nil, fmt.Errorf("geometry %q: %w", spec.Geometry, err)
		}
		h = b.scene.AddGeometry(geometry)
		b.geometries[spec.Geometry] = h
	}

	materials := make(map[int]scene.Material, len(spec.Materials))
	for slot, name := range spec.Materials {
		m, ok := b.file.Materials[name]
		if !ok {
			return 0, nil, fmt.Errorf("%w: node %q uses unknown material %q", ErrInvalidScene, spec.Name, name)
		}
		material, err := m.build(name)
		if err != nil {
			return 0, nil, err
		}
		materials[slot] = material
	}
	return h, materials, nil
}

func (m Material) build(key string) (scene.Material, error) {
	out := scene.DefaultMaterial()
	out.Name = m.Name
	if out.Name == "" {
		out.Name = key
	}
	out.TwoSided = m.TwoSided
	out.DiffuseTexture = scene.Texture{FileName: m.Texture}

	switch len(m.Diffuse) {
	case 0:
	case 3:
		out.Diffuse = scene.RGB(m.Diffuse[0], m.Diffuse[1], m.Diffuse[2])
	case 4:
		out.Diffuse = scene.Color{R: m.Diffuse[0], G: m.Diffuse[1], B: m.Diffuse[2], A: m.Diffuse[3]}
	default:
		return scene.Material{}, fmt.Errorf("%w: material %q diffuse needs 3 or 4 components, got %d",
			ErrInvalidScene, key, len(m.Diffuse))
	}
	return out, nil
}

func (g Geometry) build() (*scene.Geometry, error) {
	var arrays []scene.VertexArray
	if len(g.Positions) > 0 {
		arrays = append(arrays, scene.NewFloat3Array(scene.Position, vec3s(g.Positions)...))
	}
	if len(g.Normals) > 0 {
		arrays = append(arrays, scene.NewFloat3Array(scene.Normal, vec3s(g.Normals)...))
	}
	if len(g.TexCoords) > 0 {
		uv := make([]math.Vec2, len(g.TexCoords))
		for i, t := range g.TexCoords {
			uv[i] = math.Vec2{X: t[0], Y: t[1]}
		}
		arrays = append(arrays, scene.NewFloat2Array(scene.TexCoord, uv...))
	}

	indices := make([]scene.IndexArray, 0, len(g.Indices))
	for _, sub := range g.Indices {
		if len(sub.Triangles)%3 != 0 {
			return nil, fmt.Errorf("%w: slot %d has %d indices, not whole triangles",
				ErrInvalidScene, sub.Slot, len(sub.Triangles))
		}
		indices = append(indices, scene.IndexArray{Slot: sub.Slot, Indices: sub.Triangles})
	}

	mesh, err := scene.NewMesh(arrays, indices)
	if err != nil {
		return nil, err
	}
	return scene.NewGeometry(mesh)
}

func vec3s(values [][3]float32) []math.Vec3 {
	out := make([]math.Vec3, len(values))
	for i, v := range values {
		out[i] = math.Vec3{X: v[0], Y: v[1], Z: v[2]}
	}
	return out
}

func (t Transform) build() (scene.Transform, error) {
	var ops []scene.Transform
	if t.Translate != nil {
		ops = append(ops, scene.Translation{X: t.Translate[0], Y: t.Translate[1], Z: t.Translate[2]})
	}
	if t.Rotate != nil {
		axis := math.Vec3{X: t.Rotate.Axis[0], Y: t.Rotate.Axis[1], Z: t.Rotate.Axis[2]}
		if axis.Length() == 0 {
			return nil, fmt.Errorf("%w: rotation axis is zero", ErrInvalidScene)
		}
		ops = append(ops, scene.Rotation{AngleDegrees: t.Rotate.Angle, Axis: axis})
	}
	if t.Scale != nil {
		ops = append(ops, scene.Scale{X: t.Scale[0], Y: t.Scale[1], Z: t.Scale[2]})
	}
	if t.Matrix != nil {
		ops = append(ops, scene.MatrixTransform{M: math.Mat4(*t.Matrix)})
	}

	if len(ops) != 1 {
		return nil, fmt.Errorf("%w: a transform needs exactly one of translate, rotate, scale, matrix; got %d",
			ErrInvalidScene, len(ops))
	}
	return ops[0], nil
}
