package compile

import (
	"fmt"
	"maps"

	"go.uber.org/zap"

	"github.com/packerman/pcg/pkg/gltf"
	"github.com/packerman/pcg/pkg/scene"
)

// DefaultGenerator is written to asset.generator when Options leaves it empty.
const DefaultGenerator = "pcg"

// Options configures a compile.
type Options struct {
	// Interleaved stores vertex attributes vertex-major in one strided view.
	Interleaved bool

	// Textures loads diffuse textures. Required only when a material has one.
	Textures TextureLoader

	Generator string
	Logger    *zap.Logger
}

// Compile converts s into a validated glTF document. It does not modify s and
// keeps no state between calls, so separate scenes may be compiled
// concurrently.
func Compile(s *scene.Scene, opts Options) (*gltf.Document, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	c := newCompiler(s, opts)
	if err := c.compile(); err != nil {
		return nil, err
	}
	return c.document()
}

type compiler struct {
	scene *scene.Scene
	opts  Options
	log   *zap.Logger
	flat  flatScene

	layouts   map[scene.GeometryHandle]*GeometryLayout
	offset    Offset
	textures  map[scene.Texture]int
	materials map[scene.Material]int

	accessors   []gltf.Accessor
	bufferViews []gltf.BufferView
	buffers     []gltf.Buffer
	images      []gltf.Image
	docTextures []gltf.Texture
	samplers    *Interner[gltf.Sampler]
	docMats     *Interner[gltf.Material]
	meshes      *Interner[gltf.Mesh]
	nodes       []gltf.Node
}

func newCompiler(s *scene.Scene, opts Options) *compiler {
	if opts.Textures == nil {
		opts.Textures = noTextures{}
	}
	if opts.Generator == "" {
		opts.Generator = DefaultGenerator
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &compiler{
		scene:     s,
		opts:      opts,
		log:       log,
		layouts:   make(map[scene.GeometryHandle]*GeometryLayout),
		textures:  make(map[scene.Texture]int),
		materials: make(map[scene.Material]int),
		samplers:  NewInterner[gltf.Sampler](),
		docMats:   NewInterner[gltf.Material](),
		meshes:    NewInterner[gltf.Mesh](),
	}
}

func (c *compiler) compile() error {
	c.flat = flatten(c.scene)
	c.log.Debug("flattened scene",
		zap.Int("nodes", len(c.flat.nodes)),
		zap.Int("roots", len(c.flat.roots)),
		zap.Int("geometries", c.scene.GeometryCount()))

	steps := []struct {
		name string
		fn   func() error
	}{
		{"geometry", c.compileGeometries},
		{"material", c.compileMaterials},
		{"node", c.compileNodes},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			return fmt.Errorf("compiling %s: %w", step.name, err)
		}
	}
	return nil
}

func (c *compiler) geometryNodes() []*scene.Node {
	var out []*scene.Node
	for _, n := range c.flat.nodes {
		if n.Geometry != nil {
			out = append(out, n)
		}
	}
	return out
}

// compileGeometries lays out every referenced geometry once, in first-seen
// order, each into its own buffer.
func (c *compiler) compileGeometries() error {
	for _, n := range c.geometryNodes() {
		h := n.Geometry.Handle
		if _, ok := c.layouts[h]; ok {
			continue
		}

		layout, err := LayoutGeometry(c.scene.Geometry(h), c.offset, c.opts.Interleaved)
		if err != nil {
			return fmt.Errorf("geometry %d of node %q: %w", h, n.Name, err)
		}
		c.log.Debug("laid out geometry",
			zap.Int("handle", int(h)),
			zap.Int("buffer", c.offset.Buffer),
			zap.Int("byteLength", layout.Buffer.ByteLength),
			zap.Int("accessors", len(layout.Accessors)),
			zap.Bool("interleaved", c.opts.Interleaved))

		c.layouts[h] = layout
		c.offset = c.offset.Add(layout.Delta)
		c.accessors = append(c.accessors, layout.Accessors...)
		c.bufferViews = append(c.bufferViews, layout.BufferViews...)
		c.buffers = append(c.buffers, layout.Buffer)
	}
	return nil
}

// compileMaterials compiles materials in traversal order, slots ascending
// within a node. Textures are loaded on first use.
func (c *compiler) compileMaterials() error {
	for _, n := range c.geometryNodes() {
		for _, slot := range n.Geometry.Slots() {
			m := n.Geometry.Materials[slot]
			if _, ok := c.materials[m]; ok {
				continue
			}

			var texture *int
			if !m.DiffuseTexture.IsZero() {
				i, err := c.texture(m.DiffuseTexture)
				if err != nil {
					return fmt.Errorf("material %q: %w", m.Name, err)
				}
				texture = gltf.Index(i)
			}

			compiled, err := CompileMaterial(m, texture)
			if err != nil {
				return fmt.Errorf("material %q: %w", m.Name, err)
			}
			i, err := c.docMats.Intern(compiled)
			if err != nil {
				return err
			}
			c.materials[m] = i
		}
	}
	return nil
}

func (c *compiler) texture(t scene.Texture) (int, error) {
	if i, ok := c.textures[t]; ok {
		return i, nil
	}

	data, err := c.opts.Textures.LoadTexture(t)
	if err != nil {
		return 0, err
	}
	image, err := gltf.NewImage(data.Image)
	if err != nil {
		return 0, fmt.Errorf("texture %s: %w", t.FileName, err)
	}
	sampler, err := c.samplers.Intern(data.Sampler)
	if err != nil {
		return 0, err
	}

	c.images = append(c.images, image)
	c.docTextures = append(c.docTextures, gltf.Texture{
		Sampler: gltf.Index(sampler),
		Source:  gltf.Index(len(c.images) - 1),
	})
	i := len(c.docTextures) - 1
	c.textures[t] = i
	c.log.Debug("loaded texture", zap.String("file", t.FileName), zap.Int("index", i))
	return i, nil
}

func (c *compiler) mesh(ref *scene.GeometryRef) (int, error) {
	layout := c.layouts[ref.Handle]

	var primitives []gltf.Primitive
	if len(layout.Submeshes) == 0 {
		primitives = append(primitives, gltf.Primitive{
			Attributes: maps.Clone(layout.Attributes),
			Material:   gltf.Index(c.materials[ref.Materials[0]]),
		})
	}
	for _, sub := range layout.Submeshes {
		p := gltf.Primitive{
			Attributes: maps.Clone(layout.Attributes),
			Indices:    gltf.Index(sub.Accessor),
		}
		// Slots without a material use the glTF default material.
		if m, ok := ref.Materials[sub.Slot]; ok {
			p.Material = gltf.Index(c.materials[m])
		}
		primitives = append(primitives, p)
	}

	mesh, err := gltf.NewMesh(gltf.Mesh{Primitives: primitives})
	if err != nil {
		return 0, err
	}
	return c.meshes.Intern(mesh)
}

func (c *compiler) compileNodes() error {
	c.nodes = make([]gltf.Node, 0, len(c.flat.nodes))
	for i, n := range c.flat.nodes {
		tr := CompileTransform(n.Transforms)
		node := gltf.Node{
			Name:        n.Name,
			Children:    c.flat.children[i],
			Matrix:      tr.Matrix,
			Translation: tr.Translation,
			Rotation:    tr.Rotation,
			Scale:       tr.Scale,
		}
		if n.Geometry != nil {
			m, err := c.mesh(n.Geometry)
			if err != nil {
				return fmt.Errorf("node %q: %w", n.Name, err)
			}
			node.Mesh = gltf.Index(m)
		}

		node, err := gltf.NewNode(node)
		if err != nil {
			return fmt.Errorf("node %q: %w", n.Name, err)
		}
		c.nodes = append(c.nodes, node)
	}
	return nil
}

func (c *compiler) document() (*gltf.Document, error) {
	d := gltf.Document{
		Asset:       gltf.Asset{Version: "2.0", Generator: c.opts.Generator},
		Nodes:       nilIfEmpty(c.nodes),
		Meshes:      c.meshes.Values(),
		Materials:   c.docMats.Values(),
		Accessors:   nilIfEmpty(c.accessors),
		BufferViews: nilIfEmpty(c.bufferViews),
		Buffers:     nilIfEmpty(c.buffers),
		Textures:    nilIfEmpty(c.docTextures),
		Images:      nilIfEmpty(c.images),
		Samplers:    c.samplers.Values(),
	}
	if len(c.flat.roots) > 0 {
		sc, err := gltf.NewScene(gltf.Scene{Nodes: c.flat.roots})
		if err != nil {
			return nil, err
		}
		d.Scenes = []gltf.Scene{sc}
		d.Scene = gltf.Index(0)
	}

	doc, err := gltf.NewDocument(d)
	if err != nil {
		return nil, err
	}
	c.log.Info("compiled scene",
		zap.Int("nodes", len(d.Nodes)),
		zap.Int("meshes", len(d.Meshes)),
		zap.Int("materials", len(d.Materials)),
		zap.Int("buffers", len(d.Buffers)),
		zap.Int("textures", len(d.Textures)))
	return doc, nil
}

func nilIfEmpty[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return s
}
