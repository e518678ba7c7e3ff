package compile

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/packerman/pcg/pkg/gltf"
	"github.com/packerman/pcg/pkg/math"
	"github.com/packerman/pcg/pkg/scene"
)

var (
	red   = scene.Material{Name: "red", Diffuse: scene.RGB(1, 0, 0)}
	green = scene.Material{Name: "green", Diffuse: scene.RGB(0, 1, 0), TwoSided: true}
)

func compileScene(t *testing.T, s *scene.Scene, opts Options) *gltf.Document {
	t.Helper()
	opts.Logger = zaptest.NewLogger(t)
	doc, err := Compile(s, opts)
	require.NoError(t, err)
	return doc
}

func TestCompile_SingleTriangle(t *testing.T) {
	s := scene.New()
	h := s.AddGeometry(triangle(t, false))
	s.Add(scene.NewGeometryNode("tri", h, map[int]scene.Material{0: red}))

	doc := compileScene(t, s, Options{})

	assert.Equal(t, gltf.Asset{Version: "2.0", Generator: DefaultGenerator}, doc.Asset)
	require.NotNil(t, doc.Scene)
	assert.Equal(t, 0, *doc.Scene)
	assert.Equal(t, []gltf.Scene{{Nodes: []int{0}}}, doc.Scenes)

	require.Len(t, doc.Nodes, 1)
	node := doc.Nodes[0]
	assert.Equal(t, "tri", node.Name)
	assert.Equal(t, 0, *node.Mesh)
	assert.Nil(t, node.Matrix)
	assert.Nil(t, node.Translation)
	assert.Nil(t, node.Rotation)
	assert.Nil(t, node.Scale)

	require.Len(t, doc.Meshes, 1)
	require.Len(t, doc.Meshes[0].Primitives, 1)
	p := doc.Meshes[0].Primitives[0]
	assert.Nil(t, p.Indices)
	assert.Equal(t, 0, *p.Material)
	assert.Equal(t, map[gltf.Attribute]int{gltf.POSITION: 0}, p.Attributes)

	assert.Len(t, doc.Accessors, 1)
	assert.Len(t, doc.BufferViews, 1)
	require.Len(t, doc.Buffers, 1)
	assert.Equal(t, 36, doc.Buffers[0].ByteLength)

	assert.Nil(t, doc.Textures)
	assert.Nil(t, doc.Images)
	assert.Nil(t, doc.Samplers)
}

func TestCompile_MaterialEncoding(t *testing.T) {
	s := scene.New()
	h := s.AddGeometry(triangle(t, false))
	s.Add(
		scene.NewGeometryNode("a", h, map[int]scene.Material{0: red}),
		scene.NewGeometryNode("b", h, map[int]scene.Material{0: scene.DefaultMaterial()}),
		scene.NewGeometryNode("c", h, map[int]scene.Material{0: green}),
	)

	doc := compileScene(t, s, Options{})
	data, err := json.Marshal(doc.Materials)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"name": "red", "pbrMetallicRoughness": {"baseColorFactor": [1, 0, 0, 1], "metallicFactor": 0}},
		{"pbrMetallicRoughness": {"metallicFactor": 0}},
		{"name": "green", "pbrMetallicRoughness": {"baseColorFactor": [0, 1, 0, 1], "metallicFactor": 0}, "doubleSided": true}
	]`, string(data))
}

func TestCompile_MeshDeduplication(t *testing.T) {
	s := scene.New()
	h := s.AddGeometry(triangle(t, true))
	s.Add(
		scene.NewGeometryNode("a", h, map[int]scene.Material{0: red}),
		scene.NewGeometryNode("b", h, map[int]scene.Material{0: red}, scene.Translation{X: 2}),
		scene.NewGeometryNode("c", h, map[int]scene.Material{0: green}),
	)

	doc := compileScene(t, s, Options{})

	assert.Len(t, doc.Meshes, 2)
	assert.Equal(t, 0, *doc.Nodes[0].Mesh)
	assert.Equal(t, 0, *doc.Nodes[1].Mesh)
	assert.Equal(t, 1, *doc.Nodes[2].Mesh)
	assert.Len(t, doc.Materials, 2)
	// Shared geometry is laid out once.
	assert.Len(t, doc.Buffers, 1)
}

func TestCompile_TwoGeometries(t *testing.T) {
	s := scene.New()
	first := s.AddGeometry(triangle(t, true))
	second := s.AddGeometry(fullTriangle(t))
	s.Add(
		scene.NewGeometryNode("first", first, map[int]scene.Material{0: red}),
		scene.NewGeometryNode("second", second, map[int]scene.Material{0: red, 1: green}),
	)

	doc := compileScene(t, s, Options{})

	require.Len(t, doc.Buffers, 2)
	assert.Len(t, doc.BufferViews, 2+3)
	assert.Len(t, doc.Accessors, 2+5)

	for i, v := range doc.BufferViews {
		want := 0
		if i >= 2 {
			want = 1
		}
		assert.Equal(t, want, v.Buffer, "bufferView %d", i)
	}
	for i, a := range doc.Accessors[2:] {
		assert.GreaterOrEqual(t, *a.BufferView, 2, "accessor %d", i+2)
	}

	second0 := doc.Meshes[1].Primitives[0]
	assert.Equal(t, 2, *second0.Indices)
	assert.Equal(t, map[gltf.Attribute]int{gltf.POSITION: 4, gltf.NORMAL: 5, gltf.TEXCOORD_0: 6}, second0.Attributes)
	assert.Equal(t, 3, *doc.Meshes[1].Primitives[1].Indices)
	assert.Equal(t, 1, *doc.Meshes[1].Primitives[1].Material)
}

func TestCompile_Hierarchy(t *testing.T) {
	s := scene.New()
	h := s.AddGeometry(triangle(t, false))

	leaf := scene.NewGeometryNode("leaf", h, map[int]scene.Material{0: red})
	root := scene.NewNode("root", scene.Translation{X: 1}, scene.Rotation{AngleDegrees: 90, Axis: math.AxisY}).
		AddChild(scene.NewNode("left").AddChild(leaf), scene.NewNode("right"))
	s.Add(root, scene.NewNode("other", scene.Rotation{AngleDegrees: 90, Axis: math.AxisY}, scene.Translation{X: 1}))

	doc := compileScene(t, s, Options{})

	names := make([]string, len(doc.Nodes))
	for i, n := range doc.Nodes {
		names[i] = n.Name
	}
	assert.Equal(t, []string{"root", "left", "leaf", "right", "other"}, names)
	assert.Equal(t, []int{1, 3}, doc.Nodes[0].Children)
	assert.Equal(t, []int{2}, doc.Nodes[1].Children)
	assert.Nil(t, doc.Nodes[3].Children)
	assert.Equal(t, []int{0, 4}, doc.Scenes[0].Nodes)

	require.NotNil(t, doc.Nodes[0].Translation)
	require.NotNil(t, doc.Nodes[0].Rotation)
	assert.Nil(t, doc.Nodes[0].Matrix)
	require.NotNil(t, doc.Nodes[4].Matrix)
	assert.Nil(t, doc.Nodes[4].Translation)
}

func TestCompile_Textures(t *testing.T) {
	bricks := scene.Texture{FileName: "bricks.png"}
	wall := scene.Material{Name: "wall", Diffuse: scene.White, DiffuseTexture: bricks}
	floor := scene.Material{Name: "floor", Diffuse: scene.RGB(0.5, 0.5, 0.5), DiffuseTexture: bricks}

	var loaded []string
	loader := TextureLoaderFunc(func(tex scene.Texture) (TextureData, error) {
		loaded = append(loaded, tex.FileName)
		return TextureData{
			Image:   gltf.Image{URI: "data:image/png;base64,AAAA"},
			Sampler: DefaultSampler(),
		}, nil
	})

	s := scene.New()
	h := s.AddGeometry(fullTriangle(t))
	s.Add(scene.NewGeometryNode("n", h, map[int]scene.Material{0: wall, 1: floor}))

	doc := compileScene(t, s, Options{Textures: loader})

	assert.Equal(t, []string{"bricks.png"}, loaded)
	assert.Len(t, doc.Images, 1)
	require.Len(t, doc.Samplers, 1)
	assert.Equal(t, gltf.Sampler{MagFilter: gltf.Linear, MinFilter: gltf.NearestMipmapLinear}, doc.Samplers[0])
	require.Len(t, doc.Textures, 1)
	assert.Equal(t, gltf.Texture{Sampler: gltf.Index(0), Source: gltf.Index(0)}, doc.Textures[0])

	require.Len(t, doc.Materials, 2)
	for _, m := range doc.Materials {
		require.NotNil(t, m.PBRMetallicRoughness.BaseColorTexture)
		assert.Equal(t, 0, m.PBRMetallicRoughness.BaseColorTexture.Index)
	}
}

func TestCompile_TextureErrors(t *testing.T) {
	s := scene.New()
	h := s.AddGeometry(triangle(t, false))
	s.Add(scene.NewGeometryNode("n", h, map[int]scene.Material{
		0: {DiffuseTexture: scene.Texture{FileName: "missing.png"}},
	}))

	_, err := Compile(s, Options{})
	assert.ErrorIs(t, err, ErrResourceNotFound)

	boom := errors.New("boom")
	_, err = Compile(s, Options{Textures: TextureLoaderFunc(func(scene.Texture) (TextureData, error) {
		return TextureData{}, boom
	})})
	assert.ErrorIs(t, err, boom)
}

func TestCompile_InvalidScene(t *testing.T) {
	s := scene.New()
	h := s.AddGeometry(triangle(t, true))
	s.Add(scene.NewGeometryNode("n", h, map[int]scene.Material{1: red}))

	doc, err := Compile(s, Options{})
	assert.ErrorIs(t, err, scene.ErrMaterialSlots)
	assert.Nil(t, doc)
}

func TestCompile_SlotTags(t *testing.T) {
	mesh, err := scene.NewMesh(
		[]scene.VertexArray{scene.NewFloat3Array(scene.Position, trianglePositions...)},
		[]scene.IndexArray{scene.Triangles(1, [3]uint16{0, 1, 2})},
	)
	require.NoError(t, err)
	tagged, err := scene.NewGeometry(mesh)
	require.NoError(t, err)

	s := scene.New()
	h := s.AddGeometry(tagged)
	s.Add(scene.NewGeometryNode("tagged", h, map[int]scene.Material{1: red}))

	doc := compileScene(t, s, Options{})

	require.Len(t, doc.Meshes, 1)
	require.Len(t, doc.Meshes[0].Primitives, 1)
	p := doc.Meshes[0].Primitives[0]
	require.NotNil(t, p.Material)
	assert.Equal(t, 0, *p.Material)
	assert.Equal(t, "red", doc.Materials[0].Name)

	for _, materials := range []map[int]scene.Material{{0: red}, {0: red, 1: red}} {
		s := scene.New()
		h := s.AddGeometry(tagged)
		s.Add(scene.NewGeometryNode("tagged", h, materials))
		_, err := Compile(s, Options{})
		assert.ErrorIs(t, err, scene.ErrMaterialSlots, "materials %v", materials)
	}
}

func TestCompile_UnmappedSlot(t *testing.T) {
	s := scene.New()
	h := s.AddGeometry(fullTriangle(t))
	s.Add(scene.NewGeometryNode("n", h, map[int]scene.Material{1: green}))

	doc := compileScene(t, s, Options{})

	require.Len(t, doc.Meshes[0].Primitives, 2)
	assert.Nil(t, doc.Meshes[0].Primitives[0].Material)
	require.NotNil(t, doc.Meshes[0].Primitives[1].Material)
	assert.Equal(t, 0, *doc.Meshes[0].Primitives[1].Material)
	assert.Len(t, doc.Materials, 1)
}

func TestCompile_EmptyScene(t *testing.T) {
	doc := compileScene(t, scene.New(), Options{Generator: "test"})

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"asset": {"version": "2.0", "generator": "test"}}`, string(data))
}

func TestCompile_Interleaved(t *testing.T) {
	s := scene.New()
	h := s.AddGeometry(fullTriangle(t))
	s.Add(scene.NewGeometryNode("n", h, map[int]scene.Material{0: red, 1: red}))

	doc := compileScene(t, s, Options{Interleaved: true})

	require.Len(t, doc.BufferViews, 2)
	assert.Equal(t, 32, doc.BufferViews[1].ByteStride)
	assert.Len(t, doc.Materials, 1)
	assert.Len(t, doc.Meshes[0].Primitives, 2)
}

func TestCompile_Deterministic(t *testing.T) {
	build := func() *scene.Scene {
		s := scene.New()
		h := s.AddGeometry(fullTriangle(t))
		s.Add(
			scene.NewGeometryNode("a", h, map[int]scene.Material{0: red, 1: green}),
			scene.NewGeometryNode("b", h, map[int]scene.Material{0: green, 1: red}),
		)
		return s
	}

	first, err := json.Marshal(compileScene(t, build(), Options{}))
	require.NoError(t, err)
	second, err := json.Marshal(compileScene(t, build(), Options{}))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}
