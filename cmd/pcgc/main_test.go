package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	qgltf "github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/packerman/pcg/internal/config"
)

const quad = `
materials:
  grey: {diffuse: [0.5, 0.5, 0.5]}
geometries:
  quad:
    positions: [[0, 0, 0], [1, 0, 0], [1, 1, 0], [0, 1, 0]]
    normals: [[0, 0, 1], [0, 0, 1], [0, 0, 1], [0, 0, 1]]
    indices: [{slot: 0, triangles: [0, 1, 2, 0, 2, 3]}]
nodes:
  - name: floor
    geometry: quad
    materials: {0: grey}
    transforms: [{scale: [10, 10, 1]}]
`

func writeScene(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(quad), 0o644))
	return path
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		scene string
		out   config.OutputConfig
		want  string
	}{
		{"scenes/level.yaml", config.OutputConfig{}, filepath.Join("scenes", "level.gltf")},
		{"scenes/level.yaml", config.OutputConfig{Binary: true}, filepath.Join("scenes", "level.glb")},
		{"scenes/level.yaml", config.OutputConfig{Dir: "build"}, filepath.Join("build", "level.gltf")},
		{"level", config.OutputConfig{Dir: "build", Binary: true}, filepath.Join("build", "level.glb")},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, outputPath(tt.scene, tt.out))
	}
}

func TestCompileAll(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	paths := []string{writeScene(t, src, "a.yaml"), writeScene(t, src, "b.yaml")}

	cfg := config.Default()
	cfg.Output = config.OutputConfig{Dir: out, Binary: true}
	cfg.Compile.Jobs = 2

	c := newCompiler(cfg, zaptest.NewLogger(t))
	require.NoError(t, c.compileAll(context.Background(), paths))

	for _, name := range []string{"a.glb", "b.glb"} {
		doc, err := qgltf.Open(filepath.Join(out, name))
		require.NoError(t, err, name)
		assert.Equal(t, "pcgc", doc.Asset.Generator)
		assert.Len(t, doc.Nodes, 1)
		assert.Len(t, doc.Meshes, 1)
		assert.Len(t, doc.Accessors, 3)
	}
	assert.Len(t, c.loaders, 1)
}

func TestCompileAll_Error(t *testing.T) {
	src := t.TempDir()
	bad := filepath.Join(src, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("nodes: [{name: a, geometry: missing}]"), 0o644))

	cfg := config.Default()
	cfg.Output.Dir = t.TempDir()
	c := newCompiler(cfg, zaptest.NewLogger(t))

	err := c.compileAll(context.Background(), []string{writeScene(t, src, "ok.yaml"), bad})
	assert.Error(t, err)
}

func TestShowConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Compile.Interleaved = true

	var out bytes.Buffer
	require.NoError(t, showConfig(cfg, false, &out))
	assert.Contains(t, out.String(), "interleaved: true")

	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME is only honored on Linux")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	out.Reset()
	require.NoError(t, showConfig(cfg, true, &out))
	assert.Contains(t, out.String(), config.UserFile())

	data, err := os.ReadFile(config.UserFile())
	require.NoError(t, err)
	assert.Contains(t, string(data), "interleaved: true")
}
