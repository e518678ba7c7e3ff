// pcgc compiles YAML scene descriptions into glTF 2.0 files.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	qgltf "github.com/qmuntal/gltf"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/packerman/pcg/internal/config"
	"github.com/packerman/pcg/internal/logger"
	"github.com/packerman/pcg/internal/scenefile"
	"github.com/packerman/pcg/internal/texture"
	"github.com/packerman/pcg/pkg/compile"
	"github.com/packerman/pcg/pkg/export"
	"github.com/packerman/pcg/pkg/gltf"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "compile", "c":
		err = cmdCompile(args)
	case "info":
		err = cmdInfo(args)
	case "config":
		err = cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`pcgc - scene to glTF 2.0 compiler

Usage:
  pcgc <command> [options]

Commands:
  compile [options] <scene.yaml>...  Compile scenes to .gltf/.glb files
  info [-json] <file>                Summarize a scene or glTF file
  config [options] [-save]           Print the effective config, or save it
                                     as the user config

Compile options:
  -config <file>      Config file (default ./pcgc.yaml, then the user config dir)
  -o <dir>            Output directory (default: next to each scene)
  -glb                Write binary .glb files
  -interleaved        Interleave vertex attributes in one strided view
  -textures <paths>   Texture search paths
  -j <n>              Concurrent compiles
  -debug              Debug logging

Examples:
  pcgc compile level.yaml
  pcgc compile -glb -o build scenes/*.yaml
  pcgc info build/level.glb
  pcgc config -glb -textures assets -save`)
}

func cmdCompile(args []string) error {
	var flags config.Flags
	fs := flag.NewFlagSet("compile", flag.ExitOnError)
	flags.Register(fs)
	fs.Parse(args)

	if fs.NArg() < 1 {
		return errors.New("usage: pcgc compile [options] <scene.yaml>...")
	}

	cfg, err := config.Load(&flags)
	if err != nil {
		return err
	}
	logger.Init(cfg.Logging.Level, cfg.Logging.LogFile)

	c := newCompiler(cfg, logger.Log)
	return c.compileAll(context.Background(), fs.Args())
}

func cmdConfig(args []string) error {
	var flags config.Flags
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	flags.Register(fs)
	save := fs.Bool("save", false, "Write the effective config to the user config file")
	fs.Parse(args)

	cfg, err := config.Load(&flags)
	if err != nil {
		return err
	}
	return showConfig(cfg, *save, os.Stdout)
}

// showConfig prints cfg as YAML, or with save writes it to the user config
// file and prints the path.
func showConfig(cfg *config.Config, save bool, w io.Writer) error {
	if save {
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		_, err := fmt.Fprintf(w, "Saved %s\n", config.UserFile())
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

type compiler struct {
	cfg *config.Config
	log *zap.Logger

	mu      sync.Mutex
	loaders map[string]*texture.Loader
}

func newCompiler(cfg *config.Config, log *zap.Logger) *compiler {
	return &compiler{
		cfg:     cfg,
		log:     log,
		loaders: make(map[string]*texture.Loader),
	}
}

// compileAll compiles every scene concurrently and stops at the first error.
func (c *compiler) compileAll(ctx context.Context, paths []string) error {
	jobs := c.cfg.Compile.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	var bar *progressbar.ProgressBar
	if len(paths) > 1 {
		bar = progressbar.Default(int64(len(paths)), "compiling")
		defer bar.Close()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for _, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := c.compileFile(path)
			if err != nil {
				return err
			}
			c.log.Info("wrote", zap.String("scene", path), zap.String("output", out))
			if bar != nil {
				bar.Add(1)
			}
			return nil
		})
	}
	err := g.Wait()
	c.logTextureStats()
	return err
}

func (c *compiler) logTextureStats() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for dir, l := range c.loaders {
		hits, misses := l.Cache().Stats()
		c.log.Debug("texture cache", zap.String("dir", dir), zap.Int("hits", hits), zap.Int("misses", misses))
	}
}

// compileFile compiles one scene and returns the written file.
func (c *compiler) compileFile(path string) (string, error) {
	s, err := scenefile.Load(path)
	if err != nil {
		return "", err
	}

	doc, err := compile.Compile(s, compile.Options{
		Interleaved: c.cfg.Compile.Interleaved,
		Textures:    c.textureLoader(filepath.Dir(path)),
		Generator:   c.cfg.Compile.Generator,
		Logger:      c.log.With(zap.String("scene", path)),
	})
	if err != nil {
		return "", fmt.Errorf("compiling %s: %w", path, err)
	}

	out := outputPath(path, c.cfg.Output)
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", err
	}
	if err := export.Save(doc, out); err != nil {
		return "", err
	}
	return out, nil
}

// textureLoader returns the shared loader for scenes in dir. Textures are
// looked up in the scene's directory first, then in the configured paths.
func (c *compiler) textureLoader(dir string) *texture.Loader {
	c.mu.Lock()
	defer c.mu.Unlock()

	if l, ok := c.loaders[dir]; ok {
		return l
	}
	paths := append([]string{dir}, c.cfg.Textures.SearchPaths...)
	l := texture.NewLoader(paths, c.log)
	c.loaders[dir] = l
	return l
}

func outputPath(scenePath string, out config.OutputConfig) string {
	ext := ".gltf"
	if out.Binary {
		ext = ".glb"
	}
	base := strings.TrimSuffix(filepath.Base(scenePath), filepath.Ext(scenePath)) + ext

	dir := out.Dir
	if dir == "" {
		dir = filepath.Dir(scenePath)
	}
	return filepath.Join(dir, base)
}

func cmdInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "Print the compiled document as JSON")
	interleaved := fs.Bool("interleaved", false, "Interleave vertex attributes")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return errors.New("usage: pcgc info [-json] <file>")
	}
	path := fs.Arg(0)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb":
		doc, err := qgltf.Open(path)
		if err != nil {
			return err
		}
		printSummary(path, summarizeFile(doc))
		return nil
	}

	s, err := scenefile.Load(path)
	if err != nil {
		return err
	}
	doc, err := compile.Compile(s, compile.Options{
		Interleaved: *interleaved,
		Textures:    texture.NewLoader([]string{filepath.Dir(path)}, nil),
	})
	if err != nil {
		return err
	}

	if *asJSON {
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}
	printSummary(path, summarize(doc))
	return nil
}

type summary struct {
	nodes, meshes, materials, accessors, bufferViews, textures int
	bufferBytes                                                []int
}

func summarize(doc *gltf.Document) summary {
	s := summary{
		nodes:       len(doc.Nodes),
		meshes:      len(doc.Meshes),
		materials:   len(doc.Materials),
		accessors:   len(doc.Accessors),
		bufferViews: len(doc.BufferViews),
		textures:    len(doc.Textures),
	}
	for _, b := range doc.Buffers {
		s.bufferBytes = append(s.bufferBytes, b.ByteLength)
	}
	return s
}

func summarizeFile(doc *qgltf.Document) summary {
	s := summary{
		nodes:       len(doc.Nodes),
		meshes:      len(doc.Meshes),
		materials:   len(doc.Materials),
		accessors:   len(doc.Accessors),
		bufferViews: len(doc.BufferViews),
		textures:    len(doc.Textures),
	}
	for _, b := range doc.Buffers {
		s.bufferBytes = append(s.bufferBytes, int(b.ByteLength))
	}
	return s
}

func printSummary(path string, s summary) {
	total := 0
	for _, n := range s.bufferBytes {
		total += n
	}

	fmt.Printf("File:        %s\n", path)
	fmt.Printf("Nodes:       %d\n", s.nodes)
	fmt.Printf("Meshes:      %d\n", s.meshes)
	fmt.Printf("Materials:   %d\n", s.materials)
	fmt.Printf("Textures:    %d\n", s.textures)
	fmt.Printf("Accessors:   %d\n", s.accessors)
	fmt.Printf("BufferViews: %d\n", s.bufferViews)
	fmt.Printf("Buffers:     %d (%d bytes)\n", len(s.bufferBytes), total)
}
