// Package texture loads diffuse texture files and inlines them as data URIs.
package texture

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"go.uber.org/zap"
	"golang.org/x/image/bmp"

	"github.com/packerman/pcg/pkg/compile"
	"github.com/packerman/pcg/pkg/gltf"
	"github.com/packerman/pcg/pkg/scene"
)

// Texture errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported texture format")
	ErrTruncated         = errors.New("truncated image data")
)

// Loader resolves texture files against a list of search paths. Loaded
// textures are cached, so a Loader may be shared by concurrent compiles.
type Loader struct {
	searchPaths []string
	cache       *Cache
	log         *zap.Logger
}

// NewLoader creates a loader. Relative file names are tried against each
// search path in order; with no search paths they resolve against the
// working directory.
func NewLoader(searchPaths []string, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{
		searchPaths: searchPaths,
		cache:       NewCache(),
		log:         log,
	}
}

// Cache returns the loader's cache.
func (l *Loader) Cache() *Cache {
	return l.cache
}

// LoadTexture implements compile.TextureLoader.
func (l *Loader) LoadTexture(t scene.Texture) (compile.TextureData, error) {
	if data, ok := l.cache.Get(t.FileName); ok {
		return data, nil
	}

	path, err := l.Resolve(t.FileName)
	if err != nil {
		return compile.TextureData{}, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return compile.TextureData{}, fmt.Errorf("reading texture %s: %w", path, err)
	}

	uri, err := DataURI(t.FileName, raw)
	if err != nil {
		return compile.TextureData{}, err
	}

	data := compile.TextureData{
		Image:   gltf.Image{URI: uri},
		Sampler: compile.DefaultSampler(),
	}
	l.cache.Set(t.FileName, data)
	l.log.Debug("loaded texture", zap.String("path", path), zap.Int("bytes", len(raw)))
	return data, nil
}

// Resolve finds the file for name.
func (l *Loader) Resolve(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty texture name", compile.ErrResourceNotFound)
	}

	candidates := []string{name}
	if !filepath.IsAbs(name) && len(l.searchPaths) > 0 {
		candidates = candidates[:0]
		for _, dir := range l.searchPaths {
			candidates = append(candidates, filepath.Join(dir, name))
		}
	}

	for _, path := range candidates {
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("checking texture %s: %w", path, err)
		}
	}
	return "", fmt.Errorf("%w: %s (searched %s)", compile.ErrResourceNotFound, name, strings.Join(candidates, ", "))
}

// MIMEType returns the image MIME type for a texture file name. Only PNG and
// JPEG can be referenced by a glTF image.
func MIMEType(name string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "jpeg" {
		ext = "jpg"
	}
	switch ext {
	case "png", "jpg":
		return filetype.GetType(ext).MIME.Value, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// converters turn formats a glTF image cannot reference into PNG.
var converters = map[string]func([]byte) (image.Image, error){
	".tga": DecodeTGA,
	".bmp": func(raw []byte) (image.Image, error) {
		return bmp.Decode(bytes.NewReader(raw))
	},
}

// DataURI inlines raw file content. TGA and BMP files are converted to PNG.
// When the content is recognizable it has to agree with the file extension.
func DataURI(name string, raw []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if decode, ok := converters[ext]; ok {
		img, err := decode(raw)
		if err != nil {
			return "", fmt.Errorf("decoding %s: %w", name, err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return "", fmt.Errorf("encoding %s as PNG: %w", name, err)
		}
		raw = buf.Bytes()
		name = strings.TrimSuffix(name, filepath.Ext(name)) + ".png"
	}

	mime, err := MIMEType(name)
	if err != nil {
		return "", err
	}
	kind, err := filetype.Match(raw)
	if err == nil && kind != filetype.Unknown && kind.MIME.Value != mime {
		return "", fmt.Errorf("%w: %s has %s content", ErrUnsupportedFormat, name, kind.MIME.Value)
	}

	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(raw), nil
}
