package compile

import (
	"fmt"

	"github.com/packerman/pcg/pkg/gltf"
	"github.com/packerman/pcg/pkg/scene"
)

// TextureData is a loaded texture: an inlined image and how to sample it.
type TextureData struct {
	Image   gltf.Image
	Sampler gltf.Sampler
}

// TextureLoader resolves texture references. Missing files are reported with
// an error wrapping ErrResourceNotFound.
type TextureLoader interface {
	LoadTexture(t scene.Texture) (TextureData, error)
}

// TextureLoaderFunc adapts a function to TextureLoader.
type TextureLoaderFunc func(t scene.Texture) (TextureData, error)

// LoadTexture calls f(t).
func (f TextureLoaderFunc) LoadTexture(t scene.Texture) (TextureData, error) {
	return f(t)
}

// DefaultSampler is the sampler used for every diffuse texture.
func DefaultSampler() gltf.Sampler {
	return gltf.NewSampler(gltf.Linear, gltf.NearestMipmapLinear, gltf.Repeat, gltf.Repeat)
}

type noTextures struct{}

func (noTextures) LoadTexture(t scene.Texture) (TextureData, error) {
	return TextureData{}, fmt.Errorf("%w: %s (no texture loader configured)", ErrResourceNotFound, t.FileName)
}
