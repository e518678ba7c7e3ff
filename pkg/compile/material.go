package compile

import (
	"github.com/packerman/pcg/pkg/gltf"
	"github.com/packerman/pcg/pkg/scene"
)

// CompileMaterial maps a diffuse material onto metallic-roughness as a matte
// dielectric: metallic 0, roughness 1. texture is the document index of the
// diffuse texture, or nil. Fields equal to the glTF defaults are omitted.
func CompileMaterial(m scene.Material, texture *int) (gltf.Material, error) {
	pbr := &gltf.PBRMetallicRoughness{
		MetallicFactor: gltf.Factor(0),
	}
	if c := m.Diffuse; c != scene.White {
		pbr.BaseColorFactor = &[4]float32{c.R, c.G, c.B, c.A}
	}
	if texture != nil {
		pbr.BaseColorTexture = &gltf.TextureInfo{Index: *texture}
	}

	return gltf.NewMaterial(gltf.Material{
		Name:                 m.Name,
		PBRMetallicRoughness: pbr,
		DoubleSided:          m.TwoSided,
	})
}
