package scene

// Color is a linear RGBA color; each channel is expected in [0, 1].
type Color struct {
	R, G, B, A float32
}

// RGB returns an opaque color.
func RGB(r, g, b float32) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// White is the default diffuse color.
var White = RGB(1, 1, 1)

// Texture identifies an image file. The zero value means "no texture".
type Texture struct {
	FileName string
}

// IsZero reports whether no texture is set.
func (t Texture) IsZero() bool {
	return t.FileName == ""
}

// Material is a matte diffuse surface. It is a comparable value: two equal
// Materials are the same material.
type Material struct {
	Name           string
	TwoSided       bool
	Diffuse        Color
	DiffuseTexture Texture
}

// DefaultMaterial returns a white, single-sided material.
func DefaultMaterial() Material {
	return Material{Diffuse: White}
}
