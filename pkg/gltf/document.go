package gltf

// Document is the root of a glTF 2.0 asset. Absent arrays are nil and are
// omitted from the JSON form.
type Document struct {
	Asset       Asset        `json:"asset"`
	Scene       *int         `json:"scene,omitempty"`
	Scenes      []Scene      `json:"scenes,omitempty"`
	Nodes       []Node       `json:"nodes,omitempty"`
	Meshes      []Mesh       `json:"meshes,omitempty"`
	Materials   []Material   `json:"materials,omitempty"`
	Accessors   []Accessor   `json:"accessors,omitempty"`
	BufferViews []BufferView `json:"bufferViews,omitempty"`
	Buffers     []Buffer     `json:"buffers,omitempty"`
	Textures    []Texture    `json:"textures,omitempty"`
	Images      []Image      `json:"images,omitempty"`
	Samplers    []Sampler    `json:"samplers,omitempty"`
}

// Asset contains metadata about the glTF asset.
type Asset struct {
	Version   string `json:"version"`
	Generator string `json:"generator,omitempty"`
}

// Scene lists root node indices.
type Scene struct {
	Name  string `json:"name,omitempty"`
	Nodes []int  `json:"nodes,omitempty"`
}

// Node is a node in the hierarchy. Matrix and TRS are mutually exclusive.
type Node struct {
	Name        string       `json:"name,omitempty"`
	Children    []int        `json:"children,omitempty"`
	Mesh        *int         `json:"mesh,omitempty"`
	Matrix      *[16]float32 `json:"matrix,omitempty"`
	Translation *[3]float32  `json:"translation,omitempty"`
	Rotation    *[4]float32  `json:"rotation,omitempty"`
	Scale       *[3]float32  `json:"scale,omitempty"`
}

// Mesh is a list of primitives drawn together.
type Mesh struct {
	Name       string      `json:"name,omitempty"`
	Primitives []Primitive `json:"primitives"`
}

// Primitive is one drawable submesh. Primitives are always triangle lists,
// so no mode is written.
type Primitive struct {
	Attributes map[Attribute]int `json:"attributes"`
	Indices    *int              `json:"indices,omitempty"`
	Material   *int              `json:"material,omitempty"`
}

// Material uses the metallic-roughness model.
type Material struct {
	Name                 string                `json:"name,omitempty"`
	PBRMetallicRoughness *PBRMetallicRoughness `json:"pbrMetallicRoughness,omitempty"`
	DoubleSided          bool                  `json:"doubleSided,omitempty"`
}

// PBRMetallicRoughness holds the material factors. Nil fields take the glTF
// defaults: base color [1,1,1,1], metallic 1, roughness 1.
type PBRMetallicRoughness struct {
	BaseColorFactor  *[4]float32  `json:"baseColorFactor,omitempty"`
	BaseColorTexture *TextureInfo `json:"baseColorTexture,omitempty"`
	MetallicFactor   *float32     `json:"metallicFactor,omitempty"`
	RoughnessFactor  *float32     `json:"roughnessFactor,omitempty"`
}

// TextureInfo references a texture.
type TextureInfo struct {
	Index int `json:"index"`
}

// Accessor is a typed view into a buffer view.
type Accessor struct {
	BufferView    *int          `json:"bufferView,omitempty"`
	ByteOffset    int           `json:"byteOffset,omitempty"`
	ComponentType ComponentType `json:"componentType"`
	Count         int           `json:"count"`
	Type          AccessorType  `json:"type"`
	Max           []float32     `json:"max,omitempty"`
	Min           []float32     `json:"min,omitempty"`
}

// ElementSize returns the size in bytes of one element.
func (a Accessor) ElementSize() int {
	return a.ComponentType.Size() * a.Type.Components()
}

// BufferView is a byte range of a buffer. ByteStride 0 means tightly packed.
type BufferView struct {
	Buffer     int    `json:"buffer"`
	ByteOffset int    `json:"byteOffset,omitempty"`
	ByteLength int    `json:"byteLength"`
	ByteStride int    `json:"byteStride,omitempty"`
	Target     Target `json:"target,omitempty"`
}

// Buffer is a binary blob, inlined as a base64 data URI.
type Buffer struct {
	ByteLength int    `json:"byteLength"`
	URI        string `json:"uri"`
}

// Texture pairs an image with a sampler.
type Texture struct {
	Sampler *int `json:"sampler,omitempty"`
	Source  *int `json:"source,omitempty"`
}

// Image is an inlined image data URI.
type Image struct {
	URI string `json:"uri"`
}

// Sampler holds texture filtering and wrapping. Zero values are omitted;
// Repeat is the format default and is stored as zero.
type Sampler struct {
	MagFilter Filter `json:"magFilter,omitempty"`
	MinFilter Filter `json:"minFilter,omitempty"`
	WrapS     Wrap   `json:"wrapS,omitempty"`
	WrapT     Wrap   `json:"wrapT,omitempty"`
}

// Index returns a pointer to i, for optional index fields.
func Index(i int) *int {
	return &i
}

// Factor returns a pointer to f, for optional material factors.
func Factor(f float32) *float32 {
	return &f
}
