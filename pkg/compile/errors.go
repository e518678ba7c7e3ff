// Package compile turns a scene graph into a glTF 2.0 document.
//
// A compile is a single pass over an immutable scene: the node tree is
// flattened in pre-order, every distinct geometry is packed into its own
// buffer, materials and textures are compiled, and structurally identical
// meshes, materials and samplers share one index. The result is built through
// the pkg/gltf constructors, so any structural problem aborts the compile and
// no partial document is returned.
package compile

import "errors"

// Compile errors.
var (
	// ErrUnsupportedRepresentation means a vertex or index array has an
	// element type without a byte codec.
	ErrUnsupportedRepresentation = errors.New("unsupported representation")

	// ErrResourceNotFound means a texture file could not be resolved.
	ErrResourceNotFound = errors.New("resource not found")
)
