// Package scene is the authoring-side model compiled into glTF documents: a
// forest of nodes carrying transforms, shared geometries and materials.
//
// Values are built once, before compilation, and are not modified afterwards.
package scene

import "errors"

// Authoring model errors.
var (
	ErrInvalidMesh      = errors.New("invalid mesh")
	ErrInvalidGeometry  = errors.New("invalid geometry")
	ErrMaterialSlots    = errors.New("node materials do not match geometry submeshes")
	ErrInvalidTree      = errors.New("invalid node tree")
	ErrInvalidTransform = errors.New("invalid transform")
)
