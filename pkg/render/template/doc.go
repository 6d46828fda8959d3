// Package template defines the engine seam page renderers draw templates
// through. The pongo subpackage provides the pongo2 implementation.
package template
