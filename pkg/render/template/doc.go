// Package template defines the renderer-agnostic template contract handlers
// render through. The pongo2-backed implementation lives in the gotemplate
// subpackage.
package template
