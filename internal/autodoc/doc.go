// Package autodoc builds a documentation site from Markdown pages, replacing
// `::: identifier` directives with the output of a documentation handler.
//
// A directive names the object to document and may carry indented YAML:
//
//	::: scripts/deploy.sh
//	    handler: shell
//	    options:
//	      heading_level: 3
//
// Handlers come from a handler.Registry and are created once per build.
package autodoc
