package shell

import (
	"io/fs"

	shellhandler "github.com/mkdocstrings/shell/pkg/handlers/shell"
)

// EmbeddedTemplates exposes the built-in theme templates so callers can copy
// them into a custom templates directory as a starting point.
func EmbeddedTemplates() fs.FS {
	return shellhandler.TemplatesFS()
}
