package shell

import (
	"embed"
	"io/fs"
)

//go:embed templates
var embeddedTemplates embed.FS

// TemplatesFS exposes the built-in theme templates, one directory per theme.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}

func themeFS(theme string) (fs.FS, bool) {
	if theme == "" {
		return nil, false
	}
	root := TemplatesFS()
	if info, err := fs.Stat(root, theme); err != nil || !info.IsDir() {
		return nil, false
	}
	sub, err := fs.Sub(root, theme)
	if err != nil {
		return nil, false
	}
	return sub, true
}
