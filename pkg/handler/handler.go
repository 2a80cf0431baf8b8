package handler

import (
	"context"

	"github.com/yuin/goldmark"
)

// Handler turns identifiers found in documentation into rendered markup.
type Handler interface {
	// Name is the key the handler is registered under.
	Name() string
	// Domain is the cross-reference domain of the documented language.
	Domain() string
	// Collect resolves identifier into data ready for Render.
	Collect(ctx context.Context, identifier string, options Options) (any, error)
	// Render turns collected data into HTML.
	Render(ctx context.Context, data any, options Options) (string, error)
	// UpdateEnv configures the shared rendering environment. Hosts call it once
	// per build before the first Render.
	UpdateEnv(md goldmark.Markdown, config map[string]any) error
}

// Factory constructs a handler for a theme. configFilePath points at the site
// configuration file; config carries the handler's global configuration.
type Factory func(theme, customTemplates, configFilePath string, config map[string]any) Handler
