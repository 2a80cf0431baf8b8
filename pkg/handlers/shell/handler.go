// Package shell implements the documentation handler for shell scripts: it
// resolves identifiers to script paths, extracts their "##" documentation and
// renders it through the theme templates.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/yuin/goldmark"

	internalParser "github.com/mkdocstrings/shell/internal/shelldoc/parser"
	"github.com/mkdocstrings/shell/pkg/handler"
	"github.com/mkdocstrings/shell/pkg/render/template"
	"github.com/mkdocstrings/shell/pkg/render/template/gotemplate"
	"github.com/mkdocstrings/shell/pkg/shelldoc"
)

const (
	// Name is the handler's registry name.
	Name = "shell"
	// Domain is the cross-reference domain of documented scripts.
	Domain = "shell"
	// EnableInventory reports whether the handler contributes to a
	// cross-project object inventory.
	EnableInventory = false
	// FallbackTheme is used for templates the selected theme lacks.
	FallbackTheme = "material"
	// TemplateName is the root template every script renders through.
	TemplateName = "script.html"
)

// DefaultConfig holds the option defaults Render merges caller options over.
//
//	show_root_heading    bool  render a heading for the script itself (false)
//	show_root_toc_entry  bool  add a ToC entry when the heading is hidden (true)
//	heading_level        int   heading level of the root heading (2)
var DefaultConfig = handler.Options{
	"show_root_heading":   false,
	"show_root_toc_entry": true,
	"heading_level":       2,
}

// FallbackConfig is the configuration used when collecting for cross-reference
// fallbacks.
var FallbackConfig = handler.Options{"fallback": true}

func init() {
	handler.DefaultRegistry.MustRegister(Name, Factory)
}

// Option customises a Handler.
type Option func(*Handler)

// WithParser replaces the script parser.
func WithParser(parser shelldoc.Parser) Option {
	return func(h *Handler) {
		if parser != nil {
			h.parser = parser
		}
	}
}

// WithRenderer replaces the template renderer.
func WithRenderer(renderer template.TemplateRenderer) Option {
	return func(h *Handler) {
		if renderer != nil {
			h.renderer = renderer
			h.rendererErr = nil
		}
	}
}

// WithBaseDir overrides the directory identifiers are resolved against.
func WithBaseDir(dir string) Option {
	return func(h *Handler) {
		if dir != "" {
			h.baseDir = dir
		}
	}
}

// Handler documents shell scripts.
type Handler struct {
	name            string
	theme           string
	customTemplates string
	baseDir         string

	parser      shelldoc.Parser
	renderer    template.TemplateRenderer
	rendererErr error

	envMu    sync.Mutex
	envReady bool
}

var _ handler.Handler = (*Handler)(nil)

// Factory satisfies handler.Factory. The extra configuration is ignored.
func Factory(theme, customTemplates, configFilePath string, _ map[string]any) handler.Handler {
	return New(Name, theme, customTemplates, configFilePath)
}

// New constructs a handler. Identifiers are resolved against the directory of
// configFilePath, or the current directory when it is empty. Template loading
// problems are reported by the first Render or UpdateEnv call.
func New(handlerName, theme, customTemplates, configFilePath string, options ...Option) *Handler {
	baseDir := "."
	if configFilePath != "" {
		baseDir = filepath.Dir(configFilePath)
	}
	if handlerName == "" {
		handlerName = Name
	}

	h := &Handler{
		name:            handlerName,
		theme:           theme,
		customTemplates: customTemplates,
		baseDir:         baseDir,
		parser:          internalParser.New(shelldoc.NewParserOptions()),
	}
	h.renderer, h.rendererErr = newEngine(handlerName, theme, customTemplates)

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(h)
	}
	return h
}

// newEngine searches the custom template directory first, then the embedded
// theme, then the fallback theme.
func newEngine(handlerName, theme, customTemplates string) (template.TemplateRenderer, error) {
	opts := []gotemplate.Option{gotemplate.WithName(handlerName)}
	if customTemplates != "" {
		for _, dir := range []string{theme, FallbackTheme} {
			if dir == "" {
				continue
			}
			path := filepath.Join(customTemplates, handlerName, dir)
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				opts = append(opts, gotemplate.WithFS(os.DirFS(path)))
			}
		}
	}
	if files, ok := themeFS(theme); ok {
		opts = append(opts, gotemplate.WithFS(files))
	}
	if theme != FallbackTheme {
		if files, ok := themeFS(FallbackTheme); ok {
			opts = append(opts, gotemplate.WithFS(files))
		}
	}

	engine, err := gotemplate.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("shell handler: templates for theme %q: %w", theme, err)
	}
	return engine, nil
}

// Name returns the name the handler was constructed with.
func (h *Handler) Name() string { return h.name }

// Domain returns the cross-reference domain.
func (h *Handler) Domain() string { return Domain }

// Theme returns the selected theme.
func (h *Handler) Theme() string { return h.theme }

// BaseDir returns the directory identifiers are resolved against.
func (h *Handler) BaseDir() string { return h.baseDir }

// Collect parses the script identifier names, relative to the base
// directory. A missing script yields a *handler.CollectionError. options is
// accepted for interface compatibility and not used.
func (h *Handler) Collect(ctx context.Context, identifier string, _ handler.Options) (any, error) {
	scriptPath := filepath.Join(h.baseDir, identifier)

	doc, err := h.parser.Parse(ctx, scriptPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &handler.CollectionError{
				Identifier: identifier,
				Subject:    "script",
				Path:       scriptPath,
				Err:        err,
			}
		}
		return nil, err
	}
	return doc, nil
}

// EffectiveOptions returns the defaults overlaid with options.
func (h *Handler) EffectiveOptions(options handler.Options) handler.Options {
	return handler.MergeOptions(DefaultConfig, options)
}

// Render renders data, which must come from Collect, with options merged over
// DefaultConfig. Option values are passed to templates unchecked.
func (h *Handler) Render(ctx context.Context, data any, options handler.Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	doc, err := asDocFile(data)
	if err != nil {
		return "", err
	}
	if err := h.ensureEnv(); err != nil {
		return "", err
	}

	final := h.EffectiveOptions(options)
	return h.renderer.RenderTemplate(TemplateName, map[string]any{
		"config":        map[string]any(final),
		"filename":      doc.Filename,
		"script":        shelldoc.GroupSections(doc.Sections),
		"heading_level": final["heading_level"],
	})
}

// UpdateEnv installs the base and shell filters and switches the engine to
// trimmed block whitespace without a trailing newline.
//
// Filters live in pongo2's process-wide table, so convert_markdown uses the md
// of the most recent UpdateEnv call in the process, whichever handler made it.
func (h *Handler) UpdateEnv(md goldmark.Markdown, _ map[string]any) error {
	if h.rendererErr != nil {
		return h.rendererErr
	}

	h.envMu.Lock()
	defer h.envMu.Unlock()

	if err := handler.InstallFilters(h.renderer, handler.BaseFilters(md), shelldoc.Filters()); err != nil {
		return err
	}
	h.renderer.SetWhitespace(template.Whitespace{
		TrimBlocks:          true,
		LStripBlocks:        true,
		KeepTrailingNewline: false,
	})
	h.envReady = true
	return nil
}

// ensureEnv sets up the environment with default Markdown settings when the
// host never called UpdateEnv.
func (h *Handler) ensureEnv() error {
	if h.rendererErr != nil {
		return h.rendererErr
	}
	h.envMu.Lock()
	ready := h.envReady
	h.envMu.Unlock()
	if ready {
		return nil
	}
	return h.UpdateEnv(nil, nil)
}

func asDocFile(data any) (shelldoc.DocFile, error) {
	switch v := data.(type) {
	case shelldoc.DocFile:
		return v, nil
	case *shelldoc.DocFile:
		if v != nil {
			return *v, nil
		}
	}
	return shelldoc.DocFile{}, fmt.Errorf("shell handler: cannot render %T, expected shelldoc.DocFile", data)
}
