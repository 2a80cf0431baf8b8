package autodoc

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/mkdocstrings/shell/internal/config"
	"github.com/mkdocstrings/shell/internal/metrics"
	"github.com/mkdocstrings/shell/pkg/handler"
	"github.com/mkdocstrings/shell/pkg/render/template"
	"github.com/mkdocstrings/shell/pkg/render/template/gotemplate"
)

//go:embed templates
var layoutFiles embed.FS

const layoutTemplate = "page.html"

// ErrCollectionFailures is returned by a strict build when identifiers could
// not be collected.
var ErrCollectionFailures = errors.New("autodoc: identifiers could not be collected")

// Failure records a directive whose identifier could not be collected.
type Failure struct {
	Page       string
	Identifier string
	Handler    string
	Err        error
}

// Report summarises a build.
type Report struct {
	Pages    []string
	Blocks   int
	Failures []Failure
	// Sources lists the files documented by the build, for watch mode.
	Sources  []string
	Duration time.Duration
}

// Option customises a Builder.
type Option func(*Builder)

// WithRegistry sets the registry handlers are created from.
func WithRegistry(registry *handler.Registry) Option {
	return func(b *Builder) {
		if registry != nil {
			b.registry = registry
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(recorder metrics.Recorder) Option {
	return func(b *Builder) {
		if recorder != nil {
			b.recorder = recorder
		}
	}
}

// WithLogger sets the logger collection failures are reported to.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithStrict makes Build fail when any identifier could not be collected.
func WithStrict(strict bool) Option {
	return func(b *Builder) {
		b.strict = strict
	}
}

// Builder renders the pages of a site.
type Builder struct {
	cfg      *config.Config
	registry *handler.Registry
	recorder metrics.Recorder
	logger   *slog.Logger
	strict   bool
	md       goldmark.Markdown
	layout   template.TemplateRenderer
}

// NewBuilder prepares a builder for cfg. A page.html.tpl in the theme's
// custom_dir replaces the built-in page layout.
func NewBuilder(cfg *config.Config, options ...Option) (*Builder, error) {
	if cfg == nil {
		return nil, errors.New("autodoc: config is required")
	}
	b := &Builder{
		cfg:      cfg,
		registry: handler.DefaultRegistry,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
	for _, opt := range options {
		if opt != nil {
			opt(b)
		}
	}

	layoutFS, err := fs.Sub(layoutFiles, "templates")
	if err != nil {
		return nil, fmt.Errorf("autodoc: layout templates: %w", err)
	}
	engineOpts := []gotemplate.Option{
		gotemplate.WithName("layout"),
		gotemplate.WithGlobalData(map[string]any{
			"site_name": cfg.SiteName,
			"theme":     cfg.Theme.Name,
		}),
	}
	if dir := cfg.Theme.CustomDir; dir != "" {
		if _, err := os.Stat(filepath.Join(dir, layoutTemplate+".tpl")); err == nil {
			engineOpts = append(engineOpts, gotemplate.WithBaseDir(dir))
		}
	}
	engineOpts = append(engineOpts, gotemplate.WithFS(layoutFS))
	b.layout, err = gotemplate.New(engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("autodoc: layout engine: %w", err)
	}
	return b, nil
}

// Build renders every Markdown page under docs_dir into site_dir.
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{}
	run := &buildRun{Builder: b, report: report, handlers: map[string]handler.Handler{}, sources: map[string]struct{}{}}

	docsDir := b.cfg.DocsDir
	err := filepath.WalkDir(docsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}
		rel, err := filepath.Rel(docsDir, path)
		if err != nil {
			return err
		}
		return run.buildPage(ctx, filepath.ToSlash(rel), path)
	})
	report.Sources = run.sortedSources()
	report.Duration = time.Since(start)
	b.recorder.ObserveBuildDuration(report.Duration)
	if err != nil {
		return report, fmt.Errorf("autodoc: build %s: %w", docsDir, err)
	}

	b.logger.Info("Build finished",
		"pages", len(report.Pages),
		"blocks", report.Blocks,
		"failures", len(report.Failures),
		"duration", report.Duration)

	if b.strict && len(report.Failures) > 0 {
		return report, fmt.Errorf("%w: %d failure(s) in strict mode", ErrCollectionFailures, len(report.Failures))
	}
	return report, nil
}

type buildRun struct {
	*Builder
	report   *Report
	handlers map[string]handler.Handler
	sources  map[string]struct{}
}

func (r *buildRun) buildPage(ctx context.Context, rel, path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	content, err := r.renderMarkdown(ctx, rel, string(source))
	if err != nil {
		return err
	}
	page, err := r.layout.RenderTemplate(layoutTemplate, map[string]any{
		"title":   pageTitle(rel, string(source)),
		"page":    rel,
		"content": content,
	})
	if err != nil {
		return fmt.Errorf("%s: layout: %w", rel, err)
	}

	outRel := strings.TrimSuffix(rel, filepath.Ext(rel)) + ".html"
	outPath := filepath.Join(r.cfg.SiteDir, filepath.FromSlash(outRel))
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(outPath, []byte(page), 0o644); err != nil {
		return err
	}
	r.report.Pages = append(r.report.Pages, outRel)
	r.recorder.IncPagesBuilt()
	r.logger.Debug("Page written", "page", rel, "output", outPath)
	return nil
}

// renderMarkdown replaces each directive with a placeholder comment, converts
// the page, then swaps the rendered documentation in.
func (r *buildRun) renderMarkdown(ctx context.Context, rel, source string) (string, error) {
	blocks, err := ParseBlocks(source)
	if err != nil {
		return "", fmt.Errorf("%s: %w", rel, err)
	}

	lines := strings.Split(source, "\n")
	var (
		md       strings.Builder
		rendered = make([]string, len(blocks))
		cursor   int
	)
	for i, block := range blocks {
		md.WriteString(strings.Join(lines[cursor:block.start], "\n"))
		fmt.Fprintf(&md, "\n\n%s\n\n", placeholder(i))
		cursor = block.end

		fragment, err := r.renderBlock(ctx, rel, block)
		if err != nil {
			return "", err
		}
		rendered[i] = fragment
	}
	md.WriteString(strings.Join(lines[cursor:], "\n"))

	var out strings.Builder
	if err := r.md.Convert([]byte(md.String()), &out); err != nil {
		return "", fmt.Errorf("%s: convert markdown: %w", rel, err)
	}
	page := out.String()
	for i, fragment := range rendered {
		page = strings.Replace(page, placeholder(i), fragment, 1)
	}
	return page, nil
}

func placeholder(i int) string {
	return fmt.Sprintf("<!-- autodoc:%d -->", i)
}

func (r *buildRun) renderBlock(ctx context.Context, rel string, block Block) (string, error) {
	r.report.Blocks++

	name := handler.NormalizeName(block.Handler)
	if name == "" {
		name = handler.NormalizeName(r.cfg.DefaultHandler())
	}
	h, err := r.handler(name)
	if err != nil {
		return "", fmt.Errorf("%s:%d: %w", rel, block.Line, err)
	}

	options := handler.MergeOptions(r.cfg.HandlerOptions(name), block.Options)

	data, err := h.Collect(ctx, block.Identifier, options)
	if err != nil {
		if handler.IsCollectionError(err) {
			r.recorder.IncCollection(name, metrics.ResultNotFound)
			r.logger.Error("Could not collect identifier",
				"page", rel,
				"line", block.Line,
				"handler", name,
				"identifier", block.Identifier,
				"error", err)
			r.report.Failures = append(r.report.Failures, Failure{Page: rel, Identifier: block.Identifier, Handler: name, Err: err})
			return "", nil
		}
		r.recorder.IncCollection(name, metrics.ResultError)
		return "", fmt.Errorf("%s:%d: collect %q: %w", rel, block.Line, block.Identifier, err)
	}
	r.recorder.IncCollection(name, metrics.ResultSuccess)
	if src, ok := data.(interface{ SourcePath() string }); ok {
		r.sources[src.SourcePath()] = struct{}{}
	}

	start := time.Now()
	fragment, err := h.Render(ctx, data, options)
	r.recorder.ObserveRenderDuration(name, time.Since(start))
	if err != nil {
		return "", fmt.Errorf("%s:%d: render %q: %w", rel, block.Line, block.Identifier, err)
	}
	return fragment, nil
}

// handler returns the build's instance of name, creating it and preparing
// its environment on first use.
func (r *buildRun) handler(name string) (handler.Handler, error) {
	if h, ok := r.handlers[name]; ok {
		return h, nil
	}
	h, err := r.registry.New(name, r.cfg.Theme.Name, r.cfg.CustomTemplates(), r.cfg.Path, r.cfg.HandlerExtra(name))
	if err != nil {
		return nil, err
	}
	if err := h.UpdateEnv(r.md, map[string]any{
		"site_name": r.cfg.SiteName,
		"docs_dir":  r.cfg.DocsDir,
		"site_dir":  r.cfg.SiteDir,
	}); err != nil {
		return nil, fmt.Errorf("handler %s: update env: %w", name, err)
	}
	r.handlers[name] = h
	return h, nil
}

func (r *buildRun) sortedSources() []string {
	out := make([]string, 0, len(r.sources))
	for path := range r.sources {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// pageTitle is the first level-one heading of the page, or its file name.
func pageTitle(rel, source string) string {
	for _, line := range strings.Split(source, "\n") {
		if title, ok := strings.CutPrefix(strings.TrimSpace(line), "# "); ok {
			return strings.TrimSpace(title)
		}
	}
	base := filepath.Base(rel)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
