package autodoc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"

	"github.com/mkdocstrings/shell/internal/config"
	"github.com/mkdocstrings/shell/internal/metrics"
	"github.com/mkdocstrings/shell/pkg/handler"
	_ "github.com/mkdocstrings/shell/pkg/handlers/shell"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func loadSite(t *testing.T, configYAML string, files map[string]string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "mkdocs.yml"), configYAML)
	for rel, content := range files {
		writeFile(t, filepath.Join(dir, filepath.FromSlash(rel)), content)
	}
	cfg, err := config.Load(filepath.Join(dir, "mkdocs.yml"))
	require.NoError(t, err)
	return cfg
}

func readOutput(t *testing.T, cfg *config.Config, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(cfg.SiteDir, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

type stubHandler struct {
	envCalls int
	options  []handler.Options
}

func (s *stubHandler) Name() string   { return "stub" }
func (s *stubHandler) Domain() string { return "stub" }

func (s *stubHandler) Collect(_ context.Context, identifier string, _ handler.Options) (any, error) {
	switch identifier {
	case "missing":
		return nil, &handler.CollectionError{Identifier: identifier, Subject: "object", Path: "/x/missing"}
	case "broken":
		return nil, errors.New("parser exploded")
	}
	return identifier, nil
}

func (s *stubHandler) Render(_ context.Context, data any, options handler.Options) (string, error) {
	s.options = append(s.options, options)
	return fmt.Sprintf(`<div class="stub">%v level=%v</div>`, data, options["heading_level"]), nil
}

func (s *stubHandler) UpdateEnv(goldmark.Markdown, map[string]any) error {
	s.envCalls++
	return nil
}

func stubRegistry(stub *stubHandler) *handler.Registry {
	registry := handler.NewRegistry()
	registry.MustRegister("stub", func(string, string, string, map[string]any) handler.Handler { return stub })
	return registry
}

const stubConfig = `site_name: Demo
plugins:
  - mkdocstrings:
      default_handler: stub
      handlers:
        stub:
          options:
            heading_level: 2
`

func TestBuilder_StubHandler(t *testing.T) {
	cfg := loadSite(t, stubConfig, map[string]string{
		"docs/index.md":      "# Welcome\n\nIntro *text*.\n\n::: first\n    options:\n      heading_level: 4\n\n::: missing\n\nOutro.\n",
		"docs/guide/more.md": "::: second\n",
		"docs/notes.txt":     "ignored\n",
	})

	stub := &stubHandler{}
	var logs bytes.Buffer
	reg := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(reg)

	builder, err := NewBuilder(cfg,
		WithRegistry(stubRegistry(stub)),
		WithRecorder(recorder),
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	require.NoError(t, err)

	report, err := builder.Build(context.Background())
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"index.html", "guide/more.html"}, report.Pages)
	assert.Equal(t, 3, report.Blocks)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "missing", report.Failures[0].Identifier)
	assert.Equal(t, "index.md", report.Failures[0].Page)
	assert.Equal(t, 1, stub.envCalls, "handlers are prepared once per build")

	index := readOutput(t, cfg, "index.html")
	assert.Contains(t, index, "<title>Welcome - Demo</title>")
	assert.Contains(t, index, "<em>text</em>")
	assert.Contains(t, index, `<div class="stub">first level=4</div>`)
	assert.Contains(t, index, "<p>Outro.</p>")
	assert.NotContains(t, index, "autodoc:")
	assert.NotContains(t, index, "heading_level")

	more := readOutput(t, cfg, "guide/more.html")
	assert.Contains(t, more, `<div class="stub">second level=2</div>`)

	assert.Contains(t, logs.String(), "identifier=missing")
	expected := `
# HELP mkdocstrings_shell_collections_total Collected identifiers by handler and result
# TYPE mkdocstrings_shell_collections_total counter
mkdocstrings_shell_collections_total{handler="stub",result="not_found"} 1
mkdocstrings_shell_collections_total{handler="stub",result="success"} 2
# HELP mkdocstrings_shell_pages_built_total Pages written to the site directory
# TYPE mkdocstrings_shell_pages_built_total counter
mkdocstrings_shell_pages_built_total 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"mkdocstrings_shell_collections_total", "mkdocstrings_shell_pages_built_total"))
}

func TestBuilder_StrictFailsOnMissingIdentifiers(t *testing.T) {
	cfg := loadSite(t, stubConfig, map[string]string{"docs/index.md": "::: missing\n"})

	builder, err := NewBuilder(cfg,
		WithRegistry(stubRegistry(&stubHandler{})),
		WithStrict(true),
		WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
	require.NoError(t, err)

	report, err := builder.Build(context.Background())
	require.ErrorIs(t, err, ErrCollectionFailures)
	require.NotNil(t, report)
	assert.Len(t, report.Failures, 1)
	assert.Equal(t, []string{"index.html"}, report.Pages, "pages are still written")
}

func TestBuilder_HandlerNameKeepsGlobalOptions(t *testing.T) {
	cfg := loadSite(t, stubConfig, map[string]string{
		"docs/index.md": "::: first\n    handler: Stub\n",
	})
	stub := &stubHandler{}

	builder, err := NewBuilder(cfg, WithRegistry(stubRegistry(stub)), WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
	require.NoError(t, err)
	_, err = builder.Build(context.Background())
	require.NoError(t, err)

	require.Len(t, stub.options, 1)
	assert.Equal(t, 2, stub.options[0]["heading_level"])
	assert.Contains(t, readOutput(t, cfg, "index.html"), `<div class="stub">first level=2</div>`)
}

func TestBuilder_OtherErrorsAbort(t *testing.T) {
	cfg := loadSite(t, stubConfig, map[string]string{"docs/index.md": "::: broken\n"})

	builder, err := NewBuilder(cfg, WithRegistry(stubRegistry(&stubHandler{})))
	require.NoError(t, err)

	_, err = builder.Build(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parser exploded")
	assert.Contains(t, err.Error(), "index.md:1")
}

func TestBuilder_UnknownHandler(t *testing.T) {
	cfg := loadSite(t, stubConfig, map[string]string{"docs/index.md": "::: thing\n    handler: cobol\n"})

	builder, err := NewBuilder(cfg, WithRegistry(stubRegistry(&stubHandler{})))
	require.NoError(t, err)

	_, err = builder.Build(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"cobol" not found`)
}

func TestBuilder_ShellHandler(t *testing.T) {
	cfg := loadSite(t, "site_name: Scripts\n", map[string]string{
		"docs/index.md":    "# Reference\n\n::: scripts/build.sh\n    options:\n      show_root_heading: true\n      heading_level: 3\n",
		"scripts/build.sh": "#!/bin/sh\n## @brief Build the project.\n## @exit 1 Invalid arguments.\n",
	})

	builder, err := NewBuilder(cfg, WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
	require.NoError(t, err)

	report, err := builder.Build(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Failures)
	assert.Equal(t, []string{filepath.Join(cfg.BaseDir(), "scripts", "build.sh")}, report.Sources)

	index := readOutput(t, cfg, "index.html")
	for _, fragment := range []string{
		`<h3 id="build-sh" class="doc doc-heading">build.sh</h3>`,
		"Build the project.",
		"<code>1</code>",
		"Invalid arguments.",
	} {
		assert.True(t, strings.Contains(index, fragment), "expected %q in:\n%s", fragment, index)
	}
}

func TestBuilder_ShellHandlerSeveralBlocksPerPage(t *testing.T) {
	cfg := loadSite(t, "site_name: Scripts\n", map[string]string{
		"docs/index.md": "# Reference\n\n::: scripts/a.sh\n\n::: scripts/b.sh\n",
		"scripts/a.sh":  "#!/bin/sh\n## @brief First script.\n## @exit 0 Done.\n## @exit 1 Failed.\n",
		"scripts/b.sh":  "#!/bin/sh\n## @exit 2 Bad usage.\n## @brief Second script.\n",
	})

	builder, err := NewBuilder(cfg, WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
	require.NoError(t, err)

	report, err := builder.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Blocks)
	assert.Empty(t, report.Failures)

	index := readOutput(t, cfg, "index.html")
	assert.Equal(t, 2, strings.Count(index, ">Exit status</h3>"), index)
	for _, fragment := range []string{"First script.", "Failed.", "Bad usage.", "Second script."} {
		assert.Contains(t, index, fragment)
	}
}

func TestBuilder_LayoutOverride(t *testing.T) {
	cfg := loadSite(t, "site_name: Custom\ntheme:\n  name: material\n  custom_dir: overrides\n", map[string]string{
		"docs/index.md":           "plain\n",
		"overrides/page.html.tpl": "<main data-site=\"{{ site_name }}\">{{ content|safe }}</main>\n",
	})

	builder, err := NewBuilder(cfg, WithRegistry(handler.NewRegistry()))
	require.NoError(t, err)
	_, err = builder.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "<main data-site=\"Custom\"><p>plain</p>\n</main>\n", readOutput(t, cfg, "index.html"))
}

func TestNewBuilder_RequiresConfig(t *testing.T) {
	_, err := NewBuilder(nil)
	assert.Error(t, err)
}
