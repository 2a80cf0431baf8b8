package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkdocstrings/shell/internal/autodoc"
	"github.com/mkdocstrings/shell/internal/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestCLI_Parse(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("mkdocstrings-shell"), kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)

	kctx, err := parser.Parse([]string{"render", "scripts/build.sh", "--heading-level", "3", "--show-root-heading"})
	require.NoError(t, err)
	assert.Equal(t, "render <script>", kctx.Command())
	assert.Equal(t, "scripts/build.sh", cli.Render.Script)
	assert.Equal(t, 3, cli.Render.HeadingLevel)
	assert.True(t, cli.Render.ShowRootHeading)
	assert.Equal(t, "material", cli.Render.Theme)

	cli = CLI{}
	kctx, err = parser.Parse([]string{"-v", "build", "--strict", "--metrics-file", "out.prom"})
	require.NoError(t, err)
	assert.Equal(t, "build", kctx.Command())
	assert.True(t, cli.Verbose)
	assert.True(t, cli.Build.Strict)
	assert.Equal(t, "mkdocs.yml", cli.Build.Config)
	assert.Equal(t, "out.prom", cli.Build.MetricsFile)
}

func TestRunRender(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "scripts", "build.sh"), "#!/bin/sh\n## @brief Build everything.\n")

	var out bytes.Buffer
	err := runRender(context.Background(), &out, renderOptions{
		Script:          "scripts/build.sh",
		BaseDir:         dir,
		HeadingLevel:    4,
		ShowRootHeading: true,
		Theme:           "material",
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), `<h4 id="build-sh" class="doc doc-heading">build.sh</h4>`)
	assert.Contains(t, out.String(), "Build everything.")

	err = runRender(context.Background(), &out, renderOptions{Script: "scripts/absent.sh", BaseDir: dir, Theme: "material"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), filepath.Join(dir, "scripts", "absent.sh"))
}

type scriptedDriver struct {
	inputs   []string
	selects  []int
	confirms []bool
}

func (d *scriptedDriver) Input(context.Context, InputConfig) (string, error) {
	v := d.inputs[0]
	d.inputs = d.inputs[1:]
	return v, nil
}

func (d *scriptedDriver) Confirm(context.Context, ConfirmConfig) (bool, error) {
	v := d.confirms[0]
	d.confirms = d.confirms[1:]
	return v, nil
}

func (d *scriptedDriver) Select(context.Context, SelectConfig) (int, error) {
	v := d.selects[0]
	d.selects = d.selects[1:]
	return v, nil
}

func TestRunInit_Prompts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mkdocs.yml")
	driver := &scriptedDriver{
		inputs:   []string{"Ops scripts", "pages"},
		selects:  []int{1, 2},
		confirms: []bool{true},
	}

	var out bytes.Buffer
	require.NoError(t, runInit(context.Background(), driver, &out, path, false))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Ops scripts", cfg.SiteName)
	assert.Equal(t, "readthedocs", cfg.Theme.Name)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "pages"), cfg.DocsDir)
	assert.Equal(t, map[string]any{"heading_level": 3, "show_root_heading": true}, cfg.HandlerOptions("shell"))

	index, err := os.ReadFile(filepath.Join(cfg.DocsDir, "index.md"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(index), "# Ops scripts\n"))
	assert.Contains(t, out.String(), "Configuration written to")
}

func TestRunInit_DefaultsAndExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mkdocs.yml")

	require.NoError(t, runInit(context.Background(), defaultsDriver{}, &bytes.Buffer{}, path, false))
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(dir), cfg.SiteName)
	assert.Equal(t, "material", cfg.Theme.Name)
	assert.Equal(t, 2, cfg.HandlerOptions("shell")["heading_level"])

	assert.Error(t, runInit(context.Background(), defaultsDriver{}, &bytes.Buffer{}, path, false))
	assert.NoError(t, runInit(context.Background(), defaultsDriver{}, &bytes.Buffer{}, path, true))
}

func TestRunBuild(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "mkdocs.yml")
	writeFile(t, configPath, "site_name: CLI\n")
	writeFile(t, filepath.Join(dir, "docs", "index.md"), "# CLI\n\n::: scripts/run.sh\n\n::: scripts/gone.sh\n")
	writeFile(t, filepath.Join(dir, "scripts", "run.sh"), "#!/bin/sh\n## @brief Run it.\n")
	metricsFile := filepath.Join(dir, "build.prom")

	err := runBuild(context.Background(), buildOptions{ConfigPath: configPath, MetricsFile: metricsFile}, quietLogger())
	require.NoError(t, err)

	page, err := os.ReadFile(filepath.Join(dir, "site", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "Run it.")

	metrics, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), `mkdocstrings_shell_collections_total{handler="shell",result="not_found"} 1`)
	assert.Contains(t, string(metrics), "mkdocstrings_shell_pages_built_total 1")

	err = runBuild(context.Background(), buildOptions{ConfigPath: configPath, Strict: true}, quietLogger())
	assert.True(t, errors.Is(err, autodoc.ErrCollectionFailures), "got %v", err)
}

func TestRunBuild_SharedHandlerAcrossPages(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "mkdocs.yml")
	writeFile(t, configPath, "site_name: CLI\n")
	writeFile(t, filepath.Join(dir, "docs", "a.md"), "::: scripts/run.sh\n\n::: scripts/run.sh\n")
	writeFile(t, filepath.Join(dir, "docs", "b.md"), "::: scripts/run.sh\n")
	writeFile(t, filepath.Join(dir, "scripts", "run.sh"), "#!/bin/sh\n## @option -q Quiet.\n## @option -v Verbose.\n")

	require.NoError(t, runBuild(context.Background(), buildOptions{ConfigPath: configPath}, quietLogger()))

	a, err := os.ReadFile(filepath.Join(dir, "site", "a.html"))
	require.NoError(t, err)
	b, err := os.ReadFile(filepath.Join(dir, "site", "b.html"))
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(a), ">Options</h3>"))
	assert.Equal(t, 1, strings.Count(string(b), ">Options</h3>"))
}

func TestRunBuild_MissingConfig(t *testing.T) {
	err := runBuild(context.Background(), buildOptions{ConfigPath: filepath.Join(t.TempDir(), "none.yml"), Watch: true}, quietLogger())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
