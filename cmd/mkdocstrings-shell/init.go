package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mkdocstrings/shell/internal/config"
)

var themes = []string{"material", "readthedocs", "mkdocs"}

// runInit asks for the starter settings, writes the configuration and seeds
// the docs directory with an index page when it has none.
func runInit(ctx context.Context, prompts PromptDriver, out io.Writer, path string, force bool) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)

	siteName, err := prompts.Input(ctx, InputConfig{
		Message:   "Site name",
		Default:   filepath.Base(dir),
		Validator: required("site name"),
	})
	if err != nil {
		return err
	}
	docsDir, err := prompts.Input(ctx, InputConfig{
		Message:   "Docs directory",
		Default:   config.DefaultDocsDir,
		Validator: required("docs directory"),
	})
	if err != nil {
		return err
	}
	themeIdx, err := prompts.Select(ctx, SelectConfig{Message: "Theme", Options: themes})
	if err != nil {
		return err
	}
	if themeIdx < 0 || themeIdx >= len(themes) {
		themeIdx = 0
	}
	levels := []string{"1", "2", "3", "4", "5", "6"}
	levelIdx, err := prompts.Select(ctx, SelectConfig{Message: "Heading level of documented scripts", Options: levels, DefaultIndex: 1})
	if err != nil {
		return err
	}
	level, err := strconv.Atoi(levels[min(max(levelIdx, 0), len(levels)-1)])
	if err != nil {
		return err
	}
	showRoot, err := prompts.Confirm(ctx, ConfirmConfig{Message: "Show a heading with each script's name?"})
	if err != nil {
		return err
	}

	starter := config.StarterConfig(config.Starter{
		SiteName:     siteName,
		DocsDir:      docsDir,
		Theme:        themes[themeIdx],
		HeadingLevel: level,
		ShowRoot:     showRoot,
	})
	if err := config.Init(abs, starter, force); err != nil {
		return err
	}
	fmt.Fprintf(out, "Configuration written to %s\n", abs)

	index := filepath.Join(dir, docsDir, "index.md")
	if _, err := os.Stat(index); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(index), 0o755); err != nil {
			return err
		}
		page := fmt.Sprintf("# %s\n\nDocument a script by referencing it relative to %s:\n\n    ::: scripts/example.sh\n", siteName, filepath.Base(abs))
		if err := os.WriteFile(index, []byte(page), 0o644); err != nil {
			return err
		}
		fmt.Fprintf(out, "Starter page written to %s\n", index)
	}
	return nil
}

func required(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", what)
		}
		return nil
	}
}
