package main

import (
	"context"
	"fmt"
	"io"

	"github.com/mkdocstrings/shell/pkg/handler"
	"github.com/mkdocstrings/shell/pkg/handlers/shell"
)

type renderOptions struct {
	Script          string
	BaseDir         string
	HeadingLevel    int
	ShowRootHeading bool
	Theme           string
	CustomTemplates string
}

func runRender(ctx context.Context, out io.Writer, opts renderOptions) error {
	h := shell.New(shell.Name, opts.Theme, opts.CustomTemplates, "", shell.WithBaseDir(opts.BaseDir))

	data, err := h.Collect(ctx, opts.Script, nil)
	if err != nil {
		return err
	}
	html, err := h.Render(ctx, data, handler.Options{
		"heading_level":     opts.HeadingLevel,
		"show_root_heading": opts.ShowRootHeading,
	})
	if err != nil {
		return fmt.Errorf("render %s: %w", opts.Script, err)
	}
	_, err = fmt.Fprintln(out, html)
	return err
}
