package main

import (
	"context"
	"fmt"
	"log/slog"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/mkdocstrings/shell/internal/autodoc"
	"github.com/mkdocstrings/shell/internal/config"
	"github.com/mkdocstrings/shell/internal/metrics"
	"github.com/mkdocstrings/shell/internal/watch"

	_ "github.com/mkdocstrings/shell/pkg/handlers/shell"
)

type buildOptions struct {
	ConfigPath  string
	Strict      bool
	Watch       bool
	MetricsFile string
}

// runBuild builds the site once, or keeps rebuilding on changes in watch
// mode. The configuration is reloaded for every build.
func runBuild(ctx context.Context, opts buildOptions, logger *slog.Logger) error {
	var (
		registry *prom.Registry
		recorder metrics.Recorder = metrics.NoopRecorder{}
	)
	if opts.MetricsFile != "" {
		registry = prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(registry)
	}

	var cfg *config.Config
	build := func(ctx context.Context) ([]string, error) {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded

		builder, err := autodoc.NewBuilder(cfg,
			autodoc.WithStrict(opts.Strict),
			autodoc.WithRecorder(recorder),
			autodoc.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		report, err := builder.Build(ctx)

		if registry != nil {
			if werr := prom.WriteToTextfile(opts.MetricsFile, registry); werr != nil {
				logger.Error("Failed to write metrics", "file", opts.MetricsFile, "error", werr)
			}
		}
		if report == nil {
			return nil, err
		}
		return append(report.Sources, cfg.Path), err
	}

	sources, err := build(ctx)
	if !opts.Watch {
		return err
	}
	if cfg == nil {
		return err
	}
	if err != nil {
		logger.Error("Build failed, watching for changes", "error", err)
	}

	w, err := watch.New(build, append([]string{cfg.DocsDir}, sources...), watch.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	logger.Info("Watching for changes", "docs_dir", cfg.DocsDir)
	return w.Run(ctx)
}
