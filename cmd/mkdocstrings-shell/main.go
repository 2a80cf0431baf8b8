package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

// CLI is the command line of mkdocstrings-shell.
type CLI struct {
	Verbose bool `short:"v" help:"Enable debug logging"`

	Build struct {
		Config      string `short:"c" help:"Site configuration file" default:"mkdocs.yml"`
		Strict      bool   `help:"Fail when an identifier cannot be collected"`
		Watch       bool   `short:"w" help:"Rebuild when pages or documented scripts change"`
		MetricsFile string `help:"Write Prometheus metrics to this file after each build"`
	} `cmd:"" help:"Build the documentation site"`

	Render struct {
		Script          string `arg:"" help:"Script to document, relative to --base-dir"`
		BaseDir         string `help:"Directory the script path is resolved against" default:"."`
		HeadingLevel    int    `help:"Heading level of the root heading" default:"2"`
		ShowRootHeading bool   `help:"Render a heading for the script itself"`
		Theme           string `help:"Template theme" default:"material"`
		CustomTemplates string `help:"Directory with template overrides"`
	} `cmd:"" help:"Render the documentation of one script to stdout"`

	Init struct {
		Config string `short:"c" help:"Configuration file to create" default:"mkdocs.yml"`
		Yes    bool   `short:"y" help:"Accept the defaults without prompting"`
		Force  bool   `help:"Overwrite an existing configuration file"`
	} `cmd:"" help:"Create a starter site configuration"`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("mkdocstrings-shell"),
		kong.Description("Generate documentation pages from shell script comments."),
		kong.UsageOnError())

	slog.SetDefault(newLogger(os.Stderr, cli.Verbose))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, kctx.Command(), &cli, os.Stdout)
	stop()
	if err != nil {
		slog.Error("Command failed", "command", kctx.Command(), "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, cli *CLI, stdout io.Writer) error {
	switch command {
	case "build":
		return runBuild(ctx, buildOptions{
			ConfigPath:  cli.Build.Config,
			Strict:      cli.Build.Strict,
			Watch:       cli.Build.Watch,
			MetricsFile: cli.Build.MetricsFile,
		}, slog.Default())
	case "render <script>":
		return runRender(ctx, stdout, renderOptions{
			Script:          cli.Render.Script,
			BaseDir:         cli.Render.BaseDir,
			HeadingLevel:    cli.Render.HeadingLevel,
			ShowRootHeading: cli.Render.ShowRootHeading,
			Theme:           cli.Render.Theme,
			CustomTemplates: cli.Render.CustomTemplates,
		})
	case "init":
		var prompts PromptDriver = surveyDriver{}
		if cli.Init.Yes {
			prompts = defaultsDriver{}
		}
		return runInit(ctx, prompts, stdout, cli.Init.Config, cli.Init.Force)
	}
	return nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
