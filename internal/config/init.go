package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Starter describes the configuration Init writes.
type Starter struct {
	SiteName     string
	DocsDir      string
	Theme        string
	HeadingLevel int
	ShowRoot     bool
}

// StarterConfig builds a configuration enabling the shell handler.
func StarterConfig(s Starter) Config {
	if s.HeadingLevel == 0 {
		s.HeadingLevel = 2
	}
	cfg := Config{
		SiteName: s.SiteName,
		DocsDir:  s.DocsDir,
		Theme:    Theme{Name: s.Theme},
		Plugins: []Plugin{
			{Name: "search"},
			{
				Name: MkdocstringsPlugin,
				Mkdocstrings: &Mkdocstrings{
					DefaultHandler: DefaultHandler,
					Handlers: map[string]HandlerConfig{
						DefaultHandler: {Options: map[string]any{
							"heading_level":     s.HeadingLevel,
							"show_root_heading": s.ShowRoot,
						}},
					},
				},
			},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// Init writes cfg to path. Existing files are kept unless force is set.
func Init(path string, cfg Config, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config: %s already exists (use --force to overwrite)", path)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
