// Package config loads the site configuration the build command works from.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultDocsDir is used when docs_dir is not configured.
	DefaultDocsDir = "docs"
	// DefaultSiteDir is used when site_dir is not configured.
	DefaultSiteDir = "site"
	// DefaultTheme is used when no theme is configured.
	DefaultTheme = "material"
	// DefaultHandler is used when mkdocstrings names no default handler.
	DefaultHandler = "shell"
)

// Config is the site configuration.
type Config struct {
	SiteName string   `yaml:"site_name"`
	DocsDir  string   `yaml:"docs_dir,omitempty"`
	SiteDir  string   `yaml:"site_dir,omitempty"`
	Theme    Theme    `yaml:"theme,omitempty"`
	Plugins  []Plugin `yaml:"plugins,omitempty"`

	// Path is the absolute location the configuration was read from.
	Path string `yaml:"-"`
}

// Theme accepts both `theme: material` and `theme: {name: material, custom_dir: overrides}`.
type Theme struct {
	Name      string `yaml:"name"`
	CustomDir string `yaml:"custom_dir,omitempty"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *Theme) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		t.Name = strings.TrimSpace(node.Value)
		return nil
	}
	type plain Theme
	var decoded plain
	if err := node.Decode(&decoded); err != nil {
		return fmt.Errorf("theme: %w", err)
	}
	*t = Theme(decoded)
	return nil
}

// Plugin is one entry of the plugins list. Plugins given as a bare name have
// no options.
type Plugin struct {
	Name         string
	Mkdocstrings *Mkdocstrings
	Raw          map[string]any
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *Plugin) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		p.Name = strings.TrimSpace(node.Value)
		return nil
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return fmt.Errorf("plugin entry at line %d must have exactly one key", node.Line)
		}
		p.Name = strings.TrimSpace(node.Content[0].Value)
		body := node.Content[1]
		if p.Name == MkdocstringsPlugin {
			var m Mkdocstrings
			if err := body.Decode(&m); err != nil {
				return fmt.Errorf("plugin %s: %w", p.Name, err)
			}
			p.Mkdocstrings = &m
			return nil
		}
		if err := body.Decode(&p.Raw); err != nil {
			return fmt.Errorf("plugin %s: %w", p.Name, err)
		}
		return nil
	default:
		return fmt.Errorf("plugin entry at line %d: unexpected YAML kind", node.Line)
	}
}

// MarshalYAML implements yaml.Marshaler.
func (p Plugin) MarshalYAML() (any, error) {
	switch {
	case p.Mkdocstrings != nil:
		return map[string]any{p.Name: p.Mkdocstrings}, nil
	case len(p.Raw) > 0:
		return map[string]any{p.Name: p.Raw}, nil
	default:
		return p.Name, nil
	}
}

// MkdocstringsPlugin is the plugin key carrying handler configuration.
const MkdocstringsPlugin = "mkdocstrings"

// Mkdocstrings configures the documentation handlers.
type Mkdocstrings struct {
	DefaultHandler  string                   `yaml:"default_handler,omitempty"`
	CustomTemplates string                   `yaml:"custom_templates,omitempty"`
	Handlers        map[string]HandlerConfig `yaml:"handlers,omitempty"`
}

// HandlerConfig holds the global options of one handler. Extra keys are kept
// and passed to the handler factory.
type HandlerConfig struct {
	Options map[string]any `yaml:"options,omitempty"`
	Extra   map[string]any `yaml:",inline"`
}

// Load reads the configuration at path. A .env file next to it is loaded
// first and ${VAR} references in the file are expanded. Relative directories
// are resolved against the configuration directory.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("config: path is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}

	if err := loadEnvFile(filepath.Dir(abs)); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	cfg.Path = abs
	cfg.resolvePaths()
	return cfg, nil
}

// Parse decodes configuration content after expanding environment
// references. Defaults are applied; paths are left as written.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DocsDir == "" {
		c.DocsDir = DefaultDocsDir
	}
	if c.SiteDir == "" {
		c.SiteDir = DefaultSiteDir
	}
	if c.Theme.Name == "" {
		c.Theme.Name = DefaultTheme
	}
}

func (c *Config) validate() error {
	seen := make(map[string]struct{}, len(c.Plugins))
	for _, plugin := range c.Plugins {
		if plugin.Name == "" {
			return errors.New("plugin entry with empty name")
		}
		if _, dup := seen[plugin.Name]; dup {
			return fmt.Errorf("plugin %q listed twice", plugin.Name)
		}
		seen[plugin.Name] = struct{}{}
	}
	if filepath.Clean(c.DocsDir) == filepath.Clean(c.SiteDir) {
		return fmt.Errorf("docs_dir and site_dir must differ (both %q)", c.DocsDir)
	}
	return nil
}

func (c *Config) resolvePaths() {
	base := c.BaseDir()
	c.DocsDir = resolve(base, c.DocsDir)
	c.SiteDir = resolve(base, c.SiteDir)
	if c.Theme.CustomDir != "" {
		c.Theme.CustomDir = resolve(base, c.Theme.CustomDir)
	}
	if m := c.mkdocstrings(); m != nil && m.CustomTemplates != "" {
		m.CustomTemplates = resolve(base, m.CustomTemplates)
	}
}

func resolve(base, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}

// BaseDir returns the directory holding the configuration file, or "." when
// the configuration was not loaded from disk.
func (c *Config) BaseDir() string {
	if c.Path == "" {
		return "."
	}
	return filepath.Dir(c.Path)
}

func (c *Config) mkdocstrings() *Mkdocstrings {
	for i := range c.Plugins {
		if c.Plugins[i].Mkdocstrings != nil {
			return c.Plugins[i].Mkdocstrings
		}
	}
	return nil
}

// DefaultHandler returns the handler used by blocks that name none.
func (c *Config) DefaultHandler() string {
	if m := c.mkdocstrings(); m != nil && m.DefaultHandler != "" {
		return m.DefaultHandler
	}
	return DefaultHandler
}

// CustomTemplates returns the custom template directory, or "".
func (c *Config) CustomTemplates() string {
	if m := c.mkdocstrings(); m != nil {
		return m.CustomTemplates
	}
	return ""
}

// HandlerOptions returns a copy of the global options configured for name.
func (c *Config) HandlerOptions(name string) map[string]any {
	out := map[string]any{}
	for key, value := range c.handlerConfig(name).Options {
		out[key] = value
	}
	return out
}

// HandlerExtra returns the handler configuration keys other than options.
func (c *Config) HandlerExtra(name string) map[string]any {
	return c.handlerConfig(name).Extra
}

// handlerConfig finds the handlers entry for name, ignoring case and
// surrounding space.
func (c *Config) handlerConfig(name string) HandlerConfig {
	m := c.mkdocstrings()
	if m == nil {
		return HandlerConfig{}
	}
	if hc, ok := m.Handlers[name]; ok {
		return hc
	}
	name = strings.TrimSpace(name)
	for key, hc := range m.Handlers {
		if strings.EqualFold(strings.TrimSpace(key), name) {
			return hc
		}
	}
	return HandlerConfig{}
}
