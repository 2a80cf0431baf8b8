package gotemplate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/mkdocstrings/shell/pkg/render/template"
)

// Option configures the engine before construction.
type Option func(*config)

const templateExt = ".tpl"

type config struct {
	name       string
	baseDir    string
	templates  []fs.FS
	globals    map[string]any
	whitespace template.Whitespace
}

// WithName labels the underlying pongo2 template set.
func WithName(name string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			cfg.name = trimmed
		}
	}
}

// WithBaseDir configures the engine to load templates from a base directory
// on disk. It is searched before any fs.FS loader.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS appends an fs.FS loader. Loaders are searched in the order they were
// added, so earlier filesystems override later ones.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		if files == nil {
			return
		}
		cfg.templates = append(cfg.templates, files)
	}
}

// WithGlobalData seeds the values every template can see, as GlobalContext
// does after construction.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		if len(data) == 0 {
			return
		}
		if cfg.globals == nil {
			cfg.globals = make(map[string]any, len(data))
		}
		for key, value := range data {
			cfg.globals[key] = value
		}
	}
}

// Engine satisfies template.TemplateRenderer using a pongo2 template set.
//
// pongo2 keeps filters in a process-wide table, so RegisterFilter affects every
// Engine in the process.
type Engine struct {
	mu sync.RWMutex

	templateSet *pongo2.TemplateSet
	templates   map[string]*pongo2.Template
	whitespace  template.Whitespace
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New constructs an Engine using the provided configuration options.
func New(options ...Option) (*Engine, error) {
	cfg := &config{
		name: "shell",
		whitespace: template.Whitespace{
			KeepTrailingNewline: true,
		},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	if cfg.baseDir == "" && len(cfg.templates) == 0 {
		return nil, errors.New("gotemplate: need to provide either base dir or fs.FS")
	}

	var loaders []pongo2.TemplateLoader
	if cfg.baseDir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("gotemplate: create local loader: %w", err)
		}
		loaders = append(loaders, loader)
	}
	for _, files := range cfg.templates {
		loaders = append(loaders, pongo2.NewFSLoader(files))
	}

	engine := &Engine{
		templateSet: pongo2.NewSet(cfg.name, loaders...),
		templates:   make(map[string]*pongo2.Template),
	}
	engine.SetWhitespace(cfg.whitespace)
	if len(cfg.globals) > 0 {
		if err := engine.GlobalContext(cfg.globals); err != nil {
			return nil, fmt.Errorf("gotemplate: global data: %w", err)
		}
	}
	registerDefaultFilters()

	return engine, nil
}

// Render renders name as inline template content when it contains template
// tags, otherwise as a named template.
func (e *Engine) Render(name string, data any, out ...io.Writer) (string, error) {
	if isTemplateContent(name) {
		return e.RenderString(name, data, out...)
	}
	return e.RenderTemplate(name, data, out...)
}

// RenderTemplate renders the named template, appending the configured
// extension when name lacks it.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.templateSet == nil {
		return "", errors.New("gotemplate: engine is nil")
	}
	templatePath := name
	if !strings.HasSuffix(templatePath, templateExt) {
		templatePath += templateExt
	}

	tmpl, err := e.getTemplate(templatePath)
	if err != nil {
		return "", err
	}

	rendered, err := e.execute(tmpl, data)
	if err != nil {
		return "", fmt.Errorf("gotemplate: execute template %q: %w", templatePath, err)
	}
	return rendered, writeAll(rendered, out)
}

// RenderString parses and renders templateContent.
func (e *Engine) RenderString(templateContent string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.templateSet == nil {
		return "", errors.New("gotemplate: engine is nil")
	}

	e.mu.RLock()
	tmpl, err := e.templateSet.FromString(templateContent)
	e.mu.RUnlock()
	if err != nil {
		return "", fmt.Errorf("gotemplate: parse template string: %w", err)
	}

	rendered, err := e.execute(tmpl, data)
	if err != nil {
		return "", fmt.Errorf("gotemplate: execute template string: %w", err)
	}
	return rendered, writeAll(rendered, out)
}

// RegisterFilter installs fn under name, replacing an existing filter of the
// same name. Results of type template.SafeHTML are not escaped.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return errors.New("gotemplate: filter name and function required")
	}

	filter := func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var paramVal any
		if param != nil && !param.IsNil() {
			paramVal = param.Interface()
		}
		result, err := fn(in.Interface(), paramVal)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		if safe, ok := result.(template.SafeHTML); ok {
			return pongo2.AsSafeValue(string(safe)), nil
		}
		return pongo2.AsValue(result), nil
	}

	if pongo2.FilterExists(name) {
		return pongo2.ReplaceFilter(name, filter)
	}
	return pongo2.RegisterFilter(name, filter)
}

// GlobalContext merges data into the values every template can see.
func (e *Engine) GlobalContext(data any) error {
	if e == nil || e.templateSet == nil {
		return errors.New("gotemplate: engine is nil")
	}
	if data == nil {
		return nil
	}

	globalCtx, err := convertToContext(data)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.templateSet.Globals == nil {
		e.templateSet.Globals = make(pongo2.Context)
	}
	e.templateSet.Globals.Update(globalCtx)
	return nil
}

// SetWhitespace changes block whitespace handling. Templates compiled under
// the previous settings are dropped.
func (e *Engine) SetWhitespace(ws template.Whitespace) {
	if e == nil || e.templateSet == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.templateSet.Options == nil {
		e.templateSet.Options = &pongo2.Options{}
	}
	e.templateSet.Options.TrimBlocks = ws.TrimBlocks
	e.templateSet.Options.LStripBlocks = ws.LStripBlocks
	e.whitespace = ws
	e.templates = make(map[string]*pongo2.Template)
}

func (e *Engine) execute(tmpl *pongo2.Template, data any) (string, error) {
	viewContext, err := convertToContext(data)
	if err != nil {
		return "", fmt.Errorf("convert data: %w", err)
	}

	var buf bytes.Buffer

	e.mu.RLock()
	err = tmpl.ExecuteWriter(viewContext, &buf)
	keepNewline := e.whitespace.KeepTrailingNewline
	e.mu.RUnlock()

	if err != nil {
		return "", err
	}

	rendered := buf.String()
	if !keepNewline {
		rendered = strings.TrimSuffix(rendered, "\n")
	}
	return rendered, nil
}

func writeAll(rendered string, out []io.Writer) error {
	for _, w := range out {
		if w == nil {
			continue
		}
		if _, err := io.WriteString(w, rendered); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) getTemplate(path string) (*pongo2.Template, error) {
	e.mu.RLock()
	if tmpl, ok := e.templates[path]; ok {
		e.mu.RUnlock()
		return tmpl, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if tmpl, ok := e.templates[path]; ok {
		return tmpl, nil
	}

	tmpl, err := e.templateSet.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: load template %q: %w", path, err)
	}

	e.templates[path] = tmpl
	return tmpl, nil
}

func isTemplateContent(s string) bool {
	return strings.Contains(s, "{{") || strings.Contains(s, "{%")
}

func isCallable(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.IsValid() && rv.Kind() == reflect.Func
}

func convertToContext(data any) (pongo2.Context, error) {
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		return convertMapToContext(map[string]any(v))
	case map[string]any:
		return convertMapToContext(v)
	default:
		m, err := jsonToMap(v)
		if err != nil {
			return nil, err
		}
		return convertMapToContext(m)
	}
}

func convertMapToContext(in map[string]any) (pongo2.Context, error) {
	out := make(pongo2.Context, len(in))
	for key, value := range in {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		converted, err := convertValue(value)
		if err != nil {
			return nil, err
		}
		out[key] = converted
	}
	return out, nil
}

// convertValue flattens structured values into maps and slices so templates
// address fields by their JSON names. Scalars pass through untouched.
func convertValue(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	if isCallable(value) {
		return value, nil
	}

	switch v := value.(type) {
	case string, bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32:
		return v, nil
	case float64:
		return normalizeNumber(v), nil
	case template.SafeHTML:
		return string(v), nil
	case pongo2.Context:
		return convertMap(map[string]any(v))
	case map[string]any:
		return convertMap(v)
	case []any:
		return convertSlice(v)
	default:
		raw, err := jsonToAny(v)
		if err != nil {
			return nil, err
		}
		return convertValue(raw)
	}
}

func convertMap(in map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(in))
	for key, value := range in {
		converted, err := convertValue(value)
		if err != nil {
			return nil, err
		}
		out[key] = converted
	}
	return out, nil
}

func convertSlice(in []any) ([]any, error) {
	out := make([]any, 0, len(in))
	for _, value := range in {
		converted, err := convertValue(value)
		if err != nil {
			return nil, err
		}
		out = append(out, converted)
	}
	return out, nil
}

// normalizeNumber turns integral JSON numbers back into ints so they print
// without a fractional part.
func normalizeNumber(v float64) any {
	if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
		return int(v)
	}
	return v
}

func jsonToMap(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func jsonToAny(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func registerDefaultFilters() {
	if !pongo2.FilterExists("trim") {
		_ = pongo2.RegisterFilter("trim", filterTrim)
	}
	if !pongo2.FilterExists("dedent") {
		_ = pongo2.RegisterFilter("dedent", filterDedent)
	}
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

// filterDedent removes the indentation shared by every non-blank line.
func filterDedent(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	lines := strings.Split(in.String(), "\n")

	common := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if common < 0 || indent < common {
			common = indent
		}
	}
	if common <= 0 {
		return pongo2.AsValue(in.String()), nil
	}

	for i, line := range lines {
		if len(line) >= common {
			lines[i] = line[common:]
		} else {
			lines[i] = strings.TrimLeft(line, " \t")
		}
	}
	return pongo2.AsValue(strings.Join(lines, "\n")), nil
}
