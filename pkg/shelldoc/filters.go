package shelldoc

import (
	"fmt"
	"html"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mkdocstrings/shell/pkg/render/template"
)

// FilterFunc matches the signature accepted by template.TemplateRenderer.
type FilterFunc = func(input any, param any) (any, error)

const defaultWrapWidth = 80

// Filters returns the fixed set of filters templates use to present a
// DocFile. A fresh map is returned on every call.
func Filters() map[string]FilterFunc {
	return map[string]FilterFunc{
		"first_word":   filterFirstWord,
		"body_lines":   filterBodyLines,
		"smartwrap":    filterSmartWrap,
		"option_flags": filterOptionFlags,
		"code_block":   filterCodeBlock,
		"basename":     filterBasename,
	}
}

func filterFirstWord(input any, _ any) (any, error) {
	fields := strings.Fields(stringOf(input))
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], nil
}

func filterBasename(input any, _ any) (any, error) {
	name := strings.TrimSpace(stringOf(input))
	if name == "" {
		return "", nil
	}
	return filepath.Base(name), nil
}

// filterBodyLines splits text into paragraphs. Indented lines are kept
// verbatim so preformatted snippets survive.
func filterBodyLines(input any, _ any) (any, error) {
	return Paragraphs(stringOf(input)), nil
}

func filterSmartWrap(input any, param any) (any, error) {
	width := defaultWrapWidth
	if param != nil {
		parsed, err := intOf(param)
		if err != nil {
			return nil, fmt.Errorf("shelldoc: smartwrap width: %w", err)
		}
		if parsed > 0 {
			width = parsed
		}
	}
	return SmartWrap(stringOf(input), width), nil
}

func filterOptionFlags(input any, _ any) (any, error) {
	var short, long, arg string
	switch v := input.(type) {
	case Section:
		short, long, arg = v.Short, v.Long, v.Argument
	case *Section:
		if v != nil {
			short, long, arg = v.Short, v.Long, v.Argument
		}
	case map[string]any:
		short, long, arg = stringOf(v["short"]), stringOf(v["long"]), stringOf(v["argument"])
	default:
		return stringOf(input), nil
	}
	return FormatOptionFlags(short, long, arg), nil
}

func filterCodeBlock(input any, param any) (any, error) {
	lang := strings.TrimSpace(stringOf(param))
	if lang == "" {
		lang = "sh"
	}
	code := strings.TrimRight(stringOf(input), "\n")
	return template.SafeHTML(fmt.Sprintf(`<pre><code class="language-%s">%s</code></pre>`,
		html.EscapeString(lang), html.EscapeString(code))), nil
}

// FormatOptionFlags joins the flags of an option section: "-o, --output FILE".
func FormatOptionFlags(short, long, arg string) string {
	flags := make([]string, 0, 2)
	if short = strings.TrimSpace(short); short != "" {
		flags = append(flags, short)
	}
	if long = strings.TrimSpace(long); long != "" {
		flags = append(flags, long)
	}
	out := strings.Join(flags, ", ")
	if arg = strings.TrimSpace(arg); arg != "" {
		if out == "" {
			return arg
		}
		out += " " + arg
	}
	return out
}

// Paragraphs splits text on blank lines. Consecutive unindented lines are
// joined with a space, indented lines keep their own line.
func Paragraphs(text string) []string {
	var (
		out     []string
		current []string
	)
	flush := func() {
		if len(current) == 0 {
			return
		}
		out = append(out, strings.Join(current, "\n"))
		current = nil
	}

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if isIndented(line) || len(current) == 0 {
			current = append(current, line)
			continue
		}
		last := current[len(current)-1]
		if isIndented(last) {
			current = append(current, line)
			continue
		}
		current[len(current)-1] = last + " " + strings.TrimSpace(line)
	}
	flush()
	return out
}

// SmartWrap re-wraps prose paragraphs at width while leaving indented lines
// untouched.
func SmartWrap(text string, width int) string {
	if width <= 0 {
		width = defaultWrapWidth
	}
	var out []string
	for _, paragraph := range Paragraphs(text) {
		if isIndented(paragraph) {
			out = append(out, paragraph)
			continue
		}
		out = append(out, wrapWords(strings.Fields(paragraph), width))
	}
	return strings.Join(out, "\n\n")
}

func wrapWords(words []string, width int) string {
	var (
		lines []string
		line  strings.Builder
	)
	for _, word := range words {
		if line.Len() > 0 && line.Len()+1+len(word) > width {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

func isIndented(line string) bool {
	return strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")
}

func stringOf(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case template.SafeHTML:
		return string(s)
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}

func intOf(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(n))
	default:
		return 0, fmt.Errorf("unsupported value %v (%T)", v, v)
	}
}
