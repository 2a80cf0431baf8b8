package autodoc

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var blockPattern = regexp.MustCompile(`^::: ?(\S.*?)\s*$`)

// Block is one `::: identifier` directive found in a page.
type Block struct {
	Identifier string
	Handler    string
	Options    map[string]any
	// Line is the 1-based line of the directive.
	Line int

	start, end int
}

type blockConfig struct {
	Handler string         `yaml:"handler"`
	Options map[string]any `yaml:"options"`
}

// ParseBlocks finds the autodoc directives in a Markdown page. Directives
// inside fenced code are ignored. The indented lines following a directive
// are read as YAML holding `handler` and `options`.
func ParseBlocks(source string) ([]Block, error) {
	lines := strings.Split(source, "\n")

	var (
		blocks []Block
		fence  string
	)
	for i := 0; i < len(lines); i++ {
		line := strings.TrimRight(lines[i], "\r")

		if marker := fenceMarker(line); marker != "" {
			switch {
			case fence == "":
				fence = marker
			case strings.HasPrefix(marker, fence):
				fence = ""
			}
			continue
		}
		if fence != "" {
			continue
		}

		match := blockPattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}

		end := i + 1
		for end < len(lines) && (isBlank(lines[end]) || isIndentedLine(lines[end])) {
			end++
		}
		for end > i+1 && isBlank(lines[end-1]) {
			end--
		}

		block := Block{Identifier: match[1], Line: i + 1, start: i, end: end}
		if body := dedent(lines[i+1 : end]); strings.TrimSpace(body) != "" {
			var cfg blockConfig
			if err := yaml.Unmarshal([]byte(body), &cfg); err != nil {
				return nil, fmt.Errorf("autodoc: options of %q at line %d: %w", block.Identifier, block.Line, err)
			}
			block.Handler = strings.TrimSpace(cfg.Handler)
			block.Options = cfg.Options
		}
		blocks = append(blocks, block)
		i = end - 1
	}
	return blocks, nil
}

// fenceMarker returns the run of backticks or tildes opening line, if the
// line is a code fence.
func fenceMarker(line string) string {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		return ""
	}
	for _, ch := range []byte{'`', '~'} {
		n := 0
		for n < len(trimmed) && trimmed[n] == ch {
			n++
		}
		if n >= 3 {
			return trimmed[:n]
		}
	}
	return ""
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

func isIndentedLine(line string) bool {
	return strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")
}

func dedent(lines []string) string {
	indent := -1
	for _, line := range lines {
		if isBlank(line) {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		if len(line) >= indent && indent > 0 {
			out[i] = strings.TrimRight(line[indent:], "\r")
			continue
		}
		out[i] = strings.TrimSpace(line)
	}
	return strings.Join(out, "\n")
}
