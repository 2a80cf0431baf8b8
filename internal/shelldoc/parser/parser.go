package parser

import (
	"context"
	"fmt"
	"io/fs"
	"strings"
	"unicode"

	"github.com/mkdocstrings/shell/pkg/shelldoc"
)

// Parser implements shelldoc.Parser for "##" documentation comments.
type Parser struct {
	fs              fs.FS
	detectFunctions bool
}

var _ shelldoc.Parser = (*Parser)(nil)

// New constructs a Parser from pre-resolved options.
func New(options shelldoc.ParserOptions) shelldoc.Parser {
	return &Parser{
		fs:              options.FileSystem,
		detectFunctions: options.DetectFunctions,
	}
}

// Parse reads the script at path and extracts its documentation.
func (p *Parser) Parse(ctx context.Context, path string) (shelldoc.DocFile, error) {
	source, err := readScript(ctx, p.fs, path)
	if err != nil {
		return shelldoc.DocFile{}, fmt.Errorf("shelldoc: read %s: %w", path, err)
	}

	doc := shelldoc.DocFile{
		Filename: path,
		Sections: ParseSource(string(source)),
	}

	if !p.detectFunctions {
		return doc, nil
	}

	functions, err := detectFunctions(ctx, source)
	if err != nil {
		return shelldoc.DocFile{}, err
	}
	doc.Functions = functions
	markDefined(doc.Sections, functions)
	return doc, nil
}

// ParseSource extracts documentation sections from script text.
func ParseSource(source string) []shelldoc.Section {
	var (
		sections []shelldoc.Section
		current  *sectionBuilder
	)
	closeCurrent := func() {
		if current == nil {
			return
		}
		sections = append(sections, current.build())
		current = nil
	}

	lines := strings.Split(strings.ReplaceAll(source, "\r\n", "\n"), "\n")
	for i, raw := range lines {
		lineNo := i + 1
		if i == 0 && strings.HasPrefix(raw, "#!") {
			continue
		}

		body, ok := docLine(raw)
		if !ok {
			closeCurrent()
			continue
		}

		if tag, rest, isTag := splitTag(body); isTag {
			closeCurrent()
			current = newSectionBuilder(tag, rest, lineNo)
			continue
		}

		if current == nil {
			if strings.TrimSpace(body) == "" {
				continue
			}
			current = newSectionBuilder("desc", "", lineNo)
		}
		current.lines = append(current.lines, body)
	}
	closeCurrent()

	return sections
}

// docLine returns the content of a "##" documentation line. Banner lines made
// of three or more hashes are not documentation.
func docLine(raw string) (string, bool) {
	trimmed := strings.TrimLeft(raw, " \t")
	if !strings.HasPrefix(trimmed, "##") {
		return "", false
	}
	body := trimmed[2:]
	if strings.HasPrefix(body, "#") {
		return "", false
	}
	body = strings.TrimPrefix(body, " ")
	return strings.TrimRight(body, " \t"), true
}

func splitTag(body string) (string, string, bool) {
	if body == "" || (body[0] != '@' && body[0] != '\\') {
		return "", "", false
	}
	rest := body[1:]
	end := strings.IndexFunc(rest, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-')
	})
	if end < 0 {
		end = len(rest)
	}
	if end == 0 {
		return "", "", false
	}
	if end < len(rest) && !unicode.IsSpace(rune(rest[end])) {
		return "", "", false
	}
	return shelldoc.CanonicalTag(rest[:end]), strings.TrimSpace(rest[end:]), true
}

func markDefined(sections []shelldoc.Section, functions []shelldoc.Function) {
	if len(functions) == 0 {
		return
	}
	defined := make(map[string]int, len(functions))
	for _, fn := range functions {
		if _, exists := defined[fn.Name]; !exists {
			defined[fn.Name] = fn.Line
		}
	}
	for i := range sections {
		if sections[i].Kind != shelldoc.KindFunction {
			continue
		}
		if _, ok := defined[sections[i].Name]; ok {
			sections[i].Defined = true
		}
	}
}
