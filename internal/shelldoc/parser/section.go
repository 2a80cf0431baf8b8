package parser

import (
	"strings"

	"github.com/mkdocstrings/shell/pkg/shelldoc"
)

type sectionBuilder struct {
	tag   string
	first string
	line  int
	lines []string
}

func newSectionBuilder(tag, first string, line int) *sectionBuilder {
	return &sectionBuilder{tag: tag, first: first, line: line}
}

func (b *sectionBuilder) build() shelldoc.Section {
	kind, title, _ := shelldoc.LookupTag(b.tag)
	section := shelldoc.Section{
		Tag:   b.tag,
		Kind:  kind,
		Title: title,
		Line:  b.line,
	}

	switch kind {
	case shelldoc.KindNamed:
		name, rest := splitFirstWord(b.first)
		section.Name = name
		section.Description = joinText(rest, b.lines)
	case shelldoc.KindOption:
		section.Short, section.Long, section.Argument = parseOptionSignature(b.first)
		section.Description = joinText("", b.lines)
	case shelldoc.KindExample:
		section.Brief = b.first
		section.Code = joinText("", b.lines)
	case shelldoc.KindFunction:
		section.Prototype = b.first
		section.Name = functionName(b.first)
		section.Description = joinText("", b.lines)
	default:
		section.Text = joinText(b.first, b.lines)
	}
	return section
}

// joinText joins the tag line remainder and continuation lines, dropping
// leading and trailing blank lines.
func joinText(first string, lines []string) string {
	all := make([]string, 0, len(lines)+1)
	if strings.TrimSpace(first) != "" {
		all = append(all, first)
	}
	all = append(all, lines...)

	start, end := 0, len(all)
	for start < end && strings.TrimSpace(all[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(all[end-1]) == "" {
		end--
	}
	return strings.Join(all[start:end], "\n")
}

func splitFirstWord(s string) (string, string) {
	s = strings.TrimSpace(s)
	idx := strings.IndexAny(s, " \t")
	if idx < 0 {
		return s, ""
	}
	return s[:idx], strings.TrimSpace(s[idx+1:])
}

// parseOptionSignature splits "-o, --output FILE" into its short flag, long
// flag and argument placeholder.
func parseOptionSignature(sig string) (short, long, arg string) {
	var args []string
	for _, token := range strings.Fields(strings.ReplaceAll(sig, ",", " ")) {
		switch {
		case strings.HasPrefix(token, "--"):
			if name, value, ok := strings.Cut(token, "="); ok {
				token = name
				if value != "" {
					args = append(args, value)
				}
			}
			if long == "" {
				long = token
				continue
			}
			args = append(args, token)
		case strings.HasPrefix(token, "-") && len(token) > 1 && short == "" && long == "":
			short = token
		default:
			args = append(args, token)
		}
	}
	return short, long, strings.Join(args, " ")
}

func functionName(prototype string) string {
	prototype = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(prototype), "function "))
	if idx := strings.IndexAny(prototype, "( \t"); idx >= 0 {
		return prototype[:idx]
	}
	return prototype
}
