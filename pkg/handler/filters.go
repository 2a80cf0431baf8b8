package handler

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"sync"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"github.com/mkdocstrings/shell/pkg/render/template"
)

// FilterFunc matches the signature accepted by template.TemplateRenderer.
type FilterFunc = func(input any, param any) (any, error)

var (
	markupPolicyOnce sync.Once
	markupPolicy     *bluemonday.Policy
)

// BaseFilters returns the filters every handler installs in UpdateEnv:
// convert_markdown, heading, highlight and anchor. md converts Markdown text; a nil md
// uses goldmark defaults. Installing the set replaces convert_markdown for
// every engine in the process.
func BaseFilters(md goldmark.Markdown) map[string]FilterFunc {
	if md == nil {
		md = goldmark.New()
	}
	return map[string]FilterFunc{
		"convert_markdown": convertMarkdownFilter(md),
		"heading":          filterHeading,
		"highlight":        filterHighlight,
		"anchor":           filterAnchor,
	}
}

func filterAnchor(input any, _ any) (any, error) {
	return Slugify(fmt.Sprint(valueOrEmpty(input))), nil
}

// InstallFilters registers every filter in each set on renderer.
func InstallFilters(renderer template.TemplateRenderer, sets ...map[string]FilterFunc) error {
	for _, set := range sets {
		for name, fn := range set {
			if err := renderer.RegisterFilter(name, fn); err != nil {
				return fmt.Errorf("handler: register filter %q: %w", name, err)
			}
		}
	}
	return nil
}

func convertMarkdownFilter(md goldmark.Markdown) FilterFunc {
	return func(input any, _ any) (any, error) {
		source := strings.TrimSpace(fmt.Sprint(valueOrEmpty(input)))
		if source == "" {
			return template.SafeHTML(""), nil
		}
		var buf bytes.Buffer
		if err := md.Convert([]byte(source), &buf); err != nil {
			return nil, fmt.Errorf("handler: convert markdown: %w", err)
		}
		return template.SafeHTML(SanitizeMarkup(buf.String())), nil
	}
}

// filterHeading renders input as an anchored heading at the level given as
// the filter parameter (default 2, clamped to 1..6).
func filterHeading(input any, param any) (any, error) {
	title := strings.TrimSpace(fmt.Sprint(valueOrEmpty(input)))
	level, err := toInt(param)
	if err != nil {
		level = 2
	}
	level = min(max(level, 1), 6)
	return template.SafeHTML(fmt.Sprintf(`<h%d id="%s" class="doc doc-heading">%s</h%d>`,
		level, Slugify(title), html.EscapeString(title), level)), nil
}

func filterHighlight(input any, param any) (any, error) {
	code := strings.TrimRight(fmt.Sprint(valueOrEmpty(input)), "\n")
	class := "highlight"
	if lang := strings.TrimSpace(fmt.Sprint(valueOrEmpty(param))); lang != "" {
		class = "highlight language-" + html.EscapeString(lang)
	}
	return template.SafeHTML(fmt.Sprintf(`<div class="%s"><pre><code>%s</code></pre></div>`,
		class, html.EscapeString(code))), nil
}

// Slugify lowercases s and collapses runs of non-alphanumerics into dashes.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// SanitizeMarkup strips markup that script documentation has no business
// emitting (scripts, event handlers, styles) from converted Markdown.
func SanitizeMarkup(raw string) string {
	return strings.TrimSpace(markupSanitizer().Sanitize(raw))
}

func markupSanitizer() *bluemonday.Policy {
	markupPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "pre", "div", "span")
		policy.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
		markupPolicy = policy
	})
	return markupPolicy
}

func valueOrEmpty(v any) any {
	if v == nil {
		return ""
	}
	return v
}
