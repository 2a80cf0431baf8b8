package shelldoc

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mkdocstrings/shell/pkg/render/template"
)

func TestFilters_FixedSet(t *testing.T) {
	want := []string{"basename", "body_lines", "code_block", "first_word", "option_flags", "smartwrap"}
	filters := Filters()
	if len(filters) != len(want) {
		t.Fatalf("expected %d filters, got %d", len(want), len(filters))
	}
	for _, name := range want {
		if filters[name] == nil {
			t.Fatalf("missing filter %q", name)
		}
	}
}

func TestFilters_FirstWord(t *testing.T) {
	got, err := filterFirstWord("  BUILD_MODE selects the mode", nil)
	if err != nil {
		t.Fatalf("first_word: %v", err)
	}
	if got != "BUILD_MODE" {
		t.Fatalf("unexpected first word %q", got)
	}
}

func TestFilters_OptionFlags(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"section", Section{Short: "-o", Long: "--output", Argument: "DIR"}, "-o, --output DIR"},
		{"template map", map[string]any{"long": "--help"}, "--help"},
		{"argument only", map[string]any{"argument": "FILE"}, "FILE"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := filterOptionFlags(tc.input, nil)
			if err != nil {
				t.Fatalf("option_flags: %v", err)
			}
			if got != tc.want {
				t.Fatalf("want %q, got %q", tc.want, got)
			}
		})
	}
}

func TestFilters_CodeBlockEscapes(t *testing.T) {
	got, err := filterCodeBlock("echo \"<hi>\"\n", nil)
	if err != nil {
		t.Fatalf("code_block: %v", err)
	}
	want := template.SafeHTML(`<pre><code class="language-sh">echo &#34;&lt;hi&gt;&#34;</code></pre>`)
	if got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}

func TestParagraphs(t *testing.T) {
	got := Paragraphs("first line\nsecond line\n\n    indented\n    kept\n\nlast")
	want := []string{"first line second line", "    indented\n    kept", "last"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("paragraphs mismatch (-want +got):\n%s", diff)
	}
}

func TestSmartWrap(t *testing.T) {
	got, err := filterSmartWrap("one two three four five\n\n  keep   spacing", 9)
	if err != nil {
		t.Fatalf("smartwrap: %v", err)
	}
	want := "one two\nthree\nfour five\n\n  keep   spacing"
	if got != want {
		t.Fatalf("want %q, got %q", want, got)
	}

	if _, err := filterSmartWrap("x", "wide"); err == nil {
		t.Fatalf("expected error for non-numeric width")
	}
}

func TestDocFile_ByTag(t *testing.T) {
	doc := DocFile{Sections: []Section{
		{Tag: "exit", Name: "0"},
		{Tag: "brief", Text: "b"},
		{Tag: "exit", Name: "1"},
	}}
	got := doc.ByTag("EXIT")
	if len(got) != 2 || got[0].Name != "0" || got[1].Name != "1" {
		t.Fatalf("unexpected sections: %+v", got)
	}
}

func TestGroupSections(t *testing.T) {
	sections := []Section{{Tag: "brief"}, {Tag: "option"}, {Tag: "option"}, {Tag: "exit"}, {Tag: "option"}}

	got := GroupSections(sections)

	want := []bool{true, true, false, true, true}
	for i, section := range got {
		if section.GroupStart != want[i] {
			t.Fatalf("section %d (%s): group start %v, want %v", i, section.Tag, section.GroupStart, want[i])
		}
	}
	for _, section := range sections {
		if section.GroupStart {
			t.Fatalf("input sections must not be modified")
		}
	}
	if got := GroupSections(nil); len(got) != 0 {
		t.Fatalf("expected no sections, got %d", len(got))
	}
}
