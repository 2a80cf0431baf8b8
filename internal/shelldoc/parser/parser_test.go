package parser

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/mkdocstrings/shell/pkg/shelldoc"
	"github.com/mkdocstrings/shell/pkg/testsupport"
)

func TestParser_ParseFixture(t *testing.T) {
	path := filepath.Join("testdata", "build.sh")
	p := New(shelldoc.NewParserOptions())

	doc, err := p.Parse(context.Background(), path)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	golden := filepath.Join("testdata", "build.golden.json")
	testsupport.WriteGolden(t, golden, doc)
	want := testsupport.MustLoadDocFile(t, golden)

	if diff := testsupport.CompareGolden(want, doc); diff != "" {
		t.Fatalf("doc mismatch (-want +got):\n%s", diff)
	}
}

func TestParser_MissingFileWrapsNotExist(t *testing.T) {
	p := New(shelldoc.NewParserOptions())

	_, err := p.Parse(context.Background(), filepath.Join(t.TempDir(), "missing.sh"))
	if err == nil {
		t.Fatalf("expected error for missing script")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestParser_FileSystemOption(t *testing.T) {
	files := fstest.MapFS{
		"scripts/hello.sh": &fstest.MapFile{Data: []byte("## @brief Say hello.\necho hello\n")},
	}
	p := New(shelldoc.NewParserOptions(
		shelldoc.WithFileSystem(files),
		shelldoc.WithFunctionDetection(false),
	))

	doc, err := p.Parse(context.Background(), "./scripts/hello.sh")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.Filename != "./scripts/hello.sh" {
		t.Fatalf("filename mismatch: %q", doc.Filename)
	}
	if doc.Brief() != "Say hello." {
		t.Fatalf("brief mismatch: %q", doc.Brief())
	}
	if doc.Functions != nil {
		t.Fatalf("expected no function detection, got %+v", doc.Functions)
	}
}

func TestParser_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(shelldoc.NewParserOptions()).Parse(ctx, filepath.Join("testdata", "build.sh"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestParseSource_Rules(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []shelldoc.Section
	}{
		{
			name:   "untagged lines open a description",
			source: "## Does things.\n## More things.\n",
			want: []shelldoc.Section{
				{Tag: "desc", Kind: shelldoc.KindText, Title: "Description", Line: 1, Text: "Does things.\nMore things."},
			},
		},
		{
			name:   "banner lines and plain comments close sections",
			source: "###########\n## \\brief Backslash tag\n# plain comment\n## trailing desc\n",
			want: []shelldoc.Section{
				{Tag: "brief", Kind: shelldoc.KindText, Title: "Brief", Line: 2, Text: "Backslash tag"},
				{Tag: "desc", Kind: shelldoc.KindText, Title: "Description", Line: 4, Text: "trailing desc"},
			},
		},
		{
			name:   "unknown tags are kept as text",
			source: "## @todo finish docs\n",
			want: []shelldoc.Section{
				{Tag: "todo", Kind: shelldoc.KindText, Title: "Todo", Line: 1, Text: "finish docs"},
			},
		},
		{
			name:   "aliases resolve to canonical tags",
			source: "## @environment HOME User home.\n## @see_also git(1)\n",
			want: []shelldoc.Section{
				{Tag: "env", Kind: shelldoc.KindNamed, Title: "Environment variables", Line: 1, Name: "HOME", Description: "User home."},
				{Tag: "seealso", Kind: shelldoc.KindText, Title: "See also", Line: 2, Text: "git(1)"},
			},
		},
		{
			name:   "at signs inside text are not tags",
			source: "## mail me@example.com\n## @ not a tag\n",
			want: []shelldoc.Section{
				{Tag: "desc", Kind: shelldoc.KindText, Title: "Description", Line: 1, Text: "mail me@example.com\n@ not a tag"},
			},
		},
		{
			name:   "long option with inline argument",
			source: "## @option --level=N\n## Verbosity.\n",
			want: []shelldoc.Section{
				{Tag: "option", Kind: shelldoc.KindOption, Title: "Options", Line: 1, Long: "--level", Argument: "N", Description: "Verbosity."},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseSource(tc.source)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("sections mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDetectFunctions_RepeatedCalls(t *testing.T) {
	source := []byte("#!/bin/sh\nsetup() {\n  :\n}\n\nfunction teardown {\n  :\n}\n")

	for i := 0; i < 50; i++ {
		functions, err := detectFunctions(context.Background(), source)
		if err != nil {
			t.Fatalf("detect functions (run %d): %v", i, err)
		}
		want := []shelldoc.Function{{Name: "setup", Line: 2}, {Name: "teardown", Line: 6}}
		if diff := cmp.Diff(want, functions); diff != "" {
			t.Fatalf("functions mismatch on run %d (-want +got):\n%s", i, diff)
		}
	}
}
