package template

import (
	"io"
)

// TemplateRenderer is the seam handlers rely on to turn collected data into
// markup.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
	SetWhitespace(ws Whitespace)
}

// Whitespace controls how block tags affect surrounding whitespace.
type Whitespace struct {
	// TrimBlocks removes the first newline after a block tag.
	TrimBlocks bool
	// LStripBlocks strips spaces and tabs from the start of a line up to a
	// block tag.
	LStripBlocks bool
	// KeepTrailingNewline keeps the final newline of the rendered output.
	KeepTrailingNewline bool
}

// SafeHTML marks filter output that must not be escaped again.
type SafeHTML string
