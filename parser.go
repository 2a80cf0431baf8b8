package shell

import (
	internalParser "github.com/mkdocstrings/shell/internal/shelldoc/parser"
	"github.com/mkdocstrings/shell/pkg/shelldoc"
)

// NewParser constructs a script documentation parser backed by the internal
// implementation while keeping the concrete type hidden from consumers.
func NewParser(options ...shelldoc.ParserOption) shelldoc.Parser {
	cfg := shelldoc.NewParserOptions(options...)
	return internalParser.New(cfg)
}
