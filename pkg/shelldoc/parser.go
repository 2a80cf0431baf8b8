package shelldoc

import (
	"context"
	"io/fs"
)

// Parser builds a DocFile from a script path.
//
// A missing script must be reported with an error that wraps fs.ErrNotExist so
// callers can tell it apart from unreadable or malformed input.
type Parser interface {
	Parse(ctx context.Context, path string) (DocFile, error)
}

// ParserOptions configures how scripts are read and analysed.
type ParserOptions struct {
	// FileSystem reads scripts from an fs.FS instead of the operating system.
	// Paths are then interpreted as fs.FS names.
	FileSystem fs.FS

	// DetectFunctions enables the syntax pass that lists the shell functions a
	// script defines. Defaults to true.
	DetectFunctions bool
}

// ParserOption mutates ParserOptions during construction.
type ParserOption func(*ParserOptions)

// WithFileSystem reads scripts from files instead of disk.
func WithFileSystem(files fs.FS) ParserOption {
	return func(opts *ParserOptions) {
		opts.FileSystem = files
	}
}

// WithFunctionDetection toggles the function discovery pass.
func WithFunctionDetection(enabled bool) ParserOption {
	return func(opts *ParserOptions) {
		opts.DetectFunctions = enabled
	}
}

// NewParserOptions applies ParserOption values over the defaults.
func NewParserOptions(options ...ParserOption) ParserOptions {
	cfg := ParserOptions{
		DetectFunctions: true,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return cfg
}

// Construction helpers live in the top-level shell package to avoid import cycles.
