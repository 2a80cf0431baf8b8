package parser

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"
)

func readScript(ctx context.Context, files fs.FS, path string) ([]byte, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("shelldoc: script path is required")
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if files != nil {
		return fs.ReadFile(files, strings.TrimPrefix(path, "./"))
	}
	return os.ReadFile(path)
}
