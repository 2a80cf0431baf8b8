package parser

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"

	"github.com/mkdocstrings/shell/pkg/shelldoc"
)

const functionQuery = `(function_definition name: (word) @name) @func`

// detectFunctions lists the functions defined in source, in file order.
func detectFunctions(ctx context.Context, source []byte) ([]shelldoc.Function, error) {
	lang := bash.GetLanguage()

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang)
	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("shelldoc: parse script syntax: %w", err)
	}
	defer tree.Close()

	query, err := sitter.NewQuery([]byte(functionQuery), lang)
	if err != nil {
		return nil, fmt.Errorf("shelldoc: compile function query: %w", err)
	}
	defer query.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(query, tree.RootNode())

	var functions []shelldoc.Function
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, capture := range m.Captures {
			if query.CaptureNameForId(capture.Index) != "name" {
				continue
			}
			name := strings.TrimSpace(capture.Node.Content(source))
			if name == "" {
				continue
			}
			functions = append(functions, shelldoc.Function{
				Name: name,
				Line: int(capture.Node.StartPoint().Row) + 1,
			})
		}
	}
	return functions, nil
}
