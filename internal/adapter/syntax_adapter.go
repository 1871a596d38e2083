package adapter

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	m "github.com/mouse-blink/guardwrap/internal/model"
)

// maxSyntaxDepth bounds the error walk on pathological trees.
const maxSyntaxDepth = 2000

// SyntaxAdapter counts parse errors in a source text.
type SyntaxAdapter interface {
	// Errors returns the number of ERROR and MISSING nodes tree-sitter
	// produces for content. The grammar is picked from the path extension.
	Errors(ctx context.Context, path m.Path, content []byte) (int, error)
}

// TreeSitterSyntaxAdapter implements SyntaxAdapter with the tree-sitter
// TypeScript, TSX and JavaScript grammars.
type TreeSitterSyntaxAdapter struct{}

// NewTreeSitterSyntaxAdapter constructs a TreeSitterSyntaxAdapter.
func NewTreeSitterSyntaxAdapter() *TreeSitterSyntaxAdapter {
	return &TreeSitterSyntaxAdapter{}
}

// Errors parses content and counts the syntax error nodes in the tree.
func (a *TreeSitterSyntaxAdapter) Errors(ctx context.Context, path m.Path, content []byte) (int, error) {
	lang := languageFor(path)
	if lang == nil {
		return 0, fmt.Errorf("no grammar for %s", path)
	}

	// Parsers are not safe for concurrent use; one per call.
	parser := sitter.NewParser()
	defer parser.Close()

	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()

	return countErrors(tree.RootNode(), 0), nil
}

func languageFor(path m.Path) *sitter.Language {
	switch strings.ToLower(filepath.Ext(string(path))) {
	case ".ts", ".mts", ".cts":
		return typescript.GetLanguage()
	case ".tsx":
		return tsx.GetLanguage()
	case ".js", ".jsx", ".mjs", ".cjs":
		return javascript.GetLanguage()
	default:
		return nil
	}
}

func countErrors(node *sitter.Node, depth int) int {
	if node == nil || depth > maxSyntaxDepth {
		return 0
	}

	n := 0
	if node.IsError() || node.IsMissing() {
		n++
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		n += countErrors(node.Child(i), depth+1)
	}

	return n
}
