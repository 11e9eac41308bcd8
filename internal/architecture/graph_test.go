// Where: cli/internal/architecture/graph_test.go
// What: Import graph of the non-test sources under internal/.
// Why: Layer and cycle checks share one parse of the tree.
package architecture

import (
	"go/parser"
	"go/token"
	"io/fs"
	"path"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
)

const modulePrefix = "github.com/octopilot/pipeline-tools/cli/internal/"

// importEdge is one internal import found in a source file.
type importEdge struct {
	file string // relative to internal/, slash separated
	from string // importing package, relative to internal/
	to   string // imported package, relative to internal/
}

// importGraph maps package dir (relative to internal/) to the internal
// packages it imports.
type importGraph map[string]map[string]bool

func internalDir(t *testing.T) string {
	t.Helper()
	_, self, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot locate architecture package")
	}
	return filepath.Dir(filepath.Dir(self))
}

// scanImports parses import blocks only; tests are excluded since they may
// legitimately reach across layers for fixtures.
func scanImports(t *testing.T) []importEdge {
	t.Helper()
	root := internalDir(t)
	fset := token.NewFileSet()
	var edges []importEdge

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		name := d.Name()
		if filepath.Ext(name) != ".go" || strings.HasSuffix(name, "_test.go") {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		pkg := path.Dir(rel)
		if pkg == "." {
			return nil
		}
		src, err := parser.ParseFile(fset, p, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		for _, spec := range src.Imports {
			target, err := strconv.Unquote(spec.Path.Value)
			if err != nil {
				return err
			}
			if dep, ok := strings.CutPrefix(target, modulePrefix); ok {
				edges = append(edges, importEdge{file: rel, from: pkg, to: dep})
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", root, err)
	}
	if len(edges) == 0 {
		t.Fatalf("no internal imports found under %s", root)
	}
	return edges
}

func buildGraph(edges []importEdge) importGraph {
	graph := importGraph{}
	for _, e := range edges {
		if graph[e.from] == nil {
			graph[e.from] = map[string]bool{}
		}
		graph[e.from][e.to] = true
		if graph[e.to] == nil {
			graph[e.to] = map[string]bool{}
		}
	}
	return graph
}

// layerOf returns the first path segment: domain, usecase, infra, command.
func layerOf(pkg string) string {
	layer, _, _ := strings.Cut(pkg, "/")
	return layer
}
