// Package refgraph builds the file dependency graph out of the
// reference edges a crawl discovered: an edge A -> B means a token in A
// resolved to a definition in B.
package refgraph

import (
	"errors"
	"sort"

	"github.com/dominikbraun/graph"

	"github.com/mvp-joe/territory/internal/scanner"
)

// Graph is a directed file-level reference graph with reverse indexes
// for O(1) neighbor lookups.
type Graph struct {
	g          graph.Graph[string, string]
	deps       map[string][]string
	dependents map[string][]string
	files      []string
}

// New builds a graph from crawl edges. Duplicate edges collapse.
func New(edges []scanner.RefEdge) (*Graph, error) {
	rg := &Graph{
		g:          graph.New(graph.StringHash, graph.Directed()),
		deps:       make(map[string][]string),
		dependents: make(map[string][]string),
	}

	seen := make(map[string]struct{})
	addVertex := func(p string) error {
		if _, ok := seen[p]; ok {
			return nil
		}
		seen[p] = struct{}{}
		rg.files = append(rg.files, p)
		if err := rg.g.AddVertex(p); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
			return err
		}
		return nil
	}

	for _, e := range edges {
		if err := addVertex(e.From); err != nil {
			return nil, err
		}
		if err := addVertex(e.To); err != nil {
			return nil, err
		}
		err := rg.g.AddEdge(e.From, e.To)
		if errors.Is(err, graph.ErrEdgeAlreadyExists) {
			continue
		}
		if err != nil {
			return nil, err
		}
		rg.deps[e.From] = append(rg.deps[e.From], e.To)
		rg.dependents[e.To] = append(rg.dependents[e.To], e.From)
	}

	sort.Strings(rg.files)
	return rg, nil
}

// Files returns every file that appears in the graph, sorted.
func (rg *Graph) Files() []string {
	return rg.files
}

// Dependencies returns the files path references, transitively up to
// depth hops. Depth <= 0 means unlimited.
func (rg *Graph) Dependencies(path string, depth int) []string {
	return rg.walk(path, rg.deps, depth)
}

// Dependents returns the files referencing path, transitively up to
// depth hops. Depth <= 0 means unlimited.
func (rg *Graph) Dependents(path string, depth int) []string {
	return rg.walk(path, rg.dependents, depth)
}

// Order returns a topological order of the files. Fails when the graph
// has a reference cycle.
func (rg *Graph) Order() ([]string, error) {
	return graph.TopologicalSort(rg.g)
}

func (rg *Graph) walk(start string, next map[string][]string, depth int) []string {
	seen := map[string]struct{}{start: {}}
	frontier := []string{start}
	var out []string

	for d := 0; len(frontier) > 0 && (depth <= 0 || d < depth); d++ {
		var nextFrontier []string
		for _, p := range frontier {
			for _, n := range next[p] {
				if _, ok := seen[n]; ok {
					continue
				}
				seen[n] = struct{}{}
				out = append(out, n)
				nextFrontier = append(nextFrontier, n)
			}
		}
		frontier = nextFrontier
	}

	sort.Strings(out)
	return out
}
