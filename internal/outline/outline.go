// Package outline answers file-level questions against a node stream:
// the collapsed rendering of a file and the definitions it contains.
package outline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mvp-joe/territory/internal/uim"
)

// Def is one definition of a file, located by its start and summarized
// by the first line of its text.
type Def struct {
	Line      uint32 `json:"line"`
	Column    uint32 `json:"column"`
	Offset    uint32 `json:"offset"`
	NestLevel uint32 `json:"nest_level"`
	Header    string `json:"header"`
}

// Outliner indexes one loaded node stream by file path.
type Outliner struct {
	roots map[string]*uim.Node
	defs  map[string][]Def
}

// Load reads the node stream at path and indexes it.
func Load(nodesPath string) (*Outliner, error) {
	nodes, err := uim.ReadNodes(nodesPath)
	if err != nil {
		return nil, err
	}
	return New(nodes), nil
}

// New indexes already decoded nodes.
func New(nodes []*uim.Node) *Outliner {
	o := &Outliner{
		roots: make(map[string]*uim.Node),
		defs:  make(map[string][]Def),
	}
	for _, n := range nodes {
		switch n.Kind {
		case uim.NodeSourceFile:
			o.roots[n.Path] = n
		case uim.NodeDefinition:
			o.defs[n.Path] = append(o.defs[n.Path], Def{
				Line:      n.Start.Line,
				Column:    n.Start.Column,
				Offset:    n.Start.Offset,
				NestLevel: n.NestLevel,
				Header:    firstLine(string(n.Text)),
			})
		}
	}
	for _, defs := range o.defs {
		sort.Slice(defs, func(i, j int) bool { return defs[i].Offset < defs[j].Offset })
	}
	return o
}

// File returns the collapsed rendering of the file: the root node's
// text, with every nested body elided.
func (o *Outliner) File(path string) (string, error) {
	root, ok := o.roots[path]
	if !ok {
		return "", fmt.Errorf("no indexed file: %s", path)
	}
	return string(root.Text), nil
}

// Definitions returns the file's definitions in source order.
func (o *Outliner) Definitions(path string) []Def {
	return o.defs[path]
}

// Paths returns every indexed file path, sorted.
func (o *Outliner) Paths() []string {
	paths := make([]string, 0, len(o.roots))
	for p := range o.roots {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
