package resolve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/maypok86/otter"

	"github.com/mvp-joe/territory/internal/syntax"
)

const symbolCacheCapacity = 2048

// ProjectResolver is a heuristic, symbol-table based resolver. It is not
// a semantic analyzer: it knows named definitions per file and python
// import bindings, and resolves an identifier to the first matching
// definition in its own file, or through an import to a definition in
// the imported module. Anything subtler reports no target.
type ProjectResolver struct {
	roots []string
	files otter.Cache[string, *fileInfo]
}

type defSym struct {
	name   string
	line   int
	column int
}

type importRef struct {
	module string
	symbol string
	dots   int
}

type fileInfo struct {
	lines   []string
	defs    []defSym
	imports map[string]importRef
}

// NewProjectResolver creates a resolver searching modules across the
// given roots (the repo root first, then any dependency roots).
func NewProjectResolver(roots ...string) (*ProjectResolver, error) {
	files, err := otter.MustBuilder[string, *fileInfo](symbolCacheCapacity).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build symbol table cache: %w", err)
	}
	return &ProjectResolver{roots: roots, files: files}, nil
}

// Definition implements Resolver.
func (r *ProjectResolver) Definition(ctx context.Context, path string, line, column int) (*Target, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fi := r.info(path)
	if fi == nil {
		return nil, nil
	}
	word := identifierAt(fi.lines, line, column)
	if word == "" {
		return nil, nil
	}

	if d := fi.findDef(word); d != nil {
		return &Target{Path: path, Line: d.line, Column: d.column}, nil
	}

	imp, ok := fi.imports[word]
	if !ok {
		return nil, nil
	}
	modPath := r.moduleFile(imp, path)
	if modPath == "" {
		return nil, nil
	}
	if imp.symbol != "" {
		if mi := r.info(modPath); mi != nil {
			if d := mi.findDef(imp.symbol); d != nil {
				return &Target{Path: modPath, Line: d.line, Column: d.column}, nil
			}
		}
	}
	return &Target{Path: modPath, Line: 1, Column: 0}, nil
}

func (fi *fileInfo) findDef(name string) *defSym {
	for i := range fi.defs {
		if fi.defs[i].name == name {
			return &fi.defs[i]
		}
	}
	return nil
}

// info loads and caches the symbol table for path. Unsupported or
// unreadable files cache an empty table.
func (r *ProjectResolver) info(path string) *fileInfo {
	if fi, ok := r.files.Get(path); ok {
		return fi
	}

	fi := &fileInfo{imports: make(map[string]importRef)}
	defer r.files.Set(path, fi)

	source, err := os.ReadFile(path)
	if err != nil {
		return fi
	}
	fi.lines = strings.Split(string(source), "\n")

	profile := syntax.ProfileForPath(path)
	if profile == nil {
		return fi
	}
	tree, err := profile.Parse(path, source)
	if err != nil {
		return fi
	}

	collectDefs(tree.Root, &fi.defs)
	if profile.Name == "python" {
		collectImports(tree.Root, fi.imports)
	}
	return fi
}

func collectDefs(n *syntax.Node, out *[]defSym) {
	if n.Kind == syntax.KindDefinition && n.Name != nil {
		*out = append(*out, defSym{name: n.Name.Text, line: n.Name.Line, column: n.Name.Column})
	}
	for _, c := range n.Children {
		collectDefs(c, out)
	}
}

// collectImports extracts python import bindings from top-level
// statements: the local name each import statement binds, the module it
// comes from, and the imported symbol for from-imports.
func collectImports(root *syntax.Node, out map[string]importRef) {
	for _, stmt := range root.Children {
		switch stmt.Raw {
		case "import_statement":
			for _, c := range stmt.Children {
				switch c.Raw {
				case "dotted_name":
					// "import a.b" binds the top-level package name.
					if first := firstIdentifier(c); first != "" {
						out[first] = importRef{module: first}
					}
				case "aliased_import":
					module, alias := aliasedImport(c)
					if alias != "" {
						out[alias] = importRef{module: module}
					}
				}
			}
		case "import_from_statement":
			var module string
			var dots int
			seenImport := false
			for _, c := range stmt.Children {
				if c.Kind == syntax.KindLeaf && c.Text == "import" {
					seenImport = true
					continue
				}
				if !seenImport {
					switch c.Raw {
					case "dotted_name":
						module = dottedText(c)
					case "relative_import":
						dots, module = relativeImport(c)
					}
					continue
				}
				switch c.Raw {
				case "dotted_name":
					if name := firstIdentifier(c); name != "" {
						out[name] = importRef{module: module, symbol: name, dots: dots}
					}
				case "aliased_import":
					symbol, alias := aliasedImport(c)
					if alias != "" {
						out[alias] = importRef{module: module, symbol: symbol, dots: dots}
					}
				}
			}
		}
	}
}

func firstIdentifier(n *syntax.Node) string {
	if n.Kind == syntax.KindLeaf {
		if n.Class == syntax.LeafIdentifier {
			return n.Text
		}
		return ""
	}
	for _, c := range n.Children {
		if name := firstIdentifier(c); name != "" {
			return name
		}
	}
	return ""
}

func dottedText(n *syntax.Node) string {
	var sb strings.Builder
	var walk func(*syntax.Node)
	walk = func(n *syntax.Node) {
		if n.Kind == syntax.KindLeaf {
			sb.WriteString(n.Text)
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func relativeImport(n *syntax.Node) (dots int, module string) {
	text := dottedText(n)
	for _, r := range text {
		if r != '.' {
			break
		}
		dots++
	}
	return dots, strings.TrimLeft(text, ".")
}

func aliasedImport(n *syntax.Node) (module, alias string) {
	seenAs := false
	for _, c := range n.Children {
		if c.Kind == syntax.KindLeaf && c.Text == "as" {
			seenAs = true
			continue
		}
		if c.Raw == "dotted_name" && !seenAs {
			module = dottedText(c)
		}
		if c.Kind == syntax.KindLeaf && c.Class == syntax.LeafIdentifier && seenAs {
			alias = c.Text
		}
	}
	return module, alias
}

// moduleFile locates the file implementing a python module across the
// search roots, or relative to the importing file for relative imports.
func (r *ProjectResolver) moduleFile(imp importRef, fromPath string) string {
	var bases []string
	if imp.dots > 0 {
		base := filepath.Dir(fromPath)
		for i := 1; i < imp.dots; i++ {
			base = filepath.Dir(base)
		}
		bases = []string{base}
	} else {
		bases = r.roots
	}

	rel := filepath.Join(strings.Split(imp.module, ".")...)
	for _, base := range bases {
		var candidates []string
		if imp.module == "" {
			candidates = []string{filepath.Join(base, "__init__.py")}
		} else {
			candidates = []string{
				filepath.Join(base, rel+".py"),
				filepath.Join(base, rel, "__init__.py"),
			}
		}
		for _, cand := range candidates {
			if st, err := os.Stat(cand); err == nil && !st.IsDir() {
				return cand
			}
		}
	}
	return ""
}

// identifierAt expands the identifier containing the given 0-based byte
// column on the given 1-based line.
func identifierAt(lines []string, line, column int) string {
	if line < 1 || line > len(lines) {
		return ""
	}
	l := lines[line-1]
	if column < 0 || column >= len(l) {
		return ""
	}
	if !isIdentByte(l[column]) {
		return ""
	}
	start, end := column, column
	for start > 0 && isIdentByte(l[start-1]) {
		start--
	}
	for end < len(l) && isIdentByte(l[end]) {
		end++
	}
	return l[start:end]
}

func isIdentByte(b byte) bool {
	return b == '_' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b >= 0x80
}
