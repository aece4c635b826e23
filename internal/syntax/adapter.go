package syntax

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Parse parses source as the language selected by path's extension.
func Parse(path string, source []byte) (*Tree, error) {
	p := ProfileForPath(path)
	if p == nil {
		return nil, fmt.Errorf("unsupported source file: %s", path)
	}
	return p.Parse(path, source)
}

// Parse parses source with this profile's grammar and converts the
// tree-sitter CST into a prefix-carrying document tree. The byte gap
// between consecutive tokens, including comment tokens, becomes the
// leading prefix of the next emitted leaf; trailing bytes after the last
// token become the EOF marker's prefix.
func (p *Profile) Parse(path string, source []byte) (*Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	parser.SetLanguage(p.Language())

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse %s file: %s", p.Name, path)
	}
	defer tree.Close()

	c := &converter{src: source, profile: p, line: 1}
	root := c.convert(tree.RootNode())
	if root == nil {
		root = &Node{Line: 1}
	}
	root.Kind = KindModule

	root.Children = append(root.Children, &Node{
		Kind:       KindEOF,
		Prefix:     string(source[c.prevEnd:]),
		PrefixLine: c.line,
		Line:       c.line,
	})
	return &Tree{Root: root, Profile: p}, nil
}

// converter walks the CST in document order, consuming source bytes as
// it emits leaves. prevEnd is the end offset of the last emitted leaf
// and line the 1-based source line at that offset.
type converter struct {
	src     []byte
	profile *Profile
	prevEnd uint
	line    int
}

func (c *converter) convert(n *sitter.Node) *Node {
	kind := n.Kind()
	if c.profile.CommentKinds[kind] {
		// Comments are not tokens; their bytes fold into the next
		// leaf's prefix because prevEnd does not advance past them.
		return nil
	}

	if n.ChildCount() == 0 {
		return c.convertLeaf(n, kind)
	}

	children := make([]*Node, 0, n.ChildCount())
	for i := 0; i < int(n.ChildCount()); i++ {
		if ch := c.convert(n.Child(uint(i))); ch != nil {
			children = append(children, ch)
		}
	}
	if len(children) == 0 {
		return nil
	}

	pos := n.StartPosition()
	node := &Node{
		Kind:     KindComposite,
		Raw:      kind,
		Line:     int(pos.Row) + 1,
		Column:   int(pos.Column),
		Children: children,
		Body:     c.profile.BodyKinds[kind],
	}

	switch {
	case c.profile.DefinitionKinds[kind]:
		node.Kind = KindDefinition
		if nameNode := n.ChildByFieldName("name"); nameNode != nil {
			npos := nameNode.StartPosition()
			node.Name = &NameRef{
				Text:   string(c.src[nameNode.StartByte():nameNode.EndByte()]),
				Line:   int(npos.Row) + 1,
				Column: int(npos.Column),
			}
		}
	case c.profile.DecoratedKinds[kind]:
		node.Kind = KindDecorated
	}
	return node
}

func (c *converter) convertLeaf(n *sitter.Node, kind string) *Node {
	start, end := n.StartByte(), n.EndByte()
	if end <= start || end > uint(len(c.src)) || start < c.prevEnd {
		// Zero-width error-recovery nodes own no source bytes.
		return nil
	}

	prefix := string(c.src[c.prevEnd:start])
	text := string(c.src[start:end])
	pos := n.StartPosition()

	leaf := &Node{
		Kind:       KindLeaf,
		Raw:        kind,
		Class:      c.profile.classifyLeaf(kind, n.IsNamed(), text),
		Prefix:     prefix,
		PrefixLine: c.line,
		Line:       int(pos.Row) + 1,
		Column:     int(pos.Column),
		Text:       text,
	}
	c.line = leaf.Line + strings.Count(text, "\n")
	c.prevEnd = end
	return leaf
}
