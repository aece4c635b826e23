// Package syntax is the parser capability behind the document builder:
// it turns source text into a concrete syntax tree whose leaves carry
// their raw leading prefix (whitespace and comments), so that every byte
// of the file is owned by exactly one leaf prefix or leaf text.
//
// Parsing is done with tree-sitter; per-language profiles declare which
// node kinds are definitions, which child opens a definition body, and
// how leaves classify.
package syntax

// Kind discriminates the shapes of a document tree node.
type Kind int

const (
	// KindModule is the file root.
	KindModule Kind = iota
	// KindDefinition is a class/function definition, a definable unit.
	KindDefinition
	// KindDecorated wraps decorators plus an inner definition.
	KindDecorated
	// KindComposite is any other non-leaf node.
	KindComposite
	// KindLeaf is a lexical token.
	KindLeaf
	// KindEOF marks the end of file; its prefix holds any trailing
	// whitespace and comments after the last token.
	KindEOF
)

// LeafClass classifies a leaf token.
type LeafClass int

const (
	LeafIdentifier LeafClass = iota
	LeafKeyword
	LeafLiteral
	LeafPunctuation
)

// NameRef points at a definition's name token.
type NameRef struct {
	Text   string
	Line   int // 1-based
	Column int // 0-based, bytes
}

// Node is one node of the document tree.
//
// Prefix is set on leaves and the EOF marker only: the raw source bytes
// between the previous leaf's end and this node's own first byte. Line
// and Column locate the node's own text, excluding the prefix;
// PrefixLine is the line on which the prefix begins.
type Node struct {
	Kind Kind
	// Raw is the underlying tree-sitter node kind, e.g. "import_statement".
	Raw        string
	Class      LeafClass
	Prefix     string
	PrefixLine int
	Line       int // 1-based
	Column     int // 0-based, bytes
	Text       string
	Children   []*Node
	Name       *NameRef
	// Body marks the body child of a brace-delimited definition; its
	// first leaf (the opening brace) terminates the elided header.
	Body bool
}

// Tree is a parsed source file.
type Tree struct {
	Root    *Node
	Profile *Profile
}

// Definition reports whether n is a definable unit, plain or decorated.
func (n *Node) Definition() bool {
	return n.Kind == KindDefinition || n.Kind == KindDecorated
}

// InnerName returns the name of the definition, descending through
// decorator wrappers to the innermost wrapped unit. Nil when the unit is
// anonymous.
func (n *Node) InnerName() *NameRef {
	cur := n
	for cur.Kind == KindDecorated {
		var inner *Node
		for _, c := range cur.Children {
			if c.Definition() {
				inner = c
				break
			}
		}
		if inner == nil {
			return nil
		}
		cur = inner
	}
	return cur.Name
}
