// Package uim implements the UIM document model and its binary stream
// format: a sequence of length-delimited protobuf-wire records, one per
// document Node or search index item.
package uim

import "fmt"

// NodeKind discriminates the two node shapes in the node stream.
type NodeKind int32

const (
	// NodeSourceFile is the root node of an indexed file, nest level 0.
	NodeSourceFile NodeKind = 0
	// NodeDefinition is a nested class/function definition node.
	NodeDefinition NodeKind = 1
)

func (k NodeKind) valid() bool {
	return k == NodeSourceFile || k == NodeDefinition
}

func (k NodeKind) String() string {
	switch k {
	case NodeSourceFile:
		return "SourceFile"
	case NodeDefinition:
		return "Definition"
	default:
		return fmt.Sprintf("NodeKind(%d)", int32(k))
	}
}

// TokenType classifies a token within a node.
type TokenType int32

const (
	TokenIdentifier  TokenType = 0
	TokenKeyword     TokenType = 1
	TokenLiteral     TokenType = 2
	TokenPunctuation TokenType = 3
	// TokenWS carries whitespace and comment runs, including the
	// ellipsis marker of an elided definition.
	TokenWS TokenType = 4
)

func (t TokenType) valid() bool {
	return t >= TokenIdentifier && t <= TokenWS
}

func (t TokenType) String() string {
	switch t {
	case TokenIdentifier:
		return "Identifier"
	case TokenKeyword:
		return "Keyword"
	case TokenLiteral:
		return "Literal"
	case TokenPunctuation:
		return "Punctuation"
	case TokenWS:
		return "WS"
	default:
		return fmt.Sprintf("TokenType(%d)", int32(t))
	}
}

// IndexItemKind discriminates search index entries.
type IndexItemKind int32

// IndexSymbol is a named definition entry ("IISymbol" in the wire format's
// original naming).
const IndexSymbol IndexItemKind = 0

func (k IndexItemKind) valid() bool {
	return k == IndexSymbol
}

func (k IndexItemKind) String() string {
	if k == IndexSymbol {
		return "IISymbol"
	}
	return fmt.Sprintf("IndexItemKind(%d)", int32(k))
}

// Location is a position in a source file. Line is 1-based and Column
// 0-based as reported by the parser; Offset is the absolute byte offset
// into the UTF-8 encoded file, kept consistent with (Line, Column) by the
// offset resolver.
type Location struct {
	Line   uint32
	Column uint32
	Offset uint32
}

// Href is a weak cross-reference target: the byte at Offset in file Path.
// It never implies the target file is itself indexed.
type Href struct {
	Path   string
	Offset uint32
	Extra  map[string]string
}

// Token is one lexical unit or whitespace/comment run within a Node.
//
// Offset is the byte offset of the token's text within the owning node's
// Text. RealLine is stored only when the token's source line diverges
// from the running line count derived from prior tokens; zero means
// "derivable" (source lines are 1-based, so zero is never a real line of
// a non-root token).
type Token struct {
	Type     TokenType
	RealLine uint32
	Offset   uint32
	Href     *Href
}

// Node is one unit of the document hierarchy: a whole source file or a
// nested definition. Text is the exact concatenation of the token texts
// emitted directly into this node; nested definitions contribute only
// their elided rendering here, their full bodies live in their own nodes.
type Node struct {
	Kind      NodeKind
	Path      string
	Start     Location
	NestLevel uint32
	Text      []byte
	Tokens    []Token
}

// IndexItem is one flat search index entry for a named definition.
type IndexItem struct {
	Kind IndexItemKind
	Key  string
	Path string
	Type string
	Href *Href
}
