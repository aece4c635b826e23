package syntax

import (
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Profile describes one supported language: its tree-sitter grammar and
// the node kinds the document builder cares about.
type Profile struct {
	Name       string
	Extensions []string

	// RootKind is the module root node kind.
	RootKind string
	// DefinitionKinds are the definable units (classes, functions).
	DefinitionKinds map[string]bool
	// DecoratedKinds wrap decorators plus an inner definition.
	DecoratedKinds map[string]bool
	// BodyKinds are the body children of a definition; the first leaf of
	// such a child (the opening brace) terminates the elided header.
	BodyKinds map[string]bool
	// BodyOpen is a header-terminating punctuation appearing as a direct
	// child of the definition, e.g. ":" in python.
	BodyOpen string
	// CommentKinds are comment leaves; they are folded into the next
	// leaf's prefix rather than emitted as tokens.
	CommentKinds map[string]bool
	// LiteralKinds are named leaves classified as literals.
	LiteralKinds map[string]bool
	// KeywordKinds are named leaves classified as keywords (true, none).
	KeywordKinds map[string]bool

	language func() *sitter.Language

	langOnce sync.Once
	lang     *sitter.Language
}

// Language returns the grammar, constructing it on first use.
func (p *Profile) Language() *sitter.Language {
	p.langOnce.Do(func() {
		p.lang = p.language()
	})
	return p.lang
}

func (p *Profile) classifyLeaf(kind string, named bool, text string) LeafClass {
	if !named {
		if isWordToken(text) {
			return LeafKeyword
		}
		return LeafPunctuation
	}
	switch {
	case p.LiteralKinds[kind]:
		return LeafLiteral
	case p.KeywordKinds[kind]:
		return LeafKeyword
	default:
		return LeafIdentifier
	}
}

// isWordToken reports whether an anonymous token is alphabetic, which in
// tree-sitter grammars distinguishes keywords from operator punctuation.
func isWordToken(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && r != '_' {
			return false
		}
	}
	return true
}

func kindSet(kinds ...string) map[string]bool {
	s := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		s[k] = true
	}
	return s
}

var profiles = []*Profile{
	pythonProfile,
	typescriptProfile,
	javaProfile,
	cProfile,
	rustProfile,
	phpProfile,
}

// ProfileForPath returns the language profile for a file path, or nil
// when the extension is not supported.
func ProfileForPath(path string) *Profile {
	ext := strings.ToLower(filepath.Ext(path))
	for _, p := range profiles {
		for _, e := range p.Extensions {
			if e == ext {
				return p
			}
		}
	}
	return nil
}

// Extensions returns every supported file extension, with leading dot.
func Extensions() []string {
	var exts []string
	for _, p := range profiles {
		exts = append(exts, p.Extensions...)
	}
	return exts
}
