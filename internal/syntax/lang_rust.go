package syntax

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
)

var rustProfile = &Profile{
	Name:       "rust",
	Extensions: []string{".rs"},
	RootKind:   "source_file",
	DefinitionKinds: kindSet(
		"function_item",
		"impl_item",
		"trait_item",
		"mod_item",
	),
	DecoratedKinds: kindSet(),
	BodyKinds: kindSet(
		"block",
		"declaration_list",
		"field_declaration_list",
	),
	BodyOpen:     "{",
	CommentKinds: kindSet("line_comment", "block_comment"),
	LiteralKinds: kindSet(
		"integer_literal",
		"float_literal",
		"string_content",
		"char_literal",
		"raw_string_literal",
		"boolean_literal",
		"escape_sequence",
	),
	KeywordKinds: kindSet("self", "crate"),
	language: func() *sitter.Language {
		return sitter.NewLanguage(rust.Language())
	},
}
