package syntax

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
)

var javaProfile = &Profile{
	Name:       "java",
	Extensions: []string{".java"},
	RootKind:   "program",
	DefinitionKinds: kindSet(
		"class_declaration",
		"interface_declaration",
		"enum_declaration",
		"record_declaration",
		"method_declaration",
		"constructor_declaration",
	),
	DecoratedKinds: kindSet(),
	BodyKinds: kindSet(
		"class_body",
		"interface_body",
		"enum_body",
		"constructor_body",
		"block",
	),
	BodyOpen:     "{",
	CommentKinds: kindSet("line_comment", "block_comment"),
	LiteralKinds: kindSet(
		"decimal_integer_literal",
		"hex_integer_literal",
		"octal_integer_literal",
		"binary_integer_literal",
		"decimal_floating_point_literal",
		"hex_floating_point_literal",
		"character_literal",
		"string_literal",
		"string_fragment",
		"escape_sequence",
	),
	KeywordKinds: kindSet("true", "false", "null_literal", "this", "super"),
	language: func() *sitter.Language {
		return sitter.NewLanguage(java.Language())
	},
}
