package syntax

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"
)

var cProfile = &Profile{
	Name:            "c",
	Extensions:      []string{".c", ".h"},
	RootKind:        "translation_unit",
	DefinitionKinds: kindSet("function_definition"),
	DecoratedKinds:  kindSet(),
	BodyKinds:       kindSet("compound_statement"),
	BodyOpen:        "{",
	CommentKinds:    kindSet("comment"),
	LiteralKinds: kindSet(
		"number_literal",
		"string_content",
		"character",
		"escape_sequence",
		"system_lib_string",
	),
	KeywordKinds: kindSet("true", "false", "null"),
	language: func() *sitter.Language {
		return sitter.NewLanguage(c.Language())
	},
}
