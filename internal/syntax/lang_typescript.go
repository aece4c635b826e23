package syntax

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

var typescriptProfile = &Profile{
	Name:       "typescript",
	Extensions: []string{".ts", ".tsx"},
	RootKind:   "program",
	DefinitionKinds: kindSet(
		"function_declaration",
		"generator_function_declaration",
		"class_declaration",
		"abstract_class_declaration",
		"interface_declaration",
		"method_definition",
	),
	DecoratedKinds: kindSet(),
	BodyKinds: kindSet(
		"statement_block",
		"class_body",
		"interface_body",
	),
	BodyOpen:     "{",
	CommentKinds: kindSet("comment"),
	LiteralKinds: kindSet(
		"string_fragment",
		"number",
		"regex_pattern",
		"regex_flags",
		"escape_sequence",
	),
	KeywordKinds: kindSet("true", "false", "null", "undefined", "this", "super"),
	language: func() *sitter.Language {
		return sitter.NewLanguage(typescript.LanguageTypescript())
	},
}
