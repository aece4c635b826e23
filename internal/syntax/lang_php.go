package syntax

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"
)

var phpProfile = &Profile{
	Name:       "php",
	Extensions: []string{".php"},
	RootKind:   "program",
	DefinitionKinds: kindSet(
		"function_definition",
		"method_declaration",
		"class_declaration",
		"interface_declaration",
		"trait_declaration",
	),
	DecoratedKinds: kindSet(),
	BodyKinds: kindSet(
		"compound_statement",
		"declaration_list",
	),
	BodyOpen:     "{",
	CommentKinds: kindSet("comment"),
	LiteralKinds: kindSet(
		"string_content",
		"integer",
		"float",
		"escape_sequence",
		"string",
	),
	KeywordKinds: kindSet("true", "false", "null"),
	language: func() *sitter.Language {
		return sitter.NewLanguage(php.LanguagePHP())
	},
}
