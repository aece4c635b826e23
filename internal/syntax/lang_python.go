package syntax

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

var pythonProfile = &Profile{
	Name:       "python",
	Extensions: []string{".py"},
	RootKind:   "module",
	DefinitionKinds: kindSet(
		"function_definition",
		"class_definition",
	),
	DecoratedKinds: kindSet("decorated_definition"),
	BodyKinds:      kindSet("block"),
	BodyOpen:       ":",
	CommentKinds:   kindSet("comment"),
	LiteralKinds: kindSet(
		"string_start",
		"string_content",
		"string_end",
		"escape_sequence",
		"integer",
		"float",
		"ellipsis",
	),
	KeywordKinds: kindSet("true", "false", "none"),
	language: func() *sitter.Language {
		return sitter.NewLanguage(python.Language())
	},
}
