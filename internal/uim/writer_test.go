package uim

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeStreamRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nodes.uim")

	w, err := NewNodeWriter(path)
	require.NoError(t, err)

	start := &Location{Line: 5, Column: 4, Offset: 120}
	tw, err := w.BeginNode(NodeDefinition, "/repo/a.py", start, 2)
	require.NoError(t, err)

	require.NoError(t, tw.AppendToken(TokenKeyword, "def", nil, 5))
	require.NoError(t, tw.AppendToken(TokenWS, " ", nil, 5))
	require.NoError(t, tw.AppendToken(TokenIdentifier, "foo", &Href{Path: "/repo/a.py", Offset: 124}, 5))
	require.NoError(t, tw.AppendToken(TokenPunctuation, "(", nil, 5))
	require.NoError(t, tw.AppendToken(TokenPunctuation, ")", nil, 5))
	require.NoError(t, tw.AppendToken(TokenPunctuation, ":", nil, 5))
	require.NoError(t, tw.AppendToken(TokenWS, "\n    ", nil, 5))
	require.NoError(t, tw.AppendToken(TokenKeyword, "pass", nil, 6))

	require.NoError(t, w.WriteNode(tw))
	require.NoError(t, w.Close())

	nodes, err := ReadNodes(path)
	require.NoError(t, err)
	require.Len(t, nodes, 1)

	n := nodes[0]
	assert.Equal(t, NodeDefinition, n.Kind)
	assert.Equal(t, "/repo/a.py", n.Path)
	assert.Equal(t, *start, n.Start)
	assert.Equal(t, uint32(2), n.NestLevel)
	assert.Equal(t, "def foo():\n    pass", string(n.Text))
	require.Len(t, n.Tokens, 8)

	// Token-local offsets are the running byte sums of prior texts.
	wantOffsets := []uint32{0, 3, 4, 7, 8, 9, 10, 15}
	for i, tok := range n.Tokens {
		assert.Equal(t, wantOffsets[i], tok.Offset, "token %d", i)
	}

	// Concatenating token slices of Text yields Text again.
	assert.Equal(t, "foo", string(n.Text[n.Tokens[2].Offset:n.Tokens[3].Offset]))

	require.NotNil(t, n.Tokens[2].Href)
	assert.Equal(t, "/repo/a.py", n.Tokens[2].Href.Path)
	assert.Equal(t, uint32(124), n.Tokens[2].Href.Offset)
}

func TestDeltaLineEncoding(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nodes.uim")

	w, err := NewNodeWriter(path)
	require.NoError(t, err)

	// Root nodes start at the zero location, so the very first token's
	// line (1) always diverges from the initial calculated line (0).
	tw, err := w.BeginNode(NodeSourceFile, "/repo/a.py", nil, 0)
	require.NoError(t, err)

	require.NoError(t, tw.AppendToken(TokenKeyword, "import", nil, 1))
	require.NoError(t, tw.AppendToken(TokenWS, " ", nil, 1))
	require.NoError(t, tw.AppendToken(TokenIdentifier, "os", nil, 1))
	require.NoError(t, tw.AppendToken(TokenWS, "\n\n", nil, 1))
	require.NoError(t, tw.AppendToken(TokenIdentifier, "x", nil, 3))
	// A token whose line skips ahead of the newline count, as happens
	// right after an elided definition.
	require.NoError(t, tw.AppendToken(TokenKeyword, "def", nil, 9))
	// And one with no line information at all: the ellipsis marker.
	require.NoError(t, tw.AppendToken(TokenWS, " …", nil, -1))

	require.NoError(t, w.WriteNode(tw))
	require.NoError(t, w.Close())

	nodes, err := ReadNodes(path)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	toks := nodes[0].Tokens
	require.Len(t, toks, 7)

	assert.Equal(t, uint32(1), toks[0].RealLine, "first token diverges from start line 0")
	assert.Zero(t, toks[1].RealLine, "derivable, not stored")
	assert.Zero(t, toks[2].RealLine)
	assert.Zero(t, toks[3].RealLine)
	assert.Zero(t, toks[4].RealLine, "two newlines emitted, line 3 is derivable")
	assert.Equal(t, uint32(9), toks[5].RealLine, "skipped lines are stored explicitly")
	assert.Zero(t, toks[6].RealLine)
}

func TestSearchIndexRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "search.uim")

	w, err := NewSearchIndexWriter(path)
	require.NoError(t, err)

	href := &Href{Path: "/repo/a.py", Offset: 64, Extra: map[string]string{"lang": "python"}}
	require.NoError(t, w.Append(IndexSymbol, "foo", href, "/repo/a.py", ""))
	require.NoError(t, w.Append(IndexSymbol, "Bar", &Href{Path: "/repo/b.py", Offset: 0}, "/repo/b.py", "class"))
	require.NoError(t, w.Close())

	items, err := ReadIndexItems(path)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, IndexSymbol, items[0].Kind)
	assert.Equal(t, "foo", items[0].Key)
	assert.Equal(t, "/repo/a.py", items[0].Path)
	require.NotNil(t, items[0].Href)
	assert.Equal(t, uint32(64), items[0].Href.Offset)
	assert.Equal(t, map[string]string{"lang": "python"}, items[0].Href.Extra)

	assert.Equal(t, "Bar", items[1].Key)
	assert.Equal(t, "class", items[1].Type)
}

func TestWriteAfterClose(t *testing.T) {
	dir := t.TempDir()

	w, err := NewNodeWriter(filepath.Join(dir, "nodes.uim"))
	require.NoError(t, err)
	tw, err := w.BeginNode(NodeSourceFile, "/repo/a.py", nil, 0)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	err = w.WriteNode(tw)
	require.ErrorIs(t, err, ErrClosed)

	sw, err := NewSearchIndexWriter(filepath.Join(dir, "search.uim"))
	require.NoError(t, err)
	require.NoError(t, sw.Close())
	err = sw.Append(IndexSymbol, "x", nil, "", "")
	require.ErrorIs(t, err, ErrClosed)
}

func TestInvalidEnumsFailFast(t *testing.T) {
	dir := t.TempDir()

	w, err := NewNodeWriter(filepath.Join(dir, "nodes.uim"))
	require.NoError(t, err)
	defer w.Close()

	_, err = w.BeginNode(NodeKind(7), "/repo/a.py", nil, 0)
	require.ErrorIs(t, err, ErrValidation)

	tw, err := w.BeginNode(NodeSourceFile, "/repo/a.py", nil, 0)
	require.NoError(t, err)
	err = tw.AppendToken(TokenType(42), "x", nil, 1)
	require.ErrorIs(t, err, ErrValidation)

	sw, err := NewSearchIndexWriter(filepath.Join(dir, "search.uim"))
	require.NoError(t, err)
	defer sw.Close()
	err = sw.Append(IndexItemKind(3), "x", nil, "", "")
	require.ErrorIs(t, err, ErrValidation)
}
