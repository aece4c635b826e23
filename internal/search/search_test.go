package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/territory/internal/uim"
)

func testItems() []*uim.IndexItem {
	return []*uim.IndexItem{
		{Kind: uim.IndexSymbol, Key: "parse_config", Path: "/repo/config.py", Type: "function_definition",
			Href: &uim.Href{Path: "/repo/config.py", Offset: 120}},
		{Kind: uim.IndexSymbol, Key: "ConfigLoader", Path: "/repo/config.py", Type: "class_definition",
			Href: &uim.Href{Path: "/repo/config.py", Offset: 300}},
		{Kind: uim.IndexSymbol, Key: "main", Path: "/repo/app.py", Type: "function_definition",
			Href: &uim.Href{Path: "/repo/app.py", Offset: 0}},
	}
}

func newTestSearcher(t *testing.T) *Searcher {
	t.Helper()
	s, err := NewSearcher(testItems())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSearchByName(t *testing.T) {
	s := newTestSearcher(t)

	hits, err := s.Search(context.Background(), "parse_config", nil)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "parse_config", hits[0].Key)
	assert.Equal(t, "/repo/config.py", hits[0].Path)
	assert.Equal(t, uint32(120), hits[0].Offset)
}

func TestSearchTypeFilter(t *testing.T) {
	s := newTestSearcher(t)

	hits, err := s.Search(context.Background(), "parse_config ConfigLoader", &Options{Type: "class_definition"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "ConfigLoader", hits[0].Key)
}

func TestSearchPathFilter(t *testing.T) {
	s := newTestSearcher(t)

	hits, err := s.Search(context.Background(), "main", &Options{Path: "*app.py"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "main", hits[0].Key)
}

func TestSearchLimit(t *testing.T) {
	s := newTestSearcher(t)

	hits, err := s.Search(context.Background(), "function_definition", &Options{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestSearchNoHits(t *testing.T) {
	s := newTestSearcher(t)

	hits, err := s.Search(context.Background(), "nonexistent_symbol_xyz", nil)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestCount(t *testing.T) {
	s := newTestSearcher(t)
	assert.Equal(t, 3, s.Count())
}
