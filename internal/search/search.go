// Package search serves symbol lookups over the flat search index
// stream. The stream is loaded once into an in-memory bleve index; the
// stream stays the source of truth, the index dies with the process.
package search

import (
	"context"
	"fmt"
	"strconv"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/mvp-joe/territory/internal/uim"
)

const defaultLimit = 20

// Symbol is one search hit.
type Symbol struct {
	Key    string  `json:"key"`
	Path   string  `json:"path"`
	Type   string  `json:"type"`
	Offset uint32  `json:"offset"`
	Score  float64 `json:"score"`
}

// Options narrows a search.
type Options struct {
	// Limit caps the number of hits. Zero means a small default.
	Limit int
	// Path filters hits by file path, wildcard syntax.
	Path string
	// Type filters hits by definition kind, exact match.
	Type string
}

// Searcher answers symbol queries against one loaded search stream.
type Searcher struct {
	index bleve.Index
	items []*uim.IndexItem
}

// Open loads the search stream at path and indexes it in memory.
func Open(path string) (*Searcher, error) {
	items, err := uim.ReadIndexItems(path)
	if err != nil {
		return nil, err
	}
	return NewSearcher(items)
}

// NewSearcher indexes the given entries in memory.
func NewSearcher(items []*uim.IndexItem) (*Searcher, error) {
	index, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create search index: %w", err)
	}

	batch := index.NewBatch()
	for i, it := range items {
		doc := map[string]interface{}{
			"key":  it.Key,
			"path": it.Path,
			"type": it.Type,
		}
		if err := batch.Index(strconv.Itoa(i), doc); err != nil {
			index.Close()
			return nil, fmt.Errorf("failed to add entry %q to batch: %w", it.Key, err)
		}
	}
	if batch.Size() > 0 {
		if err := index.Batch(batch); err != nil {
			index.Close()
			return nil, fmt.Errorf("failed to index search entries: %w", err)
		}
	}

	return &Searcher{index: index, items: items}, nil
}

func buildMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()

	keyMapping := bleve.NewTextFieldMapping()
	keyMapping.Analyzer = "standard"
	keyMapping.Store = true
	keyMapping.Index = true

	pathMapping := bleve.NewTextFieldMapping()
	pathMapping.Analyzer = "standard"
	pathMapping.Store = true
	pathMapping.Index = true

	typeMapping := bleve.NewTextFieldMapping()
	typeMapping.Analyzer = "keyword"
	typeMapping.Store = true
	typeMapping.Index = true

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("key", keyMapping)
	docMapping.AddFieldMappingsAt("path", pathMapping)
	docMapping.AddFieldMappingsAt("type", typeMapping)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

// Search runs a query string search with optional path and type filters.
func (s *Searcher) Search(ctx context.Context, queryStr string, opts *Options) ([]Symbol, error) {
	if opts == nil {
		opts = &Options{}
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	var queries []query.Query
	q := bleve.NewQueryStringQuery(queryStr)
	queries = append(queries, q)
	if opts.Type != "" {
		tq := bleve.NewMatchQuery(opts.Type)
		tq.SetField("type")
		queries = append(queries, tq)
	}
	if opts.Path != "" {
		pq := bleve.NewWildcardQuery(opts.Path)
		pq.SetField("path")
		queries = append(queries, pq)
	}

	var finalQuery query.Query = queries[0]
	if len(queries) > 1 {
		finalQuery = bleve.NewConjunctionQuery(queries...)
	}

	req := bleve.NewSearchRequestOptions(finalQuery, limit, 0, false)
	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("symbol search failed: %w", err)
	}

	out := make([]Symbol, 0, len(res.Hits))
	for _, hit := range res.Hits {
		i, err := strconv.Atoi(hit.ID)
		if err != nil || i < 0 || i >= len(s.items) {
			continue
		}
		it := s.items[i]
		sym := Symbol{
			Key:   it.Key,
			Path:  it.Path,
			Type:  it.Type,
			Score: hit.Score,
		}
		if it.Href != nil {
			sym.Offset = it.Href.Offset
		}
		out = append(out, sym)
	}
	return out, nil
}

// Count returns the number of loaded entries.
func (s *Searcher) Count() int {
	return len(s.items)
}

// Close releases the in-memory index.
func (s *Searcher) Close() error {
	return s.index.Close()
}
