// Package scanner implements the multi-file crawl that turns a
// repository into the UIM node and search index streams: the work queue,
// the offset resolver, and the recursive document builder.
package scanner

import (
	"errors"
	"fmt"
	"os"

	"github.com/maypok86/otter"
)

// ErrOffset is wrapped by offset resolution failures: an unreadable file
// or a line beyond the end of the file. It is fatal for the file whose
// walk triggered it; the crawl itself continues.
var ErrOffset = errors.New("failed to resolve offset")

const offsetCacheCapacity = 8192

// OffsetResolver maps (path, line, column) to absolute byte offsets,
// caching one newline table per file for the lifetime of the crawl
// session. Inputs are assumed immutable during a run; entries are never
// invalidated.
type OffsetResolver struct {
	tables otter.Cache[string, []uint32]
}

// NewOffsetResolver creates a resolver with an empty table cache.
func NewOffsetResolver() (*OffsetResolver, error) {
	tables, err := otter.MustBuilder[string, []uint32](offsetCacheCapacity).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build offset table cache: %w", err)
	}
	return &OffsetResolver{tables: tables}, nil
}

// Seed primes the table for path from content already in memory, saving
// the file read when the crawl has just loaded the file itself.
func (r *OffsetResolver) Seed(path string, content []byte) {
	r.tables.Set(path, lineOffsets(content))
}

// Resolve returns the absolute byte offset of the 1-based line and
// 0-based byte column in the file at path. The file is read at most once;
// offsets are measured in encoded bytes, so multi-byte text stays
// consistent with any byte-oriented consumer.
func (r *OffsetResolver) Resolve(path string, line, column int) (uint32, error) {
	table, ok := r.tables.Get(path)
	if !ok {
		content, err := os.ReadFile(path)
		if err != nil {
			return 0, fmt.Errorf("%w for %s:%d:%d: %v", ErrOffset, path, line, column, err)
		}
		table = lineOffsets(content)
		r.tables.Set(path, table)
	}
	if line < 1 || line > len(table) {
		return 0, fmt.Errorf("%w for %s:%d:%d: line out of range", ErrOffset, path, line, column)
	}
	return table[line-1] + uint32(column), nil
}

// lineOffsets builds the cumulative byte-length table: entry i is the
// byte offset of the start of line i+1, with a synthetic 0 entry for
// line 1.
func lineOffsets(content []byte) []uint32 {
	offs := []uint32{0}
	for i, b := range content {
		if b == '\n' {
			offs = append(offs, uint32(i+1))
		}
	}
	if len(content) > 0 && content[len(content)-1] != '\n' {
		offs = append(offs, uint32(len(content)))
	}
	return offs
}
