package scanner

import "path/filepath"

// Canonicalizer memoizes path canonicalization for the crawl session.
// Queue dedup and href targets all go through it so that the same file is
// never known under two spellings.
type Canonicalizer struct {
	memo map[string]string
}

// NewCanonicalizer creates an empty session-lifetime memo.
func NewCanonicalizer() *Canonicalizer {
	return &Canonicalizer{memo: make(map[string]string)}
}

// Canonical returns the absolute, symlink-resolved form of path. On
// resolution failure the best-known form is returned; canonicalization
// is a dedup aid, not a correctness gate.
func (c *Canonicalizer) Canonical(path string) string {
	if resolved, ok := c.memo[path]; ok {
		return resolved
	}
	resolved := path
	if abs, err := filepath.Abs(resolved); err == nil {
		resolved = abs
	}
	if real, err := filepath.EvalSymlinks(resolved); err == nil {
		resolved = real
	}
	c.memo[path] = resolved
	return resolved
}
