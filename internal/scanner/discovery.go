package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// Discovery enumerates indexable source files under a root directory,
// matching source glob patterns and excluding ignore patterns (vendored
// and generated trees).
type Discovery struct {
	sourcePatterns []compiledPattern
	ignorePatterns []compiledPattern
}

// NewDiscovery compiles the given glob patterns. Patterns are matched
// against slash-separated paths relative to the scanned root.
func NewDiscovery(sourcePatterns, ignorePatterns []string) (*Discovery, error) {
	d := &Discovery{}
	for _, pattern := range sourcePatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid source pattern %q: %w", pattern, err)
		}
		d.sourcePatterns = append(d.sourcePatterns, compiledPattern{pattern: pattern, glob: g})
	}
	for _, pattern := range ignorePatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
		d.ignorePatterns = append(d.ignorePatterns, compiledPattern{pattern: pattern, glob: g})
		// A bare directory name in the ignore list also covers its
		// contents, e.g. "node_modules" behaves like "node_modules/**".
		if cover, err := glob.Compile(pattern+"/**", '/'); err == nil {
			d.ignorePatterns = append(d.ignorePatterns, compiledPattern{pattern: pattern + "/**", glob: cover})
		}
	}
	return d, nil
}

// Discover walks root and returns every matching source file path.
func (d *Discovery) Discover(root string) ([]string, error) {
	files := []string{}
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if d.shouldIgnore(relPath) {
			return nil
		}
		if d.matchesAny(relPath, d.sourcePatterns) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to discover files under %s: %w", root, err)
	}
	return files, nil
}

func (d *Discovery) shouldIgnore(relPath string) bool {
	return d.matchesAny(relPath, d.ignorePatterns)
}

func (d *Discovery) matchesAny(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
	}
	// "**/*.py" is expected to match "setup.py" at the root too, even
	// though the glob separator semantics say otherwise.
	if !strings.Contains(path, "/") {
		for _, cp := range patterns {
			if simplified, ok := strings.CutPrefix(cp.pattern, "**/"); ok {
				if g, err := glob.Compile(simplified, '/'); err == nil && g.Match(path) {
					return true
				}
			}
		}
	}
	return false
}
