// Package resolve is the semantic resolution capability consumed by the
// document builder: given a token position, find the definition it
// refers to. The builder treats resolution as best-effort; ordinary
// unresolved references return a nil target, never an error.
package resolve

import "context"

// Target is a resolved definition location. Line is 1-based, Column a
// 0-based byte column, matching parser coordinates.
type Target struct {
	Path   string
	Line   int
	Column int
}

// Resolver resolves the token at (path, line, column) to its
// definition. A nil Target with nil error means "no target", which is a
// normal outcome. Implementations must honor ctx cancellation and
// return its error, which the builder propagates as a walk timeout.
type Resolver interface {
	Definition(ctx context.Context, path string, line, column int) (*Target, error)
}

// None is a Resolver that never resolves anything.
type None struct{}

// Definition always reports no target.
func (None) Definition(context.Context, string, int, int) (*Target, error) {
	return nil, nil
}
