package scanner

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/mvp-joe/territory/internal/logging"
	"github.com/mvp-joe/territory/internal/resolve"
	"github.com/mvp-joe/territory/internal/syntax"
	"github.com/mvp-joe/territory/internal/uim"
)

// ellipsisMarker is the single token appended after an elided header.
const ellipsisMarker = " …"

// neverResolved lists token texts that are never sent to the resolver,
// even when the grammar classifies them as identifiers.
var neverResolved = map[string]struct{}{
	"(": {}, ")": {}, ",": {}, "=": {}, ".": {}, ":": {}, "}": {}, "\n": {},
}

// walkContext is the ambient state of one step of the recursive walk.
// It is passed by value: a recursive call adjusts its own copy and
// sibling calls never observe each other's changes.
//
// omitPrefix suppresses the next leaf's leading prefix; it is set when a
// definition's first token is emitted into its own node, because the
// prefix was already attributed to the parent's elided rendering. href,
// when set, forces every emitted token to carry it instead of consulting
// the resolver.
type walkContext struct {
	path       string
	node       *uim.TokenWriter
	depth      uint32
	omitPrefix bool
	href       *uim.Href
}

// builder is the recursive document builder. It owns one file walk at a
// time; buildFile binds the file's language profile before walking.
type builder struct {
	ctx      context.Context
	root     string
	profile  *syntax.Profile
	nodes    *uim.NodeWriter
	search   *uim.SearchIndexWriter
	queue    *ScanQueue
	offsets  *OffsetResolver
	resolver resolve.Resolver
	log      *log.Logger

	// onRef observes one cross-file reference edge per successful
	// resolution into another file. May be nil.
	onRef func(from, to string)
}

// buildFile walks one parsed file, flushing all nested definition nodes
// and finally the root node. On a deadline expiry the partially built
// root is still flushed best-effort before the error is returned.
func (b *builder) buildFile(path string, tree *syntax.Tree) error {
	b.profile = tree.Profile

	root, err := b.nodes.BeginNode(uim.NodeSourceFile, path, nil, 0)
	if err != nil {
		return err
	}

	wc := walkContext{path: path, node: root}
	walkErr := b.writeContent(wc, tree.Root)
	if walkErr != nil && !errors.Is(walkErr, context.DeadlineExceeded) {
		return walkErr
	}
	if err := b.nodes.WriteNode(root); err != nil {
		return err
	}
	return walkErr
}

// writeContent emits one syntax node into the context's output node,
// dispatching per shape: definable units open nested nodes, leaves emit
// prefix and text tokens, composites recurse.
func (b *builder) writeContent(wc walkContext, n *syntax.Node) error {
	switch {
	case n.Definition():
		return b.writeDefinition(wc, n)
	case n.Kind == syntax.KindEOF:
		if n.Prefix == "" || wc.omitPrefix {
			return nil
		}
		return wc.node.AppendToken(uim.TokenWS, n.Prefix, wc.href, n.PrefixLine)
	case n.Kind == syntax.KindLeaf:
		return b.writeLeaf(wc, n)
	default:
		for i, c := range n.Children {
			cc := wc
			if i > 0 {
				cc.omitPrefix = false
			}
			if err := b.writeContent(cc, c); err != nil {
				return err
			}
		}
		return nil
	}
}

// writeDefinition handles a definable unit: flush the unit as its own
// nested node first, then append the elided rendering and the search
// index entry to the parent.
func (b *builder) writeDefinition(wc walkContext, n *syntax.Node) error {
	startOffset, err := b.offsets.Resolve(wc.path, n.Line, n.Column)
	if err != nil {
		return err
	}
	start := &uim.Location{Line: uint32(n.Line), Column: uint32(n.Column), Offset: startOffset}

	child, err := b.nodes.BeginNode(uim.NodeDefinition, wc.path, start, wc.depth+1)
	if err != nil {
		return err
	}
	cc := walkContext{path: wc.path, node: child, depth: wc.depth + 1, omitPrefix: true}
	walkErr := b.writeUnitBody(cc, n)
	if walkErr != nil && !errors.Is(walkErr, context.DeadlineExceeded) {
		return walkErr
	}
	if err := b.nodes.WriteNode(child); err != nil {
		return err
	}
	if walkErr != nil {
		return walkErr
	}

	if err := b.writeElided(wc, n); err != nil {
		return err
	}

	if name := n.InnerName(); name != nil {
		entry := &uim.Href{Path: wc.path, Offset: startOffset}
		if err := b.search.Append(uim.IndexSymbol, name.Text, entry, wc.path, innerDefinition(n).Raw); err != nil {
			return err
		}
	}
	return nil
}

// writeUnitBody emits a definable unit's full contents. The inner
// definition of a decorator wrapper belongs to the same unit and is
// inlined rather than opened as another nested node.
func (b *builder) writeUnitBody(wc walkContext, n *syntax.Node) error {
	for i, c := range n.Children {
		cc := wc
		if i > 0 {
			cc.omitPrefix = false
		}
		var err error
		if n.Kind == syntax.KindDecorated && c.Definition() {
			err = b.writeUnitBody(cc, c)
		} else {
			err = b.writeContent(cc, c)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// writeElided appends the unit's collapsed header to the parent node:
// the same token sequence as the full unit, truncated at the punctuation
// that opens the body, then a single ellipsis marker. Every token in the
// rendering carries the unit's anchor href.
func (b *builder) writeElided(wc walkContext, n *syntax.Node) error {
	anchor, err := b.anchorHref(wc.path, n)
	if err != nil {
		return err
	}

	ec := wc
	ec.href = anchor
	if _, err := b.writeElidedUnit(ec, n); err != nil {
		return err
	}
	return wc.node.AppendToken(uim.TokenWS, ellipsisMarker, anchor, -1)
}

// writeElidedUnit emits the unit's header tokens, reporting done once
// the body-opening punctuation has been written. Decorators are always
// part of the header; the terminator is the inner unit's own.
func (b *builder) writeElidedUnit(wc walkContext, n *syntax.Node) (bool, error) {
	for i, c := range n.Children {
		cc := wc
		if i > 0 {
			cc.omitPrefix = false
		}
		switch {
		case n.Kind == syntax.KindDecorated && c.Definition():
			done, err := b.writeElidedUnit(cc, c)
			if err != nil || done {
				return done, err
			}
		case c.Body:
			// Brace languages: the body's opening brace ends the header.
			if leaf := firstLeaf(c); leaf != nil {
				if err := b.writeLeaf(cc, leaf); err != nil {
					return false, err
				}
			}
			return true, nil
		case c.Kind == syntax.KindLeaf && c.Text == b.profile.BodyOpen:
			if err := b.writeLeaf(cc, c); err != nil {
				return false, err
			}
			return true, nil
		default:
			if err := b.writeContent(cc, c); err != nil {
				return false, err
			}
		}
	}
	return false, nil
}

// writeLeaf emits a leaf's prefix (unless suppressed) and its text. A
// forced href short-circuits resolution; otherwise identifier leaves are
// looked up through the resolver.
func (b *builder) writeLeaf(wc walkContext, n *syntax.Node) error {
	if n.Prefix != "" && !wc.omitPrefix {
		if err := wc.node.AppendToken(uim.TokenWS, n.Prefix, wc.href, n.PrefixLine); err != nil {
			return err
		}
	}

	typ := tokenType(n.Class)
	href := wc.href
	if href == nil && typ == uim.TokenIdentifier {
		if _, skip := neverResolved[n.Text]; !skip {
			var err error
			href, err = b.resolveHref(wc.path, n)
			if err != nil {
				return err
			}
		}
	}
	return wc.node.AppendToken(typ, n.Text, href, n.Line)
}

// resolveHref asks the resolver for the leaf's definition target. An
// ordinary resolution failure yields no href; only cancellation and
// offset failures propagate.
func (b *builder) resolveHref(path string, n *syntax.Node) (*uim.Href, error) {
	if b.resolver == nil {
		return nil, nil
	}
	if err := b.ctx.Err(); err != nil {
		return nil, err
	}

	target, err := b.resolver.Definition(b.ctx, path, n.Line, n.Column)
	if err != nil {
		if cerr := b.ctx.Err(); cerr != nil {
			return nil, cerr
		}
		b.log.Debug("reference resolution failed",
			logging.FieldPath, path,
			logging.FieldLine, n.Line,
			logging.FieldError, err)
		return nil, nil
	}
	if target == nil {
		return nil, nil
	}

	offset, err := b.offsets.Resolve(target.Path, target.Line, target.Column)
	if err != nil {
		return nil, err
	}

	b.enqueue(target.Path)
	if b.onRef != nil && target.Path != path {
		b.onRef(path, target.Path)
	}
	return &uim.Href{Path: target.Path, Offset: offset}, nil
}

// anchorHref is the forced href of an elided rendering: the unit's name
// token, or the unit's own start when it is anonymous.
func (b *builder) anchorHref(path string, n *syntax.Node) (*uim.Href, error) {
	line, column := n.Line, n.Column
	if name := n.InnerName(); name != nil {
		line, column = name.Line, name.Column
	}
	offset, err := b.offsets.Resolve(path, line, column)
	if err != nil {
		return nil, err
	}
	return &uim.Href{Path: path, Offset: offset}, nil
}

// enqueue registers a file discovered through resolution. Files inside
// the project root are always queued; anything else follows the
// dependency policy.
func (b *builder) enqueue(path string) {
	if b.root != "" && pathWithin(b.root, path) {
		b.queue.Add(path)
		return
	}
	b.queue.AddDependency(path)
}

func pathWithin(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func firstLeaf(n *syntax.Node) *syntax.Node {
	if n.Kind == syntax.KindLeaf {
		return n
	}
	for _, c := range n.Children {
		if leaf := firstLeaf(c); leaf != nil {
			return leaf
		}
	}
	return nil
}

// innerDefinition descends decorator wrappers to the wrapped unit.
func innerDefinition(n *syntax.Node) *syntax.Node {
	cur := n
	for cur.Kind == syntax.KindDecorated {
		var next *syntax.Node
		for _, c := range cur.Children {
			if c.Definition() {
				next = c
				break
			}
		}
		if next == nil {
			return cur
		}
		cur = next
	}
	return cur
}

func tokenType(class syntax.LeafClass) uim.TokenType {
	switch class {
	case syntax.LeafKeyword:
		return uim.TokenKeyword
	case syntax.LeafLiteral:
		return uim.TokenLiteral
	case syntax.LeafPunctuation:
		return uim.TokenPunctuation
	default:
		return uim.TokenIdentifier
	}
}
