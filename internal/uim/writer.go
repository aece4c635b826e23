package uim

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"google.golang.org/protobuf/encoding/protowire"
)

var (
	// ErrClosed is returned when writing through an already closed writer.
	ErrClosed = errors.New("uim: writer is closed")

	// ErrValidation is returned when an unknown enum value reaches a
	// writer. This indicates a programming error, not bad input, and
	// callers are expected to treat it as fatal.
	ErrValidation = errors.New("uim: validation error")
)

// TokenWriter accumulates the tokens of a single in-progress node. It is
// created by NodeWriter.BeginNode, mutated by AppendToken while the
// document builder walks the node's scope, and finalized by
// NodeWriter.WriteNode. It tracks the running line count so that a
// token's line is stored explicitly only when it cannot be derived from
// the newlines of previously appended text.
type TokenWriter struct {
	node           Node
	text           bytes.Buffer
	offset         uint32
	calculatedLine uint32
}

// AppendToken appends one token with the given text. href may be nil.
// realLine is the token's 1-based source line, or a negative value when
// the caller has no line to report (the line is then always derived).
func (tw *TokenWriter) AppendToken(typ TokenType, text string, href *Href, realLine int) error {
	if !typ.valid() {
		return fmt.Errorf("%w: invalid token type %d", ErrValidation, typ)
	}

	tok := Token{
		Type:   typ,
		Offset: tw.offset,
		Href:   href,
	}
	if realLine >= 0 && uint32(realLine) != tw.calculatedLine {
		tok.RealLine = uint32(realLine)
		// Resync so that later tokens on derivable lines stay implicit.
		tw.calculatedLine = uint32(realLine)
	}

	tw.text.WriteString(text)
	tw.offset += uint32(len(text))
	tw.node.Tokens = append(tw.node.Tokens, tok)
	tw.calculatedLine += uint32(strings.Count(text, "\n"))
	return nil
}

// Text returns the node text accumulated so far.
func (tw *TokenWriter) Text() []byte {
	return tw.text.Bytes()
}

// NodeWriter writes length-delimited node records to a single output
// stream. Nodes are flushed in the order WriteNode is called; the
// document builder closes child definitions before their parents, so the
// stream is naturally depth-first with children first.
type NodeWriter struct {
	f *os.File
}

// NewNodeWriter creates (truncating) the node stream at path.
func NewNodeWriter(path string) (*NodeWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create uim node stream: %w", err)
	}
	return &NodeWriter{f: f}, nil
}

// BeginNode opens a new node of the given kind. start may be nil for the
// file root, which sits at the zero location. The returned TokenWriter
// starts its line bookkeeping at the node's start line.
func (w *NodeWriter) BeginNode(kind NodeKind, path string, start *Location, nestLevel uint32) (*TokenWriter, error) {
	if !kind.valid() {
		return nil, fmt.Errorf("%w: incorrect node kind %d", ErrValidation, kind)
	}

	tw := &TokenWriter{
		node: Node{
			Kind:      kind,
			Path:      path,
			NestLevel: nestLevel,
		},
	}
	if start != nil {
		tw.node.Start = *start
		tw.calculatedLine = start.Line
	}
	return tw, nil
}

// WriteNode finalizes the node held by tw and flushes it as one framed
// record. The record is fully built in memory before any byte hits the
// file, so a serialization failure leaves no partial record behind.
func (w *NodeWriter) WriteNode(tw *TokenWriter) error {
	if w.f == nil {
		return fmt.Errorf("attempted to write node to a closed writer: %w", ErrClosed)
	}
	tw.node.Text = tw.text.Bytes()
	return writeFrame(w.f, appendNode(nil, &tw.node))
}

// Close closes the underlying stream. Further writes fail with ErrClosed.
func (w *NodeWriter) Close() error {
	if w.f == nil {
		return nil
	}
	err := w.f.Close()
	w.f = nil
	return err
}

// SearchIndexWriter writes length-delimited search index records. The
// search stream is framed identically to the node stream but is fully
// independent of it.
type SearchIndexWriter struct {
	f *os.File
}

// NewSearchIndexWriter creates (truncating) the search stream at path.
func NewSearchIndexWriter(path string) (*SearchIndexWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create uim search index stream: %w", err)
	}
	return &SearchIndexWriter{f: f}, nil
}

// Append writes one index entry. path and typ may be empty.
func (w *SearchIndexWriter) Append(kind IndexItemKind, key string, href *Href, path, typ string) error {
	if w.f == nil {
		return fmt.Errorf("attempted to write to a closed writer: %w", ErrClosed)
	}
	if !kind.valid() {
		return fmt.Errorf("%w: invalid index item kind %d", ErrValidation, kind)
	}

	it := IndexItem{
		Kind: kind,
		Key:  key,
		Path: path,
		Type: typ,
		Href: href,
	}
	return writeFrame(w.f, appendIndexItem(nil, &it))
}

// Close closes the underlying stream.
func (w *SearchIndexWriter) Close() error {
	if w.f == nil {
		return nil
	}
	err := w.f.Close()
	w.f = nil
	return err
}

// writeFrame writes one uvarint length prefix followed by the record
// bytes. The prefix makes the stream self-delimiting: readers need no
// separate index to consume it.
func writeFrame(f *os.File, rec []byte) error {
	framed := protowire.AppendVarint(nil, uint64(len(rec)))
	framed = append(framed, rec...)
	if _, err := f.Write(framed); err != nil {
		return fmt.Errorf("failed to write uim record: %w", err)
	}
	return nil
}
