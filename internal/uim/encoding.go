package uim

import (
	"sort"

	"google.golang.org/protobuf/encoding/protowire"
)

// Wire field numbers. The layout is fixed by the stream format; the
// readers in this package and any external consumer depend on it.
const (
	locFieldLine   = 1
	locFieldColumn = 2
	locFieldOffset = 3

	hrefFieldPath   = 1
	hrefFieldOffset = 2
	hrefFieldExtra  = 3

	tokFieldType     = 1
	tokFieldRealLine = 2
	tokFieldOffset   = 3
	tokFieldHref     = 4

	nodeFieldKind      = 1
	nodeFieldPath      = 2
	nodeFieldStart     = 3
	nodeFieldNestLevel = 4
	nodeFieldText      = 5
	nodeFieldTokens    = 6

	itemFieldKind = 1
	itemFieldKey  = 2
	itemFieldPath = 3
	itemFieldType = 4
	itemFieldHref = 5
)

func appendLocation(b []byte, l *Location) []byte {
	if l.Line != 0 {
		b = protowire.AppendTag(b, locFieldLine, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(l.Line))
	}
	if l.Column != 0 {
		b = protowire.AppendTag(b, locFieldColumn, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(l.Column))
	}
	if l.Offset != 0 {
		b = protowire.AppendTag(b, locFieldOffset, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(l.Offset))
	}
	return b
}

func appendHref(b []byte, h *Href) []byte {
	if h.Path != "" {
		b = protowire.AppendTag(b, hrefFieldPath, protowire.BytesType)
		b = protowire.AppendString(b, h.Path)
	}
	if h.Offset != 0 {
		b = protowire.AppendTag(b, hrefFieldOffset, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(h.Offset))
	}
	if len(h.Extra) > 0 {
		// Deterministic output: map entries in key order.
		keys := make([]string, 0, len(h.Extra))
		for k := range h.Extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			var entry []byte
			entry = protowire.AppendTag(entry, 1, protowire.BytesType)
			entry = protowire.AppendString(entry, k)
			entry = protowire.AppendTag(entry, 2, protowire.BytesType)
			entry = protowire.AppendString(entry, h.Extra[k])
			b = protowire.AppendTag(b, hrefFieldExtra, protowire.BytesType)
			b = protowire.AppendBytes(b, entry)
		}
	}
	return b
}

func appendToken(b []byte, t *Token) []byte {
	if t.Type != 0 {
		b = protowire.AppendTag(b, tokFieldType, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(t.Type))
	}
	if t.RealLine != 0 {
		b = protowire.AppendTag(b, tokFieldRealLine, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(t.RealLine))
	}
	if t.Offset != 0 {
		b = protowire.AppendTag(b, tokFieldOffset, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(t.Offset))
	}
	if t.Href != nil {
		b = protowire.AppendTag(b, tokFieldHref, protowire.BytesType)
		b = protowire.AppendBytes(b, appendHref(nil, t.Href))
	}
	return b
}

func appendNode(b []byte, n *Node) []byte {
	if n.Kind != 0 {
		b = protowire.AppendTag(b, nodeFieldKind, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(n.Kind))
	}
	if n.Path != "" {
		b = protowire.AppendTag(b, nodeFieldPath, protowire.BytesType)
		b = protowire.AppendString(b, n.Path)
	}
	b = protowire.AppendTag(b, nodeFieldStart, protowire.BytesType)
	b = protowire.AppendBytes(b, appendLocation(nil, &n.Start))
	if n.NestLevel != 0 {
		b = protowire.AppendTag(b, nodeFieldNestLevel, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(n.NestLevel))
	}
	if len(n.Text) > 0 {
		b = protowire.AppendTag(b, nodeFieldText, protowire.BytesType)
		b = protowire.AppendBytes(b, n.Text)
	}
	for i := range n.Tokens {
		b = protowire.AppendTag(b, nodeFieldTokens, protowire.BytesType)
		b = protowire.AppendBytes(b, appendToken(nil, &n.Tokens[i]))
	}
	return b
}

func appendIndexItem(b []byte, it *IndexItem) []byte {
	if it.Kind != 0 {
		b = protowire.AppendTag(b, itemFieldKind, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(it.Kind))
	}
	if it.Key != "" {
		b = protowire.AppendTag(b, itemFieldKey, protowire.BytesType)
		b = protowire.AppendString(b, it.Key)
	}
	if it.Path != "" {
		b = protowire.AppendTag(b, itemFieldPath, protowire.BytesType)
		b = protowire.AppendString(b, it.Path)
	}
	if it.Type != "" {
		b = protowire.AppendTag(b, itemFieldType, protowire.BytesType)
		b = protowire.AppendString(b, it.Type)
	}
	if it.Href != nil {
		b = protowire.AppendTag(b, itemFieldHref, protowire.BytesType)
		b = protowire.AppendBytes(b, appendHref(nil, it.Href))
	}
	return b
}
