package uim

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"google.golang.org/protobuf/encoding/protowire"
)

// ReadNodes reads every node record from the stream at path.
func ReadNodes(path string) ([]*Node, error) {
	var nodes []*Node
	err := readFrames(path, func(rec []byte) error {
		n, err := unmarshalNode(rec)
		if err != nil {
			return err
		}
		nodes = append(nodes, n)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

// ReadIndexItems reads every search index record from the stream at path.
func ReadIndexItems(path string) ([]*IndexItem, error) {
	var items []*IndexItem
	err := readFrames(path, func(rec []byte) error {
		it, err := unmarshalIndexItem(rec)
		if err != nil {
			return err
		}
		items = append(items, it)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func readFrames(path string, fn func(rec []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open uim stream: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	for {
		size, err := binary.ReadUvarint(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("corrupt uim stream %s: %w", path, err)
		}
		rec := make([]byte, size)
		if _, err := io.ReadFull(r, rec); err != nil {
			return fmt.Errorf("corrupt uim stream %s: %w", path, err)
		}
		if err := fn(rec); err != nil {
			return fmt.Errorf("corrupt uim stream %s: %w", path, err)
		}
	}
}

func unmarshalNode(b []byte) (*Node, error) {
	n := &Node{}
	for len(b) > 0 {
		num, typ, tagLen := protowire.ConsumeTag(b)
		if tagLen < 0 {
			return nil, protowire.ParseError(tagLen)
		}
		b = b[tagLen:]

		var fieldLen int
		switch num {
		case nodeFieldKind:
			v, l := protowire.ConsumeVarint(b)
			n.Kind, fieldLen = NodeKind(v), l
		case nodeFieldPath:
			v, l := protowire.ConsumeString(b)
			n.Path, fieldLen = v, l
		case nodeFieldStart:
			v, l := protowire.ConsumeBytes(b)
			if l >= 0 {
				loc, err := unmarshalLocation(v)
				if err != nil {
					return nil, err
				}
				n.Start = *loc
			}
			fieldLen = l
		case nodeFieldNestLevel:
			v, l := protowire.ConsumeVarint(b)
			n.NestLevel, fieldLen = uint32(v), l
		case nodeFieldText:
			v, l := protowire.ConsumeBytes(b)
			if l >= 0 {
				n.Text = append([]byte(nil), v...)
			}
			fieldLen = l
		case nodeFieldTokens:
			v, l := protowire.ConsumeBytes(b)
			if l >= 0 {
				tok, err := unmarshalToken(v)
				if err != nil {
					return nil, err
				}
				n.Tokens = append(n.Tokens, *tok)
			}
			fieldLen = l
		default:
			fieldLen = protowire.ConsumeFieldValue(num, typ, b)
		}
		if fieldLen < 0 {
			return nil, protowire.ParseError(fieldLen)
		}
		b = b[fieldLen:]
	}
	return n, nil
}

func unmarshalToken(b []byte) (*Token, error) {
	t := &Token{}
	for len(b) > 0 {
		num, typ, tagLen := protowire.ConsumeTag(b)
		if tagLen < 0 {
			return nil, protowire.ParseError(tagLen)
		}
		b = b[tagLen:]

		var fieldLen int
		switch num {
		case tokFieldType:
			v, l := protowire.ConsumeVarint(b)
			t.Type, fieldLen = TokenType(v), l
		case tokFieldRealLine:
			v, l := protowire.ConsumeVarint(b)
			t.RealLine, fieldLen = uint32(v), l
		case tokFieldOffset:
			v, l := protowire.ConsumeVarint(b)
			t.Offset, fieldLen = uint32(v), l
		case tokFieldHref:
			v, l := protowire.ConsumeBytes(b)
			if l >= 0 {
				h, err := unmarshalHref(v)
				if err != nil {
					return nil, err
				}
				t.Href = h
			}
			fieldLen = l
		default:
			fieldLen = protowire.ConsumeFieldValue(num, typ, b)
		}
		if fieldLen < 0 {
			return nil, protowire.ParseError(fieldLen)
		}
		b = b[fieldLen:]
	}
	return t, nil
}

func unmarshalLocation(b []byte) (*Location, error) {
	l := &Location{}
	for len(b) > 0 {
		num, typ, tagLen := protowire.ConsumeTag(b)
		if tagLen < 0 {
			return nil, protowire.ParseError(tagLen)
		}
		b = b[tagLen:]

		var fieldLen int
		switch num {
		case locFieldLine:
			v, n := protowire.ConsumeVarint(b)
			l.Line, fieldLen = uint32(v), n
		case locFieldColumn:
			v, n := protowire.ConsumeVarint(b)
			l.Column, fieldLen = uint32(v), n
		case locFieldOffset:
			v, n := protowire.ConsumeVarint(b)
			l.Offset, fieldLen = uint32(v), n
		default:
			fieldLen = protowire.ConsumeFieldValue(num, typ, b)
		}
		if fieldLen < 0 {
			return nil, protowire.ParseError(fieldLen)
		}
		b = b[fieldLen:]
	}
	return l, nil
}

func unmarshalHref(b []byte) (*Href, error) {
	h := &Href{}
	for len(b) > 0 {
		num, typ, tagLen := protowire.ConsumeTag(b)
		if tagLen < 0 {
			return nil, protowire.ParseError(tagLen)
		}
		b = b[tagLen:]

		var fieldLen int
		switch num {
		case hrefFieldPath:
			v, l := protowire.ConsumeString(b)
			h.Path, fieldLen = v, l
		case hrefFieldOffset:
			v, l := protowire.ConsumeVarint(b)
			h.Offset, fieldLen = uint32(v), l
		case hrefFieldExtra:
			v, l := protowire.ConsumeBytes(b)
			if l >= 0 {
				k, val, err := unmarshalExtraEntry(v)
				if err != nil {
					return nil, err
				}
				if h.Extra == nil {
					h.Extra = make(map[string]string)
				}
				h.Extra[k] = val
			}
			fieldLen = l
		default:
			fieldLen = protowire.ConsumeFieldValue(num, typ, b)
		}
		if fieldLen < 0 {
			return nil, protowire.ParseError(fieldLen)
		}
		b = b[fieldLen:]
	}
	return h, nil
}

func unmarshalExtraEntry(b []byte) (key, value string, err error) {
	for len(b) > 0 {
		num, typ, tagLen := protowire.ConsumeTag(b)
		if tagLen < 0 {
			return "", "", protowire.ParseError(tagLen)
		}
		b = b[tagLen:]

		var fieldLen int
		switch num {
		case 1:
			key, fieldLen = protowire.ConsumeString(b)
		case 2:
			value, fieldLen = protowire.ConsumeString(b)
		default:
			fieldLen = protowire.ConsumeFieldValue(num, typ, b)
		}
		if fieldLen < 0 {
			return "", "", protowire.ParseError(fieldLen)
		}
		b = b[fieldLen:]
	}
	return key, value, nil
}

func unmarshalIndexItem(b []byte) (*IndexItem, error) {
	it := &IndexItem{}
	for len(b) > 0 {
		num, typ, tagLen := protowire.ConsumeTag(b)
		if tagLen < 0 {
			return nil, protowire.ParseError(tagLen)
		}
		b = b[tagLen:]

		var fieldLen int
		switch num {
		case itemFieldKind:
			v, l := protowire.ConsumeVarint(b)
			it.Kind, fieldLen = IndexItemKind(v), l
		case itemFieldKey:
			v, l := protowire.ConsumeString(b)
			it.Key, fieldLen = v, l
		case itemFieldPath:
			v, l := protowire.ConsumeString(b)
			it.Path, fieldLen = v, l
		case itemFieldType:
			v, l := protowire.ConsumeString(b)
			it.Type, fieldLen = v, l
		case itemFieldHref:
			v, l := protowire.ConsumeBytes(b)
			if l >= 0 {
				h, err := unmarshalHref(v)
				if err != nil {
					return nil, err
				}
				it.Href = h
			}
			fieldLen = l
		default:
			fieldLen = protowire.ConsumeFieldValue(num, typ, b)
		}
		if fieldLen < 0 {
			return nil, protowire.ParseError(fieldLen)
		}
		b = b[fieldLen:]
	}
	return it, nil
}
