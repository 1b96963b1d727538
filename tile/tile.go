// Package tile implements the container that holds the compressed sections
// of a routing tile. The container uses the protobuf wire format so that
// readers can skip fields they do not know.
package tile

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Version is the container version written by Marshal.
const Version = 1

// ErrFormat is returned for malformed containers.
var ErrFormat = errors.New("tile: invalid format")

const (
	fieldVersion protowire.Number = 1
	fieldSection protowire.Number = 2
)

const (
	fieldSectionName    protowire.Number = 1
	fieldSectionMode    protowire.Number = 2
	fieldSectionCount   protowire.Number = 3
	fieldSectionPayload protowire.Number = 4
	fieldSectionBits    protowire.Number = 5
)

// Tile is a set of named, independently compressed sections.
type Tile struct {
	Version  uint64
	Sections []Section
}

// Section returns the section with the given name.
func (t *Tile) Section(name string) (*Section, bool) {
	for i := range t.Sections {
		if t.Sections[i].Name == name {
			return &t.Sections[i], true
		}
	}
	return nil, false
}

// Marshal encodes the tile.
func (t *Tile) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, t.Version)

	for i := range t.Sections {
		b = protowire.AppendTag(b, fieldSection, protowire.BytesType)
		b = protowire.AppendBytes(b, t.Sections[i].marshal())
	}
	return b
}

// Unmarshal decodes a tile written by Marshal.
func Unmarshal(b []byte) (*Tile, error) {
	t := &Tile{}
	hasVersion := false

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrFormat, protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldVersion && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: version: %v", ErrFormat, protowire.ParseError(n))
			}
			t.Version, hasVersion = v, true
			b = b[n:]

		case num == fieldSection && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: section: %v", ErrFormat, protowire.ParseError(n))
			}
			s, err := unmarshalSection(v)
			if err != nil {
				return nil, fmt.Errorf("section %d: %w", len(t.Sections), err)
			}
			t.Sections = append(t.Sections, s)
			b = b[n:]

		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("%w: field %d: %v", ErrFormat, num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}

	if !hasVersion {
		return nil, fmt.Errorf("%w: missing version", ErrFormat)
	}
	if t.Version != Version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrFormat, t.Version)
	}
	return t, nil
}

func (s *Section) marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldSectionName, protowire.BytesType)
	b = protowire.AppendString(b, s.Name)
	b = protowire.AppendTag(b, fieldSectionMode, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(s.Mode))
	b = protowire.AppendTag(b, fieldSectionCount, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(s.Count))
	b = protowire.AppendTag(b, fieldSectionPayload, protowire.BytesType)
	b = protowire.AppendBytes(b, s.Payload)
	b = protowire.AppendTag(b, fieldSectionBits, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(s.Bits))
	return b
}

func unmarshalSection(b []byte) (Section, error) {
	var s Section
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return s, fmt.Errorf("%w: %v", ErrFormat, protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldSectionName && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return s, fmt.Errorf("%w: name: %v", ErrFormat, protowire.ParseError(n))
			}
			s.Name = v
			b = b[n:]

		case num == fieldSectionPayload && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return s, fmt.Errorf("%w: payload: %v", ErrFormat, protowire.ParseError(n))
			}
			s.Payload = append([]byte(nil), v...)
			b = b[n:]

		case typ == protowire.VarintType &&
			(num == fieldSectionMode || num == fieldSectionCount || num == fieldSectionBits):
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return s, fmt.Errorf("%w: field %d: %v", ErrFormat, num, protowire.ParseError(n))
			}
			switch num {
			case fieldSectionMode:
				s.Mode = Mode(v)
			case fieldSectionCount:
				s.Count = int(v)
			case fieldSectionBits:
				s.Bits = int64(v)
			}
			b = b[n:]

		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return s, fmt.Errorf("%w: field %d: %v", ErrFormat, num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}

	if s.Count < 0 || s.Bits < 0 || s.Bits > int64(len(s.Payload))*8 {
		return s, fmt.Errorf("%w: inconsistent section %q", ErrFormat, s.Name)
	}
	return s, nil
}
