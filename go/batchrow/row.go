// Copyright 2025 StratoDoc, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package batchrow

import (
	"encoding/binary"
)

// RowFormatVersion is the single binary format version this codec speaks.
// It is the first byte of every row.
const RowFormatVersion byte = 1

// Wire layout, all integers big endian:
//
//	version        byte
//	schema name    uint16 length, bytes
//	field count    uint16
//	fields         repeated: uint16 name length, name bytes, type tag byte,
//	               value (int32/uint32: 4 bytes; bool: 1 byte;
//	               string/binary: uint32 length, bytes)
//
// Trailing bytes after the last declared field are a structural failure.

// RowField is one decoded field. Exactly one of the value members is
// meaningful, selected by Type. Bytes aliases the input buffer.
type RowField struct {
	Name   string
	Type   FieldType
	Int32  int32
	UInt32 uint32
	Bool   bool
	Bytes  []byte
}

// Row is a structurally parsed binary row. Field order on the wire is not
// guaranteed; consumers dispatch on field names.
type Row struct {
	Schema *Schema
	Fields []RowField
}

// ReadRow structurally parses buf against the schema the row names on the
// wire, resolved through resolver. buf is not copied; string and binary
// field values alias it.
func ReadRow(buf []byte, resolver Resolver) (*Row, error) {
	r := &rowReader{buf: buf}

	version, err := r.readByte("format version")
	if err != nil {
		return nil, err
	}
	if version != RowFormatVersion {
		return nil, NewDecodeError("unsupported format version %d", version)
	}

	name, err := r.readShortString("schema name")
	if err != nil {
		return nil, err
	}
	schema, err := resolver.Resolve(name)
	if err != nil {
		return nil, err
	}
	if schema.Version != version {
		return nil, NewDecodeError("schema %q is version %d, row is version %d",
			name, schema.Version, version)
	}

	count, err := r.readUint16("field count")
	if err != nil {
		return nil, err
	}

	row := &Row{Schema: schema, Fields: make([]RowField, 0, count)}
	for i := 0; i < int(count); i++ {
		field, err := r.readField()
		if err != nil {
			return nil, err
		}
		row.Fields = append(row.Fields, field)
	}
	if r.off != len(r.buf) {
		return nil, NewDecodeError("%d trailing bytes after %d fields", len(r.buf)-r.off, count)
	}
	return row, nil
}

type rowReader struct {
	buf []byte
	off int
}

func (r *rowReader) readField() (RowField, error) {
	name, err := r.readShortString("field name")
	if err != nil {
		return RowField{}, err
	}
	tag, err := r.readByte("type tag")
	if err != nil {
		return RowField{}, err
	}

	field := RowField{Name: name, Type: FieldType(tag)}
	switch field.Type {
	case TypeInt32:
		v, err := r.readUint32("int32 value")
		if err != nil {
			return RowField{}, err
		}
		field.Int32 = int32(v)
	case TypeUInt32:
		v, err := r.readUint32("uint32 value")
		if err != nil {
			return RowField{}, err
		}
		field.UInt32 = v
	case TypeBool:
		b, err := r.readByte("bool value")
		if err != nil {
			return RowField{}, err
		}
		if b > 1 {
			return RowField{}, NewDecodeError("field %q: bool byte %d", name, b)
		}
		field.Bool = b == 1
	case TypeString, TypeBinary:
		length, err := r.readUint32("value length")
		if err != nil {
			return RowField{}, err
		}
		bytes, err := r.readBytes(int(length), "value")
		if err != nil {
			return RowField{}, err
		}
		field.Bytes = bytes
	default:
		// An unknown field NAME is skippable, but an unknown type tag is
		// not: the value length cannot be derived from it.
		return RowField{}, NewDecodeError("field %q: unknown type tag %d", name, tag)
	}
	return field, nil
}

func (r *rowReader) readByte(what string) (byte, error) {
	if r.off+1 > len(r.buf) {
		return 0, r.truncated(what)
	}
	b := r.buf[r.off]
	r.off++
	return b, nil
}

func (r *rowReader) readUint16(what string) (uint16, error) {
	if r.off+2 > len(r.buf) {
		return 0, r.truncated(what)
	}
	v := binary.BigEndian.Uint16(r.buf[r.off:])
	r.off += 2
	return v, nil
}

func (r *rowReader) readUint32(what string) (uint32, error) {
	if r.off+4 > len(r.buf) {
		return 0, r.truncated(what)
	}
	v := binary.BigEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v, nil
}

func (r *rowReader) readBytes(length int, what string) ([]byte, error) {
	if length < 0 || r.off+length > len(r.buf) {
		return nil, r.truncated(what)
	}
	b := r.buf[r.off : r.off+length]
	r.off += length
	return b, nil
}

func (r *rowReader) readShortString(what string) (string, error) {
	length, err := r.readUint16(what + " length")
	if err != nil {
		return "", err
	}
	b, err := r.readBytes(int(length), what)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *rowReader) truncated(what string) error {
	return NewDecodeError("truncated row: reading %s at offset %d of %d", what, r.off, len(r.buf))
}
