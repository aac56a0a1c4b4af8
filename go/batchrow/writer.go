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
	"fmt"
	"math"
)

// RowWriter builds a binary row against a schema. Set calls validate the
// field name and type against the schema and record the first failure;
// Marshal reports it. A field set twice keeps the last value.
type RowWriter struct {
	schema *Schema
	fields []RowField
	err    error
}

// NewRowWriter creates a writer for the given schema.
func NewRowWriter(schema *Schema) *RowWriter {
	return &RowWriter{schema: schema}
}

// SetInt32 sets an int32 field.
func (w *RowWriter) SetInt32(name string, v int32) *RowWriter {
	return w.set(RowField{Name: name, Type: TypeInt32, Int32: v})
}

// SetUInt32 sets a uint32 field.
func (w *RowWriter) SetUInt32(name string, v uint32) *RowWriter {
	return w.set(RowField{Name: name, Type: TypeUInt32, UInt32: v})
}

// SetString sets a string field.
func (w *RowWriter) SetString(name, v string) *RowWriter {
	return w.set(RowField{Name: name, Type: TypeString, Bytes: []byte(v)})
}

// SetBinary sets a binary field. v is not copied.
func (w *RowWriter) SetBinary(name string, v []byte) *RowWriter {
	return w.set(RowField{Name: name, Type: TypeBinary, Bytes: v})
}

// SetBool sets a bool field.
func (w *RowWriter) SetBool(name string, v bool) *RowWriter {
	return w.set(RowField{Name: name, Type: TypeBool, Bool: v})
}

func (w *RowWriter) set(field RowField) *RowWriter {
	if w.err != nil {
		return w
	}
	declared, ok := w.schema.Field(field.Name)
	if !ok {
		w.err = fmt.Errorf("batchrow: schema %q does not declare field %q", w.schema.Name, field.Name)
		return w
	}
	if declared.Type != field.Type {
		w.err = fmt.Errorf("batchrow: field %q is %s, not %s", field.Name, declared.Type, field.Type)
		return w
	}
	for i, existing := range w.fields {
		if existing.Name == field.Name {
			w.fields[i] = field
			return w
		}
	}
	w.fields = append(w.fields, field)
	return w
}

// Marshal encodes the row, or returns the first Set failure.
func (w *RowWriter) Marshal() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	if len(w.schema.Name) > math.MaxUint16 {
		return nil, fmt.Errorf("batchrow: schema name too long")
	}

	buf := []byte{w.schema.Version}
	buf = appendShortString(buf, w.schema.Name)
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(w.fields)))
	for _, field := range w.fields {
		buf = appendShortString(buf, field.Name)
		buf = append(buf, byte(field.Type))
		switch field.Type {
		case TypeInt32:
			buf = binary.BigEndian.AppendUint32(buf, uint32(field.Int32))
		case TypeUInt32:
			buf = binary.BigEndian.AppendUint32(buf, field.UInt32)
		case TypeBool:
			if field.Bool {
				buf = append(buf, 1)
			} else {
				buf = append(buf, 0)
			}
		case TypeString, TypeBinary:
			buf = binary.BigEndian.AppendUint32(buf, uint32(len(field.Bytes)))
			buf = append(buf, field.Bytes...)
		}
	}
	return buf, nil
}

func appendShortString(buf []byte, s string) []byte {
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(s)))
	return append(buf, s...)
}
