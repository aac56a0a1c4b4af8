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

// Package batchrow implements the versioned binary record format used for
// per-operation batch results. A row names its schema on the wire; the
// schema itself is supplied externally through a Resolver. Readers skip
// field names they do not recognize, so old readers tolerate new writers,
// but an unknown type tag is a structural failure because the value length
// cannot be derived from it.
package batchrow

// FieldType is the wire type tag carried before every field value.
type FieldType byte

const (
	TypeInt32 FieldType = iota + 1
	TypeUInt32
	TypeString
	TypeBinary
	TypeBool
)

// String returns the type tag name.
func (t FieldType) String() string {
	switch t {
	case TypeInt32:
		return "int32"
	case TypeUInt32:
		return "uint32"
	case TypeString:
		return "string"
	case TypeBinary:
		return "binary"
	case TypeBool:
		return "bool"
	}
	return "<unknown>"
}

// Field declares one named, typed column of a schema.
type Field struct {
	Name string
	Type FieldType
}

// Schema is a named, versioned field layout. Writers may only emit fields
// the schema declares; readers use it to reject rows written against a
// layout they do not know.
type Schema struct {
	Name    string
	Version byte
	Fields  []Field
}

// Field returns the declared field with the given name.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Resolver maps a schema name from the wire to its layout. It is supplied
// by the caller; the codec ships only the batch operation result layout.
type Resolver interface {
	Resolve(name string) (*Schema, error)
}

// SchemaSet is a Resolver over a fixed set of schemas.
type SchemaSet map[string]*Schema

func (s SchemaSet) Resolve(name string) (*Schema, error) {
	schema, ok := s[name]
	if !ok {
		return nil, NewDecodeError("unknown schema %q", name)
	}
	return schema, nil
}

// Field and schema names of the batch operation result row.
const (
	OperationResultSchemaName = "batchOperationResult"

	fieldStatusCode    = "statusCode"
	fieldSubStatusCode = "subStatusCode"
	fieldETag          = "eTag"
	fieldResourceBody  = "resourceBody"
	fieldRetryAfterMs  = "retryAfterMilliseconds"
)

// OperationResultSchema returns the layout of a batch operation result row.
func OperationResultSchema() *Schema {
	return &Schema{
		Name:    OperationResultSchemaName,
		Version: RowFormatVersion,
		Fields: []Field{
			{Name: fieldStatusCode, Type: TypeInt32},
			{Name: fieldSubStatusCode, Type: TypeInt32},
			{Name: fieldETag, Type: TypeString},
			{Name: fieldResourceBody, Type: TypeBinary},
			{Name: fieldRetryAfterMs, Type: TypeUInt32},
		},
	}
}

// DefaultResolver resolves the schemas this package ships.
func DefaultResolver() Resolver {
	return SchemaSet{OperationResultSchemaName: OperationResultSchema()}
}
