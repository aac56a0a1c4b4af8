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
	"time"
)

// OperationResult is the record decoded from one batch operation result row.
// It is decoded once from an immutable buffer and never mutated afterwards;
// WithResource copies it when a typed payload is attached.
type OperationResult struct {
	StatusCode    int32
	SubStatusCode int32
	ETag          string
	// ResourceBody aliases the buffer the row was decoded from.
	ResourceBody []byte
	RetryAfter   time.Duration
}

// DecodeOperationResult decodes one batch operation result row. Only
// statusCode is required; every other field defaults to its zero value.
// Field names the schema does not anticipate are skipped.
func DecodeOperationResult(buf []byte, resolver Resolver) (*OperationResult, error) {
	row, err := ReadRow(buf, resolver)
	if err != nil {
		return nil, err
	}

	result := &OperationResult{}
	// A zero status code is indistinguishable from an absent one, so
	// presence is tracked explicitly.
	sawStatusCode := false
	for _, field := range row.Fields {
		switch field.Name {
		case fieldStatusCode:
			if field.Type != TypeInt32 {
				return nil, NewDecodeError("field %q: want %s, got %s", field.Name, TypeInt32, field.Type)
			}
			result.StatusCode = field.Int32
			sawStatusCode = true
		case fieldSubStatusCode:
			if field.Type != TypeInt32 {
				return nil, NewDecodeError("field %q: want %s, got %s", field.Name, TypeInt32, field.Type)
			}
			result.SubStatusCode = field.Int32
		case fieldETag:
			if field.Type != TypeString {
				return nil, NewDecodeError("field %q: want %s, got %s", field.Name, TypeString, field.Type)
			}
			result.ETag = string(field.Bytes)
		case fieldResourceBody:
			if field.Type != TypeBinary {
				return nil, NewDecodeError("field %q: want %s, got %s", field.Name, TypeBinary, field.Type)
			}
			result.ResourceBody = field.Bytes
		case fieldRetryAfterMs:
			if field.Type != TypeUInt32 {
				return nil, NewDecodeError("field %q: want %s, got %s", field.Name, TypeUInt32, field.Type)
			}
			result.RetryAfter = time.Duration(field.UInt32) * time.Millisecond
		}
	}
	if !sawStatusCode {
		return nil, NewDecodeError("row is missing required field %q", fieldStatusCode)
	}
	return result, nil
}

// Encode writes the record as a binary row against the batch operation
// result schema. Optional fields at their zero values are omitted.
func (r *OperationResult) Encode() ([]byte, error) {
	w := NewRowWriter(OperationResultSchema())
	w.SetInt32(fieldStatusCode, r.StatusCode)
	if r.SubStatusCode != 0 {
		w.SetInt32(fieldSubStatusCode, r.SubStatusCode)
	}
	if r.ETag != "" {
		w.SetString(fieldETag, r.ETag)
	}
	if r.ResourceBody != nil {
		w.SetBinary(fieldResourceBody, r.ResourceBody)
	}
	if r.RetryAfter != 0 {
		w.SetUInt32(fieldRetryAfterMs, uint32(r.RetryAfter/time.Millisecond))
	}
	return w.Marshal()
}

// TypedResult pairs an operation result with its resource body decoded into
// a caller-chosen type.
type TypedResult[T any] struct {
	OperationResult
	Resource T
}

// WithResource copies result and attaches a decoded resource to the copy.
func WithResource[T any](result *OperationResult, resource T) *TypedResult[T] {
	return &TypedResult[T]{
		OperationResult: *result,
		Resource:        resource,
	}
}
