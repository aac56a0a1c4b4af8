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
	"errors"
	"fmt"
)

// DecodeError is a structural parse failure or a missing required field.
// Decoding caller-supplied bytes never panics; every malformed buffer
// surfaces as one of these.
type DecodeError struct {
	Message string
}

func (e *DecodeError) Error() string {
	return "batchrow: " + e.Message
}

// NewDecodeError creates a DecodeError.
func NewDecodeError(format string, args ...any) error {
	return &DecodeError{Message: fmt.Sprintf(format, args...)}
}

// IsDecodeError reports whether err is a DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
