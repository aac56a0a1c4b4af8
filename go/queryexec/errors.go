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

package queryexec

import (
	"errors"
	"fmt"
)

// ErrorCode classifies pipeline errors.
type ErrorCode int

const (
	// MalformedContinuationToken means a continuation token was present but
	// failed structural or semantic validation. A malformed token is never
	// partially honored.
	MalformedContinuationToken = ErrorCode(iota)
	// UnsupportedOperation means the operator variant never implemented the
	// requested path (client-variant resume and state serialization). This is
	// deliberately distinct from MalformedContinuationToken so callers can
	// tell a corrupt token from a feature gap.
	UnsupportedOperation
)

// String returns the code name.
func (c ErrorCode) String() string {
	switch c {
	case MalformedContinuationToken:
		return "MalformedContinuationToken"
	case UnsupportedOperation:
		return "UnsupportedOperation"
	}
	return "<unknown>"
}

// Error is a typed pipeline error.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return e.Code.String() + ": " + e.Message
}

// NewMalformedTokenError creates a MalformedContinuationToken error.
func NewMalformedTokenError(format string, args ...any) error {
	return &Error{
		Code:    MalformedContinuationToken,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewUnsupportedOperationError creates an UnsupportedOperation error.
func NewUnsupportedOperationError(format string, args ...any) error {
	return &Error{
		Code:    UnsupportedOperation,
		Message: fmt.Sprintf(format, args...),
	}
}

// CodeOf extracts the pipeline error code from err. The second return value
// is false for errors that did not originate here, such as source factory
// creation errors, which are propagated unchanged.
func CodeOf(err error) (ErrorCode, bool) {
	var qe *Error
	if errors.As(err, &qe) {
		return qe.Code, true
	}
	return 0, false
}

// IsMalformedToken reports whether err is a MalformedContinuationToken error.
func IsMalformedToken(err error) bool {
	code, ok := CodeOf(err)
	return ok && code == MalformedContinuationToken
}

// IsUnsupportedOperation reports whether err is an UnsupportedOperation error.
func IsUnsupportedOperation(err error) bool {
	code, ok := CodeOf(err)
	return ok && code == UnsupportedOperation
}
