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
	"encoding/json"
	"math"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/stratodoc/stratodoc/go/elements"
)

// Structured (compute) token member names. Casing is part of the wire
// format; readers look members up by name and never assume order.
const (
	fieldSkipCount        = "SkipCount"
	fieldTakeCount        = "TakeCount"
	fieldAggregationToken = "AggregationToken"
	fieldSourceToken      = "SourceToken"
)

// clientOffsetToken is the flat string encoding of an offset continuation
// token. The same struct round-trips both directions: mapstructure tags for
// strict decode, json tags for encode.
type clientOffsetToken struct {
	Offset      *float64 `mapstructure:"offset" json:"offset"`
	SourceToken *string  `mapstructure:"sourceToken" json:"sourceToken"`
}

// clientLimitToken is the flat string encoding of a LIMIT continuation token.
type clientLimitToken struct {
	Limit       *float64 `mapstructure:"limit" json:"limit"`
	SourceToken *string  `mapstructure:"sourceToken" json:"sourceToken"`
}

// clientTopToken is the flat string encoding of a TOP continuation token. It
// differs from clientLimitToken in field name only; the behavioral contract
// is identical.
type clientTopToken struct {
	Top         *float64 `mapstructure:"top" json:"top"`
	SourceToken *string  `mapstructure:"sourceToken" json:"sourceToken"`
}

// decodeClientToken parses a flat string token into out. Unknown fields are
// a shape violation: the client encodings are closed objects, and a LIMIT
// token handed to a TOP operator (or vice versa) must be rejected.
func decodeClientToken(operator, token string, out any) error {
	var raw map[string]any
	if err := json.Unmarshal([]byte(token), &raw); err != nil {
		return NewMalformedTokenError("%s: invalid continuation token %q: %v", operator, token, err)
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return NewMalformedTokenError("%s: unexpected continuation token shape %q: %v", operator, token, err)
	}
	return nil
}

func encodeClientToken(tok any) (string, error) {
	b, err := json.Marshal(tok)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// clientCount validates a resumed count from a flat string token. The count
// must be present, integral, non-negative, and no larger than the count the
// current query was configured with.
func clientCount(operator, field string, value *float64, configured int64) (int64, error) {
	if value == nil {
		return 0, NewMalformedTokenError("%s: continuation token is missing %q", operator, field)
	}
	f := *value
	if f != math.Trunc(f) || f < 0 {
		return 0, NewMalformedTokenError("%s: continuation token field %q must be a non-negative integer, got %v", operator, field, f)
	}
	count := int64(f)
	if count > configured {
		return 0, NewMalformedTokenError("%s: resumed count %d exceeds the configured count %d", operator, count, configured)
	}
	return count, nil
}

// tokenObject asserts that a structured token is an object.
func tokenObject(operator string, token elements.Element) (*elements.Object, error) {
	obj, ok := token.(*elements.Object)
	if !ok {
		return nil, NewMalformedTokenError("%s: continuation token must be an object, got %v", operator, token.Kind())
	}
	return obj, nil
}

// tokenMember returns a required member of a structured token.
func tokenMember(operator, field string, obj *elements.Object) (elements.Element, error) {
	value, ok := obj.Get(field)
	if !ok {
		return nil, NewMalformedTokenError("%s: continuation token is missing %q", operator, field)
	}
	return value, nil
}

// tokenCount validates a resumed count member of a structured token against
// the configured count, mirroring clientCount for the element encoding.
func tokenCount(operator, field string, obj *elements.Object, configured int64) (int64, error) {
	value, err := tokenMember(operator, field, obj)
	if err != nil {
		return 0, err
	}
	num, ok := value.(elements.Number)
	if !ok {
		return 0, NewMalformedTokenError("%s: continuation token field %q must be a number, got %v", operator, field, value.Kind())
	}
	count, ok := num.Int64()
	if !ok || count < 0 {
		return 0, NewMalformedTokenError("%s: continuation token field %q must be a non-negative integer, got %v", operator, field, float64(num))
	}
	if count > configured {
		return 0, NewMalformedTokenError("%s: resumed count %d exceeds the configured count %d", operator, count, configured)
	}
	return count, nil
}

// isEmptyToken reports whether a flat string token means "no token". Empty
// and whitespace-only strings are a fresh start, not malformed input.
func isEmptyToken(token string) bool {
	return strings.TrimSpace(token) == ""
}

func sourceTokenString(tok *string) string {
	if tok == nil {
		return ""
	}
	return *tok
}
