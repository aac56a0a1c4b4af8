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

package elements

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
)

// Marshal serializes an element to JSON. Object members are written in
// insertion order. Integral numbers are written without a fraction so that
// counts round-trip through integer-expecting readers.
func Marshal(e Element) ([]byte, error) {
	return appendJSON(nil, e)
}

// MarshalString is Marshal returning a string.
func MarshalString(e Element) (string, error) {
	b, err := Marshal(e)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func appendJSON(dst []byte, e Element) ([]byte, error) {
	if e == nil {
		return nil, fmt.Errorf("cannot marshal nil element")
	}
	switch v := e.(type) {
	case Null:
		return append(dst, "null"...), nil
	case Bool:
		return strconv.AppendBool(dst, bool(v)), nil
	case Number:
		f := float64(v)
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, fmt.Errorf("cannot marshal non-finite number")
		}
		if i, ok := v.Int64(); ok {
			return strconv.AppendInt(dst, i, 10), nil
		}
		return strconv.AppendFloat(dst, f, 'g', -1, 64), nil
	case String:
		quoted, err := json.Marshal(string(v))
		if err != nil {
			return nil, err
		}
		return append(dst, quoted...), nil
	case Array:
		dst = append(dst, '[')
		for i, item := range v {
			if i > 0 {
				dst = append(dst, ',')
			}
			var err error
			dst, err = appendJSON(dst, item)
			if err != nil {
				return nil, err
			}
		}
		return append(dst, ']'), nil
	case *Object:
		dst = append(dst, '{')
		for i, m := range v.members {
			if i > 0 {
				dst = append(dst, ',')
			}
			name, err := json.Marshal(m.Name)
			if err != nil {
				return nil, err
			}
			dst = append(dst, name...)
			dst = append(dst, ':')
			dst, err = appendJSON(dst, m.Value)
			if err != nil {
				return nil, err
			}
		}
		return append(dst, '}'), nil
	}
	return nil, fmt.Errorf("unknown element kind %v", e.Kind())
}

// Parse decodes a single JSON document into an element tree.
func Parse(data []byte) (Element, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	elem, err := parseValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("trailing data after JSON document")
	}
	return elem, nil
}

// ParseString is Parse over a string.
func ParseString(s string) (Element, error) {
	return Parse([]byte(s))
}

func parseValue(dec *json.Decoder) (Element, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return fromToken(dec, tok)
}

func fromToken(dec *json.Decoder, tok json.Token) (Element, error) {
	switch t := tok.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		f, err := strconv.ParseFloat(t.String(), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", t.String(), err)
		}
		return Number(f), nil
	case json.Delim:
		switch t {
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, fmt.Errorf("invalid JSON object: %w", err)
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("invalid JSON object key %v", keyTok)
				}
				value, err := parseValue(dec)
				if err != nil {
					return nil, err
				}
				obj.Set(key, value)
			}
			// Consume the closing brace.
			if _, err := dec.Token(); err != nil {
				return nil, fmt.Errorf("unterminated JSON object: %w", err)
			}
			return obj, nil
		case '[':
			var arr Array
			for dec.More() {
				value, err := parseValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, value)
			}
			if _, err := dec.Token(); err != nil {
				return nil, fmt.Errorf("unterminated JSON array: %w", err)
			}
			if arr == nil {
				arr = Array{}
			}
			return arr, nil
		}
	}
	return nil, fmt.Errorf("unexpected JSON token %v", tok)
}
