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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberInt64(t *testing.T) {
	t.Run("integral values convert", func(t *testing.T) {
		i, ok := Number(42).Int64()
		require.True(t, ok)
		assert.Equal(t, int64(42), i)

		i, ok = Number(-7).Int64()
		require.True(t, ok)
		assert.Equal(t, int64(-7), i)

		i, ok = Number(0).Int64()
		require.True(t, ok)
		assert.Equal(t, int64(0), i)
	})

	t.Run("fractional values do not convert", func(t *testing.T) {
		_, ok := Number(1.5).Int64()
		assert.False(t, ok)
	})
}

func TestObjectOrderAndLookup(t *testing.T) {
	obj := NewObject(
		Member{Name: "b", Value: Number(2)},
		Member{Name: "a", Value: Number(1)},
	)

	t.Run("lookup by name", func(t *testing.T) {
		v, ok := obj.Get("a")
		require.True(t, ok)
		assert.Equal(t, Number(1), v)

		_, ok = obj.Get("missing")
		assert.False(t, ok)
	})

	t.Run("insertion order preserved in serialization", func(t *testing.T) {
		s, err := MarshalString(obj)
		require.NoError(t, err)
		assert.Equal(t, `{"b":2,"a":1}`, s)
	})

	t.Run("set replaces existing member in place", func(t *testing.T) {
		obj.Set("b", Number(20))
		s, err := MarshalString(obj)
		require.NoError(t, err)
		assert.Equal(t, `{"b":20,"a":1}`, s)
	})
}

func TestEqual(t *testing.T) {
	t.Run("object member order is irrelevant", func(t *testing.T) {
		a := NewObject(
			Member{Name: "x", Value: Number(1)},
			Member{Name: "y", Value: String("s")},
		)
		b := NewObject(
			Member{Name: "y", Value: String("s")},
			Member{Name: "x", Value: Number(1)},
		)
		assert.True(t, Equal(a, b))
	})

	t.Run("array order matters", func(t *testing.T) {
		assert.False(t, Equal(Array{Number(1), Number(2)}, Array{Number(2), Number(1)}))
	})

	t.Run("kind mismatch", func(t *testing.T) {
		assert.False(t, Equal(Number(1), String("1")))
		assert.False(t, Equal(Null{}, Bool(false)))
	})

	t.Run("nil handling", func(t *testing.T) {
		assert.True(t, Equal(nil, nil))
		assert.False(t, Equal(nil, Null{}))
	})
}

func TestJSONRoundTrip(t *testing.T) {
	inputs := []string{
		`null`,
		`true`,
		`42`,
		`-1.5`,
		`"hello \"world\""`,
		`[]`,
		`[1,"two",null,[3]]`,
		`{"SkipCount":2,"SourceToken":{"range":"0-1","index":5}}`,
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			elem, err := ParseString(input)
			require.NoError(t, err)
			out, err := MarshalString(elem)
			require.NoError(t, err)
			assert.Equal(t, input, out)
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{
		``,
		`{`,
		`[1,`,
		`{"a":}`,
		`1 2`,
		`tru`,
	} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseString(input)
			assert.Error(t, err)
		})
	}
}

func TestMarshalIntegralNumbers(t *testing.T) {
	// Counts must serialize without a fraction.
	s, err := MarshalString(Number(100))
	require.NoError(t, err)
	assert.Equal(t, "100", s)
}
