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

package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratodoc/stratodoc/go/elements"
)

func avgInfo(sum float64, count int64) elements.Element {
	return elements.NewObject(
		elements.Member{Name: "sum", Value: elements.Number(sum)},
		elements.Member{Name: "count", Value: elements.Number(count)},
	)
}

func TestParseKind(t *testing.T) {
	for name, kind := range map[string]Kind{
		"SUM": Sum, "sum": Sum, "Count": Count, "MIN": Min, "max": Max, "AVG": Average, "AVERAGE": Average,
	} {
		got, err := ParseKind(name)
		require.NoError(t, err, name)
		assert.Equal(t, kind, got, name)
	}

	_, err := ParseKind("MEDIAN")
	assert.Error(t, err)
}

func TestSumAggregator(t *testing.T) {
	t.Run("merges partial sums", func(t *testing.T) {
		a, err := New(Sum, nil)
		require.NoError(t, err)
		require.NoError(t, a.Aggregate(elements.Number(1)))
		require.NoError(t, a.Aggregate(elements.Number(2.5)))

		result, ok := a.Result()
		require.True(t, ok)
		assert.Equal(t, elements.Number(3.5), result)
	})

	t.Run("undefined partial poisons the sum", func(t *testing.T) {
		a, err := New(Sum, nil)
		require.NoError(t, err)
		require.NoError(t, a.Aggregate(elements.Number(1)))
		require.NoError(t, a.Aggregate(nil))
		require.NoError(t, a.Aggregate(elements.Number(2)))

		_, ok := a.Result()
		assert.False(t, ok)
		assert.Equal(t, elements.Null{}, a.State())
	})

	t.Run("undefined state round trips", func(t *testing.T) {
		a, err := New(Sum, elements.Null{})
		require.NoError(t, err)
		_, ok := a.Result()
		assert.False(t, ok)
	})

	t.Run("non-numeric partial is an error", func(t *testing.T) {
		a, err := New(Sum, nil)
		require.NoError(t, err)
		assert.Error(t, a.Aggregate(elements.String("1")))
	})
}

func TestCountAggregator(t *testing.T) {
	t.Run("sums partial counts", func(t *testing.T) {
		a, err := New(Count, nil)
		require.NoError(t, err)
		require.NoError(t, a.Aggregate(elements.Number(4)))
		require.NoError(t, a.Aggregate(elements.Number(2)))

		result, ok := a.Result()
		require.True(t, ok)
		assert.Equal(t, elements.Number(6), result)
	})

	t.Run("count over nothing is zero, not undefined", func(t *testing.T) {
		a, err := New(Count, nil)
		require.NoError(t, err)
		result, ok := a.Result()
		require.True(t, ok)
		assert.Equal(t, elements.Number(0), result)
	})

	t.Run("rejects bad partials and state", func(t *testing.T) {
		a, err := New(Count, nil)
		require.NoError(t, err)
		assert.Error(t, a.Aggregate(nil))
		assert.Error(t, a.Aggregate(elements.Number(1.5)))
		assert.Error(t, a.Aggregate(elements.Number(-1)))

		_, err = New(Count, elements.String("3"))
		assert.Error(t, err)
	})
}

func TestMinMaxAggregator(t *testing.T) {
	t.Run("min and max over mixed numbers", func(t *testing.T) {
		minAgg, err := New(Min, nil)
		require.NoError(t, err)
		maxAgg, err := New(Max, nil)
		require.NoError(t, err)
		for _, v := range []float64{3, -1, 7, 2} {
			require.NoError(t, minAgg.Aggregate(elements.Number(v)))
			require.NoError(t, maxAgg.Aggregate(elements.Number(v)))
		}

		result, ok := minAgg.Result()
		require.True(t, ok)
		assert.Equal(t, elements.Number(-1), result)

		result, ok = maxAgg.Result()
		require.True(t, ok)
		assert.Equal(t, elements.Number(7), result)
	})

	t.Run("cross-type ordering is null < bool < number < string", func(t *testing.T) {
		a, err := New(Min, nil)
		require.NoError(t, err)
		require.NoError(t, a.Aggregate(elements.String("z")))
		require.NoError(t, a.Aggregate(elements.Number(0)))
		require.NoError(t, a.Aggregate(elements.Bool(false)))
		require.NoError(t, a.Aggregate(elements.Null{}))

		result, ok := a.Result()
		require.True(t, ok)
		assert.Equal(t, elements.Null{}, result)
	})

	t.Run("no candidates means undefined", func(t *testing.T) {
		a, err := New(Min, nil)
		require.NoError(t, err)
		require.NoError(t, a.Aggregate(nil))
		_, ok := a.Result()
		assert.False(t, ok)
	})

	t.Run("non-comparable candidate makes the result undefined", func(t *testing.T) {
		a, err := New(Max, nil)
		require.NoError(t, err)
		require.NoError(t, a.Aggregate(elements.Number(1)))
		require.NoError(t, a.Aggregate(elements.Array{}))
		_, ok := a.Result()
		assert.False(t, ok)
	})

	t.Run("state round trips", func(t *testing.T) {
		a, err := New(Max, nil)
		require.NoError(t, err)
		require.NoError(t, a.Aggregate(elements.String("m")))

		b, err := New(Max, a.State())
		require.NoError(t, err)
		require.NoError(t, b.Aggregate(elements.String("z")))

		result, ok := b.Result()
		require.True(t, ok)
		assert.Equal(t, elements.String("z"), result)
	})
}

func TestAverageAggregator(t *testing.T) {
	t.Run("merges sum and count pairs", func(t *testing.T) {
		a, err := New(Average, nil)
		require.NoError(t, err)
		require.NoError(t, a.Aggregate(avgInfo(10, 4)))
		require.NoError(t, a.Aggregate(avgInfo(2, 2)))

		result, ok := a.Result()
		require.True(t, ok)
		assert.Equal(t, elements.Number(2), result)
	})

	t.Run("empty partitions may omit sum", func(t *testing.T) {
		a, err := New(Average, nil)
		require.NoError(t, err)
		require.NoError(t, a.Aggregate(elements.NewObject(
			elements.Member{Name: "count", Value: elements.Number(0)},
		)))
		_, ok := a.Result()
		assert.False(t, ok)
	})

	t.Run("state round trips", func(t *testing.T) {
		a, err := New(Average, nil)
		require.NoError(t, err)
		require.NoError(t, a.Aggregate(avgInfo(6, 2)))

		b, err := New(Average, a.State())
		require.NoError(t, err)
		require.NoError(t, b.Aggregate(avgInfo(0, 1)))

		result, ok := b.Result()
		require.True(t, ok)
		assert.Equal(t, elements.Number(2), result)
	})

	t.Run("rejects malformed partials", func(t *testing.T) {
		a, err := New(Average, nil)
		require.NoError(t, err)
		assert.Error(t, a.Aggregate(nil))
		assert.Error(t, a.Aggregate(elements.Number(2)))
		assert.Error(t, a.Aggregate(elements.NewObject(
			elements.Member{Name: "sum", Value: elements.Number(1)},
		)))
	})
}
