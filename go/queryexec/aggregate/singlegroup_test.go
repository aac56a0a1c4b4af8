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

func payloadRow(cells ...elements.Member) elements.Element {
	return elements.NewObject(elements.Member{
		Name:  "payload",
		Value: elements.NewObject(cells...),
	})
}

func itemCell(alias string, item elements.Element) elements.Member {
	cell := elements.NewObject()
	if item != nil {
		cell.Set("item", item)
	}
	return elements.Member{Name: alias, Value: cell}
}

func TestNewSingleGroupAggregator(t *testing.T) {
	t.Run("requires at least one alias", func(t *testing.T) {
		_, err := NewSingleGroupAggregator(nil, false, nil)
		assert.Error(t, err)
	})

	t.Run("value aggregate requires exactly one alias", func(t *testing.T) {
		specs := []AliasSpec{{Alias: "a", Kind: Sum}, {Alias: "b", Kind: Count}}
		_, err := NewSingleGroupAggregator(specs, true, nil)
		assert.Error(t, err)
	})

	t.Run("rejects duplicate and empty aliases", func(t *testing.T) {
		_, err := NewSingleGroupAggregator([]AliasSpec{{Alias: "a", Kind: Sum}, {Alias: "a", Kind: Count}}, false, nil)
		assert.Error(t, err)

		_, err = NewSingleGroupAggregator([]AliasSpec{{Alias: "", Kind: Sum}}, true, nil)
		assert.Error(t, err)
	})

	t.Run("rejects state missing an alias", func(t *testing.T) {
		state := elements.NewObject(elements.Member{Name: "other", Value: elements.Number(0)})
		_, err := NewSingleGroupAggregator([]AliasSpec{{Alias: "a", Kind: Sum}}, false, state)
		assert.Error(t, err)
	})
}

func TestSingleGroupValueAggregate(t *testing.T) {
	agg, err := NewSingleGroupAggregator([]AliasSpec{{Alias: "$1", Kind: Sum}}, true, nil)
	require.NoError(t, err)

	require.NoError(t, agg.AddRow(elements.NewObject(
		elements.Member{Name: "item", Value: elements.Number(4)},
	)))
	require.NoError(t, agg.AddRow(elements.NewObject(
		elements.Member{Name: "item", Value: elements.Number(1)},
	)))

	result, ok := agg.Result()
	require.True(t, ok)
	assert.Equal(t, elements.Number(5), result)

	t.Run("non-object row is an error", func(t *testing.T) {
		assert.Error(t, agg.AddRow(elements.Number(1)))
	})
}

func TestSingleGroupPayloadAggregate(t *testing.T) {
	specs := []AliasSpec{
		{Alias: "lo", Kind: Min},
		{Alias: "hi", Kind: Max},
		{Alias: "n", Kind: Count},
	}
	agg, err := NewSingleGroupAggregator(specs, false, nil)
	require.NoError(t, err)

	require.NoError(t, agg.AddRow(payloadRow(
		itemCell("lo", elements.Number(3)),
		itemCell("hi", elements.Number(3)),
		itemCell("n", elements.Number(2)),
	)))
	require.NoError(t, agg.AddRow(payloadRow(
		itemCell("lo", elements.Number(-2)),
		itemCell("hi", elements.Number(9)),
		itemCell("n", elements.Number(1)),
	)))

	result, ok := agg.Result()
	require.True(t, ok)
	out, err := elements.MarshalString(result)
	require.NoError(t, err)
	assert.Equal(t, `{"lo":-2,"hi":9,"n":3}`, out)

	t.Run("missing payload member is an error", func(t *testing.T) {
		assert.Error(t, agg.AddRow(elements.NewObject()))
	})

	t.Run("missing alias cell is an undefined partial", func(t *testing.T) {
		// MIN/MAX skip undefined partials; COUNT treats them as corruption.
		err := agg.AddRow(payloadRow(
			itemCell("lo", elements.Number(0)),
			itemCell("hi", elements.Number(0)),
		))
		assert.Error(t, err)
	})
}

func TestSingleGroupUndefinedMembersAreSkipped(t *testing.T) {
	specs := []AliasSpec{
		{Alias: "s", Kind: Sum},
		{Alias: "n", Kind: Count},
	}
	agg, err := NewSingleGroupAggregator(specs, false, nil)
	require.NoError(t, err)

	// The sum partial is undefined: its member is omitted from the result.
	require.NoError(t, agg.AddRow(payloadRow(
		itemCell("s", nil),
		itemCell("n", elements.Number(0)),
	)))

	result, ok := agg.Result()
	require.True(t, ok)
	out, err := elements.MarshalString(result)
	require.NoError(t, err)
	assert.Equal(t, `{"n":0}`, out)
}

func TestSingleGroupStateRoundTrip(t *testing.T) {
	specs := []AliasSpec{
		{Alias: "s", Kind: Sum},
		{Alias: "n", Kind: Count},
	}
	agg, err := NewSingleGroupAggregator(specs, false, nil)
	require.NoError(t, err)
	require.NoError(t, agg.AddRow(payloadRow(
		itemCell("s", elements.Number(7)),
		itemCell("n", elements.Number(3)),
	)))

	resumed, err := NewSingleGroupAggregator(specs, false, agg.State())
	require.NoError(t, err)
	require.NoError(t, resumed.AddRow(payloadRow(
		itemCell("s", elements.Number(1)),
		itemCell("n", elements.Number(1)),
	)))

	result, ok := resumed.Result()
	require.True(t, ok)
	out, err := elements.MarshalString(result)
	require.NoError(t, err)
	assert.Equal(t, `{"s":8,"n":4}`, out)
}
