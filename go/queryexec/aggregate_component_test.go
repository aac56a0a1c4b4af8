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

package queryexec_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratodoc/stratodoc/go/elements"
	"github.com/stratodoc/stratodoc/go/queryexec"
	"github.com/stratodoc/stratodoc/go/queryexec/aggregate"
	"github.com/stratodoc/stratodoc/go/queryexec/fakesource"
)

// valueRow builds the rewritten projection shape for a bare SELECT VALUE
// aggregate partial.
func valueRow(partial elements.Element) elements.Element {
	if partial == nil {
		return elements.NewObject()
	}
	return elements.NewObject(elements.Member{Name: "item", Value: partial})
}

// sumPages is SUM partials [1,2] then [3] then done.
func sumPages() [][]elements.Element {
	return [][]elements.Element{
		{valueRow(elements.Number(1)), valueRow(elements.Number(2))},
		{valueRow(elements.Number(3))},
	}
}

func sumSpecs() []aggregate.AliasSpec {
	return []aggregate.AliasSpec{{Alias: "$1", Kind: aggregate.Sum}}
}

func TestAggregateTwoStageDrain(t *testing.T) {
	ctx := context.Background()

	t.Run("emits empty pages then a single final page", func(t *testing.T) {
		factory := fakesource.Factory(sumPages(), fakesource.WithChargePerPage(2.5))
		agg, err := queryexec.NewComputeAggregate(ctx, sumSpecs(), true, nil, factory)
		require.NoError(t, err)

		// Stage 1: two source pages, both surfaced as empty pages that still
		// carry the source's cost and progress.
		page, err := agg.Drain(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, page.Elements)
		assert.Equal(t, 2.5, page.RequestCharge)
		assert.NotEmpty(t, page.ContinuationToken)
		assert.NotEmpty(t, page.ActivityID)
		assert.False(t, agg.IsDone())

		page, err = agg.Drain(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, page.Elements)
		assert.False(t, agg.IsDone())

		// Stage 2: the terminal page.
		page, err = agg.Drain(ctx, 10)
		require.NoError(t, err)
		require.Len(t, page.Elements, 1)
		assert.Equal(t, elements.Number(6), page.Elements[0])
		assert.Zero(t, page.RequestCharge)
		assert.Empty(t, page.ContinuationToken)
		assert.True(t, agg.IsDone())
	})

	t.Run("undefined aggregate yields an empty final page", func(t *testing.T) {
		pages := [][]elements.Element{{valueRow(nil)}}
		agg, err := queryexec.NewComputeAggregate(ctx, sumSpecs(), true, nil, fakesource.Factory(pages))
		require.NoError(t, err)

		page, err := agg.Drain(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, page.Elements)

		page, err = agg.Drain(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, page.Elements)
		assert.True(t, agg.IsDone())
	})

	t.Run("non-value query produces an aliased result row", func(t *testing.T) {
		row := func(total, cnt elements.Element) elements.Element {
			return elements.NewObject(elements.Member{
				Name: "payload",
				Value: elements.NewObject(
					elements.Member{Name: "total", Value: elements.NewObject(elements.Member{Name: "item", Value: total})},
					elements.Member{Name: "cnt", Value: elements.NewObject(elements.Member{Name: "item", Value: cnt})},
				),
			})
		}
		pages := [][]elements.Element{
			{row(elements.Number(10), elements.Number(4))},
			{row(elements.Number(5), elements.Number(2))},
		}
		specs := []aggregate.AliasSpec{
			{Alias: "total", Kind: aggregate.Sum},
			{Alias: "cnt", Kind: aggregate.Count},
		}
		agg, err := queryexec.NewComputeAggregate(ctx, specs, false, nil, fakesource.Factory(pages))
		require.NoError(t, err)

		for !agg.IsDone() {
			_, err := agg.Drain(ctx, 10)
			require.NoError(t, err)
		}

		// Drain again after done stays empty.
		page, err := agg.Drain(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, page.Elements)
	})

	t.Run("final row carries aliases in declared order", func(t *testing.T) {
		row := elements.NewObject(elements.Member{
			Name: "payload",
			Value: elements.NewObject(
				elements.Member{Name: "b", Value: elements.NewObject(elements.Member{Name: "item", Value: elements.Number(1)})},
				elements.Member{Name: "a", Value: elements.NewObject(elements.Member{Name: "item", Value: elements.Number(2)})},
			),
		})
		specs := []aggregate.AliasSpec{
			{Alias: "a", Kind: aggregate.Sum},
			{Alias: "b", Kind: aggregate.Sum},
		}
		agg, err := queryexec.NewComputeAggregate(ctx, specs, false, nil,
			fakesource.Factory([][]elements.Element{{row}}))
		require.NoError(t, err)

		_, err = agg.Drain(ctx, 10)
		require.NoError(t, err)
		page, err := agg.Drain(ctx, 10)
		require.NoError(t, err)
		require.Len(t, page.Elements, 1)

		out, err := elements.MarshalString(page.Elements[0])
		require.NoError(t, err)
		assert.Equal(t, `{"a":2,"b":1}`, out)
	})
}

func TestAggregateResume(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip mid-stage-1", func(t *testing.T) {
		agg, err := queryexec.NewComputeAggregate(ctx, sumSpecs(), true, nil, fakesource.Factory(sumPages()))
		require.NoError(t, err)

		_, err = agg.Drain(ctx, 10)
		require.NoError(t, err)

		state, err := agg.SerializeState()
		require.NoError(t, err)
		expected := elements.NewObject(
			elements.Member{Name: "AggregationToken", Value: elements.NewObject(
				elements.Member{Name: "$1", Value: elements.Number(3)},
			)},
			elements.Member{Name: "SourceToken", Value: sourceState(t, 1, 0)},
		)
		assert.True(t, elements.Equal(expected, state))

		resumed, err := queryexec.NewComputeAggregate(ctx, sumSpecs(), true, state, fakesource.Factory(sumPages()))
		require.NoError(t, err)

		_, err = resumed.Drain(ctx, 10)
		require.NoError(t, err)
		page, err := resumed.Drain(ctx, 10)
		require.NoError(t, err)
		require.Len(t, page.Elements, 1)
		assert.Equal(t, elements.Number(6), page.Elements[0])
	})

	t.Run("rejects aggregation state missing an alias", func(t *testing.T) {
		token := elements.NewObject(
			elements.Member{Name: "AggregationToken", Value: elements.NewObject(
				elements.Member{Name: "other", Value: elements.Number(1)},
			)},
			elements.Member{Name: "SourceToken", Value: sourceState(t, 0, 0)},
		)
		_, err := queryexec.NewComputeAggregate(ctx, sumSpecs(), true, token, fakesource.Factory(sumPages()))
		assert.True(t, queryexec.IsMalformedToken(err))
	})

	t.Run("rejects tokens missing members", func(t *testing.T) {
		token := elements.NewObject(
			elements.Member{Name: "SourceToken", Value: sourceState(t, 0, 0)},
		)
		_, err := queryexec.NewComputeAggregate(ctx, sumSpecs(), true, token, fakesource.Factory(sumPages()))
		assert.True(t, queryexec.IsMalformedToken(err))
	})
}

func TestAggregatePropagation(t *testing.T) {
	ctx := context.Background()

	t.Run("failed source page passes through with diagnostics", func(t *testing.T) {
		failure := &queryexec.Failure{Kind: "ServiceUnavailable", Message: "partition moved"}
		factory := fakesource.Factory(sumPages(),
			fakesource.WithFailure(1, failure),
			fakesource.WithDiagnostics("trace-blob"))
		agg, err := queryexec.NewComputeAggregate(ctx, sumSpecs(), true, nil, factory)
		require.NoError(t, err)

		page, err := agg.Drain(ctx, 10)
		require.NoError(t, err)
		require.True(t, page.Succeeded())
		assert.Equal(t, "trace-blob", page.Diagnostics)

		page, err = agg.Drain(ctx, 10)
		require.NoError(t, err)
		require.False(t, page.Succeeded())
		assert.Equal(t, failure, page.Failure)
		assert.False(t, agg.IsDone())
	})

	t.Run("cancellation aborts without committing aggregation", func(t *testing.T) {
		agg, err := queryexec.NewComputeAggregate(ctx, sumSpecs(), true, nil, fakesource.Factory(sumPages()))
		require.NoError(t, err)

		canceled, cancel := context.WithCancel(ctx)
		cancel()
		_, err = agg.Drain(canceled, 10)
		assert.ErrorIs(t, err, context.Canceled)

		state, err := agg.SerializeState()
		require.NoError(t, err)
		expected := elements.NewObject(
			elements.Member{Name: "AggregationToken", Value: elements.NewObject(
				elements.Member{Name: "$1", Value: elements.Number(0)},
			)},
			elements.Member{Name: "SourceToken", Value: sourceState(t, 0, 0)},
		)
		assert.True(t, elements.Equal(expected, state))
	})
}
