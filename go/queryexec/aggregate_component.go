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
	"context"

	"github.com/stratodoc/stratodoc/go/elements"
	"github.com/stratodoc/stratodoc/go/queryexec/aggregate"
)

const opAggregate = "aggregate"

// computeAggregate is the aggregate operator. It drains in two stages:
// while the source has pages it consumes them whole and returns empty pages
// that still surface the source's charge, activity, diagnostics and
// continuation marker (partial aggregates are never exposed mid-flight);
// once the source is done it computes the aggregate exactly once and emits
// the terminal page with zero charge and no continuation.
type computeAggregate struct {
	source       Component
	agg          *aggregate.SingleGroupAggregator
	emittedFinal bool
}

// NewComputeAggregate creates an aggregate operator for the given alias
// specs. token is a structured {"AggregationToken", "SourceToken"} element,
// or nil for a fresh query. Which stage a resumed operator re-enters is
// fully determined by its own and its source's IsDone.
func NewComputeAggregate(
	ctx context.Context,
	specs []aggregate.AliasSpec,
	isValueAggregate bool,
	token elements.Element,
	factory SourceFactory,
) (Component, error) {
	var aggState elements.Element
	var sourceToken elements.Element
	if token != nil {
		obj, err := tokenObject(opAggregate, token)
		if err != nil {
			return nil, err
		}
		aggState, err = tokenMember(opAggregate, fieldAggregationToken, obj)
		if err != nil {
			return nil, err
		}
		sourceToken, err = tokenMember(opAggregate, fieldSourceToken, obj)
		if err != nil {
			return nil, err
		}
	}

	agg, err := aggregate.NewSingleGroupAggregator(specs, isValueAggregate, aggState)
	if err != nil {
		if aggState != nil {
			return nil, NewMalformedTokenError("%s: %v", opAggregate, err)
		}
		return nil, err
	}

	source, err := factory(ctx, sourceToken)
	if err != nil {
		return nil, err
	}
	return &computeAggregate{source: source, agg: agg}, nil
}

func (c *computeAggregate) Drain(ctx context.Context, maxItems int) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !c.source.IsDone() {
		page, err := c.source.Drain(ctx, UnlimitedItemCount)
		if err != nil {
			return nil, err
		}
		if !page.Succeeded() {
			return page, nil
		}
		for _, row := range page.Elements {
			if err := c.agg.AddRow(row); err != nil {
				return nil, err
			}
		}

		out := *page
		out.Elements = nil
		return &out, nil
	}

	if c.emittedFinal {
		return &Page{}, nil
	}
	c.emittedFinal = true

	page := &Page{}
	if result, ok := c.agg.Result(); ok {
		page.Elements = []elements.Element{result}
	}
	return page, nil
}

func (c *computeAggregate) SerializeState() (elements.Element, error) {
	sourceToken, err := c.source.SerializeState()
	if err != nil {
		return nil, err
	}
	return elements.NewObject(
		elements.Member{Name: fieldAggregationToken, Value: c.agg.State()},
		elements.Member{Name: fieldSourceToken, Value: sourceToken},
	), nil
}

func (c *computeAggregate) IsDone() bool {
	return c.source.IsDone() && c.emittedFinal
}
