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
	"fmt"

	"github.com/stratodoc/stratodoc/go/elements"
)

// Rewritten projection member names. The query rewriter running on each
// partition wraps every aggregate partial as {"item": <partial>}; a missing
// "item" member means the partial was undefined. Non-value aggregate queries
// additionally nest the per-alias cells under "payload".
const (
	rowFieldItem    = "item"
	rowFieldPayload = "payload"
)

// AliasSpec binds an aggregate alias to its function. The slice order given
// to NewSingleGroupAggregator is the declared alias order of the query and
// fixes the member order of the final result row.
type AliasSpec struct {
	Alias string
	Kind  Kind
}

// SingleGroupAggregator owns one aggregator per aggregate alias for a single
// grouping key. It is created once per query (or rehydrated from the
// aggregation slice of a continuation token), fed every source row, and
// queried for its result exactly once after the source is exhausted.
type SingleGroupAggregator struct {
	specs          []AliasSpec
	aggregators    map[string]Aggregator
	valueAggregate bool
}

// NewSingleGroupAggregator creates an aggregator set for the given aliases.
// valueAggregate marks a bare SELECT VALUE aggregate query, which must have
// exactly one alias and produces a bare value instead of a result object.
// state, when non-nil, is the per-alias accumulator state from a
// continuation token; a state that does not match the alias set is an error,
// which the caller surfaces as a malformed token.
func NewSingleGroupAggregator(specs []AliasSpec, valueAggregate bool, state elements.Element) (*SingleGroupAggregator, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("at least one aggregate alias is required")
	}
	if valueAggregate && len(specs) != 1 {
		return nil, fmt.Errorf("a value aggregate query has exactly one alias, got %d", len(specs))
	}

	var stateObj *elements.Object
	if state != nil {
		obj, ok := state.(*elements.Object)
		if !ok {
			return nil, fmt.Errorf("aggregation state must be an object, got %v", state.Kind())
		}
		stateObj = obj
	}

	aggregators := make(map[string]Aggregator, len(specs))
	for _, spec := range specs {
		if spec.Alias == "" {
			return nil, fmt.Errorf("aggregate alias must not be empty")
		}
		if _, ok := aggregators[spec.Alias]; ok {
			return nil, fmt.Errorf("duplicate aggregate alias %q", spec.Alias)
		}

		var aliasState elements.Element
		if stateObj != nil {
			var ok bool
			aliasState, ok = stateObj.Get(spec.Alias)
			if !ok {
				return nil, fmt.Errorf("aggregation state is missing alias %q", spec.Alias)
			}
		}
		agg, err := New(spec.Kind, aliasState)
		if err != nil {
			return nil, fmt.Errorf("alias %q: %w", spec.Alias, err)
		}
		aggregators[spec.Alias] = agg
	}

	return &SingleGroupAggregator{
		specs:          specs,
		aggregators:    aggregators,
		valueAggregate: valueAggregate,
	}, nil
}

// AddRow feeds one source row's aggregate payload into the aggregators. The
// row shape depends on whether the query is a bare SELECT VALUE aggregate;
// the flag captured at construction decides, never the shape itself.
func (s *SingleGroupAggregator) AddRow(row elements.Element) error {
	obj, ok := row.(*elements.Object)
	if !ok {
		return fmt.Errorf("aggregate row must be an object, got %v", row.Kind())
	}

	if s.valueAggregate {
		item, _ := obj.Get(rowFieldItem)
		return s.aggregators[s.specs[0].Alias].Aggregate(item)
	}

	payloadElem, ok := obj.Get(rowFieldPayload)
	if !ok {
		return fmt.Errorf("aggregate row is missing %q", rowFieldPayload)
	}
	payload, ok := payloadElem.(*elements.Object)
	if !ok {
		return fmt.Errorf("aggregate row %q must be an object, got %v", rowFieldPayload, payloadElem.Kind())
	}

	for _, spec := range s.specs {
		var item elements.Element
		if cellElem, ok := payload.Get(spec.Alias); ok {
			cell, ok := cellElem.(*elements.Object)
			if !ok {
				return fmt.Errorf("aggregate cell %q must be an object, got %v", spec.Alias, cellElem.Kind())
			}
			item, _ = cell.Get(rowFieldItem)
		}
		if err := s.aggregators[spec.Alias].Aggregate(item); err != nil {
			return fmt.Errorf("alias %q: %w", spec.Alias, err)
		}
	}
	return nil
}

// Result computes the final result row. For a value aggregate query the row
// is the bare aggregate value and ok is false when that value is undefined
// (the final page then has zero elements). Otherwise the row is an object
// with one member per alias in declared order, skipping undefined values.
func (s *SingleGroupAggregator) Result() (elements.Element, bool) {
	if s.valueAggregate {
		return s.aggregators[s.specs[0].Alias].Result()
	}

	row := elements.NewObject()
	for _, spec := range s.specs {
		if value, ok := s.aggregators[spec.Alias].Result(); ok {
			row.Set(spec.Alias, value)
		}
	}
	return row, true
}

// State captures every aggregator's accumulator for a continuation token,
// keyed by alias.
func (s *SingleGroupAggregator) State() elements.Element {
	state := elements.NewObject()
	for _, spec := range s.specs {
		state.Set(spec.Alias, s.aggregators[spec.Alias].State())
	}
	return state
}
