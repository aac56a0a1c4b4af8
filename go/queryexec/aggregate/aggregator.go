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

// Package aggregate implements the per-alias aggregators and the
// single-group aggregator used by the aggregate pipeline operator. Each
// aggregator merges per-partition partial results: a partition's SUM arrives
// as a number, an AVG as a {"sum", "count"} pair, and so on. A nil partial
// means the partition's value was undefined (for example SUM over an empty
// partition).
package aggregate

import (
	"fmt"
	"strings"

	"github.com/stratodoc/stratodoc/go/elements"
)

// Kind identifies an aggregate function.
type Kind int

const (
	Sum = Kind(iota)
	Count
	Min
	Max
	Average
)

// String returns the canonical (upper-case) function name.
func (k Kind) String() string {
	switch k {
	case Sum:
		return "SUM"
	case Count:
		return "COUNT"
	case Min:
		return "MIN"
	case Max:
		return "MAX"
	case Average:
		return "AVG"
	}
	return "<unknown>"
}

// ParseKind parses an aggregate function name, case-insensitively.
func ParseKind(name string) (Kind, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "SUM":
		return Sum, nil
	case "COUNT":
		return Count, nil
	case "MIN":
		return Min, nil
	case "MAX":
		return Max, nil
	case "AVG", "AVERAGE":
		return Average, nil
	}
	return 0, fmt.Errorf("unknown aggregate function %q", name)
}

// Aggregator accumulates per-partition partial results for one aggregate
// alias. Implementations are not safe for concurrent use; the enclosing
// aggregate component owns them exclusively.
type Aggregator interface {
	// Aggregate merges one partial result. nil means the partial was
	// undefined. A partial of the wrong shape is a data corruption error.
	Aggregate(partial elements.Element) error

	// Result returns the final value. ok is false when the aggregate is
	// undefined (for example SUM or MIN over an empty set), in which case no
	// result row member is produced.
	Result() (result elements.Element, ok bool)

	// State captures the accumulator for a continuation token.
	State() elements.Element
}

// New creates an aggregator of the given kind, rehydrating it from state if
// state is non-nil. An unusable state is an error; the caller surfaces it as
// a malformed continuation token.
func New(kind Kind, state elements.Element) (Aggregator, error) {
	switch kind {
	case Sum:
		return newSumAggregator(state)
	case Count:
		return newCountAggregator(state)
	case Min:
		return newMinMaxAggregator(false, state)
	case Max:
		return newMinMaxAggregator(true, state)
	case Average:
		return newAverageAggregator(state)
	}
	return nil, fmt.Errorf("unknown aggregate kind %d", kind)
}
