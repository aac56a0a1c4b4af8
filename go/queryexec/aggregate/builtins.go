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

// sumAggregator merges partial sums. Once any partition reports an undefined
// sum the global sum is permanently undefined.
type sumAggregator struct {
	sum       float64
	undefined bool
}

func newSumAggregator(state elements.Element) (*sumAggregator, error) {
	a := &sumAggregator{}
	if state == nil {
		return a, nil
	}
	switch v := state.(type) {
	case elements.Null:
		a.undefined = true
	case elements.Number:
		a.sum = float64(v)
	default:
		return nil, fmt.Errorf("SUM state must be a number or null, got %v", state.Kind())
	}
	return a, nil
}

func (a *sumAggregator) Aggregate(partial elements.Element) error {
	if a.undefined {
		return nil
	}
	if partial == nil {
		a.undefined = true
		return nil
	}
	num, ok := partial.(elements.Number)
	if !ok {
		return fmt.Errorf("SUM partial must be a number, got %v", partial.Kind())
	}
	a.sum += float64(num)
	return nil
}

func (a *sumAggregator) Result() (elements.Element, bool) {
	if a.undefined {
		return nil, false
	}
	return elements.Number(a.sum), true
}

func (a *sumAggregator) State() elements.Element {
	if a.undefined {
		return elements.Null{}
	}
	return elements.Number(a.sum)
}

// countAggregator merges partial counts. COUNT is always defined; over an
// empty set it is zero.
type countAggregator struct {
	count int64
}

func newCountAggregator(state elements.Element) (*countAggregator, error) {
	a := &countAggregator{}
	if state == nil {
		return a, nil
	}
	num, ok := state.(elements.Number)
	if !ok {
		return nil, fmt.Errorf("COUNT state must be a number, got %v", state.Kind())
	}
	count, ok := num.Int64()
	if !ok || count < 0 {
		return nil, fmt.Errorf("COUNT state must be a non-negative integer, got %v", float64(num))
	}
	a.count = count
	return a, nil
}

func (a *countAggregator) Aggregate(partial elements.Element) error {
	if partial == nil {
		return fmt.Errorf("COUNT partial is missing")
	}
	num, ok := partial.(elements.Number)
	if !ok {
		return fmt.Errorf("COUNT partial must be a number, got %v", partial.Kind())
	}
	count, ok := num.Int64()
	if !ok || count < 0 {
		return fmt.Errorf("COUNT partial must be a non-negative integer, got %v", float64(num))
	}
	a.count += count
	return nil
}

func (a *countAggregator) Result() (elements.Element, bool) {
	return elements.Number(a.count), true
}

func (a *countAggregator) State() elements.Element {
	return elements.Number(a.count)
}

// minMaxAggregator tracks the extreme candidate seen so far. Candidates of
// non-comparable kinds (arrays, objects) make the result undefined, matching
// the server's ordering rules.
type minMaxAggregator struct {
	max       bool
	seen      bool
	undefined bool
	best      elements.Element
}

const (
	minMaxFieldSeen      = "seen"
	minMaxFieldUndefined = "undefined"
	minMaxFieldValue     = "value"
)

func newMinMaxAggregator(max bool, state elements.Element) (*minMaxAggregator, error) {
	a := &minMaxAggregator{max: max}
	if state == nil {
		return a, nil
	}
	obj, ok := state.(*elements.Object)
	if !ok {
		return nil, fmt.Errorf("MIN/MAX state must be an object, got %v", state.Kind())
	}
	seen, ok := obj.Get(minMaxFieldSeen)
	if !ok {
		return nil, fmt.Errorf("MIN/MAX state is missing %q", minMaxFieldSeen)
	}
	seenBool, ok := seen.(elements.Bool)
	if !ok {
		return nil, fmt.Errorf("MIN/MAX state field %q must be a bool", minMaxFieldSeen)
	}
	a.seen = bool(seenBool)

	undefined, ok := obj.Get(minMaxFieldUndefined)
	if !ok {
		return nil, fmt.Errorf("MIN/MAX state is missing %q", minMaxFieldUndefined)
	}
	undefinedBool, ok := undefined.(elements.Bool)
	if !ok {
		return nil, fmt.Errorf("MIN/MAX state field %q must be a bool", minMaxFieldUndefined)
	}
	a.undefined = bool(undefinedBool)

	if a.seen && !a.undefined {
		value, ok := obj.Get(minMaxFieldValue)
		if !ok {
			return nil, fmt.Errorf("MIN/MAX state is missing %q", minMaxFieldValue)
		}
		if !isComparable(value) {
			return nil, fmt.Errorf("MIN/MAX state field %q has non-comparable kind %v", minMaxFieldValue, value.Kind())
		}
		a.best = value
	}
	return a, nil
}

func (a *minMaxAggregator) Aggregate(partial elements.Element) error {
	if a.undefined {
		return nil
	}
	if partial == nil {
		// An empty partition contributes no candidate.
		return nil
	}
	if !isComparable(partial) {
		a.undefined = true
		return nil
	}
	if !a.seen {
		a.seen = true
		a.best = partial
		return nil
	}
	cmp := compare(partial, a.best)
	if (a.max && cmp > 0) || (!a.max && cmp < 0) {
		a.best = partial
	}
	return nil
}

func (a *minMaxAggregator) Result() (elements.Element, bool) {
	if !a.seen || a.undefined {
		return nil, false
	}
	return a.best, true
}

func (a *minMaxAggregator) State() elements.Element {
	value := elements.Element(elements.Null{})
	if a.seen && !a.undefined {
		value = a.best
	}
	return elements.NewObject(
		elements.Member{Name: minMaxFieldSeen, Value: elements.Bool(a.seen)},
		elements.Member{Name: minMaxFieldUndefined, Value: elements.Bool(a.undefined)},
		elements.Member{Name: minMaxFieldValue, Value: value},
	)
}

// isComparable reports whether MIN/MAX can order a candidate.
func isComparable(e elements.Element) bool {
	switch e.Kind() {
	case elements.KindNull, elements.KindBool, elements.KindNumber, elements.KindString:
		return true
	}
	return false
}

// compare orders two comparable candidates. Kinds order as
// null < bool < number < string, matching the server's type ordering.
func compare(a, b elements.Element) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		return ra - rb
	}
	switch av := a.(type) {
	case elements.Null:
		return 0
	case elements.Bool:
		bv := b.(elements.Bool)
		switch {
		case av == bv:
			return 0
		case bool(bv):
			return -1
		default:
			return 1
		}
	case elements.Number:
		bv := b.(elements.Number)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	case elements.String:
		bv := b.(elements.String)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	}
	return 0
}

func typeRank(e elements.Element) int {
	switch e.Kind() {
	case elements.KindNull:
		return 0
	case elements.KindBool:
		return 1
	case elements.KindNumber:
		return 2
	case elements.KindString:
		return 3
	}
	return 4
}

// averageAggregator merges {"sum", "count"} partials. A partition with no
// defined values sends count 0 and omits sum.
type averageAggregator struct {
	sum   float64
	count int64
}

const (
	averageFieldSum   = "sum"
	averageFieldCount = "count"
)

func newAverageAggregator(state elements.Element) (*averageAggregator, error) {
	a := &averageAggregator{}
	if state == nil {
		return a, nil
	}
	sum, count, err := parseAverageInfo(state)
	if err != nil {
		return nil, fmt.Errorf("AVG state: %w", err)
	}
	a.sum = sum
	a.count = count
	return a, nil
}

func (a *averageAggregator) Aggregate(partial elements.Element) error {
	if partial == nil {
		return fmt.Errorf("AVG partial is missing")
	}
	sum, count, err := parseAverageInfo(partial)
	if err != nil {
		return fmt.Errorf("AVG partial: %w", err)
	}
	a.sum += sum
	a.count += count
	return nil
}

func (a *averageAggregator) Result() (elements.Element, bool) {
	if a.count == 0 {
		return nil, false
	}
	return elements.Number(a.sum / float64(a.count)), true
}

func (a *averageAggregator) State() elements.Element {
	return elements.NewObject(
		elements.Member{Name: averageFieldSum, Value: elements.Number(a.sum)},
		elements.Member{Name: averageFieldCount, Value: elements.Number(a.count)},
	)
}

func parseAverageInfo(e elements.Element) (float64, int64, error) {
	obj, ok := e.(*elements.Object)
	if !ok {
		return 0, 0, fmt.Errorf("must be an object, got %v", e.Kind())
	}

	var sum float64
	if sumElem, ok := obj.Get(averageFieldSum); ok {
		num, ok := sumElem.(elements.Number)
		if !ok {
			return 0, 0, fmt.Errorf("field %q must be a number, got %v", averageFieldSum, sumElem.Kind())
		}
		sum = float64(num)
	}

	countElem, ok := obj.Get(averageFieldCount)
	if !ok {
		return 0, 0, fmt.Errorf("missing field %q", averageFieldCount)
	}
	num, ok := countElem.(elements.Number)
	if !ok {
		return 0, 0, fmt.Errorf("field %q must be a number, got %v", averageFieldCount, countElem.Kind())
	}
	count, ok := num.Int64()
	if !ok || count < 0 {
		return 0, 0, fmt.Errorf("field %q must be a non-negative integer, got %v", averageFieldCount, float64(num))
	}
	return sum, count, nil
}
