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

// Package elements provides the structured document model used for query
// results and continuation tokens. Objects preserve the order their members
// were written in, but readers must never depend on member order; lookups
// are by name.
package elements

import "math"

// Kind identifies the concrete type of an Element.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the kind name for diagnostics.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	}
	return "<unknown>"
}

// Element is a node in a structured document tree.
type Element interface {
	Kind() Kind
}

// Null is the JSON null value.
type Null struct{}

func (Null) Kind() Kind { return KindNull }

// Bool is a boolean value.
type Bool bool

func (Bool) Kind() Kind { return KindBool }

// Number is a double-precision numeric value.
type Number float64

func (Number) Kind() Kind { return KindNumber }

// Int64 returns the value as an int64 and whether the value is an integer
// representable without loss.
func (n Number) Int64() (int64, bool) {
	f := float64(n)
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// String is a string value.
type String string

func (String) Kind() Kind { return KindString }

// Array is an ordered sequence of elements.
type Array []Element

func (Array) Kind() Kind { return KindArray }

// Member is a single named member of an Object.
type Member struct {
	Name  string
	Value Element
}

// Object is a collection of named members. Insertion order is preserved for
// serialization; Get is by name only.
type Object struct {
	members []Member
}

func (*Object) Kind() Kind { return KindObject }

// NewObject creates an object from the given members, in order.
func NewObject(members ...Member) *Object {
	return &Object{members: members}
}

// Get returns the member value with the given name.
func (o *Object) Get(name string) (Element, bool) {
	for _, m := range o.members {
		if m.Name == name {
			return m.Value, true
		}
	}
	return nil, false
}

// Set replaces the named member if present, otherwise appends it.
func (o *Object) Set(name string, value Element) {
	for i, m := range o.members {
		if m.Name == name {
			o.members[i].Value = value
			return
		}
	}
	o.members = append(o.members, Member{Name: name, Value: value})
}

// Len returns the number of members.
func (o *Object) Len() int {
	return len(o.members)
}

// Members returns the members in insertion order. The returned slice must
// not be mutated.
func (o *Object) Members() []Member {
	return o.members
}

// Equal reports deep equality of two elements. Object member order is
// ignored; arrays compare element-wise in order.
func Equal(a, b Element) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Null:
		return true
	case Bool:
		return av == b.(Bool)
	case Number:
		return av == b.(Number)
	case String:
		return av == b.(String)
	case Array:
		bv := b.(Array)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case *Object:
		bv := b.(*Object)
		if av.Len() != bv.Len() {
			return false
		}
		for _, m := range av.members {
			other, ok := bv.Get(m.Name)
			if !ok || !Equal(m.Value, other) {
				return false
			}
		}
		return true
	}
	return false
}
