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

// Package fakesource provides a deterministic in-memory execution component
// that serves a fixed sequence of pages. It stands in for the partition
// routing collaborator in tests and tooling, and supports both continuation
// token encodings so every operator variant can be exercised against it.
package fakesource

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/stratodoc/stratodoc/go/elements"
	"github.com/stratodoc/stratodoc/go/queryexec"
)

// Token member names for the fake source's own continuation state.
const (
	fieldIndex  = "Index"
	fieldOffset = "Offset"
)

// position is the flat string form of the fake source's state.
type position struct {
	Index  int `json:"index"`
	Offset int `json:"offset"`
}

// Option configures a Source.
type Option func(*Source)

// WithChargePerPage sets the request charge reported by each drained page.
func WithChargePerPage(charge float64) Option {
	return func(s *Source) { s.chargePerPage = charge }
}

// WithDiagnostics sets the opaque diagnostics blob carried by each page.
func WithDiagnostics(diagnostics string) Option {
	return func(s *Source) { s.diagnostics = diagnostics }
}

// WithFailure makes every drain at the given page index return the failure
// instead of results.
func WithFailure(pageIndex int, failure *queryexec.Failure) Option {
	return func(s *Source) {
		s.failAt = pageIndex
		s.failure = failure
	}
}

// Source is an in-memory execution component over a fixed page sequence.
// Drains respect maxItems by splitting pages, so a resumed source continues
// mid-page when needed.
type Source struct {
	pages         [][]elements.Element
	index         int
	offset        int
	chargePerPage float64
	diagnostics   string
	failAt        int
	failure       *queryexec.Failure
}

// New creates a fresh source over the given pages.
func New(pages [][]elements.Element, opts ...Option) *Source {
	s := &Source{pages: pages, failAt: -1}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resume creates a source positioned by a structured token previously
// produced by SerializeState.
func Resume(token elements.Element, pages [][]elements.Element, opts ...Option) (*Source, error) {
	obj, ok := token.(*elements.Object)
	if !ok {
		return nil, queryexec.NewMalformedTokenError("fakesource: token must be an object, got %v", token.Kind())
	}
	index, err := intField(obj, fieldIndex)
	if err != nil {
		return nil, err
	}
	offset, err := intField(obj, fieldOffset)
	if err != nil {
		return nil, err
	}
	s := New(pages, opts...)
	if err := s.seek(index, offset); err != nil {
		return nil, err
	}
	return s, nil
}

// ResumeString creates a source positioned by a flat string token.
func ResumeString(token string, pages [][]elements.Element, opts ...Option) (*Source, error) {
	var pos position
	if err := json.Unmarshal([]byte(token), &pos); err != nil {
		return nil, queryexec.NewMalformedTokenError("fakesource: invalid token %q: %v", token, err)
	}
	s := New(pages, opts...)
	if err := s.seek(pos.Index, pos.Offset); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Source) seek(index, offset int) error {
	if index < 0 || index > len(s.pages) {
		return queryexec.NewMalformedTokenError("fakesource: page index %d out of range", index)
	}
	if offset < 0 || (index < len(s.pages) && offset > len(s.pages[index])) {
		return queryexec.NewMalformedTokenError("fakesource: page offset %d out of range", offset)
	}
	s.index = index
	s.offset = offset
	return nil
}

// Factory returns a SourceFactory serving the given pages, for composing
// compute operators over this source.
func Factory(pages [][]elements.Element, opts ...Option) queryexec.SourceFactory {
	return func(ctx context.Context, token elements.Element) (queryexec.Component, error) {
		if token == nil {
			return New(pages, opts...), nil
		}
		return Resume(token, pages, opts...)
	}
}

// StringFactory returns a StringSourceFactory serving the given pages, for
// composing client operators over this source.
func StringFactory(pages [][]elements.Element, opts ...Option) queryexec.StringSourceFactory {
	return func(ctx context.Context, token string) (queryexec.Component, error) {
		if token == "" {
			return New(pages, opts...), nil
		}
		return ResumeString(token, pages, opts...)
	}
}

func (s *Source) Drain(ctx context.Context, maxItems int) (*queryexec.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if maxItems < 0 {
		return nil, fmt.Errorf("fakesource: negative maxItems %d", maxItems)
	}

	page := &queryexec.Page{
		ActivityID:  uuid.NewString(),
		Diagnostics: s.diagnostics,
	}
	if s.IsDone() {
		return page, nil
	}
	page.RequestCharge = s.chargePerPage

	if s.index == s.failAt {
		page.Failure = s.failure
		return page, nil
	}

	current := s.pages[s.index]
	take := min(maxItems, len(current)-s.offset)
	page.Elements = current[s.offset : s.offset+take]
	s.offset += take
	if s.offset == len(current) {
		s.index++
		s.offset = 0
	}

	if !s.IsDone() {
		token, err := json.Marshal(position{Index: s.index, Offset: s.offset})
		if err != nil {
			return nil, err
		}
		page.ContinuationToken = string(token)
	}
	return page, nil
}

func (s *Source) SerializeState() (elements.Element, error) {
	return elements.NewObject(
		elements.Member{Name: fieldIndex, Value: elements.Number(s.index)},
		elements.Member{Name: fieldOffset, Value: elements.Number(s.offset)},
	), nil
}

func (s *Source) IsDone() bool {
	// Trailing empty pages still need to be served for their metadata.
	return s.index >= len(s.pages)
}

func intField(obj *elements.Object, name string) (int, error) {
	value, ok := obj.Get(name)
	if !ok {
		return 0, queryexec.NewMalformedTokenError("fakesource: token is missing %q", name)
	}
	num, ok := value.(elements.Number)
	if !ok {
		return 0, queryexec.NewMalformedTokenError("fakesource: token field %q must be a number", name)
	}
	i, ok := num.Int64()
	if !ok {
		return 0, queryexec.NewMalformedTokenError("fakesource: token field %q must be an integer", name)
	}
	return int(i), nil
}
