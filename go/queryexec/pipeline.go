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

// Package queryexec implements the client-side cross-partition query
// execution pipeline: skip/offset, take (limit/top) and aggregate operators
// composed as a decorator tree over a per-partition source, with exact
// resume through continuation tokens.
//
// Two token encodings coexist for backward compatibility. Compute operators
// use structured element tokens and resume through SerializeState; client
// operators use flat string tokens carried on the page itself. The two
// encodings are deliberately wire-incompatible; constructing an operator
// with the wrong encoding is a caller contract violation.
//
// A component tree is strictly sequential: construct once, drain repeatedly
// to exhaustion, serialize state only while not done. No component tolerates
// concurrent drains on the same instance.
package queryexec

import (
	"context"
	"math"

	"github.com/stratodoc/stratodoc/go/elements"
)

// UnlimitedItemCount requests a drain with no page size cap. The Aggregate
// operator uses it to consume its source in whole pages.
const UnlimitedItemCount = math.MaxInt32

// Component is one operator in the execution pipeline. Each component owns
// at most one source component; ownership flows from outer to inner.
type Component interface {
	// Drain pulls the next page of up to maxItems results. Cancellation is
	// checked on entry and aborts without consuming results. A failed page
	// from the source is returned unchanged. The error return carries
	// pipeline and infrastructure errors, never server-side failures (those
	// travel on the page).
	Drain(ctx context.Context, maxItems int) (*Page, error)

	// SerializeState captures the component's exact drain position as a
	// continuation token element, nesting the source's state. Legacy client
	// variants return an UnsupportedOperation error.
	SerializeState() (elements.Element, error)

	// IsDone reports whether the component's source is exhausted and its own
	// residual work is complete.
	IsDone() bool
}

// SourceFactory constructs the inner source component for an operator, given
// the inner slice of a structured continuation token (nil for a fresh
// query). It is supplied by the partition-routing collaborator and called at
// most once per operator construction; it may perform network I/O, so
// construction fails with whatever errors the factory can fail with.
type SourceFactory func(ctx context.Context, token elements.Element) (Component, error)

// StringSourceFactory is the SourceFactory counterpart for the client token
// encoding, where the nested source token is a flat string ("" for a fresh
// query).
type StringSourceFactory func(ctx context.Context, token string) (Component, error)
