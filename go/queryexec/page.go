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

import "github.com/stratodoc/stratodoc/go/elements"

// Failure describes a failed page. Kind is the server-side classification of
// the failure (for example "Throttled" or "ServiceUnavailable"); the pipeline
// passes it through without interpretation.
type Failure struct {
	Kind    string
	Message string
}

// Page is one unit of drain output. A failed page (Failure != nil) carries
// no usable elements; callers must check Succeeded before reading Elements.
// Wrapping operators propagate failed pages unchanged.
type Page struct {
	// Elements are the result rows, in source order.
	Elements []elements.Element

	// RequestCharge is the cumulative cost of producing this page.
	RequestCharge float64

	// ActivityID identifies the server-side activity that produced the page.
	ActivityID string

	// Diagnostics is an opaque diagnostics blob, passed through verbatim.
	Diagnostics string

	// ContinuationToken is the page-level continuation marker (the string
	// token channel used by legacy clients). Empty means none. Compute
	// operators resume through SerializeState instead; the Take operator
	// deliberately clears this field.
	ContinuationToken string

	// Failure is non-nil when the page represents a failed response.
	Failure *Failure
}

// Succeeded reports whether the page carries results rather than a failure.
func (p *Page) Succeeded() bool {
	return p.Failure == nil
}
